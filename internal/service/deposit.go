package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropplus/server/internal/device"
	"github.com/dropplus/server/internal/domain"
	"github.com/dropplus/server/internal/store"
)

var (
	ErrMissingSchoolID    = errors.New("missing school_id")
	ErrInvalidBottleCount = errors.New("bottle_count must be a positive integer")
	ErrDeviceUnauthorized = errors.New("device auth failed")
)

// DepositService validates and applies kiosk deposits.
type DepositService struct {
	store           *store.LedgerStore
	registry        *device.Registry
	pointsPerBottle int64
}

func NewDepositService(s *store.LedgerStore, r *device.Registry, pointsPerBottle int64) *DepositService {
	return &DepositService{store: s, registry: r, pointsPerBottle: pointsPerBottle}
}

// RecordDeposit validates the claim, authenticates the device, and applies
// the balance increment plus log append atomically through the store.
//
// Kiosks retry on network failure and retries are not deduplicated: a
// replayed request credits points again. The endpoint is at-least-once.
func (s *DepositService) RecordDeposit(ctx context.Context, req domain.DepositRequest) (*domain.DepositResult, error) {
	if req.SchoolID == "" {
		return nil, ErrMissingSchoolID
	}
	if req.BottleCount <= 0 {
		return nil, ErrInvalidBottleCount
	}
	if !s.registry.Authorize(req.DeviceID, req.APIKey) {
		return nil, ErrDeviceUnauthorized
	}

	pointsAdded := req.BottleCount * s.pointsPerBottle

	outcome, err := s.store.Deposit(ctx, req.SchoolID, req.BottleCount, pointsAdded, req.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("deposit write failed: %w", err)
	}

	return &domain.DepositResult{
		SchoolID:    req.SchoolID,
		PointsAdded: pointsAdded,
		TotalPoints: outcome.TotalPoints,
	}, nil
}
