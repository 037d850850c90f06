package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/dropplus/server/internal/store"
)

var ErrAdminUnauthorized = errors.New("admin key mismatch")

// AdminService guards the bulk reset behind the process-wide admin key.
type AdminService struct {
	store    *store.LedgerStore
	adminKey string
}

func NewAdminService(s *store.LedgerStore, adminKey string) *AdminService {
	return &AdminService{store: s, adminKey: adminKey}
}

// Reset wipes the transaction log and zeroes every balance. User rows
// survive with zero points.
func (s *AdminService) Reset(ctx context.Context, key string) error {
	if subtle.ConstantTimeCompare([]byte(s.adminKey), []byte(key)) != 1 {
		return ErrAdminUnauthorized
	}
	if err := s.store.ResetAll(ctx); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}
	return nil
}
