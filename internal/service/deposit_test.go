package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/dropplus/server/internal/device"
	"github.com/dropplus/server/internal/domain"
	"github.com/dropplus/server/internal/service"
	"github.com/dropplus/server/internal/store"
)

func newDepositService(t *testing.T) (*service.DepositService, *store.LedgerStore) {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	registry := device.NewRegistry(map[string]string{"BIN-01": "BIN01SECRET"})
	return service.NewDepositService(s, registry, 10), s
}

func validDeposit() domain.DepositRequest {
	return domain.DepositRequest{
		SchoolID:    "S1",
		BottleCount: 5,
		DeviceID:    "BIN-01",
		APIKey:      "BIN01SECRET",
	}
}

func TestRecordDeposit(t *testing.T) {
	svc, _ := newDepositService(t)
	ctx := context.Background()

	res, err := svc.RecordDeposit(ctx, validDeposit())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.PointsAdded != 50 || res.TotalPoints != 50 {
		t.Fatalf("expected 50/50, got added=%d total=%d", res.PointsAdded, res.TotalPoints)
	}

	// A retried identical request credits again; there is no deduplication.
	res, err = svc.RecordDeposit(ctx, validDeposit())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalPoints != 100 {
		t.Fatalf("expected total 100 after replay, got %d", res.TotalPoints)
	}
}

func TestRecordDepositValidationOrder(t *testing.T) {
	svc, _ := newDepositService(t)
	ctx := context.Background()

	// school_id is checked before bottle_count and before auth.
	req := validDeposit()
	req.SchoolID = ""
	req.BottleCount = 0
	req.APIKey = "WRONG"
	if _, err := svc.RecordDeposit(ctx, req); !errors.Is(err, service.ErrMissingSchoolID) {
		t.Fatalf("expected ErrMissingSchoolID, got %v", err)
	}

	// bottle_count before auth.
	req = validDeposit()
	req.BottleCount = 0
	req.APIKey = "WRONG"
	if _, err := svc.RecordDeposit(ctx, req); !errors.Is(err, service.ErrInvalidBottleCount) {
		t.Fatalf("expected ErrInvalidBottleCount, got %v", err)
	}

	req = validDeposit()
	req.BottleCount = -3
	if _, err := svc.RecordDeposit(ctx, req); !errors.Is(err, service.ErrInvalidBottleCount) {
		t.Fatalf("expected ErrInvalidBottleCount for negative count, got %v", err)
	}

	req = validDeposit()
	req.APIKey = "WRONG"
	if _, err := svc.RecordDeposit(ctx, req); !errors.Is(err, service.ErrDeviceUnauthorized) {
		t.Fatalf("expected ErrDeviceUnauthorized, got %v", err)
	}

	req = validDeposit()
	req.DeviceID = "BIN-99"
	if _, err := svc.RecordDeposit(ctx, req); !errors.Is(err, service.ErrDeviceUnauthorized) {
		t.Fatalf("expected ErrDeviceUnauthorized for unknown device, got %v", err)
	}
}

func TestRejectedDepositWritesNothing(t *testing.T) {
	svc, s := newDepositService(t)
	ctx := context.Background()

	req := validDeposit()
	req.APIKey = "WRONG"
	if _, err := svc.RecordDeposit(ctx, req); err == nil {
		t.Fatal("expected error")
	}

	if _, err := s.GetUserSummary(ctx, "S1"); err != store.ErrNotFound {
		t.Fatalf("rejected deposit must not create the user, got %v", err)
	}
}

func TestAdminReset(t *testing.T) {
	svc, s := newDepositService(t)
	ctx := context.Background()
	admin := service.NewAdminService(s, "RESET123")

	if _, err := svc.RecordDeposit(ctx, validDeposit()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := admin.Reset(ctx, "WRONG"); !errors.Is(err, service.ErrAdminUnauthorized) {
		t.Fatalf("expected ErrAdminUnauthorized, got %v", err)
	}
	sum, err := s.GetUserSummary(ctx, "S1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Points != 50 {
		t.Fatalf("refused reset must leave balances unchanged, got %d", sum.Points)
	}

	if err := admin.Reset(ctx, "RESET123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sum, err = s.GetUserSummary(ctx, "S1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Points != 0 || sum.BottlesTotal != 0 {
		t.Fatalf("expected zeroed user after reset, got points=%d bottles=%d", sum.Points, sum.BottlesTotal)
	}
}
