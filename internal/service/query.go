package service

import (
	"context"

	"github.com/dropplus/server/internal/domain"
	"github.com/dropplus/server/internal/store"
)

const (
	LeaderboardLimit = 20
	HistoryLimit     = 30
)

// QueryService is the read-only side: leaderboard, single-user summary,
// per-user history. No caching; every call reads committed store state.
type QueryService struct {
	store *store.LedgerStore
}

func NewQueryService(s *store.LedgerStore) *QueryService {
	return &QueryService{store: s}
}

func (s *QueryService) Leaderboard(ctx context.Context) ([]domain.UserSummary, error) {
	return s.store.Leaderboard(ctx, LeaderboardLimit)
}

func (s *QueryService) UserSummary(ctx context.Context, schoolID string) (*domain.UserSummary, error) {
	return s.store.GetUserSummary(ctx, schoolID)
}

func (s *QueryService) UserTransactions(ctx context.Context, schoolID string) ([]domain.Transaction, error) {
	return s.store.ListTransactions(ctx, schoolID, HistoryLimit)
}
