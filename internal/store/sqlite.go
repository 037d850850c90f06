package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dropplus/server/internal/domain"
)

var ErrNotFound = errors.New("user not found")

// LedgerStore owns the two durable tables: user balances and the
// append-only deposit log. No other component touches them directly.
type LedgerStore struct {
	db *sql.DB
}

// New opens (creating if needed) the SQLite database at path.
//
// _txlock=immediate makes every transaction take the write lock at BEGIN,
// so concurrent deposits serialize instead of failing on lock upgrade;
// _busy_timeout absorbs the resulting contention. _foreign_keys keeps the
// log from ever referencing a user row that does not exist.
func New(path string) (*LedgerStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &LedgerStore{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *LedgerStore) Close() error {
	return s.db.Close()
}

func (s *LedgerStore) init() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			school_id TEXT PRIMARY KEY,
			name TEXT,
			points INTEGER NOT NULL DEFAULT 0 CHECK (points >= 0),
			created_at INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			school_id TEXT NOT NULL REFERENCES users(school_id),
			bottle_count INTEGER NOT NULL CHECK (bottle_count > 0),
			points_added INTEGER NOT NULL,
			device_id TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_school_id ON transactions(school_id, id DESC)`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Deposit applies one kiosk deposit as a single transaction: create the
// user row if this school id has never been seen, add pointsAdded to its
// balance, append the log entry, and read back the new total. Either all
// four happen or none do.
func (s *LedgerStore) Deposit(ctx context.Context, schoolID string, bottleCount, pointsAdded int64, deviceID string) (*domain.DepositOutcome, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("tx begin failed: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()

	// Upsert-if-absent: an existing row keeps its points and created_at.
	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (school_id, points, created_at) VALUES (?, 0, ?)
		 ON CONFLICT(school_id) DO NOTHING`,
		schoolID, now,
	)
	if err != nil {
		return nil, fmt.Errorf("user upsert failed: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE users SET points = points + ? WHERE school_id = ?",
		pointsAdded, schoolID,
	)
	if err != nil {
		return nil, fmt.Errorf("points update failed: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (school_id, bottle_count, points_added, device_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		schoolID, bottleCount, pointsAdded, deviceID, now,
	)
	if err != nil {
		return nil, fmt.Errorf("transaction append failed: %w", err)
	}
	txID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("transaction append failed: %w", err)
	}

	var total int64
	err = tx.QueryRowContext(ctx,
		"SELECT points FROM users WHERE school_id = ?", schoolID,
	).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("points readback failed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("tx commit failed: %w", err)
	}

	return &domain.DepositOutcome{TransactionID: txID, TotalPoints: total}, nil
}

// GetUserSummary returns one user with its bottle total aggregated from
// the log. Returns ErrNotFound when the school id has never deposited.
func (s *LedgerStore) GetUserSummary(ctx context.Context, schoolID string) (*domain.UserSummary, error) {
	var (
		u    domain.UserSummary
		name sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT u.school_id, u.name, u.points, IFNULL(SUM(t.bottle_count), 0)
		 FROM users u
		 LEFT JOIN transactions t ON t.school_id = u.school_id
		 WHERE u.school_id = ?
		 GROUP BY u.school_id`,
		schoolID,
	).Scan(&u.SchoolID, &name, &u.Points, &u.BottlesTotal)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user summary query failed: %w", err)
	}
	u.Name = name.String
	return &u, nil
}

// Leaderboard returns up to limit users ordered by bottles deposited,
// ties broken by points.
func (s *LedgerStore) Leaderboard(ctx context.Context, limit int) ([]domain.UserSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.school_id, u.name, u.points, IFNULL(SUM(t.bottle_count), 0) AS bottles_total
		 FROM users u
		 LEFT JOIN transactions t ON t.school_id = u.school_id
		 GROUP BY u.school_id
		 ORDER BY bottles_total DESC, u.points DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("leaderboard query failed: %w", err)
	}
	defer rows.Close()

	board := []domain.UserSummary{}
	for rows.Next() {
		var (
			u    domain.UserSummary
			name sql.NullString
		)
		if err := rows.Scan(&u.SchoolID, &name, &u.Points, &u.BottlesTotal); err != nil {
			return nil, fmt.Errorf("leaderboard scan failed: %w", err)
		}
		u.Name = name.String
		board = append(board, u)
	}
	return board, rows.Err()
}

// ListTransactions returns up to limit log entries for one school id,
// newest first.
func (s *LedgerStore) ListTransactions(ctx context.Context, schoolID string, limit int) ([]domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, school_id, bottle_count, points_added, device_id, created_at
		 FROM transactions
		 WHERE school_id = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		schoolID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("transactions query failed: %w", err)
	}
	defer rows.Close()

	txs := []domain.Transaction{}
	for rows.Next() {
		var (
			t         domain.Transaction
			createdAt int64
		)
		if err := rows.Scan(&t.ID, &t.SchoolID, &t.BottleCount, &t.PointsAdded, &t.DeviceID, &createdAt); err != nil {
			return nil, fmt.Errorf("transaction scan failed: %w", err)
		}
		t.CreatedAt = time.Unix(createdAt, 0).UTC()
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// ResetAll deletes every log entry and zeroes every balance in one
// transaction, so no reader sees one without the other.
func (s *LedgerStore) ResetAll(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("tx begin failed: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM transactions"); err != nil {
		return fmt.Errorf("transactions delete failed: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE users SET points = 0"); err != nil {
		return fmt.Errorf("points reset failed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tx commit failed: %w", err)
	}
	return nil
}
