package domain

import "time"

// Transaction is one immutable entry in the append-only deposit log.
type Transaction struct {
	ID          int64     `json:"id"`
	SchoolID    string    `json:"school_id"`
	BottleCount int64     `json:"bottle_count"`
	PointsAdded int64     `json:"points_added"`
	DeviceID    string    `json:"device_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// DepositRequest is the payload a kiosk sends for a physical deposit.
type DepositRequest struct {
	SchoolID    string `json:"school_id"`
	BottleCount int64  `json:"bottle_count"`
	DeviceID    string `json:"device_id"`
	APIKey      string `json:"api_key"`
}

// DepositResult is returned to the kiosk after a deposit is applied.
type DepositResult struct {
	SchoolID    string `json:"school_id"`
	PointsAdded int64  `json:"points_added"`
	TotalPoints int64  `json:"total_points"`
}

// DepositOutcome is what the store reports back from the deposit
// transaction: the assigned sequence id and the post-increment total.
type DepositOutcome struct {
	TransactionID int64
	TotalPoints   int64
}

// UserSummary is the read-side view of a user. BottlesTotal is derived by
// aggregating the transaction log at query time, never stored.
type UserSummary struct {
	SchoolID     string `json:"school_id"`
	Name         string `json:"name"`
	Points       int64  `json:"points"`
	BottlesTotal int64  `json:"bottles_total"`
}
