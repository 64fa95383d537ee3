package models

import "time"

// Transaction is the append-only record of one committed transfer.
// The ID is assigned by the store (auto-increment) at append time.
type Transaction struct {
	ID        int64     `json:"id"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}
