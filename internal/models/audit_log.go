package models

import "time"

// AuditLog is the operational audit trail. Entries are written best-effort
// outside the transfer's atomic unit; the transaction record is the
// authoritative ledger history.
type AuditLog struct {
	ID         string         `json:"id"`
	EntityType string         `json:"entity_type"`
	EntityID   *string        `json:"entity_id"`
	Action     string         `json:"action"`
	Details    map[string]any `json:"details"`
	CreatedAt  time.Time      `json:"created_at"`
}
