package models

import (
	"strings"
	"time"
)

// Role decides whether a sender is charged for a transfer.
type Role string

const (
	RoleStandard   Role = "standard"
	RolePrivileged Role = "privileged"
)

// Account balances are stored in minor currency units (cents) as int64.
type Account struct {
	Username  string    `json:"username"`
	Balance   int64     `json:"balance"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Account) Validate() error {
	if len(strings.TrimSpace(a.Username)) < 3 {
		return ErrInvalidUsername
	}
	if a.Role == "" {
		a.Role = RoleStandard
	}
	return nil
}
