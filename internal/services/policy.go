package services

import "github.com/minbank/ledger-service/internal/models"

// DebitPolicy decides, per sender role, whether a transfer charges the
// sender. Kept as plain data so the transfer path carries no role
// conditionals.
type DebitPolicy map[models.Role]bool

// DefaultDebitPolicy charges standard senders and exempts privileged
// ones, which lets a treasury account issue funds into the system.
var DefaultDebitPolicy = DebitPolicy{
	models.RoleStandard:   true,
	models.RolePrivileged: false,
}

// ChargeSender reports whether the sender must be debited. Unknown
// roles are charged.
func (p DebitPolicy) ChargeSender(role models.Role) bool {
	charge, ok := p[role]
	if !ok {
		return true
	}
	return charge
}
