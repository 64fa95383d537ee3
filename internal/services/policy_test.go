package services

import (
	"testing"

	"github.com/minbank/ledger-service/internal/models"
)

func TestDefaultDebitPolicy(t *testing.T) {
	cases := []struct {
		role   models.Role
		charge bool
	}{
		{models.RoleStandard, true},
		{models.RolePrivileged, false},
		{models.Role("auditor"), true}, // unknown roles pay
		{models.Role(""), true},
	}
	for _, tc := range cases {
		if got := DefaultDebitPolicy.ChargeSender(tc.role); got != tc.charge {
			t.Errorf("ChargeSender(%q)=%v want %v", tc.role, got, tc.charge)
		}
	}
}
