package middleware

import (
	"net/http"

	"github.com/minbank/ledger-service/internal/api/httpx"
	"github.com/minbank/ledger-service/internal/models"
)

// RequireRole allows only principals with the given role through.
func RequireRole(need models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFrom(r.Context())
			if !ok {
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing principal", nil)
				return
			}
			if p.Role != need {
				httpx.WriteError(w, http.StatusForbidden, "forbidden", "insufficient role", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
