package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/minbank/ledger-service/internal/api/httpx"
	"github.com/minbank/ledger-service/internal/auth"
	"github.com/minbank/ledger-service/internal/config"
	"github.com/minbank/ledger-service/internal/metrics"
	"github.com/minbank/ledger-service/internal/middleware"
	"github.com/minbank/ledger-service/internal/models"
	"github.com/minbank/ledger-service/internal/services"
)

func NewRouter(cfg config.Config, as *services.AccountService, ls *services.LedgerService, tm *auth.TokenManager) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.HTTPMetrics, middleware.RateLimit(cfg.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	authn := middleware.NewAuthMiddleware(tm, cfg.Env)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// ---------- accounts ----------
		r.Post("/accounts", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Username string `json:"username"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
				return
			}
			acc, err := as.Open(r.Context(), req.Username)
			if err != nil {
				status, code, msg := kindOf(err)
				httpx.WriteError(w, status, code, msg, nil)
				return
			}
			metrics.AccountsOpened.Inc()
			httpx.WriteJSON(w, http.StatusCreated, acc)
		})

		// snapshot read: non-locking, may trail an in-flight transfer
		r.Get("/accounts/{username}/balance", func(w http.ResponseWriter, r *http.Request) {
			acc, err := ls.Balance(r.Context(), chi.URLParam(r, "username"))
			if err != nil {
				status, code, msg := kindOf(err)
				httpx.WriteError(w, status, code, msg, nil)
				return
			}
			httpx.WriteJSON(w, http.StatusOK, map[string]any{
				"username": acc.Username,
				"balance":  acc.Balance,
			})
		})

		r.With(authn.Auth, middleware.RequireRole(models.RolePrivileged)).
			Get("/accounts", func(w http.ResponseWriter, r *http.Request) {
				accs, err := as.List(r.Context())
				if err != nil {
					httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, accs)
			})

		// ---------- auth glue ----------
		// Issues a token carrying the account's stored role. Credential
		// verification is outside this service's scope.
		r.Post("/auth/token", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Username string `json:"username"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
				httpx.WriteError(w, http.StatusBadRequest, "bad_request", "username required", nil)
				return
			}
			acc, err := as.Get(r.Context(), req.Username)
			if err != nil {
				status, code, msg := kindOf(err)
				httpx.WriteError(w, status, code, msg, nil)
				return
			}
			tok, exp, err := tm.Generate(acc.Username, string(acc.Role))
			if err != nil {
				httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "token generation failed", nil)
				return
			}
			httpx.WriteJSON(w, http.StatusOK, map[string]any{
				"access_token": tok,
				"expires_at":   exp,
			})
		})

		// ---------- transfers ----------
		r.With(authn.Auth).Post("/transfers", func(w http.ResponseWriter, r *http.Request) {
			p, ok := middleware.PrincipalFrom(r.Context())
			if !ok {
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing principal", nil)
				return
			}
			var req struct {
				To     string `json:"to"`
				Amount any    `json:"amount"`
			}
			dec := json.NewDecoder(r.Body)
			dec.UseNumber()
			if err := dec.Decode(&req); err != nil {
				httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
				return
			}
			res, err := ls.Transfer(r.Context(), p.Username, req.To, rawAmount(req.Amount), p.Role)
			if err != nil {
				status, code, msg := kindOf(err)
				httpx.WriteError(w, status, code, msg, nil)
				return
			}
			httpx.WriteJSON(w, http.StatusCreated, res)
		})

		r.Get("/transfers/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
			if err != nil {
				httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid transaction id", nil)
				return
			}
			rec, err := ls.Transaction(r.Context(), id)
			if err != nil {
				// store faults fall through to 500 here, only the
				// typed not-found maps to 404
				status, code, msg := kindOf(err)
				httpx.WriteError(w, status, code, msg, nil)
				return
			}
			httpx.WriteJSON(w, http.StatusOK, rec)
		})

		r.Get("/transfers", func(w http.ResponseWriter, r *http.Request) {
			account := r.URL.Query().Get("account")
			if account == "" {
				httpx.WriteError(w, http.StatusBadRequest, "bad_request", "account required", nil)
				return
			}
			limit, offset := 50, 0
			if v := r.URL.Query().Get("limit"); v != "" {
				if n, err := strconv.Atoi(v); err == nil && n > 0 {
					limit = n
				}
			}
			if v := r.URL.Query().Get("offset"); v != "" {
				if n, err := strconv.Atoi(v); err == nil && n >= 0 {
					offset = n
				}
			}
			recs, err := ls.History(r.Context(), account, limit, offset)
			if err != nil {
				httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
				return
			}
			if recs == nil {
				recs = []models.Transaction{}
			}
			httpx.WriteJSON(w, http.StatusOK, recs)
		})
	})

	return r
}

// rawAmount keeps the amount unparsed for the core, whether the caller
// sent a JSON string or a number.
func rawAmount(v any) string {
	switch a := v.(type) {
	case string:
		return a
	case json.Number:
		return a.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(a)
	}
}
