package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/minbank/ledger-service/internal/auth"
	"github.com/minbank/ledger-service/internal/config"
	"github.com/minbank/ledger-service/internal/models"
	"github.com/minbank/ledger-service/internal/repository/memory"
	"github.com/minbank/ledger-service/internal/services"
)

type testEnv struct {
	router http.Handler
	store  *memory.Store
	tm     *auth.TokenManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := config.Config{Env: "test", RateRPS: 0, OpeningBalance: 100}
	store := memory.New(time.Second)
	as := services.NewAccountService(store, cfg.OpeningBalance)
	ls := services.NewLedgerService(store, store, store.AuditLogs(), nil)
	tm := auth.NewTokenManager("test-secret", "ledger-test", time.Hour)
	return &testEnv{router: NewRouter(cfg, as, ls, tm), store: store, tm: tm}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) token(t *testing.T, username, role string) string {
	t.Helper()
	tok, _, err := e.tm.Generate(username, role)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func decodeErr(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, w.Body.String())
	}
	return body.Code
}

func TestOpenAccountAndBalance(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodPost, "/api/v1/accounts", "", map[string]string{"username": "alice"})
	if w.Code != http.StatusCreated {
		t.Fatalf("open status=%d body=%s", w.Code, w.Body.String())
	}

	w = e.do(t, http.MethodPost, "/api/v1/accounts", "", map[string]string{"username": "alice"})
	if w.Code != http.StatusConflict || decodeErr(t, w) != "account_exists" {
		t.Fatalf("duplicate open status=%d code=%s", w.Code, w.Body.String())
	}

	w = e.do(t, http.MethodPost, "/api/v1/accounts", "", map[string]string{"username": "x"})
	if w.Code != http.StatusBadRequest || decodeErr(t, w) != "invalid_username" {
		t.Fatalf("short name status=%d body=%s", w.Code, w.Body.String())
	}

	w = e.do(t, http.MethodGet, "/api/v1/accounts/alice/balance", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("balance status=%d", w.Code)
	}
	var bal struct {
		Balance int64 `json:"balance"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &bal); err != nil || bal.Balance != 100 {
		t.Fatalf("balance body=%s err=%v", w.Body.String(), err)
	}

	w = e.do(t, http.MethodGet, "/api/v1/accounts/ghost/balance", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("ghost balance status=%d", w.Code)
	}
}

func TestTransferEndpoint(t *testing.T) {
	e := newTestEnv(t)
	e.do(t, http.MethodPost, "/api/v1/accounts", "", map[string]string{"username": "alice"})
	e.do(t, http.MethodPost, "/api/v1/accounts", "", map[string]string{"username": "bob"})
	tok := e.token(t, "alice", "standard")

	// amount as JSON number
	w := e.do(t, http.MethodPost, "/api/v1/transfers", tok, map[string]any{"to": "bob", "amount": 30})
	if w.Code != http.StatusCreated {
		t.Fatalf("transfer status=%d body=%s", w.Code, w.Body.String())
	}
	var res services.TransferResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.SenderBalance != 70 || res.ReceiverBalance != 130 || !res.SenderDebited {
		t.Fatalf("result=%+v", res)
	}

	// amount as JSON string
	w = e.do(t, http.MethodPost, "/api/v1/transfers", tok, map[string]any{"to": "bob", "amount": "20"})
	if w.Code != http.StatusCreated {
		t.Fatalf("string amount status=%d body=%s", w.Code, w.Body.String())
	}

	cases := []struct {
		name   string
		body   map[string]any
		status int
		code   string
	}{
		{"fractional amount", map[string]any{"to": "bob", "amount": "1.5"}, http.StatusBadRequest, "invalid_amount"},
		{"zero amount", map[string]any{"to": "bob", "amount": 0}, http.StatusBadRequest, "invalid_amount"},
		{"self", map[string]any{"to": "alice", "amount": 10}, http.StatusBadRequest, "self_transfer"},
		{"missing receiver", map[string]any{"to": "ghost", "amount": 10}, http.StatusNotFound, "receiver_not_found"},
		{"insufficient", map[string]any{"to": "bob", "amount": 100000}, http.StatusUnprocessableEntity, "insufficient_funds"},
	}
	for _, tc := range cases {
		w := e.do(t, http.MethodPost, "/api/v1/transfers", tok, tc.body)
		if w.Code != tc.status || decodeErr(t, w) != tc.code {
			t.Errorf("%s: status=%d body=%s want %d/%s", tc.name, w.Code, w.Body.String(), tc.status, tc.code)
		}
	}

	// no token
	w = e.do(t, http.MethodPost, "/api/v1/transfers", "", map[string]any{"to": "bob", "amount": 10})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status=%d", w.Code)
	}
}

func TestTransferHistory(t *testing.T) {
	e := newTestEnv(t)
	e.do(t, http.MethodPost, "/api/v1/accounts", "", map[string]string{"username": "alice"})
	e.do(t, http.MethodPost, "/api/v1/accounts", "", map[string]string{"username": "bob"})
	tok := e.token(t, "alice", "standard")
	e.do(t, http.MethodPost, "/api/v1/transfers", tok, map[string]any{"to": "bob", "amount": 10})
	e.do(t, http.MethodPost, "/api/v1/transfers", tok, map[string]any{"to": "bob", "amount": 20})

	w := e.do(t, http.MethodGet, "/api/v1/transfers?account=bob", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("history status=%d", w.Code)
	}
	var recs []models.Transaction
	if err := json.Unmarshal(w.Body.Bytes(), &recs); err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 || recs[0].Amount != 20 || recs[1].Amount != 10 {
		t.Fatalf("history=%+v want newest first 20,10", recs)
	}

	w = e.do(t, http.MethodGet, "/api/v1/transfers", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing account param status=%d", w.Code)
	}

	w = e.do(t, http.MethodGet, "/api/v1/transfers/1", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get by id status=%d body=%s", w.Code, w.Body.String())
	}
	w = e.do(t, http.MethodGet, "/api/v1/transfers/9999", "", nil)
	if w.Code != http.StatusNotFound || decodeErr(t, w) != "transaction_not_found" {
		t.Fatalf("unknown id status=%d body=%s want 404/transaction_not_found", w.Code, w.Body.String())
	}
}

func TestAccountListNeedsPrivilegedRole(t *testing.T) {
	e := newTestEnv(t)
	e.do(t, http.MethodPost, "/api/v1/accounts", "", map[string]string{"username": "alice"})

	w := e.do(t, http.MethodGet, "/api/v1/accounts", e.token(t, "alice", "standard"), nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("standard role status=%d want 403", w.Code)
	}

	w = e.do(t, http.MethodGet, "/api/v1/accounts", e.token(t, "treasury", "privileged"), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("privileged role status=%d want 200", w.Code)
	}
}

func TestTokenEndpoint(t *testing.T) {
	e := newTestEnv(t)
	e.do(t, http.MethodPost, "/api/v1/accounts", "", map[string]string{"username": "alice"})

	w := e.do(t, http.MethodPost, "/api/v1/auth/token", "", map[string]string{"username": "alice"})
	if w.Code != http.StatusOK {
		t.Fatalf("token status=%d body=%s", w.Code, w.Body.String())
	}
	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.AccessToken == "" {
		t.Fatalf("token body=%s err=%v", w.Body.String(), err)
	}

	// the issued token works against an authenticated route
	w = e.do(t, http.MethodPost, "/api/v1/transfers", body.AccessToken, map[string]any{"to": "alice", "amount": 1})
	if w.Code != http.StatusBadRequest || decodeErr(t, w) != "self_transfer" {
		t.Fatalf("issued token status=%d body=%s want self_transfer", w.Code, w.Body.String())
	}

	w = e.do(t, http.MethodPost, "/api/v1/auth/token", "", map[string]string{"username": "ghost"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown user token status=%d", w.Code)
	}
}
