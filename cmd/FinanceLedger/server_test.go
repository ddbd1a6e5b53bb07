package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sebuszqo/FinanceLedger/internal/auth"
	"github.com/sebuszqo/FinanceLedger/internal/finance/application"
	"github.com/sebuszqo/FinanceLedger/internal/finance/domain"
	"github.com/sebuszqo/FinanceLedger/internal/finance/infrastructure"
	"github.com/sebuszqo/FinanceLedger/internal/finance/interfaces"
	"github.com/sebuszqo/FinanceLedger/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHealth struct {
	status string
}

func (h stubHealth) Health(context.Context) map[string]string {
	return map[string]string{"status": h.status}
}

// headerAuth stands in for the JWT middleware: the X-User header becomes the actor.
func headerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User")
		if userID == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithActor(r.Context(), domain.Actor{UserID: userID})))
	})
}

func newTestServer(t *testing.T, health string) (*Server, *infrastructure.MemoryStore) {
	t.Helper()
	store := infrastructure.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.CreateAccount(ctx, &domain.Account{Name: "Checking", Abbreviation: "CHK", IsActive: true}))
	require.NoError(t, store.CreateCategory(ctx, &domain.Category{Name: "Salary", IsActive: true}))

	ledger := application.NewLedgerService(store, log.Discard())
	server := NewServer(
		log.Discard(),
		headerAuth,
		stubHealth{status: health},
		interfaces.NewTransactionHandler(ledger, application.NewTransactionService(store, nil), interfaces.RespondJSON, interfaces.RespondError),
		interfaces.NewBalanceHandler(ledger, interfaces.RespondJSON, interfaces.RespondError),
		interfaces.NewAccountHandler(application.NewAccountService(store), interfaces.RespondJSON, interfaces.RespondError),
		interfaces.NewCategoryHandler(application.NewCategoryService(store), interfaces.RespondJSON, interfaces.RespondError),
	)
	server.RegisterRoutes()
	return server, store
}

func TestServer_PublicRoutes(t *testing.T) {
	server, _ := newTestServer(t, "up")

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready"}`, w.Body.String())

	w = httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Path not found"}`, w.Body.String())
}

func TestServer_HealthDown(t *testing.T) {
	server, _ := newTestServer(t, "down")

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestServer_ProtectedRoutesRequireAuth(t *testing.T) {
	server, _ := newTestServer(t, "up")

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/protected/balances", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServer_RecordThenReadBalance(t *testing.T) {
	server, _ := newTestServer(t, "up")
	body, err := json.Marshal(map[string]interface{}{
		"account_id": 1, "category_id": 2, "amount": "25.00", "action": 1,
		"date": "2024-03-01", "description": "bonus",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/protected/transactions", bytes.NewReader(body))
	req.Header.Set("X-User", "3f1c4b0e-8a55-4c43-9b1f-5b7f7e0c2a10")
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/protected/balances/1", nil)
	req.Header.Set("X-User", "3f1c4b0e-8a55-4c43-9b1f-5b7f7e0c2a10")
	w = httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "25", response["data"].(map[string]interface{})["value"])
}

type stubVerifier struct {
	drifts []domain.BalanceDrift
	err    error
	calls  int
}

func (v *stubVerifier) VerifyBalances(context.Context) ([]domain.BalanceDrift, error) {
	v.calls++
	return v.drifts, v.err
}

func TestStartReconcileScheduler(t *testing.T) {
	verifier := &stubVerifier{}

	_, err := StartReconcileScheduler("not a schedule", verifier, log.Discard())
	assert.Error(t, err)

	scheduler, err := StartReconcileScheduler("@every 1h", verifier, log.Discard())
	require.NoError(t, err)
	<-scheduler.Stop().Done()
}

func TestReconcileBalances(t *testing.T) {
	verifier := &stubVerifier{drifts: []domain.BalanceDrift{{AccountID: 1}}}
	reconcileBalances(verifier, log.Discard())

	verifier.err = errors.New("connection refused")
	reconcileBalances(verifier, log.Discard())

	assert.Equal(t, 2, verifier.calls)
}
