package interfaces

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sebuszqo/FinanceLedger/internal/auth"
	"github.com/sebuszqo/FinanceLedger/internal/finance/application"
	"github.com/sebuszqo/FinanceLedger/internal/finance/domain"
	"github.com/sebuszqo/FinanceLedger/internal/finance/infrastructure"
	"github.com/sebuszqo/FinanceLedger/internal/log"
	"github.com/stretchr/testify/require"
)

var (
	ownerActor    = domain.Actor{UserID: "3f1c4b0e-8a55-4c43-9b1f-5b7f7e0c2a10"}
	strangerActor = domain.Actor{UserID: "9d2f6a71-0c1e-4f3b-a3a8-2b5d6c7e8f90"}
	auditorActor  = domain.Actor{UserID: "5a6b7c8d-1e2f-4a3b-8c4d-9e0f1a2b3c4d", CanViewAll: true}
)

type stubDirectory map[string]string

func (d stubDirectory) DisplayNames(_ context.Context, userIDs []string) (map[string]string, error) {
	names := make(map[string]string)
	for _, id := range userIDs {
		if name, ok := d[id]; ok {
			names[id] = name
		}
	}
	return names, nil
}

type handlerFixture struct {
	store        *infrastructure.MemoryStore
	ledger       *application.LedgerService
	transactions *TransactionHandler
	balances     *BalanceHandler
	accounts     *AccountHandler
	categories   *CategoryHandler
	mux          *http.ServeMux
	accountID    int
	categoryID   int
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	ctx := context.Background()
	store := infrastructure.NewMemoryStore()

	account := &domain.Account{Name: "Checking", Abbreviation: "CHK", IsActive: true}
	hidden := &domain.Account{Name: "Closed", Abbreviation: "OLD", IsActive: false}
	category := &domain.Category{Name: "Salary", IsActive: true}
	require.NoError(t, store.CreateAccount(ctx, account))
	require.NoError(t, store.CreateAccount(ctx, hidden))
	require.NoError(t, store.CreateCategory(ctx, category))

	ledger := application.NewLedgerService(store, log.Discard(), application.WithRetryBackoff(0))
	queries := application.NewTransactionService(store, stubDirectory{ownerActor.UserID: "owner"})

	f := &handlerFixture{
		store:        store,
		ledger:       ledger,
		transactions: NewTransactionHandler(ledger, queries, RespondJSON, RespondError),
		balances:     NewBalanceHandler(ledger, RespondJSON, RespondError),
		accounts:     NewAccountHandler(application.NewAccountService(store), RespondJSON, RespondError),
		categories:   NewCategoryHandler(application.NewCategoryService(store), RespondJSON, RespondError),
		accountID:    account.ID,
		categoryID:   category.ID,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /transactions", f.transactions.GetTransactions)
	mux.HandleFunc("POST /transactions", f.transactions.RecordTransaction)
	mux.HandleFunc("GET /transactions/{transactionID}", f.transactions.GetTransaction)
	mux.HandleFunc("PUT /transactions/{transactionID}", f.transactions.AmendTransaction)
	mux.HandleFunc("DELETE /transactions/{transactionID}", f.transactions.DeleteTransaction)
	mux.HandleFunc("GET /balances", f.balances.GetBalances)
	mux.HandleFunc("GET /balances/verify", f.balances.VerifyBalances)
	mux.HandleFunc("GET /balances/{accountID}", f.balances.GetBalance)
	mux.HandleFunc("GET /accounts", f.accounts.GetAccounts)
	mux.HandleFunc("GET /accounts/{accountID}", f.accounts.GetAccount)
	mux.HandleFunc("GET /categories", f.categories.GetCategories)
	f.mux = mux
	return f
}

func (f *handlerFixture) body(amount interface{}, action int) map[string]interface{} {
	return map[string]interface{}{
		"account_id":  f.accountID,
		"category_id": f.categoryID,
		"amount":      amount,
		"action":      action,
		"date":        "2024-03-01",
		"description": "March salary",
	}
}

// do sends a request as actor; an empty actor sends it unauthenticated.
func (f *handlerFixture) do(t *testing.T, actor domain.Actor, method, path string, payload interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Buffer
	switch p := payload.(type) {
	case nil:
		reader = &bytes.Buffer{}
	case string:
		reader = bytes.NewBufferString(p)
	default:
		encoded, err := json.Marshal(p)
		require.NoError(t, err)
		reader = bytes.NewBuffer(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if actor.UserID != "" {
		req = req.WithContext(auth.WithActor(req.Context(), actor))
	}
	w := httptest.NewRecorder()
	f.mux.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&response))
	}
	return w, response
}

func data(t *testing.T, response map[string]interface{}) map[string]interface{} {
	t.Helper()
	d, ok := response["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %v", response)
	return d
}
