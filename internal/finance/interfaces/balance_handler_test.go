package interfaces

import (
	"net/http"
	"testing"

	"github.com/sebuszqo/FinanceLedger/internal/finance/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBalance(t *testing.T) {
	f := newHandlerFixture(t)
	f.do(t, ownerActor, http.MethodPost, "/transactions", f.body("100.00", 1))

	w, response := f.do(t, ownerActor, http.MethodGet, "/balances/1", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "100", data(t, response)["value"])
}

func TestGetBalance_AccountWithoutTransactions(t *testing.T) {
	f := newHandlerFixture(t)

	w, response := f.do(t, ownerActor, http.MethodGet, "/balances/2", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", data(t, response)["value"])
}

func TestGetBalance_Errors(t *testing.T) {
	f := newHandlerFixture(t)

	w, response := f.do(t, ownerActor, http.MethodGet, "/balances/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "account not found", response["message"])

	w, response = f.do(t, ownerActor, http.MethodGet, "/balances/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid account ID", response["message"])
}

func TestGetBalances(t *testing.T) {
	f := newHandlerFixture(t)
	f.do(t, ownerActor, http.MethodPost, "/transactions", f.body("100.00", 1))

	w, response := f.do(t, ownerActor, http.MethodGet, "/balances", nil)

	require.Equal(t, http.StatusOK, w.Code)
	balances := response["data"].([]interface{})
	require.Len(t, balances, 1)
	account := balances[0].(map[string]interface{})["account"].(map[string]interface{})
	assert.Equal(t, "Checking", account["name"])
}

func TestVerifyBalances(t *testing.T) {
	f := newHandlerFixture(t)
	f.do(t, ownerActor, http.MethodPost, "/transactions", f.body("100.00", 1))

	w, response := f.do(t, auditorActor, http.MethodGet, "/balances/verify", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, response["consistent"])
	assert.Empty(t, response["data"])

	f.store.SetBalance(f.accountID, decimal.RequireFromString("1"))
	_, response = f.do(t, auditorActor, http.MethodGet, "/balances/verify", nil)
	assert.Equal(t, false, response["consistent"])
	assert.Equal(t, "Balance drift detected.", response["message"])
	assert.Len(t, response["data"], 1)
}

func TestVerifyBalances_RequiresViewAll(t *testing.T) {
	f := newHandlerFixture(t)

	w, _ := f.do(t, ownerActor, http.MethodGet, "/balances/verify", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = f.do(t, domain.Actor{}, http.MethodGet, "/balances/verify", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
