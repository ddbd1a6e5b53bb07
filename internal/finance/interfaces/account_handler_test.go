package interfaces

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAccounts_HidesInactive(t *testing.T) {
	f := newHandlerFixture(t)

	w, response := f.do(t, ownerActor, http.MethodGet, "/accounts", nil)

	require.Equal(t, http.StatusOK, w.Code)
	accounts := response["data"].([]interface{})
	require.Len(t, accounts, 1)
	assert.Equal(t, "CHK", accounts[0].(map[string]interface{})["abbreviation"])
}

func TestGetAccount(t *testing.T) {
	f := newHandlerFixture(t)

	w, response := f.do(t, ownerActor, http.MethodGet, "/accounts/2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Closed", data(t, response)["name"])

	w, _ = f.do(t, ownerActor, http.MethodGet, "/accounts/42", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = f.do(t, ownerActor, http.MethodGet, "/accounts/first", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetCategories(t *testing.T) {
	f := newHandlerFixture(t)

	w, response := f.do(t, ownerActor, http.MethodGet, "/categories", nil)

	require.Equal(t, http.StatusOK, w.Code)
	categories := response["data"].([]interface{})
	require.Len(t, categories, 1)
	assert.Equal(t, "Salary", categories[0].(map[string]interface{})["name"])
}
