package commands

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/sebuszqo/FinanceLedger/internal/finance/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportDrifts_Table(t *testing.T) {
	jsonOutput = false
	var out bytes.Buffer

	err := reportDrifts(&out, []domain.BalanceDrift{{
		AccountID:  7,
		Expected:   decimal.RequireFromString("100"),
		Actual:     decimal.RequireFromString("90.5"),
		Difference: decimal.RequireFromString("-9.5"),
	}}, "consistent")

	require.NoError(t, err)
	assert.Contains(t, out.String(), "ACCOUNT")
	assert.Contains(t, out.String(), "100.00")
	assert.Contains(t, out.String(), "90.50")
	assert.Contains(t, out.String(), "-9.50")
}

func TestReportDrifts_Clean(t *testing.T) {
	jsonOutput = false
	var out bytes.Buffer

	require.NoError(t, reportDrifts(&out, nil, "consistent"))

	assert.Equal(t, "consistent\n", out.String())
}

func TestReportDrifts_JSON(t *testing.T) {
	jsonOutput = true
	defer func() { jsonOutput = false }()
	var out bytes.Buffer

	require.NoError(t, reportDrifts(&out, nil, "consistent"))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, true, decoded["consistent"])
	assert.Equal(t, []interface{}{}, decoded["drifts"])
}

func TestPrintBalances(t *testing.T) {
	var out bytes.Buffer

	printBalances(&out, []domain.AccountBalance{{
		Account:   domain.Account{ID: 1, Name: "Checking"},
		Value:     decimal.RequireFromString("12.3"),
		UpdatedAt: time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC),
	}})

	assert.Contains(t, out.String(), "Checking")
	assert.Contains(t, out.String(), "12.30")
	assert.Contains(t, out.String(), "2024-03-01 09:30:00")
}

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"migrate", "up"},
		{"migrate", "down"},
		{"migrate", "status"},
		{"balances", "list"},
		{"balances", "verify"},
		{"balances", "rebuild"},
		{"users", "create"},
		{"token"},
		{"accounts", "create"},
		{"categories", "deactivate"},
	} {
		cmd, _, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestEnvironmentAppliesFlagOverrides(t *testing.T) {
	t.Setenv("DB_CONNECTION_STRING", "postgres://env")
	dbURL = "postgres://flag"
	logLevel = "debug"
	defer func() { dbURL, logLevel = "", "" }()

	cfg, logger := environment()

	assert.Equal(t, "postgres://flag", cfg.DBConnectionString)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.NotNil(t, logger)
}
