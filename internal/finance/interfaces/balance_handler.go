package interfaces

import (
	"context"
	"net/http"
	"strconv"

	"github.com/sebuszqo/FinanceLedger/internal/finance/domain"
)

type BalanceServiceInterface interface {
	ReadBalance(ctx context.Context, accountID int) (domain.Balance, error)
	ListBalances(ctx context.Context) ([]domain.AccountBalance, error)
	VerifyBalances(ctx context.Context) ([]domain.BalanceDrift, error)
}

type BalanceHandler struct {
	service      BalanceServiceInterface
	respondJSON  RespondJSONFunc
	respondError RespondErrorFunc
}

func NewBalanceHandler(
	service BalanceServiceInterface,
	respondJSON RespondJSONFunc,
	respondError RespondErrorFunc,
) *BalanceHandler {
	if service == nil || respondJSON == nil || respondError == nil {
		panic("Service and response functions must not be nil")
	}
	return &BalanceHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

func (h *BalanceHandler) GetBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.service.ListBalances(r.Context())
	if err != nil {
		respondServiceError(w, r, h.respondError, err, "Failed to retrieve balances")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Balances retrieved successfully.",
		"data":    balances,
	})
}

func (h *BalanceHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.Atoi(r.PathValue("accountID"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid account ID")
		return
	}

	balance, err := h.service.ReadBalance(r.Context(), accountID)
	if err != nil {
		respondServiceError(w, r, h.respondError, err, "Failed to retrieve balance")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Balance retrieved successfully.",
		"data":    balance,
	})
}

// VerifyBalances reports drifting accounts without repairing them. It scans the whole
// ledger, so only actors that can view every transaction may run it.
func (h *BalanceHandler) VerifyBalances(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if !actor.CanViewAll {
		h.respondError(w, http.StatusForbidden, "You do not have permission to perform this action.")
		return
	}

	drifts, err := h.service.VerifyBalances(r.Context())
	if err != nil {
		respondServiceError(w, r, h.respondError, err, "Failed to verify balances")
		return
	}

	message := "All balances match their transactions."
	if len(drifts) > 0 {
		message = "Balance drift detected."
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "success",
		"message":    message,
		"consistent": len(drifts) == 0,
		"data":       drifts,
	})
}
