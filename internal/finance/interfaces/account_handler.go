package interfaces

import (
	"context"
	"net/http"
	"strconv"

	"github.com/sebuszqo/FinanceLedger/internal/finance/domain"
)

type AccountServiceInterface interface {
	GetActiveAccounts(ctx context.Context) ([]domain.Account, error)
	GetAccount(ctx context.Context, accountID int) (*domain.Account, error)
}

type AccountHandler struct {
	service      AccountServiceInterface
	respondJSON  RespondJSONFunc
	respondError RespondErrorFunc
}

func NewAccountHandler(
	service AccountServiceInterface,
	respondJSON RespondJSONFunc,
	respondError RespondErrorFunc,
) *AccountHandler {
	if service == nil || respondJSON == nil || respondError == nil {
		panic("Service and response functions must not be nil")
	}
	return &AccountHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

func (h *AccountHandler) GetAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.GetActiveAccounts(r.Context())
	if err != nil {
		respondServiceError(w, r, h.respondError, err, "Failed to retrieve accounts")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Accounts retrieved successfully.",
		"data":    accounts,
	})
}

func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.Atoi(r.PathValue("accountID"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid account ID")
		return
	}

	account, err := h.service.GetAccount(r.Context(), accountID)
	if err != nil {
		respondServiceError(w, r, h.respondError, err, "Failed to retrieve account")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Account retrieved successfully.",
		"data":    account,
	})
}
