package interfaces

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/sebuszqo/FinanceLedger/internal/finance/application"
	"github.com/sebuszqo/FinanceLedger/internal/finance/domain"
)

type LedgerServiceInterface interface {
	Record(ctx context.Context, actor domain.Actor, fields domain.TransactionFields) (*domain.Transaction, error)
	Amend(ctx context.Context, actor domain.Actor, transactionID string, amendment domain.Amendment) (*domain.Transaction, error)
	Delete(ctx context.Context, actor domain.Actor, transactionID string) error
}

type TransactionQueryInterface interface {
	ListTransactions(ctx context.Context, actor domain.Actor, filter domain.TransactionFilter) ([]application.TransactionView, error)
	GetTransaction(ctx context.Context, actor domain.Actor, transactionID string) (*application.TransactionView, error)
	Describe(ctx context.Context, transaction domain.Transaction) (*application.TransactionView, error)
}

type TransactionHandler struct {
	ledger       LedgerServiceInterface
	queries      TransactionQueryInterface
	respondJSON  RespondJSONFunc
	respondError RespondErrorFunc
}

func NewTransactionHandler(
	ledger LedgerServiceInterface,
	queries TransactionQueryInterface,
	respondJSON RespondJSONFunc,
	respondError RespondErrorFunc,
) *TransactionHandler {
	if ledger == nil || queries == nil {
		log.Fatal("Services must not be nil")
		return nil
	}
	if respondJSON == nil {
		log.Fatal("RespondJSON function must not be nil")
		return nil
	}
	if respondError == nil {
		log.Fatal("RespondError function must not be nil")
		return nil
	}
	return &TransactionHandler{
		ledger:       ledger,
		queries:      queries,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

func (h *TransactionHandler) decodeFields(w http.ResponseWriter, r *http.Request) (domain.TransactionFields, bool) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return domain.TransactionFields{}, false
	}
	fields, err := req.toFields()
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation errors occurred", validationMessages(err))
		return domain.TransactionFields{}, false
	}
	return fields, true
}

// respondTransaction answers with the written transaction and its display names.
func (h *TransactionHandler) respondTransaction(w http.ResponseWriter, r *http.Request, status int, message string, transaction *domain.Transaction) {
	view, err := h.queries.Describe(r.Context(), *transaction)
	if err != nil {
		view = &application.TransactionView{Transaction: *transaction}
	}
	h.respondJSON(w, status, map[string]interface{}{
		"status":  "success",
		"message": message,
		"data":    view,
	})
}

func (h *TransactionHandler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	fields, ok := h.decodeFields(w, r)
	if !ok {
		return
	}

	transaction, err := h.ledger.Record(r.Context(), actor, fields)
	if err != nil {
		respondServiceError(w, r, h.respondError, err, "Failed to create transaction")
		return
	}
	h.respondTransaction(w, r, http.StatusCreated, "Transaction successfully created.", transaction)
}

func (h *TransactionHandler) AmendTransaction(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	transactionID := r.PathValue("transactionID")
	if transactionID == "" {
		h.respondError(w, http.StatusBadRequest, "Transaction ID is required")
		return
	}
	fields, ok := h.decodeFields(w, r)
	if !ok {
		return
	}

	transaction, err := h.ledger.Amend(r.Context(), actor, transactionID, fields)
	if err != nil {
		respondServiceError(w, r, h.respondError, err, "Failed to update transaction")
		return
	}
	h.respondTransaction(w, r, http.StatusOK, "Transaction successfully updated.", transaction)
}

func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	transactionID := r.PathValue("transactionID")
	if transactionID == "" {
		h.respondError(w, http.StatusBadRequest, "Transaction ID is required")
		return
	}

	if err := h.ledger.Delete(r.Context(), actor, transactionID); err != nil {
		respondServiceError(w, r, h.respondError, err, "Failed to delete transaction")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Transaction successfully deleted.",
	})
}

func (h *TransactionHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	filter, errMsg := parseTransactionFilter(r)
	if errMsg != "" {
		h.respondError(w, http.StatusBadRequest, errMsg)
		return
	}

	transactions, err := h.queries.ListTransactions(r.Context(), actor, filter)
	if err != nil {
		respondServiceError(w, r, h.respondError, err, "Failed to retrieve transactions")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Transactions retrieved successfully.",
		"data":    transactions,
		"page":    filter.Page,
		"limit":   filter.Limit,
	})
}

func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	transaction, err := h.queries.GetTransaction(r.Context(), actor, r.PathValue("transactionID"))
	if err != nil {
		respondServiceError(w, r, h.respondError, err, "Failed to retrieve transaction")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Transaction retrieved successfully.",
		"data":    transaction,
	})
}

func parseTransactionFilter(r *http.Request) (domain.TransactionFilter, string) {
	query := r.URL.Query()
	filter := domain.TransactionFilter{Limit: domain.DefaultTransactionLimit, Page: 1}

	if limitStr := query.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			return filter, "Invalid limit"
		}
		if limit > domain.MaxTransactionLimit {
			limit = domain.MaxTransactionLimit
		}
		filter.Limit = limit
	}
	if pageStr := query.Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page <= 0 || page > domain.MaxTransactionPage {
			return filter, "Invalid page"
		}
		filter.Page = page
	}
	if accountStr := query.Get("account"); accountStr != "" {
		accountID, err := strconv.Atoi(accountStr)
		if err != nil {
			return filter, "Invalid account ID"
		}
		filter.AccountID = &accountID
	}
	if startStr := query.Get("start_date"); startStr != "" {
		startDate, err := time.Parse(domain.DateLayout, startStr)
		if err != nil {
			return filter, "Invalid start date format"
		}
		filter.StartDate = &startDate
	}
	if endStr := query.Get("end_date"); endStr != "" {
		endDate, err := time.Parse(domain.DateLayout, endStr)
		if err != nil {
			return filter, "Invalid end date format"
		}
		filter.EndDate = &endDate
	}
	return filter, ""
}
