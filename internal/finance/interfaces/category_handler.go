package interfaces

import (
	"context"
	"net/http"

	"github.com/sebuszqo/FinanceLedger/internal/finance/domain"
)

type CategoryServiceInterface interface {
	GetActiveCategories(ctx context.Context) ([]domain.Category, error)
}

type CategoryHandler struct {
	service      CategoryServiceInterface
	respondJSON  RespondJSONFunc
	respondError RespondErrorFunc
}

func NewCategoryHandler(
	service CategoryServiceInterface,
	respondJSON RespondJSONFunc,
	respondError RespondErrorFunc,
) *CategoryHandler {
	if service == nil || respondJSON == nil || respondError == nil {
		panic("Service and response functions must not be nil")
	}
	return &CategoryHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

func (h *CategoryHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.GetActiveCategories(r.Context())
	if err != nil {
		respondServiceError(w, r, h.respondError, err, "Failed to retrieve categories")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Categories retrieved successfully.",
		"data":    categories,
	})
}
