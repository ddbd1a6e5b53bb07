package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/sebuszqo/FinanceLedger/internal/auth"
	"github.com/sebuszqo/FinanceLedger/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceLedger/internal/finance/errors"
	"github.com/sebuszqo/FinanceLedger/internal/log"
)

type (
	RespondJSONFunc  func(w http.ResponseWriter, status int, payload interface{})
	RespondErrorFunc func(w http.ResponseWriter, status int, message string, errors ...[]string)
)

func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func RespondError(w http.ResponseWriter, status int, message string, errors ...[]string) {
	payload := map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	}

	if len(errors) > 0 && len(errors[0]) > 0 {
		payload["errors"] = errors[0]
	}

	RespondJSON(w, status, payload)
}

func actorFromRequest(r *http.Request) (domain.Actor, bool) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok || actor.UserID == "" {
		return domain.Actor{}, false
	}
	return actor, true
}

// validationMessages flattens field errors into "field: message" lines, sorted by field.
func validationMessages(err error) []string {
	var ve *financeErrors.ValidationErrors
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}
	fields := ve.Fields()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var messages []string
	for _, name := range names {
		for _, msg := range fields[name] {
			messages = append(messages, name+": "+msg)
		}
	}
	return messages
}

// respondServiceError maps ledger errors to HTTP statuses. Unknown errors are logged
// and answered with fallback.
func respondServiceError(w http.ResponseWriter, r *http.Request, respondError RespondErrorFunc, err error, fallback string) {
	var (
		refErr   *financeErrors.ReferentialIntegrityError
		conflict *financeErrors.ConcurrentUpdateConflict
		denied   *financeErrors.PermissionDenied
	)

	switch {
	case financeErrors.IsValidationErrors(err), financeErrors.IsValidationError(err):
		respondError(w, http.StatusBadRequest, "Validation errors occurred", validationMessages(err))
	case errors.As(err, &refErr):
		if refErr.InUse {
			respondError(w, http.StatusConflict, refErr.Error())
			return
		}
		respondError(w, http.StatusBadRequest, refErr.Error(), []string{refErr.Entity + "_id: " + refErr.Error()})
	case errors.As(err, &conflict):
		respondError(w, http.StatusConflict, "The transaction was modified concurrently, please retry.")
	case errors.As(err, &denied):
		respondError(w, http.StatusForbidden, "You do not have permission to perform this action.")
	case errors.Is(err, financeErrors.ErrTransactionNotFound),
		errors.Is(err, financeErrors.ErrAccountNotFound),
		errors.Is(err, financeErrors.ErrCategoryNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), fallback,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldError, err.Error(),
		)
		respondError(w, http.StatusInternalServerError, fallback)
	}
}
