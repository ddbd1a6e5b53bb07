package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sebuszqo/FinanceLedger/internal/finance/domain"
	"github.com/sebuszqo/FinanceLedger/internal/log"
	"github.com/sebuszqo/FinanceLedger/internal/user"
)

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type contextKey struct{}

var actorKey = contextKey{}

// UserLookup loads the user behind a validated token.
type UserLookup interface {
	GetUserByID(ctx context.Context, userID string) (*user.User, error)
}

type Authenticator struct {
	jwtManager JWTManagerInterface
	users      UserLookup
	logger     *log.Logger
}

func NewAuthenticator(jwtManager JWTManagerInterface, users UserLookup, logger *log.Logger) *Authenticator {
	return &Authenticator{
		jwtManager: jwtManager,
		users:      users,
		logger:     logger.WithComponent(log.ComponentAuth),
	}
}

// WithActor stores the authenticated actor in the context.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(domain.Actor)
	return actor, ok
}

// JWTAccessTokenMiddleware authenticates the bearer token and attaches the actor to the request.
func (a *Authenticator) JWTAccessTokenMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, http.StatusUnauthorized, "Authorization header is required")
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				writeJSONError(w, http.StatusUnauthorized, "Invalid token format")
				return
			}

			userID, err := a.jwtManager.ValidateAccessToken(tokenString)
			if err != nil {
				if errors.Is(err, ErrExpiredJWTToken) {
					writeJSONError(w, http.StatusUnauthorized, ErrExpiredJWTToken.Error())
					return
				}
				writeJSONError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			existingUser, err := a.users.GetUserByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, user.ErrUserNotFound) {
					writeJSONError(w, http.StatusUnauthorized, user.ErrUserNotFound.Error())
					return
				}
				a.logger.ErrorContext(r.Context(), "failed to load authenticated user",
					log.FieldUserID, userID,
					log.FieldError, err.Error(),
				)
				writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
				return
			}

			actor := domain.Actor{UserID: existingUser.ID, CanViewAll: existingUser.CanViewAll}
			ctx := WithActor(r.Context(), actor)
			ctx = log.NewContext(ctx, log.FromContext(ctx).With(log.FieldUserID, actor.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeJSONError writes an error response in JSON format
func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Status:  "error",
		Message: message,
	})
}
