package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sebuszqo/FinanceLedger/internal/finance/domain"
	"github.com/sebuszqo/FinanceLedger/internal/log"
	"github.com/sebuszqo/FinanceLedger/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsers struct {
	users map[string]*user.User
	err   error
}

func (s *stubUsers) GetUserByID(_ context.Context, userID string) (*user.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	found, ok := s.users[userID]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return found, nil
}

func TestJWTAccessTokenMiddleware(t *testing.T) {
	manager := newTestJWTManager(t)
	users := &stubUsers{users: map[string]*user.User{
		"auditor": {ID: "auditor", Login: "auditor", CanViewAll: true},
	}}

	validToken, err := manager.GenerateAccessJWT("auditor", time.Minute)
	require.NoError(t, err)
	expiredToken, err := manager.GenerateAccessJWT("auditor", -time.Minute)
	require.NoError(t, err)
	unknownToken, err := manager.GenerateAccessJWT("ghost", time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name           string
		header         string
		lookupErr      error
		expectedStatus int
		expectedMsg    string
	}{
		{name: "valid token", header: "Bearer " + validToken, expectedStatus: http.StatusOK},
		{name: "missing header", header: "", expectedStatus: http.StatusUnauthorized, expectedMsg: "Authorization header is required"},
		{name: "not a bearer token", header: validToken, expectedStatus: http.StatusUnauthorized, expectedMsg: "Invalid token format"},
		{name: "garbage token", header: "Bearer abc.def.ghi", expectedStatus: http.StatusUnauthorized, expectedMsg: "Invalid or expired token"},
		{name: "expired token", header: "Bearer " + expiredToken, expectedStatus: http.StatusUnauthorized, expectedMsg: ErrExpiredJWTToken.Error()},
		{name: "unknown user", header: "Bearer " + unknownToken, expectedStatus: http.StatusUnauthorized, expectedMsg: "user not found"},
		{
			name:           "user lookup failure",
			header:         "Bearer " + validToken,
			lookupErr:      errors.New("connection refused"),
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users.err = tt.lookupErr
			authenticator := NewAuthenticator(manager, users, log.Discard())

			var seen domain.Actor
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				actor, ok := ActorFromContext(r.Context())
				require.True(t, ok)
				seen = actor
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/protected/balances", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()

			authenticator.JWTAccessTokenMiddleware()(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, domain.Actor{UserID: "auditor", CanViewAll: true}, seen)
				return
			}
			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, "error", body.Status)
			assert.Equal(t, tt.expectedMsg, body.Message)
		})
	}
}

func TestActorFromContext_Missing(t *testing.T) {
	_, ok := ActorFromContext(context.Background())
	assert.False(t, ok)
}
