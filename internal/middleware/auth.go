package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/cartside/backend/internal/domain"
	"github.com/cartside/backend/internal/usecase"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the immutable per-request identity value threaded through
// context. It is attached once by Authenticate and only read downstream.
type Identity struct {
	UserID          uuid.UUID
	Role            string
	IsAuthenticated bool
}

// WithIdentity returns a child context carrying id. Pure: neither the
// request nor the parent context is mutated.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func GetIdentity(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

type AuthMiddleware struct {
	sessions *usecase.SessionUsecase
}

func NewAuthMiddleware(sessions *usecase.SessionUsecase) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// Authenticate verifies the access token (cookie first, Authorization header
// as fallback for non-browser clients) and attaches the decoded identity.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := accessTokenFrom(r)
		if tokenStr == "" {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		payload, err := m.sessions.VerifyAccess(tokenStr)
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := WithIdentity(r.Context(), Identity{
			UserID:          payload.UserID,
			Role:            payload.Role,
			IsAuthenticated: true,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminOnly must run after Authenticate.
func (m *AuthMiddleware) AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetIdentity(r.Context())
		if !ok || !id.IsAuthenticated {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if id.Role != domain.RoleAdmin {
			http.Error(w, "Admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func accessTokenFrom(r *http.Request) string {
	if cookie, err := r.Cookie("accessToken"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	authHeader := r.Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}
