package middleware

import (
	"context"
	"net/http"
	"strings"

	"vitasurvey/internal/model"
)

type contextKey string

const MemberIDKey contextKey = "memberId"

// TokenValidator checks member tokens (implemented by service.AuthService)
type TokenValidator interface {
	ValidateMemberToken(token string) (*model.MemberClaims, error)
}

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authSvc TokenValidator
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireMember validates the member JWT from the Authorization header or the token
// query param
func (m *AuthMiddleware) RequireMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			// Try query param for WebSocket
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			http.Error(w, `{"error":"missing authorization"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateMemberToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := WithMemberID(r.Context(), claims.MemberID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithMemberID stores the authenticated member id in ctx
func WithMemberID(ctx context.Context, memberID string) context.Context {
	return context.WithValue(ctx, MemberIDKey, memberID)
}

// GetMemberID extracts member ID from context
func GetMemberID(ctx context.Context) string {
	if v, ok := ctx.Value(MemberIDKey).(string); ok {
		return v
	}
	return ""
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
