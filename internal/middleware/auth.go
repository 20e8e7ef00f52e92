package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"

	"github.com/GregMSThompson/imihigo-backend/internal/errs"
	"github.com/GregMSThompson/imihigo-backend/internal/models"
	"github.com/GregMSThompson/imihigo-backend/internal/response"
	"github.com/GregMSThompson/imihigo-backend/pkg/logger"
)

// tokenVerifier is satisfied by *auth.Client.
type tokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type userLookup interface {
	GetUser(ctx context.Context, uid string) (*models.User, error)
}

type Middleware struct {
	Verifier        tokenVerifier
	Users           userLookup
	ResponseHandler response.ResponseHandler
}

func NewMiddleware(verifier tokenVerifier, users userLookup, rh response.ResponseHandler) *Middleware {
	return &Middleware{Verifier: verifier, Users: users, ResponseHandler: rh}
}

// context key
type contextKey string

const (
	UIDKey   contextKey = "uid"
	EmailKey contextKey = "email"
)

// FirebaseAuth verifies the bearer ID token and stores the caller's uid in
// the request context.
func (m *Middleware) FirebaseAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			m.ResponseHandler.HandleError(w, r, errs.NewUnauthorizedError("missing Authorization header"))
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.ResponseHandler.HandleError(w, r, errs.NewUnauthorizedError("invalid Authorization header"))
			return
		}

		token, err := m.Verifier.VerifyIDToken(r.Context(), parts[1])
		if err != nil {
			logger.FromContext(r.Context()).Warn("token verification failed", "error", err)
			m.ResponseHandler.HandleError(w, r, errs.NewUnauthorizedError("invalid or expired token"))
			return
		}

		ctx := context.WithValue(r.Context(), UIDKey, token.UID)
		if email, ok := token.Claims["email"].(string); ok {
			ctx = context.WithValue(ctx, EmailKey, email)
		}
		_, ctx = logger.With(ctx, "uid", token.UID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole lets the request through only when the authenticated account
// has the given role. It must run after FirebaseAuth.
func (m *Middleware) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid := UID(r.Context())
			if uid == "" {
				m.ResponseHandler.HandleError(w, r, errs.NewUnauthorizedError("authentication required"))
				return
			}
			user, err := m.Users.GetUser(r.Context(), uid)
			if err != nil {
				m.ResponseHandler.HandleError(w, r, err)
				return
			}
			if !user.IsActive || !strings.EqualFold(user.Role, role) {
				logger.FromContext(r.Context()).Warn("role check failed",
					"uid", uid,
					"email", Email(r.Context()),
					"required_role", role,
					"role", user.Role)
				m.ResponseHandler.HandleError(w, r, errs.NewForbiddenError(role+" role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Helper to extract UID
func UID(ctx context.Context) string {
	uid, _ := ctx.Value(UIDKey).(string)
	return uid
}

func Email(ctx context.Context) string {
	email, _ := ctx.Value(EmailKey).(string)
	return email
}
