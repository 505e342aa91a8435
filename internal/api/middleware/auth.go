package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	appErrors "github.com/zenjaura/marketplace/internal/errors"
	"github.com/zenjaura/marketplace/internal/models"
	"github.com/zenjaura/marketplace/internal/utils/response"
)

type userContextKey struct{}

// UserContextKey holds the *models.Claims of the authenticated caller.
var UserContextKey = userContextKey{}

type AuthMiddleware struct {
	jwtKey []byte
}

func NewAuthMiddleware(jwtKey []byte) *AuthMiddleware {
	return &AuthMiddleware{jwtKey: jwtKey}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := LoggerFromContext(r.Context())

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Error(w, appErrors.UnauthorizedError("Authorization header is required"))
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" || strings.Contains(tokenString, " ") {
			logger.Warn("Invalid authorization header format")
			response.Error(w, appErrors.UnauthorizedError("Invalid authorization format"))
			return
		}

		claims, err := m.parse(tokenString)
		if err != nil {
			logger.Warn("JWT validation failed", slog.Any("error", err))
			response.Error(w, appErrors.UnauthorizedError("Invalid or expired token"))
			return
		}

		requestLogger := logger.With(slog.String("userId", claims.UserID.String()), slog.String("role", string(claims.Role)))

		ctx := WithClaims(r.Context(), claims)
		ctx = WithLogger(ctx, requestLogger)

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func (m *AuthMiddleware) parse(tokenString string) (*models.Claims, error) {

	claims := &models.Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return m.jwtKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return claims, nil
}

// Optional attaches the caller's claims when a valid bearer token is sent and
// otherwise lets the request through anonymously.
func (m *AuthMiddleware) Optional(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		tokenString, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || tokenString == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.parse(tokenString)
		if err != nil {
			LoggerFromContext(r.Context()).Debug("Ignoring invalid optional token", slog.Any("error", err))
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	}
}

// RequireRole must run after Authenticate.
func RequireRole(roles ...models.Role) func(http.Handler) http.HandlerFunc {
	return func(next http.Handler) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {

			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				response.Error(w, appErrors.UnauthorizedError("Authentication required"))
				return
			}

			if !slices.Contains(roles, claims.Role) {
				LoggerFromContext(r.Context()).Warn("Role not permitted", slog.String("role", string(claims.Role)))
				response.Error(w, appErrors.ForbiddenError("You do not have permission to perform this action"))
				return
			}

			next.ServeHTTP(w, r)
		}
	}
}

var RequireAdmin = RequireRole(models.RoleAdmin)

func WithClaims(ctx context.Context, claims *models.Claims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}

func ClaimsFromContext(ctx context.Context) (*models.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*models.Claims)
	return claims, ok && claims != nil
}
