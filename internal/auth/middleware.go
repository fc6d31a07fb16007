package auth

import (
	"context"
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"eventure/internal/logger"
	"eventure/internal/models"
	"eventure/internal/utils"
)

type contextKey string

const identityContextKey contextKey = "identity"

// UserLoader resolves a token subject to a stored user.
type UserLoader interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Middleware authenticates requests and attaches the resolved
// identity to the request context.
type Middleware struct {
	Tokens *TokenService
	Users  UserLoader
	Cache  *IdentityCache
	Logger *logger.Logger
}

func NewMiddleware(tokens *TokenService, users UserLoader, cache *IdentityCache, log *logger.Logger) *Middleware {
	return &Middleware{Tokens: tokens, Users: users, Cache: cache, Logger: log}
}

func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawToken, err := ExtractTokenFromRequest(r)
		if err != nil {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Not authorized, no token", err.Error()))
			return
		}

		claims, err := m.Tokens.Verify(rawToken)
		if err != nil {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Not authorized, token failed", err.Error()))
			return
		}

		user, err := m.Cache.Get(r.Context(), claims.ID)
		if err != nil && m.Logger != nil {
			m.Logger.Warn("AUTH", fmt.Sprintf("Identity cache read failed: %v", err))
		}

		if user == nil {
			userID, err := primitive.ObjectIDFromHex(claims.Subject)
			if err != nil {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Not authorized, token failed", "invalid subject claim"))
				return
			}

			user, err = m.Users.GetUserByID(r.Context(), userID)
			if err != nil {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Not authorized, token failed", err.Error()))
				return
			}
			if user == nil {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Not authorized, token failed", "user no longer exists"))
				return
			}

			if err := m.Cache.Set(r.Context(), claims.ID, user); err != nil && m.Logger != nil {
				m.Logger.Warn("AUTH", fmt.Sprintf("Identity cache write failed: %v", err))
			}
		}

		ctx := context.WithValue(r.Context(), identityContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole rejects requests whose identity role is not in the
// allowed set. Must run after Authenticate.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := Identity(r.Context())
			if identity == nil {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Not authorized", "no identity in context"))
				return
			}
			for _, role := range roles {
				if identity.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			utils.WriteJSON(w, http.StatusForbidden, utils.ErrorResponse("Not authorized", "insufficient role"))
		})
	}
}

// Identity returns the authenticated user attached by Authenticate.
func Identity(ctx context.Context) *models.User {
	if user, ok := ctx.Value(identityContextKey).(*models.User); ok {
		return user
	}
	return nil
}
