package middleware

import (
	"net/http"

	"bestea-be/internal/auth"
	"bestea-be/internal/logger"
	"bestea-be/internal/transport"
	"bestea-be/internal/utils"

	"go.uber.org/zap"
)

// Auth resolves the caller from the access token. Requests without a token
// continue anonymously; a token that does not verify is rejected.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := auth.ExtractAccessToken(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, tokenStr)
			if err != nil {
				logger.FromCtx(r.Context()).Debug("rejected access token",
					zap.String("layer", "middleware"),
					zap.Error(err),
				)
				transport.WriteStatus(w, http.StatusUnauthorized, "INVALID_TOKEN")
				return
			}

			role := claims.Role
			if role == "" {
				role = utils.RoleUser
			}
			ctx := utils.SetUserContext(r.Context(), claims.UserID, claims.Email, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := utils.GetUserIDFromContext(r.Context()); !ok {
			transport.WriteStatus(w, http.StatusUnauthorized, "UNAUTHENTICATED")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := utils.GetUserIDFromContext(r.Context()); !ok {
			transport.WriteStatus(w, http.StatusUnauthorized, "UNAUTHENTICATED")
			return
		}
		if !utils.IsAdmin(r.Context()) {
			transport.WriteStatus(w, http.StatusForbidden, "FORBIDDEN")
			return
		}
		next.ServeHTTP(w, r)
	})
}
