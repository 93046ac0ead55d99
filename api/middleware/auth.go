package middleware

import (
	"net/http"
	"strings"

	"github.com/tradelinkhq/tradelink-backend/api/responses"
	pkgauth "github.com/tradelinkhq/tradelink-backend/pkg/auth"
	"github.com/tradelinkhq/tradelink-backend/pkg/auth/session"
	"github.com/tradelinkhq/tradelink-backend/pkg/config"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the claims.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			if claims.ID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			if verifier != nil {
				ok, err := verifier.HasSession(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
					return
				}
			}

			ctx := WithProfileID(r.Context(), claims.ProfileID.String())
			ctx = WithRole(ctx, string(claims.Role))
			if claims.ScopeID != nil {
				ctx = WithScopeID(ctx, claims.ScopeID.String())
			}

			if logg != nil {
				ctx = logg.WithProfileID(ctx, claims.ProfileID.String())
				ctx = logg.WithActorRole(ctx, string(claims.Role))
				if claims.ScopeID != nil {
					ctx = logg.WithScopeID(ctx, claims.ScopeID.String())
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
