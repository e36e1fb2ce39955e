package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hongminglow/group-accounts/internal/auth"
	"github.com/hongminglow/group-accounts/internal/http/respond"
	"github.com/hongminglow/group-accounts/internal/permissions"
)

type contextKey string

const principalKey contextKey = "principal"

// AccessParser verifies bearer access tokens.
type AccessParser interface {
	ParseAccess(token string) (auth.Claims, error)
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *permissions.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the authenticated caller, or nil for anonymous requests.
func PrincipalFrom(ctx context.Context) *permissions.Principal {
	p, _ := ctx.Value(principalKey).(*permissions.Principal)
	return p
}

// Authenticate resolves an optional bearer token into a principal. Requests
// without an Authorization header continue anonymously; a header that does
// not verify is rejected with 401.
func Authenticate(tokens AccessParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			logger := zerolog.Ctx(r.Context())

			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				logger.Debug().Msg("invalid authorization header format")
				respond.Message(w, http.StatusUnauthorized, "Invalid authorization header.")
				return
			}
			claims, err := tokens.ParseAccess(strings.TrimSpace(raw))
			if err != nil {
				logger.Debug().Err(err).Msg("rejected bearer token")
				respond.Message(w, http.StatusUnauthorized, "Given token not valid for any token type.")
				return
			}
			userID, err := claims.UserID()
			if err != nil {
				logger.Debug().Err(err).Msg("bearer token has bad subject")
				respond.Message(w, http.StatusUnauthorized, "Given token not valid for any token type.")
				return
			}

			p := &permissions.Principal{UserID: userID, Username: claims.Username, IsStaff: claims.IsStaff}
			ctx := WithPrincipal(r.Context(), p)
			l := logger.With().Int64("user_id", userID).Logger()
			ctx = l.WithContext(ctx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
