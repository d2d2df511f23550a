package middleware

import (
	"net/http"

	pkgAuth "github.com/bloomhaus/petalboard-backend/pkg/auth"
	"github.com/bloomhaus/petalboard-backend/pkg/auth/session"
	"github.com/bloomhaus/petalboard-backend/pkg/config"
	"github.com/bloomhaus/petalboard-backend/pkg/enums"
	"github.com/bloomhaus/petalboard-backend/pkg/logger"
)

// LoginPagePath is where unauthenticated browser requests get sent.
const LoginPagePath = "/admin/login"

// PageAuth gates the browser pages. Anything short of a live admin session
// redirects to the login page instead of returning a JSON error.
func PageAuth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				redirectToLogin(w, r)
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, cookie.Value)
			if err != nil {
				redirectToLogin(w, r)
				return
			}

			if claims.Role != enums.RoleAdmin {
				redirectToLogin(w, r)
				return
			}

			if verifier != nil {
				ok, err := verifier.HasSession(r.Context(), claims.ID)
				if err != nil || !ok {
					redirectToLogin(w, r)
					return
				}
			}

			ctx := WithUserID(r.Context(), claims.UserID.String())
			ctx = WithRole(ctx, string(claims.Role))
			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, LoginPagePath, http.StatusFound)
}
