package auth

import (
	"errors"
	"net/http"

	"github.com/mind-engage/gradaudit/internal/rbac"
)

// AttachRoleFromDB replaces the token's role with the one in the users table,
// so a role change takes effect before the token expires. Subjects that are
// not in the table keep their claimed role only when it is admin (the config
// admin) or when allowClaimFallback is set.
func AttachRoleFromDB(users *Users, allowClaimFallback bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			claimRole := rbac.RoleFromContext(ctx)

			u, err := users.Lookup(ctx, SubjectFromContext(ctx))
			switch {
			case err == nil:
				next.ServeHTTP(w, r.WithContext(rbac.WithRole(ctx, u.Role)))
			case errors.Is(err, ErrUnknownUser) && (claimRole == "admin" || (allowClaimFallback && claimRole != "")):
				next.ServeHTTP(w, r)
			default:
				http.Error(w, "forbidden", http.StatusForbidden)
			}
		})
	}
}
