// Package middlewares holds HTTP middleware for the checkout service.
package middlewares

import (
	"encoding/json"
	"net/http"

	"github.com/swiftcart/checkout/internal/identity"
)

// headerAdminIdentity carries the authenticated identity asserted by the
// upstream auth collaborator. This service only checks membership in the
// injected allow-list; authentication itself is out of scope.
const headerAdminIdentity = "X-Admin-Identity"

// RequireAdmin admits only requests whose asserted identity is in the
// allow-list.
func RequireAdmin(allow identity.AllowList) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(headerAdminIdentity)
			if id == "" || !allow.Contains(id) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "admin_access_denied"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
