package api

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"github.com/AaronLay10/WishEngine/internal/config"
)

// Role represents an authorization role.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
)

// authConfig holds credentials loaded from environment variables.
type authConfig struct {
	admin   config.Credentials
	viewer  config.Credentials
	enabled bool
}

var auth *authConfig

// InitAuth loads WISH_ADMIN_USER/PASS and WISH_VIEWER_USER/PASS, honouring
// the *_FILE convention. Without admin credentials the event endpoints are
// open.
func InitAuth() error {
	admin, err := config.ResolveCredentials("WISH_ADMIN")
	if err != nil {
		return fmt.Errorf("resolve admin credentials: %w", err)
	}
	viewer, err := config.ResolveCredentials("WISH_VIEWER")
	if err != nil {
		return fmt.Errorf("resolve viewer credentials: %w", err)
	}

	auth = &authConfig{
		admin:   admin,
		viewer:  viewer,
		enabled: admin.Set(),
	}
	return nil
}

// IsAuthEnabled returns true if authentication is configured.
func IsAuthEnabled() bool {
	return auth != nil && auth.enabled
}

// authenticate checks basic auth credentials and returns the role if valid.
// Returns empty string if credentials are invalid.
func authenticate(r *http.Request) Role {
	if !IsAuthEnabled() {
		return RoleAdmin
	}

	user, pass, ok := r.BasicAuth()
	if !ok {
		return ""
	}

	if matches(auth.admin, user, pass) {
		return RoleAdmin
	}
	if auth.viewer.Set() && matches(auth.viewer, user, pass) {
		return RoleViewer
	}
	return ""
}

func matches(c config.Credentials, user, pass string) bool {
	// Evaluate both comparisons so timing does not reveal which half failed.
	u := subtle.ConstantTimeCompare([]byte(user), []byte(c.User))
	p := subtle.ConstantTimeCompare([]byte(pass), []byte(c.Pass))
	return u&p == 1
}

// requireAuth returns 401 Unauthorized with WWW-Authenticate header.
func requireAuth(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="Wish Engine"`)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}

// RequireRole wraps a handler and requires one of the specified roles.
func RequireRole(handler http.HandlerFunc, allowedRoles ...Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := authenticate(r)
		if role == "" {
			requireAuth(w)
			return
		}

		for _, allowed := range allowedRoles {
			if role == allowed {
				handler(w, r)
				return
			}
		}

		http.Error(w, "Forbidden", http.StatusForbidden)
	}
}

// RequireAnyRole wraps a handler requiring admin OR viewer role.
func RequireAnyRole(handler http.HandlerFunc) http.HandlerFunc {
	return RequireRole(handler, RoleAdmin, RoleViewer)
}

// RequireAdmin wraps a handler requiring admin role only.
func RequireAdmin(handler http.HandlerFunc) http.HandlerFunc {
	return RequireRole(handler, RoleAdmin)
}
