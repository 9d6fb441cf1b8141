package middleware

import (
	"net/http"

	"go.uber.org/zap"
)

// Decision is the result of an authorization check: either Allow or a Deny
// carrying the reason.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow grants access
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny refuses access with a reason
func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// AuthorizeRole produces the capability decision for a caller against a set
// of allowed roles. Evaluated once after identity resolution.
func AuthorizeRole(identity Identity, allowedRoles ...string) Decision {
	for _, role := range allowedRoles {
		if identity.Role == role {
			return Allow()
		}
	}
	return Deny("insufficient permissions")
}

// RequireAdmin ensures the caller has the admin role. Role mismatch is a 403,
// distinct from the 401 of a failed authentication.
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := GetIdentity(r.Context())
			if !ok {
				logger.Warn("Identity not found in context")
				RespondWithError(w, http.StatusForbidden, "admin access required")
				return
			}

			if decision := AuthorizeRole(identity, "admin"); !decision.Allowed {
				logger.Warn("Non-admin user attempted to access admin endpoint",
					zap.String("user_id", identity.UserID),
					zap.String("role", identity.Role),
				)
				RespondWithError(w, http.StatusForbidden, "admin access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole ensures the caller has one of the specified roles
func RequireRole(allowedRoles []string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := GetIdentity(r.Context())
			if !ok {
				logger.Warn("Identity not found in context")
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			decision := AuthorizeRole(identity, allowedRoles...)
			if !decision.Allowed {
				logger.Warn("User role not authorized",
					zap.String("role", identity.Role),
					zap.Strings("allowed_roles", allowedRoles),
				)
				RespondWithError(w, http.StatusForbidden, decision.Reason)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
