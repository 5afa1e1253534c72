package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/groupchat/groupchat/internal/models"
	"github.com/groupchat/groupchat/internal/sessions"
	"github.com/groupchat/groupchat/internal/tokens"
	"github.com/groupchat/groupchat/pkg/logger"
	"github.com/groupchat/groupchat/pkg/metrics"
	"github.com/groupchat/groupchat/pkg/response"
)

// IdentityKey is the gin context key holding the authenticated
// models.Identity after the auth gate admits a request.
const IdentityKey = "identity"

// TokenKey holds the raw bearer token for the admitted request, so logout can
// revoke exactly the credential that was presented.
const TokenKey = "token"

// GateConfig tunes the auth gate.
type GateConfig struct {
	// AdminPatterns lists substrings of request paths that require the admin
	// role. Matching is a plain substring test against the URL path.
	AdminPatterns []string
}

// DefaultAdminPatterns guards the account management surface.
var DefaultAdminPatterns = []string{"/api/users/add", "/api/users/edit", "/api/users"}

// AuthGate returns the middleware protecting the API. Decisions, in order:
// missing token 401, blacklisted 401, invalid or expired 401, admin-only
// path with a non-admin role 403; otherwise the identity and raw token are
// attached to the request context.
func AuthGate(issuer *tokens.Issuer, blacklist sessions.Blacklist, cfg GateConfig) gin.HandlerFunc {
	patterns := cfg.AdminPatterns
	if patterns == nil {
		patterns = DefaultAdminPatterns
	}
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			metrics.AuthDecisions.WithLabelValues("no_token").Inc()
			response.Abort(c, http.StatusUnauthorized, "authentication token is required")
			return
		}
		revoked, err := blacklist.IsRevoked(c.Request.Context(), raw)
		if err != nil {
			logger.Errorf("auth: blacklist lookup failed: %v", err)
			response.Abort(c, http.StatusInternalServerError, "could not verify session")
			return
		}
		if revoked {
			metrics.AuthDecisions.WithLabelValues("blacklisted").Inc()
			response.Abort(c, http.StatusUnauthorized, "session has been logged out")
			return
		}
		id, err := issuer.Verify(raw)
		if err != nil {
			metrics.AuthDecisions.WithLabelValues("invalid_token").Inc()
			response.Abort(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		if matchesAny(c.Request.URL.Path, patterns) && id.Role != models.RoleAdmin {
			metrics.AuthDecisions.WithLabelValues("forbidden").Inc()
			response.Abort(c, http.StatusForbidden, "admin access required")
			return
		}
		metrics.AuthDecisions.WithLabelValues("admitted").Inc()
		c.Set(IdentityKey, id)
		c.Set(TokenKey, raw)
		c.Next()
	}
}

// bearerToken pulls the token from the Authorization header. Both a bare
// token and the "Bearer <token>" form are accepted.
func bearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if h == "" {
		return ""
	}
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return h
}

func matchesAny(path string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}

// CurrentIdentity returns the identity the auth gate attached, if any.
func CurrentIdentity(c *gin.Context) (models.Identity, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return models.Identity{}, false
	}
	id, ok := v.(models.Identity)
	return id, ok
}
