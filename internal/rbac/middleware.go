package rbac

import (
	"net/http"

	"gramsetu-backend/internal/auth"

	"github.com/gin-gonic/gin"
)

// RequireDistrict enforces the district scoping invariant: district must exist in context.
// This does not validate jurisdiction; that belongs to the authorization layer once persistence exists.
func RequireDistrict() gin.HandlerFunc {
	return func(c *gin.Context) {
		district, err := auth.District(c.Request.Context())
		if err != nil || district == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "district required"})
			return
		}
		c.Next()
	}
}

// RequireAnyRole allows access if the caller has any of the provided roles.
// Rules:
// - super_admin bypasses all checks
// - auditor is a hidden role, and will be denied unless explicitly allowed
// - district isolation is enforced via RequireDistrict (use it in the chain)
func RequireAnyRole(allowed ...string) gin.HandlerFunc {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, r := range allowed {
		allowedSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role, err := auth.Role(c.Request.Context())
		if err != nil || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "role required"})
			return
		}

		// super_admin bypasses all
		if IsSuperAdmin(role) {
			c.Next()
			return
		}

		// hidden roles are opt-in only
		if IsHiddenRole(role) {
			if _, ok := allowedSet[role]; !ok {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
				return
			}
		}

		if _, ok := allowedSet[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
