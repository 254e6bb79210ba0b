package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-ledger-api/internal/models"
	appErrors "github.com/noah-isme/campus-ledger-api/pkg/errors"
	"github.com/noah-isme/campus-ledger-api/pkg/response"
)

// RequireRoles admits only principals holding one of roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return guard(func(p models.Principal) bool {
		_, ok := allowed[p.Role]
		return ok
	})
}

// RequireCapability admits principals whose role grants c. Ownership is left
// to the services.
func RequireCapability(c models.Capability) gin.HandlerFunc {
	return guard(func(p models.Principal) bool { return p.Can(c) })
}

func guard(allow func(models.Principal) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !allow(claims.Principal()) {
			response.Error(c, appErrors.ErrUnauthorizedAction)
			c.Abort()
			return
		}
		c.Next()
	}
}
