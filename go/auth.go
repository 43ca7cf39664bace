package shopserver

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	ordersdomain "github.com/Apurer/go-shop-api-server/internal/domains/orders/domain"
	userdomain "github.com/Apurer/go-shop-api-server/internal/domains/users/domain"
	userports "github.com/Apurer/go-shop-api-server/internal/domains/users/ports"
	apierrors "github.com/Apurer/go-shop-api-server/internal/shared/errors"
)

const authenticatedUserKey = "shopserver.authenticatedUser"

// AuthMiddleware resolves the session token on each request and stashes
// the account in the gin context. Requests without a token pass through
// anonymously; handlers that need an identity enforce it themselves.
func AuthMiddleware(users userports.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.Next()
			return
		}
		user, err := users.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.Next()
			return
		}
		c.Set(authenticatedUserKey, user)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(c.GetHeader("api_key"))
}

// requireUser returns the authenticated account or responds 401.
func requireUser(c *gin.Context) (*userdomain.User, bool) {
	value, ok := c.Get(authenticatedUserKey)
	if !ok {
		respondError(c, 401, errors.New("authentication required"))
		return nil, false
	}
	user, ok := value.(*userdomain.User)
	if !ok || user == nil {
		respondError(c, 401, errors.New("authentication required"))
		return nil, false
	}
	return user, true
}

// requireAdmin returns the authenticated admin account or responds
// 401/403.
func requireAdmin(c *gin.Context) (*userdomain.User, bool) {
	user, ok := requireUser(c)
	if !ok {
		return nil, false
	}
	if !user.IsAdmin() {
		respondProblem(c, apierrors.ErrForbidden.WithDetail("admin role required"))
		return nil, false
	}
	return user, true
}

func actorFor(user *userdomain.User) ordersdomain.Actor {
	return ordersdomain.Actor{UserID: user.ID, Admin: user.IsAdmin()}
}
