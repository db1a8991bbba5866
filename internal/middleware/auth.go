package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rizalarfiyan/siakad-backend/internal/model"
	"github.com/rizalarfiyan/siakad-backend/internal/service"
	"github.com/rizalarfiyan/siakad-backend/pkg/response"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

type AuthMiddleware struct {
	auth service.AuthService
}

func NewAuthMiddleware(auth service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")

		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		// Fallback to query parameter "token" (used by the WebSocket feed).
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			abort(c, http.StatusUnauthorized, "authorization required")
			return
		}

		claims, err := m.auth.ParseToken(tokenString)
		if err != nil {
			abort(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// RequireRole allows the request through only when the token's role is one of
// roles. SUPER_ADMIN passes every guard that admits ADMIN.
func (m *AuthMiddleware) RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := CurrentRole(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "user not authenticated")
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
			if allowed == model.RoleAdmin && role == model.RoleSuperAdmin {
				c.Next()
				return
			}
		}

		abort(c, http.StatusForbidden, "insufficient role")
	}
}

// CurrentUserID returns the authenticated user's id from the context.
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	idStr := c.GetString(ContextUserID)
	if idStr == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// CurrentRole returns the authenticated user's role from the context.
func CurrentRole(c *gin.Context) (model.Role, bool) {
	value, exists := c.Get(ContextRole)
	if !exists {
		return "", false
	}
	role, ok := value.(model.Role)
	return role, ok
}

func abort(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, response.Envelope{
		StatusCode: code,
		Data:       nil,
		Message:    message,
		Success:    false,
	})
}
