package middleware

import (
	"strings"

	"go-hris-leave/internal/auth"
	autherrors "go-hris-leave/internal/auth/errors"
	"go-hris-leave/internal/shared/apperror"
	"go-hris-leave/internal/shared/contextutil"
	"go-hris-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
)

const (
	ContextEmployeeID = "employee_id"
	ContextRole       = "role"
)

// TokenFromRequest looks for a bearer header, then the access_token cookie,
// then (when allowQuery is set) the access_token query parameter. Browsers
// cannot attach headers to a WebSocket handshake.
func TokenFromRequest(c *gin.Context, allowQuery bool) string {
	if token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); found && token != "" {
		return token
	}
	if cookie, err := c.Cookie("access_token"); err == nil && cookie != "" {
		return cookie
	}
	if allowQuery {
		return c.Query("access_token")
	}
	return ""
}

func AuthMiddleware(secret string) gin.HandlerFunc {
	return authenticate(secret, false)
}

// WebSocketAuth is AuthMiddleware that also accepts the token as a query parameter.
func WebSocketAuth(secret string) gin.HandlerFunc {
	return authenticate(secret, true)
}

func authenticate(secret string, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := auth.ParseToken(secret, TokenFromRequest(c, allowQuery))
		if err != nil {
			appErr, ok := err.(*apperror.AppError)
			if !ok {
				appErr = autherrors.ErrInvalidToken
			}
			response.AbortWithAppError(c, appErr)
			return
		}

		c.Set(ContextEmployeeID, id.EmployeeID)
		c.Set(ContextRole, id.Role)
		c.Request = c.Request.WithContext(contextutil.WithEmployeeID(c.Request.Context(), id.EmployeeID))

		c.Next()
	}
}

// EmployeeID returns the authenticated employee, or 0 outside AuthMiddleware.
func EmployeeID(c *gin.Context) int64 {
	return c.GetInt64(ContextEmployeeID)
}

func Role(c *gin.Context) string {
	return c.GetString(ContextRole)
}
