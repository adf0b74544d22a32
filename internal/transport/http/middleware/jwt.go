package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docchat/internal/pkg/jwtutil"
	"docchat/internal/transport/http/response"
)

const ContextUserIDKey = "user_id"

// AuthJWT requires a bearer token and stores the caller's id in the context.
func AuthJWT(tokens *jwtutil.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "Token is missing")
			return
		}

		const prefix = "bearer "
		if len(authHeader) < len(prefix) || !strings.EqualFold(authHeader[:len(prefix)], prefix) {
			response.Abort(c, http.StatusUnauthorized, response.CodeInvalidToken, "invalid authorization scheme")
			return
		}

		userID, err := tokens.Verify(strings.TrimSpace(authHeader[len(prefix):]))
		if err != nil {
			switch {
			case errors.Is(err, jwtutil.ErrUnauthenticated):
				response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "Token is missing")
			case errors.Is(err, jwtutil.ErrTokenExpired):
				response.Abort(c, http.StatusUnauthorized, response.CodeTokenExpired, "Token has expired")
			default:
				response.Abort(c, http.StatusUnauthorized, response.CodeInvalidToken, "Could not validate credentials")
			}
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}

// CurrentUserID returns the id stored by AuthJWT.
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(ContextUserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}
