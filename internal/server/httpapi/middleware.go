package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/healthdot/registry/internal/common"
	"github.com/healthdot/registry/internal/server/auth"
)

const callerKey = "caller"

// authRequired verifies the bearer token and stores the caller account in
// the request context. Requests without a valid token never reach the
// handlers behind it.
func authRequired(secretKey []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthHeaderName)
		if !strings.HasPrefix(header, common.AuthHeaderPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
			return
		}

		account, err := auth.AccountFromToken(strings.TrimPrefix(header, common.AuthHeaderPrefix), secretKey)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: err.Error()})
			return
		}

		c.Set(callerKey, account)
		c.Next()
	}
}

func caller(c *gin.Context) string {
	return c.GetString(callerKey)
}
