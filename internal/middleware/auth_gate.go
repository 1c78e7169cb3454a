package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/smart-tuition/pkg/errors"
	"github.com/noah-isme/smart-tuition/pkg/response"
)

type gateChecker interface {
	IsAuthenticated(ctx context.Context) (bool, error)
}

// AuthGate blocks ledger routes until the passcode gate has been opened. It
// is a convenience lock, not an access control boundary.
func AuthGate(checker gateChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := checker.IsAuthenticated(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "enter the passcode to continue"))
			c.Abort()
			return
		}
		c.Next()
	}
}
