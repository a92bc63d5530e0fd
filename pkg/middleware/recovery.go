package middleware

import (
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/richxcame/currency-exchange/pkg/common"
	"github.com/richxcame/currency-exchange/pkg/logger"
	"go.uber.org/zap"
)

// Recovery middleware recovers from panics and reports them to Sentry when a hub is attached
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.WithContext(c.Request.Context()).Error("Panic recovered",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
				)

				if hub := sentrygin.GetHubFromContext(c); hub != nil {
					hub.WithScope(func(scope *sentry.Scope) {
						scope.SetTag("correlation_id", GetCorrelationID(c))
						hub.CaptureException(fmt.Errorf("panic: %v", err))
					})
				}

				common.ErrorResponse(c, http.StatusInternalServerError, "internal server error")
			}
		}()

		c.Next()
	}
}
