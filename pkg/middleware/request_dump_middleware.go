package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"evamed-backend/utilities"
)

const maxDumpedBody = 4 << 10

// RequestDumpMiddleware logs every request at debug level. Bearer tokens are
// masked and bodies are truncated.
func RequestDumpMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := utilities.L()
		if !logger.Core().Enabled(zap.DebugLevel) {
			c.Next()
			return
		}

		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		body := bodyBytes
		if len(body) > maxDumpedBody {
			body = body[:maxDumpedBody]
		}

		logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("url", c.Request.URL.String()),
			zap.Any("headers", maskHeaders(c.Request.Header)),
			zap.Any("params", c.Params),
			zap.ByteString("body", body),
		)

		c.Next()
	}
}

func maskHeaders(h http.Header) http.Header {
	out := h.Clone()
	if out.Get("Authorization") != "" {
		out.Set("Authorization", "[REDACTED]")
	}
	return out
}
