package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// LoggerConfig holds request logger configuration
type LoggerConfig struct {
	Logger            *logrus.Logger
	EnableRequestBody bool
	MaxBodySize       int64
	SkipPaths         []string
}

// Body fields that must never reach the logs. Auth payloads carry
// credentials; everything else in this API is preference data and safe.
var redactedBodyFields = []string{
	"password",
	"currentPassword",
	"newPassword",
	"refreshToken",
}

// LoggerMiddleware logs one structured line per request, tagging it with a
// request id that is also echoed back in the X-Request-ID header.
func LoggerMiddleware(config LoggerConfig) gin.HandlerFunc {
	if config.Logger == nil {
		config.Logger = logrus.StandardLogger()
	}
	if config.MaxBodySize == 0 {
		config.MaxBodySize = 4096
	}

	return gin.HandlerFunc(func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		if skipPath(c.Request.URL.Path, config.SkipPaths) {
			c.Next()
			return
		}

		startTime := time.Now()

		var requestBody []byte
		if config.EnableRequestBody && c.Request.Body != nil {
			requestBody = captureRequestBody(c, config.MaxBodySize)
		}

		c.Next()

		duration := time.Since(startTime)
		fields := requestLogFields(c, duration, requestID, requestBody)
		logRequest(config.Logger, c.Writer.Status(), duration, fields)
	})
}

// DefaultLoggerMiddleware is the configuration the API runs with: no body
// capture, health probes skipped.
func DefaultLoggerMiddleware() gin.HandlerFunc {
	return LoggerMiddleware(LoggerConfig{
		Logger:      logrus.StandardLogger(),
		MaxBodySize: 4096,
		SkipPaths: []string{
			"/health",
			"/favicon.ico",
		},
	})
}

// captureRequestBody reads up to maxSize bytes and restores the body for
// downstream handlers.
func captureRequestBody(c *gin.Context, maxSize int64) []byte {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxSize))
	if err != nil {
		return nil
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	return body
}

func requestLogFields(c *gin.Context, duration time.Duration, requestID string, requestBody []byte) logrus.Fields {
	fields := logrus.Fields{
		"request_id":    requestID,
		"method":        c.Request.Method,
		"path":          c.Request.URL.Path,
		"query":         c.Request.URL.RawQuery,
		"status":        c.Writer.Status(),
		"latency_ms":    float64(duration.Nanoseconds()) / 1e6,
		"ip":            c.ClientIP(),
		"user_agent":    c.GetHeader("User-Agent"),
		"response_size": c.Writer.Size(),
	}

	if userID := c.GetString("userID"); userID != "" {
		fields["user_id"] = userID
	}

	if len(requestBody) > 0 && isJSONContent(c.GetHeader("Content-Type")) {
		fields["request_body"] = redactBody(requestBody)
	}

	if len(c.Errors) > 0 {
		errs := make([]string, len(c.Errors))
		for i, err := range c.Errors {
			errs[i] = err.Error()
		}
		fields["errors"] = errs
	}

	return fields
}

// redactBody replaces credential fields in a JSON body before logging. A
// body that does not parse is logged by size only.
func redactBody(body []byte) string {
	var parsed map[string]interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Sprintf("<%d bytes>", len(body))
	}

	for _, field := range redactedBodyFields {
		if _, ok := parsed[field]; ok {
			parsed[field] = "[REDACTED]"
		}
	}

	redacted, err := json.Marshal(parsed)
	if err != nil {
		return fmt.Sprintf("<%d bytes>", len(body))
	}
	return string(redacted)
}

func logRequest(logger *logrus.Logger, statusCode int, duration time.Duration, fields logrus.Fields) {
	message := fmt.Sprintf("%s %s %d %s",
		fields["method"],
		fields["path"],
		statusCode,
		duration,
	)

	switch {
	case statusCode >= 500:
		logger.WithFields(fields).Error(message)
	case statusCode >= 400:
		logger.WithFields(fields).Warn(message)
	case duration > 5*time.Second:
		logger.WithFields(fields).Warn(message + " (slow request)")
	default:
		logger.WithFields(fields).Info(message)
	}
}

func skipPath(path string, skipPaths []string) bool {
	for _, skip := range skipPaths {
		if strings.HasPrefix(path, skip) {
			return true
		}
	}
	return false
}

func isJSONContent(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "application/json")
}

// RequestIDMiddleware tags requests that bypass the logger, keeping the
// X-Request-ID contract on every route.
func RequestIDMiddleware() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	})
}
