package api

import (
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// isClientDisconnectError checks if the error is a common network error
// that occurs when a client closes the connection prematurely. These errors
// are safe to ignore in logs as they are not application-level bugs.
func isClientDisconnectError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, syscall.EPIPE) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Err.Error() == "write: broken pipe" {
			return true
		}
		if errors.Is(opErr.Err, syscall.EPIPE) || errors.Is(opErr.Err, syscall.ECONNRESET) {
			return true
		}
	}

	if strings.Contains(strings.ToLower(err.Error()), "broken pipe") {
		return true
	}

	return false
}

// FilteredLogger creates a Gin logger middleware that mimics gin.Default()
// but filters out benign "broken pipe" errors to reduce log noise.
func FilteredLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			path = path + "?" + c.Request.URL.RawQuery
		}

		c.Next()

		lastError := c.Errors.Last()
		if lastError != nil && isClientDisconnectError(lastError.Err) {
			return
		}

		latency := time.Since(start)
		clientIP := c.ClientIP()
		method := c.Request.Method
		statusCode := c.Writer.Status()
		var errorMsg string
		if lastError != nil {
			errorMsg = lastError.Error()
		}

		log.Printf("[GIN] %v | %3d | %13v | %15s | %-7s %#v %s",
			time.Now().Format("2006/01/02 - 15:04:05"),
			statusCode,
			latency,
			clientIP,
			method,
			path,
			errorMsg,
		)
	}
}

// AuthRequired validates the bearer token on mutating endpoints. An empty
// secret disables authentication entirely; single-tenant deployments behind
// a trusted proxy run open.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			c.Abort()
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Next()
	}
}
