package response

import (
	"time"

	"github.com/gin-gonic/gin"
)

// Success writes {"success": true, "data": data}.
func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

// List writes {"success": true, "data": data, "count": count}.
func List(c *gin.Context, statusCode int, data any, count int) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
		"count":   count,
	})
}

// Error writes {"error": message, "timestamp": now}.
func Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, errorBody(message, nil))
}

// ErrorWithDetails adds per-field messages to the error body.
func ErrorWithDetails(c *gin.Context, statusCode int, message string, details map[string]string) {
	c.JSON(statusCode, errorBody(message, details))
}

// Abort writes an error body and stops the handler chain.
func Abort(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, errorBody(message, nil))
}

func errorBody(message string, details map[string]string) gin.H {
	body := gin.H{
		"error":     message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if len(details) > 0 {
		body["details"] = details
	}
	return body
}
