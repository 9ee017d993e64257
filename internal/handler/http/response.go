package http

import "github.com/gin-gonic/gin"

// ErrorResponse writes the failure envelope.
func ErrorResponse(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"ok": false, "message": message})
}

// SuccessResponse writes the success envelope with data merged into it.
func SuccessResponse(c *gin.Context, code int, message string, data gin.H) {
	body := gin.H{"ok": true, "message": message}
	for k, v := range data {
		if k == "ok" || k == "message" {
			continue
		}
		body[k] = v
	}
	c.JSON(code, body)
}
