package middleware

import (
	"examly/database"
	"examly/models"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// AccessLogMiddleware records one AccessLog row per request. Static assets
// are skipped and logging failures never break the request.
func AccessLogMiddleware(c *fiber.Ctx) error {
	path := c.Path()
	if strings.HasPrefix(path, "/uploads") || strings.HasPrefix(path, "/static") {
		return c.Next()
	}

	// Run the handler chain first so the JWT middleware has populated locals.
	err := c.Next()

	entry := models.AccessLog{
		IP:        clientIP(c),
		Path:      truncate(path, 400),
		Method:    c.Method(),
		UserAgent: truncate(c.Get("User-Agent"), 400),
	}
	if userID, ok := c.Locals("userId").(uint); ok {
		entry.UserID = &userID
	}
	if tenantID, ok := c.Locals("tenantId").(uint); ok {
		entry.TenantID = &tenantID
	}

	database.Database.Db.Create(&entry)

	return err
}

func clientIP(c *fiber.Ctx) string {
	if fwd := c.Get("X-Forwarded-For"); fwd != "" {
		return truncate(strings.TrimSpace(strings.Split(fwd, ",")[0]), 64)
	}
	return truncate(c.IP(), 64)
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
