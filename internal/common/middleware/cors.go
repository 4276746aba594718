package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
)

// CORS: origins через запятую, пусто или "*" разрешает все источники (dev).
func CORS(origins string) fiber.Handler {
	allow := []string{"*"}
	if o := strings.TrimSpace(origins); o != "" && o != "*" {
		allow = strings.Split(o, ",")
		for i := range allow {
			allow[i] = strings.TrimSpace(allow[i])
		}
	}

	return cors.New(cors.Config{
		AllowOrigins: allow,
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
	})
}
