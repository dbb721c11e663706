package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CorsMiddleware allows any origin to read the API. The API only serves GETs.
func CorsMiddleware() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,HEAD,OPTIONS",
		AllowHeaders:  "Origin, Content-Type, Accept, X-Admin-Token, X-Request-ID",
		ExposeHeaders: "Content-Disposition, X-Request-ID",
	})
}
