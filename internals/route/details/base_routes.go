package details

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

var startTime = time.Now()

// BaseRoutes memasang endpoint kesehatan tanpa auth.
func BaseRoutes(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"uptime": time.Since(startTime).Round(time.Second).String(),
		})
	})
}
