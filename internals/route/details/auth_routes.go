package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	usercontroller "absensiku_backend/internals/features/users/user/controller"
	"absensiku_backend/internals/middlewares"
	authMiddleware "absensiku_backend/internals/middlewares/auth"
)

func AuthRoutes(app *fiber.App, db *gorm.DB) {
	ctl := usercontroller.NewAuthController(db)

	app.Post("/api/auth/login", middlewares.LoginRateLimiter(), ctl.Login)
	app.Get("/api/me", authMiddleware.AuthMiddleware(db), ctl.Me)
}
