package route

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"absensiku_backend/internals/databases"
	authMiddleware "absensiku_backend/internals/middlewares/auth"
	routeDetails "absensiku_backend/internals/route/details"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	routeDetails.BaseRoutes(app)

	log.Println("[INFO] Setting up AuthRoutes...")
	routeDetails.AuthRoutes(app, db)

	api := app.Group("/api", authMiddleware.AuthMiddleware(db))

	log.Println("[INFO] Setting up AttendanceRoutes...")
	routeDetails.AttendanceRoutes(api, db, databases.Redis)

	log.Println("[INFO] Setting up SchoolRoutes...")
	routeDetails.SchoolRoutes(api, db)

	log.Println("[INFO] Setting up AdminRoutes...")
	admin := api.Group("/admin", authMiddleware.RequireStaff())
	routeDetails.AdminRoutes(admin, db)
}
