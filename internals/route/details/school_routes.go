package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	siswacontroller "absensiku_backend/internals/features/school/siswa/controller"
)

func SchoolRoutes(api fiber.Router, db *gorm.DB) {
	siswa := siswacontroller.NewSiswaController(db)
	api.Get("/siswas", siswa.Directory)
}
