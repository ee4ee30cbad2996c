package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	absensicontroller "absensiku_backend/internals/features/attendance/absensi/controller"
	kelascontroller "absensiku_backend/internals/features/school/kelas/controller"
	siswacontroller "absensiku_backend/internals/features/school/siswa/controller"
	usercontroller "absensiku_backend/internals/features/users/user/controller"
)

// AdminRoutes: CRUD data sekolah untuk staff.
func AdminRoutes(admin fiber.Router, db *gorm.DB) {
	kelas := kelascontroller.NewKelasController(db)
	admin.Get("/kelas", kelas.List)
	admin.Post("/kelas", kelas.Create)
	admin.Put("/kelas/:id", kelas.Update)
	admin.Delete("/kelas/:id", kelas.Delete)

	siswa := siswacontroller.NewSiswaController(db)
	admin.Get("/siswa", siswa.List)
	admin.Post("/siswa", siswa.Create)
	admin.Put("/siswa/:id", siswa.Update)
	admin.Delete("/siswa/:id", siswa.Delete)

	users := usercontroller.NewUserAdminController(db)
	admin.Get("/users", users.List)
	admin.Put("/users/:id", users.Update)

	absensi := absensicontroller.NewAbsensiController(db)
	admin.Post("/absensi/refresh-expired", absensi.RefreshExpired)
}
