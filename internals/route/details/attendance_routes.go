package details

import (
	"github.com/gofiber/fiber/v2"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	absensicontroller "absensiku_backend/internals/features/attendance/absensi/controller"
	jadwalcontroller "absensiku_backend/internals/features/attendance/jadwal/controller"
	piketcontroller "absensiku_backend/internals/features/attendance/piket/controller"
	rekapcontroller "absensiku_backend/internals/features/attendance/rekap/controller"
)

// AttendanceRoutes memasang semua endpoint absensi di bawah group ber-auth.
func AttendanceRoutes(api fiber.Router, db *gorm.DB, rdb *goredis.Client) {
	absensi := absensicontroller.NewAbsensiController(db)
	api.Post("/absensi/upload", absensi.Upload)
	api.Get("/absensi", absensi.List)
	api.Get("/absensi/progress", absensi.Progress)

	piket := piketcontroller.NewPiketController(db, rdb)
	api.Post("/piket/upload", piket.Upload)

	jadwal := jadwalcontroller.NewJadwalController(db)
	api.Get("/jadwal", jadwal.List)

	rekap := rekapcontroller.NewRekapController(db, rdb)
	api.Get("/rekap", rekap.Download)
	api.Get("/bulan", rekap.Bulan)
}
