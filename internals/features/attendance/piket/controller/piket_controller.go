package controller

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"absensiku_backend/internals/configs"
	"absensiku_backend/internals/constants"
	"absensiku_backend/internals/features/attendance/piket/dto"
	"absensiku_backend/internals/features/attendance/piket/repository"
	"absensiku_backend/internals/features/attendance/piket/service"
	helper "absensiku_backend/internals/helpers"
)

type PiketController struct {
	Validator *validator.Validate
	Service   *service.IngestService
}

func NewPiketController(db *gorm.DB, rdb *goredis.Client) *PiketController {
	return &PiketController{
		Validator: validator.New(),
		Service: service.NewIngestService(
			repository.NewGormStore(db),
			repository.NewRedisBuffer(rdb),
			configs.TimeZone,
		),
	}
}

// Upload menerima batch scan masuk/pulang dari device guru piket.
// Respons memuat daftar event yang ditolak siklus ini; event tersebut
// tetap di buffer dan dicoba lagi pada upload berikutnya.
func (ctl *PiketController) Upload(c *fiber.Ctx) error {
	if helper.GetUserType(c) != constants.RoleGuruPiket {
		return fiber.NewError(fiber.StatusForbidden, constants.RoleErrorPiket("piket"))
	}

	var req dto.IngestRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	res, err := ctl.Service.Ingest(c.Context(), helper.GetDomain(c), req.Data)
	if err != nil {
		log.Printf("[ERROR] piket upload: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal memproses scan")
	}
	return c.JSON(res)
}
