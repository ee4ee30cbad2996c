package controller

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"absensiku_backend/internals/configs"
	"absensiku_backend/internals/features/attendance/rekap/generator"
	"absensiku_backend/internals/features/attendance/rekap/repository"
	"absensiku_backend/internals/features/attendance/rekap/service"
	helper "absensiku_backend/internals/helpers"
)

type RekapController struct {
	Service *service.RekapService
}

func NewRekapController(db *gorm.DB, rdb *goredis.Client) *RekapController {
	return &RekapController{
		Service: service.NewRekapService(
			repository.NewGormStore(db),
			repository.NewRedisCache(rdb),
			generator.NewExcelGenerator(),
			configs.TimeZone,
		),
	}
}

// Download menghasilkan rekap bulanan satu kelas dan mengirim blob-nya:
// 100 byte nama file, 100 byte mimetype (padding '\r'), lalu isi file.
// File id (hash isi) ikut di header untuk cache client.
func (ctl *RekapController) Download(c *fiber.Ctx) error {
	domain := helper.GetDomain(c)

	kelasID, err := uuid.Parse(c.Query("kelas_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "kelas_id tidak valid")
	}
	bulan, err := strconv.Atoi(c.Query("bulan"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "bulan tidak valid")
	}
	tahun, err := strconv.Atoi(c.Query("tahun"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tahun tidak valid")
	}

	userID, err := helper.GetUserID(c)
	if err != nil {
		return err
	}
	actor := service.Actor{ID: userID, Type: helper.GetUserType(c)}

	art, err := ctl.Service.Generate(c.Context(), domain, actor, kelasID, bulan, tahun)
	if err != nil {
		if errors.Is(err, service.ErrRekapForbidden) {
			return fiber.NewError(fiber.StatusForbidden, err.Error())
		}
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return fe
		}
		log.Printf("[ERROR] rekap: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal membuat rekap")
	}

	c.Set("X-File-ID", art.FileID)
	c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
	return c.Send(art.Blob)
}

// Bulan mengembalikan daftar bulan yang punya data absensi, dibatasi ke
// kelas milik user kecuali kesiswaan.
func (ctl *RekapController) Bulan(c *fiber.Ctx) error {
	userID, err := helper.GetUserID(c)
	if err != nil {
		return err
	}
	actor := service.Actor{ID: userID, Type: helper.GetUserType(c)}

	months, err := ctl.Service.Months(c.Context(), helper.GetDomain(c), actor)
	if err != nil {
		log.Printf("[ERROR] bulan: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal memuat daftar bulan")
	}

	type bulanEntry struct {
		Bulan int    `json:"bulan"`
		Tahun int    `json:"tahun"`
		Label string `json:"label"`
	}
	out := make([]bulanEntry, 0, len(months))
	for _, m := range months {
		out = append(out, bulanEntry{
			Bulan: m.Bulan,
			Tahun: m.Tahun,
			Label: helper.LocalizeMonth(m.Bulan) + " " + strconv.Itoa(m.Tahun),
		})
	}
	return helper.Success(c, "OK", out)
}
