package controller

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"absensiku_backend/internals/configs"
	"absensiku_backend/internals/constants"
	"absensiku_backend/internals/features/attendance/jadwal/model"
	helper "absensiku_backend/internals/helpers"
)

type JadwalController struct {
	DB *gorm.DB
}

func NewJadwalController(db *gorm.DB) *JadwalController {
	return &JadwalController{DB: db}
}

type jadwalEntry struct {
	KelasID        string `json:"kelas_id"`
	KelasName      string `json:"kelas_name"`
	JamMasuk       string `json:"jam_masuk"`
	JamMasukSampai string `json:"jam_masuk_sampai"`
	JamKeluar      string `json:"jam_keluar"`
}

// List mengembalikan jadwal absensi hari ini per kelas untuk layar scan guru
// piket: jam masuk, jam masuk + toleransi, dan jam keluar.
func (ctl *JadwalController) List(c *fiber.Ctx) error {
	if helper.GetUserType(c) != constants.RoleGuruPiket {
		return fiber.NewError(fiber.StatusForbidden, constants.RoleErrorPiket("jadwal"))
	}
	domain := helper.GetDomain(c)

	today := time.Now().In(configs.TimeZone)
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, configs.TimeZone)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date tidak valid, format yyyy-mm-dd")
		}
		today = parsed
	}

	dayName := model.DayNames[today.Weekday()]
	if dayName == "" {
		// hari Minggu: tidak ada sesi absensi
		return helper.Success(c, "OK", []jadwalEntry{})
	}

	var sessions []model.AbsensiSessionModel
	err := ctl.DB.Preload("Kelas").
		Where("absensi_session_domain = ? AND ? = ANY(absensi_session_days)", domain, dayName).
		Find(&sessions).Error
	if err != nil {
		log.Printf("[ERROR] list jadwal: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal memuat jadwal")
	}

	out := []jadwalEntry{}
	for i := range sessions {
		s := &sessions[i]
		masuk, err := s.JamMasukOn(today, configs.TimeZone)
		if err != nil {
			log.Printf("[ERROR] jadwal %s: %v", s.AbsensiSessionID, err)
			continue
		}
		sampai, err := s.JamMasukSampaiOn(today, configs.TimeZone)
		if err != nil {
			continue
		}
		keluar, err := s.JamKeluarOn(today, configs.TimeZone)
		if err != nil {
			continue
		}
		for _, k := range s.Kelas {
			out = append(out, jadwalEntry{
				KelasID:        k.KelasID.String(),
				KelasName:      k.KelasName,
				JamMasuk:       masuk.Format("15:04"),
				JamMasukSampai: sampai.Format("15:04"),
				JamKeluar:      keluar.Format("15:04"),
			})
		}
	}
	return helper.Success(c, "OK", out)
}
