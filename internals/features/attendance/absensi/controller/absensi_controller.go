package controller

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"absensiku_backend/internals/configs"
	"absensiku_backend/internals/constants"
	"absensiku_backend/internals/features/attendance/absensi/dto"
	"absensiku_backend/internals/features/attendance/absensi/model"
	"absensiku_backend/internals/features/attendance/absensi/repository"
	"absensiku_backend/internals/features/attendance/absensi/service"
	kelasmodel "absensiku_backend/internals/features/school/kelas/model"
	helper "absensiku_backend/internals/helpers"
)

type AbsensiController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	Service   *service.ReconcileService
}

func NewAbsensiController(db *gorm.DB) *AbsensiController {
	return &AbsensiController{
		DB:        db,
		Validator: validator.New(),
		Service:   service.NewReconcileService(repository.NewGormStore(db), configs.TimeZone),
	}
}

// Upload menerima antrean aksi offline dari device dan menjalankannya dalam
// satu transaksi. Respons dan kode error mengikuti kontrak client lama:
// 200 {applied, conflicts}, 400 {detail} untuk tanggal tak terbaca,
// 403 {detail} untuk periode terkunci atau lock tanpa kepemilikan.
func (ctl *AbsensiController) Upload(c *fiber.Ctx) error {
	var req dto.UploadRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	userID, err := helper.GetUserID(c)
	if err != nil {
		return err
	}
	actor := service.Actor{
		ID:          userID,
		Type:        helper.GetUserType(c),
		DisplayName: helper.GetUserDisplayName(c),
	}

	res, err := ctl.Service.Upload(c.Context(), helper.GetDomain(c), actor, req.Data)
	if err != nil {
		var parseErr *service.DateParseError
		var lockErr *service.LockedPeriodError
		switch {
		case errors.As(err, &parseErr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": parseErr.Error()})
		case errors.As(err, &lockErr):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"detail": lockErr.Error()})
		case errors.Is(err, service.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"detail": err.Error()})
		}
		log.Printf("[ERROR] upload absensi: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal memproses upload")
	}

	return c.JSON(fiber.Map{"applied": res.Applied, "conflicts": res.Conflicts})
}

// List mengembalikan map siswa -> status efektif untuk satu kelas dan satu
// tanggal. Status tunggu yang sudah lewat batas ditampilkan sebagai alfa
// tanpa pernah menulis balik ke database.
func (ctl *AbsensiController) List(c *fiber.Ctx) error {
	domain := helper.GetDomain(c)

	kelasID, err := uuid.Parse(c.Query("kelas_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "kelas_id tidak valid")
	}
	date, err := time.ParseInLocation("2006-01-02", c.Query("date"), configs.TimeZone)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "date tidak valid, format yyyy-mm-dd")
	}

	if err := ctl.ensureCanRead(c, domain, kelasID); err != nil {
		return err
	}

	var rows []model.AbsensiModel
	err = ctl.DB.
		Joins("JOIN siswa ON siswa.siswa_id = absensi.absensi_siswa_id").
		Where("absensi.absensi_domain = ? AND siswa.siswa_kelas_id = ? AND absensi.absensi_date = ?",
			domain, kelasID, model.ToDate(date)).
		Find(&rows).Error
	if err != nil {
		log.Printf("[ERROR] list absensi: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal memuat absensi")
	}

	now := time.Now()
	statuses := map[string]string{}
	for i := range rows {
		status, err := service.ResolveStatus(rows[i].AbsensiStatus, rows[i].AbsensiWaitExpiredAt, now)
		if err != nil {
			// invarian dijaga di titik tulis; kalau sampai sini, datanya korup
			log.Printf("[ERROR] absensi %s: %v", rows[i].AbsensiID, err)
			continue
		}
		statuses[rows[i].AbsensiSiswaID.String()] = status
	}
	return helper.Success(c, "OK", statuses)
}

// Progress menghitung jumlah record terisi per tanggal untuk satu kelas,
// maksimal 31 tanggal sekali panggil.
func (ctl *AbsensiController) Progress(c *fiber.Ctx) error {
	domain := helper.GetDomain(c)

	kelasID, err := uuid.Parse(c.Query("kelas_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "kelas_id tidak valid")
	}

	rawDates := strings.Split(c.Query("dates"), ",")
	if len(rawDates) == 0 || rawDates[0] == "" {
		return fiber.NewError(fiber.StatusBadRequest, "dates wajib diisi")
	}
	if len(rawDates) > 31 {
		return fiber.NewError(fiber.StatusBadRequest, "Maksimal 31 tanggal per permintaan")
	}

	if err := ctl.ensureCanRead(c, domain, kelasID); err != nil {
		return err
	}

	var total int64
	if err := ctl.DB.Table("siswa").
		Where("siswa_domain = ? AND siswa_kelas_id = ?", domain, kelasID).
		Count(&total).Error; err != nil {
		log.Printf("[ERROR] progress siswa: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal memuat progress")
	}

	type dateProgress struct {
		Date   string `json:"date"`
		Terisi int64  `json:"terisi"`
		Total  int64  `json:"total"`
	}

	out := make([]dateProgress, 0, len(rawDates))
	for _, raw := range rawDates {
		date, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(raw), configs.TimeZone)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tanggal "+raw+" tidak valid")
		}
		var terisi int64
		err = ctl.DB.Model(&model.AbsensiModel{}).
			Joins("JOIN siswa ON siswa.siswa_id = absensi.absensi_siswa_id").
			Where("absensi.absensi_domain = ? AND siswa.siswa_kelas_id = ? AND absensi.absensi_date = ?",
				domain, kelasID, model.ToDate(date)).
			Count(&terisi).Error
		if err != nil {
			log.Printf("[ERROR] progress absensi: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal memuat progress")
		}
		out = append(out, dateProgress{Date: date.Format("2006-01-02"), Terisi: terisi, Total: total})
	}
	return helper.Success(c, "OK", out)
}

// RefreshExpired mem-persist alfa untuk record tunggu yang sudah lewat
// batas. Job eksplisit untuk staff; bukan efek samping dari baca.
func (ctl *AbsensiController) RefreshExpired(c *fiber.Ctx) error {
	n, err := ctl.Service.RefreshExpired(c.Context(), helper.GetDomain(c))
	if err != nil {
		log.Printf("[ERROR] refresh expired: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal memperbarui status tunggu")
	}
	return helper.Success(c, "Status tunggu kadaluarsa diperbarui", fiber.Map{"updated": n})
}

// ensureCanRead: kesiswaan membaca semua kelas; wali kelas dan sekretaris
// hanya kelas miliknya.
func (ctl *AbsensiController) ensureCanRead(c *fiber.Ctx, domain string, kelasID uuid.UUID) error {
	userType := helper.GetUserType(c)
	if userType == constants.RoleKesiswaan {
		return nil
	}

	userID, err := helper.GetUserID(c)
	if err != nil {
		return err
	}

	var kelas kelasmodel.KelasModel
	err = ctl.DB.Preload("Sekretaris").
		Where("kelas_domain = ? AND kelas_id = ?", domain, kelasID).
		First(&kelas).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Kelas tidak ditemukan")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal memuat kelas")
	}
	if !kelas.IsOwnedBy(userID) {
		return fiber.NewError(fiber.StatusForbidden, "Anda tidak memiliki kelas ini")
	}
	return nil
}
