package controller

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"absensiku_backend/internals/configs"
	"absensiku_backend/internals/constants"
	"absensiku_backend/internals/features/school/siswa/dto"
	"absensiku_backend/internals/features/school/siswa/model"
	"absensiku_backend/internals/features/school/siswa/repository"
	"absensiku_backend/internals/features/school/siswa/service"
	helper "absensiku_backend/internals/helpers"
)

type SiswaController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	Photos    *service.PhotoHooks
}

func NewSiswaController(db *gorm.DB) *SiswaController {
	uploadDir := configs.GetEnv("UPLOAD_DIR", "./uploads")
	return &SiswaController{
		DB:        db,
		Validator: validator.New(),
		Photos:    service.NewPhotoHooks(repository.NewFSStorage(uploadDir)),
	}
}

// Directory mengembalikan daftar siswa semua kelas untuk layar scan guru
// piket.
func (ctl *SiswaController) Directory(c *fiber.Ctx) error {
	if helper.GetUserType(c) != constants.RoleGuruPiket {
		return fiber.NewError(fiber.StatusForbidden, constants.RoleErrorPiket("daftar siswa"))
	}

	var rows []model.SiswaModel
	err := ctl.DB.Preload("Kelas").
		Where("siswa_domain = ?", helper.GetDomain(c)).
		Order("siswa_fullname").
		Find(&rows).Error
	if err != nil {
		log.Printf("[ERROR] siswa directory: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal memuat siswa")
	}

	out := make([]dto.SiswaDirectoryEntry, 0, len(rows))
	for i := range rows {
		entry := dto.SiswaDirectoryEntry{
			SiswaID:       rows[i].SiswaID,
			SiswaFullname: rows[i].SiswaFullname,
			KelasID:       rows[i].SiswaKelasID,
			SiswaNIS:      rows[i].SiswaNIS,
			SiswaPhoto:    rows[i].SiswaPhoto,
		}
		if rows[i].Kelas != nil {
			entry.KelasName = rows[i].Kelas.KelasName
		}
		out = append(out, entry)
	}
	return helper.Success(c, "OK", out)
}

// List untuk halaman admin, bisa difilter per kelas.
func (ctl *SiswaController) List(c *fiber.Ctx) error {
	q := ctl.DB.Preload("Kelas").Where("siswa_domain = ?", helper.GetDomain(c))
	if raw := c.Query("kelas_id"); raw != "" {
		kelasID, err := uuid.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "kelas_id tidak valid")
		}
		q = q.Where("siswa_kelas_id = ?", kelasID)
	}

	var rows []model.SiswaModel
	if err := q.Order("siswa_fullname").Find(&rows).Error; err != nil {
		log.Printf("[ERROR] list siswa: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal memuat siswa")
	}
	return helper.Success(c, "OK", rows)
}

func (ctl *SiswaController) Create(c *fiber.Ctx) error {
	var req dto.SiswaCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}
	domain := helper.GetDomain(c)

	var kelasCount int64
	err := ctl.DB.Table("kelas").
		Where("kelas_domain = ? AND kelas_id = ?", domain, req.SiswaKelasID).
		Count(&kelasCount).Error
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal memeriksa kelas")
	}
	if kelasCount == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Kelas tidak ditemukan")
	}

	siswa := model.SiswaModel{
		SiswaFullname: req.SiswaFullname,
		SiswaKelasID:  req.SiswaKelasID,
		SiswaNIS:      req.SiswaNIS,
		SiswaNISN:     req.SiswaNISN,
		SiswaPhoto:    req.SiswaPhoto,
		SiswaDomain:   domain,
	}
	if err := ctl.DB.Create(&siswa).Error; err != nil {
		log.Printf("[ERROR] create siswa: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal menambah siswa")
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Siswa berhasil ditambahkan", siswa)
}

func (ctl *SiswaController) Update(c *fiber.Ctx) error {
	siswaID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "ID siswa tidak valid")
	}

	var req dto.SiswaUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}
	domain := helper.GetDomain(c)

	var siswa model.SiswaModel
	err = ctl.DB.Where("siswa_domain = ? AND siswa_id = ?", domain, siswaID).First(&siswa).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Siswa tidak ditemukan")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal memuat siswa")
	}

	if req.SiswaKelasID != nil {
		var kelasCount int64
		err := ctl.DB.Table("kelas").
			Where("kelas_domain = ? AND kelas_id = ?", domain, *req.SiswaKelasID).
			Count(&kelasCount).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal memeriksa kelas")
		}
		if kelasCount == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Kelas tidak ditemukan")
		}
		siswa.SiswaKelasID = *req.SiswaKelasID
	}

	// foto lama dibersihkan sebelum record tersimpan dengan foto baru
	if req.SiswaPhoto != nil {
		ctl.Photos.PreSave(c.Context(), siswa.SiswaPhoto, req.SiswaPhoto)
		siswa.SiswaPhoto = req.SiswaPhoto
	}
	if req.SiswaFullname != nil {
		siswa.SiswaFullname = *req.SiswaFullname
	}
	if req.SiswaNIS != nil {
		siswa.SiswaNIS = req.SiswaNIS
	}
	if req.SiswaNISN != nil {
		siswa.SiswaNISN = req.SiswaNISN
	}

	if err := ctl.DB.Save(&siswa).Error; err != nil {
		log.Printf("[ERROR] update siswa: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal memperbarui siswa")
	}
	return helper.Success(c, "Siswa berhasil diperbarui", siswa)
}

func (ctl *SiswaController) Delete(c *fiber.Ctx) error {
	siswaID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "ID siswa tidak valid")
	}
	domain := helper.GetDomain(c)

	var siswa model.SiswaModel
	err = ctl.DB.Where("siswa_domain = ? AND siswa_id = ?", domain, siswaID).First(&siswa).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Siswa tidak ditemukan")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal memuat siswa")
	}

	if err := ctl.DB.Delete(&siswa).Error; err != nil {
		log.Printf("[ERROR] delete siswa: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal menghapus siswa")
	}

	ctl.Photos.PostDelete(c.Context(), siswa.SiswaPhoto)
	return helper.Success(c, "Siswa berhasil dihapus", nil)
}
