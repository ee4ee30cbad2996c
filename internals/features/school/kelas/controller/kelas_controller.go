package controller

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"absensiku_backend/internals/features/school/kelas/dto"
	"absensiku_backend/internals/features/school/kelas/model"
	"absensiku_backend/internals/features/school/kelas/service"
	usermodel "absensiku_backend/internals/features/users/user/model"
	helper "absensiku_backend/internals/helpers"
)

type KelasController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewKelasController(db *gorm.DB) *KelasController {
	return &KelasController{DB: db, Validator: validator.New()}
}

// List mengembalikan semua kelas di domain beserta wali dan sekretarisnya.
func (ctl *KelasController) List(c *fiber.Ctx) error {
	var kelas []model.KelasModel
	err := ctl.DB.Preload("WaliKelas").Preload("Sekretaris").
		Where("kelas_domain = ?", helper.GetDomain(c)).
		Order("kelas_name").
		Find(&kelas).Error
	if err != nil {
		log.Printf("[ERROR] list kelas: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal memuat kelas")
	}
	return helper.Success(c, "OK", kelas)
}

func (ctl *KelasController) Create(c *fiber.Ctx) error {
	var req dto.KelasCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}
	domain := helper.GetDomain(c)

	kelas := model.KelasModel{
		KelasName:        req.KelasName,
		KelasActive:      true,
		KelasWaliKelasID: req.KelasWaliKelasID,
		KelasDomain:      domain,
	}
	if req.KelasActive != nil {
		kelas.KelasActive = *req.KelasActive
	}

	if err := ctl.validateEditors(c, domain, uuid.Nil, req.KelasWaliKelasID, req.SekretarisIDs); err != nil {
		return err
	}

	err := ctl.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&kelas).Error; err != nil {
			return err
		}
		return ctl.replaceSekretaris(tx, &kelas, domain, req.SekretarisIDs)
	})
	if err != nil {
		log.Printf("[ERROR] create kelas: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal membuat kelas")
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Kelas berhasil dibuat", kelas)
}

func (ctl *KelasController) Update(c *fiber.Ctx) error {
	kelasID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "ID kelas tidak valid")
	}

	var req dto.KelasUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}
	domain := helper.GetDomain(c)

	var kelas model.KelasModel
	err = ctl.DB.Where("kelas_domain = ? AND kelas_id = ?", domain, kelasID).First(&kelas).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Kelas tidak ditemukan")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal memuat kelas")
	}

	if req.KelasWaliKelasID != nil || req.SekretarisIDs != nil {
		waliID := kelas.KelasWaliKelasID
		if req.KelasWaliKelasID != nil {
			waliID = req.KelasWaliKelasID
		}
		if err := ctl.validateEditors(c, domain, kelas.KelasID, waliID, req.SekretarisIDs); err != nil {
			return err
		}
	}

	if req.KelasName != nil {
		kelas.KelasName = *req.KelasName
	}
	if req.KelasActive != nil {
		kelas.KelasActive = *req.KelasActive
	}
	if req.KelasWaliKelasID != nil {
		kelas.KelasWaliKelasID = req.KelasWaliKelasID
	}

	err = ctl.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&kelas).Error; err != nil {
			return err
		}
		if req.SekretarisIDs != nil {
			return ctl.replaceSekretaris(tx, &kelas, domain, req.SekretarisIDs)
		}
		return nil
	})
	if err != nil {
		log.Printf("[ERROR] update kelas: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal memperbarui kelas")
	}
	return helper.Success(c, "Kelas berhasil diperbarui", kelas)
}

// Delete menghapus kelas. Kelas yang masih punya siswa tidak boleh dihapus;
// pindahkan siswanya dulu.
func (ctl *KelasController) Delete(c *fiber.Ctx) error {
	kelasID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "ID kelas tidak valid")
	}
	domain := helper.GetDomain(c)

	var siswaCount int64
	err = ctl.DB.Table("siswa").
		Where("siswa_domain = ? AND siswa_kelas_id = ?", domain, kelasID).
		Count(&siswaCount).Error
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal memeriksa siswa")
	}
	if siswaCount > 0 {
		return fiber.NewError(fiber.StatusConflict, "Kelas masih memiliki siswa dan tidak bisa dihapus")
	}

	res := ctl.DB.Where("kelas_domain = ? AND kelas_id = ?", domain, kelasID).
		Delete(&model.KelasModel{})
	if res.Error != nil {
		log.Printf("[ERROR] delete kelas: %v", res.Error)
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal menghapus kelas")
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "Kelas tidak ditemukan")
	}
	return helper.Success(c, "Kelas berhasil dihapus", nil)
}

// validateEditors menjalankan aturan wali/sekretaris lewat fungsi validasi
// murni; controller hanya memuat data yang dibutuhkan.
func (ctl *KelasController) validateEditors(c *fiber.Ctx, domain string, kelasID uuid.UUID, waliID *uuid.UUID, sekretarisIDs []uuid.UUID) error {
	if waliID != nil {
		var wali usermodel.UserModel
		err := ctl.DB.Where("id = ? AND domain = ?", *waliID, domain).First(&wali).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusBadRequest, "Wali kelas tidak ditemukan")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal memuat wali kelas")
		}

		var ownedKelasID *uuid.UUID
		var owned model.KelasModel
		err = ctl.DB.Where("kelas_domain = ? AND kelas_wali_kelas_id = ?", domain, *waliID).
			First(&owned).Error
		if err == nil {
			ownedKelasID = &owned.KelasID
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal memeriksa wali kelas")
		}

		if r := service.ValidateWaliKelas(wali.Type, kelasID, ownedKelasID); !r.OK() {
			return helper.ErrorWithDetails(c, fiber.StatusBadRequest, "Validasi gagal", r.Errors)
		}
	}

	if len(sekretarisIDs) > 0 {
		var users []usermodel.UserModel
		if err := ctl.DB.Where("domain = ? AND id IN ?", domain, sekretarisIDs).
			Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal memuat sekretaris")
		}

		types := make(map[uuid.UUID]*string, len(sekretarisIDs))
		for _, id := range sekretarisIDs {
			types[id] = nil
		}
		for i := range users {
			types[users[i].ID] = users[i].Type
		}
		if r := service.ValidateSekretaris(types); !r.OK() {
			return helper.ErrorWithDetails(c, fiber.StatusBadRequest, "Validasi gagal", r.Errors)
		}
	}
	return nil
}

func (ctl *KelasController) replaceSekretaris(tx *gorm.DB, kelas *model.KelasModel, domain string, ids []uuid.UUID) error {
	if ids == nil {
		return nil
	}
	var users []usermodel.UserModel
	if len(ids) > 0 {
		if err := tx.Where("domain = ? AND id IN ?", domain, ids).Find(&users).Error; err != nil {
			return err
		}
	}
	return tx.Model(kelas).Association("Sekretaris").Replace(users)
}
