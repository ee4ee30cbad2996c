package controller

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	kelasservice "absensiku_backend/internals/features/school/kelas/service"
	"absensiku_backend/internals/features/users/user/model"
	helper "absensiku_backend/internals/helpers"
)

type UserAdminController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewUserAdminController(db *gorm.DB) *UserAdminController {
	return &UserAdminController{DB: db, Validator: validator.New()}
}

type userUpdateRequest struct {
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=50"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,max=50"`
	Type      *string `json:"type,omitempty" validate:"omitempty,oneof=wali_kelas sekretaris kesiswaan guru_piket"`
	IsActive  *bool   `json:"is_active,omitempty"`
	Password  *string `json:"password,omitempty" validate:"omitempty,min=8"`
}

func (ctl *UserAdminController) List(c *fiber.Ctx) error {
	var users []model.UserModel
	err := ctl.DB.Where("domain = ?", helper.GetDomain(c)).
		Order("username").
		Find(&users).Error
	if err != nil {
		log.Printf("[ERROR] list users: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal memuat users")
	}
	return helper.Success(c, "OK", users)
}

// Update mengedit profil user. Penggantian tipe ditolak selama user masih
// terdaftar sebagai wali kelas atau sekretaris sebuah kelas.
func (ctl *UserAdminController) Update(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "ID user tidak valid")
	}

	var req userUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}
	domain := helper.GetDomain(c)

	var user model.UserModel
	err = ctl.DB.Where("id = ? AND domain = ?", userID, domain).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "User tidak ditemukan")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal memuat user")
	}

	if req.Type != nil {
		ownsKelas, err := ctl.ownsKelas(domain, userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal memeriksa kelas user")
		}
		if r := kelasservice.ValidateUserTypeChange(user.Type, req.Type, ownsKelas); !r.OK() {
			return helper.ErrorWithDetails(c, fiber.StatusBadRequest, "Validasi gagal", r.Errors)
		}
		user.Type = req.Type
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal mengganti password")
		}
		user.Password = string(hash)
	}

	if err := ctl.DB.Save(&user).Error; err != nil {
		log.Printf("[ERROR] update user: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal memperbarui user")
	}
	return helper.Success(c, "User berhasil diperbarui", user)
}

func (ctl *UserAdminController) ownsKelas(domain string, userID uuid.UUID) (bool, error) {
	var count int64
	err := ctl.DB.Table("kelas").
		Joins("LEFT JOIN kelas_sekretaris ks ON ks.kelas_id = kelas.kelas_id").
		Where("kelas.kelas_domain = ?", domain).
		Where("kelas.kelas_wali_kelas_id = ? OR ks.user_id = ?", userID, userID).
		Count(&count).Error
	return count > 0, err
}
