package controller

import (
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"absensiku_backend/internals/configs"
	"absensiku_backend/internals/constants"
	"absensiku_backend/internals/features/users/user/dto"
	"absensiku_backend/internals/features/users/user/model"
	kelasmodel "absensiku_backend/internals/features/school/kelas/model"
	helper "absensiku_backend/internals/helpers"
)

type AuthController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db, Validator: validator.New()}
}

// Login menukar username+password dengan JWT. User dicari pada domain
// request; kredensial salah dan user tidak ada sengaja tidak dibedakan.
func (ctl *AuthController) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	domain := c.Hostname()

	var user model.UserModel
	err := ctl.DB.
		Where("username = ? AND domain = ? AND is_active = ?", req.Username, domain, true).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusUnauthorized, "Username atau password salah")
	}
	if err != nil {
		log.Printf("[ERROR] login: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal memproses login")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Username atau password salah")
	}

	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"exp":     time.Now().Add(7 * 24 * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(configs.JWTSecret))
	if err != nil {
		log.Printf("[ERROR] sign token: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal membuat token")
	}

	return helper.Success(c, "Login berhasil", dto.LoginResponse{Token: token})
}

// Me mengembalikan profil user login beserta kelas yang dimilikinya.
func (ctl *AuthController) Me(c *fiber.Ctx) error {
	userID, err := helper.GetUserID(c)
	if err != nil {
		return err
	}
	domain := helper.GetDomain(c)

	var user model.UserModel
	if err := ctl.DB.Where("id = ? AND domain = ?", userID, domain).First(&user).Error; err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "User tidak ditemukan")
	}

	userType := ""
	if user.Type != nil {
		userType = *user.Type
	}

	resp := dto.MeResponse{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName(),
		Type:        userType,
		Kelas:       []dto.MeKelas{},
	}

	var kelas []kelasmodel.KelasModel
	switch userType {
	case constants.RoleWaliKelas:
		err = ctl.DB.
			Where("kelas_domain = ? AND kelas_wali_kelas_id = ?", domain, userID).
			Find(&kelas).Error
	case constants.RoleSekretaris:
		err = ctl.DB.
			Joins("JOIN kelas_sekretaris ks ON ks.kelas_id = kelas.kelas_id").
			Where("kelas.kelas_domain = ? AND ks.user_id = ?", domain, userID).
			Find(&kelas).Error
	case constants.RoleKesiswaan:
		// kesiswaan membaca semua kelas
		err = ctl.DB.Where("kelas_domain = ?", domain).Order("kelas_name").Find(&kelas).Error
	}
	if err != nil {
		log.Printf("[ERROR] me kelas: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal memuat kelas")
	}

	for _, k := range kelas {
		resp.Kelas = append(resp.Kelas, dto.MeKelas{KelasID: k.KelasID, KelasName: k.KelasName})
	}
	return helper.Success(c, "OK", resp)
}
