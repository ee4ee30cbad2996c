package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"absensiku_backend/internals/configs"
	usermodel "absensiku_backend/internals/features/users/user/model"
)

// AuthMiddleware memvalidasi bearer token, memuat user aktif pada domain
// request, lalu mengisi Locals: user_id, user_type, user_name, user_is_staff,
// domain. Domain diambil dari Host header; repository tidak pernah membaca
// tenant secara ambient.
func AuthMiddleware(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := extractToken(c)
		if tokenString == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Token tidak ditemukan")
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("metode signing tidak dikenal")
			}
			return []byte(configs.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "Token tidak valid atau kadaluarsa")
		}

		rawID, _ := claims["user_id"].(string)
		userID, err := uuid.Parse(rawID)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Token tidak valid")
		}

		domain := c.Hostname()

		var user usermodel.UserModel
		err = db.Where("id = ? AND domain = ? AND is_active = ?", userID, domain, true).
			First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "User tidak ditemukan atau nonaktif")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal memuat user")
		}

		c.Locals("user_id", user.ID.String())
		if user.Type != nil {
			c.Locals("user_type", *user.Type)
		}
		c.Locals("user_name", user.DisplayName())
		c.Locals("user_is_staff", user.IsStaff)
		c.Locals("domain", domain)
		return c.Next()
	}
}

// RequireStaff membatasi route admin ke user dengan is_staff.
func RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if staff, _ := c.Locals("user_is_staff").(bool); !staff {
			return fiber.NewError(fiber.StatusForbidden, "Hanya staff yang boleh mengakses halaman admin")
		}
		return c.Next()
	}
}

func extractToken(c *fiber.Ctx) string {
	h := c.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return c.Cookies("token")
}
