package helper

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

/* ===============================
   Locals hasil AuthMiddleware
=================================*/

// GetUserID mengambil user id yang diset AuthMiddleware.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	raw, ok := c.Locals("user_id").(string)
	if !ok || raw == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - user tidak ditemukan di context")
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - user id tidak valid")
	}
	return id, nil
}

// GetUserType mengambil tipe user (wali_kelas/sekretaris/kesiswaan/guru_piket).
func GetUserType(c *fiber.Ctx) string {
	t, _ := c.Locals("user_type").(string)
	return t
}

// GetUserDisplayName mengambil nama tampilan user login.
func GetUserDisplayName(c *fiber.Ctx) string {
	n, _ := c.Locals("user_name").(string)
	return n
}

// GetDomain mengambil tenant/domain request. Di-set AuthMiddleware dari Host
// header; semua query repository menerima nilai ini sebagai parameter eksplisit.
func GetDomain(c *fiber.Ctx) string {
	d, _ := c.Locals("domain").(string)
	if d == "" {
		d = c.Hostname()
	}
	return d
}
