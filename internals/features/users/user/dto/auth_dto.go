package dto

import "github.com/google/uuid"

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type MeKelas struct {
	KelasID   uuid.UUID `json:"kelas_id"`
	KelasName string    `json:"kelas_name"`
}

// MeResponse adalah profil user login beserta kelas yang dimiliki
// (sebagai wali kelas atau sekretaris).
type MeResponse struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Type        string    `json:"type"`
	Kelas       []MeKelas `json:"kelas"`
}
