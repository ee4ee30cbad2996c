package dto

import "github.com/google/uuid"

type SiswaCreateRequest struct {
	SiswaFullname string    `json:"siswa_fullname" validate:"required,max=50"`
	SiswaKelasID  uuid.UUID `json:"siswa_kelas_id" validate:"required"`
	SiswaNIS      *string   `json:"siswa_nis,omitempty" validate:"omitempty,max=20"`
	SiswaNISN     *string   `json:"siswa_nisn,omitempty" validate:"omitempty,max=20"`
	SiswaPhoto    *string   `json:"siswa_photo,omitempty" validate:"omitempty,max=255"`
}

type SiswaUpdateRequest struct {
	SiswaFullname *string    `json:"siswa_fullname,omitempty" validate:"omitempty,max=50"`
	SiswaKelasID  *uuid.UUID `json:"siswa_kelas_id,omitempty"`
	SiswaNIS      *string    `json:"siswa_nis,omitempty" validate:"omitempty,max=20"`
	SiswaNISN     *string    `json:"siswa_nisn,omitempty" validate:"omitempty,max=20"`
	SiswaPhoto    *string    `json:"siswa_photo,omitempty" validate:"omitempty,max=255"`
}

// SiswaDirectoryEntry untuk layar scan guru piket.
type SiswaDirectoryEntry struct {
	SiswaID       uuid.UUID `json:"siswa_id"`
	SiswaFullname string    `json:"siswa_fullname"`
	KelasID       uuid.UUID `json:"kelas_id"`
	KelasName     string    `json:"kelas_name"`
	SiswaNIS      *string   `json:"siswa_nis,omitempty"`
	SiswaPhoto    *string   `json:"siswa_photo,omitempty"`
}
