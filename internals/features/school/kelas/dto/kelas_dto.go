package dto

import "github.com/google/uuid"

type KelasCreateRequest struct {
	KelasName        string      `json:"kelas_name" validate:"required,max=50"`
	KelasActive      *bool       `json:"kelas_active,omitempty"`
	KelasWaliKelasID *uuid.UUID  `json:"kelas_wali_kelas_id,omitempty"`
	SekretarisIDs    []uuid.UUID `json:"sekretaris_ids,omitempty"`
}

type KelasUpdateRequest struct {
	KelasName        *string     `json:"kelas_name,omitempty" validate:"omitempty,max=50"`
	KelasActive      *bool       `json:"kelas_active,omitempty"`
	KelasWaliKelasID *uuid.UUID  `json:"kelas_wali_kelas_id,omitempty"`
	SekretarisIDs    []uuid.UUID `json:"sekretaris_ids,omitempty"`
}
