package model

import (
	"time"

	"github.com/google/uuid"

	usermodel "absensiku_backend/internals/features/users/user/model"
)

type KelasModel struct {
	KelasID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:kelas_id" json:"kelas_id"`
	KelasName   string    `gorm:"size:50;not null;column:kelas_name;uniqueIndex:idx_kelas_domain_name" json:"kelas_name" validate:"required,max=50"`
	KelasActive bool      `gorm:"not null;default:true;column:kelas_active" json:"kelas_active"`

	// Wali kelas maksimal memiliki satu kelas (unique)
	KelasWaliKelasID *uuid.UUID           `gorm:"type:uuid;uniqueIndex;column:kelas_wali_kelas_id" json:"kelas_wali_kelas_id,omitempty"`
	WaliKelas        *usermodel.UserModel `gorm:"foreignKey:KelasWaliKelasID" json:"wali_kelas,omitempty"`

	// Sekretaris boleh lebih dari satu, dan satu sekretaris boleh di banyak kelas
	Sekretaris []usermodel.UserModel `gorm:"many2many:kelas_sekretaris;foreignKey:KelasID;joinForeignKey:KelasID;References:ID;joinReferences:UserID" json:"sekretaris,omitempty"`

	KelasDomain string `gorm:"size:100;not null;column:kelas_domain;uniqueIndex:idx_kelas_domain_name" json:"-"`

	KelasCreatedAt time.Time `gorm:"column:kelas_created_at;autoCreateTime" json:"kelas_created_at"`
	KelasUpdatedAt time.Time `gorm:"column:kelas_updated_at;autoUpdateTime" json:"kelas_updated_at"`
}

func (KelasModel) TableName() string { return "kelas" }

// IsSekretaris true jika userID terdaftar sebagai sekretaris kelas ini
// (Sekretaris harus sudah di-preload).
func (k *KelasModel) IsSekretaris(userID uuid.UUID) bool {
	for _, s := range k.Sekretaris {
		if s.ID == userID {
			return true
		}
	}
	return false
}

// IsOwnedBy true jika user adalah wali kelas atau sekretaris kelas ini.
func (k *KelasModel) IsOwnedBy(userID uuid.UUID) bool {
	if k.KelasWaliKelasID != nil && *k.KelasWaliKelasID == userID {
		return true
	}
	return k.IsSekretaris(userID)
}
