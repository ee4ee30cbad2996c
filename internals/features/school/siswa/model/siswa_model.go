package model

import (
	"time"

	"github.com/google/uuid"

	kelasmodel "absensiku_backend/internals/features/school/kelas/model"
)

type SiswaModel struct {
	SiswaID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:siswa_id" json:"siswa_id"`
	SiswaFullname string    `gorm:"size:50;not null;column:siswa_fullname" json:"siswa_fullname" validate:"required,max=50"`

	// Siswa selalu terdaftar di tepat satu kelas; kelas tidak bisa dihapus
	// selama masih punya siswa (dijaga di controller kelas)
	SiswaKelasID uuid.UUID              `gorm:"type:uuid;not null;index;column:siswa_kelas_id" json:"siswa_kelas_id" validate:"required"`
	Kelas        *kelasmodel.KelasModel `gorm:"foreignKey:SiswaKelasID" json:"kelas,omitempty"`

	SiswaNIS   *string `gorm:"size:20;column:siswa_nis" json:"siswa_nis,omitempty"`
	SiswaNISN  *string `gorm:"size:20;column:siswa_nisn" json:"siswa_nisn,omitempty"`
	SiswaPhoto *string `gorm:"size:255;column:siswa_photo" json:"siswa_photo,omitempty"`

	SiswaDomain string `gorm:"size:100;not null;index;column:siswa_domain" json:"-"`

	SiswaCreatedAt time.Time `gorm:"column:siswa_created_at;autoCreateTime" json:"siswa_created_at"`
	SiswaUpdatedAt time.Time `gorm:"column:siswa_updated_at;autoUpdateTime" json:"siswa_updated_at"`
}

func (SiswaModel) TableName() string { return "siswa" }
