package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// KunciAbsensiModel mengunci absensi satu kelas pada satu tanggal.
// Hanya dibuat/diubah oleh wali kelas atau sekretaris kelas tersebut.
type KunciAbsensiModel struct {
	KunciAbsensiID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:kunci_absensi_id" json:"kunci_absensi_id"`

	KunciAbsensiKelasID uuid.UUID      `gorm:"type:uuid;not null;column:kunci_absensi_kelas_id;uniqueIndex:idx_kunci_kelas_date" json:"kunci_absensi_kelas_id"`
	KunciAbsensiDate    datatypes.Date `gorm:"not null;column:kunci_absensi_date;uniqueIndex:idx_kunci_kelas_date" json:"kunci_absensi_date"`
	KunciAbsensiLocked  bool           `gorm:"not null;default:true;column:kunci_absensi_locked" json:"kunci_absensi_locked"`

	KunciAbsensiDomain string `gorm:"size:100;not null;column:kunci_absensi_domain;uniqueIndex:idx_kunci_kelas_date" json:"-"`

	KunciAbsensiCreatedAt time.Time `gorm:"column:kunci_absensi_created_at;autoCreateTime" json:"kunci_absensi_created_at"`
	KunciAbsensiUpdatedAt time.Time `gorm:"column:kunci_absensi_updated_at;autoUpdateTime" json:"kunci_absensi_updated_at"`
}

func (KunciAbsensiModel) TableName() string { return "kunci_absensi" }
