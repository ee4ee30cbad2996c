package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"absensiku_backend/internals/constants"
	usermodel "absensiku_backend/internals/features/users/user/model"
)

// ErrWaitExpiryMissing: record "tunggu" tanpa batas kadaluarsa tidak boleh
// pernah tersimpan; dicek di BeforeSave sehingga invariannya dijaga di titik
// tulis, bukan ditemukan belakangan saat baca.
var ErrWaitExpiryMissing = errors.New("absensi berstatus tunggu wajib punya wait_expired_at")

// ErrWaitExpiryForbidden: selain status tunggu, wait_expired_at harus kosong.
var ErrWaitExpiryForbidden = errors.New("absensi selain status tunggu tidak boleh punya wait_expired_at")

// AbsensiModel adalah satu record kehadiran per siswa per tanggal.
// absensi_by_id nullable: NULL berarti record hasil scan piket yang belum
// diklaim editor manusia.
type AbsensiModel struct {
	AbsensiID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:absensi_id" json:"absensi_id"`

	AbsensiSiswaID uuid.UUID      `gorm:"type:uuid;not null;column:absensi_siswa_id;uniqueIndex:idx_absensi_siswa_date" json:"absensi_siswa_id"`
	AbsensiDate    datatypes.Date `gorm:"not null;column:absensi_date;uniqueIndex:idx_absensi_siswa_date" json:"absensi_date"`

	AbsensiStatus        string     `gorm:"type:varchar(30);not null;column:absensi_status" json:"absensi_status"`
	AbsensiWaitExpiredAt *time.Time `gorm:"column:absensi_wait_expired_at" json:"absensi_wait_expired_at,omitempty"`

	AbsensiByID *uuid.UUID           `gorm:"type:uuid;column:absensi_by_id" json:"absensi_by_id,omitempty"`
	By          *usermodel.UserModel `gorm:"foreignKey:AbsensiByID" json:"by,omitempty"`

	AbsensiDomain string `gorm:"size:100;not null;column:absensi_domain;uniqueIndex:idx_absensi_siswa_date" json:"-"`

	// Timestamp dipercaya dari client (konsistensi historis multi-device),
	// bukan autoCreateTime/autoUpdateTime
	AbsensiCreatedAt time.Time `gorm:"not null;column:absensi_created_at" json:"absensi_created_at"`
	AbsensiUpdatedAt time.Time `gorm:"not null;column:absensi_updated_at" json:"absensi_updated_at"`
}

func (AbsensiModel) TableName() string { return "absensi" }

// ValidateWaitExpiry menegakkan invarian status tunggu <-> wait_expired_at.
func (a *AbsensiModel) ValidateWaitExpiry() error {
	if a.AbsensiStatus == constants.StatusTunggu && a.AbsensiWaitExpiredAt == nil {
		return ErrWaitExpiryMissing
	}
	if a.AbsensiStatus != constants.StatusTunggu && a.AbsensiWaitExpiredAt != nil {
		return ErrWaitExpiryForbidden
	}
	return nil
}

func (a *AbsensiModel) BeforeSave(tx *gorm.DB) error {
	return a.ValidateWaitExpiry()
}

// SetStatus mengganti status dan membersihkan wait_expired_at saat record
// keluar dari status tunggu.
func (a *AbsensiModel) SetStatus(status string) {
	a.AbsensiStatus = status
	if status != constants.StatusTunggu {
		a.AbsensiWaitExpiredAt = nil
	}
}

// DateOnly menormalkan timestamp ke tanggal kalender (tengah malam, zona loc).
func DateOnly(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// ToDate mengubah time.Time menjadi kolom date.
func ToDate(t time.Time) datatypes.Date {
	return datatypes.Date(t)
}

// DateValue mengembalikan tanggal record sebagai time.Time.
func (a *AbsensiModel) DateValue() time.Time {
	return time.Time(a.AbsensiDate)
}
