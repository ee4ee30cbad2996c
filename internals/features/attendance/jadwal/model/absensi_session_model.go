package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	kelasmodel "absensiku_backend/internals/features/school/kelas/model"
)

// Nama hari yang dipakai kolom absensi_session_days dan pencocokan piket.
// Minggu sengaja tidak ada: scan hari Minggu di-drop.
var DayNames = map[time.Weekday]string{
	time.Monday:    "senin",
	time.Tuesday:   "selasa",
	time.Wednesday: "rabu",
	time.Thursday:  "kamis",
	time.Friday:    "jumat",
	time.Saturday:  "sabtu",
}

// AbsensiSessionModel adalah jadwal absensi QR: jam masuk + toleransi + jam
// keluar per hari. Satu jadwal bisa dipakai banyak kelas. Hanya jalur piket
// yang membaca jadwal; edit manual tidak.
type AbsensiSessionModel struct {
	AbsensiSessionID   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:absensi_session_id" json:"absensi_session_id"`
	AbsensiSessionName string    `gorm:"size:50;not null;column:absensi_session_name" json:"absensi_session_name" validate:"required,max=50"`

	// Hari aktif jadwal, subset dari DayNames
	AbsensiSessionDays pq.StringArray `gorm:"type:text[];not null;column:absensi_session_days" json:"absensi_session_days" validate:"required,min=1"`

	// Jam dalam format "15:04"
	AbsensiSessionJamMasuk  string `gorm:"type:varchar(5);not null;column:absensi_session_jam_masuk" json:"absensi_session_jam_masuk" validate:"required"`
	AbsensiSessionJamKeluar string `gorm:"type:varchar(5);not null;column:absensi_session_jam_keluar" json:"absensi_session_jam_keluar" validate:"required"`

	AbsensiSessionToleransiMenit int `gorm:"not null;default:0;column:absensi_session_toleransi_menit" json:"absensi_session_toleransi_menit" validate:"min=0"`

	Kelas []kelasmodel.KelasModel `gorm:"many2many:absensi_session_kelas;foreignKey:AbsensiSessionID;joinForeignKey:AbsensiSessionID;References:KelasID;joinReferences:KelasID" json:"kelas,omitempty"`

	AbsensiSessionDomain string `gorm:"size:100;not null;index;column:absensi_session_domain" json:"-"`

	AbsensiSessionCreatedAt time.Time `gorm:"column:absensi_session_created_at;autoCreateTime" json:"absensi_session_created_at"`
	AbsensiSessionUpdatedAt time.Time `gorm:"column:absensi_session_updated_at;autoUpdateTime" json:"absensi_session_updated_at"`
}

func (AbsensiSessionModel) TableName() string { return "absensi_session" }

// HasDay true jika jadwal aktif pada hari tersebut.
func (s *AbsensiSessionModel) HasDay(day string) bool {
	for _, d := range s.AbsensiSessionDays {
		if d == day {
			return true
		}
	}
	return false
}

func parseClock(v string, date time.Time, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("15:04", v, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("jam %q tidak valid: %w", v, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}

// JamMasukOn mengembalikan jam masuk pada tanggal date.
func (s *AbsensiSessionModel) JamMasukOn(date time.Time, loc *time.Location) (time.Time, error) {
	return parseClock(s.AbsensiSessionJamMasuk, date, loc)
}

// JamMasukSampaiOn = jam masuk + toleransi.
func (s *AbsensiSessionModel) JamMasukSampaiOn(date time.Time, loc *time.Location) (time.Time, error) {
	t, err := s.JamMasukOn(date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return t.Add(time.Duration(s.AbsensiSessionToleransiMenit) * time.Minute), nil
}

// JamKeluarOn mengembalikan jam keluar pada tanggal date; dipakai sebagai
// batas kadaluarsa status tunggu.
func (s *AbsensiSessionModel) JamKeluarOn(date time.Time, loc *time.Location) (time.Time, error) {
	return parseClock(s.AbsensiSessionJamKeluar, date, loc)
}
