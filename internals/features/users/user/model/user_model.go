package model

import (
	"time"

	"github.com/google/uuid"
)

// UserModel merepresentasikan tabel users di database.
// user_type menentukan hak tulis absensi: wali_kelas memiliki tepat satu
// kelas, sekretaris boleh ikut memiliki beberapa kelas, guru_piket hanya
// meng-upload scan masuk/pulang, kesiswaan membaca semua kelas.
type UserModel struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Username  string    `gorm:"size:50;not null;uniqueIndex:idx_users_domain_username" json:"username" validate:"required,min=3,max=50"`
	FirstName string    `gorm:"size:50" json:"first_name"`
	LastName  string    `gorm:"size:50" json:"last_name"`
	Password  string    `gorm:"not null" json:"-" validate:"required,min=8"`

	Type *string `gorm:"column:user_type;type:varchar(20)" json:"type" validate:"omitempty,oneof=wali_kelas sekretaris kesiswaan guru_piket"`

	IsActive    bool `gorm:"not null;default:true" json:"is_active"`
	IsStaff     bool `gorm:"not null;default:false" json:"is_staff"`
	IsSuperuser bool `gorm:"not null;default:false" json:"is_superuser"`

	Photo *string `gorm:"size:255" json:"photo,omitempty"`

	// Tenant; selalu difilter lewat parameter eksplisit di repository
	Domain string `gorm:"size:100;not null;uniqueIndex:idx_users_domain_username" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserModel) TableName() string { return "users" }

// DisplayName mengembalikan nama lengkap, fallback ke username.
func (u *UserModel) DisplayName() string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.Username
}

// TypeIs true jika user punya tipe t.
func (u *UserModel) TypeIs(t string) bool {
	return u.Type != nil && *u.Type == t
}
