package constants

import "fmt"

// Tipe user, mengikuti kolom users.user_type
const (
	RoleWaliKelas  = "wali_kelas"
	RoleSekretaris = "sekretaris"
	RoleKesiswaan  = "kesiswaan"
	RoleGuruPiket  = "guru_piket"
)

// Template pesan error role
const (
	ErrOnlyPiketCanAccess     = "❌ Hanya guru piket yang boleh mengakses fitur %s."
	ErrOnlyKesiswaanCanAccess = "❌ Hanya kesiswaan yang boleh mengakses fitur %s."
	ErrOnlyStaffCanAccess     = "❌ Hanya staff yang boleh mengakses fitur %s."
)

func RoleErrorPiket(feature string) string {
	return fmt.Sprintf(ErrOnlyPiketCanAccess, feature)
}

func RoleErrorKesiswaan(feature string) string {
	return fmt.Sprintf(ErrOnlyKesiswaanCanAccess, feature)
}

func RoleErrorStaff(feature string) string {
	return fmt.Sprintf(ErrOnlyStaffCanAccess, feature)
}

// ==========================
// ✅ Grouped Role Slices
// ==========================
var (
	AllRoles = []string{
		RoleWaliKelas,
		RoleSekretaris,
		RoleKesiswaan,
		RoleGuruPiket,
	}

	// Role yang boleh menjadi pemilik/editor absensi sebuah kelas
	KelasEditorRoles = []string{
		RoleWaliKelas,
		RoleSekretaris,
	}
)
