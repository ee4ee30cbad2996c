package constants

// Status absensi yang tersimpan di kolom absensi_status.
// "tunggu" adalah status sementara hasil scan masuk guru piket:
// wajib punya absensi_wait_expired_at dan akan dianggap "alfa"
// setelah lewat jam keluar kelas.
const (
	StatusHadir  = "hadir"
	StatusSakit  = "sakit"
	StatusIzin   = "izin"
	StatusAlfa   = "alfa"
	StatusBolos  = "bolos"
	StatusTunggu = "tunggu"
)

var AbsensiStatuses = []string{
	StatusHadir,
	StatusSakit,
	StatusIzin,
	StatusAlfa,
	StatusBolos,
	StatusTunggu,
}

func IsValidStatus(s string) bool {
	for _, v := range AbsensiStatuses {
		if v == s {
			return true
		}
	}
	return false
}
