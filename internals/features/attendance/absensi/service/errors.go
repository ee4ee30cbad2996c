package service

import (
	"errors"
	"fmt"
	"time"
)

// ErrForbidden: aksi lock/unlock oleh user yang tidak memiliki kelas.
// Fatal untuk seluruh batch (state kunci menyangkut keamanan, beda dengan
// edit absensi biasa yang cukup di-skip).
var ErrForbidden = errors.New("Ditolak")

// DateParseError menggagalkan seluruh batch dengan HTTP 400.
type DateParseError struct {
	Raw string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("gagal parsing tanggal %s", e.Raw)
}

// LockedPeriodError menggagalkan seluruh batch dengan HTTP 403; membawa
// tanggal untuk pesan ke user.
type LockedPeriodError struct {
	Date time.Time
}

func (e *LockedPeriodError) Error() string {
	return fmt.Sprintf(
		"Tidak bisa melanjutkan aksi. Absen tanggal %s sedang dikunci, coba hubungi wali kelas atau operator",
		e.Date.Format("2006-01-02"),
	)
}
