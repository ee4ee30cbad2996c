package service

import (
	"time"

	"absensiku_backend/internals/constants"

	"absensiku_backend/internals/features/attendance/absensi/model"
)

// ResolveStatus menghitung status efektif sebuah record.
// Status selain "tunggu" dikembalikan apa adanya. Status "tunggu" menjadi
// "alfa" begitu now mencapai waitExpiredAt. Murni tanpa side effect:
// pemanggil yang memutuskan kapan hasilnya dipersist (lihat RefreshExpired),
// membaca tidak pernah mengubah storage.
func ResolveStatus(stored string, waitExpiredAt *time.Time, now time.Time) (string, error) {
	if stored != constants.StatusTunggu {
		return stored, nil
	}
	if waitExpiredAt == nil {
		return "", model.ErrWaitExpiryMissing
	}
	if !now.Before(*waitExpiredAt) {
		return constants.StatusAlfa, nil
	}
	return constants.StatusTunggu, nil
}
