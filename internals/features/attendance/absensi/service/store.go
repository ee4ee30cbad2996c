package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"absensiku_backend/internals/features/attendance/absensi/model"
)

// SiswaRef adalah potongan data siswa + kepemilikan kelasnya yang dibutuhkan
// reconciler untuk otorisasi dan isi conflict.
type SiswaRef struct {
	ID            uuid.UUID
	Fullname      string
	KelasID       uuid.UUID
	WaliKelasID   *uuid.UUID
	SekretarisIDs []uuid.UUID
}

// Store adalah akses data reconciler. Domain (tenant) selalu parameter
// eksplisit, tidak pernah filter ambient, supaya service bisa dites tanpa
// web framework. Implementasi GORM ada di package repository.
type Store interface {
	// InTx menjalankan fn dalam satu transaksi; error dari fn = rollback total.
	InTx(ctx context.Context, fn func(tx Store) error) error

	SiswaRefs(ctx context.Context, domain string, ids []uuid.UUID) (map[uuid.UUID]*SiswaRef, error)

	// IsLocked melapor kunci (kelas, tanggal); tidak ada record = tidak terkunci.
	IsLocked(ctx context.Context, domain string, kelasID uuid.UUID, date time.Time) (bool, error)
	UpsertLock(ctx context.Context, domain string, kelasID uuid.UUID, date time.Time, locked bool) error

	// OwnsKelas: user adalah wali kelas atau sekretaris kelas tersebut.
	OwnsKelas(ctx context.Context, domain string, userID, kelasID uuid.UUID) (bool, error)

	// FindAbsensi mengembalikan nil, nil jika belum ada record; relasi By
	// ikut dimuat untuk isi conflict.
	FindAbsensi(ctx context.Context, domain string, siswaID uuid.UUID, date time.Time) (*model.AbsensiModel, error)
	CreateAbsensi(ctx context.Context, a *model.AbsensiModel) error
	SaveAbsensi(ctx context.Context, a *model.AbsensiModel) error

	// ExpireWaiting mem-persist "alfa" untuk semua record tunggu yang sudah
	// lewat batas; dipanggil job eksplisit, bukan efek samping baca.
	ExpireWaiting(ctx context.Context, domain string, now time.Time) (int64, error)
}
