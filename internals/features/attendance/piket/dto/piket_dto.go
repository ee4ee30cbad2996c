package dto

import "github.com/google/uuid"

const (
	TypeAbsenMasuk  = "absen_masuk"
	TypeAbsenPulang = "absen_pulang"
)

// CheckEvent adalah satu hasil scan QR dari device guru piket.
// Timestamp epoch detik dari jam device.
type CheckEvent struct {
	Siswa     uuid.UUID `json:"siswa" validate:"required"`
	Type      string    `json:"type" validate:"required,oneof=absen_masuk absen_pulang"`
	Timestamp int64     `json:"timestamp" validate:"required"`
	Kelas     uuid.UUID `json:"kelas"`
}

type IngestRequest struct {
	Data []CheckEvent `json:"data" validate:"required,dive"`
}

// IngestResult.Invalids berisi event yang ditolak siklus ini; event yang sama
// tetap tersimpan di buffer untuk dicoba lagi sampai TTL habis.
type IngestResult struct {
	Invalids []CheckEvent `json:"invalids"`
}
