package dto

import (
	"github.com/google/uuid"
)

/* =========================================================
 * REQUESTS
 * ========================================================= */

// UploadItem adalah satu aksi hasil antrean offline client.
// Data berupa string JSON sesuai format antrean di device.
type UploadItem struct {
	Action string `json:"action" validate:"required,oneof=absen lock unlock"`
	Data   string `json:"data" validate:"required"`
}

type UploadRequest struct {
	Data []UploadItem `json:"data" validate:"required,dive"`
}

// AbsenPayload adalah isi Data untuk action "absen".
type AbsenPayload struct {
	Siswa  uuid.UUID `json:"siswa"`
	Date   string    `json:"date"`
	Status string    `json:"status"`

	// Epoch detik dari jam client; dipercaya apa adanya untuk
	// created_at/updated_at (konsistensi historis lintas device)
	UpdatedAt *int64 `json:"updated_at,omitempty"`

	// Status yang diyakini client tersimpan di server; dasar keputusan
	// overwrite vs conflict saat editor berbeda
	PreviousStatus *string `json:"previous_status,omitempty"`
}

// LockPayload adalah isi Data untuk action "lock"/"unlock".
type LockPayload struct {
	Kelas uuid.UUID `json:"kelas"`
	Date  string    `json:"date"`
}

/* =========================================================
 * RESPONSE
 * ========================================================= */

type ConflictSide struct {
	DisplayName   string `json:"display_name"`
	AbsensiStatus string `json:"absensi_status"`
}

// Conflict dikembalikan ke client, tidak pernah disimpan dan tidak
// menggagalkan batch.
type Conflict struct {
	Type           string       `json:"type"`
	AbsensiID      uuid.UUID    `json:"absensi_id"`
	AbsensiSiswa   string       `json:"absensi_siswa"`
	AbsensiSiswaID uuid.UUID    `json:"absensi_siswa_id"`
	AbsensiKelasID uuid.UUID    `json:"absensi_kelas_id"`
	AbsensiDate    string       `json:"absensi_date"`
	Other          ConflictSide `json:"other"`
	Self           ConflictSide `json:"self"`
}

type UploadResult struct {
	Applied   int        `json:"applied"`
	Conflicts []Conflict `json:"conflicts"`
}
