package service

import (
	"fmt"

	"github.com/google/uuid"

	"absensiku_backend/internals/constants"
)

// Validasi kelas dan perubahan tipe user sebagai fungsi biasa dengan
// parameter eksplisit. Controller yang memuat datanya; di sini hanya
// keputusan, supaya aturannya bisa dites tanpa database.

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationResult struct {
	Errors []FieldError `json:"errors"`
}

func (r *ValidationResult) OK() bool { return len(r.Errors) == 0 }

func (r *ValidationResult) add(field, msg string) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: msg})
}

// ValidateWaliKelas memeriksa calon wali kelas untuk kelas kelasID.
// userType: tipe user calon wali (nil berarti tanpa tipe). ownedKelasID:
// kelas yang saat ini sudah dia wali-kan, nil jika belum ada. Wali kelas
// maksimal memiliki satu kelas.
func ValidateWaliKelas(userType *string, kelasID uuid.UUID, ownedKelasID *uuid.UUID) ValidationResult {
	var r ValidationResult
	if userType == nil || *userType != constants.RoleWaliKelas {
		r.add("kelas_wali_kelas_id", "User harus bertipe wali_kelas")
	}
	if ownedKelasID != nil && *ownedKelasID != kelasID {
		r.add("kelas_wali_kelas_id", "User sudah menjadi wali kelas di kelas lain")
	}
	return r
}

// ValidateSekretaris memeriksa tipe semua calon sekretaris kelas.
// userTypes memetakan id user ke tipenya; user yang tidak ditemukan di
// domain diwakili value nil.
func ValidateSekretaris(userTypes map[uuid.UUID]*string) ValidationResult {
	var r ValidationResult
	for id, t := range userTypes {
		if t == nil {
			r.add("sekretaris_ids", fmt.Sprintf("User %s tidak ditemukan", id))
			continue
		}
		if *t != constants.RoleSekretaris {
			r.add("sekretaris_ids", fmt.Sprintf("User %s harus bertipe sekretaris", id))
		}
	}
	return r
}

// ValidateUserTypeChange menolak penggantian tipe user yang masih memiliki
// atau ikut memiliki kelas; lepaskan dari kelasnya dulu.
func ValidateUserTypeChange(oldType, newType *string, ownsKelas bool) ValidationResult {
	var r ValidationResult
	if oldType == nil || newType == nil {
		return r
	}
	if *oldType == *newType {
		return r
	}
	if ownsKelas {
		r.add("type", "Tipe user tidak bisa diganti selama masih terdaftar di sebuah kelas")
	}
	return r
}
