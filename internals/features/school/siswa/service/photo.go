package service

import (
	"context"
	"log"
)

// BlobStorage adalah tempat file foto siswa tersimpan. Hook hanya butuh
// menghapus; upload foto baru terjadi di luar jalur ini.
type BlobStorage interface {
	Delete(ctx context.Context, key string) error
}

// PhotoHooks membersihkan file foto lama secara eksplisit saat record siswa
// berubah atau dihapus. Dipanggil controller, bukan efek samping ORM.
type PhotoHooks struct {
	storage BlobStorage
}

func NewPhotoHooks(storage BlobStorage) *PhotoHooks {
	return &PhotoHooks{storage: storage}
}

// PreSave menghapus foto lama jika foto diganti atau dikosongkan.
// Gagal hapus hanya dicatat; record siswa tetap tersimpan.
func (h *PhotoHooks) PreSave(ctx context.Context, oldPhoto, newPhoto *string) {
	if oldPhoto == nil || *oldPhoto == "" {
		return
	}
	if newPhoto != nil && *newPhoto == *oldPhoto {
		return
	}
	if err := h.storage.Delete(ctx, *oldPhoto); err != nil {
		log.Printf("[WARN] gagal menghapus foto lama %s: %v", *oldPhoto, err)
	}
}

// PostDelete menghapus foto milik record siswa yang baru dihapus.
func (h *PhotoHooks) PostDelete(ctx context.Context, photo *string) {
	if photo == nil || *photo == "" {
		return
	}
	if err := h.storage.Delete(ctx, *photo); err != nil {
		log.Printf("[WARN] gagal menghapus foto %s: %v", *photo, err)
	}
}
