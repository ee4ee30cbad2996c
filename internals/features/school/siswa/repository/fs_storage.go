package repository

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"absensiku_backend/internals/features/school/siswa/service"
)

// FSStorage menyimpan foto siswa di direktori lokal. Key adalah path relatif
// terhadap baseDir; path yang keluar dari baseDir ditolak.
type FSStorage struct {
	baseDir string
}

func NewFSStorage(baseDir string) *FSStorage {
	return &FSStorage{baseDir: baseDir}
}

var _ service.BlobStorage = (*FSStorage)(nil)

func (s *FSStorage) Delete(ctx context.Context, key string) error {
	clean := filepath.Clean(key)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return errors.New("key foto tidak valid")
	}
	err := os.Remove(filepath.Join(s.baseDir, clean))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
