package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeStorage struct {
	deleted []string
}

func (s *fakeStorage) Delete(ctx context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return nil
}

func strPtr(s string) *string { return &s }

func TestPreSaveDeletesReplacedPhoto(t *testing.T) {
	storage := &fakeStorage{}
	hooks := NewPhotoHooks(storage)

	hooks.PreSave(context.Background(), strPtr("foto/lama.jpg"), strPtr("foto/baru.jpg"))
	assert.Equal(t, []string{"foto/lama.jpg"}, storage.deleted)
}

func TestPreSaveDeletesClearedPhoto(t *testing.T) {
	storage := &fakeStorage{}
	hooks := NewPhotoHooks(storage)

	hooks.PreSave(context.Background(), strPtr("foto/lama.jpg"), nil)
	assert.Equal(t, []string{"foto/lama.jpg"}, storage.deleted)
}

func TestPreSaveKeepsUnchangedPhoto(t *testing.T) {
	storage := &fakeStorage{}
	hooks := NewPhotoHooks(storage)

	hooks.PreSave(context.Background(), strPtr("foto/tetap.jpg"), strPtr("foto/tetap.jpg"))
	hooks.PreSave(context.Background(), nil, strPtr("foto/baru.jpg"))
	hooks.PreSave(context.Background(), strPtr(""), nil)
	assert.Empty(t, storage.deleted)
}

func TestPostDeleteRemovesPhoto(t *testing.T) {
	storage := &fakeStorage{}
	hooks := NewPhotoHooks(storage)

	hooks.PostDelete(context.Background(), strPtr("foto/siswa.jpg"))
	hooks.PostDelete(context.Background(), nil)
	assert.Equal(t, []string{"foto/siswa.jpg"}, storage.deleted)
}
