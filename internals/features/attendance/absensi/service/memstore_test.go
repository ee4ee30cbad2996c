package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"absensiku_backend/internals/constants"
	"absensiku_backend/internals/features/attendance/absensi/model"
	usermodel "absensiku_backend/internals/features/users/user/model"
)

// memStore adalah service.Store in-memory untuk test. InTx membuat snapshot
// dan mengembalikannya saat fn error, meniru rollback transaksi.
type memStore struct {
	siswas  map[uuid.UUID]*SiswaRef
	users   map[uuid.UUID]*usermodel.UserModel
	locks   map[string]bool
	absensi map[string]*model.AbsensiModel
}

func newMemStore() *memStore {
	return &memStore{
		siswas:  map[uuid.UUID]*SiswaRef{},
		users:   map[uuid.UUID]*usermodel.UserModel{},
		locks:   map[string]bool{},
		absensi: map[string]*model.AbsensiModel{},
	}
}

func lockKey(kelasID uuid.UUID, date time.Time) string {
	return kelasID.String() + "|" + date.Format("2006-01-02")
}

func absensiKey(siswaID uuid.UUID, date time.Time) string {
	return siswaID.String() + "|" + date.Format("2006-01-02")
}

func (m *memStore) snapshot() (map[string]bool, map[string]*model.AbsensiModel) {
	locks := make(map[string]bool, len(m.locks))
	for k, v := range m.locks {
		locks[k] = v
	}
	absensi := make(map[string]*model.AbsensiModel, len(m.absensi))
	for k, v := range m.absensi {
		cp := *v
		absensi[k] = &cp
	}
	return locks, absensi
}

func (m *memStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	locks, absensi := m.snapshot()
	if err := fn(m); err != nil {
		m.locks, m.absensi = locks, absensi
		return err
	}
	return nil
}

func (m *memStore) SiswaRefs(ctx context.Context, domain string, ids []uuid.UUID) (map[uuid.UUID]*SiswaRef, error) {
	refs := map[uuid.UUID]*SiswaRef{}
	for _, id := range ids {
		if ref, ok := m.siswas[id]; ok {
			refs[id] = ref
		}
	}
	return refs, nil
}

func (m *memStore) IsLocked(ctx context.Context, domain string, kelasID uuid.UUID, date time.Time) (bool, error) {
	return m.locks[lockKey(kelasID, date)], nil
}

func (m *memStore) UpsertLock(ctx context.Context, domain string, kelasID uuid.UUID, date time.Time, locked bool) error {
	m.locks[lockKey(kelasID, date)] = locked
	return nil
}

func (m *memStore) OwnsKelas(ctx context.Context, domain string, userID, kelasID uuid.UUID) (bool, error) {
	for _, ref := range m.siswas {
		if ref.KelasID != kelasID {
			continue
		}
		if ref.WaliKelasID != nil && *ref.WaliKelasID == userID {
			return true, nil
		}
		for _, id := range ref.SekretarisIDs {
			if id == userID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *memStore) FindAbsensi(ctx context.Context, domain string, siswaID uuid.UUID, date time.Time) (*model.AbsensiModel, error) {
	a, ok := m.absensi[absensiKey(siswaID, date)]
	if !ok {
		return nil, nil
	}
	cp := *a
	if cp.AbsensiByID != nil {
		cp.By = m.users[*cp.AbsensiByID]
	}
	return &cp, nil
}

func (m *memStore) CreateAbsensi(ctx context.Context, a *model.AbsensiModel) error {
	if err := a.ValidateWaitExpiry(); err != nil {
		return err
	}
	if a.AbsensiID == uuid.Nil {
		a.AbsensiID = uuid.New()
	}
	cp := *a
	m.absensi[absensiKey(a.AbsensiSiswaID, a.DateValue())] = &cp
	return nil
}

func (m *memStore) SaveAbsensi(ctx context.Context, a *model.AbsensiModel) error {
	if err := a.ValidateWaitExpiry(); err != nil {
		return err
	}
	cp := *a
	cp.By = nil
	m.absensi[absensiKey(a.AbsensiSiswaID, a.DateValue())] = &cp
	return nil
}

func (m *memStore) ExpireWaiting(ctx context.Context, domain string, now time.Time) (int64, error) {
	var n int64
	for _, a := range m.absensi {
		if a.AbsensiStatus != constants.StatusTunggu || a.AbsensiWaitExpiredAt == nil {
			continue
		}
		if !a.AbsensiWaitExpiredAt.After(now) {
			a.SetStatus(constants.StatusAlfa)
			a.AbsensiUpdatedAt = now
			n++
		}
	}
	return n, nil
}
