package service

import (
	"context"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"absensiku_backend/internals/constants"
	"absensiku_backend/internals/features/attendance/absensi/dto"
	"absensiku_backend/internals/features/attendance/absensi/model"
	usermodel "absensiku_backend/internals/features/users/user/model"
)

const testDomain = "sman1.example.sch.id"

var fixedNow = time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

type fixture struct {
	store   *memStore
	svc     *ReconcileService
	kelasID uuid.UUID
	siswaID uuid.UUID
	wali    Actor
	sekre   Actor
	other   Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newMemStore()
	svc := NewReconcileService(store, time.UTC)
	svc.now = func() time.Time { return fixedNow }

	f := &fixture{
		store:   store,
		svc:     svc,
		kelasID: uuid.New(),
		siswaID: uuid.New(),
	}

	waliID, sekreID, otherID := uuid.New(), uuid.New(), uuid.New()
	waliType, sekreType := constants.RoleWaliKelas, constants.RoleSekretaris

	store.users[waliID] = &usermodel.UserModel{ID: waliID, Username: "guru.a", FirstName: "Guru", LastName: "A", Type: &waliType}
	store.users[sekreID] = &usermodel.UserModel{ID: sekreID, Username: "sekre.b", FirstName: "Sekre", LastName: "B", Type: &sekreType}
	store.users[otherID] = &usermodel.UserModel{ID: otherID, Username: "guru.lain", Type: &waliType}

	store.siswas[f.siswaID] = &SiswaRef{
		ID:            f.siswaID,
		Fullname:      "Budi Santoso",
		KelasID:       f.kelasID,
		WaliKelasID:   &waliID,
		SekretarisIDs: []uuid.UUID{sekreID},
	}

	f.wali = Actor{ID: waliID, Type: constants.RoleWaliKelas, DisplayName: "Guru A"}
	f.sekre = Actor{ID: sekreID, Type: constants.RoleSekretaris, DisplayName: "Sekre B"}
	f.other = Actor{ID: otherID, Type: constants.RoleWaliKelas, DisplayName: "Guru Lain"}
	return f
}

func absenItem(t *testing.T, siswa uuid.UUID, date, status string, updatedAt *int64, prev *string) dto.UploadItem {
	t.Helper()
	data, err := sonic.MarshalString(dto.AbsenPayload{
		Siswa: siswa, Date: date, Status: status,
		UpdatedAt: updatedAt, PreviousStatus: prev,
	})
	require.NoError(t, err)
	return dto.UploadItem{Action: "absen", Data: data}
}

func lockItem(t *testing.T, action string, kelas uuid.UUID, date string) dto.UploadItem {
	t.Helper()
	data, err := sonic.MarshalString(dto.LockPayload{Kelas: kelas, Date: date})
	require.NoError(t, err)
	return dto.UploadItem{Action: action, Data: data}
}

func (f *fixture) record(t *testing.T, date time.Time) *model.AbsensiModel {
	t.Helper()
	a, err := f.store.FindAbsensi(context.Background(), testDomain, f.siswaID, date)
	require.NoError(t, err)
	return a
}

func strPtr(s string) *string { return &s }

func i64Ptr(v int64) *int64 { return &v }

func TestUploadCreatesRecord(t *testing.T) {
	f := newFixture(t)
	ts := time.Date(2024, 3, 1, 7, 30, 0, 0, time.UTC).Unix()

	res, err := f.svc.Upload(context.Background(), testDomain, f.wali, []dto.UploadItem{
		absenItem(t, f.siswaID, "01-03-24", constants.StatusHadir, i64Ptr(ts), nil),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Applied)
	assert.Empty(t, res.Conflicts)

	rec := f.record(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NotNil(t, rec)
	assert.Equal(t, constants.StatusHadir, rec.AbsensiStatus)
	require.NotNil(t, rec.AbsensiByID)
	assert.Equal(t, f.wali.ID, *rec.AbsensiByID)
	// jam client dipercaya; insert berarti created_at = updated_at
	assert.Equal(t, ts, rec.AbsensiCreatedAt.Unix())
	assert.Equal(t, ts, rec.AbsensiUpdatedAt.Unix())
}

func TestUploadIdempotent(t *testing.T) {
	f := newFixture(t)
	item := absenItem(t, f.siswaID, "01-03-24", constants.StatusSakit, nil, nil)

	_, err := f.svc.Upload(context.Background(), testDomain, f.wali, []dto.UploadItem{item})
	require.NoError(t, err)
	before := f.record(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	res, err := f.svc.Upload(context.Background(), testDomain, f.wali, []dto.UploadItem{item})
	require.NoError(t, err)
	assert.Empty(t, res.Conflicts)
	assert.Zero(t, res.Applied)

	after := f.record(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, before.AbsensiStatus, after.AbsensiStatus)
	assert.Equal(t, before.AbsensiUpdatedAt, after.AbsensiUpdatedAt)
	assert.Equal(t, before.AbsensiByID, after.AbsensiByID)
}

func TestUploadSameEditorCorrectsOwnEntry(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Upload(context.Background(), testDomain, f.wali, []dto.UploadItem{
		absenItem(t, f.siswaID, "01-03-24", constants.StatusSakit, nil, nil),
	})
	require.NoError(t, err)

	res, err := f.svc.Upload(context.Background(), testDomain, f.wali, []dto.UploadItem{
		absenItem(t, f.siswaID, "01-03-24", constants.StatusIzin, nil, nil),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Applied)
	assert.Empty(t, res.Conflicts)

	rec := f.record(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, constants.StatusIzin, rec.AbsensiStatus)
	assert.Equal(t, f.wali.ID, *rec.AbsensiByID)
}

func TestUploadAdoptsPiketPlaceholder(t *testing.T) {
	f := newFixture(t)
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	expiry := date.Add(15 * time.Hour)

	require.NoError(t, f.store.CreateAbsensi(context.Background(), &model.AbsensiModel{
		AbsensiSiswaID:       f.siswaID,
		AbsensiDate:          model.ToDate(date),
		AbsensiStatus:        constants.StatusTunggu,
		AbsensiWaitExpiredAt: &expiry,
		AbsensiDomain:        testDomain,
		AbsensiCreatedAt:     date,
		AbsensiUpdatedAt:     date,
	}))

	res, err := f.svc.Upload(context.Background(), testDomain, f.wali, []dto.UploadItem{
		absenItem(t, f.siswaID, "01-03-24", constants.StatusHadir, nil, nil),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Applied)
	assert.Empty(t, res.Conflicts)

	rec := f.record(t, date)
	assert.Equal(t, constants.StatusHadir, rec.AbsensiStatus)
	require.NotNil(t, rec.AbsensiByID)
	assert.Equal(t, f.wali.ID, *rec.AbsensiByID)
	assert.Nil(t, rec.AbsensiWaitExpiredAt)
}

func TestUploadConflictWithoutPreviousStatus(t *testing.T) {
	f := newFixture(t)
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := f.svc.Upload(context.Background(), testDomain, f.wali, []dto.UploadItem{
		absenItem(t, f.siswaID, "01-03-24", constants.StatusSakit, nil, nil),
	})
	require.NoError(t, err)

	res, err := f.svc.Upload(context.Background(), testDomain, f.sekre, []dto.UploadItem{
		absenItem(t, f.siswaID, "01-03-24", constants.StatusHadir, nil, nil),
	})
	require.NoError(t, err)
	require.Len(t, res.Conflicts, 1)
	assert.Zero(t, res.Applied)

	c := res.Conflicts[0]
	assert.Equal(t, "absensi", c.Type)
	assert.Equal(t, "Budi Santoso", c.AbsensiSiswa)
	assert.Equal(t, f.siswaID, c.AbsensiSiswaID)
	assert.Equal(t, f.kelasID, c.AbsensiKelasID)
	assert.Equal(t, "2024-03-01", c.AbsensiDate)
	assert.Equal(t, "Guru A", c.Other.DisplayName)
	assert.Equal(t, constants.StatusSakit, c.Other.AbsensiStatus)
	assert.Equal(t, "Sekre B", c.Self.DisplayName)
	assert.Equal(t, constants.StatusHadir, c.Self.AbsensiStatus)

	// conflict tidak mengubah record
	rec := f.record(t, date)
	assert.Equal(t, constants.StatusSakit, rec.AbsensiStatus)
	assert.Equal(t, f.wali.ID, *rec.AbsensiByID)
}

func TestUploadOverrideWithMatchingPreviousStatus(t *testing.T) {
	f := newFixture(t)
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := f.svc.Upload(context.Background(), testDomain, f.wali, []dto.UploadItem{
		absenItem(t, f.siswaID, "01-03-24", constants.StatusSakit, nil, nil),
	})
	require.NoError(t, err)

	res, err := f.svc.Upload(context.Background(), testDomain, f.sekre, []dto.UploadItem{
		absenItem(t, f.siswaID, "01-03-24", constants.StatusHadir, nil, strPtr(constants.StatusSakit)),
	})
	require.NoError(t, err)
	assert.Empty(t, res.Conflicts)
	assert.Equal(t, 1, res.Applied)

	rec := f.record(t, date)
	assert.Equal(t, constants.StatusHadir, rec.AbsensiStatus)
	assert.Equal(t, f.sekre.ID, *rec.AbsensiByID)
}

func TestUploadConflictWhenServerMovedOn(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Upload(context.Background(), testDomain, f.wali, []dto.UploadItem{
		absenItem(t, f.siswaID, "01-03-24", constants.StatusIzin, nil, nil),
	})
	require.NoError(t, err)

	// client mengira server masih "sakit", padahal sudah "izin"
	res, err := f.svc.Upload(context.Background(), testDomain, f.sekre, []dto.UploadItem{
		absenItem(t, f.siswaID, "01-03-24", constants.StatusHadir, nil, strPtr(constants.StatusSakit)),
	})
	require.NoError(t, err)
	require.Len(t, res.Conflicts, 1)

	rec := f.record(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, constants.StatusIzin, rec.AbsensiStatus)
}

func TestUploadOverridesUnexpiredWaitingDespitePreviousMismatch(t *testing.T) {
	f := newFixture(t)
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	expiry := fixedNow.Add(2 * time.Hour)
	editorID := f.other.ID

	require.NoError(t, f.store.CreateAbsensi(context.Background(), &model.AbsensiModel{
		AbsensiSiswaID:       f.siswaID,
		AbsensiDate:          model.ToDate(date),
		AbsensiStatus:        constants.StatusTunggu,
		AbsensiWaitExpiredAt: &expiry,
		AbsensiByID:          &editorID,
		AbsensiDomain:        testDomain,
		AbsensiCreatedAt:     date,
		AbsensiUpdatedAt:     date,
	}))

	res, err := f.svc.Upload(context.Background(), testDomain, f.wali, []dto.UploadItem{
		absenItem(t, f.siswaID, "01-03-24", constants.StatusHadir, nil, strPtr(constants.StatusHadir)),
	})
	require.NoError(t, err)
	assert.Empty(t, res.Conflicts)
	assert.Equal(t, 1, res.Applied)

	rec := f.record(t, date)
	assert.Equal(t, constants.StatusHadir, rec.AbsensiStatus)
	assert.Equal(t, f.wali.ID, *rec.AbsensiByID)
}

func TestUploadLockedPeriodAbortsWholeBatch(t *testing.T) {
	f := newFixture(t)
	lockedDate := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, f.store.UpsertLock(context.Background(), testDomain, f.kelasID, lockedDate, true))

	_, err := f.svc.Upload(context.Background(), testDomain, f.wali, []dto.UploadItem{
		absenItem(t, f.siswaID, "02-03-24", constants.StatusHadir, nil, nil),
		absenItem(t, f.siswaID, "01-03-24", constants.StatusHadir, nil, nil),
	})

	var lockErr *LockedPeriodError
	require.ErrorAs(t, err, &lockErr)
	assert.Equal(t, lockedDate, lockErr.Date)

	// rollback total: edit tanggal lain di batch yang sama ikut batal
	assert.Nil(t, f.record(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)))
}

func TestUploadUnlockAppliesBeforeAbsen(t *testing.T) {
	f := newFixture(t)
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, f.store.UpsertLock(context.Background(), testDomain, f.kelasID, date, true))

	// absen dikirim sebelum unlock; urutan pemrosesan tetap unlock dulu
	res, err := f.svc.Upload(context.Background(), testDomain, f.wali, []dto.UploadItem{
		absenItem(t, f.siswaID, "01-03-24", constants.StatusHadir, nil, nil),
		lockItem(t, "unlock", f.kelasID, "01-03-24"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Applied)

	rec := f.record(t, date)
	require.NotNil(t, rec)
	assert.Equal(t, constants.StatusHadir, rec.AbsensiStatus)
}

func TestUploadLockAppliesAfterAbsen(t *testing.T) {
	f := newFixture(t)
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	res, err := f.svc.Upload(context.Background(), testDomain, f.wali, []dto.UploadItem{
		absenItem(t, f.siswaID, "01-03-24", constants.StatusHadir, nil, nil),
		lockItem(t, "lock", f.kelasID, "01-03-24"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Applied)

	rec := f.record(t, date)
	require.NotNil(t, rec)

	locked, err := f.store.IsLocked(context.Background(), testDomain, f.kelasID, date)
	require.NoError(t, err)
	assert.True(t, locked)
}

func TestUploadLockByNonOwnerIsForbidden(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Upload(context.Background(), testDomain, f.other, []dto.UploadItem{
		lockItem(t, "lock", f.kelasID, "01-03-24"),
	})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestUploadSilentSkips(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Upload(context.Background(), testDomain, f.wali, []dto.UploadItem{
		// siswa tidak dikenal di domain ini
		absenItem(t, uuid.New(), "01-03-24", constants.StatusHadir, nil, nil),
		// tanggal di masa depan
		absenItem(t, f.siswaID, "2024-12-31", constants.StatusHadir, nil, nil),
		// tanggal sebelum 2020
		absenItem(t, f.siswaID, "2019-05-01", constants.StatusHadir, nil, nil),
		// status yang tidak dikenal, dan tunggu yang khusus jalur piket
		absenItem(t, f.siswaID, "01-03-24", "mangkir", nil, nil),
		absenItem(t, f.siswaID, "01-03-24", constants.StatusTunggu, nil, nil),
	})
	require.NoError(t, err)
	assert.Zero(t, res.Applied)
	assert.Empty(t, res.Conflicts)

	// edit oleh user yang bukan wali/sekretaris kelas juga hanya di-skip
	res, err = f.svc.Upload(context.Background(), testDomain, f.other, []dto.UploadItem{
		absenItem(t, f.siswaID, "01-03-24", constants.StatusHadir, nil, nil),
	})
	require.NoError(t, err)
	assert.Zero(t, res.Applied)
	assert.Nil(t, f.record(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestUploadDateParseErrorAbortsBatch(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Upload(context.Background(), testDomain, f.wali, []dto.UploadItem{
		absenItem(t, f.siswaID, "01-03-24", constants.StatusHadir, nil, nil),
		absenItem(t, f.siswaID, "kemarin sore", constants.StatusHadir, nil, nil),
	})

	var parseErr *DateParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "kemarin sore", parseErr.Raw)

	// item valid di batch yang sama ikut di-rollback
	assert.Nil(t, f.record(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestRefreshExpiredPersistsAlfa(t *testing.T) {
	f := newFixture(t)
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	expired := fixedNow.Add(-time.Hour)
	active := fixedNow.Add(time.Hour)

	siswa2 := uuid.New()
	require.NoError(t, f.store.CreateAbsensi(context.Background(), &model.AbsensiModel{
		AbsensiSiswaID: f.siswaID, AbsensiDate: model.ToDate(date),
		AbsensiStatus: constants.StatusTunggu, AbsensiWaitExpiredAt: &expired,
		AbsensiDomain: testDomain, AbsensiCreatedAt: date, AbsensiUpdatedAt: date,
	}))
	require.NoError(t, f.store.CreateAbsensi(context.Background(), &model.AbsensiModel{
		AbsensiSiswaID: siswa2, AbsensiDate: model.ToDate(date),
		AbsensiStatus: constants.StatusTunggu, AbsensiWaitExpiredAt: &active,
		AbsensiDomain: testDomain, AbsensiCreatedAt: date, AbsensiUpdatedAt: date,
	}))

	n, err := f.svc.RefreshExpired(context.Background(), testDomain)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	rec := f.record(t, date)
	assert.Equal(t, constants.StatusAlfa, rec.AbsensiStatus)
	assert.Nil(t, rec.AbsensiWaitExpiredAt)
}
