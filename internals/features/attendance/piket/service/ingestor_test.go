package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"absensiku_backend/internals/constants"
	absensimodel "absensiku_backend/internals/features/attendance/absensi/model"
	jadwalmodel "absensiku_backend/internals/features/attendance/jadwal/model"
	"absensiku_backend/internals/features/attendance/piket/dto"
)

const testDomain = "sman1.example.sch.id"

// 1 Maret 2024 adalah hari Jumat
var (
	fridayMorning = time.Date(2024, 3, 1, 7, 5, 0, 0, time.UTC)
	fridayNoon    = time.Date(2024, 3, 1, 13, 30, 0, 0, time.UTC)
	fixedNow      = time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC)
)

type memStore struct {
	siswaKelas map[uuid.UUID]uuid.UUID
	sessions   map[uuid.UUID][]jadwalmodel.AbsensiSessionModel
	absensi    map[RecordKey]*absensimodel.AbsensiModel

	createBatches int
	updateBatches int
}

func newPiketMemStore() *memStore {
	return &memStore{
		siswaKelas: map[uuid.UUID]uuid.UUID{},
		sessions:   map[uuid.UUID][]jadwalmodel.AbsensiSessionModel{},
		absensi:    map[RecordKey]*absensimodel.AbsensiModel{},
	}
}

func (m *memStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	return fn(m)
}

func (m *memStore) SiswaKelas(ctx context.Context, domain string, ids []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	out := map[uuid.UUID]uuid.UUID{}
	for _, id := range ids {
		if k, ok := m.siswaKelas[id]; ok {
			out[id] = k
		}
	}
	return out, nil
}

func (m *memStore) SessionsByKelas(ctx context.Context, domain string, kelasIDs []uuid.UUID) (map[uuid.UUID][]jadwalmodel.AbsensiSessionModel, error) {
	out := map[uuid.UUID][]jadwalmodel.AbsensiSessionModel{}
	for _, id := range kelasIDs {
		if s, ok := m.sessions[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

func (m *memStore) FindAbsensiBatch(ctx context.Context, domain string, keys []RecordKey) (map[RecordKey]*absensimodel.AbsensiModel, error) {
	out := map[RecordKey]*absensimodel.AbsensiModel{}
	for _, k := range keys {
		if a, ok := m.absensi[k]; ok {
			cp := *a
			out[k] = &cp
		}
	}
	return out, nil
}

func (m *memStore) BulkCreateAbsensi(ctx context.Context, rows []*absensimodel.AbsensiModel) error {
	m.createBatches++
	for _, a := range rows {
		if err := a.ValidateWaitExpiry(); err != nil {
			return err
		}
		a.AbsensiID = uuid.New()
		cp := *a
		key := RecordKey{Siswa: a.AbsensiSiswaID, Date: a.DateValue().Format("2006-01-02")}
		m.absensi[key] = &cp
	}
	return nil
}

func (m *memStore) BulkMarkHadir(ctx context.Context, domain string, ids []uuid.UUID, now time.Time) error {
	m.updateBatches++
	for _, id := range ids {
		for _, a := range m.absensi {
			if a.AbsensiID == id {
				a.SetStatus(constants.StatusHadir)
				a.AbsensiUpdatedAt = now
			}
		}
	}
	return nil
}

type memBuffer struct {
	events map[string][]dto.CheckEvent
}

func newMemBuffer() *memBuffer {
	return &memBuffer{events: map[string][]dto.CheckEvent{}}
}

func (b *memBuffer) Load(ctx context.Context, domain string) ([]dto.CheckEvent, error) {
	return b.events[domain], nil
}

func (b *memBuffer) Save(ctx context.Context, domain string, events []dto.CheckEvent) error {
	if len(events) == 0 {
		delete(b.events, domain)
		return nil
	}
	b.events[domain] = events
	return nil
}

type piketFixture struct {
	store   *memStore
	buf     *memBuffer
	svc     *IngestService
	kelasID uuid.UUID
	siswaID uuid.UUID
}

func newPiketFixture(t *testing.T) *piketFixture {
	t.Helper()

	f := &piketFixture{
		store:   newPiketMemStore(),
		buf:     newMemBuffer(),
		kelasID: uuid.New(),
		siswaID: uuid.New(),
	}
	f.svc = NewIngestService(f.store, f.buf, time.UTC)
	f.svc.now = func() time.Time { return fixedNow }

	f.store.siswaKelas[f.siswaID] = f.kelasID
	f.store.sessions[f.kelasID] = []jadwalmodel.AbsensiSessionModel{{
		AbsensiSessionID:        uuid.New(),
		AbsensiSessionName:      "Reguler",
		AbsensiSessionDays:      []string{"senin", "selasa", "rabu", "kamis", "jumat"},
		AbsensiSessionJamMasuk:  "07:00",
		AbsensiSessionJamKeluar: "15:00",
	}}
	return f
}

func (f *piketFixture) record(t *testing.T, date string) *absensimodel.AbsensiModel {
	t.Helper()
	return f.store.absensi[RecordKey{Siswa: f.siswaID, Date: date}]
}

func masuk(siswa uuid.UUID, at time.Time) dto.CheckEvent {
	return dto.CheckEvent{Siswa: siswa, Type: dto.TypeAbsenMasuk, Timestamp: at.Unix()}
}

func pulang(siswa uuid.UUID, at time.Time) dto.CheckEvent {
	return dto.CheckEvent{Siswa: siswa, Type: dto.TypeAbsenPulang, Timestamp: at.Unix()}
}

func TestIngestCheckInCreatesWaiting(t *testing.T) {
	f := newPiketFixture(t)

	res, err := f.svc.Ingest(context.Background(), testDomain, []dto.CheckEvent{
		masuk(f.siswaID, fridayMorning),
	})
	require.NoError(t, err)
	assert.Empty(t, res.Invalids)

	rec := f.record(t, "2024-03-01")
	require.NotNil(t, rec)
	assert.Equal(t, constants.StatusTunggu, rec.AbsensiStatus)
	require.NotNil(t, rec.AbsensiWaitExpiredAt)
	// batas kadaluarsa = jam keluar kelas pada tanggal event
	assert.Equal(t, time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC), *rec.AbsensiWaitExpiredAt)
	assert.Nil(t, rec.AbsensiByID)
}

func TestIngestCheckOutResolvesWaiting(t *testing.T) {
	f := newPiketFixture(t)

	_, err := f.svc.Ingest(context.Background(), testDomain, []dto.CheckEvent{
		masuk(f.siswaID, fridayMorning),
	})
	require.NoError(t, err)

	res, err := f.svc.Ingest(context.Background(), testDomain, []dto.CheckEvent{
		pulang(f.siswaID, fridayNoon),
	})
	require.NoError(t, err)
	assert.Empty(t, res.Invalids)

	rec := f.record(t, "2024-03-01")
	assert.Equal(t, constants.StatusHadir, rec.AbsensiStatus)
	assert.Nil(t, rec.AbsensiWaitExpiredAt)
}

func TestIngestSameBatchSortsMasukFirst(t *testing.T) {
	f := newPiketFixture(t)

	// pulang dikirim duluan di slice; ingestor tetap memproses masuk dulu
	res, err := f.svc.Ingest(context.Background(), testDomain, []dto.CheckEvent{
		pulang(f.siswaID, fridayNoon),
		masuk(f.siswaID, fridayMorning),
	})
	require.NoError(t, err)
	assert.Empty(t, res.Invalids)

	rec := f.record(t, "2024-03-01")
	require.NotNil(t, rec)
	assert.Equal(t, constants.StatusHadir, rec.AbsensiStatus)
	assert.Nil(t, rec.AbsensiWaitExpiredAt)
}

func TestIngestCheckOutWithoutCheckInRebuffered(t *testing.T) {
	f := newPiketFixture(t)
	ev := pulang(f.siswaID, fridayNoon)

	res, err := f.svc.Ingest(context.Background(), testDomain, []dto.CheckEvent{ev})
	require.NoError(t, err)
	require.Len(t, res.Invalids, 1)
	assert.Equal(t, ev, res.Invalids[0])
	assert.Len(t, f.buf.events[testDomain], 1)

	// siklus berikutnya: masuk datang, pulang dari buffer ikut terproses
	res, err = f.svc.Ingest(context.Background(), testDomain, []dto.CheckEvent{
		masuk(f.siswaID, fridayMorning),
	})
	require.NoError(t, err)
	assert.Empty(t, res.Invalids)
	assert.Empty(t, f.buf.events[testDomain])

	rec := f.record(t, "2024-03-01")
	assert.Equal(t, constants.StatusHadir, rec.AbsensiStatus)
}

func TestIngestDuplicateCheckInIgnored(t *testing.T) {
	f := newPiketFixture(t)

	res, err := f.svc.Ingest(context.Background(), testDomain, []dto.CheckEvent{
		masuk(f.siswaID, fridayMorning),
		masuk(f.siswaID, fridayMorning.Add(5*time.Minute)),
	})
	require.NoError(t, err)
	assert.Empty(t, res.Invalids)
	assert.Equal(t, 1, f.store.createBatches)

	// scan ulang setelah record tersimpan juga bukan error
	res, err = f.svc.Ingest(context.Background(), testDomain, []dto.CheckEvent{
		masuk(f.siswaID, fridayMorning.Add(10*time.Minute)),
	})
	require.NoError(t, err)
	assert.Empty(t, res.Invalids)
}

func TestIngestUnknownSiswaRejected(t *testing.T) {
	f := newPiketFixture(t)
	ev := masuk(uuid.New(), fridayMorning)

	res, err := f.svc.Ingest(context.Background(), testDomain, []dto.CheckEvent{ev})
	require.NoError(t, err)
	require.Len(t, res.Invalids, 1)
	assert.Equal(t, ev, res.Invalids[0])
}

func TestIngestNoScheduleRejected(t *testing.T) {
	f := newPiketFixture(t)
	f.store.sessions = map[uuid.UUID][]jadwalmodel.AbsensiSessionModel{}

	res, err := f.svc.Ingest(context.Background(), testDomain, []dto.CheckEvent{
		masuk(f.siswaID, fridayMorning),
	})
	require.NoError(t, err)
	require.Len(t, res.Invalids, 1)
	assert.Nil(t, f.record(t, "2024-03-01"))
}

func TestIngestSundayRejected(t *testing.T) {
	f := newPiketFixture(t)
	sunday := time.Date(2024, 3, 3, 7, 0, 0, 0, time.UTC)

	f.svc.now = func() time.Time { return sunday.Add(time.Hour) }
	res, err := f.svc.Ingest(context.Background(), testDomain, []dto.CheckEvent{
		masuk(f.siswaID, sunday),
	})
	require.NoError(t, err)
	require.Len(t, res.Invalids, 1)
}

func TestIngestDropsEntriesOlderThanTTL(t *testing.T) {
	f := newPiketFixture(t)
	stale := masuk(f.siswaID, fixedNow.Add(-BufferTTL-time.Hour))
	f.buf.events[testDomain] = []dto.CheckEvent{stale}

	res, err := f.svc.Ingest(context.Background(), testDomain, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Invalids)
	// lebih tua dari dua hari: dibuang, bukan ditahan lagi
	assert.Empty(t, f.buf.events[testDomain])
}
