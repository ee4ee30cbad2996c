package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"absensiku_backend/internals/constants"
	absensimodel "absensiku_backend/internals/features/attendance/absensi/model"
	jadwalmodel "absensiku_backend/internals/features/attendance/jadwal/model"
	"absensiku_backend/internals/features/attendance/piket/dto"
)

// BufferTTL: event yang tidak bisa dicocokkan disimpan lintas request paling
// lama dua hari, lalu di-drop daripada dicoba ulang selamanya.
const BufferTTL = 48 * time.Hour

// RecordKey mengidentifikasi satu record absensi dalam satu siklus ingest.
type RecordKey struct {
	Siswa uuid.UUID
	Date  string
}

// Store adalah akses database yang dibutuhkan ingestor. Semua tulisan
// terjadi sebagai satu bulk create + satu bulk update dalam satu transaksi.
type Store interface {
	InTx(ctx context.Context, fn func(tx Store) error) error
	SiswaKelas(ctx context.Context, domain string, ids []uuid.UUID) (map[uuid.UUID]uuid.UUID, error)
	SessionsByKelas(ctx context.Context, domain string, kelasIDs []uuid.UUID) (map[uuid.UUID][]jadwalmodel.AbsensiSessionModel, error)
	FindAbsensiBatch(ctx context.Context, domain string, keys []RecordKey) (map[RecordKey]*absensimodel.AbsensiModel, error)
	BulkCreateAbsensi(ctx context.Context, rows []*absensimodel.AbsensiModel) error
	BulkMarkHadir(ctx context.Context, domain string, ids []uuid.UUID, now time.Time) error
}

// Buffer menyimpan event tertolak antar request, per tenant.
type Buffer interface {
	Load(ctx context.Context, domain string) ([]dto.CheckEvent, error)
	Save(ctx context.Context, domain string, events []dto.CheckEvent) error
}

// IngestService memproses scan masuk/pulang guru piket. Event yang belum
// bisa dicocokkan (pulang tanpa masuk, jadwal belum dikonfigurasi) ditahan
// di buffer dan ikut diproses lagi pada panggilan berikutnya.
type IngestService struct {
	store Store
	buf   Buffer
	loc   *time.Location
	now   func() time.Time
}

func NewIngestService(store Store, buf Buffer, loc *time.Location) *IngestService {
	return &IngestService{store: store, buf: buf, loc: loc, now: time.Now}
}

// Ingest menggabungkan event baru dengan buffer, memprosesnya terurut
// (masuk sebelum pulang), lalu menulis hasilnya dalam satu transaksi.
// Daftar kembalian berisi event yang ditolak siklus ini.
func (s *IngestService) Ingest(ctx context.Context, domain string, events []dto.CheckEvent) (*dto.IngestResult, error) {
	buffered, err := s.buf.Load(ctx, domain)
	if err != nil {
		return nil, err
	}

	now := s.now()
	all := make([]dto.CheckEvent, 0, len(buffered)+len(events))
	for _, e := range append(buffered, events...) {
		if now.Sub(time.Unix(e.Timestamp, 0)) > BufferTTL {
			continue // lebih tua dari TTL, drop
		}
		all = append(all, e)
	}

	// Masuk diproses sebelum pulang: pulang hanya bisa menutup record
	// tunggu yang sudah ada
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Type != all[j].Type {
			return all[i].Type == dto.TypeAbsenMasuk
		}
		return all[i].Timestamp < all[j].Timestamp
	})

	var siswaIDs []uuid.UUID
	seen := map[uuid.UUID]bool{}
	for _, e := range all {
		if !seen[e.Siswa] {
			seen[e.Siswa] = true
			siswaIDs = append(siswaIDs, e.Siswa)
		}
	}

	rejected := []dto.CheckEvent{}

	err = s.store.InTx(ctx, func(tx Store) error {
		siswaKelas := map[uuid.UUID]uuid.UUID{}
		if len(siswaIDs) > 0 {
			var err error
			siswaKelas, err = tx.SiswaKelas(ctx, domain, siswaIDs)
			if err != nil {
				return err
			}
		}

		var kelasIDs []uuid.UUID
		seenKelas := map[uuid.UUID]bool{}
		for _, kelasID := range siswaKelas {
			if !seenKelas[kelasID] {
				seenKelas[kelasID] = true
				kelasIDs = append(kelasIDs, kelasID)
			}
		}
		sessions := map[uuid.UUID][]jadwalmodel.AbsensiSessionModel{}
		if len(kelasIDs) > 0 {
			var err error
			sessions, err = tx.SessionsByKelas(ctx, domain, kelasIDs)
			if err != nil {
				return err
			}
		}

		keys := make([]RecordKey, 0, len(all))
		seenKey := map[RecordKey]bool{}
		for _, e := range all {
			k := s.keyOf(e)
			if !seenKey[k] {
				seenKey[k] = true
				keys = append(keys, k)
			}
		}
		existing := map[RecordKey]*absensimodel.AbsensiModel{}
		if len(keys) > 0 {
			var err error
			existing, err = tx.FindAbsensiBatch(ctx, domain, keys)
			if err != nil {
				return err
			}
		}

		pending := map[RecordKey]*absensimodel.AbsensiModel{}
		var creates []*absensimodel.AbsensiModel
		var checkouts []uuid.UUID

		for _, e := range all {
			eventAt := time.Unix(e.Timestamp, 0).In(s.loc)
			date := absensimodel.DateOnly(eventAt, s.loc)
			key := s.keyOf(e)

			kelasID, ok := siswaKelas[e.Siswa]
			if !ok {
				rejected = append(rejected, e)
				continue
			}

			session := s.sessionFor(sessions[kelasID], date)
			if session == nil {
				// jadwal hari itu belum dikonfigurasi untuk kelas ini
				rejected = append(rejected, e)
				continue
			}

			switch e.Type {
			case dto.TypeAbsenMasuk:
				if existing[key] != nil || pending[key] != nil {
					continue // sudah check-in, bukan error
				}
				expiry, err := session.JamKeluarOn(date, s.loc)
				if err != nil {
					rejected = append(rejected, e)
					continue
				}
				a := &absensimodel.AbsensiModel{
					AbsensiSiswaID:       e.Siswa,
					AbsensiDate:          absensimodel.ToDate(date),
					AbsensiStatus:        constants.StatusTunggu,
					AbsensiWaitExpiredAt: &expiry,
					AbsensiDomain:        domain,
					AbsensiCreatedAt:     eventAt,
					AbsensiUpdatedAt:     eventAt,
				}
				pending[key] = a
				creates = append(creates, a)

			case dto.TypeAbsenPulang:
				if p := pending[key]; p != nil {
					// masuk di siklus yang sama: record dibuat langsung hadir
					p.SetStatus(constants.StatusHadir)
					p.AbsensiUpdatedAt = eventAt
					continue
				}
				rec := existing[key]
				if rec == nil {
					// belum ada check-in; ditahan menunggu event masuknya
					rejected = append(rejected, e)
					continue
				}
				if rec.AbsensiStatus == constants.StatusHadir {
					continue
				}
				checkouts = append(checkouts, rec.AbsensiID)

			default:
				rejected = append(rejected, e)
			}
		}

		if len(creates) > 0 {
			if err := tx.BulkCreateAbsensi(ctx, creates); err != nil {
				return err
			}
		}
		if len(checkouts) > 0 {
			if err := tx.BulkMarkHadir(ctx, domain, checkouts, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.buf.Save(ctx, domain, rejected); err != nil {
		return nil, err
	}
	return &dto.IngestResult{Invalids: rejected}, nil
}

func (s *IngestService) keyOf(e dto.CheckEvent) RecordKey {
	date := absensimodel.DateOnly(time.Unix(e.Timestamp, 0).In(s.loc), s.loc)
	return RecordKey{Siswa: e.Siswa, Date: date.Format("2006-01-02")}
}

// sessionFor mencari jadwal kelas yang aktif pada hari dari date.
// Minggu tidak punya nama hari sehingga selalu nil.
func (s *IngestService) sessionFor(list []jadwalmodel.AbsensiSessionModel, date time.Time) *jadwalmodel.AbsensiSessionModel {
	dayName := jadwalmodel.DayNames[date.Weekday()]
	if dayName == "" {
		return nil
	}
	for i := range list {
		if list[i].HasDay(dayName) {
			return &list[i]
		}
	}
	return nil
}
