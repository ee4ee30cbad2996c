package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"absensiku_backend/internals/constants"
	absensimodel "absensiku_backend/internals/features/attendance/absensi/model"
	absensiservice "absensiku_backend/internals/features/attendance/absensi/service"
	kelasmodel "absensiku_backend/internals/features/school/kelas/model"
	siswamodel "absensiku_backend/internals/features/school/siswa/model"
)

// CacheTTL artefak rekap yang sudah jadi.
const CacheTTL = 24 * time.Hour

const MimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var ErrRekapForbidden = fmt.Errorf("Anda tidak berhak mengunduh rekap kelas ini")

// RecapRow adalah satu baris siswa pada rekap bulanan.
type RecapRow struct {
	Fullname string
	NIS      string
	// tanggal "2006-01-02" -> status efektif hari itu
	Statuses map[string]string
}

type RecapData struct {
	KelasName string
	Bulan     time.Month
	Tahun     int
	Days      []time.Time
	Rows      []RecapRow
}

// RecapGenerator merender data rekap menjadi bytes dokumen. Engine hanya
// berurusan dengan bytes + content hash; format file urusan generator.
type RecapGenerator interface {
	Generate(data *RecapData) ([]byte, error)
}

type MonthYear struct {
	Bulan int `json:"bulan"`
	Tahun int `json:"tahun"`
}

type Store interface {
	KelasWithSekretaris(ctx context.Context, domain string, kelasID uuid.UUID) (*kelasmodel.KelasModel, error)
	SiswaOfKelas(ctx context.Context, domain string, kelasID uuid.UUID) ([]siswamodel.SiswaModel, error)
	AbsensiOfMonth(ctx context.Context, domain string, kelasID uuid.UUID, from, to time.Time) ([]absensimodel.AbsensiModel, error)
	Months(ctx context.Context, domain string, kelasIDs []uuid.UUID) ([]MonthYear, error)
	OwnedKelasIDs(ctx context.Context, domain string, userID uuid.UUID) ([]uuid.UUID, error)
}

// Cache menyimpan artefak rekap yang sudah di-encode. Get mengembalikan
// nil tanpa error saat miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

type Actor struct {
	ID   uuid.UUID
	Type string
}

// Artifact adalah hasil generate: file id dari content hash plus blob
// ter-encode siap kirim.
type Artifact struct {
	FileID   string
	Filename string
	MimeType string
	Blob     []byte
}

// RekapService membuat rekap absensi bulanan per kelas. Generate untuk key
// yang sama (domain, kelas, bulan, tahun) diserialisasi lewat mutex per key:
// maksimal satu generate in-flight per key per proses; pemanggil lain
// menunggu lalu mendapat hasil dari cache.
type RekapService struct {
	store Store
	cache Cache
	gen   RecapGenerator
	loc   *time.Location
	now   func() time.Time

	mu    sync.Mutex
	inGen map[string]*sync.Mutex
}

func NewRekapService(store Store, cache Cache, gen RecapGenerator, loc *time.Location) *RekapService {
	return &RekapService{
		store: store,
		cache: cache,
		gen:   gen,
		loc:   loc,
		now:   time.Now,
		inGen: map[string]*sync.Mutex{},
	}
}

func (s *RekapService) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.inGen[key]; ok {
		return m
	}
	m := &sync.Mutex{}
	s.inGen[key] = m
	return m
}

// Generate membuat (atau mengambil dari cache) rekap satu kelas satu bulan.
// Tahun dua digit dinormalkan ke 20xx.
func (s *RekapService) Generate(ctx context.Context, domain string, actor Actor, kelasID uuid.UUID, bulan, tahun int) (*Artifact, error) {
	if tahun <= 99 {
		tahun += 2000
	}
	if bulan < 1 || bulan > 12 {
		return nil, fmt.Errorf("bulan %d tidak valid", bulan)
	}

	kelas, err := s.store.KelasWithSekretaris(ctx, domain, kelasID)
	if err != nil {
		return nil, err
	}
	if actor.Type != constants.RoleKesiswaan && !kelas.IsOwnedBy(actor.ID) {
		return nil, ErrRekapForbidden
	}

	key := fmt.Sprintf("rekap:%s:%s:%02d:%d", domain, kelasID, bulan, tahun)

	lock := s.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	if blob, err := s.cache.Get(ctx, key); err == nil && blob != nil {
		return decodeCached(blob), nil
	}

	data, err := s.buildData(ctx, domain, kelas, bulan, tahun)
	if err != nil {
		return nil, err
	}
	content, err := s.gen.Generate(data)
	if err != nil {
		return nil, err
	}

	hash := md5.Sum(content)
	art := &Artifact{
		FileID:   "rekap-" + hex.EncodeToString(hash[:]),
		Filename: fmt.Sprintf("rekap-%s-%02d-%d.xlsx", kelas.KelasName, bulan, tahun),
		MimeType: MimeXLSX,
	}
	art.Blob = encodeArtifact(art.Filename, art.MimeType, content)

	if err := s.cache.Set(ctx, key, art.Blob, CacheTTL); err != nil {
		return nil, err
	}
	return art, nil
}

func (s *RekapService) buildData(ctx context.Context, domain string, kelas *kelasmodel.KelasModel, bulan, tahun int) (*RecapData, error) {
	from := time.Date(tahun, time.Month(bulan), 1, 0, 0, 0, 0, s.loc)
	to := from.AddDate(0, 1, 0)

	siswas, err := s.store.SiswaOfKelas(ctx, domain, kelas.KelasID)
	if err != nil {
		return nil, err
	}
	records, err := s.store.AbsensiOfMonth(ctx, domain, kelas.KelasID, from, to)
	if err != nil {
		return nil, err
	}

	now := s.now()
	statuses := map[uuid.UUID]map[string]string{}
	for i := range records {
		rec := &records[i]
		status, err := absensiservice.ResolveStatus(rec.AbsensiStatus, rec.AbsensiWaitExpiredAt, now)
		if err != nil {
			return nil, err
		}
		if statuses[rec.AbsensiSiswaID] == nil {
			statuses[rec.AbsensiSiswaID] = map[string]string{}
		}
		statuses[rec.AbsensiSiswaID][rec.DateValue().Format("2006-01-02")] = status
	}

	data := &RecapData{
		KelasName: kelas.KelasName,
		Bulan:     time.Month(bulan),
		Tahun:     tahun,
	}
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		data.Days = append(data.Days, d)
	}
	for i := range siswas {
		row := RecapRow{
			Fullname: siswas[i].SiswaFullname,
			Statuses: statuses[siswas[i].SiswaID],
		}
		if siswas[i].SiswaNIS != nil {
			row.NIS = *siswas[i].SiswaNIS
		}
		if row.Statuses == nil {
			row.Statuses = map[string]string{}
		}
		data.Rows = append(data.Rows, row)
	}
	return data, nil
}

// Months mengembalikan bulan-bulan yang punya data absensi, dibatasi ke
// kelas milik actor kecuali kesiswaan.
func (s *RekapService) Months(ctx context.Context, domain string, actor Actor) ([]MonthYear, error) {
	var kelasIDs []uuid.UUID
	if actor.Type != constants.RoleKesiswaan {
		var err error
		kelasIDs, err = s.store.OwnedKelasIDs(ctx, domain, actor.ID)
		if err != nil {
			return nil, err
		}
		if len(kelasIDs) == 0 {
			return []MonthYear{}, nil
		}
	}
	return s.store.Months(ctx, domain, kelasIDs)
}

const headerPad = 100

// encodeArtifact menyusun blob unduhan: nama file dan mimetype masing-masing
// dipad ke 100 byte dengan '\r', lalu isi file. Client lama mendecode format
// ini apa adanya.
func encodeArtifact(filename, mimetype string, content []byte) []byte {
	blob := make([]byte, 0, 2*headerPad+len(content))
	blob = append(blob, padHeader(filename)...)
	blob = append(blob, padHeader(mimetype)...)
	return append(blob, content...)
}

func padHeader(s string) []byte {
	b := make([]byte, headerPad)
	for i := range b {
		b[i] = '\r'
	}
	copy(b, s)
	return b
}

func decodeCached(blob []byte) *Artifact {
	if len(blob) < 2*headerPad {
		return &Artifact{Blob: blob}
	}
	content := blob[2*headerPad:]
	hash := md5.Sum(content)
	return &Artifact{
		FileID:   "rekap-" + hex.EncodeToString(hash[:]),
		Filename: trimHeader(blob[:headerPad]),
		MimeType: trimHeader(blob[headerPad : 2*headerPad]),
		Blob:     blob,
	}
}

func trimHeader(b []byte) string {
	for i, c := range b {
		if c == '\r' {
			return string(b[:i])
		}
	}
	return string(b)
}
