package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"absensiku_backend/internals/constants"
	absensimodel "absensiku_backend/internals/features/attendance/absensi/model"
	jadwalmodel "absensiku_backend/internals/features/attendance/jadwal/model"
	"absensiku_backend/internals/features/attendance/piket/service"
	siswamodel "absensiku_backend/internals/features/school/siswa/model"
)

// GormStore adalah implementasi piket service.Store di atas PostgreSQL.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var _ service.Store = (*GormStore)(nil)

func (s *GormStore) InTx(ctx context.Context, fn func(tx service.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) SiswaKelas(ctx context.Context, domain string, ids []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	var rows []siswamodel.SiswaModel
	err := s.db.WithContext(ctx).
		Select("siswa_id", "siswa_kelas_id").
		Where("siswa_domain = ? AND siswa_id IN ?", domain, ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]uuid.UUID, len(rows))
	for _, r := range rows {
		out[r.SiswaID] = r.SiswaKelasID
	}
	return out, nil
}

func (s *GormStore) SessionsByKelas(ctx context.Context, domain string, kelasIDs []uuid.UUID) (map[uuid.UUID][]jadwalmodel.AbsensiSessionModel, error) {
	var rows []jadwalmodel.AbsensiSessionModel
	err := s.db.WithContext(ctx).
		Preload("Kelas").
		Where("absensi_session_domain = ?", domain).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	wanted := make(map[uuid.UUID]bool, len(kelasIDs))
	for _, id := range kelasIDs {
		wanted[id] = true
	}

	out := map[uuid.UUID][]jadwalmodel.AbsensiSessionModel{}
	for i := range rows {
		for _, k := range rows[i].Kelas {
			if wanted[k.KelasID] {
				out[k.KelasID] = append(out[k.KelasID], rows[i])
			}
		}
	}
	return out, nil
}

func (s *GormStore) FindAbsensiBatch(ctx context.Context, domain string, keys []service.RecordKey) (map[service.RecordKey]*absensimodel.AbsensiModel, error) {
	var siswaIDs []uuid.UUID
	seen := map[uuid.UUID]bool{}
	dates := map[string]bool{}
	for _, k := range keys {
		if !seen[k.Siswa] {
			seen[k.Siswa] = true
			siswaIDs = append(siswaIDs, k.Siswa)
		}
		dates[k.Date] = true
	}
	var dateList []string
	for d := range dates {
		dateList = append(dateList, d)
	}

	var rows []absensimodel.AbsensiModel
	err := s.db.WithContext(ctx).
		Where("absensi_domain = ? AND absensi_siswa_id IN ? AND absensi_date IN ?",
			domain, siswaIDs, dateList).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[service.RecordKey]*absensimodel.AbsensiModel, len(rows))
	for i := range rows {
		key := service.RecordKey{
			Siswa: rows[i].AbsensiSiswaID,
			Date:  rows[i].DateValue().Format("2006-01-02"),
		}
		out[key] = &rows[i]
	}
	return out, nil
}

func (s *GormStore) BulkCreateAbsensi(ctx context.Context, rows []*absensimodel.AbsensiModel) error {
	return s.db.WithContext(ctx).Create(rows).Error
}

func (s *GormStore) BulkMarkHadir(ctx context.Context, domain string, ids []uuid.UUID, now time.Time) error {
	return s.db.WithContext(ctx).
		Model(&absensimodel.AbsensiModel{}).
		Where("absensi_domain = ? AND absensi_id IN ?", domain, ids).
		Updates(map[string]interface{}{
			"absensi_status":          constants.StatusHadir,
			"absensi_wait_expired_at": nil,
			"absensi_updated_at":      now,
		}).Error
}
