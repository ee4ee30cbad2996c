package repository

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	absensimodel "absensiku_backend/internals/features/attendance/absensi/model"
	"absensiku_backend/internals/features/attendance/rekap/service"
	kelasmodel "absensiku_backend/internals/features/school/kelas/model"
	siswamodel "absensiku_backend/internals/features/school/siswa/model"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var _ service.Store = (*GormStore)(nil)

func (s *GormStore) KelasWithSekretaris(ctx context.Context, domain string, kelasID uuid.UUID) (*kelasmodel.KelasModel, error) {
	var kelas kelasmodel.KelasModel
	err := s.db.WithContext(ctx).
		Preload("Sekretaris").
		Where("kelas_domain = ? AND kelas_id = ?", domain, kelasID).
		First(&kelas).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "Kelas tidak ditemukan")
	}
	if err != nil {
		return nil, err
	}
	return &kelas, nil
}

func (s *GormStore) SiswaOfKelas(ctx context.Context, domain string, kelasID uuid.UUID) ([]siswamodel.SiswaModel, error) {
	var rows []siswamodel.SiswaModel
	err := s.db.WithContext(ctx).
		Where("siswa_domain = ? AND siswa_kelas_id = ?", domain, kelasID).
		Order("siswa_fullname").
		Find(&rows).Error
	return rows, err
}

func (s *GormStore) AbsensiOfMonth(ctx context.Context, domain string, kelasID uuid.UUID, from, to time.Time) ([]absensimodel.AbsensiModel, error) {
	var rows []absensimodel.AbsensiModel
	err := s.db.WithContext(ctx).
		Joins("JOIN siswa ON siswa.siswa_id = absensi.absensi_siswa_id").
		Where("absensi.absensi_domain = ? AND siswa.siswa_kelas_id = ?", domain, kelasID).
		Where("absensi.absensi_date >= ? AND absensi.absensi_date < ?",
			absensimodel.ToDate(from), absensimodel.ToDate(to)).
		Find(&rows).Error
	return rows, err
}

func (s *GormStore) Months(ctx context.Context, domain string, kelasIDs []uuid.UUID) ([]service.MonthYear, error) {
	q := s.db.WithContext(ctx).
		Table("absensi").
		Select("DISTINCT EXTRACT(MONTH FROM absensi_date)::int AS bulan, EXTRACT(YEAR FROM absensi_date)::int AS tahun").
		Joins("JOIN siswa ON siswa.siswa_id = absensi.absensi_siswa_id").
		Where("absensi.absensi_domain = ?", domain).
		Order("tahun DESC, bulan DESC")
	if len(kelasIDs) > 0 {
		q = q.Where("siswa.siswa_kelas_id IN ?", kelasIDs)
	}

	var out []service.MonthYear
	err := q.Scan(&out).Error
	return out, err
}

func (s *GormStore) OwnedKelasIDs(ctx context.Context, domain string, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).
		Table("kelas").
		Select("DISTINCT kelas.kelas_id").
		Joins("LEFT JOIN kelas_sekretaris ks ON ks.kelas_id = kelas.kelas_id").
		Where("kelas.kelas_domain = ?", domain).
		Where("kelas.kelas_wali_kelas_id = ? OR ks.user_id = ?", userID, userID).
		Scan(&ids).Error
	return ids, err
}
