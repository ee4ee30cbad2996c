package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"absensiku_backend/internals/constants"
	"absensiku_backend/internals/features/attendance/absensi/model"
	"absensiku_backend/internals/features/attendance/absensi/service"
	siswamodel "absensiku_backend/internals/features/school/siswa/model"
)

// GormStore adalah implementasi service.Store di atas PostgreSQL.
// Kebenaran antar batch paralel bergantung pada isolasi transaksi store
// plus unique index (siswa,date) dan (kelas,date).
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

func (s *GormStore) SiswaRefs(ctx context.Context, domain string, ids []uuid.UUID) (map[uuid.UUID]*service.SiswaRef, error) {
	var rows []siswamodel.SiswaModel
	err := s.db.WithContext(ctx).
		Preload("Kelas.Sekretaris").
		Where("siswa_domain = ? AND siswa_id IN ?", domain, ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	refs := make(map[uuid.UUID]*service.SiswaRef, len(rows))
	for i := range rows {
		row := &rows[i]
		ref := &service.SiswaRef{
			ID:       row.SiswaID,
			Fullname: row.SiswaFullname,
			KelasID:  row.SiswaKelasID,
		}
		if row.Kelas != nil {
			ref.WaliKelasID = row.Kelas.KelasWaliKelasID
			for _, sek := range row.Kelas.Sekretaris {
				ref.SekretarisIDs = append(ref.SekretarisIDs, sek.ID)
			}
		}
		refs[row.SiswaID] = ref
	}
	return refs, nil
}

func (s *GormStore) IsLocked(ctx context.Context, domain string, kelasID uuid.UUID, date time.Time) (bool, error) {
	var k model.KunciAbsensiModel
	err := s.db.WithContext(ctx).
		Where("kunci_absensi_domain = ? AND kunci_absensi_kelas_id = ? AND kunci_absensi_date = ?",
			domain, kelasID, model.ToDate(date)).
		First(&k).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return k.KunciAbsensiLocked, nil
}

func (s *GormStore) UpsertLock(ctx context.Context, domain string, kelasID uuid.UUID, date time.Time, locked bool) error {
	k := model.KunciAbsensiModel{
		KunciAbsensiKelasID: kelasID,
		KunciAbsensiDate:    model.ToDate(date),
		KunciAbsensiLocked:  locked,
		KunciAbsensiDomain:  domain,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "kunci_absensi_kelas_id"},
				{Name: "kunci_absensi_date"},
				{Name: "kunci_absensi_domain"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"kunci_absensi_locked", "kunci_absensi_updated_at"}),
		}).
		Create(&k).Error
}

func (s *GormStore) OwnsKelas(ctx context.Context, domain string, userID, kelasID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Table("kelas").
		Joins("LEFT JOIN kelas_sekretaris ks ON ks.kelas_id = kelas.kelas_id").
		Where("kelas.kelas_domain = ? AND kelas.kelas_id = ?", domain, kelasID).
		Where("kelas.kelas_wali_kelas_id = ? OR ks.user_id = ?", userID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *GormStore) FindAbsensi(ctx context.Context, domain string, siswaID uuid.UUID, date time.Time) (*model.AbsensiModel, error) {
	var a model.AbsensiModel
	err := s.db.WithContext(ctx).
		Preload("By").
		Where("absensi_domain = ? AND absensi_siswa_id = ? AND absensi_date = ?",
			domain, siswaID, model.ToDate(date)).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *GormStore) CreateAbsensi(ctx context.Context, a *model.AbsensiModel) error {
	return s.db.WithContext(ctx).Create(a).Error
}

func (s *GormStore) SaveAbsensi(ctx context.Context, a *model.AbsensiModel) error {
	return s.db.WithContext(ctx).Save(a).Error
}

func (s *GormStore) ExpireWaiting(ctx context.Context, domain string, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&model.AbsensiModel{}).
		Where("absensi_domain = ? AND absensi_status = ? AND absensi_wait_expired_at <= ?",
			domain, constants.StatusTunggu, now).
		Updates(map[string]interface{}{
			"absensi_status":          constants.StatusAlfa,
			"absensi_wait_expired_at": nil,
			"absensi_updated_at":      now,
		})
	return res.RowsAffected, res.Error
}
