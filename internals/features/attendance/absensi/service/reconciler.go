package service

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"absensiku_backend/internals/constants"
	"absensiku_backend/internals/features/attendance/absensi/dto"
	"absensiku_backend/internals/features/attendance/absensi/model"
)

// Actor adalah user yang meng-upload batch.
type Actor struct {
	ID          uuid.UUID
	Type        string
	DisplayName string
}

// ReconcileService menggabungkan batch edit absensi dari banyak device
// offline menjadi satu record otoritatif per siswa per tanggal.
type ReconcileService struct {
	store Store
	loc   *time.Location
	now   func() time.Time
}

func NewReconcileService(store Store, loc *time.Location) *ReconcileService {
	return &ReconcileService{
		store: store,
		loc:   loc,
		now:   time.Now,
	}
}

// Format utama tanggal antrean client: dd-mm-yy
var ddmmyyPattern = regexp.MustCompile(`^(0?[1-9]|[12][0-9]|3[01])-(0?[1-9]|1[0-2])-(\d{2})$`)

// Layout cadangan untuk data dari client versi lama
var fallbackDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02-01-2006",
}

func (s *ReconcileService) parseDate(raw string) (time.Time, error) {
	if m := ddmmyyPattern.FindStringSubmatch(raw); m != nil {
		dd, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		yy, _ := strconv.Atoi(m[3])
		return time.Date(2000+yy, time.Month(mm), dd, 0, 0, 0, 0, s.loc), nil
	}
	for _, layout := range fallbackDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, s.loc); err == nil {
			return model.DateOnly(t, s.loc), nil
		}
	}
	return time.Time{}, &DateParseError{Raw: raw}
}

// Upload memproses satu batch dalam satu transaksi.
//
// Urutan aksi tetap: unlock dulu, lalu absen, terakhir lock — supaya unlock
// dalam batch yang sama berlaku sebelum edit dievaluasi, dan lock dalam
// batch yang sama tidak memblokir edit batch itu sendiri.
//
// Record individual yang basi/tak dikenal/tidak berwenang di-skip tanpa
// menggagalkan batch. Fatal (rollback total) hanya untuk: tanggal tidak
// bisa diparse (400), periode terkunci (403), dan lock/unlock oleh
// non-pemilik kelas (403).
func (s *ReconcileService) Upload(ctx context.Context, domain string, actor Actor, items []dto.UploadItem) (*dto.UploadResult, error) {
	sorted := make([]dto.UploadItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return actionRank(sorted[i].Action) < actionRank(sorted[j].Action)
	})

	// Kumpulkan id siswa dari semua payload absen untuk satu kali query
	var siswaIDs []uuid.UUID
	for _, it := range sorted {
		if it.Action != "absen" {
			continue
		}
		var p dto.AbsenPayload
		if err := sonic.UnmarshalString(it.Data, &p); err != nil {
			continue
		}
		siswaIDs = append(siswaIDs, p.Siswa)
	}

	res := &dto.UploadResult{Conflicts: []dto.Conflict{}}

	err := s.store.InTx(ctx, func(tx Store) error {
		siswas := map[uuid.UUID]*SiswaRef{}
		if len(siswaIDs) > 0 {
			var err error
			siswas, err = tx.SiswaRefs(ctx, domain, siswaIDs)
			if err != nil {
				return err
			}
		}

		today := model.DateOnly(s.now(), s.loc)

		for _, it := range sorted {
			switch it.Action {
			case "absen":
				var p dto.AbsenPayload
				if err := sonic.UnmarshalString(it.Data, &p); err != nil {
					continue // sampah antrean, skip
				}

				date, err := s.parseDate(p.Date)
				if err != nil {
					return err
				}
				// Tanggal harus dalam rentang 1 Januari 2020 - hari ini;
				// di luar itu berarti data offline basi, skip bukan gagal
				if date.After(today) || date.Year() < 2020 {
					continue
				}

				if err := s.applyAbsen(ctx, tx, domain, actor, siswas, date, &p, res); err != nil {
					return err
				}

			case "lock", "unlock":
				var p dto.LockPayload
				if err := sonic.UnmarshalString(it.Data, &p); err != nil {
					continue
				}

				date, err := s.parseDate(p.Date)
				if err != nil {
					return err
				}
				if date.After(today) || date.Year() < 2020 {
					continue
				}

				owns, err := tx.OwnsKelas(ctx, domain, actor.ID, p.Kelas)
				if err != nil {
					return err
				}
				if !owns {
					return ErrForbidden
				}

				if err := tx.UpsertLock(ctx, domain, p.Kelas, date, it.Action == "lock"); err != nil {
					return err
				}
				res.Applied++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *ReconcileService) applyAbsen(
	ctx context.Context,
	tx Store,
	domain string,
	actor Actor,
	siswas map[uuid.UUID]*SiswaRef,
	date time.Time,
	p *dto.AbsenPayload,
	res *dto.UploadResult,
) error {
	siswa := siswas[p.Siswa]
	if siswa == nil {
		// cache client basi, siswa sudah tidak ada di domain ini
		return nil
	}

	// Edit manual hanya boleh status final; "tunggu" khusus jalur piket
	if !constants.IsValidStatus(p.Status) || p.Status == constants.StatusTunggu {
		return nil
	}

	if !s.canEdit(actor, siswa) {
		// batch bisa berisi edit beberapa orang dari satu device;
		// hanya edit kelas milik actor yang diterapkan
		return nil
	}

	locked, err := tx.IsLocked(ctx, domain, siswa.KelasID, date)
	if err != nil {
		return err
	}
	if locked {
		// fatal: membiarkan edit lain lolos berarti partial success diam-diam
		// pada periode yang user kira terlindungi penuh
		return &LockedPeriodError{Date: date}
	}

	updatedAt := s.now()
	if p.UpdatedAt != nil {
		updatedAt = time.Unix(*p.UpdatedAt, 0).In(s.loc)
	}

	existing, err := tx.FindAbsensi(ctx, domain, siswa.ID, date)
	if err != nil {
		return err
	}

	switch {
	case existing == nil:
		a := &model.AbsensiModel{
			AbsensiSiswaID: siswa.ID,
			AbsensiDate:    model.ToDate(date),
			AbsensiByID:    &actor.ID,
			AbsensiDomain:  domain,
			// insert berarti updated_at = created_at
			AbsensiCreatedAt: updatedAt,
			AbsensiUpdatedAt: updatedAt,
		}
		a.SetStatus(p.Status)
		if err := tx.CreateAbsensi(ctx, a); err != nil {
			return err
		}
		res.Applied++

	case existing.AbsensiByID == nil:
		// record hasil scan piket yang belum diklaim: diadopsi actor
		existing.SetStatus(p.Status)
		existing.AbsensiUpdatedAt = updatedAt
		existing.AbsensiByID = &actor.ID
		if err := tx.SaveAbsensi(ctx, existing); err != nil {
			return err
		}
		res.Applied++

	default:
		sameStatus := existing.AbsensiStatus == p.Status
		sameUser := *existing.AbsensiByID == actor.ID

		switch {
		case sameStatus:
			// no-op

		case sameUser:
			// orang yang sama mengoreksi entriannya sendiri
			existing.SetStatus(p.Status)
			existing.AbsensiUpdatedAt = updatedAt
			if err := tx.SaveAbsensi(ctx, existing); err != nil {
				return err
			}
			res.Applied++

		case p.PreviousStatus == nil:
			res.Conflicts = append(res.Conflicts, s.buildConflict(existing, siswa, actor, p.Status))

		default:
			effective, err := ResolveStatus(existing.AbsensiStatus, existing.AbsensiWaitExpiredAt, s.now())
			if err != nil {
				return err
			}
			// Placeholder piket yang masih "tunggu" boleh selalu ditimpa
			// edit manusia; selain itu previous_status harus cocok dengan
			// status tersimpan
			if *p.PreviousStatus == existing.AbsensiStatus || effective == constants.StatusTunggu {
				existing.SetStatus(p.Status)
				existing.AbsensiUpdatedAt = updatedAt
				existing.AbsensiByID = &actor.ID
				existing.By = nil
				if err := tx.SaveAbsensi(ctx, existing); err != nil {
					return err
				}
				res.Applied++
			} else {
				res.Conflicts = append(res.Conflicts, s.buildConflict(existing, siswa, actor, p.Status))
			}
		}
	}
	return nil
}

func (s *ReconcileService) canEdit(actor Actor, siswa *SiswaRef) bool {
	if siswa.WaliKelasID != nil && *siswa.WaliKelasID == actor.ID {
		return true
	}
	for _, id := range siswa.SekretarisIDs {
		if id == actor.ID {
			return true
		}
	}
	return false
}

func (s *ReconcileService) buildConflict(existing *model.AbsensiModel, siswa *SiswaRef, actor Actor, incomingStatus string) dto.Conflict {
	otherName := ""
	if existing.By != nil {
		otherName = existing.By.DisplayName()
	}
	return dto.Conflict{
		Type:           "absensi",
		AbsensiID:      existing.AbsensiID,
		AbsensiSiswa:   siswa.Fullname,
		AbsensiSiswaID: siswa.ID,
		AbsensiKelasID: siswa.KelasID,
		AbsensiDate:    existing.DateValue().Format("2006-01-02"),
		Other: dto.ConflictSide{
			DisplayName:   otherName,
			AbsensiStatus: existing.AbsensiStatus,
		},
		Self: dto.ConflictSide{
			DisplayName:   actor.DisplayName,
			AbsensiStatus: incomingStatus,
		},
	}
}

// RefreshExpired mem-persist status "alfa" untuk record tunggu yang sudah
// lewat batas. Job eksplisit yang dipanggil admin; membaca daftar absensi
// tidak pernah menulis balik.
func (s *ReconcileService) RefreshExpired(ctx context.Context, domain string) (int64, error) {
	return s.store.ExpireWaiting(ctx, domain, s.now())
}

func actionRank(action string) int {
	switch action {
	case "unlock":
		return 0
	case "absen":
		return 1
	default: // lock
		return 2
	}
}
