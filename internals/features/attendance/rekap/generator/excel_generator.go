package generator

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"absensiku_backend/internals/constants"
	"absensiku_backend/internals/features/attendance/rekap/service"
	helper "absensiku_backend/internals/helpers"
)

// Inisial status di sel harian rekap.
var statusInitial = map[string]string{
	constants.StatusHadir:  "H",
	constants.StatusSakit:  "S",
	constants.StatusIzin:   "I",
	constants.StatusAlfa:   "A",
	constants.StatusBolos:  "B",
	constants.StatusTunggu: "?",
}

// ExcelGenerator merender rekap bulanan menjadi workbook xlsx: satu baris
// per siswa, satu kolom per tanggal, kolom total per status di kanan.
type ExcelGenerator struct{}

func NewExcelGenerator() *ExcelGenerator {
	return &ExcelGenerator{}
}

var _ service.RecapGenerator = (*ExcelGenerator)(nil)

func (g *ExcelGenerator) Generate(data *service.RecapData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Rekap"
	f.SetSheetName("Sheet1", sheet)

	title := fmt.Sprintf("Rekap Absensi %s - %s %d",
		data.KelasName, helper.LocalizeMonth(int(data.Bulan)), data.Tahun)
	if err := f.SetCellValue(sheet, "A1", title); err != nil {
		return nil, err
	}

	totals := []string{
		constants.StatusHadir,
		constants.StatusSakit,
		constants.StatusIzin,
		constants.StatusAlfa,
		constants.StatusBolos,
	}

	headerRow := 3
	if err := setRow(f, sheet, 1, headerRow, "No", "Nama", "NIS"); err != nil {
		return nil, err
	}
	col := 4
	for _, day := range data.Days {
		if err := setCell(f, sheet, col, headerRow, day.Day()); err != nil {
			return nil, err
		}
		col++
	}
	for _, status := range totals {
		if err := setCell(f, sheet, col, headerRow, statusInitial[status]); err != nil {
			return nil, err
		}
		col++
	}

	for i, row := range data.Rows {
		r := headerRow + 1 + i
		if err := setRow(f, sheet, 1, r, i+1, row.Fullname, row.NIS); err != nil {
			return nil, err
		}

		count := map[string]int{}
		col = 4
		for _, day := range data.Days {
			status := row.Statuses[day.Format("2006-01-02")]
			if status != "" {
				count[status]++
				if err := setCell(f, sheet, col, r, statusInitial[status]); err != nil {
					return nil, err
				}
			}
			col++
		}
		for _, status := range totals {
			if err := setCell(f, sheet, col, r, count[status]); err != nil {
				return nil, err
			}
			col++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, sheet string, col, row int, val interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, val)
}

func setRow(f *excelize.File, sheet string, startCol, row int, vals ...interface{}) error {
	for i, v := range vals {
		if err := setCell(f, sheet, startCol+i, row, v); err != nil {
			return err
		}
	}
	return nil
}
