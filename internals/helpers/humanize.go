package helper

var monthNames = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// LocalizeMonth mengubah angka bulan (1-12) menjadi nama bulan bahasa Indonesia.
func LocalizeMonth(bulan int) string {
	if bulan < 1 || bulan > 12 {
		return ""
	}
	return monthNames[bulan-1]
}
