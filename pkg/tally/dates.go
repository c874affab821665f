package tally

import "time"

// JulianDayNumber calcula el número de día juliano (calendario gregoriano proléptico)
// con la fórmula entera de Fliegel y Van Flandern.
func JulianDayNumber(t time.Time) int {
	year, month, day := t.Date()
	a := (14 - int(month)) / 12
	y := year + 4800 - a
	m := int(month) + 12*a - 3
	return day + (153*m+2)/5 + 365*y + y/4 - y/100 + y/400 - 32045
}

// DayNumber devuelve el conteo de días que el sistema contable usa en el atributo JD.
func DayNumber(t time.Time) int {
	return JulianDayNumber(t) - EpochJulianDay
}

// FormatDisplayDate devuelve la fecha legible "D-Mon-YY" (ej. "1-Jan-24").
func FormatDisplayDate(t time.Time) string {
	return t.Format("2-Jan-06")
}

// FormatVoucherDate devuelve la fecha del comprobante en formato AAAAMMDD.
func FormatVoucherDate(t time.Time) string {
	return t.Format("20060102")
}
