package tally

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	quantityNumberRe = regexp.MustCompile(`-?\d*\.?\d+`)
	quantityUnitRe   = regexp.MustCompile(`[A-Za-z]+$`)
)

// ParseQuantity extrae magnitud y unidad de una cantidad libre del sistema contable
// ("12.50 Nos", "-3 Kgs", "10.00/Nos"). La magnitud es el primer decimal con signo del texto
// y la unidad la última corrida alfabética. Sin token numérico devuelve (0, "").
//
// Un cero no significa "campo ausente": el llamador debe revisar el texto crudo antes.
func ParseQuantity(s string) (decimal.Decimal, string) {
	s = strings.TrimSpace(s)
	num := quantityNumberRe.FindString(s)
	if num == "" {
		return decimal.Zero, ""
	}
	num = strings.Replace(num, "-.", "-0.", 1)
	if strings.HasPrefix(num, ".") {
		num = "0" + num
	}
	mag, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Zero, ""
	}
	return mag, quantityUnitRe.FindString(s)
}

// FormatQuantity devuelve la cantidad como la espera <ACTUALQTY>/<BILLEDQTY>: un espacio inicial,
// la magnitud (máx. 2 decimales, sin ceros de relleno) y la unidad si existe.
// El espacio inicial es parte del formato y no debe eliminarse.
func FormatQuantity(q decimal.Decimal, unit string) string {
	out := " " + q.Round(2).String()
	if unit != "" {
		out += " " + unit
	}
	return out
}

// FormatAmount formatea un monto con dos decimales fijos ("950.00", "-950.00").
func FormatAmount(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}
