package tally

import "strings"

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// EscapeXML escapa los cinco metacaracteres XML. Todo texto libre (cliente, ítem, referencia)
// pasa por aquí antes de incrustarse en el comprobante.
func EscapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
