// Package pdf genera la representación imprimible de la nota de entrega pendiente de una sesión.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa             │  NOTA DE ENTREGA + Fecha     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: Nombre + Referencia                                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Pedido | Ítem | Bodega/Lote | Cant | Tarifa | Importe│
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL                                                       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: Narración + firmas de despacho y recibido           │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Entregas-api/internal/domain/delivery"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa la nota de entrega imprimible usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateDeliveryNotePDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateDeliveryNotePDF(_ context.Context, v *delivery.Voucher) ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("pdf: comprobante nulo")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Nota de Entrega", true).
		WithAuthor(v.CompanyName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(v))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(customerRow(v))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableDetailRows(v) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(v.Total()))

	m.AddRows(line.NewRow(3))
	for _, r := range footerRows(v) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: empresa (izq) y título + fecha (der).
func headerRow(v *delivery.Voucher) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(v.CompanyName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(5).Add(
			text.New("NOTA DE ENTREGA", props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("Fecha: "+v.Date.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func customerRow(v *delivery.Voucher) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(v.Customer, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New("Referencia: "+nonEmpty(v.Reference, "—"), props.Text{
				Size: 8, Top: 11, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Pedido", 2, align.Left),
		h("Ítem", 3, align.Left),
		h("Bodega / Lote", 2, align.Left),
		h("Cant.", 1, align.Right),
		h("Tarifa", 1, align.Right),
		h("Desc%", 1, align.Center),
		h("Importe", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableDetailRows: una fila por asignación, en el orden en que van al comprobante.
func tableDetailRows(v *delivery.Voucher) []core.Row {
	var result []core.Row
	for _, ol := range v.Orders {
		for _, l := range ol.Lines {
			if !l.Quantity.IsPositive() {
				continue
			}
			result = append(result, row.New(7).Add(
				col.New(2).Add(text.New(ol.OrderNumber, props.Text{Size: 8, Top: 1, Left: 1})),
				col.New(3).Add(text.New(l.Order.Item, props.Text{Size: 8, Top: 1, Left: 1})),
				col.New(2).Add(text.New(subUnitLabel(l), props.Text{Size: 7, Top: 1, Left: 1, Color: colorGray})),
				col.New(1).Add(text.New(
					strings.TrimSpace(l.Quantity.String()+" "+l.Order.Unit),
					props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
				)),
				col.New(1).Add(text.New(
					formatMoney(l.Order.Rate.StringFixed(2)),
					props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
				)),
				col.New(1).Add(text.New(
					l.Order.DiscountPct.String()+"%",
					props.Text{Size: 8, Align: align.Center, Top: 1},
				)),
				col.New(2).Add(text.New(
					"$"+formatMoney(l.Amount().StringFixed(2)),
					props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
				)),
			))
		}
	}
	return result
}

func totalRow(total decimal.Decimal) core.Row {
	return row.New(10).Add(
		col.New(6),
		col.New(3).Add(text.New("TOTAL:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2, Top: 2,
		})),
		col.New(3).Add(text.New("$"+formatMoney(total.StringFixed(2)), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1, Top: 2,
		})),
	)
}

// footerRows: narración y espacio para firmas.
func footerRows(v *delivery.Voucher) []core.Row {
	var rows []core.Row
	if v.Narration != "" {
		rows = append(rows, row.New(10).Add(col.New(12).Add(
			text.New("Observaciones: "+v.Narration, props.Text{Size: 8, Color: colorGray, Top: 2}),
		)))
	}
	rows = append(rows,
		row.New(20),
		row.New(8).Add(
			col.New(5).Add(text.New("______________________________\nDespachado por", props.Text{
				Size: 8, Align: align.Center, Color: colorGray,
			})),
			col.New(2),
			col.New(5).Add(text.New("______________________________\nRecibido por", props.Text{
				Size: 8, Align: align.Center, Color: colorGray,
			})),
		),
	)
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func subUnitLabel(l delivery.VoucherLine) string {
	if l.Warehouse == "" && l.Batch == "" {
		return "—"
	}
	return nonEmpty(l.Warehouse, "—") + " / " + nonEmpty(l.Batch, "—")
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney inserta puntos de miles y usa coma decimal.
// Ej: "25000.50" → "25.000,50", "-1000" → "-1.000"
func formatMoney(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	out := sign + string(buf)
	if hasFrac {
		out += "," + frac
	}
	return out
}
