package tally

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Entregas-api/internal/domain/delivery"
	"github.com/jhoicas/Entregas-api/internal/domain/entity"
	pkgtally "github.com/jhoicas/Entregas-api/pkg/tally"
)

// VoucherService construye el sobre "Import Data" con un comprobante "Delivery Note",
// interpreta la respuesta y calcula la huella del envío.
// El orden de los campos dentro de cada bloque es parte del formato y no debe alterarse.
type VoucherService struct{}

// NewVoucherService crea el servicio.
func NewVoucherService() *VoucherService {
	return &VoucherService{}
}

// Interpret ver InterpretResponse.
func (s *VoucherService) Interpret(raw string) delivery.ImportResult {
	return InterpretResponse(raw)
}

// Fingerprint ver Fingerprint.
func (s *VoucherService) Fingerprint(voucherXML string) (string, error) {
	return Fingerprint(voucherXML)
}

// inventoryEntry bloque ALLINVENTORYENTRIES.LIST con sus asignaciones por lote.
type inventoryEntry struct {
	item     string
	rate     string
	discount decimal.Decimal
	unit     string
	qty      decimal.Decimal
	amount   decimal.Decimal // sin redondear
	batches  []delivery.VoucherLine
}

// Build genera el XML del comprobante. Si no hay ninguna línea con cantidad positiva devuelve "":
// el llamador debe tratarlo como error de validación, nunca enviar un comprobante vacío.
func (s *VoucherService) Build(v *delivery.Voucher) (string, error) {
	if v == nil {
		return "", fmt.Errorf("tally: comprobante vacío")
	}
	var lines []delivery.VoucherLine
	for _, ol := range v.Orders {
		for _, l := range ol.Lines {
			if l.Quantity.IsPositive() {
				lines = append(lines, l)
			}
		}
	}
	if len(lines) == 0 {
		return "", nil
	}

	var entries []*inventoryEntry
	switch v.Layout {
	case entity.BatchXMLSingle, "":
		entries = groupEntries(lines)
	case entity.BatchXMLSeparate:
		entries = separateEntries(lines)
	default:
		return "", fmt.Errorf("tally: formato de lotes desconocido %q", v.Layout)
	}

	var sb strings.Builder
	sb.WriteString(`<ENVELOPE>`)
	sb.WriteString(`<HEADER><TALLYREQUEST>` + pkgtally.RequestImportData + `</TALLYREQUEST></HEADER>`)
	sb.WriteString(`<BODY><IMPORTDATA>`)
	sb.WriteString(`<REQUESTDESC><REPORTNAME>` + pkgtally.ReportVouchers + `</REPORTNAME>`)
	sb.WriteString(`<STATICVARIABLES><SVCURRENTCOMPANY>` + pkgtally.EscapeXML(v.CompanyName) + `</SVCURRENTCOMPANY></STATICVARIABLES>`)
	sb.WriteString(`</REQUESTDESC>`)
	sb.WriteString(`<REQUESTDATA><TALLYMESSAGE xmlns:UDF="TallyUDF">`)
	s.writeVoucher(&sb, v, entries)
	sb.WriteString(`</TALLYMESSAGE></REQUESTDATA>`)
	sb.WriteString(`</IMPORTDATA></BODY>`)
	sb.WriteString(`</ENVELOPE>`)
	return sb.String(), nil
}

func (s *VoucherService) writeVoucher(sb *strings.Builder, v *delivery.Voucher, entries []*inventoryEntry) {
	party := pkgtally.EscapeXML(v.Customer)

	sb.WriteString(`<VOUCHER VCHTYPE="` + pkgtally.VoucherTypeDN + `" ACTION="` + pkgtally.VoucherActionNew + `" OBJVIEW="` + pkgtally.VoucherView + `">`)
	writeTag(sb, "DATE", pkgtally.FormatVoucherDate(v.Date))
	writeTag(sb, "VOUCHERTYPENAME", pkgtally.VoucherTypeDN)
	if v.Reference != "" {
		writeTag(sb, "REFERENCE", pkgtally.EscapeXML(v.Reference))
	}
	writeTag(sb, "PARTYNAME", party)
	writeTag(sb, "PARTYLEDGERNAME", party)
	writeTag(sb, "BASICBUYERNAME", party)
	if v.Narration != "" {
		writeTag(sb, "NARRATION", pkgtally.EscapeXML(v.Narration))
	}
	writeTag(sb, "PERSISTEDVIEW", pkgtally.VoucherView)
	writeTag(sb, "ISINVOICE", pkgtally.Yes)

	// El total del cliente es la suma de los importes ya emitidos (redondeados), con signo negativo.
	total := decimal.Zero
	for _, e := range entries {
		emitted := e.amount.Round(2)
		total = total.Add(emitted)
		s.writeInventoryEntry(sb, e, emitted)
	}

	sb.WriteString(`<LEDGERENTRIES.LIST>`)
	writeTag(sb, "LEDGERNAME", party)
	writeTag(sb, "ISDEEMEDPOSITIVE", pkgtally.Yes)
	writeTag(sb, "ISPARTYLEDGER", pkgtally.Yes)
	writeTag(sb, "AMOUNT", pkgtally.FormatAmount(total.Neg()))
	sb.WriteString(`</LEDGERENTRIES.LIST>`)

	sb.WriteString(`</VOUCHER>`)
}

func (s *VoucherService) writeInventoryEntry(sb *strings.Builder, e *inventoryEntry, amount decimal.Decimal) {
	qty := pkgtally.FormatQuantity(e.qty, e.unit)
	sb.WriteString(`<ALLINVENTORYENTRIES.LIST>`)
	writeTag(sb, "STOCKITEMNAME", pkgtally.EscapeXML(e.item))
	writeTag(sb, "ISDEEMEDPOSITIVE", pkgtally.No)
	writeTag(sb, "RATE", pkgtally.EscapeXML(e.rate))
	writeTag(sb, "DISCOUNT", e.discount.String())
	writeTag(sb, "AMOUNT", pkgtally.FormatAmount(amount))
	writeTag(sb, "ACTUALQTY", qty)
	writeTag(sb, "BILLEDQTY", qty)
	for _, b := range e.batches {
		writeBatchAllocation(sb, b)
	}
	sb.WriteString(`</ALLINVENTORYENTRIES.LIST>`)
}

func writeBatchAllocation(sb *strings.Builder, l delivery.VoucherLine) {
	godown := l.Warehouse
	if godown == "" {
		godown = pkgtally.DefaultGodown
	}
	batch := l.Batch
	if batch == "" {
		batch = pkgtally.DefaultBatch
	}
	orderNo := pkgtally.EscapeXML(l.Order.Number)
	qty := pkgtally.FormatQuantity(l.Quantity, l.Order.Unit)
	due := pkgtally.FormatDisplayDate(l.Order.DueDate)

	sb.WriteString(`<BATCHALLOCATIONS.LIST>`)
	writeTag(sb, "GODOWNNAME", pkgtally.EscapeXML(godown))
	writeTag(sb, "BATCHNAME", pkgtally.EscapeXML(batch))
	writeTag(sb, "ORDERNO", orderNo)
	writeTag(sb, "TRACKINGNUMBER", orderNo)
	writeTag(sb, "AMOUNT", pkgtally.FormatAmount(l.Amount()))
	writeTag(sb, "ACTUALQTY", qty)
	writeTag(sb, "BILLEDQTY", qty)
	sb.WriteString(fmt.Sprintf(`<ORDERDUEDATE JD="%d" P="%s">%s</ORDERDUEDATE>`,
		pkgtally.DayNumber(l.Order.DueDate), due, due))
	sb.WriteString(`</BATCHALLOCATIONS.LIST>`)
}

// groupEntries agrupa por (ítem, tarifa textual, descuento) en orden de primera aparición.
func groupEntries(lines []delivery.VoucherLine) []*inventoryEntry {
	var entries []*inventoryEntry
	index := map[string]*inventoryEntry{}
	for _, l := range lines {
		k := l.Order.Item + "\x00" + l.Order.RateString() + "\x00" + l.Order.DiscountPct.String()
		e, ok := index[k]
		if !ok {
			e = newEntry(l)
			index[k] = e
			entries = append(entries, e)
		} else {
			e.qty = e.qty.Add(l.Quantity)
			e.amount = e.amount.Add(l.Amount())
			e.batches = append(e.batches, l)
		}
	}
	return entries
}

// separateEntries una entrada por asignación, sin fusionar.
func separateEntries(lines []delivery.VoucherLine) []*inventoryEntry {
	entries := make([]*inventoryEntry, 0, len(lines))
	for _, l := range lines {
		entries = append(entries, newEntry(l))
	}
	return entries
}

func newEntry(l delivery.VoucherLine) *inventoryEntry {
	return &inventoryEntry{
		item:     l.Order.Item,
		rate:     l.Order.RateString(),
		discount: l.Order.DiscountPct,
		unit:     l.Order.Unit,
		qty:      l.Quantity,
		amount:   l.Amount(),
		batches:  []delivery.VoucherLine{l},
	}
}

func writeTag(sb *strings.Builder, tag, value string) {
	sb.WriteString("<" + tag + ">" + value + "</" + tag + ">")
}
