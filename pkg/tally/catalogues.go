// Package tally contiene constantes y utilidades puras del formato de importación XML
// del sistema contable (Tally): cantidades con unidad, fechas con día juliano y escape de texto.
package tally

// =============================================================================
// Cabecera y cuerpo del sobre "Import Data"
// =============================================================================

const (
	RequestImportData = "Import Data"  // <TALLYREQUEST>
	ReportVouchers    = "Vouchers"     // <REPORTNAME>
	VoucherTypeDN     = "Delivery Note" // VCHTYPE y <VOUCHERTYPENAME>
	VoucherActionNew  = "Create"
	VoucherView       = "Invoice Voucher View"
)

// =============================================================================
// Valores por defecto de las asignaciones por lote
// =============================================================================

const (
	DefaultGodown = "Main Location" // bodega cuando el ítem no lleva control por bodega
	DefaultBatch  = "Primary Batch" // lote cuando el ítem no lleva control por lote
)

// EpochJulianDay es el número de día juliano del 1-ene-1900, época del sistema contable.
// El atributo JD de las fechas se emite como JDN(fecha) - EpochJulianDay.
const EpochJulianDay = 2415021

// Valores Sí/No tal como los espera el importador.
const (
	Yes = "Yes"
	No  = "No"
)
