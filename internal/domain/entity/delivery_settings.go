package entity

import "time"

// Formatos de asignación por lote dentro del comprobante.
const (
	BatchXMLSingle   = "single"   // una entrada de inventario por (ítem, tarifa, descuento) con lotes anidados
	BatchXMLSeparate = "separate" // una entrada de inventario por cada asignación (pedido, sub-unidad)
)

// DeliverySettings banderas que gobiernan las asignaciones de entrega de una empresa.
type DeliverySettings struct {
	CompanyID                string
	AllowNegativeStock       bool   // desactiva el tope por existencia
	AllowDeliveryExceedOrder bool   // desactiva el tope por cantidad pendiente
	BatchXMLFormat           string // ver BatchXML*
	AgeingBuckets            string // no lo usa el motor de asignación
	UpdatedAt                time.Time
}

// ValidBatchXMLFormat indica si el formato es uno de los reconocidos.
func ValidBatchXMLFormat(f string) bool {
	return f == BatchXMLSingle || f == BatchXMLSeparate
}
