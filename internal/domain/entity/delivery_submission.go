package entity

import "time"

// DeliverySubmission registro de auditoría de un envío de nota de entrega al sistema contable.
type DeliverySubmission struct {
	ID          string
	CompanyID   string
	SessionID   string
	Customer    string
	VoucherDate time.Time
	Fingerprint string // hash del XML canónico
	Succeeded   bool
	Message     string
	RequestXML  string
	ResponseXML string
	CreatedAt   time.Time
}
