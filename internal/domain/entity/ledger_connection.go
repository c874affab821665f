package entity

// LedgerConnection identifica la empresa y la ubicación del conector del sistema contable
// contra las que opera una sesión de entrega.
type LedgerConnection struct {
	LocationID  string
	CompanyName string
	CompanyGUID string
}
