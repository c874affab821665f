package entity

import "github.com/shopspring/decimal"

// SubUnit existencia de un ítem en una combinación bodega × lote.
type SubUnit struct {
	Item           string          `json:"item"`
	Warehouse      string          `json:"warehouse"`
	Batch          string          `json:"batch"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	ClosingValue   decimal.Decimal `json:"closing_value"`
}
