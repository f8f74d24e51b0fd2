package models

// FeeCategory is an admin-defined named charge, e.g. "Tuition Fee".
// Names are unique within the collection; amounts are positive currency units.
type FeeCategory struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}
