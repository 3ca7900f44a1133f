package domain

import "time"

// SensorData is an append-only reading record. Rows are never updated
// or deleted once written.
type SensorData struct {
	ID         int64     `db:"id" json:"id"`
	CompanyID  int64     `db:"company_id" json:"company_id"`
	GasAmount  float64   `db:"gas_amount" json:"gas_amount"`
	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
}
