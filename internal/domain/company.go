package domain

import "time"

// Status is the compliance tier of a company, derived from its current
// reading against the allowed threshold. It is recomputed on every write
// that touches CurrentAmount or MaxAllowed and cached in the status column
// so list filters can query it; callers never set it directly.
type Status string

const (
	StatusGood     Status = "good"
	StatusModerate Status = "moderate"
	StatusBad      Status = "bad"
)

// Classify maps a reading and threshold to a compliance tier.
// Total over all float inputs, no error cases:
//
//	current < max  -> good
//	current == max -> moderate
//	current > max  -> bad
func Classify(currentAmount, maxAllowed float64) Status {
	switch {
	case currentAmount < maxAllowed:
		return StatusGood
	case currentAmount == maxAllowed:
		return StatusModerate
	default:
		return StatusBad
	}
}

type Company struct {
	ID             int64     `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Registration   string    `db:"registration" json:"registration"`
	RegionID       int64     `db:"region_id" json:"region_id"`
	IndustryTypeID int64     `db:"industry_type_id" json:"industry_type_id"`
	Latitude       float64   `db:"latitude" json:"latitude"`
	Longitude      float64   `db:"longitude" json:"longitude"`
	MaxAllowed     float64   `db:"max_allowed" json:"max_allowed"`
	CurrentAmount  float64   `db:"current_amount" json:"current_amount"`
	Status         Status    `db:"status" json:"status"`
	SensorActive   bool      `db:"sensor_active" json:"sensor_active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Reclassify recomputes the cached status from the company's numeric state.
// Must run before every persist that changed CurrentAmount or MaxAllowed.
func (c *Company) Reclassify() {
	c.Status = Classify(c.CurrentAmount, c.MaxAllowed)
}

// SetReading updates the current reading and reclassifies.
func (c *Company) SetReading(value float64) {
	c.CurrentAmount = value
	c.Reclassify()
}

// SetThreshold updates the allowed threshold and reclassifies.
func (c *Company) SetThreshold(value float64) {
	c.MaxAllowed = value
	c.Reclassify()
}
