package domain

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PenaltyStatus is the lifecycle state of a penalty.
// active is the only initial state; completed and cancelled are terminal.
type PenaltyStatus string

const (
	PenaltyActive    PenaltyStatus = "active"
	PenaltyCompleted PenaltyStatus = "completed"
	PenaltyCancelled PenaltyStatus = "cancelled"
)

// ErrIllegalTransition is returned when a penalty is asked to leave a
// terminal state or to enter a state unreachable from its current one.
var ErrIllegalTransition = errors.New("illegal penalty status transition")

// TreesPerKgHour is the canonical remediation rate: trees required per
// kg/hour of excess emission.
var TreesPerKgHour = decimal.NewFromInt(10)

// excessPlaces is the fixed-point precision of the excess amount.
const excessPlaces = 3

type Penalty struct {
	ID            int64           `db:"id" json:"id"`
	Number        string          `db:"number" json:"number"`
	CompanyID     int64           `db:"company_id" json:"company_id"`
	ExcessAmount  decimal.Decimal `db:"excess_amount" json:"excess_amount"`
	TreesRequired int             `db:"trees_required" json:"trees_required"`
	Status        PenaltyStatus   `db:"status" json:"status"`
	Deadline      time.Time       `db:"deadline" json:"deadline"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// NewPenaltyNumber produces a reference code of the form PEN-XXXXXXXX,
// where XXXXXXXX is 8 uppercase hex characters drawn from a random UUID.
// Collision resistance relies on the birthday bound plus the unique
// constraint on the number column; callers retry on conflict.
func NewPenaltyNumber() string {
	id := uuid.New()
	return fmt.Sprintf("PEN-%X", id[:4])
}

// EnsureNumber assigns a generated number if none is set. An already
// assigned number is never overwritten.
func (p *Penalty) EnsureNumber() {
	if p.Number == "" {
		p.Number = NewPenaltyNumber()
	}
}

// Transition moves the penalty to target, enforcing the lifecycle:
// active -> completed, active -> cancelled, nothing out of a terminal state.
func (p *Penalty) Transition(target PenaltyStatus) error {
	if p.Status != PenaltyActive {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, p.Status, target)
	}
	if target != PenaltyCompleted && target != PenaltyCancelled {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, p.Status, target)
	}
	p.Status = target
	return nil
}

// Calculator derives penalty amounts from a company snapshot. The rate is
// injected once here rather than duplicated at call sites.
type Calculator struct {
	Rate decimal.Decimal
}

func NewCalculator() Calculator {
	return Calculator{Rate: TreesPerKgHour}
}

// Excess returns max(0, current - max) quantized to three decimal places.
// A nil company or non-finite numerics degrade to zero instead of failing.
func (c Calculator) Excess(company *Company) decimal.Decimal {
	if company == nil || !finite(company.CurrentAmount) || !finite(company.MaxAllowed) {
		return decimal.Zero
	}
	cur := decimal.NewFromFloat(company.CurrentAmount)
	allowed := decimal.NewFromFloat(company.MaxAllowed)
	diff := cur.Sub(allowed)
	if diff.Sign() <= 0 {
		return decimal.Zero
	}
	return diff.Round(excessPlaces)
}

// Trees returns ceil(excess * rate), and zero for a non-positive excess.
func (c Calculator) Trees(excess decimal.Decimal) int {
	if excess.Sign() <= 0 {
		return 0
	}
	return int(excess.Mul(c.Rate).Ceil().IntPart())
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
