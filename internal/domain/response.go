package domain

import "time"

// PenaltyResponse is a company's remediation response to a penalty,
// persisted as its own record rather than folded into notification text.
// Submitting one with a non-empty comment completes the penalty.
type PenaltyResponse struct {
	ID        int64     `db:"id" json:"id"`
	PenaltyID int64     `db:"penalty_id" json:"penalty_id"`
	CompanyID int64     `db:"company_id" json:"company_id"`
	Comment   string    `db:"comment" json:"comment"`
	FilePaths []string  `db:"-" json:"file_paths,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
