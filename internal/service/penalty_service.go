package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ecowatch/emission-monitor/internal/domain"
	"github.com/ecowatch/emission-monitor/internal/repository"
)

// PenaltyService owns the penalty lifecycle. Excess and tree counts are
// computed exactly once, from the company's numeric state at creation
// time; later company mutations never touch an existing penalty.
type PenaltyService struct {
	repos    Repos
	calc     domain.Calculator
	notifier Notifier
}

func (s *PenaltyService) Create(ctx context.Context, companyID int64, deadline time.Time) (*domain.Penalty, error) {
	if companyID == 0 {
		return nil, invalid("company is required")
	}
	if deadline.IsZero() {
		return nil, invalid("deadline is required")
	}
	company, err := s.repos.Companies.Get(ctx, companyID)
	if err != nil {
		return nil, err
	}

	excess := s.calc.Excess(company)
	p := &domain.Penalty{
		CompanyID:     companyID,
		ExcessAmount:  excess,
		TreesRequired: s.calc.Trees(excess),
		Status:        domain.PenaltyActive,
		Deadline:      deadline,
	}
	p.EnsureNumber()

	err = s.repos.Penalties.Create(ctx, p)
	if errors.Is(err, repository.ErrDuplicateNumber) {
		// Collision on the 8-hex reference; regenerate once and retry.
		p.Number = domain.NewPenaltyNumber()
		err = s.repos.Penalties.Create(ctx, p)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PenaltyService) Get(ctx context.Context, id int64) (*domain.Penalty, error) {
	return s.repos.Penalties.Get(ctx, id)
}

func (s *PenaltyService) List(ctx context.Context, f repository.PenaltyFilters, limit int) ([]domain.Penalty, error) {
	return s.repos.Penalties.List(ctx, f, limit)
}

// Complete marks an active penalty done, by operator decision.
func (s *PenaltyService) Complete(ctx context.Context, id int64) (*domain.Penalty, error) {
	return s.transition(ctx, id, domain.PenaltyCompleted)
}

// Cancel voids an active penalty, by operator decision.
func (s *PenaltyService) Cancel(ctx context.Context, id int64) (*domain.Penalty, error) {
	return s.transition(ctx, id, domain.PenaltyCancelled)
}

func (s *PenaltyService) transition(ctx context.Context, id int64, target domain.PenaltyStatus) (*domain.Penalty, error) {
	p, err := s.repos.Penalties.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.Transition(target); err != nil {
		return nil, err
	}
	if err := s.repos.Penalties.UpdateStatus(ctx, id, p.Status); err != nil {
		return nil, err
	}
	return p, nil
}

// SubmitResponse records a company's remediation response. A non-empty
// comment completes the penalty, persists the response record and leaves
// a notification for the committee trail.
func (s *PenaltyService) SubmitResponse(ctx context.Context, penaltyID, companyID int64, comment string, files []string) (*domain.Penalty, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, invalid("comment is required")
	}
	p, err := s.repos.Penalties.Get(ctx, penaltyID)
	if err != nil {
		return nil, err
	}
	if p.CompanyID != companyID {
		// Penalties are company scoped; a foreign penalty is invisible.
		return nil, repository.ErrNotFound
	}
	if err := p.Transition(domain.PenaltyCompleted); err != nil {
		return nil, err
	}

	// Writes are sequential, not transactional. The status write leads so
	// a stored response never references a still-active penalty.
	if err := s.repos.Penalties.UpdateStatus(ctx, penaltyID, p.Status); err != nil {
		return nil, err
	}
	resp := &domain.PenaltyResponse{
		PenaltyID: penaltyID,
		CompanyID: companyID,
		Comment:   comment,
		FilePaths: files,
	}
	if err := s.repos.Responses.Create(ctx, resp); err != nil {
		return nil, err
	}

	n := &domain.Notification{
		CompanyID: companyID,
		Message:   fmt.Sprintf("Response to penalty %s: %s", p.Number, comment),
	}
	if err := s.repos.Notifications.Create(ctx, n); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		company, err := s.repos.Companies.Get(ctx, companyID)
		name := ""
		if err == nil {
			name = company.Name
		}
		if err := s.notifier.PublishPenaltyResponse(p.Number, name, comment); err != nil {
			log.Warn().Err(err).Str("penalty", p.Number).Msg("response alert delivery failed")
		}
	}
	return p, nil
}

func (s *PenaltyService) Responses(ctx context.Context, penaltyID int64) ([]domain.PenaltyResponse, error) {
	if _, err := s.repos.Penalties.Get(ctx, penaltyID); err != nil {
		return nil, err
	}
	return s.repos.Responses.ListByPenalty(ctx, penaltyID)
}
