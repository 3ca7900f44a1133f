package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ecowatch/emission-monitor/internal/domain"
	"github.com/ecowatch/emission-monitor/internal/repository"
)

// CompanyService owns company writes. Every mutation that touches the
// reading or the threshold reclassifies the company before persisting, so
// the stored status is never stale.
type CompanyService struct {
	repos    Repos
	notifier Notifier
}

// CompanyInput carries operator-editable company fields. Status is absent
// on purpose: it is derived, never accepted from callers.
type CompanyInput struct {
	Name           string  `json:"name"`
	Registration   string  `json:"registration"`
	RegionID       int64   `json:"region_id"`
	IndustryTypeID int64   `json:"industry_type_id"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	MaxAllowed     float64 `json:"max_allowed"`
	CurrentAmount  float64 `json:"current_amount"`
	SensorActive   bool    `json:"sensor_active"`
}

func (in CompanyInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("company name is required")
	}
	if strings.TrimSpace(in.Registration) == "" {
		return invalid("registration code is required")
	}
	if in.MaxAllowed <= 0 {
		return invalid("max_allowed must be positive")
	}
	if in.CurrentAmount < 0 {
		return invalid("current_amount must not be negative")
	}
	return nil
}

func (s *CompanyService) Create(ctx context.Context, in CompanyInput) (*domain.Company, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c := &domain.Company{
		Name:           in.Name,
		Registration:   in.Registration,
		RegionID:       in.RegionID,
		IndustryTypeID: in.IndustryTypeID,
		Latitude:       in.Latitude,
		Longitude:      in.Longitude,
		MaxAllowed:     in.MaxAllowed,
		CurrentAmount:  in.CurrentAmount,
		SensorActive:   in.SensorActive,
	}
	c.Reclassify()
	if err := s.repos.Companies.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CompanyService) Update(ctx context.Context, id int64, in CompanyInput) (*domain.Company, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c, err := s.repos.Companies.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = in.Name
	c.Registration = in.Registration
	c.RegionID = in.RegionID
	c.IndustryTypeID = in.IndustryTypeID
	c.Latitude = in.Latitude
	c.Longitude = in.Longitude
	c.MaxAllowed = in.MaxAllowed
	c.CurrentAmount = in.CurrentAmount
	c.SensorActive = in.SensorActive
	c.Reclassify()
	if err := s.repos.Companies.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CompanyService) Get(ctx context.Context, id int64) (*domain.Company, error) {
	return s.repos.Companies.Get(ctx, id)
}

// CompanyDetail is the company view with its most recent sensor reading.
// LatestReading is nil for a company with no readings yet.
type CompanyDetail struct {
	Company       *domain.Company    `json:"company"`
	LatestReading *domain.SensorData `json:"latest_reading,omitempty"`
}

func (s *CompanyService) Detail(ctx context.Context, id int64) (CompanyDetail, error) {
	c, err := s.repos.Companies.Get(ctx, id)
	if err != nil {
		return CompanyDetail{}, err
	}
	latest, err := s.repos.SensorData.Latest(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return CompanyDetail{}, err
	}
	return CompanyDetail{Company: c, LatestReading: latest}, nil
}

func (s *CompanyService) List(ctx context.Context, f repository.CompanyFilters, page, size int) ([]domain.Company, int, error) {
	return s.repos.Companies.List(ctx, f, page, size)
}

// UpdateReading appends the reading to the sensor log, updates the
// company's current amount and reclassifies, all in one synchronous pass.
func (s *CompanyService) UpdateReading(ctx context.Context, companyID int64, value float64) (*domain.Company, error) {
	if value < 0 {
		return nil, invalid("gas_amount must not be negative")
	}
	c, err := s.repos.Companies.Get(ctx, companyID)
	if err != nil {
		return nil, err
	}
	sd := &domain.SensorData{CompanyID: companyID, GasAmount: value}
	if err := s.repos.SensorData.Append(ctx, sd); err != nil {
		return nil, err
	}
	c.SetReading(value)
	if err := s.repos.Companies.Update(ctx, c); err != nil {
		return nil, err
	}
	if c.Status == domain.StatusBad && s.notifier != nil {
		// Delivery is best effort; the stored state is already correct.
		if err := s.notifier.PublishThresholdExceeded(c.Name, c.CurrentAmount, c.MaxAllowed); err != nil {
			log.Warn().Err(err).Str("company", c.Name).Msg("threshold alert delivery failed")
		}
	}
	return c, nil
}

func (s *CompanyService) SensorHistory(ctx context.Context, companyID int64, limit int) ([]domain.SensorData, error) {
	if _, err := s.repos.Companies.Get(ctx, companyID); err != nil {
		return nil, err
	}
	return s.repos.SensorData.ListByCompany(ctx, companyID, limit)
}

func (s *CompanyService) Notifications(ctx context.Context, companyID int64, limit int) ([]domain.Notification, error) {
	if _, err := s.repos.Companies.Get(ctx, companyID); err != nil {
		return nil, err
	}
	return s.repos.Notifications.ListByCompany(ctx, companyID, limit)
}

func (s *CompanyService) MarkNotificationRead(ctx context.Context, id int64) error {
	return s.repos.Notifications.MarkRead(ctx, id)
}
