package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ecowatch/emission-monitor/internal/domain"
)

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateNumber is returned when a penalty number collides with
	// the unique constraint; callers regenerate and retry.
	ErrDuplicateNumber = errors.New("duplicate penalty number")
)

// CompanyFilters narrows company list queries. Zero values mean no filter.
type CompanyFilters struct {
	Search string        // matches name or registration code
	Status domain.Status // exact status match
}

// PenaltyFilters narrows penalty list queries. Zero values mean no filter.
type PenaltyFilters struct {
	Status    domain.PenaltyStatus
	CompanyID int64
}

// RegionCount is a region name with its company count, for dashboard stats.
type RegionCount struct {
	Name  string `db:"name" json:"name"`
	Count int    `db:"count" json:"count"`
}

// IndustryCount is an industry type name with its company count.
type IndustryCount struct {
	Name  string `db:"name" json:"name"`
	Count int    `db:"count" json:"count"`
}

type CompanyRepository interface {
	Create(ctx context.Context, c *domain.Company) error
	Update(ctx context.Context, c *domain.Company) error
	Get(ctx context.Context, id int64) (*domain.Company, error)
	GetByRegistration(ctx context.Context, registration string) (*domain.Company, error)
	List(ctx context.Context, f CompanyFilters, page, size int) ([]domain.Company, int, error)
	TopByReading(ctx context.Context, limit int) ([]domain.Company, error)
	Count(ctx context.Context) (int, error)
	CountDangerous(ctx context.Context) (int, error)
	StatusCounts(ctx context.Context) (map[domain.Status]int, error)
	StatusCountsAsOf(ctx context.Context, asOf time.Time) (map[domain.Status]int, error)
}

type PenaltyRepository interface {
	Create(ctx context.Context, p *domain.Penalty) error
	Get(ctx context.Context, id int64) (*domain.Penalty, error)
	List(ctx context.Context, f PenaltyFilters, limit int) ([]domain.Penalty, error)
	ListCreatedBetween(ctx context.Context, from, to time.Time) ([]domain.Penalty, error)
	// UpdateStatus persists only the lifecycle status. Excess and trees are
	// write-once at creation and never touched again.
	UpdateStatus(ctx context.Context, id int64, status domain.PenaltyStatus) error
	CountActive(ctx context.Context) (int, error)
}

type SensorDataRepository interface {
	Append(ctx context.Context, sd *domain.SensorData) error
	ListByCompany(ctx context.Context, companyID int64, limit int) ([]domain.SensorData, error)
	Latest(ctx context.Context, companyID int64) (*domain.SensorData, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByCompany(ctx context.Context, companyID int64, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id int64) error
}

type ResponseRepository interface {
	Create(ctx context.Context, r *domain.PenaltyResponse) error
	ListByPenalty(ctx context.Context, penaltyID int64) ([]domain.PenaltyResponse, error)
}

type RegionRepository interface {
	ListRegions(ctx context.Context) ([]domain.Region, error)
	ListIndustryTypes(ctx context.Context) ([]domain.IndustryType, error)
	CompanyCountsByRegion(ctx context.Context) ([]RegionCount, error)
	CompanyCountsByIndustry(ctx context.Context) ([]IndustryCount, error)
}
