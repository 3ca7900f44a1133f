package service

import (
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/ecowatch/emission-monitor/internal/config"
	"github.com/ecowatch/emission-monitor/internal/domain"
	"github.com/ecowatch/emission-monitor/internal/repository"
	"github.com/ecowatch/emission-monitor/internal/store"
)

// Notifier delivers committee-facing notifications through an external
// channel. A nil Notifier disables delivery; the in-database Notification
// records are written either way.
type Notifier interface {
	PublishPenaltyResponse(penaltyNumber, companyName, comment string) error
	PublishThresholdExceeded(companyName string, current, allowed float64) error
}

// Uploader is the report archive: generated workbooks are stored under a
// key and retrieved later by listing or direct fetch.
type Uploader interface {
	UploadReport(key string, data []byte, contentType string) (string, error)
	ListReports(prefix string) ([]string, error)
	DownloadReport(key string) ([]byte, error)
}

type Repos struct {
	Companies     repository.CompanyRepository
	Penalties     repository.PenaltyRepository
	SensorData    repository.SensorDataRepository
	Notifications repository.NotificationRepository
	Responses     repository.ResponseRepository
	Regions       repository.RegionRepository
}

type Services struct {
	Companies *CompanyService
	Penalties *PenaltyService
	Sensors   *SensorService
	Stats     *StatsService
	Reports   *ReportService
}

// New wires services over Postgres repositories.
func New(db *sqlx.DB, kv store.KV, notifier Notifier, uploader Uploader) *Services {
	repos := Repos{
		Companies:     repository.NewPostgresCompanies(db),
		Penalties:     repository.NewPostgresPenalties(db),
		SensorData:    repository.NewPostgresSensorData(db),
		Notifications: repository.NewPostgresNotifications(db),
		Responses:     repository.NewPostgresResponses(db),
		Regions:       repository.NewPostgresRegions(db),
	}
	svcs := NewWithRepos(repos, kv, notifier, uploader)
	if rate := config.TreesPerKgHour(); rate > 0 {
		svcs.Penalties.calc.Rate = decimal.NewFromInt(rate)
	}
	return svcs
}

// NewWithRepos wires services over explicit repositories; tests pass the
// in-memory set.
func NewWithRepos(repos Repos, kv store.KV, notifier Notifier, uploader Uploader) *Services {
	calc := domain.NewCalculator()
	companies := &CompanyService{repos: repos, notifier: notifier}
	penalties := &PenaltyService{repos: repos, calc: calc, notifier: notifier}
	return &Services{
		Companies: companies,
		Penalties: penalties,
		Sensors:   &SensorService{companies: companies},
		Stats:     &StatsService{repos: repos, kv: kv},
		Reports:   &ReportService{repos: repos, uploader: uploader},
	}
}
