package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/ecowatch/emission-monitor/internal/domain"
)

type PostgresSensorData struct {
	db *sqlx.DB
}

func NewPostgresSensorData(db *sqlx.DB) *PostgresSensorData {
	return &PostgresSensorData{db: db}
}

var _ SensorDataRepository = (*PostgresSensorData)(nil)

// Append inserts a reading row. There is no update or delete path; the
// table is an immutable event log.
func (r *PostgresSensorData) Append(ctx context.Context, sd *domain.SensorData) error {
	return r.db.QueryRowxContext(ctx,
		`INSERT INTO sensor_data (company_id, gas_amount)
		 VALUES ($1,$2) RETURNING id, recorded_at`,
		sd.CompanyID, sd.GasAmount,
	).Scan(&sd.ID, &sd.RecordedAt)
}

func (r *PostgresSensorData) ListByCompany(ctx context.Context, companyID int64, limit int) ([]domain.SensorData, error) {
	if limit < 1 {
		limit = 50
	}
	var out []domain.SensorData
	err := r.db.SelectContext(ctx, &out,
		`SELECT id, company_id, gas_amount, recorded_at FROM sensor_data
		 WHERE company_id=$1 ORDER BY recorded_at DESC LIMIT $2`, companyID, limit)
	return out, err
}

func (r *PostgresSensorData) Latest(ctx context.Context, companyID int64) (*domain.SensorData, error) {
	var sd domain.SensorData
	err := r.db.GetContext(ctx, &sd,
		`SELECT id, company_id, gas_amount, recorded_at FROM sensor_data
		 WHERE company_id=$1 ORDER BY recorded_at DESC LIMIT 1`, companyID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sd, nil
}
