package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ecowatch/emission-monitor/internal/domain"
)

type PostgresRegions struct {
	db *sqlx.DB
}

func NewPostgresRegions(db *sqlx.DB) *PostgresRegions {
	return &PostgresRegions{db: db}
}

var _ RegionRepository = (*PostgresRegions)(nil)

func (r *PostgresRegions) ListRegions(ctx context.Context) ([]domain.Region, error) {
	var out []domain.Region
	err := r.db.SelectContext(ctx, &out, `SELECT id, name FROM regions ORDER BY name`)
	return out, err
}

func (r *PostgresRegions) ListIndustryTypes(ctx context.Context) ([]domain.IndustryType, error) {
	var out []domain.IndustryType
	err := r.db.SelectContext(ctx, &out, `SELECT id, name FROM industry_types ORDER BY name`)
	return out, err
}

func (r *PostgresRegions) CompanyCountsByRegion(ctx context.Context) ([]RegionCount, error) {
	var out []RegionCount
	err := r.db.SelectContext(ctx, &out,
		`SELECT r.name AS name, count(c.id) AS count
		 FROM regions r LEFT JOIN companies c ON c.region_id = r.id
		 GROUP BY r.name ORDER BY count DESC`)
	return out, err
}

func (r *PostgresRegions) CompanyCountsByIndustry(ctx context.Context) ([]IndustryCount, error) {
	var out []IndustryCount
	err := r.db.SelectContext(ctx, &out,
		`SELECT t.name AS name, count(c.id) AS count
		 FROM industry_types t LEFT JOIN companies c ON c.industry_type_id = t.id
		 GROUP BY t.name ORDER BY count DESC LIMIT 10`)
	return out, err
}
