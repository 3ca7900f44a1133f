package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ecowatch/emission-monitor/internal/domain"
)

type PostgresCompanies struct {
	db *sqlx.DB
}

func NewPostgresCompanies(db *sqlx.DB) *PostgresCompanies {
	return &PostgresCompanies{db: db}
}

var _ CompanyRepository = (*PostgresCompanies)(nil)

const companyColumns = `id, name, registration, region_id, industry_type_id, latitude, longitude,
	max_allowed, current_amount, status, sensor_active, created_at, updated_at`

func (r *PostgresCompanies) Create(ctx context.Context, c *domain.Company) error {
	return r.db.QueryRowxContext(ctx,
		`INSERT INTO companies (name, registration, region_id, industry_type_id, latitude, longitude,
			max_allowed, current_amount, status, sensor_active)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		 RETURNING id, created_at, updated_at`,
		c.Name, c.Registration, c.RegionID, c.IndustryTypeID, c.Latitude, c.Longitude,
		c.MaxAllowed, c.CurrentAmount, c.Status, c.SensorActive,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *PostgresCompanies) Update(ctx context.Context, c *domain.Company) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE companies SET name=$1, registration=$2, region_id=$3, industry_type_id=$4,
			latitude=$5, longitude=$6, max_allowed=$7, current_amount=$8, status=$9,
			sensor_active=$10, updated_at=now()
		 WHERE id=$11`,
		c.Name, c.Registration, c.RegionID, c.IndustryTypeID, c.Latitude, c.Longitude,
		c.MaxAllowed, c.CurrentAmount, c.Status, c.SensorActive, c.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresCompanies) Get(ctx context.Context, id int64) (*domain.Company, error) {
	var c domain.Company
	err := r.db.GetContext(ctx, &c,
		`SELECT `+companyColumns+` FROM companies WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PostgresCompanies) GetByRegistration(ctx context.Context, registration string) (*domain.Company, error) {
	var c domain.Company
	err := r.db.GetContext(ctx, &c,
		`SELECT `+companyColumns+` FROM companies WHERE registration=$1`, registration)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PostgresCompanies) List(ctx context.Context, f CompanyFilters, page, size int) ([]domain.Company, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	n := 1
	if f.Search != "" {
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR registration ILIKE $%d)", n, n))
		args = append(args, "%"+f.Search+"%")
		n++
	}
	if f.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", n))
		args = append(args, f.Status)
		n++
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT count(*) FROM companies WHERE `+cond, args...); err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	args = append(args, size, (page-1)*size)
	var out []domain.Company
	err := r.db.SelectContext(ctx, &out,
		fmt.Sprintf(`SELECT %s FROM companies WHERE %s ORDER BY name LIMIT $%d OFFSET $%d`,
			companyColumns, cond, n, n+1), args...)
	return out, total, err
}

func (r *PostgresCompanies) TopByReading(ctx context.Context, limit int) ([]domain.Company, error) {
	var out []domain.Company
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+companyColumns+` FROM companies ORDER BY current_amount DESC LIMIT $1`, limit)
	return out, err
}

func (r *PostgresCompanies) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT count(*) FROM companies`)
	return n, err
}

func (r *PostgresCompanies) CountDangerous(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT count(*) FROM companies WHERE current_amount > max_allowed`)
	return n, err
}

func (r *PostgresCompanies) StatusCounts(ctx context.Context) (map[domain.Status]int, error) {
	return r.statusCounts(ctx, `SELECT status, count(*) AS cnt FROM companies GROUP BY status`)
}

func (r *PostgresCompanies) StatusCountsAsOf(ctx context.Context, asOf time.Time) (map[domain.Status]int, error) {
	return r.statusCounts(ctx,
		`SELECT status, count(*) AS cnt FROM companies WHERE created_at <= $1 GROUP BY status`, asOf)
}

func (r *PostgresCompanies) statusCounts(ctx context.Context, query string, args ...interface{}) (map[domain.Status]int, error) {
	rows := []struct {
		Status domain.Status `db:"status"`
		Cnt    int           `db:"cnt"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	out := map[domain.Status]int{
		domain.StatusGood:     0,
		domain.StatusModerate: 0,
		domain.StatusBad:      0,
	}
	for _, row := range rows {
		out[row.Status] = row.Cnt
	}
	return out, nil
}
