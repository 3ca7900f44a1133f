package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/ecowatch/emission-monitor/internal/domain"
)

type PostgresPenalties struct {
	db *sqlx.DB
}

func NewPostgresPenalties(db *sqlx.DB) *PostgresPenalties {
	return &PostgresPenalties{db: db}
}

var _ PenaltyRepository = (*PostgresPenalties)(nil)

const penaltyColumns = `id, number, company_id, excess_amount, trees_required, status, deadline, created_at`

// pgUniqueViolation is the Postgres error code for unique_violation.
const pgUniqueViolation = "23505"

func (r *PostgresPenalties) Create(ctx context.Context, p *domain.Penalty) error {
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO penalties (number, company_id, excess_amount, trees_required, status, deadline)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 RETURNING id, created_at`,
		p.Number, p.CompanyID, p.ExcessAmount, p.TreesRequired, p.Status, p.Deadline,
	).Scan(&p.ID, &p.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrDuplicateNumber
	}
	return err
}

func (r *PostgresPenalties) Get(ctx context.Context, id int64) (*domain.Penalty, error) {
	var p domain.Penalty
	err := r.db.GetContext(ctx, &p,
		`SELECT `+penaltyColumns+` FROM penalties WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostgresPenalties) List(ctx context.Context, f PenaltyFilters, limit int) ([]domain.Penalty, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	n := 1
	if f.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", n))
		args = append(args, f.Status)
		n++
	}
	if f.CompanyID != 0 {
		where = append(where, fmt.Sprintf("company_id = $%d", n))
		args = append(args, f.CompanyID)
		n++
	}
	if limit < 1 {
		limit = 50
	}
	args = append(args, limit)
	var out []domain.Penalty
	err := r.db.SelectContext(ctx, &out,
		fmt.Sprintf(`SELECT %s FROM penalties WHERE %s ORDER BY created_at DESC LIMIT $%d`,
			penaltyColumns, strings.Join(where, " AND "), n), args...)
	return out, err
}

func (r *PostgresPenalties) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]domain.Penalty, error) {
	var out []domain.Penalty
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+penaltyColumns+` FROM penalties
		 WHERE created_at >= $1 AND created_at <= $2 ORDER BY created_at DESC`, from, to)
	return out, err
}

func (r *PostgresPenalties) UpdateStatus(ctx context.Context, id int64, status domain.PenaltyStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE penalties SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresPenalties) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT count(*) FROM penalties WHERE status='active'`)
	return n, err
}
