package repository

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"github.com/ecowatch/emission-monitor/internal/domain"
)

type PostgresNotifications struct {
	db *sqlx.DB
}

func NewPostgresNotifications(db *sqlx.DB) *PostgresNotifications {
	return &PostgresNotifications{db: db}
}

var _ NotificationRepository = (*PostgresNotifications)(nil)

func (r *PostgresNotifications) Create(ctx context.Context, n *domain.Notification) error {
	return r.db.QueryRowxContext(ctx,
		`INSERT INTO notifications (company_id, message, is_read)
		 VALUES ($1,$2,$3) RETURNING id, created_at`,
		n.CompanyID, n.Message, n.IsRead,
	).Scan(&n.ID, &n.CreatedAt)
}

func (r *PostgresNotifications) ListByCompany(ctx context.Context, companyID int64, limit int) ([]domain.Notification, error) {
	if limit < 1 {
		limit = 10
	}
	var out []domain.Notification
	err := r.db.SelectContext(ctx, &out,
		`SELECT id, company_id, message, is_read, created_at FROM notifications
		 WHERE company_id=$1 ORDER BY created_at DESC LIMIT $2`, companyID, limit)
	return out, err
}

func (r *PostgresNotifications) MarkRead(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read=true WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type PostgresResponses struct {
	db *sqlx.DB
}

func NewPostgresResponses(db *sqlx.DB) *PostgresResponses {
	return &PostgresResponses{db: db}
}

var _ ResponseRepository = (*PostgresResponses)(nil)

func (r *PostgresResponses) Create(ctx context.Context, pr *domain.PenaltyResponse) error {
	files, err := json.Marshal(pr.FilePaths)
	if err != nil {
		return err
	}
	return r.db.QueryRowxContext(ctx,
		`INSERT INTO penalty_responses (penalty_id, company_id, comment, file_paths)
		 VALUES ($1,$2,$3,$4) RETURNING id, created_at`,
		pr.PenaltyID, pr.CompanyID, pr.Comment, files,
	).Scan(&pr.ID, &pr.CreatedAt)
}

func (r *PostgresResponses) ListByPenalty(ctx context.Context, penaltyID int64) ([]domain.PenaltyResponse, error) {
	rows := []struct {
		domain.PenaltyResponse
		Files []byte `db:"file_paths"`
	}{}
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, penalty_id, company_id, comment, file_paths, created_at
		 FROM penalty_responses WHERE penalty_id=$1 ORDER BY created_at`, penaltyID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.PenaltyResponse, 0, len(rows))
	for _, row := range rows {
		pr := row.PenaltyResponse
		if len(row.Files) > 0 {
			_ = json.Unmarshal(row.Files, &pr.FilePaths)
		}
		out = append(out, pr)
	}
	return out, nil
}
