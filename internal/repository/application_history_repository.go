package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hirelane/recruitment-service/internal/domain"
)

// ApplicationHistoryRepository stores pipeline audit entries.
type ApplicationHistoryRepository interface {
	Create(ctx context.Context, entry *domain.ApplicationHistory) error
	ListByApplication(ctx context.Context, applicationID string) ([]domain.ApplicationHistory, error)
}

type applicationHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewApplicationHistoryRepository builds repository.
func NewApplicationHistoryRepository(pool *pgxpool.Pool) ApplicationHistoryRepository {
	return &applicationHistoryRepository{pool: pool}
}

func (r *applicationHistoryRepository) Create(ctx context.Context, entry *domain.ApplicationHistory) error {
	const query = `
        INSERT INTO application_history (application_id, changed_by_id, old_value, new_value)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		entry.ApplicationID,
		entry.ChangedByID,
		entry.OldValue,
		entry.NewValue,
	).Scan(&entry.ID, &entry.CreatedAt)
	return mapErr("create application history", err)
}

func (r *applicationHistoryRepository) ListByApplication(ctx context.Context, applicationID string) ([]domain.ApplicationHistory, error) {
	const query = `
        SELECT id, application_id, changed_by_id, old_value, new_value, created_at
        FROM application_history WHERE application_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, applicationID)
	if err != nil {
		return nil, mapErr("list application history", err)
	}
	defer rows.Close()

	var result []domain.ApplicationHistory
	for rows.Next() {
		var entry domain.ApplicationHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.ApplicationID,
			&entry.ChangedByID,
			&entry.OldValue,
			&entry.NewValue,
			&entry.CreatedAt,
		); err != nil {
			return nil, mapErr("scan application history", err)
		}
		result = append(result, entry)
	}
	return result, mapErr("list application history", rows.Err())
}
