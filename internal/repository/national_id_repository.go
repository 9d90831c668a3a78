package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hirelane/recruitment-service/internal/domain"
)

// NationalIDRepository stores identity documents. Number is unique.
type NationalIDRepository interface {
	Create(ctx context.Context, record *domain.NationalID) error
	GetByNumber(ctx context.Context, number string) (*domain.NationalID, error)
	GetByPersonID(ctx context.Context, personID string) (*domain.NationalID, error)
	GetByUserID(ctx context.Context, userID string) (*domain.NationalID, error)
	LinkPerson(ctx context.Context, id, personID string) error
}

type nationalIDRepository struct {
	pool *pgxpool.Pool
}

// NewNationalIDRepository constructs repository.
func NewNationalIDRepository(pool *pgxpool.Pool) NationalIDRepository {
	return &nationalIDRepository{pool: pool}
}

const nationalIDColumns = `id, id_type, id_number, is_verified, person_id, user_id`

func scanNationalID(row pgx.Row) (*domain.NationalID, error) {
	var record domain.NationalID
	if err := row.Scan(&record.ID, &record.Type, &record.Number, &record.IsVerified, &record.PersonID, &record.UserID); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *nationalIDRepository) Create(ctx context.Context, record *domain.NationalID) error {
	const query = `
        INSERT INTO national_ids (id, id_type, id_number, is_verified, person_id, user_id)
        VALUES ($1, $2, $3, $4, $5, $6)`
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx, query, record.ID, record.Type, record.Number, record.IsVerified, record.PersonID, record.UserID)
	return mapErr("create national id", err)
}

func (r *nationalIDRepository) GetByNumber(ctx context.Context, number string) (*domain.NationalID, error) {
	query := `SELECT ` + nationalIDColumns + ` FROM national_ids WHERE id_number=$1`
	record, err := scanNationalID(r.pool.QueryRow(ctx, query, number))
	return record, mapErr("get national id", err)
}

func (r *nationalIDRepository) GetByPersonID(ctx context.Context, personID string) (*domain.NationalID, error) {
	query := `SELECT ` + nationalIDColumns + ` FROM national_ids WHERE person_id=$1 ORDER BY created_at LIMIT 1`
	record, err := scanNationalID(r.pool.QueryRow(ctx, query, personID))
	return record, mapErr("get national id by person", err)
}

func (r *nationalIDRepository) GetByUserID(ctx context.Context, userID string) (*domain.NationalID, error) {
	query := `SELECT ` + nationalIDColumns + ` FROM national_ids WHERE user_id=$1`
	record, err := scanNationalID(r.pool.QueryRow(ctx, query, userID))
	return record, mapErr("get national id by user", err)
}

func (r *nationalIDRepository) LinkPerson(ctx context.Context, id, personID string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE national_ids SET person_id=$1 WHERE id=$2`, personID, id)
	if err != nil {
		return mapErr("link national id", err)
	}
	return requireAffected("link national id", cmd)
}
