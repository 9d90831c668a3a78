package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hirelane/recruitment-service/internal/domain"
)

// PersonRepository persists canonical applicant identities.
// National ID number and primary phone are unique when present.
type PersonRepository interface {
	Create(ctx context.Context, person *domain.Person) error
	Update(ctx context.Context, person *domain.Person) error
	GetByID(ctx context.Context, id string) (*domain.Person, error)
	GetByNationalIDNumber(ctx context.Context, number string) (*domain.Person, error)
	GetByPrimaryPhone(ctx context.Context, phone string) (*domain.Person, error)
	// GetByUserEmail returns the person linked to the account registered with email.
	GetByUserEmail(ctx context.Context, email string) (*domain.Person, error)
	List(ctx context.Context, limit, offset int) ([]domain.Person, error)
}

type personRepository struct {
	pool *pgxpool.Pool
}

// NewPersonRepository constructs repository.
func NewPersonRepository(pool *pgxpool.Pool) PersonRepository {
	return &personRepository{pool: pool}
}

const personColumns = `p.id, p.first_names, p.last_names, p.display_name, p.primary_phone, p.secondary_phone,
        p.national_id_type, p.national_id_number, p.email, p.birth_date, p.bio, p.gender, p.picture_key,
        p.created_at, p.updated_at`

func scanPerson(row pgx.Row) (*domain.Person, error) {
	var (
		person domain.Person
		phone  *string
		natID  *string
	)
	if err := row.Scan(
		&person.ID,
		&person.FirstNames,
		&person.LastNames,
		&person.DisplayName,
		&phone,
		&person.SecondaryPhone,
		&person.NationalIDType,
		&natID,
		&person.Email,
		&person.BirthDate,
		&person.Bio,
		&person.Gender,
		&person.PictureKey,
		&person.CreatedAt,
		&person.UpdatedAt,
	); err != nil {
		return nil, err
	}
	person.PrimaryPhone = derefString(phone)
	person.NationalIDNumber = derefString(natID)
	return &person, nil
}

func (r *personRepository) Create(ctx context.Context, person *domain.Person) error {
	const query = `
        INSERT INTO persons (id, first_names, last_names, display_name, primary_phone, secondary_phone,
            national_id_type, national_id_number, email, birth_date, bio, gender, picture_key)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        RETURNING created_at, updated_at`

	if person.ID == "" {
		person.ID = uuid.NewString()
	}
	err := r.pool.QueryRow(ctx, query,
		person.ID,
		person.FirstNames,
		person.LastNames,
		person.DisplayName,
		nullIfEmpty(person.PrimaryPhone),
		person.SecondaryPhone,
		person.NationalIDType,
		nullIfEmpty(person.NationalIDNumber),
		person.Email,
		person.BirthDate,
		person.Bio,
		person.Gender,
		person.PictureKey,
	).Scan(&person.CreatedAt, &person.UpdatedAt)
	return mapErr("create person", err)
}

func (r *personRepository) Update(ctx context.Context, person *domain.Person) error {
	const query = `
        UPDATE persons SET first_names=$1, last_names=$2, display_name=$3, primary_phone=$4, secondary_phone=$5,
            national_id_type=$6, national_id_number=$7, email=$8, birth_date=$9, bio=$10, gender=$11,
            picture_key=$12, updated_at=NOW()
        WHERE id=$13`

	cmd, err := r.pool.Exec(ctx, query,
		person.FirstNames,
		person.LastNames,
		person.DisplayName,
		nullIfEmpty(person.PrimaryPhone),
		person.SecondaryPhone,
		person.NationalIDType,
		nullIfEmpty(person.NationalIDNumber),
		person.Email,
		person.BirthDate,
		person.Bio,
		person.Gender,
		person.PictureKey,
		person.ID,
	)
	if err != nil {
		return mapErr("update person", err)
	}
	return requireAffected("update person", cmd)
}

func (r *personRepository) GetByID(ctx context.Context, id string) (*domain.Person, error) {
	query := `SELECT ` + personColumns + ` FROM persons p WHERE p.id=$1`
	person, err := scanPerson(r.pool.QueryRow(ctx, query, id))
	return person, mapErr("get person", err)
}

func (r *personRepository) GetByNationalIDNumber(ctx context.Context, number string) (*domain.Person, error) {
	query := `SELECT ` + personColumns + ` FROM persons p WHERE p.national_id_number=$1`
	person, err := scanPerson(r.pool.QueryRow(ctx, query, number))
	return person, mapErr("get person by national id", err)
}

func (r *personRepository) GetByPrimaryPhone(ctx context.Context, phone string) (*domain.Person, error) {
	query := `SELECT ` + personColumns + ` FROM persons p WHERE p.primary_phone=$1`
	person, err := scanPerson(r.pool.QueryRow(ctx, query, phone))
	return person, mapErr("get person by phone", err)
}

func (r *personRepository) GetByUserEmail(ctx context.Context, email string) (*domain.Person, error) {
	query := `SELECT ` + personColumns + ` FROM persons p
        JOIN users u ON u.person_id = p.id
        WHERE lower(u.email)=$1
        LIMIT 1`
	person, err := scanPerson(r.pool.QueryRow(ctx, query, domain.NormalizeEmail(email)))
	return person, mapErr("get person by user email", err)
}

func (r *personRepository) List(ctx context.Context, limit, offset int) ([]domain.Person, error) {
	query := `SELECT ` + personColumns + ` FROM persons p ORDER BY p.created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limitOrDefault(limit), offset)
	if err != nil {
		return nil, mapErr("list persons", err)
	}
	defer rows.Close()

	var persons []domain.Person
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, mapErr("scan person", err)
		}
		persons = append(persons, *person)
	}
	return persons, mapErr("list persons", rows.Err())
}
