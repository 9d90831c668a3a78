package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hirelane/recruitment-service/internal/domain"
)

// UserFilter narrows user listings.
type UserFilter struct {
	Query  string
	Limit  int
	Offset int
}

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	MarkVerified(ctx context.Context, id string) error
	SetPassword(ctx context.Context, id, hash string) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	LinkPerson(ctx context.Context, userID, personID string) error
	SetGroups(ctx context.Context, userID string, groupIDs []string) error
	GroupsForUser(ctx context.Context, userID string) ([]domain.Group, error)
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	UpsertProfile(ctx context.Context, profile *domain.Profile) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, username, email, first_names, last_names, birth_date, password_hash,
        is_active, is_verified, accepted_tos, employee_status, person_id, last_login_at, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FirstNames,
		&user.LastNames,
		&user.BirthDate,
		&user.PasswordHash,
		&user.IsActive,
		&user.IsVerified,
		&user.AcceptedTOS,
		&user.EmployeeStatus,
		&user.PersonID,
		&user.LastLoginAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (id, username, email, first_names, last_names, birth_date, password_hash,
            is_active, is_verified, accepted_tos, employee_status, person_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING created_at, updated_at`

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.EmployeeStatus == "" {
		user.EmployeeStatus = domain.EmployeeStatusNeverEmployed
	}
	err := r.pool.QueryRow(ctx, query,
		user.ID,
		user.Username,
		domain.NormalizeEmail(user.Email),
		user.FirstNames,
		user.LastNames,
		user.BirthDate,
		user.PasswordHash,
		user.IsActive,
		user.IsVerified,
		user.AcceptedTOS,
		user.EmployeeStatus,
		user.PersonID,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	return mapErr("create user", err)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET username=$1, email=$2, first_names=$3, last_names=$4, birth_date=$5,
            is_active=$6, is_verified=$7, accepted_tos=$8, employee_status=$9, person_id=$10, updated_at=NOW()
        WHERE id=$11`

	cmd, err := r.pool.Exec(ctx, query,
		user.Username,
		domain.NormalizeEmail(user.Email),
		user.FirstNames,
		user.LastNames,
		user.BirthDate,
		user.IsActive,
		user.IsVerified,
		user.AcceptedTOS,
		user.EmployeeStatus,
		user.PersonID,
		user.ID,
	)
	if err != nil {
		return mapErr("update user", err)
	}
	return requireAffected("update user", cmd)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	return user, mapErr("get user", err)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email)=$1`
	user, err := scanUser(r.pool.QueryRow(ctx, query, domain.NormalizeEmail(email)))
	return user, mapErr("get user by email", err)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username=$1`
	user, err := scanUser(r.pool.QueryRow(ctx, query, username))
	return user, mapErr("get user by username", err)
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
        WHERE $1 = '' OR username ILIKE $1 OR email ILIKE $1 OR first_names ILIKE $1 OR last_names ILIKE $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`

	pattern := ""
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern = "%" + q + "%"
	}
	rows, err := r.pool.Query(ctx, query, pattern, limitOrDefault(filter.Limit), filter.Offset)
	if err != nil {
		return nil, mapErr("list users", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, mapErr("scan user", err)
		}
		users = append(users, *user)
	}
	return users, mapErr("list users", rows.Err())
}

func (r *userRepository) MarkVerified(ctx context.Context, id string) error {
	const query = `
        UPDATE users SET is_verified=TRUE, is_active=TRUE, updated_at=NOW()
        WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return mapErr("mark verified", err)
	}
	return requireAffected("mark verified", cmd)
}

func (r *userRepository) SetPassword(ctx context.Context, id, hash string) error {
	const query = `UPDATE users SET password_hash=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, hash, id)
	if err != nil {
		return mapErr("set password", err)
	}
	return requireAffected("set password", cmd)
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE users SET last_login_at=$1 WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, at, id)
	if err != nil {
		return mapErr("touch last login", err)
	}
	return requireAffected("touch last login", cmd)
}

func (r *userRepository) LinkPerson(ctx context.Context, userID, personID string) error {
	const query = `UPDATE users SET person_id=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, personID, userID)
	if err != nil {
		return mapErr("link person", err)
	}
	return requireAffected("link person", cmd)
}

func (r *userRepository) SetGroups(ctx context.Context, userID string, groupIDs []string) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM user_groups WHERE user_id=$1`, userID); err != nil {
			return err
		}
		for _, groupID := range groupIDs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO user_groups (user_id, group_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				userID, groupID,
			); err != nil {
				return err
			}
		}
		return nil
	})
	return mapErr("set groups", err)
}

func (r *userRepository) GroupsForUser(ctx context.Context, userID string) ([]domain.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups g
        JOIN user_groups ug ON ug.group_id = g.id
        WHERE ug.user_id=$1
        ORDER BY g.name`
	return queryGroups(ctx, r.pool, "groups for user", query, userID)
}

func (r *userRepository) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	const query = `SELECT user_id, gender, bio, picture_key, updated_at FROM profiles WHERE user_id=$1`
	var profile domain.Profile
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.Gender,
		&profile.Bio,
		&profile.PictureKey,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, mapErr("get profile", err)
	}
	return &profile, nil
}

func (r *userRepository) UpsertProfile(ctx context.Context, profile *domain.Profile) error {
	const query = `
        INSERT INTO profiles (user_id, gender, bio, picture_key)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (user_id) DO UPDATE SET gender=EXCLUDED.gender, bio=EXCLUDED.bio,
            picture_key=EXCLUDED.picture_key, updated_at=NOW()
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query, profile.UserID, profile.Gender, profile.Bio, profile.PictureKey).Scan(&profile.UpdatedAt)
	return mapErr("upsert profile", err)
}

func limitOrDefault(limit int) int {
	if limit <= 0 || limit > 200 {
		return 50
	}
	return limit
}
