package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hirelane/recruitment-service/internal/domain"
)

// GroupRepository manages permission groups.
type GroupRepository interface {
	Create(ctx context.Context, group *domain.Group) error
	Update(ctx context.Context, group *domain.Group) error
	GetByID(ctx context.Context, id string) (*domain.Group, error)
	GetByName(ctx context.Context, name string) (*domain.Group, error)
	List(ctx context.Context) ([]domain.Group, error)
	// Ensure creates the group when missing, otherwise syncs its flags and permissions. ID is filled in.
	Ensure(ctx context.Context, group *domain.Group) error
}

type groupRepository struct {
	pool *pgxpool.Pool
}

// NewGroupRepository constructs repository.
func NewGroupRepository(pool *pgxpool.Pool) GroupRepository {
	return &groupRepository{pool: pool}
}

const groupColumns = `g.id, g.name, g.is_supervisor, g.is_admin,
        COALESCE((SELECT array_agg(gp.permission ORDER BY gp.permission) FROM group_permissions gp WHERE gp.group_id = g.id), '{}')`

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func scanGroup(row pgx.Row) (*domain.Group, error) {
	var (
		group domain.Group
		perms []string
	)
	if err := row.Scan(&group.ID, &group.Name, &group.IsSupervisor, &group.IsAdmin, &perms); err != nil {
		return nil, err
	}
	for _, p := range perms {
		group.Permissions = append(group.Permissions, domain.Permission(p))
	}
	return &group, nil
}

func queryGroups(ctx context.Context, q queryer, op, query string, args ...any) ([]domain.Group, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer rows.Close()

	var groups []domain.Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, mapErr(op, err)
		}
		groups = append(groups, *group)
	}
	return groups, mapErr(op, rows.Err())
}

func writePermissions(ctx context.Context, tx pgx.Tx, groupID string, perms []domain.Permission) error {
	if _, err := tx.Exec(ctx, `DELETE FROM group_permissions WHERE group_id=$1`, groupID); err != nil {
		return err
	}
	for _, p := range perms {
		if _, err := tx.Exec(ctx,
			`INSERT INTO group_permissions (group_id, permission) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			groupID, string(p),
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *groupRepository) Create(ctx context.Context, group *domain.Group) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO groups (id, name, is_supervisor, is_admin) VALUES ($1, $2, $3, $4)`,
			group.ID, group.Name, group.IsSupervisor, group.IsAdmin,
		); err != nil {
			return err
		}
		return writePermissions(ctx, tx, group.ID, group.Permissions)
	})
	return mapErr("create group", err)
}

func (r *groupRepository) Update(ctx context.Context, group *domain.Group) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx,
			`UPDATE groups SET name=$1, is_supervisor=$2, is_admin=$3, updated_at=NOW() WHERE id=$4`,
			group.Name, group.IsSupervisor, group.IsAdmin, group.ID,
		)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return writePermissions(ctx, tx, group.ID, group.Permissions)
	})
	return mapErr("update group", err)
}

func (r *groupRepository) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups g WHERE g.id=$1`
	group, err := scanGroup(r.pool.QueryRow(ctx, query, id))
	return group, mapErr("get group", err)
}

func (r *groupRepository) GetByName(ctx context.Context, name string) (*domain.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups g WHERE g.name=$1`
	group, err := scanGroup(r.pool.QueryRow(ctx, query, name))
	return group, mapErr("get group by name", err)
}

func (r *groupRepository) List(ctx context.Context) ([]domain.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups g ORDER BY g.name`
	return queryGroups(ctx, r.pool, "list groups", query)
}

func (r *groupRepository) Ensure(ctx context.Context, group *domain.Group) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const upsert = `
            INSERT INTO groups (id, name, is_supervisor, is_admin) VALUES ($1, $2, $3, $4)
            ON CONFLICT (name) DO UPDATE SET is_supervisor=EXCLUDED.is_supervisor, is_admin=EXCLUDED.is_admin, updated_at=NOW()
            RETURNING id`
		if err := tx.QueryRow(ctx, upsert, group.ID, group.Name, group.IsSupervisor, group.IsAdmin).Scan(&group.ID); err != nil {
			return err
		}
		return writePermissions(ctx, tx, group.ID, group.Permissions)
	})
	return mapErr("ensure group", err)
}
