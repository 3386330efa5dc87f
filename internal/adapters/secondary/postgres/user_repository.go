package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickdesk/helpdesk-backend/internal/core/domain"
	apperrors "github.com/quickdesk/helpdesk-backend/internal/core/errors"
	"github.com/quickdesk/helpdesk-backend/internal/core/ports"
	"github.com/quickdesk/helpdesk-backend/internal/core/utils"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

type UserRepository struct {
	pool *pgxpool.Pool
}

var _ ports.UserRepository = (*UserRepository)(nil)

func NewUserRepository(pool *pgxpool.Pool) ports.UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, full_name, email, hashed_password, role, is_active, created_at, last_active_at`

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	db := GetDBTX(ctx, r.pool)

	const query = `
INSERT INTO users (id, full_name, email, hashed_password, role, is_active, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + userColumns

	created, err := scanUser(db.QueryRow(ctx, query,
		utils.ToUUID(user.ID),
		user.FullName,
		user.Email,
		user.HashedPassword,
		string(user.Role),
		user.IsActive,
		user.CreatedAt,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, apperrors.ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	db := GetDBTX(ctx, r.pool)

	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(db.QueryRow(ctx, query, utils.ToUUID(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	db := GetDBTX(ctx, r.pool)

	const query = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`

	user, err := scanUser(db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) ListByRole(ctx context.Context, role domain.UserRole) ([]*domain.User, error) {
	db := GetDBTX(ctx, r.pool)

	const query = `
SELECT ` + userColumns + `
FROM users
WHERE role = $1 AND is_active
ORDER BY full_name ASC`

	rows, err := db.Query(ctx, query, string(role))
	if err != nil {
		return nil, fmt.Errorf("failed to list users by role: %w", err)
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read user rows: %w", err)
	}
	return users, nil
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	db := GetDBTX(ctx, r.pool)

	const query = `
SELECT ` + userColumns + `
FROM users
ORDER BY full_name ASC, id ASC`

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read user rows: %w", err)
	}
	return users, nil
}

func (r *UserRepository) SetRole(ctx context.Context, id uuid.UUID, role domain.UserRole) error {
	db := GetDBTX(ctx, r.pool)

	tag, err := db.Exec(ctx,
		`UPDATE users SET role = $2 WHERE id = $1`,
		utils.ToUUID(id), string(role),
	)
	if err != nil {
		return fmt.Errorf("failed to update user role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetActive(ctx context.Context, id uuid.UUID, isActive bool) error {
	db := GetDBTX(ctx, r.pool)

	tag, err := db.Exec(ctx,
		`UPDATE users SET is_active = $2 WHERE id = $1`,
		utils.ToUUID(id), isActive,
	)
	if err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error {
	db := GetDBTX(ctx, r.pool)

	tag, err := db.Exec(ctx,
		`UPDATE users SET hashed_password = $2 WHERE id = $1`,
		utils.ToUUID(id), hashedPassword,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateLastActive(ctx context.Context, id uuid.UUID, at time.Time) error {
	db := GetDBTX(ctx, r.pool)

	tag, err := db.Exec(ctx,
		`UPDATE users SET last_active_at = $2 WHERE id = $1`,
		utils.ToUUID(id), at,
	)
	if err != nil {
		return fmt.Errorf("failed to update last active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u          domain.User
		id         pgtype.UUID
		role       string
		lastActive pgtype.Timestamptz
	)

	err := row.Scan(
		&id,
		&u.FullName,
		&u.Email,
		&u.HashedPassword,
		&role,
		&u.IsActive,
		&u.CreatedAt,
		&lastActive,
	)
	if err != nil {
		return nil, err
	}

	u.ID = uuid.UUID(id.Bytes)
	u.Role = domain.UserRole(role)
	u.LastActiveAt = utils.FromNullTime(lastActive)

	return &u, nil
}
