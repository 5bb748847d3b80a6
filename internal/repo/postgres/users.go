package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/careerloop/internal/domain/user"
	"github.com/geocoder89/careerloop/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, email, hashed_password, full_name, created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	var out user.User

	err := r.prom.ObserveDB("users.create", func() error {
		return scanUser(r.pool.QueryRow(ctx,
			`INSERT INTO users (id, email, hashed_password, full_name, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+userColumns,
			u.ID, u.Email, u.HashedPassword, u.FullName, u.CreatedAt, u.UpdatedAt,
		), &out)
	})

	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, err
	}

	return out, nil
}

// CreateIfAbsent inserts u unless its email is already taken, in which case
// the existing row wins and created is false.
func (r *UsersRepo) CreateIfAbsent(ctx context.Context, u user.User) (user.User, bool, error) {
	var out user.User

	err := r.prom.ObserveDB("users.create_if_absent", func() error {
		return scanUser(r.pool.QueryRow(ctx,
			`INSERT INTO users (id, email, hashed_password, full_name, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (email) DO NOTHING
			RETURNING `+userColumns,
			u.ID, u.Email, u.HashedPassword, u.FullName, u.CreatedAt, u.UpdatedAt,
		), &out)
	})

	if err == nil {
		return out, true, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return user.User{}, false, err
	}

	existing, err := r.GetByEmail(ctx, u.Email)
	if err != nil {
		return user.User{}, false, err
	}
	return existing, false, nil
}

// First returns the oldest user.
func (r *UsersRepo) First(ctx context.Context) (user.User, error) {
	return r.getOne(ctx, "users.first",
		`SELECT `+userColumns+` FROM users ORDER BY created_at ASC, id ASC LIMIT 1`)
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_id",
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_email",
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UsersRepo) getOne(ctx context.Context, op, query string, args ...any) (user.User, error) {
	var u user.User

	err := r.prom.ObserveDB(op, func() error {
		return scanUser(r.pool.QueryRow(ctx, query, args...), &u)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func scanUser(row pgx.Row, u *user.User) error {
	return row.Scan(
		&u.ID,
		&u.Email,
		&u.HashedPassword,
		&u.FullName,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
