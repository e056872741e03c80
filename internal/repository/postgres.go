package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"

	"blogapi/internal/config"
	"blogapi/internal/domain"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	username   TEXT NOT NULL,
	name       TEXT NOT NULL DEFAULT '',
	email      TEXT NOT NULL,
	password   TEXT NOT NULL,
	is_admin   BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const userColumns = `id, username, name, email, password, is_admin, created_at`

type userRow struct {
	ID        string    `db:"id"`
	Username  string    `db:"username"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Password  string    `db:"password"`
	IsAdmin   bool      `db:"is_admin"`
	CreatedAt time.Time `db:"created_at"`
}

func (r userRow) toDomain() domain.User {
	return domain.User{
		ID:        r.ID,
		Username:  r.Username,
		Name:      r.Name,
		Email:     r.Email,
		Password:  r.Password,
		IsAdmin:   r.IsAdmin,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// ConnectPostgres opens a pool for cfg and makes sure the users table exists.
func ConnectPostgres(ctx context.Context, cfg *config.PostgresConfig, tp trace.TracerProvider) (*PostgresUserRepository, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)
	return ConnectPostgresDSN(ctx, dsn, cfg.MaxConns, tp)
}

// ConnectPostgresDSN resolves host names through a tracing Resolver backed by tp.
func ConnectPostgresDSN(ctx context.Context, dsn string, maxConns int32, tp trace.TracerProvider) (*PostgresUserRepository, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}
	if maxConns > 0 {
		poolCfg.MaxConns = maxConns
	}
	poolCfg.ConnConfig.LookupFunc = NewResolver(tp).LookupHost

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, createUsersTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate users table: %w", err)
	}

	return NewPostgresUserRepository(pool), nil
}

func (r *PostgresUserRepository) Create(ctx context.Context, u *domain.User) error {
	id := uuid.NewString()
	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, u.Username, u.Name, u.Email, u.Password, u.IsAdmin, createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	u.ID = id
	u.CreatedAt = createdAt
	return nil
}

func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[userRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	u := row.toDomain()
	return &u, nil
}

func (r *PostgresUserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	found, err := pgx.CollectRows(rows, pgx.RowToStructByName[userRow])
	if err != nil {
		return nil, fmt.Errorf("failed to scan users: %w", err)
	}

	users := make([]domain.User, len(found))
	for i, row := range found {
		users[i] = row.toDomain()
	}
	return users, nil
}

func (r *PostgresUserRepository) Update(ctx context.Context, u *domain.User) error {
	if _, err := uuid.Parse(u.ID); err != nil {
		return ErrNotFound
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET username = $2, name = $3, email = $4, password = $5, is_admin = $6 WHERE id = $1`,
		u.ID, u.Username, u.Name, u.Email, u.Password, u.IsAdmin,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepository) Close(context.Context) error {
	r.pool.Close()
	return nil
}
