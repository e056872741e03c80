package repository

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"blogapi/internal/config"
	"blogapi/internal/domain"
)

var ErrNotFound = errors.New("user not found")

// UserRepository is implemented by every storage backend.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id string) error
	Close(ctx context.Context) error
}

// Open connects the backend selected by cfg.Database.Driver.
func Open(ctx context.Context, cfg *config.Config, tp trace.TracerProvider) (UserRepository, error) {
	switch cfg.Database.Driver {
	case config.DriverMongo:
		return ConnectMongo(ctx, &cfg.Mongo, tp)
	case config.DriverPostgres:
		return ConnectPostgres(ctx, &cfg.Postgres, tp)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

var (
	_ UserRepository = (*MongoUserRepository)(nil)
	_ UserRepository = (*PostgresUserRepository)(nil)
)
