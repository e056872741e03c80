package service

//go:generate go tool mockery

import (
	"context"

	"blogapi/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id string) error
}

type Cache interface {
	Get(id string) (domain.User, bool)
	Set(u domain.User)
	Delete(id string)
}

type OperationRecorder interface {
	RecordUserOperation(operation string)
}
