package handler

//go:generate go tool mockery

import (
	"context"

	"blogapi/internal/domain"
)

type UserService interface {
	List(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)
	Update(ctx context.Context, id string, req domain.UpdateUserRequest) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

type UserValidator interface {
	ValidateCreate(req domain.CreateUserRequest) error
	ValidateUpdate(req domain.UpdateUserRequest) error
}
