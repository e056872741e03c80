package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"blogapi/internal/domain"
	"blogapi/internal/metrics"
	"blogapi/internal/repository"
)

var ErrUserNotFound = errors.New("user not found")

type UserService struct {
	repo       Repository
	cache      Cache
	recorder   OperationRecorder
	bcryptCost int
	now        func() time.Time

	// writes counts completed updates and deletes. A cache fill started
	// before a write must not land after that write's invalidation.
	mu     sync.Mutex
	writes uint64
}

type Option func(*UserService)

// WithBcryptCost overrides bcrypt.DefaultCost; tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *UserService) { s.bcryptCost = cost }
}

func WithClock(now func() time.Time) Option {
	return func(s *UserService) { s.now = now }
}

func NewUserService(repo Repository, cache Cache, recorder OperationRecorder, opts ...Option) *UserService {
	s := &UserService{
		repo:       repo,
		cache:      cache,
		recorder:   recorder,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := s.cache.Get(id); ok {
		s.recorder.RecordUserOperation(metrics.OpCacheHit)
		return &u, nil
	}
	s.recorder.RecordUserOperation(metrics.OpCacheMiss)

	gen := s.generation()
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapNotFound(err, "failed to find user")
	}

	s.fill(gen, *u)
	return u, nil
}

func (s *UserService) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// fill caches u unless a write finished since gen was read.
func (s *UserService) fill(gen uint64, u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writes == gen {
		s.cache.Set(u)
	}
}

func (s *UserService) invalidate(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	s.cache.Delete(id)
}

func (s *UserService) Create(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &domain.User{
		Username:  req.Username,
		Name:      req.Name,
		Email:     req.Email,
		Password:  string(hash),
		IsAdmin:   req.IsAdmin,
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.recorder.RecordUserOperation(metrics.OpCreated)
	return u, nil
}

// Update applies the non-nil fields of req to the stored user.
func (s *UserService) Update(ctx context.Context, id string, req domain.UpdateUserRequest) (*domain.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapNotFound(err, "failed to find user")
	}

	if req.Username != nil {
		u.Username = *req.Username
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.IsAdmin != nil {
		u.IsAdmin = *req.IsAdmin
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		u.Password = string(hash)
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, s.mapNotFound(err, "failed to update user")
	}

	s.invalidate(id)
	s.recorder.RecordUserOperation(metrics.OpUpdated)
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapNotFound(err, "failed to delete user")
	}

	s.invalidate(id)
	s.recorder.RecordUserOperation(metrics.OpDeleted)
	return nil
}

func (s *UserService) mapNotFound(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		s.recorder.RecordUserOperation(metrics.OpNotFound)
		return ErrUserNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}
