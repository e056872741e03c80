package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"blogapi/internal/domain"
	"blogapi/internal/metrics"
	"blogapi/internal/repository"
	"blogapi/internal/service"
	"blogapi/internal/service/mocks"
)

const userID = "507f1f77bcf86cd799439011"

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func newService(repo service.Repository, cache service.Cache, recorder service.OperationRecorder) *service.UserService {
	return service.NewUserService(repo, cache, recorder,
		service.WithBcryptCost(bcrypt.MinCost),
		service.WithClock(func() time.Time { return fixedNow }),
	)
}

func storedUser() *domain.User {
	return &domain.User{
		ID:        userID,
		Username:  "alice",
		Name:      "Alice",
		Email:     "alice@example.com",
		Password:  "$2a$04$hash",
		CreatedAt: fixedNow,
	}
}

// List tests

func TestList_Success(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	repo.EXPECT().FindAll(mock.Anything).Return([]domain.User{*storedUser()}, nil)

	svc := newService(repo, mocks.NewMockCache(t), mocks.NewMockOperationRecorder(t))

	users, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)
}

func TestList_EmptyIsNotNil(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	repo.EXPECT().FindAll(mock.Anything).Return(nil, nil)

	svc := newService(repo, mocks.NewMockCache(t), mocks.NewMockOperationRecorder(t))

	users, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestList_RepoError(t *testing.T) {
	expectedErr := errors.New("db error")

	repo := mocks.NewMockRepository(t)
	repo.EXPECT().FindAll(mock.Anything).Return(nil, expectedErr)

	svc := newService(repo, mocks.NewMockCache(t), mocks.NewMockOperationRecorder(t))

	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, expectedErr)
}

// Get tests

func TestGet_CacheHit(t *testing.T) {
	repo := mocks.NewMockRepository(t)

	cache := mocks.NewMockCache(t)
	cache.EXPECT().Get(userID).Return(*storedUser(), true)

	recorder := mocks.NewMockOperationRecorder(t)
	recorder.EXPECT().RecordUserOperation(metrics.OpCacheHit).Return().Once()

	svc := newService(repo, cache, recorder)

	u, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
}

func TestGet_CacheMiss_DBFound(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	repo.EXPECT().FindByID(mock.Anything, userID).Return(storedUser(), nil)

	cache := mocks.NewMockCache(t)
	cache.EXPECT().Get(userID).Return(domain.User{}, false)
	cache.EXPECT().Set(*storedUser()).Return()

	recorder := mocks.NewMockOperationRecorder(t)
	recorder.EXPECT().RecordUserOperation(metrics.OpCacheMiss).Return().Once()

	svc := newService(repo, cache, recorder)

	u, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, u.ID)
}

func TestGet_WriteDuringLookupSkipsCacheFill(t *testing.T) {
	var svc *service.UserService

	repo := mocks.NewMockRepository(t)
	repo.EXPECT().FindByID(mock.Anything, userID).
		Run(func(ctx context.Context, id string) {
			// The row read here is about to go stale.
			require.NoError(t, svc.Delete(ctx, id))
		}).
		Return(storedUser(), nil)
	repo.EXPECT().Delete(mock.Anything, userID).Return(nil)

	cache := mocks.NewMockCache(t)
	cache.EXPECT().Get(userID).Return(domain.User{}, false)
	cache.EXPECT().Delete(userID).Return()

	recorder := mocks.NewMockOperationRecorder(t)
	recorder.EXPECT().RecordUserOperation(metrics.OpCacheMiss).Return().Once()
	recorder.EXPECT().RecordUserOperation(metrics.OpDeleted).Return().Once()

	svc = newService(repo, cache, recorder)

	u, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, u.ID)
	cache.AssertNotCalled(t, "Set", mock.Anything)
}

func TestGet_FillsCacheAfterEarlierWrite(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	repo.EXPECT().Delete(mock.Anything, "other").Return(nil)
	repo.EXPECT().FindByID(mock.Anything, userID).Return(storedUser(), nil)

	cache := mocks.NewMockCache(t)
	cache.EXPECT().Delete("other").Return()
	cache.EXPECT().Get(userID).Return(domain.User{}, false)
	cache.EXPECT().Set(*storedUser()).Return().Once()

	recorder := mocks.NewMockOperationRecorder(t)
	recorder.EXPECT().RecordUserOperation(mock.Anything).Return()

	svc := newService(repo, cache, recorder)

	require.NoError(t, svc.Delete(context.Background(), "other"))
	_, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)
}

func TestGet_NotFound(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	repo.EXPECT().FindByID(mock.Anything, userID).Return(nil, repository.ErrNotFound)

	cache := mocks.NewMockCache(t)
	cache.EXPECT().Get(userID).Return(domain.User{}, false)

	var recorded []string
	recorder := mocks.NewMockOperationRecorder(t)
	recorder.EXPECT().RecordUserOperation(mock.Anything).
		Run(func(operation string) {
			recorded = append(recorded, operation)
		}).Return().Times(2)

	svc := newService(repo, cache, recorder)

	_, err := svc.Get(context.Background(), userID)
	assert.ErrorIs(t, err, service.ErrUserNotFound)
	assert.Equal(t, []string{metrics.OpCacheMiss, metrics.OpNotFound}, recorded)
}

func TestGet_DBError(t *testing.T) {
	expectedErr := errors.New("db error")

	repo := mocks.NewMockRepository(t)
	repo.EXPECT().FindByID(mock.Anything, userID).Return(nil, expectedErr)

	cache := mocks.NewMockCache(t)
	cache.EXPECT().Get(userID).Return(domain.User{}, false)

	recorder := mocks.NewMockOperationRecorder(t)
	recorder.EXPECT().RecordUserOperation(metrics.OpCacheMiss).Return()

	svc := newService(repo, cache, recorder)

	_, err := svc.Get(context.Background(), userID)
	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.NotErrorIs(t, err, service.ErrUserNotFound)
}

// Create tests

func TestCreate_Success(t *testing.T) {
	req := domain.CreateUserRequest{
		Username: "alice",
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "wonderland",
	}

	repo := mocks.NewMockRepository(t)
	repo.EXPECT().Create(mock.Anything, mock.AnythingOfType("*domain.User")).
		Run(func(_ context.Context, u *domain.User) {
			u.ID = userID
		}).Return(nil)

	recorder := mocks.NewMockOperationRecorder(t)
	recorder.EXPECT().RecordUserOperation(metrics.OpCreated).Return().Once()

	svc := newService(repo, mocks.NewMockCache(t), recorder)

	u, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, userID, u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.False(t, u.IsAdmin)
	assert.Equal(t, fixedNow, u.CreatedAt)
	assert.NotEqual(t, req.Password, u.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)))
}

func TestCreate_RepoError(t *testing.T) {
	expectedErr := errors.New("insert error")

	repo := mocks.NewMockRepository(t)
	repo.EXPECT().Create(mock.Anything, mock.Anything).Return(expectedErr)

	svc := newService(repo, mocks.NewMockCache(t), mocks.NewMockOperationRecorder(t))

	_, err := svc.Create(context.Background(), domain.CreateUserRequest{Username: "alice", Password: "wonderland"})
	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
}

func TestCreate_PasswordTooLongForBcrypt(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	svc := newService(repo, mocks.NewMockCache(t), mocks.NewMockOperationRecorder(t))

	long := make([]byte, 80)
	for i := range long {
		long[i] = 'p'
	}

	_, err := svc.Create(context.Background(), domain.CreateUserRequest{Username: "alice", Password: string(long)})
	assert.ErrorIs(t, err, bcrypt.ErrPasswordTooLong)
}

// Update tests

func TestUpdate_PartialFields(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	repo.EXPECT().FindByID(mock.Anything, userID).Return(storedUser(), nil)
	repo.EXPECT().Update(mock.Anything, mock.Anything).
		Run(func(_ context.Context, u *domain.User) {
			assert.Equal(t, "alice", u.Username)
			assert.Equal(t, "new@example.com", u.Email)
			assert.True(t, u.IsAdmin)
		}).Return(nil)

	cache := mocks.NewMockCache(t)
	cache.EXPECT().Delete(userID).Return().Once()

	recorder := mocks.NewMockOperationRecorder(t)
	recorder.EXPECT().RecordUserOperation(metrics.OpUpdated).Return().Once()

	svc := newService(repo, cache, recorder)

	u, err := svc.Update(context.Background(), userID, domain.UpdateUserRequest{
		Email:   ptr("new@example.com"),
		IsAdmin: ptr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", u.Email)
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, "$2a$04$hash", u.Password)
}

func TestUpdate_RehashesPassword(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	repo.EXPECT().FindByID(mock.Anything, userID).Return(storedUser(), nil)
	repo.EXPECT().Update(mock.Anything, mock.Anything).Return(nil)

	cache := mocks.NewMockCache(t)
	cache.EXPECT().Delete(userID).Return()

	recorder := mocks.NewMockOperationRecorder(t)
	recorder.EXPECT().RecordUserOperation(metrics.OpUpdated).Return()

	svc := newService(repo, cache, recorder)

	u, err := svc.Update(context.Background(), userID, domain.UpdateUserRequest{Password: ptr("looking-glass")})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("looking-glass")))
}

func TestUpdate_NotFound(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	repo.EXPECT().FindByID(mock.Anything, userID).Return(nil, repository.ErrNotFound)

	recorder := mocks.NewMockOperationRecorder(t)
	recorder.EXPECT().RecordUserOperation(metrics.OpNotFound).Return()

	svc := newService(repo, mocks.NewMockCache(t), recorder)

	_, err := svc.Update(context.Background(), userID, domain.UpdateUserRequest{Name: ptr("Bob")})
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestUpdate_RemovedConcurrently(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	repo.EXPECT().FindByID(mock.Anything, userID).Return(storedUser(), nil)
	repo.EXPECT().Update(mock.Anything, mock.Anything).Return(repository.ErrNotFound)

	recorder := mocks.NewMockOperationRecorder(t)
	recorder.EXPECT().RecordUserOperation(metrics.OpNotFound).Return()

	svc := newService(repo, mocks.NewMockCache(t), recorder)

	_, err := svc.Update(context.Background(), userID, domain.UpdateUserRequest{Name: ptr("Bob")})
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

// Delete tests

func TestDelete_Success(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	repo.EXPECT().Delete(mock.Anything, userID).Return(nil)

	cache := mocks.NewMockCache(t)
	cache.EXPECT().Delete(userID).Return().Once()

	recorder := mocks.NewMockOperationRecorder(t)
	recorder.EXPECT().RecordUserOperation(metrics.OpDeleted).Return().Once()

	svc := newService(repo, cache, recorder)

	assert.NoError(t, svc.Delete(context.Background(), userID))
}

func TestDelete_NotFound(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	repo.EXPECT().Delete(mock.Anything, userID).Return(repository.ErrNotFound)

	recorder := mocks.NewMockOperationRecorder(t)
	recorder.EXPECT().RecordUserOperation(metrics.OpNotFound).Return()

	svc := newService(repo, mocks.NewMockCache(t), recorder)

	assert.ErrorIs(t, svc.Delete(context.Background(), userID), service.ErrUserNotFound)
}

func TestDelete_DBError(t *testing.T) {
	expectedErr := errors.New("db error")

	repo := mocks.NewMockRepository(t)
	repo.EXPECT().Delete(mock.Anything, userID).Return(expectedErr)

	svc := newService(repo, mocks.NewMockCache(t), mocks.NewMockOperationRecorder(t))

	err := svc.Delete(context.Background(), userID)
	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
}
