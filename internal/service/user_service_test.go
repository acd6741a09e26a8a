package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/pkg/crypto"
)

func newUserService() (*UserService, *mockUserRepository) {
	users := new(mockUserRepository)
	return NewUserService(users, zerolog.Nop()), users
}

func TestUserService_Register(t *testing.T) {
	t.Run("registers with a normalized handle", func(t *testing.T) {
		svc, users := newUserService()

		users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.Handle == "alice_42" && u.PasswordHash != "" && u.PasswordHash != "hunter2hunter2"
		})).Return(nil)

		user, err := svc.Register(context.Background(), RegisterInput{
			Handle:      "  Alice_42  ",
			DisplayName: "Alice",
			Email:       "alice@example.com",
			Password:    "hunter2hunter2",
		})

		require.NoError(t, err)
		assert.Equal(t, "alice_42", user.Handle)
		users.AssertExpectations(t)
	})

	t.Run("rejects malformed handles", func(t *testing.T) {
		svc, users := newUserService()

		_, err := svc.Register(context.Background(), RegisterInput{
			Handle: "ab", Password: "hunter2hunter2",
		})

		require.ErrorIs(t, err, domain.ErrInvalidHandle)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects short passwords", func(t *testing.T) {
		svc, _ := newUserService()

		_, err := svc.Register(context.Background(), RegisterInput{
			Handle: "alice_42", Password: "short",
		})

		require.ErrorIs(t, err, crypto.ErrPasswordTooShort)
	})

	t.Run("rejects taken handles", func(t *testing.T) {
		svc, users := newUserService()

		users.On("Create", mock.Anything, mock.Anything).Return(domain.ErrUserAlreadyExists)

		_, err := svc.Register(context.Background(), RegisterInput{
			Handle: "alice_42", Password: "hunter2hunter2",
		})

		require.ErrorIs(t, err, domain.ErrUserAlreadyExists)
	})
}

func TestUserService_Authenticate(t *testing.T) {
	hash, err := crypto.HashPassword("hunter2hunter2")
	require.NoError(t, err)
	account := &domain.User{ID: uuid.New(), Handle: "alice_42", PasswordHash: hash}

	t.Run("matching pair returns the account", func(t *testing.T) {
		svc, users := newUserService()
		users.On("GetByHandle", mock.Anything, "alice_42").Return(account, nil)

		user, err := svc.Authenticate(context.Background(), " Alice_42 ", "hunter2hunter2")
		require.NoError(t, err)
		assert.Equal(t, account.ID, user.ID)
	})

	t.Run("wrong password and missing handle are indistinguishable", func(t *testing.T) {
		svc, users := newUserService()
		users.On("GetByHandle", mock.Anything, "alice_42").Return(account, nil)
		users.On("GetByHandle", mock.Anything, "nobody").Return(nil, domain.ErrUserNotFound)

		_, err := svc.Authenticate(context.Background(), "alice_42", "wrong-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = svc.Authenticate(context.Background(), "nobody", "hunter2hunter2")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	svc, users := newUserService()
	userID := uuid.New()

	users.On("GetByID", mock.Anything, userID).Return(&domain.User{
		ID: userID, Handle: "alice_42", DisplayName: "Alice", Bio: "old bio",
	}, nil)
	users.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.DisplayName == "Alice A." && u.Bio == "old bio"
	})).Return(nil)

	name := " Alice A. "
	user, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{
		UserID:      userID,
		DisplayName: &name,
	})

	require.NoError(t, err)
	assert.Equal(t, "Alice A.", user.DisplayName)
	assert.Equal(t, "old bio", user.Bio, "unset fields stay unchanged")
}

func TestUserService_Search(t *testing.T) {
	t.Run("blank query short-circuits", func(t *testing.T) {
		svc, users := newUserService()

		results, err := svc.Search(context.Background(), "   ", ListInput{})
		require.NoError(t, err)
		assert.Empty(t, results)
		users.AssertNotCalled(t, "SearchByHandle", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("delegates trimmed queries", func(t *testing.T) {
		svc, users := newUserService()
		users.On("SearchByHandle", mock.Anything, "ali", mock.Anything).Return([]*domain.User{
			{ID: uuid.New(), Handle: "alice_42"},
		}, nil)

		results, err := svc.Search(context.Background(), " ali ", ListInput{Limit: 10})
		require.NoError(t, err)
		require.Len(t, results, 1)
	})
}

func TestUserService_Delete(t *testing.T) {
	svc, users := newUserService()
	userID := uuid.New()

	users.On("SoftDelete", mock.Anything, userID).Return(nil)
	require.NoError(t, svc.Delete(context.Background(), userID))

	users.On("SoftDelete", mock.Anything, mock.Anything).Return(domain.ErrUserNotFound)
	require.ErrorIs(t, svc.Delete(context.Background(), uuid.New()), domain.ErrUserNotFound)
}
