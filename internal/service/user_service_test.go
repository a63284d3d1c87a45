package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-expense-tracker/internal/model"
	"go-expense-tracker/pkg/apierror"
)

type fakeUserStore struct {
	users       map[string]model.User
	refreshKept map[string]bool
	takenEmails map[string]bool
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:       map[string]model.User{},
		refreshKept: map[string]bool{},
		takenEmails: map[string]bool{},
	}
}

func (f *fakeUserStore) FindByID(_ context.Context, id string) (model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserStore) UpdateEmail(_ context.Context, userID string, email string) (model.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	if f.takenEmails[email] {
		return model.User{}, model.ErrEmailTaken
	}
	u.Email = email
	f.users[userID] = u
	return u, nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, userID string, passwordHash string) error {
	u, ok := f.users[userID]
	if !ok {
		return model.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	f.users[userID] = u
	f.refreshKept[userID] = false
	return nil
}

func (f *fakeUserStore) Delete(_ context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return model.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func seedUser(t *testing.T, store *fakeUserStore, id string, email string, password string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	store.users[id] = model.User{ID: id, Email: email, PasswordHash: string(hash)}
	store.refreshKept[id] = true
}

func TestUserServiceMe(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	seedUser(t, store, "u1", "alice@example.com", "hunter2hunter2")
	svc := NewUserService(store)

	me, err := svc.Me(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", me.Email)

	_, err = svc.Me(context.Background(), "missing")
	require.Error(t, err)
}

func TestUserServiceUpdateEmail(t *testing.T) {
	t.Parallel()

	t.Run("updates a valid email", func(t *testing.T) {
		store := newFakeUserStore()
		seedUser(t, store, "u1", "alice@example.com", "hunter2hunter2")
		svc := NewUserService(store)

		updated, err := svc.UpdateEmail(context.Background(), "u1", " alice@new.example ")
		require.NoError(t, err)
		require.Equal(t, "alice@new.example", updated.Email)
	})

	t.Run("rejects malformed and taken emails", func(t *testing.T) {
		store := newFakeUserStore()
		seedUser(t, store, "u1", "alice@example.com", "hunter2hunter2")
		store.takenEmails["bob@example.com"] = true
		svc := NewUserService(store)

		_, err := svc.UpdateEmail(context.Background(), "u1", "not-an-email")
		require.Error(t, err)

		_, err = svc.UpdateEmail(context.Background(), "u1", "bob@example.com")
		var apiErr *apierror.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, "BAD_REQUEST", apiErr.Code)
	})
}

func TestUserServiceChangePassword(t *testing.T) {
	t.Parallel()

	t.Run("swaps the hash and kills the session", func(t *testing.T) {
		store := newFakeUserStore()
		seedUser(t, store, "u1", "alice@example.com", "old-password-1")
		svc := NewUserService(store)

		err := svc.ChangePassword(context.Background(), "u1", "old-password-1", "new-password-1")
		require.NoError(t, err)
		require.False(t, store.refreshKept["u1"])

		check := bcrypt.CompareHashAndPassword([]byte(store.users["u1"].PasswordHash), []byte("new-password-1"))
		require.NoError(t, check)
	})

	t.Run("wrong old password is unauthorized", func(t *testing.T) {
		store := newFakeUserStore()
		seedUser(t, store, "u1", "alice@example.com", "old-password-1")
		svc := NewUserService(store)

		err := svc.ChangePassword(context.Background(), "u1", "not-the-password", "new-password-1")
		var apiErr *apierror.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, "UNAUTHORIZED", apiErr.Code)
		require.True(t, store.refreshKept["u1"])
	})

	t.Run("short new password is rejected", func(t *testing.T) {
		store := newFakeUserStore()
		seedUser(t, store, "u1", "alice@example.com", "old-password-1")
		svc := NewUserService(store)

		err := svc.ChangePassword(context.Background(), "u1", "old-password-1", "short")
		require.Error(t, err)
	})
}

func TestUserServiceDelete(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	seedUser(t, store, "u1", "alice@example.com", "hunter2hunter2")
	svc := NewUserService(store)

	require.NoError(t, svc.Delete(context.Background(), "u1"))
	require.Error(t, svc.Delete(context.Background(), "u1"))
}
