package session

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opensource-finance/kestrel/internal/domain"
)

// fakeRepo implements only the session slice of domain.Repository.
type fakeRepo struct {
	domain.Repository
	session *domain.Session
}

func (f *fakeRepo) SaveSession(ctx context.Context, s *domain.Session) error {
	copied := *s
	f.session = &copied
	return nil
}

func (f *fakeRepo) GetSession(ctx context.Context) (*domain.Session, error) {
	if f.session == nil {
		return nil, nil
	}
	copied := *f.session
	return &copied, nil
}

func (f *fakeRepo) ClearSession(ctx context.Context) error {
	f.session = nil
	return nil
}

func newTestStore() (*Store, *fakeRepo) {
	repo := &fakeRepo{}
	return NewStore(repo, slog.New(slog.NewTextHandler(io.Discard, nil))), repo
}

func TestStoreStartsSignedOut(t *testing.T) {
	store, _ := newTestStore()
	require.NoError(t, store.Load(context.Background()))
	assert.Nil(t, store.Current())
}

func TestSignInReplacesWholesale(t *testing.T) {
	store, repo := newTestStore()
	ctx := context.Background()

	first, err := store.SignIn(ctx, "Asha Patel", "asha@example.com", "admin")
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", first.Email)
	assert.False(t, first.SignedInAt.IsZero())

	second, err := store.SignIn(ctx, "Ravi Kumar", "ravi@example.com", "customer")
	require.NoError(t, err)
	assert.NotEqual(t, first.UserID, second.UserID)

	current := store.Current()
	require.NotNil(t, current)
	assert.Equal(t, "ravi@example.com", current.Email)
	assert.Equal(t, "ravi@example.com", repo.session.Email)
}

func TestSignOutClears(t *testing.T) {
	store, repo := newTestStore()
	ctx := context.Background()

	_, err := store.SignIn(ctx, "Asha Patel", "asha@example.com", "admin")
	require.NoError(t, err)

	require.NoError(t, store.SignOut(ctx))
	assert.Nil(t, store.Current())
	assert.Nil(t, repo.session)
}

func TestLoadRestoresPersistedSession(t *testing.T) {
	store, repo := newTestStore()
	ctx := context.Background()

	_, err := store.SignIn(ctx, "Asha Patel", "asha@example.com", "admin")
	require.NoError(t, err)

	// A fresh store over the same repository sees the session.
	restored := NewStore(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, restored.Load(ctx))

	current := restored.Current()
	require.NotNil(t, current)
	assert.Equal(t, "asha@example.com", current.Email)
}

func TestCurrentReturnsCopy(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	_, err := store.SignIn(ctx, "Asha Patel", "asha@example.com", "admin")
	require.NoError(t, err)

	snap := store.Current()
	snap.Email = "tampered@example.com"

	assert.Equal(t, "asha@example.com", store.Current().Email)
}
