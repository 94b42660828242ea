package session_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/Mohanapavani03/agriconnect/pkg/directory"
	"github.com/Mohanapavani03/agriconnect/pkg/model"
	"github.com/Mohanapavani03/agriconnect/pkg/session"
	"github.com/Mohanapavani03/agriconnect/pkg/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestStore(t *testing.T) (*session.Store, storage.SessionStore) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "session.db")
	persist, err := storage.NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { persist.Close() })

	verifier := session.NewDemoVerifier(directory.Demo(), "")
	return session.NewStore(verifier, persist, testLogger()), persist
}

func TestLogin_Success(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	farmer, err := store.Login(ctx, "+919876543210", "123456")
	require.NoError(t, err)
	require.NotNil(t, farmer)

	assert.Equal(t, "Ramesh Kumar", farmer.Name.En)
	assert.Equal(t, "Krishna", farmer.District.En)
	assert.True(t, farmer.Authenticated)

	current := store.Current()
	require.NotNil(t, current)
	assert.Equal(t, farmer, current)
}

func TestLogin_WrongCode(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	farmer, err := store.Login(ctx, "+919876543210", "000000")
	assert.ErrorIs(t, err, session.ErrInvalidCode)
	assert.Nil(t, farmer)
	assert.Nil(t, store.Current())
}

func TestLogin_UnknownPhone(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Login(context.Background(), "+910000000000", "123456")
	assert.ErrorIs(t, err, session.ErrUnknownPhone)
	assert.Nil(t, store.Current())
}

func TestLogin_FailureLeavesExistingSessionUntouched(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Login(ctx, "+919876543210", "123456")
	require.NoError(t, err)

	_, err = store.Login(ctx, "+919876543211", "000000")
	require.Error(t, err)

	current := store.Current()
	require.NotNil(t, current)
	assert.Equal(t, "Ramesh Kumar", current.Name.En)
}

// failingPersist rejects every write, for exercising the no-partial-state rule.
type failingPersist struct{}

func (failingPersist) SaveSession(context.Context, *model.Farmer) error {
	return errors.New("disk full")
}
func (failingPersist) LoadSession(context.Context) (*model.Farmer, error) { return nil, nil }
func (failingPersist) ClearSession(context.Context) error                 { return nil }
func (failingPersist) Close() error                                       { return nil }

func TestLogin_PersistFailureLeavesStoreLoggedOut(t *testing.T) {
	verifier := session.NewDemoVerifier(directory.Demo(), "")
	store := session.NewStore(verifier, failingPersist{}, testLogger())

	_, err := store.Login(context.Background(), "+919876543210", "123456")
	assert.Error(t, err)
	assert.Nil(t, store.Current())
}

func TestLogout_Idempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Login(ctx, "+919876543210", "123456")
	require.NoError(t, err)

	require.NoError(t, store.Logout(ctx))
	assert.Nil(t, store.Current())

	// A second logout is a no-op, not an error.
	require.NoError(t, store.Logout(ctx))
	assert.Nil(t, store.Current())
}

func TestRestore_RoundTripAfterLogin(t *testing.T) {
	store, persist := newTestStore(t)
	ctx := context.Background()

	loggedIn, err := store.Login(ctx, "+919876543210", "123456")
	require.NoError(t, err)

	// Simulate a restart: a fresh store over the same persistence.
	verifier := session.NewDemoVerifier(directory.Demo(), "")
	restarted := session.NewStore(verifier, persist, testLogger())
	restarted.Restore(ctx)

	restored := restarted.Current()
	require.NotNil(t, restored)
	assert.Equal(t, loggedIn, restored)
	assert.True(t, restored.Authenticated)
}

func TestRestore_EmptyStorageStaysLoggedOut(t *testing.T) {
	store, _ := newTestStore(t)
	store.Restore(context.Background())
	assert.Nil(t, store.Current())
}

func TestUpdateProfile_ShallowMerge(t *testing.T) {
	store, persist := newTestStore(t)
	ctx := context.Background()

	_, err := store.Login(ctx, "+919876543210", "123456")
	require.NoError(t, err)

	lang := model.LangTelugu
	require.NoError(t, store.UpdateProfile(ctx, session.ProfileUpdate{Language: &lang}))

	current := store.Current()
	require.NotNil(t, current)
	assert.Equal(t, model.LangTelugu, current.Language)
	// Untouched fields keep their values, the flag included.
	assert.Equal(t, "Ramesh Kumar", current.Name.En)
	assert.True(t, current.Authenticated)

	// The merged profile is re-persisted.
	saved, err := persist.LoadSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, model.LangTelugu, saved.Language)
}

func TestUpdateProfile_NoCurrentProfileIsNoOp(t *testing.T) {
	store, persist := newTestStore(t)
	ctx := context.Background()

	lang := model.LangTelugu
	require.NoError(t, store.UpdateProfile(ctx, session.ProfileUpdate{Language: &lang}))
	assert.Nil(t, store.Current())

	saved, err := persist.LoadSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, saved)
}

func TestCurrent_ReturnsCopy(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Login(ctx, "+919876543210", "123456")
	require.NoError(t, err)

	first := store.Current()
	require.NotNil(t, first)
	first.Fields[0].NDVI = 0.01

	second := store.Current()
	require.NotNil(t, second)
	assert.Equal(t, 0.75, second.Fields[0].NDVI)
}
