package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatflowhq/chatflow/internal/database"
)

func newTestStore(t *testing.T) database.Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "chatflow_test.db")
	db, err := database.NewDB(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })

	return database.NewStore(db, nil)
}

func TestAccountLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateAccount(ctx, "alice", "s3cret"))

	t.Run("duplicate username rejected", func(t *testing.T) {
		err := store.CreateAccount(ctx, "alice", "another")
		assert.ErrorIs(t, err, database.ErrDuplicate)
	})

	t.Run("correct credentials accepted", func(t *testing.T) {
		assert.NoError(t, store.Authenticate(ctx, "alice", "s3cret"))
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		err := store.Authenticate(ctx, "alice", "wrong")
		assert.ErrorIs(t, err, database.ErrInvalidCredentials)
	})

	t.Run("unknown username rejected", func(t *testing.T) {
		err := store.Authenticate(ctx, "nobody", "s3cret")
		assert.ErrorIs(t, err, database.ErrInvalidCredentials)
	})

	t.Run("empty fields rejected", func(t *testing.T) {
		assert.Error(t, store.CreateAccount(ctx, "", "pw"))
		assert.Error(t, store.CreateAccount(ctx, "bob", ""))
	})
}

func TestHashPasswordIsStable(t *testing.T) {
	t.Parallel()

	assert.Equal(t, database.HashPassword("pw"), database.HashPassword("pw"))
	assert.NotEqual(t, database.HashPassword("pw"), database.HashPassword("pw2"))
	assert.Len(t, database.HashPassword("pw"), 64)
}

func TestFeedbackLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := &database.Feedback{Name: "Alice", Email: "alice@example.com", Rating: 5, Comment: "great tool"}
	second := &database.Feedback{Name: "Bob", Email: "bob@example.com", Rating: 3, Comment: "decent"}

	require.NoError(t, store.SaveFeedback(ctx, first))
	require.NoError(t, store.SaveFeedback(ctx, second))
	assert.NotZero(t, first.ID)

	list, err := store.ListFeedback(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// Newest first.
	assert.Equal(t, "Bob", list[0].Name)
	assert.Equal(t, "Alice", list[1].Name)

	t.Run("validation", func(t *testing.T) {
		assert.Error(t, store.SaveFeedback(ctx, nil))
		assert.Error(t, store.SaveFeedback(ctx, &database.Feedback{Name: "x", Email: "y", Rating: 6, Comment: "z"}))
		assert.Error(t, store.SaveFeedback(ctx, &database.Feedback{Rating: 4}))
	})
}

func TestRunMaintenance(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.RunMaintenance(context.Background()))
}

func TestPing(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}
