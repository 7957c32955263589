package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vagabot/vagabot/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func record(prefix string) model.Record {
	values := make([]string, len(model.JobFields))
	for i := range values {
		values[i] = fmt.Sprintf("%s-%d", prefix, i)
	}
	return model.NewRecord(values)
}

// eachStore runs fn against every JobStore implementation. Supabase talks to
// an in-process PostgREST fake.
func eachStore(t *testing.T, fn func(t *testing.T, s model.JobStore)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, newTestSQLiteStore(t)) })
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryStore()) })
	t.Run("supabase", func(t *testing.T) {
		s, _ := newTestSupabaseStore(t)
		fn(t, s)
	})
}

func TestStore_CreatedFlag(t *testing.T) {
	eachStore(t, func(t *testing.T, s model.JobStore) {
		ctx := context.Background()

		created, err := s.Created(ctx)
		require.NoError(t, err)
		assert.False(t, created, "a fresh store is not seeded")

		require.NoError(t, s.MarkCreated(ctx))
		require.NoError(t, s.MarkCreated(ctx), "marking twice is a no-op")

		created, err = s.Created(ctx)
		require.NoError(t, err)
		assert.True(t, created)
	})
}

func TestStore_InsertThenFragmentSearch(t *testing.T) {
	eachStore(t, func(t *testing.T, s model.JobStore) {
		ctx := context.Background()
		a, b := record("a"), record("b")
		require.NoError(t, s.Insert(ctx, a))
		require.NoError(t, s.Insert(ctx, b))

		found, err := s.Search(ctx, model.FragmentOf(a))
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, a, found[0])

		found, err = s.Search(ctx, model.Fragment{"company": "b-1"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "b-0", found[0].Title())

		found, err = s.Search(ctx, model.Fragment{"company": "nobody"})
		require.NoError(t, err)
		assert.Empty(t, found)

		all, err := s.Search(ctx, model.Fragment{})
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}

func TestStore_UnknownKeyMatchesNothing(t *testing.T) {
	eachStore(t, func(t *testing.T, s model.JobStore) {
		ctx := context.Background()
		require.NoError(t, s.Insert(ctx, record("a")))

		found, err := s.Search(ctx, model.Fragment{"email": "x"})
		require.NoError(t, err)
		assert.Empty(t, found)
	})
}

func TestStore_InsertDuplicatesAllowed(t *testing.T) {
	eachStore(t, func(t *testing.T, s model.JobStore) {
		ctx := context.Background()
		a := record("a")
		require.NoError(t, s.Insert(ctx, a))
		require.NoError(t, s.Insert(ctx, a))

		found, err := s.Search(ctx, model.FragmentOf(a))
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})
}

func TestStore_Update(t *testing.T) {
	eachStore(t, func(t *testing.T, s model.JobStore) {
		ctx := context.Background()
		a := record("a")
		require.NoError(t, s.Insert(ctx, a))
		require.NoError(t, s.Insert(ctx, record("b")))

		changed := record("a")
		changed["salary"] = "R$ 1.500,00"

		n, err := s.Update(ctx, model.Fragment{"title": "a-0"}, changed)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		found, err := s.Search(ctx, model.Fragment{"title": "a-0"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "R$ 1.500,00", found[0]["salary"])

		_, err = s.Update(ctx, model.Fragment{}, changed)
		assert.ErrorIs(t, err, ErrEmptyFragment)
	})
}

func TestStore_Remove(t *testing.T) {
	eachStore(t, func(t *testing.T, s model.JobStore) {
		ctx := context.Background()
		require.NoError(t, s.Insert(ctx, record("a")))
		require.NoError(t, s.Insert(ctx, record("b")))

		n, err := s.Remove(ctx, model.Fragment{"title": "a-0"})
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		all, err := s.Search(ctx, model.Fragment{})
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "b-0", all[0].Title())

		_, err = s.Remove(ctx, model.Fragment{})
		assert.ErrorIs(t, err, ErrEmptyFragment)
	})
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "persist.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Insert(ctx, record("a")))
	require.NoError(t, s.MarkCreated(ctx))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s.Close()

	created, err := s.Created(ctx)
	require.NoError(t, err)
	assert.True(t, created)

	found, err := s.Search(ctx, model.FragmentOf(record("a")))
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestNewSQLiteStore_InvalidPath(t *testing.T) {
	_, err := NewSQLiteStore("/invalid/path/that/does/not/exist/test.db")
	assert.Error(t, err)
}

func TestNewSupabaseStore_RequiresCredentials(t *testing.T) {
	_, err := NewSupabaseStore("", "")
	assert.Error(t, err)
}
