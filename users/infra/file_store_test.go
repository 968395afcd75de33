package infra

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"middleware-users/users/domain"
)

func newStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "data", "users.json"))
}

func TestFileStore_CreateOnMissingFileStartsAtOne(t *testing.T) {
	s := newStore(t)

	u, err := s.Create(context.Background(), "Ada", "ada@x.com")
	require.NoError(t, err)
	assert.Equal(t, domain.User{ID: 1, Name: "Ada", Email: "ada@x.com"}, u)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	var onDisk []domain.User
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, []domain.User{u}, onDisk)
}

func TestFileStore_CreateUsesMaxIDPlusOne(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o755))
	seed := `[{"id":3,"name":"a","email":"a@x"},{"id":7,"name":"b","email":"b@x"}]`
	require.NoError(t, os.WriteFile(s.Path(), []byte(seed), 0o600))

	u, err := s.Create(context.Background(), "Grace", "grace@x.com")
	require.NoError(t, err)
	assert.Equal(t, 8, u.ID)

	all, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestFileStore_RoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	var created []domain.User
	for _, name := range []string{"a", "b", "c"} {
		u, err := s.Create(ctx, name, name+"@x.com")
		require.NoError(t, err)
		created = append(created, u)
	}

	reloaded, err := NewFileStore(s.Path()).List(ctx)
	require.NoError(t, err)
	assert.Equal(t, created, reloaded)
}

func TestFileStore_RejectsInvalidInput(t *testing.T) {
	s := newStore(t)

	_, err := s.Create(context.Background(), "", "x@x.com")
	assert.ErrorIs(t, err, domain.ErrInvalidUser)
	_, err = s.Create(context.Background(), "x", "")
	assert.ErrorIs(t, err, domain.ErrInvalidUser)

	_, statErr := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(statErr), "invalid input must not touch the file")
}

func TestFileStore_CorruptDocumentIsAnError(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o755))
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o600))

	_, err := s.Create(context.Background(), "Ada", "ada@x.com")
	require.Error(t, err)

	_, err = s.List(context.Background())
	require.Error(t, err)
}

func TestFileStore_EmptyFileIsEmptyCollection(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o755))
	require.NoError(t, os.WriteFile(s.Path(), nil, 0o600))

	u, err := s.Create(context.Background(), "Ada", "ada@x.com")
	require.NoError(t, err)
	assert.Equal(t, 1, u.ID)
}

func TestFileStore_PersistFailureReturnsNoRecord(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	_, err := s.Create(ctx, "Ada", "ada@x.com")
	require.NoError(t, err)

	s.rename = func(string, string) error { return errors.New("disk full") }
	u, err := s.Create(ctx, "Grace", "grace@x.com")
	require.Error(t, err)
	assert.Zero(t, u)

	s.rename = os.Rename
	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "failed write must leave the previous document intact")

	u, err = s.Create(ctx, "Grace", "grace@x.com")
	require.NoError(t, err)
	assert.Equal(t, 2, u.ID)

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(s.Path()), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestFileStore_ConcurrentCreatesGetUniqueIDs(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	const n = 25
	ids := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := s.Create(ctx, "u", "u@x.com")
			if err != nil {
				t.Errorf("create %d: %v", i, err)
				return
			}
			ids[i] = u.ID
		}(i)
	}
	wg.Wait()

	sort.Ints(ids)
	for i, id := range ids {
		require.Equal(t, i+1, id)
	}

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, n)
}

func TestFileStore_Get(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	created, err := s.Create(ctx, "Ada", "ada@x.com")
	require.NoError(t, err)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}
