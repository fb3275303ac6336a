package bbolt

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tymbaca/sharedkeys/mapreduce"
)

var _ mapreduce.Storage = (*Storage)(nil)

var nilSlice []string

func TestBbolt(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	storage, err := New(path)
	require.NoError(t, err)

	require.NoError(t, storage.Append(ctx, "worker-0/shared", "( a, b )", []string{"1", "2"}))
	vals, err := storage.Get(ctx, "worker-0/shared", "( a, b )")
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2"}, vals)

	require.NoError(t, storage.Append(ctx, "worker-0/shared", "( a, b )", []string{"3"}))
	vals, err = storage.Get(ctx, "worker-0/shared", "( a, b )")
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2", "3"}, vals)

	vals, err = storage.Get(ctx, "worker-0/shared", "( c, d )")
	require.NoError(t, err)
	require.Equal(t, nilSlice, vals)

	vals, err = storage.Get(ctx, "missing", "( a, b )")
	require.NoError(t, err)
	require.Equal(t, nilSlice, vals)

	require.NoError(t, storage.Append(ctx, "worker-0/shared", "( c, d )", []string{"4"}))
	keys, err := storage.GetKeys(ctx, "worker-0/shared")
	require.NoError(t, err)
	require.Equal(t, []string{"( a, b )", "( c, d )"}, keys)

	keys, err = storage.GetKeys(ctx, "missing")
	require.NoError(t, err)
	require.Empty(t, keys)

	// data survives a reopen
	require.NoError(t, storage.Close())
	storage, err = New(path)
	require.NoError(t, err)

	vals, err = storage.Get(ctx, "worker-0/shared", "( c, d )")
	require.NoError(t, err)
	require.Equal(t, []string{"4"}, vals)

	require.NoError(t, storage.Destroy())
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}
