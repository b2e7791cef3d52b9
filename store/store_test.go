package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStores(t *testing.T) map[Kind]IndexStore {
	dir := t.TempDir()
	for _, part := range []int{0, 1} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "box"+string(rune('0'+part))), 0o755))
	}
	stores := make(map[Kind]IndexStore)
	for _, kind := range []Kind{FileKind, PebbleKind} {
		s, err := Open(kind, dir, "box")
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		stores[kind] = s
	}
	return stores
}

func TestPutGetLatest(t *testing.T) {
	ctx := context.Background()
	for kind, s := range openStores(t) {
		t.Run(string(kind), func(t *testing.T) {
			log := IndexLog{Block: 2, Dofs: []int{7, 6, 1, 0}}
			require.NoError(t, s.Put(ctx, 1, 3, log))
			require.NoError(t, s.Put(ctx, 1, 8, IndexLog{Block: 1, Dofs: []int{5}}))
			require.NoError(t, s.Put(ctx, 0, 5, IndexLog{Block: 1, Dofs: []int{}}))

			got, err := s.Get(ctx, 1, 3)
			require.NoError(t, err)
			assert.Equal(t, log, got)
			assert.Equal(t, 2, got.NumCells())

			_, err = s.Get(ctx, 1, 4)
			assert.ErrorIs(t, err, ErrIndexLogMissing)

			found, got, err := s.Latest(ctx, 1, 7)
			require.NoError(t, err)
			assert.Equal(t, 3, found)
			assert.Equal(t, log, got)

			found, _, err = s.Latest(ctx, 1, 8)
			require.NoError(t, err)
			assert.Equal(t, 8, found)

			found, got, err = s.Latest(ctx, 0, 100)
			require.NoError(t, err)
			assert.Equal(t, 5, found)
			assert.Empty(t, got.Dofs)

			_, _, err = s.Latest(ctx, 1, 2)
			assert.ErrorIs(t, err, ErrIndexLogMissing)
		})
	}
}

func TestPutRejectsBadLogs(t *testing.T) {
	ctx := context.Background()
	for kind, s := range openStores(t) {
		t.Run(string(kind), func(t *testing.T) {
			assert.Error(t, s.Put(ctx, 0, 0, IndexLog{Block: 0}))
			assert.Error(t, s.Put(ctx, 0, 0, IndexLog{Block: 2, Dofs: []int{1}}))
			assert.Error(t, s.Put(ctx, -1, 0, IndexLog{Block: 1}))
		})
	}
}

func TestFileStoreFormat(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir, "m")
	require.NoError(t, os.MkdirAll(s.PartitionDir(2), 0o755))
	require.NoError(t, s.Put(context.Background(), 2, 0, IndexLog{Block: 1, Dofs: []int{4, 2}}))
	b, err := os.ReadFile(filepath.Join(dir, "m2", "index_0"))
	require.NoError(t, err)
	assert.Equal(t, "block 1\n2\n4\n2\n", string(b))

	entries, err := os.ReadDir(s.PartitionDir(2))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestIndexLogCodec(t *testing.T) {
	log := IndexLog{Block: 3, Dofs: []int{0, 300, 1 << 40}}
	got, err := decodeIndexLog(encodeIndexLog(log))
	require.NoError(t, err)
	assert.Equal(t, log, got)

	buf := encodeIndexLog(log)
	_, err = decodeIndexLog(buf[:len(buf)-1])
	assert.Error(t, err)
	_, err = decodeIndexLog(append(buf, 0))
	assert.Error(t, err)
}

func TestOpenUnknown(t *testing.T) {
	_, err := Open("redis", t.TempDir(), "m")
	assert.Error(t, err)
}

func TestOpenPebbleOverFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(PebblePath(dir, "box"), []byte("x"), 0o644))
	s, err := Open(PebbleKind, dir, "box")
	require.Error(t, err)
	assert.True(t, s == nil, "failed open must not return a typed nil store")
}

func TestFileStoreLatestSkipsStrayNames(t *testing.T) {
	var (
		ctx = context.Background()
		dir = t.TempDir()
		s   = NewFileStore(dir, "box")
	)
	require.NoError(t, os.MkdirAll(s.PartitionDir(0), 0o755))
	require.NoError(t, s.Put(ctx, 0, 4, IndexLog{Block: 1, Dofs: []int{3}}))
	require.NoError(t, s.Put(ctx, 0, 1000000, IndexLog{Block: 1, Dofs: []int{9}}))
	for _, name := range []string{"index_x", "index_007", ".index_123", "box_9"} {
		require.NoError(t, os.WriteFile(filepath.Join(s.PartitionDir(0), name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(s.PartitionDir(0), "index_8"), 0o755))

	found, log, err := s.Latest(ctx, 0, 999999999)
	require.NoError(t, err)
	assert.Equal(t, 1000000, found)
	assert.Equal(t, []int{9}, log.Dofs)

	found, log, err = s.Latest(ctx, 0, 999999)
	require.NoError(t, err)
	assert.Equal(t, 4, found)
	assert.Equal(t, []int{3}, log.Dofs)

	_, _, err = s.Latest(ctx, 1, 10)
	assert.ErrorIs(t, err, ErrIndexLogMissing)

	for name, want := range map[string]int{"index_0": 0, "index_12": 12} {
		n, ok := indexStep(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, n)
	}
	for _, name := range []string{"index_", "index_-1", "index_+3", "index_03", "xindex_3"} {
		_, ok := indexStep(name)
		assert.False(t, ok, name)
	}
}
