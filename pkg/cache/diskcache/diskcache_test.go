package diskcache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blocktree/pkg/block"
)

func TestOpenFormatsFileToRequestedSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.db")

	c, err := Open(path, 64, 8)
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, 64, c.GetBlockSize())
	assert.Equal(t, 8, c.GetNumBlocks())

	stat, err := c.backing.File.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(64*8), stat.Size())
}

func TestWriteReadRoundTripsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.db")

	c, err := Open(path, 32, 4)
	require.NoError(t, err)

	payload := block.FromBytes(make([]byte, 32))
	copy(payload.Bytes(), []byte("persisted block contents"))
	require.NoError(t, c.WriteBlock(1, payload))
	require.NoError(t, c.Close())

	c2, err := Open(path, 32, 4)
	require.NoError(t, err)
	defer c2.Close()

	got, _ := block.New(0)
	require.NoError(t, c2.ReadBlock(1, got))
	assert.True(t, got.Equal(payload))
}

func TestWriteOutOfBounds(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(filepath.Join(dir, "store.db"), 16, 2)
	require.NoError(t, err)
	defer c.Close()

	b, _ := block.New(16)
	assert.Error(t, c.WriteBlock(9, b))
}
