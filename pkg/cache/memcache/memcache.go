// Package memcache provides an in-memory Cache implementation. It backs
// the core's tests and any caller that does not need durability, the way
// the teacher's MockStorage backed its B+ tree tests.
package memcache

import (
	"fmt"
	"sync"

	"blocktree/pkg/block"
	"blocktree/pkg/cache"
)

// Cache is a fixed-size, in-memory buffer cache. All blocks are allocated
// up front; GetNumBlocks never changes after New.
type Cache struct {
	mu        sync.RWMutex
	blockSize int
	blocks    [][]byte
	allocs    int
	deallocs  int
	reads     int
	writes    int
}

var _ cache.Cache = (*Cache)(nil)

// New creates a Cache with numBlocks blocks of blockSize bytes each, all
// zero-initialized.
func New(blockSize, numBlocks int) *Cache {
	blocks := make([][]byte, numBlocks)
	for i := range blocks {
		blocks[i] = make([]byte, blockSize)
	}
	return &Cache{blockSize: blockSize, blocks: blocks}
}

// GetBlockSize returns the constant byte width of every block.
func (c *Cache) GetBlockSize() int {
	return c.blockSize
}

// GetNumBlocks returns the total number of blocks backing this store.
func (c *Cache) GetNumBlocks() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.blocks)
}

// ReadBlock reads block number blocknum into into.
func (c *Cache) ReadBlock(blocknum int, into *block.Block) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkBounds(blocknum); err != nil {
		return err
	}
	if err := into.Resize(c.blockSize, false); err != nil {
		return err
	}
	copy(into.Bytes(), c.blocks[blocknum])
	c.reads++
	return nil
}

// WriteBlock writes exactly GetBlockSize() bytes from from into block
// number blocknum.
func (c *Cache) WriteBlock(blocknum int, from *block.Block) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkBounds(blocknum); err != nil {
		return err
	}
	if from.Len() != c.blockSize {
		return fmt.Errorf("memcache: write size %d does not match block size %d", from.Len(), c.blockSize)
	}
	copy(c.blocks[blocknum], from.Bytes())
	c.writes++
	return nil
}

// NotifyAllocateBlock records an allocation for accounting purposes.
func (c *Cache) NotifyAllocateBlock(blocknum int) {
	c.mu.Lock()
	c.allocs++
	c.mu.Unlock()
}

// NotifyDeallocateBlock records a deallocation for accounting purposes.
func (c *Cache) NotifyDeallocateBlock(blocknum int) {
	c.mu.Lock()
	c.deallocs++
	c.mu.Unlock()
}

// Stats returns the running (reads, writes, allocs, deallocs) counters,
// useful in tests that assert on cache traffic.
func (c *Cache) Stats() (reads, writes, allocs, deallocs int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reads, c.writes, c.allocs, c.deallocs
}

func (c *Cache) checkBounds(blocknum int) error {
	if blocknum < 0 || blocknum >= len(c.blocks) {
		return fmt.Errorf("memcache: block %d out of range [0,%d)", blocknum, len(c.blocks))
	}
	return nil
}
