// Package cache defines the buffer-cache contract the B-Tree core consumes.
// The core never talks to a disk directly: every block it reads or writes
// passes through a Cache. This package only specifies the interface (the
// cache's own eviction policy and backing disk are outside the scope of the
// B-Tree core); concrete implementations live in the memcache and
// diskcache subpackages.
package cache

import "blocktree/pkg/block"

// Cache maps block numbers to fixed-size byte blocks. Every block exchanged
// through a Cache has exactly GetBlockSize() bytes.
type Cache interface {
	// GetBlockSize returns the constant byte width of every block.
	GetBlockSize() int

	// GetNumBlocks returns the total number of blocks backing this store.
	GetNumBlocks() int

	// ReadBlock reads block number blocknum into into, sizing it to
	// GetBlockSize().
	ReadBlock(blocknum int, into *block.Block) error

	// WriteBlock writes exactly GetBlockSize() bytes from from to block
	// number blocknum. A length mismatch is an error.
	WriteBlock(blocknum int, from *block.Block) error

	// NotifyAllocateBlock is an advisory signal for accounting; it carries
	// no semantic weight for the core.
	NotifyAllocateBlock(blocknum int)

	// NotifyDeallocateBlock is the advisory counterpart to
	// NotifyAllocateBlock.
	NotifyDeallocateBlock(blocknum int)
}
