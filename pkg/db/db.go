// Package db provides a thread-safe facade over a disk-backed B-Tree
// index: open a store by path, then Put/Get/Update fixed-width records
// through it.
package db

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"blocktree/pkg/block"
	"blocktree/pkg/btree"
	"blocktree/pkg/cache/diskcache"
)

// Options configures a store at creation time.
type Options struct {
	KeySize   int
	ValueSize int
	BlockSize int
	// NumBlocks sizes a freshly created store; ignored when opening an
	// existing file (its size on disk governs then).
	NumBlocks int
	Logger    *logrus.Logger
}

// DB is a fixed-width key/value store backed by a single file on disk. All
// methods are safe for concurrent use.
type DB struct {
	mu    sync.RWMutex
	cache *diskcache.Cache
	tree  *btree.Index
}

// Open mounts the store at path, creating and formatting it if no file
// exists there yet.
func Open(path string, opts Options) (*DB, error) {
	info, statErr := os.Stat(path)
	create := os.IsNotExist(statErr)

	numBlocks := opts.NumBlocks
	if statErr == nil && opts.BlockSize > 0 {
		numBlocks = int(info.Size() / int64(opts.BlockSize))
	}

	c, err := diskcache.Open(path, opts.BlockSize, numBlocks)
	if err != nil {
		return nil, err
	}

	tree := btree.New(c, btree.Params{KeySize: opts.KeySize, ValueSize: opts.ValueSize})
	if opts.Logger != nil {
		tree.SetLogger(opts.Logger)
	}
	if err := tree.Attach(0, create); err != nil {
		c.Close()
		return nil, err
	}

	return &DB{cache: c, tree: tree}, nil
}

// Put inserts a new key/value pair, returning errs.ErrConflict if key is
// already present.
func (db *DB) Put(key, value *block.Block) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.tree.Insert(key, value)
}

// Get looks up key, returning errs.ErrNonExistent if it is absent.
func (db *DB) Get(key *block.Block) (*block.Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.tree.Lookup(key)
}

// Update replaces the value stored under an existing key, returning
// errs.ErrNonExistent if key is absent.
func (db *DB) Update(key, value *block.Block) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.tree.Update(key, value)
}

// Delete is not supported; for a key of the configured width it returns
// errs.ErrUnimplemented (a key of any other width gets a size error).
func (db *DB) Delete(key *block.Block) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.tree.Delete(key)
}

// SanityCheck walks the whole tree, verifying structural invariants.
func (db *DB) SanityCheck() error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.tree.SanityCheck()
}

// Close flushes the superblock and releases the backing file.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.tree.Detach(); err != nil {
		db.cache.Close()
		return err
	}
	return db.cache.Close()
}
