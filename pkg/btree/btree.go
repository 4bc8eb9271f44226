// Package btree implements the on-disk B-Tree engine: navigation and
// mutation (lookup, insert with lazy node splitting, update in place),
// free-block list management, and the structural sanity check. It is the
// hard part of the system; everything below it (block, cache, node) is a
// plain collaborator this package drives.
package btree

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"blocktree/pkg/block"
	"blocktree/pkg/cache"
	"blocktree/pkg/errs"
	"blocktree/pkg/node"
)

// Params are the tree-wide parameters fixed at creation time and immutable
// thereafter. BlockSize is not among them: it is read from the Cache at
// Attach time, per the buffer cache contract.
type Params struct {
	KeySize   int
	ValueSize int
}

// Index owns the superblock, drives recursive navigation, performs node
// allocation/deallocation through the free list, and implements
// lookup/insert/update/split.
type Index struct {
	cache           cache.Cache
	params          Params
	superblockIndex int
	superblock      node.Node
	log             *logrus.Entry
}

// New constructs an Index over the given cache. Call Attach before using
// it. A default, silent logger is installed; use SetLogger to observe
// allocation and split activity.
func New(c cache.Cache, params Params) *Index {
	return &Index{
		cache:  c,
		params: params,
		log:    logrus.New().WithField("component", "btree"),
	}
}

// SetLogger installs l as the destination for this Index's operation-level
// Debug entries (store formatted, block allocated, deallocated, node
// split, root grown).
func (idx *Index) SetLogger(l *logrus.Logger) {
	if l == nil {
		l = logrus.New()
	}
	idx.log = l.WithField("component", "btree")
}

func (idx *Index) blockSize() int {
	return idx.cache.GetBlockSize()
}

// Attach mounts the tree. initblock must be 0. When create is true, the
// backing store is formatted from scratch: a superblock at block 0, an
// empty root at block 1, and every subsequent block chained as
// UNALLOCATED with FreeList linking them in ascending order (the last
// entry points at 0). When create is false, the existing superblock is
// simply read.
func (idx *Index) Attach(initblock int, create bool) error {
	if initblock != 0 {
		return fmt.Errorf("btree: initblock must be 0, got %d", initblock)
	}
	idx.superblockIndex = initblock

	if create {
		if err := idx.format(initblock); err != nil {
			return err
		}
	}

	idx.superblock = node.Node{}
	return idx.superblock.Unserialize(idx.cache, initblock)
}

func (idx *Index) format(initblock int) error {
	blockSize := idx.blockSize()
	rootBlock := initblock + 1
	firstFreeBlock := initblock + 2

	superblock := node.New(node.Superblock, idx.params.KeySize, idx.params.ValueSize, blockSize)
	superblock.Info.RootNode = rootBlock
	superblock.Info.FreeList = firstFreeBlock
	idx.cache.NotifyAllocateBlock(initblock)
	if err := superblock.Serialize(idx.cache, initblock); err != nil {
		return err
	}

	root := node.New(node.Root, idx.params.KeySize, idx.params.ValueSize, blockSize)
	root.Info.RootNode = rootBlock
	root.Info.FreeList = firstFreeBlock
	idx.cache.NotifyAllocateBlock(rootBlock)
	if err := root.Serialize(idx.cache, rootBlock); err != nil {
		return err
	}

	numBlocks := idx.cache.GetNumBlocks()
	for i := firstFreeBlock; i < numBlocks; i++ {
		free := node.New(node.Unallocated, idx.params.KeySize, idx.params.ValueSize, blockSize)
		free.Info.RootNode = rootBlock
		if i+1 == numBlocks {
			free.Info.FreeList = 0
		} else {
			free.Info.FreeList = i + 1
		}
		if err := free.Serialize(idx.cache, i); err != nil {
			return err
		}
	}

	idx.log.WithFields(logrus.Fields{
		"op":        "format",
		"numBlocks": numBlocks,
		"rootBlock": rootBlock,
		"firstFree": firstFreeBlock,
	}).Debug("formatted backing store")
	return nil
}

// Detach flushes the superblock back to disk.
func (idx *Index) Detach() error {
	return idx.superblock.Serialize(idx.cache, idx.superblockIndex)
}

// AllocateNode pops the head of the free list and returns its block
// number. It returns errs.ErrNoSpace if the free list is exhausted.
func (idx *Index) AllocateNode() (int, error) {
	n := idx.superblock.Info.FreeList
	if n == 0 {
		return 0, errs.ErrNoSpace
	}

	var freed node.Node
	if err := freed.Unserialize(idx.cache, n); err != nil {
		return 0, err
	}
	if freed.Info.NodeType != node.Unallocated {
		panic(fmt.Sprintf("btree: allocate: block %d is not unallocated (type %s)", n, freed.Info.NodeType))
	}

	idx.superblock.Info.FreeList = freed.Info.FreeList
	if err := idx.superblock.Serialize(idx.cache, idx.superblockIndex); err != nil {
		return 0, err
	}
	idx.cache.NotifyAllocateBlock(n)
	idx.log.WithFields(logrus.Fields{"op": "allocate", "block": n}).Debug("allocated block")
	return n, nil
}

// DeallocateNode returns block n to the head of the free list.
func (idx *Index) DeallocateNode(n int) error {
	var freed node.Node
	if err := freed.Unserialize(idx.cache, n); err != nil {
		return err
	}
	if freed.Info.NodeType == node.Unallocated {
		panic(fmt.Sprintf("btree: deallocate: block %d is already unallocated", n))
	}

	freed.Info.NodeType = node.Unallocated
	freed.Payload = nil
	freed.Info.FreeList = idx.superblock.Info.FreeList
	if err := freed.Serialize(idx.cache, n); err != nil {
		return err
	}

	idx.superblock.Info.FreeList = n
	if err := idx.superblock.Serialize(idx.cache, idx.superblockIndex); err != nil {
		return err
	}
	idx.cache.NotifyDeallocateBlock(n)
	idx.log.WithFields(logrus.Fields{"op": "deallocate", "block": n}).Debug("deallocated block")
	return nil
}

func (idx *Index) checkKeySize(key *block.Block) error {
	if key.Len() != idx.params.KeySize {
		return fmt.Errorf("btree: key length %d does not match keysize %d", key.Len(), idx.params.KeySize)
	}
	return nil
}

func (idx *Index) checkValueSize(value *block.Block) error {
	if value.Len() != idx.params.ValueSize {
		return fmt.Errorf("btree: value length %d does not match valuesize %d", value.Len(), idx.params.ValueSize)
	}
	return nil
}
