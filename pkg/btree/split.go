package btree

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"blocktree/pkg/block"
	"blocktree/pkg/errs"
	"blocktree/pkg/node"
)

// split operates on the node that just overflowed its capacity, reading it
// back by block number and dispatching on its current type. ancestors is
// the root-first chain of ancestor block numbers recorded during descent,
// empty only when blocknum is itself the root.
func (idx *Index) split(blocknum int, ancestors []int) error {
	var orig node.Node
	if err := orig.Unserialize(idx.cache, blocknum); err != nil {
		return err
	}

	idx.log.WithFields(logrus.Fields{
		"op":    "split",
		"block": blocknum,
		"type":  orig.Info.NodeType,
	}).Debug("splitting overflowed node")

	switch orig.Info.NodeType {
	case node.Leaf:
		return idx.splitLeaf(blocknum, &orig, ancestors)
	case node.Interior, node.Root:
		return idx.splitInterior(blocknum, &orig, ancestors)
	default:
		return errs.ErrBadNodeType
	}
}

// splitLeaf divides orig's numkeys pairs in half, moving the upper half
// (blk2 = numkeys/2 entries) into a freshly allocated leaf, then hands the
// new leaf's first key up as the separator for the parent.
func (idx *Index) splitLeaf(blocknum int, orig *node.Node, ancestors []int) error {
	numkeys := orig.Info.NumKeys
	blk2 := numkeys / 2
	blk1 := numkeys - blk2

	newBlockNum, err := idx.AllocateNode()
	if err != nil {
		return err
	}
	newLeaf := node.New(node.Leaf, idx.params.KeySize, idx.params.ValueSize, idx.blockSize())
	newLeaf.Info.NumKeys = blk2
	for i := 0; i < blk2; i++ {
		k, err := orig.GetKey(blk1 + i)
		if err != nil {
			return err
		}
		v, err := orig.GetVal(blk1 + i)
		if err != nil {
			return err
		}
		if err := newLeaf.SetKey(i, k); err != nil {
			return err
		}
		if err := newLeaf.SetVal(i, v); err != nil {
			return err
		}
	}

	used := node.PointerSize + blk1*(idx.params.KeySize+idx.params.ValueSize)
	zero(orig.Payload, used)
	orig.Info.NumKeys = blk1

	if err := orig.Serialize(idx.cache, blocknum); err != nil {
		return err
	}
	if err := newLeaf.Serialize(idx.cache, newBlockNum); err != nil {
		return err
	}

	sepKey, err := newLeaf.GetKey(0)
	if err != nil {
		return err
	}
	return idx.interiorNodeCase(ancestors, sepKey, newBlockNum)
}

// splitInterior divides orig's numkeys keys around a middle key, which is
// consumed as the separator lifted to the parent (or, when orig is the
// root, becomes the single key of a brand new root). blk1 keys and blk1+1
// pointers stay in orig; blk2 keys and blk2+1 pointers move to a freshly
// allocated sibling, always typed INTERIOR regardless of what orig was.
func (idx *Index) splitInterior(blocknum int, orig *node.Node, ancestors []int) error {
	wasRoot := orig.Info.NodeType == node.Root

	numkeys := orig.Info.NumKeys
	blk1 := numkeys / 2
	blk2 := numkeys - blk1 - 1

	sepKey, err := orig.GetKey(blk1)
	if err != nil {
		return err
	}

	newBlockNum, err := idx.AllocateNode()
	if err != nil {
		return err
	}
	newNode := node.New(node.Interior, idx.params.KeySize, idx.params.ValueSize, idx.blockSize())
	newNode.Info.NumKeys = blk2
	for i := 0; i < blk2; i++ {
		k, err := orig.GetKey(blk1 + 1 + i)
		if err != nil {
			return err
		}
		if err := newNode.SetKey(i, k); err != nil {
			return err
		}
	}
	for i := 0; i <= blk2; i++ {
		p, err := orig.GetPtr(blk1 + 1 + i)
		if err != nil {
			return err
		}
		if err := newNode.SetPtr(i, p); err != nil {
			return err
		}
	}

	used := node.PointerSize + blk1*(node.PointerSize+idx.params.KeySize)
	zero(orig.Payload, used)
	orig.Info.NumKeys = blk1
	if wasRoot {
		orig.Info.NodeType = node.Interior
	}

	if err := orig.Serialize(idx.cache, blocknum); err != nil {
		return err
	}
	if err := newNode.Serialize(idx.cache, newBlockNum); err != nil {
		return err
	}

	if wasRoot {
		return idx.growRoot(blocknum, newBlockNum, sepKey)
	}
	return idx.interiorNodeCase(ancestors, sepKey, newBlockNum)
}

// growRoot allocates a new root one level above the just-split former root:
// key0 is the lifted separator, ptr0 the former root (now plain INTERIOR),
// ptr1 the new sibling.
func (idx *Index) growRoot(leftBlock, rightBlock int, sepKey *block.Block) error {
	newRootNum, err := idx.AllocateNode()
	if err != nil {
		return err
	}
	newRoot := node.New(node.Root, idx.params.KeySize, idx.params.ValueSize, idx.blockSize())
	newRoot.Info.NumKeys = 1
	if err := newRoot.SetKey(0, sepKey); err != nil {
		return err
	}
	if err := newRoot.SetPtr(0, leftBlock); err != nil {
		return err
	}
	if err := newRoot.SetPtr(1, rightBlock); err != nil {
		return err
	}
	if err := newRoot.Serialize(idx.cache, newRootNum); err != nil {
		return err
	}

	idx.superblock.Info.RootNode = newRootNum
	idx.log.WithFields(logrus.Fields{
		"op":      "grow-root",
		"newRoot": newRootNum,
	}).Debug("tree grew a level")
	if err := idx.superblock.Serialize(idx.cache, idx.superblockIndex); err != nil {
		return err
	}

	if newRoot.Info.NumKeys >= newRoot.Info.NumSlotsAsInterior() {
		return idx.split(newRootNum, nil)
	}
	return nil
}

// interiorNodeCase inserts sepKey/newChildPtr into the parent named by the
// last entry of ancestors, then recurses into split if that insert pushed
// the parent to capacity in turn.
func (idx *Index) interiorNodeCase(ancestors []int, sepKey *block.Block, newChildPtr int) error {
	if len(ancestors) == 0 {
		return fmt.Errorf("btree: internal error: split with no parent on a non-root node")
	}
	parentBlock := ancestors[len(ancestors)-1]
	parentAncestors := ancestors[:len(ancestors)-1]

	var parent node.Node
	if err := parent.Unserialize(idx.cache, parentBlock); err != nil {
		return err
	}

	offset := parent.Info.NumKeys
	for i := 0; i < parent.Info.NumKeys; i++ {
		ki, err := parent.GetKey(i)
		if err != nil {
			return err
		}
		c := sepKey.Compare(ki)
		if c == 0 {
			return errs.ErrConflict
		}
		if c < 0 {
			offset = i
			break
		}
	}

	oldNumKeys := parent.Info.NumKeys
	parent.Info.NumKeys = oldNumKeys + 1
	for i := oldNumKeys; i > offset; i-- {
		k, err := parent.GetKey(i - 1)
		if err != nil {
			return err
		}
		if err := parent.SetKey(i, k); err != nil {
			return err
		}
	}
	for i := oldNumKeys + 1; i > offset+1; i-- {
		p, err := parent.GetPtr(i - 1)
		if err != nil {
			return err
		}
		if err := parent.SetPtr(i, p); err != nil {
			return err
		}
	}
	if err := parent.SetKey(offset, sepKey); err != nil {
		return err
	}
	if err := parent.SetPtr(offset+1, newChildPtr); err != nil {
		return err
	}

	if err := parent.Serialize(idx.cache, parentBlock); err != nil {
		return err
	}

	if parent.Info.NumKeys >= parent.Info.NumSlotsAsInterior() {
		return idx.split(parentBlock, parentAncestors)
	}
	return nil
}

func zero(payload []byte, from int) {
	for i := from; i < len(payload); i++ {
		payload[i] = 0
	}
}
