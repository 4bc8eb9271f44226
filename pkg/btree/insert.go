package btree

import (
	"blocktree/pkg/block"
	"blocktree/pkg/errs"
	"blocktree/pkg/node"
)

// Insert adds a new key/value pair. It returns errs.ErrConflict if key is
// already present. A leaf that reaches capacity after the insert is split
// immediately (lazy splitting: the tree is never deeper than one split
// chain behind its fill level).
func (idx *Index) Insert(key, value *block.Block) error {
	if err := idx.checkKeySize(key); err != nil {
		return err
	}
	if err := idx.checkValueSize(value); err != nil {
		return err
	}
	return idx.insert(idx.superblock.Info.RootNode, nil, key, value)
}

// insert descends from blocknum, recording the path of ancestor block
// numbers (root-first, immediate parent last) so that a split triggered at
// the leaf can walk back up without re-reading from the root.
func (idx *Index) insert(blocknum int, ancestors []int, key, value *block.Block) error {
	var n node.Node
	if err := n.Unserialize(idx.cache, blocknum); err != nil {
		return err
	}

	switch n.Info.NodeType {
	case node.Root:
		if n.Info.NumKeys == 0 {
			return idx.insertIntoEmptyRoot(blocknum, &n, key, value)
		}
		child, err := n.GetPtr(descendIndex(&n, key))
		if err != nil {
			return err
		}
		return idx.insert(child, appendAncestor(ancestors, blocknum), key, value)

	case node.Interior:
		child, err := n.GetPtr(descendIndex(&n, key))
		if err != nil {
			return err
		}
		return idx.insert(child, appendAncestor(ancestors, blocknum), key, value)

	case node.Leaf:
		return idx.insertIntoLeaf(blocknum, &n, ancestors, key, value)

	default:
		return errs.ErrBadNodeType
	}
}

func appendAncestor(ancestors []int, blocknum int) []int {
	path := make([]int, len(ancestors), len(ancestors)+1)
	copy(path, ancestors)
	return append(path, blocknum)
}

// insertIntoEmptyRoot handles the one-time transition out of the tree's
// initial state: an empty root becomes an interior pointing at two fresh
// leaves, the left empty and the right holding the new pair.
func (idx *Index) insertIntoEmptyRoot(blocknum int, root *node.Node, key, value *block.Block) error {
	left, err := idx.AllocateNode()
	if err != nil {
		return err
	}
	right, err := idx.AllocateNode()
	if err != nil {
		return err
	}

	leftLeaf := node.New(node.Leaf, idx.params.KeySize, idx.params.ValueSize, idx.blockSize())
	rightLeaf := node.New(node.Leaf, idx.params.KeySize, idx.params.ValueSize, idx.blockSize())
	rightLeaf.Info.NumKeys = 1
	if err := rightLeaf.SetKey(0, key); err != nil {
		return err
	}
	if err := rightLeaf.SetVal(0, value); err != nil {
		return err
	}

	root.Info.NumKeys = 1
	if err := root.SetKey(0, key); err != nil {
		return err
	}
	if err := root.SetPtr(0, left); err != nil {
		return err
	}
	if err := root.SetPtr(1, right); err != nil {
		return err
	}

	if err := leftLeaf.Serialize(idx.cache, left); err != nil {
		return err
	}
	if err := rightLeaf.Serialize(idx.cache, right); err != nil {
		return err
	}
	if err := root.Serialize(idx.cache, blocknum); err != nil {
		return err
	}

	if root.Info.NumKeys >= root.Info.NumSlotsAsInterior() {
		return idx.split(blocknum, nil)
	}
	return nil
}

func (idx *Index) insertIntoLeaf(blocknum int, leaf *node.Node, ancestors []int, key, value *block.Block) error {
	offset := leaf.Info.NumKeys
	for i := 0; i < leaf.Info.NumKeys; i++ {
		ki, err := leaf.GetKey(i)
		if err != nil {
			return err
		}
		c := key.Compare(ki)
		if c == 0 {
			return errs.ErrConflict
		}
		if c < 0 {
			offset = i
			break
		}
	}

	oldNumKeys := leaf.Info.NumKeys
	leaf.Info.NumKeys = oldNumKeys + 1
	for i := oldNumKeys; i > offset; i-- {
		k, err := leaf.GetKey(i - 1)
		if err != nil {
			return err
		}
		v, err := leaf.GetVal(i - 1)
		if err != nil {
			return err
		}
		if err := leaf.SetKey(i, k); err != nil {
			return err
		}
		if err := leaf.SetVal(i, v); err != nil {
			return err
		}
	}
	if err := leaf.SetKey(offset, key); err != nil {
		return err
	}
	if err := leaf.SetVal(offset, value); err != nil {
		return err
	}

	if err := leaf.Serialize(idx.cache, blocknum); err != nil {
		return err
	}

	if leaf.Info.NumKeys >= leaf.Info.NumSlotsAsLeaf() {
		return idx.split(blocknum, ancestors)
	}
	return nil
}
