package btree

import (
	"blocktree/pkg/block"
	"blocktree/pkg/errs"
	"blocktree/pkg/node"
)

// Lookup returns the value associated with key, or errs.ErrNonExistent if
// no such key is present.
func (idx *Index) Lookup(key *block.Block) (*block.Block, error) {
	if err := idx.checkKeySize(key); err != nil {
		return nil, err
	}
	return idx.lookup(idx.superblock.Info.RootNode, key)
}

func (idx *Index) lookup(blocknum int, key *block.Block) (*block.Block, error) {
	var n node.Node
	if err := n.Unserialize(idx.cache, blocknum); err != nil {
		return nil, err
	}

	switch n.Info.NodeType {
	case node.Root, node.Interior:
		if n.Info.NumKeys == 0 {
			return nil, errs.ErrNonExistent
		}
		child, err := n.GetPtr(descendIndex(&n, key))
		if err != nil {
			return nil, err
		}
		return idx.lookup(child, key)

	case node.Leaf:
		for i := 0; i < n.Info.NumKeys; i++ {
			ki, err := n.GetKey(i)
			if err != nil {
				return nil, err
			}
			if key.Equal(ki) {
				return n.GetVal(i)
			}
		}
		return nil, errs.ErrNonExistent

	default:
		return nil, errs.ErrBadNodeType
	}
}

// descendIndex returns the child pointer offset to follow for key within an
// interior or root node: the offset of the first key greater than key, or
// NumKeys (the rightmost child) if key is greater than every key present.
func descendIndex(n *node.Node, key *block.Block) int {
	for i := 0; i < n.Info.NumKeys; i++ {
		ki, err := n.GetKey(i)
		if err != nil {
			// resolveKey bounds i against n.Info.NumKeys itself, so this
			// cannot fail inside the loop; treat it as "no match yet".
			continue
		}
		if key.Compare(ki) < 0 {
			return i
		}
	}
	return n.Info.NumKeys
}
