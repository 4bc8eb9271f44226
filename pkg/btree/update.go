package btree

import (
	"blocktree/pkg/block"
	"blocktree/pkg/errs"
	"blocktree/pkg/node"
)

// Update replaces the value stored under an existing key. It returns
// errs.ErrNonExistent if key is not present; unlike Insert, it never
// changes numkeys and so never triggers a split.
func (idx *Index) Update(key, value *block.Block) error {
	if err := idx.checkKeySize(key); err != nil {
		return err
	}
	if err := idx.checkValueSize(value); err != nil {
		return err
	}
	return idx.update(idx.superblock.Info.RootNode, key, value)
}

func (idx *Index) update(blocknum int, key, value *block.Block) error {
	var n node.Node
	if err := n.Unserialize(idx.cache, blocknum); err != nil {
		return err
	}

	switch n.Info.NodeType {
	case node.Root, node.Interior:
		if n.Info.NumKeys == 0 {
			return errs.ErrNonExistent
		}
		child, err := n.GetPtr(descendIndex(&n, key))
		if err != nil {
			return err
		}
		return idx.update(child, key, value)

	case node.Leaf:
		for i := 0; i < n.Info.NumKeys; i++ {
			ki, err := n.GetKey(i)
			if err != nil {
				return err
			}
			if key.Equal(ki) {
				if err := n.SetVal(i, value); err != nil {
					return err
				}
				return n.Serialize(idx.cache, blocknum)
			}
		}
		return errs.ErrNonExistent

	default:
		return errs.ErrBadNodeType
	}
}
