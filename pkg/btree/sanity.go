package btree

import (
	"fmt"

	"blocktree/pkg/errs"
	"blocktree/pkg/node"
)

// SanityCheck walks the tree from the root, verifying that it is acyclic
// and that every node respects its type's capacity. It is meant for tests
// and operator tooling, not the hot path.
func (idx *Index) SanityCheck() error {
	if idx.superblock.Info.NodeType != node.Superblock {
		return fmt.Errorf("%w: block %d is not a superblock", errs.ErrInsane, idx.superblockIndex)
	}
	visited := make(map[int]bool)
	return idx.sanityCheck(idx.superblock.Info.RootNode, visited)
}

func (idx *Index) sanityCheck(blocknum int, visited map[int]bool) error {
	if visited[blocknum] {
		return fmt.Errorf("%w: cycle revisits block %d", errs.ErrInsane, blocknum)
	}
	visited[blocknum] = true

	var n node.Node
	if err := n.Unserialize(idx.cache, blocknum); err != nil {
		return err
	}

	switch n.Info.NodeType {
	case node.Root, node.Interior:
		// A root with no keys yet is the fresh, empty tree: it has no
		// child pointer to descend into.
		if n.Info.NumKeys == 0 && n.Info.NodeType == node.Root {
			return nil
		}
		// A non-root interior can still land at zero keys transiently (a
		// split at minimal node capacity can leave one side with nothing
		// but its single pass-through pointer); it has exactly one valid
		// child, reached below via the [0, numkeys] loop.
		if n.Info.NumKeys >= n.Info.NumSlotsAsInterior() {
			return fmt.Errorf("%w: block %d exceeds interior capacity (%d >= %d)",
				errs.ErrInsane, blocknum, n.Info.NumKeys, n.Info.NumSlotsAsInterior())
		}
		for i := 0; i <= n.Info.NumKeys; i++ {
			child, err := n.GetPtr(i)
			if err != nil {
				return err
			}
			if err := idx.sanityCheck(child, visited); err != nil {
				return err
			}
		}
		return nil

	case node.Leaf:
		if n.Info.NumKeys >= n.Info.NumSlotsAsLeaf() {
			return fmt.Errorf("%w: block %d exceeds leaf capacity (%d >= %d)",
				errs.ErrInsane, blocknum, n.Info.NumKeys, n.Info.NumSlotsAsLeaf())
		}
		return nil

	default:
		return fmt.Errorf("%w: block %d has unexpected node type %s", errs.ErrInsane, blocknum, n.Info.NodeType)
	}
}
