package btree

import (
	"blocktree/pkg/block"
	"blocktree/pkg/errs"
)

// Delete is not implemented: the redistribution/merge side of this B-Tree
// (the mirror image of lazy splitting) is out of scope. Callers get a
// clearly named, checkable error rather than a silently wrong tree.
func (idx *Index) Delete(key *block.Block) error {
	if err := idx.checkKeySize(key); err != nil {
		return err
	}
	return errs.ErrUnimplemented
}
