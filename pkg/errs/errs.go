// Package errs collects the sentinel errors surfaced at the B-Tree's
// boundary, matching the taxonomy of the underlying design.
package errs

import "errors"

var (
	// ErrNoMem signals a failed payload allocation or an out-of-bounds
	// offset in an element resolver.
	ErrNoMem = errors.New("btree: out of memory")

	// ErrNoSpace signals an exhausted free list at allocation time.
	ErrNoSpace = errors.New("btree: no space left")

	// ErrNonExistent signals that a lookup or update found no matching key.
	ErrNonExistent = errors.New("btree: key does not exist")

	// ErrConflict signals that an insert found a key that already exists.
	ErrConflict = errors.New("btree: key already exists")

	// ErrBadNodeType signals a structural bug: a helper was handed a node
	// of a type it cannot operate on.
	ErrBadNodeType = errors.New("btree: unexpected node type")

	// ErrUnimplemented is returned by Delete.
	ErrUnimplemented = errors.New("btree: operation not implemented")

	// ErrInsane signals an invariant violation found by SanityCheck: a
	// cycle, a capacity overrun, or an unexpected node type.
	ErrInsane = errors.New("btree: tree invariant violated")
)
