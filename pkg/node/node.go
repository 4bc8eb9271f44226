// Package node interprets a raw block as one of {unallocated, superblock,
// root, interior, leaf}, offering typed accessors for the ith key,
// pointer, and value, and serializing to and from a Cache.
package node

import (
	"encoding/binary"
	"fmt"

	"blocktree/pkg/block"
	"blocktree/pkg/cache"
	"blocktree/pkg/errs"
)

// Type identifies what a block currently holds.
type Type uint32

const (
	// Unallocated blocks are free; their header.FreeList points at the
	// next free block (0 terminates the chain). This is also the Go zero
	// value for Type, so a freshly zero-valued Node reads as unallocated.
	Unallocated Type = 0
	// Superblock holds tree-wide metadata: the root pointer and the head
	// of the free list.
	Superblock Type = 1
	// Root is the tree's single root node; structurally an interior node.
	Root Type = 2
	// Interior nodes hold only keys and child pointers.
	Interior Type = 3
	// Leaf nodes hold keys and values.
	Leaf Type = 4
)

func (t Type) String() string {
	switch t {
	case Unallocated:
		return "UNALLOCATED"
	case Superblock:
		return "SUPERBLOCK"
	case Root:
		return "ROOT"
	case Interior:
		return "INTERIOR"
	case Leaf:
		return "LEAF"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint32(t))
	}
}

const (
	// PointerSize is the on-disk width of a block number.
	PointerSize = 8
	// HeaderSize is the fixed byte width of the metadata header that
	// precedes the payload in every block.
	HeaderSize = 4 + 4 + 4 + 4 + 8 + 8 + 8
)

// Metadata is the header at the start of every block.
type Metadata struct {
	NodeType  Type
	KeySize   int
	ValueSize int
	BlockSize int
	// RootNode is only semantically meaningful in the superblock.
	RootNode int
	// FreeList is only semantically meaningful in the superblock and in
	// free-list (unallocated) nodes.
	FreeList int
	NumKeys  int
}

// NumDataBytes returns the payload capacity of a block with this header.
func (m Metadata) NumDataBytes() int {
	return m.BlockSize - HeaderSize
}

// NumSlotsAsInterior returns the maximum number of keys an interior or
// root node with this header can hold.
func (m Metadata) NumSlotsAsInterior() int {
	return (m.NumDataBytes() - PointerSize) / (m.KeySize + PointerSize)
}

// NumSlotsAsLeaf returns the maximum number of keys a leaf node with this
// header can hold.
func (m Metadata) NumSlotsAsLeaf() int {
	return (m.NumDataBytes() - PointerSize) / (m.KeySize + m.ValueSize)
}

func (m Metadata) String() string {
	return fmt.Sprintf(
		"Metadata(nodetype=%s, keysize=%d, valuesize=%d, blocksize=%d, rootnode=%d, freelist=%d, numkeys=%d)",
		m.NodeType, m.KeySize, m.ValueSize, m.BlockSize, m.RootNode, m.FreeList, m.NumKeys,
	)
}

// Node is a block interpreted through its Metadata header. Payload holds
// the remainder of the block and is owned exclusively by this Node; it is
// nil for Unallocated and Superblock nodes, whose header carries all the
// meaning they have.
type Node struct {
	Info    Metadata
	Payload []byte
}

// New constructs a freshly allocated node of the given type. The payload
// is zero-initialized for node kinds that carry one.
func New(nodeType Type, keysize, valuesize, blocksize int) *Node {
	n := &Node{Info: Metadata{
		NodeType:  nodeType,
		KeySize:   keysize,
		ValueSize: valuesize,
		BlockSize: blocksize,
	}}
	if hasPayload(nodeType) {
		n.Payload = make([]byte, n.Info.NumDataBytes())
	}
	return n
}

func hasPayload(t Type) bool {
	return t != Unallocated && t != Superblock
}

// Serialize emits a block of exactly Info.BlockSize bytes to the cache at
// blocknum: header first, then payload (payload is zero outside the slots
// the node actually uses). It panics if Info.BlockSize does not match the
// cache's block size — a cache/node mismatch is a fatal, non-recoverable
// condition, never a value to route through the error-return path.
func (n *Node) Serialize(c cache.Cache, blocknum int) error {
	if n.Info.BlockSize != c.GetBlockSize() {
		panic(fmt.Sprintf("node: block size mismatch: node=%d cache=%d", n.Info.BlockSize, c.GetBlockSize()))
	}

	raw := make([]byte, n.Info.BlockSize)
	n.Info.encode(raw[:HeaderSize])
	if hasPayload(n.Info.NodeType) {
		copy(raw[HeaderSize:], n.Payload)
	}

	return c.WriteBlock(blocknum, block.FromBytes(raw))
}

// Unserialize reads blocknum from the cache, replacing this Node's header
// and (for node kinds that carry one) payload.
func (n *Node) Unserialize(c cache.Cache, blocknum int) error {
	buf, err := block.New(0)
	if err != nil {
		return err
	}
	if err := c.ReadBlock(blocknum, buf); err != nil {
		return err
	}

	raw := buf.Bytes()
	if len(raw) < HeaderSize {
		return fmt.Errorf("node: block %d shorter than header", blocknum)
	}

	var info Metadata
	info.decode(raw[:HeaderSize])
	if info.BlockSize != c.GetBlockSize() {
		panic(fmt.Sprintf("node: block size mismatch: node=%d cache=%d", info.BlockSize, c.GetBlockSize()))
	}

	n.Info = info
	if hasPayload(info.NodeType) {
		n.Payload = append([]byte(nil), raw[HeaderSize:HeaderSize+info.NumDataBytes()]...)
	} else {
		n.Payload = nil
	}
	return nil
}

func (m *Metadata) encode(dst []byte) {
	binary.LittleEndian.PutUint32(dst[0:4], uint32(m.NodeType))
	binary.LittleEndian.PutUint32(dst[4:8], uint32(m.KeySize))
	binary.LittleEndian.PutUint32(dst[8:12], uint32(m.ValueSize))
	binary.LittleEndian.PutUint32(dst[12:16], uint32(m.BlockSize))
	binary.LittleEndian.PutUint64(dst[16:24], uint64(m.RootNode))
	binary.LittleEndian.PutUint64(dst[24:32], uint64(m.FreeList))
	binary.LittleEndian.PutUint64(dst[32:40], uint64(m.NumKeys))
}

func (m *Metadata) decode(src []byte) {
	m.NodeType = Type(binary.LittleEndian.Uint32(src[0:4]))
	m.KeySize = int(binary.LittleEndian.Uint32(src[4:8]))
	m.ValueSize = int(binary.LittleEndian.Uint32(src[8:12]))
	m.BlockSize = int(binary.LittleEndian.Uint32(src[12:16]))
	m.RootNode = int(binary.LittleEndian.Uint64(src[16:24]))
	m.FreeList = int(binary.LittleEndian.Uint64(src[24:32]))
	m.NumKeys = int(binary.LittleEndian.Uint64(src[32:40]))
}

// resolveKey returns the payload offset of the ith key, per the layout in
// the data model: P + i*(P+K) for interior/root, P + i*(K+V) for leaf.
func (n *Node) resolveKey(offset int) (int, error) {
	switch n.Info.NodeType {
	case Interior, Root:
		if offset < 0 || offset >= n.Info.NumKeys {
			return 0, errs.ErrNoMem
		}
		return PointerSize + offset*(PointerSize+n.Info.KeySize), nil
	case Leaf:
		if offset < 0 || offset >= n.Info.NumKeys {
			return 0, errs.ErrNoMem
		}
		return PointerSize + offset*(n.Info.KeySize+n.Info.ValueSize), nil
	default:
		return 0, errs.ErrBadNodeType
	}
}

// resolvePtr returns the payload offset of the ith child pointer. Interior
// and root nodes carry numkeys+1 pointers; a leaf's single reserved
// pointer slot at offset 0 is never consumed by the current design.
func (n *Node) resolvePtr(offset int) (int, error) {
	switch n.Info.NodeType {
	case Interior, Root:
		if offset < 0 || offset > n.Info.NumKeys {
			return 0, errs.ErrNoMem
		}
		return offset * (PointerSize + n.Info.KeySize), nil
	case Leaf:
		if offset != 0 {
			return 0, errs.ErrNoMem
		}
		return 0, nil
	default:
		return 0, errs.ErrBadNodeType
	}
}

// resolveVal returns the payload offset of the ith value; only leaves
// carry values.
func (n *Node) resolveVal(offset int) (int, error) {
	if n.Info.NodeType != Leaf {
		return 0, errs.ErrBadNodeType
	}
	if offset < 0 || offset >= n.Info.NumKeys {
		return 0, errs.ErrNoMem
	}
	return PointerSize + offset*(n.Info.KeySize+n.Info.ValueSize) + n.Info.KeySize, nil
}

// GetKey returns a fresh copy of the ith key.
func (n *Node) GetKey(offset int) (*block.Block, error) {
	pos, err := n.resolveKey(offset)
	if err != nil {
		return nil, err
	}
	return block.FromBytes(append([]byte(nil), n.Payload[pos:pos+n.Info.KeySize]...)), nil
}

// SetKey writes k into the ith key slot.
func (n *Node) SetKey(offset int, k *block.Block) error {
	pos, err := n.resolveKey(offset)
	if err != nil {
		return err
	}
	if k.Len() != n.Info.KeySize {
		return fmt.Errorf("node: key length %d does not match keysize %d", k.Len(), n.Info.KeySize)
	}
	copy(n.Payload[pos:pos+n.Info.KeySize], k.Bytes())
	return nil
}

// GetPtr returns the ith child pointer (a block number).
func (n *Node) GetPtr(offset int) (int, error) {
	pos, err := n.resolvePtr(offset)
	if err != nil {
		return 0, err
	}
	return int(binary.LittleEndian.Uint64(n.Payload[pos : pos+PointerSize])), nil
}

// SetPtr writes ptr into the ith child pointer slot.
func (n *Node) SetPtr(offset int, ptr int) error {
	pos, err := n.resolvePtr(offset)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(n.Payload[pos:pos+PointerSize], uint64(ptr))
	return nil
}

// GetVal returns a fresh copy of the ith value.
func (n *Node) GetVal(offset int) (*block.Block, error) {
	pos, err := n.resolveVal(offset)
	if err != nil {
		return nil, err
	}
	return block.FromBytes(append([]byte(nil), n.Payload[pos:pos+n.Info.ValueSize]...)), nil
}

// SetVal writes v into the ith value slot.
func (n *Node) SetVal(offset int, v *block.Block) error {
	pos, err := n.resolveVal(offset)
	if err != nil {
		return err
	}
	if v.Len() != n.Info.ValueSize {
		return fmt.Errorf("node: value length %d does not match valuesize %d", v.Len(), n.Info.ValueSize)
	}
	copy(n.Payload[pos:pos+n.Info.ValueSize], v.Bytes())
	return nil
}

func (n *Node) String() string {
	return fmt.Sprintf("Node(info=%s)", n.Info)
}
