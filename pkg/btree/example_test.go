package btree_test

import (
	"fmt"

	"blocktree/pkg/block"
	"blocktree/pkg/btree"
	"blocktree/pkg/cache/memcache"
)

func Example() {
	c := memcache.New(160, 64)
	idx := btree.New(c, btree.Params{KeySize: 8, ValueSize: 8})
	idx.Attach(0, true)

	key := block.FromBytes([]byte("key00001"))
	val := block.FromBytes([]byte("val00001"))
	idx.Insert(key, val)

	got, _ := idx.Lookup(key)
	fmt.Println(string(got.Bytes()))

	// Output:
	// val00001
}
