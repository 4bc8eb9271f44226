package memcache_test

import (
	"fmt"

	"blocktree/pkg/block"
	"blocktree/pkg/cache/memcache"
)

func Example() {
	c := memcache.New(16, 2)

	payload := block.FromBytes([]byte("0123456789abcdef"))
	c.WriteBlock(0, payload)

	got, _ := block.New(0)
	c.ReadBlock(0, got)
	fmt.Println(string(got.Bytes()))

	// Output:
	// 0123456789abcdef
}
