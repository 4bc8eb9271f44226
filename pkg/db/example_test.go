package db_test

import (
	"fmt"
	"os"
	"path/filepath"

	"blocktree/pkg/block"
	"blocktree/pkg/db"
)

func Example() {
	dir, err := os.MkdirTemp("", "blocktree-example")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	store, err := db.Open(filepath.Join(dir, "store.db"), db.Options{
		KeySize:   8,
		ValueSize: 8,
		BlockSize: 160,
		NumBlocks: 64,
	})
	if err != nil {
		panic(err)
	}
	defer store.Close()

	key := block.FromBytes([]byte("key00001"))
	val := block.FromBytes([]byte("val00001"))
	if err := store.Put(key, val); err != nil {
		panic(err)
	}

	got, err := store.Get(key)
	if err != nil {
		panic(err)
	}
	fmt.Println(string(got.Bytes()))

	// Output:
	// val00001
}
