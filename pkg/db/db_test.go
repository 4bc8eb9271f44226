package db

import (
	"path/filepath"
	"testing"

	"blocktree/pkg/block"
	"blocktree/pkg/errs"
)

const (
	testKeySize   = 8
	testValueSize = 8
	testBlockSize = 160
	testNumBlocks = 256
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	d, err := Open(path, Options{
		KeySize:   testKeySize,
		ValueSize: testValueSize,
		BlockSize: testBlockSize,
		NumBlocks: testNumBlocks,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return d
}

func fixed(s string, size int) *block.Block {
	b := make([]byte, size)
	copy(b, s)
	return block.FromBytes(b)
}

func TestOpenCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	d, err := Open(path, Options{KeySize: testKeySize, ValueSize: testValueSize, BlockSize: testBlockSize, NumBlocks: testNumBlocks})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()
}

func TestPutAndGet(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	key := fixed("test_key", testKeySize)
	value := fixed("test_val", testValueSize)

	if err := d.Put(key, value); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := d.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.Equal(value) {
		t.Errorf("got %q, want %q", got.Bytes(), value.Bytes())
	}
}

func TestPutConflict(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	key := fixed("test_key", testKeySize)
	if err := d.Put(key, fixed("val00001", testValueSize)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := d.Put(key, fixed("val00002", testValueSize)); err == nil {
		t.Errorf("expected conflict on duplicate key")
	}
}

func TestDeleteIsUnimplemented(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	key := fixed("test_key", testKeySize)
	if err := d.Put(key, fixed("val00001", testValueSize)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := d.Delete(key); err == nil {
		t.Errorf("expected Delete to report unimplemented")
	}
}

func TestUpdateExistingKey(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	key := fixed("test_key", testKeySize)
	if err := d.Put(key, fixed("initial0", testValueSize)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := d.Update(key, fixed("updated0", testValueSize)); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := d.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.Equal(fixed("updated0", testValueSize)) {
		t.Errorf("got %q after update", got.Bytes())
	}
}

func TestLargeDatasetAndSanityCheck(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	const numPairs = 40
	for i := 0; i < numPairs; i++ {
		key := fixed(indexKey(i), testKeySize)
		value := fixed(indexVal(i), testValueSize)
		if err := d.Put(key, value); err != nil {
			t.Fatalf("Put(%d): %v", i, err)
		}
	}

	if err := d.SanityCheck(); err != nil {
		t.Fatalf("SanityCheck: %v", err)
	}

	for i := 0; i < numPairs; i++ {
		got, err := d.Get(fixed(indexKey(i), testKeySize))
		if err != nil {
			t.Fatalf("Get(%d): %v", i, err)
		}
		if !got.Equal(fixed(indexVal(i), testValueSize)) {
			t.Errorf("round trip mismatch at i=%d", i)
		}
	}
}

func TestReopenPersistsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	opts := Options{KeySize: testKeySize, ValueSize: testValueSize, BlockSize: testBlockSize, NumBlocks: testNumBlocks}

	d1, err := Open(path, opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	key := fixed("test_key", testKeySize)
	value := fixed("test_val", testValueSize)
	if err := d1.Put(key, value); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := d1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	d2, err := Open(path, opts)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer d2.Close()

	got, err := d2.Get(key)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if !got.Equal(value) {
		t.Errorf("got %q after reopen, want %q", got.Bytes(), value.Bytes())
	}
}

func TestGetNonExistent(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	_, err := d.Get(fixed("missing0", testKeySize))
	if err == nil {
		t.Errorf("expected error for missing key")
	}
	if err != errs.ErrNonExistent {
		t.Errorf("expected ErrNonExistent, got %v", err)
	}
}

func indexKey(i int) string { return padNumeric("key", i) }
func indexVal(i int) string { return padNumeric("val", i) }

func padNumeric(prefix string, i int) string {
	digits := "0123456789"
	out := make([]byte, 5)
	for p := 4; p >= 0; p-- {
		out[p] = digits[i%10]
		i /= 10
	}
	return (prefix + string(out))[:8]
}
