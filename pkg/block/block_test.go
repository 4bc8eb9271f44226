package block

import (
	"testing"
	"time"
)

func TestNewZeroInitialized(t *testing.T) {
	b, err := New(8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if b.Len() != 8 {
		t.Errorf("expected length 8, got %d", b.Len())
	}
	for i, c := range b.Bytes() {
		if c != 0 {
			t.Errorf("byte %d not zero-initialized: %d", i, c)
		}
	}
}

func TestNewNegativeLength(t *testing.T) {
	if _, err := New(-1); err == nil {
		t.Errorf("expected error for negative length")
	}
}

func TestResizePreservesPrefix(t *testing.T) {
	b, _ := New(4)
	copy(b.Bytes(), []byte{1, 2, 3, 4})

	if err := b.Resize(6, true); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	want := []byte{1, 2, 3, 4, 0, 0}
	if !b.Equal(FromBytes(want)) {
		t.Errorf("expected %v, got %v", want, b.Bytes())
	}

	if err := b.Resize(2, true); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if !b.Equal(FromBytes([]byte{1, 2})) {
		t.Errorf("expected truncated prefix [1 2], got %v", b.Bytes())
	}
}

func TestCopyIsIndependent(t *testing.T) {
	a, _ := New(3)
	copy(a.Bytes(), []byte{9, 9, 9})
	a.MarkDirty()
	a.Touch(time.Unix(100, 0))

	b, _ := New(0)
	b.Copy(a)

	if !b.Equal(a) {
		t.Errorf("expected copy to equal source")
	}
	if !b.Dirty() {
		t.Errorf("expected dirty flag to carry over")
	}
	if !b.LastAccessed().Equal(time.Unix(100, 0)) {
		t.Errorf("expected lastAccessed to carry over")
	}

	b.Bytes()[0] = 1
	if a.Bytes()[0] != 9 {
		t.Errorf("mutating copy must not affect source")
	}
}

func TestCompareLexicographic(t *testing.T) {
	cases := []struct {
		a, b []byte
		want int
	}{
		{[]byte{1, 2, 3}, []byte{1, 2, 3}, 0},
		{[]byte{1, 2, 3}, []byte{1, 2, 4}, -1},
		{[]byte{1, 2, 4}, []byte{1, 2, 3}, 1},
	}
	for _, c := range cases {
		got := FromBytes(c.a).Compare(FromBytes(c.b))
		if sign(got) != sign(c.want) {
			t.Errorf("Compare(%v, %v) = %d, want sign %d", c.a, c.b, got, c.want)
		}
	}
}

func TestCompareLengthMismatchPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic on length mismatch")
		}
	}()
	FromBytes([]byte{1, 2}).Compare(FromBytes([]byte{1, 2, 3}))
}

func TestReleaseZeroesLength(t *testing.T) {
	b, _ := New(4)
	b.Release()
	if b.Len() != 0 {
		t.Errorf("expected length 0 after Release, got %d", b.Len())
	}
	if b.Dirty() {
		t.Errorf("expected dirty cleared after Release")
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
