package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/comment-giveaway-api/internal/store"
)

func TestMemory_GetSet(t *testing.T) {
	s := store.NewMemory()
	ctx := context.Background()

	value, err := s.Get(ctx, "missing")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != nil {
		t.Errorf("Expected nil for missing key, got %q", value)
	}

	if err := s.Set(ctx, "k", []byte("v1"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, _ = s.Get(ctx, "k")
	if string(value) != "v1" {
		t.Errorf("Expected v1, got %q", value)
	}

	// Overwrite
	s.Set(ctx, "k", []byte("v2"), 0)
	value, _ = s.Get(ctx, "k")
	if string(value) != "v2" {
		t.Errorf("Expected v2 after overwrite, got %q", value)
	}
}

func TestMemory_SetTTL(t *testing.T) {
	s := store.NewMemory()
	ctx := context.Background()

	s.Set(ctx, "short", []byte("x"), 10*time.Millisecond)
	value, _ := s.Get(ctx, "short")
	if string(value) != "x" {
		t.Fatalf("Expected value before expiry, got %q", value)
	}

	time.Sleep(20 * time.Millisecond)
	value, _ = s.Get(ctx, "short")
	if value != nil {
		t.Errorf("Expected nil after expiry, got %q", value)
	}
}

func TestMemory_ListAppendAndRange(t *testing.T) {
	s := store.NewMemory()
	ctx := context.Background()

	length, err := s.ListAppend(ctx, "l", [][]byte{[]byte("a"), []byte("b"), []byte("c")})
	if err != nil {
		t.Fatalf("ListAppend failed: %v", err)
	}
	if length != 3 {
		t.Errorf("Expected length 3, got %d", length)
	}

	length, _ = s.ListAppend(ctx, "l", [][]byte{[]byte("d")})
	if length != 4 {
		t.Errorf("Expected length 4, got %d", length)
	}

	items, err := s.ListRange(ctx, "l", 1, 2)
	if err != nil {
		t.Fatalf("ListRange failed: %v", err)
	}
	if len(items) != 2 || string(items[0]) != "b" || string(items[1]) != "c" {
		t.Errorf("Expected [b c], got %v", items)
	}

	// Out-of-range offset returns no items
	items, _ = s.ListRange(ctx, "l", 10, 5)
	if len(items) != 0 {
		t.Errorf("Expected empty slice for out-of-range offset, got %d items", len(items))
	}

	// Negative limit reads to the end
	items, _ = s.ListRange(ctx, "l", 2, -1)
	if len(items) != 2 {
		t.Errorf("Expected 2 items for negative limit, got %d", len(items))
	}

	n, _ := s.ListLen(ctx, "l")
	if n != 4 {
		t.Errorf("Expected ListLen 4, got %d", n)
	}
}

func TestMemory_SetAdd(t *testing.T) {
	s := store.NewMemory()
	ctx := context.Background()

	wasNew, err := s.SetAdd(ctx, "s", "m1")
	if err != nil {
		t.Fatalf("SetAdd failed: %v", err)
	}
	if !wasNew {
		t.Error("Expected first add to be new")
	}

	wasNew, _ = s.SetAdd(ctx, "s", "m1")
	if wasNew {
		t.Error("Expected duplicate add to not be new")
	}

	s.SetAdd(ctx, "s", "m2")
	card, _ := s.SetCard(ctx, "s")
	if card != 2 {
		t.Errorf("Expected cardinality 2, got %d", card)
	}
}

func TestMemory_IndexRangeDesc(t *testing.T) {
	s := store.NewMemory()
	ctx := context.Background()

	s.IndexAdd(ctx, "i", "old", 100)
	s.IndexAdd(ctx, "i", "new", 300)
	s.IndexAdd(ctx, "i", "mid", 200)

	members, err := s.IndexRangeDesc(ctx, "i", -1)
	if err != nil {
		t.Fatalf("IndexRangeDesc failed: %v", err)
	}
	if len(members) != 3 || members[0] != "new" || members[1] != "mid" || members[2] != "old" {
		t.Errorf("Expected [new mid old], got %v", members)
	}

	members, _ = s.IndexRangeDesc(ctx, "i", 2)
	if len(members) != 2 {
		t.Errorf("Expected 2 members with limit, got %d", len(members))
	}

	// Re-adding with a new score moves the member
	s.IndexAdd(ctx, "i", "old", 400)
	members, _ = s.IndexRangeDesc(ctx, "i", 1)
	if members[0] != "old" {
		t.Errorf("Expected old to rank first after rescore, got %v", members)
	}
}
