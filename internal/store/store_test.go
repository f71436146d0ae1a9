package store

import (
	"context"
	"fmt"
	"testing"
)

func TestMemoryStoreBounded(t *testing.T) {
	s := NewMemoryStore(3)
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		err := s.SaveExchange(ctx, &Exchange{ID: fmt.Sprintf("r%d", i), Question: fmt.Sprintf("q%d", i)})
		if err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	got, err := s.RecentExchanges(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 retained, got %d", len(got))
	}
	// newest first
	if got[0].ID != "r5" || got[2].ID != "r3" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestMemoryStoreLimit(t *testing.T) {
	s := NewMemoryStore(10)
	ctx := context.Background()
	for i := 1; i <= 4; i++ {
		_ = s.SaveExchange(ctx, &Exchange{ID: fmt.Sprintf("r%d", i)})
	}
	got, err := s.RecentExchanges(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "r4" || got[1].ID != "r3" {
		t.Fatalf("unexpected page: %+v", got)
	}
}

func TestMemoryStoreCopies(t *testing.T) {
	s := NewMemoryStore(10)
	ctx := context.Background()
	ex := &Exchange{ID: "r1", Answer: "gốc"}
	_ = s.SaveExchange(ctx, ex)
	ex.Answer = "đã sửa"
	got, _ := s.RecentExchanges(ctx, 1)
	if got[0].Answer != "gốc" {
		t.Fatalf("store must copy exchanges, got %q", got[0].Answer)
	}
}
