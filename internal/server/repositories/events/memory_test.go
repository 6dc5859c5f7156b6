package events

import (
	"context"
	"testing"

	"github.com/healthdot/registry/internal/server/models"
)

func TestMemory_AppendAssignsSequence(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	for i := 0; i < 3; i++ {
		e := &models.Event{ID: "e", Kind: models.EventTransfer}
		if err := r.Append(ctx, e); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if e.Seq != int64(i+1) {
			t.Fatalf("want seq %d, got %d", i+1, e.Seq)
		}
	}
}

func TestMemory_SelectSince(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	for i := 0; i < 5; i++ {
		if err := r.Append(ctx, &models.Event{Kind: models.EventTransfer}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	got, err := r.SelectSince(ctx, 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Seq != 3 || got[1].Seq != 4 {
		t.Fatalf("unexpected page: %+v", got)
	}

	rest, err := r.SelectSince(ctx, 4, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rest) != 1 || rest[0].Seq != 5 {
		t.Fatalf("unexpected tail: %+v", rest)
	}

	none, err := r.SelectSince(ctx, 5, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("want empty, got %+v", none)
	}
}
