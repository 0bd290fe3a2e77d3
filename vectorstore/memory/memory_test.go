package memory_test

import (
	"context"
	"testing"

	"github.com/faisal1025/Q-AChatBotAirtribe/vectorstore"
	"github.com/faisal1025/Q-AChatBotAirtribe/vectorstore/memory"
)

func seed(t *testing.T, s *memory.Store) {
	t.Helper()
	ctx := context.Background()
	if err := s.EnsureCollection(ctx, 3); err != nil {
		t.Fatal(err)
	}
	err := s.Upsert(ctx, []vectorstore.Record{
		{Text: "north", Source: "https://a.example/1", Ordinal: 0, Vector: []float32{1, 0, 0}},
		{Text: "east", Source: "https://a.example/2", Ordinal: 0, Vector: []float32{0, 1, 0}},
		{Text: "up", Source: "https://b.example/1", Ordinal: 0, Vector: []float32{0, 0, 1}},
		{Text: "northeast", Source: "https://b.example/2", Ordinal: 0, Vector: []float32{1, 1, 0}},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestSearch_SelfSimilarityRanksFirst(t *testing.T) {
	s := memory.NewStore()
	seed(t, s)

	results, err := s.Search(context.Background(), []float32{1, 0, 0}, 4)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Text != "north" {
		t.Errorf("want exact vector first, got %q", results[0].Text)
	}
}

func TestSearch_RespectsLimitAndOrdering(t *testing.T) {
	s := memory.NewStore()
	seed(t, s)

	results, err := s.Search(context.Background(), []float32{1, 1, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("want 2 results, got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("scores increase at result %d", i)
		}
	}
	if results[0].Text != "northeast" {
		t.Errorf("want northeast first, got %q", results[0].Text)
	}
}

func TestSearch_RejectsEmptyVector(t *testing.T) {
	s := memory.NewStore()
	if _, err := s.Search(context.Background(), nil, 3); err == nil {
		t.Fatal("expected error for empty query vector")
	}
}

func TestUpsert_RejectsDimensionMismatch(t *testing.T) {
	s := memory.NewStore()
	if err := s.EnsureCollection(context.Background(), 3); err != nil {
		t.Fatal(err)
	}
	err := s.Upsert(context.Background(), []vectorstore.Record{
		{Text: "bad", Vector: []float32{1, 2}},
	})
	if err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestDeleteBySource_RemovesOnlyThatSource(t *testing.T) {
	s := memory.NewStore()
	seed(t, s)
	ctx := context.Background()

	if err := s.DeleteBySource(ctx, "https://a.example/1"); err != nil {
		t.Fatal(err)
	}
	results, err := s.Search(ctx, []float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("want 3 remaining records, got %d", len(results))
	}
	for _, r := range results {
		if r.Source == "https://a.example/1" {
			t.Errorf("deleted source still returned: %+v", r)
		}
	}
}
