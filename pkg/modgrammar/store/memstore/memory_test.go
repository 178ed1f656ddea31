package memstore

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/cognicore/modgrammar/pkg/modgrammar/store"
)

var _ store.Store = (*Store)(nil)

func TestStats_UpsertAndGet(t *testing.T) {
	ctx := context.Background()
	s := New()
	key := store.GroupKey{Item: "Tabula Rasa", Stats: "+# to Level of Socketed Gems"}

	if _, ok, _ := s.GetStats(ctx, key); ok {
		t.Fatal("expected no stats before upsert")
	}

	avg := 42.0
	err := s.UpsertStats(ctx, key, store.Stats{
		Average: &avg,
		Prices:  []float64{40, 44},
		Search:  json.RawMessage(`{"id":"q1","result":["a","b"]}`),
	})
	if err != nil {
		t.Fatalf("UpsertStats: %v", err)
	}

	got, ok, err := s.GetStats(ctx, key)
	if err != nil || !ok {
		t.Fatalf("GetStats: ok=%v err=%v", ok, err)
	}
	if got.Average == nil || *got.Average != 42 {
		t.Errorf("average = %v, want 42", got.Average)
	}
	if string(got.Search) != `{"id":"q1"}` {
		t.Errorf("search result should be stripped, got %s", got.Search)
	}

	got.Prices[0] = 0
	again, _, _ := s.GetStats(ctx, key)
	if again.Prices[0] != 40 {
		t.Error("returned stats should be a copy")
	}

	all, err := s.AllStats(ctx)
	if err != nil {
		t.Fatalf("AllStats: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 stats entry, got %d", len(all))
	}
}

func TestRuns_LatestAndGroups(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, ok, _ := s.LatestRun(ctx); ok {
		t.Fatal("expected no run in empty store")
	}

	groups := []store.GroupRecord{
		{Key: store.GroupKey{Item: "A", Stats: "x"}, Builds: 3, Mods: []store.ModRef{{Text: "x", TemplateID: "t1"}}},
		{Key: store.GroupKey{Item: "B", Stats: "y"}, Builds: 1},
	}
	if err := s.SaveRun(ctx, store.Run{ID: "r1", StartedAt: time.Now()}, groups[:1]); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if err := s.SaveRun(ctx, store.Run{ID: "r2", StartedAt: time.Now(), Groups: 2}, groups); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	run, ok, err := s.LatestRun(ctx)
	if err != nil || !ok {
		t.Fatalf("LatestRun: ok=%v err=%v", ok, err)
	}
	if run.ID != "r2" {
		t.Errorf("latest run = %s, want r2", run.ID)
	}

	got, err := s.GetGroups(ctx, "r2")
	if err != nil {
		t.Fatalf("GetGroups: %v", err)
	}
	if len(got) != 2 || got[0].Key.Item != "A" || got[1].Key.Item != "B" {
		t.Errorf("unexpected groups %+v", got)
	}

	groups[0].Mods[0].Text = "changed"
	got, _ = s.GetGroups(ctx, "r1")
	if got[0].Mods[0].Text != "x" {
		t.Error("stored groups should not alias caller slices")
	}
}
