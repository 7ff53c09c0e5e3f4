package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/msomdec/vecino-digital/internal/domain"
	"github.com/msomdec/vecino-digital/internal/repository/memory"
	"github.com/msomdec/vecino-digital/internal/service"
)

func TestProgressStore_GetUntouchedReturnsDefault(t *testing.T) {
	store, _ := newTestStore(t)

	for _, id := range []string{"1", "2", "never-seen"} {
		r := store.Get(id)
		if r.Status != domain.StatusPending || r.LastPosition != 0 {
			t.Fatalf("lesson %s: expected pending at 0, got %+v", id, r)
		}
	}
	if len(store.Records()) != 0 {
		t.Fatal("expected Get not to create records")
	}
}

func TestProgressStore_UpdatePreservesUnsetFields(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Update(ctx, "1", domain.WithPosition(42)); err != nil {
		t.Fatalf("Update position: %v", err)
	}
	r, err := store.Update(ctx, "1", domain.WithStatus(domain.StatusCompleted))
	if err != nil {
		t.Fatalf("Update status: %v", err)
	}

	if r.Status != domain.StatusCompleted || r.LastPosition != 42 {
		t.Fatalf("expected completed at 42, got %+v", r)
	}
	if got := store.Get("1"); got != r {
		t.Fatalf("expected Get to return %+v, got %+v", r, got)
	}
}

func TestProgressStore_FirstUpdateDefaultFills(t *testing.T) {
	store, _ := newTestStore(t)

	r, err := store.Update(context.Background(), "2", domain.WithPosition(10))
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if r.LessonID != "2" || r.Status != domain.StatusPending || r.LastPosition != 10 {
		t.Fatalf("expected pending record for 2 at 10, got %+v", r)
	}
}

func TestProgressStore_CompletedCount(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	store.Update(ctx, "1", domain.WithStatus(domain.StatusCompleted))
	store.Update(ctx, "2", domain.WithStatus(domain.StatusInProgress))
	store.Update(ctx, "x-not-in-catalog", domain.WithStatus(domain.StatusCompleted))
	store.Update(ctx, "1", domain.WithStatus(domain.StatusCompleted))

	if got := store.CompletedCount(); got != 2 {
		t.Fatalf("expected 2 completed, got %d", got)
	}
}

// The store is catalog-agnostic; validating ids is the navigator's job.
func TestProgressStore_AcceptsUnknownLessonIDs(t *testing.T) {
	store, _ := newTestStore(t)

	r, err := store.Update(context.Background(), "ghost", domain.WithStatus(domain.StatusInProgress))
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if r.LessonID != "ghost" {
		t.Fatalf("expected record for ghost, got %+v", r)
	}
	if _, ok := store.Records()["ghost"]; !ok {
		t.Fatal("expected ghost to be stored")
	}
}

func TestProgressStore_UpdateIf(t *testing.T) {
	store, kv := newTestStore(t)
	ctx := context.Background()
	store.Update(ctx, "1", domain.WithStatus(domain.StatusCompleted))
	before, _ := kv.Get(ctx, service.DefaultProgressKey)

	notCompleted := func(r domain.ProgressRecord) bool { return r.Status != domain.StatusCompleted }
	r, applied, err := store.UpdateIf(ctx, "1", notCompleted, domain.WithStatus(domain.StatusInProgress))
	if err != nil {
		t.Fatalf("UpdateIf: %v", err)
	}
	if applied || r.Status != domain.StatusCompleted {
		t.Fatalf("expected refused update on a completed record, got applied=%v %+v", applied, r)
	}
	if after, _ := kv.Get(ctx, service.DefaultProgressKey); after != before {
		t.Fatalf("expected no write for a refused update, got %s", after)
	}

	r, applied, err = store.UpdateIf(ctx, "2", notCompleted, domain.WithStatus(domain.StatusInProgress))
	if err != nil {
		t.Fatalf("UpdateIf: %v", err)
	}
	if !applied || r.Status != domain.StatusInProgress {
		t.Fatalf("expected applied update for lesson 2, got applied=%v %+v", applied, r)
	}
}

func TestNavigator_ConcurrentPressPlayNeverDowngrades(t *testing.T) {
	c := newTestCatalog(t)
	store, _ := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 200; i++ {
		store.Update(ctx, "1", domain.WithStatus(domain.StatusPending))
		viewer := service.NewNavigator(c, store)
		finisher := service.NewNavigator(c, store)
		viewer.SelectLesson("1")
		finisher.SelectLesson("1")
		finisher.PressPlay(ctx)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			viewer.PressPlay(ctx)
		}()
		go func() {
			defer wg.Done()
			finisher.PlaybackEnded(ctx)
		}()
		wg.Wait()

		// PlaybackEnded either ran last or PressPlay saw it; both end completed.
		if got := store.Get("1").Status; got != domain.StatusCompleted {
			t.Fatalf("run %d: expected COMPLETED, got %s", i, got)
		}
	}
}

func TestProgressStore_RoundTrip(t *testing.T) {
	kv := memory.New()
	ctx := context.Background()

	store := service.LoadProgressStore(ctx, kv, service.DefaultProgressKey)
	store.Update(ctx, "1", domain.ProgressUpdate{})
	store.Update(ctx, "2", domain.WithPosition(12.5))
	store.Update(ctx, "2", domain.WithStatus(domain.StatusInProgress))
	store.Update(ctx, "3", domain.WithStatus(domain.StatusCompleted))

	reloaded := service.LoadProgressStore(ctx, kv, service.DefaultProgressKey)

	want := store.Records()
	got := reloaded.Records()
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for id, r := range want {
		if got[id] != r {
			t.Fatalf("lesson %s: expected %+v, got %+v", id, r, got[id])
		}
	}
}

func TestProgressStore_PersistsEveryUpdate(t *testing.T) {
	store, kv := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		store.Update(ctx, "1", domain.WithPosition(float64(i)))
	}
	if kv.Writes() != 5 {
		t.Fatalf("expected 5 writes, got %d", kv.Writes())
	}
}

func TestProgressStore_WireFormat(t *testing.T) {
	store, kv := newTestStore(t)
	ctx := context.Background()

	store.Update(ctx, "1", domain.ProgressUpdate{
		Status:       ptr(domain.StatusInProgress),
		LastPosition: ptr(7.0),
	})

	raw, err := kv.Get(ctx, service.DefaultProgressKey)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	var decoded map[string]map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatalf("unmarshal stored value: %v", err)
	}
	entry := decoded["1"]
	if entry["lessonId"] != "1" || entry["status"] != "IN_PROGRESS" || entry["lastPosition"] != 7.0 {
		t.Fatalf("unexpected stored entry: %v", entry)
	}
}

func TestLoadProgressStore_BadDataStartsEmpty(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "{{{"},
		{"array", `[1, 2]`},
		{"unknown status", `{"1": {"lessonId": "1", "status": "WATCHED", "lastPosition": 0}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := memory.New()
			ctx := context.Background()
			kv.Set(ctx, service.DefaultProgressKey, tt.raw)

			store := service.LoadProgressStore(ctx, kv, service.DefaultProgressKey)
			if len(store.Records()) != 0 {
				t.Fatalf("expected empty store, got %v", store.Records())
			}
			if store.CompletedCount() != 0 {
				t.Fatal("expected no completed lessons")
			}
		})
	}
}

func TestLoadProgressStore_NegativePositionKeepsOtherRecords(t *testing.T) {
	kv := memory.New()
	ctx := context.Background()
	kv.Set(ctx, service.DefaultProgressKey,
		`{"1": {"lessonId": "1", "status": "COMPLETED", "lastPosition": 0}, "2": {"lessonId": "2", "status": "IN_PROGRESS", "lastPosition": -1}}`)

	store := service.LoadProgressStore(ctx, kv, service.DefaultProgressKey)
	if store.CompletedCount() != 1 {
		t.Fatalf("expected 1 completed lesson, got %d", store.CompletedCount())
	}
	r := store.Get("2")
	if r.Status != domain.StatusInProgress || r.LastPosition != 0 {
		t.Fatalf("expected in-progress record at 0, got %+v", r)
	}

	if _, err := store.Update(ctx, "2", domain.WithPosition(5)); err != nil {
		t.Fatalf("Update: %v", err)
	}
	reloaded := service.LoadProgressStore(ctx, kv, service.DefaultProgressKey)
	if reloaded.Get("1").Status != domain.StatusCompleted {
		t.Fatalf("expected lesson 1 to stay completed, got %+v", reloaded.Get("1"))
	}
}

func TestLoadProgressStore_KeyFromMap(t *testing.T) {
	kv := memory.New()
	ctx := context.Background()
	kv.Set(ctx, "custom", `{"2": {"status": "COMPLETED", "lastPosition": 0}}`)

	store := service.LoadProgressStore(ctx, kv, "custom")
	r := store.Get("2")
	if r.LessonID != "2" || r.Status != domain.StatusCompleted {
		t.Fatalf("expected completed record for 2, got %+v", r)
	}
}

func TestLoadProgressStore_ReadFailureStartsEmpty(t *testing.T) {
	store := service.LoadProgressStore(context.Background(), brokenKV{}, "")
	if len(store.Records()) != 0 {
		t.Fatal("expected empty store")
	}
}

func TestProgressStore_WriteFailureKeepsRecord(t *testing.T) {
	store := service.LoadProgressStore(context.Background(), brokenKV{}, "")

	r, err := store.Update(context.Background(), "1", domain.WithStatus(domain.StatusInProgress))
	if !errors.Is(err, errStorageDown) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if r.Status != domain.StatusInProgress {
		t.Fatalf("expected returned record to be in progress, got %+v", r)
	}
	if store.Get("1").Status != domain.StatusInProgress {
		t.Fatal("expected in-memory record to be updated")
	}
}

func ptr[T any](v T) *T { return &v }
