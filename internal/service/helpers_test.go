package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/msomdec/vecino-digital/internal/catalog"
	"github.com/msomdec/vecino-digital/internal/domain"
	"github.com/msomdec/vecino-digital/internal/repository/memory"
	"github.com/msomdec/vecino-digital/internal/service"
)

func newTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	var lessons []domain.Lesson
	for i, id := range []string{"1", "2", "3"} {
		lessons = append(lessons, domain.Lesson{
			ID:          id,
			Title:       "Lesson " + id,
			Description: "Description " + id,
			Duration:    "1:00",
			Thumbnail:   "/thumb" + id + ".png",
			VideoURL:    "/video" + id + ".mp4",
			Order:       i + 1,
		})
	}
	c, err := catalog.New(lessons)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return c
}

func newTestStore(t *testing.T) (*service.ProgressStore, *memory.Store) {
	t.Helper()
	kv := memory.New()
	return service.LoadProgressStore(context.Background(), kv, service.DefaultProgressKey), kv
}

func newTestNavigator(t *testing.T) (*service.Navigator, *service.ProgressStore) {
	t.Helper()
	store, _ := newTestStore(t)
	return service.NewNavigator(newTestCatalog(t), store), store
}

var errStorageDown = errors.New("storage down")

// brokenKV fails every operation.
type brokenKV struct{}

func (brokenKV) Get(context.Context, string) (string, error) { return "", errStorageDown }
func (brokenKV) Set(context.Context, string, string) error   { return errStorageDown }
func (brokenKV) Close() error                                { return nil }

// fakePlayer records the calls a playback session makes.
type fakePlayer struct {
	current  float64
	duration float64
	playing  bool
	seeks    []float64
	calls    []string
}

func (p *fakePlayer) Play() error {
	p.playing = true
	p.calls = append(p.calls, "play")
	return nil
}

func (p *fakePlayer) Pause() error {
	p.playing = false
	p.calls = append(p.calls, "pause")
	return nil
}

func (p *fakePlayer) Seek(seconds float64) error {
	p.current = seconds
	p.seeks = append(p.seeks, seconds)
	p.calls = append(p.calls, "seek")
	return nil
}

func (p *fakePlayer) CurrentTime() float64 { return p.current }
func (p *fakePlayer) Duration() float64    { return p.duration }
