package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"

	"github.com/msomdec/vecino-digital/internal/domain"
)

// DefaultProgressKey is the storage key the progress mapping lives under.
const DefaultProgressKey = "vecino_digital_progress"

// ProgressStore maps lesson IDs to progress records and mirrors the whole
// mapping into a key-value store after every update.
//
// The store does not know about the catalog: updates for unknown lesson IDs
// are accepted. Callers that need catalog validation go through Navigator.
type ProgressStore struct {
	mu      sync.Mutex
	kv      domain.KeyValueStore
	key     string
	records map[string]domain.ProgressRecord
}

// LoadProgressStore reads the persisted mapping from kv. A missing key, a
// storage read error or unparsable data all yield an empty store.
func LoadProgressStore(ctx context.Context, kv domain.KeyValueStore, key string) *ProgressStore {
	if key == "" {
		key = DefaultProgressKey
	}
	s := &ProgressStore{kv: kv, key: key, records: make(map[string]domain.ProgressRecord)}

	raw, err := kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			slog.Warn("read stored progress, starting empty", "key", key, "error", err)
		}
		return s
	}

	records, err := decodeProgress(raw)
	if err != nil {
		slog.Warn("stored progress is unparsable, starting empty", "key", key, "error", err)
		return s
	}
	s.records = records
	return s
}

func decodeProgress(raw string) (map[string]domain.ProgressRecord, error) {
	records := make(map[string]domain.ProgressRecord)
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, err
	}
	for id, r := range records {
		if r.LastPosition < 0 {
			slog.Warn("stored progress has a negative position, resetting it", "lesson_id", id, "position", r.LastPosition)
			r.LastPosition = 0
		}
		// Older entries may omit the embedded id; the map key is authoritative.
		r.LessonID = id
		if r.Status == "" {
			r.Status = domain.StatusPending
		}
		records[id] = r
	}
	return records, nil
}

// Get returns the record for lessonID, or the implicit Pending record.
func (s *ProgressStore) Get(lessonID string) domain.ProgressRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.records[lessonID]; ok {
		return r
	}
	return domain.DefaultProgress(lessonID)
}

// Update merges u over the existing (or default) record for lessonID, stores
// it and writes the full mapping back. The returned record reflects the
// merge even when the write fails; the error only reports the write.
func (s *ProgressStore) Update(ctx context.Context, lessonID string, u domain.ProgressUpdate) (domain.ProgressRecord, error) {
	r, _, err := s.UpdateIf(ctx, lessonID, nil, u)
	return r, err
}

// UpdateIf applies u only when cond accepts the current (or default) record.
// The check and the write happen under one lock. A nil cond always applies.
// It reports whether the update was applied; a refused update is not
// written back.
func (s *ProgressStore) UpdateIf(ctx context.Context, lessonID string, cond func(domain.ProgressRecord) bool, u domain.ProgressUpdate) (domain.ProgressRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.records[lessonID]
	if !ok {
		current = domain.DefaultProgress(lessonID)
	}
	if cond != nil && !cond(current) {
		return current, false, nil
	}
	next := u.Apply(current)
	s.records[lessonID] = next

	if err := s.persistLocked(ctx); err != nil {
		return next, true, err
	}
	return next, true, nil
}

func (s *ProgressStore) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.records)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("write progress: %w", err)
	}
	return nil
}

// CompletedCount returns the number of records whose status is Completed.
func (s *ProgressStore) CompletedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.records {
		if r.Status == domain.StatusCompleted {
			n++
		}
	}
	return n
}

// Records returns a copy of every stored record keyed by lesson ID.
func (s *ProgressStore) Records() map[string]domain.ProgressRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.records)
}
