package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-reporter/internal/domain/entities"
)

// MemoryStore is a simple in-memory key-value store with expiration
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*memoryItem
	done  chan struct{}
	once  sync.Once
}

type memoryItem struct {
	value      string
	expireTime time.Time
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	store := &MemoryStore{
		items: make(map[string]*memoryItem),
		done:  make(chan struct{}),
	}

	// Start cleanup goroutine to remove expired items
	go store.cleanupExpired(5 * time.Minute)

	return store
}

// Set stores a key-value pair with expiration
func (ms *MemoryStore) Set(key string, value string, expiration time.Duration) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.items[key] = &memoryItem{
		value:      value,
		expireTime: time.Now().Add(expiration),
	}
}

// Get retrieves a value by key (returns empty string if not found or expired)
func (ms *MemoryStore) Get(key string) (string, bool) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	item, exists := ms.items[key]
	if !exists {
		return "", false
	}

	// Check if expired
	if time.Now().After(item.expireTime) {
		return "", false
	}

	return item.value, true
}

// Delete removes a key
func (ms *MemoryStore) Delete(key string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.items, key)
}

// Close stops the cleanup goroutine
func (ms *MemoryStore) Close() {
	ms.once.Do(func() { close(ms.done) })
}

// cleanupExpired periodically removes expired items
func (ms *MemoryStore) cleanupExpired(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ms.done:
			return
		case <-ticker.C:
			ms.mu.Lock()
			now := time.Now()
			for key, item := range ms.items {
				if now.After(item.expireTime) {
					delete(ms.items, key)
				}
			}
			ms.mu.Unlock()
		}
	}
}

// MemoryRunRepository tracks pipeline runs in process memory.
// Used when Redis is not configured.
type MemoryRunRepository struct {
	store *MemoryStore
	ttl   time.Duration

	mu       sync.Mutex
	sessions map[string]map[uuid.UUID]time.Time
}

// NewMemoryRunRepository creates a run repository backed by a MemoryStore
func NewMemoryRunRepository(store *MemoryStore, ttl time.Duration) *MemoryRunRepository {
	return &MemoryRunRepository{
		store:    store,
		ttl:      ttl,
		sessions: make(map[string]map[uuid.UUID]time.Time),
	}
}

// Save stores a snapshot of run
func (r *MemoryRunRepository) Save(ctx context.Context, run *entities.PipelineRun) error {
	data, err := json.Marshal(run.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to encode run: %w", err)
	}
	r.store.Set(runKey(run.ID), string(data), r.ttl)

	if run.SessionID != "" {
		r.mu.Lock()
		runs, ok := r.sessions[run.SessionID]
		if !ok {
			runs = make(map[uuid.UUID]time.Time)
			r.sessions[run.SessionID] = runs
		}
		runs[run.ID] = run.StartedAt
		r.mu.Unlock()
	}
	return nil
}

// Get loads a run by id
func (r *MemoryRunRepository) Get(ctx context.Context, id uuid.UUID) (*entities.PipelineRun, error) {
	data, ok := r.store.Get(runKey(id))
	if !ok {
		return nil, fmt.Errorf("%w: %s", entities.ErrRunNotFound, id)
	}

	var run entities.PipelineRun
	if err := json.Unmarshal([]byte(data), &run); err != nil {
		return nil, fmt.Errorf("failed to decode run: %w", err)
	}
	return &run, nil
}

// ListBySession returns the session's runs, newest first
func (r *MemoryRunRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]*entities.PipelineRun, error) {
	type entry struct {
		id      uuid.UUID
		started time.Time
	}

	r.mu.Lock()
	entries := make([]entry, 0, len(r.sessions[sessionID]))
	for id, started := range r.sessions[sessionID] {
		entries = append(entries, entry{id: id, started: started})
	}
	r.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].started.After(entries[j].started)
	})

	runs := make([]*entities.PipelineRun, 0, len(entries))
	for _, e := range entries {
		if limit > 0 && len(runs) >= limit {
			break
		}
		run, err := r.Get(ctx, e.id)
		if err != nil {
			// expired
			continue
		}
		runs = append(runs, run)
	}
	return runs, nil
}
