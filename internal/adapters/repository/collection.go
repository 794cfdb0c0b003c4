package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/samber/lo"

	"github.com/osmium-toolchains/osmium-cli/internal/domain"
)

// collection is a JSON file holding one array of entities under a single key:
//
//	{ "<key>": [ ... ] }
//
// Entities are unique by a natural key compared with sameKey. All access goes
// through the mutex and in-memory state only changes once the file was written.
type collection[T any] struct {
	mu      sync.RWMutex
	path    string
	key     string
	id      func(*T) string
	sameKey func(a, b *T) bool
	items   []T
	log     *slog.Logger
}

func newCollection[T any](dataDir, key string, id func(*T) string, sameKey func(a, b *T) bool, log *slog.Logger) *collection[T] {
	return &collection[T]{
		path:    filepath.Join(dataDir, key+".json"),
		key:     key,
		id:      id,
		sameKey: sameKey,
		items:   []T{},
		log:     log.With("component", "repository", "file", key+".json"),
	}
}

// Path returns the backing file
func (c *collection[T]) Path() string {
	return c.path
}

// GetAll returns a copy of every entity, never nil
func (c *collection[T]) GetAll() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append(make([]T, 0, len(c.items)), c.items...)
}

// GetByID returns the entity with the given id
func (c *collection[T]) GetByID(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return lo.Find(c.items, func(item T) bool { return c.id(&item) == id })
}

// Delete removes the entity with the given id. Absent ids are ignored.
func (c *collection[T]) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := lo.Reject(c.items, func(item T, _ int) bool { return c.id(&item) == id })
	if len(kept) == len(c.items) {
		return nil
	}
	return c.commit(kept)
}

// modify applies fn to the entity with the given id and saves. Absent ids are ignored.
// An update that gives the entity the natural key of another one is rejected.
func (c *collection[T]) modify(id string, fn func(*T) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, i, ok := lo.FindIndexOf(c.items, func(item T) bool { return c.id(&item) == id })
	if !ok {
		return nil
	}
	updated := c.items[i]
	if err := fn(&updated); err != nil {
		return err
	}
	for j := range c.items {
		if j != i && c.sameKey(&c.items[j], &updated) {
			return fmt.Errorf("%w: %s entry %s already uses that value", domain.ErrInvalidUpdate, c.key, c.id(&c.items[j]))
		}
	}

	next := append(make([]T, 0, len(c.items)), c.items...)
	next[i] = updated
	return c.commit(next)
}

// upsert replaces the entity with the same natural key, keeping its id, or appends
// item with a fresh id. The stored entity is returned.
func (c *collection[T]) upsert(item T, setID func(*T, string), newID func() string) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := append(make([]T, 0, len(c.items)+1), c.items...)
	_, i, ok := lo.FindIndexOf(next, func(existing T) bool { return c.sameKey(&existing, &item) })
	if ok {
		setID(&item, c.id(&next[i]))
		next[i] = item
	} else {
		setID(&item, newID())
		next = append(next, item)
	}
	if err := c.commit(next); err != nil {
		var zero T
		return zero, err
	}
	return item, nil
}

// Load replaces the in-memory state with the file content. A missing file is
// created empty, together with its directory.
func (c *collection[T]) Load(fix func(*T)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return c.commit([]T{})
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", c.path, err)
	}

	var doc map[string][]T
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse %s: %w", c.path, err)
	}
	items := doc[c.key]
	if items == nil {
		items = []T{}
	}
	if fix != nil {
		for i := range items {
			fix(&items[i])
		}
	}
	c.items = items
	return nil
}

// commit writes items and makes them the in-memory state once the file is in place.
// Callers hold the write lock.
func (c *collection[T]) commit(items []T) error {
	if err := c.save(items); err != nil {
		return err
	}
	c.items = items
	return nil
}

// save writes items through a temporary file renamed over the target
func (c *collection[T]) save(items []T) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(map[string][]T{c.key: items}, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", c.path, err)
	}
	c.log.Debug("saved", "count", len(items))
	return nil
}
