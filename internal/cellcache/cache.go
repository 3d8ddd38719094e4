// Package cellcache persists the content-hash cache backing
// is_cell_cached (spec.md §4.9, §4.12) so that a long-running session can
// skip re-registering a cell whose code hasn't changed even across
// process restarts.
package cellcache

import "github.com/reactive-notebook/nbcore/api"

// Store is the content-hash cache contract the graph coordinator depends
// on. Implementations need not be safe for concurrent use on their own;
// the coordinator serializes access under its own mutex.
type Store interface {
	IsCached(id api.CellId, key string) bool
	Record(id api.CellId, key string)
	Forget(id api.CellId)
	Close() error
}

// MemStore is a process-local Store, used when no on-disk persistence is
// requested.
type MemStore struct {
	keys map[api.CellId]string
}

// NewMemStore returns an empty in-memory cache.
func NewMemStore() *MemStore {
	return &MemStore{keys: map[api.CellId]string{}}
}

func (m *MemStore) IsCached(id api.CellId, key string) bool {
	return m.keys[id] == key && key != ""
}

func (m *MemStore) Record(id api.CellId, key string) {
	m.keys[id] = key
}

func (m *MemStore) Forget(id api.CellId) {
	delete(m.keys, id)
}

func (m *MemStore) Close() error { return nil }
