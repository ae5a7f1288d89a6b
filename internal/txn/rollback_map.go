package txn

// RollbackMap is a key-value registry with staged mutation. Reads see a
// three-tier view: staged deletions hide the key, staged updates shadow
// the committed value, committed state is the fallthrough. The last
// staging operation for a key wins; a staged update and a staged
// deletion are mutually exclusive.
type RollbackMap[V any] struct {
	committed map[int64]V

	// Per-transaction staging buffers.
	stagedUpdates   map[int64]V
	stagedDeletions map[int64]struct{}
}

// NewRollbackMap creates an empty RollbackMap.
func NewRollbackMap[V any]() *RollbackMap[V] {
	return &RollbackMap[V]{
		committed:       make(map[int64]V),
		stagedUpdates:   make(map[int64]V),
		stagedDeletions: make(map[int64]struct{}),
	}
}

// Get returns the live value for id: the staged value if one is staged,
// nothing if the id is staged for deletion, otherwise the committed
// value. O(1).
func (m *RollbackMap[V]) Get(id int64) (V, bool) {
	if _, deleted := m.stagedDeletions[id]; deleted {
		var zero V
		return zero, false
	}
	if v, ok := m.stagedUpdates[id]; ok {
		return v, true
	}
	v, ok := m.committed[id]
	return v, ok
}

// Set stages a value for id, clearing any staged deletion for it. The
// committed state is untouched until Commit. O(1).
func (m *RollbackMap[V]) Set(id int64, value V) {
	delete(m.stagedDeletions, id)
	m.stagedUpdates[id] = value
}

// Delete stages removal of id. Any staged update for id is dropped; the
// deletion is only tracked if id exists in committed state, so deleting
// a never-committed id is a no-op. O(1).
func (m *RollbackMap[V]) Delete(id int64) {
	delete(m.stagedUpdates, id)
	if _, ok := m.committed[id]; ok {
		m.stagedDeletions[id] = struct{}{}
	}
}

// Commit applies staged updates, then staged deletions, to committed
// state and clears both buffers. Deletions are evaluated after updates
// for deterministic ordering. O(K) in the number of staged changes.
func (m *RollbackMap[V]) Commit() {
	for id, v := range m.stagedUpdates {
		m.committed[id] = v
	}
	for id := range m.stagedDeletions {
		delete(m.committed, id)
	}
	m.Rollback()
}

// Rollback clears both staging buffers without touching committed
// state. O(1) amortised.
func (m *RollbackMap[V]) Rollback() {
	clear(m.stagedUpdates)
	clear(m.stagedDeletions)
}

// Each calls fn for every live entry: committed entries not staged for
// deletion, with staged updates shadowing committed values, plus staged
// inserts. Iteration order is unspecified.
func (m *RollbackMap[V]) Each(fn func(id int64, value V)) {
	for id, v := range m.committed {
		if _, deleted := m.stagedDeletions[id]; deleted {
			continue
		}
		if staged, ok := m.stagedUpdates[id]; ok {
			fn(id, staged)
			continue
		}
		fn(id, v)
	}
	for id, v := range m.stagedUpdates {
		if _, ok := m.committed[id]; !ok {
			fn(id, v)
		}
	}
}

// Len returns the number of live entries.
func (m *RollbackMap[V]) Len() int {
	n := 0
	m.Each(func(int64, V) { n++ })
	return n
}
