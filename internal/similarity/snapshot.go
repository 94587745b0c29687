package similarity

import (
	"sort"

	"github.com/datascope/datascope/internal/fingerprint"
)

// Export returns a copy of the whole store keyed by fingerprint id. The map
// and everything in it marshal cleanly to JSON.
func (e *Engine) Export() map[string]*fingerprint.Fingerprint {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]*fingerprint.Fingerprint, len(e.store))
	for id, fp := range e.store {
		out[id] = fp
	}
	return out
}

// Import upserts every fingerprint in the snapshot. New ids join the
// insertion order sorted, so a restore behaves the same regardless of map
// iteration order.
func (e *Engine) Import(snapshot map[string]*fingerprint.Fingerprint) {
	ids := make([]string, 0, len(snapshot))
	for id := range snapshot {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, id := range ids {
		fp := snapshot[id]
		if fp == nil {
			continue
		}
		if fp.ID == "" {
			fp.ID = id
		}
		e.storeLocked(fp)
	}
}
