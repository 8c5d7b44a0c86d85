// Package client implements the caller-side view of workflow records and
// the policies that keep it consistent with the server after transitions.
package client

import (
	"sync"

	"github.com/taptosell/marketplace-workflow/internal/domain/workflow"
)

type recordKey struct {
	kind workflow.Kind
	id   int64
}

// View is a caller-local cache of workflow records plus the per-kind
// queue listing. It is safe for concurrent use.
type View struct {
	mu      sync.RWMutex
	records map[recordKey]workflow.Record
	queues  map[workflow.Kind][]workflow.Record
}

// NewView creates an empty view
func NewView() *View {
	return &View{
		records: make(map[recordKey]workflow.Record),
		queues:  make(map[workflow.Kind][]workflow.Record),
	}
}

// Get returns the cached record, if any
func (v *View) Get(kind workflow.Kind, id int64) (workflow.Record, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	rec, ok := v.records[recordKey{kind, id}]
	return rec, ok
}

// Put stores a record in the view, replacing any cached copy
func (v *View) Put(rec workflow.Record) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.records[recordKey{rec.Kind, rec.ID}] = rec
}

// Remove drops a record from the view
func (v *View) Remove(kind workflow.Kind, id int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.records, recordKey{kind, id})
}

// Queue returns a copy of the cached queue listing for a kind
func (v *View) Queue(kind workflow.Kind) []workflow.Record {
	v.mu.RLock()
	defer v.mu.RUnlock()
	q := v.queues[kind]
	out := make([]workflow.Record, len(q))
	copy(out, q)
	return out
}

// ReplaceQueue swaps the cached queue listing wholesale. Queue listings
// are never patched in place because one transition can change the
// legality of every other listed record.
func (v *View) ReplaceQueue(kind workflow.Kind, records []workflow.Record) {
	v.mu.Lock()
	defer v.mu.Unlock()
	q := make([]workflow.Record, len(records))
	copy(q, records)
	v.queues[kind] = q
}
