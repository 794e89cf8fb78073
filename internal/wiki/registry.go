package wiki

import (
	"fmt"
	"log/slog"
	"sort"

	"ProposalScanner/internal/domain"
)

// Registry is the accumulated set of wiki-derived proposal records, keyed by
// proposal ID. Discovery is append-only: once a record exists it is never
// replaced by a later pass, so repeated runs only ever add newly discovered
// proposals.
type Registry struct {
	records map[int]domain.WikiRecord
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{records: map[int]domain.WikiRecord{}}
}

// Insert adds the record unless its proposal ID is already known. Returns
// false when the ID was seen before.
func (r *Registry) Insert(rec domain.WikiRecord) bool {
	if _, ok := r.records[rec.ProposalID]; ok {
		return false
	}
	r.records[rec.ProposalID] = rec
	return true
}

// Get returns the record for the proposal, if known.
func (r *Registry) Get(proposalID int) (domain.WikiRecord, bool) {
	rec, ok := r.records[proposalID]
	return rec, ok
}

// Len returns the number of known proposals.
func (r *Registry) Len() int {
	return len(r.records)
}

// Records returns every known record ordered by proposal ID.
func (r *Registry) Records() []domain.WikiRecord {
	ids := make([]int, 0, len(r.records))
	for id := range r.records {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]domain.WikiRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.records[id])
	}
	return out
}

// Merge folds a batch of freshly classified records into the registry. An ID
// observed more than once across a discovery walk is legitimate (a page tree
// can expose the same child through more than one path); the first record
// wins and the duplicate is logged.
func (r *Registry) Merge(batch []domain.WikiRecord, log *slog.Logger) int {
	added := 0
	for _, rec := range batch {
		if r.Insert(rec) {
			added++
			continue
		}
		if log != nil {
			log.Warn("proposal discovered more than once, keeping first record",
				"proposal", rec.ProposalID, "title", rec.Title)
		}
	}
	return added
}

// MergeRegistry folds every record of other into this registry with the same
// first-write-wins rule.
func (r *Registry) MergeRegistry(other *Registry, log *slog.Logger) int {
	if other == nil {
		return 0
	}
	return r.Merge(other.Records(), log)
}

// String implements fmt.Stringer for log output.
func (r *Registry) String() string {
	return fmt.Sprintf("registry(%d proposals)", len(r.records))
}
