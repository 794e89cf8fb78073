// Package mentions accumulates proposal mentions across archive units and
// across repeated runs. Aggregation keeps the most recent observation per
// mention type and a union of vote tallies, so merging shards is associative,
// commutative and idempotent in any order.
package mentions

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"ProposalScanner/internal/domain"
)

// Aggregate holds the per-type most recent mention for one proposal plus the
// accumulated vote tallies. Created lazily on first observation, never
// deleted.
type Aggregate struct {
	ProposalID int
	latest     map[domain.MentionType]domain.Mention
	votes      map[string]map[string]struct{}
}

// NewAggregate builds an empty aggregate for the proposal.
func NewAggregate(proposalID int) *Aggregate {
	return &Aggregate{
		ProposalID: proposalID,
		latest:     map[domain.MentionType]domain.Mention{},
		votes:      map[string]map[string]struct{}{},
	}
}

// Record folds one mention into the aggregate. Ordering is by timestamp
// only; on an equal timestamp the first-seen mention is retained.
func (a *Aggregate) Record(m domain.Mention) error {
	if m.ProposalID != a.ProposalID {
		return fmt.Errorf("cannot record mention for proposal %d into aggregate for proposal %d",
			m.ProposalID, a.ProposalID)
	}

	existing, ok := a.latest[m.Type]
	if !ok || m.Timestamp.After(existing.Timestamp) {
		a.latest[m.Type] = m
	}

	if m.Type == domain.MentionVote && m.Vote != "" {
		sender := strings.ReplaceAll(m.Sender, `"`, "")
		if a.votes[m.Vote] == nil {
			a.votes[m.Vote] = map[string]struct{}{}
		}
		a.votes[m.Vote][sender] = struct{}{}
	}

	return nil
}

// Latest returns the most recent mention of the given type, if any was
// observed.
func (a *Aggregate) Latest(t domain.MentionType) (domain.Mention, bool) {
	m, ok := a.latest[t]
	return m, ok
}

// Merge combines another aggregate for the same proposal into this one,
// taking the max-by-timestamp independently per mention type and the union
// of vote tallies. Merging aggregates for different proposals is a caller
// bug and fails.
func (a *Aggregate) Merge(other *Aggregate) error {
	if other == nil {
		return nil
	}
	if other.ProposalID != a.ProposalID {
		return fmt.Errorf("cannot merge aggregate for proposal %d into aggregate for proposal %d",
			other.ProposalID, a.ProposalID)
	}

	for _, m := range other.latest {
		existing, ok := a.latest[m.Type]
		if !ok || m.Timestamp.After(existing.Timestamp) {
			a.latest[m.Type] = m
		}
	}

	for vote, senders := range other.votes {
		if a.votes[vote] == nil {
			a.votes[vote] = map[string]struct{}{}
		}
		for sender := range senders {
			a.votes[vote][sender] = struct{}{}
		}
	}

	return nil
}

// LatestAll returns the most recent mention of every observed type, in the
// stable mention-type order.
func (a *Aggregate) LatestAll() []domain.Mention {
	out := make([]domain.Mention, 0, len(a.latest))
	for _, t := range domain.MentionTypes {
		if m, ok := a.latest[t]; ok {
			out = append(out, m)
		}
	}
	return out
}

// VoteValues returns the vote values with at least one recorded voter,
// sorted for stable output.
func (a *Aggregate) VoteValues() []string {
	values := make([]string, 0, len(a.votes))
	for vote := range a.votes {
		values = append(values, vote)
	}
	sort.Strings(values)
	return values
}

// AddVoters injects tally entries directly, used when restoring a persisted
// store.
func (a *Aggregate) AddVoters(vote string, senders []string) {
	if vote == "" || len(senders) == 0 {
		return
	}
	if a.votes[vote] == nil {
		a.votes[vote] = map[string]struct{}{}
	}
	for _, sender := range senders {
		a.votes[vote][sender] = struct{}{}
	}
}

// Voters returns the deduplicated sender names that cast the given vote
// value, sorted for stable output.
func (a *Aggregate) Voters(vote string) []string {
	senders := make([]string, 0, len(a.votes[vote]))
	for sender := range a.votes[vote] {
		senders = append(senders, sender)
	}
	sort.Strings(senders)
	return senders
}

// Store accumulates aggregates per proposal ID.
type Store struct {
	aggregates map[int]*Aggregate
}

// NewStore builds an empty store.
func NewStore() *Store {
	return &Store{aggregates: map[int]*Aggregate{}}
}

// Record folds a single mention into the aggregate for its proposal,
// creating the aggregate on first sight.
func (s *Store) Record(m domain.Mention) error {
	agg, ok := s.aggregates[m.ProposalID]
	if !ok {
		agg = NewAggregate(m.ProposalID)
		s.aggregates[m.ProposalID] = agg
	}
	return agg.Record(m)
}

// RecordAll folds a batch of mentions into the store.
func (s *Store) RecordAll(ms []domain.Mention) error {
	for _, m := range ms {
		if err := s.Record(m); err != nil {
			return err
		}
	}
	return nil
}

// Merge combines every aggregate of other into this store. A fresh scan of
// only the newest archive unit can be merged into a previously persisted
// store without reprocessing history.
func (s *Store) Merge(other *Store) error {
	if other == nil {
		return nil
	}
	for id, agg := range other.aggregates {
		existing, ok := s.aggregates[id]
		if !ok {
			s.aggregates[id] = agg.clone()
			continue
		}
		if err := existing.Merge(agg); err != nil {
			return err
		}
	}
	return nil
}

// Aggregate returns the aggregate for the proposal, if any mention of it was
// observed.
func (s *Store) Aggregate(proposalID int) (*Aggregate, bool) {
	agg, ok := s.aggregates[proposalID]
	return agg, ok
}

// ProposalIDs returns every observed proposal ID in ascending order.
func (s *Store) ProposalIDs() []int {
	ids := make([]int, 0, len(s.aggregates))
	for id := range s.aggregates {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// RecencyRow gives, for one proposal, the latest timestamp per mention type
// plus the maximum across all types. Types with no observation are absent
// from Latest rather than present as zero values.
type RecencyRow struct {
	ProposalID int
	Latest     map[domain.MentionType]time.Time
	Overall    time.Time
}

// MostRecentByType produces one recency row per proposal, ordered by
// proposal ID.
func (s *Store) MostRecentByType() []RecencyRow {
	rows := make([]RecencyRow, 0, len(s.aggregates))

	for _, id := range s.ProposalIDs() {
		agg := s.aggregates[id]
		row := RecencyRow{ProposalID: id, Latest: map[domain.MentionType]time.Time{}}

		for _, t := range domain.MentionTypes {
			m, ok := agg.Latest(t)
			if !ok {
				continue
			}
			row.Latest[t] = m.Timestamp
			if m.Timestamp.After(row.Overall) {
				row.Overall = m.Timestamp
			}
		}

		rows = append(rows, row)
	}

	return rows
}

func (a *Aggregate) clone() *Aggregate {
	out := NewAggregate(a.ProposalID)
	for t, m := range a.latest {
		out.latest[t] = m
	}
	for vote, senders := range a.votes {
		out.votes[vote] = map[string]struct{}{}
		for sender := range senders {
			out.votes[vote][sender] = struct{}{}
		}
	}
	return out
}
