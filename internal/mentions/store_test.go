package mentions

import (
	"testing"
	"time"

	"ProposalScanner/internal/domain"
)

func subjectMention(id int, ts time.Time, msgKey string) domain.Mention {
	return domain.Mention{
		ProposalID: id,
		Type:       domain.MentionSubject,
		MessageID:  msgKey,
		Timestamp:  ts,
	}
}

func voteMention(id int, ts time.Time, sender, vote string) domain.Mention {
	return domain.Mention{
		ProposalID: id,
		Type:       domain.MentionVote,
		Timestamp:  ts,
		Sender:     sender,
		Vote:       vote,
	}
}

func TestAggregateRecordKeepsMostRecent(t *testing.T) {
	t.Parallel()

	early := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	late := early.AddDate(0, 1, 0)

	agg := NewAggregate(500)
	if err := agg.Record(subjectMention(500, late, "b")); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := agg.Record(subjectMention(500, early, "a")); err != nil {
		t.Fatalf("Record: %v", err)
	}

	m, ok := agg.Latest(domain.MentionSubject)
	if !ok {
		t.Fatal("no subject mention recorded")
	}
	if m.MessageID != "b" {
		t.Fatalf("latest subject mention is %q, want the later message b", m.MessageID)
	}
}

func TestAggregateEqualTimestampKeepsFirst(t *testing.T) {
	t.Parallel()

	ts := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

	agg := NewAggregate(500)
	agg.Record(subjectMention(500, ts, "first"))
	agg.Record(subjectMention(500, ts, "second"))

	m, _ := agg.Latest(domain.MentionSubject)
	if m.MessageID != "first" {
		t.Fatalf("equal timestamps must keep the first-seen mention, got %q", m.MessageID)
	}
}

func TestAggregateRejectsForeignProposal(t *testing.T) {
	t.Parallel()

	agg := NewAggregate(500)
	if err := agg.Record(subjectMention(501, time.Now(), "x")); err == nil {
		t.Fatal("expected error recording a mention for a different proposal")
	}

	other := NewAggregate(501)
	if err := agg.Merge(other); err == nil {
		t.Fatal("expected error merging aggregates for different proposals")
	}
}

func TestAggregateVoteTally(t *testing.T) {
	t.Parallel()

	ts := time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)

	agg := NewAggregate(500)
	agg.Record(voteMention(500, ts, `"Jun Rao" <jun@example.org>`, "+1"))
	agg.Record(voteMention(500, ts.Add(time.Hour), "Colin McCabe <colin@example.org>", "+1"))
	agg.Record(voteMention(500, ts.Add(2*time.Hour), "Colin McCabe <colin@example.org>", "+1"))
	agg.Record(voteMention(500, ts.Add(3*time.Hour), "Ismael <ismael@example.org>", "-1"))
	// Empty vote value records the mention but contributes nothing to the tally.
	agg.Record(voteMention(500, ts.Add(4*time.Hour), "Silent <s@example.org>", ""))

	if got := agg.VoteValues(); len(got) != 2 || got[0] != "+1" || got[1] != "-1" {
		t.Fatalf("VoteValues = %v, want [+1 -1]", got)
	}

	plus := agg.Voters("+1")
	if len(plus) != 2 {
		t.Fatalf("+1 voters %v, want two deduplicated senders", plus)
	}
	// Surrounding quotes in the sender are stripped.
	if plus[0] != "Colin McCabe <colin@example.org>" || plus[1] != "Jun Rao <jun@example.org>" {
		t.Fatalf("+1 voters %v", plus)
	}

	if minus := agg.Voters("-1"); len(minus) != 1 {
		t.Fatalf("-1 voters %v, want one entry", minus)
	}
}

func TestStoreMergeIsCommutativeAndIdempotent(t *testing.T) {
	t.Parallel()

	t1 := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.AddDate(0, 1, 0)

	batchA := []domain.Mention{
		subjectMention(500, t1, "a"),
		voteMention(500, t1, "alice@example.org", "+1"),
	}
	batchB := []domain.Mention{
		subjectMention(500, t2, "b"),
		voteMention(500, t2, "bob@example.org", "+1"),
		subjectMention(631, t1, "c"),
	}

	build := func(batches ...[]domain.Mention) *Store {
		s := NewStore()
		for _, batch := range batches {
			shard := NewStore()
			if err := shard.RecordAll(batch); err != nil {
				t.Fatalf("RecordAll: %v", err)
			}
			if err := s.Merge(shard); err != nil {
				t.Fatalf("Merge: %v", err)
			}
		}
		return s
	}

	ab := build(batchA, batchB)
	ba := build(batchB, batchA)
	abb := build(batchA, batchB, batchB)

	for _, s := range []*Store{ab, ba, abb} {
		ids := s.ProposalIDs()
		if len(ids) != 2 || ids[0] != 500 || ids[1] != 631 {
			t.Fatalf("ProposalIDs = %v, want [500 631]", ids)
		}

		agg, _ := s.Aggregate(500)
		m, _ := agg.Latest(domain.MentionSubject)
		if m.MessageID != "b" {
			t.Fatalf("latest subject mention %q, want b regardless of merge order", m.MessageID)
		}
		if voters := agg.Voters("+1"); len(voters) != 2 {
			t.Fatalf("+1 voters %v, want the union of both shards", voters)
		}
	}
}

func TestStoreMergeDoesNotAliasSource(t *testing.T) {
	t.Parallel()

	ts := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

	src := NewStore()
	src.Record(subjectMention(500, ts, "a"))

	dst := NewStore()
	if err := dst.Merge(src); err != nil {
		t.Fatalf("Merge: %v", err)
	}

	// Mutating the source after the merge must not leak into the destination.
	src.Record(subjectMention(500, ts.Add(time.Hour), "later"))

	agg, _ := dst.Aggregate(500)
	m, _ := agg.Latest(domain.MentionSubject)
	if m.MessageID != "a" {
		t.Fatalf("merge aliased the source aggregate: got %q", m.MessageID)
	}
}

func TestMostRecentByType(t *testing.T) {
	t.Parallel()

	t1 := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.AddDate(0, 2, 0)

	s := NewStore()
	s.Record(subjectMention(500, t1, "a"))
	s.Record(voteMention(500, t2, "alice@example.org", "+1"))
	s.Record(subjectMention(631, t2, "b"))

	rows := s.MostRecentByType()
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	first := rows[0]
	if first.ProposalID != 500 {
		t.Fatalf("rows not ordered by proposal ID: %+v", rows)
	}
	if !first.Latest[domain.MentionSubject].Equal(t1) {
		t.Fatalf("subject recency %v, want %v", first.Latest[domain.MentionSubject], t1)
	}
	if !first.Latest[domain.MentionVote].Equal(t2) {
		t.Fatalf("vote recency %v, want %v", first.Latest[domain.MentionVote], t2)
	}
	if !first.Overall.Equal(t2) {
		t.Fatalf("overall recency %v, want the max %v", first.Overall, t2)
	}
	if _, ok := first.Latest[domain.MentionDiscuss]; ok {
		t.Fatal("unobserved mention type must be absent from the row")
	}

	if !rows[1].Overall.Equal(t2) {
		t.Fatalf("second row overall %v, want %v", rows[1].Overall, t2)
	}
}
