package report

import (
	"strings"
	"testing"
	"time"

	"ProposalScanner/internal/domain"
	"ProposalScanner/internal/mentions"
	"ProposalScanner/internal/scheme"
	"ProposalScanner/internal/wiki"
)

func kafkaScheme() *scheme.Scheme {
	return scheme.New("kafka", "KIP", "KAFKA", "Kafka Improvement Proposals",
		"kafka.apache.org", []string{"dev"})
}

func TestCleanTitle(t *testing.T) {
	t.Parallel()

	sch := kafkaScheme()

	cases := []struct {
		title string
		want  string
	}{
		{"KIP-500: Replace ZooKeeper", "Replace ZooKeeper"},
		{"KIP-500 - Replace ZooKeeper", "Replace ZooKeeper"},
		{"kip-500: lowercase prefix", "lowercase prefix"},
		{"KIP-500 Replace ZooKeeper", "Replace ZooKeeper"},
		{"No marker at all", "No marker at all"},
	}

	for _, tc := range cases {
		if got := CleanTitle(sch, tc.title); got != tc.want {
			t.Fatalf("CleanTitle(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}

func TestBuildPage(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	registry := wiki.NewRegistry()
	registry.Insert(domain.WikiRecord{
		ProposalID: 500,
		Title:      "KIP-500: Replace ZooKeeper",
		WebURL:     "https://wiki.example.org/display/KAFKA/KIP-500",
		State:      domain.StateAccepted,
		CreatedOn:  now.AddDate(-2, 0, 0),
	})
	registry.Insert(domain.WikiRecord{
		ProposalID: 1000,
		Title:      "KIP-1000: Brand new idea",
		State:      domain.StateUnderDiscussion,
		CreatedOn:  now.AddDate(0, 0, -5),
	})

	store := mentions.NewStore()
	store.RecordAll([]domain.Mention{
		{ProposalID: 500, Type: domain.MentionSubject, Timestamp: now.AddDate(0, 0, -14)},
		{ProposalID: 500, Type: domain.MentionVote, Timestamp: now.AddDate(0, 0, -14),
			Sender: "alice@example.org", Vote: "+1"},
		{ProposalID: 500, Type: domain.MentionVote, Timestamp: now.AddDate(0, 0, -13),
			Sender: "bob@example.org", Vote: "-1"},
	})

	data := BuildPage(kafkaScheme(), registry, store, now)

	if data.Heading != "KIPs by mailing list attention" {
		t.Fatalf("heading %q", data.Heading)
	}
	if len(data.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(data.Rows))
	}

	mentioned := data.Rows[0]
	if mentioned.ID != 500 || mentioned.Title != "Replace ZooKeeper" {
		t.Fatalf("first row %+v", mentioned)
	}
	if mentioned.Band.Name != "active" {
		t.Fatalf("band %q, want active for a two-week-old mention", mentioned.Band.Name)
	}
	if mentioned.Age != "2 weeks" {
		t.Fatalf("age %q, want 2 weeks", mentioned.Age)
	}
	if len(mentioned.Plus) != 1 || len(mentioned.Minus) != 1 || len(mentioned.Zero) != 0 {
		t.Fatalf("vote tallies %v / %v / %v", mentioned.Plus, mentioned.Zero, mentioned.Minus)
	}

	unmentioned := data.Rows[1]
	if unmentioned.Band.Name != "just created" {
		t.Fatalf("band %q, want just created for a young unmentioned proposal", unmentioned.Band.Name)
	}
	if unmentioned.Age != "5 days" {
		t.Fatalf("age %q, want the wiki creation age", unmentioned.Age)
	}

	// Band key: just created plus the four recency bands, dormant unbounded.
	if len(data.Bands) != 5 {
		t.Fatalf("got %d band rows, want 5", len(data.Bands))
	}
	last := data.Bands[len(data.Bands)-1]
	if last.Name != "dormant" || last.Days != "-" {
		t.Fatalf("last band row %+v", last)
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	registry := wiki.NewRegistry()
	registry.Insert(domain.WikiRecord{
		ProposalID: 500,
		Title:      "KIP-500: Replace ZooKeeper",
		WebURL:     "https://wiki.example.org/display/KAFKA/KIP-500",
		State:      domain.StateAccepted,
		CreatedOn:  now.AddDate(-1, 0, 0),
	})

	store := mentions.NewStore()
	store.RecordAll([]domain.Mention{
		{ProposalID: 500, Type: domain.MentionSubject, Timestamp: now.AddDate(0, 0, -7)},
		{ProposalID: 500, Type: domain.MentionVote, Timestamp: now.AddDate(0, 0, -7),
			Sender: "alice@example.org", Vote: "+1"},
	})

	var out strings.Builder
	if err := r.Render(&out, BuildPage(kafkaScheme(), registry, store, now)); err != nil {
		t.Fatalf("Render: %v", err)
	}

	html := out.String()
	for _, want := range []string{
		"<h1>KIPs by mailing list attention</h1>",
		`<a href="https://wiki.example.org/display/KAFKA/KIP-500">500</a>`,
		"Replace ZooKeeper",
		"background-color:green",
		"alice@example.org",
		"Status Key",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("rendered page missing %q", want)
		}
	}
}
