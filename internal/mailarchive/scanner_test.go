package mailarchive

import (
	"os"
	"path/filepath"
	"testing"

	"ProposalScanner/internal/domain"
	"ProposalScanner/internal/scheme"
)

func TestScanUnit(t *testing.T) {
	t.Parallel()

	mbox := "From dev-return-1 Mon Aug  5 10:00:00 2019\n" +
		"Date: Mon, 5 Aug 2019 10:00:00 +0000\n" +
		"From: Colin McCabe <cmccabe@example.org>\n" +
		"Subject: [DISCUSS] KIP-500: Replace ZooKeeper\n" +
		"\n" +
		"Starting a discussion on KIP-500.\n" +
		"\n" +
		"From dev-return-2 Tue Aug  6 11:30:00 2019\n" +
		"Date: not a parsable date\n" +
		"From: b@example.org\n" +
		"Subject: [DISCUSS] KIP-501: something else\n" +
		"\n" +
		"This one is dropped for its timestamp.\n"

	dir := t.TempDir()
	path := filepath.Join(dir, "dev_kafka_apache_org-2019-8.mbox")
	if err := os.WriteFile(path, []byte(mbox), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	sch := scheme.New("kafka", "KIP", "KAFKA", "Kafka Improvement Proposals",
		"kafka.apache.org", []string{"dev"})
	scanner := NewScanner(sch, nil)

	unit, err := UnitFromPath(path)
	if err != nil {
		t.Fatalf("UnitFromPath: %v", err)
	}

	mentions, err := scanner.ScanUnit(unit)
	if err != nil {
		t.Fatalf("ScanUnit: %v", err)
	}

	// First message: subject + discuss + one body mention. Second message is
	// skipped entirely for its unparsable date.
	if len(mentions) != 3 {
		t.Fatalf("got %d mentions, want 3: %+v", len(mentions), mentions)
	}
	for _, m := range mentions {
		if m.ProposalID != 500 {
			t.Fatalf("mention for proposal %d, want only 500", m.ProposalID)
		}
		if m.ArchiveYear != 2019 || m.ArchiveMonth != 8 {
			t.Fatalf("mention tagged %d-%d, want 2019-8", m.ArchiveYear, m.ArchiveMonth)
		}
	}

	counts := map[domain.MentionType]int{}
	for _, m := range mentions {
		counts[m.Type]++
	}
	if counts[domain.MentionSubject] != 1 || counts[domain.MentionDiscuss] != 1 || counts[domain.MentionBody] != 1 {
		t.Fatalf("unexpected mention mix: %v", counts)
	}
}

func TestScanUnitMissingFile(t *testing.T) {
	t.Parallel()

	sch := scheme.New("kafka", "KIP", "KAFKA", "Kafka Improvement Proposals",
		"kafka.apache.org", []string{"dev"})
	scanner := NewScanner(sch, nil)

	if _, err := scanner.ScanUnit(Unit{Year: 2019, Month: 8, Path: "no/such/file.mbox"}); err == nil {
		t.Fatal("expected error for missing archive file")
	}
}
