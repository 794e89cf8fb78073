package mailarchive

import (
	"strings"
	"testing"
)

const sampleMbox = `From dev-return-1234 Mon Aug  5 10:00:00 2019
Date: Mon, 5 Aug 2019 10:00:00 +0000
From: Colin McCabe <cmccabe@example.org>
Subject: [DISCUSS] KIP-500: Replace ZooKeeper

Hi all,

I would like to start a discussion on KIP-500.

From dev-return-1235 Tue Aug  6 11:30:00 2019
Date: Tue, 6 Aug 2019 11:30:00 +0000
From: Jun Rao <junrao@example.org>
Subject: Re: [DISCUSS] KIP-500: Replace ZooKeeper

Thanks Colin, this looks great.
`

func TestReadMessages(t *testing.T) {
	t.Parallel()

	messages, err := ReadMessages(strings.NewReader(sampleMbox))
	if err != nil {
		t.Fatalf("ReadMessages: %v", err)
	}

	if len(messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(messages))
	}

	first := messages[0]
	if first.Key != "0" {
		t.Fatalf("first message key %q, want 0", first.Key)
	}
	if first.Subject != "[DISCUSS] KIP-500: Replace ZooKeeper" {
		t.Fatalf("unexpected subject %q", first.Subject)
	}
	if first.Sender != "Colin McCabe <cmccabe@example.org>" {
		t.Fatalf("unexpected sender %q", first.Sender)
	}
	if messages[1].Key != "1" {
		t.Fatalf("second message key %q, want 1", messages[1].Key)
	}
}

func TestPayloadsPlainBody(t *testing.T) {
	t.Parallel()

	messages, err := ReadMessages(strings.NewReader(sampleMbox))
	if err != nil {
		t.Fatalf("ReadMessages: %v", err)
	}

	payloads, err := messages[0].Payloads()
	if err != nil {
		t.Fatalf("Payloads: %v", err)
	}
	if len(payloads) != 1 {
		t.Fatalf("got %d payloads, want 1", len(payloads))
	}
	if !strings.Contains(payloads[0], "start a discussion on KIP-500") {
		t.Fatalf("payload missing body text: %q", payloads[0])
	}
}

func TestPayloadsMultipartFiltersAndDedups(t *testing.T) {
	t.Parallel()

	mbox := "From dev-return-1 Mon Aug  5 10:00:00 2019\n" +
		"Date: Mon, 5 Aug 2019 10:00:00 +0000\n" +
		"From: a@example.org\n" +
		"Subject: multipart sample\n" +
		"Content-Type: multipart/alternative; boundary=\"SEP\"\n" +
		"\n" +
		"--SEP\n" +
		"Content-Type: text/plain\n" +
		"\n" +
		"the plain text body\n" +
		"--SEP\n" +
		"Content-Type: text/plain\n" +
		"\n" +
		"the plain text body\n" +
		"--SEP\n" +
		"Content-Type: text/html\n" +
		"\n" +
		"<html><body>the plain text body</body></html>\n" +
		"--SEP\n" +
		"Content-Type: application/pgp-signature\n" +
		"\n" +
		"-----BEGIN PGP SIGNATURE-----\nabcdef\n-----END PGP SIGNATURE-----\n" +
		"--SEP--\n"

	messages, err := ReadMessages(strings.NewReader(mbox))
	if err != nil {
		t.Fatalf("ReadMessages: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(messages))
	}

	payloads, err := messages[0].Payloads()
	if err != nil {
		t.Fatalf("Payloads: %v", err)
	}

	// HTML mirror and PGP block are dropped, identical plain copies collapse.
	if len(payloads) != 1 {
		t.Fatalf("got %d payloads, want 1: %q", len(payloads), payloads)
	}
	if !strings.Contains(payloads[0], "the plain text body") {
		t.Fatalf("unexpected payload %q", payloads[0])
	}
}

func TestUnitFromPath(t *testing.T) {
	t.Parallel()

	unit, err := UnitFromPath("cache/dev_kafka_apache_org-2019-8.mbox")
	if err != nil {
		t.Fatalf("UnitFromPath: %v", err)
	}
	if unit.Year != 2019 || unit.Month != 8 {
		t.Fatalf("got %d-%d, want 2019-8", unit.Year, unit.Month)
	}

	if _, err := UnitFromPath("cache/notes.mbox"); err == nil {
		t.Fatal("expected error for file name without year and month")
	}
}
