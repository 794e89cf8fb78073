package scheme

import "testing"

func TestFirstID(t *testing.T) {
	t.Parallel()

	sch := New("kafka", "KIP", "KAFKA", "Kafka Improvement Proposals",
		"kafka.apache.org", []string{"dev"})

	cases := []struct {
		text  string
		want  int
		found bool
	}{
		{"[DISCUSS] KIP-500: Replace ZooKeeper", 500, true},
		{"re: kip-714 metrics", 714, true},
		{"KIP-1 then KIP-2", 1, true},
		{"no proposal here", 0, false},
		{"FLIP-27 belongs to another scheme", 0, false},
		{"KIP- without a number", 0, false},
	}

	for _, tc := range cases {
		id, found := sch.FirstID(tc.text)
		if id != tc.want || found != tc.found {
			t.Fatalf("FirstID(%q) = %d,%v, want %d,%v", tc.text, id, found, tc.want, tc.found)
		}
	}
}

func TestAllIDsKeepsDuplicates(t *testing.T) {
	t.Parallel()

	sch := New("flink", "FLIP", "FLINK", "Flink Improvement Proposals",
		"flink.apache.org", []string{"dev"})

	ids := sch.AllIDs("FLIP-27 builds on FLIP-6, and FLIP-27 replaces parts of it")
	want := []int{27, 6, 27}
	if len(ids) != len(want) {
		t.Fatalf("AllIDs = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("AllIDs = %v, want %v", ids, want)
		}
	}

	if got := sch.AllIDs("nothing relevant"); got != nil {
		t.Fatalf("AllIDs on plain text = %v, want nil", got)
	}
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	for _, sch := range Defaults() {
		r.Register(sch)
	}

	kafka, err := r.Resolve("kafka")
	if err != nil {
		t.Fatalf("Resolve(kafka): %v", err)
	}
	if kafka.Prefix != "KIP" {
		t.Fatalf("kafka prefix %q, want KIP", kafka.Prefix)
	}

	if _, err := r.Resolve("hadoop"); err == nil {
		t.Fatal("expected error for unregistered scheme")
	}
}
