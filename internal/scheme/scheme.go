package scheme

import (
	"fmt"
	"regexp"
	"strconv"
)

// Scheme describes one proposal-numbering scheme: the subject/title prefix
// (e.g. KIP, FLIP) plus the wiki and mailing-list coordinates of the project
// that uses it.
type Scheme struct {
	Name          string
	Prefix        string
	WikiSpaceKey  string
	WikiPageTitle string
	MailDomain    string
	MailingLists  []string

	pattern *regexp.Regexp
}

// New compiles a scheme for the given prefix. The proposal pattern is
// case-insensitive PREFIX-<digits>.
func New(name, prefix, spaceKey, pageTitle, mailDomain string, lists []string) *Scheme {
	return &Scheme{
		Name:          name,
		Prefix:        prefix,
		WikiSpaceKey:  spaceKey,
		WikiPageTitle: pageTitle,
		MailDomain:    mailDomain,
		MailingLists:  lists,
		pattern:       regexp.MustCompile(`(?i)` + regexp.QuoteMeta(prefix) + `-(\d+)`),
	}
}

// FirstID returns the first proposal ID found in text, or false if none.
func (s *Scheme) FirstID(text string) (int, bool) {
	match := s.pattern.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}
	id, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return id, true
}

// AllIDs returns every proposal ID found in text, in order of occurrence,
// one entry per occurrence (duplicates are preserved).
func (s *Scheme) AllIDs(text string) []int {
	matches := s.pattern.FindAllStringSubmatch(text, -1)
	if matches == nil {
		return nil
	}
	ids := make([]int, 0, len(matches))
	for _, m := range matches {
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// Registry keeps a mapping from scheme names to their definitions.
type Registry struct {
	schemes map[string]*Scheme
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{schemes: map[string]*Scheme{}}
}

// Register adds or replaces a scheme definition.
func (r *Registry) Register(s *Scheme) {
	if r.schemes == nil {
		r.schemes = map[string]*Scheme{}
	}
	r.schemes[s.Name] = s
}

// Resolve returns a scheme by name or an error if it is absent.
func (r *Registry) Resolve(name string) (*Scheme, error) {
	if s, ok := r.schemes[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("scheme %s is not registered", name)
}

// Defaults returns the two schemes the tool ships with.
func Defaults() []*Scheme {
	return []*Scheme{
		New("kafka", "KIP", "KAFKA", "Kafka Improvement Proposals", "kafka.apache.org",
			[]string{"dev", "user", "jira", "commits"}),
		New("flink", "FLIP", "FLINK", "Flink Improvement Proposals", "flink.apache.org",
			[]string{"dev", "user"}),
	}
}
