// Package storage round-trips the mention store and the proposal registry
// to cache files, and optionally mirrors them into Postgres. The JSON
// framing preserves second-precision instants with their UTC offset and
// keeps the "not set" / "unknown" sentinels distinct.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"ProposalScanner/internal/domain"
	"ProposalScanner/internal/mentions"
	"ProposalScanner/internal/wiki"
)

// CacheSuffix is appended to an archive unit's file name to form its
// per-unit mention cache.
const CacheSuffix = ".cache.json"

// ErrCacheMiss is returned when a cache file does not exist yet.
var ErrCacheMiss = errors.New("cache file does not exist")

type mentionEntry struct {
	ProposalID   int       `json:"proposal_id"`
	Type         string    `json:"mention_type"`
	MessageID    string    `json:"message_id"`
	ArchiveYear  int       `json:"archive_year"`
	ArchiveMonth int       `json:"archive_month"`
	Timestamp    time.Time `json:"timestamp"`
	Sender       string    `json:"sender"`
	Vote         string    `json:"vote,omitempty"`
}

type aggregateEntry struct {
	ProposalID int                 `json:"proposal_id"`
	Latest     []mentionEntry      `json:"latest"`
	Votes      map[string][]string `json:"votes,omitempty"`
}

type recordEntry struct {
	ProposalID     int       `json:"proposal_id"`
	Title          string    `json:"title"`
	WebURL         string    `json:"web_url"`
	ContentURL     string    `json:"content_url"`
	CreatedOn      time.Time `json:"created_on"`
	CreatedBy      string    `json:"created_by"`
	LastModifiedOn time.Time `json:"last_modified_on"`
	LastModifiedBy string    `json:"last_modified_by"`
	State          string    `json:"state"`
	JiraID         string    `json:"jira_id"`
	JiraLink       string    `json:"jira_link"`
	DiscussionURL  string    `json:"discussion_thread_url"`
	VoteURL        string    `json:"vote_thread_url"`
	ReleaseLabel   string    `json:"release_label"`
}

// FileCache reads and writes the scanner's cache files.
type FileCache struct {
	logger *slog.Logger
}

// NewFileCache builds a cache helper.
func NewFileCache(log *slog.Logger) *FileCache {
	return &FileCache{logger: log}
}

// SaveMentions writes raw mentions of one archive unit to its cache file.
func (c *FileCache) SaveMentions(path string, ms []domain.Mention) error {
	entries := make([]mentionEntry, 0, len(ms))
	for _, m := range ms {
		entries = append(entries, toEntry(m))
	}
	return writeJSON(path, entries)
}

// LoadMentions reads raw mentions back from a unit cache file.
func (c *FileCache) LoadMentions(path string) ([]domain.Mention, error) {
	var entries []mentionEntry
	if err := readJSON(path, &entries); err != nil {
		return nil, err
	}

	ms := make([]domain.Mention, 0, len(entries))
	for _, e := range entries {
		ms = append(ms, fromEntry(e))
	}
	return ms, nil
}

// SaveStore writes the merged mention store to path.
func (c *FileCache) SaveStore(path string, store *mentions.Store) error {
	var entries []aggregateEntry
	for _, id := range store.ProposalIDs() {
		agg, _ := store.Aggregate(id)

		entry := aggregateEntry{ProposalID: id}
		for _, m := range agg.LatestAll() {
			entry.Latest = append(entry.Latest, toEntry(m))
		}
		for _, vote := range agg.VoteValues() {
			if entry.Votes == nil {
				entry.Votes = map[string][]string{}
			}
			entry.Votes[vote] = agg.Voters(vote)
		}
		entries = append(entries, entry)
	}
	return writeJSON(path, entries)
}

// LoadStore reads a persisted mention store from path.
func (c *FileCache) LoadStore(path string) (*mentions.Store, error) {
	var entries []aggregateEntry
	if err := readJSON(path, &entries); err != nil {
		return nil, err
	}

	store := mentions.NewStore()
	for _, entry := range entries {
		for _, e := range entry.Latest {
			if err := store.Record(fromEntry(e)); err != nil {
				return nil, err
			}
		}
		if agg, ok := store.Aggregate(entry.ProposalID); ok {
			for vote, senders := range entry.Votes {
				agg.AddVoters(vote, senders)
			}
		}
	}
	return store, nil
}

// SaveRegistry writes the proposal registry to path.
func (c *FileCache) SaveRegistry(path string, registry *wiki.Registry) error {
	records := registry.Records()
	entries := make([]recordEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, recordEntry{
			ProposalID:     rec.ProposalID,
			Title:          rec.Title,
			WebURL:         rec.WebURL,
			ContentURL:     rec.ContentURL,
			CreatedOn:      rec.CreatedOn,
			CreatedBy:      rec.CreatedBy,
			LastModifiedOn: rec.LastModifiedOn,
			LastModifiedBy: rec.LastModifiedBy,
			State:          string(rec.State),
			JiraID:         rec.JiraID,
			JiraLink:       rec.JiraLink,
			DiscussionURL:  rec.DiscussionURL,
			VoteURL:        rec.VoteURL,
			ReleaseLabel:   rec.ReleaseLabel,
		})
	}
	return writeJSON(path, entries)
}

// LoadRegistry reads a persisted registry from path.
func (c *FileCache) LoadRegistry(path string) (*wiki.Registry, error) {
	var entries []recordEntry
	if err := readJSON(path, &entries); err != nil {
		return nil, err
	}

	registry := wiki.NewRegistry()
	for _, e := range entries {
		registry.Insert(domain.WikiRecord{
			ProposalID:     e.ProposalID,
			Title:          e.Title,
			WebURL:         e.WebURL,
			ContentURL:     e.ContentURL,
			CreatedOn:      e.CreatedOn,
			CreatedBy:      e.CreatedBy,
			LastModifiedOn: e.LastModifiedOn,
			LastModifiedBy: e.LastModifiedBy,
			State:          domain.State(e.State),
			JiraID:         e.JiraID,
			JiraLink:       e.JiraLink,
			DiscussionURL:  e.DiscussionURL,
			VoteURL:        e.VoteURL,
			ReleaseLabel:   e.ReleaseLabel,
		})
	}
	return registry, nil
}

// Exists reports whether a cache file is present.
func (c *FileCache) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func toEntry(m domain.Mention) mentionEntry {
	return mentionEntry{
		ProposalID:   m.ProposalID,
		Type:         string(m.Type),
		MessageID:    m.MessageID,
		ArchiveYear:  m.ArchiveYear,
		ArchiveMonth: m.ArchiveMonth,
		Timestamp:    m.Timestamp,
		Sender:       m.Sender,
		Vote:         m.Vote,
	}
}

func fromEntry(e mentionEntry) domain.Mention {
	return domain.Mention{
		ProposalID:   e.ProposalID,
		Type:         domain.MentionType(e.Type),
		MessageID:    e.MessageID,
		ArchiveYear:  e.ArchiveYear,
		ArchiveMonth: e.ArchiveMonth,
		Timestamp:    e.Timestamp,
		Sender:       e.Sender,
		Vote:         e.Vote,
	}
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrCacheMiss, path)
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
