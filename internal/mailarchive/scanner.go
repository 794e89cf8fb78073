package mailarchive

import (
	"fmt"
	"log/slog"

	"ProposalScanner/internal/domain"
	"ProposalScanner/internal/scheme"
)

// Scanner iterates all messages in one archive unit, drives the mention
// extractor and tags the output with the unit's year and month. Messages
// with unparsable timestamps or undecodable payloads are skipped with a log
// record; a single bad message never fails a unit.
type Scanner struct {
	extractor *Extractor
	logger    *slog.Logger
}

// NewScanner builds a scanner for the supplied numbering scheme.
func NewScanner(s *scheme.Scheme, log *slog.Logger) *Scanner {
	return &Scanner{extractor: NewExtractor(s), logger: log}
}

// ScanUnit processes every message of the archive unit and returns the
// deduplicated mentions found. Duplicate payload copies inside a message are
// already collapsed by payload extraction; identical mention rows produced
// by repeated payloads are collapsed here.
func (s *Scanner) ScanUnit(unit Unit) ([]domain.Mention, error) {
	messages, err := ReadMessagesFile(unit.Path)
	if err != nil {
		return nil, fmt.Errorf("scan unit %s: %w", unit.Path, err)
	}

	var mentions []domain.Mention
	seen := map[string]struct{}{}

	for _, raw := range messages {
		timestamp, err := ParseMessageDate(raw.Date)
		if err != nil {
			s.warn("skipping message with unparsable timestamp",
				"message", raw.Key, "date", raw.Date)
			continue
		}

		payloads, err := raw.Payloads()
		if err != nil {
			s.warn("skipping body extraction for undecodable payload",
				"message", raw.Key, "error", err)
			payloads = nil
		}
		if len(payloads) > 1 {
			s.warn("more than one distinct payload in message",
				"message", raw.Key, "payloads", len(payloads))
		}

		msg := Message{
			Key:       raw.Key,
			Subject:   raw.Subject,
			Sender:    raw.Sender,
			Timestamp: timestamp,
			Payloads:  payloads,
		}

		for _, mention := range s.extractor.Extract(msg, unit.Year, unit.Month) {
			key := mentionKey(mention)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			mentions = append(mentions, mention)
		}
	}

	return mentions, nil
}

func mentionKey(m domain.Mention) string {
	return fmt.Sprintf("%d|%s|%s|%d|%d|%d|%s|%s",
		m.ProposalID, m.Type, m.MessageID, m.ArchiveYear, m.ArchiveMonth,
		m.Timestamp.Unix(), m.Sender, m.Vote)
}

func (s *Scanner) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
