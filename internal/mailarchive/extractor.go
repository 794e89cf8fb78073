package mailarchive

import (
	"strings"
	"time"

	"ProposalScanner/internal/domain"
	"ProposalScanner/internal/scheme"
)

// Message is one decoded email handed to the extractor: subject header plus
// the already-cleaned candidate payload strings.
type Message struct {
	Key       string
	Subject   string
	Sender    string
	Timestamp time.Time
	Payloads  []string
}

// Extractor scans one message for proposal references and classifies each by
// role. It is pure: archive tagging and payload cleaning belong to the
// archive scanner.
type Extractor struct {
	scheme *scheme.Scheme
}

// NewExtractor builds an extractor for the supplied numbering scheme.
func NewExtractor(s *scheme.Scheme) *Extractor {
	return &Extractor{scheme: s}
}

// Extract emits zero or more mentions for the message, tagged with the
// supplied archive year and month.
//
// Only the first proposal ID in the subject is used; multiple proposals in
// one subject is an acknowledged unhandled case. A matching subject yields a
// subject mention, plus a vote mention when the subject carries the literal
// "VOTE" token, or a discuss mention when it carries "DISCUSS". Body
// mentions are emitted once per proposal-ID occurrence in each payload.
func (e *Extractor) Extract(msg Message, year, month int) []domain.Mention {
	var mentions []domain.Mention

	base := domain.Mention{
		MessageID:    msg.Key,
		ArchiveYear:  year,
		ArchiveMonth: month,
		Timestamp:    msg.Timestamp,
		Sender:       msg.Sender,
	}

	subjectID, subjectMatched := e.scheme.FirstID(msg.Subject)
	isVote := false

	if subjectMatched {
		m := base
		m.ProposalID = subjectID
		m.Type = domain.MentionSubject
		mentions = append(mentions, m)

		if strings.Contains(msg.Subject, "VOTE") {
			isVote = true
		} else if strings.Contains(msg.Subject, "DISCUSS") {
			m := base
			m.ProposalID = subjectID
			m.Type = domain.MentionDiscuss
			mentions = append(mentions, m)
		}
	}

	for _, payload := range msg.Payloads {
		if isVote {
			m := base
			m.ProposalID = subjectID
			m.Type = domain.MentionVote
			m.Vote = ParseVote(payload)
			mentions = append(mentions, m)
		}

		for _, id := range e.scheme.AllIDs(payload) {
			m := base
			m.ProposalID = id
			m.Type = domain.MentionBody
			mentions = append(mentions, m)
		}
	}

	return mentions
}

// ParseVote scans the payload line by line, skipping reply-quoted lines (a
// quote marker within the first 10 characters), for the space-delimited vote
// tokens " +1 ", " -1 " and " 0 ". The first matching line decides; an empty
// string means no vote was cast in the payload.
func ParseVote(payload string) string {
	for _, line := range strings.Split(payload, "\n") {
		prefix := line
		if len(prefix) > 10 {
			prefix = prefix[:10]
		}
		if strings.Contains(prefix, ">") {
			continue
		}

		if strings.Contains(line, " +1 ") {
			return "+1"
		}
		if strings.Contains(line, " -1 ") {
			return "-1"
		}
		if strings.Contains(line, " 0 ") {
			return "0"
		}
	}

	return ""
}
