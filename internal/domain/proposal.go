package domain

import "time"

// MentionType classifies the structural role of a proposal reference
// inside an archived email message.
type MentionType string

const (
	MentionSubject MentionType = "subject"
	MentionVote    MentionType = "vote"
	MentionDiscuss MentionType = "discuss"
	MentionBody    MentionType = "body"
)

// MentionTypes lists all types in a stable order for iteration and reports.
var MentionTypes = []MentionType{MentionSubject, MentionVote, MentionDiscuss, MentionBody}

// Mention is one observed reference to a proposal in one email message.
// Vote carries the normalized vote token ("+1", "0", "-1") and is only
// meaningful when Type is MentionVote.
type Mention struct {
	ProposalID   int
	Type         MentionType
	MessageID    string
	ArchiveYear  int
	ArchiveMonth int
	Timestamp    time.Time
	Sender       string
	Vote         string
}

// State is the lifecycle state of a proposal derived from its wiki page.
type State string

const (
	StateAccepted        State = "accepted"
	StateUnderDiscussion State = "under discussion"
	StateNotAccepted     State = "not accepted"
	StateReleased        State = "released"
	StateUnknown         State = "unknown"
)

// Field sentinels for wiki-derived values. NotSet means the page template
// placeholder was left unfilled by the author; Unknown means the field was
// absent or could not be parsed. The two must never be conflated.
const (
	NotSet  = "not set"
	Unknown = "unknown"
)

// WikiRecord holds one proposal's wiki-derived facts.
type WikiRecord struct {
	ProposalID     int
	Title          string
	WebURL         string
	ContentURL     string
	CreatedOn      time.Time
	CreatedBy      string
	LastModifiedOn time.Time
	LastModifiedBy string
	State          State
	JiraID         string
	JiraLink       string
	DiscussionURL  string
	VoteURL        string
	ReleaseLabel   string
}
