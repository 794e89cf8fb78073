package wiki

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ProposalScanner/internal/domain"
)

var releaseNumberExpr = regexp.MustCompile(`\d+(?:\.\d+)*`)

// Taxonomy holds the classification keyword lists. The three state term
// lists are checked in declaration order with first-hit-wins precedence:
// accepted, then under discussion, then not accepted. Placeholder markers
// flag table cells whose template boilerplate was never filled in.
type Taxonomy struct {
	AcceptedTerms        []string
	UnderDiscussionTerms []string
	NotAcceptedTerms     []string
	PlaceholderMarkers   []string
}

// DefaultTaxonomy returns the keyword lists observed across the historical
// proposal pages.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		AcceptedTerms: []string{
			"accepted", "approved", "adopted", "adopt", "implemented",
			"committed", "completed", "merged", "released", "accept",
			"vote passed",
		},
		UnderDiscussionTerms: []string{
			"discussion", "discuss", "discusion", "voting", "under vote",
			"draft", "wip", "under review",
		},
		NotAcceptedTerms: []string{
			"rejected", "discarded", "superseded", "subsumed", "withdrawn",
			"cancelled", "abandoned", "replaced", "moved to",
		},
		PlaceholderMarkers: []string{"xxxx", "tbd", "todo", "link to the"},
	}
}

// ClassifyState resolves free text against the taxonomy's ordered term
// lists. Returns StateUnknown when no list has a substring hit.
func (t Taxonomy) ClassifyState(text string) domain.State {
	lower := strings.ToLower(text)

	for _, term := range t.AcceptedTerms {
		if strings.Contains(lower, term) {
			return domain.StateAccepted
		}
	}
	for _, term := range t.UnderDiscussionTerms {
		if strings.Contains(lower, term) {
			return domain.StateUnderDiscussion
		}
	}
	for _, term := range t.NotAcceptedTerms {
		if strings.Contains(lower, term) {
			return domain.StateNotAccepted
		}
	}

	return domain.StateUnknown
}

// isPlaceholder reports whether the cell text is unfilled template
// boilerplate.
func (t Taxonomy) isPlaceholder(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range t.PlaceholderMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// PageFacts are the wiki-derived classification results for one page.
// String fields default to domain.Unknown, the state to StateUnknown.
type PageFacts struct {
	State         domain.State
	JiraID        string
	JiraLink      string
	DiscussionURL string
	VoteURL       string
	ReleaseLabel  string
}

func unknownFacts() PageFacts {
	return PageFacts{
		State:         domain.StateUnknown,
		JiraID:        domain.Unknown,
		JiraLink:      domain.Unknown,
		DiscussionURL: domain.Unknown,
		VoteURL:       domain.Unknown,
		ReleaseLabel:  domain.Unknown,
	}
}

// Classifier derives a proposal's lifecycle facts from its wiki page HTML.
// Two page generations coexist: older free-prose pages and newer pages with
// a structured summary table; the strategy is selected by page shape.
type Classifier struct {
	taxonomy Taxonomy
	logger   *slog.Logger
}

// NewClassifier builds a classifier around the supplied taxonomy.
func NewClassifier(taxonomy Taxonomy, log *slog.Logger) *Classifier {
	return &Classifier{taxonomy: taxonomy, logger: log}
}

// Classify parses the page body and dispatches on page shape: a table with
// header cells selects the table strategy, anything else the prose strategy.
func (c *Classifier) Classify(body string) (PageFacts, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return unknownFacts(), fmt.Errorf("parse page body: %w", err)
	}

	if doc.Find("table th").Length() > 0 {
		return c.classifyTable(doc), nil
	}
	return c.classifyProse(doc), nil
}

// classifyProse scans paragraphs in document order. The first paragraph
// containing "current state" decides the state; the first containing "jira"
// supplies the issue link. Each field is resolved at most once.
func (c *Classifier) classifyProse(doc *goquery.Document) PageFacts {
	facts := unknownFacts()

	stateProcessed := false
	jiraProcessed := false

	doc.Find("p").EachWithBreak(func(_ int, para *goquery.Selection) bool {
		text := para.Text()
		lower := strings.ToLower(text)

		if !stateProcessed && strings.Contains(lower, "current state") {
			facts.State = c.taxonomy.ClassifyState(text)
			if facts.State == domain.StateUnknown {
				c.warn("could not discern proposal state", "paragraph", strings.TrimSpace(text))
			}
			stateProcessed = true
		} else if !jiraProcessed && strings.Contains(lower, "jira") {
			link := para.Find("a").First()
			href, exists := link.Attr("href")
			if exists && href != "" {
				facts.JiraLink = href
				if id := strings.TrimSpace(link.Text()); id != "" {
					facts.JiraID = id
				}
			} else {
				c.warn("could not discern issue link", "paragraph", strings.TrimSpace(text))
			}
			jiraProcessed = true
		}

		return !(stateProcessed && jiraProcessed)
	})

	return facts
}

// classifyTable walks the rows of the first table on the page. Rows without
// a header cell are skipped: their purpose cannot be inferred. Header text
// is matched by substring against "discussion", "vote", "jira" and
// "release", first branch wins, and each field resolves from at most the
// first qualifying row.
func (c *Classifier) classifyTable(doc *goquery.Document) PageFacts {
	facts := unknownFacts()

	table := doc.Find("table").First()
	if table.Length() == 0 {
		c.warn("page has no summary table, leaving fields unknown")
		return facts
	}

	var (
		discussionDone bool
		voteDone       bool
		jiraDone       bool
		releaseDone    bool
	)

	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		header := row.Find("th").First()
		if header.Length() == 0 {
			return
		}
		headerText := strings.ToLower(header.Text())
		cell := row.Find("td").First()

		switch {
		case !discussionDone && strings.Contains(headerText, "discussion"):
			facts.DiscussionURL = c.threadLink(cell)
			discussionDone = true
		case !voteDone && strings.Contains(headerText, "vote"):
			facts.VoteURL = c.threadLink(cell)
			voteDone = true
		case !jiraDone && strings.Contains(headerText, "jira"):
			facts.JiraID, facts.JiraLink = c.jiraField(cell)
			jiraDone = true
		case !releaseDone && strings.Contains(headerText, "release"):
			facts.ReleaseLabel = c.releaseField(cell)
			releaseDone = true
		}
	})

	facts.State = deriveTableState(facts.ReleaseLabel)
	return facts
}

func (c *Classifier) threadLink(cell *goquery.Selection) string {
	if cell.Length() == 0 {
		return domain.Unknown
	}
	if c.taxonomy.isPlaceholder(cell.Text()) {
		return domain.NotSet
	}
	if href, ok := cell.Find("a").First().Attr("href"); ok && href != "" {
		return href
	}
	c.warn("could not discern thread link", "cell", strings.TrimSpace(cell.Text()))
	return domain.Unknown
}

func (c *Classifier) jiraField(cell *goquery.Selection) (string, string) {
	if cell.Length() == 0 {
		return domain.Unknown, domain.Unknown
	}
	if c.taxonomy.isPlaceholder(cell.Text()) {
		return domain.NotSet, domain.NotSet
	}

	link := cell.Find("a").First()
	href, ok := link.Attr("href")
	if !ok || href == "" {
		c.warn("could not discern issue link", "cell", strings.TrimSpace(cell.Text()))
		return domain.Unknown, domain.Unknown
	}

	id := strings.TrimSpace(link.Text())
	if id == "" {
		id = href
	}
	return id, href
}

func (c *Classifier) releaseField(cell *goquery.Selection) string {
	if cell.Length() == 0 {
		return domain.Unknown
	}
	text := cell.Text()
	if c.taxonomy.isPlaceholder(text) {
		return domain.NotSet
	}

	number := releaseNumberExpr.FindString(text)
	if number == "" {
		c.warn("could not discern release from cell", "cell", strings.TrimSpace(text))
		return domain.Unknown
	}

	if strings.Contains(strings.ToLower(text), "operator") {
		return "operator " + number
	}
	return number
}

// deriveTableState classifies a proposal as released when a concrete
// release value was recorded. No other signal is consulted here, so
// table-shaped pages never resolve to accepted/under discussion/not
// accepted; extending this mapping is an open extension point.
func deriveTableState(release string) domain.State {
	if release != "" && release != domain.Unknown && release != domain.NotSet {
		return domain.StateReleased
	}
	return domain.StateUnknown
}

func (c *Classifier) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
