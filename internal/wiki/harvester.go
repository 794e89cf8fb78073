package wiki

import (
	"context"
	"fmt"
	"log/slog"

	"ProposalScanner/internal/domain"
	"ProposalScanner/internal/scheme"
)

// Harvester walks a project's wiki page tree, classifies each proposal page
// and produces wiki records for registry merging.
type Harvester struct {
	client     *Client
	classifier *Classifier
	logger     *slog.Logger
}

// NewHarvester wires the wiki client and classifier.
func NewHarvester(client *Client, classifier *Classifier, log *slog.Logger) *Harvester {
	return &Harvester{client: client, classifier: classifier, logger: log}
}

// Harvest fetches every child page of the scheme's proposal index page and
// returns one record per page whose title matches the proposal pattern.
// Pages whose classification signals are missing come back with unknown
// fields rather than failing the walk.
func (h *Harvester) Harvest(ctx context.Context, sch *scheme.Scheme, chunk int) ([]domain.WikiRecord, error) {
	mainInfo, err := h.client.MainPageInfo(ctx, sch.WikiSpaceKey, sch.WikiPageTitle)
	if err != nil {
		return nil, fmt.Errorf("main page for %s: %w", sch.Name, err)
	}

	children, err := h.client.ChildPages(ctx, mainInfo, chunk)
	if err != nil {
		return nil, fmt.Errorf("child pages for %s: %w", sch.Name, err)
	}

	var records []domain.WikiRecord
	for _, child := range children {
		id, ok := sch.FirstID(child.Title)
		if !ok {
			continue
		}

		rec, err := h.recordFromPage(id, child)
		if err != nil {
			h.warn("skipping proposal page", "proposal", id, "error", err)
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

func (h *Harvester) recordFromPage(id int, page PageInfo) (domain.WikiRecord, error) {
	h.debug("processing proposal wiki page", "proposal", id, "title", page.Title)

	createdOn, err := ParseWikiDate(page.History.CreatedDate)
	if err != nil {
		return domain.WikiRecord{}, err
	}
	modifiedOn, err := ParseWikiDate(page.History.LastUpdated.When)
	if err != nil {
		return domain.WikiRecord{}, err
	}

	facts, err := h.classifier.Classify(page.Body.View.Value)
	if err != nil {
		return domain.WikiRecord{}, err
	}

	return domain.WikiRecord{
		ProposalID:     id,
		Title:          page.Title,
		WebURL:         h.client.BaseURL() + page.Links.WebUI,
		ContentURL:     page.Links.Self,
		CreatedOn:      createdOn,
		CreatedBy:      page.History.CreatedBy.DisplayName,
		LastModifiedOn: modifiedOn,
		LastModifiedBy: page.History.LastUpdated.By.DisplayName,
		State:          facts.State,
		JiraID:         facts.JiraID,
		JiraLink:       facts.JiraLink,
		DiscussionURL:  facts.DiscussionURL,
		VoteURL:        facts.VoteURL,
		ReleaseLabel:   facts.ReleaseLabel,
	}, nil
}

func (h *Harvester) warn(msg string, args ...any) {
	if h.logger != nil {
		h.logger.Warn(msg, args...)
	}
}

func (h *Harvester) debug(msg string, args ...any) {
	if h.logger != nil {
		h.logger.Debug(msg, args...)
	}
}
