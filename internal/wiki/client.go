package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const defaultConfluenceBaseURL = "https://wiki.apache.org/confluence"

// wikiDateLayout is the instant format the Confluence API emits.
const wikiDateLayout = "2006-01-02T15:04:05.000Z"

// PageInfo is the subset of the Confluence content representation the
// scanner consumes.
type PageInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Links struct {
		WebUI string `json:"webui"`
		Self  string `json:"self"`
	} `json:"_links"`
	Expandable struct {
		Children string `json:"children"`
		Page     string `json:"page"`
	} `json:"_expandable"`
	History struct {
		CreatedDate string `json:"createdDate"`
		CreatedBy   struct {
			DisplayName string `json:"displayName"`
		} `json:"createdBy"`
		LastUpdated struct {
			When string `json:"when"`
			By   struct {
				DisplayName string `json:"displayName"`
			} `json:"by"`
		} `json:"lastUpdated"`
	} `json:"history"`
	Body struct {
		View struct {
			Value string `json:"value"`
		} `json:"view"`
	} `json:"body"`
}

type pageEnvelope struct {
	Results    []PageInfo `json:"results"`
	Links      struct {
		Next string `json:"next"`
	} `json:"_links"`
	Expandable struct {
		Page string `json:"page"`
	} `json:"_expandable"`
}

// Client talks to the Confluence REST content API.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewClient wires an HTTP client; a nil client gets a 30s timeout default.
func NewClient(client *http.Client, log *slog.Logger) *Client {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: defaultConfluenceBaseURL, client: client, logger: log}
}

// BaseURL returns the wiki root, used to absolutize web UI links.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// MainPageInfo looks up the single page with the given title in the space.
// Zero or multiple matches are errors: the proposal index page must be
// unambiguous.
func (c *Client) MainPageInfo(ctx context.Context, spaceKey, pageTitle string) (PageInfo, error) {
	query := url.Values{}
	query.Set("type", "page")
	query.Set("spaceKey", spaceKey)
	query.Set("title", pageTitle)

	var envelope pageEnvelope
	if err := c.getJSON(ctx, c.baseURL+"/rest/api/content?"+query.Encode(), &envelope); err != nil {
		return PageInfo{}, err
	}

	if len(envelope.Results) == 0 {
		return PageInfo{}, fmt.Errorf("no results found for page %s in space %s", pageTitle, spaceKey)
	}
	if len(envelope.Results) > 1 {
		return PageInfo{}, fmt.Errorf("more than 1 page found with title %s in space %s", pageTitle, spaceKey)
	}

	return envelope.Results[0], nil
}

// PageBody fetches the rendered HTML body of the page.
func (c *Client) PageBody(ctx context.Context, info PageInfo) (string, error) {
	var page PageInfo
	target := fmt.Sprintf("%s/rest/api/content/%s?expand=body.view", c.baseURL, info.ID)
	if err := c.getJSON(ctx, target, &page); err != nil {
		return "", err
	}
	return page.Body.View.Value, nil
}

// ChildPages walks every child page of the supplied page, following the
// API's pagination links, fetching chunk pages per request with history and
// body expanded.
func (c *Client) ChildPages(ctx context.Context, info PageInfo, chunk int) ([]PageInfo, error) {
	var children pageEnvelope
	if err := c.getJSON(ctx, c.baseURL+info.Expandable.Children, &children); err != nil {
		return nil, fmt.Errorf("child info: %w", err)
	}

	query := url.Values{}
	query.Set("limit", fmt.Sprintf("%d", chunk))
	query.Set("expand", "history.lastUpdated,body.view")

	var pages []PageInfo
	next := children.Expandable.Page + "?" + query.Encode()

	for next != "" {
		var envelope pageEnvelope
		if err := c.getJSON(ctx, c.baseURL+next, &envelope); err != nil {
			return nil, fmt.Errorf("child pages: %w", err)
		}

		pages = append(pages, envelope.Results...)
		next = envelope.Links.Next
	}

	return pages, nil
}

func (c *Client) getJSON(ctx context.Context, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "ProposalScanner/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wiki returned %s for %s", resp.Status, target)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", target, err)
	}

	return nil
}

// ParseWikiDate parses a Confluence instant string into a UTC time.
func ParseWikiDate(value string) (time.Time, error) {
	ts, err := time.Parse(wikiDateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse wiki date %s: %w", value, err)
	}
	return ts.UTC(), nil
}
