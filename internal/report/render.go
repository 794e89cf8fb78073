// Package report renders the standalone HTML status page: the proposal
// table with attention-band colors and vote tallies, plus the band key.
package report

import (
	"fmt"
	"html/template"
	"io"
	"math"
	"regexp"
	"strings"
	"time"

	"ProposalScanner/internal/domain"
	"ProposalScanner/internal/mentions"
	"ProposalScanner/internal/scheme"
	"ProposalScanner/internal/status"
	"ProposalScanner/internal/wiki"
)

// Row is one proposal line of the status table.
type Row struct {
	ID    int
	Title string
	URL   string
	State domain.State
	Band  domain.StatusBand
	Age   string
	Plus  []string
	Zero  []string
	Minus []string
}

// BandRow is one line of the status-key table.
type BandRow struct {
	Name  string
	Color string
	Days  string
}

// PageData carries everything the template needs.
type PageData struct {
	Heading     string
	Rows        []Row
	Bands       []BandRow
	GeneratedAt time.Time
}

// Renderer assembles and renders the status page.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded page template.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("status").Parse(statusPageTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse status template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// BuildPage combines the registry and the mention store into renderable
// page data. The band for each proposal follows its freshest subject
// mention, falling back to the wiki creation instant for proposals never
// mentioned.
func BuildPage(sch *scheme.Scheme, registry *wiki.Registry, store *mentions.Store, now time.Time) PageData {
	data := PageData{
		Heading:     fmt.Sprintf("%ss by mailing list attention", sch.Prefix),
		GeneratedAt: now,
	}

	for _, rec := range registry.Records() {
		row := Row{
			ID:    rec.ProposalID,
			Title: CleanTitle(sch, rec.Title),
			URL:   rec.WebURL,
			State: rec.State,
		}

		var lastSubject *time.Time
		if agg, ok := store.Aggregate(rec.ProposalID); ok {
			if m, ok := agg.Latest(domain.MentionSubject); ok {
				ts := m.Timestamp
				lastSubject = &ts
			}
			row.Plus = agg.Voters("+1")
			row.Zero = agg.Voters("0")
			row.Minus = agg.Voters("-1")
		}

		row.Band = status.For(lastSubject, rec.CreatedOn, now)
		if lastSubject != nil {
			row.Age = status.AgeString(now.Sub(*lastSubject))
		} else if !rec.CreatedOn.IsZero() {
			row.Age = status.AgeString(now.Sub(rec.CreatedOn))
		}

		data.Rows = append(data.Rows, row)
	}

	for _, band := range append([]domain.StatusBand{status.JustCreated}, status.Bands...) {
		days := "-"
		if band.MaxAge != math.MaxInt64 {
			days = fmt.Sprintf("%d", int(band.MaxAge.Hours()/24))
		}
		data.Bands = append(data.Bands, BandRow{Name: band.Name, Color: band.Color, Days: days})
	}

	return data
}

// Render writes the standalone HTML page.
func (r *Renderer) Render(w io.Writer, data PageData) error {
	if err := r.tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render status page: %w", err)
	}
	return nil
}

// CleanTitle strips the leading "PREFIX-<n>[:-]" marker from a proposal
// title so the table shows only the description.
func CleanTitle(sch *scheme.Scheme, title string) string {
	expr := regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(sch.Prefix) + `-\d+\W?[:-]?\W?`)
	return strings.TrimSpace(expr.ReplaceAllString(title, ""))
}

const statusPageTemplate = `<!DOCTYPE html>
<html>
    <head>
        <title>Proposal Status</title>
        <style type="text/css">
            table, th, td {
                border: 1px solid black;
                border-collapse: collapse;
            }

            .tooltip {
                position: relative;
                display: inline-block;
                border-bottom: 1px dotted black;
            }

            .tooltip .tooltiptext {
                visibility: hidden;
                width: 200px;
                background-color: black;
                color: #fff;
                text-align: center;
                padding: 5px 0;
                border-radius: 6px;
                position: absolute;
                z-index: 1;
                top: -5px;
                right: 105%;
            }

            .tooltip:hover .tooltiptext {
                visibility: visible;
            }
        </style>
    </head>
    <body>
        <h1>{{ .Heading }}</h1>
        <table>
            <tr>
                <th>Proposal</th>
                <th>Description</th>
                <th>State</th>
                <th>Status</th>
                <th>Last subject mention</th>
                <th>+1</th>
                <th>0</th>
                <th>-1</th>
            </tr>
            {{ range .Rows }}
            <tr>
                <td><a href="{{ .URL }}">{{ .ID }}</a></td>
                <td>{{ .Title }}</td>
                <td>{{ .State }}</td>
                <td style="background-color:{{ .Band.Color }};"></td>
                <td>{{ .Age }}</td>
                <td>
                {{ if .Plus }}
                    <div class="tooltip">{{ len .Plus }}
                        <span class="tooltiptext">
                        {{ range .Plus }}{{ . }}<br>{{ end }}
                        </span>
                    </div>
                {{ else }}0{{ end }}
                </td>
                <td>
                {{ if .Zero }}
                    <div class="tooltip">{{ len .Zero }}
                        <span class="tooltiptext">
                        {{ range .Zero }}{{ . }}<br>{{ end }}
                        </span>
                    </div>
                {{ else }}0{{ end }}
                </td>
                <td>
                {{ if .Minus }}
                    <div class="tooltip">{{ len .Minus }}
                        <span class="tooltiptext">
                        {{ range .Minus }}{{ . }}<br>{{ end }}
                        </span>
                    </div>
                {{ else }}0{{ end }}
                </td>
            </tr>
            {{ end }}
        </table>
        <h2>Status Key</h2>
        <table>
            <tr>
                <th>Status</th>
                <th>Mentioned within the last N days</th>
            </tr>
            {{ range .Bands }}
            <tr>
                <td style="background-color:{{ .Color }};">{{ .Name }}</td>
                <td>{{ .Days }}</td>
            </tr>
            {{ end }}
        </table>
        <p>Generated {{ .GeneratedAt.Format "2006-01-02 15:04:05 MST" }}</p>
    </body>
</html>
`
