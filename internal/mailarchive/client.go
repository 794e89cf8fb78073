package mailarchive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ProposalScanner/internal/scheme"
)

const defaultArchiveBaseURL = "https://lists.apache.org/api/mbox.lua"

// YearMonth identifies one monthly archive.
type YearMonth struct {
	Year  int
	Month int
}

// MonthList generates the year-month pairs spanning from then to now,
// inclusive at both ends.
func MonthList(now, then time.Time) []YearMonth {
	var months []YearMonth

	cursor := time.Date(then.Year(), then.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	for !cursor.After(end) {
		months = append(months, YearMonth{Year: cursor.Year(), Month: int(cursor.Month())})
		cursor = cursor.AddDate(0, 1, 0)
	}

	return months
}

// Downloader fetches monthly mbox archives from the mailing-list API.
type Downloader struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewDownloader wires an HTTP client; a nil client gets a 30s timeout default.
func NewDownloader(client *http.Client, log *slog.Logger) *Downloader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Downloader{baseURL: defaultArchiveBaseURL, client: client, logger: log}
}

// DownloadMonth fetches one monthly archive for the mailing list into
// outputDir and returns the archive unit. An existing file is reused unless
// overwrite is set: the archives are immutable once the month has passed.
func (d *Downloader) DownloadMonth(ctx context.Context, sch *scheme.Scheme, list string, ym YearMonth, outputDir string, overwrite bool) (Unit, error) {
	filename := fmt.Sprintf("%s_%s-%d-%d.mbox",
		list, strings.ReplaceAll(sch.MailDomain, ".", "_"), ym.Year, ym.Month)
	path := filepath.Join(outputDir, filename)

	if _, err := os.Stat(path); err == nil {
		if !overwrite {
			d.debug("mbox file already exists, skipping download", "path", path)
			return Unit{Year: ym.Year, Month: ym.Month, Path: path}, nil
		}
		d.debug("overwriting existing mbox file", "path", path)
	}

	query := url.Values{}
	query.Set("list", list)
	query.Set("domain", sch.MailDomain)
	query.Set("d", fmt.Sprintf("%d-%d", ym.Year, ym.Month))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return Unit{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "ProposalScanner/1.0")

	resp, err := d.client.Do(req)
	if err != nil {
		return Unit{}, fmt.Errorf("request archive: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Unit{}, fmt.Errorf("archive server returned %s", resp.Status)
	}

	file, err := os.Create(path)
	if err != nil {
		return Unit{}, fmt.Errorf("create %s: %w", path, err)
	}

	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		return Unit{}, fmt.Errorf("write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return Unit{}, fmt.Errorf("close %s: %w", path, err)
	}

	return Unit{Year: ym.Year, Month: ym.Month, Path: path}, nil
}

// DownloadWindow fetches every monthly archive covering the last daysBack
// days. Archives are by month, so a full month is downloaded even when only
// one day of it falls inside the window.
func (d *Downloader) DownloadWindow(ctx context.Context, sch *scheme.Scheme, list string, daysBack int, outputDir string, overwrite bool) ([]Unit, error) {
	if outputDir == "" {
		outputDir = list
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", outputDir, err)
	}

	now := time.Now().UTC()
	then := now.AddDate(0, 0, -daysBack)
	d.debug("downloading mail archives", "list", list, "from", then.Format(time.RFC3339), "to", now.Format(time.RFC3339))

	var units []Unit
	for _, ym := range MonthList(now, then) {
		unit, err := d.DownloadMonth(ctx, sch, list, ym, outputDir, overwrite)
		if err != nil {
			return nil, fmt.Errorf("archive %d/%d: %w", ym.Month, ym.Year, err)
		}
		units = append(units, unit)
	}

	return units, nil
}

func (d *Downloader) debug(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}
