// Package sheets fetches the record collections as CSV exports of a
// published Google Sheets document, one tab per category.
package sheets

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/campusbot/internal/domain"
	"github.com/kailas-cloud/campusbot/internal/repository/tabular"
)

const defaultBaseURL = "https://docs.google.com/spreadsheets/d"

// Config holds the spreadsheet source settings.
type Config struct {
	SpreadsheetID string
	GIDs          map[domain.Category]string
	BaseURL       string        // override for tests; defaults to the Google export endpoint
	Timeout       time.Duration // per-category fetch timeout
}

// Client loads CSV documents over HTTP and parses them into records.
type Client struct {
	http   *http.Client
	urls   map[domain.Category]string
	logger *zap.Logger
}

// NewClient creates a sheets client. One export URL is derived per category
// from the spreadsheet id and the category's gid.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	urls := make(map[domain.Category]string, len(cfg.GIDs))
	for cat, gid := range cfg.GIDs {
		urls[cat] = fmt.Sprintf("%s/%s/export?format=csv&gid=%s", base, cfg.SpreadsheetID, gid)
	}

	return &Client{
		http:   &http.Client{Timeout: timeout},
		urls:   urls,
		logger: logger,
	}
}

// LoadAll fetches every category. A fetch or parse failure is isolated to
// its category: that collection comes back empty and the reload continues.
func (c *Client) LoadAll(ctx context.Context) *tabular.Snapshot {
	return &tabular.Snapshot{
		Students:      c.loadCategory(ctx, domain.CategoryStudent),
		Teachers:      c.loadCategory(ctx, domain.CategoryTeacher),
		GuestTeachers: c.loadCategory(ctx, domain.CategoryGuestTeacher),
		Schedule:      c.loadCategory(ctx, domain.CategorySchedule),
		Subjects:      c.loadCategory(ctx, domain.CategorySubject),
		FAQs:          c.loadCategory(ctx, domain.CategoryFAQ),
		Rooms:         c.loadCategory(ctx, domain.CategoryRoom),
	}
}

func (c *Client) loadCategory(ctx context.Context, cat domain.Category) []domain.Record {
	url, ok := c.urls[cat]
	if !ok {
		c.logger.Warn("No sheet configured for category", zap.String("category", string(cat)))
		return nil
	}

	records, err := c.fetchCSV(ctx, url)
	if err != nil {
		c.logger.Error("Failed to load CSV sheet",
			zap.String("category", string(cat)),
			zap.Error(err),
		)
		return nil
	}
	return records
}

func (c *Client) fetchCSV(ctx context.Context, url string) ([]domain.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch: unexpected status %d", resp.StatusCode)
	}

	return parseCSV(resp.Body)
}

// parseCSV reads a CSV document using the header row as field names.
// Ragged rows are tolerated; missing trailing cells are simply absent.
func parseCSV(r io.Reader) ([]domain.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var records []domain.Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		rec := make(domain.Record, len(header))
		empty := true
		for i, name := range header {
			if i >= len(row) {
				break
			}
			rec[name] = row[i]
			if row[i] != "" {
				empty = false
			}
		}
		if !empty {
			records = append(records, rec)
		}
	}
	return records, nil
}
