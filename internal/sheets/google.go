package sheets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/mithrel/sheetsite/internal/metrics"
	"github.com/mithrel/sheetsite/pkg/api"
)

const defaultSheetsBase = "https://docs.google.com/spreadsheets/d/"

type GoogleConfig struct {
	SpreadsheetID string
	ProductsURL   string
	// Timeout bounds a single fetch including every retry.
	Timeout time.Duration
	Retries int
	// BaseURL overrides the spreadsheet host; tests point it at httptest.
	BaseURL string
}

// Google reads published tabs through the visualization query endpoint and
// products from an Apps Script style JSON feed.
type Google struct {
	cfg        GoogleConfig
	httpClient *http.Client
	now        func() time.Time
}

func NewGoogle(cfg GoogleConfig) *Google {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultSheetsBase
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	return &Google{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		now:        time.Now,
	}
}

// SheetURL is the query URL of one tab.
func (g *Google) SheetURL(name string) string {
	base := strings.TrimRight(g.cfg.BaseURL, "/")
	return fmt.Sprintf("%s/%s/gviz/tq?tqx=out:json&sheet=%s",
		base, url.PathEscape(g.cfg.SpreadsheetID), url.QueryEscape(name))
}

func (g *Google) Sheet(ctx context.Context, name string) (api.Sheet, error) {
	if strings.TrimSpace(g.cfg.SpreadsheetID) == "" {
		return api.Sheet{}, fmt.Errorf("%w: source.spreadsheet_id is not set", ErrUpstream)
	}
	body, err := g.fetch(ctx, "sheet", g.SheetURL(name))
	if err != nil {
		return api.Sheet{}, fmt.Errorf("fetch sheet %q: %w", name, err)
	}
	sheet, err := parseGviz(name, body)
	if err != nil {
		return api.Sheet{}, err
	}
	sheet.FetchedAt = g.now().UTC()
	return sheet, nil
}

func (g *Google) Products(ctx context.Context) ([]api.Product, error) {
	if strings.TrimSpace(g.cfg.ProductsURL) == "" {
		return nil, fmt.Errorf("%w: source.products_url is not set", ErrUpstream)
	}
	body, err := g.fetch(ctx, "products", g.cfg.ProductsURL)
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	return parseProducts(body)
}

// fetch GETs u with exponential backoff. Client errors are not retried.
func (g *Google) fetch(ctx context.Context, source, u string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxElapsedTime = g.cfg.Timeout

	var body []byte
	op := func() error {
		start := time.Now()
		resp, code, err := g.execRequest(ctx, u)
		switch {
		case err != nil:
			metrics.UpstreamFetches.WithLabelValues(source, "error").Inc()
			if ctx.Err() != nil {
				return backoff.Permanent(fmt.Errorf("%w: %v", ErrUpstream, err))
			}
			return fmt.Errorf("%w: %v", ErrUpstream, err)
		case code >= 400 && code < 500:
			metrics.UpstreamFetches.WithLabelValues(source, "rejected").Inc()
			return backoff.Permanent(fmt.Errorf("%w: %s returned %d", ErrUpstream, source, code))
		case code >= 300:
			metrics.UpstreamFetches.WithLabelValues(source, "error").Inc()
			return fmt.Errorf("%w: %s returned %d: %s", ErrUpstream, source, code, snippet(resp))
		}
		metrics.UpstreamFetches.WithLabelValues(source, "ok").Inc()
		metrics.UpstreamDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
		body = resp
		return nil
	}

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, uint64(g.cfg.Retries)), ctx))
	if err != nil {
		if !errors.Is(err, ErrUpstream) {
			err = fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		return nil, err
	}
	return body, nil
}

func (g *Google) execRequest(ctx context.Context, u string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
