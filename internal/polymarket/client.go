// Package polymarket fetches trending prediction markets from the Gamma API.
package polymarket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/theirongolddev/reefboard/internal/model"
)

const (
	// DefaultBaseURL is the public Gamma API.
	DefaultBaseURL = "https://gamma-api.polymarket.com"
	requestTimeout = 10 * time.Second
	maxBodySize    = 4 << 20 // 4 MB
)

var (
	// ErrRateLimited indicates the API rate limit was hit.
	ErrRateLimited = errors.New("polymarket: rate limited")
	// ErrBadPayload indicates the response was not a JSON array of events.
	ErrBadPayload = errors.New("polymarket: unexpected payload")
)

// Client fetches events from the Gamma API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for baseURL (DefaultBaseURL when empty).
func NewClient(baseURL string, hc *http.Client) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{baseURL: baseURL, http: hc}
}

// Trending returns up to limit active trending markets, one per event.
// Events without markets are skipped.
func (c *Client) Trending(ctx context.Context, limit int) ([]model.Market, error) {
	q := url.Values{}
	q.Set("active", "true")
	q.Set("trending", "true")
	q.Set("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, "/events?"+q.Encode())
	if err != nil {
		return nil, err
	}
	return ParseEvents(body)
}

// ParseEvents maps a Gamma events array onto markets using each event's
// first market.
func ParseEvents(body []byte) ([]model.Market, error) {
	doc := gjson.ParseBytes(body)
	if !doc.IsArray() {
		return nil, ErrBadPayload
	}

	markets := []model.Market{}
	doc.ForEach(func(_, event gjson.Result) bool {
		m := event.Get("markets.0")
		if !m.Exists() || !m.IsObject() {
			return true
		}

		question := event.Get("title").String()
		if question == "" {
			question = m.Get("question").String()
		}
		markets = append(markets, model.Market{
			ID:        m.Get("id").String(),
			Question:  question,
			Image:     event.Get("image").String(),
			YesChance: yesChance(m.Get("outcomePrices")),
			Category:  event.Get("category").String(),
		})
		return true
	})
	return markets, nil
}

// yesChance parses the first outcome price into a whole percentage.
// outcomePrices arrives as a JSON-encoded string array, or occasionally as
// a plain array. Zero, missing or unparsable prices yield nil.
func yesChance(prices gjson.Result) *int {
	var first gjson.Result
	switch {
	case prices.IsArray():
		first = prices.Get("0")
	case prices.Type == gjson.String:
		inner := gjson.Parse(prices.String())
		if !inner.IsArray() {
			return nil
		}
		first = inner.Get("0")
	default:
		return nil
	}

	p, err := strconv.ParseFloat(strings.TrimSpace(first.String()), 64)
	if err != nil || p == 0 || math.IsNaN(p) || math.IsInf(p, 0) {
		return nil
	}
	pct := int(math.Round(p * 100))
	return &pct
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("polymarket: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "reefboard/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("polymarket: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("polymarket: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("polymarket: reading response: %w", err)
	}
	return body, nil
}
