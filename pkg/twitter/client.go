package twitter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
)

const defaultMaxPages = 5

// Client talks to the RapidAPI-hosted Twitter search API. Search follows
// continuation tokens sequentially with a fixed inter-page delay; there is
// no concurrency and no retrying beyond the continuation loop itself.
type Client struct {
	httpClient *http.Client
	logger     *log.Logger

	baseURL   string
	trendsURL string
	apiKey    string
	apiHost   string

	maxPages  int
	pageDelay time.Duration

	// Default query parameters sent with every search request.
	searchParams url.Values
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

func WithMaxPages(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

func WithPageDelay(d time.Duration) ClientOption {
	return func(c *Client) { c.pageDelay = d }
}

func WithTrendsURL(u string) ClientOption {
	return func(c *Client) { c.trendsURL = u }
}

func NewClient(logger *log.Logger, baseURL, apiKey, apiHost string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		baseURL:    baseURL,
		trendsURL:  baseURL + "/trends",
		apiKey:     apiKey,
		apiHost:    apiHost,
		maxPages:   defaultMaxPages,
		pageDelay:  time.Second,
		searchParams: url.Values{
			"section": {"top"},
			"limit":   {"20"},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search runs one paginated search and returns the normalized, id-deduped
// records in upstream order. A failed initial request aborts with
// *FetchError; a failed continuation request ends pagination and keeps the
// partial result. Zero collected records is ErrEmptyResult.
func (c *Client) Search(ctx context.Context, query string) ([]TweetRecord, error) {
	params := c.cloneSearchParams()
	params.Set("query", query)

	c.logger.Debug("Initial search parameters", "params", params.Encode())

	resp, err := c.get(ctx, c.baseURL+"/search", params)
	if err != nil {
		return nil, err
	}

	records := make([]TweetRecord, 0, len(resp.Results))
	seen := make(map[string]struct{}, len(resp.Results))
	records = appendNew(records, seen, resp.Results)

	token := resp.ContinuationToken
	c.logger.Debug("Initial page fetched", "results", len(resp.Results), "has_token", token != "")

	for page := 1; token != "" && page < c.maxPages; page++ {
		if err := c.sleep(ctx); err != nil {
			break
		}

		contParams := c.cloneSearchParams()
		contParams.Set("query", query)
		contParams.Set("continuation_token", token)

		c.logger.Debug("Fetching continuation page", "page", page+1)

		contResp, err := c.get(ctx, c.baseURL+"/search/continuation", contParams)
		if err != nil {
			c.logger.Error("Continuation request failed, keeping partial results", "page", page+1, "error", err)
			break
		}

		if len(contResp.Results) == 0 {
			c.logger.Debug("No new tweets in continuation response")
			break
		}

		records = appendNew(records, seen, contResp.Results)
		token = contResp.ContinuationToken
		c.logger.Debug("Continuation page fetched", "total", len(records), "has_token", token != "")
	}

	if len(records) == 0 {
		return nil, ErrEmptyResult
	}
	return records, nil
}

// Trends fetches the trending topics for a WOEID (1 is worldwide). Unnamed
// trends are skipped; an upstream payload of unexpected shape yields an
// empty list rather than an error.
func (c *Client) Trends(ctx context.Context, woeid string) ([]Trend, error) {
	if woeid == "" {
		woeid = "1"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.trendsURL+"?woeid="+url.QueryEscape(woeid), nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		return nil, &FetchError{Status: res.StatusCode, Body: string(body)}
	}

	var payload trendsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		c.logger.Warn("Invalid trends response format", "error", err)
		return []Trend{}, nil
	}
	if len(payload) == 0 {
		c.logger.Warn("No trends found in the response")
		return []Trend{}, nil
	}

	trends := make([]Trend, 0, len(payload[0].Trends))
	for i, raw := range payload[0].Trends {
		if raw.Name == "" {
			continue
		}
		trends = append(trends, Trend{
			Name:            raw.Name,
			URL:             raw.URL,
			TweetVolume:     int(raw.TweetVolume),
			Rank:            i + 1,
			Query:           raw.Query,
			PromotedContent: raw.PromotedContent,
		})
	}
	return trends, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (*searchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &FetchError{Status: res.StatusCode, Body: string(body)}
	}

	var payload searchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.apiHost)
}

func (c *Client) cloneSearchParams() url.Values {
	cloned := make(url.Values, len(c.searchParams)+2)
	for k, vs := range c.searchParams {
		cloned[k] = append([]string(nil), vs...)
	}
	return cloned
}

// sleep blocks for the inter-page delay, simple client-side rate limiting.
func (c *Client) sleep(ctx context.Context) error {
	if c.pageDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(c.pageDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func appendNew(records []TweetRecord, seen map[string]struct{}, raws []rawTweet) []TweetRecord {
	for _, raw := range raws {
		rec := raw.normalize()
		if rec.ID != "" {
			if _, dup := seen[rec.ID]; dup {
				continue
			}
			seen[rec.ID] = struct{}{}
		}
		records = append(records, rec)
	}
	return records
}
