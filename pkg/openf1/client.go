package openf1

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"f1datacollector/pkg/model"

	"github.com/pkg/errors"
)

const (
	// DefaultBaseURL is the public OpenF1 REST endpoint.
	DefaultBaseURL = "https://api.openf1.org/v1"

	userAgent      = "F1DataCollector/1.0"
	requestTimeout = 30 * time.Second
	maxRetries     = 3
)

const (
	ResourceSessions  = "sessions"
	ResourceDrivers   = "drivers"
	ResourcePositions = "position"
	ResourceLaps      = "laps"
	ResourceMeetings  = "meetings"
)

var supportedResources = map[string]bool{
	ResourceSessions:  true,
	ResourceDrivers:   true,
	ResourcePositions: true,
	ResourceLaps:      true,
	ResourceMeetings:  true,
}

// Params are the query parameters of one request, simple key to scalar.
type Params map[string]string

// String renders the parameters sorted by key, so identical filters always
// print (and key) identically no matter the call-site order.
func (p Params) String() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := url.Values{}
	for _, k := range keys {
		values.Set(k, p[k])
	}
	return values.Encode()
}

// Client talks to the OpenF1 API. Blocking, synchronous, one request at a
// time; the embedded http.Client bounds every request with a fixed timeout.
type Client struct {
	baseURL string
	httpc   *http.Client
}

func NewClient() *Client {
	return NewClientWithBaseURL(DefaultBaseURL)
}

func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpc: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// Fetch requests one resource with the given filter parameters. Transient
// failures are retried with exponential backoff; after the last attempt the
// result is (nil, nil) — absence, not an error — so callers degrade to empty
// results. Errors are reserved for programming mistakes (an unsupported
// resource name) and malformed response bodies.
func (c *Client) Fetch(ctx context.Context, resource string, params Params) ([]model.Record, error) {
	if !supportedResources[resource] {
		return nil, errors.Errorf("unsupported resource %q", resource)
	}

	requestURL := fmt.Sprintf("%s/%s", c.baseURL, resource)
	if query := params.String(); query != "" {
		requestURL += "?" + query
	}

	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.Printf("requesting %s (attempt %d/%d)", resource, attempt, maxRetries)

		records, retryable, err := c.get(ctx, requestURL)
		if err == nil {
			log.Printf("got %d records from %s", len(records), resource)
			return records, nil
		}
		if !retryable {
			return nil, err
		}

		log.Printf("request to %s failed: %v", resource, err)
		if attempt == maxRetries {
			break
		}

		wait := time.Duration(1<<(attempt-1)) * time.Second
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	log.Printf("giving up on %s after %d attempts", resource, maxRetries)
	return nil, nil
}

func (c *Client) get(ctx context.Context, requestURL string) ([]model.Record, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, true, errors.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}

	var records []model.Record
	if err := json.Unmarshal(body, &records); err != nil {
		// the source violated its contract, retrying will not help
		return nil, false, errors.Wrap(err, "decoding response body")
	}
	return records, false, nil
}

func (c *Client) Sessions(ctx context.Context, params Params) ([]model.Record, error) {
	return c.Fetch(ctx, ResourceSessions, params)
}

func (c *Client) Drivers(ctx context.Context, params Params) ([]model.Record, error) {
	return c.Fetch(ctx, ResourceDrivers, params)
}

func (c *Client) Positions(ctx context.Context, params Params) ([]model.Record, error) {
	return c.Fetch(ctx, ResourcePositions, params)
}

func (c *Client) Laps(ctx context.Context, params Params) ([]model.Record, error) {
	return c.Fetch(ctx, ResourceLaps, params)
}

func (c *Client) Meetings(ctx context.Context, params Params) ([]model.Record, error) {
	return c.Fetch(ctx, ResourceMeetings, params)
}

// FindSessions looks up sessions by season, optionally narrowed by country
// and session name.
func (c *Client) FindSessions(ctx context.Context, year int, countryName, sessionName string) ([]model.Record, error) {
	params := Params{"year": strconv.Itoa(year)}
	if countryName != "" {
		params["country_name"] = countryName
	}
	if sessionName != "" {
		params["session_name"] = sessionName
	}
	return c.Sessions(ctx, params)
}

// Close releases the underlying connection pool.
func (c *Client) Close() {
	c.httpc.CloseIdleConnections()
}
