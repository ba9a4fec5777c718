package volunteers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bytedance/sonic"

	"github.com/handii-app/volunteer-directory/internal/domain"
	"github.com/handii-app/volunteer-directory/pkg/httpclient"
)

const (
	DefaultBaseURL     = "https://staging.codinnovations.com/voice-agent-api"
	DefaultTimeout     = 10 * time.Second
	DefaultSearchLimit = 50

	maxErrorBodyBytes = 1024
)

// Config holds the connection settings for a directory client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Filter narrows a listing. Zero values mean "no filter" for that dimension
// and are not sent.
type Filter struct {
	Skill     string
	Location  string
	Available *bool
	Language  string
	Limit     int
}

// Values renders the provided filters as query parameters.
func (f Filter) Values() url.Values {
	q := url.Values{}
	if f.Skill != "" {
		q.Set("skill", f.Skill)
	}
	if f.Location != "" {
		q.Set("location", f.Location)
	}
	if f.Available != nil {
		q.Set("available", strconv.FormatBool(*f.Available))
	}
	if f.Language != "" {
		q.Set("language", f.Language)
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// Client is a typed wrapper over the remote volunteer registry. Each method
// issues exactly one request; there is no retry, cache or request coalescing,
// so a Client is safe for concurrent use.
type Client struct {
	baseURL string
	timeout time.Duration
	http    httpclient.Client
	log     Logger
}

// New builds a client backed by a resty transport.
func New(cfg Config, log Logger) *Client {
	cfg = normalizeConfig(cfg)
	return NewWithHTTPClient(cfg, httpclient.NewRestyClient(cfg.Timeout), log)
}

// NewWithHTTPClient builds a client on top of an existing transport.
func NewWithHTTPClient(cfg Config, hc httpclient.Client, log Logger) *Client {
	cfg = normalizeConfig(cfg)
	if hc == nil {
		hc = httpclient.NewRestyClient(cfg.Timeout)
	}
	return &Client{
		baseURL: cfg.BaseURL,
		timeout: cfg.Timeout,
		http:    hc,
		log:     ensureLogger(log),
	}
}

func normalizeConfig(cfg Config) Config {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return cfg
}

// BaseURL returns the registry root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// List returns volunteers matching the provided filters.
func (c *Client) List(ctx context.Context, f Filter) (domain.VolunteersResponse, error) {
	var out domain.VolunteersResponse
	err := c.call(ctx, "list", http.MethodGet, "/api/volunteers", f.Values(), nil, &out)
	return out, err
}

// Get fetches one volunteer. A missing id yields an HTTPError with status 404.
func (c *Client) Get(ctx context.Context, id int64) (domain.Volunteer, error) {
	var out domain.Volunteer
	err := c.call(ctx, "get", http.MethodGet, volunteerPath(id), nil, nil, &out)
	return out, err
}

// SearchBySkill lists volunteers tagged with skill. limit <= 0 uses DefaultSearchLimit.
func (c *Client) SearchBySkill(ctx context.Context, skill string, limit int) (domain.VolunteersResponse, error) {
	var out domain.VolunteersResponse
	path := "/api/volunteers/search/by-skill/" + url.PathEscape(skill)
	err := c.call(ctx, "search_by_skill", http.MethodGet, path, limitQuery(limit), nil, &out)
	return out, err
}

// SearchByLocation lists volunteers near location. limit <= 0 uses DefaultSearchLimit.
func (c *Client) SearchByLocation(ctx context.Context, location string, limit int) (domain.VolunteersResponse, error) {
	var out domain.VolunteersResponse
	path := "/api/volunteers/search/by-location/" + url.PathEscape(location)
	err := c.call(ctx, "search_by_location", http.MethodGet, path, limitQuery(limit), nil, &out)
	return out, err
}

// ListAvailable lists volunteers currently marked available.
func (c *Client) ListAvailable(ctx context.Context, limit int) (domain.VolunteersResponse, error) {
	var out domain.VolunteersResponse
	err := c.call(ctx, "list_available", http.MethodGet, "/api/volunteers/available", limitQuery(limit), nil, &out)
	return out, err
}

// Create registers a volunteer; the server assigns id and timestamps.
func (c *Client) Create(ctx context.Context, in domain.NewVolunteer) (domain.Volunteer, error) {
	var out domain.Volunteer
	err := c.call(ctx, "create", http.MethodPost, "/api/volunteers", nil, in, &out)
	return out, err
}

// Update sends the set fields of patch. Merge semantics belong to the server.
func (c *Client) Update(ctx context.Context, id int64, patch domain.VolunteerPatch) (domain.Volunteer, error) {
	var out domain.Volunteer
	err := c.call(ctx, "update", http.MethodPut, volunteerPath(id), nil, patch, &out)
	return out, err
}

// Delete removes a volunteer.
func (c *Client) Delete(ctx context.Context, id int64) (domain.DeleteResult, error) {
	var out domain.DeleteResult
	err := c.call(ctx, "delete", http.MethodDelete, volunteerPath(id), nil, nil, &out)
	return out, err
}

// SetAvailability toggles the available flag via a query parameter.
func (c *Client) SetAvailability(ctx context.Context, id int64, available bool) (domain.Volunteer, error) {
	var out domain.Volunteer
	q := url.Values{"available": {strconv.FormatBool(available)}}
	err := c.call(ctx, "set_availability", http.MethodPatch, volunteerPath(id)+"/availability", q, nil, &out)
	return out, err
}

// Health probes the registry liveness endpoint.
func (c *Client) Health(ctx context.Context) (domain.HealthStatus, error) {
	var out domain.HealthStatus
	err := c.call(ctx, "health", http.MethodGet, "/health", nil, nil, &out)
	return out, err
}

func (c *Client) call(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := httpclient.Request{
		Method: method,
		URL:    c.baseURL + path,
		Query:  query,
		Headers: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
		},
	}
	if body != nil {
		payload, err := sonic.Marshal(body)
		if err != nil {
			return fmt.Errorf("volunteers %s: encode body: %w", op, err)
		}
		req.Body = payload
	}

	c.log.DebugObj("volunteer directory request", "directory_request", map[string]any{
		"op":     op,
		"method": method,
		"url":    req.URL,
		"query":  query.Encode(),
	})

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		tErr := &TransportError{Op: op, Method: method, URL: req.URL, Err: err}
		c.logFailure(op, method, req.URL, 0, tErr)
		return tErr
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		hErr := &HTTPError{
			Op:         op,
			Method:     method,
			URL:        req.URL,
			StatusCode: status,
			Body:       bodySnippet(resp.Body()),
		}
		c.logFailure(op, method, req.URL, status, hErr)
		return hErr
	}

	if out == nil {
		return nil
	}
	if err := sonic.Unmarshal(resp.Body(), out); err != nil {
		dErr := fmt.Errorf("volunteers %s: decode response: %w", op, err)
		c.logFailure(op, method, req.URL, status, dErr)
		return dErr
	}
	return nil
}

func (c *Client) logFailure(op, method, target string, status int, err error) {
	fields := map[string]any{
		"op":     op,
		"method": method,
		"url":    target,
		"error":  err.Error(),
	}
	if status > 0 {
		fields["status"] = status
	}
	c.log.ErrorObj("volunteer directory request failed", "directory_error", fields)
}

func volunteerPath(id int64) string {
	return "/api/volunteers/" + strconv.FormatInt(id, 10)
}

func limitQuery(limit int) url.Values {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return url.Values{"limit": {strconv.Itoa(limit)}}
}

func bodySnippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) <= maxErrorBodyBytes {
		return s
	}
	cut := maxErrorBodyBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
