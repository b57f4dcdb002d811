package devops

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/opsdesk/sdrctl/internal/logging"
	"github.com/opsdesk/sdrctl/internal/secrets"
	"github.com/opsdesk/sdrctl/pkg/models"
)

const defaultBaseURL = "https://dev.azure.com"

// Config carries the transport settings. Zero values fall back to the
// documented defaults.
type Config struct {
	// Organization scopes the base URL.
	Organization string

	// Project owns the SDR work-item type.
	Project string

	// BaseURL overrides the public tracker endpoint, mainly for tests.
	BaseURL string

	// SecretName is the secret-provider key holding the PAT.
	SecretName string

	// Timeout bounds each HTTP request. Default 30s.
	Timeout time.Duration

	// MaxRetries is the number of retries after a rate-limited response.
	// Zero means the default of 1; a negative value disables retries.
	// Other failure classes are never retried.
	MaxRetries int

	// RetryDelay is the wait before a retry when the server does not
	// advertise one. Default 5s.
	RetryDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL + "/" + c.Organization
	}
	if c.SecretName == "" {
		c.SecretName = secrets.DefaultSecretName
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	switch {
	case c.MaxRetries == 0:
		c.MaxRetries = 1
	case c.MaxRetries < 0:
		c.MaxRetries = 0
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = 5 * time.Second
	}
	return c
}

// Client performs authenticated calls against the tracker's REST API. The
// PAT is fetched from the secret provider on first use and cached for the
// life of the process; the fetch is single-flight, so concurrent first
// calls trigger exactly one provider round trip. A failed fetch is not
// cached and the next call retries the provider.
type Client struct {
	cfg     Config
	http    *http.Client
	secrets secrets.Provider

	mu  sync.Mutex
	pat string
}

// NewClient builds a transport client over the given secret provider.
func NewClient(cfg Config, provider secrets.Provider) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		secrets: provider,
	}
}

// credential returns the cached PAT, fetching it once under the lock.
func (c *Client) credential(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pat != "" {
		return c.pat, nil
	}

	value, err := c.secrets.GetSecret(ctx, c.cfg.SecretName)
	if err != nil {
		return "", err
	}
	c.pat = value

	logging.Debug("credential cached",
		"secret", c.cfg.SecretName,
		"value", logging.MaskSensitive(value))
	return c.pat, nil
}

// Do executes one authenticated request against the tracker and returns the
// raw response body. A rate-limited response is retried once after the
// server-advertised delay; every other non-2xx status is surfaced
// immediately as a TransportError. The caller-supplied body is never
// mutated.
func (c *Client) Do(ctx context.Context, method, path string, body any) ([]byte, error) {
	pat, err := c.credential(ctx)
	if err != nil {
		return nil, err
	}

	var payload []byte
	contentType := "application/json"
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		if _, ok := body.([]Operation); ok {
			contentType = "application/json-patch+json"
		}
	}

	endpoint := c.cfg.BaseURL + path
	if strings.Contains(path, "?") {
		endpoint += "&api-version=" + apiVersion
	} else {
		endpoint += "?api-version=" + apiVersion
	}

	auth := "Basic " + base64.StdEncoding.EncodeToString([]byte(":"+pat))

	for attempt := 0; ; attempt++ {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Authorization", auth)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", "sdr-"+uuid.NewString())
		if payload != nil {
			req.Header.Set("Content-Type", contentType)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("tracker request failed: %w", err)
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return respBody, nil
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < c.cfg.MaxRetries {
			delay := retryAfter(resp.Header, c.cfg.RetryDelay)
			logging.Warn("rate limited by tracker, retrying",
				"method", method,
				"path", path,
				"delay", delay)
			if err := sleep(ctx, delay); err != nil {
				return nil, err
			}
			continue
		}

		return nil, &models.TransportError{
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}
}

// retryAfter reads the server-advertised delay in seconds, falling back to
// the configured default when the header is absent or unreadable.
func retryAfter(h http.Header, fallback time.Duration) time.Duration {
	if v := h.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// CreateWorkItem creates a new SDR work item from a patch document.
func (c *Client) CreateWorkItem(ctx context.Context, ops []Operation) (*WorkItem, error) {
	path := fmt.Sprintf("/%s/_apis/wit/workitems/$%s",
		url.PathEscape(c.cfg.Project), url.PathEscape(WorkItemType))

	body, err := c.Do(ctx, http.MethodPost, path, ops)
	if err != nil {
		return nil, err
	}
	return decodeWorkItem(body)
}

// GetWorkItem fetches a single work item by id.
func (c *Client) GetWorkItem(ctx context.Context, id int) (*WorkItem, error) {
	path := fmt.Sprintf("/%s/_apis/wit/workitems/%d", url.PathEscape(c.cfg.Project), id)

	body, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeWorkItem(body)
}

// UpdateWorkItem applies a patch document to an existing work item.
func (c *Client) UpdateWorkItem(ctx context.Context, id int, ops []Operation) (*WorkItem, error) {
	path := fmt.Sprintf("/%s/_apis/wit/workitems/%d", url.PathEscape(c.cfg.Project), id)

	body, err := c.Do(ctx, http.MethodPatch, path, ops)
	if err != nil {
		return nil, err
	}
	return decodeWorkItem(body)
}

// QueryIDs runs a WIQL query and returns the matching work-item ids in the
// order the tracker returned them.
func (c *Client) QueryIDs(ctx context.Context, wiql string) ([]int, error) {
	body, err := c.Do(ctx, http.MethodPost, "/_apis/wit/wiql", wiqlRequest{Query: wiql})
	if err != nil {
		return nil, err
	}

	var result queryResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode query result: %w", err)
	}

	ids := make([]int, 0, len(result.WorkItems))
	for _, ref := range result.WorkItems {
		ids = append(ids, ref.ID)
	}
	return ids, nil
}

// GetWorkItems batch-fetches full work items by id. The caller must not
// pass an empty id list; the tracker rejects it.
func (c *Client) GetWorkItems(ctx context.Context, ids []int) ([]WorkItem, error) {
	joined := make([]string, len(ids))
	for i, id := range ids {
		joined[i] = strconv.Itoa(id)
	}
	path := fmt.Sprintf("/_apis/wit/workitems?ids=%s&$expand=all", strings.Join(joined, ","))

	body, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var list workItemList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to decode work item list: %w", err)
	}
	return list.Value, nil
}

// TestConnection probes the tracker with a cheap authenticated call.
func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.Do(ctx, http.MethodGet, "/_apis/projects", nil)
	return err
}

func decodeWorkItem(body []byte) (*WorkItem, error) {
	var wi WorkItem
	if err := json.Unmarshal(body, &wi); err != nil {
		return nil, fmt.Errorf("failed to decode work item: %w", err)
	}
	return &wi, nil
}
