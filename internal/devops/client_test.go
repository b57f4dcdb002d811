package devops

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdesk/sdrctl/internal/logging"
	"github.com/opsdesk/sdrctl/pkg/models"
)

// countingProvider counts secret fetches and can fail a configurable number
// of times before succeeding.
type countingProvider struct {
	mu       sync.Mutex
	calls    int
	failures int
	value    string
}

func (p *countingProvider) GetSecret(_ context.Context, name string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.failures > 0 {
		p.failures--
		return "", &models.CredentialError{Name: name, Err: errors.New("vault unavailable")}
	}
	return p.value, nil
}

func (p *countingProvider) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func newTestClient(srv *httptest.Server, provider *countingProvider) *Client {
	return NewClient(Config{
		Organization: "contoso",
		Project:      "ops",
		BaseURL:      srv.URL,
		RetryDelay:   5 * time.Millisecond,
	}, provider)
}

func TestClientRequestShape(t *testing.T) {
	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte(":pat-123"))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, wantAuth, r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.True(t, strings.HasPrefix(r.Header.Get("X-Request-ID"), "sdr-"),
			"request id %q should carry the sdr prefix", r.Header.Get("X-Request-ID"))
		assert.Equal(t, "7.0", r.URL.Query().Get("api-version"))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newTestClient(srv, &countingProvider{value: "pat-123"})

	_, err := client.Do(context.Background(), http.MethodGet, "/_apis/projects", nil)
	require.NoError(t, err)
}

func TestClientContentTypes(t *testing.T) {
	var patchCT, jsonCT string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "wiql"):
			jsonCT = r.Header.Get("Content-Type")
			w.Write([]byte(`{"workItems":[]}`))
		default:
			patchCT = r.Header.Get("Content-Type")
			w.Write([]byte(`{"id":1,"fields":{}}`))
		}
	}))
	defer srv.Close()

	client := newTestClient(srv, &countingProvider{value: "pat"})
	ctx := context.Background()

	_, err := client.CreateWorkItem(ctx, []Operation{NewAdd("title", "Needs a title")})
	require.NoError(t, err)
	_, err = client.QueryIDs(ctx, "SELECT [System.Id] FROM workitems")
	require.NoError(t, err)

	assert.Equal(t, "application/json-patch+json", patchCT)
	assert.Equal(t, "application/json", jsonCT)
}

func TestClientCredentialFetchedOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	provider := &countingProvider{value: "pat"}
	client := newTestClient(srv, provider)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := client.Do(ctx, http.MethodGet, "/_apis/projects", nil)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, provider.count(), "the secret is fetched once per process")
}

func TestClientCredentialSingleFlight(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	provider := &countingProvider{value: "pat"}
	client := newTestClient(srv, provider)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Do(context.Background(), http.MethodGet, "/_apis/projects", nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, provider.count(), "concurrent first use must trigger exactly one fetch")
}

func TestClientCredentialFailureNotCached(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	provider := &countingProvider{value: "pat", failures: 1}
	client := newTestClient(srv, provider)
	ctx := context.Background()

	_, err := client.Do(ctx, http.MethodGet, "/_apis/projects", nil)
	var credErr *models.CredentialError
	require.ErrorAs(t, err, &credErr)

	// The next operation retries the provider and succeeds.
	_, err = client.Do(ctx, http.MethodGet, "/_apis/projects", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.count())
}

func TestClientRetryOnRateLimit(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"id":5,"fields":{}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv, &countingProvider{value: "pat"})

	wi, err := client.GetWorkItem(context.Background(), 5)
	require.NoError(t, err, "a rate-limited first attempt must be retried")
	assert.Equal(t, 5, wi.ID)
	assert.Equal(t, 2, hits)
}

func TestClientRateLimitRetryExhausted(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprintf(w, "throttled attempt %d", hits)
	}))
	defer srv.Close()

	client := newTestClient(srv, &countingProvider{value: "pat"})

	_, err := client.Do(context.Background(), http.MethodGet, "/_apis/projects", nil)
	var te *models.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusTooManyRequests, te.StatusCode)
	assert.Equal(t, "throttled attempt 2", te.Body, "the second failure is the one surfaced")
	assert.Equal(t, 2, hits, "exactly one retry")
}

func TestClientNoRetryOnServerError(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer srv.Close()

	client := newTestClient(srv, &countingProvider{value: "pat"})

	_, err := client.Do(context.Background(), http.MethodGet, "/_apis/projects", nil)
	var te *models.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusInternalServerError, te.StatusCode)
	assert.Equal(t, "boom", te.Body)
	assert.Equal(t, 1, hits, "5xx responses are not retried")
}

func TestClientRetriesDisabled(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(Config{
		Organization: "contoso",
		Project:      "ops",
		BaseURL:      srv.URL,
		MaxRetries:   -1,
	}, &countingProvider{value: "pat"})

	_, err := client.Do(context.Background(), http.MethodGet, "/_apis/projects", nil)
	var te *models.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusTooManyRequests, te.StatusCode)
	assert.Equal(t, 1, hits, "a negative retry budget must disable retries")
}

func TestClientConnectionProbe(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(`{"count":1,"value":[{"name":"ops"}]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv, &countingProvider{value: "pat"})

	require.NoError(t, client.TestConnection(context.Background()))
	assert.Equal(t, "/_apis/projects", path, "the probe must hit the project listing")
}

func TestClientConnectionProbeAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newTestClient(srv, &countingProvider{value: "expired-pat"})

	err := client.TestConnection(context.Background())
	var te *models.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusUnauthorized, te.StatusCode)
}

func TestClientCredentialNeverLoggedInClear(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	logging.SetupLogger(&buf, logging.LevelDebug)
	defer logging.SetupLogger(os.Stdout, logging.LevelInfo)

	const pat = "k7q2m9xw41pbt6hz8rj3"
	client := newTestClient(srv, &countingProvider{value: pat})

	_, err := client.Do(context.Background(), http.MethodGet, "/_apis/projects", nil)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "credential cached")
	assert.NotContains(t, out, pat, "the fetched PAT must never reach log output")
	assert.Contains(t, out, logging.MaskSensitive(pat))
}

func TestClientBatchGetPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/_apis/wit/workitems", r.URL.Path)
		assert.Equal(t, "12,34,56", r.URL.Query().Get("ids"))
		assert.Equal(t, "all", r.URL.Query().Get("$expand"))
		assert.Equal(t, "7.0", r.URL.Query().Get("api-version"))
		w.Write([]byte(`{"count":2,"value":[{"id":12,"fields":{}},{"id":34,"fields":{}}]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv, &countingProvider{value: "pat"})

	items, err := client.GetWorkItems(context.Background(), []int{12, 34, 56})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 12, items[0].ID)
}

func TestClientQueryIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/_apis/wit/wiql", r.URL.Path)
		w.Write([]byte(`{"workItems":[{"id":3},{"id":1},{"id":2}]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv, &countingProvider{value: "pat"})

	ids, err := client.QueryIDs(context.Background(), "SELECT [System.Id] FROM workitems")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 2}, ids, "tracker ordering is preserved")
}

func TestClientCreatePath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/ops/_apis/wit/workitems/$SDR Request", r.URL.Path)
		w.Write([]byte(`{"id":101,"fields":{}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv, &countingProvider{value: "pat"})

	wi, err := client.CreateWorkItem(context.Background(), []Operation{NewAdd("title", "A new request")})
	require.NoError(t, err)
	assert.Equal(t, 101, wi.ID)
}
