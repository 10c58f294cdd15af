package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spacetravelling/internal/httpclient"
)

var (
	ErrNotFound        = errors.New("cms: document not found")
	ErrNoMasterRef     = errors.New("cms: api descriptor has no master ref")
	ErrForeignCursor   = errors.New("cms: page cursor does not belong to the configured api")
	ErrMissingEndpoint = errors.New("cms: endpoint is required")
)

// APIError is returned for non-2xx responses.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cms: status=%d body=%s", e.Status, e.Body)
}

// Config configures a Client.
type Config struct {
	// Endpoint is the API root, e.g. https://spacetravelling.cdn.prismic.io/api/v2.
	Endpoint          string
	AccessToken       string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	// HTTPClient overrides the default logging client; used by tests.
	HTTPClient *http.Client
}

// Client is a read-only client for a Prismic-style headless CMS.
type Client struct {
	base     *httpclient.BaseClient
	token    string
	endpoint *url.URL
}

// New builds a Client. It fails only when the endpoint is missing or unparsable.
func New(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.Endpoint)
	if raw == "" {
		return nil, ErrMissingEndpoint
	}
	endpoint, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("cms: parse endpoint: %w", err)
	}
	if endpoint.Scheme == "" || endpoint.Host == "" {
		return nil, fmt.Errorf("cms: endpoint must be absolute: %q", raw)
	}

	httpCfg := httpclient.Config{
		Timeout:           cfg.Timeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
	}
	return &Client{
		base:     httpclient.NewBaseClientWithClient(cfg.HTTPClient, raw, httpCfg),
		token:    strings.TrimSpace(cfg.AccessToken),
		endpoint: endpoint,
	}, nil
}

// MasterRef returns the ref of the currently published content version.
func (c *Client) MasterRef(ctx context.Context) (string, error) {
	query := url.Values{}
	if c.token != "" {
		query.Set("access_token", c.token)
	}
	req, err := c.base.NewRequest(ctx, http.MethodGet, "", query, nil)
	if err != nil {
		return "", err
	}

	var descriptor apiDescriptor
	if err := c.doJSON(req, &descriptor); err != nil {
		return "", err
	}
	for _, ref := range descriptor.Refs {
		if ref.IsMasterRef {
			return ref.Ref, nil
		}
	}
	return "", ErrNoMasterRef
}

// Query searches documents matching every predicate.
func (c *Client) Query(ctx context.Context, predicates []Predicate, opts QueryOptions) (SearchResponse, error) {
	if opts.PageCursor != "" {
		return c.fetchCursor(ctx, opts.PageCursor)
	}

	ref := opts.Ref
	if ref == "" {
		master, err := c.MasterRef(ctx)
		if err != nil {
			return SearchResponse{}, err
		}
		ref = master
	}

	query := url.Values{}
	query.Set("ref", ref)
	if len(predicates) > 0 {
		query.Set("q", encodePredicates(predicates))
	}
	if opts.PageSize > 0 {
		query.Set("pageSize", strconv.Itoa(opts.PageSize))
	}
	if len(opts.Orderings) > 0 {
		query.Set("orderings", encodeOrderings(opts.Orderings))
	}
	if opts.After != "" {
		query.Set("after", opts.After)
	}
	if c.token != "" {
		query.Set("access_token", c.token)
	}

	req, err := c.base.NewRequest(ctx, http.MethodGet, "/documents/search", query, nil)
	if err != nil {
		return SearchResponse{}, err
	}

	var out SearchResponse
	if err := c.doJSON(req, &out); err != nil {
		return SearchResponse{}, err
	}
	return out, nil
}

// fetchCursor follows a next_page URL handed out by a previous search.
func (c *Client) fetchCursor(ctx context.Context, cursor string) (SearchResponse, error) {
	u, err := url.Parse(cursor)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("%w: %v", ErrForeignCursor, err)
	}
	if !strings.EqualFold(u.Host, c.endpoint.Host) || !strings.HasPrefix(u.Path, c.endpoint.Path) {
		return SearchResponse{}, ErrForeignCursor
	}
	if c.token != "" {
		q := u.Query()
		if q.Get("access_token") == "" {
			q.Set("access_token", c.token)
			u.RawQuery = q.Encode()
		}
	}
	// Keep the configured scheme so a cursor cannot downgrade to plain http.
	u.Scheme = c.endpoint.Scheme

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return SearchResponse{}, err
	}

	var out SearchResponse
	if err := c.doJSON(req, &out); err != nil {
		return SearchResponse{}, err
	}
	return out, nil
}

// GetByUID returns the document of docType with the given uid.
func (c *Client) GetByUID(ctx context.Context, docType, uid string, opts QueryOptions) (RawDocument, error) {
	opts.PageCursor = ""
	opts.PageSize = 1
	opts.Orderings = nil
	opts.After = ""

	resp, err := c.Query(ctx, []Predicate{At("my."+docType+".uid", uid)}, opts)
	if err != nil {
		return RawDocument{}, err
	}
	if len(resp.Results) == 0 {
		return RawDocument{}, ErrNotFound
	}
	return resp.Results[0], nil
}

// PreviewSession resolves the document a preview token was issued for.
func (c *Client) PreviewSession(ctx context.Context, token, documentID string) (string, string, error) {
	if strings.TrimSpace(token) == "" || strings.TrimSpace(documentID) == "" {
		return "", "", ErrNotFound
	}
	resp, err := c.Query(ctx, []Predicate{At("document.id", documentID)}, QueryOptions{Ref: token, PageSize: 1})
	if err != nil {
		return "", "", err
	}
	if len(resp.Results) == 0 {
		return "", "", ErrNotFound
	}
	doc := resp.Results[0]
	return doc.Type, doc.UID, nil
}

func (c *Client) doJSON(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.base.Do(req)
	if err != nil {
		return fmt.Errorf("cms: request %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &APIError{Status: resp.StatusCode, Body: string(b)}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, 8<<20)).Decode(out); err != nil {
		return fmt.Errorf("cms: decode %s: %w", req.URL.Path, err)
	}
	return nil
}
