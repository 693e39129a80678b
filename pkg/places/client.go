// Package places provides authenticated access to the external
// business-dataset API used for competition and complementary scoring.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the business-dataset API operations.
type Client interface {
	Login(ctx context.Context) (string, error)
	FetchDataset(ctx context.Context, q Query, token string) ([]Business, error)
}

// Query selects businesses around a point. Categories are joined with a
// logical OR on the wire.
type Query struct {
	Lat          float64
	Lng          float64
	RadiusMeters int
	Categories   []string
}

// Business is a single feature returned by the dataset endpoint.
type Business struct {
	Name    string   `json:"name"`
	Types   []string `json:"types"`
	Rating  float64  `json:"rating"`
	Address string   `json:"address"`
}

// Category returns the first entry of Types, or "unknown" when absent.
func (b Business) Category() string {
	if len(b.Types) == 0 || b.Types[0] == "" {
		return "unknown"
	}
	return b.Types[0]
}

// AuthError is returned when login fails or the token field is absent.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("places: auth failed (HTTP %d): %s", e.StatusCode, e.Message)
}

// APIError is returned when the dataset endpoint responds with a non-2xx
// status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("places: HTTP %d: %s", e.StatusCode, e.Body)
}

// envelope is the request wrapper every endpoint expects.
type envelope struct {
	Message     string         `json:"message"`
	RequestInfo map[string]any `json:"request_info"`
	RequestBody any            `json:"request_body"`
}

func wrap(body any) envelope {
	return envelope{
		Message:     "string",
		RequestInfo: map[string]any{"additionalProp1": map[string]any{}},
		RequestBody: body,
	}
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithUserID overrides the dataset user id sent with every fetch.
func WithUserID(id string) Option {
	return func(c *httpClient) {
		c.userID = id
	}
}

// WithRateLimit sets a per-second rate limit for API calls.
// A burst equal to the integer portion of rps is allowed.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

// httpClient implements Client using net/http.
type httpClient struct {
	baseURL  string
	email    string
	password string
	userID   string
	http     *http.Client
	limiter  *rate.Limiter
}

// defaultUserID is the dataset account the upstream service samples under.
const defaultUserID = "JnaGDCKoSoWtj6NWEVW8MDMBCiA2"

// NewClient creates a new dataset client. The upstream service misbehaves
// with reused sessions, so keep-alives are disabled: every call opens and
// closes its own transport connection. Callers needing many fetches call
// many times.
func NewClient(baseURL, email, password string, opts ...Option) Client {
	c := &httpClient{
		baseURL:  baseURL,
		email:    email,
		password: password,
		userID:   defaultUserID,
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				DisableKeepAlives: true,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// wait blocks until the rate limiter allows one event, or ctx is cancelled.
func (c *httpClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

type loginResponse struct {
	Data struct {
		IDToken string `json:"idToken"`
	} `json:"data"`
}

// Login posts the configured credentials and returns a bearer token. Tokens
// are not cached: each logical scoring operation authenticates afresh because
// the upstream token lifetime is unknown.
func (c *httpClient) Login(ctx context.Context) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", eris.Wrap(err, "places: rate limit")
	}

	body := wrap(map[string]string{
		"email":    c.email,
		"password": c.password,
	})

	status, data, err := c.post(ctx, "/fastapi/login", body, "")
	if err != nil {
		return "", eris.Wrap(err, "places: login")
	}
	if status < 200 || status >= 300 {
		return "", &AuthError{StatusCode: status, Message: string(data)}
	}

	var resp loginResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", &AuthError{StatusCode: status, Message: "malformed login response"}
	}
	if resp.Data.IDToken == "" {
		return "", &AuthError{StatusCode: status, Message: "token field absent"}
	}
	return resp.Data.IDToken, nil
}

type fetchResponse struct {
	Data struct {
		Features json.RawMessage `json:"features"`
	} `json:"data"`
}

// FetchDataset posts a sampling query with the bearer token attached and
// returns the matched businesses. An absent or malformed features key yields
// an empty slice, not an error.
func (c *httpClient) FetchDataset(ctx context.Context, q Query, token string) ([]Business, error) {
	if err := c.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "places: rate limit")
	}

	body := wrap(map[string]any{
		"lat":           q.Lat,
		"lng":           q.Lng,
		"user_id":       c.userID,
		"boolean_query": strings.Join(q.Categories, " OR "),
		"action":        "sample",
		"radius":        q.RadiusMeters,
	})

	status, data, err := c.post(ctx, "/fastapi/fetch_dataset", body, token)
	if err != nil {
		return nil, eris.Wrap(err, "places: fetch dataset")
	}
	if status < 200 || status >= 300 {
		return nil, &APIError{StatusCode: status, Body: string(data)}
	}

	var resp fetchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, eris.Wrap(err, "places: decode dataset response")
	}

	var businesses []Business
	if len(resp.Data.Features) == 0 || json.Unmarshal(resp.Data.Features, &businesses) != nil {
		return []Business{}, nil
	}
	return businesses, nil
}

func (c *httpClient) post(ctx context.Context, path string, body any, token string) (int, []byte, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return 0, nil, eris.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return 0, nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, eris.Wrap(err, "execute request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, eris.Wrap(err, "read response body")
	}
	return resp.StatusCode, data, nil
}
