// Package traffic talks to the external traffic-analysis service: login,
// job submission, and bounded status polling.
package traffic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// JobStatus is the service-reported state of an analysis job.
type JobStatus string

// Job states observed via polling. Timeout is a caller-side outcome, not a
// service state.
const (
	StatusPending  JobStatus = "pending"
	StatusRunning  JobStatus = "running"
	StatusDone     JobStatus = "done"
	StatusFailed   JobStatus = "failed"
	StatusCanceled JobStatus = "canceled"
)

// Location is a single analysis target in a batch job.
type Location struct {
	Lat                 float64 `json:"lat"`
	Lng                 float64 `json:"lng"`
	StorefrontDirection string  `json:"storefront_direction"`
	Day                 string  `json:"day"`
	Time                string  `json:"time"`
}

// LocationResult is the per-location payload inside a finished job. A
// non-empty Error marks a business-level failure for that location.
type LocationResult struct {
	Score           float64 `json:"score"`
	StorefrontScore float64 `json:"storefront_score"`
	AreaScore       float64 `json:"area_score"`
	ScreenshotURL   string  `json:"screenshot_url"`
	Error           string  `json:"error"`
}

// JobResult wraps the per-location results list.
type JobResult struct {
	Results []LocationResult `json:"results"`
}

// Job is the response from GET /job/{id}.
type Job struct {
	JobID  string     `json:"job_id"`
	Status JobStatus  `json:"status"`
	Result *JobResult `json:"result"`
	Error  string     `json:"error"`
}

// Client defines the traffic API operations.
type Client interface {
	Login(ctx context.Context) (string, error)
	Submit(ctx context.Context, loc Location, token string) (string, error)
	GetJob(ctx context.Context, id, token string) (*Job, error)
}

// AuthError is returned when the login flow fails.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("traffic: auth failed (HTTP %d): %s", e.StatusCode, e.Message)
}

// SubmissionError is returned when job submission is rejected.
type SubmissionError struct {
	StatusCode int
	Body       string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("traffic: submit job (HTTP %d): %s", e.StatusCode, e.Body)
}

// APIError is returned when a status request responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("traffic: HTTP %d: %s", e.StatusCode, e.Body)
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// httpClient implements Client using net/http. Keep-alives are disabled so
// every call, including each poll iteration, opens an independent short-lived
// connection.
type httpClient struct {
	baseURL  string
	username string
	password string
	http     *http.Client
}

// NewClient creates a new traffic API client.
func NewClient(baseURL, username, password string, opts ...Option) Client {
	c := &httpClient{
		baseURL:  baseURL,
		username: username,
		password: password,
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

// Login posts the form-encoded credentials and returns the access token.
func (c *httpClient) Login(ctx context.Context) (string, error) {
	form := url.Values{
		"username": {c.username},
		"password": {c.password},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login",
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", eris.Wrap(err, "traffic: create login request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	status, data, err := c.do(req)
	if err != nil {
		return "", eris.Wrap(err, "traffic: login")
	}
	if status < 200 || status >= 300 {
		return "", &AuthError{StatusCode: status, Message: string(data)}
	}

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", &AuthError{StatusCode: status, Message: "malformed login response"}
	}
	if resp.AccessToken == "" {
		return "", &AuthError{StatusCode: status, Message: "access_token absent"}
	}
	return resp.AccessToken, nil
}

// Submit posts a single-location batch job and returns its id.
func (c *httpClient) Submit(ctx context.Context, loc Location, token string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"locations": []Location{loc},
	})
	if err != nil {
		return "", eris.Wrap(err, "traffic: marshal job")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze-traffic",
		bytes.NewReader(body))
	if err != nil {
		return "", eris.Wrap(err, "traffic: create submit request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	status, data, err := c.do(req)
	if err != nil {
		return "", eris.Wrap(err, "traffic: submit job")
	}
	if status < 200 || status >= 300 {
		return "", &SubmissionError{StatusCode: status, Body: string(data)}
	}

	var resp struct {
		JobID string `json:"job_id"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", eris.Wrap(err, "traffic: decode submit response")
	}
	if resp.JobID == "" {
		return "", &SubmissionError{StatusCode: status, Body: "job_id absent"}
	}
	return resp.JobID, nil
}

// GetJob fetches the current state of a job.
func (c *httpClient) GetJob(ctx context.Context, id, token string) (*Job, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/job/%s", c.baseURL, id), nil)
	if err != nil {
		return nil, eris.Wrap(err, "traffic: create status request")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	status, data, err := c.do(req)
	if err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("traffic: get job %s", id))
	}
	if status < 200 || status >= 300 {
		return nil, &APIError{StatusCode: status, Body: string(data)}
	}

	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, eris.Wrap(err, "traffic: decode job response")
	}
	return &job, nil
}

func (c *httpClient) do(req *http.Request) (int, []byte, error) {
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
