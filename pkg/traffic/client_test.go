package traffic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "admin", "123456")
}

func TestLogin_FormEncoded(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/login", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "admin", r.PostFormValue("username"))
		assert.Equal(t, "123456", r.PostFormValue("password"))

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"access_token":"traffic-tok"}`))
	})

	token, err := c.Login(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "traffic-tok", token)
}

func TestLogin_Failure(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"non-2xx", http.StatusForbidden, `{"detail":"bad credentials"}`},
		{"missing token", http.StatusOK, `{}`},
		{"malformed body", http.StatusOK, `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := c.Login(context.Background())
			require.Error(t, err)

			var ae *AuthError
			assert.ErrorAs(t, err, &ae)
		})
	}
}

func TestSubmit_SingleLocationBatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/analyze-traffic", r.URL.Path)
		assert.Equal(t, "Bearer traffic-tok", r.Header.Get("Authorization"))

		var body struct {
			Locations []Location `json:"locations"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Locations, 1)
		assert.Equal(t, "north", body.Locations[0].StorefrontDirection)
		assert.Equal(t, "friday", body.Locations[0].Day)

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"job_id":"job-9001"}`))
	})

	id, err := c.Submit(context.Background(), Location{
		Lat:                 24.7136,
		Lng:                 46.6753,
		StorefrontDirection: "north",
		Day:                 "friday",
		Time:                "18:00",
	}, "traffic-tok")
	require.NoError(t, err)
	assert.Equal(t, "job-9001", id)
}

func TestSubmit_Non2xxIsSubmissionError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":"unsupported direction"}`))
	})

	_, err := c.Submit(context.Background(), Location{}, "tok")
	require.Error(t, err)

	var se *SubmissionError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnprocessableEntity, se.StatusCode)
}

func TestGetJob_DecodesPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/job/job-9001", r.URL.Path)
		assert.Equal(t, "Bearer traffic-tok", r.Header.Get("Authorization"))

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"status": "done",
			"result": {"results": [
				{"score": 82.5, "storefront_score": 71.0, "area_score": 88.0,
				 "screenshot_url": "https://cdn.example.com/shots/abc123.png"}
			]}
		}`))
	})

	job, err := c.GetJob(context.Background(), "job-9001", "traffic-tok")
	require.NoError(t, err)
	assert.Equal(t, StatusDone, job.Status)
	require.NotNil(t, job.Result)
	require.Len(t, job.Result.Results, 1)
	assert.Equal(t, 82.5, job.Result.Results[0].Score)
}

func TestGetJob_Non2xxIsAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"unknown job"}`))
	})

	_, err := c.GetJob(context.Background(), "nope", "tok")
	require.Error(t, err)

	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusNotFound, ae.StatusCode)
}
