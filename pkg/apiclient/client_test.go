package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/dmitrymomot/bellfeed/pkg/apiclient"
	"github.com/dmitrymomot/bellfeed/pkg/notifications"
	"github.com/dmitrymomot/bellfeed/pkg/requestid"
)

type recorded struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   string
}

type recorder struct {
	mu       sync.Mutex
	requests []recorded
	status   int
	body     string
}

func (r *recorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	raw, _ := io.ReadAll(req.Body)
	r.mu.Lock()
	r.requests = append(r.requests, recorded{
		Method: req.Method,
		Path:   req.URL.EscapedPath(),
		Query:  req.URL.RawQuery,
		Header: req.Header.Clone(),
		Body:   string(raw),
	})
	status, body := r.status, r.body
	r.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (r *recorder) last(t *testing.T) recorded {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.requests)
	return r.requests[len(r.requests)-1]
}

func newClient(t *testing.T, rec *recorder, cfg apiclient.Config, opts ...apiclient.Option) *apiclient.Client {
	t.Helper()
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)

	cfg.ServerURL = srv.URL
	if cfg.APIKey == "" {
		cfg.APIKey = "key"
	}
	opts = append([]apiclient.Option{apiclient.WithRequestIDFunc(func() string { return "req-1" })}, opts...)
	c, err := apiclient.New(cfg, opts...)
	require.NoError(t, err)
	return c
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     apiclient.Config
		wantErr error
	}{
		{name: "missing key", cfg: apiclient.Config{ServerURL: "https://api.example.com"}, wantErr: apiclient.ErrMissingAPIKey},
		{name: "relative url", cfg: apiclient.Config{ServerURL: "/api", APIKey: "k"}, wantErr: apiclient.ErrInvalidServerURL},
		{name: "valid", cfg: apiclient.Config{ServerURL: "https://api.example.com/", APIKey: "k"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, err := apiclient.New(tt.cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, c)
		})
	}
}

func TestClient_Headers(t *testing.T) {
	t.Parallel()

	t.Run("required and optional headers", func(t *testing.T) {
		t.Parallel()
		rec := &recorder{}
		c := newClient(t, rec, apiclient.Config{
			APIKey:         "pk_test",
			APISecret:      "sk_test",
			ClientID:       "client-1",
			UserEmail:      "jane@example.com",
			UserExternalID: "user-42",
			UserHMAC:       "given-hmac",
		})

		require.NoError(t, c.MarkAllAsRead(context.Background()))
		h := rec.last(t).Header

		assert.Equal(t, "client-1", h.Get(apiclient.HeaderClientID))
		assert.Equal(t, "pk_test", h.Get(apiclient.HeaderAPIKey))
		assert.Equal(t, "sk_test", h.Get(apiclient.HeaderAPISecret))
		assert.Equal(t, "jane@example.com", h.Get(apiclient.HeaderUserEmail))
		assert.Equal(t, "user-42", h.Get(apiclient.HeaderUserExternalID))
		assert.Equal(t, "given-hmac", h.Get(apiclient.HeaderUserHMAC))
		assert.Equal(t, "req-1", h.Get(apiclient.HeaderRequestID))
	})

	t.Run("request id from context", func(t *testing.T) {
		t.Parallel()
		rec := &recorder{}
		c := newClient(t, rec, apiclient.Config{APIKey: "pk_test"})

		ctx := requestid.WithContext(context.Background(), "ctx-req")
		require.NoError(t, c.MarkAllAsSeen(ctx))
		assert.Equal(t, "ctx-req", rec.last(t).Header.Get(apiclient.HeaderRequestID))
	})

	t.Run("optional headers omitted", func(t *testing.T) {
		t.Parallel()
		rec := &recorder{}
		c := newClient(t, rec, apiclient.Config{APIKey: "pk_test"})

		require.NoError(t, c.MarkAllAsSeen(context.Background()))
		h := rec.last(t).Header

		assert.NotEmpty(t, h.Get(apiclient.HeaderClientID), "client id is generated")
		for _, key := range []string{apiclient.HeaderAPISecret, apiclient.HeaderUserEmail, apiclient.HeaderUserExternalID, apiclient.HeaderUserHMAC} {
			assert.Empty(t, h.Values(key), key)
		}
	})

	t.Run("hmac derived from secret", func(t *testing.T) {
		t.Parallel()
		rec := &recorder{}
		c := newClient(t, rec, apiclient.Config{APIKey: "pk", APISecret: "secret", UserEmail: "jane@example.com"})

		require.NoError(t, c.MarkAllAsSeen(context.Background()))
		assert.Equal(t,
			apiclient.UserHMAC("secret", "", "jane@example.com"),
			rec.last(t).Header.Get(apiclient.HeaderUserHMAC),
		)
	})

	t.Run("extra header option", func(t *testing.T) {
		t.Parallel()
		rec := &recorder{}
		c := newClient(t, rec, apiclient.Config{}, apiclient.WithHeader("X-Trace", "abc"))
		require.NoError(t, c.MarkAllAsSeen(context.Background()))
		assert.Equal(t, "abc", rec.last(t).Header.Get("X-Trace"))
	})
}

func TestUserHMAC(t *testing.T) {
	t.Parallel()

	assert.Empty(t, apiclient.UserHMAC("", "user", ""))
	assert.Empty(t, apiclient.UserHMAC("secret", "", ""))
	assert.Equal(t, apiclient.UserHMAC("secret", "user", ""), apiclient.UserHMAC("secret", "user", "jane@example.com"))
	assert.NotEqual(t, apiclient.UserHMAC("secret", "", "a@example.com"), apiclient.UserHMAC("secret", "", "b@example.com"))
	// HMAC-SHA256("key", "The quick brown fox jumps over the lazy dog"), base64.
	assert.Equal(t, "97yD9DBThCSxMpjmqm+xQ+9NWaFJRhdZl0edvC0aPNg=",
		apiclient.UserHMAC("key", "The quick brown fox jumps over the lazy dog", ""))
}

func TestClient_Routes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		call       func(c *apiclient.Client) error
		wantMethod string
		wantPath   string
	}{
		{
			name:       "mark read",
			call:       func(c *apiclient.Client) error { return c.MarkAsRead(context.Background(), "n1") },
			wantMethod: http.MethodPost, wantPath: "/notifications/n1/read",
		},
		{
			name:       "mark unread",
			call:       func(c *apiclient.Client) error { return c.MarkAsUnread(context.Background(), "n1") },
			wantMethod: http.MethodPost, wantPath: "/notifications/n1/unread",
		},
		{
			name:       "delete escapes id",
			call:       func(c *apiclient.Client) error { return c.Delete(context.Background(), "a/b") },
			wantMethod: http.MethodDelete, wantPath: "/notifications/a%2Fb",
		},
		{
			name:       "mark all seen",
			call:       func(c *apiclient.Client) error { return c.MarkAllAsSeen(context.Background()) },
			wantMethod: http.MethodPost, wantPath: "/notifications/seen",
		},
		{
			name:       "mark all read",
			call:       func(c *apiclient.Client) error { return c.MarkAllAsRead(context.Background()) },
			wantMethod: http.MethodPost, wantPath: "/notifications/read",
		},
		{
			name: "put json body",
			call: func(c *apiclient.Client) error {
				return c.Put(context.Background(), "/preferences", map[string]bool{"email": false}, nil)
			},
			wantMethod: http.MethodPut, wantPath: "/preferences",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := &recorder{body: "{}"}
			c := newClient(t, rec, apiclient.Config{})

			require.NoError(t, tt.call(c))
			got := rec.last(t)
			assert.Equal(t, tt.wantMethod, got.Method)
			assert.Equal(t, tt.wantPath, got.Path)
		})
	}

	t.Run("empty id rejected", func(t *testing.T) {
		t.Parallel()
		rec := &recorder{}
		c := newClient(t, rec, apiclient.Config{})
		assert.ErrorIs(t, c.MarkAsRead(context.Background(), ""), apiclient.ErrInvalidID)
		assert.ErrorIs(t, c.Delete(context.Background(), ""), apiclient.ErrInvalidID)
		assert.Empty(t, rec.requests)
	})
}

func TestClient_FetchNotifications(t *testing.T) {
	t.Parallel()

	rec := &recorder{body: `{
		"total": 3, "current_page": 2, "per_page": 2, "total_pages": 2,
		"unread_count": 1, "unseen_count": 2,
		"notifications": [{
			"id": "n3", "title": "Invoice due", "content": null, "category": "billing",
			"action_url": "https://example.com/invoices/3",
			"custom_attributes": {"amount": 42},
			"sent_at": 1709294400, "read_at": null, "seen_at": 1709294400.5
		}]
	}`}
	c := newClient(t, rec, apiclient.Config{})

	page, err := c.FetchNotifications(context.Background(), notifications.Params{"read": false, "page": 2})
	require.NoError(t, err)

	assert.Equal(t, "page=2&read=false", rec.last(t).Query)
	assert.Equal(t, http.MethodGet, rec.last(t).Method)

	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 1, page.UnreadCount)
	assert.Equal(t, 2, page.UnseenCount)
	require.Len(t, page.Notifications, 1)

	n := page.Notifications[0]
	assert.Equal(t, "n3", n.ID)
	assert.Empty(t, n.Content)
	assert.Equal(t, "billing", n.Category)
	assert.Equal(t, "https://example.com/invoices/3", n.ActionURL)
	assert.InDelta(t, 42, n.CustomAttributes["amount"], 0)
	require.NotNil(t, n.SentAt)
	assert.True(t, n.SentAt.Equal(time.Unix(1709294400, 0)))
	assert.Nil(t, n.ReadAt)
	require.NotNil(t, n.SeenAt)
	assert.True(t, n.SeenAt.Equal(time.Unix(1709294400, 500_000_000)))
}

func TestClient_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		sentinel error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, sentinel: apiclient.ErrUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, sentinel: apiclient.ErrForbidden},
		{name: "not found", status: http.StatusNotFound, sentinel: apiclient.ErrNotFound},
		{name: "server", status: http.StatusBadGateway, sentinel: apiclient.ErrServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := &recorder{status: tt.status, body: `{"errors":[{"message":"nope"}]}`}
			c := newClient(t, rec, apiclient.Config{})

			_, err := c.FetchNotifications(context.Background(), nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)

			var apiErr *apiclient.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, "/notifications", apiErr.Path)
			assert.Equal(t, "req-1", apiErr.RequestID)
			assert.Contains(t, apiErr.Body, "nope")
		})
	}

	t.Run("forbidden message", func(t *testing.T) {
		t.Parallel()
		err := &apiclient.Error{StatusCode: http.StatusForbidden}
		assert.EqualError(t, err, "request failed with status code 403")
	})

	t.Run("invalid json", func(t *testing.T) {
		t.Parallel()
		rec := &recorder{body: "{"}
		c := newClient(t, rec, apiclient.Config{})
		_, err := c.FetchNotifications(context.Background(), nil)
		assert.ErrorIs(t, err, apiclient.ErrDecodeResponse)
	})

	t.Run("network failure", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		c, err := apiclient.New(apiclient.Config{ServerURL: srv.URL, APIKey: "k"})
		require.NoError(t, err)

		err = c.MarkAllAsRead(context.Background())
		assert.ErrorIs(t, err, apiclient.ErrRequestFailed)
		var apiErr *apiclient.Error
		assert.False(t, errors.As(err, &apiErr))
	})
}

func TestClient_RateLimit(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	c := newClient(t, rec, apiclient.Config{}, apiclient.WithLimiter(limiter))

	require.NoError(t, c.MarkAllAsSeen(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := c.MarkAllAsSeen(ctx)
	assert.ErrorIs(t, err, apiclient.ErrRequestFailed)
	assert.Len(t, rec.requests, 1)
}

func TestWire_RoundTrip(t *testing.T) {
	t.Parallel()

	sent := time.Unix(1709294400, 0).UTC()
	seen := time.Unix(1709294401, 250_000_000).UTC()
	page := &notifications.Page{
		Total: 1, CurrentPage: 1, PerPage: 15, TotalPages: 1, UnreadCount: 1,
		Notifications: []notifications.Notification{{ID: "n1", Title: "Hi", SentAt: &sent, SeenAt: &seen}},
	}

	raw, err := json.Marshal(apiclient.EncodePage(page))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"sent_at":1709294400`)
	assert.Contains(t, string(raw), `"seen_at":1709294401.25`)
	assert.Contains(t, string(raw), `"read_at":null`)

	var decoded apiclient.WirePage
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, page, decoded.Decode())
}
