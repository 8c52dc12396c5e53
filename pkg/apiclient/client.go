package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/dmitrymomot/bellfeed/pkg/logger"
	"github.com/dmitrymomot/bellfeed/pkg/notifications"
	"github.com/dmitrymomot/bellfeed/pkg/requestid"
)

// maxErrorBody bounds how much of an error response is kept in Error.Body.
const maxErrorBody = 4 << 10

// Client is safe for concurrent use.
type Client struct {
	base      *url.URL
	http      *http.Client
	headers   http.Header
	limiter   *rate.Limiter
	logger    *slog.Logger
	requestID func() string
}

var _ notifications.API = (*Client)(nil)

// New builds a client from cfg. A missing client id is replaced by a random
// one for the lifetime of the client.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	base, err := url.Parse(strings.TrimRight(cfg.ServerURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidServerURL, cfg.ServerURL)
	}
	if cfg.ClientID == "" {
		cfg.ClientID = uuid.NewString()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		base: base,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		headers:   accountHeaders(cfg),
		logger:    slog.Default(),
		requestID: requestid.New,
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.RateBurst, 1))
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logger.Component("apiclient"))
	return c, nil
}

// Get sends a GET with query and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// Post sends body as JSON and decodes the response into out. Nil body and
// out are allowed.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// Put sends body as JSON and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

// Destroy sends a DELETE to path.
func (c *Client) Destroy(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// FetchNotifications implements notifications.API.
func (c *Client) FetchNotifications(ctx context.Context, params notifications.Params) (*notifications.Page, error) {
	var page WirePage
	if err := c.Get(ctx, "/notifications", params.Values(), &page); err != nil {
		return nil, err
	}
	return page.Decode(), nil
}

func (c *Client) MarkAsRead(ctx context.Context, id string) error {
	return c.notificationAction(ctx, id, "read")
}

func (c *Client) MarkAsUnread(ctx context.Context, id string) error {
	return c.notificationAction(ctx, id, "unread")
}

func (c *Client) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidID
	}
	return c.Destroy(ctx, "/notifications/"+url.PathEscape(id))
}

func (c *Client) MarkAllAsSeen(ctx context.Context) error {
	return c.Post(ctx, "/notifications/seen", nil, nil)
}

func (c *Client) MarkAllAsRead(ctx context.Context) error {
	return c.Post(ctx, "/notifications/read", nil, nil)
}

func (c *Client) notificationAction(ctx context.Context, id, action string) error {
	if id == "" {
		return ErrInvalidID
	}
	return c.Post(ctx, "/notifications/"+url.PathEscape(id)+"/"+action, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return errors.Join(ErrRequestFailed, err)
		}
	}

	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("apiclient: encode request body: %w", err)
		}
		payload = bytes.NewReader(raw)
	}

	u := c.base.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), payload)
	if err != nil {
		return errors.Join(ErrRequestFailed, err)
	}
	for key, values := range c.headers {
		req.Header[key] = values
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := requestid.FromContext(ctx)
	if requestID == "" {
		requestID = c.requestID()
	}
	req.Header.Set(HeaderRequestID, requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "request failed",
			logger.Method(method),
			logger.Path(path),
			logger.RequestID(requestID),
			logger.Error(err),
		)
		return errors.Join(ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	c.logger.LogAttrs(ctx, slog.LevelDebug, "request done",
		logger.Method(method),
		logger.Path(path),
		logger.RequestID(requestID),
		logger.Status(resp.StatusCode),
		logger.Duration(time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &Error{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			RequestID:  requestID,
			Body:       string(raw),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Join(ErrDecodeResponse, err)
	}
	return nil
}
