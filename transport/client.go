package transport

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

	"github.com/MrEthical07/goFlow/flow"
	"github.com/MrEthical07/goFlow/pkg/log"
	"github.com/cenkalti/backoff/v4"
	"github.com/tidwall/gjson"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultMaxRetries   = 3
	defaultRetryBackoff = 100 * time.Millisecond
	maxBodyBytes        = 1 << 20
)

var (
	ErrBaseURLRequired = errors.New("provider base URL required")
	ErrInvalidFlowType = errors.New("invalid flow type")
	ErrNoSession       = errors.New("no active session")
)

// Config configures a [Client].
type Config struct {
	// BaseURL is the provider's public API root, e.g. https://id.example.com.
	BaseURL string
	// Timeout bounds a single HTTP request.
	Timeout time.Duration
	// MaxRetries bounds retries of idempotent reads. Zero uses the default;
	// a negative value disables retries.
	MaxRetries int
	// RetryBackoff is the initial retry interval.
	RetryBackoff time.Duration
	// HTTPClient overrides the underlying client. Its CheckRedirect is
	// replaced so redirects surface to the caller.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Session is the identity behind the current browser session.
type Session struct {
	ID         string
	IdentityID string
	Email      string
	Name       string
	AvatarURL  string
	Active     bool
}

// Client talks to the provider's self-service API on behalf of a browser.
type Client struct {
	base       *url.URL
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	logger     *slog.Logger
}

// New returns a client for cfg.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrBaseURLRequired
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || !base.IsAbs() {
		return nil, fmt.Errorf("%w: %q", ErrBaseURLRequired, cfg.BaseURL)
	}

	hc := &http.Client{}
	if cfg.HTTPClient != nil {
		copied := *cfg.HTTPClient
		hc = &copied
	}
	if hc.Timeout == 0 {
		hc.Timeout = cfg.Timeout
		if hc.Timeout <= 0 {
			hc.Timeout = defaultTimeout
		}
	}
	hc.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	retries := cfg.MaxRetries
	switch {
	case retries == 0:
		retries = defaultMaxRetries
	case retries < 0:
		retries = 0
	}
	interval := cfg.RetryBackoff
	if interval <= 0 {
		interval = defaultRetryBackoff
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		base:       base,
		httpClient: hc,
		maxRetries: retries,
		backoff:    interval,
		logger:     logger,
	}, nil
}

// GetFlow fetches the flow id of kind.
func (c *Client) GetFlow(ctx context.Context, kind flow.Type, id string) (flow.Document, error) {
	if !kind.Valid() {
		return flow.Document{}, fmt.Errorf("%w: %q", ErrInvalidFlowType, kind)
	}

	var doc flow.Document
	err := c.retry(ctx, func() error {
		body, err := c.read(ctx, kind, "/self-service/"+string(kind)+"/flows", url.Values{"id": {id}})
		if err != nil {
			return err
		}
		doc, err = decodeDocument(kind, body)
		return err
	})
	return doc, err
}

// CreateBrowserFlow starts a new browser flow of kind. returnTo is passed
// through to the provider when set.
func (c *Client) CreateBrowserFlow(ctx context.Context, kind flow.Type, returnTo string) (flow.Document, error) {
	if !kind.Valid() {
		return flow.Document{}, fmt.Errorf("%w: %q", ErrInvalidFlowType, kind)
	}
	query := url.Values{}
	if returnTo != "" {
		query.Set("return_to", returnTo)
	}

	var doc flow.Document
	err := c.retry(ctx, func() error {
		body, err := c.read(ctx, kind, "/self-service/"+string(kind)+"/browser", query)
		if err != nil {
			return err
		}
		doc, err = decodeDocument(kind, body)
		return err
	})
	return doc, err
}

// UpdateFlow submits body to flow id. It is never retried.
func (c *Client) UpdateFlow(ctx context.Context, kind flow.Type, id string, body flow.UpdateBody) (flow.UpdateResult, error) {
	if !kind.Valid() {
		return flow.UpdateResult{}, fmt.Errorf("%w: %q", ErrInvalidFlowType, kind)
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return flow.UpdateResult{}, err
	}

	resp, respBody, err := c.do(ctx, http.MethodPost, "/self-service/"+string(kind), url.Values{"flow": {id}}, payload)
	if err != nil {
		return flow.UpdateResult{}, unwrapRetryable(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.DebugContext(ctx, "provider rejected submission",
			log.FlowID(id),
			log.FlowType(kind),
			log.Status(resp.StatusCode),
		)
		return flow.UpdateResult{}, classify(kind, resp.StatusCode, resp.Header, respBody)
	}
	return decodeUpdateResult(kind, respBody)
}

// CreateLogoutFlow creates a browser logout flow for the current session.
func (c *Client) CreateLogoutFlow(ctx context.Context) (flow.LogoutFlow, error) {
	var lf flow.LogoutFlow
	err := c.retry(ctx, func() error {
		body, err := c.read(ctx, "", "/self-service/logout/browser", nil)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(body, &lf); err != nil {
			return &flow.ResponseError{Kind: flow.KindMalformed, Status: http.StatusOK, Err: fmt.Errorf("%w: %w", flow.ErrMalformedBody, err)}
		}
		return nil
	})
	return lf, err
}

// SubmitLogout completes the logout flow identified by token.
func (c *Client) SubmitLogout(ctx context.Context, token string) error {
	resp, body, err := c.do(ctx, http.MethodGet, "/self-service/logout", url.Values{"token": {token}}, nil)
	if err != nil {
		return unwrapRetryable(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classify("", resp.StatusCode, resp.Header, body)
	}
	return nil
}

// Whoami returns the session of the forwarded cookies, or ErrNoSession.
func (c *Client) Whoami(ctx context.Context) (Session, error) {
	var s Session
	err := c.retry(ctx, func() error {
		resp, body, err := c.do(ctx, http.MethodGet, "/sessions/whoami", nil, nil)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return backoff.Permanent(ErrNoSession)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return classify("", resp.StatusCode, resp.Header, body)
		}
		if !gjson.ValidBytes(body) {
			return &flow.ResponseError{Kind: flow.KindMalformed, Status: resp.StatusCode, Err: flow.ErrMalformedBody}
		}
		parsed := gjson.ParseBytes(body)
		s = Session{
			ID:         parsed.Get("id").String(),
			IdentityID: parsed.Get("identity.id").String(),
			Email:      parsed.Get("identity.traits.email").String(),
			Name:       sessionName(parsed.Get("identity.traits.name")),
			AvatarURL:  parsed.Get("identity.traits.picture").String(),
			Active:     parsed.Get("active").Bool(),
		}
		return nil
	})
	if err != nil {
		return Session{}, err
	}
	if !s.Active {
		return Session{}, ErrNoSession
	}
	return s, nil
}

func sessionName(v gjson.Result) string {
	if v.IsObject() {
		first := v.Get("first").String()
		last := v.Get("last").String()
		return strings.TrimSpace(first + " " + last)
	}
	return v.String()
}

// read performs a GET and returns the body of a 2xx answer or the
// classified error.
func (c *Client) read(ctx context.Context, kind flow.Type, path string, query url.Values) ([]byte, error) {
	resp, body, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if retryableStatus(resp.StatusCode) {
			return nil, &retryableError{err: classify(kind, resp.StatusCode, resp.Header, body)}
		}
		return nil, classify(kind, resp.StatusCode, resp.Header, body)
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload []byte) (*http.Response, []byte, error) {
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookies := cookiesFromContext(ctx); cookies != "" {
		req.Header.Set("Cookie", cookies)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "provider request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.Duration("duration", time.Since(start)),
			log.Error(err),
		)
		return nil, nil, &retryableError{err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, nil, &retryableError{err: err}
	}
	relayCookies(ctx, resp)
	return resp, body, nil
}

// retryableError marks failures an idempotent read may retry.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func retryableStatus(status int) bool {
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func (c *Client) newBackOff(ctx context.Context) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.backoff
	bo.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.maxRetries)), ctx)
}

// retry runs op until it succeeds, fails permanently, or the retry budget
// is spent. Only transport failures and gateway statuses are retried.
func (c *Client) retry(ctx context.Context, op func() error) error {
	err := backoff.Retry(func() error {
		err := op()
		var re *retryableError
		if err != nil && !errors.As(err, &re) {
			return backoff.Permanent(err)
		}
		return err
	}, c.newBackOff(ctx))
	return unwrapRetryable(err)
}

// unwrapRetryable hides the retry marker from callers.
func unwrapRetryable(err error) error {
	var re *retryableError
	if errors.As(err, &re) {
		return re.err
	}
	return err
}
