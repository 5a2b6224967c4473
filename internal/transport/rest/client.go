package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/domain"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/infra/config"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/infra/logger"
)

const (
	requestIDHeader = "X-Request-ID"
	maxResponseBody = 4 << 20
	maxDetailBody   = 64 << 10
)

var errServerFailure = errors.New("backend server failure")

// Session supplies the bearer token and receives credential rejections.
type Session interface {
	Token() (string, bool)
	HandleUnauthorized(ctx context.Context)
}

// Metrics receives one observation per backend round trip.
type Metrics interface {
	ObserveBackendRequest(endpoint, status string, elapsed time.Duration)
}

// Client talks to the platform API on behalf of the console.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker
	tracer    trace.Tracer
	logger    *zap.Logger
	metrics   Metrics
	clock     func() time.Time

	mu      sync.RWMutex
	session Session
}

// NewClient builds a client for the configured backend. A nil httpClient uses http.DefaultClient.
func NewClient(cfg config.BackendSettings, httpClient *http.Client, log *zap.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend base url %q", cfg.BaseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}

	limit := rate.Inf
	if cfg.RequestRate > 0 {
		limit = rate.Limit(cfg.RequestRate)
	}
	burst := cfg.RequestBurst
	if burst <= 0 {
		burst = 1
	}

	threshold := cfg.BreakerThreshold
	if threshold == 0 {
		threshold = 5
	}

	c := &Client{
		baseURL:   base,
		http:      httpClient,
		userAgent: cfg.UserAgent,
		limiter:   rate.NewLimiter(limit, burst),
		tracer:    otel.Tracer("github.com/Skiblinx/launchkart-FE-sub001/internal/transport/rest"),
		logger:    log,
		clock:     time.Now,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "platform-api",
		Interval: cfg.BreakerInterval,
		Timeout:  cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Backend circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return c, nil
}

// BindSession attaches the session that authorizes requests. Unbound clients treat every
// authorized call as missing its credential.
func (c *Client) BindSession(session Session) *Client {
	c.mu.Lock()
	c.session = session
	c.mu.Unlock()
	return c
}

// WithMetrics records backend round trips.
func (c *Client) WithMetrics(metrics Metrics) *Client {
	c.metrics = metrics
	return c
}

// WithClock overrides the clock used for latency measurements.
func (c *Client) WithClock(clock func() time.Time) *Client {
	if clock != nil {
		c.clock = clock
	}
	return c
}

type authMode int

const (
	// anonymous calls carry no bearer token.
	anonymous authMode = iota
	// sessionBearer uses the session token and reports rejections to the session.
	sessionBearer
	// explicitBearer uses a caller supplied token; rejections are returned only.
	explicitBearer
)

type call struct {
	op       string
	method   string
	path     string
	endpoint string
	query    url.Values
	body     any
	auth     authMode
	token    string
	out      any
}

type response struct {
	status int
	body   []byte
}

func (c *Client) do(ctx context.Context, in call) error {
	ctx, span := c.tracer.Start(ctx, "backend "+in.op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", in.method),
		attribute.String("console.endpoint", in.endpoint),
	)

	err := c.execute(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(domain.KindOf(err)))
	}
	return err
}

func (c *Client) execute(ctx context.Context, in call) error {
	token := in.token
	switch in.auth {
	case sessionBearer:
		session := c.boundSession()
		var ok bool
		if session != nil {
			token, ok = session.Token()
		}
		if !ok || token == "" {
			if session != nil {
				session.HandleUnauthorized(ctx)
			}
			return domain.NewError(domain.KindAuth, in.op, "not signed in", nil)
		}
	case explicitBearer:
		if strings.TrimSpace(token) == "" {
			return domain.NewError(domain.KindAuth, in.op, "token is required", nil)
		}
	}

	req, err := c.newRequest(ctx, in, token)
	if err != nil {
		return domain.NewError(domain.KindTransport, in.op, "", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return domain.NewError(domain.KindTransport, in.op, "", err)
	}

	started := c.clock()
	var res *response
	_, err = c.breaker.Execute(func() (interface{}, error) {
		r, sendErr := c.send(req)
		if sendErr != nil {
			return nil, sendErr
		}
		res = r
		if r.status >= http.StatusInternalServerError {
			return nil, errServerFailure
		}
		return nil, nil
	})
	c.observe(in.endpoint, res, c.clock().Sub(started))

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return domain.NewError(domain.KindTransport, in.op, "Service temporarily unavailable. Please try again.", err)
	case err != nil && res == nil:
		c.logger.Warn("Backend request failed",
			zap.String("op", in.op),
			zap.String("request_id", req.Header.Get(requestIDHeader)),
			zap.Error(err),
		)
		return domain.NewError(domain.KindTransport, in.op, "", err)
	}

	if res.status >= 200 && res.status < 300 {
		if in.out == nil || len(bytes.TrimSpace(res.body)) == 0 {
			return nil
		}
		if err := json.Unmarshal(res.body, in.out); err != nil {
			return domain.NewError(domain.KindServer, in.op, "unexpected response from server", err)
		}
		return nil
	}

	classified := classify(in.op, res)
	if res.status == http.StatusUnauthorized && in.auth == sessionBearer {
		if session := c.boundSession(); session != nil {
			c.logger.Info("Backend rejected session token", zap.String("op", in.op))
			session.HandleUnauthorized(ctx)
		}
	}
	return classified
}

func (c *Client) newRequest(ctx context.Context, in call, token string) (*http.Request, error) {
	target := c.baseURL.JoinPath(in.path)
	if len(in.query) > 0 {
		target.RawQuery = in.query.Encode()
	}

	var body io.Reader
	if in.body != nil {
		payload, err := json.Marshal(in.body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, in.method, target.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if in.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	requestID := logger.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set(requestIDHeader, requestID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	return req, nil
}

func (c *Client) send(req *http.Request) (*response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &response{status: resp.StatusCode, body: body}, nil
}

func (c *Client) observe(endpoint string, res *response, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	status := "error"
	if res != nil {
		status = strconv.Itoa(res.status)
	}
	c.metrics.ObserveBackendRequest(endpoint, status, elapsed)
}

func (c *Client) boundSession() Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// classify maps a non-2xx response onto the error taxonomy, keeping the server detail verbatim.
func classify(op string, res *response) error {
	var kind domain.ErrorKind
	switch {
	case res.status == http.StatusUnauthorized:
		kind = domain.KindAuth
	case res.status == http.StatusForbidden:
		kind = domain.KindAuthorization
	case res.status == http.StatusNotFound:
		kind = domain.KindNotFound
	case res.status == http.StatusBadRequest, res.status == http.StatusUnprocessableEntity, res.status == http.StatusConflict:
		kind = domain.KindValidation
	case res.status == http.StatusTooManyRequests, res.status == http.StatusRequestTimeout:
		kind = domain.KindTransport
	default:
		kind = domain.KindServer
	}
	e := domain.NewError(kind, op, detailFrom(res.body), nil)
	e.Status = res.status
	return e
}

// detailFrom extracts {"detail": "..."} or the first {"detail": [{"msg": "..."}]} entry,
// falling back to message or error fields.
func detailFrom(body []byte) string {
	if len(body) > maxDetailBody {
		return ""
	}
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if len(payload.Detail) > 0 {
		var text string
		if err := json.Unmarshal(payload.Detail, &text); err == nil {
			return strings.TrimSpace(text)
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(payload.Detail, &items); err == nil && len(items) > 0 {
			return strings.TrimSpace(items[0].Msg)
		}
	}
	if payload.Message != "" {
		return strings.TrimSpace(payload.Message)
	}
	return strings.TrimSpace(payload.Error)
}
