package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-client/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-client/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-client/internal/platform/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds every request when the config leaves it unset.
	DefaultTimeout = 10 * time.Second

	maxResponseBytes = 10 << 20
	maxErrorBodyLog  = 512

	headerRequestID    = "X-Request-ID"
	headerTunnelBypass = "bypass-tunnel-reminder"
)

// PipelineConfig configures the request pipeline.
type PipelineConfig struct {
	BaseURL      string
	Timeout      time.Duration
	AuthScheme   string
	TunnelBypass bool
}

// Request describes one call to the catalog service.
type Request struct {
	Op        string            // operation name used in logs, metrics and spans
	Method    string
	Path      string            // relative to the base URL
	Query     map[string]string // empty values are omitted
	JSON      any
	Multipart *MultipartBody
	Schema    string // response schema name; empty skips validation
}

// Sender is the contract the catalog client needs from the pipeline.
type Sender interface {
	Send(ctx context.Context, req Request, out any) error
}

// Pipeline builds, authenticates, times out and normalizes every catalog request.
type Pipeline struct {
	cfg        PipelineConfig
	baseURL    string
	httpClient *http.Client
	creds      domain.CredentialProvider
	logger     *logger.Logger
	metrics    *metrics.MetricsManager
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
	schemas    *schemaSet
	requestID  func() string
}

type PipelineOption func(*Pipeline)

// WithHTTPClient replaces the default http.Client. Its own Timeout is left untouched;
// the pipeline applies cfg.Timeout through the request context.
func WithHTTPClient(c *http.Client) PipelineOption {
	return func(p *Pipeline) { p.httpClient = c }
}

// WithRequestIDGenerator overrides the X-Request-ID source.
func WithRequestIDGenerator(gen func() string) PipelineOption {
	return func(p *Pipeline) { p.requestID = gen }
}

// NewPipeline validates cfg and prepares the response schemas.
// creds, log and m may be nil.
func NewPipeline(cfg PipelineConfig, creds domain.CredentialProvider, log *logger.Logger, m *metrics.MetricsManager, opts ...PipelineOption) (*Pipeline, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid catalog base URL %q", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "tma"
	}
	if log == nil {
		log = logger.NewNop()
	}

	schemas, err := loadSchemas()
	if err != nil {
		return nil, fmt.Errorf("load response schemas: %w", err)
	}

	p := &Pipeline{
		cfg:        cfg,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{},
		creds:      creds,
		logger:     log.Named("Pipeline"),
		metrics:    m,
		tracer:     otel.Tracer("marketplace-client/restapi"),
		propagator: otel.GetTextMapPropagator(),
		schemas:    schemas,
		requestID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Send performs req and decodes a successful JSON body into out (nil discards it).
// Every failure comes back as a *domain.RequestError of kind network or fetch.
func (p *Pipeline) Send(ctx context.Context, req Request, out any) error {
	start := time.Now()
	requestID := p.requestID()

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	ctx, span := p.tracer.Start(ctx, "catalog."+req.Op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.Path),
			attribute.String("catalog.request_id", requestID),
		),
	)
	defer span.End()

	statusCode, err := p.do(ctx, req, requestID, out)
	elapsed := time.Since(start)

	if statusCode != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", statusCode))
	}
	if err != nil {
		kind := domain.KindOf(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(kind))
		p.metrics.ObserveRequest(req.Op, string(kind), elapsed)
		p.logger.Error("Catalog request failed",
			zap.String("op", req.Op),
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.String("request_id", requestID),
			zap.Int("status_code", statusCode),
			zap.String("error_kind", string(kind)),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		return err
	}

	p.metrics.ObserveRequest(req.Op, "ok", elapsed)
	p.logger.Debug("Catalog request completed",
		zap.String("op", req.Op),
		zap.String("path", req.Path),
		zap.String("request_id", requestID),
		zap.Int("status_code", statusCode),
		zap.Duration("duration", elapsed),
	)
	return nil
}

func (p *Pipeline) do(ctx context.Context, req Request, requestID string, out any) (int, error) {
	fail := func(kind domain.ErrorKind, status int, body string, err error) error {
		return &domain.RequestError{
			Kind:       kind,
			Op:         req.Op,
			Method:     req.Method,
			Path:       req.Path,
			StatusCode: status,
			Body:       body,
			Err:        err,
		}
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return 0, fail(domain.KindFetch, 0, "", fmt.Errorf("encode request body: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, p.buildURL(req.Path, req.Query), body)
	if err != nil {
		return 0, fail(domain.KindFetch, 0, "", fmt.Errorf("create request: %w", err))
	}

	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set(headerRequestID, requestID)
	if p.cfg.TunnelBypass {
		httpReq.Header.Set(headerTunnelBypass, "true")
	}
	if p.creds != nil {
		if credential, ok := p.creds.Credential(); ok && credential != "" {
			httpReq.Header.Set("Authorization", p.cfg.AuthScheme+" "+credential)
		}
	}
	p.propagator.Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return 0, fail(domain.KindNetwork, 0, "", classifyTransportError(ctx, err, p.cfg.Timeout))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, fail(domain.KindNetwork, resp.StatusCode, "", classifyTransportError(ctx, err, p.cfg.Timeout))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := truncate(string(raw), maxErrorBodyLog)
		return resp.StatusCode, fail(domain.KindFetch, resp.StatusCode, snippet,
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, extractMessage(raw)))
	}

	if out == nil {
		return resp.StatusCode, nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return resp.StatusCode, fail(domain.KindFetch, resp.StatusCode, "", errors.New("empty response body"))
	}
	if req.Schema != "" {
		if err := p.schemas.validate(req.Schema, raw); err != nil {
			return resp.StatusCode, fail(domain.KindFetch, resp.StatusCode, truncate(string(raw), maxErrorBodyLog), err)
		}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return resp.StatusCode, fail(domain.KindFetch, resp.StatusCode, truncate(string(raw), maxErrorBodyLog),
			fmt.Errorf("decode response body: %w", err))
	}
	return resp.StatusCode, nil
}

func (p *Pipeline) buildURL(path string, query map[string]string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	target := p.baseURL + path

	values := url.Values{}
	for k, v := range query {
		if v == "" {
			continue
		}
		values.Set(k, v)
	}
	if encoded := values.Encode(); encoded != "" {
		target += "?" + encoded
	}
	return target
}

func encodeBody(req Request) (io.Reader, string, error) {
	switch {
	case req.Multipart != nil:
		return req.Multipart.encode()
	case req.JSON != nil:
		b, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(b), "application/json", nil
	default:
		return nil, "", nil
	}
}

func classifyTransportError(ctx context.Context, err error, timeout time.Duration) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out after %s: %w", timeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("request timed out: %w", err)
	}
	return fmt.Errorf("transport failure: %w", err)
}

// extractMessage pulls a human-readable message out of a JSON error body when there is one.
func extractMessage(raw []byte) string {
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	return truncate(strings.TrimSpace(string(raw)), 120)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
