// Package cushypost provides a stateful client for the CushyPost shipping
// quotation and fulfillment API.
//
// A Client is a session: it holds credentials, the two resolved locations,
// the services and shipping nodes, and an address lookup cache. Operations
// are meant to be called in order (addresses, services, shipping, rates,
// approval, cart) by a single goroutine; the caller serializes access when a
// Client is shared.
package cushypost

import (
	"context"
	"slices"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

const tracerName = "github.com/tournevent/cushypost/pkg/cushypost"

// Environment selects the deployment target of the remote API.
type Environment string

const (
	EnvironmentTest       Environment = "TEST"
	EnvironmentProduction Environment = "PRD"
)

// BaseURL returns the API address of the environment.
func (e Environment) BaseURL() (string, error) {
	switch e {
	case EnvironmentTest:
		return "https://test.api.cushypost.com", nil
	case EnvironmentProduction:
		return "https://api.cushypost.com", nil
	default:
		return "", fail(ErrInvalidEnvironment)
	}
}

// DefaultMaxSearchPages bounds SearchByQuotationID when Config leaves it unset.
const DefaultMaxSearchPages = 50

// Config holds CushyPost session configuration.
type Config struct {
	Environment  Environment
	App          string
	Token        string // optional, when a valid token is already known
	RefreshToken string // optional

	MaxSearchPages int
	Timeout        time.Duration
	UseMock        bool // When true, uses MockTransport
}

// Client is a CushyPost session.
type Client struct {
	environment  Environment
	app          string
	baseURL      string
	token        string
	refreshToken string

	from            *Location
	to              *Location
	services        *Services
	shipping        *Shipment
	geoDBData       map[string]LookupRecord
	checkoutSession string

	maxSearchPages int
	transport      Transport
	logger         *otelzap.Logger
	tracer         trace.Tracer
	metrics        MetricsRecorder
	now            func() time.Time
}

// New creates a new session.
// If cfg.UseMock is true, it uses a mock transport for testing.
// Otherwise, it uses the resty HTTP transport.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) (*Client, error) {
	var transport Transport

	if cfg.UseMock {
		transport = NewMockTransport()
	} else {
		transport = NewHTTPTransport(HTTPTransportConfig{
			Timeout: cfg.Timeout,
		})
	}

	return NewWithTransport(cfg, transport, logger, tracer)
}

// NewWithTransport creates a new session with a custom transport.
// This is useful for injecting mock transports in tests.
func NewWithTransport(cfg Config, transport Transport, logger *otelzap.Logger, tracer trace.Tracer) (*Client, error) {
	baseURL, err := cfg.Environment.BaseURL()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(tracerName)
	}

	maxPages := cfg.MaxSearchPages
	if maxPages <= 0 {
		maxPages = DefaultMaxSearchPages
	}

	return &Client{
		environment:    cfg.Environment,
		app:            cfg.App,
		baseURL:        baseURL,
		token:          cfg.Token,
		refreshToken:   cfg.RefreshToken,
		geoDBData:      make(map[string]LookupRecord),
		maxSearchPages: maxPages,
		transport:      transport,
		logger:         logger,
		tracer:         tracer,
		metrics:        noopMetrics{},
		now:            time.Now,
	}, nil
}

// WithMetrics attaches a metrics recorder.
func (c *Client) WithMetrics(m MetricsRecorder) *Client {
	if m == nil {
		m = noopMetrics{}
	}
	c.metrics = m
	return c
}

// WithClock replaces the clock used to compute collection dates.
func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}

// Environment returns the deployment target.
func (c *Client) Environment() Environment { return c.environment }

// App returns the application identifier.
func (c *Client) App() string { return c.app }

// BaseURL returns the API address derived from the environment.
func (c *Client) BaseURL() string { return c.baseURL }

// Token returns the current access token, or "".
func (c *Client) Token() string { return c.token }

// RefreshToken returns the current refresh token, or "".
func (c *Client) RefreshToken() string { return c.refreshToken }

// CheckoutSession returns the checkout session of an in-flight purchase, or "".
func (c *Client) CheckoutSession() string { return c.checkoutSession }

// From returns a copy of the origin location, or nil.
func (c *Client) From() *Location { return cloneLocation(c.from) }

// To returns a copy of the destination location, or nil.
func (c *Client) To() *Location { return cloneLocation(c.to) }

// Services returns a copy of the services node, or nil.
func (c *Client) Services() *Services {
	if c.services == nil {
		return nil
	}
	s := *c.services
	return &s
}

// Shipping returns a copy of the shipping node, or nil.
func (c *Client) Shipping() *Shipment {
	if c.shipping == nil {
		return nil
	}
	s := *c.shipping
	s.Packages = slices.Clone(c.shipping.Packages)
	return &s
}

func cloneLocation(l *Location) *Location {
	if l == nil {
		return nil
	}
	out := *l
	return &out
}

// observe starts a span for operation and returns a function that ends it,
// records metrics and logs the duration. Call it with a pointer to the
// operation's named error result.
func (c *Client) observe(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(*error)) {
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, "cushypost."+operation, trace.WithAttributes(attrs...))
	c.logger.Debug("About to run", zap.String("operation", operation))

	return ctx, func(errp *error) {
		var err error
		if errp != nil {
			err = *errp
		}
		elapsed := time.Since(start)

		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.metrics.RecordError(operation, ErrorCode(err))
		}
		c.metrics.RecordRequest(operation, status, elapsed.Seconds())

		c.logger.Debug("Done running",
			zap.String("operation", operation),
			zap.Duration("duration", elapsed),
			zap.String("status", status),
		)
		span.End()
	}
}
