package tracing

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"blogapi/internal/config"
)

type State int32

const (
	StateUninitialized State = iota
	StateStarted
	StateShuttingDown
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateStarted:
		return "started"
	case StateShuttingDown:
		return "shutting-down"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

var ErrInvalidState = errors.New("invalid tracing state")

// Manager owns the tracing SDK for the lifetime of the process. Everything
// else only sees the TracerProvider it hands out.
type Manager struct {
	cfg              config.TracingConfig
	environment      string
	logger           *zap.Logger
	newExporter      ExporterFactory
	instrumentations map[string]bool

	state    atomic.Int32
	provider *sdktrace.TracerProvider
	noop     trace.TracerProvider
	prop     propagation.TextMapPropagator
}

type Option func(*Manager)

func WithExporterFactory(f ExporterFactory) Option {
	return func(m *Manager) { m.newExporter = f }
}

// WithExporter makes the manager use exp regardless of environment.
func WithExporter(exp sdktrace.SpanExporter) Option {
	return WithExporterFactory(func(context.Context, config.TracingConfig, string) (sdktrace.SpanExporter, error) {
		return exp, nil
	})
}

func WithInstrumentations(targets map[string]bool) Option {
	return func(m *Manager) { m.instrumentations = targets }
}

func NewManager(cfg config.TracingConfig, environment string, logger *zap.Logger, opts ...Option) *Manager {
	m := &Manager{
		cfg:              cfg,
		environment:      environment,
		logger:           logger,
		newExporter:      NewExporter,
		instrumentations: DefaultInstrumentations(),
		noop:             noop.NewTracerProvider(),
		prop: propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) State() State {
	return State(m.state.Load())
}

// Start builds the exporter and the provider. A failure is logged and leaves
// the manager in StateFailed with a no-op provider; the caller decides
// whether to keep serving.
func (m *Manager) Start(ctx context.Context) error {
	if s := m.State(); s != StateUninitialized {
		return fmt.Errorf("%w: cannot start from %s", ErrInvalidState, s)
	}

	if err := m.start(ctx); err != nil {
		m.state.Store(int32(StateFailed))
		m.logger.Warn("tracing disabled",
			zap.String("service", m.cfg.ServiceName),
			zap.Error(err),
		)
		return err
	}

	m.state.Store(int32(StateStarted))
	m.logger.Info("tracing started",
		zap.String("service", m.cfg.ServiceName),
		zap.String("environment", m.environment),
	)
	return nil
}

func (m *Manager) start(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.StartTimeout)
	defer cancel()

	exp, err := await(ctx, func(ctx context.Context) (sdktrace.SpanExporter, error) {
		return m.newExporter(ctx, m.cfg, m.environment)
	}, m.discardExporter)
	if err != nil {
		return fmt.Errorf("failed to create span exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(m.cfg.ServiceName),
			semconv.DeploymentEnvironmentKey.String(m.environment),
		),
		resource.WithTelemetrySDK(),
		resource.WithHost(),
	)
	if err != nil {
		_ = exp.Shutdown(ctx)
		return fmt.Errorf("failed to create resource: %w", err)
	}

	m.provider = sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(newScopeFilter(sdktrace.NewBatchSpanProcessor(exp), m.instrumentations)),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	return nil
}

// discardExporter shuts down an exporter that was built after Start gave up.
func (m *Manager) discardExporter(exp sdktrace.SpanExporter) {
	if exp == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.ShutdownTimeout)
	defer cancel()
	if err := exp.Shutdown(ctx); err != nil {
		m.logger.Warn("failed to shut down late span exporter", zap.Error(err))
	}
}

// Shutdown flushes and stops the provider. It returns ctx's error when the
// exporter does not finish in time.
func (m *Manager) Shutdown(ctx context.Context) error {
	if !m.state.CompareAndSwap(int32(StateStarted), int32(StateShuttingDown)) {
		if s := m.State(); s == StateFailed || s == StateUninitialized {
			return nil
		}
		return fmt.Errorf("%w: cannot shut down from %s", ErrInvalidState, m.State())
	}
	defer m.state.Store(int32(StateStopped))

	_, err := await(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, m.provider.Shutdown(ctx)
	}, nil)
	if err != nil {
		m.logger.Error("tracing shutdown failed", zap.Error(err))
		return fmt.Errorf("failed to shut down tracer provider: %w", err)
	}

	m.logger.Info("tracing stopped")
	return nil
}

// TracerProvider returns the SDK provider once started, and a no-op provider
// in every other state.
func (m *Manager) TracerProvider() trace.TracerProvider {
	if m.State() == StateStarted {
		return m.provider
	}
	return m.noop
}

func (m *Manager) Propagator() propagation.TextMapPropagator {
	return m.prop
}
