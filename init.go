package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/tournevent/cushypost/internal/config"
	"github.com/tournevent/cushypost/internal/telemetry"
	"github.com/tournevent/cushypost/pkg/cushypost"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// options are the persistent flags shared by every command.
type options struct {
	mock      bool
	stateFile string
	metrics   bool
}

// session is a client restored from the state file for one command run.
type session struct {
	cfg      *config.Config
	opts     *options
	logger   *otelzap.Logger
	client   *cushypost.Client
	registry *prometheus.Registry
	span     trace.Span
	shutdown func(context.Context) error
	out      io.Writer
	errOut   io.Writer
}

func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.mock {
		cfg.UseMock = true
	}
	if opts.stateFile != "" {
		cfg.StateFile = opts.stateFile
	}
	return cfg, nil
}

func initLogger(level string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level)
}

func initTracer(ctx context.Context, cfg *config.Config) (trace.Tracer, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if !cfg.OTELEnabled {
		return nil, noop, nil
	}

	tp, shutdown, err := telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version)
	if err != nil {
		return nil, noop, err
	}
	return tp.Tracer(cfg.ServiceName), shutdown, nil
}

// openSession builds the client for cmd and restores the saved session.
func openSession(cmd *cobra.Command, opts *options) (*session, error) {
	ctx := cmd.Context()

	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	tracer, shutdown, err := initTracer(ctx, cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
	}

	client, err := cushypost.New(cfg.ClientConfig(), logger, tracer)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	client.WithMetrics(telemetry.NewMetrics(registry))

	s := &session{
		cfg:      cfg,
		opts:     opts,
		logger:   logger,
		client:   client,
		registry: registry,
		shutdown: shutdown,
		out:      cmd.OutOrStdout(),
		errOut:   cmd.ErrOrStderr(),
	}

	ctx, s.span = otel.Tracer(cfg.ServiceName).Start(ctx, "cli."+cmd.Name(), trace.WithAttributes(cfg.Attributes()...))
	cmd.SetContext(ctx)

	if err := s.restore(); err != nil {
		s.close(ctx, err)
		return nil, err
	}
	return s, nil
}

// restore loads the state file when it belongs to the configured environment and app.
func (s *session) restore() error {
	data, err := os.ReadFile(s.cfg.StateFile)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("No saved session", zap.String("state_file", s.cfg.StateFile))
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading state file: %w", err)
	}

	snap, err := cushypost.ParseSnapshot(data)
	if err != nil {
		return err
	}
	if snap.Config.Environment != s.client.Environment() || snap.Config.App != s.client.App() {
		s.logger.Warn("Saved session belongs to another environment or app, ignoring it",
			zap.String("state_file", s.cfg.StateFile),
			zap.String("saved_environment", string(snap.Config.Environment)),
			zap.String("saved_app", snap.Config.App),
		)
		return nil
	}
	return s.client.Load(snap)
}

// save writes the session snapshot to the state file.
func (s *session) save() error {
	data, err := json.MarshalIndent(s.client.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := os.WriteFile(s.cfg.StateFile, data, 0o600); err != nil {
		return fmt.Errorf("writing state file: %w", err)
	}
	return nil
}

// close ends the command span, flushes telemetry and prints metrics on request.
func (s *session) close(ctx context.Context, runErr error) {
	if runErr != nil {
		s.span.RecordError(runErr)
		s.span.SetStatus(codes.Error, runErr.Error())
	}
	s.span.End()

	if s.opts.metrics {
		s.printMetrics()
	}
	if err := s.shutdown(ctx); err != nil {
		s.logger.Warn("Failed to shut down tracer", zap.Error(err))
	}
	_ = s.logger.Sync()
}

func (s *session) printMetrics() {
	families, err := s.registry.Gather()
	if err != nil {
		s.logger.Warn("Failed to gather metrics", zap.Error(err))
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
			}
			value := m.GetCounter().GetValue()
			if h := m.GetHistogram(); h != nil {
				value = h.GetSampleSum()
			}
			fmt.Fprintf(s.errOut, "%s{%s} %g\n", mf.GetName(), strings.Join(labels, ","), value)
		}
	}
}

func (s *session) print(v any) error {
	enc := json.NewEncoder(s.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// run wraps a command body with session restore and save. The session is
// saved even when fn fails, since tokens may have been refreshed.
func run(opts *options, fn func(ctx context.Context, s *session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, opts)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		runErr := fn(ctx, s, args)
		if err := s.save(); err != nil && runErr == nil {
			runErr = err
		}
		s.close(ctx, runErr)
		return runErr
	}
}
