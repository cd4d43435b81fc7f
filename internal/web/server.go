package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"mashup/internal/config"
	"mashup/internal/logging"
	"mashup/internal/metrics"
	"mashup/internal/request"
	"mashup/internal/runs"
	"mashup/internal/workflow"
)

const shutdownTimeout = 5 * time.Second

// Runner executes validated requests.
type Runner interface {
	Run(ctx context.Context, origin workflow.Origin, req request.Request) (workflow.Report, error)
	Rejected(origin workflow.Origin, err error)
}

// RunLister reads run history.
type RunLister interface {
	List(ctx context.Context, limit int) ([]runs.Run, error)
}

// Server serves the upload form, the run history API, health, and metrics.
type Server struct {
	cfg     *config.Config
	runner  Runner
	history RunLister
	metrics *metrics.Metrics
	logger  *slog.Logger
	form    *template.Template

	listener net.Listener
	server   *http.Server
}

// New builds a Server. history and m may be nil.
func New(cfg *config.Config, runner Runner, history RunLister, m *metrics.Metrics, logger *slog.Logger) (*Server, error) {
	if cfg == nil || runner == nil {
		return nil, errors.New("web: config and runner are required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	form, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:     cfg,
		runner:  runner,
		history: history,
		metrics: m,
		logger:  logging.NewComponentLogger(logger, "web"),
		form:    form,
	}
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		// Runs complete inside the POST, so there is no write deadline.
		ReadTimeout: 5 * time.Minute,
		IdleTimeout: 60 * time.Second,
	}
	return s, nil
}

// Handler returns the routed, instrumented handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.instrument("/", s.handleIndex))
	mux.HandleFunc("/healthz", s.instrument("/healthz", s.handleHealth))
	mux.HandleFunc("/api/runs", s.instrument("/api/runs", authMiddleware(s.cfg.Web.APIToken, s.handleRuns)))
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}
	return mux
}

// Start listens on the configured address and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	bind := strings.TrimSpace(s.cfg.Web.Bind)
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("web listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("web server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("web server listening",
		logging.String("address", listener.Addr().String()),
		logging.String(logging.FieldEventType, "web_listening"),
	)
	return nil
}

// Addr reports the bound listener address, or "" before Start.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down, waiting briefly for in-flight requests.
func (s *Server) Stop() {
	if s == nil || s.server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
}
