// Package api exposes ingestion, query, and preference inference over HTTP.
package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/atupatu/pccoe/internal/config"
	"github.com/atupatu/pccoe/internal/learning"
	"github.com/atupatu/pccoe/internal/usage"
)

// Options tunes request handling.
type Options struct {
	// PreferredTab is answered by get-preferred-entities when the request
	// names no tab.
	PreferredTab string

	// MaxUploadBytes bounds a log-usage request body.
	MaxUploadBytes int64

	// CORSOrigins restricts browser origins; empty allows all.
	CORSOrigins []string
}

// Server routes HTTP requests to the usage services.
type Server struct {
	ingestor *usage.Ingestor
	querier  *usage.Querier
	engine   *learning.Engine
	logger   *zap.SugaredLogger
	opts     Options
}

// NewServer creates a Server. Zero-valued options take the config defaults.
func NewServer(ingestor *usage.Ingestor, querier *usage.Querier, engine *learning.Engine, logger *zap.SugaredLogger, opts Options) *Server {
	defaults := config.NewConfig()
	if opts.PreferredTab == "" {
		opts.PreferredTab = defaults.PreferredTab
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaults.MaxUploadBytes
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Server{
		ingestor: ingestor,
		querier:  querier,
		engine:   engine,
		logger:   logger,
		opts:     opts,
	}
}

// Handler returns the routed handler with logging and CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/log-usage", s.handleLogUsage)
	mux.HandleFunc("/get-logs", s.handleGetLogs)
	mux.HandleFunc("/get-logs-filtered", s.handleGetLogsFiltered)
	mux.HandleFunc("/get-preferred-entities", s.handleGetPreferredEntities)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})

	return s.logRequests(s.cors(mux))
}
