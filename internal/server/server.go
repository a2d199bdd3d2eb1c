// Package server exposes the filing engine over HTTP: the /file webhook
// the upstream workflow posts to, plus diagnostic endpoints for
// classification, folder resolution, the staging folder, filing history,
// and metrics.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/hunchagency/dotfile/internal/classify"
	"github.com/hunchagency/dotfile/internal/filing"
	"github.com/hunchagency/dotfile/internal/graph"
	"github.com/hunchagency/dotfile/internal/ledger"
)

// Filer runs the filing pipeline. Satisfied by *filing.Engine.
type Filer interface {
	File(ctx context.Context, req filing.Request) (*filing.Result, error)
}

// Classifier produces a verdict for an email. Satisfied by
// *classify.Classifier.
type Classifier interface {
	Classify(ctx context.Context, email classify.Email) (*classify.Verdict, classify.Source)
}

// FolderResolver locates a job folder. Satisfied by *filing.Resolver.
type FolderResolver interface {
	Resolve(ctx context.Context, jobNumber, clientCode string) (*filing.ProjectFolder, error)
}

// StagingLister lists the staging folder. Satisfied by *filing.Staging.
type StagingLister interface {
	List(ctx context.Context) (string, []graph.Item, error)
}

// History reads recent filing outcomes. Satisfied by *ledger.Store.
type History interface {
	Recent(ctx context.Context, limit int) ([]ledger.Entry, error)
}

// Config wires a Server's collaborators. History nil disables the
// /filings endpoint.
type Config struct {
	Engine     Filer
	Classifier Classifier
	Resolver   FolderResolver
	Staging    StagingLister
	History    History
	Version    string
	Logger     *slog.Logger
}

// Server handles the HTTP surface. Construct with New, mount with
// Handler.
type Server struct {
	engine     Filer
	classifier Classifier
	resolver   FolderResolver
	staging    StagingLister
	history    History
	version    string
	logger     *slog.Logger
}

// New builds a Server from its collaborators.
func New(cfg *Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		engine:     cfg.Engine,
		classifier: cfg.Classifier,
		resolver:   cfg.Resolver,
		staging:    cfg.Staging,
		history:    cfg.History,
		version:    cfg.Version,
		logger:     logger,
	}
}

// Handler returns the full route table wrapped in recovery and CORS
// middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleHealth)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /file", s.handleFile)
	mux.HandleFunc("POST /classify", s.handleClassify)
	mux.HandleFunc("GET /jobs/{job}/folder", s.handleJobFolder)
	mux.HandleFunc("GET /incoming", s.handleIncoming)
	mux.HandleFunc("GET /filings", s.handleFilings)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Middleware wrap each other in reverse order: CORS runs first so
	// pre-flight requests never reach the recovery layer's handlers.
	var handler http.Handler = mux
	handler = recovery(s.logger)(handler)
	handler = cors.Default().Handler(handler)

	return handler
}
