// Package api serves the transaction store over the /api/transactions REST
// resource consumed by the dashboard.
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"cashbook/internal/core"
	"cashbook/internal/ledger"
	"cashbook/internal/log"
	"cashbook/internal/middleware/security"
	"cashbook/internal/middleware/trace"
	"cashbook/internal/report"
)

// BasePath is the collection path of the resource.
const BasePath = "/api/transactions"

// Service is the store the API exposes.
type Service interface {
	ledger.Store
	Summary(ctx context.Context) (core.Summary, error)
}

// Server is the REST store server.
type Server struct {
	http.Server

	service Service
	builder *report.Builder
	logger  *log.Logger
	trace   *trace.Middleware

	shutdownOnce sync.Once
}

func NewServer(addr string, service Service, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentAPI)
	ips := security.NewIPExtractor()

	s := &Server{
		service: service,
		builder: report.NewBuilder("INR"),
		logger:  logger,
		trace:   trace.NewMiddleware(logger, ips.ClientIP),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+BasePath, s.handleList)
	mux.HandleFunc("POST "+BasePath, s.handleCreate)
	mux.HandleFunc("GET "+BasePath+"/summary", s.handleSummary)
	mux.HandleFunc("GET "+BasePath+"/pdf", s.handlePDF)
	mux.HandleFunc("PUT "+BasePath+"/{id}", s.handleUpdate)
	mux.HandleFunc("DELETE "+BasePath+"/{id}", s.handleDelete)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	var handler http.Handler = mux
	handler = security.CORS(handler)
	handler = log.RequestIDMiddleware(trace.RequestIDFromRequest)(handler)
	handler = log.Middleware(logger)(handler)
	handler = s.trace.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.logger.InfoContext(ctx, "Shutting down store API server", log.FieldOperation, log.OpShutdown)
		err = s.Server.Shutdown(ctx)
	})
	return err
}
