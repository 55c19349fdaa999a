package http

import (
	"bytes"
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"cashbook/internal/app"
	"cashbook/internal/chart"
	"cashbook/internal/core"
	"cashbook/internal/log"
	"cashbook/internal/middleware/ratelimit"
	"cashbook/internal/middleware/security"
	"cashbook/internal/middleware/trace"
	"cashbook/internal/report"
	appweb "cashbook/web"
)

// currencySymbol prefixes amounts on screen. The PDF uses the ISO code.
const currencySymbol = "₹"

// Server is the dashboard server.
type Server struct {
	http.Server

	ctrl      *app.Controller
	templates *template.Template
	chart     *chart.Renderer
	logger    *log.Logger

	ips     *security.IPExtractor
	trace   *trace.Middleware
	limiter *ratelimit.Limiter
	headers *security.HeadersMiddleware

	started      time.Time
	shutdownOnce sync.Once
}

func NewServer(addr string, ctrl *app.Controller, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	ips := security.NewIPExtractor()

	s := &Server{
		ctrl:    ctrl,
		chart:   chart.NewRenderer(),
		logger:  logger.WithComponent(log.ComponentHTTP),
		ips:     ips,
		trace:   trace.NewMiddleware(logger, ips.ClientIP),
		limiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		headers: security.NewHeadersMiddleware(security.DefaultHeadersConfig()),
		started: time.Now(),
	}

	tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Error("Failed to parse templates",
			log.FieldError, err,
			log.FieldComponent, log.ComponentTemplate)
	} else {
		s.templates = tmpl
	}

	mux := http.NewServeMux()

	if staticFS, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	// UI partials
	mux.HandleFunc("GET /ui/transactions", s.handleTable)
	mux.HandleFunc("GET /ui/summary", s.handleSummary)
	mux.HandleFunc("GET /ui/status", s.handleStatus)
	mux.HandleFunc("GET /ui/chart", s.handleChart)
	mux.Handle("POST /ui/preferences", s.limited(s.handlePreferences))

	mux.Handle("POST /transactions", s.limited(s.handleCreate))
	mux.HandleFunc("GET /transactions/{id}/edit", s.handleEditForm)
	mux.Handle("PUT /transactions/{id}", s.limited(s.handleUpdate))
	mux.Handle("DELETE /transactions/{id}", s.limited(s.handleDelete))

	mux.Handle("POST /report", s.limited(s.handleReport))
	mux.HandleFunc("GET /report/{token}/"+report.FileName, s.handleDownload)

	var handler http.Handler = mux
	handler = s.headers.Middleware(handler)
	handler = log.RequestIDMiddleware(trace.RequestIDFromRequest)(handler)
	handler = log.Middleware(s.logger)(handler)
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

// limited applies the per-client rate limit to a write endpoint.
func (s *Server) limited(h http.HandlerFunc) http.Handler {
	return s.limiter.Middleware(s.ips.ClientIP, s.onRateLimit)(h)
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.ips.ClientIP(r),
		log.FieldPath, r.URL.Path)
	NewHTMXResponse().
		Status(http.StatusTooManyRequests).
		Header("Retry-After", "60").
		TriggerNotification(app.LevelWarning, "Too many requests. Please try again later.", int(app.NoticeDuration.Milliseconds())).
		Write(w)
}

// Shutdown stops the server and the rate limiter cleanup loop.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.logger.InfoContext(ctx, "Shutting down dashboard server", log.FieldOperation, log.OpShutdown)
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// render executes a named template into memory so failures can still be
// answered with a proper status.
func (s *Server) render(name string, data any) ([]byte, error) {
	if s.templates == nil {
		return nil, errTemplatesNotLoaded
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"money":       formatMoney,
		"categories":  core.Categories,
		"sortModes":   sortOptions,
		"allCategory": func() string { return core.AllCategories },
		"noticeMs":    func() int { return int(app.NoticeDuration.Milliseconds()) },
		"isoDate":     func(d core.Date) string { return d.String() },
		"date":        func(d core.Date) string { return d.Format("02 Jan 2006") },
		"isCredit":    func(t core.Transaction) bool { return t.Type == core.Credit },
		"add1":        func(i int) int { return i + 1 },
		"signed": func(t core.Transaction) string {
			return core.FormatSigned(currencySymbol, t)
		},
	}
}
