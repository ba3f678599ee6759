package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/omriShneor/project_casa/internal/database"
	"github.com/omriShneor/project_casa/internal/importer"
	"github.com/omriShneor/project_casa/internal/scheduler"
	"go.uber.org/zap"
)

// Connector is a chat transport whose connection state is reported
type Connector interface {
	IsConnected() bool
}

// Calendar is the subset of the calendar client the admin API needs
type Calendar interface {
	IsAuthenticated() bool
	GetAuthURL() string
	ExchangeCode(ctx context.Context, code string) error
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}

// Server is the agency's local admin API
type Server struct {
	db         *database.DB
	whatsapp   Connector
	telegram   Connector
	calendar   Calendar
	calendarID string
	generator  string
	manualSize int
	importer   *importer.Importer
	scheduler  *scheduler.Scheduler
	sessions   func() int
	logger     *zap.Logger
	httpSrv    *http.Server
	port       int
}

// ServerConfig wires the admin API. Optional components are left nil.
type ServerConfig struct {
	DB         *database.DB
	Port       int
	WhatsApp   Connector
	Telegram   Connector
	Calendar   Calendar
	CalendarID string
	Generator  string
	ManualSize int
	Importer   *importer.Importer
	Scheduler  *scheduler.Scheduler
	// Sessions reports active conversations, when the store can count them
	Sessions func() int
	Logger   *zap.Logger
}

func New(cfg ServerConfig) *Server {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	s := &Server{
		db:         cfg.DB,
		whatsapp:   cfg.WhatsApp,
		telegram:   cfg.Telegram,
		calendar:   cfg.Calendar,
		calendarID: cfg.CalendarID,
		generator:  cfg.Generator,
		manualSize: cfg.ManualSize,
		importer:   cfg.Importer,
		scheduler:  cfg.Scheduler,
		sessions:   cfg.Sessions,
		logger:     cfg.Logger,
		port:       cfg.Port,
	}
	if s.importer == nil && s.db != nil {
		s.importer = importer.New(s.db, s.logger)
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.logMiddleware(s.corsMiddleware(mux)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealthCheck)
	mux.HandleFunc("GET /api/status", s.handleStatus)

	// Catalog
	mux.HandleFunc("GET /api/listings", s.handleListListings)
	mux.HandleFunc("GET /api/listings/{reference}", s.handleGetListing)
	mux.HandleFunc("POST /api/import/listings", s.handleImportListings)

	// Bookings
	mux.HandleFunc("GET /api/bookings", s.handleListBookings)
	mux.HandleFunc("POST /api/bookings/{id}/cancel", s.handleCancelBooking)

	// Google Calendar
	mux.HandleFunc("GET /api/gcal/status", s.handleGCalStatus)
	mux.HandleFunc("POST /api/gcal/connect", s.handleGCalConnect)
	mux.HandleFunc("GET /oauth/callback", s.handleOAuthCallback)
}

func (s *Server) Start() error {
	s.logger.Info("starting admin HTTP server", zap.String("addr", fmt.Sprintf("http://localhost:%d", s.port)))
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// Handler returns the server's HTTP handler for testing purposes
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}
