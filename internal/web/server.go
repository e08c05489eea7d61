package web

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"mimiops/internal/catalog"
	"mimiops/internal/config"
	"mimiops/internal/session"
	"mimiops/internal/storage"
	"mimiops/internal/varejofacil"
)

const sessionCookie = "mimiops_session"

// CatalogSource supplies the normalized catalog table to the handlers.
// *catalog.Provider satisfies it in production.
type CatalogSource interface {
	Load(ctx context.Context) (*catalog.Table, error)
	Refresh(ctx context.Context) (*catalog.Table, error)
}

type Server struct {
	cfg      config.Config
	db       *storage.DB
	catalog  CatalogSource
	sessions *session.Manager
	prices   *varejofacil.Client
	router   *chi.Mux
}

func NewServer(cfg config.Config, db *storage.DB, source CatalogSource) *Server {
	s := &Server{
		cfg:      cfg,
		db:       db,
		catalog:  source,
		sessions: session.NewManager(time.Duration(cfg.SessionTTLMin) * time.Minute),
		prices:   varejofacil.NewClient(cfg),
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", s.cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(s.withSession)

	r.Route("/api", func(r chi.Router) {
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/search", s.handleCatalogSearch)
			r.Get("/suppliers", s.handleCatalogSuppliers)
			r.Get("/products", s.handleSupplierProducts)
			r.Post("/refresh", s.handleCatalogRefresh)
		})

		r.Route("/{kind:exchanges|orders|transfers}/items", func(r chi.Router) {
			r.Get("/", s.handleListItems)
			r.Post("/", s.handleAddItem)
			r.Delete("/last", s.handleRemoveLast)
		})

		r.Post("/exchanges/form", s.handleExchangeForm)
		r.Post("/transfers/form", s.handleTransferForm)
		r.Post("/orders/sheet", s.handleOrderSheet)
		r.Post("/orders/batch", s.handleOrderBatch)
		r.Get("/orders/batch-template", s.handleBatchTemplate)

		r.Post("/prices/login", s.handlePriceLogin)
		r.Get("/prices", s.handlePriceQuery)
		r.Put("/prices/{id}", s.handlePriceUpdate)

		r.Get("/exports", s.handleListExports)
	})
}

type sessionKey struct{}

// withSession attaches a per-browser session, minting a cookie on the
// first request. Sessions hold the three selection lists.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(sessionCookie); err == nil {
			id = c.Value
		}
		sess := s.sessions.Get(id)
		if sess.ID != id {
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    sess.ID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) session(r *http.Request) *session.Session {
	return r.Context().Value(sessionKey{}).(*session.Session)
}

func respondWorkbook(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// SetupLogging configures the process-wide slog default from config.
func SetupLogging(cfg config.Config) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if strings.ToLower(cfg.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}
