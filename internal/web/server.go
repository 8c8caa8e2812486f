package web

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"github.com/vitos/trade_journal/internal/infrastructure/metrics"
	"github.com/vitos/trade_journal/internal/mcp"
	"github.com/vitos/trade_journal/internal/usecase"
	"go.uber.org/zap"
)

type Server struct {
	router    *http.ServeMux
	server    *http.Server
	service   *usecase.JournalService
	rpc       *mcp.Server
	metrics   *metrics.Metrics
	upgrader  websocket.Upgrader
	origins   []string
	fileLoads bool
	started   time.Time
	logger    *zap.Logger
}

func NewServer(
	port int,
	allowedOrigins []string,
	fileLoads bool,
	service *usecase.JournalService,
	rpc *mcp.Server,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Server {
	s := &Server{
		router:    http.NewServeMux(),
		service:   service,
		rpc:       rpc,
		metrics:   m,
		origins:   allowedOrigins,
		fileLoads: fileLoads,
		started:   time.Now(),
		logger:    logger,
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	s.routes()
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	// Status
	s.router.HandleFunc("GET /status", s.handleStatus)

	// Metrics
	s.router.Handle("GET /metrics", s.metrics.Handler())

	// Datasets
	s.router.HandleFunc("GET /api/datasets", s.handleListDatasets)
	s.router.HandleFunc("POST /api/datasets", s.handleLoadTrades)
	s.router.HandleFunc("GET /api/datasets/{id}", s.handleDatasetInfo)
	s.router.HandleFunc("GET /api/datasets/{id}/pnl", s.handlePnlSummary)

	// JSON-RPC tools over websocket
	s.router.HandleFunc("GET /ws", s.handleWebsocket)
}

// Handler is the router wrapped with CORS. With no allowed origins no CORS
// headers are sent, so browsers keep cross-origin reads blocked.
func (s *Server) Handler() http.Handler {
	if len(s.origins) == 0 {
		return s.router
	}
	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(s.router)
}

func (s *Server) Start() error {
	s.logger.Info("Starting web server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// checkOrigin accepts the configured origins. With none configured only
// same-host pages (or clients sending no Origin) may connect.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(s.origins) == 0 {
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
	for _, o := range s.origins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}
