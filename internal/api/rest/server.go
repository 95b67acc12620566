package rest

import (
	"context"
	"io/fs"
	"net"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/fortuna/hardwood/internal/board"
	"github.com/fortuna/hardwood/internal/league"
	"github.com/fortuna/hardwood/internal/metrics"
	"github.com/fortuna/hardwood/internal/platform/logging"
	"github.com/fortuna/hardwood/internal/render"
	"github.com/fortuna/hardwood/internal/scheduler"
)

// Refresher starts league loads on demand.
type Refresher interface {
	Trigger(key string) bool
	Status() scheduler.Status
}

// Dependencies are the components the server routes to. Metrics, Static and
// the proxies are optional.
type Dependencies struct {
	Leagues   *league.Table
	Store     *board.Store
	Pages     *render.Pages
	Static    fs.FS
	Refresher Refresher
	ESPN      http.Handler
	SportsDB  http.Handler
	Metrics   *metrics.Manager
	Logger    *logging.Logger

	// AllowedOrigins defaults to any origin.
	AllowedOrigins []string
}

// Server represents the REST API server
type Server struct {
	addr    string
	server  *http.Server
	handler *Handler
	root    http.Handler
}

// NewServer creates a new REST API server
func NewServer(addr string, deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = logging.Default()
	}
	handler := NewHandler(deps)
	refreshHandler := NewRefreshHandler(deps.Leagues, deps.Refresher)

	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware(deps.Logger))
	router.Use(LoggingMiddleware(deps.Logger, deps.Metrics))

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	if deps.Metrics != nil {
		router.Handle("/metrics", deps.Metrics.Handler()).Methods("GET")
	}

	// Proxies
	if deps.ESPN != nil {
		router.Handle("/proxy/espn", deps.ESPN).Methods("GET")
	}
	if deps.SportsDB != nil {
		router.Handle("/proxy/sportsdb", deps.SportsDB).Methods("GET")
	}

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Leagues
	api.HandleFunc("/leagues", handler.GetLeagues).Methods("GET")
	api.HandleFunc("/leagues/{league}", handler.GetLeague).Methods("GET")
	api.HandleFunc("/leagues/{league}/refresh", refreshHandler.HandleLeagueRefresh).Methods("POST")

	// Refresh operations
	api.HandleFunc("/refresh", refreshHandler.HandleRefreshRequest).Methods("POST")
	api.HandleFunc("/refresh/status", refreshHandler.HandleRefreshStatus).Methods("GET")

	// Pages
	router.HandleFunc("/", handler.RenderPage).Methods("GET")
	router.HandleFunc("/{page:[A-Za-z0-9._-]+\\.html}", handler.RenderPage).Methods("GET")
	if deps.Static != nil {
		router.NotFoundHandler = staticFiles(deps.Static)
	}

	root := CORSMiddleware(deps.AllowedOrigins)(handlers.CompressHandler(router))

	return &Server{
		addr:    addr,
		handler: handler,
		root:    root,
		server: &http.Server{
			Addr:     addr,
			Handler:  root,
			ErrorLog: zap.NewStdLog(deps.Logger.Zap()),
		},
	}
}

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler {
	return s.root
}

// Serve accepts connections on an already bound listener.
func (s *Server) Serve(ln net.Listener) error {
	return s.server.Serve(ln)
}

// Listen binds the configured address without serving it yet.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listening on %s", s.addr)
	}
	return ln, nil
}

// staticFiles serves fsys for GET and HEAD requests no route matched.
func staticFiles(fsys fs.FS) http.Handler {
	files := http.FileServer(http.FS(fsys))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			respondError(w, http.StatusNotFound, "Not found", nil)
			return
		}
		files.ServeHTTP(w, r)
	})
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
