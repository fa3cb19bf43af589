// Package inspect serves a live router over HTTP: the route tree, the
// active chain, navigation, Prometheus metrics and the WebSocket history
// feed.
package inspect

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/viewrouter/internal/errors"
	"github.com/vango-dev/viewrouter/pkg/history"
	"github.com/vango-dev/viewrouter/pkg/routepath"
	"github.com/vango-dev/viewrouter/pkg/router"
)

// DefaultNavigateTimeout bounds how long /navigate waits for the router.
const DefaultNavigateTimeout = 5 * time.Second

// Config configures the inspector.
type Config struct {
	// Router is the inspected router. Required.
	Router *router.Router

	// Remote, if set, is served on /ws.
	Remote *history.Remote

	// Gatherer, if set, is served on /metrics.
	Gatherer prometheus.Gatherer

	// Logger receives request logs. Defaults to slog.Default().
	Logger *slog.Logger

	// NavigateTimeout bounds /navigate. Defaults to DefaultNavigateTimeout.
	NavigateTimeout time.Duration
}

// Server is the inspector HTTP handler.
type Server struct {
	router  *router.Router
	remote  *history.Remote
	gather  prometheus.Gatherer
	logger  *slog.Logger
	timeout time.Duration
	mux     chi.Router
}

// New creates an inspector for cfg.Router.
func New(cfg Config) *Server {
	s := &Server{
		router:  cfg.Router,
		remote:  cfg.Remote,
		gather:  cfg.Gatherer,
		logger:  cfg.Logger,
		timeout: cfg.NavigateTimeout,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.timeout <= 0 {
		s.timeout = DefaultNavigateTimeout
	}
	s.mux = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/routes", func(rt chi.Router) {
		rt.Get("/", s.handleTree)
		rt.Get("/json", s.handleRoutes)
	})
	r.Get("/state", s.handleState)
	r.Post("/navigate", s.handleNavigate)

	if s.gather != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gather, promhttp.HandlerOpts{}))
	}
	if s.remote != nil {
		r.Get("/ws", s.remote.HandleWebSocket)
	}
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("inspector request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handleTree(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := s.router.Tree().Print(w); err != nil {
		s.logger.Error("print route tree", "error", err)
	}
}

// RouteJSON is one node in the /routes/json listing.
type RouteJSON struct {
	Path            string `json:"path"`
	Segment         string `json:"segment"`
	Kind            string `json:"kind"`
	Depth           int    `json:"depth"`
	Component       bool   `json:"component"`
	Controller      bool   `json:"controller"`
	Resolver        bool   `json:"resolver"`
	Resolved        bool   `json:"resolved"`
	CaseInsensitive bool   `json:"caseInsensitive,omitempty"`
}

func (s *Server) handleRoutes(w http.ResponseWriter, _ *http.Request) {
	var out []RouteJSON
	s.router.Tree().Walk(func(info router.RouteInfo) bool {
		out = append(out, RouteJSON{
			Path:            info.Path,
			Segment:         info.Segment,
			Kind:            info.Kind.String(),
			Depth:           info.Depth,
			Component:       info.HasComponent,
			Controller:      info.HasController,
			Resolver:        info.HasResolver,
			Resolved:        info.Resolved,
			CaseInsensitive: info.CaseInsensitive,
		})
		return true
	})
	writeJSON(w, http.StatusOK, out)
}

// FragmentJSON describes one fragment of the active chain.
type FragmentJSON struct {
	Path          string `json:"path"`
	Value         string `json:"value"`
	Kind          string `json:"kind"`
	URLPath       string `json:"urlPath"`
	HasController bool   `json:"hasController"`
}

// StateJSON is the /state payload.
type StateJSON struct {
	URL           string            `json:"url"`
	BasePath      string            `json:"basePath,omitempty"`
	Mounted       bool              `json:"mounted"`
	Transitioning bool              `json:"transitioning"`
	Chain         []FragmentJSON    `json:"chain"`
	Params        map[string]string `json:"params,omitempty"`
	Clients       int               `json:"clients,omitempty"`
}

func (s *Server) state() StateJSON {
	st := StateJSON{
		BasePath:      s.router.BasePath(),
		Mounted:       s.router.IsMounted(),
		Transitioning: s.router.IsTransitioning(),
		Chain:         []FragmentJSON{},
	}
	if u := s.router.URL(); u != nil {
		st.URL = u.RequestURI()
	}
	for _, f := range s.router.CurrentFragments() {
		st.Chain = append(st.Chain, FragmentJSON{
			Path:          f.ReadablePath(),
			Value:         f.Value(),
			Kind:          f.Kind().String(),
			URLPath:       f.URLPath(),
			HasController: f.HasController(),
		})
	}
	for _, p := range s.router.Params() {
		if st.Params == nil {
			st.Params = make(map[string]string)
		}
		if _, seen := st.Params[p.Name]; !seen {
			st.Params[p.Name] = p.Value
		}
	}
	if s.remote != nil {
		st.Clients = s.remote.ClientCount()
	}
	return st
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.state())
}

// NavigateRequest is the /navigate body.
type NavigateRequest struct {
	URL     string `json:"url"`
	Replace bool   `json:"replace,omitempty"`
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "", "body must be {\"url\": \"/path\"}")
		return
	}

	// Only same-origin absolute paths; the router adds its base path.
	target, err := routepath.ValidateTarget(req.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, "", err.Error())
		return
	}

	var opts []router.NavigateOption
	if req.Replace {
		opts = append(opts, router.WithReplace())
	}
	if err := s.router.TransitionTo(target, opts...); err != nil {
		s.writeRouteError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	if err := s.router.WaitIdle(ctx); err != nil {
		writeError(w, http.StatusGatewayTimeout, "", "transition still in flight")
		return
	}
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) writeRouteError(w http.ResponseWriter, err error) {
	var re *errors.RouteError
	if !stderrors.As(err, &re) {
		s.logger.Error("navigate", "error", err)
		writeError(w, http.StatusInternalServerError, "", err.Error())
		return
	}

	status := http.StatusUnprocessableEntity
	switch re.Code {
	case "R020":
		status = http.StatusNotFound
	}
	writeError(w, status, re.Code, err.Error())
}

type errorJSON struct {
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorJSON{Code: code, Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
