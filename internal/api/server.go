package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/config"
	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/events"
	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/llm"
	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/logging"
	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/search"
)

const banner = "DC Explorer backend is running. Try GET /api/agent-response?q=jazz"

type Server struct {
	searcher    Searcher
	broker      Broker
	cfg         config.Config
	logger      *slog.Logger
	newSearchID func() string
}

type Searcher interface {
	ProviderName() string
	Run(ctx context.Context, query string) (search.Result, error)
	RunWithEmitter(ctx context.Context, query string, em *events.Emitter) (search.Result, error)
}

type Broker interface {
	Publish(event events.SearchEvent)
	Subscribe(ctx context.Context, searchID string) <-chan events.SearchEvent
}

func NewServer(searcher Searcher, broker Broker, cfg config.Config, logger *slog.Logger) *Server {
	return &Server{
		searcher:    searcher,
		broker:      broker,
		cfg:         cfg,
		logger:      logging.OrDefault(logger),
		newSearchID: func() string { return uuid.New().String() },
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(quietRequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware(s.cfg.CORSAllowedOrigin))

	r.Get("/", s.root)
	r.Get("/api/agent-response", s.agentResponse)
	r.Get("/api/agent-response/stream", s.streamAgentResponse)
	r.Get("/api/searches/{id}/events", s.streamSearchEvents)
	r.Get("/api/agent-prompt", s.getAgentPrompt)
	r.Get("/health", s.health)
	r.Get("/ready", s.ready)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func quietRequestLogger(next http.Handler) http.Handler {
	logged := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shouldSuppressRequestLog(r.Method, r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		logged.ServeHTTP(w, r)
	})
}

func shouldSuppressRequestLog(method string, path string) bool {
	cleanPath := strings.TrimSpace(path)
	if method == http.MethodGet && (strings.HasSuffix(cleanPath, "/events") || strings.HasSuffix(cleanPath, "/stream")) {
		return true
	}
	if method == http.MethodGet && (cleanPath == "/health" || cleanPath == "/ready" || cleanPath == "/metrics") {
		return true
	}
	if method == http.MethodOptions {
		return true
	}
	return false
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(banner))
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type subsystemStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status     string                     `json:"status"`
	Subsystems map[string]subsystemStatus `json:"subsystems"`
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	subsystems := map[string]subsystemStatus{}
	overall := http.StatusOK

	llmCfg, err := s.cfg.LLM()
	if err == nil {
		err = llm.Validate(llmCfg)
	}
	if err != nil {
		subsystems["llm"] = subsystemStatus{Status: "error", Error: err.Error()}
		overall = http.StatusServiceUnavailable
	} else {
		subsystems["llm"] = subsystemStatus{Status: "ok"}
	}

	status := "ok"
	if overall != http.StatusOK {
		status = "degraded"
	}
	writeJSONStatus(w, readinessResponse{Status: status, Subsystems: subsystems}, overall)
}

func (s *Server) agentResponse(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	result, err := s.searcher.Run(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeRawJSON(w, result.Payload, http.StatusOK)
}

func writeJSONStatus(w http.ResponseWriter, value any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(value)
}

func writeRawJSON(w http.ResponseWriter, body json.RawMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSONStatus(w, map[string]string{"error": err.Error()}, http.StatusInternalServerError)
}

func corsMiddleware(origin string) func(http.Handler) http.Handler {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		origin = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Last-Event-ID")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) Start(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()
	return server.ListenAndServe()
}
