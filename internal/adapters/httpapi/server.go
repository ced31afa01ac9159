package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jose-valero/rcon-arma-bot/internal/app/service"
)

// Deps es lo que el dashboard lee del proceso del bot.
type Deps struct {
	BotName  string
	Activity *service.ActivityService
	Jobs     *service.JobManager
	Players  *service.PlayerService
	// Auth nil: login y terminal responden 503
	Auth *Auth
	// Guilds devuelve los ids de guilds donde está el bot (cache del gateway)
	Guilds func() []string
}

type Server struct {
	deps    Deps
	mux     *http.ServeMux
	hub     *Hub
	started time.Time
	now     func() time.Time
}

func New(d Deps) *Server {
	if d.Guilds == nil {
		d.Guilds = func() []string { return nil }
	}
	s := &Server{
		deps:    d,
		mux:     http.NewServeMux(),
		hub:     NewHub(),
		started: time.Now(),
		now:     time.Now,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/status", s.handleStatus)
	s.mux.HandleFunc("GET /api/stats", s.handleStats)
	s.mux.HandleFunc("GET /api/bots", s.handleBots)
	s.mux.HandleFunc("GET /api/bots/{id}/activity", s.handleActivity)
	s.mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	s.mux.HandleFunc("POST /api/terminal", s.requireAuth(s.handleTerminal))
	s.mux.HandleFunc("GET /ws/activity", s.handleActivityWS)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	s.mux.ServeHTTP(w, r)
}

// Run levanta el hub y el listener; vuelve cuando ctx se cancela.
func (s *Server) Run(ctx context.Context, addr string) error {
	if s.deps.Activity != nil {
		feed, cancel := s.deps.Activity.Subscribe(64)
		defer cancel()
		go s.hub.Pump(ctx, feed)
	}

	srv := &http.Server{Addr: addr, Handler: s, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("🌐 dashboard listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.hub.Close()
		return srv.Shutdown(sctx)
	}
}

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Auth == nil {
			writeError(w, http.StatusServiceUnavailable, "dashboard auth not configured")
			return
		}
		if s.deps.Auth.claimsFrom(r) == nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Debug().Err(err).Msg("write json response failed")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
