package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/jose-valero/rcon-arma-bot/internal/domain"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 500
)

func (s *Server) botID() string {
	if s.deps.Activity == nil {
		return ""
	}
	return s.deps.Activity.BotID()
}

func (s *Server) jobCount() int {
	if s.deps.Jobs == nil {
		return 0
	}
	return s.deps.Jobs.Count()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "timestamp": s.now().UTC()})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"online":        true,
		"uptimeSeconds": int64(s.now().Sub(s.started) / time.Second),
		"guilds":        len(s.deps.Guilds()),
		"jobs":          s.jobCount(),
	})
}

type hostStats struct {
	CPUPercent    float64 `json:"cpuPercent"`
	MemUsed       uint64  `json:"memUsed"`
	MemTotal      uint64  `json:"memTotal"`
	MemPercent    float64 `json:"memPercent"`
	HostUptime    uint64  `json:"hostUptimeSeconds"`
	Goroutines    int     `json:"goroutines"`
	TrackedPlayer int     `json:"trackedPlayers"`
	RunningJobs   int     `json:"runningJobs"`
}

// handleStats: un fallo de gopsutil deja el campo en cero, no rompe la respuesta.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st := hostStats{Goroutines: runtime.NumGoroutine(), RunningJobs: s.jobCount()}

	if pct, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pct) > 0 {
		st.CPUPercent = pct[0]
	} else if err != nil {
		log.Debug().Err(err).Msg("stats: cpu")
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		st.MemUsed, st.MemTotal, st.MemPercent = vm.Used, vm.Total, vm.UsedPercent
	} else {
		log.Debug().Err(err).Msg("stats: mem")
	}
	if up, err := host.UptimeWithContext(ctx); err == nil {
		st.HostUptime = up
	} else {
		log.Debug().Err(err).Msg("stats: uptime")
	}
	if s.deps.Players != nil {
		if n, err := s.deps.Players.Tracked(ctx); err == nil {
			st.TrackedPlayer = n
		} else {
			log.Warn().Err(err).Msg("stats: tracked players")
		}
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleBots(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, []map[string]any{{
		"id":     s.botID(),
		"name":   s.deps.BotName,
		"status": "online",
		"guilds": len(s.deps.Guilds()),
	}})
}

// GET /api/bots/{id}/activity?limit=&guild=a,b
func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	if s.deps.Activity == nil || r.PathValue("id") != s.botID() {
		writeError(w, http.StatusNotFound, "bot not found")
		return
	}
	limit := defaultActivityLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxActivityLimit)
	}

	var (
		entries []domain.ActivityEntry
		err     error
	)
	if raw := r.URL.Query().Get("guild"); raw != "" {
		entries, err = s.deps.Activity.ForGuilds(r.Context(), splitList(raw), limit)
	} else {
		entries, err = s.deps.Activity.Recent(r.Context(), limit)
	}
	if err != nil {
		log.Error().Err(err).Msg("activity query failed")
		writeError(w, http.StatusInternalServerError, "failed to load activity")
		return
	}
	if entries == nil {
		entries = []domain.ActivityEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.deps.Auth == nil {
		writeError(w, http.StatusServiceUnavailable, "dashboard auth not configured")
		return
	}
	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}
	token, err := s.deps.Auth.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			log.Warn().Str("user", req.Username).Msg("dashboard login rejected")
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token, "username": req.Username})
}
