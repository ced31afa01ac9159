package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"

	"github.com/jose-valero/rcon-arma-bot/internal/app/service"
	"github.com/jose-valero/rcon-arma-bot/internal/domain"
)

func newTestServer(t *testing.T) (*Server, *service.ActivityService) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	activity := service.NewActivityService("bot-1", nil, 0)
	s := New(Deps{
		BotName:  "RCON-Arma",
		Activity: activity,
		Auth:     NewAuth("jwt-secret", "admin", string(hash), time.Hour),
		Guilds:   func() []string { return []string{"g1", "g2"} },
	})
	return s, activity
}

func do(t *testing.T, h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealthAndStatus(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("health status %d", rec.Code)
	}
	if body := decode[map[string]any](t, rec); body["status"] != "ok" || body["timestamp"] == nil {
		t.Fatalf("health body %v", body)
	}

	rec = do(t, s, http.MethodGet, "/api/status", "", "")
	body := decode[map[string]any](t, rec)
	if body["online"] != true || body["guilds"] != float64(2) || body["jobs"] != float64(0) {
		t.Fatalf("status body %v", body)
	}

	rec = do(t, s, http.MethodPost, "/api/health", "", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST health = %d", rec.Code)
	}
}

func TestStatsShape(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/stats", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status %d", rec.Code)
	}
	body := decode[map[string]any](t, rec)
	for _, k := range []string{"cpuPercent", "memTotal", "hostUptimeSeconds", "goroutines", "trackedPlayers", "runningJobs"} {
		if _, ok := body[k]; !ok {
			t.Fatalf("stats missing %s: %v", k, body)
		}
	}
	if body["goroutines"].(float64) < 1 {
		t.Fatalf("goroutines = %v", body["goroutines"])
	}
}

func TestBotsAndActivity(t *testing.T) {
	s, activity := newTestServer(t)
	ctx := context.Background()
	activity.Record(ctx, "g1", service.ActionKick, map[string]any{"uid": "u1"})
	activity.Record(ctx, "g2", service.ActionBan, nil)
	activity.Record(ctx, "g1", service.ActionUnban, nil)

	bots := decode[[]map[string]any](t, do(t, s, http.MethodGet, "/api/bots", "", ""))
	if len(bots) != 1 || bots[0]["id"] != "bot-1" || bots[0]["name"] != "RCON-Arma" || bots[0]["guilds"] != float64(2) {
		t.Fatalf("bots %v", bots)
	}

	entries := decode[[]domain.ActivityEntry](t, do(t, s, http.MethodGet, "/api/bots/bot-1/activity?limit=2", "", ""))
	if len(entries) != 2 || entries[0].Action != service.ActionUnban {
		t.Fatalf("entries %+v", entries)
	}

	entries = decode[[]domain.ActivityEntry](t, do(t, s, http.MethodGet, "/api/bots/bot-1/activity?guild=g2", "", ""))
	if len(entries) != 1 || entries[0].GuildID != "g2" {
		t.Fatalf("guild filter %+v", entries)
	}

	if rec := do(t, s, http.MethodGet, "/api/bots/other/activity", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown bot = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/bots/bot-1/activity?limit=-3", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad limit = %d", rec.Code)
	}
}

func TestLoginAndTerminal(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/auth/login", `{"username":"admin","password":"wrong"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login = %d", rec.Code)
	}
	rec = do(t, s, http.MethodPost, "/api/auth/login", `{"username":"admin"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing password = %d", rec.Code)
	}
	rec = do(t, s, http.MethodPost, "/api/auth/login", `{"username":"admin","password":"s3cret-pass"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login = %d %s", rec.Code, rec.Body.String())
	}
	token := decode[map[string]string](t, rec)["token"]
	if token == "" {
		t.Fatal("empty token")
	}

	if rec := do(t, s, http.MethodPost, "/api/terminal", `{"command":"pwd"}`, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/api/terminal", `{"command":"rm -rf /"}`, token); rec.Code != http.StatusForbidden {
		t.Fatalf("disallowed = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/api/terminal", `{"command":"ls -la"}`, token); rec.Code != http.StatusForbidden {
		t.Fatalf("args = %d", rec.Code)
	}
	rec = do(t, s, http.MethodPost, "/api/terminal", `{"command":"pwd"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("pwd = %d %s", rec.Code, rec.Body.String())
	}
	res := decode[terminalResult](t, rec)
	if res.ExitCode != 0 || strings.TrimSpace(res.Output) == "" {
		t.Fatalf("pwd result %+v", res)
	}
}

func TestAuthDisabled(t *testing.T) {
	s := New(Deps{BotName: "x"})
	if rec := do(t, s, http.MethodPost, "/api/auth/login", `{"username":"a","password":"b"}`, ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("login = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/api/terminal", `{"command":"pwd"}`, "x"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("terminal = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/bots/any/activity", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("activity = %d", rec.Code)
	}
}

func TestCappedBuffer(t *testing.T) {
	b := &cappedBuffer{max: 4}
	n, err := b.Write([]byte("abc"))
	if n != 3 || err != nil {
		t.Fatal(n, err)
	}
	n, _ = b.Write([]byte("defgh"))
	if n != 5 || b.buf.String() != "abcd" {
		t.Fatalf("n=%d buf=%q", n, b.buf.String())
	}
}

func TestActivityWebsocket(t *testing.T) {
	s, activity := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	feed, unsubscribe := activity.Subscribe(8)
	defer unsubscribe()
	go s.hub.Pump(ctx, feed)

	ts := httptest.NewServer(s)
	defer ts.Close()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws/activity", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for s.hub.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	activity.Record(ctx, "g1", service.ActionJobStart, map[string]any{"kind": "autolist"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got domain.ActivityEntry
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatal(err)
	}
	if got.GuildID != "g1" || got.Action != service.ActionJobStart || got.BotInstanceID != "bot-1" {
		t.Fatalf("got %+v", got)
	}

	s.hub.Close()
	if s.hub.Clients() != 0 {
		t.Fatal("hub not emptied")
	}
}
