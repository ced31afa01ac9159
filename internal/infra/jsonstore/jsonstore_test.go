package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jose-valero/rcon-arma-bot/internal/domain"
)

func TestGuildConfigsRoundTripAndWholesaleRewrite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "guildConfig.json")
	s := NewGuildConfigs(path)

	if _, err := s.Get(ctx, "g1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get on empty store = %v, want ErrNotFound", err)
	}

	cfg := domain.GuildConfig{GuildID: "g1", ServerID: "srv-1", APIToken: "token-123456", AutoListEnabled: true}
	if err := s.Save(ctx, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := s.Update(ctx, "g2", func(c *domain.GuildConfig) error {
		c.ServerID = "srv-2"
		return nil
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]domain.GuildConfig
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("file is not a JSON object keyed by guild: %v", err)
	}
	if len(raw) != 2 || raw["g1"].ServerID != "srv-1" || raw["g2"].GuildID != "g2" {
		t.Fatalf("unexpected file content: %+v", raw)
	}

	all, err := s.All(ctx)
	if err != nil || len(all) != 2 || all[0].GuildID != "g1" {
		t.Fatalf("All = %+v, %v", all, err)
	}
}

func TestGuildConfigsUpdateErrorDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	s := NewGuildConfigs(filepath.Join(t.TempDir(), "cfg.json"))
	boom := errors.New("boom")
	if _, err := s.Update(ctx, "g1", func(*domain.GuildConfig) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if _, err := s.Get(ctx, "g1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("failed update must not persist, got %v", err)
	}
}

func TestGuildConfigsConcurrentUpdatesKeepEveryField(t *testing.T) {
	ctx := context.Background()
	s := NewGuildConfigs(filepath.Join(t.TempDir(), "cfg.json"))
	if err := s.Save(ctx, domain.GuildConfig{GuildID: "g1", ServerID: "srv"}); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = s.Update(ctx, "g1", func(c *domain.GuildConfig) error { c.AutoListEnabled = true; return nil })
	}()
	go func() {
		defer wg.Done()
		_, _ = s.Update(ctx, "g1", func(c *domain.GuildConfig) error { c.DisplayName = "Main"; return nil })
	}()
	wg.Wait()

	got, err := s.Get(ctx, "g1")
	if err != nil {
		t.Fatal(err)
	}
	if !got.AutoListEnabled || got.DisplayName != "Main" {
		t.Fatalf("lost an update: %+v", got)
	}
}

func TestPlayersTrackIncrementsTimesSeen(t *testing.T) {
	ctx := context.Background()
	s := NewPlayers(filepath.Join(t.TempDir(), "players.json"))
	t0 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return t0 }

	if err := s.Track(ctx, []domain.OnlinePlayer{{ID: "1", UID: "u1", Name: "Smith"}}); err != nil {
		t.Fatal(err)
	}
	s.now = func() time.Time { return t0.Add(time.Hour) }
	if err := s.Track(ctx, []domain.OnlinePlayer{{ID: "7", UID: "u1", Name: "Smithy"}, {ID: "2", UID: "u2", Name: "Jones"}}); err != nil {
		t.Fatal(err)
	}

	rec, err := s.Get(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if rec.TimesSeen != 2 || rec.Name != "Smithy" || rec.PlayerID != "7" {
		t.Errorf("u1 = %+v", rec)
	}
	if !rec.FirstSeen.Equal(t0) || !rec.LastSeen.Equal(t0.Add(time.Hour)) {
		t.Errorf("timestamps = %s / %s", rec.FirstSeen, rec.LastSeen)
	}
	if n, _ := s.Count(ctx); n != 2 {
		t.Errorf("Count = %d", n)
	}

	hits, total, err := s.Search(ctx, "SMI", 10)
	if err != nil || total != 1 || len(hits) != 1 || hits[0].UID != "u1" {
		t.Errorf("Search = %+v total=%d err=%v", hits, total, err)
	}
}

func TestIPMonitorStateDefaults(t *testing.T) {
	ctx := context.Background()
	s := NewIPMonitorState(filepath.Join(t.TempDir(), "ip.json"))
	st, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.CurrentIP != "" || st.AlertChannels == nil {
		t.Fatalf("unexpected zero state: %+v", st)
	}
	st.CurrentIP = "1.2.3.4"
	st.AlertChannels = append(st.AlertChannels, "c1")
	if err := s.Save(ctx, st); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Load(ctx)
	if got.CurrentIP != "1.2.3.4" || len(got.AlertChannels) != 1 {
		t.Fatalf("Load = %+v", got)
	}
}
