package service

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/rcon-arma-bot/internal/app/render"
	"github.com/jose-valero/rcon-arma-bot/internal/domain"
	"github.com/jose-valero/rcon-arma-bot/internal/infra/jsonstore"
)

type fakeRcon struct {
	mu        sync.Mutex
	players   []domain.OnlinePlayer
	bans      []domain.BanEntry
	playerErr error
	kickErr   error
	banErr    error
	calls     []string
}

func (f *fakeRcon) log(s string) {
	f.mu.Lock()
	f.calls = append(f.calls, s)
	f.mu.Unlock()
}

func (f *fakeRcon) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeRcon) setPlayers(ps []domain.OnlinePlayer, err error) {
	f.mu.Lock()
	f.players, f.playerErr = ps, err
	f.mu.Unlock()
}

func (f *fakeRcon) Players(context.Context, string, string) ([]domain.OnlinePlayer, error) {
	f.log("#players")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.players, f.playerErr
}

func (f *fakeRcon) Bans(context.Context, string, string) ([]domain.BanEntry, error) {
	f.log("#ban list")
	return f.bans, nil
}

func (f *fakeRcon) Kick(_ context.Context, _, _, target string) error {
	f.log("#kick " + target)
	return f.kickErr
}

func (f *fakeRcon) Ban(_ context.Context, _, _, target string, seconds int, reason string) error {
	f.log("#ban create " + target + " " + strconv.Itoa(seconds) + " " + reason)
	return f.banErr
}

func (f *fakeRcon) Unban(_ context.Context, _, _, uid string) error {
	f.log("#ban remove " + uid)
	return nil
}

type fakeChannel struct {
	id string

	mu      sync.Mutex
	sent    []*discordgo.MessageEmbed
	texts   []string
	paged   []render.Paged
	recent  []PostedMessage
	deleted []string
	posts   chan struct{}
}

func newFakeChannel(id string) *fakeChannel {
	return &fakeChannel{id: id, posts: make(chan struct{}, 64)}
}

func (c *fakeChannel) ID() string { return c.id }

func (c *fakeChannel) Send(_ context.Context, content string, embeds ...*discordgo.MessageEmbed) error {
	c.mu.Lock()
	c.texts = append(c.texts, content)
	c.sent = append(c.sent, embeds...)
	c.mu.Unlock()
	c.posts <- struct{}{}
	return nil
}

func (c *fakeChannel) SendPaged(_ context.Context, p render.Paged) error {
	c.mu.Lock()
	c.paged = append(c.paged, p)
	c.mu.Unlock()
	c.posts <- struct{}{}
	return nil
}

func (c *fakeChannel) RecentMessages(context.Context, int) ([]PostedMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]PostedMessage(nil), c.recent...), nil
}

func (c *fakeChannel) DeleteMessage(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, id)
	return nil
}

func (c *fakeChannel) waitPost(t *testing.T) {
	t.Helper()
	select {
	case <-c.posts:
	case <-time.After(2 * time.Second):
		t.Fatalf("channel %s: no post within 2s", c.id)
	}
}

func (c *fakeChannel) counts() (embeds, paged int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent), len(c.paged)
}

type fakeResolver struct {
	mu    sync.Mutex
	chans map[string]*fakeChannel
}

func newResolver(chs ...*fakeChannel) *fakeResolver {
	r := &fakeResolver{chans: map[string]*fakeChannel{}}
	for _, c := range chs {
		r.chans[c.id] = c
	}
	return r
}

func (r *fakeResolver) Channel(_, channelID string) (Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chans[channelID]
	if !ok {
		return nil, ErrChannelNotFound
	}
	return c, nil
}

func (r *fakeResolver) remove(id string) {
	r.mu.Lock()
	delete(r.chans, id)
	r.mu.Unlock()
}

type memTracker struct {
	mu   sync.Mutex
	seen map[string]int
}

func (m *memTracker) Track(_ context.Context, ps []domain.OnlinePlayer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen == nil {
		m.seen = map[string]int{}
	}
	for _, p := range ps {
		m.seen[p.UID]++
	}
	return nil
}

func (m *memTracker) Search(context.Context, string, int) ([]domain.PlayerRecord, int, error) {
	return nil, 0, nil
}

func (m *memTracker) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.seen), nil
}

type memMirror struct {
	mu   sync.Mutex
	cfgs map[string]domain.GuildConfig
	err  error
}

func (m *memMirror) Get(_ context.Context, id string) (domain.GuildConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.GuildConfig{}, m.err
	}
	c, ok := m.cfgs[id]
	if !ok {
		return domain.GuildConfig{}, domain.ErrNotFound
	}
	return c, nil
}

func (m *memMirror) Save(_ context.Context, c domain.GuildConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cfgs == nil {
		m.cfgs = map[string]domain.GuildConfig{}
	}
	m.cfgs[c.GuildID] = c
	return m.err
}

var errUpstream = errors.New("upstream down")

func newConfigService(t *testing.T, mirror GuildConfigMirror) (*GuildConfigService, *jsonstore.GuildConfigs) {
	t.Helper()
	store := jsonstore.NewGuildConfigs(filepath.Join(t.TempDir(), "guildConfig.json"))
	return NewGuildConfigService(store, mirror), store
}

func testConfig() domain.GuildConfig {
	return domain.GuildConfig{
		GuildID:               "g1",
		ServerID:              "srv-1",
		APIToken:              "token-1234567",
		DisplayName:           "EU #1",
		BanLogChannelID:       "banlog",
		OnlineListChannelID:   "online",
		RconTerminalChannelID: "terminal",
	}
}
