package discord

import (
	"context"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/rcon-arma-bot/internal/app/render"
	"github.com/jose-valero/rcon-arma-bot/internal/app/service"
	"github.com/jose-valero/rcon-arma-bot/internal/domain"
	"github.com/jose-valero/rcon-arma-bot/internal/infra/jsonstore"
)

type fakeMsg struct {
	content string
	author  string
	guild   string
	channel string
	perms   int64

	mu      sync.Mutex
	replies []string
	embeds  []*discordgo.MessageEmbed
	paged   []render.Paged
}

func newMsg(content string) *fakeMsg {
	return &fakeMsg{content: content, author: "u1", guild: "g1", channel: "cmd"}
}

func (f *fakeMsg) Content() string   { return f.content }
func (f *fakeMsg) AuthorID() string  { return f.author }
func (f *fakeMsg) AuthorTag() string { return "mod#0001" }
func (f *fakeMsg) GuildID() string   { return f.guild }
func (f *fakeMsg) ChannelID() string { return f.channel }

func (f *fakeMsg) HasPermission(p int64) bool { return f.perms&p == p }

func (f *fakeMsg) Reply(_ context.Context, content string, embeds ...*discordgo.MessageEmbed) error {
	f.mu.Lock()
	if content != "" {
		f.replies = append(f.replies, content)
	}
	f.embeds = append(f.embeds, embeds...)
	f.mu.Unlock()
	return nil
}

func (f *fakeMsg) ReplyPaged(_ context.Context, p render.Paged) error {
	f.mu.Lock()
	f.paged = append(f.paged, p)
	f.mu.Unlock()
	return nil
}

func (f *fakeMsg) lastReply() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.replies) == 0 {
		return ""
	}
	return f.replies[len(f.replies)-1]
}

func (f *fakeMsg) embedTitles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.embeds))
	for _, e := range f.embeds {
		out = append(out, e.Title)
	}
	return out
}

type fakeRcon struct {
	mu      sync.Mutex
	players []domain.OnlinePlayer
	bans    []domain.BanEntry
	calls   []string
}

func (f *fakeRcon) rec(s string) {
	f.mu.Lock()
	f.calls = append(f.calls, s)
	f.mu.Unlock()
}

func (f *fakeRcon) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeRcon) Players(context.Context, string, string) ([]domain.OnlinePlayer, error) {
	f.rec("#players")
	return f.players, nil
}

func (f *fakeRcon) Bans(context.Context, string, string) ([]domain.BanEntry, error) {
	f.rec("#ban list")
	return f.bans, nil
}

func (f *fakeRcon) Kick(_ context.Context, _, _, t string) error {
	f.rec("#kick " + t)
	return nil
}

func (f *fakeRcon) Ban(_ context.Context, _, _, t string, secs int, reason string) error {
	f.rec("#ban create " + t + " " + strconv.Itoa(secs) + " " + reason)
	return nil
}

func (f *fakeRcon) Unban(_ context.Context, _, _, uid string) error {
	f.rec("#ban remove " + uid)
	return nil
}

type fakeChannel struct {
	id     string
	mu     sync.Mutex
	embeds []*discordgo.MessageEmbed
	paged  int
}

func (c *fakeChannel) ID() string { return c.id }

func (c *fakeChannel) Send(_ context.Context, _ string, embeds ...*discordgo.MessageEmbed) error {
	c.mu.Lock()
	c.embeds = append(c.embeds, embeds...)
	c.mu.Unlock()
	return nil
}

func (c *fakeChannel) SendPaged(context.Context, render.Paged) error {
	c.mu.Lock()
	c.paged++
	c.mu.Unlock()
	return nil
}

func (c *fakeChannel) RecentMessages(context.Context, int) ([]service.PostedMessage, error) {
	return nil, nil
}

func (c *fakeChannel) DeleteMessage(context.Context, string) error { return nil }

func (c *fakeChannel) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.embeds)
}

func (c *fakeChannel) pagedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paged
}

type fakeResolver map[string]*fakeChannel

func (r fakeResolver) Channel(_, id string) (service.Channel, error) {
	if c, ok := r[id]; ok {
		return c, nil
	}
	return nil, service.ErrChannelNotFound
}

type staticIP string

func (s staticIP) CurrentIP(context.Context) (string, error) { return string(s), nil }

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, string, string) error { return nil }

type fakeSender struct {
	mu    sync.Mutex
	sent  []sentPage
	edits []sentPage
	seq   int
}

type sentPage struct {
	channelID, messageID, content string
	embed                         *discordgo.MessageEmbed
	comps                         []discordgo.MessageComponent
}

func (f *fakeSender) SendPage(_ context.Context, channelID, content string, embed *discordgo.MessageEmbed, comps []discordgo.MessageComponent) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	id := "m" + strconv.Itoa(f.seq)
	f.sent = append(f.sent, sentPage{channelID, id, content, embed, comps})
	return id, nil
}

func (f *fakeSender) EditPage(channelID, messageID string, embed *discordgo.MessageEmbed, comps []discordgo.MessageComponent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, sentPage{channelID, messageID, "", embed, comps})
	return nil
}

func (f *fakeSender) editCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.edits)
}

type testEnv struct {
	router   *Router
	rcon     *fakeRcon
	configs  *service.GuildConfigService
	banlog   *fakeChannel
	resolver fakeResolver
	sched    *service.Scheduler
}

func newTestEnv(t *testing.T, configured bool) *testEnv {
	t.Helper()
	dir := t.TempDir()
	ctx := context.Background()

	rc := &fakeRcon{players: []domain.OnlinePlayer{{ID: "4", UID: "uid-smith", Name: "Smith"}}}
	banlog := &fakeChannel{id: "100"}
	resolver := fakeResolver{"100": banlog, "200": {id: "200"}, "300": {id: "300"}}

	configs := service.NewGuildConfigService(jsonstore.NewGuildConfigs(filepath.Join(dir, "guildConfig.json")), nil)
	if configured {
		_, err := configs.Save(ctx, domain.GuildConfig{
			GuildID: "g1", ServerID: "srv-1", APIToken: "token-1234567", DisplayName: "EU #1",
			BanLogChannelID: "100", OnlineListChannelID: "200", RconTerminalChannelID: "300",
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	sched := service.NewScheduler(ctx, time.Second)
	t.Cleanup(sched.Close)

	activity := service.NewActivityService("bot", nil, 0)
	players := service.NewPlayerService(rc, jsonstore.NewPlayers(filepath.Join(dir, "players.json")))
	ip := service.NewIPMonitor(staticIP("203.0.113.7"), jsonstore.NewIPMonitorState(filepath.Join(dir, "ip.json")), nopNotifier{}, sched, activity, time.Hour)

	r := &Router{
		svc: Services{
			Configs:    configs,
			Jobs:       service.NewJobManager(sched, configs, resolver, players, activity, time.Hour),
			Players:    players,
			Moderation: service.NewModerationService(rc, resolver, activity),
			IP:         ip,
			Activity:   activity,
			ListEvery:  10 * time.Minute,
			IPEvery:    time.Hour,
		},
		channels:      resolver,
		pager:         NewPager(&fakeSender{}),
		waiters:       NewWaiters(),
		clicks:        newUserLimiter(time.Millisecond),
		stepTimeout:   2 * time.Second,
		choiceTimeout: 2 * time.Second,
	}
	return &testEnv{router: r, rcon: rc, configs: configs, banlog: banlog, resolver: resolver, sched: sched}
}
