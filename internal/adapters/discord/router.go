package discord

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/jose-valero/rcon-arma-bot/internal/app/service"
)

const (
	commandTimeout = 30 * time.Second
	restoreTimeout = 30 * time.Second
	wizardTimeout  = 15 * time.Minute
	clickWindow    = 750 * time.Millisecond
)

// Services agrupa lo que consumen los handlers.
type Services struct {
	Configs    *service.GuildConfigService
	Jobs       *service.JobManager
	Players    *service.PlayerService
	Moderation *service.ModerationService
	IP         *service.IPMonitor
	Activity   *service.ActivityService

	ListEvery time.Duration
	IPEvery   time.Duration
}

type Router struct {
	s        *discordgo.Session
	svc      Services
	channels service.ChannelResolver
	pager    *Pager
	waiters  *Waiters
	clicks   *userLimiter

	stepTimeout   time.Duration
	choiceTimeout time.Duration
}

// NewRouter arma el router sobre una sesión; pager y channels se comparten
// con el composition root.
func NewRouter(s *discordgo.Session, svc Services, channels service.ChannelResolver, pager *Pager) *Router {
	return &Router{
		s:        s,
		svc:      svc,
		channels: channels,
		pager:    pager,
		waiters:  NewWaiters(),
		clicks:   newUserLimiter(clickWindow),

		stepTimeout:   stepTimeout,
		choiceTimeout: choiceTimeout,
	}
}

// NewSessionPager es el pager que postea con la sesión real.
func NewSessionPager(s *discordgo.Session) *Pager { return NewPager(sessionSender{s: s}) }

func (r *Router) Handlers() {
	r.s.AddHandler(func(s *discordgo.Session, ev *discordgo.Ready) {
		log.Info().Str("user", ev.User.Username).Int("guilds", len(ev.Guilds)).Msg("✅ discord ready")
	})
	r.s.AddHandler(r.onGuildCreate)
	r.s.AddHandler(r.onMessage)
	r.s.AddHandler(r.onInteraction)
}

// onGuildCreate restaura los jobs de la guild recién cargada en el cache;
// antes de GUILD_CREATE sus canales todavía no resuelven.
func (r *Router) onGuildCreate(_ *discordgo.Session, ev *discordgo.GuildCreate) {
	if ev.Guild == nil || ev.Unavailable {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), restoreTimeout)
	defer cancel()
	n, err := r.svc.Jobs.RestoreGuild(ctx, ev.ID)
	if err != nil {
		log.Error().Err(err).Str("guild", ev.ID).Msg("restore jobs")
		return
	}
	if n > 0 {
		log.Info().Str("guild", ev.ID).Int("jobs", n).Msg("🔄 jobs restaurados")
	}
}

func (r *Router) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	// respuestas a un wizard en curso no son comandos
	if r.waiters.Offer(m.ChannelID, m.Author.ID, strings.TrimSpace(m.Content)) {
		return
	}
	r.Dispatch(context.Background(), &gatewayMessage{s: s, m: m, pager: r.pager})
}

func (r *Router) onInteraction(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	if ic.Type != discordgo.InteractionMessageComponent {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("panic in component handler")
		}
	}()
	data := ic.MessageComponentData()
	if !IsPageButton(data.CustomID) {
		return
	}
	userID := ""
	if ic.Member != nil && ic.Member.User != nil {
		userID = ic.Member.User.ID
	} else if ic.User != nil {
		userID = ic.User.ID
	}
	if !r.clicks.Allow(userID) {
		respondEphemeral(s, ic, "⏳ Slow down a little…")
		return
	}
	embed, comps, ok := r.pager.Navigate(data.CustomID)
	if !ok {
		respondEphemeral(s, ic, "⏲️ This list has expired. Run the command again.")
		return
	}
	respondUpdate(s, ic, embed, comps)
}
