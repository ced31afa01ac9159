package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/jose-valero/rcon-arma-bot/internal/adapters/discord"
	"github.com/jose-valero/rcon-arma-bot/internal/adapters/httpapi"
	"github.com/jose-valero/rcon-arma-bot/internal/adapters/ipify"
	"github.com/jose-valero/rcon-arma-bot/internal/adapters/rcon"
	"github.com/jose-valero/rcon-arma-bot/internal/app/service"
	"github.com/jose-valero/rcon-arma-bot/internal/domain"
	"github.com/jose-valero/rcon-arma-bot/internal/infra/config"
	"github.com/jose-valero/rcon-arma-bot/internal/infra/jsonstore"
	"github.com/jose-valero/rcon-arma-bot/internal/infra/logging"
	"github.com/jose-valero/rcon-arma-bot/internal/infra/storage"
)

func main() {
	configFile := pflag.String("config", "", "optional config file (yaml/json/toml)")
	logLevel := pflag.String("log-level", "", "override LOG_LEVEL")
	pflag.Parse()

	_ = godotenv.Load()
	logging.Setup("info", os.Getenv("LOG_PRETTY") == "true")

	cfg := config.Load(*configFile)
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	logging.Setup(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Stores: los JSON son la fuente de verdad; la DB es opcional
	var (
		tracker service.PlayerTracker = jsonstore.NewPlayers(cfg.PlayersFile)
		mirror  service.GuildConfigMirror
		sink    service.ActivitySink
	)
	if cfg.DatabaseURL != "" {
		db, err := storage.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("db")
		}
		defer db.Close()
		if err := storage.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("migrate")
		}
		log.Info().Msg("✅ DB lista y migrada")
		tracker = storage.NewPlayerRepo(db)
		mirror = storage.NewGuildConfigRepo(db)
		sink = storage.NewActivityRepo(db)
	} else {
		log.Info().Msg("sin DATABASE_URL: sólo archivos JSON")
	}

	// Discord session (antes de los services: el bot id sale del usuario)
	auth := strings.TrimSpace(cfg.DiscordToken)
	if !strings.HasPrefix(strings.ToLower(auth), "bot ") {
		auth = "Bot " + auth
	}
	s, err := discordgo.New(auth)
	if err != nil {
		log.Fatal().Err(err).Msg("discord session")
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent
	me, err := s.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		log.Fatal().Err(err).Msg("discord user")
	}

	// Services
	rc := rcon.New(rcon.WithBaseURL(cfg.RconBaseURL), rcon.WithTimeout(cfg.RconTimeout))
	sched := service.NewScheduler(ctx, 0)
	defer sched.Close()
	pager := discord.NewSessionPager(s)
	defer pager.Close()
	channels := discord.NewChannels(s, pager)

	activity := service.NewActivityService(me.ID, sink, 0)
	configs := service.NewGuildConfigService(jsonstore.NewGuildConfigs(cfg.GuildConfigFile), mirror)
	players := service.NewPlayerService(rc, tracker)
	jobs := service.NewJobManager(sched, configs, channels, players, activity, cfg.ListInterval)
	ipmon := service.NewIPMonitor(
		ipify.New(ipify.WithURL(cfg.IPLookupURL)),
		jsonstore.NewIPMonitorState(cfg.IPMonitorFile),
		channels, sched, activity, cfg.IPCheckInterval,
	)

	// Router
	r := discord.NewRouter(s, discord.Services{
		Configs:    configs,
		Jobs:       jobs,
		Players:    players,
		Moderation: service.NewModerationService(rc, channels, activity),
		IP:         ipmon,
		Activity:   activity,
		ListEvery:  cfg.ListInterval,
		IPEvery:    cfg.IPCheckInterval,
	}, channels, pager)
	r.Handlers()

	// Los jobs prendidos antes del reinicio se restauran por guild en
	// GUILD_CREATE, después de Open.
	pending := 0
	if all, err := configs.All(ctx); err != nil {
		log.Error().Err(err).Msg("guild configs")
	} else {
		for _, c := range all {
			for _, kind := range domain.JobKinds {
				if c.Enabled(kind) {
					pending++
				}
			}
		}
	}
	log.Info().Int("jobs", pending).Msg("jobs a restaurar")

	if err := s.Open(); err != nil {
		log.Fatal().Err(err).Msg("discord open")
	}
	defer s.Close()
	log.Info().Str("user", me.Username).Str("id", me.ID).Msg("✅ conectado")

	if err := ipmon.Start(); err != nil {
		log.Error().Err(err).Msg("ip monitor")
	}

	// Dashboard
	var dashAuth *httpapi.Auth
	if cfg.DashboardJWTSecret != "" {
		dashAuth = httpapi.NewAuth(cfg.DashboardJWTSecret, cfg.DashboardAdminUser, cfg.DashboardAdminPasswordHash, 0)
	}
	web := httpapi.New(httpapi.Deps{
		BotName:  cfg.BotName,
		Activity: activity,
		Jobs:     jobs,
		Players:  players,
		Auth:     dashAuth,
		Guilds:   func() []string { return guildIDs(s) },
	})
	go func() {
		if err := web.Run(ctx, cfg.HTTPAddr); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("dashboard")
		}
	}()

	// Esperar señal
	<-ctx.Done()
	log.Info().Msg("🛑 apagando")
}

func guildIDs(s *discordgo.Session) []string {
	s.State.RLock()
	defer s.State.RUnlock()
	out := make([]string, 0, len(s.State.Guilds))
	for _, g := range s.State.Guilds {
		out = append(out, g.ID)
	}
	return out
}
