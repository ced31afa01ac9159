package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jose-valero/rcon-arma-bot/internal/adapters/rcon"
	"github.com/jose-valero/rcon-arma-bot/internal/app/render"
	"github.com/jose-valero/rcon-arma-bot/internal/domain"
)

const (
	DefaultListInterval = 10 * time.Minute
	cleanupScan         = 50
)

type jobKey struct {
	guildID string
	kind    domain.JobKind
}

// JobManager mantiene a lo sumo un job por (guild, kind). El estado vive en
// memoria; los flags *Enabled de la config permiten reconstruirlo con RestoreGuild.
type JobManager struct {
	sched    *Scheduler
	configs  *GuildConfigService
	channels ChannelResolver
	players  *PlayerService
	activity *ActivityService
	every    time.Duration
	now      func() time.Time

	mu   sync.Mutex
	jobs map[jobKey]Ticket
}

func NewJobManager(sched *Scheduler, configs *GuildConfigService, channels ChannelResolver, players *PlayerService, activity *ActivityService, every time.Duration) *JobManager {
	if every <= 0 {
		every = DefaultListInterval
	}
	return &JobManager{
		sched:    sched,
		configs:  configs,
		channels: channels,
		players:  players,
		activity: activity,
		every:    every,
		now:      time.Now,
		jobs:     map[jobKey]Ticket{},
	}
}

// Start: falla con ErrJobRunning, ErrChannelNotConfigured o ErrChannelNotFound
// (en ese orden). Corre un ciclo inmediato y persiste enabled=true.
func (m *JobManager) Start(ctx context.Context, guildID string, kind domain.JobKind) error {
	cfg, err := m.configs.Get(ctx, guildID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	key := jobKey{guildID, kind}
	if _, ok := m.jobs[key]; ok {
		m.mu.Unlock()
		return ErrJobRunning
	}
	chID := cfg.ChannelFor(kind)
	if chID == "" {
		m.mu.Unlock()
		return ErrChannelNotConfigured
	}
	if _, err := m.channels.Channel(guildID, chID); err != nil {
		m.mu.Unlock()
		if errors.Is(err, ErrChannelNotFound) {
			return ErrChannelNotFound
		}
		return fmt.Errorf("resolve channel %s: %w", chID, err)
	}
	if err := m.register(key); err != nil {
		m.mu.Unlock()
		return err
	}
	m.mu.Unlock()

	if err := m.configs.SetEnabled(ctx, guildID, kind, true); err != nil {
		log.Warn().Err(err).Str("guild", guildID).Str("kind", string(kind)).Msg("persist enabled flag failed")
	}
	if m.activity != nil {
		m.activity.Record(ctx, guildID, ActionJobStart, map[string]any{"kind": string(kind)})
	}
	return nil
}

// Stop: ErrJobNotRunning si no había job. Un tick en vuelo no se interrumpe.
func (m *JobManager) Stop(ctx context.Context, guildID string, kind domain.JobKind) error {
	m.mu.Lock()
	key := jobKey{guildID, kind}
	tk, ok := m.jobs[key]
	if !ok {
		m.mu.Unlock()
		return ErrJobNotRunning
	}
	delete(m.jobs, key)
	m.mu.Unlock()

	m.sched.Revoke(tk)
	if err := m.configs.SetEnabled(ctx, guildID, kind, false); err != nil {
		log.Warn().Err(err).Str("guild", guildID).Str("kind", string(kind)).Msg("persist enabled flag failed")
	}
	if m.activity != nil {
		m.activity.Record(ctx, guildID, ActionJobStop, map[string]any{"kind": string(kind)})
	}
	return nil
}

// RestoreGuild re-registra (con ciclo inmediato) cada job enabled de la
// guild. Se llama cuando la guild queda disponible en el gateway, así el
// primer tick ya resuelve sus canales. Devuelve cuántos arrancó.
func (m *JobManager) RestoreGuild(ctx context.Context, guildID string) (int, error) {
	cfg, err := m.configs.Get(ctx, guildID)
	if errors.Is(err, ErrConfigMissing) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("restore jobs %s: %w", guildID, err)
	}
	n := 0
	for _, kind := range domain.JobKinds {
		if !cfg.Enabled(kind) || cfg.ChannelFor(kind) == "" {
			continue
		}
		key := jobKey{cfg.GuildID, kind}
		m.mu.Lock()
		_, running := m.jobs[key]
		if !running {
			err = m.register(key)
		}
		m.mu.Unlock()
		if running {
			continue
		}
		if err != nil {
			log.Error().Err(err).Str("guild", cfg.GuildID).Str("kind", string(kind)).Msg("restore job failed")
			continue
		}
		n++
		log.Info().Str("guild", cfg.GuildID).Str("kind", string(kind)).Msg("job restored")
	}
	return n, nil
}

// register: con m.mu tomado.
func (m *JobManager) register(key jobKey) error {
	name := fmt.Sprintf("%s/%s", key.kind, key.guildID)
	tk, err := m.sched.Every(name, m.every, true, func(ctx context.Context) error {
		return m.Tick(ctx, key.guildID, key.kind)
	})
	if err != nil {
		return err
	}
	m.jobs[key] = tk
	return nil
}

func (m *JobManager) Running(guildID string, kind domain.JobKind) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.jobs[jobKey{guildID, kind}]
	return ok
}

func (m *JobManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

// Ticket expone el ticket de un job (tests, dashboard).
func (m *JobManager) Ticket(guildID string, kind domain.JobKind) (Ticket, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tk, ok := m.jobs[jobKey{guildID, kind}]
	return tk, ok
}

// Tick es un ciclo de limpieza y posteo. Los errores vuelven al scheduler,
// que los loguea; el job sigue vivo.
func (m *JobManager) Tick(ctx context.Context, guildID string, kind domain.JobKind) error {
	cfg, err := m.configs.Get(ctx, guildID)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	chID := cfg.ChannelFor(kind)
	ch, err := m.channels.Channel(guildID, chID)
	if err != nil {
		log.Warn().Err(err).Str("guild", guildID).Str("kind", string(kind)).Str("channel", chID).Msg("job channel unavailable, skipping tick")
		return fmt.Errorf("channel %s: %w", chID, err)
	}

	m.cleanup(ctx, ch, cfg, kind)

	players, err := m.players.Online(ctx, cfg)
	if err != nil {
		class := rcon.Classify(err)
		log.Warn().Err(err).Str("guild", guildID).Str("kind", string(kind)).Str("class", string(class)).Msg(class.Describe())
		if kind == domain.JobCommunityList {
			if serr := ch.Send(ctx, "", render.CommunityOfflineEmbed(cfg, m.now())); serr != nil {
				return fmt.Errorf("post offline embed: %w", serr)
			}
			return nil
		}
		return fmt.Errorf("%s: %w", class, err)
	}

	switch kind {
	case domain.JobAutoList:
		return ch.SendPaged(ctx, render.PlayersPaged(cfg.ServerID, players))
	case domain.JobCommunityList:
		return ch.Send(ctx, "", render.CommunityEmbed(cfg, players, m.now()))
	}
	return fmt.Errorf("unknown job kind %q", kind)
}

// cleanup borra posteos previos del bot para este tipo de job; cada borrado
// falla por separado.
func (m *JobManager) cleanup(ctx context.Context, ch Channel, cfg domain.GuildConfig, kind domain.JobKind) {
	msgs, err := ch.RecentMessages(ctx, cleanupScan)
	if err != nil {
		log.Warn().Err(err).Str("guild", cfg.GuildID).Str("kind", string(kind)).Msg("fetch recent messages failed")
		return
	}
	for _, msg := range msgs {
		if !msg.FromSelf || !matchesJob(msg, cfg, kind) {
			continue
		}
		if err := ch.DeleteMessage(ctx, msg.ID); err != nil {
			log.Debug().Err(err).Str("guild", cfg.GuildID).Str("message", msg.ID).Msg("delete previous post failed")
		}
	}
}

func matchesJob(msg PostedMessage, cfg domain.GuildConfig, kind domain.JobKind) bool {
	// la lista vacía es texto plano
	if kind == domain.JobAutoList && strings.HasPrefix(msg.Content, render.PlayersEmptyPrefix) {
		return true
	}
	for _, t := range msg.EmbedTitles {
		switch kind {
		case domain.JobAutoList:
			if strings.Contains(t, "Players on") || strings.Contains(t, "online") {
				return true
			}
		case domain.JobCommunityList:
			if strings.Contains(t, "Community Status") ||
				(cfg.ServerID != "" && strings.Contains(t, cfg.ServerID)) ||
				(cfg.DisplayName != "" && strings.Contains(t, cfg.DisplayName)) {
				return true
			}
		}
	}
	return false
}
