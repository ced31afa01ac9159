package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jose-valero/rcon-arma-bot/internal/domain"
)

// GuildConfigService: el archivo manda; el espejo en postgres es best-effort.
// Get lee primero el archivo y sólo ante un miss consulta el espejo, que
// rellena el archivo (al revés que un lookup DB-first).
type GuildConfigService struct {
	store  GuildConfigStore
	mirror GuildConfigMirror // puede ser nil
}

func NewGuildConfigService(store GuildConfigStore, mirror GuildConfigMirror) *GuildConfigService {
	return &GuildConfigService{store: store, mirror: mirror}
}

// Get devuelve ErrConfigMissing si la guild no hizo !setup.
func (s *GuildConfigService) Get(ctx context.Context, guildID string) (domain.GuildConfig, error) {
	c, err := s.store.Get(ctx, guildID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.GuildConfig{}, fmt.Errorf("guild config %s: %w", guildID, err)
	}
	if s.mirror == nil {
		return domain.GuildConfig{}, ErrConfigMissing
	}

	c, merr := s.mirror.Get(ctx, guildID)
	if merr != nil {
		if !errors.Is(merr, domain.ErrNotFound) {
			log.Warn().Err(merr).Str("guild", guildID).Msg("config mirror lookup failed")
		}
		return domain.GuildConfig{}, ErrConfigMissing
	}
	// backfill al archivo
	if _, werr := s.store.Update(ctx, guildID, func(cur *domain.GuildConfig) error {
		*cur = c
		return nil
	}); werr != nil {
		log.Warn().Err(werr).Str("guild", guildID).Msg("config backfill failed")
	}
	return c, nil
}

func (s *GuildConfigService) All(ctx context.Context) ([]domain.GuildConfig, error) {
	return s.store.All(ctx)
}

// Save reemplaza la config completa (fin de !setup).
func (s *GuildConfigService) Save(ctx context.Context, cfg domain.GuildConfig) (domain.GuildConfig, error) {
	if cfg.GuildID == "" {
		return domain.GuildConfig{}, invalid("guildId", "required")
	}
	return s.update(ctx, cfg.GuildID, func(c *domain.GuildConfig) error {
		*c = cfg
		return nil
	})
}

// ConfigPatch: campos nil no se tocan.
type ConfigPatch struct {
	ServerID              *string
	APIToken              *string
	DisplayName           *string
	BanLogChannelID       *string
	OnlineListChannelID   *string
	RconTerminalChannelID *string
	AutoListEnabled       *bool
	CommunityListEnabled  *bool
}

func (p ConfigPatch) apply(c *domain.GuildConfig) {
	if p.ServerID != nil {
		c.ServerID = *p.ServerID
	}
	if p.APIToken != nil {
		c.APIToken = *p.APIToken
	}
	if p.DisplayName != nil {
		c.DisplayName = *p.DisplayName
	}
	if p.BanLogChannelID != nil {
		c.BanLogChannelID = *p.BanLogChannelID
	}
	if p.OnlineListChannelID != nil {
		c.OnlineListChannelID = *p.OnlineListChannelID
	}
	if p.RconTerminalChannelID != nil {
		c.RconTerminalChannelID = *p.RconTerminalChannelID
	}
	if p.AutoListEnabled != nil {
		c.AutoListEnabled = *p.AutoListEnabled
	}
	if p.CommunityListEnabled != nil {
		c.CommunityListEnabled = *p.CommunityListEnabled
	}
}

// Patch exige config existente.
func (s *GuildConfigService) Patch(ctx context.Context, guildID string, p ConfigPatch) (domain.GuildConfig, error) {
	if _, err := s.Get(ctx, guildID); err != nil {
		return domain.GuildConfig{}, err
	}
	return s.update(ctx, guildID, func(c *domain.GuildConfig) error {
		p.apply(c)
		return nil
	})
}

func (s *GuildConfigService) SetEnabled(ctx context.Context, guildID string, kind domain.JobKind, on bool) error {
	_, err := s.update(ctx, guildID, func(c *domain.GuildConfig) error {
		c.SetEnabled(kind, on)
		return nil
	})
	return err
}

func (s *GuildConfigService) update(ctx context.Context, guildID string, fn func(*domain.GuildConfig) error) (domain.GuildConfig, error) {
	c, err := s.store.Update(ctx, guildID, func(c *domain.GuildConfig) error {
		c.GuildID = guildID
		return fn(c)
	})
	if err != nil {
		return domain.GuildConfig{}, fmt.Errorf("save guild config %s: %w", guildID, err)
	}
	if s.mirror != nil {
		if merr := s.mirror.Save(ctx, c); merr != nil {
			log.Warn().Err(merr).Str("guild", guildID).Msg("config mirror save failed")
		}
	}
	return c, nil
}
