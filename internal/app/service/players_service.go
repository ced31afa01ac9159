package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jose-valero/rcon-arma-bot/internal/domain"
)

const FindLimit = 10

type PlayerService struct {
	rcon    RconAPI
	tracker PlayerTracker
}

func NewPlayerService(rcon RconAPI, tracker PlayerTracker) *PlayerService {
	return &PlayerService{rcon: rcon, tracker: tracker}
}

// Online trae #players y alimenta el tracker; un fallo del tracker no corta.
func (s *PlayerService) Online(ctx context.Context, cfg domain.GuildConfig) ([]domain.OnlinePlayer, error) {
	if !cfg.HasCredentials() {
		return nil, ErrConfigMissing
	}
	players, err := s.rcon.Players(ctx, cfg.ServerID, cfg.APIToken)
	if err != nil {
		return nil, err
	}
	s.track(ctx, cfg.GuildID, players)
	return players, nil
}

func (s *PlayerService) track(ctx context.Context, guildID string, players []domain.OnlinePlayer) {
	if s.tracker == nil || len(players) == 0 {
		return
	}
	if err := s.tracker.Track(ctx, players); err != nil {
		log.Warn().Err(err).Str("guild", guildID).Int("players", len(players)).Msg("player tracking failed")
	}
}

// Find: búsqueda por nombre (substring, sin mayúsculas); devuelve el total.
func (s *PlayerService) Find(ctx context.Context, term string) ([]domain.PlayerRecord, int, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, 0, invalid("term", "search term required")
	}
	return s.tracker.Search(ctx, term, FindLimit)
}

func (s *PlayerService) Tracked(ctx context.Context) (int, error) {
	if s.tracker == nil {
		return 0, nil
	}
	return s.tracker.Count(ctx)
}
