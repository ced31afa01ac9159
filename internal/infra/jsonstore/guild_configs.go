package jsonstore

import (
	"context"
	"sort"
	"sync"

	"github.com/jose-valero/rcon-arma-bot/internal/domain"
)

// GuildConfigs: objeto JSON indexado por guildId, se reescribe completo en
// cada cambio. El mutex serializa los read-modify-write de este proceso;
// entre procesos sigue siendo last-write-wins.
type GuildConfigs struct {
	path string
	mu   sync.Mutex
}

func NewGuildConfigs(path string) *GuildConfigs { return &GuildConfigs{path: path} }

func (s *GuildConfigs) load() (map[string]domain.GuildConfig, error) {
	m := map[string]domain.GuildConfig{}
	if err := readJSON(s.path, &m); err != nil {
		return nil, err
	}
	for id, c := range m {
		if c.GuildID == "" {
			c.GuildID = id
			m[id] = c
		}
	}
	return m, nil
}

func (s *GuildConfigs) Get(_ context.Context, guildID string) (domain.GuildConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.load()
	if err != nil {
		return domain.GuildConfig{}, err
	}
	c, ok := m[guildID]
	if !ok {
		return domain.GuildConfig{}, ErrNotFound
	}
	return c, nil
}

func (s *GuildConfigs) All(_ context.Context) ([]domain.GuildConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]domain.GuildConfig, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GuildID < out[j].GuildID })
	return out, nil
}

func (s *GuildConfigs) Save(ctx context.Context, cfg domain.GuildConfig) error {
	_, err := s.Update(ctx, cfg.GuildID, func(c *domain.GuildConfig) error {
		*c = cfg
		return nil
	})
	return err
}

// Update aplica fn sobre la config actual (o una vacía) y guarda todo el archivo.
func (s *GuildConfigs) Update(_ context.Context, guildID string, fn func(*domain.GuildConfig) error) (domain.GuildConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.load()
	if err != nil {
		return domain.GuildConfig{}, err
	}
	c := m[guildID]
	if err := fn(&c); err != nil {
		return domain.GuildConfig{}, err
	}
	c.GuildID = guildID
	m[guildID] = c
	if err := writeJSON(s.path, m); err != nil {
		return domain.GuildConfig{}, err
	}
	return c, nil
}
