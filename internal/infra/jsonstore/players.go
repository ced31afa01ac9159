package jsonstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jose-valero/rcon-arma-bot/internal/domain"
)

// Players es el tracker en archivo, indexado por uid.
type Players struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

func NewPlayers(path string) *Players { return &Players{path: path, now: time.Now} }

func (s *Players) load() (map[string]domain.PlayerRecord, error) {
	m := map[string]domain.PlayerRecord{}
	if err := readJSON(s.path, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Track registra una observación por jugador (una escritura por poll).
func (s *Players) Track(_ context.Context, seen []domain.OnlinePlayer) error {
	if len(seen) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.load()
	if err != nil {
		return err
	}
	now := s.now().UTC()
	for _, p := range seen {
		if p.UID == "" {
			continue
		}
		rec, ok := m[p.UID]
		if !ok {
			rec = domain.PlayerRecord{UID: p.UID, FirstSeen: now}
		}
		rec.Name = p.Name
		rec.PlayerID = p.ID
		rec.LastSeen = now
		rec.TimesSeen++
		m[p.UID] = rec
	}
	return writeJSON(s.path, m)
}

func (s *Players) Get(_ context.Context, uid string) (domain.PlayerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.load()
	if err != nil {
		return domain.PlayerRecord{}, err
	}
	rec, ok := m[uid]
	if !ok {
		return domain.PlayerRecord{}, ErrNotFound
	}
	return rec, nil
}

// Search: substring en el nombre sin mayúsculas; devuelve hasta limit y el total.
func (s *Players) Search(_ context.Context, term string, limit int) ([]domain.PlayerRecord, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.load()
	if err != nil {
		return nil, 0, err
	}
	term = strings.ToLower(strings.TrimSpace(term))
	var hits []domain.PlayerRecord
	for _, rec := range m {
		if strings.Contains(strings.ToLower(rec.Name), term) {
			hits = append(hits, rec)
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].LastSeen.After(hits[j].LastSeen) })
	total := len(hits)
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, total, nil
}

func (s *Players) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.load()
	return len(m), err
}
