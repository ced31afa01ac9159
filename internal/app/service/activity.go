package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jose-valero/rcon-arma-bot/internal/domain"
)

// Acciones registradas en el activity log.
const (
	ActionSetup     = "setup"
	ActionUpdate    = "config_update"
	ActionKick      = "kick"
	ActionBan       = "ban"
	ActionUnban     = "unban"
	ActionJobStart  = "job_start"
	ActionJobStop   = "job_stop"
	ActionIPChanged = "ip_changed"
)

const defaultRing = 200

// ActivityService guarda las últimas entradas en memoria y, si hay DB,
// también en activity_logs. Los suscriptores (websocket) reciben cada alta.
type ActivityService struct {
	botID string
	sink  ActivitySink // nil sin DB
	now   func() time.Time

	mu     sync.Mutex
	ring   []domain.ActivityEntry
	size   int
	nextID int64
	subs   map[int]chan domain.ActivityEntry
	subSeq int
}

func NewActivityService(botID string, sink ActivitySink, ringSize int) *ActivityService {
	if ringSize <= 0 {
		ringSize = defaultRing
	}
	return &ActivityService{
		botID: botID,
		sink:  sink,
		now:   time.Now,
		size:  ringSize,
		subs:  map[int]chan domain.ActivityEntry{},
	}
}

func (s *ActivityService) BotID() string { return s.botID }

// Record nunca falla hacia el caller; un error del sink se loguea.
func (s *ActivityService) Record(ctx context.Context, guildID, action string, details map[string]any) domain.ActivityEntry {
	e := domain.ActivityEntry{
		BotInstanceID: s.botID,
		GuildID:       guildID,
		Action:        action,
		Details:       details,
		CreatedAt:     s.now().UTC(),
	}
	if s.sink != nil {
		saved, err := s.sink.Insert(ctx, e)
		if err != nil {
			log.Warn().Err(err).Str("guild", guildID).Str("action", action).Msg("activity insert failed")
		} else {
			e = saved
		}
	}

	s.mu.Lock()
	if e.ID == 0 {
		s.nextID++
		e.ID = s.nextID
	}
	s.ring = append(s.ring, e)
	if len(s.ring) > s.size {
		s.ring = s.ring[len(s.ring)-s.size:]
	}
	for _, ch := range s.subs {
		select {
		case ch <- e:
		default: // suscriptor lento: se pierde la entrada
		}
	}
	s.mu.Unlock()

	log.Info().Str("guild", guildID).Str("action", action).Msg("activity")
	return e
}

// Recent: más nuevas primero.
func (s *ActivityService) Recent(ctx context.Context, limit int) ([]domain.ActivityEntry, error) {
	if s.sink != nil {
		return s.sink.Recent(ctx, s.botID, limit)
	}
	return s.fromRing(limit, nil), nil
}

func (s *ActivityService) ForGuilds(ctx context.Context, guildIDs []string, limit int) ([]domain.ActivityEntry, error) {
	if s.sink != nil {
		return s.sink.RecentForGuilds(ctx, guildIDs, limit)
	}
	return s.fromRing(limit, func(e domain.ActivityEntry) bool {
		return slices.Contains(guildIDs, e.GuildID)
	}), nil
}

func (s *ActivityService) fromRing(limit int, keep func(domain.ActivityEntry) bool) []domain.ActivityEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.ActivityEntry{}
	for i := len(s.ring) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if keep == nil || keep(s.ring[i]) {
			out = append(out, s.ring[i])
		}
	}
	return out
}

// Subscribe devuelve un canal con buffer y la func para darse de baja.
func (s *ActivityService) Subscribe(buffer int) (<-chan domain.ActivityEntry, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan domain.ActivityEntry, buffer)
	s.mu.Lock()
	s.subSeq++
	id := s.subSeq
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}
