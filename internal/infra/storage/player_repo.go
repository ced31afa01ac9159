package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	pq "github.com/lib/pq"

	"github.com/jose-valero/rcon-arma-bot/internal/domain"
)

type PlayerRepo struct{ db *sqlx.DB }

func NewPlayerRepo(db *sql.DB) *PlayerRepo { return &PlayerRepo{db: wrap(db)} }

// Track: upsert en lote con unnest; times_seen sube en 1 por observación.
func (r *PlayerRepo) Track(ctx context.Context, seen []domain.OnlinePlayer) error {
	uids, names, ids := make([]string, 0, len(seen)), make([]string, 0, len(seen)), make([]string, 0, len(seen))
	dup := map[string]struct{}{}
	for _, p := range seen {
		if p.UID == "" {
			continue
		}
		// ON CONFLICT no admite la misma fila dos veces en un statement
		if _, ok := dup[p.UID]; ok {
			continue
		}
		dup[p.UID] = struct{}{}
		uids = append(uids, p.UID)
		names = append(names, p.Name)
		ids = append(ids, p.ID)
	}
	if len(uids) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO players (uid, name, player_id, first_seen, last_seen, times_seen)
SELECT t.uid, t.name, t.player_id, $4, $4, 1
  FROM unnest($1::text[], $2::text[], $3::text[]) AS t(uid, name, player_id)
ON CONFLICT (uid) DO UPDATE SET
  name       = EXCLUDED.name,
  player_id  = EXCLUDED.player_id,
  last_seen  = EXCLUDED.last_seen,
  times_seen = players.times_seen + 1
`, pq.Array(uids), pq.Array(names), pq.Array(ids), time.Now().UTC())
	return err
}

func (r *PlayerRepo) Get(ctx context.Context, uid string) (domain.PlayerRecord, error) {
	var p domain.PlayerRecord
	err := r.db.GetContext(ctx, &p, `
SELECT uid, name, player_id, first_seen, last_seen, times_seen
  FROM players
 WHERE uid = $1`, uid)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PlayerRecord{}, ErrNotFound
	}
	return p, err
}

func (r *PlayerRepo) Search(ctx context.Context, term string, limit int) ([]domain.PlayerRecord, int, error) {
	pattern := "%" + escapeLike(strings.TrimSpace(term)) + "%"
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT count(*) FROM players WHERE name ILIKE $1`, pattern); err != nil {
		return nil, 0, err
	}
	var out []domain.PlayerRecord
	err := r.db.SelectContext(ctx, &out, `
SELECT uid, name, player_id, first_seen, last_seen, times_seen
  FROM players
 WHERE name ILIKE $1
 ORDER BY last_seen DESC
 LIMIT $2`, pattern, limit)
	return out, total, err
}

func (r *PlayerRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT count(*) FROM players`)
	return n, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
