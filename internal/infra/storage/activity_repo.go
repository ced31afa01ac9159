package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	pq "github.com/lib/pq"

	"github.com/jose-valero/rcon-arma-bot/internal/domain"
)

type ActivityRepo struct{ db *sqlx.DB }

func NewActivityRepo(db *sql.DB) *ActivityRepo { return &ActivityRepo{db: wrap(db)} }

type activityRow struct {
	ID            int64     `db:"id"`
	BotInstanceID string    `db:"bot_instance_id"`
	GuildID       string    `db:"guild_id"`
	Action        string    `db:"action"`
	Details       []byte    `db:"details"`
	CreatedAt     time.Time `db:"created_at"`
}

func (r activityRow) entry() domain.ActivityEntry {
	e := domain.ActivityEntry{
		ID: r.ID, BotInstanceID: r.BotInstanceID, GuildID: r.GuildID,
		Action: r.Action, CreatedAt: r.CreatedAt,
	}
	_ = json.Unmarshal(r.Details, &e.Details)
	return e
}

func (r *ActivityRepo) Insert(ctx context.Context, e domain.ActivityEntry) (domain.ActivityEntry, error) {
	details := e.Details
	if details == nil {
		details = map[string]any{}
	}
	b, err := json.Marshal(details)
	if err != nil {
		return e, err
	}
	err = r.db.QueryRowxContext(ctx, `
INSERT INTO activity_logs (bot_instance_id, guild_id, action, details)
VALUES ($1, $2, $3, $4::jsonb)
RETURNING id, created_at
`, e.BotInstanceID, e.GuildID, e.Action, string(b)).Scan(&e.ID, &e.CreatedAt)
	return e, err
}

func (r *ActivityRepo) Recent(ctx context.Context, botID string, limit int) ([]domain.ActivityEntry, error) {
	var rows []activityRow
	if err := r.db.SelectContext(ctx, &rows, `
SELECT id, bot_instance_id, guild_id, action, details, created_at
  FROM activity_logs
 WHERE bot_instance_id = $1
 ORDER BY created_at DESC
 LIMIT $2`, botID, limit); err != nil {
		return nil, err
	}
	return entries(rows), nil
}

// RecentForGuilds filtra por varias guilds de una (ANY + pq.Array).
func (r *ActivityRepo) RecentForGuilds(ctx context.Context, guildIDs []string, limit int) ([]domain.ActivityEntry, error) {
	if len(guildIDs) == 0 {
		return []domain.ActivityEntry{}, nil
	}
	var rows []activityRow
	if err := r.db.SelectContext(ctx, &rows, `
SELECT id, bot_instance_id, guild_id, action, details, created_at
  FROM activity_logs
 WHERE guild_id = ANY($1)
 ORDER BY created_at DESC
 LIMIT $2`, pq.Array(guildIDs), limit); err != nil {
		return nil, err
	}
	return entries(rows), nil
}

func entries(rows []activityRow) []domain.ActivityEntry {
	out := make([]domain.ActivityEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.entry())
	}
	return out
}
