package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/jose-valero/rcon-arma-bot/internal/domain"
)

// GuildConfigRepo es el espejo relacional de guildConfig.json.
type GuildConfigRepo struct{ db *sqlx.DB }

func NewGuildConfigRepo(db *sql.DB) *GuildConfigRepo { return &GuildConfigRepo{db: wrap(db)} }

const guildConfigCols = `guild_id, server_id, api_token, display_name, ban_log_channel_id,
       online_list_channel_id, rcon_terminal_channel_id, auto_list_enabled, community_list_enabled`

func (r *GuildConfigRepo) Get(ctx context.Context, guildID string) (domain.GuildConfig, error) {
	var c domain.GuildConfig
	err := r.db.GetContext(ctx, &c, `SELECT `+guildConfigCols+`
  FROM guild_configurations
 WHERE guild_id = $1`, guildID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.GuildConfig{}, ErrNotFound
	}
	return c, err
}

func (r *GuildConfigRepo) All(ctx context.Context) ([]domain.GuildConfig, error) {
	var out []domain.GuildConfig
	err := r.db.SelectContext(ctx, &out, `SELECT `+guildConfigCols+`
  FROM guild_configurations
 ORDER BY guild_id`)
	return out, err
}

func (r *GuildConfigRepo) Save(ctx context.Context, c domain.GuildConfig) error {
	_, err := r.db.NamedExecContext(ctx, `
INSERT INTO guild_configurations
  (guild_id, server_id, api_token, display_name, ban_log_channel_id,
   online_list_channel_id, rcon_terminal_channel_id, auto_list_enabled, community_list_enabled)
VALUES
  (:guild_id, :server_id, :api_token, :display_name, :ban_log_channel_id,
   :online_list_channel_id, :rcon_terminal_channel_id, :auto_list_enabled, :community_list_enabled)
ON CONFLICT (guild_id) DO UPDATE SET
  server_id                = EXCLUDED.server_id,
  api_token                = EXCLUDED.api_token,
  display_name             = EXCLUDED.display_name,
  ban_log_channel_id       = EXCLUDED.ban_log_channel_id,
  online_list_channel_id   = EXCLUDED.online_list_channel_id,
  rcon_terminal_channel_id = EXCLUDED.rcon_terminal_channel_id,
  auto_list_enabled        = EXCLUDED.auto_list_enabled,
  community_list_enabled   = EXCLUDED.community_list_enabled,
  updated_at               = now()
`, c)
	return err
}
