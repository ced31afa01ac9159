package service

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/rcon-arma-bot/internal/app/render"
	"github.com/jose-valero/rcon-arma-bot/internal/domain"
)

// Lo implementa internal/adapters/rcon.Client
type RconAPI interface {
	Players(ctx context.Context, serverID, token string) ([]domain.OnlinePlayer, error)
	Bans(ctx context.Context, serverID, token string) ([]domain.BanEntry, error)
	Kick(ctx context.Context, serverID, token, target string) error
	Ban(ctx context.Context, serverID, token, target string, seconds int, reason string) error
	Unban(ctx context.Context, serverID, token, uid string) error
}

// Lo implementa internal/infra/jsonstore.GuildConfigs (fuente de verdad)
type GuildConfigStore interface {
	Get(ctx context.Context, guildID string) (domain.GuildConfig, error)
	All(ctx context.Context) ([]domain.GuildConfig, error)
	Update(ctx context.Context, guildID string, fn func(*domain.GuildConfig) error) (domain.GuildConfig, error)
}

// Lo implementa internal/infra/storage.GuildConfigRepo (espejo opcional)
type GuildConfigMirror interface {
	Get(ctx context.Context, guildID string) (domain.GuildConfig, error)
	Save(ctx context.Context, c domain.GuildConfig) error
}

// jsonstore.Players o storage.PlayerRepo
type PlayerTracker interface {
	Track(ctx context.Context, seen []domain.OnlinePlayer) error
	Search(ctx context.Context, term string, limit int) ([]domain.PlayerRecord, int, error)
	Count(ctx context.Context) (int, error)
}

// storage.ActivityRepo
type ActivitySink interface {
	Insert(ctx context.Context, e domain.ActivityEntry) (domain.ActivityEntry, error)
	Recent(ctx context.Context, botID string, limit int) ([]domain.ActivityEntry, error)
	RecentForGuilds(ctx context.Context, guildIDs []string, limit int) ([]domain.ActivityEntry, error)
}

// internal/adapters/ipify.Client
type IPLookup interface {
	CurrentIP(ctx context.Context) (string, error)
}

// jsonstore.IPMonitorState
type IPStateStore interface {
	Load(ctx context.Context) (domain.IPMonitorState, error)
	Save(ctx context.Context, st domain.IPMonitorState) error
}

// PostedMessage es lo mínimo que miramos de un mensaje ya enviado.
type PostedMessage struct {
	ID          string
	FromSelf    bool
	Content     string
	EmbedTitles []string
}

// Channel es un canal de texto vivo; lo implementa el adapter de discord.
type Channel interface {
	ID() string
	Send(ctx context.Context, content string, embeds ...*discordgo.MessageEmbed) error
	SendPaged(ctx context.Context, p render.Paged) error
	RecentMessages(ctx context.Context, limit int) ([]PostedMessage, error)
	DeleteMessage(ctx context.Context, messageID string) error
}

// ChannelResolver busca en el cache de canales de la guild; ErrChannelNotFound si no está.
type ChannelResolver interface {
	Channel(guildID, channelID string) (Channel, error)
}

// Notifier manda texto a un canal por id (alertas de IP).
type Notifier interface {
	Notify(ctx context.Context, channelID, content string) error
}
