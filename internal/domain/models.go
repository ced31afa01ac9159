package domain

import (
	"strings"
	"time"
)

// GuildConfig es la config por guild; se crea con !setup y se muta con !update.
type GuildConfig struct {
	GuildID               string `json:"guildId" db:"guild_id"`
	ServerID              string `json:"serverId" db:"server_id"`
	APIToken              string `json:"apiToken" db:"api_token"`
	DisplayName           string `json:"displayName,omitempty" db:"display_name"`
	BanLogChannelID       string `json:"banLogChannelId,omitempty" db:"ban_log_channel_id"`
	OnlineListChannelID   string `json:"onlineListChannelId,omitempty" db:"online_list_channel_id"`
	RconTerminalChannelID string `json:"rconTerminalChannelId,omitempty" db:"rcon_terminal_channel_id"`
	AutoListEnabled       bool   `json:"autoListEnabled" db:"auto_list_enabled"`
	CommunityListEnabled  bool   `json:"communityListEnabled" db:"community_list_enabled"`
}

// HasCredentials: sin serverId + token no se llama nunca a RCON.
func (c GuildConfig) HasCredentials() bool {
	return c.ServerID != "" && c.APIToken != ""
}

// Label prefiere el nombre amigable.
func (c GuildConfig) Label() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.ServerID
}

func (c GuildConfig) ChannelFor(kind JobKind) string {
	switch kind {
	case JobAutoList:
		return c.RconTerminalChannelID
	case JobCommunityList:
		return c.OnlineListChannelID
	}
	return ""
}

func (c GuildConfig) Enabled(kind JobKind) bool {
	switch kind {
	case JobAutoList:
		return c.AutoListEnabled
	case JobCommunityList:
		return c.CommunityListEnabled
	}
	return false
}

func (c *GuildConfig) SetEnabled(kind JobKind, on bool) {
	switch kind {
	case JobAutoList:
		c.AutoListEnabled = on
	case JobCommunityList:
		c.CommunityListEnabled = on
	}
}

type JobKind string

const (
	JobAutoList      JobKind = "autolist"
	JobCommunityList JobKind = "communitylist"
)

var JobKinds = []JobKind{JobAutoList, JobCommunityList}

// OnlinePlayer es una fila de #players: ID de sesión, UID estable, nombre.
type OnlinePlayer struct {
	ID   string `json:"id"`
	UID  string `json:"uid"`
	Name string `json:"name"`
}

type BanEntry struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
}

// PlayerRecord es lo que guarda el tracker; TimesSeen >= 1 siempre.
type PlayerRecord struct {
	UID       string    `json:"uid" db:"uid"`
	Name      string    `json:"name" db:"name"`
	PlayerID  string    `json:"playerId" db:"player_id"`
	FirstSeen time.Time `json:"firstSeen" db:"first_seen"`
	LastSeen  time.Time `json:"lastSeen" db:"last_seen"`
	TimesSeen int       `json:"timesSeen" db:"times_seen"`
}

type ActivityEntry struct {
	ID            int64          `json:"id"`
	BotInstanceID string         `json:"botInstanceId"`
	GuildID       string         `json:"guildId"`
	Action        string         `json:"action"`
	Details       map[string]any `json:"details,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// IPMonitorState se persiste junto con los canales de alerta.
type IPMonitorState struct {
	CurrentIP     string    `json:"currentIP"`
	LastChecked   time.Time `json:"lastChecked"`
	AlertChannels []string  `json:"alertChannels"`
}

// FindPlayer busca por ID de sesión, UID o nombre (sin mayúsculas).
func FindPlayer(players []OnlinePlayer, target string) (OnlinePlayer, bool) {
	t := strings.TrimSpace(target)
	for _, p := range players {
		if p.ID == t || p.UID == t || strings.EqualFold(p.Name, t) {
			return p, true
		}
	}
	return OnlinePlayer{}, false
}
