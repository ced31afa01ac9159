package config

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	DiscordToken string
	DatabaseURL  string // opcional: sin DB todo va a los JSON
	BotName      string

	GuildConfigFile string
	PlayersFile     string
	IPMonitorFile   string

	RconBaseURL string
	RconTimeout time.Duration

	ListInterval    time.Duration
	IPCheckInterval time.Duration
	IPLookupURL     string

	HTTPAddr                   string // default :8080
	DashboardJWTSecret         string
	DashboardAdminUser         string
	DashboardAdminPasswordHash string

	LogLevel  string
	LogPretty bool
}

func defaults(v *viper.Viper) {
	v.SetDefault("bot_name", "RCON-Arma")
	v.SetDefault("guild_config_file", "./data/guildConfig.json")
	v.SetDefault("players_file", "./data/players-database.json")
	v.SetDefault("ip_monitor_file", "./data/ip-monitor-config.json")
	v.SetDefault("rcon_base_url", "https://api.0grind.io/v2/armareforger")
	v.SetDefault("rcon_timeout", "10s")
	v.SetDefault("list_interval", "10m")
	v.SetDefault("ip_check_interval", "5h")
	v.SetDefault("ip_lookup_url", "https://api.ipify.org?format=json")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)
}

// New arma el viper con env + archivo opcional (yaml/json/toml).
func New(file string) (*viper.Viper, error) {
	v := viper.New()
	defaults(v)
	v.AutomaticEnv()
	if file == "" {
		file = v.GetString("rcon_bot_config")
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config file %s: %w", file, err)
		}
	}
	return v, nil
}

// FromViper valida y arma el Config; falta de requeridos = error.
func FromViper(v *viper.Viper) (Config, error) {
	defaults(v)
	cfg := Config{
		DiscordToken:               v.GetString("discord_bot_token"),
		DatabaseURL:                v.GetString("database_url"),
		BotName:                    v.GetString("bot_name"),
		GuildConfigFile:            v.GetString("guild_config_file"),
		PlayersFile:                v.GetString("players_file"),
		IPMonitorFile:              v.GetString("ip_monitor_file"),
		RconBaseURL:                v.GetString("rcon_base_url"),
		RconTimeout:                v.GetDuration("rcon_timeout"),
		ListInterval:               v.GetDuration("list_interval"),
		IPCheckInterval:            v.GetDuration("ip_check_interval"),
		IPLookupURL:                v.GetString("ip_lookup_url"),
		HTTPAddr:                   v.GetString("http_addr"),
		DashboardJWTSecret:         v.GetString("dashboard_jwt_secret"),
		DashboardAdminUser:         v.GetString("dashboard_admin_user"),
		DashboardAdminPasswordHash: v.GetString("dashboard_admin_password_hash"),
		LogLevel:                   v.GetString("log_level"),
		LogPretty:                  v.GetBool("log_pretty"),
	}
	if cfg.DiscordToken == "" {
		return cfg, fmt.Errorf("faltante env %s", "DISCORD_BOT_TOKEN")
	}
	if cfg.ListInterval <= 0 {
		return cfg, fmt.Errorf("LIST_INTERVAL must be positive, got %s", cfg.ListInterval)
	}
	if cfg.IPCheckInterval <= 0 {
		return cfg, fmt.Errorf("IP_CHECK_INTERVAL must be positive, got %s", cfg.IPCheckInterval)
	}
	if cfg.RconTimeout <= 0 {
		cfg.RconTimeout = 10 * time.Second
	}
	return cfg, nil
}

// Load es el camino del binario: cualquier error es fatal.
func Load(file string) Config {
	v, err := New(file)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	cfg, err := FromViper(v)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	return cfg
}
