package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/jose-valero/rcon-arma-bot/internal/app/render"
	"github.com/jose-valero/rcon-arma-bot/internal/domain"
)

const (
	BanUsage   = "❌ Usage: `!ban [create] <playerName|UID> <durationSeconds> <reason>` or `!ban remove <playerUID>`"
	KickUsage  = "❌ Usage: `!kick <playerUID>`"
	BadSeconds = "❌ Duration must be a non-negative number (seconds)."
)

// BanRequest es un !ban ya parseado.
type BanRequest struct {
	Remove  bool
	Target  string
	Seconds int
	Reason  string
}

// ParseBanArgs recibe los tokens después de "!ban".
func ParseBanArgs(args []string) (BanRequest, error) {
	if len(args) > 0 && strings.EqualFold(args[0], "remove") {
		if len(args) < 2 || strings.TrimSpace(args[1]) == "" {
			return BanRequest{}, invalid("usage", BanUsage)
		}
		return BanRequest{Remove: true, Target: args[1]}, nil
	}
	if len(args) > 0 && strings.EqualFold(args[0], "create") {
		args = args[1:]
	}
	if len(args) < 3 {
		return BanRequest{}, invalid("usage", BanUsage)
	}
	secs, err := strconv.Atoi(args[1])
	if err != nil || secs < 0 {
		return BanRequest{}, invalid("duration", BadSeconds)
	}
	return BanRequest{Target: args[0], Seconds: secs, Reason: strings.Join(args[2:], " ")}, nil
}

type ModerationService struct {
	rcon     RconAPI
	channels ChannelResolver
	activity *ActivityService
	now      func() time.Time
}

func NewModerationService(rcon RconAPI, channels ChannelResolver, activity *ActivityService) *ModerationService {
	return &ModerationService{rcon: rcon, channels: channels, activity: activity, now: time.Now}
}

// KickResult.Name cae al uid si no se encontró en #players.
type KickResult struct {
	UID  string
	Name string
}

func (s *ModerationService) Kick(ctx context.Context, cfg domain.GuildConfig, moderator, uid string) (KickResult, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return KickResult{}, invalid("usage", KickUsage)
	}
	if !cfg.HasCredentials() {
		return KickResult{}, ErrConfigMissing
	}
	res := KickResult{UID: uid, Name: uid}
	if players, err := s.rcon.Players(ctx, cfg.ServerID, cfg.APIToken); err == nil {
		if p, ok := domain.FindPlayer(players, uid); ok && p.Name != "" {
			res.Name = p.Name
		}
	} else {
		log.Debug().Err(err).Str("guild", cfg.GuildID).Msg("kick: name lookup failed")
	}

	if err := s.rcon.Kick(ctx, cfg.ServerID, cfg.APIToken, uid); err != nil {
		return res, err
	}
	s.record(ctx, cfg.GuildID, ActionKick, map[string]any{"uid": uid, "name": res.Name, "moderator": moderator})
	return res, nil
}

// Ban manda el ban, arma el embed, lo cruza al canal de ban-log y patea.
func (s *ModerationService) Ban(ctx context.Context, cfg domain.GuildConfig, moderator string, req BanRequest) (*discordgo.MessageEmbed, error) {
	if !cfg.HasCredentials() {
		return nil, ErrConfigMissing
	}
	if err := s.rcon.Ban(ctx, cfg.ServerID, cfg.APIToken, req.Target, req.Seconds, req.Reason); err != nil {
		return nil, err
	}

	d := render.BanDetails{Moderator: moderator, Player: req.Target, Seconds: req.Seconds, Reason: req.Reason}
	kickTarget := req.Target
	if players, err := s.rcon.Players(ctx, cfg.ServerID, cfg.APIToken); err == nil {
		if p, ok := domain.FindPlayer(players, req.Target); ok {
			d.Player, d.PlayerID, d.UID = p.Name, p.ID, p.UID
			if p.UID != "" {
				kickTarget = p.UID
			}
		}
	} else {
		log.Debug().Err(err).Str("guild", cfg.GuildID).Msg("ban: player lookup failed")
	}

	embed := render.BanEmbed(d, s.now())
	s.crossPost(ctx, cfg, embed)

	if err := s.rcon.Kick(ctx, cfg.ServerID, cfg.APIToken, kickTarget); err != nil {
		log.Warn().Err(err).Str("guild", cfg.GuildID).Str("target", kickTarget).Msg("ban: auto-kick failed")
	}
	s.record(ctx, cfg.GuildID, ActionBan, map[string]any{
		"target": req.Target, "uid": d.UID, "seconds": req.Seconds, "reason": req.Reason, "moderator": moderator,
	})
	return embed, nil
}

func (s *ModerationService) Unban(ctx context.Context, cfg domain.GuildConfig, moderator, uid string) (*discordgo.MessageEmbed, error) {
	if !cfg.HasCredentials() {
		return nil, ErrConfigMissing
	}
	if err := s.rcon.Unban(ctx, cfg.ServerID, cfg.APIToken, uid); err != nil {
		return nil, err
	}
	embed := render.UnbanEmbed(moderator, uid, s.now())
	s.crossPost(ctx, cfg, embed)
	s.record(ctx, cfg.GuildID, ActionUnban, map[string]any{"uid": uid, "moderator": moderator})
	return embed, nil
}

func (s *ModerationService) Bans(ctx context.Context, cfg domain.GuildConfig) ([]domain.BanEntry, error) {
	if !cfg.HasCredentials() {
		return nil, ErrConfigMissing
	}
	return s.rcon.Bans(ctx, cfg.ServerID, cfg.APIToken)
}

func (s *ModerationService) crossPost(ctx context.Context, cfg domain.GuildConfig, embed *discordgo.MessageEmbed) {
	if cfg.BanLogChannelID == "" || s.channels == nil {
		return
	}
	ch, err := s.channels.Channel(cfg.GuildID, cfg.BanLogChannelID)
	if err != nil {
		if !errors.Is(err, ErrChannelNotFound) {
			log.Warn().Err(err).Str("guild", cfg.GuildID).Msg("ban log channel lookup failed")
		}
		return
	}
	if err := ch.Send(ctx, "", embed); err != nil {
		log.Warn().Err(err).Str("guild", cfg.GuildID).Str("channel", cfg.BanLogChannelID).Msg("ban log cross-post failed")
	}
}

func (s *ModerationService) record(ctx context.Context, guildID, action string, details map[string]any) {
	if s.activity != nil {
		s.activity.Record(ctx, guildID, action, details)
	}
}
