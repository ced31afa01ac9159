package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/jose-valero/rcon-arma-bot/internal/app/render"
	"github.com/jose-valero/rcon-arma-bot/internal/app/service"
	"github.com/jose-valero/rcon-arma-bot/internal/domain"
)

func (r *Router) handlePlayers(ctx context.Context, m ChatMessage, cfg domain.GuildConfig, _ string) {
	players, err := r.svc.Players.Online(ctx, cfg)
	if err != nil {
		logUpstream(err, m.GuildID(), "#players")
		reply(ctx, m, userError(err, "❌ Failed to fetch player list."))
		return
	}
	if err := m.ReplyPaged(ctx, render.PlayersPaged(cfg.ServerID, players)); err != nil {
		log.Warn().Err(err).Str("guild", m.GuildID()).Msg("post player list failed")
	}
}

func (r *Router) handleKick(ctx context.Context, m ChatMessage, cfg domain.GuildConfig, args string) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		reply(ctx, m, service.KickUsage)
		return
	}
	uid := fields[0]
	res, err := r.svc.Moderation.Kick(ctx, cfg, m.AuthorTag(), uid)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) || errors.Is(err, service.ErrConfigMissing) {
			reply(ctx, m, userError(err, ""))
			return
		}
		logUpstream(err, m.GuildID(), "#kick")
		reply(ctx, m, fmt.Sprintf("❌ Failed to kick `%s` (%s).", uid, upstreamReason(err)))
		return
	}
	reply(ctx, m, fmt.Sprintf("👢 Kicked player `%s` (UID: %s).", res.Name, res.UID))
}

func (r *Router) handleBan(ctx context.Context, m ChatMessage, cfg domain.GuildConfig, args string) {
	if !m.HasPermission(discordgo.PermissionBanMembers) {
		reply(ctx, m, "❌ You do not have permission to use this command.")
		return
	}
	req, err := service.ParseBanArgs(strings.Fields(args))
	if err != nil {
		reply(ctx, m, userError(err, service.BanUsage))
		return
	}

	if req.Remove {
		embed, err := r.svc.Moderation.Unban(ctx, cfg, m.AuthorTag(), req.Target)
		if err != nil {
			logUpstream(err, m.GuildID(), "#ban remove")
			reply(ctx, m, userError(err, fmt.Sprintf("❌ Could not unban UID `%s`. Error: %s", req.Target, upstreamReason(err))))
			return
		}
		reply(ctx, m, "", embed)
		return
	}

	embed, err := r.svc.Moderation.Ban(ctx, cfg, m.AuthorTag(), req)
	if err != nil {
		logUpstream(err, m.GuildID(), "#ban create")
		reply(ctx, m, userError(err, fmt.Sprintf("❌ Failed to ban `%s` (%s).", req.Target, upstreamReason(err))))
		return
	}
	reply(ctx, m, "", embed)
}

func (r *Router) handleBanlist(ctx context.Context, m ChatMessage, cfg domain.GuildConfig, _ string) {
	bans, err := r.svc.Moderation.Bans(ctx, cfg)
	if err != nil {
		logUpstream(err, m.GuildID(), "#ban list")
		reply(ctx, m, userError(err, "❌ Could not retrieve ban list."))
		return
	}
	if err := m.ReplyPaged(ctx, render.BansPaged(bans)); err != nil {
		log.Warn().Err(err).Str("guild", m.GuildID()).Msg("post ban list failed")
	}
}

func (r *Router) handleCommands(ctx context.Context, m ChatMessage, _ domain.GuildConfig, _ string) {
	reply(ctx, m, "", render.CommandsEmbed())
}

func (r *Router) handleFind(ctx context.Context, m ChatMessage, _ domain.GuildConfig, term string) {
	if term == "" {
		reply(ctx, m, "❌ Please provide a search term. Usage: `!find <playername>`")
		return
	}
	recs, total, err := r.svc.Players.Find(ctx, term)
	if err != nil {
		log.Error().Err(err).Str("guild", m.GuildID()).Msg("player search failed")
		reply(ctx, m, userError(err, "❌ Error searching player database."))
		return
	}
	if total == 0 {
		reply(ctx, m, render.NoPlayersFound(term))
		return
	}
	reply(ctx, m, "", render.FindEmbed(term, recs, total))
}

func startJob(kind domain.JobKind) handlerFunc {
	return func(r *Router, ctx context.Context, m ChatMessage, cfg domain.GuildConfig, _ string) {
		err := r.svc.Jobs.Start(ctx, m.GuildID(), kind)
		switch {
		case err == nil:
			reply(ctx, m, "", render.JobStartedEmbed(kind, cfg.ChannelFor(kind), r.svc.ListEvery))
			log.Info().Str("guild", m.GuildID()).Str("kind", string(kind)).Msg("🔄 job started")
		case errors.Is(err, service.ErrJobRunning):
			reply(ctx, m, render.JobAlreadyRunning(kind))
		case errors.Is(err, service.ErrChannelNotConfigured):
			reply(ctx, m, render.JobChannelNotConfigured(kind))
		case errors.Is(err, service.ErrChannelNotFound):
			reply(ctx, m, render.JobChannelNotFound(kind))
		default:
			log.Error().Err(err).Str("guild", m.GuildID()).Str("kind", string(kind)).Msg("start job failed")
			reply(ctx, m, userError(err, "❌ Could not start the job. Please try again."))
		}
	}
}

func stopJob(kind domain.JobKind) handlerFunc {
	return func(r *Router, ctx context.Context, m ChatMessage, _ domain.GuildConfig, _ string) {
		if err := r.svc.Jobs.Stop(ctx, m.GuildID(), kind); err != nil {
			if errors.Is(err, service.ErrJobNotRunning) {
				reply(ctx, m, render.JobNotRunning(kind))
				return
			}
			log.Error().Err(err).Str("guild", m.GuildID()).Str("kind", string(kind)).Msg("stop job failed")
			reply(ctx, m, "❌ Could not stop the job. Please try again.")
			return
		}
		reply(ctx, m, "", render.JobStoppedEmbed(kind))
		log.Info().Str("guild", m.GuildID()).Str("kind", string(kind)).Msg("🛑 job stopped")
	}
}

func (r *Router) handleCheckIP(ctx context.Context, m ChatMessage, _ domain.GuildConfig, _ string) {
	ip, err := r.svc.IP.CurrentIP(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("checkip failed")
		reply(ctx, m, "❌ Unable to check current IP address. Please try again later.")
		return
	}
	reply(ctx, m, render.CheckIPText(ip))
}

func ipAlert(on bool) handlerFunc {
	return func(r *Router, ctx context.Context, m ChatMessage, _ domain.GuildConfig, _ string) {
		var err error
		if on {
			_, err = r.svc.IP.AddChannel(ctx, m.ChannelID())
		} else {
			_, err = r.svc.IP.RemoveChannel(ctx, m.ChannelID())
		}
		if err != nil {
			log.Error().Err(err).Str("channel", m.ChannelID()).Msg("ip alert channel update failed")
			reply(ctx, m, "❌ Could not update IP alert settings. Please try again.")
			return
		}
		if on {
			reply(ctx, m, "✅ **IP Change Alerts Enabled** for this channel!\n\nYou will be automatically notified if the bot's IP address changes.")
			return
		}
		reply(ctx, m, "❌ **IP Change Alerts Disabled** for this channel.")
	}
}

func (r *Router) handleIPStatus(ctx context.Context, m ChatMessage, _ domain.GuildConfig, _ string) {
	st, err := r.svc.IP.Status(ctx)
	if err != nil {
		log.Error().Err(err).Msg("ip status failed")
		reply(ctx, m, "❌ Could not read IP monitor status.")
		return
	}
	reply(ctx, m, render.IPStatusText(st.CurrentIP, st.LastChecked, st.Channels, st.Monitoring, r.svc.IPEvery))
}
