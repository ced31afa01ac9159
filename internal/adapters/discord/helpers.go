package discord

import (
	"errors"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jose-valero/rcon-arma-bot/internal/adapters/rcon"
	"github.com/jose-valero/rcon-arma-bot/internal/app/service"
)

var (
	reChannelMention = regexp.MustCompile(`^<#(\d+)>$`)
	reSnowflake      = regexp.MustCompile(`^\d+$`)
)

// parseChannelRef acepta <#id> o el id pelado.
func parseChannelRef(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if m := reChannelMention.FindStringSubmatch(raw); len(m) == 2 {
		return m[1], true
	}
	if reSnowflake.MatchString(raw) {
		return raw, true
	}
	return "", false
}

func isCancel(s string) bool { return strings.EqualFold(strings.TrimSpace(s), "cancel") }

// userError traduce errores conocidos al texto para el usuario; fallback si no.
func userError(err error, fallback string) string {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		if strings.HasPrefix(ve.Reason, "❌") {
			return ve.Reason
		}
		return "❌ " + ve.Reason
	case errors.Is(err, service.ErrConfigMissing):
		return "❌ This server is not configured yet. Run `!setup` first."
	}
	return fallback
}

// upstreamReason es el motivo corto que devolvió la API (o el error).
func upstreamReason(err error) string {
	var api *rcon.APIError
	if errors.As(err, &api) && api.Reason != "" {
		return api.Reason
	}
	return rcon.Classify(err).Describe()
}

func logUpstream(err error, guildID, command string) {
	log.Warn().Err(err).
		Str("guild", guildID).
		Str("command", command).
		Str("class", string(rcon.Classify(err))).
		Msg("rcon command failed")
}
