package discord

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"

	"github.com/jose-valero/rcon-arma-bot/internal/app/service"
	"github.com/jose-valero/rcon-arma-bot/internal/domain"
)

const Prefix = "!"

type handlerFunc func(r *Router, ctx context.Context, m ChatMessage, cfg domain.GuildConfig, args string)

// route: exact compara el texto entero; si no, prefijo seguido de fin de
// texto o espacio. La primera que matchea gana.
type route struct {
	pattern  string
	exact    bool
	noConfig bool // alcanzable sin !setup
	wizard   bool // ctx largo
	handle   handlerFunc
}

var routes = []route{
	{pattern: "!setup", noConfig: true, wizard: true, handle: (*Router).handleSetup},
	{pattern: "!players", handle: (*Router).handlePlayers},
	{pattern: "!kick", handle: (*Router).handleKick},
	{pattern: "!ban", handle: (*Router).handleBan},
	{pattern: "!banlist", exact: true, handle: (*Router).handleBanlist},
	{pattern: "!commands", exact: true, handle: (*Router).handleCommands},
	{pattern: "!startautolist", exact: true, handle: startJob(domain.JobAutoList)},
	{pattern: "!stopautolist", exact: true, handle: stopJob(domain.JobAutoList)},
	{pattern: "!startcommunitylist", exact: true, handle: startJob(domain.JobCommunityList)},
	{pattern: "!stopcommunitylist", exact: true, handle: stopJob(domain.JobCommunityList)},
	{pattern: "!update", exact: true, wizard: true, handle: (*Router).handleUpdate},
	{pattern: "!find", handle: (*Router).handleFind},
	{pattern: "!checkip", exact: true, handle: (*Router).handleCheckIP},
	{pattern: "!ipalert on", exact: true, handle: ipAlert(true)},
	{pattern: "!ipalert off", exact: true, handle: ipAlert(false)},
	{pattern: "!ipalert status", exact: true, handle: (*Router).handleIPStatus},
}

func match(content string) (route, string, bool) {
	for _, rt := range routes {
		if rt.exact {
			if content == rt.pattern {
				return rt, "", true
			}
			continue
		}
		if !strings.HasPrefix(content, rt.pattern) {
			continue
		}
		rest := content[len(rt.pattern):]
		if rest != "" && !unicode.IsSpace(rune(rest[0])) {
			continue
		}
		return rt, strings.TrimSpace(rest), true
	}
	return route{}, "", false
}

// Dispatch corre el handler del mensaje; false si no era un comando nuestro
// o la guild no tiene config.
func (r *Router) Dispatch(parent context.Context, m ChatMessage) bool {
	content := strings.TrimSpace(m.Content())
	if !strings.HasPrefix(content, Prefix) || m.GuildID() == "" {
		return false
	}
	rt, args, ok := match(content)
	if !ok {
		return false
	}

	timeout := commandTimeout
	if rt.wizard {
		timeout = wizardTimeout
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	cfg, err := r.svc.Configs.Get(ctx, m.GuildID())
	if err != nil && !rt.noConfig {
		if !errors.Is(err, service.ErrConfigMissing) {
			log.Error().Err(err).Str("guild", m.GuildID()).Msg("load guild config failed")
		}
		return false
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Str("guild", m.GuildID()).Str("command", rt.pattern).Msg("panic in command handler")
			reply(ctx, m, "⚠️ An unexpected error occurred while processing the command.")
		}
	}()

	log.Debug().Str("guild", m.GuildID()).Str("author", m.AuthorID()).Str("command", strings.TrimSpace(rt.pattern)).Msg("command")
	defer step("command " + strings.TrimSpace(rt.pattern))()
	rt.handle(r, ctx, m, cfg, args)
	return true
}
