package discord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jose-valero/rcon-arma-bot/internal/app/render"
	"github.com/jose-valero/rcon-arma-bot/internal/app/service"
	"github.com/jose-valero/rcon-arma-bot/internal/domain"
)

const (
	stepTimeout   = 120 * time.Second
	choiceTimeout = 30 * time.Second
)

var errWizardCancelled = errors.New("wizard cancelled")

type setupStep struct {
	title  string
	prompt string
	// accept valida la respuesta; el string devuelto es el valor a guardar
	accept func(r *Router, guildID, in string) (string, error)
	ok     func(v string) string
	set    func(c *domain.GuildConfig, v string)
}

var setupSteps = []setupStep{
	{
		title:  "Server ID",
		prompt: "Please enter your **Server ID** (letters, numbers, or hyphens).",
		accept: func(_ *Router, _, in string) (string, error) { return service.ValidateServerID(in) },
		ok:     func(v string) string { return fmt.Sprintf("✅ Server ID set to `%s`.", v) },
		set:    func(c *domain.GuildConfig, v string) { c.ServerID = v },
	},
	{
		title:  "Display Name",
		prompt: "Please enter a **friendly display name** for your server (e.g., \"Main ARMA Server\").\n\n*This will appear in Discord embeds instead of the raw server ID.*",
		accept: func(_ *Router, _, in string) (string, error) { return service.ValidateDisplayName(in) },
		ok:     func(v string) string { return fmt.Sprintf("✅ Display name set to `%s`.", v) },
		set:    func(c *domain.GuildConfig, v string) { c.DisplayName = v },
	},
	{
		title:  "API Token",
		prompt: "Please enter your **API Token**.",
		accept: func(_ *Router, _, in string) (string, error) { return service.ValidateToken(in) },
		ok:     func(string) string { return "✅ API Token set." },
		set:    func(c *domain.GuildConfig, v string) { c.APIToken = v },
	},
	{
		title:  "Ban-log Channel",
		prompt: "Please mention or enter the **Ban-log Channel** where bans will be posted.",
		accept: (*Router).acceptChannel,
		ok:     func(v string) string { return fmt.Sprintf("✅ Ban-log channel set to <#%s>.", v) },
		set:    func(c *domain.GuildConfig, v string) { c.BanLogChannelID = v },
	},
	{
		title:  "Online List Channel",
		prompt: "Please mention or enter the **Online List Channel** where community player lists will be posted.",
		accept: (*Router).acceptChannel,
		ok:     func(v string) string { return fmt.Sprintf("✅ Online List channel set to <#%s>.", v) },
		set:    func(c *domain.GuildConfig, v string) { c.OnlineListChannelID = v },
	},
	{
		title:  "RCON Terminal Channel",
		prompt: "Please mention or enter the **RCON Terminal Channel** where autolist and RCON activity will be posted.",
		accept: (*Router).acceptChannel,
		ok:     func(v string) string { return fmt.Sprintf("✅ RCON Terminal channel set to <#%s>.", v) },
		set:    func(c *domain.GuildConfig, v string) { c.RconTerminalChannelID = v },
	},
}

// acceptChannel: <#id> o id, y tiene que existir en el cache de la guild.
func (r *Router) acceptChannel(guildID, in string) (string, error) {
	id, ok := parseChannelRef(in)
	if !ok {
		return "", &service.ValidationError{Field: "channel", Reason: "Invalid channel ID."}
	}
	if _, err := r.channels.Channel(guildID, id); err != nil {
		return "", &service.ValidationError{Field: "channel", Reason: "Invalid channel ID."}
	}
	return id, nil
}

// ask espera la próxima respuesta del autor; maneja cancel y timeout.
func (r *Router) ask(ctx context.Context, m ChatMessage, timeout time.Duration) (string, error) {
	in, err := r.waiters.Await(ctx, m.ChannelID(), m.AuthorID(), timeout)
	if err != nil {
		return "", err
	}
	if isCancel(in) {
		return "", errWizardCancelled
	}
	return in, nil
}

// handleSetup: nada se guarda hasta tener las 6 respuestas válidas.
func (r *Router) handleSetup(ctx context.Context, m ChatMessage, _ domain.GuildConfig, _ string) {
	ip, err := r.svc.IP.CurrentIP(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("setup: ip lookup failed")
	}
	reply(ctx, m, "", render.SetupIntroEmbed(ip))

	cfg := domain.GuildConfig{GuildID: m.GuildID()}
	for i, st := range setupSteps {
		reply(ctx, m, "", render.StepEmbed(i+1, st.title, st.prompt))
		in, err := r.ask(ctx, m, r.stepTimeout)
		if err != nil {
			r.wizardEnd(ctx, m, err, "⏲️ Setup timed out. Please run `!setup` again.", "❌ Setup cancelled.")
			return
		}
		v, err := st.accept(r, m.GuildID(), in)
		if err != nil {
			reply(ctx, m, userError(err, "❌ Invalid value.")+" Please run `!setup` again.")
			return
		}
		st.set(&cfg, v)
		reply(ctx, m, st.ok(v))
	}
	cfg.AutoListEnabled = true
	cfg.CommunityListEnabled = true

	saved, err := r.svc.Configs.Save(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Str("guild", m.GuildID()).Msg("setup: save failed")
		reply(ctx, m, "❌ Failed to save configuration. Please try again.")
		return
	}
	r.svc.Activity.Record(ctx, m.GuildID(), service.ActionSetup, map[string]any{
		"serverId": saved.ServerID, "displayName": saved.DisplayName, "by": m.AuthorTag(),
	})
	reply(ctx, m, "", render.SetupSummaryEmbed(saved))

	for _, kind := range domain.JobKinds {
		if err := r.svc.Jobs.Start(ctx, m.GuildID(), kind); err != nil && !errors.Is(err, service.ErrJobRunning) {
			log.Warn().Err(err).Str("guild", m.GuildID()).Str("kind", string(kind)).Msg("setup: job start failed")
		}
	}
}

func (r *Router) handleUpdate(ctx context.Context, m ChatMessage, cfg domain.GuildConfig, _ string) {
	labels := make([]string, 0, len(service.UpdateFields))
	for _, f := range service.UpdateFields {
		labels = append(labels, f.Label())
	}
	reply(ctx, m, "", render.UpdateMenuEmbed(labels))

	in, err := r.ask(ctx, m, r.choiceTimeout)
	if err != nil {
		r.wizardEnd(ctx, m, err, "⏲️ Update timed out.", "❌ Update cancelled.")
		return
	}
	field, ok := service.ParseUpdateField(in)
	if !ok {
		reply(ctx, m, "❌ Invalid choice. Please run !update again.")
		return
	}

	reply(ctx, m, fmt.Sprintf("🔹 **%s**\nPlease enter the new value (or `cancel`).", field.Label()))
	in, err = r.ask(ctx, m, r.stepTimeout)
	if err != nil {
		r.wizardEnd(ctx, m, err, "⏲️ Update timed out.", "❌ Update cancelled.")
		return
	}
	value := in
	if field.IsChannel() {
		if value, err = r.acceptChannel(m.GuildID(), in); err != nil {
			reply(ctx, m, userError(err, "❌ Invalid channel ID.")+" Please run `!update` again.")
			return
		}
	}
	patch, err := field.Patch(value)
	if err != nil {
		reply(ctx, m, userError(err, "❌ Invalid value.")+" Please run `!update` again.")
		return
	}
	saved, err := r.svc.Configs.Patch(ctx, cfg.GuildID, patch)
	if err != nil {
		log.Error().Err(err).Str("guild", m.GuildID()).Msg("update: save failed")
		reply(ctx, m, "❌ Error saving configuration. Please try again.")
		return
	}
	r.svc.Activity.Record(ctx, m.GuildID(), service.ActionUpdate, map[string]any{"field": field.Label(), "by": m.AuthorTag()})
	reply(ctx, m, "", render.UpdatedEmbed(field.Label(), shownValue(field, saved)))
}

func shownValue(f service.UpdateField, c domain.GuildConfig) string {
	switch f {
	case service.FieldAPIToken:
		return "***HIDDEN***"
	case service.FieldServerID:
		return "`" + c.ServerID + "`"
	case service.FieldDisplayName:
		return "`" + c.DisplayName + "`"
	case service.FieldBanLogChannel:
		return "<#" + c.BanLogChannelID + ">"
	case service.FieldOnlineListChannel:
		return "<#" + c.OnlineListChannelID + ">"
	case service.FieldRconTerminalChannel:
		return "<#" + c.RconTerminalChannelID + ">"
	}
	return "—"
}

func (r *Router) wizardEnd(ctx context.Context, m ChatMessage, err error, timeoutMsg, cancelMsg string) {
	switch {
	case errors.Is(err, ErrPromptTimeout):
		reply(ctx, m, timeoutMsg)
	case errors.Is(err, errWizardCancelled):
		reply(ctx, m, cancelMsg)
	default:
		log.Warn().Err(err).Str("guild", m.GuildID()).Msg("wizard interrupted")
	}
}
