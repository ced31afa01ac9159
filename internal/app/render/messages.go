package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/rcon-arma-bot/internal/domain"
)

// JobLabel: "Auto-list" / "Community List".
func JobLabel(kind domain.JobKind) string {
	if kind == domain.JobCommunityList {
		return "Community List"
	}
	return "Auto-list"
}

func jobCommand(kind domain.JobKind) string {
	if kind == domain.JobCommunityList {
		return "communitylist"
	}
	return "autolist"
}

func JobStartedEmbed(kind domain.JobKind, channelID string, every time.Duration) *discordgo.MessageEmbed {
	what := "Player lists"
	if kind == domain.JobCommunityList {
		what = "Server status and player counts"
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("✅ %s Started", JobLabel(kind)),
		Description: fmt.Sprintf("%s will be automatically posted to <#%s> every %s.", what, channelID, humanInterval(every)),
		Color:       ColorOK,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Stop Command", Value: fmt.Sprintf("`!stop%s`", jobCommand(kind)), Inline: true},
		},
	}
}

func JobStoppedEmbed(kind domain.JobKind) *discordgo.MessageEmbed {
	desc := "Automatic player list updates have been disabled."
	if kind == domain.JobCommunityList {
		desc = "Automatic community status updates have been disabled."
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🛑 %s Stopped", JobLabel(kind)),
		Description: desc,
		Color:       ColorStopped,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Restart Command", Value: fmt.Sprintf("`!start%s`", jobCommand(kind)), Inline: true},
		},
	}
}

func JobAlreadyRunning(kind domain.JobKind) string {
	if kind == domain.JobCommunityList {
		return "⚠️ Community list is already running! Use `!stopcommunitylist` to stop it first."
	}
	return "⚠️ Auto-list is already running! Use `!stopautolist` to stop it first."
}

func JobNotRunning(kind domain.JobKind) string {
	if kind == domain.JobCommunityList {
		return "⚠️ Community list is not currently running."
	}
	return "⚠️ Auto-list is not currently running."
}

func jobChannelName(kind domain.JobKind) string {
	if kind == domain.JobCommunityList {
		return "Online List Channel"
	}
	return "RCON Terminal Channel"
}

func JobChannelNotConfigured(kind domain.JobKind) string {
	return fmt.Sprintf("❌ %s not configured. Please run `!setup` or `!update` first.", jobChannelName(kind))
}

func JobChannelNotFound(kind domain.JobKind) string {
	return fmt.Sprintf("❌ Configured %s not found. Please update the configuration.", jobChannelName(kind))
}

func humanInterval(d time.Duration) string {
	if d%time.Minute == 0 {
		m := int(d / time.Minute)
		if m == 1 {
			return "minute"
		}
		return fmt.Sprintf("%d minutes", m)
	}
	return d.String()
}

// FindEmbed muestra hasta len(records) resultados; total es el total real.
func FindEmbed(term string, records []domain.PlayerRecord, total int) *discordgo.MessageEmbed {
	parts := make([]string, 0, len(records))
	for _, p := range records {
		seen := fmt.Sprintf("%d times", p.TimesSeen)
		if p.TimesSeen == 1 {
			seen = "1 time"
		}
		parts = append(parts, fmt.Sprintf("**%s**\nUID: `%s`\nID: `%s`\nSeen: %s\nLast seen: <t:%d:R>",
			p.Name, p.UID, p.PlayerID, seen, p.LastSeen.Unix()))
	}
	footer := fmt.Sprintf("Found %d result", total)
	if total != 1 {
		footer += "s"
	}
	if total > len(records) {
		footer = fmt.Sprintf("Showing first %d of %d results", len(records), total)
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🔍 Search Results for \"%s\"", term),
		Description: truncate(strings.Join(parts, "\n\n"), 4000),
		Color:       ColorPlayers,
		Footer:      &discordgo.MessageEmbedFooter{Text: footer},
	}
}

func NoPlayersFound(term string) string {
	return fmt.Sprintf("🔍 No players found matching \"%s\".", term)
}

var commandHelp = []string{
	"**!players** - List current online players",
	"**!kick <UID>** - Kick a player",
	"**!ban <UID|player> <duration> <reason>** - Ban a player",
	"**!ban remove <UID>** - Remove a ban (unban)",
	"**!banlist** - Show the current ban list",
	"**!find <name>** - Search for players by name in database",
	"**!startautolist** - Start automatic player list updates",
	"**!stopautolist** - Stop automatic player list updates",
	"**!startcommunitylist** - Start community status monitoring",
	"**!stopcommunitylist** - Stop community status monitoring",
	"**!checkip** - Check the bot's current outbound IP address",
	"**!ipalert on** - Enable IP change alerts for this channel",
	"**!ipalert off** - Disable IP change alerts for this channel",
	"**!ipalert status** - Show IP monitoring status",
	"**!setup** - Configure bot for this server",
	"**!update** - Update bot configuration",
}

func CommandsEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🔨 Available Commands",
		Description: strings.Join(commandHelp, "\n"),
		Color:       ColorInfo,
	}
}

func CheckIPText(ip string) string {
	return fmt.Sprintf("🌐 **Current Bot Outbound IP:** `%s`\n\n💡 Use this IP address in your 0grind.io dashboard whitelist for API authentication.", ip)
}

func IPStatusText(ip string, lastChecked time.Time, channels int, monitoring bool, every time.Duration) string {
	if ip == "" {
		ip = "Not checked yet"
	}
	checked := "Never"
	if !lastChecked.IsZero() {
		checked = fmt.Sprintf("<t:%d:f>", lastChecked.Unix())
	}
	mon := "❌ Inactive"
	if monitoring {
		mon = fmt.Sprintf("✅ Active (every %s)", every)
	}
	return fmt.Sprintf("📊 **IP Monitoring Status:**\n\n**Current IP:** `%s`\n**Last Checked:** %s\n**Alert Channels:** %d\n**Monitoring:** %s",
		ip, checked, channels, mon)
}

func SetupIntroEmbed(ip string) *discordgo.MessageEmbed {
	if ip == "" {
		ip = "(unavailable, run `!checkip`)"
	}
	desc := strings.Join([]string{
		"I will guide you through configuring your Arma Reforger integration.",
		"",
		"**RCON Dashboard Setup:**",
		fmt.Sprintf("Please whitelist **%s** in your 0grind.io dashboard before generating an API Token.", ip),
		"",
		"**IMPORTANT:** This IP may change occasionally. As a precaution:",
		"• Run `!ipalert on` to get automatic notifications when the IP changes",
		"• Use `!ipalert status` to check the monitoring system anytime",
		"• Run `!checkip` for manual IP verification",
		"",
		"**We will collect:**",
		"1️⃣ Server ID",
		"2️⃣ Display Name",
		"3️⃣ API Token",
		"4️⃣ Ban-log Channel",
		"5️⃣ Online List Channel",
		"6️⃣ RCON Terminal Channel",
		"",
		"Type `cancel` at any time to abort.",
	}, "\n")
	return &discordgo.MessageEmbed{
		Title:       "🛠️ RCON-Arma Setup Wizard",
		Description: desc,
		Color:       ColorInfo,
		Footer:      &discordgo.MessageEmbedFooter{Text: "You have 2 minutes per step."},
	}
}

func StepEmbed(n int, title, prompt string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🔹 Step %d: %s", n, title),
		Description: prompt,
		Color:       ColorInfo,
	}
}

func SetupSummaryEmbed(c domain.GuildConfig) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "✅ Configuration Complete!",
		Color: ColorOK,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Server ID", Value: "`" + c.ServerID + "`", Inline: true},
			{Name: "Display Name", Value: "`" + c.DisplayName + "`", Inline: true},
			{Name: "API Token", Value: "`" + MaskedToken + "`", Inline: true},
			{Name: "Ban-log Channel", Value: channelMention(c.BanLogChannelID), Inline: true},
			{Name: "Online List Channel", Value: channelMention(c.OnlineListChannelID), Inline: true},
			{Name: "RCON Terminal Channel", Value: channelMention(c.RconTerminalChannelID), Inline: true},
			{Name: "Auto Features", Value: "AutoList & Community List: **Enabled**"},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Your bot is now ready with all 6 settings configured! AutoList and Community monitoring are enabled by default."},
	}
}

// UpdateMenuEmbed recibe las etiquetas en orden (1..n).
func UpdateMenuEmbed(labels []string) *discordgo.MessageEmbed {
	var b strings.Builder
	for i, l := range labels {
		fmt.Fprintf(&b, "**%d.** %s\n", i+1, l)
	}
	b.WriteString("\nReply with the number of the setting, or `cancel`.")
	return &discordgo.MessageEmbed{
		Title:       "🔧 Configuration Update",
		Description: "Which setting would you like to update?\n\n" + b.String(),
		Color:       ColorInfo,
		Footer:      &discordgo.MessageEmbedFooter{Text: "You have 30 seconds to choose."},
	}
}

func UpdatedEmbed(label, shown string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "✅ Configuration Updated",
		Description: fmt.Sprintf("**%s** has been successfully updated.", label),
		Color:       ColorOK,
		Fields:      []*discordgo.MessageEmbedField{{Name: "New Value", Value: shown}},
	}
}

func channelMention(id string) string {
	if id == "" {
		return "—"
	}
	return "<#" + id + ">"
}
