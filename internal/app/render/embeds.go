package render

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/rcon-arma-bot/internal/domain"
)

const (
	PlayersPageSize = 7
	BansPageSize    = 15
	PlayersTTL      = 240 * time.Second
	BansTTL         = 180 * time.Second
	MaxSlots        = 128

	ColorPlayers = 0x00AE86
	ColorBans    = 0xE74C3C
	ColorOnline  = 0x2ECC71
	ColorIdle    = 0x95A5A6
	ColorOffline = 0xE74C3C
	ColorInfo    = 0x3498DB
	ColorOK      = 0x2ECC71
	ColorStopped = 0xE67E22

	MaskedToken = "••••••••••"

	// PlayersEmptyPrefix abre el texto de la lista sin jugadores (no lleva embed).
	PlayersEmptyPrefix = "📋 **Players on "

	recentShown   = 8
	recentNameMax = 20
	embedFieldMax = 1024
)

func PlayerEntry(p domain.OnlinePlayer) string {
	return fmt.Sprintf("Player: %s\nUID: %s\nID: %s", p.Name, p.UID, p.ID)
}

func PlayersPaged(serverID string, players []domain.OnlinePlayer) Paged {
	p := Paged{Kind: "players", TTL: PlayersTTL}
	if len(players) == 0 {
		p.Empty = fmt.Sprintf("%s%s: 0 online**", PlayersEmptyPrefix, serverID)
		return p
	}
	entries := make([]string, 0, len(players))
	for _, pl := range players {
		entries = append(entries, PlayerEntry(pl))
	}
	title := fmt.Sprintf("Players on %s: %d online", serverID, len(players))
	p.Pages = pagedEmbeds(entries, PlayersPageSize, "\n\n", func(body string) *discordgo.MessageEmbed {
		return &discordgo.MessageEmbed{Title: title, Description: body, Color: ColorPlayers}
	})
	return p
}

func BanEntryLine(b domain.BanEntry) string {
	return fmt.Sprintf("**%s** - UID: %s", b.Name, b.UID)
}

func BansPaged(bans []domain.BanEntry) Paged {
	p := Paged{Kind: "bans", TTL: BansTTL}
	if len(bans) == 0 {
		p.Empty = "🔓 No active bans found."
		return p
	}
	entries := make([]string, 0, len(bans))
	for _, b := range bans {
		entries = append(entries, BanEntryLine(b))
	}
	title := fmt.Sprintf("🚫 Current Ban List: %d total", len(bans))
	p.Pages = pagedEmbeds(entries, BansPageSize, "\n", func(body string) *discordgo.MessageEmbed {
		return &discordgo.MessageEmbed{Title: title, Description: body, Color: ColorBans}
	})
	return p
}

// CommunityEmbed es el resumen público del canal online-list.
func CommunityEmbed(cfg domain.GuildConfig, players []domain.OnlinePlayer, now time.Time) *discordgo.MessageEmbed {
	n := len(players)
	color := ColorIdle
	if n > 0 {
		color = ColorOnline
	}
	load := int(math.Round(float64(n) / MaxSlots * 100))
	e := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🌍 %s Community Status", cfg.Label()),
		Description: fmt.Sprintf("**Players Online:** %d/%d", n, MaxSlots),
		Color:       color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "📊 Server Load", Value: fmt.Sprintf("%d%%", load), Inline: true},
			{Name: "🕐 Last Updated", Value: fmt.Sprintf("<t:%d:R>", now.Unix()), Inline: true},
		},
		Timestamp: now.Format(time.RFC3339),
	}
	if n > 0 {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "👥 Recent Players", Value: RecentPlayers(players)})
	}
	return e
}

// RecentPlayers: primeros 8 nombres (cortados a 20) + "...and N more", <= 1024.
func RecentPlayers(players []domain.OnlinePlayer) string {
	var b strings.Builder
	shown := 0
	for _, p := range players {
		if shown == recentShown {
			break
		}
		line := truncate(p.Name, recentNameMax)
		if b.Len()+len(line)+1 > embedFieldMax-32 {
			break
		}
		if shown > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		shown++
	}
	if rest := len(players) - shown; rest > 0 {
		fmt.Fprintf(&b, "\n*...and %d more*", rest)
	}
	return b.String()
}

func CommunityOfflineEmbed(cfg domain.GuildConfig, now time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🌍 %s Community Status", cfg.Label()),
		Description: "**Players Online:** 0/128",
		Color:       ColorOffline,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🔴 Status", Value: "Server unreachable", Inline: true},
			{Name: "🕐 Last Updated", Value: fmt.Sprintf("<t:%d:R>", now.Unix()), Inline: true},
		},
		Timestamp: now.Format(time.RFC3339),
	}
}

// BanDuration: 0 = Permanent.
func BanDuration(seconds int) string {
	if seconds == 0 {
		return "Permanent"
	}
	return fmt.Sprintf("%d second(s)", seconds)
}

type BanDetails struct {
	Moderator string
	Player    string
	PlayerID  string
	UID       string
	Seconds   int
	Reason    string
}

func BanEmbed(d BanDetails, now time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "🔨 Player Banned",
		Color: ColorBans,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Moderator", Value: orDash(d.Moderator), Inline: true},
			{Name: "Player", Value: orDash(d.Player), Inline: true},
			{Name: "Player ID", Value: orDash(d.PlayerID), Inline: true},
			{Name: "UID", Value: orDash(d.UID), Inline: true},
			{Name: "Duration", Value: BanDuration(d.Seconds), Inline: true},
			{Name: "Reason", Value: orDash(d.Reason)},
		},
		Timestamp: now.Format(time.RFC3339),
	}
}

func UnbanEmbed(moderator, uid string, now time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "🔓 Player Unbanned",
		Color: ColorOK,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Moderator", Value: orDash(moderator), Inline: true},
			{Name: "UID", Value: orDash(uid), Inline: true},
		},
		Timestamp: now.Format(time.RFC3339),
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}
