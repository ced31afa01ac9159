package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/rcon-arma-bot/internal/app/render"
)

// ChatMessage es lo que necesita el dispatcher de un mensaje entrante.
type ChatMessage interface {
	Content() string
	AuthorID() string
	AuthorTag() string
	GuildID() string
	ChannelID() string
	HasPermission(perm int64) bool
	Reply(ctx context.Context, content string, embeds ...*discordgo.MessageEmbed) error
	ReplyPaged(ctx context.Context, p render.Paged) error
}

// gatewayMessage envuelve un MessageCreate del gateway.
type gatewayMessage struct {
	s     *discordgo.Session
	m     *discordgo.MessageCreate
	pager *Pager
}

func (g *gatewayMessage) Content() string   { return g.m.Content }
func (g *gatewayMessage) AuthorID() string  { return g.m.Author.ID }
func (g *gatewayMessage) GuildID() string   { return g.m.GuildID }
func (g *gatewayMessage) ChannelID() string { return g.m.ChannelID }

func (g *gatewayMessage) AuthorTag() string {
	if g.m.Author.Discriminator != "" && g.m.Author.Discriminator != "0" {
		return g.m.Author.Username + "#" + g.m.Author.Discriminator
	}
	return g.m.Author.Username
}

func (g *gatewayMessage) HasPermission(perm int64) bool {
	var roles []string
	if g.m.Member != nil {
		roles = g.m.Member.Roles
	}
	return memberPermissions(g.s, g.m.GuildID, g.m.Author.ID, roles)&perm == perm
}

func (g *gatewayMessage) Reply(ctx context.Context, content string, embeds ...*discordgo.MessageEmbed) error {
	return sendMessage(ctx, g.s, g.m.ChannelID, content, embeds...)
}

func (g *gatewayMessage) ReplyPaged(ctx context.Context, p render.Paged) error {
	return g.pager.Post(ctx, g.m.ChannelID, p)
}
