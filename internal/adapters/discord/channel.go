package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/rcon-arma-bot/internal/app/render"
	"github.com/jose-valero/rcon-arma-bot/internal/app/service"
)

// Channels resuelve canales contra el cache del gateway y, si el cache
// todavía no los tiene, por REST. Implementa service.ChannelResolver y
// service.Notifier.
type Channels struct {
	s     *discordgo.Session
	pager *Pager
}

func NewChannels(s *discordgo.Session, pager *Pager) *Channels {
	return &Channels{s: s, pager: pager}
}

func (c *Channels) Channel(guildID, channelID string) (service.Channel, error) {
	if channelID == "" {
		return nil, service.ErrChannelNotConfigured
	}
	ch, err := c.s.State.Channel(channelID)
	if err != nil || ch == nil {
		ch, err = c.s.Channel(channelID)
	}
	if err != nil || ch == nil || (guildID != "" && ch.GuildID != guildID) {
		return nil, service.ErrChannelNotFound
	}
	return &textChannel{s: c.s, id: ch.ID, pager: c.pager}, nil
}

func (c *Channels) Notify(ctx context.Context, channelID, content string) error {
	_, err := c.s.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("notify %s: %w", channelID, err)
	}
	return nil
}

type textChannel struct {
	s     *discordgo.Session
	id    string
	pager *Pager
}

func (t *textChannel) ID() string { return t.id }

func (t *textChannel) Send(ctx context.Context, content string, embeds ...*discordgo.MessageEmbed) error {
	return sendMessage(ctx, t.s, t.id, content, embeds...)
}

func (t *textChannel) SendPaged(ctx context.Context, p render.Paged) error {
	return t.pager.Post(ctx, t.id, p)
}

func (t *textChannel) RecentMessages(ctx context.Context, limit int) ([]service.PostedMessage, error) {
	msgs, err := t.s.ChannelMessages(t.id, limit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	self := ""
	if t.s.State != nil && t.s.State.User != nil {
		self = t.s.State.User.ID
	}
	out := make([]service.PostedMessage, 0, len(msgs))
	for _, m := range msgs {
		pm := service.PostedMessage{ID: m.ID, FromSelf: m.Author != nil && m.Author.ID == self, Content: m.Content}
		for _, e := range m.Embeds {
			if e.Title != "" {
				pm.EmbedTitles = append(pm.EmbedTitles, e.Title)
			}
		}
		out = append(out, pm)
	}
	return out, nil
}

func (t *textChannel) DeleteMessage(ctx context.Context, messageID string) error {
	return t.s.ChannelMessageDelete(t.id, messageID, discordgo.WithContext(ctx))
}
