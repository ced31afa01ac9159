package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

func sendMessage(ctx context.Context, s *discordgo.Session, channelID, content string, embeds ...*discordgo.MessageEmbed) error {
	_, err := s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:         content,
		Embeds:          embeds,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}, discordgo.WithContext(ctx))
	if err != nil {
		log.Warn().Err(err).Str("channel", channelID).Msg("send message failed")
	}
	return err
}

// reply loguea y descarta el error; para respuestas best-effort.
func reply(ctx context.Context, m ChatMessage, content string, embeds ...*discordgo.MessageEmbed) {
	if err := m.Reply(ctx, content, embeds...); err != nil {
		log.Debug().Err(err).Str("guild", m.GuildID()).Str("channel", m.ChannelID()).Msg("reply failed")
	}
}

func respondUpdate(s *discordgo.Session, ic *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, comps []discordgo.MessageComponent) {
	err := s.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: comps,
		},
	})
	if err != nil {
		log.Warn().Err(err).Msg("interaction update failed")
	}
}

func respondEphemeral(s *discordgo.Session, ic *discordgo.InteractionCreate, msg string) {
	err := s.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: msg,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Warn().Err(err).Msg("ephemeral response failed")
	}
}
