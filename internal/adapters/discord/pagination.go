package discord

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jose-valero/rcon-arma-bot/internal/app/render"
)

// pageSender es la parte de discord que usa el pager.
type pageSender interface {
	SendPage(ctx context.Context, channelID, content string, embed *discordgo.MessageEmbed, comps []discordgo.MessageComponent) (string, error)
	EditPage(channelID, messageID string, embed *discordgo.MessageEmbed, comps []discordgo.MessageComponent) error
}

type pageSession struct {
	id        string
	paged     render.Paged
	page      int
	channelID string
	messageID string
	timer     *time.Timer
}

// Pager mantiene las sesiones de navegación; al vencer el TTL se editan los
// botones a deshabilitados (el mensaje queda).
type Pager struct {
	out pageSender

	mu       sync.Mutex
	sessions map[string]*pageSession
}

func NewPager(out pageSender) *Pager {
	return &Pager{out: out, sessions: map[string]*pageSession{}}
}

func (p *Pager) Post(ctx context.Context, channelID string, pg render.Paged) error {
	if pg.IsEmpty() {
		_, err := p.out.SendPage(ctx, channelID, pg.Empty, nil, nil)
		return err
	}
	sess := &pageSession{id: uuid.NewString(), paged: pg, channelID: channelID}
	single := len(pg.Pages) == 1
	msgID, err := p.out.SendPage(ctx, channelID, "", pg.Pages[0], pg.Buttons(sess.id, 0, single))
	if err != nil {
		return err
	}
	if single {
		return nil
	}
	sess.messageID = msgID

	p.mu.Lock()
	p.sessions[sess.id] = sess
	sess.timer = time.AfterFunc(pg.TTL, func() { p.expire(sess.id) })
	p.mu.Unlock()
	return nil
}

// Navigate aplica un click; ok=false si la sesión no existe o venció.
func (p *Pager) Navigate(customID string) (*discordgo.MessageEmbed, []discordgo.MessageComponent, bool) {
	kind, dir, sid, ok := parsePageID(customID)
	if !ok {
		return nil, nil, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	sess, ok := p.sessions[sid]
	if !ok || sess.paged.Kind != kind {
		return nil, nil, false
	}
	switch dir {
	case "prev":
		if sess.page > 0 {
			sess.page--
		}
	case "next":
		if sess.page < len(sess.paged.Pages)-1 {
			sess.page++
		}
	}
	return sess.paged.Pages[sess.page], sess.paged.Buttons(sess.id, sess.page, false), true
}

// IsPageButton dice si el custom_id es de este pager.
func IsPageButton(customID string) bool {
	_, _, _, ok := parsePageID(customID)
	return ok
}

func (p *Pager) expire(id string) {
	p.mu.Lock()
	sess, ok := p.sessions[id]
	delete(p.sessions, id)
	p.mu.Unlock()
	if !ok {
		return
	}
	err := p.out.EditPage(sess.channelID, sess.messageID, sess.paged.Pages[sess.page], sess.paged.Buttons(sess.id, sess.page, true))
	if err != nil {
		log.Debug().Err(err).Str("channel", sess.channelID).Str("message", sess.messageID).Msg("disable page buttons failed")
	}
}

func (p *Pager) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

// Close vence todas las sesiones ya mismo.
func (p *Pager) Close() {
	p.mu.Lock()
	ids := make([]string, 0, len(p.sessions))
	for id, s := range p.sessions {
		s.timer.Stop()
		ids = append(ids, id)
	}
	p.mu.Unlock()
	for _, id := range ids {
		p.expire(id)
	}
}

// "<kind>_prev:<session>" / "<kind>_next:<session>"
func parsePageID(customID string) (kind, dir, session string, ok bool) {
	head, session, found := strings.Cut(customID, ":")
	if !found || session == "" {
		return "", "", "", false
	}
	i := strings.LastIndex(head, "_")
	if i <= 0 {
		return "", "", "", false
	}
	kind, dir = head[:i], head[i+1:]
	if dir != "prev" && dir != "next" {
		return "", "", "", false
	}
	return kind, dir, session, true
}

// sessionSender implementa pageSender con la sesión de discordgo.
type sessionSender struct{ s *discordgo.Session }

func (ss sessionSender) SendPage(ctx context.Context, channelID, content string, embed *discordgo.MessageEmbed, comps []discordgo.MessageComponent) (string, error) {
	send := &discordgo.MessageSend{Content: content, Components: comps}
	if embed != nil {
		send.Embeds = []*discordgo.MessageEmbed{embed}
	}
	m, err := ss.s.ChannelMessageSendComplex(channelID, send, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return m.ID, nil
}

func (ss sessionSender) EditPage(channelID, messageID string, embed *discordgo.MessageEmbed, comps []discordgo.MessageComponent) error {
	embeds := []*discordgo.MessageEmbed{embed}
	_, err := ss.s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         messageID,
		Channel:    channelID,
		Embeds:     &embeds,
		Components: &comps,
	})
	return err
}
