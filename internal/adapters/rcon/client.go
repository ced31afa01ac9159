package rcon

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jose-valero/rcon-arma-bot/internal/domain"
)

func (c *Client) Players(ctx context.Context, serverID, token string) ([]domain.OnlinePlayer, error) {
	raw, err := c.Command(ctx, serverID, token, "#players")
	if err != nil {
		return nil, err
	}
	return ParsePlayers(raw), nil
}

func (c *Client) Bans(ctx context.Context, serverID, token string) ([]domain.BanEntry, error) {
	raw, err := c.Command(ctx, serverID, token, "#ban list")
	if err != nil {
		return nil, err
	}
	return ParseBans(raw), nil
}

func (c *Client) Kick(ctx context.Context, serverID, token, target string) error {
	target = strings.TrimSpace(target)
	if target == "" {
		return fmt.Errorf("kick: empty target")
	}
	_, err := c.Command(ctx, serverID, token, "#kick "+target)
	return err
}

// Ban: seconds 0 = permanente.
func (c *Client) Ban(ctx context.Context, serverID, token, target string, seconds int, reason string) error {
	if seconds < 0 {
		return fmt.Errorf("ban: negative duration %d", seconds)
	}
	_, err := c.Command(ctx, serverID, token, BanCommand(target, seconds, reason))
	return err
}

func (c *Client) Unban(ctx context.Context, serverID, token, uid string) error {
	_, err := c.Command(ctx, serverID, token, "#ban remove "+strings.TrimSpace(uid))
	return err
}

func BanCommand(target string, seconds int, reason string) string {
	return "#ban create " + target + " " + strconv.Itoa(seconds) + " " + reason
}
