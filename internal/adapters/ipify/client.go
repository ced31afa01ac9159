package ipify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const DefaultURL = "https://api.ipify.org?format=json"

type Client struct {
	http *http.Client
	url  string
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }
func WithURL(u string) Option              { return func(c *Client) { c.url = u } }

func New(opts ...Option) *Client {
	c := &Client{http: &http.Client{Timeout: 10 * time.Second}, url: DefaultURL}
	for _, o := range opts {
		o(c)
	}
	return c
}

// CurrentIP devuelve la IP pública de salida del proceso.
func (c *Client) CurrentIP(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("ipify http: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 4<<10))
	if err != nil {
		return "", err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", fmt.Errorf("ipify status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var dto struct {
		IP string `json:"ip"`
	}
	ip := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &dto) == nil && dto.IP != "" {
		ip = dto.IP
	}
	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("ipify: invalid ip %q", ip)
	}
	return ip, nil
}
