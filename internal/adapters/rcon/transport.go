package rcon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.0grind.io/v2/armareforger"

type Client struct {
	http    *http.Client
	baseURL string
}

func New(opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: DefaultBaseURL,
	}
	for _, o := range opts {
		o(c)
	}
	c.baseURL = strings.TrimRight(c.baseURL, "/")
	return c
}

type commandBody struct {
	Command string `json:"command"`
}

type commandResult struct {
	Success bool   `json:"success"`
	Data    string `json:"data"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// Command manda un comando RCON crudo y devuelve el texto de data.
func (c *Client) Command(ctx context.Context, serverID, token, command string) (string, error) {
	if strings.TrimSpace(serverID) == "" || strings.TrimSpace(token) == "" {
		return "", ErrConfigMissing
	}
	return c.do(ctx, serverID, token, command, true)
}

// do: POST + Bearer; un solo reintento en 429 si viene Retry-After.
func (c *Client) do(ctx context.Context, serverID, token, command string, retry bool) (string, error) {
	payload, err := json.Marshal(commandBody{Command: command})
	if err != nil {
		return "", err
	}
	u := c.baseURL + "/" + url.PathEscape(serverID) + "/rcon"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("rcon http: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests && retry {
		if sec, _ := strconv.Atoi(res.Header.Get("Retry-After")); sec > 0 {
			select {
			case <-time.After(time.Duration(sec) * time.Second):
			case <-ctx.Done():
				return "", ctx.Err()
			}
			return c.do(ctx, serverID, token, command, false)
		}
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("rcon read: %w", err)
	}

	var out commandResult
	decodeErr := json.Unmarshal(body, &out)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		reason := strings.TrimSpace(string(body))
		if decodeErr == nil && out.reason() != "" {
			reason = out.reason()
		}
		if len(reason) > 512 {
			reason = reason[:512]
		}
		return "", &APIError{Status: res.StatusCode, Reason: reason}
	}
	if decodeErr != nil {
		return "", fmt.Errorf("rcon decode: %w", decodeErr)
	}
	if !out.Success {
		reason := out.reason()
		if reason == "" {
			reason = "Unknown error"
		}
		return "", &APIError{Status: res.StatusCode, Reason: reason}
	}
	return out.Data, nil
}

func (r commandResult) reason() string {
	if r.Reason != "" {
		return r.Reason
	}
	return r.Message
}
