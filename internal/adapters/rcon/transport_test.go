package rcon

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
}

func TestCommandSendsBearerAndBody(t *testing.T) {
	var gotPath, gotAuth, gotCmd string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		var body commandBody
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotCmd = body.Command
		_, _ = w.Write([]byte(`{"success":true,"data":"1;u1;Smith\n"}`))
	})

	ps, err := c.Players(context.Background(), "srv-1", "tok-123456")
	if err != nil {
		t.Fatalf("Players: %v", err)
	}
	if gotPath != "/srv-1/rcon" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer tok-123456" {
		t.Errorf("auth = %q", gotAuth)
	}
	if gotCmd != "#players" {
		t.Errorf("command = %q", gotCmd)
	}
	if len(ps) != 1 || ps[0].Name != "Smith" {
		t.Errorf("players = %+v", ps)
	}
}

func TestCommandConfigMissingNeverCallsUpstream(t *testing.T) {
	called := false
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	_, err := c.Command(context.Background(), "", "tok", "#players")
	if !errors.Is(err, ErrConfigMissing) {
		t.Fatalf("err = %v, want ErrConfigMissing", err)
	}
	if called {
		t.Fatal("upstream was called without credentials")
	}
}

func TestCommandErrorsAreClassified(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		class  Class
	}{
		{"offline", 500, `{"success":false,"reason":"server offline"}`, ClassOffline},
		{"auth", 401, `unauthorized`, ClassAuth},
		{"forbidden", 403, `{"message":"ip not whitelisted"}`, ClassAuth},
		{"bad request", 400, `{"reason":"bad"}`, ClassAPI},
		{"success false", 200, `{"success":false,"reason":"nope"}`, ClassAPI},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := c.Command(context.Background(), "srv", "tok", "#players")
			var ae *APIError
			if !errors.As(err, &ae) {
				t.Fatalf("err = %v, want *APIError", err)
			}
			if ae.Status != tc.status {
				t.Errorf("status = %d, want %d", ae.Status, tc.status)
			}
			if got := Classify(err); got != tc.class {
				t.Errorf("class = %q, want %q", got, tc.class)
			}
		})
	}
}

func TestCommandTimeout(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Command(ctx, "srv", "tok", "#players")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := Classify(err); got != ClassTimeout {
		t.Fatalf("class = %q, want timeout (err=%v)", got, err)
	}
}

func TestCommandRetriesOnceOn429(t *testing.T) {
	calls := 0
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":"ok"}`))
	})
	out, err := c.Command(context.Background(), "srv", "tok", "#kick u1")
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	if out != "ok" || calls != 2 {
		t.Fatalf("out=%q calls=%d", out, calls)
	}
}

func TestClassifyNil(t *testing.T) {
	if Classify(nil) != ClassNone {
		t.Fatal("nil error should have no class")
	}
}
