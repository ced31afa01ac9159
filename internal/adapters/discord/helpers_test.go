package discord

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jose-valero/rcon-arma-bot/internal/app/service"
)

func TestParseChannelRef(t *testing.T) {
	cases := map[string]struct {
		id string
		ok bool
	}{
		"<#123456>": {"123456", true},
		" 98765 ":   {"98765", true},
		"#general":  {"", false},
		"<#abc>":    {"", false},
		"":          {"", false},
		"<@123456>": {"", false},
	}
	for in, want := range cases {
		id, ok := parseChannelRef(in)
		if id != want.id || ok != want.ok {
			t.Fatalf("%q: got (%q,%v)", in, id, ok)
		}
	}
}

func TestIsCancel(t *testing.T) {
	for _, s := range []string{"cancel", " Cancel ", "CANCEL"} {
		if !isCancel(s) {
			t.Fatalf("%q not a cancel", s)
		}
	}
	if isCancel("cancelled") {
		t.Fatal("cancelled is not cancel")
	}
}

func TestUserError(t *testing.T) {
	ve := &service.ValidationError{Field: "serverId", Reason: "Server ID may only contain letters, numbers, and hyphens."}
	if got := userError(fmt.Errorf("wrap: %w", ve), "fb"); got != "❌ "+ve.Reason {
		t.Fatalf("validation = %q", got)
	}
	pre := &service.ValidationError{Field: "x", Reason: "❌ already prefixed"}
	if got := userError(pre, "fb"); got != "❌ already prefixed" {
		t.Fatalf("prefixed = %q", got)
	}
	if got := userError(service.ErrConfigMissing, "fb"); got != "❌ This server is not configured yet. Run `!setup` first." {
		t.Fatalf("missing = %q", got)
	}
	if got := userError(errors.New("boom"), "fb"); got != "fb" {
		t.Fatalf("fallback = %q", got)
	}
}

func TestWaitersOfferAndTimeout(t *testing.T) {
	w := NewWaiters()
	if w.Offer("c", "u", "hi") {
		t.Fatal("offer without waiter accepted")
	}

	got := make(chan string, 1)
	go func() {
		s, _ := w.Await(context.Background(), "c", "u", time.Second)
		got <- s
	}()
	deadline := time.Now().Add(time.Second)
	for !w.Pending("c", "u") {
		if time.Now().After(deadline) {
			t.Fatal("waiter not registered")
		}
		time.Sleep(time.Millisecond)
	}
	if w.Offer("c", "other", "x") {
		t.Fatal("offer from another user accepted")
	}
	if !w.Offer("c", "u", "srv-1") {
		t.Fatal("offer rejected")
	}
	if s := <-got; s != "srv-1" {
		t.Fatalf("got %q", s)
	}

	if _, err := w.Await(context.Background(), "c", "u", 10*time.Millisecond); !errors.Is(err, ErrPromptTimeout) {
		t.Fatalf("err = %v", err)
	}
	if w.Pending("c", "u") {
		t.Fatal("waiter not cleaned up")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := w.Await(ctx, "c", "u", time.Second); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestUserLimiter(t *testing.T) {
	now := time.Unix(1000, 0)
	l := newUserLimiter(time.Second)
	l.now = func() time.Time { return now }

	if !l.Allow("u1") {
		t.Fatal("first click blocked")
	}
	if l.Allow("u1") {
		t.Fatal("second click inside window allowed")
	}
	if !l.Allow("u2") {
		t.Fatal("other user blocked")
	}
	now = now.Add(time.Second)
	if !l.Allow("u1") {
		t.Fatal("click after window blocked")
	}
}
