package discord

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/rcon-arma-bot/internal/app/render"
)

func pagedOf(n int, ttl time.Duration) render.Paged {
	p := render.Paged{Kind: "players", TTL: ttl, Empty: "No players online."}
	for i := 0; i < n; i++ {
		p.Pages = append(p.Pages, &discordgo.MessageEmbed{Title: "page", Description: strings.Repeat("x", i+1)})
	}
	return p
}

func buttons(t *testing.T, comps []discordgo.MessageComponent) (prev, next discordgo.Button) {
	t.Helper()
	if len(comps) != 1 {
		t.Fatalf("components = %d", len(comps))
	}
	row := comps[0].(discordgo.ActionsRow)
	return row.Components[0].(discordgo.Button), row.Components[1].(discordgo.Button)
}

func TestPagerEmptySendsText(t *testing.T) {
	out := &fakeSender{}
	p := NewPager(out)
	if err := p.Post(context.Background(), "c1", pagedOf(0, time.Minute)); err != nil {
		t.Fatal(err)
	}
	if len(out.sent) != 1 || out.sent[0].content != "No players online." || out.sent[0].comps != nil {
		t.Fatalf("sent = %+v", out.sent)
	}
	if p.Active() != 0 {
		t.Fatal("session created for empty result")
	}
}

func TestPagerSinglePageNoSession(t *testing.T) {
	out := &fakeSender{}
	p := NewPager(out)
	if err := p.Post(context.Background(), "c1", pagedOf(1, time.Minute)); err != nil {
		t.Fatal(err)
	}
	prev, next := buttons(t, out.sent[0].comps)
	if !prev.Disabled || !next.Disabled {
		t.Fatal("single page buttons should be disabled")
	}
	if p.Active() != 0 {
		t.Fatal("session created for single page")
	}
}

func TestPagerNavigate(t *testing.T) {
	out := &fakeSender{}
	p := NewPager(out)
	t.Cleanup(p.Close)
	pg := pagedOf(3, time.Minute)
	if err := p.Post(context.Background(), "c1", pg); err != nil {
		t.Fatal(err)
	}
	prev, next := buttons(t, out.sent[0].comps)
	if !prev.Disabled || next.Disabled {
		t.Fatalf("first page buttons prev=%v next=%v", prev.Disabled, next.Disabled)
	}

	embed, comps, ok := p.Navigate(next.CustomID)
	if !ok || embed != pg.Pages[1] {
		t.Fatalf("next: ok=%v", ok)
	}
	p.Navigate(next.CustomID)
	embed, comps, ok = p.Navigate(next.CustomID)
	if !ok || embed != pg.Pages[2] {
		t.Fatal("next past the end should stay on last page")
	}
	prev, next = buttons(t, comps)
	if prev.Disabled || !next.Disabled {
		t.Fatalf("last page buttons prev=%v next=%v", prev.Disabled, next.Disabled)
	}
	embed, _, _ = p.Navigate(prev.CustomID)
	if embed != pg.Pages[1] {
		t.Fatal("prev did not go back")
	}

	if _, _, ok := p.Navigate("bans_next:" + strings.TrimPrefix(next.CustomID, "players_next:")); ok {
		t.Fatal("kind mismatch accepted")
	}
	if _, _, ok := p.Navigate("players_next:unknown"); ok {
		t.Fatal("unknown session accepted")
	}
}

func TestPagerExpireDisablesButtons(t *testing.T) {
	out := &fakeSender{}
	p := NewPager(out)
	if err := p.Post(context.Background(), "c1", pagedOf(2, 20*time.Millisecond)); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for out.editCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("session never expired")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if p.Active() != 0 {
		t.Fatal("session still active after expiry")
	}
	out.mu.Lock()
	defer out.mu.Unlock()
	if len(out.edits) != 1 || out.edits[0].messageID != out.sent[0].messageID {
		t.Fatalf("edits = %+v", out.edits)
	}
	prev, next := buttons(t, out.edits[0].comps)
	if !prev.Disabled || !next.Disabled {
		t.Fatal("expired buttons still enabled")
	}
	_, nextBefore := buttons(t, out.sent[0].comps)
	if _, _, ok := p.Navigate(nextBefore.CustomID); ok {
		t.Fatal("navigate after expiry")
	}
}

func TestPagerCloseExpiresAll(t *testing.T) {
	out := &fakeSender{}
	p := NewPager(out)
	for i := 0; i < 3; i++ {
		if err := p.Post(context.Background(), "c1", pagedOf(2, time.Hour)); err != nil {
			t.Fatal(err)
		}
	}
	p.Close()
	if p.Active() != 0 || len(out.edits) != 3 {
		t.Fatalf("active=%d edits=%d", p.Active(), len(out.edits))
	}
}

func TestParsePageID(t *testing.T) {
	cases := []struct {
		in              string
		kind, dir, sess string
		ok              bool
	}{
		{"players_next:abc", "players", "next", "abc", true},
		{"bans_prev:s-1", "bans", "prev", "s-1", true},
		{"bans_up:s-1", "", "", "", false},
		{"bans_next:", "", "", "", false},
		{"_next:x", "", "", "", false},
		{"nothing", "", "", "", false},
	}
	for _, tc := range cases {
		kind, dir, sess, ok := parsePageID(tc.in)
		if ok != tc.ok || kind != tc.kind || dir != tc.dir || sess != tc.sess {
			t.Fatalf("%q: got (%q,%q,%q,%v)", tc.in, kind, dir, sess, ok)
		}
		if IsPageButton(tc.in) != tc.ok {
			t.Fatalf("IsPageButton(%q) mismatch", tc.in)
		}
	}
}
