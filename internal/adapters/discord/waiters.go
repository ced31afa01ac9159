package discord

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrPromptTimeout = errors.New("prompt timed out")

type waitKey struct{ channelID, userID string }

// Waiters entrega la próxima respuesta de un usuario en un canal a quien la
// esté esperando (wizards). Un mensaje entregado no se despacha como comando.
type Waiters struct {
	mu sync.Mutex
	m  map[waitKey]chan string
}

func NewWaiters() *Waiters { return &Waiters{m: map[waitKey]chan string{}} }

func (w *Waiters) Await(ctx context.Context, channelID, userID string, timeout time.Duration) (string, error) {
	key := waitKey{channelID, userID}
	ch := make(chan string, 1)
	w.mu.Lock()
	w.m[key] = ch
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		if w.m[key] == ch {
			delete(w.m, key)
		}
		w.mu.Unlock()
	}()

	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case s := <-ch:
		return s, nil
	case <-t.C:
		return "", ErrPromptTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (w *Waiters) Offer(channelID, userID, content string) bool {
	key := waitKey{channelID, userID}
	w.mu.Lock()
	ch, ok := w.m[key]
	if ok {
		delete(w.m, key)
	}
	w.mu.Unlock()
	if !ok {
		return false
	}
	ch <- content
	return true
}

func (w *Waiters) Pending(channelID, userID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.m[waitKey{channelID, userID}]
	return ok
}
