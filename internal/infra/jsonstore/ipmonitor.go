package jsonstore

import (
	"context"
	"sync"

	"github.com/jose-valero/rcon-arma-bot/internal/domain"
)

type IPMonitorState struct {
	path string
	mu   sync.Mutex
}

func NewIPMonitorState(path string) *IPMonitorState { return &IPMonitorState{path: path} }

func (s *IPMonitorState) Load(_ context.Context) (domain.IPMonitorState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st domain.IPMonitorState
	if err := readJSON(s.path, &st); err != nil {
		return domain.IPMonitorState{}, err
	}
	if st.AlertChannels == nil {
		st.AlertChannels = []string{}
	}
	return st, nil
}

func (s *IPMonitorState) Save(_ context.Context, st domain.IPMonitorState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(s.path, st)
}
