package service

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const DefaultIPCheckInterval = 5 * time.Hour

// IPStatus es lo que muestra !ipalert status.
type IPStatus struct {
	CurrentIP   string
	LastChecked time.Time
	Channels    int
	Monitoring  bool
}

// IPMonitor chequea la IP de salida; alerta sólo en el flanco (IP previa
// conocida y distinta de la nueva).
type IPMonitor struct {
	lookup   IPLookup
	state    IPStateStore
	notifier Notifier
	sched    *Scheduler
	activity *ActivityService
	every    time.Duration
	now      func() time.Time

	mu     sync.Mutex
	ticket Ticket

	stateMu sync.Mutex // read-modify-write del archivo de estado
}

func NewIPMonitor(lookup IPLookup, state IPStateStore, notifier Notifier, sched *Scheduler, activity *ActivityService, every time.Duration) *IPMonitor {
	if every <= 0 {
		every = DefaultIPCheckInterval
	}
	return &IPMonitor{
		lookup: lookup, state: state, notifier: notifier, sched: sched,
		activity: activity, every: every, now: time.Now,
	}
}

// Start chequea ya y después cada intervalo; llamarlo dos veces no duplica.
func (m *IPMonitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ticket.IsZero() {
		return nil
	}
	tk, err := m.sched.Every("ipmonitor", m.every, true, func(ctx context.Context) error {
		_, _, err := m.Check(ctx)
		return err
	})
	if err != nil {
		return err
	}
	m.ticket = tk
	log.Info().Dur("every", m.every).Msg("🌐 IP monitor started")
	return nil
}

func (m *IPMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ticket.IsZero() {
		return
	}
	m.sched.Revoke(m.ticket)
	m.ticket = Ticket{}
}

func (m *IPMonitor) Monitoring() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.ticket.IsZero()
}

// CurrentIP consulta el servicio externo sin tocar el estado (!checkip).
func (m *IPMonitor) CurrentIP(ctx context.Context) (string, error) {
	return m.lookup.CurrentIP(ctx)
}

// Check devuelve la IP actual y si cambió respecto de la guardada.
func (m *IPMonitor) Check(ctx context.Context) (string, bool, error) {
	ip, err := m.lookup.CurrentIP(ctx)
	if err != nil {
		return "", false, fmt.Errorf("ip lookup: %w", err)
	}
	m.stateMu.Lock()
	st, err := m.state.Load(ctx)
	if err != nil {
		m.stateMu.Unlock()
		return ip, false, fmt.Errorf("load ip state: %w", err)
	}
	old := st.CurrentIP
	changed := old != "" && old != ip
	st.CurrentIP = ip
	st.LastChecked = m.now().UTC()
	err = m.state.Save(ctx, st)
	m.stateMu.Unlock()
	if err != nil {
		return ip, changed, fmt.Errorf("save ip state: %w", err)
	}

	if old == "" {
		log.Info().Str("ip", ip).Msg("🌐 initial IP recorded")
	}
	if changed {
		log.Warn().Str("old", old).Str("new", ip).Msg("🚨 egress IP changed")
		m.alert(ctx, st.AlertChannels, old, ip)
		if m.activity != nil {
			m.activity.Record(ctx, "", ActionIPChanged, map[string]any{"old": old, "new": ip})
		}
	}
	return ip, changed, nil
}

func (m *IPMonitor) alert(ctx context.Context, channels []string, oldIP, newIP string) {
	msg := AlertText(oldIP, newIP, m.now())
	for _, id := range channels {
		if err := m.notifier.Notify(ctx, id, msg); err != nil {
			log.Warn().Err(err).Str("channel", id).Msg("ip alert delivery failed")
		}
	}
}

func AlertText(oldIP, newIP string, at time.Time) string {
	return "🚨 **BOT IP ADDRESS CHANGED!**\n\n" +
		fmt.Sprintf("**Old IP:** `%s`\n**New IP:** `%s`\n\n", oldIP, newIP) +
		"⚠️ **ACTION REQUIRED:** Update your 0grind.io dashboard whitelist immediately!\n" +
		"🔧 Use `!checkip` to verify the current IP anytime.\n\n" +
		fmt.Sprintf("🕒 Detected at: <t:%d:F>", at.Unix())
}

// AddChannel / RemoveChannel son idempotentes; devuelven si hubo cambio.
func (m *IPMonitor) AddChannel(ctx context.Context, channelID string) (bool, error) {
	return m.mutateChannels(ctx, func(chs []string) ([]string, bool) {
		if slices.Contains(chs, channelID) {
			return chs, false
		}
		return append(chs, channelID), true
	})
}

func (m *IPMonitor) RemoveChannel(ctx context.Context, channelID string) (bool, error) {
	return m.mutateChannels(ctx, func(chs []string) ([]string, bool) {
		i := slices.Index(chs, channelID)
		if i < 0 {
			return chs, false
		}
		return slices.Delete(chs, i, i+1), true
	})
}

func (m *IPMonitor) mutateChannels(ctx context.Context, fn func([]string) ([]string, bool)) (bool, error) {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	st, err := m.state.Load(ctx)
	if err != nil {
		return false, err
	}
	var changed bool
	st.AlertChannels, changed = fn(st.AlertChannels)
	if !changed {
		return false, nil
	}
	return true, m.state.Save(ctx, st)
}

func (m *IPMonitor) Status(ctx context.Context) (IPStatus, error) {
	st, err := m.state.Load(ctx)
	if err != nil {
		return IPStatus{}, err
	}
	return IPStatus{
		CurrentIP:   st.CurrentIP,
		LastChecked: st.LastChecked,
		Channels:    len(st.AlertChannels),
		Monitoring:  m.Monitoring(),
	}, nil
}

