package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// TickFunc es el trabajo de cada disparo; el error se loguea y se sigue.
type TickFunc func(ctx context.Context) error

// Ticket identifica una tarea registrada; Revoke la da de baja.
type Ticket struct {
	ID   uuid.UUID
	Name string
}

func (t Ticket) IsZero() bool { return t.ID == uuid.Nil }

type task struct {
	ticket  Ticket
	every   time.Duration
	fn      TickFunc
	stop    chan struct{}
	once    sync.Once
	running atomic.Bool
	ticks   atomic.Int64
}

// Scheduler corre tareas periódicas con tickets revocables. Un tick nunca se
// solapa con otro de la misma tarea: si el anterior sigue en vuelo se salta.
type Scheduler struct {
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration

	mu    sync.Mutex
	tasks map[uuid.UUID]*task
	wg    sync.WaitGroup
}

// NewScheduler: tickTimeout acota cada tick (0 = 2 minutos).
func NewScheduler(parent context.Context, tickTimeout time.Duration) *Scheduler {
	if tickTimeout <= 0 {
		tickTimeout = 2 * time.Minute
	}
	ctx, cancel := context.WithCancel(parent)
	return &Scheduler{ctx: ctx, cancel: cancel, timeout: tickTimeout, tasks: map[uuid.UUID]*task{}}
}

// Every registra fn cada `every`; con immediate corre un tick al arrancar.
func (s *Scheduler) Every(name string, every time.Duration, immediate bool, fn TickFunc) (Ticket, error) {
	if every <= 0 {
		return Ticket{}, fmt.Errorf("scheduler: non-positive interval %s", every)
	}
	t := &task{
		ticket: Ticket{ID: uuid.New(), Name: name},
		every:  every,
		fn:     fn,
		stop:   make(chan struct{}),
	}

	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		return Ticket{}, fmt.Errorf("scheduler: closed")
	}
	s.tasks[t.ticket.ID] = t
	s.wg.Add(1)
	s.mu.Unlock()

	go s.loop(t, immediate)
	log.Debug().Str("ticket", t.ticket.ID.String()).Str("task", name).Dur("every", every).Msg("scheduler: registered")
	return t.ticket, nil
}

func (s *Scheduler) loop(t *task, immediate bool) {
	defer s.wg.Done()
	if immediate {
		s.fire(t)
	}
	tk := time.NewTicker(t.every)
	defer tk.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-t.stop:
			return
		case <-tk.C:
			select {
			case <-t.stop:
				return
			default:
			}
			s.fire(t)
		}
	}
}

// fire corre un tick con recover; ran es false solo si se saltó por solape,
// un tick que paniquea cuenta como corrido.
func (s *Scheduler) fire(t *task) (ran bool) {
	if !t.running.CompareAndSwap(false, true) {
		log.Warn().Str("ticket", t.ticket.ID.String()).Str("task", t.ticket.Name).Msg("scheduler: previous tick still running, skipping")
		return false
	}
	ran = true
	defer t.running.Store(false)
	t.ticks.Add(1)

	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Str("ticket", t.ticket.ID.String()).Str("task", t.ticket.Name).Interface("panic", rec).Msg("scheduler: tick panicked")
		}
	}()

	stop := step("tick " + t.ticket.Name)
	err := t.fn(ctx)
	stop()
	if err != nil {
		log.Warn().Err(err).Str("ticket", t.ticket.ID.String()).Str("task", t.ticket.Name).Msg("scheduler: tick failed")
	}
	return ran
}

// Revoke corta los ticks futuros; un tick en vuelo termina normalmente.
func (s *Scheduler) Revoke(tk Ticket) bool {
	s.mu.Lock()
	t, ok := s.tasks[tk.ID]
	if ok {
		delete(s.tasks, tk.ID)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}
	t.once.Do(func() { close(t.stop) })
	log.Debug().Str("ticket", tk.ID.String()).Str("task", tk.Name).Msg("scheduler: revoked")
	return true
}

// Trigger corre un tick ya, en la goroutine del caller.
func (s *Scheduler) Trigger(tk Ticket) bool {
	s.mu.Lock()
	t, ok := s.tasks[tk.ID]
	s.mu.Unlock()
	if !ok {
		return false
	}
	return s.fire(t)
}

// Ticks cuenta los ticks ejecutados de un ticket vivo.
func (s *Scheduler) Ticks(tk Ticket) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[tk.ID]; ok {
		return t.ticks.Load()
	}
	return 0
}

func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Close revoca todo y espera a que terminen las goroutines.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.cancel()
	for id, t := range s.tasks {
		t.once.Do(func() { close(t.stop) })
		delete(s.tasks, id)
	}
	s.mu.Unlock()
	s.wg.Wait()
}
