package database

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// State tracks whether the datastore connection is live. Services consult it
// before every query; the monitor is its only writer in production.
type State struct {
	connected atomic.Bool
}

// NewState returns a State in the given condition.
func NewState(connected bool) *State {
	s := &State{}
	s.connected.Store(connected)
	return s
}

// Connected reports whether the datastore is reachable.
func (s *State) Connected() bool {
	return s.connected.Load()
}

// Set records the connection condition and reports whether it changed.
func (s *State) Set(connected bool) bool {
	return s.connected.Swap(connected) != connected
}

// String returns the condition as shown by the health endpoint.
func (s *State) String() string {
	if s.Connected() {
		return "connected"
	}
	return "disconnected"
}

// Pinger is the part of *sql.DB the monitor needs.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Monitor pings the datastore every interval until ctx is done, updating
// state and logging each transition.
func Monitor(ctx context.Context, p Pinger, state *State, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		Probe(ctx, p, state, interval, log)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Probe runs a single ping and records the outcome in state.
func Probe(ctx context.Context, p Pinger, state *State, timeout time.Duration, log *zap.Logger) {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := p.PingContext(pingCtx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		if state.Set(false) {
			log.Error("Database disconnected", zap.Error(err))
		}
		return
	}
	if state.Set(true) {
		log.Info("Database connected")
	}
}

// PingerOf returns the connection pool behind db.
func PingerOf(db *gorm.DB) (Pinger, error) {
	return db.DB()
}
