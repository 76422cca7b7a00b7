package internal

import (
	"context"
	"sync/atomic"
	"time"
)

// Stats accumulates queue traffic counters and logs them once per second.
type Stats struct {
	l *Logger

	pushed     atomic.Uint64
	popped     atomic.Uint64
	overwrites atomic.Uint64
}

func NewStats(l *Logger) *Stats {
	return &Stats{
		l: l,
	}
}

func (s *Stats) RunStats(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pushed := s.pushed.Load()
			popped := s.popped.Load()
			overwrites := s.overwrites.Load()

			if pushed == 0 && popped == 0 {
				continue
			}

			s.pushed.Store(0)
			s.popped.Store(0)
			s.overwrites.Store(0)

			s.l.Info("stats",
				"pushed_per_sec", pushed,
				"popped_per_sec", popped,
				"overwrites_per_sec", overwrites)
		}
	}
}

func (s *Stats) IncrementPushed() {
	s.pushed.Add(1)
}

func (s *Stats) IncrementPushedBy(n int) {
	s.pushed.Add(uint64(n))
}

func (s *Stats) IncrementPopped() {
	s.popped.Add(1)
}

func (s *Stats) IncrementPoppedBy(n int) {
	s.popped.Add(uint64(n))
}

func (s *Stats) IncrementOverwrites() {
	s.overwrites.Add(1)
}
