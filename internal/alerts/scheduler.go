package alerts

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stocksentinel/alerts-core/backend/internal/domain"
	"github.com/stocksentinel/alerts-core/backend/internal/notify"
	"github.com/stocksentinel/alerts-core/backend/internal/snapshot"
)

// State is the scheduler's cycle guard state
type State string

const (
	StateIdle     State = "idle"
	StateChecking State = "checking"
)

// DefaultCheckInterval is the periodic tick interval when none is configured
const DefaultCheckInterval = 60 * time.Second

// Scheduler owns the rolling alert buffer and the last-check timestamp and
// drives classification cycles, either from its internal timer or from a
// manual refresh. No other component mutates its state; consumers only ever
// receive copies.
type Scheduler struct {
	provider   snapshot.Provider
	sink       notify.Sink
	thresholds domain.Thresholds
	interval   time.Duration
	logger     *logrus.Logger
	now        func() time.Time

	mu        sync.Mutex
	buffer    []domain.InstantAlert
	lastCheck time.Time
	checking  bool
	stopped   bool

	stop chan struct{}
	done chan struct{}
}

// NewScheduler creates a scheduler; Start must be called to arm the timer
func NewScheduler(provider snapshot.Provider, sink notify.Sink, thresholds domain.Thresholds, interval time.Duration, logger *logrus.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	return &Scheduler{
		provider:   provider,
		sink:       sink,
		thresholds: thresholds,
		interval:   interval,
		logger:     logger,
		now:        time.Now,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start arms the periodic timer. The timer rearms only after each in-flight
// cycle completes, so a slow cycle cannot produce overlapping ticks.
func (s *Scheduler) Start() {
	go func() {
		defer close(s.done)

		timer := time.NewTimer(s.interval)
		defer timer.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-timer.C:
				s.Tick(context.Background())
				timer.Reset(s.interval)
			}
		}
	}()
}

// Stop cancels the timer and waits for the loop to exit. After Stop returns
// no further classification, dedup or notification side effects fire.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	close(s.stop)
	<-s.done
	s.logger.Info("alert scheduler stopped")
}

// begin moves idle -> checking. A trigger arriving while a cycle is already
// in flight (or after teardown) is dropped, not queued.
func (s *Scheduler) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checking || s.stopped {
		return false
	}
	s.checking = true
	return true
}

// end moves checking -> idle and stamps the check time. Runs on every cycle
// exit path, success or failure.
func (s *Scheduler) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checking = false
	s.lastCheck = s.now()
}

// Tick runs one periodic cycle: classify, aggregate and merge the result
// into the buffer through deduplication. Returns false when the trigger was
// dropped because a cycle was already running.
func (s *Scheduler) Tick(ctx context.Context) bool {
	if !s.begin() {
		s.logger.Debug("tick dropped, cycle already in flight")
		return false
	}
	defer s.end()

	fresh := s.classifyCycle(ctx)

	s.mu.Lock()
	s.buffer = Merge(s.buffer, fresh, s.sink)
	s.mu.Unlock()

	return true
}

// Refresh runs one manual cycle. Unlike Tick it replaces the whole buffer
// with the fresh result, bypassing the dedup merge, and emits a single
// generic notification instead of per-alert ones.
func (s *Scheduler) Refresh(ctx context.Context) bool {
	if !s.begin() {
		s.logger.Debug("refresh dropped, cycle already in flight")
		return false
	}
	defer s.end()

	fresh := s.classifyCycle(ctx)

	s.mu.Lock()
	s.buffer = fresh
	s.mu.Unlock()

	if s.sink != nil {
		s.sink.Notify(domain.NewAlertID("refresh", s.now()), "Alerts refreshed")
	}
	return true
}

// classifyCycle fetches snapshots and produces this cycle's alerts. A
// provider failure degrades to no alerts; the scheduler keeps ticking.
func (s *Scheduler) classifyCycle(ctx context.Context) []domain.InstantAlert {
	snapshots, err := s.provider.Snapshots(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("stock snapshots unavailable, skipping classification")
		return nil
	}

	buckets := Classify(snapshots, s.thresholds)
	fresh := Aggregate(buckets, s.now())

	s.logger.WithFields(logrus.Fields{
		"products":     len(snapshots),
		"out_of_stock": len(buckets.OutOfStock),
		"critical":     len(buckets.Critical),
		"warning":      len(buckets.Warning),
		"alerts":       len(fresh),
	}).Debug("classification cycle completed")

	return fresh
}

// Dismiss marks one buffer entry dismissed. The entry stays in the buffer
// for capacity and dedup accounting.
func (s *Scheduler) Dismiss(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.buffer {
		if s.buffer[i].ID == id {
			s.buffer[i].Dismissed = true
			return true
		}
	}
	return false
}

// DismissAll marks every buffer entry dismissed
func (s *Scheduler) DismissAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.buffer {
		s.buffer[i].Dismissed = true
	}
}

// Active returns a copy of the non-dismissed alerts, newest first
func (s *Scheduler) Active() []domain.InstantAlert {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.InstantAlert, 0, len(s.buffer))
	for _, alert := range s.buffer {
		if !alert.Dismissed {
			out = append(out, alert)
		}
	}
	return out
}

// Snapshot returns a copy of the full buffer, dismissed entries included
func (s *Scheduler) Snapshot() []domain.InstantAlert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.InstantAlert(nil), s.buffer...)
}

// LastCheck returns when the most recent cycle completed
func (s *Scheduler) LastCheck() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCheck
}

// State reports whether a cycle is currently in flight
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checking {
		return StateChecking
	}
	return StateIdle
}
