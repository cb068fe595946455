package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// NewScheduler creates a scheduler. fetchTimeout bounds every individual
// fetch so an unresponsive backend manifests as a feed-local failure rather
// than a wedged feed.
func NewScheduler(fetchTimeout time.Duration, log *logrus.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	if fetchTimeout <= 0 {
		fetchTimeout = 10 * time.Second
	}
	return &Scheduler{
		tasks:        make(map[string]*task),
		ctx:          ctx,
		cancel:       cancel,
		fetchTimeout: fetchTimeout,
		log:          log,
	}
}

// Start registers a feed and begins its schedule: one tick immediately,
// then one every interval. Starting an already-registered name is an error.
func (s *Scheduler) Start(name string, interval time.Duration, fetch FetchFunc, apply ApplyFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx.Err() != nil {
		return fmt.Errorf("scheduler is stopped")
	}
	if _, exists := s.tasks[name]; exists {
		return fmt.Errorf("feed %q already registered", name)
	}

	ctx, cancel := context.WithCancel(s.ctx)
	t := &task{
		name:     name,
		interval: interval,
		fetch:    fetch,
		apply:    apply,
		kick:     make(chan struct{}, 1),
		cancel:   cancel,
	}
	s.tasks[name] = t

	s.wg.Add(1)
	go s.run(ctx, t)
	return nil
}

// run drives one feed. The fetch executes synchronously inside this
// goroutine, so ticks of the same feed are strictly sequential; ticks that
// fire while a fetch is outstanding are coalesced by the ticker's
// one-element buffer.
func (s *Scheduler) run(ctx context.Context, t *task) {
	defer s.wg.Done()

	s.tick(ctx, t)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx, t)
		case <-t.kick:
			s.tick(ctx, t)
		}
	}
}

// tick performs one fetch/apply cycle. A failure is recorded on the feed's
// own status and logged at feed granularity; it never escalates.
func (s *Scheduler) tick(ctx context.Context, t *task) {
	if ctx.Err() != nil {
		return
	}

	t.mu.Lock()
	t.status.Loading = true
	t.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	result, err := t.fetch(fetchCtx)
	cancel()

	// A result that resolves after cancellation is discarded, not applied.
	if ctx.Err() != nil {
		return
	}

	t.mu.Lock()
	t.status.Loading = false
	if err != nil {
		t.status.LastErr = err
		t.mu.Unlock()
		s.log.WithField("feed", t.name).WithError(err).Warn("feed fetch failed")
		return
	}
	t.status.LastErr = nil
	t.status.LastSuccessAt = time.Now()
	t.mu.Unlock()

	t.apply(result)
}

// Kick requests an immediate out-of-band tick, used after commands so the
// next poll reflects remote truth without waiting a full interval. Unknown
// names are ignored.
func (s *Scheduler) Kick(name string) {
	s.mu.Lock()
	t, ok := s.tasks[name]
	s.mu.Unlock()
	if !ok {
		return
	}
	select {
	case t.kick <- struct{}{}:
	default:
		// A kick is already pending; one refresh is enough.
	}
}

// Stop cancels one feed's schedule. Safe to call for unknown names and
// safe to call repeatedly.
func (s *Scheduler) Stop(name string) {
	s.mu.Lock()
	t, ok := s.tasks[name]
	if ok {
		delete(s.tasks, name)
	}
	s.mu.Unlock()

	if ok {
		t.cancel()
	}
}

// StopAll cancels every feed and waits for all of them to wind down. No
// apply callback fires after StopAll returns. Idempotent.
func (s *Scheduler) StopAll() {
	s.cancel()
	s.wg.Wait()

	s.mu.Lock()
	s.tasks = make(map[string]*task)
	s.mu.Unlock()
}

// Status returns the freshness record for a feed.
func (s *Scheduler) Status(name string) (Status, bool) {
	s.mu.Lock()
	t, ok := s.tasks[name]
	s.mu.Unlock()
	if !ok {
		return Status{}, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status, true
}

// Names returns the registered feed names, for the status bar.
func (s *Scheduler) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.tasks))
	for name := range s.tasks {
		names = append(names, name)
	}
	return names
}
