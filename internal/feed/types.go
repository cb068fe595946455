package feed

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// FetchFunc retrieves one remote resource. It must honor ctx cancellation.
type FetchFunc func(ctx context.Context) (interface{}, error)

// ApplyFunc merges a successful fetch result into view state. It runs only
// for results that arrive before the feed is stopped.
type ApplyFunc func(result interface{})

// Status is the per-feed freshness record that governs loading and empty
// state rendering.
type Status struct {
	LastSuccessAt time.Time
	Loading       bool
	LastErr       error
}

type task struct {
	name     string
	interval time.Duration
	fetch    FetchFunc
	apply    ApplyFunc

	kick   chan struct{}
	cancel context.CancelFunc

	mu     sync.Mutex
	status Status
}

// Scheduler owns all periodic refresh tasks. Feeds are causally independent:
// no cross-feed coordination, and one slow or failing feed never blocks the
// others.
type Scheduler struct {
	mu    sync.Mutex
	tasks map[string]*task

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	fetchTimeout time.Duration
	log          *logrus.Logger
}
