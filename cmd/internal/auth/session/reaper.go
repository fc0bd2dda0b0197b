package session

import (
	"context"
	"log/slog"
	"sync"

	"corecms/cmd/security/token"
)

// Reaper deletes rejected tokens off the request path.
//
// Enqueue never blocks: when the queue is full the ID is dropped, and the
// token is reaped again the next time it is presented.
type Reaper struct {
	store   Store
	cfg     ReaperConfig
	log     *slog.Logger
	metrics *Metrics
	queue   chan token.ID
}

// NewReaper constructs a Reaper. Zero config fields fall back to DefaultConfig().Reap.
func NewReaper(store Store, cfg ReaperConfig, log *slog.Logger, m *Metrics) *Reaper {
	def := DefaultConfig().Reap
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Reaper{
		store:   store,
		cfg:     cfg,
		log:     log,
		metrics: m,
		queue:   make(chan token.ID, cfg.QueueSize),
	}
}

// Enqueue schedules id for deletion. It reports false if the queue is full.
func (r *Reaper) Enqueue(id token.ID) bool {
	select {
	case r.queue <- id:
		return true
	default:
		r.metrics.reap("dropped")
		return false
	}
}

// Run processes the queue until ctx is cancelled. IDs still queued at that
// point are abandoned.
func (r *Reaper) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case id := <-r.queue:
					r.delete(ctx, id)
				}
			}
		}()
	}
	wg.Wait()
	return nil
}

func (r *Reaper) delete(ctx context.Context, id token.ID) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	if err := r.store.Delete(ctx, id); err != nil {
		r.metrics.reap("failed")
		r.log.Warn("auth.reap.fail", "err", err)
		return
	}
	r.metrics.reap("deleted")
}
