package gateway

import (
	"context"
	"log"
	"sync"
	"time"
)

// DefaultRetryInterval is the minimum gap between two probes triggered by
// Retry.
const DefaultRetryInterval = 5 * time.Second

// Readiness latches the result of probing the gateway. Dispatch is gated on
// Ready; Err reports a failed initialization. A failed latch is probed again
// by Retry and Watch.
type Readiness struct {
	mu      sync.RWMutex
	probe   func(ctx context.Context) error
	ready   bool
	err     error
	probing bool
	last    time.Time
	retry   time.Duration
	now     func() time.Time
}

type ReadinessOption func(*Readiness)

// WithRetryInterval sets how soon after a probe Retry may probe again.
func WithRetryInterval(d time.Duration) ReadinessOption {
	return func(r *Readiness) { r.retry = d }
}

// NewReadiness returns a latch driven by probe. A nil probe is ready at once.
func NewReadiness(probe func(ctx context.Context) error, opts ...ReadinessOption) *Readiness {
	r := &Readiness{
		probe: probe,
		ready: probe == nil,
		retry: DefaultRetryInterval,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Probe runs the probe and records its outcome. A successful probe clears an
// earlier error.
func (r *Readiness) Probe(ctx context.Context) error {
	if r.probe == nil {
		return nil
	}
	r.mu.Lock()
	r.probing = true
	r.mu.Unlock()
	return r.run(ctx)
}

// Retry probes again when the gateway is not ready, unless a probe is already
// running or the last one finished less than the retry interval ago. It
// returns the latched error.
func (r *Readiness) Retry(ctx context.Context) error {
	r.mu.Lock()
	if r.probe == nil || r.ready || r.probing || r.now().Sub(r.last) < r.retry {
		err := r.err
		r.mu.Unlock()
		return err
	}
	r.probing = true
	r.mu.Unlock()
	return r.run(ctx)
}

// Caller must have set r.probing.
func (r *Readiness) run(ctx context.Context) error {
	err := r.probe(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.probing = false
	r.last = r.now()
	r.ready = err == nil
	r.err = err
	return err
}

// Watch calls Retry every interval until ctx is done.
func (r *Readiness) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if r.Ready() {
				continue
			}
			if err := r.Retry(ctx); err != nil {
				log.Printf("gateway probe failed: %v", err)
				continue
			}
			log.Printf("gateway ready")
		}
	}
}

func (r *Readiness) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ready
}

func (r *Readiness) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}
