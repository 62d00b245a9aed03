package cloud

import (
	"context"
	"time"
)

// MaxTransientRetries bounds every loop that retries on a transient remote
// signal. The upstream design retried forever; a cap turns a stuck control
// plane into a RetryExhaustedError instead of a hung process.
const MaxTransientRetries = 20

// Backoff describes how the pause between polls of one remote loop evolves.
// The per-loop policies are intentionally different: policy propagation is a
// sub-second affair while cluster operations take tens of seconds, so the
// magnitudes (and even the direction of change) must not be unified.
type Backoff struct {
	Initial time.Duration
	Factor  float64
	// Min and Max clamp the interval. Min keeps a shrinking backoff from
	// degenerating into a busy loop.
	Min time.Duration
	Max time.Duration
}

// Step returns the interval that follows cur.
func (b Backoff) Step(cur time.Duration) time.Duration {
	next := time.Duration(float64(cur) * b.Factor)
	if b.Max > 0 && next > b.Max {
		next = b.Max
	}
	if b.Min > 0 && next < b.Min {
		next = b.Min
	}
	return next
}

// Poll loop policies. The halving policies mirror the original
// sub-second propagation checks; the cluster policy grows toward a
// one-minute ceiling.
var (
	// PolicyPollBackoff paces etag re-reads after an IAM policy write.
	PolicyPollBackoff = Backoff{Initial: 500 * time.Millisecond, Factor: 0.5, Min: 50 * time.Millisecond}
	// ServicePollBackoff paces service-enablement operation checks.
	ServicePollBackoff = Backoff{Initial: 500 * time.Millisecond, Factor: 0.5, Min: 50 * time.Millisecond}
	// ClusterPollBackoff paces cluster-operation status checks.
	ClusterPollBackoff = Backoff{Initial: 5 * time.Second, Factor: 1.5, Max: 60 * time.Second}
)

// Fixed pauses for the two transient-retry paths.
const (
	// PolicyRetryDelay precedes re-fetching a policy after a
	// "please retry" write rejection.
	PolicyRetryDelay = 200 * time.Millisecond
	// EnvironmentRetryDelay precedes re-issuing a cluster create after the
	// provider reports the environment is not ready yet.
	EnvironmentRetryDelay = 60 * time.Second
)

// Sleep pauses for d or until ctx is done, whichever comes first. Every
// suspension point in the workflow goes through here so a caller-supplied
// deadline or cancellation reaches all of the otherwise unbounded loops.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// SleepFunc matches Sleep; provisioners take it as a seam so tests can
// observe pauses without waiting them out.
type SleepFunc func(ctx context.Context, d time.Duration) error
