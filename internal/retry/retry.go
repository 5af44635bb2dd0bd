// Package retry implements the decorator-based infinite retry described
// in spec.md §9 ("Decorator-based infinite retry -> an explicit retry
// wrapper that takes (operation, cancellation_token, log_every_n) and
// returns a result or cancelled error"), modeled closely on
// ChainDataFetcher.retryFunc in datasync/chaindatafetcher/chaindata_fetcher.go
// — the same constant backoff, the same "log every Nth attempt" throttle,
// and the same select against a stop channel between attempts.
package retry

import (
	"time"

	"github.com/chainswarm/substrate-indexer/internal/cancel"
	"github.com/chainswarm/substrate-indexer/internal/xerrors"
	"github.com/chainswarm/substrate-indexer/internal/xlog"
)

// Interval is the constant backoff between attempts for
// connection/transport errors, matching
// chaindatafetcher.DBInsertRetryInterval in spirit (a short constant
// sleep, not exponential backoff).
const Interval = 1 * time.Second

// ResetInterval is the backoff observed specifically after a
// metadata-null error forces a NodeClient connection reset (spec.md
// §4.1), slightly longer than Interval to let the new connections
// settle.
const ResetInterval = 2 * time.Second

// Op is a retryable unit of work. It returns a classified error (see
// internal/xerrors) so Do can tell a transient connection error apart
// from one that requires a reset, and both apart from a fatal error
// that must abort the retry loop entirely.
type Op func() error

// ResetFunc is invoked once per retryable failure so the caller can
// decide, from the error it just saw, whether the underlying
// connection must be torn down and rebuilt before trying again
// (NodeClient's "reset+retry" contract). It reports whether it actually
// reset anything, so Do can tell a reset backoff apart from a plain
// connection-error backoff.
type ResetFunc func() bool

// Do retries fn until it succeeds, fn returns a Fatal-classified error,
// or token is cancelled. logEvery controls how often a still-retrying
// warning is emitted (0 disables throttled logging and logs every
// attempt, used in tests). The attempt counter resets to zero on every
// success, per SPEC_FULL.md's "throttled retry logging with an explicit
// counter reset on success."
func Do(log *xlog.Logger, token *cancel.Token, logEvery int, reset ResetFunc, fn Op) error {
	attempt := 0
	for {
		if token.IsCancelled() {
			return xerrors.Cancelled()
		}

		err := fn()
		if err == nil {
			return nil
		}

		class := xerrors.ClassOf(err)
		if class == xerrors.ClassFatal {
			return err
		}
		if class == xerrors.ClassCancelled {
			return err
		}

		attempt++
		if logEvery <= 0 || attempt%logEvery == 0 {
			log.Warn("still retrying", "attempt", attempt, "err", err)
		}

		wait := Interval
		if reset != nil && reset() {
			wait = ResetInterval
		}

		select {
		case <-token.Done():
			return xerrors.Cancelled()
		case <-time.After(wait):
		}
	}
}
