// Package xerrors implements the error taxonomy of spec.md §7:
// connection/transport errors and metadata-null errors are retryable,
// missing-timestamp and balance-invariant violations are fatal, and
// cancellation is its own class so worker loops can distinguish a clean
// shutdown from a real failure. Wrapping follows klaytn's use of
// github.com/pkg/errors throughout node/service.go and the
// chaindatafetcher package.
package xerrors

import (
	"github.com/go-stack/stack"
	"github.com/pkg/errors"
)

// Class categorizes an error for the purposes of the retry loop and the
// propagation policy in spec.md §7.
type Class int

const (
	// ClassRetryable covers connection/transport and metadata-null
	// errors: NodeClient retries these forever, with connection reset
	// on metadata-null (spec.md §4.1). The ClickHouse and Memgraph
	// store clients do not retry.
	ClassRetryable Class = iota
	// ClassFatal covers missing timestamp, negative balance, and any
	// other error a worker cannot make progress past. The worker logs
	// with full context and exits (spec.md §7).
	ClassFatal
	// ClassCancelled means a shared cancellation token was observed;
	// this is not an error condition, just an abort signal.
	ClassCancelled
)

// Classified wraps an underlying error with its class and a captured
// stack (for Fatal errors only, per the "logged once with full context"
// propagation policy).
type Classified struct {
	class Class
	stack stack.CallStack
	err   error
}

func (c *Classified) Error() string { return c.err.Error() }
func (c *Classified) Unwrap() error { return c.err }
func (c *Classified) Class() Class  { return c.class }

// Stack renders the captured call stack, empty unless the error is Fatal.
func (c *Classified) Stack() string {
	if c.stack == nil {
		return ""
	}
	return c.stack.String()
}

func classify(class Class, err error) *Classified {
	if err == nil {
		return nil
	}
	c := &Classified{class: class, err: err}
	if class == ClassFatal {
		c.stack = stack.Trace().TrimRuntime()
	}
	return c
}

// Retryable wraps err as a retryable (connection/transport or
// metadata-null) error.
func Retryable(err error, msg string) error {
	if err == nil {
		return nil
	}
	return classify(ClassRetryable, errors.Wrap(err, msg))
}

// Fatal wraps err as an error no retry loop should attempt again:
// missing timestamp, a negative balance, or an asset-dictionary
// integrity failure (spec.md §7).
func Fatal(err error, msg string) error {
	if err == nil {
		return nil
	}
	return classify(ClassFatal, errors.Wrap(err, msg))
}

// Cancelled wraps the shared-cancellation-token signal as an error so it
// can flow through the same return paths as any other failure while
// being trivially distinguishable by class.
func Cancelled() error {
	return classify(ClassCancelled, errors.New("cancelled"))
}

// ClassOf extracts the Class of err, defaulting to ClassFatal for any
// error this package did not itself classify — an unclassified error
// should never be silently retried forever.
func ClassOf(err error) Class {
	var c *Classified
	if errors.As(err, &c) {
		return c.Class()
	}
	return ClassFatal
}

// IsCancelled reports whether err is (or wraps) a cancellation signal.
func IsCancelled(err error) bool {
	return err != nil && ClassOf(err) == ClassCancelled
}

// IsRetryable reports whether err should be retried indefinitely.
func IsRetryable(err error) bool {
	return err != nil && ClassOf(err) == ClassRetryable
}
