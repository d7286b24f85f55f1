// Package clock implements the hot-loop polling helper described in
// spec.md section 5 ("Suspension points") and section 9 ("Polling"): poll a
// condition on a monotonic microsecond clock without sleeping between
// attempts, bounded by a timeout, and abortable through a cancellation
// token that the source implementation lacked (section 5 "Cancellation",
// section 9 open question on the FTDI read loop FIXME).
package clock

import (
	"context"
	"time"

	"github.com/hackpascal/ufprog-core-go/internal/ufpstatus"
)

// Token is the "cancellation token" spec.md asks every blocking call to
// accept. A nil Token is always non-cancelled, matching single-shot CLI
// invocations that never need to interrupt a poll.
type Token struct {
	ctx context.Context
}

// NewToken wraps a context.Context as a cancellation token.
func NewToken(ctx context.Context) *Token {
	return &Token{ctx: ctx}
}

// Background returns a Token that is never cancelled.
func Background() *Token {
	return &Token{ctx: context.Background()}
}

// Cancelled reports whether the token has been cancelled.
func (t *Token) Cancelled() bool {
	if t == nil || t.ctx == nil {
		return false
	}
	select {
	case <-t.ctx.Done():
		return true
	default:
		return false
	}
}

// PollFunc is tested on every iteration of Poll. It returns (done, error);
// done=true with a nil error ends the poll successfully.
type PollFunc func() (done bool, err error)

// Poll spins on fn, with no sleep between attempts (hardware transaction
// latency already dominates - spec.md section 9 "Polling"), until fn
// reports done, the timeout elapses, or tok is cancelled.
func Poll(tok *Token, timeout time.Duration, op string, fn PollFunc) error {
	deadline := time.Now().Add(timeout)

	for {
		done, err := fn()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if tok.Cancelled() {
			return ufpstatus.New(ufpstatus.DeviceIoError, op+": cancelled")
		}
		if time.Now().After(deadline) {
			return ufpstatus.New(ufpstatus.Timeout, op)
		}
	}
}

// clockBase anchors NowMicro; time.Since measures against it with Go's
// monotonic clock reading.
var clockBase = time.Now()

// NowMicro returns a monotonic microsecond timestamp (counted from package
// initialisation) suitable for computing poll elapsed time without
// touching the wall clock.
func NowMicro() int64 {
	return time.Since(clockBase).Microseconds()
}
