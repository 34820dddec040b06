package fuzz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mellowCS/SMB-Fuzzer/pkg/console"
	"github.com/mellowCS/SMB-Fuzzer/pkg/metrics"
	"github.com/mellowCS/SMB-Fuzzer/pkg/smb"
	"github.com/mellowCS/SMB-Fuzzer/pkg/smb/types"
	"github.com/mellowCS/SMB-Fuzzer/pkg/state"
)

// ErrConnect wraps the connect error that ends a run
var ErrConnect = errors.New("failed to connect")

// DefaultRetryDelay is the pause between connection attempts
const DefaultRetryDelay = time.Second

// Runner repeatedly reaches the directive's state on a fresh connection and
// fires one fuzzed message
type Runner struct {
	Engine     *Engine
	Dial       state.DialFunc
	RetryDelay time.Duration

	// Temporary reports whether a dial error is worth retrying
	Temporary func(error) bool
}

// Stats summarizes a run
type Stats struct {
	Attempts int
	Sent     int
	Answered int
}

// Run fuzzes until the iteration budget is spent, the context ends, or a
// connection attempt fails with a non-temporary error
func (r *Runner) Run(ctx context.Context, d Directive) (Stats, error) {
	var stats Stats

	if err := d.Validate(); err != nil {
		return stats, err
	}

	temporary := r.Temporary
	if temporary == nil {
		temporary = smb.IsTemporary
	}

	for d.Iterations == 0 || stats.Sent < d.Iterations {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		stats.Attempts++
		metrics.ConnectAttempts.Inc()

		conn, err := r.Dial(ctx)
		if err != nil {
			metrics.ConnectFailures.Inc()
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			if !temporary(err) {
				return stats, fmt.Errorf("%w: %w", ErrConnect, err)
			}
			console.Warn("Server not available yet: %v", err)
			if err := r.sleep(ctx); err != nil {
				return stats, err
			}
			continue
		}

		answered, err := r.attempt(ctx, conn, d)
		conn.Close()
		if err != nil {
			return stats, err
		}
		stats.Sent++
		if answered {
			stats.Answered++
		}

		if err := r.sleep(ctx); err != nil {
			return stats, err
		}
	}

	return stats, nil
}

// attempt replays the handshake and sends one fuzzed message
func (r *Runner) attempt(ctx context.Context, conn state.Conn, d Directive) (bool, error) {
	c, err := state.Replay(ctx, conn, d.State, r.Engine.options())
	if err != nil {
		return false, err
	}

	body, err := r.Engine.Build(d.Message, d.Strategy, c)
	if err != nil {
		return false, fmt.Errorf("building %s: %w", d.Message, err)
	}

	console.Debug("Sending %s (%s) in state %s", d.Message, d.Strategy, d.State)
	resp := state.Exchange(conn, d.Message.Header(c), body, "fuzzed")

	h, _, err := types.SplitFrame(resp)
	if err != nil {
		metrics.ResponseStatus.WithLabelValues("none").Inc()
		return false, nil
	}
	metrics.ResponseStatus.WithLabelValues(smb.StatusName(h.Status)).Inc()
	return true, nil
}

func (r *Runner) sleep(ctx context.Context) error {
	if r.RetryDelay <= 0 {
		return nil
	}
	t := time.NewTimer(r.RetryDelay)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
