package jobs

import (
	"context"
	"time"

	"github.com/codey22/notespace/internal/logging"
	"github.com/codey22/notespace/internal/note"
)

type NoteReaper interface {
	ReapExpired(ctx context.Context, olderThan time.Time) (int64, error)
}

// Reaper periodically deletes notes that stayed empty for longer than TTL.
// Deletion lags the threshold by up to one Interval.
type Reaper struct {
	ID       string
	Notes    NoteReaper
	TTL      time.Duration
	Interval time.Duration
	Log      logging.Logger

	// OnReaped receives the number of notes removed by a sweep, when non-zero.
	OnReaped func(n int64)

	now func() time.Time
}

func (r *Reaper) Run(ctx context.Context) {
	interval := r.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.log().Info(ctx, "reaper started", "interval", interval.String(), "ttl", r.ttl().String())
	_, _ = r.Sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			r.log().Info(context.Background(), "reaper stopped")
			return
		case <-ticker.C:
			_, _ = r.Sweep(ctx)
		}
	}
}

// Sweep runs a single reaping pass.
func (r *Reaper) Sweep(ctx context.Context) (int64, error) {
	now := time.Now
	if r.now != nil {
		now = r.now
	}
	cutoff := now().UTC().Add(-r.ttl())

	n, err := r.Notes.ReapExpired(ctx, cutoff)
	if err != nil {
		if ctx.Err() == nil {
			r.log().Warn(ctx, "reap failed", "error", err)
		}
		return 0, err
	}
	if n > 0 {
		r.log().Info(ctx, "reaped empty notes", "deleted", n, "cutoff", cutoff)
		if r.OnReaped != nil {
			r.OnReaped(n)
		}
	}
	return n, nil
}

func (r *Reaper) ttl() time.Duration {
	if r.TTL <= 0 {
		return note.DefaultTTL
	}
	return r.TTL
}

func (r *Reaper) log() logging.Logger {
	if r.Log == nil {
		r.Log = logging.NewNop()
	}
	if r.ID != "" {
		return r.Log.With("reaper", r.ID)
	}
	return r.Log
}
