package client

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"
)

const DefaultAutosaveDelay = time.Second

var ErrAutosaverClosed = errors.New("autosaver closed")

// Autosaver coalesces edits to one note. Every Queue restarts the idle
// timer; when it fires, all pending fields go out in a single update.
type Autosaver struct {
	c      *Client
	delay  time.Duration
	onSave func(*Note, error)

	mu      sync.Mutex
	slug    string
	pending Patch
	timer   *time.Timer
	closed  bool

	// serialises saves so a timer firing during Flush cannot reorder writes
	saveMu sync.Mutex
}

// NewAutosaver returns an Autosaver for slug. onSave, if set, is called
// after every timer-driven save.
func (c *Client) NewAutosaver(slug string, delay time.Duration, onSave func(*Note, error)) *Autosaver {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	return &Autosaver{c: c, slug: slug, delay: delay, onSave: onSave}
}

// Slug is the note's current slug; it follows renames made through the
// autosaver.
func (a *Autosaver) Slug() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.slug
}

func (a *Autosaver) Queue(p Patch) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrAutosaverClosed
	}
	a.pending.merge(p)

	if a.timer == nil {
		a.timer = time.AfterFunc(a.delay, a.fire)
	} else {
		a.timer.Reset(a.delay)
	}
	return nil
}

// Flush saves pending edits now.
func (a *Autosaver) Flush(ctx context.Context) (*Note, error) {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.mu.Unlock()

	return a.save(ctx)
}

// Close flushes and rejects further edits. A rejected rename is reported
// after the remaining fields have been saved.
func (a *Autosaver) Close(ctx context.Context) error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()

	_, err := a.Flush(ctx)
	if IsRejected(err) {
		// whatever survived the rejection still has to go out
		if _, retryErr := a.Flush(ctx); retryErr != nil {
			return retryErr
		}
	}
	return err
}

func (a *Autosaver) fire() {
	n, err := a.save(context.Background())
	if a.onSave != nil && (n != nil || err != nil) {
		a.onSave(n, err)
	}
}

func (a *Autosaver) save(ctx context.Context) (*Note, error) {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	a.mu.Lock()
	if a.pending.empty() {
		a.mu.Unlock()
		return nil, nil
	}
	p, slug := a.pending, a.slug
	a.pending = Patch{}
	a.mu.Unlock()

	n, err := a.c.UpdateNote(ctx, slug, p)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		p = retryable(p, err)
		// newer edits win over the failed ones
		p.merge(a.pending)
		a.pending = p
		if IsRejected(err) && !a.closed && !a.pending.empty() && a.timer != nil {
			a.timer.Reset(a.delay)
		}
		return nil, err
	}
	a.slug = n.Slug
	return n, nil
}

// retryable returns the part of a failed patch worth sending again.
// Transport errors and 5xx keep everything. A 409 only condemns the rename;
// any other 4xx condemns the whole patch.
func retryable(p Patch, err error) Patch {
	var ae *APIError
	if !errors.As(err, &ae) || ae.Status >= http.StatusInternalServerError {
		return p
	}
	if ae.Status == http.StatusConflict && p.Slug != nil {
		p.Slug = nil
		return p
	}
	return Patch{}
}

// IsRejected reports whether the server refused an autosave's content, as
// opposed to failing to process it. Rejected fields are not resent.
func IsRejected(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status >= 400 && ae.Status < 500
}
