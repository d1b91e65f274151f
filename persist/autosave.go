package persist

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/katalvlaran/transformlab/snapshot"
	"github.com/katalvlaran/transformlab/store"
)

// Autosaver writes the latest committed state to a backend in the
// background. Listen is a store.Listener: it only records the newest state
// and wakes the writer, so commits never wait on I/O. Bursts of commits are
// coalesced into one Save of the newest version.
type Autosaver struct {
	backend snapshot.Backend
	logger  *log.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending *store.State
	saved   uint64
	lastErr error
	closed  bool

	wake chan struct{}
	done chan struct{}
	idle *sync.Cond
}

// AutosaveOption customizes an Autosaver.
type AutosaveOption func(*Autosaver)

// WithSaveTimeout bounds each Save call (default 10s).
func WithSaveTimeout(d time.Duration) AutosaveOption {
	return func(a *Autosaver) { a.timeout = d }
}

// Autosave starts an Autosaver on b. Register a.Listen with the store (or
// engine) Subscribe, and Close it before closing b.
func Autosave(b snapshot.Backend, logger *log.Logger, opts ...AutosaveOption) *Autosaver {
	if logger == nil {
		logger = log.Default()
	}
	a := &Autosaver{
		backend: b,
		logger:  logger,
		timeout: 10 * time.Second,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	a.idle = sync.NewCond(&a.mu)
	for _, opt := range opts {
		opt(a)
	}
	go a.loop()

	return a
}

// Listen records c.State as the next state to save.
func (a *Autosaver) Listen(c store.Change) {
	st := c.State
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.pending = &st
	select {
	case a.wake <- struct{}{}:
	default:
	}
	a.mu.Unlock()
}

// Flush blocks until every recorded state has been written (or failed). On
// a closed Autosaver it also waits for the writer to exit, so a Flush racing
// Close returns only after the final write.
func (a *Autosaver) Flush() {
	a.mu.Lock()
	for a.pending != nil {
		a.idle.Wait()
	}
	closed := a.closed
	a.mu.Unlock()
	if closed {
		<-a.done
	}
}

// Saved returns the version of the last successful Save.
func (a *Autosaver) Saved() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.saved
}

// Err returns the error of the last failed Save, cleared by a later success.
func (a *Autosaver) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.lastErr
}

// Close writes any pending state and stops the writer. It is idempotent.
func (a *Autosaver) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		<-a.done
		return a.Err()
	}
	a.closed = true
	close(a.wake)
	a.mu.Unlock()
	<-a.done

	return a.Err()
}

func (a *Autosaver) loop() {
	defer close(a.done)
	for range a.wake {
		a.drain()
	}
	a.drain()
}

// drain saves pending states until none is left.
func (a *Autosaver) drain() {
	for {
		a.mu.Lock()
		st := a.pending
		a.mu.Unlock()
		if st == nil {
			return
		}

		err := a.save(*st)

		a.mu.Lock()
		if a.pending == st {
			a.pending = nil
		}
		if err != nil {
			a.lastErr = err
		} else {
			a.lastErr = nil
			if st.Version > a.saved {
				a.saved = st.Version
			}
		}
		a.idle.Broadcast()
		a.mu.Unlock()
	}
}

func (a *Autosaver) save(st store.State) error {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	start := time.Now()
	err := a.backend.Save(ctx, snapshot.FromState(st))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			a.logger.Error("autosave timed out", "version", st.Version, "timeout", a.timeout)
		} else {
			a.logger.Error("autosave failed", "version", st.Version, "err", err)
		}
		return err
	}
	a.logger.Debug("autosaved", "version", st.Version, "took", time.Since(start))

	return nil
}

// Load restores the backend's Record into s. A backend with nothing saved
// leaves s untouched and returns false.
func Load(ctx context.Context, b snapshot.Backend, s *store.Store) (bool, error) {
	rec, err := b.Load(ctx)
	if errors.Is(err, snapshot.ErrNoSnapshot) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err = snapshot.Restore(s, rec); err != nil {
		return false, err
	}

	return true, nil
}
