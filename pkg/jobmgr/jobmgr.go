// Package jobmgr runs named background jobs that can be stopped by name,
// either straight away or after a delay.
//
// Typical usage:
//
//	jm := jobmgr.NewManager(logger)
//
//	err := jm.After("reminder:7", 10*time.Minute, func(ctx context.Context) error {
//	    return deliver(ctx)
//	})
//
//	// later...
//	_ = jm.Stop("reminder:7")
//
// Jobs run in their own goroutine and are removed once they return.
package jobmgr

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultManager is the process-wide manager. It logs nothing until
// SetLogger is called.
var DefaultManager = NewManager(zerolog.Nop())

var (
	ErrJobExists     = errors.New("job is already running")
	ErrJobNotRunning = errors.New("job not running")
)

// Job is a running unit of work.
type Job struct {
	Name    string
	Started time.Time
	cancel  context.CancelFunc
}

// Manager tracks running jobs. Safe for concurrent use.
type Manager struct {
	mu   sync.Mutex
	jobs map[string]*Job
	log  zerolog.Logger
}

// NewManager creates a Manager that logs job lifecycle events to log.
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		jobs: make(map[string]*Job),
		log:  log,
	}
}

// SetLogger replaces the lifecycle logger.
func (m *Manager) SetLogger(log zerolog.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log = log
}

func (m *Manager) logger() zerolog.Logger {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.log
}

// Start runs fn in a new goroutine. The context passed to fn is cancelled by
// Stop or StopAll.
func (m *Manager) Start(name string, fn func(ctx context.Context) error) error {
	return m.After(name, 0, fn)
}

// After runs fn once delay has passed, unless the job is stopped first.
func (m *Manager) After(name string, delay time.Duration, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	if _, exists := m.jobs[name]; exists {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrJobExists, name)
	}
	ctx, cancel := context.WithCancel(context.Background())
	job := &Job{Name: name, Started: time.Now(), cancel: cancel}
	m.jobs[name] = job
	m.mu.Unlock()

	log := m.logger().With().Str("job", name).Logger()
	go func() {
		defer m.remove(job)
		defer cancel()

		if delay > 0 {
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				log.Debug().Msg("job stopped before start")
				return
			case <-t.C:
			}
		}

		log.Debug().Msg("job running")
		if err := fn(ctx); err != nil {
			log.Warn().Err(err).Msg("job failed")
			return
		}
		log.Debug().Msg("job done")
	}()
	return nil
}

// Stop cancels a running job by name.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotRunning, name)
	}
	job.cancel()
	delete(m.jobs, name)
	return nil
}

// StopAll cancels every running job.
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, job := range m.jobs {
		job.cancel()
		delete(m.jobs, name)
	}
}

// Running reports whether a job called name is pending or running.
func (m *Manager) Running(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.jobs[name]
	return ok
}

// List returns the sorted names of active jobs.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.jobs))
	for k := range m.jobs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Status returns a readable summary such as "Running jobs: a, b".
func (m *Manager) Status() string {
	active := m.List()
	if len(active) == 0 {
		return "No jobs are running."
	}
	return fmt.Sprintf("Running jobs: %s", strings.Join(active, ", "))
}

// remove drops job unless a newer job has taken its name.
func (m *Manager) remove(job *Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.jobs[job.Name] == job {
		delete(m.jobs, job.Name)
	}
}
