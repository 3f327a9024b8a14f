// Package jobmgr runs named background jobs with cancellation and in-memory
// tracking. Jobs may start immediately or after a delay; Close cancels
// everything still pending and Wait blocks until every job goroutine exits.
//
// Typical usage:
//
//	jm := jobmgr.NewManager(func(msg string) {
//	    log.Debug().Msg(msg)
//	})
//
//	_ = jm.Schedule("cleanup:123", 5*time.Second, func(ctx context.Context) error {
//	    return deleteNotice(ctx)
//	})
//
//	// on shutdown, let pending jobs finish for up to ten seconds
//	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
//	defer cancel()
//	_ = jm.Drain(ctx)
package jobmgr

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrClosed is returned when starting a job on a closed manager.
var ErrClosed = errors.New("jobmgr: manager closed")

// Job represents a pending or running unit of work.
type Job struct {
	Name   string
	Cancel context.CancelFunc
}

// StatusReporter receives lifecycle events for jobs.
// Example messages:
//
//	running:cleanup:123
//	error:cleanup:123:context canceled
//	done:cleanup:123
type StatusReporter func(string)

// Manager orchestrates starting, stopping and tracking jobs.
// It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	jobs     map[string]*Job
	wg       sync.WaitGroup
	root     context.Context
	cancel   context.CancelFunc
	closed   bool
	Reporter StatusReporter
}

// NewManager creates a new Manager.
// The reporter callback may be nil.
func NewManager(reporter StatusReporter) *Manager {
	root, cancel := context.WithCancel(context.Background())
	return &Manager{
		jobs:     make(map[string]*Job),
		root:     root,
		cancel:   cancel,
		Reporter: reporter,
	}
}

// StartAsync runs a job in a separate goroutine and returns immediately.
// If a job with the same name is already tracked, an error is returned.
// Jobs are removed automatically after completion (success or failure).
func (m *Manager) StartAsync(name string, runner func(ctx context.Context) error) error {
	return m.Schedule(name, 0, runner)
}

// Schedule runs runner after delay. The job counts as tracked from the
// moment it is scheduled, so Stop and Close also cancel a job that has not
// started yet; a job cancelled before its delay elapses never runs.
func (m *Manager) Schedule(name string, delay time.Duration, runner func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if _, exists := m.jobs[name]; exists {
		return fmt.Errorf("job '%s' is already running", name)
	}

	ctx, cancel := context.WithCancel(m.root)
	job := &Job{Name: name, Cancel: cancel}
	m.jobs[name] = job
	m.wg.Add(1)

	go m.run(ctx, job, delay, runner)
	return nil
}

func (m *Manager) run(ctx context.Context, job *Job, delay time.Duration, runner func(ctx context.Context) error) {
	defer m.wg.Done()
	defer m.forget(job)
	defer job.Cancel()

	if delay > 0 {
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			m.report("cancelled:" + job.Name)
			return
		case <-t.C:
		}
	}

	m.report("running:" + job.Name)
	if err := runner(ctx); err != nil {
		m.report("error:" + job.Name + ":" + err.Error())
		return
	}
	m.report("done:" + job.Name)
}

// forget drops job from tracking unless a newer job already took its name.
func (m *Manager) forget(job *Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.jobs[job.Name] == job {
		delete(m.jobs, job.Name)
	}
}

// Stop cancels a tracked job by name.
// If the job is not tracked, an error is returned.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[name]
	if !ok {
		return fmt.Errorf("job '%s' not running", name)
	}

	job.Cancel()
	delete(m.jobs, name)
	return nil
}

// Close cancels every tracked job and rejects new ones. It does not wait.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.cancel()
}

// Drain rejects new jobs and lets tracked ones run to completion. Jobs still
// pending when ctx ends are cancelled. Drain returns once every job goroutine
// has exited, with ctx.Err() if any had to be cancelled.
func (m *Manager) Drain(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		m.cancel()
		<-done
		return ctx.Err()
	}
}

// Wait blocks until all job goroutines have returned.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// List returns the tracked job names, sorted.
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

// Status returns a human-readable summary of tracked jobs.
// Example:
//
//	"Running jobs: cleanup:1, cleanup:2"
//
// If none are tracked: "No jobs are running."
func (m *Manager) Status() string {
	active := m.List()
	if len(active) == 0 {
		return "No jobs are running."
	}
	return fmt.Sprintf("Running jobs: %s", strings.Join(active, ", "))
}

// report delivers lifecycle messages to the reporter if present.
func (m *Manager) report(s string) {
	if m.Reporter != nil {
		m.Reporter(s)
	}
}
