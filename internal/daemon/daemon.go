// Package daemon runs the copydesk background process: it owns the stores,
// the job runner, the lifecycle service and the HTTP API, and enforces
// single-instance execution through a lock file.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"copydesk/internal/actions"
	"copydesk/internal/config"
	"copydesk/internal/jobs"
	"copydesk/internal/logging"
	"copydesk/internal/records"
	"copydesk/internal/statestore"
)

// Daemon coordinates the lifecycle service and its API server.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	state   *statestore.Store
	records *records.Store
	runner  *jobs.Runner
	service *actions.Service
	api     *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	PID           int
	StateFilePath string
	RecordsDBPath string
	LiveJobs      int
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, logger *slog.Logger, collab actions.Collaborators) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires configuration")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	recs, err := records.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}
	state := statestore.New(cfg.StateFilePath(), logger)
	runner := jobs.NewRunner(logger)
	service := actions.NewService(cfg, state, recs, runner, collab, logger)

	d := &Daemon{
		cfg:      cfg,
		logger:   logging.WithComponent(logger, "daemon"),
		state:    state,
		records:  recs,
		runner:   runner,
		service:  service,
		lockPath: cfg.LockFilePath(),
		lock:     flock.New(cfg.LockFilePath()),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Service exposes the lifecycle service (used by the API server and tests).
func (d *Daemon) Service() *actions.Service { return d.service }

// Records exposes the transcript record store.
func (d *Daemon) Records() *records.Store { return d.records }

// Start acquires the instance lock and brings up the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another copydesk daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	if d.api != nil {
		if err := d.api.start(runCtx); err != nil {
			cancel()
			d.cancel = nil
			_ = d.lock.Unlock()
			return err
		}
	}

	d.running.Store(true)
	d.logger.Info("daemon started",
		logging.String("lock", d.lockPath),
		logging.String("state", d.cfg.StateFilePath()))
	return nil
}

// Stop shuts down the API server, waits briefly for background jobs and
// releases the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.api != nil {
		d.api.stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := d.runner.Shutdown(shutdownCtx); err != nil {
		d.logger.Warn("background jobs did not drain", logging.Error(err))
	}

	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close stops the daemon and releases held resources.
func (d *Daemon) Close() error {
	d.Stop()
	return d.records.Close()
}

// Addr returns the bound API address, empty until Start.
func (d *Daemon) Addr() string {
	if d.api == nil {
		return ""
	}
	return d.api.addr()
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:       d.running.Load(),
		PID:           os.Getpid(),
		StateFilePath: d.cfg.StateFilePath(),
		RecordsDBPath: d.cfg.RecordsDBPath(),
		LiveJobs:      len(d.runner.Jobs()),
	}
}
