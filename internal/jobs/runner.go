// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ManuGH/printerchess/internal/config"
	xlog "github.com/ManuGH/printerchess/internal/log"
	"github.com/ManuGH/printerchess/internal/metrics"
	"github.com/ManuGH/printerchess/internal/moonraker"
	"github.com/ManuGH/printerchess/internal/motion"
	"github.com/ManuGH/printerchess/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

var (
	// ErrQueueFull is returned by Submit when the queue has no room.
	ErrQueueFull = errors.New("job queue is full")
	// ErrNotCancelable is returned when canceling a finished job.
	ErrNotCancelable = errors.New("job already finished")
)

// cleanupTimeout bounds the magnet-off script sent after a job stops early.
const cleanupTimeout = 5 * time.Second

// Printer is the motion controller as seen by the job worker.
type Printer interface {
	RunGCode(ctx context.Context, script string) error
	EmergencyStop(ctx context.Context) error
	PrinterInfo(ctx context.Context) (moonraker.PrinterInfo, error)
}

// Request is a game submission.
type Request struct {
	motion.Input
	Mode string `json:"mode,omitempty"`
}

// Runner queues jobs and executes them one at a time.
type Runner struct {
	store   *store.Store
	printer Printer
	limiter *rate.Limiter
	queue   chan string
	logger  zerolog.Logger

	mu       sync.Mutex
	compiler *motion.Compiler
	pending  map[string][]string // compiled chunks of queued jobs
	running  string
	stop     chan struct{} // closed to cancel the running job

	// test hooks: beforeStart runs once a dequeued job has its chunks,
	// beforeCancel once Cancel found the job not running.
	beforeStart  func(id string)
	beforeCancel func(id string)
}

func pacing(cfg config.JobsConfig) (rate.Limit, int) {
	limit := rate.Inf
	if cfg.ChunksPerSecond > 0 {
		limit = rate.Limit(cfg.ChunksPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return limit, burst
}

// NewRunner creates a runner. Call Run to start the worker.
func NewRunner(st *store.Store, printer Printer, compiler *motion.Compiler, cfg config.JobsConfig) *Runner {
	limit, burst := pacing(cfg)
	size := cfg.QueueSize
	if size <= 0 {
		size = 16
	}
	return &Runner{
		store:    st,
		printer:  printer,
		compiler: compiler,
		limiter:  rate.NewLimiter(limit, burst),
		queue:    make(chan string, size),
		logger:   xlog.WithComponent("jobs"),
		pending:  make(map[string][]string),
	}
}

// Compiler returns the compiler new jobs are built with.
func (r *Runner) Compiler() *motion.Compiler {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.compiler
}

// SetCompiler swaps the compiler after a configuration reload. Jobs already
// queued keep the program they were compiled to.
func (r *Runner) SetCompiler(c *motion.Compiler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.compiler = c
}

// SetPacing applies new chunk pacing. The queue size is fixed at start.
func (r *Runner) SetPacing(cfg config.JobsConfig) {
	limit, burst := pacing(cfg)
	r.limiter.SetLimit(limit)
	r.limiter.SetBurst(burst)
}

// Submit compiles the game and queues it. Bad input fails here, before
// anything is persisted.
func (r *Runner) Submit(ctx context.Context, req Request) (store.Job, error) {
	compiled, err := r.Compiler().Compile(req.Input, req.Mode)
	if err != nil {
		return store.Job{}, err
	}
	metrics.RecordPlan(compiled.Mode, compiled.Fallbacks())

	job := store.Job{
		ID:          uuid.NewString(),
		Status:      store.StatusQueued,
		Source:      store.SourceUCI,
		Input:       strings.Join(req.Moves, " "),
		Mode:        compiled.Mode,
		TotalChunks: len(compiled.Chunks),
	}
	if req.PGN != "" {
		job.Source = store.SourcePGN
		job.Input = req.PGN
	}

	if len(r.queue) == cap(r.queue) {
		return store.Job{}, ErrQueueFull
	}
	if err := r.store.Create(ctx, &job); err != nil {
		return store.Job{}, err
	}

	r.mu.Lock()
	r.pending[job.ID] = compiled.Chunks
	r.mu.Unlock()

	if !r.enqueue(job.ID) {
		r.forget(job.ID)
		_ = r.store.SetStatus(ctx, job.ID, store.StatusFailed, ErrQueueFull.Error())
		return store.Job{}, ErrQueueFull
	}

	logger := xlog.WithContext(ctx, r.logger)
	logger.Info().
		Str(xlog.FieldEvent, "job.submitted").
		Str(xlog.FieldJobID, job.ID).
		Str(xlog.FieldMode, job.Mode).
		Int("plies", len(compiled.Plans)).
		Int("chunks", job.TotalChunks).
		Msg("job queued")
	return job, nil
}

// Resume fails jobs interrupted by a previous shutdown and re-queues the
// ones that never started.
func (r *Runner) Resume(ctx context.Context) error {
	ids, err := r.store.RecoverInterrupted(ctx)
	if err != nil {
		return fmt.Errorf("recover jobs: %w", err)
	}
	for _, id := range ids {
		if !r.enqueue(id) {
			_ = r.store.SetStatus(ctx, id, store.StatusFailed, ErrQueueFull.Error())
			continue
		}
	}
	if len(ids) > 0 {
		r.logger.Info().Str(xlog.FieldEvent, "job.resumed").Int("count", len(ids)).Msg("re-queued jobs from previous run")
	}
	return nil
}

func (r *Runner) enqueue(id string) bool {
	select {
	case r.queue <- id:
		metrics.SetJobsQueued(len(r.queue))
		return true
	default:
		return false
	}
}

func (r *Runner) forget(id string) {
	r.mu.Lock()
	delete(r.pending, id)
	r.mu.Unlock()
}

// Cancel cancels a job. A queued job never starts; a running job stops
// before its next chunk.
func (r *Runner) Cancel(ctx context.Context, id string) (store.Job, error) {
	job, err := r.store.Get(ctx, id)
	if err != nil {
		return store.Job{}, err
	}
	if job.Status.Terminal() {
		return job, ErrNotCancelable
	}
	if r.stopRunning(id) {
		return job, nil
	}
	if r.beforeCancel != nil {
		r.beforeCancel(id)
	}

	err = r.store.CancelQueued(ctx, id)
	switch {
	case err == nil:
		r.forget(id)
		metrics.RecordJobFinished(string(store.StatusCanceled), 0)
		return r.store.Get(ctx, id)
	case errors.Is(err, store.ErrNotFound):
		// the worker started it after the check above
		if r.stopRunning(id) {
			return r.store.Get(ctx, id)
		}
		if job, err = r.store.Get(ctx, id); err != nil {
			return store.Job{}, err
		}
		return job, ErrNotCancelable
	default:
		return job, err
	}
}

// stopRunning signals the job to stop if it is the running one.
func (r *Runner) stopRunning(id string) bool {
	r.mu.Lock()
	if id == "" || r.running != id {
		r.mu.Unlock()
		return false
	}
	if r.stop != nil {
		close(r.stop)
		r.stop = nil
	}
	r.mu.Unlock()
	r.logger.Info().Str(xlog.FieldEvent, "job.cancel_requested").Str(xlog.FieldJobID, id).Msg("stopping running job")
	return true
}

// Busy reports whether a job is moving the printer.
func (r *Runner) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running != ""
}

// Running returns the id of the running job, if any.
func (r *Runner) Running() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Run executes queued jobs until ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info().Str(xlog.FieldEvent, "jobs.worker.start").Msg("job worker started")
	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Str(xlog.FieldEvent, "jobs.worker.stop").Msg("job worker stopped")
			return nil
		case id := <-r.queue:
			metrics.SetJobsQueued(len(r.queue))
			r.execute(ctx, id)
		}
	}
}

func (r *Runner) execute(ctx context.Context, id string) {
	ctx = xlog.ContextWithJobID(ctx, id)
	logger := xlog.WithContext(ctx, r.logger)

	job, err := r.store.Get(ctx, id)
	if err != nil {
		logger.Error().Err(err).Str(xlog.FieldEvent, "job.load_failed").Msg("cannot load queued job")
		r.forget(id)
		return
	}
	if job.Status != store.StatusQueued {
		r.forget(id)
		return
	}

	r.mu.Lock()
	chunks, ok := r.pending[id]
	delete(r.pending, id)
	r.mu.Unlock()
	if !ok {
		// Queued before a restart; compile again from the stored input.
		compiled, err := r.Compiler().Compile(inputOf(job), job.Mode)
		if err != nil {
			r.finish(ctx, job, store.StatusFailed, err.Error(), 0)
			return
		}
		chunks = compiled.Chunks
	}
	if r.beforeStart != nil {
		r.beforeStart(id)
	}

	// running is published before the store says so: a Cancel that finds
	// the job no longer queued must find it here.
	stop := make(chan struct{})
	r.mu.Lock()
	r.running = id
	r.stop = stop
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.running = ""
		r.stop = nil
		r.mu.Unlock()
	}()

	start := time.Now()
	if err := r.store.SetStatus(ctx, id, store.StatusRunning, ""); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// canceled between dequeue and start
			return
		}
		logger.Error().Err(err).Str(xlog.FieldEvent, "job.start_failed").Msg("cannot mark job running")
		return
	}
	logger.Info().Str(xlog.FieldEvent, "job.start").Int("chunks", len(chunks)).Msg("job started")

	// waitCtx ends the pacing wait on cancel; a chunk already on the wire
	// is allowed to finish.
	waitCtx, cancelWait := context.WithCancel(ctx)
	defer cancelWait()
	go func() {
		select {
		case <-stop:
			cancelWait()
		case <-waitCtx.Done():
		}
	}()

	for i, chunk := range chunks {
		if err := r.limiter.Wait(waitCtx); err != nil || stopped(stop) {
			if ctx.Err() != nil {
				r.stopMagnet(ctx, job)
				r.finish(ctx, job, store.StatusFailed, "daemon shutting down", time.Since(start))
				return
			}
			r.stopMagnet(ctx, job)
			r.finish(ctx, job, store.StatusCanceled, "", time.Since(start))
			return
		}
		if err := r.printer.RunGCode(ctx, chunk); err != nil {
			logger.Error().Err(err).Str(xlog.FieldEvent, "job.chunk_failed").Int("chunk", i+1).Msg("printer rejected chunk")
			r.stopMagnet(ctx, job)
			r.finish(ctx, job, store.StatusFailed, fmt.Sprintf("chunk %d/%d: %v", i+1, len(chunks), err), time.Since(start))
			return
		}
		metrics.IncChunksSent()
		metrics.AddGCodeCommands(strings.Count(chunk, "\n"))
		if err := r.store.UpdateProgress(ctx, id, i+1); err != nil {
			logger.Warn().Err(err).Str(xlog.FieldEvent, "job.progress_failed").Msg("cannot record progress")
		}
	}
	r.finish(ctx, job, store.StatusDone, "", time.Since(start))
}

func stopped(stop <-chan struct{}) bool {
	select {
	case <-stop:
		return true
	default:
		return false
	}
}

// stopMagnet drops whatever a magnet job may be holding.
func (r *Runner) stopMagnet(ctx context.Context, job store.Job) {
	if job.Mode != "magnet" {
		return
	}
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	mr := r.Compiler().Magnet()
	if err := r.printer.RunGCode(cctx, motion.Script(mr.Magnet(false)...)); err != nil {
		logger := xlog.WithContext(ctx, r.logger)
		logger.Error().Err(err).
			Str(xlog.FieldEvent, "job.magnet_off_failed").
			Msg("could not switch magnet off")
	}
}

func (r *Runner) finish(ctx context.Context, job store.Job, status store.Status, msg string, d time.Duration) {
	sctx := context.WithoutCancel(ctx)
	if err := r.store.SetStatus(sctx, job.ID, status, msg); err != nil {
		r.logger.Error().Err(err).Str(xlog.FieldJobID, job.ID).Msg("cannot record job status")
	}
	metrics.RecordJobFinished(string(status), d)

	ev := r.logger.Info()
	if status == store.StatusFailed {
		ev = r.logger.Warn().Str("error", msg)
	}
	ev.Str(xlog.FieldEvent, "job.finished").
		Str(xlog.FieldJobID, job.ID).
		Str(xlog.FieldStatus, string(status)).
		Dur("duration", d).
		Msg("job finished")
}

func inputOf(j store.Job) motion.Input {
	if j.Source == store.SourcePGN {
		return motion.Input{PGN: j.Input}
	}
	return motion.Input{Moves: strings.Fields(j.Input)}
}
