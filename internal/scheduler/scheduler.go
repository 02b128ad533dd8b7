package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Task is one periodic job.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Scheduler runs every task once shortly after start, then on a fixed
// interval. Each run gets its own goroutine: a slow run is not cancelled
// by the next tick and runs of the same task may overlap. A run that
// fails or panics is logged and does not affect later runs or other tasks.
type Scheduler struct {
	tasks    []Task
	interval time.Duration
	delay    time.Duration
	stop     chan struct{}
	stopOnce sync.Once
	runs     sync.WaitGroup
}

func New(interval, startupDelay time.Duration, tasks ...Task) *Scheduler {
	return &Scheduler{
		tasks:    tasks,
		interval: interval,
		delay:    startupDelay,
		stop:     make(chan struct{}),
	}
}

// Start begins the periodic runs. Blocks until Stop is called or ctx is
// done, then waits for in-flight runs to return.
func (s *Scheduler) Start(ctx context.Context) {
	slog.Info("scheduler started", "interval", s.interval, "tasks", len(s.tasks))

	g := new(errgroup.Group)
	for _, task := range s.tasks {
		g.Go(func() error {
			s.loop(ctx, task)
			return nil
		})
	}
	_ = g.Wait()
	s.runs.Wait()

	slog.Info("scheduler stopped")
}

// Stop signals the scheduler to stop. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

func (s *Scheduler) loop(ctx context.Context, task Task) {
	startup := time.NewTimer(s.delay)
	defer startup.Stop()

	select {
	case <-startup.C:
		s.launch(ctx, task)
	case <-s.stop:
		return
	case <-ctx.Done():
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.launch(ctx, task)
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) launch(ctx context.Context, task Task) {
	s.runs.Add(1)
	go func() {
		defer s.runs.Done()
		if err := run(ctx, task); err != nil {
			slog.Warn("scheduler: task run failed", "task", task.Name, "error", err)
		}
	}()
}

// run calls task.Run, turning a panic into an error.
func run(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("scheduler: task panicked", "task", task.Name, "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	start := time.Now()
	err = task.Run(ctx)
	slog.Debug("scheduler: task run finished", "task", task.Name, "duration", time.Since(start).String())
	return err
}
