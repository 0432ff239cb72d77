// Package scheduler runs the tasks of a graph in dependency order.
package scheduler

import (
	"context"
	"errors"
	"sync"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// TaskStatus represents the status of a task.
type TaskStatus string

const (
	// StatusPending indicates the task is waiting to be executed.
	StatusPending TaskStatus = "Pending"
	// StatusRunning indicates the task is currently executing.
	StatusRunning TaskStatus = "Running"
	// StatusCompleted indicates the task has finished successfully.
	StatusCompleted TaskStatus = "Completed"
	// StatusFailed indicates the task execution failed.
	StatusFailed TaskStatus = "Failed"
)

// Scheduler manages the execution of tasks in the dependency graph.
type Scheduler struct {
	executor ports.Executor
	tracer   ports.Tracer

	mu         sync.RWMutex
	taskStatus map[domain.InternedString]TaskStatus
}

// NewScheduler creates a new Scheduler with the given dependencies.
func NewScheduler(executor ports.Executor, tracer ports.Tracer) *Scheduler {
	return &Scheduler{
		executor:   executor,
		tracer:     tracer,
		taskStatus: make(map[domain.InternedString]TaskStatus),
	}
}

// Status returns the status of a task in the most recent run.
func (s *Scheduler) Status(name string) (TaskStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.taskStatus[domain.NewInternedString(name)]
	return st, ok
}

func (s *Scheduler) initTaskStatuses(tasks []domain.InternedString) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.taskStatus)
	for _, task := range tasks {
		s.taskStatus[task] = StatusPending
	}
}

func (s *Scheduler) updateStatus(name domain.InternedString, status TaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taskStatus[name] = status
}

// Run executes the targets and their transitive prerequisites with at most
// parallelism one-shot tasks in flight. Watch tasks run until ctx is done, so
// they are started as soon as they are ready and never occupy a slot.
// A failed task blocks its dependents only; independent branches keep running
// and every failure is joined into the returned error.
func (s *Scheduler) Run(
	ctx context.Context,
	graph *domain.Graph,
	targetNames []string,
	parallelism int,
) error {
	if err := graph.Validate(); err != nil {
		return err
	}

	r, err := s.newRun(ctx, graph, targetNames, max(parallelism, 1))
	if err != nil {
		return err
	}

	planned, deps := r.plan()
	s.tracer.EmitPlan(ctx, planned, deps, targetNames)
	s.initTaskStatuses(r.order)

	return r.loop()
}

type result struct {
	task domain.InternedString
	err  error
}

// run is the bookkeeping of a single Run call. Only the loop goroutine
// touches it; task goroutines report through done.
type run struct {
	s     *Scheduler
	ctx   context.Context
	graph *domain.Graph

	tasks   map[domain.InternedString]domain.Task
	order   []domain.InternedString
	waiting map[domain.InternedString]int
	ready   []domain.InternedString

	limit    int
	busy     int
	watching int

	done chan result
	errs error
}

func (s *Scheduler) newRun(
	ctx context.Context,
	graph *domain.Graph,
	targetNames []string,
	limit int,
) (*run, error) {
	targets := make([]domain.InternedString, 0, len(targetNames))
	for _, name := range targetNames {
		interned := domain.NewInternedString(name)
		if _, ok := graph.GetTask(interned); !ok {
			return nil, domain.Annotate(domain.ErrTaskNotFound, "task", name)
		}
		targets = append(targets, interned)
	}

	r := &run{
		s:       s,
		ctx:     ctx,
		graph:   graph,
		tasks:   make(map[domain.InternedString]domain.Task),
		waiting: make(map[domain.InternedString]int),
		limit:   limit,
	}
	r.collect(targets)

	for name, task := range r.tasks {
		for _, dep := range task.Dependencies {
			if _, ok := r.tasks[dep]; ok {
				r.waiting[name]++
			}
		}
	}

	// Seed the ready queue in execution order so runs are reproducible.
	for task := range graph.Walk() {
		if _, ok := r.tasks[task.Name]; ok && r.waiting[task.Name] == 0 {
			r.ready = append(r.ready, task.Name)
		}
	}

	// Every task reports exactly once, so sends never block.
	r.done = make(chan result, len(r.tasks))
	return r, nil
}

// collect adds targets and their prerequisites, breadth first.
func (r *run) collect(targets []domain.InternedString) {
	queue := append([]domain.InternedString(nil), targets...)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if _, seen := r.tasks[name]; seen {
			continue
		}

		task, _ := r.graph.GetTask(name)
		r.tasks[name] = task
		r.order = append(r.order, name)
		queue = append(queue, task.Dependencies...)
	}
}

// plan filters the graph's topological order down to the tasks of this run.
func (r *run) plan() ([]string, map[string][]string) {
	planned := make([]string, 0, len(r.tasks))
	deps := make(map[string][]string, len(r.tasks))

	for task := range r.graph.Walk() {
		if _, ok := r.tasks[task.Name]; !ok {
			continue
		}
		name := task.Name.String()
		planned = append(planned, name)
		deps[name] = domain.Strings(task.Dependencies)
	}
	return planned, deps
}

func (r *run) inFlight() int {
	return r.busy + r.watching
}

func (r *run) loop() error {
	for {
		r.dispatch()

		if r.inFlight() == 0 && (len(r.ready) == 0 || r.ctx.Err() != nil) {
			break
		}

		// Once cancelled, only drain the tasks still running.
		if r.ctx.Err() != nil {
			r.finish(<-r.done)
			continue
		}

		select {
		case res := <-r.done:
			r.finish(res)
		case <-r.ctx.Done():
		}
	}

	if err := r.ctx.Err(); err != nil {
		r.errs = errors.Join(r.errs, err)
	}
	return r.errs
}

// dispatch starts every ready watch task and as many one-shot tasks as there
// are free slots. Tasks that do not fit stay queued in order.
func (r *run) dispatch() {
	if r.ctx.Err() != nil {
		return
	}

	held := r.ready[:0]
	for _, name := range r.ready {
		task := r.tasks[name]
		switch {
		case task.Watch:
			r.watching++
		case r.busy < r.limit:
			r.busy++
		default:
			held = append(held, name)
			continue
		}

		r.s.updateStatus(name, StatusRunning)
		go r.execute(task)
	}
	r.ready = held
}

func (r *run) execute(t domain.Task) {
	// The span must end before the result is sent, so a renderer sees the
	// completion before the loop can finish.
	res := func() result {
		ctx, span := r.s.tracer.Start(r.ctx, t.Name.String(),
			ports.WithAttribute("kiln.kind", t.Kind.String()),
			ports.WithAttribute("kiln.watch", t.Watch),
		)
		defer span.End()

		err := r.s.executor.Execute(ctx, &t, span)
		if err != nil {
			span.RecordError(err)
		}
		return result{task: t.Name, err: err}
	}()

	r.done <- res
}

func (r *run) finish(res result) {
	if r.tasks[res.task].Watch {
		r.watching--
	} else {
		r.busy--
	}

	if res.err != nil {
		r.errs = errors.Join(r.errs,
			zerr.With(zerr.Wrap(res.err, domain.ErrTaskExecutionFailed.Error()), "task", res.task.String()))
		r.s.updateStatus(res.task, StatusFailed)
		return
	}

	r.s.updateStatus(res.task, StatusCompleted)
	for _, dep := range r.graph.Dependents(res.task) {
		if _, ok := r.tasks[dep]; !ok {
			continue
		}
		r.waiting[dep]--
		if r.waiting[dep] == 0 {
			r.ready = append(r.ready, dep)
		}
	}
}
