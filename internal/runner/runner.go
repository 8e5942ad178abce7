// Package runner owns the full lifecycle of one external process per job,
// from spawn to terminal status, on a dedicated goroutine so HTTP handlers
// never block. Automations are opaque commands: interpreter + script path +
// args in, line stream and exit code out.
package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"runboard/internal/registry"
)

// moduleSearchPathVar is extended with the configured module directory so
// spawned scripts can import shared helper code.
const moduleSearchPathVar = "PYTHONPATH"

// maxLogLineBytes caps a single captured output line.
const maxLogLineBytes = 1024 * 1024

// JobStore is the registry surface the runner writes through.
type JobStore interface {
	AppendLog(jobID, line string)
	SetPID(jobID string, pid int)
	SetTerminal(jobID string, status registry.Status, endedAt time.Time) bool
}

// Options holds process-wide execution settings.
type Options struct {
	// Interpreter runs every automation script.
	Interpreter string

	// WorkDir is the working directory of spawned processes. Relative
	// script paths resolve against it.
	WorkDir string

	// ModuleDir is appended to the module search path variable. Empty
	// leaves the environment untouched.
	ModuleDir string
}

// StartOptions describes one job execution.
type StartOptions struct {
	JobID        string
	AutomationID string
	Script       string
	Args         []string
}

// Runner launches and tracks automation processes.
type Runner struct {
	store  JobStore
	opts   Options
	logger *slog.Logger

	mu    sync.Mutex
	procs map[string]*os.Process // job id -> live process
	wg    sync.WaitGroup
}

// New creates a runner writing job state through the given store.
func New(store JobStore, opts Options, logger *slog.Logger) *Runner {
	if opts.Interpreter == "" {
		opts.Interpreter = "python3"
	}
	if opts.WorkDir == "" {
		opts.WorkDir = "."
	}
	return &Runner{
		store:  store,
		opts:   opts,
		logger: logger,
		procs:  make(map[string]*os.Process),
	}
}

// Start launches the automation for an already-created job and returns
// immediately. Everything that can go wrong afterwards is reported through
// the job's log and terminal status, never to the caller.
func (r *Runner) Start(opts StartOptions) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(opts)
	}()
}

func (r *Runner) run(opts StartOptions) {
	log := r.logger.With("job_id", opts.JobID, "automation_id", opts.AutomationID)

	tracer := otel.Tracer("job-runner")
	_, span := tracer.Start(context.Background(), "run_job",
		trace.WithAttributes(
			attribute.String("job.id", opts.JobID),
			attribute.String("automation.id", opts.AutomationID),
			attribute.String("automation.script", opts.Script),
		),
	)
	defer span.End()

	// A panicking runner must never abandon its job in the running state.
	defer func() {
		if p := recover(); p != nil {
			r.store.AppendLog(opts.JobID, fmt.Sprintf("runner panic: %v", p))
			r.store.SetTerminal(opts.JobID, registry.StatusError, time.Now())
			log.Error("runner panicked", "panic", p)
		}
	}()

	scriptPath := opts.Script
	if !filepath.IsAbs(scriptPath) {
		scriptPath = filepath.Join(r.opts.WorkDir, scriptPath)
	}

	// Precondition: the script must exist. No process is spawned otherwise.
	if _, err := os.Stat(scriptPath); err != nil {
		span.RecordError(err)
		r.fail(opts.JobID, fmt.Sprintf("script not found: %s", scriptPath))
		log.Error("script missing", "path", scriptPath, "error", err)
		return
	}

	cmd := exec.Command(r.opts.Interpreter, append([]string{scriptPath}, opts.Args...)...)
	cmd.Dir = r.opts.WorkDir
	cmd.Env = r.environ()

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		span.RecordError(err)
		r.fail(opts.JobID, fmt.Sprintf("failed to open output pipe: %v", err))
		log.Error("pipe setup failed", "error", err)
		return
	}
	// StdoutPipe set cmd.Stdout to the pipe's write end; pointing stderr at
	// the same writer merges both streams in emission order.
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		span.RecordError(err)
		r.fail(opts.JobID, fmt.Sprintf("failed to start %s: %v", opts.Script, err))
		log.Error("spawn failed", "error", err)
		return
	}

	pid := cmd.Process.Pid
	r.store.SetPID(opts.JobID, pid)
	r.mu.Lock()
	r.procs[opts.JobID] = cmd.Process
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		delete(r.procs, opts.JobID)
		r.mu.Unlock()
	}()

	log.Info("job started", "pid", pid, "script", opts.Script, "args", opts.Args)

	// Drain the merged stream before Wait; Wait closes the pipe.
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLogLineBytes)
	for scanner.Scan() {
		r.store.AppendLog(opts.JobID, scanner.Text())
	}
	scanErr := scanner.Err()
	if scanErr != nil {
		// The scanner gave up mid-stream, typically on a line past
		// maxLogLineBytes. Keep reading so the child is not wedged writing
		// to a full pipe and Wait can observe the real exit.
		io.Copy(io.Discard, stdout)
	}

	waitErr := cmd.Wait()
	ended := time.Now()

	status := registry.StatusCompleted
	exitCode := 0

	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
		// Exit 0; the log already holds everything the script said.
	case errors.As(waitErr, &exitErr):
		// Non-zero exit or death by signal. The script's own output is the
		// diagnosis; no synthetic line is appended.
		status = registry.StatusError
		exitCode = exitErr.ExitCode()
		span.RecordError(waitErr)
	default:
		status = registry.StatusError
		span.RecordError(waitErr)
		r.store.AppendLog(opts.JobID, fmt.Sprintf("process wait failed: %v", waitErr))
	}

	if scanErr != nil {
		status = registry.StatusError
		span.RecordError(scanErr)
		r.store.AppendLog(opts.JobID, fmt.Sprintf("log stream error: %v", scanErr))
	}

	span.SetAttributes(attribute.Int("exit_code", exitCode))

	if r.store.SetTerminal(opts.JobID, status, ended) {
		log.Info("job finished", "status", status, "exit_code", exitCode)
	} else {
		// The job went terminal while the process was exiting (killed); the
		// earlier status stands.
		log.Info("exit status discarded, job already terminal", "exit_code", exitCode)
	}
}

// fail records a spawn-path failure: one explanatory log line and an error
// terminal status. The pid stays unset.
func (r *Runner) fail(jobID, line string) {
	r.store.AppendLog(jobID, line)
	r.store.SetTerminal(jobID, registry.StatusError, time.Now())
}

// environ returns the parent environment with the module search path
// extended by ModuleDir.
func (r *Runner) environ() []string {
	env := os.Environ()
	if r.opts.ModuleDir == "" {
		return env
	}
	prefix := moduleSearchPathVar + "="
	for i, kv := range env {
		if strings.HasPrefix(kv, prefix) {
			env[i] = kv + string(os.PathListSeparator) + r.opts.ModuleDir
			return env
		}
	}
	return append(env, prefix+r.opts.ModuleDir)
}

// Kill sends SIGTERM to the job's process, best-effort and fire-and-forget.
// It reports true only when the signal was delivered and the job transitioned
// to killed while still running; a job whose process already exited keeps its
// real exit status.
func (r *Runner) Kill(jobID string) bool {
	r.mu.Lock()
	proc, ok := r.procs[jobID]
	r.mu.Unlock()
	if !ok {
		return false
	}

	if err := proc.Signal(syscall.SIGTERM); err != nil {
		// Process already gone; its runner will record the real exit.
		return false
	}

	if !r.store.SetTerminal(jobID, registry.StatusKilled, time.Now()) {
		return false
	}
	r.store.AppendLog(jobID, "killed: termination signal sent")
	r.logger.Info("job killed", "job_id", jobID)
	return true
}

// Shutdown kills every running job and waits for their runner goroutines to
// record terminal statuses, up to the context deadline.
func (r *Runner) Shutdown(ctx context.Context) {
	r.mu.Lock()
	ids := make([]string, 0, len(r.procs))
	for id := range r.procs {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		r.Kill(id)
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		r.logger.Warn("shutdown deadline reached with jobs still draining")
	}
}
