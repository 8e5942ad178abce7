// Package registry is the authoritative in-memory table of jobs. One runner
// goroutine owns each job's writes; HTTP handlers read snapshots. All access
// goes through an explicit lock. The table is bounded: when it grows past
// capacity the oldest terminal jobs are evicted and handed to the eviction
// hook, which the daemon wires to the archive.
package registry

import (
	"fmt"
	"sync"
	"time"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
	StatusKilled    Status = "killed"
)

// IsTerminal reports whether the status permits no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError || s == StatusKilled
}

// MaxLogLines caps each job's log; older lines are silently dropped.
const MaxLogLines = 500

// DefaultCapacity bounds the job table when Options.Capacity is unset.
const DefaultCapacity = 1000

// JobView is an immutable snapshot of one job. Log is populated only by Get
// and by eviction-hook views; Snapshot leaves it nil. TotalLines counts every
// line ever appended, including lines the cap has since discarded, so stream
// consumers can tell how far behind a snapshot they are.
type JobView struct {
	ID           string
	AutomationID string
	Name         string
	Status       Status
	StartedAt    time.Time
	EndedAt      *time.Time
	PID          *int
	Log          []string
	TotalLines   int
}

// Options configures a Registry.
type Options struct {
	// Capacity is the maximum number of jobs kept in the table. Zero or
	// negative selects DefaultCapacity. Running jobs are never evicted, so
	// the table may temporarily exceed capacity.
	Capacity int

	// OnEvict is called outside the lock, once per evicted terminal job,
	// with a view that includes the job's final log.
	OnEvict func(JobView)

	// OnTerminal is called outside the lock after a job reaches a terminal
	// status, with a view that excludes the log.
	OnTerminal func(JobView)
}

// Registry owns all job records for the life of the process.
type Registry struct {
	mu         sync.RWMutex
	jobs       map[string]*job
	order      []string // job ids in creation order, for eviction scans
	nextSeq    uint64
	capacity   int
	onEvict    func(JobView)
	onTerminal func(JobView)
}

type job struct {
	id           string
	automationID string
	name         string
	status       Status
	startedAt    time.Time
	endedAt      *time.Time
	pid          *int
	log          logRing
}

// New creates an empty registry.
func New(opts Options) *Registry {
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Registry{
		jobs:       make(map[string]*job),
		capacity:   capacity,
		onEvict:    opts.OnEvict,
		onTerminal: opts.OnTerminal,
	}
}

// Create allocates the next job id, inserts a running job with an empty log
// and returns the id. Ids have the form {sequence}_{automation_id}; the
// sequence is monotonic for the process lifetime, so ids are never reused.
func (r *Registry) Create(automationID, name string) string {
	r.mu.Lock()
	r.nextSeq++
	id := fmt.Sprintf("%d_%s", r.nextSeq, automationID)
	r.jobs[id] = &job{
		id:           id,
		automationID: automationID,
		name:         name,
		status:       StatusRunning,
		startedAt:    time.Now().UTC(),
	}
	r.order = append(r.order, id)
	evicted := r.evictLocked()
	r.mu.Unlock()

	for _, v := range evicted {
		r.onEvict(v)
	}
	return id
}

// evictLocked removes the oldest terminal jobs until the table fits the
// capacity. Jobs still running are skipped; if only running jobs remain the
// table stays oversized.
func (r *Registry) evictLocked() []JobView {
	var evicted []JobView
	for len(r.jobs) > r.capacity {
		idx := -1
		for i, id := range r.order {
			if r.jobs[id].status.IsTerminal() {
				idx = i
				break
			}
		}
		if idx == -1 {
			break
		}
		id := r.order[idx]
		if r.onEvict != nil {
			evicted = append(evicted, r.jobs[id].view(true))
		}
		delete(r.jobs, id)
		r.order = append(r.order[:idx], r.order[idx+1:]...)
	}
	return evicted
}

// AppendLog appends one line to the job's log, dropping the oldest line once
// the cap is reached. Unknown ids are ignored (the job may have been evicted
// between a snapshot and the append).
func (r *Registry) AppendLog(id, line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j, ok := r.jobs[id]; ok {
		j.log.append(line)
	}
}

// SetPID records the spawned process id. Only the first call takes effect.
func (r *Registry) SetPID(id string, pid int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j, ok := r.jobs[id]; ok && j.pid == nil {
		j.pid = &pid
	}
}

// SetTerminal moves a job to a terminal status and records the end time.
// It returns false without mutating anything if the job is unknown, already
// terminal, or the requested status is not terminal. First write wins: a
// killed job stays killed even when the runner later reports the exit.
func (r *Registry) SetTerminal(id string, status Status, endedAt time.Time) bool {
	if !status.IsTerminal() {
		return false
	}
	r.mu.Lock()
	j, ok := r.jobs[id]
	if !ok || j.status.IsTerminal() {
		r.mu.Unlock()
		return false
	}
	j.status = status
	t := endedAt.UTC()
	j.endedAt = &t
	var v JobView
	if r.onTerminal != nil {
		v = j.view(false)
	}
	r.mu.Unlock()

	if r.onTerminal != nil {
		r.onTerminal(v)
	}
	return true
}

// Get returns a snapshot of one job including a copy of its log. The log
// slice is never nil.
func (r *Registry) Get(id string) (JobView, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[id]
	if !ok {
		return JobView{}, false
	}
	return j.view(true), true
}

// Snapshot returns a point-in-time copy of every job, without logs.
func (r *Registry) Snapshot() map[string]JobView {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]JobView, len(r.jobs))
	for id, j := range r.jobs {
		out[id] = j.view(false)
	}
	return out
}

// Running returns snapshots of all jobs still in the running state.
func (r *Registry) Running() []JobView {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []JobView
	for _, id := range r.order {
		if j := r.jobs[id]; j.status == StatusRunning {
			out = append(out, j.view(false))
		}
	}
	return out
}

// RunningCount returns the number of jobs in the running state.
func (r *Registry) RunningCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, j := range r.jobs {
		if j.status == StatusRunning {
			n++
		}
	}
	return n
}

// Len returns the number of jobs in the table.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}

func (j *job) view(includeLog bool) JobView {
	v := JobView{
		ID:           j.id,
		AutomationID: j.automationID,
		Name:         j.name,
		Status:       j.status,
		StartedAt:    j.startedAt,
		TotalLines:   j.log.total,
	}
	if j.endedAt != nil {
		t := *j.endedAt
		v.EndedAt = &t
	}
	if j.pid != nil {
		p := *j.pid
		v.PID = &p
	}
	if includeLog {
		v.Log = j.log.snapshot()
	}
	return v
}

// logRing keeps the most recent MaxLogLines lines in insertion order.
// It grows lazily and wraps in place once full, so appends stay O(1).
type logRing struct {
	buf   []string
	start int // index of the oldest line once the buffer is full
	total int // lines ever appended
}

func (lr *logRing) append(line string) {
	lr.total++
	if len(lr.buf) < MaxLogLines {
		lr.buf = append(lr.buf, line)
		return
	}
	lr.buf[lr.start] = line
	lr.start = (lr.start + 1) % MaxLogLines
}

func (lr *logRing) snapshot() []string {
	out := make([]string, 0, len(lr.buf))
	out = append(out, lr.buf[lr.start:]...)
	out = append(out, lr.buf[:lr.start]...)
	return out
}
