package jobs

import (
	"slices"
	"sync"
	"time"
)

// registry is the single table of job records. All reads return copies; no
// I/O happens while mu is held.
type registry struct {
	mu   sync.Mutex
	jobs map[string]*Job
}

func newRegistry() *registry {
	return &registry{jobs: make(map[string]*Job)}
}

func (r *registry) insert(job Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = &job
}

func (r *registry) get(id string) (Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return Job{}, false
	}
	return job.snapshot(), true
}

// list returns every job, newest first.
func (r *registry) list() []Job {
	r.mu.Lock()
	out := make([]Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		out = append(out, job.snapshot())
	}
	r.mu.Unlock()

	slices.SortFunc(out, func(a, b Job) int {
		if c := b.StartedAt.Compare(a.StartedAt); c != 0 {
			return c
		}
		return compareIDs(b.ID, a.ID)
	})
	return out
}

// finish records a terminal state. It overwrites whatever is there, including
// a kill that landed first.
func (r *registry) finish(id string, state State, at time.Time) (Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return Job{}, false
	}
	job.State = state
	job.FinishedAt = &at
	return job.snapshot(), true
}

// markKilled fails a running job and reports its pid. The returned state is
// the one observed before the change.
func (r *registry) markKilled(id string, at time.Time) (pid int, prev State, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return 0, State{}, false
	}
	prev = job.State
	if prev.Phase != PhaseRunning {
		return job.PID, prev, true
	}
	job.State = Failed("killed by user")
	job.FinishedAt = &at
	return job.PID, prev, true
}

// removeStartedBefore drops every record started before cutoff, whatever its state.
func (r *registry) removeStartedBefore(cutoff time.Time) []Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := make([]Job, 0)
	for id, job := range r.jobs {
		if job.StartedAt.Before(cutoff) {
			removed = append(removed, job.snapshot())
			delete(r.jobs, id)
		}
	}
	return removed
}

func (j *Job) snapshot() Job {
	out := *j
	if j.FinishedAt != nil {
		at := *j.FinishedAt
		out.FinishedAt = &at
	}
	return out
}

// compareIDs orders ids by length first so job_x_10 sorts after job_x_9.
func compareIDs(a, b string) int {
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
