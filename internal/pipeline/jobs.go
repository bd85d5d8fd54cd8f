package pipeline

import (
	"sync"
	"time"

	"github.com/clinvec/tabgest/internal/reader"
)

// JobStatus represents the state of an ingestion job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusFetching  JobStatus = "fetching"
	StatusParsing   JobStatus = "parsing"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Job tracks the state of a single source-file ingestion.
type Job struct {
	mu sync.Mutex

	ID       string `json:"job_id"`
	Filename string `json:"filename"`

	// Path and BackupURL describe a server-side source; fileData holds an
	// uploaded one. Exactly one of the two is used.
	Path      string `json:"path,omitempty"`
	BackupURL string `json:"backup_url,omitempty"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	opts     reader.Options
	results  []reader.Result
	errors   []string
}

// Progress tracks parse results.
type Progress struct {
	Frames int      `json:"frames"`
	Rows   int      `json:"rows"`
	Cols   int      `json:"cols"`
	Errors []string `json:"errors"`
}

// NewJob creates a queued job with a fresh sortable ID.
func NewJob(filename string) *Job {
	now := time.Now()
	return &Job{
		ID:        generateULID(),
		Filename:  filename,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw uploaded bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw uploaded bytes, or nil for server-side sources.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// SetReadOptions attaches per-job parse options.
func (j *Job) SetReadOptions(opts reader.Options) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.opts = opts
}

// ReadOptions returns the per-job parse options.
func (j *Job) ReadOptions() reader.Options {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.opts
}

// SetResults records the extracted frames and their aggregate shape.
func (j *Job) SetResults(results []reader.Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.results = results
	j.Progress.Frames = len(results)
	j.Progress.Rows, j.Progress.Cols = 0, 0
	for _, res := range results {
		r, c := res.Frame.Shape()
		j.Progress.Rows += r
		if c > j.Progress.Cols {
			j.Progress.Cols = c
		}
	}
	j.UpdatedAt = time.Now()
}

// Results returns the extracted frames, or nil while the job is running.
func (j *Job) Results() []reader.Result {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.results
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string    `json:"job_id"`
	Filename string    `json:"filename"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Progress Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:       j.ID,
		Filename: j.Filename,
		Status:   j.Status,
		Phase:    j.Phase,
		Progress: Progress{
			Frames: j.Progress.Frames,
			Rows:   j.Progress.Rows,
			Cols:   j.Progress.Cols,
			Errors: errs,
		},
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}
