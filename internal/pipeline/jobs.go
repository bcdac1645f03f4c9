package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

// FileStatus represents the state of one input file within a run.
type FileStatus string

const (
	StatusQueued    FileStatus = "queued"
	StatusParsed    FileStatus = "parsed"
	StatusSkipped   FileStatus = "skipped" // parse failed; left out of the corpus
	StatusWritten   FileStatus = "written"
	StatusUnchanged FileStatus = "unchanged"
	StatusDryRun    FileStatus = "dry_run"
	StatusFailed    FileStatus = "failed"
)

// FileJob tracks a single document through parse, number and write.
type FileJob struct {
	mu sync.Mutex

	Path   string     `json:"path"`
	Status FileStatus `json:"status"`

	Headings int `json:"headings"`
	Figures  int `json:"figures"`
	Tables   int `json:"tables"`

	ContentHash string    `json:"content_hash,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`

	errors []string
}

func NewFileJob(path string) *FileJob {
	return &FileJob{
		Path:      path,
		Status:    StatusQueued,
		UpdatedAt: time.Now(),
	}
}

// SetStatus updates job status atomically.
func (j *FileJob) SetStatus(status FileStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.UpdatedAt = time.Now()
}

// SetContentHash records the hash of the rendered output.
func (j *FileJob) SetContentHash(hash string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ContentHash = hash
}

// AddError records an error.
func (j *FileJob) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.UpdatedAt = time.Now()
}

// AddCounts records numbered headings, figures and tables.
func (j *FileJob) AddCounts(headings, figures, tables int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Headings += headings
	j.Figures += figures
	j.Tables += tables
}

// FileSnapshot is a read-only, JSON-safe copy of job state.
type FileSnapshot struct {
	Path        string     `json:"path"`
	Status      FileStatus `json:"status"`
	Headings    int        `json:"headings"`
	Figures     int        `json:"figures"`
	Tables      int        `json:"tables"`
	ContentHash string     `json:"content_hash,omitempty"`
	Errors      []string   `json:"errors"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *FileJob) Snapshot() FileSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.errors...)
	return FileSnapshot{
		Path:        j.Path,
		Status:      j.Status,
		Headings:    j.Headings,
		Figures:     j.Figures,
		Tables:      j.Tables,
		ContentHash: j.ContentHash,
		Errors:      errs,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
