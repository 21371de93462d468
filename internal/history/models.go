package history

import "time"

// Status is the lifecycle state of an upload run.
type Status string

const (
	StatusPlanned   Status = "planned"
	StatusUploading Status = "uploading"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRejected  Status = "rejected"
)

// Kind distinguishes book uploads from podcast imports.
type Kind string

const (
	KindBook    Kind = "book"
	KindPodcast Kind = "podcast"
)

// Run is one journalled upload.
type Run struct {
	ID               string
	Kind             Kind
	SourceDir        string
	Title            string
	CollectionID     int
	Status           Status
	LessonsTotal     int
	LessonsUploaded  int
	TimestampsFailed int
	ErrorMessage     string
	StartedAt        time.Time
	UpdatedAt        time.Time
	FinishedAt       *time.Time
}

// IsTerminal reports whether the run has finished.
func (r *Run) IsTerminal() bool {
	switch r.Status {
	case StatusCompleted, StatusFailed, StatusRejected:
		return true
	default:
		return false
	}
}

// LeftRemoteState reports whether the run stopped after creating a remote
// collection without completing, which needs manual cleanup.
func (r *Run) LeftRemoteState() bool {
	return r.CollectionID != 0 && r.Status != StatusCompleted
}
