package scan

import "time"

// Event statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Event announces the end of a scan to Redis and message brokers.
type Event struct {
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	FinishedAt time.Time `json:"finished_at"`
	Summary    *Summary  `json:"summary,omitempty"`
	Error      *string   `json:"error,omitempty"`
}

// NewEvent describes a finished scan. summary may be nil when the scan failed
// before producing a result.
func NewEvent(name string, summary *Summary, err error) Event {
	e := Event{
		Name:       name,
		Status:     StatusSuccess,
		FinishedAt: time.Now(),
		Summary:    summary,
	}
	if summary != nil && !summary.FinishedAt.IsZero() {
		e.FinishedAt = summary.FinishedAt
	}
	if err != nil {
		e.Status = StatusFailed
		msg := err.Error()
		e.Error = &msg
	}
	return e
}
