package runs

import "time"

// Status captures the lifecycle of a recorded run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Run is one mashup attempt as recorded in history.
type Run struct {
	ID           string
	Origin       string
	Mode         string
	Performer    string
	Count        int
	TrimSeconds  int
	OutputPath   string
	Recipient    string
	Status       Status
	ErrorKind    string
	ErrorMessage string
	Clips        int
	Skipped      int
	Duration     time.Duration
	CreatedAt    time.Time
	FinishedAt   *time.Time
}

// Outcome is the terminal state reported when a run ends.
type Outcome struct {
	Err          error
	ErrorKind    string
	ErrorMessage string
	Clips        int
	Skipped      int
	Duration     time.Duration
}

// Elapsed returns how long the run took, or how long it has been running.
func (r Run) Elapsed(now time.Time) time.Duration {
	if r.FinishedAt != nil {
		return r.FinishedAt.Sub(r.CreatedAt)
	}
	return now.Sub(r.CreatedAt)
}

// View is the serialised form of a run shared by the CLI and HTTP API.
type View struct {
	ID           string     `json:"id" yaml:"id"`
	Origin       string     `json:"origin" yaml:"origin"`
	Mode         string     `json:"mode" yaml:"mode"`
	Performer    string     `json:"performer,omitempty" yaml:"performer,omitempty"`
	Count        int        `json:"count,omitempty" yaml:"count,omitempty"`
	TrimSeconds  int        `json:"trim_seconds" yaml:"trim_seconds"`
	OutputPath   string     `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	Status       string     `json:"status" yaml:"status"`
	ErrorKind    string     `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	Clips        int        `json:"clips" yaml:"clips"`
	Skipped      int        `json:"skipped" yaml:"skipped"`
	DurationSecs float64    `json:"duration_seconds" yaml:"duration_seconds"`
	CreatedAt    time.Time  `json:"created_at" yaml:"created_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
}

// NewView converts a run for JSON or YAML output. The recipient address is omitted.
func NewView(run Run) View {
	view := View{
		ID:           run.ID,
		Origin:       run.Origin,
		Mode:         run.Mode,
		Performer:    run.Performer,
		Count:        run.Count,
		TrimSeconds:  run.TrimSeconds,
		OutputPath:   run.OutputPath,
		Status:       string(run.Status),
		ErrorKind:    run.ErrorKind,
		ErrorMessage: run.ErrorMessage,
		Clips:        run.Clips,
		Skipped:      run.Skipped,
		DurationSecs: run.Duration.Seconds(),
		CreatedAt:    run.CreatedAt.UTC(),
	}
	if run.FinishedAt != nil {
		finished := run.FinishedAt.UTC()
		view.FinishedAt = &finished
	}
	return view
}
