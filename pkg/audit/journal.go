// Package audit writes a JSON-lines journal of fan-out runs.
package audit

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	ResultStarted  = "started"
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultFinished = "finished"
	ResultNote     = "note"
)

// Journal records one JSON event per line. A nil *Journal discards everything.
type Journal struct {
	mu     sync.Mutex
	writer io.Writer
	closer io.Closer
	runID  string
	now    func() time.Time
}

// Event represents a single journal entry.
type Event struct {
	Timestamp      time.Time              `json:"timestamp"`
	Level          string                 `json:"level"`
	Operation      string                 `json:"operation"`
	RunID          string                 `json:"run_id"`
	Profile        string                 `json:"profile,omitempty"`
	Region         string                 `json:"region,omitempty"`
	Result         string                 `json:"result"`
	Duration       string                 `json:"duration,omitempty"`
	Error          string                 `json:"error,omitempty"`
	AdditionalData map[string]interface{} `json:"additional_data,omitempty"`
}

// NewJournal creates a journal writing to writer. An empty runID gets a fresh UUID.
func NewJournal(writer io.Writer, runID string) *Journal {
	if writer == nil {
		writer = io.Discard
	}
	if runID == "" {
		runID = uuid.New().String()
	}

	return &Journal{
		writer: writer,
		runID:  runID,
		now:    time.Now,
	}
}

// OpenJournal appends to the file at path, creating parent directories.
func OpenJournal(path, runID string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}

	j := NewJournal(f, runID)
	j.closer = f
	return j, nil
}

// RunID returns the identifier stamped on every event.
func (j *Journal) RunID() string {
	if j == nil {
		return ""
	}
	return j.runID
}

// RunStarted records the start of a fan-out over tasks parameter combinations.
func (j *Journal) RunStarted(operation string, tasks int) {
	j.write(Event{
		Level:          "info",
		Operation:      operation,
		Result:         ResultStarted,
		AdditionalData: map[string]interface{}{"tasks": tasks},
	})
}

// RunFinished records the end of a run with its success and failure counts.
func (j *Journal) RunFinished(operation string, succeeded, failed int, d time.Duration) {
	level := "info"
	if failed > 0 {
		level = "warn"
	}
	j.write(Event{
		Level:     level,
		Operation: operation,
		Result:    ResultFinished,
		Duration:  d.String(),
		AdditionalData: map[string]interface{}{
			"succeeded": succeeded,
			"failed":    failed,
		},
	})
}

// LogTask records the outcome of one task invocation.
func (j *Journal) LogTask(operation, profile, region string, d time.Duration, err error) {
	event := Event{
		Level:     "info",
		Operation: operation,
		Profile:   profile,
		Region:    region,
		Result:    ResultSuccess,
		Duration:  d.String(),
	}

	if err != nil {
		event.Level = "error"
		event.Result = ResultFailure
		event.Error = err.Error()
	}

	j.write(event)
}

// Note attaches data to a task's location without recording an outcome.
// Tasks reach the journal through FromContext.
func (j *Journal) Note(operation, profile, region string, data map[string]interface{}) {
	j.write(Event{
		Level:          "info",
		Operation:      operation,
		Profile:        profile,
		Region:         region,
		Result:         ResultNote,
		AdditionalData: data,
	})
}

// Close closes the underlying file when the journal owns one.
func (j *Journal) Close() error {
	if j == nil || j.closer == nil {
		return nil
	}
	return j.closer.Close()
}

func (j *Journal) write(event Event) {
	if j == nil {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	event.Timestamp = j.now().UTC()
	event.RunID = j.runID
	_ = json.NewEncoder(j.writer).Encode(event)
}
