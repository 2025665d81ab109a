package core

import "time"

// DomainKnowledge is the structured artifact produced by a KnowledgeBuilder
// for one (task, context path) pair. Response is opaque to the coordination
// core and passed through unmodified.
type DomainKnowledge struct {
	TaskID              string    `json:"task_id"`
	Query               string    `json:"query"`
	ContextPath         string    `json:"ctx_path"`
	CriticalSourcesRead []string  `json:"critical_sources_read,omitempty"`
	Response            any       `json:"response"`
	CreatedAt           time.Time `json:"created_at"`
}

// Task is one unit of work submitted to a run: a domain-knowledge query
// identified by a stable task id. The id keys the shared store's knowledge
// mapping; re-running the same id overwrites its slot.
type Task struct {
	ID    string `json:"id"`
	Query string `json:"query"`
}

// TaskStatus captures the terminal outcome of one task execution.
type TaskStatus string

const (
	// TaskStatusCompleted marks a task whose knowledge extraction succeeded.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusFailed marks a task whose snapshot, catalog or knowledge
	// build failed. The error text is preserved in ExecutionResult.Error.
	TaskStatusFailed TaskStatus = "failed"
)

// ExecutionResult records one task outcome in the shared store's append-only
// execution history.
type ExecutionResult struct {
	ID       string        `json:"id"`
	TaskID   string        `json:"task_id"`
	WorkerID string        `json:"worker_id,omitempty"`
	Status   TaskStatus    `json:"status"`
	Output   any           `json:"output,omitempty"`
	Error    string        `json:"error,omitempty"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
}
