// Package progress provides thread-safe progress tracking for long-running
// acquisition and download operations. The core only writes through the Sink
// interface; consumers poll Tracker snapshots on their own schedule.
package progress

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status of a tracked task.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// Sink receives fire-and-forget progress updates from the core.
type Sink interface {
	CreateTask(id string, total int, description string)
	UpdateTask(id string, current int)
	IncrementTask(id string, amount int)
	CompleteTask(id string, success bool, errMessage string)
}

// Nop is a Sink that discards all updates.
type Nop struct{}

func (Nop) CreateTask(string, int, string)    {}
func (Nop) UpdateTask(string, int)            {}
func (Nop) IncrementTask(string, int)         {}
func (Nop) CompleteTask(string, bool, string) {}

// Task is a point-in-time snapshot of one tracked operation.
type Task struct {
	ID          string
	Total       int
	Current     int
	Description string
	Status      Status
	ErrMessage  string
	StartedAt   time.Time
	CompletedAt time.Time
}

// Percentage returns completion in [0,100].
func (t Task) Percentage() int {
	if t.Total == 0 {
		if t.Status == StatusCompleted {
			return 100
		}
		return 0
	}
	return int(float64(t.Current) / float64(t.Total) * 100)
}

// Elapsed returns the task runtime so far, or total runtime once finished.
func (t Task) Elapsed() time.Duration {
	end := t.CompletedAt
	if end.IsZero() {
		end = time.Now()
	}
	return end.Sub(t.StartedAt)
}

// Tracker is a thread-safe Sink implementation that keeps task state for
// polling consumers.
type Tracker struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{tasks: make(map[string]*Task)}
}

// CreateTask registers a task. An empty id is replaced with a generated one.
func (tr *Tracker) CreateTask(id string, total int, description string) {
	if id == "" {
		id = uuid.NewString()
	}
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.tasks[id] = &Task{
		ID:          id,
		Total:       total,
		Description: description,
		Status:      StatusInProgress,
		StartedAt:   time.Now(),
	}
}

// UpdateTask sets the current progress value, capped at the task total.
func (tr *Tracker) UpdateTask(id string, current int) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	t, ok := tr.tasks[id]
	if !ok {
		return
	}
	t.Current = min(current, t.Total)
}

// IncrementTask advances progress by amount, capped at the task total.
func (tr *Tracker) IncrementTask(id string, amount int) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	t, ok := tr.tasks[id]
	if !ok {
		return
	}
	t.Current = min(t.Current+amount, t.Total)
}

// CompleteTask marks a task finished. On success the task snaps to 100%.
func (tr *Tracker) CompleteTask(id string, success bool, errMessage string) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	t, ok := tr.tasks[id]
	if !ok {
		return
	}
	t.CompletedAt = time.Now()
	t.ErrMessage = errMessage
	if success {
		t.Status = StatusCompleted
		t.Current = t.Total
	} else if errMessage == "cancelled" {
		t.Status = StatusCancelled
	} else {
		t.Status = StatusFailed
	}
}

// Task returns a snapshot of one task.
func (tr *Tracker) Task(id string) (Task, bool) {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	t, ok := tr.tasks[id]
	if !ok {
		return Task{}, false
	}
	return *t, true
}

// Tasks returns snapshots of all tracked tasks.
func (tr *Tracker) Tasks() []Task {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	out := make([]Task, 0, len(tr.tasks))
	for _, t := range tr.tasks {
		out = append(out, *t)
	}
	return out
}

// ClearFinished drops completed, failed and cancelled tasks.
func (tr *Tracker) ClearFinished() {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	for id, t := range tr.tasks {
		if t.Status != StatusInProgress {
			delete(tr.tasks, id)
		}
	}
}
