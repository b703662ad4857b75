package model

import "time"

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is one of the three known levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

type TaskType string

const (
	TaskAssignment TaskType = "assignment"
	TaskProject    TaskType = "project"
	TaskExam       TaskType = "exam"
)

// Task is a dated piece of coursework. DueDate is a YYYY-MM-DD calendar
// date and DueTime an optional HH:MM time of day.
//
// Priority is a cached projection: it equals ManualPriority when that is
// set, otherwise the classifier output at the time of the last change.
type Task struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Course         string     `json:"course"`
	DueDate        string     `json:"due_date"`
	DueTime        string     `json:"due_time,omitempty"`
	Type           TaskType   `json:"type"`
	Completed      bool       `json:"completed"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	Priority       Priority   `json:"priority"`
	ManualPriority *Priority  `json:"manual_priority,omitempty"`
	Subtasks       []Subtask  `json:"subtasks"`
	FromMoodle     bool       `json:"from_moodle"`
	ExternalID     *int64     `json:"external_id,omitempty"`
	Description    string     `json:"description"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Locked reports whether the task carries a manual priority override.
func (t Task) Locked() bool {
	return t.ManualPriority != nil
}

type Subtask struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Submission records one student's completion of a task, used by the
// teacher view.
type Submission struct {
	Student     string     `json:"student"`
	TaskID      int64      `json:"task_id"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
