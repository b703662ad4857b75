package model

import (
	"strconv"
	"time"
)

// Notification type constants
const (
	NotifTypeAssignment   = "assignment"
	NotifTypeExam         = "exam"
	NotifTypeAnnouncement = "announcement"
)

// Notification is an in-app alert. TaskID/ExamID correlate a generated
// notification with its source entity; announcements carry neither.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Course    string    `json:"course"`
	Type      string    `json:"type"`
	Priority  Priority  `json:"priority"`
	Time      string    `json:"time"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
	TaskID    *int64    `json:"task_id,omitempty"`
	ExamID    *int64    `json:"exam_id,omitempty"`
}

// CorrelationKey returns a key identifying the source entity, or "" for
// uncorrelated notifications.
func (n Notification) CorrelationKey() string {
	switch {
	case n.TaskID != nil:
		return "task-" + strconv.FormatInt(*n.TaskID, 10)
	case n.ExamID != nil:
		return "exam-" + strconv.FormatInt(*n.ExamID, 10)
	}
	return ""
}

type PushSubscription struct {
	ID         int64     `json:"id"`
	Endpoint   string    `json:"endpoint"`
	P256dhKey  string    `json:"p256dh_key"`
	AuthKey    string    `json:"auth_key"`
	DeviceName string    `json:"device_name"`
	CreatedAt  time.Time `json:"created_at"`
}
