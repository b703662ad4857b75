package model

import "time"

type UserType string

const (
	UserStudent UserType = "student"
	UserTeacher UserType = "teacher"
)

type User struct {
	Type  UserType `json:"type"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
}

// NotificationSettings reminder fields are lead times in hours.
type NotificationSettings struct {
	Enabled            bool `json:"enabled"`
	AssignmentReminder int  `json:"assignment_reminder"`
	ExamReminder       int  `json:"exam_reminder"`
	StudySuggestions   bool `json:"study_suggestions"`
}

type Settings struct {
	Notifications NotificationSettings `json:"notifications"`
	Theme         string               `json:"theme"`
	Language      string               `json:"language"`
}

// Snapshot is the full persisted planner state.
type Snapshot struct {
	User          User           `json:"user"`
	Tasks         []Task         `json:"tasks"`
	Classes       []ClassSession `json:"classes"`
	Exams         []Exam         `json:"exams"`
	Notifications []Notification `json:"notifications"`
	Challenges    []Challenge    `json:"challenges"`
	Badges        []Badge        `json:"badges"`
	Settings      Settings       `json:"settings"`
	Submissions   []Submission   `json:"submissions"`
	LastSync      *time.Time     `json:"last_sync,omitempty"`

	// Id counters. Ids are never handed out twice, so notifications and
	// submissions that name a deleted entity cannot attach to a new one.
	NextTaskID  int64 `json:"next_task_id"`
	NextClassID int64 `json:"next_class_id"`
	NextExamID  int64 `json:"next_exam_id"`
}
