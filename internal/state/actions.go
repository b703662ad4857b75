package state

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dukerupert/planner/internal/challenge"
	"github.com/dukerupert/planner/internal/lms"
	"github.com/dukerupert/planner/internal/model"
	"github.com/dukerupert/planner/internal/priority"
)

// Tasks

// AddTask appends a task with a fresh id. ID, Completed and
// Subtasks on Task are ignored.
type AddTask struct{ Task model.Task }

func (a AddTask) apply(s *model.Snapshot, now time.Time) error {
	t := a.Task
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return fmt.Errorf("title is required: %w", ErrInvalid)
	}
	if t.ManualPriority != nil && !t.ManualPriority.Valid() {
		return fmt.Errorf("priority %q: %w", *t.ManualPriority, ErrInvalid)
	}
	if t.Type == "" {
		t.Type = model.TaskAssignment
	}
	t.ID = takeTaskID(s)
	t.Completed = false
	t.CompletedAt = nil
	t.Subtasks = []model.Subtask{}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	s.Tasks = append(s.Tasks, priority.Apply(t, now))
	return nil
}

// UpdateTask replaces the editable fields of an existing task. Completion,
// subtasks, the priority lock and import metadata are kept.
type UpdateTask struct{ Task model.Task }

func (a UpdateTask) apply(s *model.Snapshot, now time.Time) error {
	title := strings.TrimSpace(a.Task.Title)
	if title == "" {
		return fmt.Errorf("title is required: %w", ErrInvalid)
	}
	return withTask(s, a.Task.ID, func(t *model.Task) error {
		t.Title = title
		t.Course = a.Task.Course
		t.DueDate = a.Task.DueDate
		t.DueTime = a.Task.DueTime
		t.Description = a.Task.Description
		if a.Task.Type != "" {
			t.Type = a.Task.Type
		}
		*t = priority.Apply(*t, now)
		return nil
	})
}

type DeleteTask struct{ ID int64 }

func (a DeleteTask) apply(s *model.Snapshot, _ time.Time) error {
	for i, t := range s.Tasks {
		if t.ID == a.ID {
			s.Tasks = append(s.Tasks[:i], s.Tasks[i+1:]...)
			s.Notifications = slices.DeleteFunc(s.Notifications, func(n model.Notification) bool {
				return n.TaskID != nil && *n.TaskID == a.ID
			})
			s.Submissions = slices.DeleteFunc(s.Submissions, func(sub model.Submission) bool {
				return sub.TaskID == a.ID
			})
			return nil
		}
	}
	return taskNotFound(a.ID)
}

// ToggleTask flips completion, stamping or clearing CompletedAt.
type ToggleTask struct{ ID int64 }

func (a ToggleTask) apply(s *model.Snapshot, now time.Time) error {
	return withTask(s, a.ID, func(t *model.Task) error {
		t.Completed = !t.Completed
		if t.Completed {
			at := now
			t.CompletedAt = &at
		} else {
			t.CompletedAt = nil
		}
		*t = priority.Apply(*t, now)
		return nil
	})
}

// LockPriority pins a task's priority to Level until unlocked.
type LockPriority struct {
	ID    int64
	Level model.Priority
}

func (a LockPriority) apply(s *model.Snapshot, now time.Time) error {
	if !a.Level.Valid() {
		return fmt.Errorf("priority %q: %w", a.Level, ErrInvalid)
	}
	return withTask(s, a.ID, func(t *model.Task) error {
		level := a.Level
		t.ManualPriority = &level
		*t = priority.Apply(*t, now)
		return nil
	})
}

// UnlockPriority clears the override and re-derives the priority.
type UnlockPriority struct{ ID int64 }

func (a UnlockPriority) apply(s *model.Snapshot, now time.Time) error {
	return withTask(s, a.ID, func(t *model.Task) error {
		t.ManualPriority = nil
		*t = priority.Apply(*t, now)
		return nil
	})
}

// RefreshPriorities re-derives every cached priority at the current time.
type RefreshPriorities struct{}

func (RefreshPriorities) apply(s *model.Snapshot, now time.Time) error {
	s.Tasks = priority.Refresh(s.Tasks, now)
	return nil
}

// Subtasks

type AddSubtask struct {
	TaskID int64
	Title  string
}

func (a AddSubtask) apply(s *model.Snapshot, _ time.Time) error {
	title := strings.TrimSpace(a.Title)
	if title == "" {
		return fmt.Errorf("title is required: %w", ErrInvalid)
	}
	return withTask(s, a.TaskID, func(t *model.Task) error {
		var next int64 = 1
		for _, st := range t.Subtasks {
			if st.ID >= next {
				next = st.ID + 1
			}
		}
		t.Subtasks = append(t.Subtasks, model.Subtask{ID: next, Title: title})
		return nil
	})
}

type UpdateSubtask struct {
	TaskID    int64
	SubtaskID int64
	Title     string
}

func (a UpdateSubtask) apply(s *model.Snapshot, _ time.Time) error {
	title := strings.TrimSpace(a.Title)
	if title == "" {
		return fmt.Errorf("title is required: %w", ErrInvalid)
	}
	return withSubtask(s, a.TaskID, a.SubtaskID, func(st *model.Subtask) {
		st.Title = title
	})
}

type DeleteSubtask struct {
	TaskID    int64
	SubtaskID int64
}

func (a DeleteSubtask) apply(s *model.Snapshot, _ time.Time) error {
	return withTask(s, a.TaskID, func(t *model.Task) error {
		for i, st := range t.Subtasks {
			if st.ID == a.SubtaskID {
				t.Subtasks = append(t.Subtasks[:i], t.Subtasks[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("subtask %d: %w", a.SubtaskID, ErrNotFound)
	})
}

type ToggleSubtask struct {
	TaskID    int64
	SubtaskID int64
}

func (a ToggleSubtask) apply(s *model.Snapshot, now time.Time) error {
	return withSubtask(s, a.TaskID, a.SubtaskID, func(st *model.Subtask) {
		st.Completed = !st.Completed
		if st.Completed {
			at := now
			st.CompletedAt = &at
		} else {
			st.CompletedAt = nil
		}
	})
}

// Classes

type AddClass struct{ Class model.ClassSession }

func (a AddClass) apply(s *model.Snapshot, _ time.Time) error {
	c := a.Class
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return fmt.Errorf("name is required: %w", ErrInvalid)
	}
	c.ID = takeClassID(s)
	c.Completed = false
	s.Classes = append(s.Classes, c)
	return nil
}

type UpdateClass struct{ Class model.ClassSession }

func (a UpdateClass) apply(s *model.Snapshot, _ time.Time) error {
	name := strings.TrimSpace(a.Class.Name)
	if name == "" {
		return fmt.Errorf("name is required: %w", ErrInvalid)
	}
	for i := range s.Classes {
		c := &s.Classes[i]
		if c.ID != a.Class.ID {
			continue
		}
		c.Name = name
		c.Time = a.Class.Time
		c.Room = a.Class.Room
		c.Professor = a.Class.Professor
		c.Day = a.Class.Day
		c.Date = a.Class.Date
		return nil
	}
	return fmt.Errorf("class %d: %w", a.Class.ID, ErrNotFound)
}

type DeleteClass struct{ ID int64 }

func (a DeleteClass) apply(s *model.Snapshot, _ time.Time) error {
	for i, c := range s.Classes {
		if c.ID == a.ID {
			s.Classes = append(s.Classes[:i], s.Classes[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("class %d: %w", a.ID, ErrNotFound)
}

// ToggleClass flips the single attendance flag. Weekly sessions share it
// across occurrences.
type ToggleClass struct{ ID int64 }

func (a ToggleClass) apply(s *model.Snapshot, _ time.Time) error {
	for i := range s.Classes {
		if s.Classes[i].ID == a.ID {
			s.Classes[i].Completed = !s.Classes[i].Completed
			return nil
		}
	}
	return fmt.Errorf("class %d: %w", a.ID, ErrNotFound)
}

// Exams

type AddExam struct{ Exam model.Exam }

func (a AddExam) apply(s *model.Snapshot, _ time.Time) error {
	e := a.Exam
	e.Subject = strings.TrimSpace(e.Subject)
	if e.Subject == "" {
		return fmt.Errorf("subject is required: %w", ErrInvalid)
	}
	e.ID = takeExamID(s)
	e.Completed = false
	s.Exams = append(s.Exams, e)
	return nil
}

type UpdateExam struct{ Exam model.Exam }

func (a UpdateExam) apply(s *model.Snapshot, _ time.Time) error {
	subject := strings.TrimSpace(a.Exam.Subject)
	if subject == "" {
		return fmt.Errorf("subject is required: %w", ErrInvalid)
	}
	for i := range s.Exams {
		e := &s.Exams[i]
		if e.ID != a.Exam.ID {
			continue
		}
		e.Subject = subject
		e.Time = a.Exam.Time
		e.Duration = a.Exam.Duration
		e.Room = a.Exam.Room
		e.Date = a.Exam.Date
		return nil
	}
	return fmt.Errorf("exam %d: %w", a.Exam.ID, ErrNotFound)
}

type DeleteExam struct{ ID int64 }

func (a DeleteExam) apply(s *model.Snapshot, _ time.Time) error {
	for i, e := range s.Exams {
		if e.ID == a.ID {
			s.Exams = append(s.Exams[:i], s.Exams[i+1:]...)
			s.Notifications = slices.DeleteFunc(s.Notifications, func(n model.Notification) bool {
				return n.ExamID != nil && *n.ExamID == a.ID
			})
			return nil
		}
	}
	return fmt.Errorf("exam %d: %w", a.ID, ErrNotFound)
}

type ToggleExam struct{ ID int64 }

func (a ToggleExam) apply(s *model.Snapshot, _ time.Time) error {
	for i := range s.Exams {
		if s.Exams[i].ID == a.ID {
			s.Exams[i].Completed = !s.Exams[i].Completed
			return nil
		}
	}
	return fmt.Errorf("exam %d: %w", a.ID, ErrNotFound)
}

// Notifications

// AddNotifications prepends notifications, newest first.
type AddNotifications struct{ Notifications []model.Notification }

func (a AddNotifications) apply(s *model.Snapshot, _ time.Time) error {
	if len(a.Notifications) == 0 {
		return nil
	}
	added := make([]model.Notification, 0, len(a.Notifications)+len(s.Notifications))
	for i := len(a.Notifications) - 1; i >= 0; i-- {
		added = append(added, a.Notifications[i])
	}
	s.Notifications = append(added, s.Notifications...)
	return nil
}

type MarkNotificationRead struct{ ID string }

func (a MarkNotificationRead) apply(s *model.Snapshot, _ time.Time) error {
	for i := range s.Notifications {
		if s.Notifications[i].ID == a.ID {
			s.Notifications[i].Read = true
			return nil
		}
	}
	return fmt.Errorf("notification %s: %w", a.ID, ErrNotFound)
}

type MarkAllNotificationsRead struct{}

func (MarkAllNotificationsRead) apply(s *model.Snapshot, _ time.Time) error {
	for i := range s.Notifications {
		s.Notifications[i].Read = true
	}
	return nil
}

type DeleteNotification struct{ ID string }

func (a DeleteNotification) apply(s *model.Snapshot, _ time.Time) error {
	for i, n := range s.Notifications {
		if n.ID == a.ID {
			s.Notifications = append(s.Notifications[:i], s.Notifications[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("notification %s: %w", a.ID, ErrNotFound)
}

// Challenges and badges

// EvaluateChallenges recomputes challenge progress from the task history
// and flips the badges of newly completed challenges.
type EvaluateChallenges struct{}

func (EvaluateChallenges) apply(s *model.Snapshot, now time.Time) error {
	s.Challenges, s.Badges, _ = challenge.EvaluateAll(s.Challenges, s.Badges, s.Tasks, now)
	return nil
}

type JoinChallenge struct{ ID int64 }

func (a JoinChallenge) apply(s *model.Snapshot, _ time.Time) error {
	for _, c := range s.Challenges {
		if c.ID == a.ID {
			return nil
		}
	}
	joined, ok := challenge.Join(s.Challenges, a.ID)
	if !ok {
		return fmt.Errorf("challenge %d: %w", a.ID, ErrNotFound)
	}
	s.Challenges = joined
	return nil
}

// EarnBadge marks a badge earned. Earning it again is a no-op.
type EarnBadge struct{ Name string }

func (a EarnBadge) apply(s *model.Snapshot, _ time.Time) error {
	for _, b := range s.Badges {
		if b.Name == a.Name {
			s.Badges, _ = challenge.EarnBadge(s.Badges, a.Name)
			return nil
		}
	}
	return fmt.Errorf("badge %q: %w", a.Name, ErrNotFound)
}

// Settings and user

type UpdateSettings struct{ Settings model.Settings }

func (a UpdateSettings) apply(s *model.Snapshot, _ time.Time) error {
	n := a.Settings.Notifications
	if n.AssignmentReminder < 0 || n.ExamReminder < 0 {
		return fmt.Errorf("reminder hours must not be negative: %w", ErrInvalid)
	}
	next := a.Settings
	if next.Theme == "" {
		next.Theme = s.Settings.Theme
	}
	if next.Language == "" {
		next.Language = s.Settings.Language
	}
	s.Settings = next
	return nil
}

type SetUserType struct{ Type model.UserType }

func (a SetUserType) apply(s *model.Snapshot, _ time.Time) error {
	if a.Type != model.UserStudent && a.Type != model.UserTeacher {
		return fmt.Errorf("user type %q: %w", a.Type, ErrInvalid)
	}
	s.User.Type = a.Type
	return nil
}

// Sync and submissions

// ApplySync inserts the fetched tasks not yet imported and records At as
// the last sync time, in one transition.
type ApplySync struct {
	Fetched []model.Task
	At      time.Time
}

func (a ApplySync) apply(s *model.Snapshot, now time.Time) error {
	for _, t := range lms.Merge(s.Tasks, a.Fetched) {
		t.ID = takeTaskID(s)
		t.Completed = false
		t.CompletedAt = nil
		if t.Subtasks == nil {
			t.Subtasks = []model.Subtask{}
		}
		if t.Type == "" {
			t.Type = model.TaskAssignment
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		s.Tasks = append(s.Tasks, priority.Apply(t, now))
	}
	at := a.At
	s.LastSync = &at
	return nil
}

// RecordSubmission stores or replaces one student's submission for a
// task.
type RecordSubmission struct{ Submission model.Submission }

func (a RecordSubmission) apply(s *model.Snapshot, _ time.Time) error {
	sub := a.Submission
	sub.Student = strings.TrimSpace(sub.Student)
	if sub.Student == "" {
		return fmt.Errorf("student is required: %w", ErrInvalid)
	}
	found := false
	for _, t := range s.Tasks {
		if t.ID == sub.TaskID {
			found = true
			break
		}
	}
	if !found {
		return taskNotFound(sub.TaskID)
	}
	for i, existing := range s.Submissions {
		if existing.Student == sub.Student && existing.TaskID == sub.TaskID {
			s.Submissions[i] = sub
			return nil
		}
	}
	s.Submissions = append(s.Submissions, sub)
	return nil
}

func takeTaskID(s *model.Snapshot) int64 {
	var top int64
	for _, t := range s.Tasks {
		top = max(top, t.ID)
	}
	return takeID(&s.NextTaskID, top)
}

func takeClassID(s *model.Snapshot) int64 {
	var top int64
	for _, c := range s.Classes {
		top = max(top, c.ID)
	}
	return takeID(&s.NextClassID, top)
}

func takeExamID(s *model.Snapshot) int64 {
	var top int64
	for _, e := range s.Exams {
		top = max(top, e.ID)
	}
	return takeID(&s.NextExamID, top)
}

// takeID returns the counter value, raised past maxID if a snapshot from
// before the counters existed is loaded, and advances the counter.
func takeID(counter *int64, maxID int64) int64 {
	id := max(*counter, maxID+1)
	*counter = id + 1
	return id
}

func taskNotFound(id int64) error {
	return fmt.Errorf("task %d: %w", id, ErrNotFound)
}

func withTask(s *model.Snapshot, id int64, fn func(*model.Task) error) error {
	for i := range s.Tasks {
		if s.Tasks[i].ID == id {
			return fn(&s.Tasks[i])
		}
	}
	return taskNotFound(id)
}

func withSubtask(s *model.Snapshot, taskID, subtaskID int64, fn func(*model.Subtask)) error {
	return withTask(s, taskID, func(t *model.Task) error {
		for i := range t.Subtasks {
			if t.Subtasks[i].ID == subtaskID {
				fn(&t.Subtasks[i])
				return nil
			}
		}
		return fmt.Errorf("subtask %d: %w", subtaskID, ErrNotFound)
	})
}
