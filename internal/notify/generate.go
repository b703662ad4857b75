package notify

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/planner/internal/model"
	"github.com/dukerupert/planner/internal/priority"
	"github.com/dukerupert/planner/internal/recurrence"
)

const (
	defaultLeadDays = 3
	imminentHours   = 2
)

// Reminders holds the "due soon" lead times in whole days.
type Reminders struct {
	AssignmentLeadDays int
	ExamLeadDays       int
}

// DefaultReminders matches the stock 72-hour settings.
func DefaultReminders() Reminders {
	return Reminders{AssignmentLeadDays: defaultLeadDays, ExamLeadDays: defaultLeadDays}
}

// RemindersFrom converts the hour-based settings into lead days. Values
// below one day round up to one; unset values use the default.
func RemindersFrom(s model.NotificationSettings) Reminders {
	return Reminders{
		AssignmentLeadDays: leadDays(s.AssignmentReminder),
		ExamLeadDays:       leadDays(s.ExamReminder),
	}
}

func leadDays(hours int) int {
	if hours <= 0 {
		return defaultLeadDays
	}
	days := hours / 24
	if days < 1 {
		days = 1
	}
	return days
}

// Generate derives new alerts for pending tasks and exams. A candidate is
// dropped when existing, or an earlier candidate, already covers the same
// task or exam.
func Generate(tasks []model.Task, exams []model.Exam, existing []model.Notification, now time.Time, r Reminders) []model.Notification {
	seen := make(map[string]bool, len(existing))
	for _, n := range existing {
		if key := n.CorrelationKey(); key != "" {
			seen[key] = true
		}
	}

	created := []model.Notification{}
	add := func(n model.Notification) {
		key := n.CorrelationKey()
		if seen[key] {
			return
		}
		seen[key] = true
		created = append(created, n)
	}

	for _, t := range tasks {
		if t.Completed {
			continue
		}
		if n, ok := forTask(t, now, r); ok {
			add(n)
		}
	}
	for _, e := range exams {
		if e.Completed {
			continue
		}
		if n, ok := forExam(e, now, r); ok {
			add(n)
		}
	}
	return created
}

func forTask(t model.Task, now time.Time, r Reminders) (model.Notification, bool) {
	due, err := priority.DueAt(t, now.Location())
	if err != nil {
		return model.Notification{}, false
	}
	clock := t.DueTime
	if clock == "" {
		clock = recurrence.EndOfDay
	}

	id := t.ID
	n := model.Notification{
		ID:        uuid.New().String(),
		Course:    t.Course,
		Type:      string(t.Type),
		CreatedAt: now,
		TaskID:    &id,
	}
	if n.Type == "" {
		n.Type = model.NotifTypeAssignment
	}

	hours := priority.HoursUntil(due, now)
	days := recurrence.DaysBetween(now, due)
	switch {
	case hours > 0 && hours <= imminentHours:
		n.Title = fmt.Sprintf("Entrega hoy %s", clock)
		n.Priority = model.PriorityHigh
		n.Time = fmt.Sprintf("%d horas restantes", int(hours))
	case days == 1:
		n.Title = fmt.Sprintf("Entrega mañana %s", clock)
		n.Priority = model.PriorityMedium
		n.Time = "Mañana"
	case days > 0 && days <= r.AssignmentLeadDays:
		n.Title = fmt.Sprintf("Entrega en %d días", days)
		n.Priority = model.PriorityLow
		n.Time = fmt.Sprintf("%d días", days)
	default:
		return model.Notification{}, false
	}
	return n, true
}

func forExam(e model.Exam, now time.Time, r Reminders) (model.Notification, bool) {
	date, err := recurrence.ParseDate(e.Date, now.Location())
	if err != nil {
		return model.Notification{}, false
	}

	id := e.ID
	n := model.Notification{
		ID:        uuid.New().String(),
		Course:    e.Subject,
		Type:      model.NotifTypeExam,
		CreatedAt: now,
		ExamID:    &id,
	}

	days := recurrence.DaysBetween(now, date)
	switch {
	case days == 0:
		n.Title = fmt.Sprintf("Examen hoy %s", e.Time)
		n.Priority = model.PriorityHigh
		n.Time = "Hoy"
	case days == 1:
		n.Title = fmt.Sprintf("Examen mañana %s", e.Time)
		n.Priority = model.PriorityHigh
		n.Time = "Mañana"
	case days > 0 && days <= r.ExamLeadDays:
		n.Title = fmt.Sprintf("Examen en %d días", days)
		n.Priority = model.PriorityMedium
		n.Time = fmt.Sprintf("%d días", days)
	default:
		return model.Notification{}, false
	}
	return n, true
}

// Announcement builds an uncorrelated notification. Announcements are
// never deduplicated.
func Announcement(title, course string, level model.Priority, now time.Time) model.Notification {
	if !level.Valid() {
		level = model.PriorityMedium
	}
	return model.Notification{
		ID:        uuid.New().String(),
		Title:     title,
		Course:    course,
		Type:      model.NotifTypeAnnouncement,
		Priority:  level,
		Time:      "Ahora",
		CreatedAt: now,
	}
}

// ShouldAlert reports whether n should also be surfaced as a platform
// alert.
func ShouldAlert(n model.Notification, s model.NotificationSettings) bool {
	return s.Enabled && n.Priority == model.PriorityHigh && !n.Read
}
