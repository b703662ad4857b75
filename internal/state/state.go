// Package state holds the planner snapshot and the transitions that
// change it. Reduce is pure; Container serializes access and persistence.
package state

import (
	"errors"
	"time"

	"github.com/dukerupert/planner/internal/challenge"
	"github.com/dukerupert/planner/internal/model"
	"github.com/dukerupert/planner/internal/priority"
)

var (
	// ErrNotFound is returned when an action references an unknown id.
	ErrNotFound = errors.New("not found")
	// ErrInvalid is returned when an action carries unusable input.
	ErrInvalid = errors.New("invalid input")
)

// Action is one state transition.
type Action interface {
	apply(s *model.Snapshot, now time.Time) error
}

// Reduce applies a to a copy of s. On error the returned snapshot is the
// unchanged input.
func Reduce(s model.Snapshot, a Action, now time.Time) (model.Snapshot, error) {
	next := Clone(s)
	if err := a.apply(&next, now); err != nil {
		return s, err
	}
	return next, nil
}

// Clone copies every collection in s so the result can be mutated
// without affecting s.
func Clone(s model.Snapshot) model.Snapshot {
	out := s
	out.Tasks = make([]model.Task, len(s.Tasks))
	for i, t := range s.Tasks {
		t.Subtasks = append([]model.Subtask{}, t.Subtasks...)
		out.Tasks[i] = t
	}
	out.Classes = append([]model.ClassSession{}, s.Classes...)
	out.Exams = append([]model.Exam{}, s.Exams...)
	out.Notifications = append([]model.Notification{}, s.Notifications...)
	out.Challenges = append([]model.Challenge{}, s.Challenges...)
	out.Badges = append([]model.Badge{}, s.Badges...)
	out.Submissions = append([]model.Submission{}, s.Submissions...)
	return out
}

// DefaultSettings returns the settings of a fresh planner.
func DefaultSettings() model.Settings {
	return model.Settings{
		Notifications: model.NotificationSettings{
			Enabled:            true,
			AssignmentReminder: 72,
			ExamReminder:       72,
			StudySuggestions:   true,
		},
		Theme:    "light",
		Language: "es",
	}
}

// Default returns the seed snapshot with priorities derived at now.
func Default(now time.Time) model.Snapshot {
	tasks := []model.Task{
		{
			ID:          1,
			Title:       "Proyecto Final de Programación Web",
			Course:      "Programación Web",
			DueDate:     "2024-01-20",
			DueTime:     "23:59",
			Type:        model.TaskProject,
			Description: "Desarrollar una aplicación web completa con React",
			FromMoodle:  true,
			CreatedAt:   time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:          2,
			Title:       "Ejercicios de Base de Datos",
			Course:      "Bases de Datos",
			DueDate:     "2024-01-18",
			DueTime:     "18:00",
			Type:        model.TaskAssignment,
			Description: "Resolver 10 ejercicios de consultas SQL",
			FromMoodle:  true,
			CreatedAt:   time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:          3,
			Title:       "Tarea de Matemáticas",
			Course:      "Cálculo I",
			DueDate:     "2024-01-15",
			DueTime:     "12:00",
			Type:        model.TaskAssignment,
			Completed:   true,
			Description: "Resolver problemas de derivadas",
			CreatedAt:   time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
		},
	}
	for i := range tasks {
		tasks[i].Subtasks = []model.Subtask{}
	}

	challenges := challenge.Catalog()[:1]
	challenges[0].Progress = 5

	return model.Snapshot{
		User: model.User{
			Type:  model.UserStudent,
			Name:  "Santiago Morales",
			Email: "santiago.morales@icesi.edu.co",
		},
		Tasks: priority.Refresh(tasks, now),
		Classes: []model.ClassSession{
			{ID: 1, Name: "Programación Web", Time: "08:00", Room: "A-201", Professor: "Dr. García", Day: "monday"},
			{ID: 2, Name: "Bases de Datos", Time: "10:00", Room: "B-105", Professor: "Dra. López", Day: "monday"},
			{ID: 3, Name: "Matemáticas", Time: "14:00", Room: "C-301", Professor: "Dr. Martínez", Day: "monday", Completed: true},
		},
		Exams: []model.Exam{
			{ID: 1, Subject: "Cálculo I", Time: "09:00", Duration: "2 horas", Room: "A-301", Date: "2024-01-22"},
			{ID: 2, Subject: "Física", Time: "15:00", Duration: "1.5 horas", Room: "B-201", Date: "2024-01-25"},
		},
		Notifications: []model.Notification{},
		Challenges:    challenges,
		Badges:        challenge.DefaultBadges(),
		Settings:      DefaultSettings(),
		Submissions:   []model.Submission{},
		NextTaskID:    4,
		NextClassID:   4,
		NextExamID:    3,
	}
}

// normalize fills nil collections left by older or hand-edited snapshots,
// raises the id counters past every stored id and re-derives cached
// priorities.
func normalize(s model.Snapshot, now time.Time) model.Snapshot {
	if s.Tasks == nil {
		s.Tasks = []model.Task{}
	}
	for i := range s.Tasks {
		if s.Tasks[i].Subtasks == nil {
			s.Tasks[i].Subtasks = []model.Subtask{}
		}
	}
	if s.Classes == nil {
		s.Classes = []model.ClassSession{}
	}
	if s.Exams == nil {
		s.Exams = []model.Exam{}
	}
	if s.Notifications == nil {
		s.Notifications = []model.Notification{}
	}
	if s.Challenges == nil {
		s.Challenges = []model.Challenge{}
	}
	if s.Badges == nil {
		s.Badges = challenge.DefaultBadges()
	}
	if s.Submissions == nil {
		s.Submissions = []model.Submission{}
	}
	if s.User.Type == "" {
		s.User.Type = model.UserStudent
	}
	if s.Settings.Language == "" {
		s.Settings.Language = "es"
	}
	for _, t := range s.Tasks {
		s.NextTaskID = max(s.NextTaskID, t.ID+1)
	}
	for _, c := range s.Classes {
		s.NextClassID = max(s.NextClassID, c.ID+1)
	}
	for _, e := range s.Exams {
		s.NextExamID = max(s.NextExamID, e.ID+1)
	}
	s.Tasks = priority.Refresh(s.Tasks, now)
	return s
}
