package lms

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/planner/internal/model"
	"github.com/dukerupert/planner/internal/recurrence"
)

const (
	defaultExamRoom  = "A-301"
	defaultProfessor = "Dr. García"
)

// Source fetches one batch of records from the learning platform.
type Source interface {
	Fetch(ctx context.Context) (Batch, error)
}

type Course struct {
	ID        int64  `json:"id"`
	ShortName string `json:"shortname"`
	FullName  string `json:"fullname"`
	Summary   string `json:"summary"`
	StartDate string `json:"startdate"`
	EndDate   string `json:"enddate"`
	Enrolled  bool   `json:"enrolled"`
}

// Assignment is a gradable item with a due timestamp. DueDate and
// OpenFrom are ISO-8601 timestamps.
type Assignment struct {
	ID          int64          `json:"id"`
	Course      string         `json:"course"`
	CourseID    int64          `json:"course_id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	DueDate     string         `json:"duedate"`
	OpenFrom    string         `json:"allowsubmissionsfromdate"`
	Grade       int            `json:"grade"`
	Priority    model.Priority `json:"priority"`
	Type        model.TaskType `json:"type"`
}

type Quiz struct {
	ID          int64  `json:"id"`
	Course      string `json:"course"`
	CourseID    int64  `json:"course_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	TimeOpen    string `json:"timeopen"`
	TimeClose   string `json:"timeclose"`
	TimeLimit   int    `json:"timelimit"` // seconds
	Grade       int    `json:"grade"`
}

type Event struct {
	ID          int64  `json:"id"`
	Course      string `json:"course"`
	CourseID    int64  `json:"course_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	TimeStart   string `json:"timestart"`
	Duration    int    `json:"timeduration"` // seconds
	Location    string `json:"location"`
}

// Batch holds the four record groups returned by one fetch.
type Batch struct {
	Courses     []Course     `json:"courses"`
	Assignments []Assignment `json:"assignments"`
	Quizzes     []Quiz       `json:"quizzes"`
	Events      []Event      `json:"events"`
}

// splitTimestamp cuts an ISO-8601 timestamp into its calendar date and
// HH:MM parts. A bare date yields an empty clock.
func splitTimestamp(ts string) (date, clock string) {
	date, rest, found := strings.Cut(ts, "T")
	if !found {
		return date, ""
	}
	if len(rest) > 5 {
		rest = rest[:5]
	}
	return date, rest
}

// Tasks converts the assignments into imported tasks. IDs are left zero
// and assigned when the tasks are inserted.
func (b Batch) Tasks() []model.Task {
	tasks := make([]model.Task, 0, len(b.Assignments))
	for _, a := range b.Assignments {
		date, clock := splitTimestamp(a.DueDate)
		typ := a.Type
		if typ == "" {
			typ = model.TaskAssignment
		}
		ext := a.ID
		t := model.Task{
			Title:       a.Name,
			Course:      a.Course,
			DueDate:     date,
			DueTime:     clock,
			Type:        typ,
			Priority:    a.Priority,
			Subtasks:    []model.Subtask{},
			FromMoodle:  true,
			ExternalID:  &ext,
			Description: a.Description,
		}
		if opened, err := time.Parse(time.RFC3339, a.OpenFrom); err == nil {
			t.CreatedAt = opened
		}
		tasks = append(tasks, t)
	}
	return tasks
}

func (b Batch) Exams() []model.Exam {
	exams := make([]model.Exam, 0, len(b.Quizzes))
	for _, q := range b.Quizzes {
		date, clock := splitTimestamp(q.TimeOpen)
		exams = append(exams, model.Exam{
			ID:         q.ID,
			Subject:    q.Course,
			Time:       clock,
			Duration:   fmt.Sprintf("%d horas", q.TimeLimit/3600),
			Room:       defaultExamRoom,
			Date:       date,
			FromMoodle: true,
		})
	}
	return exams
}

// Classes converts calendar events into weekly class sessions on the
// weekday of their first occurrence.
func (b Batch) Classes() []model.ClassSession {
	classes := make([]model.ClassSession, 0, len(b.Events))
	for _, e := range b.Events {
		date, clock := splitTimestamp(e.TimeStart)
		c := model.ClassSession{
			ID:         e.ID,
			Name:       e.Name,
			Time:       clock,
			Room:       e.Location,
			Professor:  defaultProfessor,
			FromMoodle: true,
		}
		if d, err := recurrence.ParseDate(date, time.UTC); err == nil {
			c.Day = recurrence.WeekdayName(d)
		}
		classes = append(classes, c)
	}
	return classes
}

// StubSource serves a fixed batch after an optional delay, standing in
// for the real platform API.
type StubSource struct {
	Delay time.Duration
	Err   error
}

func (s StubSource) Fetch(ctx context.Context) (Batch, error) {
	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Batch{}, ctx.Err()
		case <-timer.C:
		}
	}
	if s.Err != nil {
		return Batch{}, fmt.Errorf("fetch lms batch: %w", s.Err)
	}
	return stubBatch(), nil
}

func stubBatch() Batch {
	return Batch{
		Courses: []Course{
			{ID: 1, ShortName: "PROG-WEB", FullName: "Programación Web", Summary: "Desarrollo de aplicaciones web modernas", StartDate: "2024-01-15", EndDate: "2024-06-15", Enrolled: true},
			{ID: 2, ShortName: "BD-2024", FullName: "Bases de Datos", Summary: "Diseño y administración de bases de datos", StartDate: "2024-01-15", EndDate: "2024-06-15", Enrolled: true},
			{ID: 3, ShortName: "CALC-I", FullName: "Cálculo I", Summary: "Cálculo diferencial e integral", StartDate: "2024-01-15", EndDate: "2024-06-15", Enrolled: true},
		},
		Assignments: []Assignment{
			{ID: 101, Course: "Programación Web", CourseID: 1, Name: "Proyecto Final - Aplicación Web", Description: "Desarrollar una aplicación web completa usando React y Node.js", DueDate: "2024-01-20T23:59:00Z", OpenFrom: "2024-01-10T00:00:00Z", Grade: 100, Priority: model.PriorityHigh, Type: model.TaskProject},
			{ID: 102, Course: "Bases de Datos", CourseID: 2, Name: "Ejercicios de Consultas SQL", Description: "Resolver 10 ejercicios de consultas SQL complejas", DueDate: "2024-01-18T18:00:00Z", OpenFrom: "2024-01-12T00:00:00Z", Grade: 50, Priority: model.PriorityMedium, Type: model.TaskAssignment},
			{ID: 103, Course: "Cálculo I", CourseID: 3, Name: "Tarea de Derivadas", Description: "Resolver problemas de derivadas y aplicaciones", DueDate: "2024-01-15T12:00:00Z", OpenFrom: "2024-01-08T00:00:00Z", Grade: 30, Priority: model.PriorityLow, Type: model.TaskAssignment},
		},
		Quizzes: []Quiz{
			{ID: 201, Course: "Cálculo I", CourseID: 3, Name: "Examen Parcial - Derivadas", Description: "Examen parcial sobre derivadas y aplicaciones", TimeOpen: "2024-01-22T09:00:00Z", TimeClose: "2024-01-22T11:00:00Z", TimeLimit: 7200, Grade: 100},
			{ID: 202, Course: "Física I", CourseID: 4, Name: "Quiz de Mecánica", Description: "Quiz sobre conceptos básicos de mecánica", TimeOpen: "2024-01-25T15:00:00Z", TimeClose: "2024-01-25T16:30:00Z", TimeLimit: 5400, Grade: 50},
		},
		Events: []Event{
			{ID: 301, Course: "Programación Web", CourseID: 1, Name: "Clase: Introducción a React", Description: "Clase presencial sobre conceptos básicos de React", TimeStart: "2024-01-16T08:00:00Z", Duration: 7200, Location: "A-201"},
			{ID: 302, Course: "Bases de Datos", CourseID: 2, Name: "Laboratorio: Consultas Avanzadas", Description: "Sesión de laboratorio sobre consultas SQL avanzadas", TimeStart: "2024-01-16T10:00:00Z", Duration: 7200, Location: "B-105"},
		},
	}
}
