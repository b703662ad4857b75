package aggregate

import (
	"time"

	"github.com/dukerupert/planner/internal/model"
	"github.com/dukerupert/planner/internal/recurrence"
)

// Day is everything scheduled on one calendar day.
type Day struct {
	Date           time.Time            `json:"date"`
	Classes        []model.ClassSession `json:"classes"`
	Tasks          []model.Task         `json:"tasks"`
	Exams          []model.Exam         `json:"exams"`
	TotalCount     int                  `json:"total_count"`
	CompletedCount int                  `json:"completed_count"`
}

// ForDay filters tasks, classes and exams to date's calendar day. Dates
// are interpreted in date's location; entities with malformed dates are
// skipped.
func ForDay(date time.Time, tasks []model.Task, classes []model.ClassSession, exams []model.Exam) Day {
	d := Day{
		Date:    recurrence.StartOfDay(date),
		Classes: []model.ClassSession{},
		Tasks:   []model.Task{},
		Exams:   []model.Exam{},
	}
	loc := date.Location()

	for _, t := range tasks {
		if onDay(t.DueDate, date, loc) {
			d.Tasks = append(d.Tasks, t)
			if t.Completed {
				d.CompletedCount++
			}
		}
	}
	for _, e := range exams {
		if onDay(e.Date, date, loc) {
			d.Exams = append(d.Exams, e)
			if e.Completed {
				d.CompletedCount++
			}
		}
	}
	for _, c := range classes {
		if recurrence.OccursOn(c, date) {
			d.Classes = append(d.Classes, c)
			if c.Completed {
				d.CompletedCount++
			}
		}
	}

	d.TotalCount = len(d.Tasks) + len(d.Exams) + len(d.Classes)
	return d
}

func onDay(value string, date time.Time, loc *time.Location) bool {
	if value == "" {
		return false
	}
	parsed, err := recurrence.ParseDate(value, loc)
	if err != nil {
		return false
	}
	return recurrence.SameDay(parsed, date)
}
