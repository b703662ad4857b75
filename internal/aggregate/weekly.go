package aggregate

import (
	"math"
	"time"

	"github.com/dukerupert/planner/internal/model"
	"github.com/dukerupert/planner/internal/recurrence"
)

// DayCount is one day of a week distribution.
type DayCount struct {
	Day         string    `json:"day"`
	Date        time.Time `json:"date"`
	Assignments int       `json:"assignments"`
	Exams       int       `json:"exams"`
	Classes     int       `json:"classes"`
	Completed   int       `json:"completed"`
	Total       int       `json:"total"`
}

type Stats struct {
	TotalAssignments int `json:"total_assignments"`
	TotalExams       int `json:"total_exams"`
	TotalClasses     int `json:"total_classes"`
	TotalCompleted   int `json:"total_completed"`
	TotalActivities  int `json:"total_activities"`
	CompletionRate   int `json:"completion_rate"`
}

// Week always holds seven days, Monday first.
type Week struct {
	Offset            int        `json:"offset"`
	Label             string     `json:"label"`
	Start             time.Time  `json:"start"`
	End               time.Time  `json:"end"`
	Days              []DayCount `json:"days"`
	Stats             Stats      `json:"stats"`
	MostProductiveDay DayCount   `json:"most_productive_day"`
}

// ForWeek builds the distribution for the week offset weeks away from
// now's week. lang selects "es" or "en" labels.
func ForWeek(tasks []model.Task, classes []model.ClassSession, exams []model.Exam, offset int, now time.Time, lang string) Week {
	start, end := recurrence.WeekBounds(now, offset)
	w := Week{
		Offset: offset,
		Label:  weekLabel(start, end, lang),
		Start:  start,
		End:    end,
		Days:   make([]DayCount, 0, 7),
	}

	for i := 0; i < 7; i++ {
		date := start.AddDate(0, 0, i)
		w.Days = append(w.Days, countDay(ForDay(date, tasks, classes, exams), lang))
	}

	w.Stats = Summarize(w.Days)
	w.MostProductiveDay = MostProductive(w.Days)
	return w
}

// ForWeeks returns count consecutive weeks ending with the current one,
// oldest first.
func ForWeeks(tasks []model.Task, classes []model.ClassSession, exams []model.Exam, count int, now time.Time, lang string) []Week {
	if count < 1 {
		return []Week{}
	}
	weeks := make([]Week, 0, count)
	for offset := -(count - 1); offset <= 0; offset++ {
		weeks = append(weeks, ForWeek(tasks, classes, exams, offset, now, lang))
	}
	return weeks
}

func countDay(d Day, lang string) DayCount {
	dc := DayCount{
		Day:       shortDay(d.Date, lang),
		Date:      d.Date,
		Exams:     len(d.Exams),
		Classes:   len(d.Classes),
		Completed: d.CompletedCount,
		Total:     d.TotalCount,
	}
	for _, t := range d.Tasks {
		if t.Type == model.TaskExam {
			dc.Exams++
		} else {
			dc.Assignments++
		}
	}
	return dc
}

// Summarize totals a set of days. CompletionRate is a rounded percentage
// and 0 when there is nothing to complete.
func Summarize(days []DayCount) Stats {
	var s Stats
	for _, d := range days {
		s.TotalAssignments += d.Assignments
		s.TotalExams += d.Exams
		s.TotalClasses += d.Classes
		s.TotalCompleted += d.Completed
		s.TotalActivities += d.Total
	}
	s.CompletionRate = Rate(s.TotalCompleted, s.TotalActivities)
	return s
}

// Rate returns round(100*part/whole), or 0 when whole is 0.
func Rate(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(whole)))
}

// MostProductive returns the first day with the highest completed count.
func MostProductive(days []DayCount) DayCount {
	if len(days) == 0 {
		return DayCount{}
	}
	best := days[0]
	for _, d := range days[1:] {
		if d.Completed > best.Completed {
			best = d
		}
	}
	return best
}
