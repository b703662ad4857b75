package aggregate

import (
	"sort"
	"time"

	"github.com/dukerupert/planner/internal/model"
	"github.com/dukerupert/planner/internal/priority"
)

type PriorityProgress struct {
	Priority       model.Priority `json:"priority"`
	Total          int            `json:"total"`
	Completed      int            `json:"completed"`
	CompletionRate int            `json:"completion_rate"`
}

// Report is the productivity summary for the current week.
type Report struct {
	Week                Week               `json:"week"`
	CompletedTasks      int                `json:"completed_tasks"`
	PendingTasks        int                `json:"pending_tasks"`
	ActiveChallenges    int                `json:"active_challenges"`
	CompletedChallenges int                `json:"completed_challenges"`
	ByPriority          []PriorityProgress `json:"by_priority"`
}

// BuildReport summarizes a snapshot as of now. Priorities are re-derived
// at now, since the cached ones may predate a day boundary.
func BuildReport(s model.Snapshot, now time.Time) Report {
	r := Report{
		Week:       ForWeek(s.Tasks, s.Classes, s.Exams, 0, now, s.Settings.Language),
		ByPriority: PriorityBreakdown(priority.Refresh(s.Tasks, now)),
	}
	for _, t := range s.Tasks {
		if t.Completed {
			r.CompletedTasks++
		} else {
			r.PendingTasks++
		}
	}
	for _, c := range s.Challenges {
		switch {
		case c.Completed:
			r.CompletedChallenges++
		case c.Active:
			r.ActiveChallenges++
		}
	}
	return r
}

// PriorityBreakdown groups tasks by their cached priority.
func PriorityBreakdown(tasks []model.Task) []PriorityProgress {
	levels := []model.Priority{model.PriorityHigh, model.PriorityMedium, model.PriorityLow}
	out := make([]PriorityProgress, len(levels))
	for i, level := range levels {
		p := PriorityProgress{Priority: level}
		for _, t := range tasks {
			if t.Priority != level {
				continue
			}
			p.Total++
			if t.Completed {
				p.Completed++
			}
		}
		p.CompletionRate = Rate(p.Completed, p.Total)
		out[i] = p
	}
	return out
}

// StudentSummary is the per-student row of the teacher view.
type StudentSummary struct {
	Student        string `json:"student"`
	Assignments    int    `json:"assignments"`
	Completed      int    `json:"completed"`
	Late           int    `json:"late"`
	CompletionRate int    `json:"completion_rate"`
	AtRisk         bool   `json:"at_risk"`
}

// ForStudents aggregates submission records by student, sorted by name.
// A submission counts as late when completed after its task's due
// timestamp. Submissions for unknown tasks are ignored.
func ForStudents(submissions []model.Submission, tasks []model.Task, loc *time.Location) []StudentSummary {
	byID := make(map[int64]model.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	rows := make(map[string]*StudentSummary)
	for _, sub := range submissions {
		task, ok := byID[sub.TaskID]
		if !ok {
			continue
		}
		row, ok := rows[sub.Student]
		if !ok {
			row = &StudentSummary{Student: sub.Student}
			rows[sub.Student] = row
		}
		row.Assignments++
		if sub.CompletedAt == nil {
			continue
		}
		row.Completed++
		if due, err := priority.DueAt(task, loc); err == nil && sub.CompletedAt.After(due) {
			row.Late++
		}
	}

	out := make([]StudentSummary, 0, len(rows))
	for _, row := range rows {
		row.CompletionRate = Rate(row.Completed, row.Assignments)
		row.AtRisk = row.CompletionRate < 70 || row.Late > 2
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Student < out[j].Student })
	return out
}
