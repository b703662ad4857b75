package priority

import (
	"sort"
	"time"

	"github.com/dukerupert/planner/internal/model"
	"github.com/dukerupert/planner/internal/recurrence"
)

const (
	LabelCompleted = "Completada"
	LabelOverdue   = "Vencida"
	LabelUrgent    = "Urgente"
	LabelImportant = "Importante"
	LabelNormal    = "Normal"
	LabelUndated   = "Sin fecha"
)

const (
	urgentHours   = 48
	importantDays = 5
)

// Result is a classification outcome. Overdue is only ever set together
// with PriorityHigh.
type Result struct {
	Level   model.Priority `json:"level"`
	Label   string         `json:"label"`
	Overdue bool           `json:"overdue"`
}

// Classify buckets a due timestamp relative to now. Completion overrides
// all time logic.
func Classify(due time.Time, completed bool, now time.Time) Result {
	if completed {
		return Result{Level: model.PriorityLow, Label: LabelCompleted}
	}

	hours := HoursUntil(due, now)
	switch {
	case hours < 0:
		return Result{Level: model.PriorityHigh, Label: LabelOverdue, Overdue: true}
	case hours < urgentHours:
		return Result{Level: model.PriorityHigh, Label: LabelUrgent}
	case wholeDays(hours) <= importantDays:
		return Result{Level: model.PriorityMedium, Label: LabelImportant}
	}
	return Result{Level: model.PriorityLow, Label: LabelNormal}
}

// Weighted is the type-aware variant: a time bucket score plus 0.3 per
// point of activity weight.
func Weighted(due time.Time, typ model.TaskType, completed bool, now time.Time) model.Priority {
	if completed {
		return model.PriorityLow
	}

	hours := HoursUntil(due, now)
	var timeScore float64
	switch {
	case hours < 0:
		timeScore = 4
	case hours < urgentHours:
		timeScore = 3
	case wholeDays(hours) <= importantDays:
		timeScore = 2
	default:
		timeScore = 1
	}

	score := timeScore + typeWeight(typ)*0.3
	switch {
	case score >= 3.5 || hours < urgentHours:
		return model.PriorityHigh
	case score >= 2:
		return model.PriorityMedium
	}
	return model.PriorityLow
}

func typeWeight(typ model.TaskType) float64 {
	switch typ {
	case model.TaskExam:
		return 3
	case model.TaskProject:
		return 2
	}
	return 1
}

// HoursUntil returns the fractional hours from now until due; negative
// once due has passed.
func HoursUntil(due, now time.Time) float64 {
	return due.Sub(now).Hours()
}

// wholeDays truncates toward zero.
func wholeDays(hours float64) int {
	return int(hours / 24)
}

// DueAt resolves a task's due timestamp in now's location.
func DueAt(t model.Task, loc *time.Location) (time.Time, error) {
	return recurrence.ParseDateTime(t.DueDate, t.DueTime, loc)
}

// ForTask classifies a task, honoring its manual override.
func ForTask(t model.Task, now time.Time) Result {
	if t.ManualPriority != nil {
		return Result{Level: *t.ManualPriority, Label: Display(*t.ManualPriority).Text}
	}
	due, err := DueAt(t, now.Location())
	if err != nil {
		if t.Completed {
			return Result{Level: model.PriorityLow, Label: LabelCompleted}
		}
		return Result{Level: model.PriorityLow, Label: LabelUndated}
	}
	return Classify(due, t.Completed, now)
}

// Apply returns t with its cached Priority re-derived.
func Apply(t model.Task, now time.Time) model.Task {
	t.Priority = ForTask(t, now).Level
	return t
}

// Refresh re-derives the cached priority of every task. The input slice
// is not modified.
func Refresh(tasks []model.Task, now time.Time) []model.Task {
	out := make([]model.Task, len(tasks))
	for i, t := range tasks {
		out[i] = Apply(t, now)
	}
	return out
}

// Badge is the display form of a level.
type Badge struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

func Display(level model.Priority) Badge {
	switch level {
	case model.PriorityHigh:
		return Badge{Text: LabelUrgent, Color: "red"}
	case model.PriorityMedium:
		return Badge{Text: LabelImportant, Color: "yellow"}
	}
	return Badge{Text: LabelNormal, Color: "green"}
}

func rank(level model.Priority) int {
	switch level {
	case model.PriorityHigh:
		return 0
	case model.PriorityMedium:
		return 1
	}
	return 2
}

// Sort orders tasks pending first, then by classified level, then by
// due timestamp. Tasks without a valid due date sort last in their group.
func Sort(tasks []model.Task, now time.Time) []model.Task {
	type keyed struct {
		task  model.Task
		level int
		due   time.Time
		dated bool
	}
	ks := make([]keyed, len(tasks))
	for i, t := range tasks {
		due, err := DueAt(t, now.Location())
		ks[i] = keyed{task: t, level: rank(ForTask(t, now).Level), due: due, dated: err == nil}
	}

	sort.SliceStable(ks, func(i, j int) bool {
		a, b := ks[i], ks[j]
		if a.task.Completed != b.task.Completed {
			return !a.task.Completed
		}
		if a.level != b.level {
			return a.level < b.level
		}
		if a.dated != b.dated {
			return a.dated
		}
		return a.due.Before(b.due)
	})

	out := make([]model.Task, len(ks))
	for i, k := range ks {
		out[i] = k.task
	}
	return out
}
