package challenge

import (
	"time"

	"github.com/dukerupert/planner/internal/model"
	"github.com/dukerupert/planner/internal/priority"
	"github.com/dukerupert/planner/internal/recurrence"
)

const (
	windowDays  = 7
	earlyCutoff = 10 // completion hour, local time
)

// Outcome is the result of evaluating one challenge. BadgeEarned is the
// reward name on the evaluation that completes the challenge, and empty
// otherwise.
type Outcome struct {
	Challenge   model.Challenge
	BadgeEarned string
}

// Evaluate recomputes progress from the task history. Completed or
// inactive challenges and unknown types come back unchanged.
func Evaluate(ch model.Challenge, tasks []model.Task, now time.Time) Outcome {
	out := Outcome{Challenge: ch}
	if ch.Completed || !ch.Active {
		return out
	}

	var progress int
	switch ch.Type {
	case model.ChallengeStreak:
		progress = Streak(tasks, now)
		if progress > ch.Total {
			progress = ch.Total
		}
	case model.ChallengeQuantity:
		progress = Quantity(tasks, now)
	case model.ChallengeTiming:
		progress = Timing(tasks, now)
	default:
		return out
	}

	out.Challenge.Progress = progress
	if ch.Total > 0 && progress >= ch.Total {
		out.Challenge.Completed = true
		out.Challenge.Active = false
		out.BadgeEarned = ch.Reward
	}
	return out
}

// Streak counts consecutive successful days backward from today, up to
// seven. A day succeeds when it has no tasks due or every task due that
// day was completed no later than its due timestamp.
func Streak(tasks []model.Task, now time.Time) int {
	loc := now.Location()
	streak := 0
	for i := 0; i < windowDays; i++ {
		day := recurrence.StartOfDay(now).AddDate(0, 0, -i)
		if !daySucceeded(tasks, day, loc) {
			break
		}
		streak++
	}
	return streak
}

func daySucceeded(tasks []model.Task, day time.Time, loc *time.Location) bool {
	for _, t := range tasks {
		due, err := priority.DueAt(t, loc)
		if err != nil || !recurrence.SameDay(day, due) {
			continue
		}
		if !t.Completed {
			return false
		}
		if completedAt(t, due).After(due) {
			return false
		}
	}
	return true
}

// Quantity counts tasks completed within the trailing seven days.
func Quantity(tasks []model.Task, now time.Time) int {
	return countCompleted(tasks, now, func(time.Time) bool { return true })
}

// Timing counts tasks completed within the trailing seven days before
// 10:00 local time.
func Timing(tasks []model.Task, now time.Time) int {
	return countCompleted(tasks, now, func(at time.Time) bool {
		return at.In(now.Location()).Hour() < earlyCutoff
	})
}

func countCompleted(tasks []model.Task, now time.Time, keep func(time.Time) bool) int {
	since := now.AddDate(0, 0, -windowDays)
	n := 0
	for _, t := range tasks {
		if !t.Completed {
			continue
		}
		due, err := priority.DueAt(t, now.Location())
		if err != nil && t.CompletedAt == nil {
			continue
		}
		at := completedAt(t, due)
		if at.Before(since) || at.After(now) {
			continue
		}
		if keep(at) {
			n++
		}
	}
	return n
}

// completedAt falls back to the due timestamp when no completion time
// was recorded.
func completedAt(t model.Task, due time.Time) time.Time {
	if t.CompletedAt != nil {
		return *t.CompletedAt
	}
	return due
}

// EvaluateAll evaluates every challenge and flips the matching badges.
// It returns the updated collections and one reward per challenge
// completed by this call.
func EvaluateAll(challenges []model.Challenge, badges []model.Badge, tasks []model.Task, now time.Time) ([]model.Challenge, []model.Badge, []string) {
	outChallenges := make([]model.Challenge, len(challenges))
	outBadges := append([]model.Badge(nil), badges...)
	var earned []string

	for i, ch := range challenges {
		o := Evaluate(ch, tasks, now)
		outChallenges[i] = o.Challenge
		if o.BadgeEarned == "" {
			continue
		}
		outBadges, _ = EarnBadge(outBadges, o.BadgeEarned)
		earned = append(earned, o.BadgeEarned)
	}
	return outChallenges, outBadges, earned
}

// EarnBadge marks the named badge earned. It reports false when the
// badge is unknown or already earned.
func EarnBadge(badges []model.Badge, name string) ([]model.Badge, bool) {
	out := append([]model.Badge(nil), badges...)
	for i := range out {
		if out[i].Name != name {
			continue
		}
		if out[i].Earned {
			return out, false
		}
		out[i].Earned = true
		return out, true
	}
	return out, false
}
