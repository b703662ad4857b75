package challenge

import (
	"testing"
	"time"

	"github.com/dukerupert/planner/internal/model"
)

var now = time.Date(2026, 2, 5, 20, 0, 0, 0, time.UTC)

// onTimeWeek returns one task per day for the last seven days, each due
// at 18:00 and completed an hour early.
func onTimeWeek() []model.Task {
	var tasks []model.Task
	for i := 0; i < 7; i++ {
		day := now.AddDate(0, 0, -i)
		done := time.Date(day.Year(), day.Month(), day.Day(), 17, 0, 0, 0, time.UTC)
		tasks = append(tasks, model.Task{
			ID:          int64(i + 1),
			DueDate:     day.Format("2006-01-02"),
			DueTime:     "18:00",
			Completed:   true,
			CompletedAt: &done,
		})
	}
	return tasks
}

func streakChallenge() model.Challenge {
	return Catalog()[0]
}

func TestStreakFullWeek(t *testing.T) {
	ch := streakChallenge()
	ch.Progress = 5

	out := Evaluate(ch, onTimeWeek(), now)
	if out.Challenge.Progress != 7 {
		t.Errorf("progress = %d, want 7", out.Challenge.Progress)
	}
	if !out.Challenge.Completed || out.Challenge.Active {
		t.Errorf("completed = %v active = %v, want true/false", out.Challenge.Completed, out.Challenge.Active)
	}
	if out.BadgeEarned != "Insignia de Puntualidad" {
		t.Errorf("badge = %q", out.BadgeEarned)
	}

	// Re-evaluating a completed challenge is a no-op.
	again := Evaluate(out.Challenge, onTimeWeek(), now)
	if again.BadgeEarned != "" {
		t.Errorf("second evaluation earned %q, want none", again.BadgeEarned)
	}
	if again.Challenge != out.Challenge {
		t.Errorf("second evaluation changed challenge: %+v", again.Challenge)
	}
}

func TestStreakBrokenByLateCompletion(t *testing.T) {
	tasks := onTimeWeek()
	// Task due three days ago was completed the next morning.
	late := time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC)
	tasks[3].CompletedAt = &late

	if got := Streak(tasks, now); got != 3 {
		t.Errorf("streak = %d, want 3", got)
	}

	out := Evaluate(streakChallenge(), tasks, now)
	if out.Challenge.Completed {
		t.Error("challenge should not complete with a broken streak")
	}
	if out.BadgeEarned != "" {
		t.Errorf("badge = %q, want none", out.BadgeEarned)
	}
}

func TestStreakPendingTaskToday(t *testing.T) {
	tasks := onTimeWeek()
	tasks[0].Completed = false
	tasks[0].CompletedAt = nil
	if got := Streak(tasks, now); got != 0 {
		t.Errorf("streak = %d, want 0", got)
	}
}

func TestStreakEmptyDaysCount(t *testing.T) {
	if got := Streak(nil, now); got != 7 {
		t.Errorf("streak = %d, want 7", got)
	}
}

func TestStreakCappedAtTotal(t *testing.T) {
	ch := streakChallenge()
	ch.Total = 10
	out := Evaluate(ch, nil, now)
	if out.Challenge.Progress != 7 {
		t.Errorf("progress = %d, want 7", out.Challenge.Progress)
	}

	ch.Total = 3
	out = Evaluate(ch, nil, now)
	if out.Challenge.Progress != 3 {
		t.Errorf("progress = %d, want 3", out.Challenge.Progress)
	}
}

func TestQuantity(t *testing.T) {
	old := now.AddDate(0, 0, -10)
	recent := now.Add(-time.Hour)
	tasks := []model.Task{
		{ID: 1, Completed: true, CompletedAt: &recent},
		{ID: 2, Completed: true, CompletedAt: &old},
		{ID: 3, Completed: false, DueDate: "2026-02-04"},
		{ID: 4, Completed: true, DueDate: "2026-02-04"}, // falls back to due date
		{ID: 5, Completed: true, DueDate: "bad"},
	}
	if got := Quantity(tasks, now); got != 2 {
		t.Errorf("quantity = %d, want 2", got)
	}
}

func TestTiming(t *testing.T) {
	early := time.Date(2026, 2, 4, 9, 59, 0, 0, time.UTC)
	atTen := time.Date(2026, 2, 4, 10, 0, 0, 0, time.UTC)
	oldEarly := time.Date(2026, 1, 20, 8, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		{ID: 1, Completed: true, CompletedAt: &early},
		{ID: 2, Completed: true, CompletedAt: &atTen},
		{ID: 3, Completed: true, CompletedAt: &oldEarly},
		{ID: 4, Completed: false, CompletedAt: &early},
	}
	if got := Timing(tasks, now); got != 1 {
		t.Errorf("timing = %d, want 1", got)
	}
}

func TestEvaluateUnknownType(t *testing.T) {
	ch := model.Challenge{ID: 9, Type: "marathon", Progress: 4, Total: 5, Active: true}
	out := Evaluate(ch, onTimeWeek(), now)
	if out.Challenge != ch {
		t.Errorf("unknown type changed challenge: %+v", out.Challenge)
	}
}

func TestEvaluateInactive(t *testing.T) {
	ch := streakChallenge()
	ch.Active = false
	out := Evaluate(ch, onTimeWeek(), now)
	if out.Challenge.Progress != 0 || out.BadgeEarned != "" {
		t.Errorf("inactive challenge evaluated: %+v", out)
	}
}

func TestEvaluateAll(t *testing.T) {
	challenges := []model.Challenge{streakChallenge(), Catalog()[1]}
	badges := DefaultBadges()

	gotCh, gotBadges, earned := EvaluateAll(challenges, badges, onTimeWeek(), now)
	if len(earned) != 1 || earned[0] != "Insignia de Puntualidad" {
		t.Fatalf("earned = %v", earned)
	}
	if !gotCh[0].Completed {
		t.Error("streak challenge should be completed")
	}
	if gotCh[1].Progress != 7 || gotCh[1].Completed {
		t.Errorf("quantity challenge = %+v", gotCh[1])
	}
	if !gotBadges[0].Earned {
		t.Error("badge should be earned")
	}
	if badges[0].Earned {
		t.Error("input badges were modified")
	}

	_, _, earned = EvaluateAll(gotCh, gotBadges, onTimeWeek(), now)
	if len(earned) != 0 {
		t.Errorf("second pass earned %v, want none", earned)
	}
}

func TestEarnBadge(t *testing.T) {
	badges := DefaultBadges()
	out, ok := EarnBadge(badges, "Insignia de Novato")
	if ok {
		t.Error("already earned badge should report false")
	}
	if !out[3].Earned {
		t.Error("badge should stay earned")
	}
	if _, ok := EarnBadge(badges, "Unknown"); ok {
		t.Error("unknown badge should report false")
	}
}

func TestJoin(t *testing.T) {
	list, ok := Join(nil, 3)
	if !ok || len(list) != 1 || list[0].Type != model.ChallengeTiming {
		t.Fatalf("join = %v, %v", list, ok)
	}
	if _, ok := Join(list, 3); ok {
		t.Error("joining twice should report false")
	}
	if _, ok := Join(list, 42); ok {
		t.Error("unknown challenge should report false")
	}
}
