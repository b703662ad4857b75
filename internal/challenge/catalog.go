package challenge

import "github.com/dukerupert/planner/internal/model"

// Catalog returns the challenges a student can join.
func Catalog() []model.Challenge {
	return []model.Challenge{
		{
			ID:          1,
			Title:       "7 Días Sin Retrasos",
			Description: "Completa todas tus tareas a tiempo durante 7 días consecutivos",
			Type:        model.ChallengeStreak,
			Total:       7,
			Reward:      "Insignia de Puntualidad",
			Difficulty:  "medium",
			Active:      true,
		},
		{
			ID:          2,
			Title:       "Estudiante Productivo",
			Description: "Completa 20 tareas en una semana",
			Type:        model.ChallengeQuantity,
			Total:       20,
			Reward:      "Insignia de Productividad",
			Difficulty:  "hard",
			Active:      true,
		},
		{
			ID:          3,
			Title:       "Mañana Temprano",
			Description: "Completa 5 tareas antes de las 10 AM",
			Type:        model.ChallengeTiming,
			Total:       5,
			Reward:      "Insignia de Madrugador",
			Difficulty:  "easy",
			Active:      true,
		},
	}
}

// DefaultBadges returns the badge set a new planner starts with.
func DefaultBadges() []model.Badge {
	return []model.Badge{
		{ID: 1, Name: "Insignia de Puntualidad"},
		{ID: 2, Name: "Insignia de Productividad"},
		{ID: 3, Name: "Insignia de Madrugador"},
		{ID: 4, Name: "Insignia de Novato", Earned: true},
		{ID: 5, Name: "Insignia de Disciplina", Earned: true},
	}
}

// Join adds the catalog challenge with the given id unless one with the
// same id is already tracked.
func Join(challenges []model.Challenge, id int64) ([]model.Challenge, bool) {
	for _, c := range challenges {
		if c.ID == id {
			return challenges, false
		}
	}
	for _, c := range Catalog() {
		if c.ID == id {
			return append(append([]model.Challenge(nil), challenges...), c), true
		}
	}
	return challenges, false
}
