package aggregate

import (
	"fmt"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dukerupert/planner/internal/recurrence"
)

var spanishMonths = [...]string{
	"ene", "feb", "mar", "abr", "may", "jun",
	"jul", "ago", "sep", "oct", "nov", "dic",
}

func tag(lang string) language.Tag {
	if lang == "en" {
		return language.English
	}
	return language.Spanish
}

// shortDay renders "Lun", "Mié" or "Mon" style labels.
func shortDay(t time.Time, lang string) string {
	name := []rune(recurrence.LocalizedName(t.Weekday(), lang))
	if len(name) > 3 {
		name = name[:3]
	}
	return cases.Title(tag(lang)).String(string(name))
}

func shortDate(t time.Time, lang string) string {
	if lang == "en" {
		return t.Format("2 Jan")
	}
	return fmt.Sprintf("%d %s", t.Day(), spanishMonths[t.Month()-1])
}

// weekLabel renders the human-readable range of a week.
func weekLabel(start, end time.Time, lang string) string {
	prefix := "Semana"
	if lang == "en" {
		prefix = "Week"
	}
	return fmt.Sprintf("%s %s - %s", prefix, shortDate(start, lang), shortDate(end, lang))
}
