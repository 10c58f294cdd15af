package locale

import (
	"fmt"
	"time"
)

var (
	portugueseMonths = [...]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}
	englishMonths    = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
)

func monthAbbrev(language string, m time.Month) string {
	if NormalizeLanguage(language) == LanguageEnglish {
		return englishMonths[m-1]
	}
	return portugueseMonths[m-1]
}

// FormatDate renders t as "15 mar 2021" in loc.
func FormatDate(language string, t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return fmt.Sprintf("%02d %s %d", t.Day(), monthAbbrev(language, t.Month()), t.Year())
}

// FormatDateTime renders t as "15 mar 2021, às 15:49" (or ", at 15:49") in loc.
func FormatDateTime(language string, t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return fmt.Sprintf("%s, %s %02d:%02d", FormatDate(language, t, nil), Pick(language, "at", "às"), t.Hour(), t.Minute())
}
