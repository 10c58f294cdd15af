package service

import (
	"strings"
	"time"

	"github.com/spacetravelling/internal/locale"
)

// WordsPerMinute is the reading rate behind ReadingMinutes.
const WordsPerMinute = 200

// CountWords counts whitespace-delimited words across every heading and body text.
func CountWords(content []Section) int {
	total := 0
	for _, section := range content {
		total += len(strings.Fields(section.Heading))
		for _, block := range section.Body {
			total += len(strings.Fields(block.Text))
		}
	}
	return total
}

// ReadingMinutes is ceil(words / WordsPerMinute); empty content reads in 0 minutes.
func ReadingMinutes(content []Section) int {
	words := CountWords(content)
	return (words + WordsPerMinute - 1) / WordsPerMinute
}

// EditionNotice reports whether a post was edited after its first publication and,
// if so, the notice shown under its header.
func EditionNotice(first, last *time.Time, language string, loc *time.Location) (bool, string) {
	if first == nil || last == nil || first.Equal(*last) {
		return false, ""
	}
	return true, "* " + locale.Pick(language, "edited on", "editado em") + " " + locale.FormatDateTime(language, *last, loc)
}

// PublishedLabel formats the first publication date, or the "not published" placeholder.
func PublishedLabel(first *time.Time, language string, loc *time.Location) string {
	if first == nil {
		return locale.LabelsFor(language).NotPublished
	}
	return locale.FormatDate(language, *first, loc)
}
