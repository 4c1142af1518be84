package messaging

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/justsurfingit/linkedin-agent/internal/seniority"
	"github.com/justsurfingit/linkedin-agent/internal/textnorm"
)

const quoteChars = "\"'“”‘’`"

// Finalize cleans raw model output: surrounding quotes go, only the first
// line is kept, and anything over MaxLength is truncated.
func Finalize(raw string) string {
	msg := strings.TrimSpace(raw)
	if i := strings.IndexAny(msg, "\r\n"); i >= 0 {
		msg = msg[:i]
	}
	msg = strings.TrimSpace(strings.Trim(strings.TrimSpace(msg), quoteChars))
	return Truncate(msg, MaxLength)
}

// Truncate shortens text to at most limit characters. It prefers a sentence
// end in the last 30% of the window, then the last word boundary (plus an
// ellipsis), then a hard cut.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	window := runes[:limit]

	end := -1
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] == '.' || window[i] == '!' || window[i] == '?' {
			end = i
			break
		}
	}
	if end >= 0 && float64(end) >= float64(limit)*0.7 {
		return string(window[:end+1])
	}

	const ellipsis = "..."
	if limit > len(ellipsis) {
		head := window[:limit-len(ellipsis)]
		for i := len(head) - 1; i > 0; i-- {
			if head[i] == ' ' {
				return strings.TrimRight(string(head[:i]), " ") + ellipsis
			}
		}
	}
	return string(window)
}

var (
	introClosings = []string{
		"your work as %s caught my eye. Hope to connect!",
		"I'd enjoy following your work as %s. Looking forward to connecting.",
		"your path to %s is one I'd like to learn from. Would be great to connect!",
	}
	plainClosings = []string{
		"always good to meet people doing interesting work. Hope to connect!",
		"looking forward to being part of your network.",
		"would be great to connect!",
	}
)

// Fallback builds a template note used when generation fails. It never
// calls "fellow" anyone but a peer and always returns a usable string.
func Fallback(s Sender, t Target, inc Include, tone Tone, rel seniority.Relationship, rnd Rand) string {
	rnd = orDefault(rnd)
	abbreviate := tone.Abbreviates()

	var b strings.Builder
	b.WriteString("Hi " + t.FirstName() + ", ")

	switch {
	case inc.School && s.School != "":
		school := textnorm.Abbreviate(s.School, textnorm.SchoolAbbreviations, abbreviate)
		if inc.Major && s.Major != "" {
			major := textnorm.Abbreviate(s.Major, textnorm.MajorAbbreviations, abbreviate)
			b.WriteString(major + " grad from " + school + " here - ")
		} else {
			b.WriteString(school + " alum here - ")
		}
	case inc.Title && s.Title != "":
		if rel == seniority.Peer {
			b.WriteString("fellow " + s.Title + " here - ")
		} else {
			b.WriteString(s.Title + " here - ")
		}
	}

	if title := strings.TrimSpace(t.Title); len(title) > 5 {
		fmt.Fprintf(&b, introClosings[rnd.IntN(len(introClosings))], title)
	} else {
		b.WriteString(plainClosings[rnd.IntN(len(plainClosings))])
	}

	if name := firstWord(s.Name, ""); name != "" {
		b.WriteString(" - " + name)
	}
	if inc.Email && s.Email != "" {
		b.WriteString(" (" + s.Email + ")")
	}
	return Truncate(strings.TrimSpace(b.String()), MaxLength)
}
