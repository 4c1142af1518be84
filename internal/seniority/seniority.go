// Package seniority turns free-text job titles into a comparable rank and
// classifies how a message target sits relative to the sender.
package seniority

import (
	"regexp"
	"strings"
)

// Rank is an ordinal from 1 (intern) to 7 (executive).
type Rank int

const (
	Intern    Rank = 1
	Junior    Rank = 2
	Mid       Rank = 3
	Senior    Rank = 4
	Manager   Rank = 5
	Director  Rank = 6
	Executive Rank = 7
)

type rule struct {
	rank   Rank
	match  *regexp.Regexp
	unless *regexp.Regexp
}

// Checked top to bottom, first hit wins. "Vice President" has to reach the
// VP rule, so the president pattern carries an exclusion.
var rules = []rule{
	{rank: Executive, match: regexp.MustCompile(`(?i)\b(chief|ceo|cto|cfo|coo|cmo|cio|cpo|founder|co-founder|cofounder|owner)\b`)},
	{rank: Executive, match: regexp.MustCompile(`(?i)\bpresident\b`), unless: regexp.MustCompile(`(?i)\bvice\b`)},
	{rank: Director, match: regexp.MustCompile(`(?i)\b(vp|svp|evp|vice president|head of)\b`)},
	{rank: Director, match: regexp.MustCompile(`(?i)\b(director|professor)\b`)},
	{rank: Manager, match: regexp.MustCompile(`(?i)\b(manager|lead|principal|staff)\b`)},
	{rank: Senior, match: regexp.MustCompile(`(?i)\b(senior|sr)\b`)},
	{rank: Mid, match: regexp.MustCompile(`(?i)\b(mid|mid-level|intermediate)\b`)},
	{rank: Junior, match: regexp.MustCompile(`(?i)\b(junior|jr|associate|entry|entry-level)\b`)},
	{rank: Intern, match: regexp.MustCompile(`(?i)\b(intern|internship|student|trainee)\b`)},
}

// Detect returns the rank of the first matching rule, or Mid when the title
// says nothing useful.
func Detect(title string) Rank {
	title = strings.TrimSpace(title)
	if title == "" {
		return Mid
	}
	for _, r := range rules {
		if !r.match.MatchString(title) {
			continue
		}
		if r.unless != nil && r.unless.MatchString(title) {
			continue
		}
		return r.rank
	}
	return Mid
}

// declared experience levels as the extension sends them
var levels = map[string]Rank{
	"intern":    Intern,
	"student":   Intern,
	"entry":     Junior,
	"junior":    Junior,
	"mid":       Mid,
	"senior":    Senior,
	"lead":      Manager,
	"manager":   Manager,
	"director":  Director,
	"executive": Executive,
}

// DetectUser prefers the sender's declared experience level and only falls
// back to their title when the level is empty or unknown.
func DetectUser(level, title string) Rank {
	if r, ok := levels[strings.ToLower(strings.TrimSpace(level))]; ok {
		return r
	}
	return Detect(title)
}

// Relationship is the target's standing relative to the sender.
type Relationship string

const (
	MuchSenior Relationship = "much_senior"
	MoreSenior Relationship = "senior"
	Peer       Relationship = "peer"
	MoreJunior Relationship = "junior"
	MuchJunior Relationship = "much_junior"
)

// Relate classifies target against user by rank difference.
func Relate(user, target Rank) Relationship {
	diff := target - user
	switch {
	case diff >= 3:
		return MuchSenior
	case diff >= 1:
		return MoreSenior
	case diff == 0:
		return Peer
	case diff >= -2:
		return MoreJunior
	default:
		return MuchJunior
	}
}
