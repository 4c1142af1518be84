package textnorm

import "strings"

// SchoolAbbreviations maps lowercased school names to the short form people
// actually say out loud.
var SchoolAbbreviations = map[string]string{
	"university of pennsylvania":                 "UPenn",
	"upenn":                                      "UPenn",
	"massachusetts institute of technology":      "MIT",
	"california institute of technology":         "Caltech",
	"university of california, berkeley":         "UC Berkeley",
	"university of california, los angeles":      "UCLA",
	"university of southern california":          "USC",
	"new york university":                        "NYU",
	"carnegie mellon university":                 "CMU",
	"georgia institute of technology":            "Georgia Tech",
	"university of michigan":                     "UMich",
	"university of texas at austin":              "UT Austin",
	"university of illinois urbana-champaign":    "UIUC",
	"university of illinois at urbana-champaign": "UIUC",
	"university of north carolina":               "UNC",
	"university of virginia":                     "UVA",
	"university of wisconsin-madison":            "UW-Madison",
	"university of washington":                   "UW",
	"duke university":                            "Duke",
	"stanford university":                        "Stanford",
	"harvard university":                         "Harvard",
	"yale university":                            "Yale",
	"princeton university":                       "Princeton",
	"columbia university":                        "Columbia",
	"cornell university":                         "Cornell",
	"brown university":                           "Brown",
	"dartmouth college":                          "Dartmouth",
}

// MajorAbbreviations maps lowercased majors to their short form.
var MajorAbbreviations = map[string]string{
	"computer science":        "CS",
	"electrical engineering":  "EE",
	"mechanical engineering":  "MechE",
	"economics":               "Econ",
	"mathematics":             "Math",
	"political science":       "Poli Sci",
	"business administration": "Business",
	"information technology":  "IT",
}

// Abbreviate looks name up in table (case-insensitive, exact match after
// trimming). The input comes back unchanged when enabled is false or there
// is no entry.
func Abbreviate(name string, table map[string]string, enabled bool) string {
	if !enabled || name == "" {
		return name
	}
	if short, ok := table[strings.ToLower(strings.TrimSpace(name))]; ok {
		return short
	}
	return name
}
