// Package textnorm holds the pure string helpers shared by the job tracker
// and the message generator: job URL normalization (the dedup key) and the
// school/major abbreviation tables used for casual messages.
package textnorm

import (
	"net/url"
	"strings"
)

// JobIDParam is the only query parameter that survives normalization.
// LinkedIn search pages carry the selected job in it, so dropping it would
// collapse every job seen from the same search into one record.
const JobIDParam = "currentJobId"

// NormalizeJobURL returns the dedup key for a job link: scheme, host and
// path, plus currentJobId when present. Tracking params and fragments are
// dropped. Empty input yields "".
func NormalizeJobURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return stripQuery(raw)
	}

	key := u.Scheme + "://" + u.Host + u.EscapedPath()
	if jobID := u.Query().Get(JobIDParam); jobID != "" {
		key += "?" + url.Values{JobIDParam: {jobID}}.Encode()
	}
	return key
}

func stripQuery(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	return raw
}
