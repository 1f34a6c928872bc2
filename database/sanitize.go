package database

import (
	"net/url"
	"regexp"
	"strings"
)

const privateHostPattern = `localhost|127\.(?:\d+\.){2}\d+|10\.(?:\d+\.){2}\d+|192\.168\.\d+\.\d+|172\.(?:\d+\.){2}\d+`

var (
	relativeImagePattern = regexp.MustCompile(`(?i)^images/`)
	absoluteImagePattern = regexp.MustCompile(`(?i)https?://([^/\s"']+)(/images/[^\s"'|,<>]+)`)
	privateHostPrefix    = regexp.MustCompile(`(?i)^(localhost|127\.|10\.|192\.168\.|172\.)`)
)

// Sanitizer rewrites image references that point at a developer machine
// or a configured local origin into host-relative /images/... paths.
type Sanitizer struct {
	hosts   map[string]bool
	content *regexp.Regexp
}

// NewSanitizer builds a sanitizer that also treats the hosts of the given
// origin URLs (shop and API) as local. Unparseable origins are ignored.
func NewSanitizer(origins ...string) *Sanitizer {
	s := &Sanitizer{hosts: map[string]bool{}}

	alternatives := []string{privateHostPattern}
	for _, origin := range origins {
		u, err := url.Parse(strings.TrimSpace(origin))
		if err != nil || u.Host == "" {
			continue
		}
		host := strings.ToLower(u.Host)
		s.hosts[host] = true
		alternatives = append(alternatives, regexp.QuoteMeta(u.Hostname()))
	}

	s.content = regexp.MustCompile(`(?i)https?://(?:` + strings.Join(alternatives, "|") + `)(?::\d+)?(/images/[\w\-.~:/?#\[\]@!$&'()*+;=%]+)`)
	return s
}

// Content rewrites every local image URL found anywhere in a file body.
// The boolean reports whether anything changed.
func (s *Sanitizer) Content(content string) (string, bool) {
	if !s.content.MatchString(content) {
		return content, false
	}
	return s.content.ReplaceAllString(content, "$1"), true
}

// Value normalizes a single cell: bare images/x becomes /images/x and
// absolute URLs on a local host are rewritten to their path wherever they
// appear in the text. A cell with nothing to rewrite is returned as is.
func (s *Sanitizer) Value(v string) string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return v
	}
	if relativeImagePattern.MatchString(trimmed) {
		return "/" + trimmed
	}

	out := absoluteImagePattern.ReplaceAllStringFunc(v, func(match string) string {
		m := absoluteImagePattern.FindStringSubmatch(match)
		host := strings.ToLower(m[1])
		if privateHostPrefix.MatchString(host) || s.hosts[host] {
			return m[2]
		}
		return match
	})
	if out == v {
		return v
	}
	// A cell that held only the URL keeps only the path.
	if loc := absoluteImagePattern.FindStringIndex(trimmed); loc != nil && loc[0] == 0 && loc[1] == len(trimmed) {
		return strings.TrimSpace(out)
	}
	return out
}

// Row sanitizes every cell of a row in place and returns it.
func (s *Sanitizer) Row(row Row) Row {
	for k, v := range row {
		if strings.Contains(v, "images/") {
			row[k] = s.Value(v)
		}
	}
	return row
}
