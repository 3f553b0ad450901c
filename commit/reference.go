package commit

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	referencePattern   = `(?i)(?:reviewed at %s/r/|review request #)(?P<id>\d+)`
	requestOnlyPattern = `(?i)review request #(?P<id>\d+)`
)

// Extractor finds the review request a commit message references. It
// recognizes "Reviewed at <server>/r/<id>" and "Review request #<id>", in any
// letter case. The leftmost match wins.
type Extractor struct {
	serverURL string
	re        *regexp.Regexp
	idIndex   int
}

// NewExtractor compiles the reference pattern for serverURL. If serverURL is
// empty, only the "Review request #<id>" form is recognized.
func NewExtractor(serverURL string) (*Extractor, error) {
	serverURL = strings.TrimRight(serverURL, "/")
	pat := requestOnlyPattern
	if serverURL != "" {
		pat = fmt.Sprintf(referencePattern, regexp.QuoteMeta(serverURL))
	}
	re, err := regexp.Compile(pat)
	if err != nil {
		return nil, fmt.Errorf("commit: compile reference pattern: %w", err)
	}
	return &Extractor{
		serverURL: serverURL,
		re:        re,
		idIndex:   re.SubexpIndex("id"),
	}, nil
}

// Extract returns the review request id referenced by message, if any.
func (e *Extractor) Extract(message string) (string, bool) {
	m := e.re.FindStringSubmatch(message)
	if m == nil {
		return "", false
	}
	return normalizeID(m[e.idIndex]), true
}

func (e *Extractor) String() string {
	return e.re.String()
}

// normalizeID strips leading zeros so "#042" and "#42" are one review
// request.
func normalizeID(id string) string {
	trimmed := strings.TrimLeft(id, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}
