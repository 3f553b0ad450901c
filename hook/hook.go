// Package hook reads the ref updates git passes to a pre-receive hook.
package hook

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/sosedoff/gitkit"

	"github.com/jeffrom/rbgate/vcs"
)

// ErrMalformedInput is returned when hook input can't be parsed. Nothing can
// be checked without a valid list of updates, so it is fatal.
var ErrMalformedInput = errors.New("hook: malformed input")

var revRE = regexp.MustCompile(`^(?:[0-9a-f]{40}|[0-9a-f]{64})$`)

// Update is one "<old-rev> <new-rev> <ref>" line of pre-receive input.
type Update struct {
	*gitkit.HookInfo
}

func (u *Update) IsCreate() bool { return isZero(u.OldRev) }

func (u *Update) IsDelete() bool { return isZero(u.NewRev) }

func (u *Update) IsBranch() bool { return strings.HasPrefix(u.Ref, "refs/heads/") }

// Branch returns the branch name, or an empty string for other refs.
func (u *Update) Branch() string {
	if !u.IsBranch() {
		return ""
	}
	return strings.TrimPrefix(u.Ref, "refs/heads/")
}

// Revs returns the revision arguments selecting the commits this update
// introduces.
func (u *Update) Revs() []string {
	return vcs.UpdateRevs(u.OldRev, u.NewRev)
}

func (u *Update) String() string {
	return fmt.Sprintf("%s %s..%s", u.Ref, shortRev(u.OldRev), shortRev(u.NewRev))
}

// ReadUpdates parses pre-receive input, one update per line. Blank lines are
// ignored.
func ReadUpdates(r io.Reader) ([]*Update, error) {
	var updates []*Update
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := validateLine(line); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedInput, lineno, err)
		}
		info, err := gitkit.ReadHookInput(strings.NewReader(line))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedInput, lineno, err)
		}
		updates = append(updates, &Update{HookInfo: info})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("hook: reading input: %w", err)
	}
	return updates, nil
}

func validateLine(line string) error {
	fields := strings.Split(line, " ")
	if len(fields) != 3 {
		return fmt.Errorf("expected 3 fields, got %d", len(fields))
	}
	for _, rev := range fields[:2] {
		if !revRE.MatchString(rev) {
			return fmt.Errorf("invalid object name %q", rev)
		}
	}
	if isZero(fields[0]) && isZero(fields[1]) {
		return errors.New("both object names are zero")
	}
	ref := fields[2]
	if !strings.HasPrefix(ref, "refs/") || strings.Count(ref, "/") < 2 || strings.HasSuffix(ref, "/") {
		return fmt.Errorf("invalid ref %q", ref)
	}
	return nil
}

func isZero(rev string) bool {
	return strings.Trim(rev, "0") == ""
}

func shortRev(rev string) string {
	if isZero(rev) {
		return "(none)"
	}
	if len(rev) > 8 {
		return rev[:8]
	}
	return rev
}
