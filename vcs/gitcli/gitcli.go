// Package gitcli implements vcs.Interface using the git commandline tool.
package gitcli

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jeffrom/rbgate/config"
	"github.com/jeffrom/rbgate/model"
	"github.com/jeffrom/rbgate/vcs"
)

// gitISO8601 is the date format of git log's %ai and %ci, e.g.
// 2020-08-17 16:26:10 -0700
const gitISO8601 = "2006-01-02 15:04:05 -0700"

// Every field of a log entry is terminated by a NUL byte, which git does
// not allow in commit messages.
const (
	logFieldEnd = "\x00"

	expectedLogParts = 9
)

var logFormat = "--pretty=tformat:" + strings.Join([]string{
	"%H", "%aN", "%ae", "%ai", "%cN", "%ce", "%ci", "%s", "%b",
}, "%x00") + "%x00"

// Git implements vcs.Interface using the git commandline tool.
type Git struct {
	cfg config.Config
	wd  string
}

// New returns a Git operating in wd, or the working directory if wd is
// empty. In a hook, that is the repository being pushed to.
func New(cfg config.Config, wd string) *Git {
	return &Git{
		cfg: cfg,
		wd:  wd,
	}
}

func (g *Git) ReadCommits(ctx context.Context, revs ...string) ([]*model.Commit, error) {
	if len(revs) == 0 {
		return nil, errors.New("gitcli: no revisions given")
	}
	args := append([]string{"log", "--reverse", logFormat}, revs...)
	b, err := g.call(ctx, args)
	if err != nil {
		msg := err.Error()
		if strings.Contains(msg, "unknown revision") || strings.Contains(msg, "bad revision") {
			return nil, fmt.Errorf("%w: %v", vcs.NotFoundError{Ref: strings.Join(revs, " ")}, err)
		}
		return nil, err
	}
	return parseLog(b)
}

func parseLog(b []byte) ([]*model.Commit, error) {
	fields := strings.Split(string(b), logFieldEnd)
	// everything after the last terminator is the trailing newline
	if rest := fields[len(fields)-1]; strings.TrimSpace(rest) != "" {
		return nil, fmt.Errorf("gitcli: unterminated git log entry: %q", rest)
	}
	fields = fields[:len(fields)-1]
	if len(fields)%expectedLogParts != 0 {
		return nil, fmt.Errorf("gitcli: expected %d fields per git log entry, got %d in total", expectedLogParts, len(fields))
	}

	var commits []*model.Commit
	for i := 0; i < len(fields); i += expectedLogParts {
		parts := fields[i : i+expectedLogParts]
		// entries after the first start with git's entry separator
		commitID := strings.TrimLeft(parts[0], "\n")
		if !commitIDRE.MatchString(commitID) {
			return nil, fmt.Errorf("gitcli: unexpected commit id in git log: %q", commitID)
		}

		authorDate, err := time.Parse(gitISO8601, parts[3])
		if err != nil {
			return nil, fmt.Errorf("gitcli: commit %s: %w", commitID, err)
		}
		committerDate, err := time.Parse(gitISO8601, parts[6])
		if err != nil {
			return nil, fmt.Errorf("gitcli: commit %s: %w", commitID, err)
		}

		commits = append(commits, &model.Commit{
			ID:             commitID,
			Author:         parts[1],
			AuthorEmail:    parts[2],
			AuthorDate:     authorDate,
			Committer:      parts[4],
			CommitterEmail: parts[5],
			CommitterDate:  committerDate,
			Subject:        parts[7],
			Body:           strings.TrimSpace(parts[8]),
		})
	}
	return commits, nil
}

var commitIDRE = regexp.MustCompile(`^(?:[0-9a-f]{40}|[0-9a-f]{64})$`)
