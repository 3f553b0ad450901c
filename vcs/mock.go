package vcs

import (
	"context"
	"strings"
	"time"

	"github.com/jeffrom/rbgate/model"
)

type Mock struct {
	t       time.Time
	commits []*model.Commit
	ranges  map[string][]*model.Commit
	queries [][]string
}

func NewMock() *Mock {
	return &Mock{
		t:      time.Now(),
		ranges: make(map[string][]*model.Commit),
	}
}

// SetCommits sets the commits returned for any query without a more
// specific SetRange result.
func (m *Mock) SetCommits(commits ...*model.Commit) *Mock {
	m.commits = m.stamp(commits)
	return m
}

// SetRange sets the commits returned when ReadCommits is called with
// exactly revs.
func (m *Mock) SetRange(revs []string, commits ...*model.Commit) *Mock {
	m.ranges[strings.Join(revs, " ")] = m.stamp(commits)
	return m
}

func (m *Mock) stamp(commits []*model.Commit) []*model.Commit {
	finalCommits := make([]*model.Commit, len(commits))
	for i, commit := range commits {
		c := *commit
		if c.CommitterDate.IsZero() {
			c.CommitterDate = m.t
			m.t = m.t.Add(time.Minute)
		}
		finalCommits[i] = &c
	}
	return finalCommits
}

func (m *Mock) ReadCommits(ctx context.Context, revs ...string) ([]*model.Commit, error) {
	m.queries = append(m.queries, revs)
	if commits, ok := m.ranges[strings.Join(revs, " ")]; ok {
		return commits, nil
	}
	return m.commits, nil
}

// Queries returns the revision arguments of every ReadCommits call.
func (m *Mock) Queries() [][]string {
	return m.queries
}
