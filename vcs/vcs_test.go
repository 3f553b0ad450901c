package vcs

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/jeffrom/rbgate/model"
)

func TestUpdateRevs(t *testing.T) {
	tcs := []struct {
		name   string
		old    string
		new    string
		expect []string
	}{
		{name: "update", old: "aaa", new: "bbb", expect: []string{"aaa..bbb"}},
		{name: "create", old: ZeroRev, new: "bbb", expect: []string{"bbb", "--not", "--all"}},
		{name: "create-sha256", old: strings.Repeat("0", 64), new: "bbb", expect: []string{"bbb", "--not", "--all"}},
		{name: "create-empty", old: "", new: "bbb", expect: []string{"bbb", "--not", "--all"}},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			if got := UpdateRevs(tc.old, tc.new); !reflect.DeepEqual(got, tc.expect) {
				t.Fatalf("expected %q, got %q", tc.expect, got)
			}
		})
	}
}

func TestMock(t *testing.T) {
	m := NewMock().
		SetCommits(&model.Commit{ID: "default"}).
		SetRange([]string{"a..b"}, &model.Commit{ID: "one"}, &model.Commit{ID: "two"})

	ctx := context.Background()
	commits, err := m.ReadCommits(ctx, "a..b")
	if err != nil {
		t.Fatal(err)
	}
	if len(commits) != 2 || commits[0].ID != "one" {
		t.Fatalf("unexpected commits: %+v", commits)
	}
	if !commits[0].CommitterDate.Before(commits[1].CommitterDate) {
		t.Fatal("expected commits to be stamped oldest first")
	}

	commits, _ = m.ReadCommits(ctx, "c..d")
	if len(commits) != 1 || commits[0].ID != "default" {
		t.Fatalf("unexpected default commits: %+v", commits)
	}
	if len(m.Queries()) != 2 {
		t.Fatalf("expected 2 queries, got %d", len(m.Queries()))
	}
}
