package gitcli

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/jeffrom/rbgate/config"
	"github.com/jeffrom/rbgate/vcs"
)

// logEntry renders one commit the way logFormat makes git print it.
func logEntry(fields ...string) string {
	return strings.Join(fields, "\x00") + "\x00\n"
}

var (
	revA = strings.Repeat("a", 40)
	revB = strings.Repeat("b", 40)
)

func TestParseLog(t *testing.T) {
	log := logEntry(revA, "Ann", "ann@example.com", "2020-08-17 16:26:10 -0700", "Ann", "ann@example.com", "2020-08-17 16:26:10 -0700", "first commit", "") +
		logEntry(revB, "Bob", "bob@example.com", "2020-08-18 09:00:00 +0000", "Bob", "bob@example.com", "2020-08-18 09:00:00 +0000", "second commit", "Some detail.\n\nReviewed at https://reviews.example.com/r/17/\n")
	commits, err := parseLog([]byte(log))
	if err != nil {
		t.Fatal(err)
	}
	if len(commits) != 2 {
		t.Fatalf("expected 2 commits, got %d", len(commits))
	}

	first := commits[0]
	if first.ID != revA || first.Subject != "first commit" || first.Body != "" {
		t.Fatalf("unexpected first commit: %+v", first)
	}
	if first.Author != "Ann" || first.AuthorDate.Year() != 2020 {
		t.Fatalf("unexpected first commit author: %+v", first)
	}

	second := commits[1]
	expectBody := "Some detail.\n\nReviewed at https://reviews.example.com/r/17/"
	if second.ID != revB || second.Body != expectBody {
		t.Fatalf("expected body %q, got %q", expectBody, second.Body)
	}
}

func TestParseLogMarkersInMessage(t *testing.T) {
	body := "mentions _SEP_ and _START_ in passing\nand ends a line with _END_\n\nReview request #5"
	log := logEntry(revA, "Ann", "ann@example.com", "2020-08-17 16:26:10 -0700", "Ann", "ann@example.com", "2020-08-17 16:26:10 -0700", "rename _SEP_ constant", body)
	commits, err := parseLog([]byte(log))
	if err != nil {
		t.Fatal(err)
	}
	if len(commits) != 1 {
		t.Fatalf("expected 1 commit, got %d", len(commits))
	}
	if commits[0].Subject != "rename _SEP_ constant" || commits[0].Body != body {
		t.Fatalf("unexpected commit: %+v", commits[0])
	}
}

func TestParseLogEmpty(t *testing.T) {
	commits, err := parseLog(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(commits) != 0 {
		t.Fatalf("expected no commits, got %d", len(commits))
	}
}

func TestParseLogInvalid(t *testing.T) {
	date := "2020-08-17 16:26:10 -0700"
	tcs := []struct {
		name string
		log  string
	}{
		{name: "fields", log: logEntry(revA, "a", "b")},
		{name: "commit-id", log: logEntry("abc", "a", "b", date, "c", "d", date, "s", "")},
		{name: "date", log: logEntry(revA, "a", "b", "yesterday", "c", "d", date, "s", "")},
		{name: "unterminated", log: logEntry(revA, "a", "b", date, "c", "d", date, "s", "") + revB + "\x00a\x00b"},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseLog([]byte(tc.log)); err == nil {
				t.Fatal("expected parse error")
			} else {
				t.Log(err)
			}
		})
	}
}

func TestArgsString(t *testing.T) {
	got := ArgsString([]string{"commit", "-m", "a message"})
	if expect := `commit -m "a message"`; got != expect {
		t.Fatalf("expected %q, got %q", expect, got)
	}
}

func TestReadCommits(t *testing.T) {
	if testing.Short() {
		t.Skip("-short")
	}
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found")
	}

	ctx := context.Background()
	dir := t.TempDir()
	gitIn(t, dir, "init")
	gitIn(t, dir, "commit", "--allow-empty", "-m", "initial commit")
	gitIn(t, dir, "commit", "--allow-empty", "-m", "add a thing\n\nReview request #5")
	gitIn(t, dir, "commit", "--allow-empty", "-m", "add another thing\n\nReviewed at https://reviews.example.com/r/6/")

	g := New(config.New(nil), dir)
	commits, err := g.ReadCommits(ctx, "HEAD~2..HEAD")
	if err != nil {
		t.Fatal(err)
	}
	if len(commits) != 2 {
		t.Fatalf("expected 2 commits, got %d", len(commits))
	}
	if commits[0].Subject != "add a thing" || commits[1].Subject != "add another thing" {
		t.Fatalf("expected commits oldest first, got %q, %q", commits[0].Subject, commits[1].Subject)
	}
	if commits[0].Body != "Review request #5" {
		t.Fatalf("unexpected body %q", commits[0].Body)
	}
	if len(commits[0].ID) != 40 {
		t.Fatalf("expected full commit id, got %q", commits[0].ID)
	}

	// every commit is already reachable from a ref
	commits, err = g.ReadCommits(ctx, vcs.UpdateRevs(vcs.ZeroRev, "HEAD")...)
	if err != nil {
		t.Fatal(err)
	}
	if len(commits) != 0 {
		t.Fatalf("expected no new commits, got %d", len(commits))
	}

	_, err = g.ReadCommits(ctx, "nope..HEAD")
	if nf := (vcs.NotFoundError{}); !errors.As(err, &nf) {
		t.Fatalf("expected vcs.NotFoundError, got %v", err)
	}
}

func gitIn(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=rbgate-test",
		"GIT_AUTHOR_EMAIL=rbgate-test@example.com",
		"GIT_COMMITTER_NAME=rbgate-test",
		"GIT_COMMITTER_EMAIL=rbgate-test@example.com",
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %s: %v\n%s", ArgsString(args), err, out)
	}
}
