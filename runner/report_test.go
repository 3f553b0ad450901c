package runner

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/jeffrom/rbgate/approval"
	"github.com/jeffrom/rbgate/config"
	"github.com/jeffrom/rbgate/model"
	"github.com/jeffrom/rbgate/vcs"
)

var reportCommits = []*model.Commit{
	cmt(revA, "add login form", "Review request #9"),
	cmt(revB, "fix typo", ""),
	cmt(revC, "tweak login form", "Review request #9"),
}

func TestWriteReport(t *testing.T) {
	oracle := approval.NewMock().Set("9", approval.Reject("pending"))
	rnr := newTestRunner(t, nil, vcs.NewMock(), oracle)

	v, _ := rnr.CheckCommits(context.Background(), reportCommits)
	b := &bytes.Buffer{}
	if err := rnr.WriteReport(b, v); err != nil {
		t.Fatal(err)
	}

	res := b.String()
	expect := `
error: review request #9 is not approved: pending (aaaaaaaa, cccccccc)
    aaaaaaaa add login form
    cccccccc tweak login form
error: no review request referenced (bbbbbbbb)
    bbbbbbbb fix typo
`
	if res != expect {
		t.Fatalf("expected:\n%q\ngot:\n%q", expect, res)
	}
}

func TestWriteReportWarning(t *testing.T) {
	oracle := approval.NewMock().Set("9", approval.Reject("pending"))
	rnr := newTestRunner(t, &config.Config{DeclineUnapproved: config.Bool(false)}, vcs.NewMock(), oracle)

	v, err := rnr.CheckCommits(context.Background(), reportCommits)
	if err != nil {
		t.Fatal(err)
	}
	b := &bytes.Buffer{}
	if err := rnr.WriteReport(b, v); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), "warning: review request #9 is not approved") {
		t.Fatalf("expected findings to be warnings, got:\n%s", b.String())
	}
	if strings.Contains(b.String(), "error:") {
		t.Fatalf("expected no errors in warn-only mode, got:\n%s", b.String())
	}
}

func TestWriteReportClean(t *testing.T) {
	oracle := approval.NewMock().Set("9", approval.Approve())
	rnr := newTestRunner(t, &config.Config{RequireReference: config.Bool(false)}, vcs.NewMock(), oracle)

	v, err := rnr.CheckCommits(context.Background(), reportCommits)
	if err != nil {
		t.Fatal(err)
	}
	b := &bytes.Buffer{}
	if err := rnr.WriteReport(b, v); err != nil {
		t.Fatal(err)
	}
	if b.Len() != 0 {
		t.Fatalf("expected empty report, got %q", b.String())
	}
}

func TestWriteReportCustomTemplate(t *testing.T) {
	tmpl := `{{ range .Findings }}{{ .Kind }}|{{ .ReviewRequest }}|{{ len .Commits }}
{{ end }}`
	oracle := approval.NewMock().Set("9", approval.Fail(context.DeadlineExceeded))
	rnr := newTestRunner(t, &config.Config{ReportTemplate: tmpl}, vcs.NewMock(), oracle)

	v, _ := rnr.CheckCommits(context.Background(), reportCommits)
	b := &bytes.Buffer{}
	if err := rnr.WriteReport(b, v); err != nil {
		t.Fatal(err)
	}
	expect := "unchecked|9|2\nmissing review request||1\n"
	if b.String() != expect {
		t.Fatalf("expected %q, got %q", expect, b.String())
	}
}

func TestInvalidReportTemplate(t *testing.T) {
	cfg := config.New(&config.Config{ReportTemplate: "{{ .Nope "})
	if _, err := New(cfg, vcs.NewMock(), approval.NewMock()); err == nil {
		t.Fatal("expected invalid template to be an error")
	}
}
