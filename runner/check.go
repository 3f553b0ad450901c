package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jeffrom/rbgate/commit"
	"github.com/jeffrom/rbgate/hook"
	"github.com/jeffrom/rbgate/model"
)

// Rejection is returned when a verdict declines the push.
type Rejection struct {
	Verdict *commit.Verdict
}

func (rj Rejection) Error() string {
	n := 0
	if rj.Verdict != nil {
		n = len(rj.Verdict.Findings)
	}
	return fmt.Sprintf("push declined: %d problem(s) found", n)
}

func (rj Rejection) Is(other error) bool {
	_, ok := other.(Rejection)
	return ok
}

// CheckCommits decides whether commits may be accepted. The verdict is
// returned even when it declines, alongside a Rejection error.
func (r *Runner) CheckCommits(ctx context.Context, commits []*model.Commit) (*commit.Verdict, error) {
	if r.oracle == nil {
		return nil, errors.New("runner: no review server configured")
	}
	for _, c := range commits {
		r.subjects[c.ID] = c.Subject
	}

	groups := commit.Group(commits, r.extractor)
	ids := groups.IDs()
	r.cfg.Debugf("%d commit(s) reference %d review request(s), %d reference none",
		groups.Len(), len(ids), len(groups.Unreferenced()))

	v := commit.Aggregate(ctx, groups, r.oracle, commit.PolicyFromConfig(r.cfg))
	for _, f := range v.Approved {
		r.cfg.Debugf("%s (%s)", f.Description(), strings.Join(shortIDs(f.Commits), ", "))
	}
	if !v.Accepted {
		return v, Rejection{Verdict: v}
	}
	return v, nil
}

// CheckRange checks the commits selected by revs.
func (r *Runner) CheckRange(ctx context.Context, revs ...string) (*commit.Verdict, error) {
	commits, err := r.vcs.ReadCommits(ctx, revs...)
	if err != nil {
		return nil, err
	}
	return r.CheckCommits(ctx, commits)
}

// CheckPush reads pre-receive hook input from rdr and checks every commit
// the push introduces on a gated branch. Deleted refs and tags are not
// checked. A commit pushed to several branches at once is checked once.
func (r *Runner) CheckPush(ctx context.Context, rdr io.Reader) (*commit.Verdict, error) {
	updates, err := hook.ReadUpdates(rdr)
	if err != nil {
		return nil, err
	}

	var commits []*model.Commit
	seen := make(map[string]bool)
	for _, u := range updates {
		switch {
		case u.IsDelete():
			r.cfg.Debugf("skipping %s: deleted", u)
			continue
		case !u.IsBranch():
			r.cfg.Debugf("skipping %s: not a branch", u)
			continue
		case !r.cfg.GatesBranch(u.Branch()):
			r.cfg.Debugf("skipping %s: branch not gated", u)
			continue
		}

		cs, err := r.vcs.ReadCommits(ctx, u.Revs()...)
		if err != nil {
			return nil, fmt.Errorf("runner: reading commits for %s: %w", u.Ref, err)
		}
		r.cfg.Debugf("%s: %d new commit(s)", u, len(cs))
		for _, c := range cs {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			commits = append(commits, c)
		}
	}
	return r.CheckCommits(ctx, commits)
}

// CheckMessages checks raw commit messages for a review request reference,
// the way a commit-msg hook would. Approval is not checked. It returns the
// referenced review request of each message, or an empty string, and a
// verdict holding any missing reference finding.
func (r *Runner) CheckMessages(ctx context.Context, messages []string) ([]string, *commit.Verdict, error) {
	commits := make([]*model.Commit, len(messages))
	refs := make([]string, len(messages))
	for i, msg := range messages {
		mc := parseMessage(msg)
		mc.ID = fmt.Sprintf("msg%d", i+1)
		commits[i] = mc
		r.subjects[mc.ID] = mc.Subject
		refs[i], _ = r.extractor.Extract(mc.Message())
	}

	groups := commit.Group(commits, r.extractor)
	v := &commit.Verdict{
		Accepted: true,
		Enforced: r.cfg.DeclinesUnapproved(),
	}
	if unref := groups.Unreferenced(); len(unref) > 0 {
		v.Unreferenced = commitIDs(unref)
		if r.cfg.RequiresReference() {
			v.Findings = append(v.Findings, commit.Finding{
				Kind:    commit.KindMissingReference,
				Commits: v.Unreferenced,
			})
			v.Accepted = !r.cfg.DeclinesUnapproved()
		}
	}
	if !v.Accepted {
		return refs, v, Rejection{Verdict: v}
	}
	return refs, v, nil
}

func commitIDs(commits []*model.Commit) []string {
	ids := make([]string, len(commits))
	for i, c := range commits {
		ids[i] = c.ID
	}
	return ids
}

// parseMessage reads a raw commit message as git would store it: comment
// lines are dropped, as is everything below a scissors line.
func parseMessage(s string) *model.Commit {
	var cleaned []string
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(line, "# ------------------------ >8 ------------------------") {
			break
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		cleaned = append(cleaned, line)
	}
	msg := strings.TrimSpace(strings.Join(cleaned, "\n"))
	parts := strings.SplitN(msg, "\n", 2)
	mc := &model.Commit{Subject: strings.TrimSpace(parts[0])}
	if len(parts) == 2 {
		mc.Body = strings.TrimSpace(parts[1])
	}
	return mc
}

// ReadMessage reads a single raw commit message, as passed to commit-msg.
func ReadMessage(rdr io.Reader) (string, error) {
	raw, err := io.ReadAll(rdr)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func shortIDs(ids []string) []string {
	res := make([]string, len(ids))
	for i, id := range ids {
		res[i] = model.ShortID(id)
	}
	return res
}
