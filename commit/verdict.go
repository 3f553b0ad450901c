package commit

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jeffrom/rbgate/approval"
	"github.com/jeffrom/rbgate/config"
)

// Policy controls how Aggregate turns findings into a verdict.
type Policy struct {
	// RequireReference declines commits that reference no review request.
	RequireReference bool
	// DeclineUnapproved makes problems decline the batch. When false, the
	// verdict is always accepted and findings are only warnings.
	DeclineUnapproved bool
	// Concurrency bounds parallel approval checks. Values below 1 mean 1.
	Concurrency int
}

func PolicyFromConfig(cfg config.Config) Policy {
	return Policy{
		RequireReference:  cfg.RequiresReference(),
		DeclineUnapproved: cfg.DeclinesUnapproved(),
		Concurrency:       cfg.GetConcurrency(),
	}
}

// Finding records the outcome for one group of commits.
type Finding struct {
	Kind          Kind     `json:"kind"`
	ReviewRequest string   `json:"review_request,omitempty"`
	Commits       []string `json:"commits"`
	Reason        string   `json:"reason,omitempty"`
}

func (f Finding) Description() string {
	switch f.Kind {
	case KindApproved:
		return fmt.Sprintf("review request #%s is approved", f.ReviewRequest)
	case KindNotApproved:
		if f.Reason == "" {
			return fmt.Sprintf("review request #%s is not approved", f.ReviewRequest)
		}
		return fmt.Sprintf("review request #%s is not approved: %s", f.ReviewRequest, f.Reason)
	case KindQueryFailed:
		return fmt.Sprintf("could not check review request #%s: %s", f.ReviewRequest, f.Reason)
	case KindMissingReference, KindUnreferenced:
		return "no review request referenced"
	}
	return f.Kind.String()
}

// Verdict is the decision for one batch of commits.
type Verdict struct {
	Accepted bool `json:"accepted"`
	// Enforced is false when findings were only reported as warnings.
	Enforced bool `json:"enforced"`
	// Findings lists the problems, review requests in first-seen order
	// followed by unreferenced commits.
	Findings []Finding `json:"findings,omitempty"`
	// Approved lists the review requests that passed.
	Approved []Finding `json:"approved,omitempty"`
	// Unreferenced lists commits that reference no review request, whether
	// or not that is a finding.
	Unreferenced []string `json:"unreferenced,omitempty"`
}

// Clean reports whether there was nothing to report.
func (v *Verdict) Clean() bool {
	return len(v.Findings) == 0
}

// Aggregate checks every referenced review request exactly once and
// combines the results into a verdict. Approval checks may run
// concurrently, but findings are always assembled in group order. Aggregate
// never fails: checks that cannot be completed become findings, and count
// as not approved.
func Aggregate(ctx context.Context, groups *Groups, oracle approval.Interface, pol Policy) *Verdict {
	ids := groups.IDs()
	results := checkAll(ctx, ids, oracle, pol.Concurrency)

	v := &Verdict{Enforced: pol.DeclineUnapproved}
	accepted := true
	for i, id := range ids {
		res := results[i]
		f := Finding{
			ReviewRequest: id,
			Commits:       commitIDs(groups.Commits(id)),
			Reason:        res.Reason,
		}
		switch res.Status {
		case approval.Approved:
			f.Kind = KindApproved
			v.Approved = append(v.Approved, f)
			continue
		case approval.NotApproved:
			f.Kind = KindNotApproved
		case approval.QueryFailed:
			f.Kind = KindQueryFailed
		default:
			f.Kind = KindQueryFailed
			f.Reason = fmt.Sprintf("invalid approval status %d", int(res.Status))
		}
		accepted = false
		v.Findings = append(v.Findings, f)
	}

	if unref := groups.Unreferenced(); len(unref) > 0 {
		v.Unreferenced = commitIDs(unref)
		if pol.RequireReference {
			accepted = false
			v.Findings = append(v.Findings, Finding{
				Kind:    KindMissingReference,
				Commits: v.Unreferenced,
			})
		}
	}

	v.Accepted = accepted || !pol.DeclineUnapproved
	return v
}

func checkAll(ctx context.Context, ids []string, oracle approval.Interface, concurrency int) []approval.Result {
	results := make([]approval.Result, len(ids))
	if concurrency < 1 {
		concurrency = 1
	}

	var eg errgroup.Group
	eg.SetLimit(concurrency)
	for i, id := range ids {
		i, id := i, id
		eg.Go(func() error {
			results[i] = oracle.CheckApproval(ctx, id)
			return nil
		})
	}
	// checks report failures as results, never as errors
	_ = eg.Wait()
	return results
}
