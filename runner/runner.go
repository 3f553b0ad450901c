// Package runner manages command-line execution
package runner

import (
	"context"
	"errors"
	"fmt"
	"text/template"

	"github.com/jeffrom/rbgate/approval"
	"github.com/jeffrom/rbgate/commit"
	"github.com/jeffrom/rbgate/config"
	"github.com/jeffrom/rbgate/vcs"
)

type Runner struct {
	cfg       config.Config
	vcs       vcs.Interface
	oracle    approval.Interface
	extractor *commit.Extractor
	report    *template.Template
	subjects  map[string]string
}

// New returns a Runner. oracle may be nil when only commit messages will be
// checked.
func New(cfg config.Config, vcs vcs.Interface, oracle approval.Interface) (*Runner, error) {
	ex, err := commit.NewExtractor(cfg.ServerURL)
	if err != nil {
		return nil, err
	}
	report, err := newReportTemplate(cfg.ReportTemplate)
	if err != nil {
		return nil, err
	}
	return &Runner{
		cfg:       cfg,
		vcs:       vcs,
		oracle:    oracle,
		extractor: ex,
		report:    report,
		subjects:  make(map[string]string),
	}, nil
}

// ServerChecker is implemented by approval authorities that can verify they
// support approval checks at all.
type ServerChecker interface {
	CheckServerVersion(ctx context.Context, min string) error
}

// Check verifies the approval authority is usable before any commits are
// checked. When problems only warn, a failed check is logged instead.
func (r *Runner) Check(ctx context.Context) error {
	if r.oracle == nil {
		return errors.New("runner: no review server configured")
	}
	if r.cfg.SkipsVersionCheck() {
		return nil
	}
	sc, ok := r.oracle.(ServerChecker)
	if !ok {
		return nil
	}
	if err := sc.CheckServerVersion(ctx, r.cfg.MinServerVersion); err != nil {
		// In warn-only mode the push goes through regardless, and unreachable
		// review requests are reported as findings.
		if !r.cfg.DeclinesUnapproved() {
			r.cfg.Errorf("warning: %v", err)
			return nil
		}
		return fmt.Errorf("runner: %w", err)
	}
	return nil
}
