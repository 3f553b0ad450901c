package config

import (
	"bufio"
	"fmt"
	"io"
	"path"
	"strings"
)

// RequiresReference reports whether commits without a review request
// reference should decline the push. Defaults to true.
func (c Config) RequiresReference() bool {
	if c.RequireReference == nil {
		return true
	}
	return *c.RequireReference
}

// DeclinesUnapproved reports whether problems actually decline the push.
// When false, rbgate only warns. Defaults to true.
func (c Config) DeclinesUnapproved() bool {
	if c.DeclineUnapproved == nil {
		return true
	}
	return *c.DeclineUnapproved
}

// GatesBranch reports whether pushes to branch are checked. An empty
// Branches list gates every branch. Entries may be path.Match globs.
func (c Config) GatesBranch(branch string) bool {
	if len(c.Branches) == 0 {
		return true
	}
	for _, pat := range c.Branches {
		if pat == branch {
			return true
		}
		if ok, err := path.Match(pat, branch); err == nil && ok {
			return true
		}
	}
	return false
}

func Bool(b bool) *bool { return &b }

func Int(n int) *int { return &n }

func (c Config) PolicySummary(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if c.ServerURL != "" {
		bw.WriteString(fmt.Sprintf("Review server: %s\n", c.ServerURL))
	} else {
		bw.WriteString("Review server: <none>\n")
	}
	bw.WriteString(fmt.Sprintf("Require review request: %t\n", c.RequiresReference()))
	bw.WriteString(fmt.Sprintf("Decline unapproved push: %t\n", c.DeclinesUnapproved()))

	if len(c.Branches) > 0 {
		bw.WriteString(fmt.Sprintf("Branches: %s\n", strings.Join(c.Branches, ", ")))
	} else {
		bw.WriteString("Branches: all\n")
	}

	return bw.Flush()
}
