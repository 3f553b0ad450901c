// Package vcs abstracts version control systems. Currently just git.
package vcs

import (
	"context"
	"fmt"
	"strings"

	"github.com/jeffrom/rbgate/model"
)

// ZeroRev is the object name git uses in hook input for a ref that does not
// exist on one side of an update.
const ZeroRev = "0000000000000000000000000000000000000000"

type NotFoundError struct {
	Ref string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("vcs: ref %q not found", e.Ref)
}

type Interface interface {
	// ReadCommits returns the commits selected by revs, oldest first. revs
	// are revision arguments as accepted by git rev-list.
	ReadCommits(ctx context.Context, revs ...string) ([]*model.Commit, error)
}

// UpdateRevs returns the revision arguments selecting the commits a ref
// update from oldRev to newRev introduces. A newly created ref introduces
// every commit not already reachable from an existing ref.
func UpdateRevs(oldRev, newRev string) []string {
	if strings.Trim(oldRev, "0") == "" {
		return []string{newRev, "--not", "--all"}
	}
	return []string{oldRev + ".." + newRev}
}
