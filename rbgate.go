// Package rbgate checks that pushed commits reference approved Review Board
// review requests, and accepts or declines the push accordingly.
//
// Related packages: config, commit, approval, approval/reviewboard, hook,
// runner, model, vcs, vcs/gitcli
package rbgate

import "github.com/jeffrom/rbgate/config"

// Config holds the configuration variables for rbgate. This struct is
// intended for command-line use, so not all of its attributes are applicable
// to every operation.
//
// See "go doc github.com/jeffrom/rbgate/config Config" for more information.
type Config = config.Config
