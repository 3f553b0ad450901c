package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"github.com/jeffrom/rbgate/approval/reviewboard"
	"github.com/jeffrom/rbgate/commit"
	"github.com/jeffrom/rbgate/config"
	"github.com/jeffrom/rbgate/hook"
	"github.com/jeffrom/rbgate/runner"
	"github.com/jeffrom/rbgate/vcs/gitcli"
)

var (
	// overridden by go build -X
	Version string
)

const (
	exitRejected = 1
	exitFatal    = 2
)

func main() {
	if err := run(os.Args); err != nil {
		os.Exit(exitCode(config.New(nil), err))
	}
}

// exitCode reports err and returns the status to exit with. A rejection was
// already reported as findings.
func exitCode(cfg config.Config, err error) int {
	if errors.Is(err, runner.Rejection{}) {
		return exitRejected
	}
	cfg.Errorf("Error: %v", err)
	return exitFatal
}

func run(rawArgs []string) error {
	return runWithTerminalIO(rawArgs, &config.DefaultTermIO, os.Getenv)
}

func runWithTerminalIO(rawArgs []string, termio *config.TerminalIO, getenv func(string) string) error {
	flagCfg := &config.Config{}

	var help bool
	var version bool
	var cfgFile string
	var requireRef bool
	var declineUnapproved bool
	var maxRetries int
	var skipVersionCheck bool
	var revRange string
	var checkCommits []string
	var readStats bool
	var printConfig bool
	flags := pflag.NewFlagSet("rbgate", pflag.ContinueOnError)
	flags.SetOutput(termio.Stderr)
	flags.BoolVarP(&help, "help", "h", false, "show help")
	flags.BoolVarP(&version, "version", "V", false, "print version and exit")
	flags.StringVarP(&cfgFile, "config", "c", "", "specify config `file`")
	flags.StringVarP(&flagCfg.ServerURL, "server-url", "s", "", "Review Board server `url`")
	flags.StringVarP(&flagCfg.Username, "username", "u", "", "Review Board `user`name")
	flags.StringVar(&flagCfg.APIToken, "api-token", "", "Review Board API `token`")
	flags.BoolVar(&requireRef, "require-reference", true, "decline commits that reference no review request")
	flags.BoolVar(&declineUnapproved, "decline-unapproved", true, "decline the push when there are problems, instead of warning")
	flags.StringArrayVarP(&flagCfg.Branches, "branch", "b", nil, "only gate branches matching `pattern`")
	flags.IntVarP(&flagCfg.Concurrency, "concurrency", "j", 0, "query up to `n` review requests at once")
	flags.StringVar(&flagCfg.Timeout, "timeout", "", "per-request `duration` for the review server")
	flags.IntVar(&maxRetries, "max-retries", config.DefaultMaxRetries, "retry transient server errors `n` times")
	flags.StringVar(&flagCfg.MinServerVersion, "min-server-version", "", "minimum Review Board `version`")
	flags.BoolVar(&skipVersionCheck, "skip-version-check", false, "don't check the Review Board version")
	flags.StringVarP(&revRange, "range", "r", "", "check the commits of revision `range` instead of reading hook input")
	flags.StringArrayVar(&checkCommits, "check-commit", nil, "only check that commit `message` references a review request")
	flags.BoolVarP(&readStats, "stats", "S", false, "print commit stats after checking")
	flags.BoolVar(&printConfig, "print-config", false, "print configuration and exit")
	flags.BoolVarP(&flagCfg.Verbose, "verbose", "v", false, "print additional debugging info")
	flags.BoolVarP(&flagCfg.Quiet, "quiet", "q", false, "print as little as necessary")

	if err := flags.Parse(rawArgs[1:]); err != nil {
		return err
	}
	if flags.Lookup("require-reference").Changed {
		flagCfg.RequireReference = config.Bool(requireRef)
	}
	if flags.Lookup("decline-unapproved").Changed {
		flagCfg.DeclineUnapproved = config.Bool(declineUnapproved)
	}
	if flags.Lookup("max-retries").Changed {
		flagCfg.MaxRetries = config.Int(maxRetries)
	}
	if flags.Lookup("skip-version-check").Changed {
		flagCfg.SkipVersionCheck = config.Bool(skipVersionCheck)
	}

	cfg := config.NewWithTerminalIO(nil, termio)
	if help {
		usage(cfg, flags)
		return nil
	}
	if version {
		cfg.Printf("%s", Version)
		return nil
	}

	fileCfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := config.Merge(&cfg, fileCfg, config.FromEnv(getenv), flagCfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if printConfig {
		b, err := yaml.Marshal(cfg.Redacted())
		if err != nil {
			return err
		}
		cfg.Term.Printf("%s", b)
		return nil
	}
	if cfg.Verbose {
		b, err := json.MarshalIndent(cfg.Redacted(), "", "  ")
		die(err)
		cfg.Debugf("config: %s", string(b))
		die(cfg.PolicySummary(cfg.Term.Stdout))
	}
	// done setting up config

	ctx := context.Background()
	git := gitcli.New(cfg, "")

	if flags.Lookup("check-commit").Changed {
		rnr, err := runner.New(cfg, git, nil)
		if err != nil {
			return err
		}
		return checkMessages(ctx, cfg, rnr, checkCommits)
	}

	rb, err := reviewboard.New(cfg)
	if err != nil {
		return err
	}
	rnr, err := runner.New(cfg, git, rb)
	if err != nil {
		return err
	}
	if err := rnr.Check(ctx); err != nil {
		return err
	}

	var v *commit.Verdict
	if revRange != "" {
		v, err = rnr.CheckRange(ctx, strings.Fields(revRange)...)
	} else {
		v, err = rnr.CheckPush(ctx, cfg.Term.Stdin)
	}
	if v != nil {
		if werr := rnr.WriteReport(cfg.Term.Stderr, v); werr != nil {
			cfg.Errorf("failed to write report: %v", werr)
		}
		if readStats {
			if serr := rnr.Stats(v).TextSummary(cfg.Term.Stdout); serr != nil {
				return serr
			}
		}
	}
	if err != nil {
		if errors.Is(err, hook.ErrMalformedInput) {
			return fmt.Errorf("invalid hook input: %w", err)
		}
		return err
	}

	if v.Clean() {
		cfg.Printf("OK")
	} else {
		cfg.Printf("OK, with %d warning(s)", len(v.Findings))
	}
	return nil
}

func checkMessages(ctx context.Context, cfg config.Config, rnr *runner.Runner, messages []string) error {
	if len(messages) == 1 && messages[0] == "-" {
		if f, ok := cfg.Term.Stdin.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
			msg, err := runner.ReadMessage(cfg.Term.Stdin)
			if err != nil {
				return err
			}
			messages = []string{msg}
		}
	}

	refs, v, err := rnr.CheckMessages(ctx, messages)
	if v != nil {
		if werr := rnr.WriteReport(cfg.Term.Stderr, v); werr != nil {
			cfg.Errorf("failed to write report: %v", werr)
		}
	}
	if err != nil {
		return err
	}
	for _, ref := range refs {
		if ref == "" {
			cfg.Printf("OK, no review request")
			continue
		}
		cfg.Printf("OK, review request #%s", ref)
	}
	return nil
}

func die(err error) {
	if err != nil {
		panic(err)
	}
}

func usage(cfg config.Config, flags *pflag.FlagSet) {
	cfg.Printf(`%s [flags]

A git pre-receive hook that declines pushes whose commits don't reference an
approved Review Board review request.

Commits reference a review request with a line like:

    Reviewed at https://reviews.example.com/r/123/
    Review request #123

FLAGS
%s

Configuration is read from rbgate.yaml, rbgate.yml or rbgate.toml in the
working directory or any parent, then from RBGATE_SERVER_URL,
RBGATE_USERNAME, RBGATE_PASSWORD and RBGATE_API_TOKEN, then from flags.

EXIT STATUS

0 the push is accepted
1 the push is declined
2 rbgate could not decide, for example on malformed hook input

EXAMPLES

# as a pre-receive hook
$ rbgate --server-url https://reviews.example.com

# check a range of commits before pushing
$ rbgate --range origin/main..HEAD

# from a commit-msg hook
$ rbgate --check-commit - < "$1"
`, "rbgate", flags.FlagUsages())
}
