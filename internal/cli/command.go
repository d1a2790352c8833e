package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chojs23/enkai/internal/config"
	"github.com/chojs23/enkai/internal/markers"
)

// RunFunc executes a parsed invocation and returns the process exit code.
type RunFunc func(ctx context.Context, opts Options) int

var errFilesRequired = errors.New("--check and --apply-all require at least one FILE")

const long = `enkai resolves conflict markers left by git merge or rebase.

With no FILE it lists every conflicted file in the current repository.
After the last conflict is resolved it offers to continue, abort or skip
the operation in progress.

Modes:
  --check FILE...                 exit 0 if FILE has no conflict blocks, else 1
  --apply-all current|incoming|both FILE...
                                  resolve every conflict and write FILE

Configuration is read from $XDG_CONFIG_HOME/enkai/config.yaml and ENKAI_*
environment variables. Flags win over both.`

// NewCommand builds the root command. The exit code of run is stored in code.
func NewCommand(version string, run RunFunc, code *int) *cobra.Command {
	var (
		check      bool
		applyAll   string
		configPath string
	)

	cmd := &cobra.Command{
		Use:           "enkai [FILE...]",
		Short:         "Resolve git conflict markers interactively",
		Long:          long,
		Args:          cobra.ArbitraryArgs,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := Options{
				Files:      args,
				Check:      check,
				ConfigPath: configPath,
			}
			if applyAll != "" {
				r, ok := markers.ParseResolution(strings.ToLower(strings.TrimSpace(applyAll)))
				if !ok {
					return fmt.Errorf("invalid --apply-all: %q (expected current|incoming|both)", applyAll)
				}
				opts.ApplyAll = r
			}
			if !opts.Interactive() && len(opts.Files) == 0 {
				return errFilesRequired
			}

			cfg, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				return err
			}
			opts.Config = cfg

			*code = run(cmd.Context(), opts)
			return nil
		},
	}
	cmd.SetVersionTemplate("enkai {{.Version}}\n")

	flags := cmd.Flags()
	flags.BoolVar(&check, "check", false, "Exit 0 if every FILE is free of conflict blocks, else 1")
	flags.StringVar(&applyAll, "apply-all", "", "Resolve all conflicts non-interactively: current|incoming|both")
	flags.Bool("backup", false, "Keep FILE.enkai.bak when writing")
	flags.Bool("debug", false, "Write debug logs to the log file")
	flags.String("log-file", "", "Log file path (default: $TMPDIR/enkai.log when --debug)")
	flags.StringVar(&configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/enkai/config.yaml)")
	cmd.MarkFlagsMutuallyExclusive("check", "apply-all")

	return cmd
}

// Execute parses args and runs the matching mode. Usage errors exit 2.
func Execute(ctx context.Context, args []string, version string, stdout, stderr io.Writer, run RunFunc) int {
	code := 0
	cmd := NewCommand(version, run, &code)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\nRun 'enkai --help' for usage.\n", err)
		return 2
	}
	return code
}
