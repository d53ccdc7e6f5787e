package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/enginehost/internal/diag"
	"github.com/roach88/enginehost/internal/engine"
	"github.com/roach88/enginehost/internal/ir"
	"github.com/roach88/enginehost/internal/store"
)

// BootOptions holds flags for the boot command.
type BootOptions struct {
	*RootOptions
	Database string

	// IDs overrides the instance ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDs engine.IDGenerator
}

// BootResult describes one boot of an engine against a dry-run host.
type BootResult struct {
	Engine       string              `json:"engine"`
	InstanceID   string              `json:"instance_id"`
	State        string              `json:"state"`
	Error        string              `json:"error,omitempty"`
	Deprecations []string            `json:"deprecations"`
	Events       []ir.LifecycleEvent `json:"events"`
}

// NewBootCommand creates the boot command.
func NewBootCommand(rootOpts *RootOptions) *cobra.Command {
	return newBootCommand(&BootOptions{RootOptions: rootOpts})
}

func newBootCommand(opts *BootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boot <specs-dir> <engine>",
		Short: "Build and boot an engine against a stub host",
		Long: `Assemble a host from the specs, with a stub for every host service,
build the engine (nested engines by path, parent first), boot it, then
tear the whole tree down. Every lifecycle event is printed and, with
--db, appended to a SQLite journal that 'enginehost trace' reads.

Exit codes:
  0 - Engine booted
  1 - Build or boot failed
  2 - Command error (invalid paths, database errors, etc.)

Examples:
  enginehost boot ./specs blog
  enginehost boot ./specs admin-panel/reports --db ./journal.db`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoot(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (optional)")

	return cmd
}

func runBoot(opts *BootOptions, specsDir, enginePath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(opts.RootOptions, formatter.GetErrWriter())

	path, err := splitEnginePath(enginePath)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	bundle, err := loadBundle(formatter, specsDir)
	if err != nil {
		return err
	}

	memory := engine.NewMemoryJournal()
	var journal engine.Journal = memory
	clock := engine.NewClock()
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
		last, err := st.MaxSeq(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read journal", err)
		}
		journal = engine.Tee(memory, st)
		clock = engine.NewClockAt(last)
		logger.Info("journal ready", "db", opts.Database, "resume_after", last)
	}

	ids := opts.IDs
	if ids == nil {
		ids = engine.UUIDv7Generator{}
	}

	recorder := diag.NewRecorder()
	fixture, err := assembleHost(bundle,
		engine.WithDiagnostics(diag.Multi(recorder, diag.LogSink{Logger: logger})),
		engine.WithJournal(journal),
		engine.WithClock(clock),
		engine.WithIDGenerator(ids),
		engine.WithLogger(logger),
	)
	if err != nil {
		return formatter.Fail(ExitFailure, errorCode(err), err.Error(), nil)
	}

	built, buildErr := buildPath(ctx, fixture.Host, path)
	result := BootResult{Engine: enginePath}
	var bootErr error
	if buildErr == nil {
		child := built[len(built)-1]
		result.Engine = child.Name()
		result.InstanceID = child.ID()
		bootErr = child.Boot(ctx)
		result.State = child.State().String()
		if bootErr != nil {
			result.Error = bootErr.Error()
		}
	}

	if err := fixture.Host.Destroy(ctx); err != nil {
		logger.Warn("teardown failed", "error", err)
	}

	if buildErr != nil {
		return formatter.Fail(ExitFailure, errorCode(buildErr), buildErr.Error(), nil)
	}

	result.Deprecations = recorder.Messages()
	if result.Deprecations == nil {
		result.Deprecations = []string{}
	}
	result.Events = memory.Events()

	if opts.Format == "json" {
		status := "ok"
		var cliErr *CLIError
		if bootErr != nil {
			status = "error"
			cliErr = &CLIError{Code: errorCode(bootErr), Message: bootErr.Error()}
		}
		if err := formatter.Respond(status, result, cliErr); err != nil {
			return err
		}
	} else {
		outputBootText(formatter.Writer, result)
	}

	if bootErr != nil {
		return WrapExitError(ExitFailure, "boot failed", bootErr)
	}
	return nil
}

func outputBootText(w io.Writer, result BootResult) {
	if result.Error == "" {
		fmt.Fprintf(w, "✓ %s booted (%s)\n", result.Engine, result.InstanceID)
	} else {
		fmt.Fprintf(w, "✗ %s %s (%s)\n", result.Engine, result.State, result.InstanceID)
		fmt.Fprintf(w, "  %s\n", result.Error)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Events ===")
	for _, ev := range result.Events {
		formatEvent(w, ev)
	}

	if len(result.Deprecations) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== Deprecations ===")
		for _, msg := range result.Deprecations {
			fmt.Fprintf(w, "  %s\n", msg)
		}
	}
}

// formatEvent prints one journal event as a timeline line.
func formatEvent(w io.Writer, ev ir.LifecycleEvent) {
	line := fmt.Sprintf("  [%d] %-11s %s", ev.Seq, ev.Kind, ev.Engine)
	if ev.Detail != "" {
		line += "  " + ev.Detail
	}
	fmt.Fprintln(w, line)
}
