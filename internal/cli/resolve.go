package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/enginehost/internal/container"
	"github.com/roach88/enginehost/internal/diag"
	"github.com/roach88/enginehost/internal/engine"
	"github.com/roach88/enginehost/internal/ir"
)

// ResolveResult describes how one engine resolved against its host.
type ResolveResult struct {
	Requested    string             `json:"requested"`
	Engine       string             `json:"engine"`
	Parent       string             `json:"parent"`
	Granted      []ir.ServiceEntry  `json:"granted"`
	Services     []ir.ServiceGrant  `json:"services"`
	Unsatisfied  []string           `json:"unsatisfied,omitempty"`
	Deprecations []diag.Deprecation `json:"deprecations"`
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <specs-dir> <engine>",
		Short: "Show the services an engine receives from its host",
		Long: `Build an engine against a host assembled from the specs and print
its service map: each service the engine declares, the host service it
forwards to, and whether the host granted it. Deprecations raised while
resolving (camelCase names, the host's router service) are listed too.

Nested engines are addressed by path, parent first.

Examples:
  enginehost resolve ./specs blog
  enginehost resolve ./specs adminPanel
  enginehost resolve ./specs admin-panel/reports --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runResolve(opts *RootOptions, specsDir, enginePath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	ctx := context.Background()

	path, err := splitEnginePath(enginePath)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	bundle, err := loadBundle(formatter, specsDir)
	if err != nil {
		return err
	}

	recorder := diag.NewRecorder()
	fixture, err := assembleHost(bundle,
		engine.WithDiagnostics(recorder),
		engine.WithLogger(newLogger(opts, formatter.GetErrWriter())),
	)
	if err != nil {
		return formatter.Fail(ExitFailure, errorCode(err), err.Error(), nil)
	}
	defer fixture.Host.Destroy(ctx)

	built, err := buildPath(ctx, fixture.Host, path)
	if err != nil {
		return formatter.Fail(ExitFailure, errorCode(err), err.Error(), nil)
	}
	child := built[len(built)-1]
	granted, _ := child.Parent().EngineConfig(child.Name())

	result := ResolveResult{
		Requested:    path[len(path)-1],
		Engine:       child.Name(),
		Parent:       child.Parent().Name(),
		Granted:      granted.Dependencies.ServiceList(),
		Services:     child.Grants(),
		Unsatisfied:  engine.UnsatisfiedServices(child.Grants()),
		Deprecations: recorder.All(),
	}
	if result.Granted == nil {
		result.Granted = []ir.ServiceEntry{}
	}
	if result.Services == nil {
		result.Services = []ir.ServiceGrant{}
	}
	if result.Deprecations == nil {
		result.Deprecations = []diag.Deprecation{}
	}

	if opts.Format == "json" {
		return formatter.Respond("ok", result, nil)
	}
	outputResolveText(formatter, result)
	return nil
}

func outputResolveText(formatter *OutputFormatter, result ResolveResult) {
	w := formatter.Writer

	if result.Requested != result.Engine {
		fmt.Fprintf(w, "Engine: %s (requested %s)\n", result.Engine, result.Requested)
	} else {
		fmt.Fprintf(w, "Engine: %s\n", result.Engine)
	}
	fmt.Fprintf(w, "Parent: %s\n", result.Parent)
	if len(result.Granted) == 0 {
		fmt.Fprintln(w, "Granted: (nothing)")
	} else {
		entries := make([]string, len(result.Granted))
		for i, e := range result.Granted {
			entries[i] = e.String()
		}
		fmt.Fprintf(w, "Granted: %s\n", strings.Join(entries, ", "))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Services ===")
	if len(result.Services) == 0 {
		fmt.Fprintln(w, "  (none declared)")
	}
	for _, g := range result.Services {
		if !g.Satisfied {
			fmt.Fprintf(w, "  %s (not granted)\n", container.ServiceKey(g.External))
			continue
		}
		fmt.Fprintf(w, "  %s -> %s\n", container.ServiceKey(g.External), container.ServiceKey(g.Internal))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Deprecations ===")
	if len(result.Deprecations) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, d := range result.Deprecations {
		fmt.Fprintf(w, "  %s\n", d.Message)
	}
}
