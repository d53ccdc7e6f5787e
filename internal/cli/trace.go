package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/enginehost/internal/ir"
	"github.com/roach88/enginehost/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Instance string // optional - only this instance's events
	Engine   string // optional - only events of instances of this engine
	Kind     string // optional - only events of this kind
}

// TraceInstance is one journaled instance.
type TraceInstance struct {
	ID       string `json:"id"`
	ParentID string `json:"parent_id,omitempty"`
	Engine   string `json:"engine"`
	FirstSeq int64  `json:"first_seq"`
	LastKind string `json:"last_kind"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Instances []TraceInstance     `json:"instances"`
	Timeline  []ir.LifecycleEvent `json:"timeline"`
	Stats     TraceStats          `json:"stats"`
}

// TraceStats holds summary statistics for the journal.
type TraceStats struct {
	TotalEvents  int `json:"total_events"`
	Instances    int `json:"instances"`
	Live         int `json:"live"`
	Failed       int `json:"failed"`
	Deprecations int `json:"deprecations"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the lifecycle journal",
		Long: `Show the lifecycle journal written by 'enginehost boot --db'.

The output includes:
- Instances: the instance tree, each with the last event recorded for it
- Timeline: every event in sequence order
- Stats: summary counts

Examples:
  enginehost trace --db ./journal.db
  enginehost trace --db ./journal.db --instance 0192f3c4-...
  enginehost trace --db ./journal.db --engine blog --kind grant
  enginehost trace --db ./journal.db --kind deprecation --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Instance, "instance", "", "filter to one instance ID")
	cmd.Flags().StringVar(&opts.Engine, "engine", "", "filter to one engine")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "filter to one event kind")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	if _, err := os.Stat(opts.Database); err != nil {
		return WrapExitError(ExitCommandError, "database not found", err)
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	records, err := st.ReadInstances(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read instances", err)
	}

	events, err := st.QueryEvents(ctx, store.EventQuery{
		Instance: opts.Instance,
		Engine:   opts.Engine,
		Kind:     ir.EventKind(opts.Kind),
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}

	result := buildTraceResult(records, events)

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return formatter.Respond("ok", result, nil)
	}
	return outputTraceText(cmd.OutOrStdout(), result, opts)
}

func buildTraceResult(records []store.InstanceRecord, events []ir.LifecycleEvent) TraceResult {
	result := TraceResult{
		Instances: make([]TraceInstance, 0, len(records)),
		Timeline:  events,
	}
	if result.Timeline == nil {
		result.Timeline = []ir.LifecycleEvent{}
	}

	for _, rec := range records {
		result.Instances = append(result.Instances, TraceInstance{
			ID:       rec.ID,
			ParentID: rec.ParentID,
			Engine:   rec.Engine,
			FirstSeq: rec.FirstSeq,
			LastKind: string(rec.LastKind),
		})
		switch rec.LastKind {
		case ir.EventDestroyed:
		case ir.EventFailed:
			result.Stats.Failed++
			result.Stats.Live++
		default:
			result.Stats.Live++
		}
	}
	for _, ev := range events {
		if ev.Kind == ir.EventDeprecation {
			result.Stats.Deprecations++
		}
	}
	result.Stats.TotalEvents = len(events)
	result.Stats.Instances = len(records)
	return result
}

// outputTraceText outputs the trace result as text.
func outputTraceText(w io.Writer, result TraceResult, opts *TraceOptions) error {
	if len(result.Instances) == 0 {
		fmt.Fprintln(w, "Journal is empty.")
		return nil
	}

	fmt.Fprintln(w, "=== Instances ===")
	children := make(map[string][]TraceInstance)
	for _, inst := range result.Instances {
		children[inst.ParentID] = append(children[inst.ParentID], inst)
	}
	var walk func(parent string, depth int)
	walk = func(parent string, depth int) {
		for _, inst := range children[parent] {
			fmt.Fprintf(w, "%s%s [%s] %s\n", strings.Repeat("  ", depth+1), inst.Engine, inst.LastKind, instanceLabel(inst.ID, opts.Verbose))
			walk(inst.ID, depth+1)
		}
	}
	walk("", 0)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no events)")
	}
	for _, ev := range result.Timeline {
		formatEvent(w, ev)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Total Events: %d\n", result.Stats.TotalEvents)
	fmt.Fprintf(w, "  Instances:    %d\n", result.Stats.Instances)
	fmt.Fprintf(w, "  Live:         %d\n", result.Stats.Live)
	fmt.Fprintf(w, "  Failed:       %d\n", result.Stats.Failed)
	fmt.Fprintf(w, "  Deprecations: %d\n", result.Stats.Deprecations)
	return nil
}

// instanceLabel shortens UUIDs unless verbose.
func instanceLabel(id string, verbose bool) string {
	if verbose || len(id) <= 13 {
		return id
	}
	return id[:13] + "..."
}
