package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/saltmarsh/skirmish/internal/scenario"
	"github.com/saltmarsh/skirmish/store"
)

// NewRunCommand creates the run command: execute a scenario file.
func NewRunCommand(opts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scenario and print its trace and final state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

			s, err := scenario.Load(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "load scenario", err)
			}

			var sink *store.Sink
			if dbPath != "" {
				db, err := store.Open(dbPath)
				if err != nil {
					return WrapExitError(ExitCommandError, "open database", err)
				}
				defer db.Close()
				sink = store.NewSink(context.Background(), db)
			}

			var result *scenario.Result
			if sink != nil {
				result, err = scenario.RunWithSink(s, sink)
			} else {
				result, err = scenario.Run(s)
			}
			if err != nil {
				return WrapExitError(ExitFailure, "scenario failed", err)
			}

			return out.Success(result, func(w io.Writer) {
				fmt.Fprintf(w, "scenario %s: %d events applied, %d rejected\n",
					result.ScenarioName, len(result.Trace), len(result.Rejected))
				for _, e := range result.Trace {
					fmt.Fprintf(w, "  #%-4d %-24s %s\n", e.ID, e.Kind, e.Origin)
				}
				for _, r := range result.Rejected {
					fmt.Fprintf(w, "  step %d %s rejected: %s (%s)\n", r.Step, r.Kind, r.Reason, r.Code)
				}
				fmt.Fprintf(w, "final: phase=%s round=%d teams=%d creatures=%d objects=%d\n",
					result.Final.Phase, result.Final.Round,
					len(result.Final.Teams), len(result.Final.Creatures), len(result.Final.Objects))
			})
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "persist the timeline to a SQLite database")
	return cmd
}
