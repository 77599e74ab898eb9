package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/saltmarsh/skirmish/engine"
)

// NewVerifyCommand creates the verify command: replay a recorded timeline
// and check every checksum.
func NewVerifyCommand(opts *RootOptions) *cobra.Command {
	var scenarioPath string

	cmd := &cobra.Command{
		Use:   "verify <battle.db>",
		Short: "Verify the integrity of a recorded timeline",
		Long: "Verify replays the whole timeline under the given rules and compares\n" +
			"every rebuilt state checksum against the recorded one. Any divergence\n" +
			"means the log was produced by different rules or was tampered with.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

			bundle, err := loadBundle(scenarioPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "load rules", err)
			}
			entries, err := loadEntries(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "load timeline", err)
			}
			if err := engine.Verify(bundle, entries, engine.WithLogger(opts.Logger())); err != nil {
				out.Error(err.Error())
				return WrapExitError(ExitFailure, "verification failed", err)
			}
			summary := struct {
				Events int `json:"events"`
			}{Events: len(entries)}
			return out.Success(summary, func(w io.Writer) {
				fmt.Fprintf(w, "ok: %d events verified\n", summary.Events)
			})
		},
	}

	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "scenario file naming the rules that produced the timeline")
	return cmd
}
