package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/saltmarsh/skirmish/engine"
)

// NewReplayCommand creates the replay command: rebuild a recorded timeline
// and print the resulting state.
func NewReplayCommand(opts *RootOptions) *cobra.Command {
	var scenarioPath string

	cmd := &cobra.Command{
		Use:   "replay <battle.db>",
		Short: "Rebuild a recorded timeline and print the final state",
		Args:  cobra.ExactArgs(1),
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
			proc, err := engine.Replay(bundle, entries, engine.WithLogger(opts.Logger()))
			if err != nil {
				return WrapExitError(ExitFailure, "replay failed", err)
			}

			snap := proc.State().Snapshot()
			return out.Success(snap, func(w io.Writer) {
				fmt.Fprintf(w, "replayed %d events\n", proc.Timeline().Len())
				if head, ok := proc.Timeline().Head(); ok {
					fmt.Fprintf(w, "head: #%d %s checksum=%s\n",
						head.Event.ID, head.Event.Kind, head.Checksum)
				}
				fmt.Fprintf(w, "phase=%s round=%d", snap.Phase, snap.Round)
				if snap.Acting != "" {
					fmt.Fprintf(w, " acting=%s", snap.Acting)
				}
				fmt.Fprintln(w)
				for _, t := range snap.Teams {
					fmt.Fprintf(w, "  team %s members=%v\n", t.ID, t.Members)
				}
				for _, c := range snap.Creatures {
					fmt.Fprintf(w, "  creature %s team=%s position=(%d,%d)\n",
						c.ID, c.Team, c.Position.X, c.Position.Y)
				}
				for _, o := range snap.Objects {
					fmt.Fprintf(w, "  object %s position=(%d,%d)\n", o.ID, o.Position.X, o.Position.Y)
				}
			})
		},
	}

	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "scenario file naming the rules that produced the timeline")
	return cmd
}
