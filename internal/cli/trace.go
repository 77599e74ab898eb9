package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// traceRow is one event in the trace listing.
type traceRow struct {
	ID       int64  `json:"id"`
	Kind     string `json:"kind"`
	Origin   string `json:"origin"`
	Checksum string `json:"checksum"`
}

// NewTraceCommand creates the trace command: list a recorded timeline.
func NewTraceCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace <battle.db>",
		Short: "List the events of a recorded timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

			entries, err := loadEntries(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "load timeline", err)
			}
			rows := make([]traceRow, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, traceRow{
					ID:       int64(e.Event.ID),
					Kind:     string(e.Event.Kind),
					Origin:   e.Event.Origin.String(),
					Checksum: e.Checksum.String(),
				})
			}
			return out.Success(rows, func(w io.Writer) {
				for _, r := range rows {
					fmt.Fprintf(w, "#%-4d %-24s %-20s %s\n", r.ID, r.Kind, r.Origin, r.Checksum)
				}
				fmt.Fprintf(w, "%d events\n", len(rows))
			})
		},
	}
	return cmd
}
