package cli

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/saltmarsh/skirmish/engine"
	"github.com/saltmarsh/skirmish/store"
	"github.com/saltmarsh/skirmish/transport/ws"
)

// NewServeCommand creates the serve command: host an authoritative battle
// over websockets.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	var (
		addr         string
		dbPath       string
		scenarioPath string
		players      int
		noAuth       bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host an authoritative battle over websockets",
		Long: "Serve starts a battle server. Clients connect to /battle with their\n" +
			"player id and mirror the timeline; the generated player ids are\n" +
			"printed on startup. Team rights start empty; grant them by submitting\n" +
			"team events server-side or run with --no-auth for open play.",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := opts.Logger()

			bundle, err := loadBundle(scenarioPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "load rules", err)
			}
			server, err := engine.NewServer(bundle,
				[]engine.Option{engine.WithLogger(log)},
				engine.WithAuthentication(!noAuth),
				engine.WithServerLogger(log),
			)
			if err != nil {
				return WrapExitError(ExitCommandError, "create server", err)
			}

			if dbPath != "" {
				db, err := store.Open(dbPath)
				if err != nil {
					return WrapExitError(ExitCommandError, "open database", err)
				}
				defer db.Close()
				if err := server.RegisterSink("store", store.NewSink(context.Background(), db)); err != nil {
					return WrapExitError(ExitCommandError, "register store sink", err)
				}
			}

			for i := 0; i < players; i++ {
				id := server.AddPlayer()
				fmt.Fprintf(cmd.OutOrStdout(), "player %d: %s\n", i+1, id)
			}

			handler, err := ws.NewHandler(server, log)
			if err != nil {
				return WrapExitError(ExitCommandError, "create handler", err)
			}
			defer handler.Close()

			mux := http.NewServeMux()
			mux.Handle("/battle", handler)

			log.Info("battle server listening", "addr", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				return WrapExitError(ExitCommandError, "serve", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8420", "listen address")
	cmd.Flags().StringVar(&dbPath, "db", "", "persist the timeline to a SQLite database")
	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "scenario file naming the rules to play under")
	cmd.Flags().IntVar(&players, "players", 2, "number of player ids to generate")
	cmd.Flags().BoolVar(&noAuth, "no-auth", false, "disable per-team right checks")
	return cmd
}
