package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"example.com/onestop-outings/backend/internal/server"
)

func newServeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := opts.loadApp(cmd)
			if err != nil {
				return err
			}

			e := server.New(application)
			httpServer := server.NewHTTPServer(application.Config.Server, e)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return server.Run(ctx, e, httpServer, application.Logger)
		},
	}
}
