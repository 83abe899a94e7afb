package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/njchilds90/funcstudy/web"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive study page and JSON API",
		Long: `Start the HTTP server.

Routes:
  GET  /            study page
  GET  /plot.png    plot of ?expr=&zoom=
  GET  /export.pdf  study PDF of ?expr=&zoom=
  POST /api/study   JSON study
  POST /tool        single study step
  GET  /schema      tool schema
  GET  /health      health check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address, overrides the config")

	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions) error {
	cfg := opts.Config
	if opts.Addr != "" {
		cfg.Server.Addr = opts.Addr
	}
	srv, err := web.New(cfg, nil, nil)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build server", err)
	}
	if err := srv.ListenAndServe(ctx); err != nil {
		return WrapExitError(ExitCommandError, "server failed", err)
	}
	return nil
}
