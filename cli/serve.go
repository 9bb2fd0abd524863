package cli

import (
	"github.com/spf13/cobra"

	"github.com/opd-ai/bookpress/mcptools"
	"github.com/opd-ai/bookpress/srv"
)

func (a *app) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP book service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr, _ = cmd.Flags().GetString("addr")
			}
			if cmd.Flags().Changed("tls") {
				a.cfg.Server.TLS, _ = cmd.Flags().GetBool("tls")
			}
			p, err := a.pipeline(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			p.Progress = nil
			return srv.Serve(ctx, a.cfg.Server, srv.New(*p, a.cfg.Output.Dir, a.cfg.Server.RateLimit))
		},
	}
	cmd.Flags().String("addr", "", "listen address (default server.addr)")
	cmd.Flags().Bool("tls", false, "serve HTTPS with server.cert and server.key")
	return cmd
}

func (a *app) mcpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the page tools over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mcptools.Serve(mcptools.New(a.overlayGenerator()))
		},
	}
}
