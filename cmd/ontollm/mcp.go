package main

import (
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/smallnest/ontollm/adapter/mcp"
)

const version = "0.1.0"

func newMCPCmd(a *app) *cobra.Command {
	var (
		transport string
		addr      string
	)
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the agent as Model Context Protocol tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()
			agent, release, err := a.newAgent(ctx, s)
			if err != nil {
				return err
			}
			defer release()

			srv := mcp.NewServer(agent, mcp.WithVersion(version), mcp.WithLogger(a.logger))
			switch transport {
			case "stdio":
				return srv.Run(ctx, &sdk.StdioTransport{})
			case "http":
				handler := sdk.NewStreamableHTTPHandler(func(*http.Request) *sdk.Server { return srv }, nil)
				hs := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 3 * time.Second}
				go func() {
					<-ctx.Done()
					_ = hs.Close()
				}()
				a.logger.Info("ontollm MCP server listening on %s", addr)
				if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return errors.Wrap(err, "serve mcp")
				}
				return nil
			default:
				return errors.Newf("unknown transport %q, use stdio or http", transport)
			}
		},
	}
	cmd.Flags().StringVar(&transport, "transport", "stdio", "stdio or http")
	cmd.Flags().StringVar(&addr, "addr", ":8081", "listen address of the http transport")
	return cmd
}
