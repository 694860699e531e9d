package main

import (
	"github.com/spf13/cobra"

	"github.com/smallnest/ontollm/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
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

			if addr == "" {
				addr = a.cfg.Addr()
			}
			srv := server.New(agent, s,
				server.WithLogger(a.logger),
				server.WithOntologyDir(a.cfg.OntologyDir),
				server.WithStoreName(a.cfg.Store()),
				server.WithTokenSettings(server.TokenSettings{
					MaxFacts:           a.cfg.MaxFacts,
					MaxRelations:       a.cfg.MaxRelations,
					MaxContextChars:    a.cfg.MaxContextChars,
					BudgetMode:         string(a.cfg.BudgetMode),
					TokenWarnThreshold: a.cfg.TokenWarnThreshold,
				}),
			)
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default $API_HOST:$API_PORT)")
	return cmd
}
