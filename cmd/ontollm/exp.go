package main

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/smallnest/ontollm/experiment"
)

func newExpCmd(a *app) *cobra.Command {
	var (
		methods    []string
		format     string
		autoIngest bool
		parallel   int
	)
	cmd := &cobra.Command{
		Use:   "exp QUESTION",
		Short: "Compare retrieval methods on one question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return errors.Newf("unknown format %q, use text or json", format)
			}
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

			results, err := experiment.Run(ctx, agent, s, experiment.Options{
				Question:    args[0],
				Methods:     methods,
				AutoIngest:  autoIngest,
				OntologyDir: a.cfg.OntologyDir,
				Parallel:    parallel,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				enc.SetEscapeHTML(false)
				return enc.Encode(results)
			}
			_, err = fmt.Fprint(out, experiment.FormatText(results))
			return err
		},
	}
	cmd.Flags().StringSliceVar(&methods, "method", []string{experiment.All}, "method1..method8 or all; repeat or comma-separate")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or json")
	cmd.Flags().BoolVar(&autoIngest, "auto-ingest", false, "load each method's sample ontology before running it")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "maximum concurrent methods without --auto-ingest (0 = all)")
	return cmd
}
