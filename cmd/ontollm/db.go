package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/smallnest/ontollm/ingest"
	"github.com/smallnest/ontollm/ontology"
	"github.com/smallnest/ontollm/retrieval"
)

func newInitDBCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create the fact store schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.InitSchema(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Initialized schema at "+a.cfg.Store()))
			return nil
		},
	}
}

func newIngestCmd(a *app) *cobra.Command {
	var (
		yamlPath string
		method   string
		reset    bool
		watch    bool
	)
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load an ontology YAML document into the fact store",
		Long: `Load an ontology YAML document into the fact store.

--yaml upserts the given file. --method replaces the store contents with
the sample ontology of that method from $ONTOLOGY_DIR. --watch keeps
running and reloads the file whenever it changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			path := yamlPath
			var doc *ontology.Document
			switch {
			case method != "":
				m, ok := retrieval.LookupMethod(method)
				if !ok {
					return errors.Wrapf(ingest.ErrUnknownMethod, "%q", method)
				}
				if path, err = ingest.AutoIngest(ctx, s, m, a.cfg.OntologyDir); err != nil {
					return err
				}
			case path != "":
				if reset {
					if err := ingest.Reset(ctx, s); err != nil {
						return err
					}
				}
				if doc, err = ingest.LoadFile(ctx, s, path); err != nil {
					return err
				}
			default:
				return errors.New("one of --yaml or --method is required")
			}

			st, err := s.Stats(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("Ingested ontology YAML: %s -> %s", path, a.cfg.Store())))
			fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("classes=%d instances=%d properties=%d relations=%d",
				st.Classes, st.Instances, st.Properties, st.Relations)))
			if doc != nil {
				if snap := ingest.Summarize(doc); !snap.Ready() {
					fmt.Fprintln(out, warnStyle.Render("warning: document has no classes or no instances"))
				}
			}

			if !watch {
				return nil
			}
			fmt.Fprintln(out, mutedStyle.Render("watching "+path+" (Ctrl-C to stop)"))
			return ingest.Watch(ctx, s, path, a.logger)
		},
	}
	cmd.Flags().StringVar(&yamlPath, "yaml", "", "ontology YAML file")
	cmd.Flags().StringVar(&method, "method", "", "load the sample ontology of method1..method8, replacing the store contents")
	cmd.Flags().BoolVar(&reset, "reset", false, "empty the store before loading --yaml")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload the file when it changes")
	cmd.MarkFlagsMutuallyExclusive("yaml", "method")
	return cmd
}
