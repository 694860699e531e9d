package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smallnest/ontollm/prebuilt"
	"github.com/smallnest/ontollm/render"
)

type chatFlags struct {
	method string
	trace  bool
	dryRun bool
	raw    bool
	width  int
	style  string
}

func newChatCmd(a *app) *cobra.Command {
	var f chatFlags
	cmd := &cobra.Command{
		Use:   "chat QUESTION",
		Short: "Ask an ontology-grounded question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			question := strings.Join(args, " ")
			out := cmd.OutOrStdout()

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

			if f.dryRun {
				p, err := agent.Prepare(ctx, question, f.method)
				if err != nil {
					return err
				}
				printPrepared(out, p)
				return nil
			}

			var sink prebuilt.EventSink
			if f.trace {
				sink = func(ev prebuilt.Event) { printEvent(out, ev) }
			}
			res, err := agent.Run(ctx, question, f.method, sink)
			if err != nil {
				return err
			}
			return printAnswer(out, res.Answer, f)
		},
	}
	cmd.Flags().StringVar(&f.method, "method", "method1", "retrieval method method1..method8")
	cmd.Flags().BoolVar(&f.trace, "trace", false, "print stage events")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "print the prompt and token budget without calling the model")
	cmd.Flags().BoolVar(&f.raw, "raw", false, "print the answer without markdown rendering")
	cmd.Flags().IntVar(&f.width, "width", 100, "wrap width of rendered answers")
	cmd.Flags().StringVar(&f.style, "style", render.StyleAuto, "glamour style: auto, dark, light, notty")
	return cmd
}

func printAnswer(out io.Writer, answer string, f chatFlags) error {
	if f.raw {
		_, err := fmt.Fprintln(out, answer)
		return err
	}
	rendered, err := render.Terminal(answer, f.width, f.style)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(out, rendered)
	return err
}

func printEvent(out io.Writer, ev prebuilt.Event) {
	if ev.Event != prebuilt.EventStage {
		return
	}
	fmt.Fprintf(out, "%s %s %s\n", stageStyle.Render("["+ev.Stage+"]"), mutedStyle.Render(ev.Status), ev.Message)
	if ev.Status != prebuilt.StatusDone || ev.Output == nil {
		return
	}
	data, err := json.MarshalIndent(ev.Output, "  ", "  ")
	if err != nil {
		return
	}
	fmt.Fprintln(out, mutedStyle.Render("  "+string(data)))
}

func printPrepared(out io.Writer, p *prebuilt.Prepared) {
	fmt.Fprintln(out, titleStyle.Render("method: "+string(p.Method)))
	if p.PriceHint != "" {
		fmt.Fprintln(out, successStyle.Render("price hint: "+p.PriceHint))
	}
	fmt.Fprintln(out, titleStyle.Render("prompt:"))
	fmt.Fprintln(out, p.Prompt)
	b := p.Budget
	line := fmt.Sprintf("tokens question=%d context=%d prompt=%d threshold=%d source=%s",
		b.QuestionTokens, b.ContextTokens, b.PromptTokens, b.TokenWarnThreshold, b.TokenSource)
	if b.Exceeded() {
		fmt.Fprintln(out, warnStyle.Render(line+" (over threshold)"))
	} else {
		fmt.Fprintln(out, mutedStyle.Render(line))
	}
}
