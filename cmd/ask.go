package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"omnibot/dispatch"
	"omnibot/model"
	"omnibot/prefs"
	"omnibot/session"
)

type askOptions struct {
	models []string
	task   string
	json   bool
}

func newAskCmd(c *cli) *cobra.Command {
	opts := &askOptions{}
	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Send one prompt to the selected models and print every answer",
		Long:  "ask sends the prompt to the models given with --models, the models of --task, or the saved selection, in that order of preference. The prompt is read from stdin when no argument is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")
			if prompt == "" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read prompt: %w", err)
				}
				prompt = string(data)
			}

			a, err := c.app()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return ask(ctx, cmd, a, prompt, opts)
		},
	}
	cmd.Flags().StringSliceVar(&opts.models, "models", nil, "comma-separated model ids, e.g. gpt4,claude")
	cmd.Flags().StringVar(&opts.task, "task", "", "use the models of this task preset")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the records as JSON")
	return cmd
}

func ask(ctx context.Context, cmd *cobra.Command, a *app, prompt string, opts *askOptions) error {
	selection, err := askSelection(a, opts)
	if err != nil {
		return err
	}

	// Probe up front; there is no page to wait on.
	if err := a.ready.Probe(ctx); err != nil {
		return fmt.Errorf("gateway not reachable: %w", err)
	}

	results, err := a.dispatcher.Dispatch(ctx, prompt, selection)
	if err != nil {
		if errors.Is(err, dispatch.ErrCanceled) {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", session.Stopped.Title, session.Stopped.Description)
		}
		if dispatch.IsValidation(err) {
			return errors.New(session.NoticeFor(err).Description)
		}
		return err
	}

	out := cmd.OutOrStdout()
	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	return printResponses(out, results)
}

func askSelection(a *app, opts *askOptions) ([]string, error) {
	switch {
	case len(opts.models) > 0:
		ids := make([]string, 0, len(opts.models))
		for _, id := range opts.models {
			ids = append(ids, strings.TrimSpace(id))
		}
		return prefs.Dedupe(ids), nil
	case opts.task != "":
		if _, ok := a.tasks.Lookup(opts.task); !ok {
			return nil, fmt.Errorf("unknown task %q", opts.task)
		}
		return a.tasks.Resolve(opts.task, a.registry.All()), nil
	default:
		return a.prefs.SelectedModels(), nil
	}
}

func printResponses(w io.Writer, results []model.Response) error {
	for i, r := range results {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		body := r.Response
		if r.Failed() {
			body = "error: " + r.Error
			if r.Detail != "" {
				body += " (" + r.Detail + ")"
			}
		}
		if _, err := fmt.Fprintf(w, "== %s ==\n%s\n", r.Model, strings.TrimRight(body, "\n")); err != nil {
			return err
		}
	}
	return nil
}
