package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newTasksCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List task presets and the models each one selects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			defer a.Close()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, p := range a.tasks.Presets() {
				ids := a.tasks.Resolve(p.Name, a.registry.All())
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, strings.Join(ids, ","), p.Description)
			}
			return tw.Flush()
		},
	}
	cmd.AddCommand(newTasksSelectCmd(c))
	return cmd
}

func newTasksSelectCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "select NAME",
		Short: "Replace the saved model selection with a task preset's models",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			defer a.Close()

			name := strings.Join(args, " ")
			if _, ok := a.tasks.Lookup(name); !ok {
				return fmt.Errorf("unknown task %q", name)
			}
			p, err := a.prefs.SetSelection(a.tasks.Resolve(name, a.registry.All()))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "selected: %s\n", strings.Join(p.SelectedModels, ","))
			return err
		},
	}
}
