package cmd

import (
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newModelsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the available models, selected ones first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			defer a.Close()

			selected := a.prefs.SelectedModels()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, p := range a.prefs.SortModels(a.registry.All()) {
				mark := " "
				if slices.Contains(selected, p.ID()) {
					mark = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", mark, p.ID(), p.Name())
			}
			return tw.Flush()
		},
	}
}
