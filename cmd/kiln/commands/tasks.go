package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (c *CLI) newTasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List tasks and their prerequisites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			infos, err := c.app.Tasks()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, info := range infos {
				deps := "-"
				if len(info.Dependencies) > 0 {
					deps = strings.Join(info.Dependencies, ", ")
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Name, deps, info.Description)
			}
			return tw.Flush()
		},
	}
}
