package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/core/domain"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [tasks...]",
		Short: "Run tasks and their prerequisites (default: " + domain.TaskDefault + ")",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Run(cmd.Context(), args, runOptions(cmd))
		},
	}
	addRunFlags(cmd)
	return cmd
}

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Build everything, then rebuild when sources change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Run(cmd.Context(), []string{domain.TaskWatch}, runOptions(cmd))
		},
	}
	addRunFlags(cmd)
	return cmd
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("parallel", "j", 0, "Maximum number of tasks run at once (0 uses the number of CPUs)")
	cmd.Flags().String("color", "auto", "Colorize output: auto, always, or never")
}

func runOptions(cmd *cobra.Command) app.RunOptions {
	parallel, _ := cmd.Flags().GetInt("parallel")
	color, _ := cmd.Flags().GetString("color")
	return app.RunOptions{
		Parallelism: parallel,
		Color:       color,
	}
}
