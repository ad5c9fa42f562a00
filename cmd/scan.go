package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hoangphuccoder123/tutorbond/internal/workflow"
)

var scanCmd = &cobra.Command{
	Use:   "scan <image>",
	Short: "Analyze a photo or screenshot of a CV (PNG, JPEG, WEBP, HEIC), then edit it interactively",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		interactive(cmd, args[0], func(ctx context.Context, c *workflow.Controller, file workflow.SourceFile) error {
			return c.SelectImage(ctx, file)
		})
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
