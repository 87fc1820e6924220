package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewSaveCommand creates the save command
func NewSaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Apply offline production and write a fresh save",
		Long: `Load the latest save, apply the production since it was written, and
store the result. Useful before changing factory configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGame(cmd, true, func(ctx context.Context, s *session) error {
				fmt.Fprintln(s.out, "Game saved")
				return nil
			})
		},
	}
}
