package cli

import (
	"context"

	"github.com/spf13/cobra"

	prodTypes "github.com/makifarslan/Mini-Farm/internal/application/production/types"
)

// NewResourcesCommand creates the resources command
func NewResourcesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resources",
		Short: "Show the resource store, caught up to now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGame(cmd, false, func(ctx context.Context, s *session) error {
				resp, err := s.mediator.Send(ctx, &prodTypes.ListResourcesQuery{})
				if err != nil {
					return err
				}
				printResources(s.out, resp.(*prodTypes.ListResourcesResponse).Resources)
				return nil
			})
		},
	}
}
