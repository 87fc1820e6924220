package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	prodTypes "github.com/makifarslan/Mini-Farm/internal/application/production/types"
	"github.com/makifarslan/Mini-Farm/internal/domain/production"
)

// NewStatusCommand creates the status command
func NewStatusCommand() *cobra.Command {
	var factoryID int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show every factory, caught up to now",
		Long: `Load the latest save, apply the production that happened while the
simulation was not running, and show each factory.

Examples:
  minifarm status
  minifarm status --factory 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGame(cmd, false, func(ctx context.Context, s *session) error {
				if factoryID > 0 {
					resp, err := s.mediator.Send(ctx, &prodTypes.GetFactoryQuery{FactoryID: production.FactoryID(factoryID)})
					if err != nil {
						return err
					}
					printFactory(s.out, resp.(*prodTypes.GetFactoryResponse).Factory)
					return nil
				}

				resp, err := s.mediator.Send(ctx, &prodTypes.ListFactoriesQuery{})
				if err != nil {
					return err
				}
				printFactories(s.out, resp.(*prodTypes.ListFactoriesResponse).Factories)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&factoryID, "factory", "f", 0, "Show a single factory")

	return cmd
}

// NewOrderCommand creates the order command
func NewOrderCommand() *cobra.Command {
	var (
		factoryID int
		count     int
	)

	cmd := &cobra.Command{
		Use:   "order",
		Short: "Queue production orders at a factory",
		Long: `Pay the input cost and queue orders at a queued factory. Orders stop at
the first rejection (queue full or not enough input).

Examples:
  minifarm order --factory 2
  minifarm order --factory 3 --count 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}
			return withGame(cmd, true, func(ctx context.Context, s *session) error {
				accepted := 0
				var last *prodTypes.EnqueueOrderResponse
				for i := 0; i < count; i++ {
					resp, err := s.mediator.Send(ctx, &prodTypes.EnqueueOrderCommand{FactoryID: production.FactoryID(factoryID)})
					if err != nil {
						return err
					}
					last = resp.(*prodTypes.EnqueueOrderResponse)
					if !last.Accepted {
						break
					}
					accepted++
				}

				fmt.Fprintf(s.out, "%s: %d of %d orders queued (%s)\n",
					last.Factory.Name, accepted, count, last.Factory.QueueLabel)
				if !last.Accepted {
					fmt.Fprintf(s.out, "Rejected: %s\n", rejectMessage(last.Reason, last.Factory))
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&factoryID, "factory", "f", 0, "Factory ID (required)")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of orders")
	cmd.MarkFlagRequired("factory")

	return cmd
}

// NewCancelCommand creates the cancel command
func NewCancelCommand() *cobra.Command {
	var factoryID int

	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel one queued order and refund its input",
		Long: `Remove the newest queued order and refund its input. Cancelling the
last order discards the progress of the cycle in flight.

Example:
  minifarm cancel --factory 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGame(cmd, true, func(ctx context.Context, s *session) error {
				resp, err := s.mediator.Send(ctx, &prodTypes.CancelOrderCommand{FactoryID: production.FactoryID(factoryID)})
				if err != nil {
					return err
				}
				cancel := resp.(*prodTypes.CancelOrderResponse)
				if !cancel.Cancelled {
					fmt.Fprintf(s.out, "%s has no queued orders\n", cancel.Factory.Name)
					return nil
				}
				fmt.Fprintf(s.out, "%s: order cancelled, refunded %d %s (%s)\n",
					cancel.Factory.Name, cancel.Refunded, cancel.Factory.Required, cancel.Factory.QueueLabel)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&factoryID, "factory", "f", 0, "Factory ID (required)")
	cmd.MarkFlagRequired("factory")

	return cmd
}

// NewCollectCommand creates the collect command
func NewCollectCommand() *cobra.Command {
	var (
		factoryID int
		open      bool
	)

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Move finished units from a factory into the store",
		Long: `Collect every finished unit waiting at a factory. With --open the
factory's control panel is opened afterwards, closing any other.

Examples:
  minifarm collect --factory 1
  minifarm collect --factory 2 --open`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGame(cmd, true, func(ctx context.Context, s *session) error {
				resp, err := s.mediator.Send(ctx, &prodTypes.CollectOutputCommand{
					FactoryID:    production.FactoryID(factoryID),
					OpenControls: open,
				})
				if err != nil {
					return err
				}
				collect := resp.(*prodTypes.CollectOutputResponse)
				if collect.Collected == 0 {
					fmt.Fprintf(s.out, "%s has nothing to collect\n", collect.Factory.Name)
				} else {
					fmt.Fprintf(s.out, "Collected %d %s from %s\n",
						collect.Collected, collect.Factory.Produced, collect.Factory.Name)
				}
				if open {
					printFactory(s.out, collect.Factory)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&factoryID, "factory", "f", 0, "Factory ID (required)")
	cmd.Flags().BoolVar(&open, "open", false, "Open the factory controls after collecting")
	cmd.MarkFlagRequired("factory")

	return cmd
}

func rejectMessage(reason production.RejectReason, v production.View) string {
	switch reason {
	case production.RejectQueueFull:
		return fmt.Sprintf("queue is full (%s)", v.QueueLabel)
	case production.RejectInsufficientResource:
		return fmt.Sprintf("not enough %s (needs %d)", v.Required, v.RequiredAmount)
	case production.RejectNotSupported:
		return fmt.Sprintf("%s produces on its own and takes no orders", v.Name)
	default:
		return string(reason)
	}
}
