package metrics

import (
	"context"
	"reflect"
	"strings"

	"github.com/makifarslan/Mini-Farm/internal/application/mediator"
	"github.com/makifarslan/Mini-Farm/internal/application/production/types"
)

// PrometheusMiddleware records every request sent through the mediator.
//
// Requests are labelled by their bare type name, so
// "*types.EnqueueOrderCommand" is recorded as "EnqueueOrderCommand".
func PrometheusMiddleware(collector *CommandMetricsCollector) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		if collector == nil {
			return next(ctx, request)
		}

		done := collector.Begin(extractCommandName(request))
		response, err := next(ctx, request)
		done(requestOutcome(response, err))

		return response, err
	}
}

// requestOutcome tells refused farm actions apart from failures
func requestOutcome(response mediator.Response, err error) string {
	if err != nil {
		return outcomeError
	}
	switch r := response.(type) {
	case *types.EnqueueOrderResponse:
		if !r.Accepted {
			return outcomeRejected
		}
	case *types.CancelOrderResponse:
		if !r.Cancelled {
			return outcomeRejected
		}
	}
	return outcomeOK
}

// extractCommandName returns the bare type name of request
func extractCommandName(request mediator.Request) string {
	if request == nil {
		return "UnknownCommand"
	}

	fullName := strings.TrimPrefix(reflect.TypeOf(request).String(), "*")
	if i := strings.LastIndex(fullName, "."); i >= 0 {
		return fullName[i+1:]
	}
	return fullName
}
