package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/makifarslan/Mini-Farm/internal/application/mediator"
	prodTypes "github.com/makifarslan/Mini-Farm/internal/application/production/types"
	"github.com/makifarslan/Mini-Farm/internal/application/savegame"
	"github.com/makifarslan/Mini-Farm/internal/domain/production"
	domain "github.com/makifarslan/Mini-Farm/internal/domain/savegame"
)

// DaemonClientGRPC sends farm requests to a running farm. Send mirrors
// mediator.Mediator.Send, so callers are unaware the farm is remote.
type DaemonClientGRPC struct {
	conn *grpc.ClientConn
}

// NewDaemonClientGRPC prepares a connection to the daemon at socketPath.
// The connection is made lazily on the first request.
func NewDaemonClientGRPC(socketPath string) (*DaemonClientGRPC, error) {
	conn, err := grpc.NewClient(
		"unix:"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon socket: %w", err)
	}
	return &DaemonClientGRPC{conn: conn}, nil
}

func (c *DaemonClientGRPC) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *DaemonClientGRPC) invoke(ctx context.Context, method string, in map[string]interface{}) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(in)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, fullMethod(method), req, out); err != nil {
		return nil, fromStatusError(err)
	}
	return out, nil
}

// Send performs request on the running farm and returns the same response
// type the local handler would
func (c *DaemonClientGRPC) Send(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	switch req := request.(type) {
	case *prodTypes.EnqueueOrderCommand:
		out, err := c.invoke(ctx, methodEnqueueOrder, factoryRequest(req.FactoryID, false))
		if err != nil {
			return nil, err
		}
		f := out.GetFields()
		return &prodTypes.EnqueueOrderResponse{
			Accepted: f["accepted"].GetBoolValue(),
			Reason:   production.RejectReason(f["reason"].GetStringValue()),
			Factory:  viewFromStruct(f["factory"].GetStructValue()),
		}, nil

	case *prodTypes.CancelOrderCommand:
		out, err := c.invoke(ctx, methodCancelOrder, factoryRequest(req.FactoryID, false))
		if err != nil {
			return nil, err
		}
		f := out.GetFields()
		return &prodTypes.CancelOrderResponse{
			Cancelled: f["cancelled"].GetBoolValue(),
			Refunded:  intField(f, "refunded"),
			Factory:   viewFromStruct(f["factory"].GetStructValue()),
		}, nil

	case *prodTypes.CollectOutputCommand:
		out, err := c.invoke(ctx, methodCollectOutput, factoryRequest(req.FactoryID, req.OpenControls))
		if err != nil {
			return nil, err
		}
		f := out.GetFields()
		return &prodTypes.CollectOutputResponse{
			Collected: intField(f, "collected"),
			Factory:   viewFromStruct(f["factory"].GetStructValue()),
		}, nil

	case *prodTypes.OpenControlsCommand:
		out, err := c.invoke(ctx, methodOpenControls, factoryRequest(req.FactoryID, true))
		if err != nil {
			return nil, err
		}
		return controlsFromStruct(out), nil

	case *prodTypes.CloseControlsCommand:
		out, err := c.invoke(ctx, methodCloseControls, map[string]interface{}{})
		if err != nil {
			return nil, err
		}
		return controlsFromStruct(out), nil

	case *prodTypes.GetFactoryQuery:
		out, err := c.invoke(ctx, methodGetFactory, factoryRequest(req.FactoryID, false))
		if err != nil {
			return nil, err
		}
		return &prodTypes.GetFactoryResponse{
			Factory: viewFromStruct(out.GetFields()["factory"].GetStructValue()),
		}, nil

	case *prodTypes.ListFactoriesQuery:
		out, err := c.invoke(ctx, methodListFactories, map[string]interface{}{})
		if err != nil {
			return nil, err
		}
		return &prodTypes.ListFactoriesResponse{
			Factories: viewsFromList(out.GetFields()["factories"]),
		}, nil

	case *prodTypes.ListResourcesQuery:
		out, err := c.invoke(ctx, methodListResources, map[string]interface{}{})
		if err != nil {
			return nil, err
		}
		return &prodTypes.ListResourcesResponse{
			Resources: resourcesFromList(out.GetFields()["resources"]),
		}, nil

	case *savegame.SaveGameCommand:
		out, err := c.invoke(ctx, methodSaveGame, map[string]interface{}{})
		if err != nil {
			return nil, err
		}
		return &savegame.SaveGameResponse{
			Snapshot: &domain.Snapshot{
				LastSaveTimestamp: int64(out.GetFields()["last_save_timestamp"].GetNumberValue()),
			},
		}, nil

	default:
		// loading is the running farm's job; it happened when it started
		return nil, fmt.Errorf("request %T cannot be sent to a running farm", request)
	}
}

func controlsFromStruct(out *structpb.Struct) *prodTypes.ControlsResponse {
	active := out.GetFields()["active"].GetStructValue()
	if active == nil {
		return &prodTypes.ControlsResponse{}
	}
	v := viewFromStruct(active)
	return &prodTypes.ControlsResponse{Active: &v}
}
