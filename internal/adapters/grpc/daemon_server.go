package grpc

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/makifarslan/Mini-Farm/internal/application/logging"
	"github.com/makifarslan/Mini-Farm/internal/application/mediator"
	prodTypes "github.com/makifarslan/Mini-Farm/internal/application/production/types"
	"github.com/makifarslan/Mini-Farm/internal/application/savegame"
	infralogging "github.com/makifarslan/Mini-Farm/internal/infrastructure/logging"
)

// DaemonServer exposes a running farm on a unix socket. Each RPC is turned
// into a mediator request; build the mediator with the simulation scheduler
// as executor so requests run on the loop goroutine.
type DaemonServer struct {
	mediator mediator.Mediator
	listener net.Listener
	logger   zerolog.Logger
}

// NewDaemonServer replaces any stale socket at socketPath and listens on it.
// The socket is only accessible to the current user.
func NewDaemonServer(med mediator.Mediator, socketPath string, logger zerolog.Logger) (*DaemonServer, error) {
	if err := os.RemoveAll(socketPath); err != nil {
		return nil, fmt.Errorf("failed to remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create unix socket listener: %w", err)
	}

	if err := os.Chmod(socketPath, 0600); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to set socket permissions: %w", err)
	}

	return &DaemonServer{
		mediator: med,
		listener: listener,
		logger:   logger.With().Str("component", "daemon").Logger(),
	}, nil
}

// Addr is the socket the server listens on
func (s *DaemonServer) Addr() string {
	return s.listener.Addr().String()
}

// Start serves until ctx is cancelled, then waits for in-flight requests.
// The socket file is removed on return.
func (s *DaemonServer) Start(ctx context.Context) error {
	s.logger.Info().Str("socket", s.Addr()).Msg("Daemon listening")

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(s.intercept))
	RegisterFarmServiceServer(grpcServer, s)

	errChan := make(chan error, 1)
	go func() {
		if err := grpcServer.Serve(s.listener); err != nil {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		s.logger.Info().Msg("Stopping daemon")
		grpcServer.GracefulStop()
		return nil
	}
}

// intercept gives handlers the application logger and logs every call
func (s *DaemonServer) intercept(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	ctx = logging.WithLogger(ctx, infralogging.NewApplicationLogger(s.logger))
	start := time.Now()

	resp, err := handler(ctx, req)

	event := s.logger.Debug()
	if err != nil {
		event = s.logger.Warn().Str("code", status.Code(err).String()).Err(err)
	}
	event.Str("method", info.FullMethod).Dur("duration", time.Since(start)).Msg("Daemon request")
	return resp, err
}

func (s *DaemonServer) send(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	resp, err := s.mediator.Send(ctx, request)
	if err != nil {
		return nil, toStatusError(err)
	}
	return resp, nil
}

func (s *DaemonServer) EnqueueOrder(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	resp, err := s.send(ctx, &prodTypes.EnqueueOrderCommand{FactoryID: factoryIDFrom(in)})
	if err != nil {
		return nil, err
	}
	r := resp.(*prodTypes.EnqueueOrderResponse)
	return toStruct(map[string]interface{}{
		"accepted": r.Accepted,
		"reason":   string(r.Reason),
		"factory":  viewToMap(r.Factory),
	})
}

func (s *DaemonServer) CancelOrder(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	resp, err := s.send(ctx, &prodTypes.CancelOrderCommand{FactoryID: factoryIDFrom(in)})
	if err != nil {
		return nil, err
	}
	r := resp.(*prodTypes.CancelOrderResponse)
	return toStruct(map[string]interface{}{
		"cancelled": r.Cancelled,
		"refunded":  r.Refunded,
		"factory":   viewToMap(r.Factory),
	})
}

func (s *DaemonServer) CollectOutput(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	resp, err := s.send(ctx, &prodTypes.CollectOutputCommand{
		FactoryID:    factoryIDFrom(in),
		OpenControls: in.GetFields()["open_controls"].GetBoolValue(),
	})
	if err != nil {
		return nil, err
	}
	r := resp.(*prodTypes.CollectOutputResponse)
	return toStruct(map[string]interface{}{
		"collected": r.Collected,
		"factory":   viewToMap(r.Factory),
	})
}

func (s *DaemonServer) OpenControls(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	resp, err := s.send(ctx, &prodTypes.OpenControlsCommand{FactoryID: factoryIDFrom(in)})
	if err != nil {
		return nil, err
	}
	return controlsToStruct(resp.(*prodTypes.ControlsResponse))
}

func (s *DaemonServer) CloseControls(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	resp, err := s.send(ctx, &prodTypes.CloseControlsCommand{})
	if err != nil {
		return nil, err
	}
	return controlsToStruct(resp.(*prodTypes.ControlsResponse))
}

// controlsToStruct leaves "active" out when no controls are open
func controlsToStruct(r *prodTypes.ControlsResponse) (*structpb.Struct, error) {
	m := map[string]interface{}{}
	if r.Active != nil {
		m["active"] = viewToMap(*r.Active)
	}
	return toStruct(m)
}

func (s *DaemonServer) GetFactory(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	resp, err := s.send(ctx, &prodTypes.GetFactoryQuery{FactoryID: factoryIDFrom(in)})
	if err != nil {
		return nil, err
	}
	return toStruct(map[string]interface{}{
		"factory": viewToMap(resp.(*prodTypes.GetFactoryResponse).Factory),
	})
}

func (s *DaemonServer) ListFactories(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	resp, err := s.send(ctx, &prodTypes.ListFactoriesQuery{})
	if err != nil {
		return nil, err
	}
	return toStruct(map[string]interface{}{
		"factories": viewsToList(resp.(*prodTypes.ListFactoriesResponse).Factories),
	})
}

func (s *DaemonServer) ListResources(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	resp, err := s.send(ctx, &prodTypes.ListResourcesQuery{})
	if err != nil {
		return nil, err
	}
	return toStruct(map[string]interface{}{
		"resources": resourcesToList(resp.(*prodTypes.ListResourcesResponse).Resources),
	})
}

// SaveGame writes a snapshot of the live farm. The running farm owns the
// save, so this is the only way another process can persist a change.
func (s *DaemonServer) SaveGame(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	resp, err := s.send(ctx, &savegame.SaveGameCommand{})
	if err != nil {
		return nil, err
	}
	snap := resp.(*savegame.SaveGameResponse).Snapshot
	return toStruct(map[string]interface{}{
		"last_save_timestamp": snap.LastSaveTimestamp,
		"resources":           len(snap.Resources),
		"factories":           len(snap.Factories),
	})
}
