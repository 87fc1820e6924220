package grpc_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	grpcadapter "github.com/makifarslan/Mini-Farm/internal/adapters/grpc"
	"github.com/makifarslan/Mini-Farm/internal/adapters/persistence"
	"github.com/makifarslan/Mini-Farm/internal/application/mediator"
	prodCmd "github.com/makifarslan/Mini-Farm/internal/application/production/commands"
	prodQuery "github.com/makifarslan/Mini-Farm/internal/application/production/queries"
	prodTypes "github.com/makifarslan/Mini-Farm/internal/application/production/types"
	"github.com/makifarslan/Mini-Farm/internal/application/savegame"
	"github.com/makifarslan/Mini-Farm/internal/application/simulation"
	"github.com/makifarslan/Mini-Farm/internal/domain/production"
	"github.com/makifarslan/Mini-Farm/internal/domain/resource"
)

// liveFarm is a farm whose scheduler and daemon run in the background.
// Its state is only read through the client, never directly.
type liveFarm struct {
	client        *grpcadapter.DaemonClientGRPC
	repo          *persistence.FileSnapshotRepository
	stopScheduler func()
}

func startFarm(t *testing.T) *liveFarm {
	t.Helper()

	store := resource.NewStore()
	store.Add(resource.KindWheat, 3)
	registry := production.NewRegistry()
	field, err := production.NewFactory(production.Definition{
		ID: 1, Name: "Hay Field", Variant: production.VariantContinuous,
		Produced: resource.KindWheat, Capacity: 5, CycleDuration: 0.02,
	}, store)
	require.NoError(t, err)
	mill, err := production.NewFactory(production.Definition{
		ID: 2, Name: "Mill", Variant: production.VariantQueued,
		Produced: resource.KindFlour, Required: resource.KindWheat, RequiredAmount: 1,
		Capacity: 5, CycleDuration: 3600,
	}, store)
	require.NoError(t, err)
	require.NoError(t, registry.Register(field))
	require.NoError(t, registry.Register(mill))

	repo := persistence.NewFileSnapshotRepository(filepath.Join(t.TempDir(), "save.json"), false)
	coordinator := savegame.NewCoordinator(store, registry, repo, nil)
	scheduler := simulation.NewScheduler(registry, coordinator, nil, simulation.Config{
		TickInterval: 5 * time.Millisecond,
	})

	med := mediator.NewMediator()
	controls := prodCmd.NewControlsHandler(registry, scheduler)
	saves := savegame.NewSaveGameHandler(coordinator, scheduler)
	require.NoError(t, mediator.RegisterHandler[*prodTypes.EnqueueOrderCommand](med, prodCmd.NewEnqueueOrderHandler(registry, scheduler)))
	require.NoError(t, mediator.RegisterHandler[*prodTypes.CancelOrderCommand](med, prodCmd.NewCancelOrderHandler(registry, scheduler)))
	require.NoError(t, mediator.RegisterHandler[*prodTypes.CollectOutputCommand](med, prodCmd.NewCollectOutputHandler(registry, scheduler)))
	require.NoError(t, mediator.RegisterHandler[*prodTypes.OpenControlsCommand](med, controls))
	require.NoError(t, mediator.RegisterHandler[*prodTypes.CloseControlsCommand](med, controls))
	require.NoError(t, mediator.RegisterHandler[*prodTypes.GetFactoryQuery](med, prodQuery.NewGetFactoryHandler(registry, scheduler)))
	require.NoError(t, mediator.RegisterHandler[*prodTypes.ListFactoriesQuery](med, prodQuery.NewListFactoriesHandler(registry, scheduler)))
	require.NoError(t, mediator.RegisterHandler[*prodTypes.ListResourcesQuery](med, prodQuery.NewListResourcesHandler(store, scheduler)))
	require.NoError(t, mediator.RegisterHandler[*savegame.SaveGameCommand](med, saves))

	// unix socket paths are limited to ~100 bytes, t.TempDir can exceed it
	dir, err := os.MkdirTemp("", "mf")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	socket := filepath.Join(dir, "farm.sock")

	server, err := grpcadapter.NewDaemonServer(med, socket, zerolog.Nop())
	require.NoError(t, err)

	schedCtx, stopScheduler := context.WithCancel(context.Background())
	serverCtx, stopServer := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = scheduler.Run(schedCtx)
	}()
	go func() {
		defer wg.Done()
		_ = server.Start(serverCtx)
	}()

	client, err := grpcadapter.NewDaemonClientGRPC(socket)
	require.NoError(t, err)
	t.Cleanup(func() {
		client.Close()
		stopScheduler()
		stopServer()
		wg.Wait()
	})

	return &liveFarm{client: client, repo: repo, stopScheduler: stopScheduler}
}

func (f *liveFarm) resources(t *testing.T) map[resource.Kind]int {
	t.Helper()
	resp, err := f.client.Send(context.Background(), &prodTypes.ListResourcesQuery{})
	require.NoError(t, err)
	out := make(map[resource.Kind]int)
	for _, r := range resp.(*prodTypes.ListResourcesResponse).Resources {
		out[r.Kind] = r.Amount
	}
	return out
}

func (f *liveFarm) factory(t *testing.T, id production.FactoryID) production.View {
	t.Helper()
	resp, err := f.client.Send(context.Background(), &prodTypes.GetFactoryQuery{FactoryID: id})
	require.NoError(t, err)
	return resp.(*prodTypes.GetFactoryResponse).Factory
}

func TestDaemon_EnqueueOrderThroughSocket(t *testing.T) {
	// Arrange
	farm := startFarm(t)

	// Act
	resp, err := farm.client.Send(context.Background(), &prodTypes.EnqueueOrderCommand{FactoryID: 2})

	// Assert
	require.NoError(t, err)
	order := resp.(*prodTypes.EnqueueOrderResponse)
	assert.True(t, order.Accepted)
	assert.Empty(t, order.Reason)
	assert.Equal(t, production.FactoryID(2), order.Factory.ID)
	assert.Equal(t, "Mill", order.Factory.Name)
	assert.Equal(t, production.VariantQueued, order.Factory.Variant)
	assert.Equal(t, 1, order.Factory.Queue)
	assert.True(t, order.Factory.Producing)

	assert.Equal(t, 2, farm.resources(t)[resource.KindWheat])
	assert.Equal(t, 1, farm.factory(t, 2).Queue)
}

func TestDaemon_RejectionAndCancelRoundTrip(t *testing.T) {
	// Arrange
	farm := startFarm(t)
	ctx := context.Background()

	// Act
	resp, err := farm.client.Send(ctx, &prodTypes.EnqueueOrderCommand{FactoryID: 1})
	require.NoError(t, err)
	rejected := resp.(*prodTypes.EnqueueOrderResponse)

	_, err = farm.client.Send(ctx, &prodTypes.EnqueueOrderCommand{FactoryID: 2})
	require.NoError(t, err)
	resp, err = farm.client.Send(ctx, &prodTypes.CancelOrderCommand{FactoryID: 2})
	require.NoError(t, err)
	cancelled := resp.(*prodTypes.CancelOrderResponse)

	// Assert
	assert.False(t, rejected.Accepted)
	assert.Equal(t, production.RejectNotSupported, rejected.Reason)
	assert.True(t, cancelled.Cancelled)
	assert.Equal(t, 1, cancelled.Refunded)
	assert.Zero(t, cancelled.Factory.Queue)
	assert.Equal(t, 3, farm.resources(t)[resource.KindWheat])
}

func TestDaemon_CollectWhileProducing(t *testing.T) {
	// Arrange
	farm := startFarm(t)
	require.Eventually(t, func() bool {
		return farm.factory(t, 1).Stored > 0
	}, 2*time.Second, 10*time.Millisecond)

	// Act
	resp, err := farm.client.Send(context.Background(), &prodTypes.CollectOutputCommand{FactoryID: 1, OpenControls: true})

	// Assert
	require.NoError(t, err)
	collected := resp.(*prodTypes.CollectOutputResponse)
	assert.Positive(t, collected.Collected)
	assert.True(t, collected.Factory.ControlsOpen)
	assert.GreaterOrEqual(t, farm.resources(t)[resource.KindWheat], 3+collected.Collected)

	resp, err = farm.client.Send(context.Background(), &prodTypes.CloseControlsCommand{})
	require.NoError(t, err)
	assert.Nil(t, resp.(*prodTypes.ControlsResponse).Active)
}

func TestDaemon_ListFactoriesOrderedByID(t *testing.T) {
	farm := startFarm(t)

	resp, err := farm.client.Send(context.Background(), &prodTypes.ListFactoriesQuery{})

	require.NoError(t, err)
	views := resp.(*prodTypes.ListFactoriesResponse).Factories
	require.Len(t, views, 2)
	assert.Equal(t, production.FactoryID(1), views[0].ID)
	assert.Equal(t, production.FactoryID(2), views[1].ID)
	assert.Equal(t, "WHEAT", views[1].Required)
}

func TestDaemon_UnknownFactoryIsNotFound(t *testing.T) {
	farm := startFarm(t)

	_, err := farm.client.Send(context.Background(), &prodTypes.GetFactoryQuery{FactoryID: 99})

	assert.ErrorIs(t, err, production.ErrFactoryNotFound)
	assert.Contains(t, err.Error(), "99")
}

func TestDaemon_SaveGamePersistsLiveState(t *testing.T) {
	// Arrange
	farm := startFarm(t)
	ctx := context.Background()
	_, err := farm.client.Send(ctx, &prodTypes.EnqueueOrderCommand{FactoryID: 2})
	require.NoError(t, err)

	// Act
	resp, err := farm.client.Send(ctx, &savegame.SaveGameCommand{})

	// Assert
	require.NoError(t, err)
	assert.Positive(t, resp.(*savegame.SaveGameResponse).Snapshot.LastSaveTimestamp)

	snap, err := farm.repo.Latest(ctx)
	require.NoError(t, err)
	var millQueue int
	for _, f := range snap.Factories {
		if f.FactoryID == 2 {
			millQueue = f.QueueLength
		}
	}
	assert.Equal(t, 1, millQueue)
}

func TestDaemon_StoppedSimulationIsUnavailable(t *testing.T) {
	farm := startFarm(t)
	farm.stopScheduler()

	require.Eventually(t, func() bool {
		_, err := farm.client.Send(context.Background(), &prodTypes.ListFactoriesQuery{})
		return errors.Is(err, grpcadapter.ErrDaemonUnavailable)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDaemonClient_LoadIsNotForwarded(t *testing.T) {
	farm := startFarm(t)

	_, err := farm.client.Send(context.Background(), &savegame.LoadGameCommand{})

	assert.ErrorContains(t, err, "cannot be sent to a running farm")
}
