//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"spooltrack/application/commands/bus"
	"spooltrack/application/ports"
	querybus "spooltrack/application/queries/bus"
	"spooltrack/application/services"
	"spooltrack/infrastructure/config"

	"github.com/google/wire"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	OverlayStore ports.OverlayStore
	ScanSource   ports.ScanSource
	Lock         ports.MutationLock
	Publisher    ports.EventPublisher
	Cache        ports.Cache
	Assembly     *services.AssemblyService
	Components   *services.ComponentService
	CommandBus   *bus.CommandBus
	QueryBus     *querybus.QueryBus
}

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideDomainConfig,
	ProvideOverlayStore,
	ProvideScanSource,
	ProvideMutationLock,
	ProvideEventPublisher,
	ProvideCache,
	ProvideGraphBuilder,
	ProvideMerger,
	ProvideInferenceEngine,
	ProvideHistory,
	ProvideAssemblyService,
	ProvideComponentService,
	ProvideCommandBus,
	ProvideQueryBus,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
