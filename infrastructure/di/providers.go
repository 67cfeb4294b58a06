package di

import (
	"context"

	"spooltrack/application/builder"
	"spooltrack/application/commands"
	"spooltrack/application/commands/bus"
	"spooltrack/application/history"
	"spooltrack/application/inference"
	"spooltrack/application/merge"
	"spooltrack/application/ports"
	"spooltrack/application/queries"
	querybus "spooltrack/application/queries/bus"
	"spooltrack/application/services"
	domaincfg "spooltrack/domain/config"
	"spooltrack/infrastructure/config"
	"spooltrack/infrastructure/messaging/eventbridge"
	dynamostore "spooltrack/infrastructure/persistence/dynamodb"
	"spooltrack/infrastructure/persistence/memory"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideDomainConfig builds the domain configuration, applying the
// operator-tunable history depths from the environment
func ProvideDomainConfig(cfg *config.Config) domaincfg.DomainConfig {
	dc := domaincfg.DefaultDomainConfig()
	dc.MaxUndoDepth = cfg.MaxUndoDepth
	dc.MaxRedoDepth = cfg.MaxRedoDepth
	return dc
}

// ProvideOverlayStore creates the overlay store. Development runs on the
// in-memory store so the service works without AWS credentials.
func ProvideOverlayStore(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.OverlayStore {
	if cfg.IsDevelopment() {
		return memory.NewOverlayStore()
	}
	return dynamostore.NewOverlayStore(client, cfg.DynamoDBTable, cfg.IndexName, logger)
}

// ProvideScanSource creates the scan record source
func ProvideScanSource(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.ScanSource {
	if cfg.IsDevelopment() {
		return memory.NewScanSource(nil)
	}
	return dynamostore.NewScanSource(client, cfg.ScanTable, logger)
}

// ProvideMutationLock creates the cross-instance mutation lock
func ProvideMutationLock(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.MutationLock {
	if cfg.IsDevelopment() {
		return memory.NewLocalLock()
	}
	return dynamostore.NewDistributedLock(client, cfg.DynamoDBTable, logger)
}

// ProvideEventPublisher creates the domain event publisher
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	if cfg.IsDevelopment() {
		return eventbridge.NewNopPublisher()
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideCache creates the process-local cache
func ProvideCache() ports.Cache {
	return NewInMemoryCache()
}

// ProvideGraphBuilder creates the scan graph builder
func ProvideGraphBuilder(logger *zap.Logger) *builder.GraphBuilder {
	return builder.NewGraphBuilder(logger)
}

// ProvideMerger creates the overlay merge engine
func ProvideMerger(logger *zap.Logger) *merge.Merger {
	return merge.NewMerger(logger)
}

// ProvideInferenceEngine creates the mass inference engine
func ProvideInferenceEngine(dc domaincfg.DomainConfig, logger *zap.Logger) *inference.Engine {
	return inference.NewEngine(dc, logger)
}

// ProvideHistory creates the bounded undo/redo stacks
func ProvideHistory(dc domaincfg.DomainConfig) *history.History {
	return history.NewHistory(dc)
}

// ProvideAssemblyService creates the assembly service
func ProvideAssemblyService(
	scanSource ports.ScanSource,
	store ports.OverlayStore,
	graphBuilder *builder.GraphBuilder,
	merger *merge.Merger,
	cache ports.Cache,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *services.AssemblyService {
	return services.NewAssemblyService(scanSource, store, graphBuilder, merger, cache, publisher, logger)
}

// ProvideComponentService creates the component mutation service
func ProvideComponentService(
	assembly *services.AssemblyService,
	store ports.OverlayStore,
	publisher ports.EventPublisher,
	lock ports.MutationLock,
	engine *inference.Engine,
	hist *history.History,
	logger *zap.Logger,
) *services.ComponentService {
	return services.NewComponentService(assembly, store, publisher, lock, engine, hist, logger)
}

// ProvideCommandBus creates a command bus with all handlers registered
func ProvideCommandBus(
	components *services.ComponentService,
	assembly *services.AssemblyService,
	logger *zap.Logger,
) *bus.CommandBus {
	commandBus := bus.NewCommandBus(bus.LoggingMiddleware(logger))

	commandBus.Register(commands.AddChildCommand{}, commands.NewAddChildHandler(components))
	commandBus.Register(commands.RemoveChildCommand{}, commands.NewRemoveChildHandler(components))
	commandBus.Register(commands.CreateSiblingCommand{}, commands.NewCreateSiblingHandler(components))
	commandBus.Register(commands.MoveComponentCommand{}, commands.NewMoveComponentHandler(components))
	commandBus.Register(commands.RecordMeasurementCommand{}, commands.NewRecordMeasurementHandler(components))
	commandBus.Register(commands.InferAndApplyMassCommand{}, commands.NewInferAndApplyMassHandler(components))
	commandBus.Register(commands.ApplyScaleReadingCommand{}, commands.NewApplyScaleReadingHandler(components))
	commandBus.Register(commands.RefreshInventoryCommand{}, commands.NewRefreshInventoryHandler(assembly))
	commandBus.Register(commands.UndoCommand{}, commands.NewUndoHandler(components))
	commandBus.Register(commands.RedoCommand{}, commands.NewRedoHandler(components))

	return commandBus
}

// ProvideQueryBus creates a query bus with all handlers registered
func ProvideQueryBus(
	assembly *services.AssemblyService,
	components *services.ComponentService,
) *querybus.QueryBus {
	queryBus := querybus.NewQueryBus()

	queryBus.Register(queries.ListComponentsQuery{}, queries.NewListComponentsHandler(assembly))
	queryBus.Register(queries.GetComponentQuery{}, queries.NewGetComponentHandler(assembly))
	queryBus.Register(queries.GetSubtreeQuery{}, queries.NewGetSubtreeHandler(assembly))
	queryBus.Register(queries.InferMassQuery{}, queries.NewInferMassHandler(components))
	queryBus.Register(queries.PreviewScaleReadingQuery{}, queries.NewPreviewScaleReadingHandler(components))
	queryBus.Register(queries.GetHistoryQuery{}, queries.NewGetHistoryHandler(components))
	queryBus.Register(queries.ListMeasurementsQuery{}, queries.NewListMeasurementsHandler(components))

	return queryBus
}
