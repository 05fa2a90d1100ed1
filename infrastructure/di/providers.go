package di

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"roadmaps-backend/application/ports"
	"roadmaps-backend/application/services"
	"roadmaps-backend/infrastructure/config"
	"roadmaps-backend/infrastructure/messaging/eventbridge"
	"roadmaps-backend/infrastructure/persistence/dynamodb"
	"roadmaps-backend/pkg/auth"
	"roadmaps-backend/pkg/observability"
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

// ProvideMetrics creates the Prometheus metrics collector
func ProvideMetrics() *observability.Collector {
	return observability.NewCollector("roadmaps")
}

// ProvideRoadmapRepository creates the DynamoDB roadmap repository
func ProvideRoadmapRepository(client *awsdynamodb.Client, cfg *config.Config, metrics *observability.Collector, logger *zap.Logger) ports.RoadmapRepository {
	return dynamodb.NewRoadmapRepository(client, cfg.DynamoDBTable, cfg.SlugIndexName, metrics, logger)
}

// ProvideUserRepository creates the DynamoDB user repository
func ProvideUserRepository(client *awsdynamodb.Client, cfg *config.Config, metrics *observability.Collector, logger *zap.Logger) ports.UserRepository {
	return dynamodb.NewUserRepository(client, cfg.DynamoDBTable, cfg.EmailIndexName, metrics, logger)
}

// ProvideEventBus creates the EventBridge publisher, or a no-op bus when no
// bus name is configured.
func ProvideEventBus(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventBus {
	if cfg.EventBusName == "" {
		return eventbridge.NopBus{}
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideJWTGenerator creates the token signer
func ProvideJWTGenerator(cfg *config.Config) (*auth.JWTGenerator, error) {
	return auth.NewJWTGenerator(auth.JWTConfig{
		SecretKey: cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
		Audience:  []string{cfg.JWTAudience},
	})
}

// ProvideRoadmapService creates the roadmap service
func ProvideRoadmapService(roadmaps ports.RoadmapRepository, eventBus ports.EventBus, metrics *observability.Collector, logger *zap.Logger) *services.RoadmapService {
	return services.NewRoadmapService(roadmaps, eventBus, metrics, logger)
}

// ProvideUserService creates the user service
func ProvideUserService(users ports.UserRepository, roadmaps ports.RoadmapRepository, metrics *observability.Collector, logger *zap.Logger) *services.UserService {
	return services.NewUserService(users, roadmaps, metrics, logger)
}

// ProvideAuthService creates the auth service
func ProvideAuthService(users ports.UserRepository, generator *auth.JWTGenerator, eventBus ports.EventBus, logger *zap.Logger) *services.AuthService {
	return services.NewAuthService(users, generator, eventBus, logger)
}
