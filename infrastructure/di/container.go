package di

import (
	"go.uber.org/zap"

	"roadmaps-backend/application/ports"
	"roadmaps-backend/application/services"
	"roadmaps-backend/infrastructure/config"
	"roadmaps-backend/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *zap.Logger
	RoadmapRepo    ports.RoadmapRepository
	UserRepo       ports.UserRepository
	EventBus       ports.EventBus
	Metrics        *observability.Collector
	RoadmapService *services.RoadmapService
	UserService    *services.UserService
	AuthService    *services.AuthService
}
