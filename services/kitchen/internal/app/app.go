package app

import (
	"context"

	"github.com/appetiteclub/kitchenscreen/pkg"
	"github.com/appetiteclub/kitchenscreen/services/kitchen/internal/kitchen"
	"github.com/appetiteclub/kitchenscreen/services/kitchen/internal/mongo"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/middleware"
)

const (
	AppName    = "kitchen"
	AppVersion = "0.1.0"
)

// App encapsulates the kitchen service application
type App struct {
	config    *aqm.Config
	logger    aqm.Logger
	micro     *aqm.Micro
	orderRepo *mongo.OrderRepo
}

// New creates a new kitchen service application
func New(config *aqm.Config, logger aqm.Logger) (*App, error) {
	return &App{
		config: config,
		logger: logger,
	}, nil
}

// Initialize sets up all dependencies and components
func (a *App) Initialize(ctx context.Context) error {
	a.orderRepo = mongo.NewOrderRepo(a.config, a.logger)

	natsURL := a.config.GetStringOrDef("nats.url", "nats://localhost:4222")
	publisher, err := pkg.NewNATSPublisher(natsURL)
	if err != nil {
		return err
	}

	service := kitchen.NewService(a.orderRepo, a.orderRepo, publisher, a.logger)
	handler := kitchen.NewHandler(service, a.config, a.logger)

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger:      a.logger,
		DisableCORS: true,
	})
	stack = append(stack, middleware.InternalOnly())

	// Seeds need the repository started, so they run as the next lifecycle.
	seedLifecycle := aqm.LifecycleHooks{
		OnStart: func(ctx context.Context) error {
			if err := kitchen.ApplyDemoSeeds(ctx, a.config, service, a.orderRepo.GetDatabase, a.logger); err != nil {
				a.logger.Errorf("Demo seeding failed (non-fatal): %v", err)
			}
			return nil
		},
	}
	publisherLifecycle := aqm.LifecycleHooks{
		OnStop: func(context.Context) error { return publisher.Close() },
	}

	options := []aqm.Option{
		aqm.WithConfig(a.config),
		aqm.WithLogger(a.logger),
		aqm.WithHTTPMiddleware(stack...),
		aqm.WithHTTPServerModules("web.port", handler),
		aqm.WithLifecycle(a.orderRepo, seedLifecycle, publisherLifecycle),
		aqm.WithHealthChecks(AppName),
	}

	a.micro = aqm.NewMicro(options...)
	return nil
}

// Run starts the application
func (a *App) Run(ctx context.Context) error {
	a.logger.Infof("Starting %s(%s)", AppName, AppVersion)
	if err := a.micro.Run(ctx); err != nil {
		return err
	}
	a.logger.Infof("%s(%s) stopped", AppName, AppVersion)
	return nil
}
