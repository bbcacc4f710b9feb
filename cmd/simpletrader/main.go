package main

import (
	"context"
	"log/slog"
	"os"

	"simpletrader/config"
	"simpletrader/internal/delivery"
	"simpletrader/internal/delivery/api"
	"simpletrader/internal/delivery/api/router/handler"
	"simpletrader/internal/domain/repository"
	"simpletrader/internal/errors"
	"simpletrader/internal/infra/auth"
	logs "simpletrader/internal/infra/log"
	"simpletrader/internal/infra/persistence/memory"
	"simpletrader/internal/infra/persistence/postgres"
	"simpletrader/internal/infra/pubsub"
	"simpletrader/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectHandler(),
		injectDelivery(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
	)
}

func injectRepo() fx.Option {
	return fx.Provide(
		newAccountRepository,
	)
}

type accountRepositoryParams struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// newAccountRepository picks the account store from persistence.driver.
func newAccountRepository(params accountRepositoryParams) (repository.AccountRepository, error) {
	switch driver := params.Config.PersistenceDriver(); driver {
	case config.PersistenceDriverMemory:
		params.Logger.Warn("Using in-memory account store, accounts are lost on restart")

		return memory.NewAccountRepository(), nil

	case config.PersistenceDriverPostgres:
		db, err := postgres.New(postgres.Params{
			Lifecycle: params.Lifecycle,
			Config:    params.Config,
			Logger:    params.Logger,
		})
		if err != nil {
			return nil, err
		}

		return postgres.NewAccountRepository(db), nil

	default:
		return nil, errors.Errorf("unknown persistence driver: %s", driver)
	}
}

func injectService() fx.Option {
	return fx.Provide(
		auth.NewBcryptHasher,
		pubsub.NewEventPublisher,
	)
}

func injectUsecase() fx.Option {
	return fx.Provide(
		impl.NewAuthenticationService,
	)
}

func injectHandler() fx.Option {
	return fx.Provide(
		handler.NewAuthHandler,
	)
}

func injectDelivery() fx.Option {
	return fx.Provide(
		fx.Annotate(
			api.NewServer,
			fx.ResultTags(`group:"deliveries"`),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
