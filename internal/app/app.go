// Package app wires configuration, store, event publisher and HTTP routes
// into a runnable application.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"products/internal/config"
	"products/internal/handlers"
	"products/internal/middleware"
	"products/internal/repositories"
	"products/internal/services"
	"products/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// App bundles the HTTP server, the product handler and the resources they hold.
type App struct {
	Fiber   *fiber.App
	Handler *handlers.ProductHandler
	closers []func() error
}

// New builds the application described by cfg.
func New(cfg *config.Config) (*App, error) {
	a := &App{}

	repo, closeRepo, err := OpenRepository(cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeRepo)

	var publisher services.Publisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		publisher = mqClient
		a.closers = append(a.closers, mqClient.Close)
	} else {
		log.Info().Msg("RABBITMQ_URL not set, product events are disabled")
	}

	productService := services.NewProductService(repo, cfg.TableName, publisher)
	a.Handler = handlers.NewProductHandler(productService)

	a.Fiber = fiber.New(fiber.Config{
		AppName:               "products",
		UnescapePath:          true,
		DisableStartupMessage: true,
	})
	a.Fiber.Use(requestid.New())
	a.Fiber.Use(recover.New())
	a.Fiber.Use(middleware.RequestLogger())

	a.Fiber.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"store":  cfg.StoreDriver,
		})
	})

	a.Handler.RegisterRoutes(a.Fiber)
	a.Fiber.Use(a.Handler.HandleUnmatched)
	return a, nil
}

// Close releases the store and broker connections in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// OpenRepository connects to the store selected by STORE_DRIVER. The returned
// func closes the connection.
func OpenRepository(cfg *config.Config) (repositories.ProductRepository, func() error, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return repositories.NewMemoryProductRepository(), func() error { return nil }, nil
	case config.DriverSQLite:
		return openGORM(sqlite.Open(cfg.DatabaseDSN), cfg.TableName())
	case config.DriverPostgres:
		return openGORM(postgres.Open(cfg.DatabaseDSN), cfg.TableName())
	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		return repositories.NewRedisProductRepository(client), client.Close, nil
	}
	return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
}

func openGORM(dialector gorm.Dialector, table string) (repositories.ProductRepository, func() error, error) {
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get database handle: %w", err)
	}

	repo := repositories.NewGORMProductRepository(db)
	if err := repo.Migrate(table); err != nil {
		sqlDB.Close()
		return nil, nil, err
	}
	return repo, sqlDB.Close, nil
}
