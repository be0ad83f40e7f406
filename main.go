// main.go
package main

import (
	"context"
	"log"

	"admin-backend/cmd"
	"admin-backend/internal/data/entity"
	"admin-backend/internal/data/repository"
	"admin-backend/internal/data/store"
	"admin-backend/internal/usecase"
	"admin-backend/internal/wire"
	"admin-backend/pkg/database"
	"admin-backend/pkg/security"
	"admin-backend/pkg/utils"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	configPath := pflag.StringP("config", "c", ".env", "path to the env config file")
	pflag.Parse()

	// Load config
	config, err := utils.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Name, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.String("driver", config.Database.Driver),
		zap.Bool("debug", config.App.Debug),
	)

	ctx := context.Background()

	// Connect to storage
	userStore, closeStore, err := openUserStore(ctx, config.Database, logger)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer closeStore()

	logger.Info("Storage ready", zap.String("driver", config.Database.Driver))

	// Initialize all repositories
	repos := repository.NewRepository(repository.Stores{User: userStore}, config.Database.QueryTimeout, logger)

	if err := usecase.SeedAdmin(ctx, repos.User, security.NewBcryptHasher(config.Auth.BcryptCost), config.Seed, logger); err != nil {
		logger.Fatal("Failed to seed admin", zap.Error(err))
	}

	// Wire all dependencies
	app := wire.Wiring(repos, config, logger)

	// Start server
	if err := cmd.APIServer(app.Router, config.App.Port, config.App.ShutdownTimeout, logger); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
	logger.Info("Server stopped")
}

// openUserStore builds the user store for the configured driver and runs
// migrations for the SQL backends.
func openUserStore(ctx context.Context, config utils.DatabaseConfig, logger *zap.Logger) (store.Store[entity.User], func(), error) {
	migrateLog := zap.NewStdLog(logger.With(zap.String("component", "migrate")))

	switch config.Driver {
	case utils.DriverPostgres:
		sqlDB, err := database.OpenPostgresSQL(config)
		if err != nil {
			return nil, nil, err
		}
		err = database.Migrate(ctx, sqlDB, database.DialectPostgres, migrateLog)
		sqlDB.Close()
		if err != nil {
			return nil, nil, err
		}

		db, err := database.InitDB(config)
		if err != nil {
			return nil, nil, err
		}
		return store.NewPostgresStore[entity.User](db), db.Close, nil

	case utils.DriverSQLite:
		db, err := database.OpenSQLite(config.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(ctx, db, database.DialectSQLite, migrateLog); err != nil {
			db.Close()
			return nil, nil, err
		}
		return store.NewSQLiteStore[entity.User](db), func() { db.Close() }, nil

	default:
		logger.Warn("Using in-memory storage; data is lost on restart")
		return store.NewMemoryStore[entity.User](), func() {}, nil
	}
}
