package app

import (
	"context"
	"log"

	"hidaya/internal/config"
	"hidaya/internal/database"
	"hidaya/internal/lock"
	"hidaya/internal/notify"
	"hidaya/internal/repository"
	"hidaya/internal/service"
	"hidaya/internal/storage"
)

// App connects every backing store and wires the services. The returned
// cleanup closes the connections in reverse order.
func App(ctx context.Context, cfg *config.Config) (*database.DB, *service.Service, func()) {
	// connection DB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	cleanup := []func(){func() { db.CloseDB() }}

	missing, err := repository.NewSchemaRepository(db.DB).MissingTables(ctx)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if len(missing) > 0 {
		log.Fatalf("database schema incomplete, missing tables: %v (apply migrations/001_create_tables.sql)", missing)
	}

	// notification inbox
	mongoClient, err := database.ConnectMongo(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	cleanup = append(cleanup, func() { database.DisconnectMongo(mongoClient) })

	inbox := notify.NewMongoInbox(mongoClient.Database(cfg.Mongo.Database))
	if err := inbox.EnsureIndexes(ctx); err != nil {
		log.Printf("Warning: %v", err)
	}
	notifier := notify.NewService(inbox, nil)

	// question lock: shared through redis when configured
	var locker lock.Locker = lock.NewMemoryLocker()
	redisClient, err := database.ConnectRedis(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	if redisClient != nil {
		locker = lock.NewRedisLocker(redisClient, cfg.Redis.LockTTL)
		cleanup = append(cleanup, func() { redisClient.Close() })
	} else {
		log.Println("REDIS_ADDR not set, using in-process question locks")
	}

	// connection MinIO
	var archive storage.Archive
	if cfg.MinIO.Endpoint != "" {
		minioClient, err := storage.NewMinIOClient(ctx, cfg.MinIO)
		if err != nil {
			log.Printf("Warning: removed content will not be archived: %v", err)
		} else {
			archive = minioClient
		}
	}

	// enabling dependencies
	repo := repository.NewRepository(db.DB)
	services := service.NewService(repo, cfg, locker, notifier, archive)

	return db, services, func() {
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
	}
}
