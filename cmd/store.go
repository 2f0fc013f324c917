package main

import (
	"chat-room/internal"
	"chat-room/repositories"
	"chat-room/repositories/memory"
	"chat-room/repositories/mongodb"
	"chat-room/repositories/redisdb"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
)

const (
	debugInspectorEndpoint = "/inspect"
)

type store struct {
	participants repositories.IParticipantRepository
	messages     repositories.IMessageRepository
	close        func()
}

func openStore(ctx context.Context, config internal.Config, logger *slog.Logger) (store, error) {
	switch internal.StoreDriver(config.StoreDriver) {
	case internal.StoreMongo:
		return openMongo(ctx, config, logger)
	case internal.StoreRedis:
		return openRedis(ctx, config, logger)
	case internal.StoreMemory:
		logger.Warn("Using the in-memory store, nothing survives a restart")
		return store{
			participants: memory.NewParticipantRepository(),
			messages:     memory.NewMessageRepository(),
			close:        func() {},
		}, nil
	default:
		return openBadger(ctx, config, logger)
	}
}

func openBadger(ctx context.Context, config internal.Config, logger *slog.Logger) (store, error) {
	if err := os.MkdirAll(filepath.Clean(config.BadgerFilepath), 0o755); err != nil {
		return store{}, fmt.Errorf("database directory: %w", err)
	}
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return store{}, fmt.Errorf("database opening failed: %w", err)
	}

	if logger.Enabled(ctx, slog.LevelDebug) {
		url := fmt.Sprintf("http://localhost:%d%s", config.DebugInspectorPort, debugInspectorEndpoint)
		logger.Info("Debug Badger inspector available", "url", url)
		database.StartDebugServer(db, config.DebugInspectorPort, debugInspectorEndpoint, repositories.InspectMapper)
	}

	messages := repositories.NewMessageRepository(db, logger)
	return store{
		participants: repositories.NewParticipantRepository(db),
		messages:     messages,
		close: func() {
			if err := messages.Close(); err != nil {
				logger.Warn("Failed to release message sequence", "err", err)
			}
			logger.Info("Closing BadgerDB...")
			_ = db.Close()
		},
	}, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)
	if logger.Enabled(ctx, slog.LevelDebug) {
		return options.WithLoggingLevel(badger.DEBUG)
	}
	return options.WithLoggingLevel(badger.WARNING)
}

func openMongo(ctx context.Context, config internal.Config, logger *slog.Logger) (store, error) {
	db, err := mongodb.Open(ctx, config.MongoURI, config.MongoDatabase)
	if err != nil {
		return store{}, fmt.Errorf("mongo connection failed: %w", err)
	}
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		_ = db.Client().Disconnect(context.Background())
		return store{}, fmt.Errorf("mongo indexes: %w", err)
	}
	logger.Info("Connected to MongoDB", "database", config.MongoDatabase)

	return store{
		participants: mongodb.NewParticipantRepository(db),
		messages:     mongodb.NewMessageRepository(db),
		close: func() {
			logger.Info("Disconnecting from MongoDB...")
			_ = db.Client().Disconnect(context.Background())
		},
	}, nil
}

func openRedis(ctx context.Context, config internal.Config, logger *slog.Logger) (store, error) {
	client, err := redisdb.NewClient(ctx, config.RedisURL)
	if err != nil {
		return store{}, fmt.Errorf("redis connection failed: %w", err)
	}
	logger.Info("Connected to Redis")

	return store{
		participants: redisdb.NewParticipantRepository(client),
		messages:     redisdb.NewMessageRepository(client),
		close: func() {
			logger.Info("Closing Redis client...")
			_ = client.Close()
		},
	}, nil
}
