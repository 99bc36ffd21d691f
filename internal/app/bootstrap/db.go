// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/markhold/markhold/internal/app/system/timeouts"
)

// ConnectDB establishes the MongoDB connection and, when configured, the
// Redis client for the metadata cache. A failed Mongo connection aborts
// startup; Redis is only dialed lazily, so a bad address surfaces as
// cache misses rather than a boot failure.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}

	if appCfg.RedisAddr != "" {
		deps.RedisClient = redis.NewClient(&redis.Options{Addr: appCfg.RedisAddr})
		logger.Info("metadata cache enabled", zap.String("redis_addr", appCfg.RedisAddr))
	}

	return deps, nil
}

// EnsureSchema creates the indexes the stores rely on.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	// Case-insensitive email uniqueness. Stores write the folded form to
	// email_ci on every create.
	_, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email_ci", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email_ci"),
	})
	if err != nil {
		return fmt.Errorf("users index: %w", err)
	}

	// Groups are listed oldest first and the earliest one is the default
	// target for captures, so the sort order gets an index.
	_, err = db.Collection("groups").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}},
		Options: options.Index().SetName("user_created"),
	})
	if err != nil {
		return fmt.Errorf("groups index: %w", err)
	}

	// Bookmarks list newest first per user and per group.
	for _, model := range []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("user_created"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "group_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("user_group_created"),
		},
	} {
		if _, err := db.Collection("bookmarks").Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("bookmarks index: %w", err)
		}
	}

	logger.Info("schema ensured")
	return nil
}
