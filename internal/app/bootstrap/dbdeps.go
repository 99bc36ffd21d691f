// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// RedisClient backs the page-metadata cache. Nil when redis_addr is
	// blank; every caller treats a missing cache as a direct fetch.
	RedisClient *redis.Client
}
