package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rashedsumon/ai-receptionist/config"

	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Connect establishes database connection based on config
func Connect(cfg *config.Config) error {
	switch cfg.Database.Type {
	case "mongodb":
		return ConnectMongoDB(cfg)
	case "none", "":
		return nil
	default:
		return fmt.Errorf("unsupported database type: %s", cfg.Database.Type)
	}
}

// Enabled reports whether a database connection is open.
func Enabled() bool {
	return mongoClient != nil
}

// Disconnect closes database connection
func Disconnect() error {
	return DisconnectMongoDB()
}

// HealthCheck performs a database health check. Without a database there
// is nothing to check.
func HealthCheck(ctx context.Context) error {
	if mongoClient == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return mongoClient.Ping(ctx, readpref.Primary())
}
