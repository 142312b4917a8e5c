package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const healthCheckInterval = 60 * time.Second

// HealthStatus is the latest snapshot of the dependencies a live call needs:
// Mongo for tenants and appointments, the session Redis DB for in-flight
// conversations, and the dedup Redis DB for webhook replay protection.
type HealthStatus struct {
	Mongo        bool      `json:"mongo"`
	SessionRedis bool      `json:"sessionRedis"`
	DedupRedis   bool      `json:"dedupRedis"`
	CheckedAt    time.Time `json:"checkedAt"`
}

var (
	currentHealth HealthStatus
	healthMu      sync.RWMutex
)

// GetHealthStatus returns the latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	healthMu.RLock()
	defer healthMu.RUnlock()
	return currentHealth
}

// StartHealthMonitor checks the dependencies once immediately and then every
// minute, keeping the in-memory snapshot the /health endpoint serves current.
func StartHealthMonitor(sessionRedis, dedupRedis *redis.Client, mongoClient *mongo.Client) {
	check := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		status := HealthStatus{
			Mongo:        mongoClient.Ping(ctx, nil) == nil,
			SessionRedis: sessionRedis.Ping(ctx).Err() == nil,
			DedupRedis:   dedupRedis.Ping(ctx).Err() == nil,
			CheckedAt:    time.Now().UTC(),
		}
		if !status.Mongo || !status.SessionRedis || !status.DedupRedis {
			GetLogger().Warn("dependency health check failed",
				zap.Bool("mongo", status.Mongo),
				zap.Bool("sessionRedis", status.SessionRedis),
				zap.Bool("dedupRedis", status.DedupRedis))
		}

		healthMu.Lock()
		currentHealth = status
		healthMu.Unlock()
	}

	go func() {
		check()
		ticker := time.NewTicker(healthCheckInterval)
		defer ticker.Stop()
		for range ticker.C {
			check()
		}
	}()
}
