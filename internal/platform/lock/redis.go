package lock

import (
	"cf_tracker/internal/platform/config"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client

func ConnectRedis() {
	RDB = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})

	ctx := context.Background()
	_, err := RDB.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Could not connect to Redis: %v", err)
	}
	fmt.Println("Successfully connected to Redis!")
}

func CloseRedis() {
	if RDB != nil {
		RDB.Close()
		fmt.Println("Redis connection closed.")
	}
}

// releaseScript deletes the lock key only if it still holds our token, so an
// expired lock re-acquired by another run is never released from here.
var releaseScript = redis.NewScript(`
    if redis.call("get", KEYS[1]) == ARGV[1] then
        return redis.call("del", KEYS[1])
    else
        return 0
    end
`)

// FleetLock is an advisory lock guarding "fleet sync in progress". Overlapping
// scheduled and on-demand full-fleet syncs race on the same student rows, so a
// second trigger must be rejected while one is running.
type FleetLock struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

func NewFleetLock(rdb *redis.Client, key string, ttl time.Duration) *FleetLock {
	return &FleetLock{rdb: rdb, key: key, ttl: ttl}
}

// Acquire tries to take the lock with the given token. It returns false when
// another fleet sync already holds it.
func (l *FleetLock) Acquire(ctx context.Context, token string) (bool, error) {
	ok, err := l.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("FleetLock.Acquire: %w", err)
	}
	return ok, nil
}

// Release drops the lock if the token still matches.
func (l *FleetLock) Release(ctx context.Context, token string) {
	deleted, err := releaseScript.Run(ctx, l.rdb, []string{l.key}, token).Result()
	if err != nil {
		log.Printf("ERROR: Failed to release fleet sync lock %s: %v", l.key, err)
		return
	}
	if v, ok := deleted.(int64); !ok || v != 1 {
		log.Printf("WARN: Fleet sync lock %s was not held by this run; it may have expired.", l.key)
	}
}
