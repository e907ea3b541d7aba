package main

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skedlyze/Skedlyze/internal/bootstrap"
	"github.com/Skedlyze/Skedlyze/internal/config"
	"github.com/Skedlyze/Skedlyze/internal/server"
	"github.com/Skedlyze/Skedlyze/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()
	if err := bootstrap.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if err := bootstrap.SeedAchievements(db); err != nil {
		log.Fatalf("failed to seed achievements: %v", err)
	}
	if err := bootstrap.SeedDefaultTasks(db); err != nil {
		log.Fatalf("failed to seed default tasks: %v", err)
	}
	if cfg.AppEnv == "development" {
		if err := bootstrap.SeedDevUser(db); err != nil {
			log.Fatalf("failed to seed dev user: %v", err)
		}
	}

	redisClient := connectRedis(cfg.RedisURL)

	srv := server.New(db, redisClient, cfg)
	log.Printf("Skedlyze server listening on :%s", cfg.Port)
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

// connectRedis is optional infrastructure; rate limiting and achievement
// notifications degrade to no-ops without it.
func connectRedis(redisURL string) *redis.Client {
	if redisURL == "" {
		log.Println("REDIS_URL not set, running without redis")
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("Invalid REDIS_URL, running without redis: %v", err)
		return nil
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis unreachable, running without redis: %v", err)
		return nil
	}

	return client
}
