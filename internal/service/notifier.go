package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/Skedlyze/Skedlyze/internal/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// AchievementChannel returns the redis pub/sub channel carrying a user's
// achievement unlock events; the websocket handler subscribes to it.
func AchievementChannel(userID string) string {
	return fmt.Sprintf("user_achievements:%s", userID)
}

type unlockEvent struct {
	Type        string            `json:"type"`
	Achievement model.Achievement `json:"achievement"`
	EarnedAt    time.Time         `json:"earned_at"`
}

// AchievementNotifier pushes unlock events to connected clients. Best-effort:
// a missing redis client or a failed publish never affects the unlock itself.
type AchievementNotifier interface {
	NotifyUnlock(ctx context.Context, userID uuid.UUID, achievement model.Achievement)
}

type achievementNotifier struct {
	redisClient *redis.Client
}

func NewAchievementNotifier(redisClient *redis.Client) AchievementNotifier {
	return &achievementNotifier{redisClient: redisClient}
}

func (n *achievementNotifier) NotifyUnlock(ctx context.Context, userID uuid.UUID, achievement model.Achievement) {
	if n.redisClient == nil {
		return
	}

	payload, err := json.Marshal(unlockEvent{
		Type:        "achievement_unlocked",
		Achievement: achievement,
		EarnedAt:    time.Now(),
	})
	if err != nil {
		return
	}

	if err := n.redisClient.Publish(ctx, AchievementChannel(userID.String()), payload).Err(); err != nil {
		log.Printf("Failed to publish achievement unlock for user %s: %v", userID, err)
	}
}
