package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Skedlyze/Skedlyze/internal/repository"
)

func newAchievementEnv(t *testing.T) (AchievementService, GamificationService, repository.AchievementRepository, repository.ProfileRepository, uuid.UUID) {
	t.Helper()

	db := newTestDB(t)
	seedTestAchievements(t, db)
	user := createTestUser(t, db)

	profiles := repository.NewProfileRepository(db)
	achievements := repository.NewAchievementRepository(db)
	gamification := NewGamificationService(profiles)
	svc := NewAchievementService(achievements, gamification, NewAchievementNotifier(nil))
	return svc, gamification, achievements, profiles, user.ID
}

func TestFirstTaskCompletionUnlocks(t *testing.T) {
	svc, gamification, achievements, _, userID := newAchievementEnv(t)
	ctx := context.Background()

	if _, err := gamification.AdjustTaskCounters(ctx, userID, 1, 1); err != nil {
		t.Fatalf("adjust counters: %v", err)
	}
	if err := svc.CheckTaskCompletionAchievements(ctx, userID); err != nil {
		t.Fatalf("check achievements: %v", err)
	}

	unlocks, err := achievements.FindUnlocks(ctx, userID)
	if err != nil {
		t.Fatalf("find unlocks: %v", err)
	}
	if len(unlocks) != 1 {
		t.Fatalf("got %d unlocks, want 1", len(unlocks))
	}
	if unlocks[0].Achievement.Name != "First Steps" {
		t.Fatalf("unlocked %q, want First Steps", unlocks[0].Achievement.Name)
	}
	if unlocks[0].EarnedAt.IsZero() {
		t.Fatal("EarnedAt should be stamped")
	}

	profile, err := gamification.GetProfile(ctx, userID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.ExperiencePoints != 25 {
		t.Fatalf("reward XP = %d, want 25", profile.ExperiencePoints)
	}
	if profile.TotalAchievementsEarned != 1 {
		t.Fatalf("TotalAchievementsEarned = %d, want 1", profile.TotalAchievementsEarned)
	}
}

func TestRepeatedChecksAwardOnce(t *testing.T) {
	svc, gamification, achievements, _, userID := newAchievementEnv(t)
	ctx := context.Background()

	if _, err := gamification.AdjustTaskCounters(ctx, userID, 1, 1); err != nil {
		t.Fatalf("adjust counters: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := svc.CheckAllAchievements(ctx, userID); err != nil {
			t.Fatalf("check achievements: %v", err)
		}
	}

	unlocks, err := achievements.FindUnlocks(ctx, userID)
	if err != nil {
		t.Fatalf("find unlocks: %v", err)
	}
	if len(unlocks) != 1 {
		t.Fatalf("got %d unlocks, want 1", len(unlocks))
	}

	profile, err := gamification.GetProfile(ctx, userID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.ExperiencePoints != 25 {
		t.Fatalf("reward XP paid more than once: %d", profile.ExperiencePoints)
	}
	if profile.TotalAchievementsEarned != 1 {
		t.Fatalf("TotalAchievementsEarned = %d, want 1", profile.TotalAchievementsEarned)
	}
}

func TestThresholdNotMetNoUnlock(t *testing.T) {
	svc, _, achievements, _, userID := newAchievementEnv(t)
	ctx := context.Background()

	if err := svc.CheckAllAchievements(ctx, userID); err != nil {
		t.Fatalf("check achievements: %v", err)
	}

	unlocks, err := achievements.FindUnlocks(ctx, userID)
	if err != nil {
		t.Fatalf("find unlocks: %v", err)
	}
	if len(unlocks) != 0 {
		t.Fatalf("fresh profile should have no unlocks, got %d", len(unlocks))
	}
}

func TestStreakAchievement(t *testing.T) {
	svc, gamification, achievements, profiles, userID := newAchievementEnv(t)
	ctx := context.Background()

	// Build a 3-day run: each activity lands with yesterday on record.
	if _, err := gamification.UpdateStreak(ctx, userID); err != nil {
		t.Fatalf("update streak: %v", err)
	}
	for i := 0; i < 2; i++ {
		setLastActivity(t, profiles, userID, time.Now().AddDate(0, 0, -1))
		if _, err := gamification.UpdateStreak(ctx, userID); err != nil {
			t.Fatalf("update streak: %v", err)
		}
	}

	if err := svc.CheckStreakAchievements(ctx, userID); err != nil {
		t.Fatalf("check achievements: %v", err)
	}

	unlocks, err := achievements.FindUnlocks(ctx, userID)
	if err != nil {
		t.Fatalf("find unlocks: %v", err)
	}
	if len(unlocks) != 1 || unlocks[0].Achievement.Name != "Getting Started" {
		t.Fatalf("expected streak unlock, got %+v", unlocks)
	}
}

func TestLevelAchievement(t *testing.T) {
	svc, gamification, achievements, _, userID := newAchievementEnv(t)
	ctx := context.Background()

	res, err := gamification.AddExperience(ctx, userID, TotalExperienceForLevel(5), ReasonTaskCompletion)
	if err != nil {
		t.Fatalf("add experience: %v", err)
	}
	if res.Profile.Level != 5 {
		t.Fatalf("level = %d, want 5", res.Profile.Level)
	}

	if err := svc.CheckLevelAchievements(ctx, userID); err != nil {
		t.Fatalf("check achievements: %v", err)
	}

	unlocks, err := achievements.FindUnlocks(ctx, userID)
	if err != nil {
		t.Fatalf("find unlocks: %v", err)
	}
	if len(unlocks) != 1 || unlocks[0].Achievement.Name != "Level 5" {
		t.Fatalf("expected level unlock, got %+v", unlocks)
	}
}

func TestMarkUnlockRead(t *testing.T) {
	svc, gamification, achievements, _, userID := newAchievementEnv(t)
	ctx := context.Background()

	if _, err := gamification.AdjustTaskCounters(ctx, userID, 1, 1); err != nil {
		t.Fatalf("adjust counters: %v", err)
	}
	if err := svc.CheckTaskCompletionAchievements(ctx, userID); err != nil {
		t.Fatalf("check achievements: %v", err)
	}

	unlocks, err := achievements.FindUnlocks(ctx, userID)
	if err != nil {
		t.Fatalf("find unlocks: %v", err)
	}
	if len(unlocks) != 1 || unlocks[0].IsRead {
		t.Fatalf("expected one unread unlock, got %+v", unlocks)
	}

	if err := achievements.MarkRead(ctx, userID, unlocks[0].AchievementID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	unlocks, err = achievements.FindUnlocks(ctx, userID)
	if err != nil {
		t.Fatalf("find unlocks: %v", err)
	}
	if !unlocks[0].IsRead {
		t.Fatal("unlock should be marked read")
	}
}
