package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Skedlyze/Skedlyze/internal/repository"
)

func newGamification(t *testing.T) (GamificationService, repository.ProfileRepository, uuid.UUID) {
	t.Helper()

	db := newTestDB(t)
	user := createTestUser(t, db)
	profiles := repository.NewProfileRepository(db)
	return NewGamificationService(profiles), profiles, user.ID
}

func TestAddExperienceLevelsUp(t *testing.T) {
	svc, _, userID := newGamification(t)
	ctx := context.Background()

	res, err := svc.AddExperience(ctx, userID, 50, ReasonTaskCompletion)
	if err != nil {
		t.Fatalf("add experience: %v", err)
	}
	if res.LevelUp || res.Profile.Level != 0 {
		t.Fatalf("50 XP should not level up, got %+v", res)
	}

	res, err = svc.AddExperience(ctx, userID, 50, ReasonTaskCompletion)
	if err != nil {
		t.Fatalf("add experience: %v", err)
	}
	if !res.LevelUp || res.Profile.Level != 1 {
		t.Fatalf("100 XP total should reach level 1, got level=%d levelUp=%v", res.Profile.Level, res.LevelUp)
	}
	if res.Profile.ExperiencePoints != 100 || res.Profile.TotalExperienceEarned != 100 {
		t.Fatalf("unexpected XP bookkeeping: %+v", res.Profile)
	}
}

func TestRemoveExperienceRoundTrip(t *testing.T) {
	svc, _, userID := newGamification(t)
	ctx := context.Background()

	if _, err := svc.AddExperience(ctx, userID, 120, ReasonTaskCompletion); err != nil {
		t.Fatalf("add experience: %v", err)
	}

	res, err := svc.RemoveExperience(ctx, userID, 120, ReasonTaskUncompletion)
	if err != nil {
		t.Fatalf("remove experience: %v", err)
	}
	if res.Profile.ExperiencePoints != 0 {
		t.Fatalf("XP after round trip = %d, want 0", res.Profile.ExperiencePoints)
	}
	if !res.LevelDown || res.Profile.Level != 0 {
		t.Fatalf("expected level down to 0, got level=%d levelDown=%v", res.Profile.Level, res.LevelDown)
	}
	// Lifetime counter is monotonic
	if res.Profile.TotalExperienceEarned != 120 {
		t.Fatalf("TotalExperienceEarned=%d, want 120", res.Profile.TotalExperienceEarned)
	}
}

func TestRemoveExperienceFloorsAtZero(t *testing.T) {
	svc, _, userID := newGamification(t)
	ctx := context.Background()

	if _, err := svc.AddExperience(ctx, userID, 10, ReasonTaskCompletion); err != nil {
		t.Fatalf("add experience: %v", err)
	}

	res, err := svc.RemoveExperience(ctx, userID, 500, ReasonTaskUncompletion)
	if err != nil {
		t.Fatalf("remove experience: %v", err)
	}
	if res.Profile.ExperiencePoints != 0 {
		t.Fatalf("XP=%d, want floor at 0", res.Profile.ExperiencePoints)
	}
}

func TestNegativeAmountsRejected(t *testing.T) {
	svc, _, userID := newGamification(t)
	ctx := context.Background()

	if _, err := svc.AddExperience(ctx, userID, -5, ReasonTaskCompletion); err == nil {
		t.Fatal("AddExperience(-5) should fail")
	}
	if _, err := svc.RemoveExperience(ctx, userID, -5, ReasonTaskUncompletion); err == nil {
		t.Fatal("RemoveExperience(-5) should fail")
	}
}

func TestUpdateStreakFirstActivity(t *testing.T) {
	svc, _, userID := newGamification(t)

	profile, err := svc.UpdateStreak(context.Background(), userID)
	if err != nil {
		t.Fatalf("update streak: %v", err)
	}
	if profile.CurrentStreakDays != 1 {
		t.Fatalf("streak=%d, want 1", profile.CurrentStreakDays)
	}
	if profile.LastActivityDate == nil || profile.StreakStartDate == nil {
		t.Fatal("streak dates should be stamped")
	}
}

func TestUpdateStreakSameDayUnchanged(t *testing.T) {
	svc, _, userID := newGamification(t)
	ctx := context.Background()

	if _, err := svc.UpdateStreak(ctx, userID); err != nil {
		t.Fatalf("update streak: %v", err)
	}
	profile, err := svc.UpdateStreak(ctx, userID)
	if err != nil {
		t.Fatalf("update streak: %v", err)
	}
	if profile.CurrentStreakDays != 1 {
		t.Fatalf("same-day streak=%d, want 1", profile.CurrentStreakDays)
	}
}

func TestUpdateStreakConsecutiveDay(t *testing.T) {
	svc, profiles, userID := newGamification(t)
	ctx := context.Background()

	if _, err := svc.UpdateStreak(ctx, userID); err != nil {
		t.Fatalf("update streak: %v", err)
	}
	setLastActivity(t, profiles, userID, time.Now().AddDate(0, 0, -1))

	profile, err := svc.UpdateStreak(ctx, userID)
	if err != nil {
		t.Fatalf("update streak: %v", err)
	}
	if profile.CurrentStreakDays != 2 {
		t.Fatalf("streak=%d, want 2", profile.CurrentStreakDays)
	}
	if profile.LongestStreakDays != 2 {
		t.Fatalf("longest=%d, want 2", profile.LongestStreakDays)
	}
}

func TestUpdateStreakGapResets(t *testing.T) {
	svc, profiles, userID := newGamification(t)
	ctx := context.Background()

	if _, err := svc.UpdateStreak(ctx, userID); err != nil {
		t.Fatalf("update streak: %v", err)
	}
	setLastActivity(t, profiles, userID, time.Now().AddDate(0, 0, -1))
	if _, err := svc.UpdateStreak(ctx, userID); err != nil {
		t.Fatalf("update streak: %v", err)
	}

	// Three-day gap breaks the run
	setLastActivity(t, profiles, userID, time.Now().AddDate(0, 0, -3))
	profile, err := svc.UpdateStreak(ctx, userID)
	if err != nil {
		t.Fatalf("update streak: %v", err)
	}
	if profile.CurrentStreakDays != 1 {
		t.Fatalf("streak after gap=%d, want 1", profile.CurrentStreakDays)
	}
	if profile.LongestStreakDays != 2 {
		t.Fatalf("longest should survive reset, got %d", profile.LongestStreakDays)
	}
}

func TestAdjustTaskCountersCompletionRate(t *testing.T) {
	svc, _, userID := newGamification(t)
	ctx := context.Background()

	if _, err := svc.AdjustTaskCounters(ctx, userID, 4, 0); err != nil {
		t.Fatalf("adjust counters: %v", err)
	}
	profile, err := svc.AdjustTaskCounters(ctx, userID, 0, 3)
	if err != nil {
		t.Fatalf("adjust counters: %v", err)
	}

	if profile.TotalTasksCreated != 4 || profile.TotalTasksCompleted != 3 {
		t.Fatalf("counters = %d/%d, want 4/3", profile.TotalTasksCreated, profile.TotalTasksCompleted)
	}
	if profile.CompletionRate != 75 {
		t.Fatalf("completion rate=%v, want 75", profile.CompletionRate)
	}
	if profile.TasksCompletedToday != 3 || profile.TasksCompletedThisWeek != 3 || profile.TasksCompletedThisMonth != 3 {
		t.Fatalf("period counters not updated: %+v", profile)
	}
}

func TestAdjustTaskCountersClampAtZero(t *testing.T) {
	svc, _, userID := newGamification(t)

	profile, err := svc.AdjustTaskCounters(context.Background(), userID, -5, -5)
	if err != nil {
		t.Fatalf("adjust counters: %v", err)
	}
	if profile.TotalTasksCreated != 0 || profile.TotalTasksCompleted != 0 {
		t.Fatalf("counters should clamp at zero, got %+v", profile)
	}
}

func TestAdjustCategoryCounters(t *testing.T) {
	svc, _, userID := newGamification(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if err := svc.AdjustCategoryCounters(ctx, userID, "work", 1, 0); err != nil {
			t.Fatalf("adjust category: %v", err)
		}
	}
	for i := 0; i < 3; i++ {
		if err := svc.AdjustCategoryCounters(ctx, userID, "work", 0, 1); err != nil {
			t.Fatalf("adjust category: %v", err)
		}
	}

	profile, err := svc.GetProfile(ctx, userID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	stat, ok := profile.CategoryStats["work"]
	if !ok {
		t.Fatal("work category stat missing")
	}
	if stat.TotalCreated != 4 || stat.TotalCompleted != 3 {
		t.Fatalf("category counters = %d/%d, want 4/3", stat.TotalCreated, stat.TotalCompleted)
	}
	if stat.CompletionRate != 75 {
		t.Fatalf("category completion rate=%v, want 75", stat.CompletionRate)
	}
}

func TestResetPeriodicCounters(t *testing.T) {
	svc, _, userID := newGamification(t)
	ctx := context.Background()

	if _, err := svc.AdjustTaskCounters(ctx, userID, 2, 2); err != nil {
		t.Fatalf("adjust counters: %v", err)
	}
	if err := svc.ResetPeriodicCounters(ctx, PeriodDaily); err != nil {
		t.Fatalf("reset daily: %v", err)
	}

	profile, err := svc.GetProfile(ctx, userID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.TasksCompletedToday != 0 {
		t.Fatalf("daily counter=%d, want 0", profile.TasksCompletedToday)
	}
	if profile.TasksCompletedThisWeek != 2 || profile.TotalTasksCompleted != 2 {
		t.Fatalf("other counters should be untouched: %+v", profile)
	}

	if err := svc.ResetPeriodicCounters(ctx, "quarterly"); err == nil {
		t.Fatal("unknown period should fail")
	}
}
