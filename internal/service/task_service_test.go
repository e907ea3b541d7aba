package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skedlyze/Skedlyze/internal/dto"
	"github.com/Skedlyze/Skedlyze/internal/model"
	"github.com/Skedlyze/Skedlyze/internal/repository"
	"github.com/Skedlyze/Skedlyze/pkg/apperror"
)

type taskEnv struct {
	db           *gorm.DB
	svc          TaskService
	gamification GamificationService
	achievements repository.AchievementRepository
	userID       uuid.UUID
}

// newTaskEnv wires the task service without calendar, search or redis;
// those integrations are optional and the service skips them when absent.
func newTaskEnv(t *testing.T) *taskEnv {
	t.Helper()

	db := newTestDB(t)
	user := createTestUser(t, db)

	tasks := repository.NewTaskRepository(db)
	users := repository.NewUserRepository(db)
	profiles := repository.NewProfileRepository(db)
	achievements := repository.NewAchievementRepository(db)

	gamification := NewGamificationService(profiles)
	checker := NewAchievementService(achievements, gamification, NewAchievementNotifier(nil))
	svc := NewTaskService(tasks, users, gamification, checker, nil, nil, nil, time.Second)

	return &taskEnv{
		db:           db,
		svc:          svc,
		gamification: gamification,
		achievements: achievements,
		userID:       user.ID,
	}
}

func TestCreateTaskDefaults(t *testing.T) {
	env := newTaskEnv(t)
	ctx := context.Background()

	task, err := env.svc.Create(ctx, env.userID, dto.CreateTaskRequest{Title: "Read a chapter"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if task.Priority != model.PriorityMedium || task.Status != model.StatusPending || task.Category != model.CategoryOther {
		t.Fatalf("defaults not applied: %+v", task)
	}
	if task.ExperienceReward != 10 {
		t.Fatalf("default reward = %d, want 10", task.ExperienceReward)
	}

	profile, err := env.gamification.GetProfile(ctx, env.userID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.TotalTasksCreated != 1 {
		t.Fatalf("TotalTasksCreated = %d, want 1", profile.TotalTasksCreated)
	}
	stat := profile.CategoryStats[model.CategoryOther]
	if stat == nil || stat.TotalCreated != 1 {
		t.Fatalf("category stat not counted: %+v", profile.CategoryStats)
	}
}

func TestCompleteTaskPipeline(t *testing.T) {
	env := newTaskEnv(t)
	seedTestAchievements(t, env.db)
	ctx := context.Background()

	task, err := env.svc.Create(ctx, env.userID, dto.CreateTaskRequest{
		Title:    "Ship the release",
		Priority: model.PriorityHigh,
		Category: model.CategoryWork,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	resp, err := env.svc.Complete(ctx, env.userID, task.ID)
	if err != nil {
		t.Fatalf("complete task: %v", err)
	}
	if resp.ExperienceGained != 20 {
		t.Fatalf("high priority XP = %d, want 20", resp.ExperienceGained)
	}
	if !resp.Task.IsCompleted || resp.Task.Status != model.StatusCompleted || resp.Task.CompletedAt == nil {
		t.Fatalf("completion not stamped: %+v", resp.Task)
	}

	profile, err := env.gamification.GetProfile(ctx, env.userID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	// 20 from the task plus the 25 first-completion award
	if profile.ExperiencePoints != 45 {
		t.Fatalf("XP = %d, want 45", profile.ExperiencePoints)
	}
	if profile.TotalTasksCompleted != 1 || profile.CurrentStreakDays != 1 {
		t.Fatalf("counters not updated: %+v", profile)
	}

	unlocks, err := env.achievements.FindUnlocks(ctx, env.userID)
	if err != nil {
		t.Fatalf("find unlocks: %v", err)
	}
	if len(unlocks) != 1 || unlocks[0].Achievement.Name != "First Steps" {
		t.Fatalf("expected First Steps unlock, got %+v", unlocks)
	}
}

func TestCompleteTwiceRejected(t *testing.T) {
	env := newTaskEnv(t)
	ctx := context.Background()

	task, err := env.svc.Create(ctx, env.userID, dto.CreateTaskRequest{Title: "Water the plants"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, err := env.svc.Complete(ctx, env.userID, task.ID); err != nil {
		t.Fatalf("complete task: %v", err)
	}

	if _, err := env.svc.Complete(ctx, env.userID, task.ID); !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("second completion err = %v, want conflict", err)
	}

	profile, err := env.gamification.GetProfile(ctx, env.userID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.ExperiencePoints != 10 || profile.TotalTasksCompleted != 1 {
		t.Fatalf("double award slipped through: %+v", profile)
	}
}

func TestUncheckDeductsExperience(t *testing.T) {
	env := newTaskEnv(t)
	ctx := context.Background()

	task, err := env.svc.Create(ctx, env.userID, dto.CreateTaskRequest{Title: "Morning run", Category: model.CategoryHealth})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, err := env.svc.Complete(ctx, env.userID, task.ID); err != nil {
		t.Fatalf("complete task: %v", err)
	}

	done := false
	updated, uncheck, err := env.svc.Update(ctx, env.userID, task.ID, dto.UpdateTaskRequest{IsCompleted: &done})
	if err != nil {
		t.Fatalf("uncheck task: %v", err)
	}
	if uncheck == nil {
		t.Fatal("uncheck response missing")
	}
	if uncheck.ExperienceLost != 10 {
		t.Fatalf("ExperienceLost = %d, want 10", uncheck.ExperienceLost)
	}
	if updated.IsCompleted || updated.Status != model.StatusPending || updated.CompletedAt != nil {
		t.Fatalf("task not reset: %+v", updated)
	}

	profile, err := env.gamification.GetProfile(ctx, env.userID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.ExperiencePoints != 0 || profile.TotalTasksCompleted != 0 {
		t.Fatalf("profile not rolled back: %+v", profile)
	}
	// lifetime XP survives the uncheck
	if profile.TotalExperienceEarned != 10 {
		t.Fatalf("TotalExperienceEarned = %d, want 10", profile.TotalExperienceEarned)
	}
}

func TestPlainUpdateKeepsCompletion(t *testing.T) {
	env := newTaskEnv(t)
	ctx := context.Background()

	task, err := env.svc.Create(ctx, env.userID, dto.CreateTaskRequest{Title: "Draft proposal"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, err := env.svc.Complete(ctx, env.userID, task.ID); err != nil {
		t.Fatalf("complete task: %v", err)
	}

	title := "Draft final proposal"
	updated, uncheck, err := env.svc.Update(ctx, env.userID, task.ID, dto.UpdateTaskRequest{Title: &title})
	if err != nil {
		t.Fatalf("update task: %v", err)
	}
	if uncheck != nil {
		t.Fatalf("title-only update should not uncheck, got %+v", uncheck)
	}
	if !updated.IsCompleted || updated.Title != title {
		t.Fatalf("update lost state: %+v", updated)
	}
}

func TestDeleteAdjustsCounters(t *testing.T) {
	env := newTaskEnv(t)
	ctx := context.Background()

	kept, err := env.svc.Create(ctx, env.userID, dto.CreateTaskRequest{Title: "Keep me"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	doomed, err := env.svc.Create(ctx, env.userID, dto.CreateTaskRequest{Title: "Delete me"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, err := env.svc.Complete(ctx, env.userID, doomed.ID); err != nil {
		t.Fatalf("complete task: %v", err)
	}

	if err := env.svc.Delete(ctx, env.userID, doomed.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}

	if _, err := env.svc.Get(ctx, env.userID, doomed.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("deleted task lookup err = %v, want not found", err)
	}
	if _, err := env.svc.Get(ctx, env.userID, kept.ID); err != nil {
		t.Fatalf("surviving task lookup: %v", err)
	}

	profile, err := env.gamification.GetProfile(ctx, env.userID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.TotalTasksCreated != 1 || profile.TotalTasksCompleted != 0 {
		t.Fatalf("counters after delete = %d/%d, want 1/0", profile.TotalTasksCreated, profile.TotalTasksCompleted)
	}
}

func TestGetIsScopedToOwner(t *testing.T) {
	env := newTaskEnv(t)
	ctx := context.Background()

	task, err := env.svc.Create(ctx, env.userID, dto.CreateTaskRequest{Title: "Private task"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	stranger := createTestUser(t, env.db)
	if _, err := env.svc.Get(ctx, stranger.ID, task.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("cross-user lookup err = %v, want not found", err)
	}
}

func TestDueTodayFiltering(t *testing.T) {
	env := newTaskEnv(t)
	ctx := context.Background()

	today := startOfDay(time.Now()).Add(12 * time.Hour)
	nextWeek := startOfDay(time.Now()).AddDate(0, 0, 6).Add(12 * time.Hour)
	farOut := time.Now().AddDate(0, 1, 0)

	for _, tc := range []struct {
		title string
		due   *time.Time
	}{
		{"due today", &today},
		{"due this week", &nextWeek},
		{"due next month", &farOut},
		{"no due date", nil},
	} {
		if _, err := env.svc.Create(ctx, env.userID, dto.CreateTaskRequest{Title: tc.title, DueDate: tc.due}); err != nil {
			t.Fatalf("create %q: %v", tc.title, err)
		}
	}

	dueToday, err := env.svc.DueToday(ctx, env.userID)
	if err != nil {
		t.Fatalf("due today: %v", err)
	}
	if len(dueToday) != 1 || dueToday[0].Title != "due today" {
		t.Fatalf("due today = %+v, want the single same-day task", dueToday)
	}

	dueWeek, err := env.svc.DueThisWeek(ctx, env.userID)
	if err != nil {
		t.Fatalf("due this week: %v", err)
	}
	if len(dueWeek) != 2 {
		t.Fatalf("due this week = %d tasks, want 2", len(dueWeek))
	}
}

func TestUncheckWithCategoryChangeRollsBackOldCategory(t *testing.T) {
	env := newTaskEnv(t)
	ctx := context.Background()

	task, err := env.svc.Create(ctx, env.userID, dto.CreateTaskRequest{Title: "Morning run", Category: model.CategoryHealth})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, err := env.svc.Complete(ctx, env.userID, task.ID); err != nil {
		t.Fatalf("complete task: %v", err)
	}

	done := false
	learning := model.CategoryLearning
	if _, _, err := env.svc.Update(ctx, env.userID, task.ID, dto.UpdateTaskRequest{IsCompleted: &done, Category: &learning}); err != nil {
		t.Fatalf("uncheck task: %v", err)
	}

	profile, err := env.gamification.GetProfile(ctx, env.userID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	health := profile.CategoryStats[model.CategoryHealth]
	if health == nil || health.TotalCompleted != 0 {
		t.Fatalf("health completions not rolled back: %+v", health)
	}
	if stat := profile.CategoryStats[model.CategoryLearning]; stat != nil && stat.TotalCompleted != 0 {
		t.Fatalf("learning completions touched by uncheck: %+v", stat)
	}
}

func TestRateLimitErrorCarriesCooldown(t *testing.T) {
	err := rateLimitError(90 * time.Second)
	if !errors.Is(err, apperror.ErrRateLimitExceeded) {
		t.Fatalf("expected rate limit sentinel, got %v", err)
	}
	if !strings.Contains(err.Error(), "1m30s") {
		t.Fatalf("error %q does not mention the cooldown", err)
	}

	if err := rateLimitError(0); err != apperror.ErrRateLimitExceeded {
		t.Fatalf("zero cooldown should return the bare sentinel, got %v", err)
	}
}
