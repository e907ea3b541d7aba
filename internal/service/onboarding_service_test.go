package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skedlyze/Skedlyze/internal/model"
	"github.com/Skedlyze/Skedlyze/internal/repository"
)

func newOnboardingEnv(t *testing.T) (OnboardingService, TaskService, GamificationService, uuid.UUID) {
	t.Helper()

	db := newTestDB(t)
	user := createTestUser(t, db)
	seedTestTemplates(t, db)

	tasks := repository.NewTaskRepository(db)
	users := repository.NewUserRepository(db)
	profiles := repository.NewProfileRepository(db)
	achievements := repository.NewAchievementRepository(db)

	gamification := NewGamificationService(profiles)
	checker := NewAchievementService(achievements, gamification, NewAchievementNotifier(nil))
	taskSvc := NewTaskService(tasks, users, gamification, checker, nil, nil, nil, 0)
	svc := NewOnboardingService(users, tasks, repository.NewDefaultTaskRepository(db), gamification)

	return svc, taskSvc, gamification, user.ID
}

func seedTestTemplates(t *testing.T, db *gorm.DB) {
	t.Helper()

	templates := []model.DefaultTask{
		{Goal: "health", Title: "Drink 8 glasses of water", Category: model.CategoryHealth, Priority: model.PriorityMedium, ExperienceReward: 10, IsDaily: true, SortOrder: 1, IsActive: true},
		{Goal: "health", Title: "Exercise for 30 minutes", Category: model.CategoryHealth, Priority: model.PriorityHigh, ExperienceReward: 20, IsDaily: true, SortOrder: 2, IsActive: true},
		{Goal: "health", Title: "Meal prep for the week", Category: model.CategoryHealth, Priority: model.PriorityMedium, ExperienceReward: 15, IsWeekly: true, SortOrder: 3, IsActive: true},
		{Goal: "health", Title: "Retired template", Category: model.CategoryHealth, Priority: model.PriorityLow, ExperienceReward: 5, IsDaily: true, SortOrder: 4, IsActive: false},
		{Goal: "learning", Title: "Read for 20 minutes", Category: model.CategoryLearning, Priority: model.PriorityMedium, ExperienceReward: 10, IsDaily: true, SortOrder: 1, IsActive: true},
	}
	if err := db.Create(&templates).Error; err != nil {
		t.Fatalf("seed templates: %v", err)
	}
}

func TestGoalCatalog(t *testing.T) {
	svc, _, _, _ := newOnboardingEnv(t)

	goals := svc.Goals()
	if len(goals) != 6 {
		t.Fatalf("got %d goals, want 6", len(goals))
	}
	for _, goal := range goals {
		if goal.ID == "" || goal.Name == "" || len(goal.Benefits) == 0 {
			t.Fatalf("incomplete goal entry: %+v", goal)
		}
	}
}

func TestSetGoalGeneratesStarterTasks(t *testing.T) {
	svc, taskSvc, gamification, userID := newOnboardingEnv(t)
	ctx := context.Background()

	resp, err := svc.SetGoal(ctx, userID, "health")
	if err != nil {
		t.Fatalf("set goal: %v", err)
	}
	// active templates only
	if resp.Generated != 3 || resp.Goal != "health" {
		t.Fatalf("generated %d for %q, want 3 for health", resp.Generated, resp.Goal)
	}

	tasks, err := taskSvc.List(ctx, userID)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("got %d tasks, want 3", len(tasks))
	}
	for _, task := range tasks {
		if task.DueDate == nil {
			t.Fatalf("starter task %q should carry a due date", task.Title)
		}
		if task.Status != model.StatusPending || task.Category != model.CategoryHealth {
			t.Fatalf("unexpected starter task: %+v", task)
		}
	}

	profile, err := gamification.GetProfile(ctx, userID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.TotalTasksCreated != 3 {
		t.Fatalf("TotalTasksCreated = %d, want 3", profile.TotalTasksCreated)
	}
	stat := profile.CategoryStats[model.CategoryHealth]
	if stat == nil || stat.TotalCreated != 3 {
		t.Fatalf("category stat not counted: %+v", profile.CategoryStats)
	}
}

func TestNeedsOnboardingFlips(t *testing.T) {
	svc, _, _, userID := newOnboardingEnv(t)
	ctx := context.Background()

	resp, err := svc.NeedsOnboarding(ctx, userID)
	if err != nil {
		t.Fatalf("needs onboarding: %v", err)
	}
	if !resp.NeedsOnboarding || resp.SelectedGoal != nil {
		t.Fatalf("fresh user should need onboarding: %+v", resp)
	}

	if _, err := svc.SetGoal(ctx, userID, "learning"); err != nil {
		t.Fatalf("set goal: %v", err)
	}

	resp, err = svc.NeedsOnboarding(ctx, userID)
	if err != nil {
		t.Fatalf("needs onboarding: %v", err)
	}
	if resp.NeedsOnboarding {
		t.Fatal("user with tasks should not need onboarding")
	}
	if resp.SelectedGoal == nil || *resp.SelectedGoal != "learning" {
		t.Fatalf("selected goal not recorded: %+v", resp)
	}
}

func TestGenerateTasksRequiresGoal(t *testing.T) {
	svc, _, _, userID := newOnboardingEnv(t)
	ctx := context.Background()

	if _, err := svc.GenerateTasks(ctx, userID); err == nil {
		t.Fatal("generation without a goal should fail")
	}

	if _, err := svc.SetGoal(ctx, userID, "learning"); err != nil {
		t.Fatalf("set goal: %v", err)
	}
	resp, err := svc.GenerateTasks(ctx, userID)
	if err != nil {
		t.Fatalf("generate tasks: %v", err)
	}
	if resp.Generated != 1 {
		t.Fatalf("generated %d, want 1", resp.Generated)
	}
}
