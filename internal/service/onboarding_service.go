package service

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Skedlyze/Skedlyze/internal/dto"
	"github.com/Skedlyze/Skedlyze/internal/model"
	"github.com/Skedlyze/Skedlyze/internal/repository"
	"github.com/Skedlyze/Skedlyze/pkg/apperror"
)

// goalCatalog is the static onboarding catalog served to the goal picker.
var goalCatalog = []dto.Goal{
	{
		ID:          "productivity",
		Name:        "Productivity",
		Description: "Boost your efficiency and get more done",
		Icon:        "⚡",
		Color:       "#4CAF50",
		Benefits:    []string{"Better time management", "Increased output", "Reduced stress"},
	},
	{
		ID:          "health",
		Name:        "Health & Wellness",
		Description: "Improve your physical and mental well-being",
		Icon:        "💪",
		Color:       "#2196F3",
		Benefits:    []string{"More energy", "Better mood", "Improved focus"},
	},
	{
		ID:          "focus",
		Name:        "Focus & Concentration",
		Description: "Develop deep work habits and eliminate distractions",
		Icon:        "🎯",
		Color:       "#FF9800",
		Benefits:    []string{"Better concentration", "Higher quality work", "Reduced stress"},
	},
	{
		ID:          "learning",
		Name:        "Learning & Growth",
		Description: "Expand your knowledge and develop new skills",
		Icon:        "📚",
		Color:       "#9C27B0",
		Benefits:    []string{"Skill development", "Career growth", "Personal satisfaction"},
	},
	{
		ID:          "social",
		Name:        "Social Connections",
		Description: "Strengthen relationships and build community",
		Icon:        "🤝",
		Color:       "#E91E63",
		Benefits:    []string{"Better relationships", "Support network", "Happiness"},
	},
	{
		ID:          "creativity",
		Name:        "Creativity & Innovation",
		Description: "Unlock your creative potential and think outside the box",
		Icon:        "🎨",
		Color:       "#FF5722",
		Benefits:    []string{"Innovative thinking", "Problem solving", "Personal expression"},
	},
}

type OnboardingService interface {
	Goals() []dto.Goal
	NeedsOnboarding(ctx context.Context, userID uuid.UUID) (*dto.NeedsOnboardingResponse, error)
	SetGoal(ctx context.Context, userID uuid.UUID, goal string) (*dto.GenerateTasksResponse, error)
	GenerateTasks(ctx context.Context, userID uuid.UUID) (*dto.GenerateTasksResponse, error)
}

type onboardingService struct {
	users        repository.UserRepository
	tasks        repository.TaskRepository
	defaultTasks repository.DefaultTaskRepository
	gamification GamificationService
}

func NewOnboardingService(
	users repository.UserRepository,
	tasks repository.TaskRepository,
	defaultTasks repository.DefaultTaskRepository,
	gamification GamificationService,
) OnboardingService {
	return &onboardingService{
		users:        users,
		tasks:        tasks,
		defaultTasks: defaultTasks,
		gamification: gamification,
	}
}

func (s *onboardingService) Goals() []dto.Goal {
	return goalCatalog
}

// NeedsOnboarding reports whether the user still has zero tasks.
func (s *onboardingService) NeedsOnboarding(ctx context.Context, userID uuid.UUID) (*dto.NeedsOnboardingResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	count, err := s.tasks.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &dto.NeedsOnboardingResponse{
		NeedsOnboarding: count == 0,
		SelectedGoal:    user.SelectedGoal,
	}, nil
}

// SetGoal stores the selected goal and generates the user's starter tasks
// from the template catalog.
func (s *onboardingService) SetGoal(ctx context.Context, userID uuid.UUID, goal string) (*dto.GenerateTasksResponse, error) {
	if err := s.users.UpdateFields(ctx, userID, map[string]interface{}{
		"selected_goal": goal,
	}); err != nil {
		return nil, err
	}

	return s.generateFromTemplates(ctx, userID, goal)
}

// GenerateTasks re-runs starter generation for a user who already picked a
// goal, used to refresh daily and weekly tasks.
func (s *onboardingService) GenerateTasks(ctx context.Context, userID uuid.UUID) (*dto.GenerateTasksResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.SelectedGoal == nil || *user.SelectedGoal == "" {
		return nil, apperror.New(http.StatusBadRequest, "no goal selected, complete onboarding first", apperror.ErrBadRequest)
	}

	return s.generateFromTemplates(ctx, userID, *user.SelectedGoal)
}

func (s *onboardingService) generateFromTemplates(ctx context.Context, userID uuid.UUID, goal string) (*dto.GenerateTasksResponse, error) {
	templates, err := s.defaultTasks.FindActiveByGoal(ctx, goal)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	generated := make([]*model.Task, 0, len(templates))
	categories := map[string]int{}

	for _, tpl := range templates {
		task := &model.Task{
			UserID:           userID,
			Title:            tpl.Title,
			Description:      tpl.Description,
			Category:         tpl.Category,
			Priority:         tpl.Priority,
			Status:           model.StatusPending,
			ExperienceReward: tpl.ExperienceReward,
		}

		if tpl.IsDaily {
			due := endOfDay(now)
			task.DueDate = &due
		} else if tpl.IsWeekly {
			due := endOfWeek(now)
			task.DueDate = &due
		}

		generated = append(generated, task)
		categories[task.Category]++
	}

	if len(generated) > 0 {
		if err := s.tasks.CreateBatch(ctx, generated); err != nil {
			return nil, err
		}

		if _, err := s.gamification.AdjustTaskCounters(ctx, userID, len(generated), 0); err != nil {
			log.Printf("Gamification error counting generated tasks for user %s: %v", userID, err)
		}
		for category, count := range categories {
			if err := s.gamification.AdjustCategoryCounters(ctx, userID, category, count, 0); err != nil {
				log.Printf("Gamification error counting %s tasks for user %s: %v", category, userID, err)
			}
		}
	}

	return &dto.GenerateTasksResponse{
		Generated: len(generated),
		Goal:      goal,
	}, nil
}

func endOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 23, 59, 59, 0, t.Location())
}

// endOfWeek is end of day on the coming Sunday.
func endOfWeek(t time.Time) time.Time {
	daysUntilSunday := 7 - int(t.Weekday())
	return endOfDay(t.AddDate(0, 0, daysUntilSunday))
}
