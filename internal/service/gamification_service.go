package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Skedlyze/Skedlyze/internal/dto"
	"github.com/Skedlyze/Skedlyze/internal/model"
	"github.com/Skedlyze/Skedlyze/internal/repository"
	"github.com/google/uuid"
)

const (
	ReasonTaskCompletion   = "task_completion"
	ReasonTaskUncompletion = "task_uncompletion"
	ReasonAchievement      = "achievement"

	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

// ExperienceResult reports the outcome of an XP mutation.
type ExperienceResult struct {
	Profile          *model.Profile
	LevelUp          bool
	LevelDown        bool
	ExperienceGained int
	ExperienceLost   int
	Reason           string
}

// GamificationService is the single source of truth for a user's XP, level,
// streak and per-category statistics. Every mutation is one transactional
// read-modify-write on the profile row; it never calls the achievement
// service — achievement checks are dispatched by the coordinating caller so
// award XP cannot recurse back into more checks.
type GamificationService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.Profile, error)
	AddExperience(ctx context.Context, userID uuid.UUID, amount int, reason string) (*ExperienceResult, error)
	RemoveExperience(ctx context.Context, userID uuid.UUID, amount int, reason string) (*ExperienceResult, error)
	AdjustTaskCounters(ctx context.Context, userID uuid.UUID, createdDelta, completedDelta int) (*model.Profile, error)
	UpdateStreak(ctx context.Context, userID uuid.UUID) (*model.Profile, error)
	AdjustCategoryCounters(ctx context.Context, userID uuid.UUID, category string, createdDelta, completedDelta int) error
	RecordAchievementEarned(ctx context.Context, userID uuid.UUID) error
	ResetPeriodicCounters(ctx context.Context, period string) error
	Leaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error)
}

type gamificationService struct {
	profiles repository.ProfileRepository
}

func NewGamificationService(profiles repository.ProfileRepository) GamificationService {
	return &gamificationService{profiles: profiles}
}

func (s *gamificationService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	return s.profiles.GetOrCreate(ctx, userID)
}

func (s *gamificationService) AddExperience(ctx context.Context, userID uuid.UUID, amount int, reason string) (*ExperienceResult, error) {
	if amount < 0 {
		return nil, fmt.Errorf("experience amount must not be negative, got %d", amount)
	}

	var levelUp bool
	profile, err := s.profiles.Mutate(ctx, userID, func(p *model.Profile) error {
		p.ExperiencePoints += amount
		p.TotalExperienceEarned += amount

		newLevel := LevelForExperience(p.ExperiencePoints)
		levelUp = newLevel > p.Level
		p.Level = newLevel
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ExperienceResult{
		Profile:          profile,
		LevelUp:          levelUp,
		ExperienceGained: amount,
		Reason:           reason,
	}, nil
}

func (s *gamificationService) RemoveExperience(ctx context.Context, userID uuid.UUID, amount int, reason string) (*ExperienceResult, error) {
	if amount < 0 {
		return nil, fmt.Errorf("experience amount must not be negative, got %d", amount)
	}

	var levelDown bool
	profile, err := s.profiles.Mutate(ctx, userID, func(p *model.Profile) error {
		p.ExperiencePoints -= amount
		if p.ExperiencePoints < 0 {
			p.ExperiencePoints = 0
		}

		// total_experience_earned is monotonic and stays untouched
		newLevel := LevelForExperience(p.ExperiencePoints)
		levelDown = newLevel < p.Level
		p.Level = newLevel
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ExperienceResult{
		Profile:        profile,
		LevelDown:      levelDown,
		ExperienceLost: amount,
		Reason:         reason,
	}, nil
}

func (s *gamificationService) AdjustTaskCounters(ctx context.Context, userID uuid.UUID, createdDelta, completedDelta int) (*model.Profile, error) {
	return s.profiles.Mutate(ctx, userID, func(p *model.Profile) error {
		p.TotalTasksCreated = clampZero(p.TotalTasksCreated + createdDelta)
		p.TotalTasksCompleted = clampZero(p.TotalTasksCompleted + completedDelta)
		p.TasksCompletedToday = clampZero(p.TasksCompletedToday + completedDelta)
		p.TasksCompletedThisWeek = clampZero(p.TasksCompletedThisWeek + completedDelta)
		p.TasksCompletedThisMonth = clampZero(p.TasksCompletedThisMonth + completedDelta)

		if p.TotalTasksCreated > 0 {
			p.CompletionRate = float64(p.TotalTasksCompleted) / float64(p.TotalTasksCreated) * 100
		} else {
			p.CompletionRate = 0
		}
		return nil
	})
}

func (s *gamificationService) UpdateStreak(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	return s.profiles.Mutate(ctx, userID, func(p *model.Profile) error {
		today := dateOnly(time.Now())

		switch {
		case p.LastActivityDate == nil:
			p.CurrentStreakDays = 1
			p.StreakStartDate = &today
		default:
			switch daysBetween(*p.LastActivityDate, today) {
			case 0:
				// Same calendar day, streak unchanged
			case 1:
				p.CurrentStreakDays++
			default:
				p.CurrentStreakDays = 1
				p.StreakStartDate = &today
			}
		}

		if p.CurrentStreakDays > p.LongestStreakDays {
			p.LongestStreakDays = p.CurrentStreakDays
		}
		p.LastActivityDate = &today
		return nil
	})
}

func (s *gamificationService) AdjustCategoryCounters(ctx context.Context, userID uuid.UUID, category string, createdDelta, completedDelta int) error {
	_, err := s.profiles.Mutate(ctx, userID, func(p *model.Profile) error {
		stat, ok := p.CategoryStats[category]
		if !ok {
			stat = &model.CategoryStat{}
			p.CategoryStats[category] = stat
		}

		stat.TotalCreated = clampZero(stat.TotalCreated + createdDelta)
		stat.TotalCompleted = clampZero(stat.TotalCompleted + completedDelta)

		if stat.TotalCreated > 0 {
			stat.CompletionRate = float64(stat.TotalCompleted) / float64(stat.TotalCreated) * 100
		} else {
			stat.CompletionRate = 0
		}
		return nil
	})
	return err
}

func (s *gamificationService) RecordAchievementEarned(ctx context.Context, userID uuid.UUID) error {
	_, err := s.profiles.Mutate(ctx, userID, func(p *model.Profile) error {
		p.TotalAchievementsEarned++
		return nil
	})
	return err
}

func (s *gamificationService) ResetPeriodicCounters(ctx context.Context, period string) error {
	var column string
	switch period {
	case PeriodDaily:
		column = "tasks_completed_today"
	case PeriodWeekly:
		column = "tasks_completed_this_week"
	case PeriodMonthly:
		column = "tasks_completed_this_month"
	default:
		return fmt.Errorf("unknown reset period: %q", period)
	}

	return s.profiles.ResetCounter(ctx, column)
}

func (s *gamificationService) Leaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	profiles, err := s.profiles.TopByExperience(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.LeaderboardEntry, 0, len(profiles))
	for i, p := range profiles {
		entries = append(entries, dto.LeaderboardEntry{
			Position:            i + 1,
			Name:                p.User.Name,
			Picture:             p.User.Picture,
			Level:               p.Level,
			ExperiencePoints:    p.ExperiencePoints,
			CurrentStreakDays:   p.CurrentStreakDays,
			TotalTasksCompleted: p.TotalTasksCompleted,
		})
	}

	return entries, nil
}

func clampZero(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(dateOnly(to).Sub(dateOnly(from)).Hours() / 24)
}
