package service

import (
	"context"
	"log"

	"github.com/Skedlyze/Skedlyze/internal/model"
	"github.com/Skedlyze/Skedlyze/internal/repository"
	"github.com/google/uuid"
)

// AchievementService evaluates unlock conditions and grants each award exactly
// once per (user, achievement) pair. Checks are pull-based: they run after
// task completions and opportunistically on profile/stats reads, so an unlock
// can lag the stat change that earned it until the next read.
type AchievementService interface {
	CheckTaskCompletionAchievements(ctx context.Context, userID uuid.UUID) error
	CheckStreakAchievements(ctx context.Context, userID uuid.UUID) error
	CheckLevelAchievements(ctx context.Context, userID uuid.UUID) error
	CheckAllAchievements(ctx context.Context, userID uuid.UUID) error
}

type achievementService struct {
	achievements repository.AchievementRepository
	gamification GamificationService
	notifier     AchievementNotifier
}

func NewAchievementService(
	achievements repository.AchievementRepository,
	gamification GamificationService,
	notifier AchievementNotifier,
) AchievementService {
	return &achievementService{
		achievements: achievements,
		gamification: gamification,
		notifier:     notifier,
	}
}

func (s *achievementService) CheckTaskCompletionAchievements(ctx context.Context, userID uuid.UUID) error {
	return s.check(ctx, userID, model.AchievementTaskCompletion, func(p *model.Profile) int {
		return p.TotalTasksCompleted
	})
}

func (s *achievementService) CheckStreakAchievements(ctx context.Context, userID uuid.UUID) error {
	return s.check(ctx, userID, model.AchievementStreak, func(p *model.Profile) int {
		return p.CurrentStreakDays
	})
}

func (s *achievementService) CheckLevelAchievements(ctx context.Context, userID uuid.UUID) error {
	return s.check(ctx, userID, model.AchievementLevelUp, func(p *model.Profile) int {
		return p.Level
	})
}

func (s *achievementService) CheckAllAchievements(ctx context.Context, userID uuid.UUID) error {
	if err := s.CheckTaskCompletionAchievements(ctx, userID); err != nil {
		return err
	}
	if err := s.CheckStreakAchievements(ctx, userID); err != nil {
		return err
	}
	return s.CheckLevelAchievements(ctx, userID)
}

// check loads the current profile snapshot and awards every achievement of
// the given type whose threshold the snapshot meets. The award XP goes
// through AddExperience but deliberately does not feed back into another
// check pass: the unique unlock constraint plus the finite catalog make each
// award happen at most once, and the next read picks up anything the award
// XP newly qualified.
func (s *achievementService) check(ctx context.Context, userID uuid.UUID, achievementType string, metric func(*model.Profile) int) error {
	profile, err := s.gamification.GetProfile(ctx, userID)
	if err != nil {
		return err
	}

	achievements, err := s.achievements.FindByType(ctx, achievementType)
	if err != nil {
		return err
	}

	value := metric(profile)
	for _, achievement := range achievements {
		if value < achievement.RequirementValue {
			continue
		}

		unlocked, err := s.achievements.Unlock(ctx, userID, achievement.ID)
		if err != nil {
			log.Printf("Failed to unlock achievement %q for user %s: %v", achievement.Name, userID, err)
			continue
		}
		if !unlocked {
			continue
		}

		if err := s.gamification.RecordAchievementEarned(ctx, userID); err != nil {
			log.Printf("Failed to bump achievement counter for user %s: %v", userID, err)
		}

		if achievement.ExperienceReward > 0 {
			if _, err := s.gamification.AddExperience(ctx, userID, achievement.ExperienceReward, ReasonAchievement); err != nil {
				log.Printf("Failed to award XP for achievement %q to user %s: %v", achievement.Name, userID, err)
			}
		}

		s.notifier.NotifyUnlock(ctx, userID, achievement)
	}

	return nil
}
