package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skedlyze/Skedlyze/internal/dto"
	"github.com/Skedlyze/Skedlyze/internal/model"
	"github.com/Skedlyze/Skedlyze/internal/repository"
	"github.com/Skedlyze/Skedlyze/pkg/apperror"
	"github.com/Skedlyze/Skedlyze/pkg/storage"
)

type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req dto.UpdateProfileRequest) (*model.User, error)
	UpdatePreferences(ctx context.Context, userID uuid.UUID, prefs map[string]any) (*model.User, error)
	ToggleCalendarSync(ctx context.Context, userID uuid.UUID) (*model.User, error)
	UploadAvatar(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (*model.User, error)

	GetStats(ctx context.Context, userID uuid.UUID) (*dto.StatsResponse, error)
	GetLevel(ctx context.Context, userID uuid.UUID) (*LevelStatus, error)
	GetStreak(ctx context.Context, userID uuid.UUID) (*dto.StreakResponse, error)
	GetAchievements(ctx context.Context, userID uuid.UUID) ([]dto.AchievementView, error)
	MarkAchievementRead(ctx context.Context, userID uuid.UUID, achievementID uint) error
}

type userService struct {
	users        repository.UserRepository
	tasks        repository.TaskRepository
	achievements repository.AchievementRepository
	gamification GamificationService
	checker      AchievementService
	imageStorage storage.ImageStorage
	uploadFolder string
}

func NewUserService(
	users repository.UserRepository,
	tasks repository.TaskRepository,
	achievements repository.AchievementRepository,
	gamification GamificationService,
	checker AchievementService,
	imageStorage storage.ImageStorage,
	uploadFolder string,
) UserService {
	return &userService{
		users:        users,
		tasks:        tasks,
		achievements: achievements,
		gamification: gamification,
		checker:      checker,
		imageStorage: imageStorage,
		uploadFolder: uploadFolder,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req dto.UpdateProfileRequest) (*model.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Preferences != nil {
		user.Preferences = req.Preferences
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *userService) UpdatePreferences(ctx context.Context, userID uuid.UUID, prefs map[string]any) (*model.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Preferences = prefs
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *userService) ToggleCalendarSync(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.CalendarSyncEnabled = !user.CalendarSyncEnabled
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// UploadAvatar replaces the user's picture with an uploaded image. A prior
// uploaded avatar is deleted from storage; Google profile pictures are
// external and left alone.
func (s *userService) UploadAvatar(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (*model.User, error) {
	if s.imageStorage == nil {
		return nil, apperror.New(http.StatusServiceUnavailable, "image storage is not configured", apperror.ErrInternal)
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	src, err := file.Open()
	if err != nil {
		return nil, apperror.New(http.StatusBadRequest, "failed to read uploaded file", apperror.ErrBadRequest)
	}
	defer src.Close()

	fileName := fmt.Sprintf("avatar_%s_%d", userID, time.Now().Unix())
	url, err := s.imageStorage.UploadImage(ctx, src, s.uploadFolder, fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	if user.Picture != nil && strings.Contains(*user.Picture, "cloudinary") {
		if err := s.imageStorage.DeleteImage(ctx, *user.Picture); err != nil {
			log.Printf("Failed to delete previous avatar for user %s: %v", userID, err)
		}
	}

	user.Picture = &url
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetStats assembles the profile, SQL task rollups and category breakdown.
// Achievements are re-checked first so a stats poll picks up anything a
// missed dispatch left behind.
func (s *userService) GetStats(ctx context.Context, userID uuid.UUID) (*dto.StatsResponse, error) {
	if s.checker != nil {
		if err := s.checker.CheckAllAchievements(ctx, userID); err != nil {
			log.Printf("Achievement check error (non-blocking): %v", err)
		}
	}

	profile, err := s.gamification.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	aggregates, err := s.tasks.AggregateStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	categories, err := s.tasks.CountByCategories(ctx, userID)
	if err != nil {
		return nil, err
	}

	completionRate := 0.0
	if aggregates.TotalTasks > 0 {
		completionRate = float64(aggregates.CompletedTasks) / float64(aggregates.TotalTasks) * 100
	}

	return &dto.StatsResponse{
		User:                  profile,
		TaskStats:             aggregates,
		CategoryStats:         categories,
		ExperienceToNextLevel: ExperienceToNextLevel(profile.ExperiencePoints),
		CompletionRate:        completionRate,
	}, nil
}

func (s *userService) GetLevel(ctx context.Context, userID uuid.UUID) (*LevelStatus, error) {
	profile, err := s.gamification.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	status := LevelStatusForExperience(profile.ExperiencePoints)
	return &status, nil
}

func (s *userService) GetStreak(ctx context.Context, userID uuid.UUID) (*dto.StreakResponse, error) {
	profile, err := s.gamification.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &dto.StreakResponse{
		CurrentStreakDays: profile.CurrentStreakDays,
		LongestStreakDays: profile.LongestStreakDays,
		StreakStartDate:   profile.StreakStartDate,
		LastActivityDate:  profile.LastActivityDate,
	}, nil
}

// GetAchievements merges the catalog with the user's unlocks. Hidden
// achievements stay invisible until earned.
func (s *userService) GetAchievements(ctx context.Context, userID uuid.UUID) ([]dto.AchievementView, error) {
	if s.checker != nil {
		if err := s.checker.CheckAllAchievements(ctx, userID); err != nil {
			log.Printf("Achievement check error (non-blocking): %v", err)
		}
	}

	catalog, err := s.achievements.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	unlocks, err := s.achievements.FindUnlocks(ctx, userID)
	if err != nil {
		return nil, err
	}
	unlockByID := make(map[uint]model.UserAchievement, len(unlocks))
	for _, unlock := range unlocks {
		unlockByID[unlock.AchievementID] = unlock
	}

	views := make([]dto.AchievementView, 0, len(catalog))
	for _, achievement := range catalog {
		unlock, unlocked := unlockByID[achievement.ID]
		if achievement.IsHidden && !unlocked {
			continue
		}

		view := dto.AchievementView{
			Achievement: achievement,
			IsUnlocked:  unlocked,
		}
		if unlocked {
			earnedAt := unlock.EarnedAt
			isRead := unlock.IsRead
			view.EarnedAt = &earnedAt
			view.IsRead = &isRead
		}
		views = append(views, view)
	}

	return views, nil
}

func (s *userService) MarkAchievementRead(ctx context.Context, userID uuid.UUID, achievementID uint) error {
	return s.achievements.MarkRead(ctx, userID, achievementID)
}
