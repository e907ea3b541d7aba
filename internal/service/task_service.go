package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Skedlyze/Skedlyze/internal/dto"
	"github.com/Skedlyze/Skedlyze/internal/model"
	"github.com/Skedlyze/Skedlyze/internal/repository"
	"github.com/Skedlyze/Skedlyze/pkg/apperror"
)

const actionTaskCreate = "task_create"

// ErrTaskAlreadyCompleted guards the completion flow against double awards.
var ErrTaskAlreadyCompleted = apperror.New(http.StatusBadRequest, "task already completed", apperror.ErrConflict)

// TaskService owns the task lifecycle and coordinates every secondary
// effect around it. Gamification, achievements, calendar sync and search
// indexing all hang off task mutations here and only here; each one is
// best effort and never blocks the primary write.
type TaskService interface {
	Create(ctx context.Context, userID uuid.UUID, req dto.CreateTaskRequest) (*model.Task, error)
	List(ctx context.Context, userID uuid.UUID) ([]model.Task, error)
	Get(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error)
	ByCategory(ctx context.Context, userID uuid.UUID, category string) ([]model.Task, error)
	ByStatus(ctx context.Context, userID uuid.UUID, status string) ([]model.Task, error)
	DueToday(ctx context.Context, userID uuid.UUID) ([]model.Task, error)
	DueThisWeek(ctx context.Context, userID uuid.UUID) ([]model.Task, error)
	Search(ctx context.Context, userID uuid.UUID, query string, limit int64) (*dto.TaskSearchResult, error)

	// Update returns a non-nil uncheck result when is_completed flipped
	// from true to false, the XP deduction path.
	Update(ctx context.Context, userID, taskID uuid.UUID, req dto.UpdateTaskRequest) (*model.Task, *dto.UncheckTaskResponse, error)
	Complete(ctx context.Context, userID, taskID uuid.UUID) (*dto.CompleteTaskResponse, error)
	Delete(ctx context.Context, userID, taskID uuid.UUID) error

	SyncToCalendar(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error)
	UnsyncFromCalendar(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error)
}

type taskService struct {
	tasks        repository.TaskRepository
	users        repository.UserRepository
	gamification GamificationService
	achievements AchievementService
	calendar     CalendarService
	search       TaskSearchService
	rdb          *redis.Client
	createWindow time.Duration
}

func NewTaskService(
	tasks repository.TaskRepository,
	users repository.UserRepository,
	gamification GamificationService,
	achievements AchievementService,
	calendar CalendarService,
	search TaskSearchService,
	rdb *redis.Client,
	createWindow time.Duration,
) TaskService {
	return &taskService{
		tasks:        tasks,
		users:        users,
		gamification: gamification,
		achievements: achievements,
		calendar:     calendar,
		search:       search,
		rdb:          rdb,
		createWindow: createWindow,
	}
}

func (s *taskService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateTaskRequest) (*model.Task, error) {
	allowed, err := CheckAndSetRateLimit(ctx, s.rdb, userID, actionTaskCreate, s.createWindow)
	if err != nil {
		log.Printf("Rate limit check failed for user %s: %v", userID, err)
	} else if !allowed {
		ttl, ttlErr := GetRateLimitTTL(ctx, s.rdb, userID, actionTaskCreate)
		if ttlErr != nil {
			log.Printf("Rate limit TTL lookup failed for user %s: %v", userID, ttlErr)
		}
		return nil, rateLimitError(ttl)
	}

	task := &model.Task{
		UserID:           userID,
		Title:            req.Title,
		Description:      req.Description,
		Priority:         model.PriorityMedium,
		Status:           model.StatusPending,
		Category:         model.CategoryOther,
		DueDate:          req.DueDate,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		AllDay:           req.AllDay,
		ExperienceReward: 10,
		IsRecurring:      req.IsRecurring,
		RecurrenceRule:   req.RecurrenceRule,
	}
	if req.Priority != "" {
		task.Priority = req.Priority
	}
	if req.Category != "" {
		task.Category = req.Category
	}
	if req.ExperienceReward != nil {
		task.ExperienceReward = *req.ExperienceReward
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		if clearErr := ClearRateLimit(ctx, s.rdb, userID, actionTaskCreate); clearErr != nil {
			log.Printf("Failed to clear rate limit for user %s: %v", userID, clearErr)
		}
		return nil, err
	}

	if _, err := s.gamification.AdjustTaskCounters(ctx, userID, 1, 0); err != nil {
		log.Printf("Gamification error counting task creation (non-blocking): %v", err)
	}
	if err := s.gamification.AdjustCategoryCounters(ctx, userID, task.Category, 1, 0); err != nil {
		log.Printf("Gamification error counting category creation (non-blocking): %v", err)
	}

	s.autoSyncToCalendar(ctx, userID, task)
	s.indexTask(task)

	return task, nil
}

// rateLimitError carries the remaining cooldown so clients know when to retry.
func rateLimitError(ttl time.Duration) error {
	if ttl <= 0 {
		return apperror.ErrRateLimitExceeded
	}
	return apperror.New(
		http.StatusTooManyRequests,
		fmt.Sprintf("task creation rate limit exceeded, retry in %s", ttl.Round(time.Second)),
		apperror.ErrRateLimitExceeded,
	)
}

// autoSyncToCalendar pushes a freshly created or updated task when the user
// opted into sync and the task has a due date.
func (s *taskService) autoSyncToCalendar(ctx context.Context, userID uuid.UUID, task *model.Task) {
	if s.calendar == nil || task.DueDate == nil {
		return
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		log.Printf("Error loading user %s for calendar sync (non-blocking): %v", userID, err)
		return
	}
	if !user.CalendarSyncEnabled || user.AccessToken == nil || *user.AccessToken == "" {
		return
	}

	if err := s.calendar.SyncTask(ctx, userID, task); err != nil {
		log.Printf("Error syncing task %s to calendar (non-blocking): %v", task.ID, err)
	}
}

func (s *taskService) indexTask(task *model.Task) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexTask(task); err != nil {
		log.Printf("Error indexing task %s (non-blocking): %v", task.ID, err)
	}
}

func (s *taskService) List(ctx context.Context, userID uuid.UUID) ([]model.Task, error) {
	return s.tasks.FindAllByUser(ctx, userID)
}

func (s *taskService) Get(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return task, nil
}

func (s *taskService) ByCategory(ctx context.Context, userID uuid.UUID, category string) ([]model.Task, error) {
	return s.tasks.FindByCategory(ctx, userID, category)
}

func (s *taskService) ByStatus(ctx context.Context, userID uuid.UUID, status string) ([]model.Task, error) {
	return s.tasks.FindByStatus(ctx, userID, status)
}

func (s *taskService) DueToday(ctx context.Context, userID uuid.UUID) ([]model.Task, error) {
	start := startOfDay(time.Now())
	return s.tasks.FindDueBetween(ctx, userID, start, start.AddDate(0, 0, 1))
}

func (s *taskService) DueThisWeek(ctx context.Context, userID uuid.UUID) ([]model.Task, error) {
	start := startOfDay(time.Now())
	return s.tasks.FindDueBetween(ctx, userID, start, start.AddDate(0, 0, 7))
}

func (s *taskService) Search(ctx context.Context, userID uuid.UUID, query string, limit int64) (*dto.TaskSearchResult, error) {
	if s.search == nil {
		return &dto.TaskSearchResult{Tasks: []model.Task{}, Query: query}, nil
	}

	ids, total, err := s.search.Search(userID, query, limit)
	if err != nil {
		return nil, err
	}

	tasks, err := s.tasks.FindByIDs(ctx, userID, ids)
	if err != nil {
		return nil, err
	}

	return &dto.TaskSearchResult{
		Tasks: tasks,
		Query: query,
		Total: total,
	}, nil
}

func (s *taskService) Update(ctx context.Context, userID, taskID uuid.UUID, req dto.UpdateTaskRequest) (*model.Task, *dto.UncheckTaskResponse, error) {
	task, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return nil, nil, err
	}

	unchecking := task.IsCompleted && req.IsCompleted != nil && !*req.IsCompleted
	// deductions use the priority and category in effect before this update
	priorityBefore := task.Priority
	categoryBefore := task.Category
	hadCompletedAt := task.CompletedAt != nil

	applyTaskUpdate(task, req)
	if unchecking {
		task.Status = model.StatusPending
		task.CompletedAt = nil
		task.CompletionTimeMinutes = nil
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, nil, err
	}

	s.indexTask(task)
	s.autoSyncToCalendar(ctx, userID, task)

	if !unchecking || !hadCompletedAt {
		return task, nil, nil
	}

	uncheck := &dto.UncheckTaskResponse{Task: task}
	result, err := s.gamification.RemoveExperience(ctx, userID, PriorityExperience(priorityBefore), ReasonTaskUncompletion)
	if err != nil {
		log.Printf("Gamification service error (non-blocking): %v", err)
		return task, uncheck, nil
	}

	uncheck.ExperienceLost = result.ExperienceLost
	uncheck.LevelDown = result.LevelDown
	if result.LevelDown {
		level := result.Profile.Level
		uncheck.NewLevel = &level
	}

	if _, err := s.gamification.AdjustTaskCounters(ctx, userID, 0, -1); err != nil {
		log.Printf("Gamification error adjusting counters on uncheck (non-blocking): %v", err)
	}
	if err := s.gamification.AdjustCategoryCounters(ctx, userID, categoryBefore, 0, -1); err != nil {
		log.Printf("Gamification error adjusting category on uncheck (non-blocking): %v", err)
	}

	return task, uncheck, nil
}

func applyTaskUpdate(task *model.Task, req dto.UpdateTaskRequest) {
	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = req.Description
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Category != nil {
		task.Category = *req.Category
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.StartTime != nil {
		task.StartTime = req.StartTime
	}
	if req.EndTime != nil {
		task.EndTime = req.EndTime
	}
	if req.AllDay != nil {
		task.AllDay = *req.AllDay
	}
	if req.IsCompleted != nil {
		task.IsCompleted = *req.IsCompleted
	}
	if req.IsRecurring != nil {
		task.IsRecurring = *req.IsRecurring
	}
	if req.RecurrenceRule != nil {
		task.RecurrenceRule = req.RecurrenceRule
	}
}

func (s *taskService) Complete(ctx context.Context, userID, taskID uuid.UUID) (*dto.CompleteTaskResponse, error) {
	task, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if task.IsCompleted {
		return nil, ErrTaskAlreadyCompleted
	}

	now := time.Now()
	reward := PriorityExperience(task.Priority)

	task.IsCompleted = true
	task.Status = model.StatusCompleted
	task.CompletedAt = &now
	task.ExperienceReward = reward
	task.CompletionTimeMinutes = nil
	if task.StartTime != nil && task.EndTime != nil {
		minutes := int(task.EndTime.Sub(*task.StartTime).Round(time.Minute) / time.Minute)
		task.CompletionTimeMinutes = &minutes
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	s.indexTask(task)

	resp := &dto.CompleteTaskResponse{Task: task, ExperienceGained: reward}

	result, err := s.gamification.AddExperience(ctx, userID, reward, ReasonTaskCompletion)
	if err != nil {
		log.Printf("Gamification service error (non-blocking): %v", err)
		return resp, nil
	}
	resp.LevelUp = result.LevelUp
	if result.LevelUp {
		level := result.Profile.Level
		resp.NewLevel = &level
	}

	if _, err := s.gamification.AdjustTaskCounters(ctx, userID, 0, 1); err != nil {
		log.Printf("Gamification error counting completion (non-blocking): %v", err)
	}
	if _, err := s.gamification.UpdateStreak(ctx, userID); err != nil {
		log.Printf("Gamification error updating streak (non-blocking): %v", err)
	}
	if err := s.gamification.AdjustCategoryCounters(ctx, userID, task.Category, 0, 1); err != nil {
		log.Printf("Gamification error counting category completion (non-blocking): %v", err)
	}

	if s.achievements != nil {
		if err := s.achievements.CheckAllAchievements(ctx, userID); err != nil {
			log.Printf("Achievement check error (non-blocking): %v", err)
		}
	}

	return resp, nil
}

func (s *taskService) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	task, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return err
	}

	if s.calendar != nil && task.GoogleCalendarEventID != nil {
		if err := s.calendar.RemoveTaskEvent(ctx, userID, task); err != nil {
			log.Printf("Error removing task %s from calendar (non-blocking): %v", task.ID, err)
		}
	}

	if err := s.tasks.Delete(ctx, userID, taskID); err != nil {
		return err
	}

	if s.search != nil {
		if err := s.search.DeleteTask(taskID.String()); err != nil {
			log.Printf("Error removing task %s from search index (non-blocking): %v", taskID, err)
		}
	}

	completedDelta := 0
	if task.IsCompleted {
		completedDelta = -1
	}
	if _, err := s.gamification.AdjustTaskCounters(ctx, userID, -1, completedDelta); err != nil {
		log.Printf("Gamification error after task deletion (non-blocking): %v", err)
	}
	if err := s.gamification.AdjustCategoryCounters(ctx, userID, task.Category, -1, completedDelta); err != nil {
		log.Printf("Gamification error after task deletion (non-blocking): %v", err)
	}

	return nil
}

func (s *taskService) SyncToCalendar(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error) {
	task, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if task.DueDate == nil {
		return nil, apperror.New(http.StatusBadRequest, "task has no due date", apperror.ErrBadRequest)
	}

	if err := s.calendar.SyncTask(ctx, userID, task); err != nil {
		return nil, err
	}

	return task, nil
}

func (s *taskService) UnsyncFromCalendar(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error) {
	task, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.calendar.RemoveTaskEvent(ctx, userID, task); err != nil {
		return nil, err
	}

	if err := s.tasks.UpdateFields(ctx, task.ID, map[string]interface{}{
		"google_calendar_event_id": nil,
		"synced_to_calendar":       false,
	}); err != nil {
		return nil, err
	}
	task.GoogleCalendarEventID = nil
	task.SyncedToCalendar = false

	return task, nil
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
