package service

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/Skedlyze/Skedlyze/internal/config"
	"github.com/Skedlyze/Skedlyze/internal/dto"
	"github.com/Skedlyze/Skedlyze/internal/model"
	"github.com/Skedlyze/Skedlyze/internal/repository"
	"github.com/Skedlyze/Skedlyze/pkg/apperror"
)

const appCalendarSummary = "Skedlyze Calendar"

// CalendarService talks to Google Calendar with the user's stored OAuth
// token. Task sync methods are called best effort from the task service,
// the event CRUD methods back the /api/calendar endpoints.
type CalendarService interface {
	ListCalendars(ctx context.Context, userID uuid.UUID) ([]dto.CalendarInfo, error)
	ListEvents(ctx context.Context, userID uuid.UUID, query dto.CalendarEventQuery) ([]dto.CalendarEvent, error)
	CreateEvent(ctx context.Context, userID uuid.UUID, req dto.CalendarEventRequest) (*dto.CalendarEvent, error)
	UpdateEvent(ctx context.Context, userID uuid.UUID, eventID string, req dto.CalendarEventRequest) (*dto.CalendarEvent, error)
	DeleteEvent(ctx context.Context, userID uuid.UUID, eventID string) error

	SyncTask(ctx context.Context, userID uuid.UUID, task *model.Task) error
	RemoveTaskEvent(ctx context.Context, userID uuid.UUID, task *model.Task) error
	SyncAllTasks(ctx context.Context, userID uuid.UUID) (*dto.BulkSyncResponse, error)
	SyncStatus(ctx context.Context, userID uuid.UUID) (*dto.SyncStatusResponse, error)
}

type calendarService struct {
	users       repository.UserRepository
	tasks       repository.TaskRepository
	oauthConfig *oauth2.Config
}

func NewCalendarService(users repository.UserRepository, tasks repository.TaskRepository, cfg *config.Config) CalendarService {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes:       []string{"https://www.googleapis.com/auth/calendar"},
		Endpoint:     google.Endpoint,
	}

	return &calendarService{
		users:       users,
		tasks:       tasks,
		oauthConfig: oauthConfig,
	}
}

// clientFor builds a Calendar client from the user's stored credentials.
// An expired access token is refreshed through the oauth2 token source and
// the refreshed credentials are written back so the next call skips the
// round trip.
func (s *calendarService) clientFor(ctx context.Context, userID uuid.UUID) (*calendar.Service, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.AccessToken == nil || *user.AccessToken == "" {
		return nil, apperror.New(http.StatusBadRequest, "no access token available", apperror.ErrBadRequest)
	}

	token := &oauth2.Token{AccessToken: *user.AccessToken}
	if user.RefreshToken != nil {
		token.RefreshToken = *user.RefreshToken
	}
	if user.TokenExpiresAt != nil {
		token.Expiry = *user.TokenExpiresAt
	}

	source := s.oauthConfig.TokenSource(ctx, token)
	fresh, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh google token: %w", err)
	}
	if fresh.AccessToken != token.AccessToken {
		fields := map[string]interface{}{
			"access_token":     fresh.AccessToken,
			"token_expires_at": fresh.Expiry,
		}
		if fresh.RefreshToken != "" {
			fields["refresh_token"] = fresh.RefreshToken
		}
		if err := s.users.UpdateFields(ctx, userID, fields); err != nil {
			log.Printf("Failed to persist refreshed google token for user %s: %v", userID, err)
		}
	}

	svc, err := calendar.NewService(ctx, option.WithTokenSource(oauth2.StaticTokenSource(fresh)))
	if err != nil {
		return nil, fmt.Errorf("failed to build calendar client: %w", err)
	}

	return svc, nil
}

func (s *calendarService) ListCalendars(ctx context.Context, userID uuid.UUID) ([]dto.CalendarInfo, error) {
	svc, err := s.clientFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	list, err := svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	calendars := make([]dto.CalendarInfo, 0, len(list.Items))
	for _, item := range list.Items {
		calendars = append(calendars, dto.CalendarInfo{
			ID:      item.Id,
			Summary: item.Summary,
			Primary: item.Primary,
		})
	}

	return calendars, nil
}

func (s *calendarService) ListEvents(ctx context.Context, userID uuid.UUID, query dto.CalendarEventQuery) ([]dto.CalendarEvent, error) {
	svc, err := s.clientFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	timeMin := time.Now()
	if query.TimeMin != nil {
		timeMin = *query.TimeMin
	}
	timeMax := timeMin.Add(7 * 24 * time.Hour)
	if query.TimeMax != nil {
		timeMax = *query.TimeMax
	}
	maxResults := query.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}

	resp, err := svc.Events.List("primary").
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		MaxResults(maxResults).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events := make([]dto.CalendarEvent, 0, len(resp.Items))
	for _, item := range resp.Items {
		events = append(events, eventToDTO(item))
	}

	return events, nil
}

func (s *calendarService) CreateEvent(ctx context.Context, userID uuid.UUID, req dto.CalendarEventRequest) (*dto.CalendarEvent, error) {
	svc, err := s.clientFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	created, err := svc.Events.Insert("primary", eventFromRequest(req)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	out := eventToDTO(created)
	return &out, nil
}

func (s *calendarService) UpdateEvent(ctx context.Context, userID uuid.UUID, eventID string, req dto.CalendarEventRequest) (*dto.CalendarEvent, error) {
	svc, err := s.clientFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	updated, err := svc.Events.Update("primary", eventID, eventFromRequest(req)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	out := eventToDTO(updated)
	return &out, nil
}

func (s *calendarService) DeleteEvent(ctx context.Context, userID uuid.UUID, eventID string) error {
	svc, err := s.clientFor(ctx, userID)
	if err != nil {
		return err
	}

	if err := svc.Events.Delete("primary", eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	return nil
}

// appCalendarID finds the dedicated app calendar, creating it on first use.
// Task events live there instead of the primary calendar.
func (s *calendarService) appCalendarID(ctx context.Context, svc *calendar.Service) (string, error) {
	list, err := svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to list calendars: %w", err)
	}
	for _, item := range list.Items {
		if item.Summary == appCalendarSummary {
			return item.Id, nil
		}
	}

	created, err := svc.Calendars.Insert(&calendar.Calendar{
		Summary:     appCalendarSummary,
		Description: "Tasks and events from Skedlyze app",
		TimeZone:    "UTC",
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create app calendar: %w", err)
	}

	return created.Id, nil
}

// SyncTask pushes one due-dated task to the app calendar and records the
// event ID on the task. Tasks without a due date are skipped.
func (s *calendarService) SyncTask(ctx context.Context, userID uuid.UUID, task *model.Task) error {
	if task.DueDate == nil {
		return nil
	}

	svc, err := s.clientFor(ctx, userID)
	if err != nil {
		return err
	}

	calendarID, err := s.appCalendarID(ctx, svc)
	if err != nil {
		return err
	}

	event := taskToEvent(task)

	if task.GoogleCalendarEventID != nil && *task.GoogleCalendarEventID != "" {
		if _, err := svc.Events.Update(calendarID, *task.GoogleCalendarEventID, event).Context(ctx).Do(); err != nil {
			return fmt.Errorf("failed to update task event: %w", err)
		}
		return nil
	}

	created, err := svc.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to insert task event: %w", err)
	}

	if err := s.tasks.UpdateFields(ctx, task.ID, map[string]interface{}{
		"google_calendar_event_id": created.Id,
		"synced_to_calendar":       true,
	}); err != nil {
		return err
	}
	task.GoogleCalendarEventID = &created.Id
	task.SyncedToCalendar = true

	return nil
}

// RemoveTaskEvent deletes the calendar event backing a task, if any.
func (s *calendarService) RemoveTaskEvent(ctx context.Context, userID uuid.UUID, task *model.Task) error {
	if task.GoogleCalendarEventID == nil || *task.GoogleCalendarEventID == "" {
		return nil
	}

	svc, err := s.clientFor(ctx, userID)
	if err != nil {
		return err
	}

	calendarID, err := s.appCalendarID(ctx, svc)
	if err != nil {
		return err
	}

	if err := svc.Events.Delete(calendarID, *task.GoogleCalendarEventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete task event: %w", err)
	}

	return nil
}

// SyncAllTasks pushes every unsynced due-dated task. Per-task failures are
// logged and counted, the sweep keeps going.
func (s *calendarService) SyncAllTasks(ctx context.Context, userID uuid.UUID) (*dto.BulkSyncResponse, error) {
	svc, err := s.clientFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	calendarID, err := s.appCalendarID(ctx, svc)
	if err != nil {
		return nil, err
	}

	tasks, err := s.tasks.FindUnsynced(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &dto.BulkSyncResponse{}
	for i := range tasks {
		task := &tasks[i]
		created, err := svc.Events.Insert(calendarID, taskToEvent(task)).Context(ctx).Do()
		if err != nil {
			log.Printf("Error syncing task %s to calendar: %v", task.ID, err)
			resp.Failed++
			continue
		}

		if err := s.tasks.UpdateFields(ctx, task.ID, map[string]interface{}{
			"google_calendar_event_id": created.Id,
			"synced_to_calendar":       true,
		}); err != nil {
			log.Printf("Error recording calendar event for task %s: %v", task.ID, err)
			resp.Failed++
			continue
		}
		resp.Synced++
	}

	return resp, nil
}

func (s *calendarService) SyncStatus(ctx context.Context, userID uuid.UUID) (*dto.SyncStatusResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	total, err := s.tasks.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	synced, err := s.tasks.CountSynced(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &dto.SyncStatusResponse{
		TotalTasks:  total,
		SyncedTasks: synced,
		SyncEnabled: user.CalendarSyncEnabled,
	}, nil
}

func taskToEvent(task *model.Task) *calendar.Event {
	description := ""
	if task.Description != nil {
		description = *task.Description
	}

	end := task.DueDate.Add(time.Hour)
	if task.EndTime != nil {
		end = *task.EndTime
	}

	return &calendar.Event{
		Summary:     task.Title,
		Description: description,
		Start: &calendar.EventDateTime{
			DateTime: task.DueDate.Format(time.RFC3339),
			TimeZone: "UTC",
		},
		End: &calendar.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: "UTC",
		},
	}
}

func eventFromRequest(req dto.CalendarEventRequest) *calendar.Event {
	return &calendar.Event{
		Summary:     req.Summary,
		Description: req.Description,
		Location:    req.Location,
		Start: &calendar.EventDateTime{
			DateTime: req.Start.Format(time.RFC3339),
			TimeZone: "UTC",
		},
		End: &calendar.EventDateTime{
			DateTime: req.End.Format(time.RFC3339),
			TimeZone: "UTC",
		},
	}
}

func eventToDTO(event *calendar.Event) dto.CalendarEvent {
	out := dto.CalendarEvent{
		ID:       event.Id,
		Summary:  event.Summary,
		HTMLLink: event.HtmlLink,
	}
	out.Description = event.Description
	out.Location = event.Location
	out.Start = parseEventTime(event.Start)
	out.End = parseEventTime(event.End)
	return out
}

func parseEventTime(edt *calendar.EventDateTime) *time.Time {
	if edt == nil {
		return nil
	}
	raw := edt.DateTime
	layout := time.RFC3339
	if raw == "" {
		raw = edt.Date
		layout = "2006-01-02"
	}
	if raw == "" {
		return nil
	}
	t, err := time.Parse(layout, raw)
	if err != nil {
		return nil
	}
	return &t
}
