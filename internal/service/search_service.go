package service

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"

	"github.com/Skedlyze/Skedlyze/internal/model"
)

const taskIndexName = "tasks"

// TaskSearchService mirrors task writes into Meilisearch and answers
// full-text queries. Indexing is best effort, callers log failures and
// keep going.
type TaskSearchService interface {
	IndexTask(task *model.Task) error
	DeleteTask(id string) error
	Search(userID uuid.UUID, query string, limit int64) ([]uuid.UUID, int64, error)
}

type taskSearchService struct {
	client meilisearch.ServiceManager
}

func NewTaskSearchService(client meilisearch.ServiceManager) TaskSearchService {
	s := &taskSearchService{client: client}
	s.initIndex()
	return s
}

func (s *taskSearchService) initIndex() {
	if s.client == nil {
		return
	}

	filterableAttrs := []string{"user_id", "category", "priority", "is_completed"}
	filterableInterface := make([]any, len(filterableAttrs))
	for i, v := range filterableAttrs {
		filterableInterface[i] = v
	}
	_, err := s.client.Index(taskIndexName).UpdateFilterableAttributes(&filterableInterface)
	if err != nil {
		log.Printf("Failed to update tasks filterable attributes: %v", err)
	}

	sortableAttrs := []string{"created_at"}
	_, err = s.client.Index(taskIndexName).UpdateSortableAttributes(&sortableAttrs)
	if err != nil {
		log.Printf("Failed to update tasks sortable attributes: %v", err)
	}

	log.Println("Meilisearch task index initialized")
}

type meiliTaskDoc struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
	IsCompleted bool   `json:"is_completed"`
	CreatedAt   int64  `json:"created_at"`
}

func (s *taskSearchService) IndexTask(task *model.Task) error {
	if s.client == nil {
		return nil
	}

	doc := meiliTaskDoc{
		ID:          task.ID.String(),
		UserID:      task.UserID.String(),
		Title:       task.Title,
		Category:    task.Category,
		Priority:    task.Priority,
		IsCompleted: task.IsCompleted,
		CreatedAt:   task.CreatedAt.Unix(),
	}
	if task.Description != nil {
		doc.Description = *task.Description
	}

	_, err := s.client.Index(taskIndexName).AddDocuments([]meiliTaskDoc{doc}, strPtr("id"))
	return err
}

func (s *taskSearchService) DeleteTask(id string) error {
	if s.client == nil {
		return nil
	}
	_, err := s.client.Index(taskIndexName).DeleteDocument(id)
	return err
}

// Search returns matching task IDs scoped to one user. Hydration from the
// database happens in the task service so results never leak stale fields.
func (s *taskSearchService) Search(userID uuid.UUID, query string, limit int64) ([]uuid.UUID, int64, error) {
	if s.client == nil {
		return nil, 0, nil
	}
	if limit <= 0 {
		limit = 50
	}

	resp, err := s.client.Index(taskIndexName).Search(query, &meilisearch.SearchRequest{
		Filter: fmt.Sprintf("user_id = %q", userID.String()),
		Limit:  limit,
	})
	if err != nil {
		return nil, 0, err
	}

	raw, err := json.Marshal(resp.Hits)
	if err != nil {
		return nil, 0, err
	}
	var docs []meiliTaskDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, 0, err
	}

	ids := make([]uuid.UUID, 0, len(docs))
	for _, doc := range docs {
		id, err := uuid.Parse(doc.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	return ids, resp.EstimatedTotalHits, nil
}

func strPtr(s string) *string {
	return &s
}
