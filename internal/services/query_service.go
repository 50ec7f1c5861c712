package services

import (
	"context"
	"time"

	"task-manager.com/task-manager/internal/constants"
	apperrors "task-manager.com/task-manager/internal/errors"
	model "task-manager.com/task-manager/internal/models"
	repository "task-manager.com/task-manager/internal/repositories"
)

const MaxPageLimit = 100

type Page struct {
	Tasks       []model.Task `json:"tasks"`
	CurrentPage int          `json:"currentPage"`
	TotalPages  int          `json:"totalPages"`
	TotalTasks  int64        `json:"totalTasks"`
	HasMore     bool         `json:"hasMore"`
}

type Stats struct {
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"in progress"`
	Done       int64 `json:"done"`
	Total      int64 `json:"total"`
}

// QueryService serves the read-only views over an owner's tasks.
type QueryService struct {
	repo repository.TaskStore
	now  func() time.Time
}

func NewQueryService(repo repository.TaskStore) *QueryService {
	return &QueryService{
		repo: repo,
		now:  time.Now,
	}
}

// Paginate returns the page-th window of limit tasks, newest first. A page
// past the end is an empty window, not an error.
func (s *QueryService) Paginate(ctx context.Context, ownerID string, page, limit int) (*Page, error) {
	if page < 1 {
		return nil, apperrors.ErrInvalidPage
	}
	if limit < 1 || limit > MaxPageLimit {
		return nil, apperrors.ErrInvalidLimit
	}

	total, err := s.repo.CountOwned(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	result := &Page{
		Tasks:       []model.Task{},
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalTasks:  total,
		HasMore:     page < totalPages,
	}
	if page > totalPages {
		return result, nil
	}

	tasks, err := s.repo.PageOwned(ctx, ownerID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	result.Tasks = tasks
	return result, nil
}

func (s *QueryService) Stats(ctx context.Context, ownerID string) (*Stats, error) {
	counts, err := s.repo.CountByStatus(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		Pending:    counts[constants.StatusPending],
		InProgress: counts[constants.StatusInProgress],
		Done:       counts[constants.StatusDone],
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

// Search matches query against title and description, case-insensitively.
// An empty status matches every status.
func (s *QueryService) Search(ctx context.Context, ownerID, query, status string) ([]model.Task, error) {
	filter := repository.TaskFilter{Query: query}
	if status != "" {
		st, err := parseStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}
	return s.repo.ListOwned(ctx, ownerID, filter)
}

// DueOn lists tasks due on the calendar day of day, taken in day's own
// location so a caller passing local midnight gets its local day. A nil day
// means today in UTC.
func (s *QueryService) DueOn(ctx context.Context, ownerID string, day *time.Time) ([]model.Task, error) {
	if day == nil {
		now := s.now().UTC()
		day = &now
	}
	from := startOfDay(*day)
	before := from.AddDate(0, 0, 1)

	return s.repo.ListOwned(ctx, ownerID, repository.TaskFilter{
		DueFrom:   &from,
		DueBefore: &before,
	})
}
