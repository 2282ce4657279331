package services

import (
	"context"
	"strings"
	"time"

	"residency-api/internal/adapters/persistence/models"
	"residency-api/internal/adapters/persistence/repositories"
	"residency-api/internal/core/domain"
	"residency-api/internal/pkg/pagination"
)

// ErrNoticeNotFound is returned for a missing notice
var ErrNoticeNotFound = domain.NewError(domain.KindNotFound, "notice not found")

// NoticeService manages the notice board
type NoticeService struct {
	repo  repositories.NoticeRepository
	audit *AuditService
	now   func() time.Time
}

// NewNoticeService creates a new notice service
func NewNoticeService(repo repositories.NoticeRepository, audit *AuditService) *NoticeService {
	return &NoticeService{repo: repo, audit: audit, now: time.Now}
}

// NoticeInput represents post/update notice input. Empty fields are kept on update.
type NoticeInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

func noticeCategory(s string) (domain.NoticeCategory, error) {
	if s == "" {
		return domain.NoticeGeneral, nil
	}
	c := domain.NoticeCategory(s)
	if !c.Valid() {
		return "", domain.Validation("category must be Urgent, General or Event")
	}
	return c, nil
}

// List returns notices newest first
func (s *NoticeService) List(ctx context.Context, category string, params *pagination.Params) ([]*models.Notice, int64, error) {
	if category != "" {
		if _, err := noticeCategory(category); err != nil {
			return nil, 0, err
		}
	}
	list, total, err := s.repo.List(ctx, category, params.Offset, params.Limit)
	if err != nil {
		return nil, 0, domain.Internal("list notices", err)
	}
	return list, total, nil
}

// Post publishes a notice
func (s *NoticeService) Post(ctx context.Context, actor domain.Actor, input *NoticeInput) (*models.Notice, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, domain.Validation("title and content are required")
	}
	category, err := noticeCategory(input.Category)
	if err != nil {
		return nil, err
	}

	n := &models.Notice{
		Title:    title,
		Content:  content,
		Category: string(category),
		AuthorID: actor.UserID,
		Date:     s.now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, domain.Internal("create notice", err)
	}

	s.audit.Record(ctx, actor, ActionPostNotice, EntityNotice, idString(n.ID), n.Category+": "+n.Title)
	return n, nil
}

// Update edits a notice
func (s *NoticeService) Update(ctx context.Context, actor domain.Actor, id uint, input *NoticeInput) (*models.Notice, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, ErrNoticeNotFound, "get notice")
	}
	if t := strings.TrimSpace(input.Title); t != "" {
		n.Title = t
	}
	if c := strings.TrimSpace(input.Content); c != "" {
		n.Content = c
	}
	if input.Category != "" {
		category, err := noticeCategory(input.Category)
		if err != nil {
			return nil, err
		}
		n.Category = string(category)
	}

	if err := s.repo.Update(ctx, n); err != nil {
		return nil, domain.Internal("update notice", err)
	}

	s.audit.Record(ctx, actor, ActionUpdateNotice, EntityNotice, idString(n.ID), n.Category+": "+n.Title)
	return n, nil
}
