package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-research-portal/internal/dto"
	"github.com/noah-isme/sma-research-portal/internal/models"
	appErrors "github.com/noah-isme/sma-research-portal/pkg/errors"
)

type bookmarkStore interface {
	Toggle(ctx context.Context, studentID string, bookID int64) (bool, error)
	ListForStudent(ctx context.Context, studentID string) ([]models.Bookmark, error)
}

type submissionFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Submission, error)
}

// BookmarkService lets students save research papers.
type BookmarkService struct {
	repo        bookmarkStore
	submissions submissionFinder
	logger      *zap.Logger
}

// NewBookmarkService constructs the service.
func NewBookmarkService(repo bookmarkStore, submissions submissionFinder, logger *zap.Logger) *BookmarkService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookmarkService{repo: repo, submissions: submissions, logger: logger}
}

func requireStudent(actor *models.Principal) error {
	if err := requirePrincipal(actor); err != nil {
		return err
	}
	if !actor.IsStudent() {
		return appErrors.Clone(appErrors.ErrForbidden, "only students can bookmark research")
	}
	return nil
}

// Toggle adds the bookmark when absent and removes it when present.
func (s *BookmarkService) Toggle(ctx context.Context, actor *models.Principal, rawID string) (*dto.Result, error) {
	if err := requireStudent(actor); err != nil {
		return nil, err
	}
	id, err := parseID(rawID, "research")
	if err != nil {
		return nil, err
	}
	if _, err := s.submissions.FindByID(ctx, id); err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "research paper not found")
		}
		return nil, internalError(err, "failed to load research paper")
	}

	present, err := s.repo.Toggle(ctx, actor.ID, id)
	if err != nil {
		return nil, internalError(err, "failed to update bookmark")
	}

	msg := "Bookmark removed"
	if present {
		msg = "Research bookmarked"
	}
	result := dto.Succeeded(msg).With("bookmarked", present)
	result.Redirect = fmt.Sprintf("/research/%d", id)
	return result, nil
}

// List returns the caller's bookmarks.
func (s *BookmarkService) List(ctx context.Context, actor *models.Principal) ([]models.Bookmark, error) {
	if err := requireStudent(actor); err != nil {
		return nil, err
	}
	items, err := s.repo.ListForStudent(ctx, actor.ID)
	if err != nil {
		return nil, internalError(err, "failed to load bookmarks")
	}
	return items, nil
}
