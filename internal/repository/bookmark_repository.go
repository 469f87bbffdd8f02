package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-research-portal/internal/models"
	"github.com/noah-isme/sma-research-portal/internal/schema"
)

// BookmarkRepository persists student bookmarks.
type BookmarkRepository struct {
	db   *sqlx.DB
	caps schema.Source
}

// NewBookmarkRepository constructs the repository.
func NewBookmarkRepository(db *sqlx.DB, caps schema.Source) *BookmarkRepository {
	return &BookmarkRepository{db: db, caps: caps}
}

// Exists reports whether the student has bookmarked the submission.
func (r *BookmarkRepository) Exists(ctx context.Context, studentID string, bookID int64) (bool, error) {
	if !r.caps.Current().Bookmarks {
		return false, nil
	}
	var exists bool
	query := "SELECT EXISTS (SELECT 1 FROM cap_bookmarks WHERE student_id = $1 AND book_id = $2)"
	if err := r.db.GetContext(ctx, &exists, query, studentID, bookID); err != nil {
		return false, fmt.Errorf("check bookmark: %w", err)
	}
	return exists, nil
}

// Toggle flips the bookmark and reports whether it is present afterwards.
// The delete runs first; only when nothing was removed is a row inserted.
func (r *BookmarkRepository) Toggle(ctx context.Context, studentID string, bookID int64) (present bool, err error) {
	if !r.caps.Current().Bookmarks {
		return false, fmt.Errorf("toggle bookmark: cap_bookmarks table missing")
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin bookmark toggle: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, "DELETE FROM cap_bookmarks WHERE student_id = $1 AND book_id = $2", studentID, bookID)
	if err != nil {
		return false, fmt.Errorf("remove bookmark: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove bookmark rows affected: %w", err)
	}
	if removed == 0 {
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO cap_bookmarks (student_id, book_id) VALUES ($1, $2) ON CONFLICT (student_id, book_id) DO NOTHING",
			studentID, bookID); err != nil {
			return false, fmt.Errorf("add bookmark: %w", err)
		}
		present = true
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("commit bookmark toggle: %w", err)
	}
	return present, nil
}

// ListForStudent returns the student's bookmarks, newest first.
func (r *BookmarkRepository) ListForStudent(ctx context.Context, studentID string) ([]models.Bookmark, error) {
	if !r.caps.Current().Bookmarks {
		return []models.Bookmark{}, nil
	}
	const query = `
SELECT bm.student_id, bm.book_id, b.title, COALESCE(b.author, '') AS author, bm.created_at
FROM cap_bookmarks bm
JOIN cap_books b ON b.id = bm.book_id
WHERE bm.student_id = $1
ORDER BY bm.created_at DESC`
	var items []models.Bookmark
	if err := r.db.SelectContext(ctx, &items, query, studentID); err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	return items, nil
}
