package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-research-portal/internal/models"
	"github.com/noah-isme/sma-research-portal/internal/schema"
)

// SubmissionRepository persists research submissions (cap_books).
type SubmissionRepository struct {
	db   *sqlx.DB
	caps schema.Source
}

// NewSubmissionRepository constructs the repository.
func NewSubmissionRepository(db *sqlx.DB, caps schema.Source) *SubmissionRepository {
	return &SubmissionRepository{db: db, caps: caps}
}

func (r *SubmissionRepository) projection() (string, schema.SubmissionColumns) {
	c := r.caps.Current().Submissions
	cols := fmt.Sprintf(`
SELECT
	b.id,
	b.title,
	COALESCE(b.abstract, '') AS abstract,
	%s AS keywords,
	COALESCE(b.author, '') AS author,
	COALESCE(b.department, '') AS department,
	%s AS strand,
	%s AS student_id,
	%s AS adviser_id,
	b.status,
	%s AS views,
	%s AS image_path,
	%s AS document_path,
	b.created_at
FROM cap_books b`,
		schema.OptionalText(c.Keywords, "b", "keywords"),
		schema.OptionalText(c.Strand, "b", "strand"),
		schema.OptionalColumn(c.StudentID, "b", "student_id", "varchar"),
		schema.OptionalColumn(c.AdviserID, "b", "adviser_id", "integer"),
		schema.SubmissionViews(c, "b"),
		schema.OptionalColumn(c.ImagePath, "b", "image_path", "text"),
		schema.OptionalColumn(c.DocumentPath, "b", "document_path", "text"),
	)
	return cols, c
}

func (r *SubmissionRepository) filters(c schema.SubmissionColumns, filter models.SubmissionFilter, args *schema.Args) []string {
	preds := []string{fmt.Sprintf("b.status = %d", models.StatusApproved)}
	if v := strings.TrimSpace(filter.Department); v != "" {
		preds = append(preds, schema.Equals(true, "b", "department", args, v))
	}
	if v := strings.TrimSpace(filter.Strand); v != "" {
		preds = append(preds, schema.Equals(c.Strand, "b", "strand", args, v))
	}
	if v := strings.TrimSpace(filter.Keyword); v != "" {
		searchable := []string{"b.title", "b.abstract", "b.author"}
		if c.Keywords {
			searchable = append(searchable, "b.keywords")
		}
		preds = append(preds, schema.Search(args, v, searchable...))
	}
	return preds
}

// List returns approved submissions matching the filter, newest first, with
// the total number of matches.
func (r *SubmissionRepository) List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, int, error) {
	base, c := r.projection()
	args := &schema.Args{}
	where := schema.Where(r.filters(c, filter, args)...)

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM cap_books b"+where, args.Values()...); err != nil {
		return nil, 0, fmt.Errorf("count submissions: %w", err)
	}

	page, size := models.Normalize(filter.Page, filter.PageSize, 100)
	query := fmt.Sprintf("%s%s\nORDER BY b.created_at DESC, b.id DESC LIMIT %s OFFSET %s",
		base, where, args.Add(size), args.Add((page-1)*size))

	var items []models.Submission
	if err := r.db.SelectContext(ctx, &items, query, args.Values()...); err != nil {
		return nil, 0, fmt.Errorf("list submissions: %w", err)
	}
	return items, total, nil
}

// ListAll returns every approved submission for catalogue export.
func (r *SubmissionRepository) ListAll(ctx context.Context) ([]models.Submission, error) {
	base, _ := r.projection()
	query := fmt.Sprintf("%s WHERE b.status = %d ORDER BY department ASC, b.title ASC", base, models.StatusApproved)
	var items []models.Submission
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list all submissions: %w", err)
	}
	return items, nil
}

// FindByID fetches an approved submission.
func (r *SubmissionRepository) FindByID(ctx context.Context, id int64) (*models.Submission, error) {
	base, _ := r.projection()
	query := fmt.Sprintf("%s WHERE b.id = $1 AND b.status = %d", base, models.StatusApproved)
	var item models.Submission
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find submission: %w", err)
	}
	return &item, nil
}

// TitleExists reports whether an approved submission already uses an
// equivalent title (case and whitespace folded). This is a plain check with
// no lock; two concurrent uploads can both pass it.
func (r *SubmissionRepository) TitleExists(ctx context.Context, title string) (bool, error) {
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM cap_books WHERE status = %d AND %s = %s)",
		models.StatusApproved, schema.Normalized("title"), schema.Normalized("$1"))
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, title); err != nil {
		return false, fmt.Errorf("check submission title: %w", err)
	}
	return exists, nil
}

// Create inserts an approved submission and returns its id.
func (r *SubmissionRepository) Create(ctx context.Context, sub models.NewSubmission) (int64, error) {
	c := r.caps.Current().Submissions
	args := &schema.Args{}
	cols := []string{"title", "abstract", "author", "department", "status"}
	vals := []string{args.Add(sub.Title), args.Add(sub.Abstract), args.Add(sub.Author), args.Add(sub.Department), fmt.Sprintf("%d", models.StatusApproved)}
	add := func(present bool, col string, v interface{}) {
		if !present {
			return
		}
		cols = append(cols, col)
		vals = append(vals, args.Add(v))
	}
	add(c.Keywords, "keywords", sub.Keywords)
	add(c.Strand, "strand", sub.Strand)
	add(c.StudentID && sub.StudentID != nil, "student_id", sub.StudentID)
	add(c.AdviserID && sub.AdviserID != nil, "adviser_id", sub.AdviserID)
	add(c.ImagePath && sub.ImagePath != nil, "image_path", sub.ImagePath)
	add(c.DocumentPath && sub.DocumentPath != nil, "document_path", sub.DocumentPath)
	if c.Views {
		cols = append(cols, "views")
		vals = append(vals, "0")
	}

	query := fmt.Sprintf("INSERT INTO cap_books (%s) VALUES (%s) RETURNING id", join(cols), join(vals))
	var id int64
	if err := r.db.QueryRowxContext(ctx, query, args.Values()...).Scan(&id); err != nil {
		return 0, fmt.Errorf("create submission: %w", err)
	}
	return id, nil
}

// IncrementViews bumps the view counter. Without a views column it is a no-op.
func (r *SubmissionRepository) IncrementViews(ctx context.Context, id int64) error {
	if !r.caps.Current().Submissions.Views {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, "UPDATE cap_books SET views = COALESCE(views, 0) + 1 WHERE id = $1", id); err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

// Totals returns the approved submission count and the sum of their views.
func (r *SubmissionRepository) Totals(ctx context.Context) (count, views int64, err error) {
	c := r.caps.Current().Submissions
	query := fmt.Sprintf("SELECT COUNT(*) AS count, COALESCE(SUM(%s), 0) AS views FROM cap_books b WHERE b.status = %d",
		schema.SubmissionViews(c, "b"), models.StatusApproved)
	row := struct {
		Count int64 `db:"count"`
		Views int64 `db:"views"`
	}{}
	if err = r.db.GetContext(ctx, &row, query); err != nil {
		return 0, 0, fmt.Errorf("submission totals: %w", err)
	}
	return row.Count, row.Views, nil
}
