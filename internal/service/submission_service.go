package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-research-portal/internal/dto"
	"github.com/noah-isme/sma-research-portal/internal/models"
	appErrors "github.com/noah-isme/sma-research-portal/pkg/errors"
	"github.com/noah-isme/sma-research-portal/pkg/storage"
)

const researchCachePattern = "research:*"

type submissionStore interface {
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, int, error)
	FindByID(ctx context.Context, id int64) (*models.Submission, error)
	TitleExists(ctx context.Context, title string) (bool, error)
	Create(ctx context.Context, sub models.NewSubmission) (int64, error)
	IncrementViews(ctx context.Context, id int64) error
}

type fileStore interface {
	Validate(kind storage.UploadKind, f *storage.File) error
	Save(kind storage.UploadKind, f *storage.File) (string, error)
	Remove(rel string) error
	Resolve(kind storage.UploadKind, rel string) (string, error)
}

type documentSigner interface {
	Generate(id, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (id, relPath string, expiresAt time.Time, err error)
}

type bookmarkChecker interface {
	Exists(ctx context.Context, studentID string, bookID int64) (bool, error)
}

// DocumentFile is a resolved research PDF ready to stream.
type DocumentFile struct {
	Path     string
	Filename string
}

type submissionPage struct {
	Items []models.Submission `json:"items"`
	Total int                 `json:"total"`
}

// SubmissionServiceConfig carries the tunables of the research service.
type SubmissionServiceConfig struct {
	ListingTTL time.Duration
}

// SubmissionService handles research uploads and browsing.
type SubmissionService struct {
	repo        submissionStore
	files       fileStore
	signer      documentSigner
	bookmarks   bookmarkChecker
	departments departmentLookup
	activity    activityRecorder
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         SubmissionServiceConfig
}

// NewSubmissionService constructs the service.
func NewSubmissionService(
	repo submissionStore,
	files fileStore,
	signer documentSigner,
	bookmarks bookmarkChecker,
	departments departmentLookup,
	activity activityRecorder,
	cache *CacheService,
	metrics *MetricsService,
	v *validator.Validate,
	logger *zap.Logger,
	cfg SubmissionServiceConfig,
) *SubmissionService {
	if v == nil {
		v = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{
		repo:        repo,
		files:       files,
		signer:      signer,
		bookmarks:   bookmarks,
		departments: departments,
		activity:    orNoop(activity),
		cache:       cache,
		metrics:     metrics,
		validator:   v,
		logger:      logger,
		cfg:         cfg,
	}
}

func canUpload(actor *models.Principal) error {
	if err := requirePrincipal(actor); err != nil {
		return err
	}
	if actor.IsStudent() {
		return nil
	}
	return requirePermission(actor, models.PermissionUploadResearch)
}

// Upload stores a research paper. The title check runs before any file is
// written; files already written are removed when the insert fails.
func (s *SubmissionService) Upload(ctx context.Context, actor *models.Principal, req dto.UploadResearchRequest, document, image *storage.File) (result *dto.Result, err error) {
	if err := canUpload(actor); err != nil {
		return nil, err
	}
	defer func() { s.metrics.RecordUpload(err == nil) }()

	req.Title = strings.TrimSpace(req.Title)
	req.Abstract = strings.TrimSpace(req.Abstract)
	req.Keywords = strings.TrimSpace(req.Keywords)
	req.Author = strings.TrimSpace(req.Author)
	req.Department = strings.TrimSpace(req.Department)
	req.Strand = strings.TrimSpace(req.Strand)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	if document == nil {
		return nil, appErrors.Clone(appErrors.ErrUpload, "a PDF document is required")
	}
	if err := s.files.Validate(storage.KindDocument, document); err != nil {
		return nil, err
	}
	if image != nil {
		if err := s.files.Validate(storage.KindImage, image); err != nil {
			return nil, err
		}
	}

	_, department, err := resolveDepartment(ctx, s.departments, req.Department)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.TitleExists(ctx, req.Title)
	if err != nil {
		return nil, internalError(err, "failed to check research title")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("a research paper titled %q already exists", req.Title))
	}

	var written []string
	defer func() {
		if err == nil {
			return
		}
		for _, rel := range written {
			if rmErr := s.files.Remove(rel); rmErr != nil {
				s.logger.Warn("failed to remove orphaned upload", zap.String("path", rel), zap.Error(rmErr))
			}
		}
	}()

	docPath, err := s.files.Save(storage.KindDocument, document)
	if err != nil {
		return nil, err
	}
	written = append(written, docPath)

	var imagePath *string
	if image != nil {
		stored, saveErr := s.files.Save(storage.KindImage, image)
		if saveErr != nil {
			err = saveErr
			return nil, err
		}
		written = append(written, stored)
		imagePath = &stored
	}

	sub := models.NewSubmission{
		Title:        req.Title,
		Abstract:     req.Abstract,
		Keywords:     req.Keywords,
		Author:       req.Author,
		Department:   department,
		Strand:       req.Strand,
		ImagePath:    imagePath,
		DocumentPath: &docPath,
	}
	if actor.IsStudent() {
		studentID := actor.ID
		sub.StudentID = &studentID
	} else if empID, ok := actor.EmployeeID(); ok {
		sub.AdviserID = &empID
	}

	id, err := s.repo.Create(ctx, sub)
	if err != nil {
		err = internalError(err, "failed to save research paper")
		return nil, err
	}

	s.activity.Record(ctx, actor, models.ActionResearchUpload, map[string]interface{}{"id": id, "title": req.Title})
	_ = s.cache.Invalidate(ctx, researchCachePattern)
	_ = s.cache.Invalidate(ctx, dashboardCacheKey)

	result = dto.Succeeded("Research paper uploaded successfully").With("id", id)
	result.Redirect = fmt.Sprintf("/research/%d", id)
	return result, nil
}

// List returns a page of approved research, served from cache when warm.
func (s *SubmissionService) List(ctx context.Context, actor *models.Principal, filter models.SubmissionFilter) ([]models.Submission, *models.Pagination, error) {
	if err := requirePrincipal(actor); err != nil {
		return nil, nil, err
	}
	filter.Department = strings.TrimSpace(filter.Department)
	filter.Strand = strings.TrimSpace(filter.Strand)
	filter.Keyword = strings.TrimSpace(filter.Keyword)
	filter.Page, filter.PageSize = models.Normalize(filter.Page, filter.PageSize, 100)

	key := listingCacheKey(filter)
	var page submissionPage
	if hit, _ := s.cache.Get(ctx, key, &page); !hit {
		items, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, nil, internalError(err, "failed to load research")
		}
		page = submissionPage{Items: items, Total: total}
		_ = s.cache.Set(ctx, key, page, s.cfg.ListingTTL)
	}
	if page.Items == nil {
		page.Items = []models.Submission{}
	}
	return page.Items, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: page.Total}, nil
}

// listingCacheKey folds only the keyword; department and strand filters are
// exact matches in SQL.
func listingCacheKey(f models.SubmissionFilter) string {
	v := url.Values{}
	v.Set("d", f.Department)
	v.Set("s", f.Strand)
	v.Set("q", strings.ToLower(f.Keyword))
	v.Set("p", strconv.Itoa(f.Page))
	v.Set("n", strconv.Itoa(f.PageSize))
	return "research:list:" + v.Encode()
}

// View loads one paper, counts the view and signs a document link.
func (s *SubmissionService) View(ctx context.Context, actor *models.Principal, rawID string) (*models.SubmissionView, error) {
	if err := requirePrincipal(actor); err != nil {
		return nil, err
	}
	id, err := parseID(rawID, "research")
	if err != nil {
		return nil, err
	}
	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "research paper not found")
		}
		return nil, internalError(err, "failed to load research paper")
	}

	if err := s.repo.IncrementViews(ctx, id); err != nil {
		s.logger.Warn("failed to count view", zap.Int64("id", id), zap.Error(err))
	} else {
		sub.Views++
	}

	view := &models.SubmissionView{Submission: *sub}
	if sub.DocumentPath != nil && *sub.DocumentPath != "" && s.signer != nil {
		token, expires, err := s.signer.Generate(strconv.FormatInt(id, 10), *sub.DocumentPath)
		if err != nil {
			s.logger.Warn("failed to sign document link", zap.Int64("id", id), zap.Error(err))
		} else {
			view.DocumentURL = fmt.Sprintf("/research/%d/document?token=%s", id, url.QueryEscape(token))
			view.URLExpires = &expires
		}
	}

	if actor.IsStudent() && s.bookmarks != nil {
		marked, err := s.bookmarks.Exists(ctx, actor.ID, id)
		if err != nil {
			s.logger.Warn("failed to load bookmark state", zap.Int64("id", id), zap.Error(err))
		}
		view.Bookmarked = marked
	}
	return view, nil
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Document checks a signed link and resolves the PDF on disk.
func (s *SubmissionService) Document(ctx context.Context, actor *models.Principal, rawID, token string) (*DocumentFile, error) {
	if err := requirePrincipal(actor); err != nil {
		return nil, err
	}
	id, err := parseID(rawID, "research")
	if err != nil {
		return nil, err
	}
	invalid := appErrors.Clone(appErrors.ErrForbidden, "document link is invalid or has expired")
	if s.signer == nil || strings.TrimSpace(token) == "" {
		return nil, invalid
	}
	tokenID, rel, _, err := s.signer.Parse(token, false)
	if err != nil || tokenID != strconv.FormatInt(id, 10) {
		return nil, invalid
	}

	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "research paper not found")
		}
		return nil, internalError(err, "failed to load research paper")
	}
	if sub.DocumentPath == nil || *sub.DocumentPath != rel {
		return nil, invalid
	}

	abs, err := s.files.Resolve(storage.KindDocument, rel)
	if err != nil {
		if errors.Is(err, storage.ErrOutsideBase) {
			return nil, invalid
		}
		return nil, internalError(err, "failed to locate document")
	}
	if _, err := os.Stat(abs); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document file is missing")
		}
		return nil, internalError(err, "failed to open document")
	}

	name := strings.Trim(unsafeFilename.ReplaceAllString(sub.Title, "_"), "_")
	if name == "" {
		name = "research-" + strconv.FormatInt(id, 10)
	}
	return &DocumentFile{Path: abs, Filename: name + ".pdf"}, nil
}
