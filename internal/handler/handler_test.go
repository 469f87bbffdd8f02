package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-research-portal/internal/dto"
	"github.com/noah-isme/sma-research-portal/internal/middleware"
	"github.com/noah-isme/sma-research-portal/internal/models"
	"github.com/noah-isme/sma-research-portal/internal/service"
	appErrors "github.com/noah-isme/sma-research-portal/pkg/errors"
	"github.com/noah-isme/sma-research-portal/pkg/storage"
)

type fakeAuthSrv struct {
	principal *models.Principal
	err       error
	loggedOut bool
}

func (f *fakeAuthSrv) Login(_ context.Context, req dto.LoginRequest) (*models.Principal, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.principal, nil
}

func (f *fakeAuthSrv) Logout(context.Context, *models.Principal) *dto.Result {
	f.loggedOut = true
	return dto.Succeeded("You have been logged out")
}

func (f *fakeAuthSrv) ForgotPassword(context.Context, dto.ForgotPasswordRequest) (*dto.Result, error) {
	return dto.Succeeded("sent"), nil
}

func (f *fakeAuthSrv) ResetPassword(context.Context, dto.ResetPasswordRequest) (*dto.Result, error) {
	return dto.Succeeded("reset"), nil
}

type fakeDepartmentSrv struct {
	added    dto.AddDepartmentRequest
	report   string
	addErr   error
	deleteID string
}

func (f *fakeDepartmentSrv) List(context.Context, *models.Principal) ([]models.Department, error) {
	return []models.Department{{ID: 1, Name: "CCS"}}, nil
}

func (f *fakeDepartmentSrv) Add(_ context.Context, _ *models.Principal, req dto.AddDepartmentRequest) (*dto.Result, error) {
	f.added = req
	if f.addErr != nil {
		return nil, f.addErr
	}
	return dto.Succeeded(`Department "` + req.Name + `" added`).With("id", 9), nil
}

func (f *fakeDepartmentSrv) Delete(_ context.Context, _ *models.Principal, rawID string) (*dto.Result, error) {
	f.deleteID = rawID
	return dto.Succeeded("deleted"), nil
}

func (f *fakeDepartmentSrv) Backfill(context.Context, *models.Principal) (string, error) {
	return f.report, nil
}

type fakeStrandSrv struct{}

func (fakeStrandSrv) List(context.Context, *models.Principal) ([]models.Strand, error) {
	return nil, nil
}

func (fakeStrandSrv) Update(context.Context, *models.Principal, string, dto.UpdateStrandRequest) (*dto.Result, error) {
	return dto.Succeeded("Strand updated"), nil
}

type fakeSubAdminSrv struct {
	restored []string
	filter   models.EmployeeFilter
}

func (f *fakeSubAdminSrv) List(_ context.Context, _ *models.Principal, filter models.EmployeeFilter) ([]models.Employee, error) {
	f.filter = filter
	return []models.Employee{}, nil
}

func (f *fakeSubAdminSrv) Create(context.Context, *models.Principal, dto.CreateSubAdminRequest) (*dto.Result, error) {
	return dto.Succeeded("created"), nil
}

func (f *fakeSubAdminSrv) Archive(context.Context, *models.Principal, string) (*dto.Result, error) {
	return dto.Succeeded("archived"), nil
}

func (f *fakeSubAdminSrv) Restore(_ context.Context, _ *models.Principal, rawID string) (*dto.Result, error) {
	f.restored = append(f.restored, rawID)
	if rawID == "404" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no archived research adviser with that id")
	}
	return dto.Succeeded("Research adviser restored successfully"), nil
}

type fakeResearchSrv struct {
	req      dto.UploadResearchRequest
	document *storage.File
	image    *storage.File
	file     *service.DocumentFile
}

func (f *fakeResearchSrv) Upload(_ context.Context, _ *models.Principal, req dto.UploadResearchRequest, document, image *storage.File) (*dto.Result, error) {
	f.req, f.document, f.image = req, document, image
	if document == nil {
		return nil, appErrors.Clone(appErrors.ErrUpload, "a PDF document is required")
	}
	result := dto.Succeeded("Research paper uploaded successfully").With("id", 12)
	result.Redirect = "/research/12"
	return result, nil
}

func (f *fakeResearchSrv) List(_ context.Context, _ *models.Principal, filter models.SubmissionFilter) ([]models.Submission, *models.Pagination, error) {
	return []models.Submission{{ID: 1, Title: filter.Keyword}}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, nil
}

func (f *fakeResearchSrv) View(_ context.Context, _ *models.Principal, rawID string) (*models.SubmissionView, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "research paper not found")
}

func (f *fakeResearchSrv) Document(_ context.Context, _ *models.Principal, rawID, token string) (*service.DocumentFile, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "document link is invalid or has expired")
	}
	return f.file, nil
}

type fakeBookmarkSrv struct{ toggled []string }

func (f *fakeBookmarkSrv) Toggle(_ context.Context, _ *models.Principal, rawID string) (*dto.Result, error) {
	f.toggled = append(f.toggled, rawID)
	return dto.Succeeded("Research bookmarked").With("bookmarked", true), nil
}

func (f *fakeBookmarkSrv) List(context.Context, *models.Principal) ([]models.Bookmark, error) {
	return []models.Bookmark{}, nil
}

type fakeProfileSrv struct {
	req     dto.UpdateProfileRequest
	picture *storage.File
}

func (f *fakeProfileSrv) Get(context.Context, *models.Principal) (interface{}, error) {
	return map[string]string{"email": "a@b.c"}, nil
}

func (f *fakeProfileSrv) Update(_ context.Context, _ *models.Principal, req dto.UpdateProfileRequest, picture *storage.File) (*dto.Result, error) {
	f.req, f.picture = req, picture
	return dto.Succeeded("Profile updated successfully"), nil
}

type fakeDashboardSrv struct{}

func (fakeDashboardSrv) Get(context.Context, *models.Principal) (*service.Dashboard, error) {
	return &service.Dashboard{Counts: models.DashboardCounts{Departments: 3}}, nil
}

type fakeActivitySrv struct{ filter models.ActivityFilter }

func (f *fakeActivitySrv) List(_ context.Context, _ *models.Principal, filter models.ActivityFilter) ([]models.ActivityLog, *models.Pagination, error) {
	f.filter = filter
	return []models.ActivityLog{}, &models.Pagination{Page: 1, PageSize: 50}, nil
}

type fakeExportSrv struct{}

func (fakeExportSrv) Catalogue(_ context.Context, _ *models.Principal, format string) (*service.ExportFile, error) {
	if format == "xls" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	return &service.ExportFile{Filename: "research-catalogue.csv", ContentType: "text/csv; charset=utf-8", Data: []byte("ID\n")}, nil
}

type fakeLimits struct{}

func (fakeLimits) Limit(storage.UploadKind) int64 { return 1 << 20 }

type fixture struct {
	router      *gin.Engine
	auth        *fakeAuthSrv
	departments *fakeDepartmentSrv
	subadmins   *fakeSubAdminSrv
	research    *fakeResearchSrv
	bookmarks   *fakeBookmarkSrv
	profile     *fakeProfileSrv
	activity    *fakeActivitySrv
	loginAs     *models.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := &fixture{
		auth:        &fakeAuthSrv{},
		departments: &fakeDepartmentSrv{report: "employees updated: 1\n"},
		subadmins:   &fakeSubAdminSrv{},
		research:    &fakeResearchSrv{},
		bookmarks:   &fakeBookmarkSrv{},
		profile:     &fakeProfileSrv{},
		activity:    &fakeActivitySrv{},
	}
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("0123456789abcdef0123456789abcdef"))))
	r.Use(middleware.Identity(time.Hour))
	r.POST("/test-login", func(c *gin.Context) {
		require.NoError(t, middleware.StartSession(c, f.loginAs))
		c.Status(http.StatusNoContent)
	})
	RegisterRoutes(r, Handlers{
		Auth:        NewAuthHandler(f.auth),
		Departments: NewDepartmentHandler(f.departments),
		Strands:     NewStrandHandler(fakeStrandSrv{}),
		SubAdmins:   NewSubAdminHandler(f.subadmins),
		Research:    NewResearchHandler(f.research, f.bookmarks, fakeLimits{}),
		Profile:     NewProfileHandler(f.profile, fakeLimits{}),
		Admin:       NewAdminHandler(fakeDashboardSrv{}, f.activity, fakeExportSrv{}),
		Metrics:     NewMetricsHandler(nil, nil),
	}, nil)
	f.router = r
	return f
}

func (f *fixture) session(t *testing.T, p *models.Principal) []*http.Cookie {
	t.Helper()
	f.loginAs = p
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/test-login", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	return rec.Result().Cookies()
}

func (f *fixture) do(req *http.Request, cookies []*http.Cookie) *httptest.ResponseRecorder {
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func formRequest(method, target string, values map[string]string, ajax bool) *http.Request {
	form := make([]string, 0, len(values))
	for k, v := range values {
		form = append(form, k+"="+v)
	}
	req := httptest.NewRequest(method, target, strings.NewReader(strings.Join(form, "&")))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if ajax {
		req.Header.Set("X-Requested-With", "XMLHttpRequest")
	}
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

var (
	admin   = &models.Principal{Type: models.UserTypeAdmin, ID: "1", Name: "Ada"}
	adviser = &models.Principal{Type: models.UserTypeSubAdmin, ID: "7", Permissions: []string{models.PermissionUploadResearch}}
	student = &models.Principal{Type: models.UserTypeStudent, ID: "2021-0001"}
)

func TestLoginStartsSessionAndRedirectsHome(t *testing.T) {
	f := newFixture(t)
	f.auth.principal = &models.Principal{Type: models.UserTypeStudent, ID: "2021-0001", Name: "Lia"}

	rec := f.do(formRequest(http.MethodPost, "/auth/login", map[string]string{
		"user_type": "student", "email": "lia@school.test", "password": "secret123",
	}, false), nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, middleware.StudentHomePath, rec.Header().Get("Location"))

	list := f.do(httptest.NewRequest(http.MethodGet, "/bookmarks", nil), rec.Result().Cookies())
	assert.Equal(t, http.StatusOK, list.Code)
}

func TestLoginFailureAnswersAjaxWithJSON(t *testing.T) {
	f := newFixture(t)
	f.auth.err = appErrors.ErrInvalidCredentials

	rec := f.do(formRequest(http.MethodPost, "/auth/login", map[string]string{"user_type": "admin"}, true), nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "invalid email or password", body["message"])
}

func TestLogoutClearsSession(t *testing.T) {
	f := newFixture(t)
	cookies := f.session(t, admin)

	rec := f.do(httptest.NewRequest(http.MethodPost, "/auth/logout", nil), cookies)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, f.auth.loggedOut)

	dash := f.do(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil), rec.Result().Cookies())
	assert.Equal(t, http.StatusSeeOther, dash.Code)
	assert.Equal(t, middleware.LoginPath, dash.Header().Get("Location"))
}

func TestAddDepartmentAjax(t *testing.T) {
	f := newFixture(t)
	cookies := f.session(t, admin)

	rec := f.do(formRequest(http.MethodPost, "/admin/departments", map[string]string{"name": "CCS", "code": "CS"}, true), cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, `Department "CCS" added`, body["message"])
	assert.Equal(t, "CS", f.departments.added.Code)
}

func TestAddDepartmentConflictRedirectsWithFlash(t *testing.T) {
	f := newFixture(t)
	f.departments.addErr = appErrors.Clone(appErrors.ErrConflict, `department "CCS" already exists`)
	cookies := f.session(t, admin)

	rec := f.do(formRequest(http.MethodPost, "/admin/departments", map[string]string{"name": "CCS"}, false), cookies)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, departmentsPath, rec.Header().Get("Location"))

	list := f.do(httptest.NewRequest(http.MethodGet, "/admin/departments", nil), rec.Result().Cookies())
	require.Equal(t, http.StatusOK, list.Code)
	meta := decode(t, list)["meta"].(map[string]interface{})
	flash := meta["flash"].(map[string]interface{})
	assert.Equal(t, []interface{}{`department "CCS" already exists`}, flash["error"])
}

func TestAddDepartmentRequiresPermission(t *testing.T) {
	f := newFixture(t)
	cookies := f.session(t, adviser)

	rec := f.do(formRequest(http.MethodPost, "/admin/departments", map[string]string{"name": "CCS"}, true), cookies)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, f.departments.added.Name)
}

func TestDeleteDepartmentPassesPathID(t *testing.T) {
	f := newFixture(t)
	cookies := f.session(t, admin)

	rec := f.do(formRequest(http.MethodPost, "/admin/departments/4/delete", nil, true), cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "4", f.departments.deleteID)
}

func TestBackfillIsPlainText(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodPost, "/admin/departments/backfill", nil), f.session(t, adviser))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Forbidden\n", rec.Body.String())

	rec = f.do(httptest.NewRequest(http.MethodPost, "/admin/departments/backfill", nil), f.session(t, admin))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "employees updated: 1\n", rec.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestArchivedListRestoreTrigger(t *testing.T) {
	f := newFixture(t)
	cookies := f.session(t, admin)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/admin/subadmins/archived?restore=5", nil), cookies)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, archivedSubAdminsPath, rec.Header().Get("Location"))
	assert.Equal(t, []string{"5"}, f.subadmins.restored)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/admin/subadmins/archived?q=ben", nil), cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, f.subadmins.filter.Archived)
	assert.Equal(t, "ben", f.subadmins.filter.Search)
}

func TestRestoreJSONBody(t *testing.T) {
	f := newFixture(t)
	cookies := f.session(t, admin)

	req := httptest.NewRequest(http.MethodPost, "/admin/subadmins/restore", strings.NewReader(`{"id":"404"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	rec := f.do(req, cookies)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "no archived research adviser with that id", decode(t, rec)["message"])
	assert.Equal(t, []string{"404"}, f.subadmins.restored)
}

func multipartRequest(t *testing.T, target string, fields map[string]string, files map[string][]byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for name, data := range files {
		part, err := w.CreateFormFile(name, name+".bin")
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	return req
}

func TestUploadPassesFormAndFiles(t *testing.T) {
	f := newFixture(t)
	cookies := f.session(t, student)

	rec := f.do(multipartRequest(t, "/research", map[string]string{
		"title": "A", "abstract": "x", "author": "Lia", "department": "CCS",
	}, map[string][]byte{"document": []byte("%PDF-1.4")}), cookies)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Research paper uploaded successfully", body["message"])
	assert.Equal(t, "A", f.research.req.Title)
	require.NotNil(t, f.research.document)
	assert.Equal(t, "document.bin", f.research.document.Name)
	assert.Nil(t, f.research.image)
}

func TestUploadWithoutDocument(t *testing.T) {
	f := newFixture(t)
	cookies := f.session(t, adviser)

	rec := f.do(formRequest(http.MethodPost, "/research", map[string]string{"title": "A"}, true), cookies)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "a PDF document is required", decode(t, rec)["message"])
}

func TestUploadRejectedForAdmins(t *testing.T) {
	f := newFixture(t)
	cookies := f.session(t, admin)

	rec := f.do(formRequest(http.MethodPost, "/research", map[string]string{"title": "A"}, true), cookies)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, f.research.req.Title)
}

func TestResearchListBindsQuery(t *testing.T) {
	f := newFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/research?q=water&page=1", nil), f.session(t, student))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	items := body["data"].([]interface{})
	assert.Equal(t, "water", items[0].(map[string]interface{})["title"])
	assert.NotNil(t, body["pagination"])
}

func TestResearchListRequiresLogin(t *testing.T) {
	f := newFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/research", nil), nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, middleware.LoginPath, rec.Header().Get("Location"))
}

func TestViewNotFound(t *testing.T) {
	f := newFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/research/99", nil), f.session(t, student))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDocumentStreamsAttachment(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(t.TempDir(), "paper.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 body"), 0o644))
	f.research.file = &service.DocumentFile{Path: path, Filename: "Water_Study.pdf"}
	cookies := f.session(t, student)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/research/1/document?token=good", nil), cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Water_Study.pdf")
	assert.Equal(t, "%PDF-1.4 body", rec.Body.String())

	rec = f.do(httptest.NewRequest(http.MethodGet, "/research/1/document?token=bad", nil), cookies)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestToggleBookmarkStudentsOnly(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/research/3/bookmark", nil)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	rec := f.do(req, f.session(t, student))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["bookmarked"])
	assert.Equal(t, []string{"3"}, f.bookmarks.toggled)

	req = httptest.NewRequest(http.MethodPost, "/research/3/bookmark", nil)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	rec = f.do(req, f.session(t, adviser))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Len(t, f.bookmarks.toggled, 1)
}

func TestProfileUpdateWithPicture(t *testing.T) {
	f := newFixture(t)
	rec := f.do(multipartRequest(t, "/profile", map[string]string{
		"first_name": "Lia", "last_name": "Santos", "email": "lia@school.test",
		"current_password": "old-secret", "new_password": "new-secret", "confirm_password": "new-secret",
	}, map[string][]byte{"profile_picture": []byte("png")}), f.session(t, student))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "new-secret", f.profile.req.NewPassword)
	require.NotNil(t, f.profile.picture)
	assert.True(t, f.profile.req.WantsPasswordChange())
}

func TestExportSetsAttachmentHeaders(t *testing.T) {
	f := newFixture(t)
	cookies := f.session(t, admin)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/admin/research/export", nil), cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="research-catalogue.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))

	rec = f.do(httptest.NewRequest(http.MethodGet, "/admin/research/export?format=xls", nil), cookies)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActivityBindsFilter(t *testing.T) {
	f := newFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/admin/activity?action=LOGIN&page=2", nil), f.session(t, admin))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "LOGIN", f.activity.filter.Action)
	assert.Equal(t, 2, f.activity.filter.Page)
}

func TestDashboardAdminOnly(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil), f.session(t, admin))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil), f.session(t, student))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, middleware.StudentHomePath, rec.Header().Get("Location"))
}

func TestHealthEndpoints(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusOK, f.do(httptest.NewRequest(http.MethodGet, "/health", nil), nil).Code)
	assert.Equal(t, http.StatusOK, f.do(httptest.NewRequest(http.MethodGet, "/ready", nil), nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, f.do(httptest.NewRequest(http.MethodGet, "/metrics", nil), nil).Code)
}
