package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-research-portal/internal/models"
	appErrors "github.com/noah-isme/sma-research-portal/pkg/errors"
	"github.com/noah-isme/sma-research-portal/pkg/storage"
)

var errNoRows = sql.ErrNoRows

var (
	adminActor   = &models.Principal{Type: models.UserTypeAdmin, ID: "1", Name: "Admin"}
	studentActor = &models.Principal{Type: models.UserTypeStudent, ID: "2021-0001", Name: "Ana Cruz"}
	adviserActor = &models.Principal{Type: models.UserTypeSubAdmin, ID: "7", Name: "Ben Reyes",
		Permissions: []string{models.PermissionUploadResearch}}
	plainAdviser = &models.Principal{Type: models.UserTypeSubAdmin, ID: "8", Name: "Cora Lim"}
)

type recordedActivity struct {
	actor   *models.Principal
	action  string
	details map[string]interface{}
}

type activityStub struct {
	entries []recordedActivity
}

func (a *activityStub) Record(ctx context.Context, actor *models.Principal, action string, details map[string]interface{}) {
	a.entries = append(a.entries, recordedActivity{actor: actor, action: action, details: details})
}

func (a *activityStub) actions() []string {
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.action)
	}
	return out
}

type departmentLookupStub struct {
	tracked bool
	items   map[string]*models.Department
}

func (d *departmentLookupStub) Tracked() bool { return d.tracked }

func (d *departmentLookupStub) FindByName(ctx context.Context, name string) (*models.Department, error) {
	if dept, ok := d.items[name]; ok {
		return dept, nil
	}
	return nil, errNoRows
}

func newTestUploader(t *testing.T) (*storage.Uploader, *storage.LocalStorage) {
	t.Helper()
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return storage.NewUploader(files, storage.DefaultPolicies(5<<20, 0, 5<<20, 256)), files
}

func storageFile(name string) *storage.File {
	return storage.FromBytes(name, []byte("%PDF-1.4"))
}

func requireAppError(t *testing.T, err error, code string) *appErrors.Error {
	t.Helper()
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.Equal(t, code, appErr.Code, appErr.Message)
	return appErr
}
