package service_test

import (
	"context"
	"encoding/json"
	"time"

	"docs-admin-console/internal/apiclient"
	"docs-admin-console/internal/model"
	"docs-admin-console/internal/security"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"
)

var (
	adminClaims = &security.Claims{UserUUID: security.AdminUserUUID, IsAdmin: true}
	userClaims  = &security.Claims{UserUUID: "user-1", OrganizationID: "org-1"}
)

type MockFolderAPI struct{ mock.Mock }

func (m *MockFolderAPI) FolderTree(ctx context.Context, organizationID string) ([]model.Folder, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Folder), args.Error(1)
}

func (m *MockFolderAPI) FolderContent(ctx context.Context, folderID string) (*model.FolderContent, error) {
	args := m.Called(ctx, folderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FolderContent), args.Error(1)
}

func (m *MockFolderAPI) CreateFolder(ctx context.Context, input apiclient.CreateFolderInput) (*model.Folder, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderAPI) RenameFolder(ctx context.Context, folderID, name string) (*model.Folder, error) {
	args := m.Called(ctx, folderID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderAPI) DeleteFolder(ctx context.Context, folderID string) error {
	return m.Called(ctx, folderID).Error(0)
}

func (m *MockFolderAPI) MoveFolder(ctx context.Context, folderID, destinationID string) error {
	return m.Called(ctx, folderID, destinationID).Error(0)
}

type MockFileAPI struct{ mock.Mock }

func (m *MockFileAPI) MoveFile(ctx context.Context, fileID, destinationID string) error {
	return m.Called(ctx, fileID, destinationID).Error(0)
}

func (m *MockFileAPI) DeleteFile(ctx context.Context, fileID string) error {
	return m.Called(ctx, fileID).Error(0)
}

func (m *MockFileAPI) DownloadFile(ctx context.Context, fileID string) (*apiclient.Download, error) {
	args := m.Called(ctx, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apiclient.Download), args.Error(1)
}

func (m *MockFileAPI) UploadFiles(ctx context.Context, folderID string, parts []apiclient.UploadPart) ([]model.File, error) {
	args := m.Called(ctx, folderID, parts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.File), args.Error(1)
}

func (m *MockFileAPI) CreateExpirationAlert(ctx context.Context, alert model.ExpirationAlert) (*model.ExpirationAlert, error) {
	args := m.Called(ctx, alert)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ExpirationAlert), args.Error(1)
}

func (m *MockFileAPI) SearchFiles(ctx context.Context, query apiclient.FileSearchQuery) ([]model.SearchHit, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SearchHit), args.Error(1)
}

type MockPermissionAPI struct{ mock.Mock }

func (m *MockPermissionAPI) GetFolderPermission(ctx context.Context, userID, folderID string) (*model.Permission, error) {
	args := m.Called(ctx, userID, folderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Permission), args.Error(1)
}

func (m *MockPermissionAPI) CreateOrUpdatePermission(ctx context.Context, permission model.Permission) error {
	return m.Called(ctx, permission).Error(0)
}

type MockAcademicAPI struct{ mock.Mock }

func (m *MockAcademicAPI) ListCourses(ctx context.Context, organizationID string) ([]model.Course, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Course), args.Error(1)
}

func (m *MockAcademicAPI) GetCourse(ctx context.Context, courseID string) (*model.Course, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Course), args.Error(1)
}

func (m *MockAcademicAPI) CreateCourse(ctx context.Context, input apiclient.CourseInput) (*model.Course, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Course), args.Error(1)
}

func (m *MockAcademicAPI) UpdateCourse(ctx context.Context, courseID string, input apiclient.CourseInput) (*model.Course, error) {
	args := m.Called(ctx, courseID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Course), args.Error(1)
}

func (m *MockAcademicAPI) DeleteCourse(ctx context.Context, courseID string) error {
	return m.Called(ctx, courseID).Error(0)
}

func (m *MockAcademicAPI) ListStudents(ctx context.Context, courseID string) ([]model.Student, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Student), args.Error(1)
}

func (m *MockAcademicAPI) CreateStudent(ctx context.Context, input apiclient.StudentInput) (*model.Student, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Student), args.Error(1)
}

func (m *MockAcademicAPI) DeleteStudent(ctx context.Context, studentID string) error {
	return m.Called(ctx, studentID).Error(0)
}

func (m *MockAcademicAPI) ListTCCs(ctx context.Context, courseID string) ([]model.TCC, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TCC), args.Error(1)
}

func (m *MockAcademicAPI) GetTCC(ctx context.Context, tccID string) (*model.TCC, error) {
	args := m.Called(ctx, tccID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TCC), args.Error(1)
}

func (m *MockAcademicAPI) CreateTCC(ctx context.Context, input apiclient.TCCInput, file apiclient.UploadPart, defenseRecord *apiclient.UploadPart) (*model.TCC, error) {
	args := m.Called(ctx, input, file, defenseRecord)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TCC), args.Error(1)
}

func (m *MockAcademicAPI) UpdateTCC(ctx context.Context, tccID string, input apiclient.TCCInput) (*model.TCC, error) {
	args := m.Called(ctx, tccID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TCC), args.Error(1)
}

func (m *MockAcademicAPI) DeleteTCC(ctx context.Context, tccID string) error {
	return m.Called(ctx, tccID).Error(0)
}

func (m *MockAcademicAPI) IntelligentSearch(ctx context.Context, request apiclient.TCCSearchRequest) ([]model.TCCSearchResult, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TCCSearchResult), args.Error(1)
}

type MockOrganizationAPI struct{ mock.Mock }

func (m *MockOrganizationAPI) GetOrganization(ctx context.Context, organizationID string) (*model.Organization, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Organization), args.Error(1)
}

func (m *MockOrganizationAPI) DeleteOrganization(ctx context.Context, organizationID string) error {
	return m.Called(ctx, organizationID).Error(0)
}

func (m *MockOrganizationAPI) ListOrganizationUsers(ctx context.Context, organizationID string) ([]model.User, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockOrganizationAPI) ListPayments(ctx context.Context, organizationID string) ([]model.Payment, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Payment), args.Error(1)
}

func (m *MockOrganizationAPI) GetReport(ctx context.Context, kind model.ReportKind, organizationID string) (json.RawMessage, error) {
	args := m.Called(ctx, kind, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

// MockCacheRepository : GetJSON по умолчанию промахивается, если не задано иное
type MockCacheRepository struct{ mock.Mock }

func (m *MockCacheRepository) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	args := m.Called(ctx, key, dest)
	if fill, ok := args.Get(0).(func(dest interface{})); ok {
		fill(dest)
		return true, args.Error(1)
	}
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepository) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

type MockPreferencesRepository struct{ mock.Mock }

func (m *MockPreferencesRepository) Get(ctx context.Context, exec sqlx.ExtContext, userUUID string) (*model.Preferences, error) {
	args := m.Called(ctx, exec, userUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Preferences), args.Error(1)
}

func (m *MockPreferencesRepository) Upsert(ctx context.Context, exec sqlx.ExtContext, preferences *model.Preferences) error {
	return m.Called(ctx, exec, preferences).Error(0)
}
