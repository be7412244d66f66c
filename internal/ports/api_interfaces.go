package ports

import (
	"context"
	"encoding/json"

	"docs-admin-console/internal/apiclient"
	"docs-admin-console/internal/model"
)

// FolderAPI : папки организации в REST API
type FolderAPI interface {
	FolderTree(ctx context.Context, organizationID string) ([]model.Folder, error)
	FolderContent(ctx context.Context, folderID string) (*model.FolderContent, error)
	CreateFolder(ctx context.Context, input apiclient.CreateFolderInput) (*model.Folder, error)
	RenameFolder(ctx context.Context, folderID, name string) (*model.Folder, error)
	DeleteFolder(ctx context.Context, folderID string) error
	MoveFolder(ctx context.Context, folderID, destinationID string) error
}

type FileAPI interface {
	MoveFile(ctx context.Context, fileID, destinationID string) error
	DeleteFile(ctx context.Context, fileID string) error
	DownloadFile(ctx context.Context, fileID string) (*apiclient.Download, error)
	UploadFiles(ctx context.Context, folderID string, parts []apiclient.UploadPart) ([]model.File, error)
	CreateExpirationAlert(ctx context.Context, alert model.ExpirationAlert) (*model.ExpirationAlert, error)
	SearchFiles(ctx context.Context, query apiclient.FileSearchQuery) ([]model.SearchHit, error)
}

type PermissionAPI interface {
	GetFolderPermission(ctx context.Context, userID, folderID string) (*model.Permission, error)
	CreateOrUpdatePermission(ctx context.Context, permission model.Permission) error
}

type AcademicAPI interface {
	ListCourses(ctx context.Context, organizationID string) ([]model.Course, error)
	GetCourse(ctx context.Context, courseID string) (*model.Course, error)
	CreateCourse(ctx context.Context, input apiclient.CourseInput) (*model.Course, error)
	UpdateCourse(ctx context.Context, courseID string, input apiclient.CourseInput) (*model.Course, error)
	DeleteCourse(ctx context.Context, courseID string) error

	ListStudents(ctx context.Context, courseID string) ([]model.Student, error)
	CreateStudent(ctx context.Context, input apiclient.StudentInput) (*model.Student, error)
	DeleteStudent(ctx context.Context, studentID string) error

	ListTCCs(ctx context.Context, courseID string) ([]model.TCC, error)
	GetTCC(ctx context.Context, tccID string) (*model.TCC, error)
	CreateTCC(ctx context.Context, input apiclient.TCCInput, file apiclient.UploadPart, defenseRecord *apiclient.UploadPart) (*model.TCC, error)
	UpdateTCC(ctx context.Context, tccID string, input apiclient.TCCInput) (*model.TCC, error)
	DeleteTCC(ctx context.Context, tccID string) error
	IntelligentSearch(ctx context.Context, request apiclient.TCCSearchRequest) ([]model.TCCSearchResult, error)
}

type OrganizationAPI interface {
	GetOrganization(ctx context.Context, organizationID string) (*model.Organization, error)
	DeleteOrganization(ctx context.Context, organizationID string) error
	ListOrganizationUsers(ctx context.Context, organizationID string) ([]model.User, error)
	ListPayments(ctx context.Context, organizationID string) ([]model.Payment, error)
	GetReport(ctx context.Context, kind model.ReportKind, organizationID string) (json.RawMessage, error)
}
