package service_test

import (
	"context"
	"testing"
	"time"

	"docs-admin-console/internal/apiclient"
	"docs-admin-console/internal/browser"
	"docs-admin-console/internal/model"
	"docs-admin-console/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type browserFixture struct {
	folders       *MockFolderAPI
	files         *MockFileAPI
	permissionAPI *MockPermissionAPI
	confirmations *service.ConfirmationService
	service       *service.BrowserService
}

func newBrowserFixture() *browserFixture {
	f := &browserFixture{
		folders:       new(MockFolderAPI),
		files:         new(MockFileAPI),
		permissionAPI: new(MockPermissionAPI),
		confirmations: service.NewConfirmationService(time.Minute),
	}
	permissions := service.NewPermissionService(f.permissionAPI, nil, 0)
	f.service = service.NewBrowserService(browser.NewRegistry(), f.folders, f.files, permissions, f.confirmations)
	return f
}

func TestBrowserService_OpenAndEnter(t *testing.T) {
	f := newBrowserFixture()
	ctx := context.Background()

	f.folders.On("FolderTree", mock.Anything, "org-1").
		Return([]model.Folder{{ID: "f1", Name: "Finance"}}, nil).Once()
	f.folders.On("FolderContent", mock.Anything, "f1").
		Return(&model.FolderContent{
			Folder:     &model.Folder{ID: "f1", Name: "Finance"},
			Subfolders: []model.Folder{{ID: "f2", Name: "2024"}},
			Files:      []model.File{{ID: "file-1", DisplayName: "report.pdf"}},
		}, nil).Once()

	state, err := f.service.Open(ctx, adminClaims, "s", "org-1")
	require.NoError(t, err)
	assert.Equal(t, "Root", state.Path())
	assert.False(t, state.Loading)
	assert.Equal(t, model.AccessManage, state.Access)
	require.Len(t, state.Content.Subfolders, 1)

	state, err = f.service.Enter(ctx, adminClaims, "s", "f1")
	require.NoError(t, err)
	assert.Equal(t, "Root/Finance", state.Path())
	assert.Equal(t, "f1", state.CurrentFolderID())
	assert.Len(t, state.Content.Files, 1)

	f.folders.AssertExpectations(t)
	f.permissionAPI.AssertNotCalled(t, "GetFolderPermission", mock.Anything, mock.Anything, mock.Anything)
}

func TestBrowserService_NoAccessBlocksContent(t *testing.T) {
	f := newBrowserFixture()
	ctx := context.Background()

	f.folders.On("FolderTree", mock.Anything, "org-1").Return([]model.Folder{{ID: "secret", Name: "Secret"}}, nil)
	f.permissionAPI.On("GetFolderPermission", mock.Anything, "user-1", "secret").Return(nil, nil)

	_, err := f.service.Open(ctx, userClaims, "s", "org-1")
	require.NoError(t, err)

	state, err := f.service.Enter(ctx, userClaims, "s", "secret")
	require.NoError(t, err)

	assert.Equal(t, model.AccessNone, state.Access)
	assert.Nil(t, state.Content)
	assert.Equal(t, "Você não tem permissão para acessar esta pasta", state.LoadError)
	f.folders.AssertNotCalled(t, "FolderContent", mock.Anything, "secret")
}

func TestBrowserService_LoadErrorKeepsAPIMessage(t *testing.T) {
	f := newBrowserFixture()
	f.folders.On("FolderTree", mock.Anything, "org-1").
		Return(nil, &apiclient.APIError{StatusCode: 404, Message: "Organização não encontrada"})

	state, err := f.service.Open(context.Background(), adminClaims, "s", "org-1")

	require.NoError(t, err)
	assert.False(t, state.Loading)
	assert.Equal(t, "Organização não encontrada", state.LoadError)
}

func TestBrowserService_OpenForeignOrganization(t *testing.T) {
	f := newBrowserFixture()

	_, err := f.service.Open(context.Background(), userClaims, "s", "org-2")

	var forbidden *model.ForbiddenError
	assert.ErrorAs(t, err, &forbidden)
	f.folders.AssertNotCalled(t, "FolderTree", mock.Anything, mock.Anything)
}

func TestBrowserService_Dispatch(t *testing.T) {
	f := newBrowserFixture()

	_, err := f.service.Dispatch("s", browser.Refresh{})
	var validationErr *model.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	state, err := f.service.Dispatch("s", browser.ToggleExpanded{FolderID: "f1"})
	require.NoError(t, err)
	assert.True(t, state.IsExpanded("f1"))
}

func TestBrowserService_CreateAndRenameFolder(t *testing.T) {
	f := newBrowserFixture()
	ctx := context.Background()

	f.folders.On("FolderTree", mock.Anything, "org-1").Return([]model.Folder{}, nil)
	_, err := f.service.Open(ctx, adminClaims, "s", "org-1")
	require.NoError(t, err)

	f.folders.On("CreateFolder", mock.Anything, apiclient.CreateFolderInput{Name: "Atas", OrganizationID: "org-1"}).
		Return(&model.Folder{ID: "new", Name: "Atas"}, nil).Once()
	state, err := f.service.CreateFolder(ctx, adminClaims, "s", "  Atas ")
	require.NoError(t, err)
	require.Len(t, state.Content.Subfolders, 1)

	f.folders.On("RenameFolder", mock.Anything, "new", "Atas 2024").
		Return(&model.Folder{ID: "new", Name: "Atas 2024"}, nil).Once()
	state, err = f.service.RenameFolder(ctx, adminClaims, "s", "new", "Atas 2024")
	require.NoError(t, err)
	assert.Equal(t, "Atas 2024", state.Content.Subfolders[0].Name)

	_, err = f.service.CreateFolder(ctx, adminClaims, "s", "a/b")
	var validationErr *model.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	f.folders.AssertExpectations(t)
}

func TestBrowserService_DeleteFolderRequiresConfirmation(t *testing.T) {
	f := newBrowserFixture()
	ctx := context.Background()

	f.folders.On("FolderTree", mock.Anything, "org-1").Return([]model.Folder{{ID: "old", Name: "Old"}}, nil)
	_, err := f.service.Open(ctx, adminClaims, "s", "org-1")
	require.NoError(t, err)

	_, err = f.service.DeleteFolder(ctx, adminClaims, "s", "old", "forged")
	require.Error(t, err)
	f.folders.AssertNotCalled(t, "DeleteFolder", mock.Anything, mock.Anything)

	confirmation, err := f.confirmations.Request(adminClaims.UserUUID, service.ConfirmDeleteFolder, "old")
	require.NoError(t, err)

	f.folders.On("DeleteFolder", mock.Anything, "old").Return(nil).Once()
	state, err := f.service.DeleteFolder(ctx, adminClaims, "s", "old", confirmation.Token)
	require.NoError(t, err)
	assert.Empty(t, state.Content.Subfolders)

	_, err = f.service.DeleteFolder(ctx, adminClaims, "s", "old", confirmation.Token)
	assert.Error(t, err)
	f.folders.AssertNumberOfCalls(t, "DeleteFolder", 1)
}

func TestBrowserService_Download(t *testing.T) {
	f := newBrowserFixture()
	ctx := context.Background()

	f.permissionAPI.On("GetFolderPermission", mock.Anything, "user-1", "f1").
		Return(&model.Permission{AccessLevel: model.AccessViewDownload}, nil)
	f.folders.On("FolderContent", mock.Anything, "f1").
		Return(&model.FolderContent{Files: []model.File{{ID: "file-1"}}}, nil)
	f.files.On("DownloadFile", mock.Anything, "file-1").Return(&apiclient.Download{ContentType: "application/pdf"}, nil)

	download, err := f.service.Download(ctx, userClaims, "f1", "file-1")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", download.ContentType)

	_, err = f.service.Download(ctx, userClaims, "f1", "file-from-elsewhere")
	var notFound *model.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestBrowserService_CanceledLoadLeavesNewerState(t *testing.T) {
	f := newBrowserFixture()
	ctx := context.Background()

	f.folders.On("FolderTree", mock.Anything, "org-1").Return([]model.Folder{{ID: "slow"}, {ID: "fast", Name: "Fast"}}, nil)
	_, err := f.service.Open(ctx, adminClaims, "s", "org-1")
	require.NoError(t, err)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	f.folders.On("FolderContent", mock.Anything, "slow").Return(nil, context.Canceled)

	state, err := f.service.Enter(canceled, adminClaims, "s", "slow")
	require.NoError(t, err)
	assert.True(t, state.Loading)
	assert.Empty(t, state.LoadError)
}
