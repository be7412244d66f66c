package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"docs-admin-console/internal/apiclient"
	"docs-admin-console/internal/browser"
	"docs-admin-console/internal/model"
	"docs-admin-console/internal/ports"
	"docs-admin-console/internal/security"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// BrowserService : навигация по папкам организации. Состояние живёт в browser.Store
// одной сессии, сервис только загружает данные и применяет к нему команды.
type BrowserService struct {
	registry      *browser.Registry
	folders       ports.FolderAPI
	files         ports.FileAPI
	permissions   *PermissionService
	confirmations *ConfirmationService
}

func NewBrowserService(registry *browser.Registry, folders ports.FolderAPI, files ports.FileAPI,
	permissions *PermissionService, confirmations *ConfirmationService) *BrowserService {
	return &BrowserService{
		registry:      registry,
		folders:       folders,
		files:         files,
		permissions:   permissions,
		confirmations: confirmations,
	}
}

// SessionKey : одна сессия проводника на пользователя и вкладку
func SessionKey(claims *security.Claims, tab string) string {
	if tab == "" {
		tab = "default"
	}
	return claims.UserUUID + ":" + tab
}

func (s *BrowserService) State(session string) browser.State {
	return s.registry.Get(session).Snapshot()
}

func (s *BrowserService) Open(ctx context.Context, claims *security.Claims, session, organizationID string) (browser.State, error) {
	if err := s.permissions.RequireOrganization(claims, organizationID); err != nil {
		return s.State(session), err
	}
	return s.navigate(ctx, claims, session, browser.OpenOrganization{OrganizationID: organizationID})
}

func (s *BrowserService) Enter(ctx context.Context, claims *security.Claims, session, folderID string) (browser.State, error) {
	return s.navigate(ctx, claims, session, browser.Enter{FolderID: folderID})
}

func (s *BrowserService) NavigateTo(ctx context.Context, claims *security.Claims, session string, frames []browser.Frame) (browser.State, error) {
	return s.navigate(ctx, claims, session, browser.NavigateTo{Frames: frames})
}

func (s *BrowserService) JumpTo(ctx context.Context, claims *security.Claims, session string, index int) (browser.State, error) {
	return s.navigate(ctx, claims, session, browser.JumpTo{Index: index})
}

func (s *BrowserService) GoUp(ctx context.Context, claims *security.Claims, session string) (browser.State, error) {
	return s.navigate(ctx, claims, session, browser.GoUp{})
}

func (s *BrowserService) Refresh(ctx context.Context, claims *security.Claims, session string) (browser.State, error) {
	return s.navigate(ctx, claims, session, browser.Refresh{})
}

// Dispatch : команды выделения и раскрытия дерева, без обращения к API
func (s *BrowserService) Dispatch(session string, cmd browser.Command) (browser.State, error) {
	if browser.IsNavigation(cmd) {
		return s.State(session), &model.ValidationError{Message: "Comando de navegação não permitido aqui"}
	}
	return s.registry.Get(session).Dispatch(cmd)
}

// Children : ленивое дерево папок для выбора папки назначения
func (s *BrowserService) Children(ctx context.Context, claims *security.Claims, organizationID, folderID string) ([]model.Folder, error) {
	if err := s.permissions.RequireOrganization(claims, organizationID); err != nil {
		return nil, err
	}
	content, err := s.fetchContent(ctx, organizationID, folderID)
	if err != nil {
		return nil, err
	}
	return content.Subfolders, nil
}

func (s *BrowserService) navigate(ctx context.Context, claims *security.Claims, session string, cmd browser.Command) (browser.State, error) {
	store := s.registry.Get(session)

	loadCtx, cancel, state, err := store.Navigate(ctx, cmd)
	if err != nil {
		return state, err
	}
	defer cancel()

	return s.load(loadCtx, store, claims, state), nil
}

// load : права и содержимое для поколения state.Generation. Если пользователь
// успел уйти дальше, результат отбрасывается и возвращается актуальное состояние.
func (s *BrowserService) load(ctx context.Context, store *browser.Store, claims *security.Claims, state browser.State) browser.State {
	generation := state.Generation
	folderID := state.CurrentFolderID()

	level, err := s.permissions.Resolve(ctx, claims, folderID)
	if err != nil {
		return s.fail(store, generation, err)
	}
	if _, err := store.Dispatch(browser.AccessResolved{Generation: generation, Level: level}); errors.Is(err, model.ErrStale) {
		return store.Snapshot()
	}

	if !level.Allows(model.ActionView) {
		return s.fail(store, generation, &model.ForbiddenError{Message: forbiddenMessage(model.ActionView)})
	}

	content, err := s.fetchContent(ctx, state.OrganizationID, folderID)
	if err != nil {
		return s.fail(store, generation, err)
	}

	next, err := store.Dispatch(browser.ContentLoaded{Generation: generation, Content: content})
	if errors.Is(err, model.ErrStale) {
		return store.Snapshot()
	}
	return next
}

func (s *BrowserService) fail(store *browser.Store, generation uint64, err error) browser.State {
	if errors.Is(err, context.Canceled) {
		return store.Snapshot()
	}

	log.Printf("[BrowserService] ошибка загрузки содержимого: %v", err)
	next, dispatchErr := store.Dispatch(browser.ContentFailed{Generation: generation, Message: userMessage(err)})
	if dispatchErr != nil {
		return store.Snapshot()
	}
	return next
}

// fetchContent : корень организации это список её корневых папок
func (s *BrowserService) fetchContent(ctx context.Context, organizationID, folderID string) (*model.FolderContent, error) {
	if folderID == "" {
		roots, err := s.folders.FolderTree(ctx, organizationID)
		if err != nil {
			return nil, err
		}
		return &model.FolderContent{Subfolders: roots, Files: []model.File{}}, nil
	}
	return s.folders.FolderContent(ctx, folderID)
}

func (s *BrowserService) CreateFolder(ctx context.Context, claims *security.Claims, session, name string) (browser.State, error) {
	store := s.registry.Get(session)
	state := store.Snapshot()

	name = strings.TrimSpace(name)
	if err := validateFolderName(name); err != nil {
		return state, err
	}
	if err := s.requireOpen(state); err != nil {
		return state, err
	}
	if _, err := s.permissions.Require(ctx, claims, state.CurrentFolderID(), model.ActionManage); err != nil {
		return state, err
	}

	input := apiclient.CreateFolderInput{Name: name, OrganizationID: state.OrganizationID}
	if parentID := state.CurrentFolderID(); parentID != "" {
		input.ParentID = &parentID
	}

	folder, err := s.folders.CreateFolder(ctx, input)
	if err != nil {
		return state, err
	}
	if folder.ParentID == nil && input.ParentID != nil {
		folder.ParentID = input.ParentID
	}

	log.Printf("[BrowserService] папка %s создана в %s", folder.ID, state.Path())
	return store.Dispatch(browser.FolderCreated{Folder: *folder})
}

func (s *BrowserService) RenameFolder(ctx context.Context, claims *security.Claims, session, folderID, name string) (browser.State, error) {
	store := s.registry.Get(session)
	state := store.Snapshot()

	name = strings.TrimSpace(name)
	if err := validateFolderName(name); err != nil {
		return state, err
	}
	if err := s.requireOpen(state); err != nil {
		return state, err
	}
	if _, err := s.permissions.Require(ctx, claims, state.CurrentFolderID(), model.ActionManage); err != nil {
		return state, err
	}

	folder, err := s.folders.RenameFolder(ctx, folderID, name)
	if err != nil {
		return state, err
	}
	if folder.ID == "" {
		folder.ID = folderID
	}
	if folder.Name == "" {
		folder.Name = name
	}

	log.Printf("[BrowserService] папка %s переименована", folderID)
	return store.Dispatch(browser.FolderRenamed{Folder: *folder})
}

// DeleteFolder : без действующего подтверждения запрос в API не уходит
func (s *BrowserService) DeleteFolder(ctx context.Context, claims *security.Claims, session, folderID, confirmToken string) (browser.State, error) {
	store := s.registry.Get(session)
	state := store.Snapshot()

	if err := s.confirmations.Consume(claims.UserUUID, ConfirmDeleteFolder, folderID, confirmToken); err != nil {
		return state, err
	}
	if err := s.requireOpen(state); err != nil {
		return state, err
	}
	if _, err := s.permissions.Require(ctx, claims, state.CurrentFolderID(), model.ActionManage); err != nil {
		return state, err
	}

	if err := s.folders.DeleteFolder(ctx, folderID); err != nil {
		return state, err
	}

	log.Printf("[BrowserService] папка %s удалена", folderID)
	return store.Dispatch(browser.ItemsRemoved{FolderIDs: []string{folderID}})
}

// Download : файл должен лежать в папке, на которую проверяются права
func (s *BrowserService) Download(ctx context.Context, claims *security.Claims, folderID, fileID string) (*apiclient.Download, error) {
	if folderID == "" || fileID == "" {
		return nil, &model.ValidationError{Message: "Pasta e arquivo são obrigatórios"}
	}
	if _, err := s.permissions.Require(ctx, claims, folderID, model.ActionDownload); err != nil {
		return nil, err
	}

	content, err := s.folders.FolderContent(ctx, folderID)
	if err != nil {
		return nil, err
	}
	found := false
	for _, file := range content.Files {
		if file.ID == fileID {
			found = true
			break
		}
	}
	if !found {
		return nil, &model.NotFoundError{Message: "Arquivo não encontrado"}
	}

	return s.files.DownloadFile(ctx, fileID)
}

func (s *BrowserService) requireOpen(state browser.State) error {
	if state.OrganizationID == "" {
		return &model.ValidationError{Message: "Nenhuma organização aberta"}
	}
	return nil
}

func validateFolderName(name string) error {
	err := validation.Validate(name,
		validation.Required.Error("Nome da pasta é obrigatório"),
		validation.RuneLength(1, 255).Error("Nome da pasta deve ter até 255 caracteres"),
		validation.By(func(value interface{}) error {
			if strings.Contains(value.(string), "/") {
				return validation.NewError("folder_name", "Nome da pasta não pode conter \"/\"")
			}
			return nil
		}),
	)
	return validationError(err)
}

// userMessage : сообщение ошибки, которое можно показать в состоянии проводника
func userMessage(err error) string {
	var httpErr model.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Error()
	}
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return model.GenericErrorMessage
}
