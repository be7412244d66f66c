package requestresponse

import (
	"docs-admin-console/internal/browser"
	"docs-admin-console/internal/model"
)

// BrowserStateResponse : снимок проводника, который рисует клиент
type BrowserStateResponse struct {
	OrganizationID  string               `json:"organization_id" example:"org-1"`
	Path            string               `json:"path" example:"Root/Finance/2024"`
	Breadcrumbs     []browser.Frame      `json:"breadcrumbs"`
	CurrentFolderID string               `json:"current_folder_id,omitempty"`
	AtRoot          bool                 `json:"at_root"`
	Content         *model.FolderContent `json:"content"`
	ContentBytes    int64                `json:"content_bytes" example:"1048576"`
	Loading         bool                 `json:"loading"`
	LoadError       string               `json:"load_error,omitempty"`
	Access          model.AccessLevel    `json:"access,omitempty" example:"UPLOAD"`
	Can             AccessFlags          `json:"can"`
	Expanded        []string             `json:"expanded"`
	SelectedFiles   []string             `json:"selected_files"`
	SelectedFolders []string             `json:"selected_folders"`
	SelectionDigest string               `json:"selection_digest,omitempty" example:"9f86d081884c7d65"`
	Generation      uint64               `json:"generation" example:"3"`
}

type AccessFlags struct {
	View     bool `json:"view"`
	Download bool `json:"download"`
	Upload   bool `json:"upload"`
	Manage   bool `json:"manage"`
}

func BrowserStateFromModel(state browser.State) BrowserStateResponse {
	breadcrumbs := state.Frames
	if breadcrumbs == nil {
		breadcrumbs = []browser.Frame{}
	}
	var contentBytes int64
	if state.Content != nil {
		for _, file := range state.Content.Files {
			contentBytes += file.SizeBytes()
		}
	}
	return BrowserStateResponse{
		OrganizationID:  state.OrganizationID,
		Path:            state.Path(),
		Breadcrumbs:     breadcrumbs,
		CurrentFolderID: state.CurrentFolderID(),
		AtRoot:          state.AtRoot(),
		Content:         state.Content,
		ContentBytes:    contentBytes,
		Loading:         state.Loading,
		LoadError:       state.LoadError,
		Access:          state.Access,
		Can: AccessFlags{
			View:     state.Access.Allows(model.ActionView),
			Download: state.Access.Allows(model.ActionDownload),
			Upload:   state.Access.Allows(model.ActionUpload),
			Manage:   state.Access.Allows(model.ActionManage),
		},
		Expanded:        state.ExpandedIDs(),
		SelectedFiles:   state.SelectedFileIDs(),
		SelectedFolders: state.SelectedFolderIDs(),
		SelectionDigest: state.SelectionDigest(),
		Generation:      state.Generation,
	}
}

type OpenRequest struct {
	OrganizationID string `json:"organization_id" example:"org-1"`
}

type EnterRequest struct {
	FolderID string `json:"folder_id" example:"f1"`
}

// NavigateRequest : переход по известной цепочке папок от корня
type NavigateRequest struct {
	Frames []browser.Frame `json:"frames"`
}

// JumpRequest : -1 означает корень
type JumpRequest struct {
	Index int `json:"index" example:"0"`
}

type ToggleRequest struct {
	ID string `json:"id" example:"f1"`
}

type FolderNameRequest struct {
	Name string `json:"name" example:"Contratos"`
}

type MoveRequest struct {
	DestinationID string `json:"destination_id" example:"f9"`
}

// BulkResponse : отчёт массовой операции и новое состояние проводника
type BulkResponse struct {
	Report interface{}          `json:"report"`
	State  BrowserStateResponse `json:"state"`
}

type PermissionRequest struct {
	FolderID    string            `json:"folder_id" example:"f1"`
	TargetID    string            `json:"target_id" example:"user-2"`
	TargetType  model.TargetType  `json:"target_type" example:"USER"`
	AccessLevel model.AccessLevel `json:"access_level" example:"DOWNLOAD"`
}

// AccessResponse : эффективный уровень доступа к папке
type AccessResponse struct {
	FolderID string            `json:"folder_id"`
	Access   model.AccessLevel `json:"access" example:"VIEW_ONLY"`
	Can      AccessFlags       `json:"can"`
}

func AccessFromLevel(folderID string, level model.AccessLevel) AccessResponse {
	return AccessResponse{
		FolderID: folderID,
		Access:   level,
		Can: AccessFlags{
			View:     level.Allows(model.ActionView),
			Download: level.Allows(model.ActionDownload),
			Upload:   level.Allows(model.ActionUpload),
			Manage:   level.Allows(model.ActionManage),
		},
	}
}

type RenameUploadRequest struct {
	DisplayName      *string                `json:"display_name,omitempty" example:"Contrato assinado.pdf"`
	Expiration       *ExpirationRequestBody `json:"expiration,omitempty"`
	RemoveExpiration bool                   `json:"remove_expiration,omitempty"`
}

type ExpirationRequestBody struct {
	AlertDate   string `json:"alert_date" example:"2026-12-31"`
	Description string `json:"description" example:"Renovar contrato"`
}

// PreviewResponse : временная ссылка на файл в промежуточном хранилище
type PreviewResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in" example:"300"`
}
