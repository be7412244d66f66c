package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"docs-admin-console/internal/model"
)

type CreateFolderInput struct {
	Name           string  `json:"name"`
	ParentID       *string `json:"parent_id,omitempty"`
	OrganizationID string  `json:"organization_id"`
}

// FolderTree : корневые папки организации
func (c *Client) FolderTree(ctx context.Context, organizationID string) ([]model.Folder, error) {
	var folders []model.Folder
	err := c.do(ctx, http.MethodGet, "/api/folders/organization/"+url.PathEscape(organizationID), nil, nil, &folders)
	return folders, err
}

func (c *Client) FolderContent(ctx context.Context, folderID string) (*model.FolderContent, error) {
	var content model.FolderContent
	if err := c.do(ctx, http.MethodGet, "/api/folders/folder-content/"+url.PathEscape(folderID), nil, nil, &content); err != nil {
		return nil, err
	}
	return &content, nil
}

func (c *Client) CreateFolder(ctx context.Context, input CreateFolderInput) (*model.Folder, error) {
	var folder model.Folder
	if err := c.do(ctx, http.MethodPost, "/api/folders/create", nil, input, &folder); err != nil {
		return nil, err
	}
	return &folder, nil
}

func (c *Client) RenameFolder(ctx context.Context, folderID, name string) (*model.Folder, error) {
	var folder model.Folder
	body := map[string]string{"name": name}
	if err := c.do(ctx, http.MethodPut, "/api/folders/"+url.PathEscape(folderID), nil, body, &folder); err != nil {
		return nil, err
	}
	return &folder, nil
}

func (c *Client) DeleteFolder(ctx context.Context, folderID string) error {
	return c.do(ctx, http.MethodDelete, "/api/folders/"+url.PathEscape(folderID), nil, nil, nil)
}

func (c *Client) MoveFolder(ctx context.Context, folderID, destinationID string) error {
	body := map[string]string{"parent_id": destinationID}
	return c.do(ctx, http.MethodPut, "/api/folders/move/"+url.PathEscape(folderID), nil, body, nil)
}
