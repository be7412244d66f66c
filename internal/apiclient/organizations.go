package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"docs-admin-console/internal/model"
)

func (c *Client) GetOrganization(ctx context.Context, organizationID string) (*model.Organization, error) {
	var organization model.Organization
	if err := c.do(ctx, http.MethodGet, "/api/entities/"+url.PathEscape(organizationID), nil, nil, &organization); err != nil {
		return nil, err
	}
	return &organization, nil
}

func (c *Client) DeleteOrganization(ctx context.Context, organizationID string) error {
	return c.do(ctx, http.MethodDelete, "/api/entities/"+url.PathEscape(organizationID), nil, nil, nil)
}

func (c *Client) ListOrganizationUsers(ctx context.Context, organizationID string) ([]model.User, error) {
	query := url.Values{}
	query.Set("organization_id", organizationID)
	var users []model.User
	err := c.do(ctx, http.MethodGet, "/api/users", query, nil, &users)
	return users, err
}

func (c *Client) ListPayments(ctx context.Context, organizationID string) ([]model.Payment, error) {
	query := url.Values{}
	query.Set("organization_id", organizationID)
	var payments []model.Payment
	err := c.do(ctx, http.MethodGet, "/api/payments", query, nil, &payments)
	return payments, err
}

// GetFolderPermission : nil без ошибки, если записи о правах нет
func (c *Client) GetFolderPermission(ctx context.Context, userID, folderID string) (*model.Permission, error) {
	query := url.Values{}
	query.Set("user_id", userID)
	query.Set("folder_id", folderID)

	var permission *model.Permission
	err := c.do(ctx, http.MethodGet, "/api/users/get-folder-or-file-permission", query, nil, &permission)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return permission, nil
}

func (c *Client) CreateOrUpdatePermission(ctx context.Context, permission model.Permission) error {
	return c.do(ctx, http.MethodPost, "/api/users/create-or-update-permission", nil, permission, nil)
}

// GetReport : форма отчёта определяется API, консоль отдаёт его как есть
func (c *Client) GetReport(ctx context.Context, kind model.ReportKind, organizationID string) (json.RawMessage, error) {
	query := url.Values{}
	if organizationID != "" {
		query.Set("organization_id", organizationID)
	}
	var report json.RawMessage
	err := c.do(ctx, http.MethodGet, "/api/reports/"+url.PathEscape(string(kind)), query, nil, &report)
	return report, err
}
