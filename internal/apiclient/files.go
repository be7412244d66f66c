package apiclient

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"docs-admin-console/internal/model"
)

// UploadPart : один файл multipart-запроса
type UploadPart struct {
	FieldName   string
	FileName    string
	ContentType string
	Reader      io.Reader
}

type FormField struct {
	Name  string
	Value string
}

type Download struct {
	Body               io.ReadCloser
	ContentType        string
	ContentDisposition string
	ContentLength      int64
}

type FileSearchQuery struct {
	OrganizationID string
	FolderID       string
	Query          string
}

func (c *Client) MoveFile(ctx context.Context, fileID, destinationID string) error {
	body := map[string]string{"folder_id": destinationID}
	return c.do(ctx, http.MethodPut, "/api/files/move/"+url.PathEscape(fileID), nil, body, nil)
}

func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	return c.do(ctx, http.MethodDelete, "/api/files/"+url.PathEscape(fileID), nil, nil, nil)
}

// DownloadFile : тело ответа закрывает вызывающий
func (c *Client) DownloadFile(ctx context.Context, fileID string) (*Download, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/files/download/"+url.PathEscape(fileID), nil, nil, "")
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "*/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("[APIClient] скачивание файла %s: %w", fileID, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}

	return &Download{
		Body:               resp.Body,
		ContentType:        resp.Header.Get("Content-Type"),
		ContentDisposition: resp.Header.Get("Content-Disposition"),
		ContentLength:      resp.ContentLength,
	}, nil
}

// UploadFiles : все файлы уходят одним multipart POST
func (c *Client) UploadFiles(ctx context.Context, folderID string, parts []UploadPart) ([]model.File, error) {
	fields := make([]FormField, 0, len(parts))
	for _, part := range parts {
		fields = append(fields, FormField{Name: "displayNames", Value: part.FileName})
	}

	var files []model.File
	err := c.postMultipart(ctx, "/api/files/upload/"+url.PathEscape(folderID), fields, parts, &files)
	return files, err
}

func (c *Client) CreateExpirationAlert(ctx context.Context, alert model.ExpirationAlert) (*model.ExpirationAlert, error) {
	var created model.ExpirationAlert
	if err := c.do(ctx, http.MethodPost, "/api/expiration-alerts/create", nil, alert, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) SearchFiles(ctx context.Context, query FileSearchQuery) ([]model.SearchHit, error) {
	values := url.Values{}
	values.Set("organization_id", query.OrganizationID)
	values.Set("q", query.Query)
	if query.FolderID != "" {
		values.Set("folder_id", query.FolderID)
	}

	var hits []model.SearchHit
	err := c.do(ctx, http.MethodGet, "/api/files/search", values, nil, &hits)
	return hits, err
}

// postMultipart : тело пишется в pipe из горутины, файлы не буферизуются целиком
func (c *Client) postMultipart(ctx context.Context, path string, fields []FormField, parts []UploadPart, out interface{}) error {
	pipeReader, pipeWriter := io.Pipe()
	writer := multipart.NewWriter(pipeWriter)

	go func() {
		pipeWriter.CloseWithError(writeMultipart(writer, fields, parts))
	}()

	req, err := c.newRequest(ctx, http.MethodPost, path, nil, pipeReader, writer.FormDataContentType())
	if err != nil {
		pipeReader.CloseWithError(err)
		return err
	}

	err = c.send(req, out)
	pipeReader.Close()
	return err
}

func writeMultipart(writer *multipart.Writer, fields []FormField, parts []UploadPart) error {
	for _, field := range fields {
		if err := writer.WriteField(field.Name, field.Value); err != nil {
			return fmt.Errorf("[APIClient] ошибка записи поля %s: %w", field.Name, err)
		}
	}

	for _, part := range parts {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(part.FieldName), escapeQuotes(part.FileName)))
		contentType := part.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)

		dst, err := writer.CreatePart(header)
		if err != nil {
			return fmt.Errorf("[APIClient] ошибка создания части %s: %w", part.FileName, err)
		}
		if _, err := io.Copy(dst, part.Reader); err != nil {
			return fmt.Errorf("[APIClient] ошибка записи файла %s: %w", part.FileName, err)
		}
	}

	return writer.Close()
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
