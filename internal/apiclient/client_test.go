package apiclient_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"docs-admin-console/internal/apiclient"
	"docs-admin-console/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, handler http.HandlerFunc, serviceToken string) *apiclient.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return apiclient.New(server.URL+"/", 5*time.Second, serviceToken)
}

func TestClient_DecodesErrorBodies(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantMessage string
	}{
		{
			name:        "message строкой",
			status:      http.StatusConflict,
			contentType: "application/json",
			body:        `{"message":"Curso já existe"}`,
			wantMessage: "Curso já existe",
		},
		{
			name:        "message массивом",
			status:      http.StatusBadRequest,
			contentType: "application/json",
			body:        `{"message":["name should not be empty","email must be an email"]}`,
			wantMessage: "name should not be empty; email must be an email",
		},
		{
			name:        "только error",
			status:      http.StatusForbidden,
			contentType: "application/json",
			body:        `{"error":"Acesso negado"}`,
			wantMessage: "Acesso negado",
		},
		{
			name:        "message другого типа, берётся error",
			status:      http.StatusUnprocessableEntity,
			contentType: "application/json",
			body:        `{"message":{"field":"name"},"error":"Unprocessable Entity"}`,
			wantMessage: "Unprocessable Entity",
		},
		{
			name:        "не JSON",
			status:      http.StatusBadGateway,
			contentType: "text/html",
			body:        "<html>upstream down</html>",
			wantMessage: "Bad Gateway",
		},
		{
			name:        "пустое тело",
			status:      http.StatusInternalServerError,
			wantMessage: "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				}
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}, "")

			course, err := client.GetCourse(context.Background(), "c1")

			assert.Nil(t, course)
			var apiErr *apiclient.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.status == http.StatusNotFound, apiclient.IsNotFound(err))
		})
	}
}

func TestClient_GetFolderPermission(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    *model.Permission
		wantErr bool
	}{
		{
			name:   "есть право",
			status: http.StatusOK,
			body:   `{"folder_id":"f1","target_id":"user-1","target_type":"USER","access_level":"UPLOAD"}`,
			want:   &model.Permission{FolderID: "f1", TargetID: "user-1", TargetType: "USER", AccessLevel: model.AccessUpload},
		},
		{
			name:   "404 означает отсутствие права",
			status: http.StatusNotFound,
			body:   `{"message":"Permission not found"}`,
		},
		{
			name:    "другая ошибка пробрасывается",
			status:  http.StatusInternalServerError,
			body:    `{"message":"boom"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/users/get-folder-or-file-permission", r.URL.Path)
				assert.Equal(t, "user-1", r.URL.Query().Get("user_id"))
				assert.Equal(t, "f1", r.URL.Query().Get("folder_id"))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}, "")

			permission, err := client.GetFolderPermission(context.Background(), "user-1", "f1")

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, permission)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, permission)
		})
	}
}

func TestClient_Authorization(t *testing.T) {
	tests := []struct {
		name         string
		serviceToken string
		withToken    bool
		userToken    string
		want         string
	}{
		{name: "токен пользователя важнее сервисного", serviceToken: "service", withToken: true, userToken: "user-jwt", want: "Bearer user-jwt"},
		{name: "без пользователя сервисный токен", serviceToken: "service", want: "Bearer service"},
		{name: "пустой токен пользователя", serviceToken: "service", withToken: true, want: "Bearer service"},
		{name: "без токенов заголовка нет", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make(chan string, 1)
			client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				got <- r.Header.Get("Authorization")
				w.Header().Set("Content-Type", "application/json")
				io.WriteString(w, `{"id":"c1"}`)
			}, tt.serviceToken)

			ctx := context.Background()
			if tt.withToken {
				ctx = apiclient.WithToken(ctx, tt.userToken)
			}
			_, err := client.GetCourse(ctx, "c1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, <-got)
		})
	}
}

func TestClient_UploadFilesMultipart(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/files/upload/f%201", r.URL.EscapedPath())
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer r.MultipartForm.RemoveAll()

		assert.Equal(t, []string{"a.pdf", `relatório "final".docx`}, r.MultipartForm.Value["displayNames"])
		headers := r.MultipartForm.File["files"]
		if !assert.Len(t, headers, 2) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		bodies := make([]string, 0, len(headers))
		for _, header := range headers {
			file, err := header.Open()
			if !assert.NoError(t, err) {
				continue
			}
			content, _ := io.ReadAll(file)
			file.Close()
			bodies = append(bodies, string(content))
		}
		assert.Equal(t, []string{"%PDF-1.7", "docx"}, bodies)
		assert.Equal(t, "application/pdf", headers[0].Header.Get("Content-Type"))
		assert.Equal(t, "application/octet-stream", headers[1].Header.Get("Content-Type"))
		assert.Equal(t, `relatório "final".docx`, headers[1].Filename)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `[{"id":"file-1","displayName":"a.pdf"},{"id":"file-2","displayName":"relatório"}]`)
	}, "service")

	files, err := client.UploadFiles(context.Background(), "f 1", []apiclient.UploadPart{
		{FieldName: "files", FileName: "a.pdf", ContentType: "application/pdf", Reader: strings.NewReader("%PDF-1.7")},
		{FieldName: "files", FileName: `relatório "final".docx`, Reader: strings.NewReader("docx")},
	})

	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "file-1", files[0].ID)
	assert.Equal(t, "a.pdf", files[0].DisplayName)
}

func TestClient_UploadFilesReaderFailure(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusBadRequest)
	}, "")

	_, err := client.UploadFiles(context.Background(), "f1", []apiclient.UploadPart{
		{FieldName: "files", FileName: "a.pdf", Reader: failingReader{}},
	})
	assert.Error(t, err)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}
