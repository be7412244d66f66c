package service_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"docs-admin-console/internal/apiclient"
	"docs-admin-console/internal/model"
	"docs-admin-console/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const megabyte = 1 << 20

var testLimits = service.UploadLimits{Folder: 10 * megabyte, TCC: 50 * megabyte}

func newUploadService(files *MockFileAPI, staging *service.MemoryStaging) *service.UploadService {
	permissions := service.NewPermissionService(new(MockPermissionAPI), nil, 0)
	return service.NewUploadService(staging, files, permissions, testLimits, "staging")
}

func dropped(name string, size int64) service.DroppedFile {
	return service.DroppedFile{Name: name, Size: size, Reader: strings.NewReader("content of " + name)}
}

func TestUploadLimits_Check(t *testing.T) {
	tests := []struct {
		name     string
		kind     service.UploadKind
		size     int64
		rejected bool
	}{
		{name: "папка на границе", kind: service.UploadToFolder, size: 10 * megabyte},
		{name: "папка больше потолка", kind: service.UploadToFolder, size: 10*megabyte + 1, rejected: true},
		{name: "ТСС 40 МБ", kind: service.UploadTCC, size: 40 * megabyte},
		{name: "ТСС на границе", kind: service.UploadTCC, size: 50 * megabyte},
		{name: "ТСС больше потолка", kind: service.UploadTCC, size: 50*megabyte + 1, rejected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.rejected, testLimits.Check(tt.kind, "f.pdf", tt.size) != nil)
		})
	}
}

func TestUploadLimits_RequestCeiling(t *testing.T) {
	assert.Equal(t, int64(10*megabyte*service.MaxDropFiles+megabyte), testLimits.RequestCeiling(service.UploadToFolder, service.MaxDropFiles))
	assert.Equal(t, int64(50*megabyte*service.MaxTCCFiles+megabyte), testLimits.RequestCeiling(service.UploadTCC, service.MaxTCCFiles))
}

func TestUploadService_DropRejectsOversizeFiles(t *testing.T) {
	staging := service.NewMemoryStaging()
	uploads := newUploadService(new(MockFileAPI), staging)

	session, err := uploads.Drop(context.Background(), adminClaims, "f1", []service.DroppedFile{
		dropped("small.pdf", 2*megabyte),
		dropped("huge.zip", 11*megabyte),
	})
	require.NoError(t, err)

	require.Len(t, session.Files, 1)
	assert.Equal(t, "small.pdf", session.Files[0].DisplayName)
	assert.Equal(t, "application/pdf", session.Files[0].ContentType)
	require.Len(t, session.Rejected, 1)
	assert.Equal(t, "huge.zip", session.Rejected[0].Name)
	assert.Equal(t, "O arquivo excede o limite de 10 MB", session.Rejected[0].Reason)
	assert.Equal(t, 1, staging.Len())

	name := "renamed.zip"
	_, err = uploads.Rename(adminClaims, session.ID, 1, service.RenameInput{DisplayName: &name})
	var notFound *model.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestUploadService_DropOnlyOversize(t *testing.T) {
	staging := service.NewMemoryStaging()
	uploads := newUploadService(new(MockFileAPI), staging)

	session, err := uploads.Drop(context.Background(), adminClaims, "f1", []service.DroppedFile{dropped("huge.zip", 12*megabyte)})

	require.NoError(t, err)
	assert.Equal(t, service.UploadRejected, session.State)
	assert.Empty(t, session.Files)
	assert.Equal(t, 0, staging.Len())
}

func TestUploadService_RenameValidation(t *testing.T) {
	uploads := newUploadService(new(MockFileAPI), service.NewMemoryStaging())
	session, err := uploads.Drop(context.Background(), adminClaims, "f1", []service.DroppedFile{dropped("a.pdf", 10)})
	require.NoError(t, err)

	blank := "   "
	_, err = uploads.Rename(adminClaims, session.ID, 0, service.RenameInput{DisplayName: &blank})
	var validationErr *model.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "Nome do arquivo é obrigatório", validationErr.Message)

	_, err = uploads.Rename(adminClaims, session.ID, 0, service.RenameInput{
		Expiration: &service.ExpirationInput{AlertDate: time.Now().AddDate(0, 0, -3), Description: "Renovar"},
	})
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "A data de alerta não pode estar no passado", validationErr.Message)

	_, err = uploads.Rename(adminClaims, session.ID, 0, service.RenameInput{
		Expiration: &service.ExpirationInput{AlertDate: time.Now().AddDate(0, 1, 0)},
	})
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "Descrição é obrigatória", validationErr.Message)

	_, err = uploads.Progress(userClaims, session.ID)
	var notFound *model.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestUploadService_CommitRejectsDuplicateNames(t *testing.T) {
	files := new(MockFileAPI)
	uploads := newUploadService(files, service.NewMemoryStaging())
	session, err := uploads.Drop(context.Background(), adminClaims, "f1", []service.DroppedFile{
		dropped("a.pdf", 10),
		dropped("b.pdf", 10),
	})
	require.NoError(t, err)

	name := "a.pdf"
	_, err = uploads.Rename(adminClaims, session.ID, 1, service.RenameInput{DisplayName: &name})
	require.NoError(t, err)

	_, err = uploads.Commit(context.Background(), adminClaims, session.ID)

	var conflict *model.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "Nomes de arquivo duplicados: a.pdf", conflict.Message)
	files.AssertNotCalled(t, "UploadFiles", mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadService_CommitFailureAllowsRetry(t *testing.T) {
	files := new(MockFileAPI)
	files.On("UploadFiles", mock.Anything, "f1", mock.Anything).
		Return(nil, &apiclient.APIError{StatusCode: 413, Message: "Armazenamento cheio"}).Once()
	uploads := newUploadService(files, service.NewMemoryStaging())
	session, err := uploads.Drop(context.Background(), adminClaims, "f1", []service.DroppedFile{dropped("a.pdf", 10)})
	require.NoError(t, err)

	_, err = uploads.Commit(context.Background(), adminClaims, session.ID)
	require.Error(t, err)

	progress, err := uploads.Progress(adminClaims, session.ID)
	require.NoError(t, err)
	assert.Equal(t, service.UploadRenaming, progress.State)
	assert.Equal(t, "Armazenamento cheio", progress.Error)
}

// fakeUpstream : запоминает порядок запросов к API
type fakeUpstream struct {
	mu       sync.Mutex
	requests []string
	alerts   []model.ExpirationAlert
	uploaded []string
}

func (f *fakeUpstream) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
}

func (f *fakeUpstream) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/files/upload/f1", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		reader, err := r.MultipartReader()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var names []string
		var response []model.File
		for {
			part, err := reader.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if part.FormName() == "displayNames" {
				value, _ := io.ReadAll(part)
				names = append(names, string(value))
				continue
			}
			body, _ := io.ReadAll(part)
			response = append(response, model.File{
				ID:          "id-" + part.FileName(),
				DisplayName: part.FileName(),
				Size:        strconv.Itoa(len(body)),
			})
		}

		f.mu.Lock()
		f.uploaded = names
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	})
	mux.HandleFunc("/api/expiration-alerts/create", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		var alert model.ExpirationAlert
		if err := json.NewDecoder(r.Body).Decode(&alert); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		f.mu.Lock()
		f.alerts = append(f.alerts, alert)
		f.mu.Unlock()
		alert.ID = "alert-1"
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(alert)
	})
	return mux
}

func TestUploadService_CommitCreatesOneAlertPerFlaggedFile(t *testing.T) {
	upstream := &fakeUpstream{}
	server := httptest.NewServer(upstream.handler())
	defer server.Close()

	client := apiclient.New(server.URL, 5*time.Second, "service-token")
	permissions := service.NewPermissionService(client, nil, 0)
	staging := service.NewMemoryStaging()
	uploads := service.NewUploadService(staging, client, permissions, testLimits, "staging")

	session, err := uploads.Drop(context.Background(), adminClaims, "f1", []service.DroppedFile{
		dropped("scan_001.pdf", 100),
		dropped("notes.txt", 50),
	})
	require.NoError(t, err)

	name := "report.pdf"
	alertDate := time.Now().AddDate(0, 6, 0).UTC().Truncate(time.Second)
	_, err = uploads.Rename(adminClaims, session.ID, 0, service.RenameInput{
		DisplayName: &name,
		Expiration:  &service.ExpirationInput{AlertDate: alertDate, Description: "Renovar contrato"},
	})
	require.NoError(t, err)

	done, err := uploads.Commit(context.Background(), adminClaims, session.ID)
	require.NoError(t, err)

	assert.Equal(t, service.UploadDone, done.State)
	assert.Equal(t, []string{"POST /api/files/upload/f1", "POST /api/expiration-alerts/create"}, upstream.requests)
	assert.Equal(t, []string{"report.pdf", "notes.txt"}, upstream.uploaded)

	require.Len(t, upstream.alerts, 1)
	assert.Equal(t, "id-report.pdf", upstream.alerts[0].FileID)
	assert.Equal(t, "Renovar contrato", upstream.alerts[0].Description)
	assert.True(t, alertDate.Equal(upstream.alerts[0].AlertDate))

	assert.Equal(t, "id-report.pdf", done.Files[0].FileID)
	assert.Equal(t, int64(len("content of scan_001.pdf")), done.Files[0].BytesSent)
	assert.Empty(t, done.Files[0].AlertError)
	assert.Equal(t, 0, staging.Len())

	_, err = uploads.Progress(adminClaims, session.ID)
	assert.Error(t, err)
}
