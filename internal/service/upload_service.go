package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"docs-admin-console/internal/apiclient"
	"docs-admin-console/internal/model"
	"docs-admin-console/internal/ports"
	"docs-admin-console/internal/security"
	"docs-admin-console/internal/util"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

type UploadKind string

const (
	UploadToFolder UploadKind = "folder"
	UploadTCC      UploadKind = "tcc"
)

// UploadLimits : потолок размера файла, файл больше потолка в очередь не попадает
type UploadLimits struct {
	Folder int64
	TCC    int64
}

func (l UploadLimits) Ceiling(kind UploadKind) int64 {
	if kind == UploadTCC {
		return l.TCC
	}
	return l.Folder
}

// Check : nil, если файл проходит по размеру
func (l UploadLimits) Check(kind UploadKind, name string, size int64) *RejectedFile {
	ceiling := l.Ceiling(kind)
	if size <= ceiling {
		return nil
	}
	return &RejectedFile{
		Name:   name,
		Size:   size,
		Reason: fmt.Sprintf("O arquivo excede o limite de %d MB", ceiling>>20),
	}
}

const (
	// MaxDropFiles : сколько файлов принимается за один запрос
	MaxDropFiles = 50
	// MaxTCCFiles : текст работы и протокол защиты
	MaxTCCFiles     = 2
	requestHeadroom = 1 << 20
)

// RequestCeiling : потолок тела multipart-запроса с files файлами, запас на поля формы и заголовки частей
func (l UploadLimits) RequestCeiling(kind UploadKind, files int) int64 {
	return l.Ceiling(kind)*int64(files) + requestHeadroom
}

type UploadState string

const (
	UploadRenaming  UploadState = "rename"
	UploadUploading UploadState = "uploading"
	UploadDone      UploadState = "done"
	UploadRejected  UploadState = "rejected"
)

type DroppedFile struct {
	Name        string
	Size        int64
	ContentType string
	Reader      io.Reader
}

type RejectedFile struct {
	Name   string `json:"name"`
	Size   int64  `json:"size"`
	Reason string `json:"reason"`
}

type ExpirationInput struct {
	AlertDate   time.Time `json:"alert_date"`
	Description string    `json:"description"`
}

type QueuedFile struct {
	Index        int              `json:"index"`
	OriginalName string           `json:"original_name"`
	DisplayName  string           `json:"display_name"`
	Size         int64            `json:"size"`
	ContentType  string           `json:"content_type"`
	Expiration   *ExpirationInput `json:"expiration,omitempty"`
	BytesSent    int64            `json:"bytes_sent"`
	FileID       string           `json:"file_id,omitempty"`
	AlertError   string           `json:"alert_error,omitempty"`

	stagingKey string
	progress   *util.ProgressReader
}

// UploadSession : drop -> rename -> upload -> done
type UploadSession struct {
	ID        string         `json:"id"`
	OwnerID   string         `json:"-"`
	FolderID  string         `json:"folder_id"`
	State     UploadState    `json:"state"`
	Files     []QueuedFile   `json:"files"`
	Rejected  []RejectedFile `json:"rejected"`
	Error     string         `json:"error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func (s *UploadSession) snapshot() *UploadSession {
	out := *s
	out.Files = make([]QueuedFile, len(s.Files))
	for i, file := range s.Files {
		if file.progress != nil {
			file.BytesSent = file.progress.BytesRead()
		}
		if file.Expiration != nil {
			expiration := *file.Expiration
			file.Expiration = &expiration
		}
		out.Files[i] = file
	}
	out.Rejected = append([]RejectedFile(nil), s.Rejected...)
	return &out
}

// RenameInput : nil поля не меняются
type RenameInput struct {
	DisplayName      *string          `json:"display_name,omitempty"`
	Expiration       *ExpirationInput `json:"expiration,omitempty"`
	RemoveExpiration bool             `json:"remove_expiration,omitempty"`
}

type UploadService struct {
	mu          sync.Mutex
	sessions    map[string]*UploadSession
	staging     ports.StagingStorage
	files       ports.FileAPI
	permissions *PermissionService
	limits      UploadLimits
	prefix      string
	now         func() time.Time
}

func NewUploadService(staging ports.StagingStorage, files ports.FileAPI, permissions *PermissionService,
	limits UploadLimits, prefix string) *UploadService {
	return &UploadService{
		sessions:    make(map[string]*UploadSession),
		staging:     staging,
		files:       files,
		permissions: permissions,
		limits:      limits,
		prefix:      strings.Trim(prefix, "/"),
		now:         time.Now,
	}
}

func (s *UploadService) Limits() UploadLimits {
	return s.limits
}

// Drop : файлы больше потолка отклоняются и не попадают ни в очередь, ни на шаг переименования
func (s *UploadService) Drop(ctx context.Context, claims *security.Claims, folderID string, dropped []DroppedFile) (*UploadSession, error) {
	if folderID == "" {
		return nil, &model.ValidationError{Message: "Pasta de destino é obrigatória"}
	}
	if len(dropped) == 0 {
		return nil, &model.ValidationError{Message: "Nenhum arquivo selecionado"}
	}
	if _, err := s.permissions.Require(ctx, claims, folderID, model.ActionUpload); err != nil {
		return nil, err
	}

	session := &UploadSession{
		ID:        uuid.New().String(),
		OwnerID:   claims.UserUUID,
		FolderID:  folderID,
		State:     UploadRenaming,
		Files:     []QueuedFile{},
		Rejected:  []RejectedFile{},
		CreatedAt: s.now(),
	}

	for _, file := range dropped {
		if rejected := s.limits.Check(UploadToFolder, file.Name, file.Size); rejected != nil {
			session.Rejected = append(session.Rejected, *rejected)
			continue
		}

		contentType := file.ContentType
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = util.ContentType(file.Name)
		}
		queued := QueuedFile{
			Index:        len(session.Files),
			OriginalName: file.Name,
			DisplayName:  file.Name,
			Size:         file.Size,
			ContentType:  contentType,
			stagingKey:   fmt.Sprintf("%s/%s/%d", s.prefix, session.ID, len(session.Files)),
		}
		if err := s.staging.Put(ctx, queued.stagingKey, file.Reader, file.Size, contentType); err != nil {
			s.cleanup(context.WithoutCancel(ctx), session)
			return nil, err
		}
		session.Files = append(session.Files, queued)
	}

	if len(session.Files) == 0 {
		session.State = UploadRejected
		return session.snapshot(), nil
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	log.Printf("[UploadService] сессия %s: принято %d, отклонено %d", session.ID, len(session.Files), len(session.Rejected))
	return session.snapshot(), nil
}

func (s *UploadService) Rename(claims *security.Claims, sessionID string, index int, input RenameInput) (*UploadSession, error) {
	if input.DisplayName != nil {
		name := strings.TrimSpace(*input.DisplayName)
		err := validation.Validate(name,
			validation.Required.Error("Nome do arquivo é obrigatório"),
			validation.RuneLength(1, 255).Error("Nome do arquivo deve ter até 255 caracteres"),
		)
		if err := validationError(err); err != nil {
			return nil, err
		}
		input.DisplayName = &name
	}
	if input.Expiration != nil {
		if err := s.validateExpiration(input.Expiration); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.session(claims, sessionID)
	if err != nil {
		return nil, err
	}
	if session.State != UploadRenaming {
		return nil, &model.ConflictError{Message: "O envio já foi iniciado"}
	}
	if index < 0 || index >= len(session.Files) {
		return nil, &model.NotFoundError{Message: "Arquivo não encontrado na fila"}
	}

	file := &session.Files[index]
	if input.DisplayName != nil {
		file.DisplayName = *input.DisplayName
	}
	if input.RemoveExpiration {
		file.Expiration = nil
	}
	if input.Expiration != nil {
		expiration := *input.Expiration
		expiration.Description = strings.TrimSpace(expiration.Description)
		file.Expiration = &expiration
	}

	return session.snapshot(), nil
}

func (s *UploadService) validateExpiration(expiration *ExpirationInput) error {
	today := s.now().Truncate(24 * time.Hour)
	err := validation.ValidateStruct(expiration,
		validation.Field(&expiration.AlertDate,
			validation.Required.Error("Data de alerta é obrigatória"),
			validation.Min(today).Error("A data de alerta não pode estar no passado"),
		),
		validation.Field(&expiration.Description,
			validation.Required.Error("Descrição é obrigatória"),
			validation.RuneLength(1, 500).Error("Descrição deve ter até 500 caracteres"),
		),
	)
	return validationError(err)
}

// Commit : один multipart POST на все файлы, затем ровно один запрос алерта на каждый
// файл с датой истечения. Файлы сопоставляются с ответом по отображаемому имени,
// поэтому одинаковые имена в одной сессии запрещены.
func (s *UploadService) Commit(ctx context.Context, claims *security.Claims, sessionID string) (*UploadSession, error) {
	s.mu.Lock()
	session, err := s.session(claims, sessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if session.State != UploadRenaming {
		s.mu.Unlock()
		return nil, &model.ConflictError{Message: "O envio já foi iniciado"}
	}
	if duplicates := duplicateNames(session.Files); len(duplicates) > 0 {
		s.mu.Unlock()
		return nil, &model.ConflictError{Message: "Nomes de arquivo duplicados: " + strings.Join(duplicates, ", ")}
	}
	session.State = UploadUploading
	session.Error = ""
	s.mu.Unlock()

	uploaded, err := s.upload(ctx, claims, session)
	if err != nil {
		s.mu.Lock()
		session.State = UploadRenaming
		session.Error = userMessage(err)
		s.mu.Unlock()
		return nil, err
	}

	byName := make(map[string]model.File, len(uploaded))
	for _, file := range uploaded {
		byName[file.DisplayName] = file
	}

	s.mu.Lock()
	for i := range session.Files {
		if file, ok := byName[session.Files[i].DisplayName]; ok {
			session.Files[i].FileID = file.ID
		}
	}
	s.mu.Unlock()

	for i := range session.Files {
		queued := &session.Files[i]
		if queued.Expiration == nil {
			continue
		}
		alertErr := s.createAlert(ctx, queued)
		if alertErr != "" {
			s.mu.Lock()
			queued.AlertError = alertErr
			s.mu.Unlock()
		}
	}

	s.mu.Lock()
	session.State = UploadDone
	delete(s.sessions, session.ID)
	result := session.snapshot()
	s.mu.Unlock()

	s.cleanup(context.WithoutCancel(ctx), session)
	log.Printf("[UploadService] сессия %s: отправлено файлов %d в папку %s", session.ID, len(uploaded), session.FolderID)
	return result, nil
}

func (s *UploadService) upload(ctx context.Context, claims *security.Claims, session *UploadSession) ([]model.File, error) {
	if _, err := s.permissions.Require(ctx, claims, session.FolderID, model.ActionUpload); err != nil {
		return nil, err
	}

	parts := make([]apiclient.UploadPart, 0, len(session.Files))
	readers := make([]io.Closer, 0, len(session.Files))
	defer func() {
		for _, reader := range readers {
			reader.Close()
		}
	}()

	for i := range session.Files {
		queued := &session.Files[i]
		body, err := s.staging.Open(ctx, queued.stagingKey)
		if err != nil {
			return nil, err
		}
		readers = append(readers, body)

		progress := util.NewProgressReader(body)
		s.mu.Lock()
		queued.progress = progress
		s.mu.Unlock()

		parts = append(parts, apiclient.UploadPart{
			FieldName:   "files",
			FileName:    queued.DisplayName,
			ContentType: queued.ContentType,
			Reader:      progress,
		})
	}

	return s.files.UploadFiles(ctx, session.FolderID, parts)
}

func (s *UploadService) createAlert(ctx context.Context, queued *QueuedFile) string {
	if queued.FileID == "" {
		log.Printf("[UploadService] файл %s не найден в ответе API, алерт не создан", queued.DisplayName)
		return "Arquivo não encontrado na resposta do envio"
	}

	_, err := s.files.CreateExpirationAlert(ctx, model.ExpirationAlert{
		FileID:      queued.FileID,
		AlertDate:   queued.Expiration.AlertDate,
		Description: queued.Expiration.Description,
	})
	if err != nil {
		log.Printf("[UploadService] ошибка создания алерта для %s: %v", queued.FileID, err)
		return userMessage(err)
	}
	return ""
}

func (s *UploadService) Progress(claims *security.Claims, sessionID string) (*UploadSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.session(claims, sessionID)
	if err != nil {
		return nil, err
	}
	return session.snapshot(), nil
}

// PreviewURL : ссылка на файл в staging до отправки
func (s *UploadService) PreviewURL(ctx context.Context, claims *security.Claims, sessionID string, index int, expire time.Duration) (string, error) {
	s.mu.Lock()
	session, err := s.session(claims, sessionID)
	if err != nil {
		s.mu.Unlock()
		return "", err
	}
	if index < 0 || index >= len(session.Files) {
		s.mu.Unlock()
		return "", &model.NotFoundError{Message: "Arquivo não encontrado na fila"}
	}
	key := session.Files[index].stagingKey
	s.mu.Unlock()

	return s.staging.PresignedGetURL(ctx, key, expire)
}

func (s *UploadService) Cancel(ctx context.Context, claims *security.Claims, sessionID string) error {
	s.mu.Lock()
	session, err := s.session(claims, sessionID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if session.State == UploadUploading {
		s.mu.Unlock()
		return &model.ConflictError{Message: "O envio está em andamento"}
	}
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	s.cleanup(ctx, session)
	return nil
}

// Sweep : брошенные сессии старше maxAge удаляются вместе с файлами в staging
func (s *UploadService) Sweep(ctx context.Context, maxAge time.Duration) int {
	deadline := s.now().Add(-maxAge)

	s.mu.Lock()
	var expired []*UploadSession
	for id, session := range s.sessions {
		if session.State != UploadUploading && session.CreatedAt.Before(deadline) {
			expired = append(expired, session)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, session := range expired {
		s.cleanup(ctx, session)
	}
	return len(expired)
}

func (s *UploadService) session(claims *security.Claims, sessionID string) (*UploadSession, error) {
	session, ok := s.sessions[sessionID]
	if !ok || session.OwnerID != claims.UserUUID {
		return nil, &model.NotFoundError{Message: "Sessão de envio não encontrada"}
	}
	return session, nil
}

func (s *UploadService) cleanup(ctx context.Context, session *UploadSession) {
	for _, file := range session.Files {
		if err := s.staging.Delete(ctx, file.stagingKey); err != nil {
			log.Printf("[UploadService] не удалось удалить %s из staging: %v", file.stagingKey, err)
		}
	}
}

func duplicateNames(files []QueuedFile) []string {
	seen := make(map[string]int, len(files))
	for _, file := range files {
		seen[file.DisplayName]++
	}
	var duplicates []string
	for name, count := range seen {
		if count > 1 {
			duplicates = append(duplicates, name)
		}
	}
	sort.Strings(duplicates)
	return duplicates
}
