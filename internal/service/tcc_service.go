package service

import (
	"context"
	"io"
	"log"
	"strings"
	"sync"

	"docs-admin-console/internal/apiclient"
	"docs-admin-console/internal/model"
	"docs-admin-console/internal/ports"
	"docs-admin-console/internal/security"
	"docs-admin-console/internal/util"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// TCCFile : файл формы ТСС, Size берётся из заголовка multipart
type TCCFile struct {
	Name        string
	Size        int64
	ContentType string
	Reader      io.Reader
}

// TCCChange : OrganizationID пуст, если организацию курса определить не удалось
type TCCChange struct {
	TCCID          string
	CourseID       string
	OrganizationID string
}

// ChangeHook : вызывается после успешного изменения ТСС, например для сброса отчётов
type ChangeHook func(ctx context.Context, change TCCChange)

type TCCService struct {
	api           ports.AcademicAPI
	confirmations *ConfirmationService
	limits        UploadLimits

	mu    sync.RWMutex
	hooks []ChangeHook
}

func NewTCCService(api ports.AcademicAPI, confirmations *ConfirmationService, limits UploadLimits) *TCCService {
	return &TCCService{api: api, confirmations: confirmations, limits: limits}
}

func (s *TCCService) Limits() UploadLimits {
	return s.limits
}

func (s *TCCService) OnChange(hook ChangeHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, hook)
}

func (s *TCCService) changed(ctx context.Context, tccID, courseID string) {
	s.mu.RLock()
	hooks := append([]ChangeHook(nil), s.hooks...)
	s.mu.RUnlock()
	if len(hooks) == 0 {
		return
	}

	change := TCCChange{
		TCCID:          tccID,
		CourseID:       courseID,
		OrganizationID: organizationOfCourse(ctx, s.api, courseID),
	}
	for _, hook := range hooks {
		hook(ctx, change)
	}
}

func (s *TCCService) List(ctx context.Context, courseID string) ([]model.TCC, error) {
	tccs, err := s.api.ListTCCs(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if tccs == nil {
		tccs = []model.TCC{}
	}
	return tccs, nil
}

func (s *TCCService) Get(ctx context.Context, tccID string) (*model.TCC, error) {
	return s.api.GetTCC(ctx, tccID)
}

// Create : основной файл обязателен, протокол защиты опционален; оба не больше потолка ТСС
func (s *TCCService) Create(ctx context.Context, input apiclient.TCCInput, file *TCCFile, defenseRecord *TCCFile) (*model.TCC, error) {
	input = normalizeTCC(input)
	if err := validateTCC(&input); err != nil {
		return nil, err
	}
	if file == nil {
		return nil, &model.ValidationError{Message: "Arquivo do TCC é obrigatório"}
	}

	primary, err := s.part(file)
	if err != nil {
		return nil, err
	}
	var record *apiclient.UploadPart
	if defenseRecord != nil {
		part, err := s.part(defenseRecord)
		if err != nil {
			return nil, err
		}
		record = &part
	}

	tcc, err := s.api.CreateTCC(ctx, input, primary, record)
	if err != nil {
		return nil, err
	}

	log.Printf("[TCCService] ТСС %s создан", tcc.ID)
	s.changed(ctx, tcc.ID, input.CourseID)
	return tcc, nil
}

func (s *TCCService) Update(ctx context.Context, tccID string, input apiclient.TCCInput) (*model.TCC, error) {
	input = normalizeTCC(input)
	if err := validateTCC(&input); err != nil {
		return nil, err
	}

	tcc, err := s.api.UpdateTCC(ctx, tccID, input)
	if err != nil {
		return nil, err
	}

	log.Printf("[TCCService] ТСС %s обновлён", tccID)
	s.changed(ctx, tccID, input.CourseID)
	return tcc, nil
}

// Delete : одно подтверждение даёт ровно один DELETE. Курс ТСС узнаётся до удаления
func (s *TCCService) Delete(ctx context.Context, claims *security.Claims, tccID, confirmToken string) error {
	if err := s.confirmations.Consume(claims.UserUUID, ConfirmDeleteTCC, tccID, confirmToken); err != nil {
		return err
	}

	var courseID string
	if tcc, err := s.api.GetTCC(ctx, tccID); err == nil && tcc != nil {
		courseID = tcc.CourseID
	} else {
		log.Printf("[TCCService] курс ТСС %s не определён: %v", tccID, err)
	}

	if err := s.api.DeleteTCC(ctx, tccID); err != nil {
		return err
	}

	log.Printf("[TCCService] ТСС %s удалён", tccID)
	s.changed(ctx, tccID, courseID)
	return nil
}

func (s *TCCService) part(file *TCCFile) (apiclient.UploadPart, error) {
	if rejected := s.limits.Check(UploadTCC, file.Name, file.Size); rejected != nil {
		return apiclient.UploadPart{}, &model.ValidationError{Message: rejected.Reason}
	}
	part := apiclient.UploadPart{
		FileName:    file.Name,
		ContentType: file.ContentType,
		Reader:      file.Reader,
	}
	if part.ContentType == "" {
		part.ContentType = util.ContentType(file.Name)
	}
	return part, nil
}

func normalizeTCC(input apiclient.TCCInput) apiclient.TCCInput {
	input.Title = strings.TrimSpace(input.Title)
	keywords := make([]string, 0, len(input.Keywords))
	for _, keyword := range input.Keywords {
		if keyword = strings.TrimSpace(keyword); keyword != "" {
			keywords = append(keywords, keyword)
		}
	}
	input.Keywords = keywords
	return input
}

func validateTCC(input *apiclient.TCCInput) error {
	err := validation.ValidateStruct(input,
		validation.Field(&input.Title,
			validation.Required.Error("Título é obrigatório"),
			validation.RuneLength(1, 500).Error("Título deve ter até 500 caracteres"),
		),
		validation.Field(&input.Type,
			validation.Required.Error("Tipo é obrigatório"),
			validation.In(model.TCCBachelor, model.TCCMaster, model.TCCDoctorate).Error("Tipo inválido"),
		),
		validation.Field(&input.AuthorID, validation.Required.Error("Autor é obrigatório")),
		validation.Field(&input.SupervisorID, validation.Required.Error("Orientador é obrigatório")),
		validation.Field(&input.CourseID, validation.Required.Error("Curso é obrigatório")),
		validation.Field(&input.Year, validation.Min(1900).Error("Ano inválido"), validation.Max(2100).Error("Ano inválido")),
	)
	return validationError(err)
}
