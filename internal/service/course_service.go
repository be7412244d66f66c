package service

import (
	"context"
	"log"
	"regexp"
	"strings"

	"docs-admin-console/internal/apiclient"
	"docs-admin-console/internal/model"
	"docs-admin-console/internal/ports"
	"docs-admin-console/internal/security"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// CourseService : курсы и студенты. Формы проверяются до запроса в API
type CourseService struct {
	api           ports.AcademicAPI
	permissions   *PermissionService
	confirmations *ConfirmationService
	reports       *ReportService
}

func NewCourseService(api ports.AcademicAPI, permissions *PermissionService,
	confirmations *ConfirmationService, reports *ReportService) *CourseService {
	return &CourseService{api: api, permissions: permissions, confirmations: confirmations, reports: reports}
}

func (s *CourseService) List(ctx context.Context, claims *security.Claims, organizationID string) ([]model.Course, error) {
	organizationID, err := s.scope(claims, organizationID)
	if err != nil {
		return nil, err
	}
	courses, err := s.api.ListCourses(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []model.Course{}
	}
	return courses, nil
}

func (s *CourseService) Get(ctx context.Context, courseID string) (*model.Course, error) {
	return s.api.GetCourse(ctx, courseID)
}

func (s *CourseService) Create(ctx context.Context, claims *security.Claims, input apiclient.CourseInput) (*model.Course, error) {
	input = normalizeCourse(input)
	if err := validateCourse(&input); err != nil {
		return nil, err
	}
	organizationID, err := s.scope(claims, input.OrganizationID)
	if err != nil {
		return nil, err
	}
	input.OrganizationID = organizationID

	course, err := s.api.CreateCourse(ctx, input)
	if err != nil {
		return nil, err
	}

	s.reports.Invalidate(ctx, organizationID)
	log.Printf("[CourseService] курс %s создан", course.ID)
	return course, nil
}

func (s *CourseService) Update(ctx context.Context, claims *security.Claims, courseID string, input apiclient.CourseInput) (*model.Course, error) {
	input = normalizeCourse(input)
	if err := validateCourse(&input); err != nil {
		return nil, err
	}
	organizationID, err := s.scope(claims, input.OrganizationID)
	if err != nil {
		return nil, err
	}
	input.OrganizationID = organizationID

	course, err := s.api.UpdateCourse(ctx, courseID, input)
	if err != nil {
		return nil, err
	}

	s.reports.Invalidate(ctx, organizationID)
	log.Printf("[CourseService] курс %s обновлён", courseID)
	return course, nil
}

// Delete : организация курса определяется до удаления, после него курс уже не найти
func (s *CourseService) Delete(ctx context.Context, claims *security.Claims, courseID, confirmToken string) error {
	organizationID, err := s.courseOrganization(ctx, claims, courseID)
	if err != nil {
		return err
	}
	if err := s.confirmations.Consume(claims.UserUUID, ConfirmDeleteCourse, courseID, confirmToken); err != nil {
		return err
	}
	if err := s.api.DeleteCourse(ctx, courseID); err != nil {
		return err
	}

	s.reports.Invalidate(ctx, organizationID)
	log.Printf("[CourseService] курс %s удалён", courseID)
	return nil
}

func (s *CourseService) ListStudents(ctx context.Context, courseID string) ([]model.Student, error) {
	if courseID == "" {
		return nil, &model.ValidationError{Message: "Curso é obrigatório"}
	}
	students, err := s.api.ListStudents(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if students == nil {
		students = []model.Student{}
	}
	return students, nil
}

func (s *CourseService) CreateStudent(ctx context.Context, claims *security.Claims, input apiclient.StudentInput) (*model.Student, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Registration = strings.TrimSpace(input.Registration)

	err := validation.ValidateStruct(&input,
		validation.Field(&input.Name, validation.Required.Error("Nome é obrigatório")),
		validation.Field(&input.Email,
			validation.Required.Error("E-mail é obrigatório"),
			validation.Match(emailPattern).Error("E-mail inválido"),
		),
		validation.Field(&input.Registration, validation.Required.Error("Matrícula é obrigatória")),
		validation.Field(&input.CourseID, validation.Required.Error("Curso é obrigatório")),
	)
	if err := validationError(err); err != nil {
		return nil, err
	}
	organizationID, err := s.courseOrganization(ctx, claims, input.CourseID)
	if err != nil {
		return nil, err
	}

	student, err := s.api.CreateStudent(ctx, input)
	if err != nil {
		return nil, err
	}

	s.reports.Invalidate(ctx, organizationID)
	log.Printf("[CourseService] студент %s добавлен в курс %s", student.ID, input.CourseID)
	return student, nil
}

func (s *CourseService) DeleteStudent(ctx context.Context, claims *security.Claims, courseID, studentID string) error {
	if courseID == "" {
		return &model.ValidationError{Message: "Curso é obrigatório"}
	}
	organizationID, err := s.courseOrganization(ctx, claims, courseID)
	if err != nil {
		return err
	}
	if err := s.api.DeleteStudent(ctx, studentID); err != nil {
		return err
	}
	s.reports.Invalidate(ctx, organizationID)
	log.Printf("[CourseService] студент %s удалён из курса %s", studentID, courseID)
	return nil
}

// courseOrganization : организация курса из API; если курс не найден, берётся организация из токена
func (s *CourseService) courseOrganization(ctx context.Context, claims *security.Claims, courseID string) (string, error) {
	organizationID := organizationOfCourse(ctx, s.api, courseID)
	if organizationID == "" {
		return claims.OrganizationID, nil
	}
	if err := s.permissions.RequireOrganization(claims, organizationID); err != nil {
		return "", err
	}
	return organizationID, nil
}

func organizationOfCourse(ctx context.Context, api ports.AcademicAPI, courseID string) string {
	if courseID == "" {
		return ""
	}
	course, err := api.GetCourse(ctx, courseID)
	if err != nil || course == nil {
		log.Printf("[CourseService] не удалось определить организацию курса %s: %v", courseID, err)
		return ""
	}
	return course.OrganizationID
}

// scope : пользователь организации всегда работает в своей организации
func (s *CourseService) scope(claims *security.Claims, organizationID string) (string, error) {
	if organizationID == "" {
		organizationID = claims.OrganizationID
	}
	if organizationID == "" {
		if claims.IsAdmin {
			return "", nil
		}
		return "", &model.ValidationError{Message: "Organização é obrigatória"}
	}
	if err := s.permissions.RequireOrganization(claims, organizationID); err != nil {
		return "", err
	}
	return organizationID, nil
}

func normalizeCourse(input apiclient.CourseInput) apiclient.CourseInput {
	input.Name = strings.TrimSpace(input.Name)
	input.Code = strings.TrimSpace(input.Code)
	input.CoordinatorID = strings.TrimSpace(input.CoordinatorID)
	return input
}

func validateCourse(input *apiclient.CourseInput) error {
	err := validation.ValidateStruct(input,
		validation.Field(&input.Name,
			validation.Required.Error("Nome é obrigatório"),
			validation.RuneLength(1, 255).Error("Nome deve ter até 255 caracteres"),
		),
		validation.Field(&input.CoordinatorID, validation.Required.Error("Coordenador é obrigatório")),
	)
	return validationError(err)
}
