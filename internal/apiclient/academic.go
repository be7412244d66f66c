package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"docs-admin-console/internal/model"
)

type CourseInput struct {
	Name           string `json:"name"`
	Code           string `json:"code,omitempty"`
	CoordinatorID  string `json:"coordinator_id"`
	OrganizationID string `json:"organization_id,omitempty"`
}

type StudentInput struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Registration string `json:"registration"`
	CourseID     string `json:"course_id"`
}

type TCCInput struct {
	Title        string        `json:"title"`
	Type         model.TCCType `json:"type"`
	AuthorID     string        `json:"author_id"`
	SupervisorID string        `json:"supervisor_id"`
	CourseID     string        `json:"course_id"`
	Keywords     []string      `json:"keywords,omitempty"`
	Year         int           `json:"year,omitempty"`
}

type TCCSearchRequest struct {
	Query          string `json:"query"`
	OrganizationID string `json:"organization_id,omitempty"`
	Limit          int    `json:"limit,omitempty"`
}

func (c *Client) ListCourses(ctx context.Context, organizationID string) ([]model.Course, error) {
	query := url.Values{}
	if organizationID != "" {
		query.Set("organization_id", organizationID)
	}
	var courses []model.Course
	err := c.do(ctx, http.MethodGet, "/api/courses", query, nil, &courses)
	return courses, err
}

func (c *Client) GetCourse(ctx context.Context, courseID string) (*model.Course, error) {
	var course model.Course
	if err := c.do(ctx, http.MethodGet, "/api/courses/"+url.PathEscape(courseID), nil, nil, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *Client) CreateCourse(ctx context.Context, input CourseInput) (*model.Course, error) {
	var course model.Course
	if err := c.do(ctx, http.MethodPost, "/api/courses", nil, input, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *Client) UpdateCourse(ctx context.Context, courseID string, input CourseInput) (*model.Course, error) {
	var course model.Course
	if err := c.do(ctx, http.MethodPut, "/api/courses/"+url.PathEscape(courseID), nil, input, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *Client) DeleteCourse(ctx context.Context, courseID string) error {
	return c.do(ctx, http.MethodDelete, "/api/courses/"+url.PathEscape(courseID), nil, nil, nil)
}

func (c *Client) ListStudents(ctx context.Context, courseID string) ([]model.Student, error) {
	query := url.Values{}
	query.Set("course_id", courseID)
	var students []model.Student
	err := c.do(ctx, http.MethodGet, "/api/students", query, nil, &students)
	return students, err
}

func (c *Client) CreateStudent(ctx context.Context, input StudentInput) (*model.Student, error) {
	var student model.Student
	if err := c.do(ctx, http.MethodPost, "/api/students", nil, input, &student); err != nil {
		return nil, err
	}
	return &student, nil
}

func (c *Client) DeleteStudent(ctx context.Context, studentID string) error {
	return c.do(ctx, http.MethodDelete, "/api/students/"+url.PathEscape(studentID), nil, nil, nil)
}

func (c *Client) ListTCCs(ctx context.Context, courseID string) ([]model.TCC, error) {
	query := url.Values{}
	if courseID != "" {
		query.Set("course_id", courseID)
	}
	var tccs []model.TCC
	err := c.do(ctx, http.MethodGet, "/api/tccs", query, nil, &tccs)
	return tccs, err
}

func (c *Client) GetTCC(ctx context.Context, tccID string) (*model.TCC, error) {
	var tcc model.TCC
	if err := c.do(ctx, http.MethodGet, "/api/tccs/"+url.PathEscape(tccID), nil, nil, &tcc); err != nil {
		return nil, err
	}
	return &tcc, nil
}

// CreateTCC : поля формы и файлы (основной + опционально протокол защиты) одним multipart
func (c *Client) CreateTCC(ctx context.Context, input TCCInput, file UploadPart, defenseRecord *UploadPart) (*model.TCC, error) {
	fields := []FormField{
		{Name: "title", Value: input.Title},
		{Name: "type", Value: string(input.Type)},
		{Name: "author_id", Value: input.AuthorID},
		{Name: "supervisor_id", Value: input.SupervisorID},
		{Name: "course_id", Value: input.CourseID},
	}
	if len(input.Keywords) > 0 {
		fields = append(fields, FormField{Name: "keywords", Value: strings.Join(input.Keywords, ",")})
	}
	if input.Year > 0 {
		fields = append(fields, FormField{Name: "year", Value: strconv.Itoa(input.Year)})
	}

	file.FieldName = "file"
	parts := []UploadPart{file}
	if defenseRecord != nil {
		record := *defenseRecord
		record.FieldName = "defense_record"
		parts = append(parts, record)
	}

	var tcc model.TCC
	if err := c.postMultipart(ctx, "/api/tccs", fields, parts, &tcc); err != nil {
		return nil, err
	}
	return &tcc, nil
}

func (c *Client) UpdateTCC(ctx context.Context, tccID string, input TCCInput) (*model.TCC, error) {
	var tcc model.TCC
	if err := c.do(ctx, http.MethodPut, "/api/tccs/"+url.PathEscape(tccID), nil, input, &tcc); err != nil {
		return nil, err
	}
	return &tcc, nil
}

func (c *Client) DeleteTCC(ctx context.Context, tccID string) error {
	return c.do(ctx, http.MethodDelete, "/api/tccs/"+url.PathEscape(tccID), nil, nil, nil)
}

func (c *Client) IntelligentSearch(ctx context.Context, request TCCSearchRequest) ([]model.TCCSearchResult, error) {
	var results []model.TCCSearchResult
	err := c.do(ctx, http.MethodPost, "/api/tccs/search/intelligent", nil, request, &results)
	return results, err
}
