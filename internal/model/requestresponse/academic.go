package requestresponse

import "docs-admin-console/internal/model"

type CourseRequest struct {
	Name           string `json:"name" example:"Direito"`
	Code           string `json:"code" example:"DIR"`
	CoordinatorID  string `json:"coordinator_id" example:"u9"`
	OrganizationID string `json:"organization_id,omitempty" example:"org-1"`
}

type StudentRequest struct {
	Name         string `json:"name" example:"Ana Souza"`
	Email        string `json:"email" example:"ana@universidade.br"`
	Registration string `json:"registration" example:"2024001"`
	CourseID     string `json:"course_id" example:"c1"`
}

// TCCRequest : поля формы ТСС; при создании приходят вместе с файлами в multipart
type TCCRequest struct {
	Title        string        `json:"title" example:"Redes neurais aplicadas"`
	Type         model.TCCType `json:"type" example:"MASTER"`
	AuthorID     string        `json:"author_id" example:"s1"`
	SupervisorID string        `json:"supervisor_id" example:"u1"`
	CourseID     string        `json:"course_id" example:"c1"`
	Keywords     []string      `json:"keywords"`
	Year         int           `json:"year,omitempty" example:"2024"`
}

type TCCSearchRequest struct {
	Query          string `json:"query" example:"aprendizado de máquina"`
	OrganizationID string `json:"organization_id,omitempty"`
	Limit          int    `json:"limit,omitempty" example:"20"`
}

type PreferencesRequest struct {
	FontFamily string `json:"font_family" example:"Inter"`
	FontSize   int    `json:"font_size" example:"16"`
}
