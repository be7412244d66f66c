package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"docs-admin-console/internal/apiclient"
	"docs-admin-console/internal/model"
	"docs-admin-console/internal/model/requestresponse"
	"docs-admin-console/internal/service"
	"docs-admin-console/internal/util"

	"github.com/go-chi/chi/v5"
)

type AcademicHandler struct {
	courses *service.CourseService
	tccs    *service.TCCService
	search  *service.SearchService
}

func NewAcademicHandler(courses *service.CourseService, tccs *service.TCCService, search *service.SearchService) *AcademicHandler {
	return &AcademicHandler{courses: courses, tccs: tccs, search: search}
}

// ListCourses godoc
// @Summary Курсы организации
// @Tags Courses
// @Produce json
// @Param organization_id query string false "Организация, по умолчанию организация пользователя"
// @Success 200 {object} requestresponse.ListResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Router /console/courses [get]
func (h *AcademicHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	courses, err := h.courses.List(r.Context(), claims, r.URL.Query().Get("organization_id"))
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, requestresponse.ListResponse{Data: courses, Count: len(courses)})
}

// GetCourse godoc
// @Summary Курс по ID
// @Tags Courses
// @Produce json
// @Param course_id path string true "Курс"
// @Success 200 {object} model.Course
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /console/courses/{course_id} [get]
func (h *AcademicHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireClaims(w, r); !ok {
		return
	}
	course, err := h.courses.Get(r.Context(), chi.URLParam(r, "course_id"))
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, course)
}

// CreateCourse godoc
// @Summary Создать курс
// @Description Имя и координатор обязательны; без них запрос в API не отправляется.
// @Tags Courses
// @Accept json
// @Produce json
// @Param body body requestresponse.CourseRequest true "Курс"
// @Success 201 {object} model.Course
// @Failure 400 {object} requestresponse.ErrorResponse
// @Router /console/courses [post]
func (h *AcademicHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req requestresponse.CourseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	course, err := h.courses.Create(r.Context(), claims, courseInput(req))
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusCreated, course)
}

// UpdateCourse godoc
// @Summary Изменить курс
// @Tags Courses
// @Accept json
// @Produce json
// @Param course_id path string true "Курс"
// @Param body body requestresponse.CourseRequest true "Курс"
// @Success 200 {object} model.Course
// @Failure 400 {object} requestresponse.ErrorResponse
// @Router /console/courses/{course_id} [put]
func (h *AcademicHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req requestresponse.CourseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	course, err := h.courses.Update(r.Context(), claims, chi.URLParam(r, "course_id"), courseInput(req))
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, course)
}

func courseInput(req requestresponse.CourseRequest) apiclient.CourseInput {
	return apiclient.CourseInput{
		Name:           req.Name,
		Code:           req.Code,
		CoordinatorID:  req.CoordinatorID,
		OrganizationID: req.OrganizationID,
	}
}

// DeleteCourse godoc
// @Summary Удалить курс
// @Tags Courses
// @Accept json
// @Produce json
// @Param course_id path string true "Курс"
// @Param body body requestresponse.DeleteRequest true "Подтверждение delete_course"
// @Success 200 {object} requestresponse.SuccessResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Router /console/courses/{course_id} [delete]
func (h *AcademicHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req requestresponse.DeleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if err := h.courses.Delete(r.Context(), claims, chi.URLParam(r, "course_id"), req.ConfirmToken); err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, requestresponse.SuccessResponse{Message: "Curso excluído"})
}

// ListStudents godoc
// @Summary Студенты курса
// @Tags Students
// @Produce json
// @Param course_id path string true "Курс"
// @Success 200 {object} requestresponse.ListResponse
// @Router /console/courses/{course_id}/students [get]
func (h *AcademicHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireClaims(w, r); !ok {
		return
	}
	students, err := h.courses.ListStudents(r.Context(), chi.URLParam(r, "course_id"))
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, requestresponse.ListResponse{Data: students, Count: len(students)})
}

// CreateStudent godoc
// @Summary Добавить студента
// @Tags Students
// @Accept json
// @Produce json
// @Param body body requestresponse.StudentRequest true "Студент"
// @Success 201 {object} model.Student
// @Failure 400 {object} requestresponse.ErrorResponse
// @Router /console/students [post]
func (h *AcademicHandler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req requestresponse.StudentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	student, err := h.courses.CreateStudent(r.Context(), claims, apiclient.StudentInput{
		Name:         req.Name,
		Email:        req.Email,
		Registration: req.Registration,
		CourseID:     req.CourseID,
	})
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusCreated, student)
}

// DeleteStudent godoc
// @Summary Удалить студента
// @Tags Students
// @Produce json
// @Param course_id path string true "Курс"
// @Param student_id path string true "Студент"
// @Success 200 {object} requestresponse.SuccessResponse
// @Router /console/courses/{course_id}/students/{student_id} [delete]
func (h *AcademicHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	if err := h.courses.DeleteStudent(r.Context(), claims, chi.URLParam(r, "course_id"), chi.URLParam(r, "student_id")); err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, requestresponse.SuccessResponse{Message: "Aluno excluído"})
}

// ListTCCs godoc
// @Summary Список ТСС
// @Tags TCCs
// @Produce json
// @Param course_id query string false "Курс"
// @Success 200 {object} requestresponse.ListResponse
// @Router /console/tccs [get]
func (h *AcademicHandler) ListTCCs(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireClaims(w, r); !ok {
		return
	}
	tccs, err := h.tccs.List(r.Context(), r.URL.Query().Get("course_id"))
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, requestresponse.ListResponse{Data: tccs, Count: len(tccs)})
}

// GetTCC godoc
// @Summary ТСС по ID
// @Tags TCCs
// @Produce json
// @Param tcc_id path string true "ТСС"
// @Success 200 {object} model.TCC
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /console/tccs/{tcc_id} [get]
func (h *AcademicHandler) GetTCC(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireClaims(w, r); !ok {
		return
	}
	tcc, err := h.tccs.Get(r.Context(), chi.URLParam(r, "tcc_id"))
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, tcc)
}

// CreateTCC godoc
// @Summary Создать ТСС
// @Description Основной файл обязателен, протокол защиты опционален. Каждый файл не больше 50 МБ.
// @Tags TCCs
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Название"
// @Param type formData string true "BACHELOR, MASTER или DOCTORATE"
// @Param author_id formData string true "Автор"
// @Param supervisor_id formData string true "Научный руководитель"
// @Param course_id formData string true "Курс"
// @Param keywords formData string false "Ключевые слова через запятую"
// @Param year formData int false "Год"
// @Param file formData file true "Текст работы"
// @Param defense_record formData file false "Протокол защиты"
// @Success 201 {object} model.TCC
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 413 {object} requestresponse.ErrorResponse
// @Router /console/tccs [post]
func (h *AcademicHandler) CreateTCC(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireClaims(w, r); !ok {
		return
	}
	if !parseMultipart(w, r, h.tccs.Limits().RequestCeiling(service.UploadTCC, service.MaxTCCFiles)) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	input := apiclient.TCCInput{
		Title:        r.FormValue("title"),
		Type:         model.TCCType(strings.ToUpper(r.FormValue("type"))),
		AuthorID:     r.FormValue("author_id"),
		SupervisorID: r.FormValue("supervisor_id"),
		CourseID:     r.FormValue("course_id"),
	}
	if keywords := r.FormValue("keywords"); keywords != "" {
		input.Keywords = strings.Split(keywords, ",")
	}
	if year := r.FormValue("year"); year != "" {
		parsed, err := strconv.Atoi(year)
		if err != nil {
			util.HandleError(w, "Ano inválido", http.StatusBadRequest)
			return
		}
		input.Year = parsed
	}

	file, opened, err := tccFile(r, "file")
	if err != nil {
		util.HandleError(w, "Não foi possível ler o arquivo do TCC", http.StatusBadRequest)
		return
	}
	if opened != nil {
		defer opened.Close()
	}
	defenseRecord, openedRecord, err := tccFile(r, "defense_record")
	if err != nil {
		util.HandleError(w, "Não foi possível ler a ata de defesa", http.StatusBadRequest)
		return
	}
	if openedRecord != nil {
		defer openedRecord.Close()
	}

	tcc, err := h.tccs.Create(r.Context(), input, file, defenseRecord)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusCreated, tcc)
}

// tccFile : nil, если поле не прислано. Открытый файл закрывает вызывающий,
// RemoveAll только удаляет временные файлы
func tccFile(r *http.Request, field string) (*service.TCCFile, multipart.File, error) {
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return nil, nil, nil
	}
	file, err := headers[0].Open()
	if err != nil {
		return nil, nil, err
	}
	return &service.TCCFile{
		Name:        headers[0].Filename,
		Size:        headers[0].Size,
		ContentType: headers[0].Header.Get("Content-Type"),
		Reader:      file,
	}, file, nil
}

// UpdateTCC godoc
// @Summary Изменить данные ТСС
// @Tags TCCs
// @Accept json
// @Produce json
// @Param tcc_id path string true "ТСС"
// @Param body body requestresponse.TCCRequest true "Данные"
// @Success 200 {object} model.TCC
// @Failure 400 {object} requestresponse.ErrorResponse
// @Router /console/tccs/{tcc_id} [put]
func (h *AcademicHandler) UpdateTCC(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireClaims(w, r); !ok {
		return
	}
	var req requestresponse.TCCRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	tcc, err := h.tccs.Update(r.Context(), chi.URLParam(r, "tcc_id"), apiclient.TCCInput{
		Title:        req.Title,
		Type:         req.Type,
		AuthorID:     req.AuthorID,
		SupervisorID: req.SupervisorID,
		CourseID:     req.CourseID,
		Keywords:     req.Keywords,
		Year:         req.Year,
	})
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, tcc)
}

// DeleteTCC godoc
// @Summary Удалить ТСС
// @Description Одно подтверждение delete_tcc даёт ровно один запрос удаления.
// @Tags TCCs
// @Accept json
// @Produce json
// @Param tcc_id path string true "ТСС"
// @Param body body requestresponse.DeleteRequest true "Подтверждение"
// @Success 200 {object} requestresponse.SuccessResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Router /console/tccs/{tcc_id} [delete]
func (h *AcademicHandler) DeleteTCC(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req requestresponse.DeleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if err := h.tccs.Delete(r.Context(), claims, chi.URLParam(r, "tcc_id"), req.ConfirmToken); err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, requestresponse.SuccessResponse{Message: "TCC excluído"})
}

// SearchTCCs godoc
// @Summary Интеллектуальный поиск ТСС
// @Description Релевантность отдаётся в процентах. Вытесненный запрос возвращает superseded=true.
// @Tags TCCs
// @Accept json
// @Produce json
// @Param body body requestresponse.TCCSearchRequest true "Запрос"
// @Success 200 {object} service.TCCSearchResult
// @Failure 400 {object} requestresponse.ErrorResponse
// @Router /console/tccs/search [post]
func (h *AcademicHandler) SearchTCCs(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req requestresponse.TCCSearchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	session := service.SessionKey(claims, r.Header.Get(SessionHeader))
	result, err := h.search.SearchTCCs(r.Context(), claims, session, req.OrganizationID, req.Query, req.Limit)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, result)
}
