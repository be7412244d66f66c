package handler

import (
	"io"
	"log"
	"net/http"
	"strconv"

	"docs-admin-console/internal/browser"
	"docs-admin-console/internal/model/requestresponse"
	"docs-admin-console/internal/security"
	"docs-admin-console/internal/service"
	"docs-admin-console/internal/util"

	"github.com/go-chi/chi/v5"
)

type BrowserHandler struct {
	browser *service.BrowserService
	bulk    *service.BulkService
	search  *service.SearchService
}

func NewBrowserHandler(browserService *service.BrowserService, bulkService *service.BulkService, searchService *service.SearchService) *BrowserHandler {
	return &BrowserHandler{browser: browserService, bulk: bulkService, search: searchService}
}

func (h *BrowserHandler) session(r *http.Request, claims *security.Claims) string {
	return service.SessionKey(claims, r.Header.Get(SessionHeader))
}

func writeState(w http.ResponseWriter, state browser.State, err error) {
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, requestresponse.BrowserStateFromModel(state))
}

// GetState godoc
// @Summary Текущее состояние проводника
// @Description Возвращает путь, хлебные крошки, содержимое, права и выделение сессии вкладки.
// @Tags Browser
// @Produce json
// @Param X-Browser-Session header string false "Идентификатор вкладки"
// @Success 200 {object} requestresponse.BrowserStateResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Router /console/browser [get]
func (h *BrowserHandler) GetState(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	writeState(w, h.browser.State(h.session(r, claims)), nil)
}

// Open godoc
// @Summary Открыть организацию
// @Description Переходит в корень организации и загружает её корневые папки.
// @Tags Browser
// @Accept json
// @Produce json
// @Param body body requestresponse.OpenRequest true "Организация"
// @Success 200 {object} requestresponse.BrowserStateResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Router /console/browser/open [post]
func (h *BrowserHandler) Open(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req requestresponse.OpenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	state, err := h.browser.Open(r.Context(), claims, h.session(r, claims), req.OrganizationID)
	writeState(w, state, err)
}

// Enter godoc
// @Summary Войти в подпапку
// @Tags Browser
// @Accept json
// @Produce json
// @Param body body requestresponse.EnterRequest true "Подпапка текущей папки"
// @Success 200 {object} requestresponse.BrowserStateResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /console/browser/enter [post]
func (h *BrowserHandler) Enter(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req requestresponse.EnterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	state, err := h.browser.Enter(r.Context(), claims, h.session(r, claims), req.FolderID)
	writeState(w, state, err)
}

// NavigateTo godoc
// @Summary Перейти по цепочке папок
// @Description Используется деревом папок и результатами поиска.
// @Tags Browser
// @Accept json
// @Produce json
// @Param body body requestresponse.NavigateRequest true "Цепочка папок от корня"
// @Success 200 {object} requestresponse.BrowserStateResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Router /console/browser/navigate [post]
func (h *BrowserHandler) NavigateTo(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req requestresponse.NavigateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	state, err := h.browser.NavigateTo(r.Context(), claims, h.session(r, claims), req.Frames)
	writeState(w, state, err)
}

// JumpTo godoc
// @Summary Переход по хлебной крошке
// @Tags Browser
// @Accept json
// @Produce json
// @Param body body requestresponse.JumpRequest true "Индекс крошки, -1 это корень"
// @Success 200 {object} requestresponse.BrowserStateResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Router /console/browser/jump [post]
func (h *BrowserHandler) JumpTo(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req requestresponse.JumpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	state, err := h.browser.JumpTo(r.Context(), claims, h.session(r, claims), req.Index)
	writeState(w, state, err)
}

// GoUp godoc
// @Summary На уровень вверх
// @Tags Browser
// @Produce json
// @Success 200 {object} requestresponse.BrowserStateResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Router /console/browser/up [post]
func (h *BrowserHandler) GoUp(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	state, err := h.browser.GoUp(r.Context(), claims, h.session(r, claims))
	writeState(w, state, err)
}

// Refresh godoc
// @Summary Перезагрузить текущую папку
// @Tags Browser
// @Produce json
// @Success 200 {object} requestresponse.BrowserStateResponse
// @Router /console/browser/refresh [post]
func (h *BrowserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	state, err := h.browser.Refresh(r.Context(), claims, h.session(r, claims))
	writeState(w, state, err)
}

// ToggleExpanded godoc
// @Summary Раскрыть или свернуть узел дерева
// @Tags Browser
// @Accept json
// @Produce json
// @Param body body requestresponse.ToggleRequest true "Папка"
// @Success 200 {object} requestresponse.BrowserStateResponse
// @Router /console/browser/expand [post]
func (h *BrowserHandler) ToggleExpanded(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, func(id string) browser.Command { return browser.ToggleExpanded{FolderID: id} })
}

// ToggleFile godoc
// @Summary Выделить файл или снять выделение
// @Tags Browser
// @Accept json
// @Produce json
// @Param body body requestresponse.ToggleRequest true "Файл текущей папки"
// @Success 200 {object} requestresponse.BrowserStateResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /console/browser/select/file [post]
func (h *BrowserHandler) ToggleFile(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, func(id string) browser.Command { return browser.ToggleFile{FileID: id} })
}

// ToggleFolder godoc
// @Summary Выделить папку или снять выделение
// @Tags Browser
// @Accept json
// @Produce json
// @Param body body requestresponse.ToggleRequest true "Подпапка текущей папки"
// @Success 200 {object} requestresponse.BrowserStateResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /console/browser/select/folder [post]
func (h *BrowserHandler) ToggleFolder(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, func(id string) browser.Command { return browser.ToggleFolder{FolderID: id} })
}

func (h *BrowserHandler) toggle(w http.ResponseWriter, r *http.Request, command func(id string) browser.Command) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req requestresponse.ToggleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	state, err := h.browser.Dispatch(h.session(r, claims), command(req.ID))
	writeState(w, state, err)
}

// SelectAll godoc
// @Summary Выделить всё содержимое текущей папки
// @Tags Browser
// @Produce json
// @Success 200 {object} requestresponse.BrowserStateResponse
// @Router /console/browser/select/all [post]
func (h *BrowserHandler) SelectAll(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	state, err := h.browser.Dispatch(h.session(r, claims), browser.SelectAll{})
	writeState(w, state, err)
}

// ClearSelection godoc
// @Summary Снять выделение
// @Tags Browser
// @Produce json
// @Success 200 {object} requestresponse.BrowserStateResponse
// @Router /console/browser/select/clear [post]
func (h *BrowserHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	state, err := h.browser.Dispatch(h.session(r, claims), browser.ClearSelection{})
	writeState(w, state, err)
}

// Tree godoc
// @Summary Дочерние папки для дерева
// @Description Без folder_id возвращает корневые папки организации.
// @Tags Browser
// @Produce json
// @Param organization_id query string true "Организация"
// @Param folder_id query string false "Папка"
// @Success 200 {array} model.Folder
// @Failure 403 {object} requestresponse.ErrorResponse
// @Router /console/browser/tree [get]
func (h *BrowserHandler) Tree(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	folders, err := h.browser.Children(r.Context(), claims,
		r.URL.Query().Get("organization_id"), r.URL.Query().Get("folder_id"))
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, folders)
}

// CreateFolder godoc
// @Summary Создать папку в текущей папке
// @Tags Browser
// @Accept json
// @Produce json
// @Param body body requestresponse.FolderNameRequest true "Имя папки"
// @Success 201 {object} requestresponse.BrowserStateResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Router /console/browser/folders [post]
func (h *BrowserHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req requestresponse.FolderNameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	state, err := h.browser.CreateFolder(r.Context(), claims, h.session(r, claims), req.Name)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusCreated, requestresponse.BrowserStateFromModel(state))
}

// RenameFolder godoc
// @Summary Переименовать папку
// @Tags Browser
// @Accept json
// @Produce json
// @Param folder_id path string true "Папка"
// @Param body body requestresponse.FolderNameRequest true "Новое имя"
// @Success 200 {object} requestresponse.BrowserStateResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Router /console/browser/folders/{folder_id} [put]
func (h *BrowserHandler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req requestresponse.FolderNameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	state, err := h.browser.RenameFolder(r.Context(), claims, h.session(r, claims), chi.URLParam(r, "folder_id"), req.Name)
	writeState(w, state, err)
}

// DeleteFolder godoc
// @Summary Удалить папку
// @Description Требует токен подтверждения действия delete_folder.
// @Tags Browser
// @Accept json
// @Produce json
// @Param folder_id path string true "Папка"
// @Param body body requestresponse.DeleteRequest true "Подтверждение"
// @Success 200 {object} requestresponse.BrowserStateResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Router /console/browser/folders/{folder_id} [delete]
func (h *BrowserHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req requestresponse.DeleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	state, err := h.browser.DeleteFolder(r.Context(), claims, h.session(r, claims), chi.URLParam(r, "folder_id"), req.ConfirmToken)
	writeState(w, state, err)
}

// DeleteSelected godoc
// @Summary Удалить выделенное
// @Description Требует подтверждения bulk_delete с целью selection_digest из состояния проводника. Ошибки отдельных элементов попадают в отчёт.
// @Tags Browser
// @Accept json
// @Produce json
// @Param body body requestresponse.DeleteRequest true "Подтверждение"
// @Success 200 {object} requestresponse.BulkResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Router /console/browser/selection/delete [post]
func (h *BrowserHandler) DeleteSelected(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req requestresponse.DeleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	report, state, err := h.bulk.DeleteSelected(r.Context(), claims, h.session(r, claims), req.ConfirmToken)
	writeBulk(w, report, state, err)
}

// MoveSelected godoc
// @Summary Переместить выделенное
// @Tags Browser
// @Accept json
// @Produce json
// @Param body body requestresponse.MoveRequest true "Папка назначения"
// @Success 200 {object} requestresponse.BulkResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Router /console/browser/selection/move [post]
func (h *BrowserHandler) MoveSelected(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req requestresponse.MoveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	report, state, err := h.bulk.MoveSelected(r.Context(), claims, h.session(r, claims), req.DestinationID)
	writeBulk(w, report, state, err)
}

func writeBulk(w http.ResponseWriter, report *service.BulkReport, state browser.State, err error) {
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, requestresponse.BulkResponse{
		Report: report,
		State:  requestresponse.BrowserStateFromModel(state),
	})
}

// Search godoc
// @Summary Поиск файлов и папок
// @Description Запросы одной вкладки дебаунсятся; вытесненный запрос возвращает superseded=true без результатов.
// @Tags Browser
// @Produce json
// @Param q query string true "Строка поиска"
// @Param organization_id query string false "Организация, по умолчанию открытая в проводнике"
// @Param folder_id query string false "Ограничить поиск папкой"
// @Success 200 {object} service.FileSearchResult
// @Failure 403 {object} requestresponse.ErrorResponse
// @Router /console/browser/search [get]
func (h *BrowserHandler) Search(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	session := h.session(r, claims)
	organizationID := r.URL.Query().Get("organization_id")
	if organizationID == "" {
		organizationID = h.browser.State(session).OrganizationID
	}

	result, err := h.search.SearchFiles(r.Context(), claims, session, organizationID,
		r.URL.Query().Get("folder_id"), r.URL.Query().Get("q"))
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, result)
}

// Download godoc
// @Summary Скачать файл
// @Description Файл отдаётся потоком из API платформы.
// @Tags Browser
// @Produce octet-stream
// @Param folder_id path string true "Папка файла"
// @Param file_id path string true "Файл"
// @Success 200 {file} file
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /console/folders/{folder_id}/files/{file_id}/download [get]
func (h *BrowserHandler) Download(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	download, err := h.browser.Download(r.Context(), claims, chi.URLParam(r, "folder_id"), chi.URLParam(r, "file_id"))
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	defer download.Body.Close()

	contentType := download.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if download.ContentDisposition != "" {
		w.Header().Set("Content-Disposition", download.ContentDisposition)
	}
	if download.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(download.ContentLength, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, download.Body); err != nil {
		log.Printf("[BrowserHandler/Download] передача файла прервана: %v", err)
	}
}
