package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"docs-admin-console/internal/model/requestresponse"
	"docs-admin-console/internal/service"
	"docs-admin-console/internal/util"

	"github.com/go-chi/chi/v5"
)


type UploadHandler struct {
	uploads       *service.UploadService
	previewExpire time.Duration
}

func NewUploadHandler(uploads *service.UploadService, previewExpire time.Duration) *UploadHandler {
	return &UploadHandler{uploads: uploads, previewExpire: previewExpire}
}

// Drop godoc
// @Summary Принять файлы для загрузки в папку
// @Description Файлы больше лимита отклоняются сразу, остальные ждут переименования.
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param folder_id formData string true "Папка назначения"
// @Param files formData file true "Файлы"
// @Success 201 {object} service.UploadSession
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 413 {object} requestresponse.ErrorResponse
// @Router /console/uploads [post]
func (h *UploadHandler) Drop(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	if !parseMultipart(w, r, h.uploads.Limits().RequestCeiling(service.UploadToFolder, service.MaxDropFiles)) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) > service.MaxDropFiles {
		util.HandleError(w, "Envie no máximo "+strconv.Itoa(service.MaxDropFiles)+" arquivos por vez", http.StatusBadRequest)
		return
	}
	dropped := make([]service.DroppedFile, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			util.HandleError(w, "Não foi possível ler o arquivo "+header.Filename, http.StatusBadRequest)
			return
		}
		defer file.Close()

		dropped = append(dropped, droppedFile(header, file))
	}

	session, err := h.uploads.Drop(r.Context(), claims, r.FormValue("folder_id"), dropped)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusCreated, session)
}

func droppedFile(header *multipart.FileHeader, file multipart.File) service.DroppedFile {
	return service.DroppedFile{
		Name:        header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Reader:      file,
	}
}

// GetUpload godoc
// @Summary Состояние сессии загрузки
// @Description Возвращает очередь, отклонённые файлы и прогресс отправки.
// @Tags Uploads
// @Produce json
// @Param upload_id path string true "Сессия"
// @Success 200 {object} service.UploadSession
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /console/uploads/{upload_id} [get]
func (h *UploadHandler) GetUpload(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	session, err := h.uploads.Progress(claims, chi.URLParam(r, "upload_id"))
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, session)
}

// RenameFile godoc
// @Summary Переименовать файл в очереди и задать напоминание
// @Tags Uploads
// @Accept json
// @Produce json
// @Param upload_id path string true "Сессия"
// @Param index path int true "Позиция файла в очереди"
// @Param body body requestresponse.RenameUploadRequest true "Имя и напоминание"
// @Success 200 {object} service.UploadSession
// @Failure 400 {object} requestresponse.ErrorResponse
// @Router /console/uploads/{upload_id}/files/{index} [put]
func (h *UploadHandler) RenameFile(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		util.HandleError(w, "Índice de arquivo inválido", http.StatusBadRequest)
		return
	}
	var req requestresponse.RenameUploadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	input := service.RenameInput{DisplayName: req.DisplayName, RemoveExpiration: req.RemoveExpiration}
	if req.Expiration != nil {
		alertDate, err := parseDate(req.Expiration.AlertDate)
		if err != nil {
			util.HandleError(w, "Data de alerta inválida", http.StatusBadRequest)
			return
		}
		input.Expiration = &service.ExpirationInput{AlertDate: alertDate, Description: req.Expiration.Description}
	}

	session, err := h.uploads.Rename(claims, chi.URLParam(r, "upload_id"), index, input)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, session)
}

// parseDate : клиент присылает дату без времени, но RFC3339 тоже принимается
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// Commit godoc
// @Summary Отправить очередь в папку
// @Description Одним multipart-запросом, затем по одному напоминанию на файл. При ошибке очередь сохраняется для повтора.
// @Tags Uploads
// @Produce json
// @Param upload_id path string true "Сессия"
// @Success 200 {object} service.UploadSession
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 409 {object} requestresponse.ErrorResponse
// @Router /console/uploads/{upload_id}/commit [post]
func (h *UploadHandler) Commit(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	session, err := h.uploads.Commit(r.Context(), claims, chi.URLParam(r, "upload_id"))
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, session)
}

// Preview godoc
// @Summary Ссылка для предпросмотра файла из очереди
// @Tags Uploads
// @Produce json
// @Param upload_id path string true "Сессия"
// @Param index path int true "Позиция файла в очереди"
// @Success 200 {object} requestresponse.PreviewResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Router /console/uploads/{upload_id}/files/{index}/preview [get]
func (h *UploadHandler) Preview(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		util.HandleError(w, "Índice de arquivo inválido", http.StatusBadRequest)
		return
	}

	url, err := h.uploads.PreviewURL(r.Context(), claims, chi.URLParam(r, "upload_id"), index, h.previewExpire)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, requestresponse.PreviewResponse{
		URL:       url,
		ExpiresIn: int(h.previewExpire.Seconds()),
	})
}

// Cancel godoc
// @Summary Отменить загрузку
// @Tags Uploads
// @Produce json
// @Param upload_id path string true "Сессия"
// @Success 200 {object} requestresponse.SuccessResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /console/uploads/{upload_id} [delete]
func (h *UploadHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	if err := h.uploads.Cancel(r.Context(), claims, chi.URLParam(r, "upload_id")); err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, requestresponse.SuccessResponse{Message: "Envio cancelado"})
}
