package handler

import (
	"net/http"

	"docs-admin-console/internal/model"
	"docs-admin-console/internal/model/requestresponse"
	"docs-admin-console/internal/service"
	"docs-admin-console/internal/util"
)

type PermissionHandler struct {
	permissions   *service.PermissionService
	confirmations *service.ConfirmationService
}

func NewPermissionHandler(permissions *service.PermissionService, confirmations *service.ConfirmationService) *PermissionHandler {
	return &PermissionHandler{permissions: permissions, confirmations: confirmations}
}

// GetAccess godoc
// @Summary Эффективный доступ к папке
// @Description Администратор получает MANAGE, корень организации даёт VIEW_ONLY.
// @Tags Permissions
// @Produce json
// @Param folder_id query string false "Папка, пусто для корня"
// @Success 200 {object} requestresponse.AccessResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Router /console/permissions/access [get]
func (h *PermissionHandler) GetAccess(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	folderID := r.URL.Query().Get("folder_id")
	level, err := h.permissions.Resolve(r.Context(), claims, folderID)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, requestresponse.AccessFromLevel(folderID, level))
}

// GetPermission godoc
// @Summary Права пользователя на папку
// @Description Доступно тем, у кого MANAGE на папку. Без записи возвращается NO_ACCESS.
// @Tags Permissions
// @Produce json
// @Param user_id query string true "Пользователь"
// @Param folder_id query string true "Папка"
// @Success 200 {object} model.Permission
// @Failure 403 {object} requestresponse.ErrorResponse
// @Router /console/permissions [get]
func (h *PermissionHandler) GetPermission(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	userID := r.URL.Query().Get("user_id")
	folderID := r.URL.Query().Get("folder_id")
	if userID == "" || folderID == "" {
		util.HandleError(w, "Usuário e pasta são obrigatórios", http.StatusBadRequest)
		return
	}

	permission, err := h.permissions.Get(r.Context(), claims, userID, folderID)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, permission)
}

// SetPermission godoc
// @Summary Выдать или изменить права на папку
// @Tags Permissions
// @Accept json
// @Produce json
// @Param body body requestresponse.PermissionRequest true "Права"
// @Success 200 {object} model.Permission
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Router /console/permissions [put]
func (h *PermissionHandler) SetPermission(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req requestresponse.PermissionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	permission := model.Permission{
		FolderID:    req.FolderID,
		TargetID:    req.TargetID,
		TargetType:  req.TargetType,
		AccessLevel: req.AccessLevel,
	}
	if permission.TargetType == "" {
		permission.TargetType = model.TargetUser
	}
	if err := h.permissions.Set(r.Context(), claims, permission); err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, permission)
}

// RequestConfirmation godoc
// @Summary Запросить подтверждение разрушительного действия
// @Description Токен одноразовый и привязан к пользователю, действию и цели.
// @Tags Confirmations
// @Accept json
// @Produce json
// @Param body body requestresponse.ConfirmationRequest true "Действие и цель"
// @Success 201 {object} service.Confirmation
// @Failure 400 {object} requestresponse.ErrorResponse
// @Router /console/confirmations [post]
func (h *PermissionHandler) RequestConfirmation(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req requestresponse.ConfirmationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	confirmation, err := h.confirmations.Request(claims.UserUUID, service.ConfirmAction(req.Action), req.TargetID)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusCreated, confirmation)
}
