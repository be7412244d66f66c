package handler

import (
	"net/http"

	"docs-admin-console/internal/model"
	"docs-admin-console/internal/model/requestresponse"
	"docs-admin-console/internal/service"
	"docs-admin-console/internal/util"

	"github.com/go-chi/chi/v5"
)

type OrganizationHandler struct {
	organizations *service.OrganizationService
	reports       *service.ReportService
	preferences   *service.PreferencesService
}

func NewOrganizationHandler(organizations *service.OrganizationService, reports *service.ReportService,
	preferences *service.PreferencesService) *OrganizationHandler {
	return &OrganizationHandler{organizations: organizations, reports: reports, preferences: preferences}
}

// GetOrganization godoc
// @Summary Обзор организации
// @Description Организация, пользователи, платежи и заполненность хранилища.
// @Tags Organizations
// @Produce json
// @Param organization_id path string true "Организация"
// @Success 200 {object} model.OrganizationOverview
// @Failure 403 {object} requestresponse.ErrorResponse
// @Router /console/organizations/{organization_id} [get]
func (h *OrganizationHandler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	overview, err := h.organizations.Overview(r.Context(), claims, chi.URLParam(r, "organization_id"))
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, overview)
}

// ListPayments godoc
// @Summary Платежи организации
// @Tags Organizations
// @Produce json
// @Param organization_id path string true "Организация"
// @Success 200 {object} requestresponse.ListResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Router /console/organizations/{organization_id}/payments [get]
func (h *OrganizationHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	payments, err := h.organizations.Payments(r.Context(), claims, chi.URLParam(r, "organization_id"))
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, requestresponse.ListResponse{Data: payments, Count: len(payments)})
}

// DeleteOrganization godoc
// @Summary Удалить организацию
// @Description Только администратор, с подтверждением delete_organization.
// @Tags Organizations
// @Accept json
// @Produce json
// @Param organization_id path string true "Организация"
// @Param body body requestresponse.DeleteRequest true "Подтверждение"
// @Success 200 {object} requestresponse.SuccessResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Router /console/organizations/{organization_id} [delete]
func (h *OrganizationHandler) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req requestresponse.DeleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if err := h.organizations.Delete(r.Context(), claims, chi.URLParam(r, "organization_id"), req.ConfirmToken); err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, requestresponse.SuccessResponse{Message: "Organização excluída"})
}

// GetReport godoc
// @Summary Отчёт
// @Description Тело отчёта отдаётся в том виде, в каком его строит API платформы.
// @Tags Reports
// @Produce json
// @Param kind path string true "statistics, tccs, activity, storage, courses, authors, keywords или themes"
// @Param organization_id query string false "Организация; пусто для глобального отчёта администратора"
// @Success 200 {object} object
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Router /console/reports/{kind} [get]
func (h *OrganizationHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	report, err := h.reports.Get(r.Context(), claims, model.ReportKind(chi.URLParam(r, "kind")), r.URL.Query().Get("organization_id"))
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, report)
}

// GetPreferences godoc
// @Summary Настройки интерфейса пользователя
// @Tags Preferences
// @Produce json
// @Success 200 {object} model.Preferences
// @Router /console/preferences [get]
func (h *OrganizationHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	preferences, err := h.preferences.Get(r.Context(), claims)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, preferences)
}

// UpdatePreferences godoc
// @Summary Изменить настройки интерфейса
// @Description Размер шрифта от 12 до 24.
// @Tags Preferences
// @Accept json
// @Produce json
// @Param body body requestresponse.PreferencesRequest true "Настройки"
// @Success 200 {object} model.Preferences
// @Failure 400 {object} requestresponse.ErrorResponse
// @Router /console/preferences [put]
func (h *OrganizationHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req requestresponse.PreferencesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	preferences, err := h.preferences.Update(r.Context(), claims, service.PreferencesInput{
		FontFamily: req.FontFamily,
		FontSize:   req.FontSize,
	})
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, preferences)
}
