package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"docs-admin-console/internal/apiclient"
	"docs-admin-console/internal/model"
)

func LogError(message string, err error) error {
	log.Printf("%s: %v", message, err)
	return fmt.Errorf("%s: %w", message, err)
}

func HandleError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Code    int    `json:"code"`
	}{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	json.NewEncoder(w).Encode(errorResponse)
}

// HandleServiceError : распознанные ошибки отдаются с их сообщением,
// всё остальное пользователь видит как общее сообщение
func HandleServiceError(w http.ResponseWriter, err error) {
	var httpErr model.HTTPError
	if errors.As(err, &httpErr) {
		HandleError(w, httpErr.Error(), httpErr.StatusCode())
		return
	}

	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		HandleError(w, apiErr.Message, status)
		return
	}

	log.Printf("[Handler] необработанная ошибка: %v", err)
	HandleError(w, model.GenericErrorMessage, http.StatusInternalServerError)
}

func WriteJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[Handler] ошибка сериализации ответа: %v", err)
	}
}
