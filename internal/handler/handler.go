package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"docs-admin-console/internal/security"
	"docs-admin-console/internal/util"
)

// SessionHeader : вкладка клиента; у каждой вкладки свой проводник
const SessionHeader = "X-Browser-Session"

func decodeJSON(w http.ResponseWriter, r *http.Request, target interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		util.HandleError(w, "Corpo da requisição inválido", http.StatusBadRequest)
		return err
	}
	return nil
}

// requireClaims : claims кладёт JWTMiddleware, без них запрос не обрабатывается
func requireClaims(w http.ResponseWriter, r *http.Request) (*security.Claims, bool) {
	claims, err := security.GetClaimsFromContext(r.Context())
	if err != nil || claims == nil {
		util.HandleError(w, "Não autorizado", http.StatusUnauthorized)
		return nil, false
	}
	return claims, true
}

// multipartMemory : остальное multipart складывает во временные файлы
const multipartMemory = 32 << 20

// parseMultipart : тело длиннее limit обрывается при чтении, до записи на диск целиком
func parseMultipart(w http.ResponseWriter, r *http.Request, limit int64) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			util.HandleError(w, "Requisição excede o tamanho máximo permitido", http.StatusRequestEntityTooLarge)
			return false
		}
		util.HandleError(w, "Formato de requisição inválido", http.StatusBadRequest)
		return false
	}
	return true
}
