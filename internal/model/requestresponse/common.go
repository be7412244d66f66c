package requestresponse

// ErrorResponse : стандартная структура ошибки
type ErrorResponse struct {
	Error   string `json:"error" example:"Forbidden"`
	Message string `json:"message" example:"Você não tem permissão para visualizar esta pasta"`
	Code    int    `json:"code" example:"403"`
}

// SuccessResponse : ответ для операций без тела
type SuccessResponse struct {
	Message string `json:"message" example:"Operação realizada com sucesso"`
}

// DeleteRequest : токен подтверждения, полученный через POST /confirmations
type DeleteRequest struct {
	ConfirmToken string `json:"confirm_token" example:"9f2c1e..."`
}

// ConfirmationRequest : запрос на подтверждение разрушительного действия
type ConfirmationRequest struct {
	Action   string `json:"action" example:"delete_folder"`
	TargetID string `json:"target_id" example:"b1e0c3f2"`
}

// ListResponse : обёртка для списков
type ListResponse struct {
	Data  interface{} `json:"data"`
	Count int         `json:"count" example:"10"`
}
