package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/aidar/certgen/internal/domain"
)

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail содержит код и описание ошибки
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondWithError отправляет ответ с ошибкой
func RespondWithError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	render.Status(r, statusCode)
	render.JSON(w, r, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// HandleError преобразует доменные ошибки в HTTP ответы
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	code := string(domain.MapErrorToCode(err))

	switch {
	case errors.Is(err, domain.ErrInvalidLines),
		errors.Is(err, domain.ErrMalformedRow),
		errors.Is(err, domain.ErrUnsupportedFormat):
		RespondWithError(w, r, http.StatusBadRequest, code, err.Error())
	case errors.Is(err, domain.ErrUnsupportedLineCount):
		RespondWithError(w, r, http.StatusUnprocessableEntity, code, err.Error())
	case errors.Is(err, domain.ErrRunNotFound), errors.Is(err, domain.ErrFileNotFound):
		RespondWithError(w, r, http.StatusNotFound, code, "resource not found")
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrInvalidToken):
		RespondWithError(w, r, http.StatusUnauthorized, code, "unauthorized")
	default:
		RespondWithError(w, r, http.StatusInternalServerError, string(domain.CodeInternal), "internal server error")
	}
}
