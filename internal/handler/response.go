package handler

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/aidar/certgen/internal/middleware"
)

// RespondWithJSON отправляет JSON ответ с указанным статус кодом
func RespondWithJSON(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) {
	render.Status(r, statusCode)
	render.JSON(w, r, data)
}

// operatorFrom возвращает оператора, прошедшего авторизацию
func operatorFrom(r *http.Request) string {
	return middleware.GetOperatorFromContext(r.Context())
}
