package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/aidar/certgen/internal/service"
)

// ContextKey это кастомный тип для ключей контекста
type ContextKey string

// OperatorKey ключ контекста для имени оператора
const OperatorKey ContextKey = "operator"

// TokenValidator проверяет JWT токен
type TokenValidator interface {
	ValidateToken(token string) (*service.Claims, error)
}

// AuthMiddleware создает middleware для валидации JWT токенов
func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Получаем токен из заголовка Authorization
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "missing authorization header")
				return
			}

			// Проверяем формат Bearer
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				unauthorized(w, "invalid authorization header format")
				return
			}

			claims, err := validator.ValidateToken(parts[1])
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), OperatorKey, claims.Operator)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"` + message + `"}}`))
}

// GetOperatorFromContext извлекает имя оператора из контекста
func GetOperatorFromContext(ctx context.Context) string {
	operator, ok := ctx.Value(OperatorKey).(string)
	if !ok {
		return ""
	}
	return operator
}
