package handlers

import (
	"log"
	"net/http"

	"github.com/medvault/server/internal/middleware"
)

// middlewareUserID извлекает ID аутентифицированного пользователя из контекста
// запроса. Отсутствие ID за middleware аутентификации - внутренняя ошибка.
func middlewareUserID(r *http.Request) (int64, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		log.Printf("[Handlers] Не удалось получить userID из контекста запроса %s %s", r.Method, r.URL.Path)
	}
	return userID, ok
}
