package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/medvault/server/internal/models"
	"github.com/medvault/server/internal/services"
)

// ProfileHandler обрабатывает HTTP-запросы, связанные с медицинским профилем.
type ProfileHandler struct {
	profileService services.ProfileService
}

// NewProfileHandler создает новый экземпляр ProfileHandler.
func NewProfileHandler(ps services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: ps}
}

// Get обрабатывает GET запрос на получение профиля текущего пользователя.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewareUserID(r)
	if !ok {
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	profile, err := h.profileService.GetProfile(userID)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			http.Error(w, "Профиль не найден", http.StatusNotFound)
		} else {
			log.Printf("[ProfileHandler:Get] Внутренняя ошибка для пользователя %d: %v", userID, err)
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(profile); err != nil {
		log.Printf("[ProfileHandler:Get] Ошибка кодирования ответа: %v", err)
	}
}

// Update обрабатывает PUT запрос на создание/обновление профиля.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewareUserID(r)
	if !ok {
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[ProfileHandler:Update] Ошибка декодирования запроса: %v", err)
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	profile, err := h.profileService.UpdateProfile(userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrEmptyFullName) {
			http.Error(w, "Имя не может быть пустым", http.StatusBadRequest)
		} else {
			log.Printf("[ProfileHandler:Update] Внутренняя ошибка для пользователя %d: %v", userID, err)
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(profile); err != nil {
		log.Printf("[ProfileHandler:Update] Ошибка кодирования ответа: %v", err)
	}
	log.Printf("[ProfileHandler:Update] Профиль пользователя %d обновлен", userID)
}
