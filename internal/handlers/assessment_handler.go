package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/medvault/server/internal/models"
	"github.com/medvault/server/internal/services"
)

// AssessmentHandler обрабатывает HTTP-запросы, связанные с оценками риска.
type AssessmentHandler struct {
	assessmentService services.AssessmentService
}

// NewAssessmentHandler создает новый экземпляр AssessmentHandler.
func NewAssessmentHandler(as services.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessmentService: as}
}

// Create обрабатывает POST запрос на сохранение результата оценки.
func (h *AssessmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewareUserID(r)
	if !ok {
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	var req models.CreateAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[AssessmentHandler:Create] Ошибка декодирования запроса: %v", err)
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	assessment, err := h.assessmentService.SaveAssessment(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownKind),
			errors.Is(err, services.ErrEmptyResult),
			errors.Is(err, services.ErrInvalidRiskScore):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log.Printf("[AssessmentHandler:Create] Внутренняя ошибка для пользователя %d: %v", userID, err)
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err = json.NewEncoder(w).Encode(assessment); err != nil {
		log.Printf("[AssessmentHandler:Create] Ошибка кодирования ответа: %v", err)
	}
}

// List обрабатывает GET запрос на получение оценок текущего пользователя.
func (h *AssessmentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewareUserID(r)
	if !ok {
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	// Получаем параметры фильтрации и пагинации (простой вариант)
	kind := r.URL.Query().Get("kind")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 || limit > 100 { // Ограничиваем максимальный лимит
		limit = 20 // Значение по умолчанию
	}
	if offset < 0 {
		offset = 0
	}

	assessments, err := h.assessmentService.ListAssessments(userID, kind, limit, offset)
	if err != nil {
		if errors.Is(err, services.ErrUnknownKind) {
			http.Error(w, "Неизвестный вид оценки", http.StatusBadRequest)
			return
		}
		log.Printf("[AssessmentHandler:List] Внутренняя ошибка для пользователя %d: %v", userID, err)
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(assessments); err != nil {
		log.Printf("[AssessmentHandler:List] Ошибка кодирования ответа: %v", err)
	}
}
