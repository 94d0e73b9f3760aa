package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/medvault/server/internal/services"
)

// Максимальный размер загружаемого документа - 50 МБ.
const maxUploadSize = 50 << 20

// DocumentHandler обрабатывает HTTP-запросы, связанные с документами.
type DocumentHandler struct {
	documentService services.DocumentService
}

// NewDocumentHandler создает новый экземпляр DocumentHandler.
func NewDocumentHandler(ds services.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: ds}
}

// Upload обрабатывает POST запрос на загрузку документа (multipart, поле "file").
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewareUserID(r)
	if !ok {
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	log.Printf("[DocumentHandler:Upload] Запрос на загрузку документа от пользователя %d", userID)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		log.Printf("[DocumentHandler:Upload] Ошибка разбора multipart-формы: %v", err)
		http.Error(w, "Неверный формат запроса или слишком большой файл", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		log.Printf("[DocumentHandler:Upload] Поле 'file' отсутствует: %v", err)
		http.Error(w, "Файл не передан (поле 'file')", http.StatusBadRequest)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Printf("[DocumentHandler:Upload] Ошибка закрытия файла: %v", closeErr)
		}
	}()

	contentType := header.Header.Get("Content-Type")

	record, err := h.documentService.Upload(r.Context(), header.Filename, file, contentType)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidFileName):
			http.Error(w, "Недопустимое имя файла", http.StatusBadRequest)
		case errors.Is(err, services.ErrChainBusy):
			// Конкурентные загрузки заняли цепочку; клиент может повторить запрос
			http.Error(w, "Цепочка занята конкурентной загрузкой, повторите попытку", http.StatusConflict)
		case errors.Is(err, services.ErrPartialWrite):
			// Файл записан, но запись цепочки не создана - отдельное состояние,
			// которое нельзя маскировать под обычный успех или отказ
			log.Printf("[DocumentHandler:Upload] Частичная запись для пользователя %d: %v", userID, err)
			http.Error(w, "Файл сохранен, но запись о верификации не создана; загрузите файл повторно",
				http.StatusInternalServerError)
		default:
			log.Printf("[DocumentHandler:Upload] Внутренняя ошибка при загрузке для пользователя %d: %v", userID, err)
			http.Error(w, "Внутренняя ошибка сервера при загрузке документа", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err = json.NewEncoder(w).Encode(record); err != nil {
		log.Printf("[DocumentHandler:Upload] Ошибка кодирования ответа: %v", err)
	}
	log.Printf("[DocumentHandler:Upload] Документ '%s' успешно загружен пользователем %d",
		record.DocumentName, userID)
}

// List обрабатывает GET запрос на получение списка документов со статусом верификации.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewareUserID(r)
	if !ok {
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	log.Printf("[DocumentHandler:List] Запрос списка документов от пользователя %d", userID)

	documents, err := h.documentService.List(r.Context())
	if err != nil {
		log.Printf("[DocumentHandler:List] Внутренняя ошибка при получении списка: %v", err)
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(documents); err != nil {
		log.Printf("[DocumentHandler:List] Ошибка кодирования ответа: %v", err)
	}
}

// Download обрабатывает GET запрос на скачивание документа.
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewareUserID(r)
	if !ok {
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "Не указано имя документа (параметр 'name')", http.StatusBadRequest)
		return
	}

	log.Printf("[DocumentHandler:Download] Запрос на скачивание '%s' от пользователя %d", name, userID)

	fileReader, record, err := h.documentService.Download(r.Context(), name)
	if err != nil {
		if errors.Is(err, services.ErrDocumentNotFound) {
			http.Error(w, "Документ не найден", http.StatusNotFound)
		} else {
			log.Printf("[DocumentHandler:Download] Внутренняя ошибка при скачивании '%s': %v", name, err)
			http.Error(w, "Внутренняя ошибка сервера при скачивании документа", http.StatusInternalServerError)
		}
		return
	}
	defer func() {
		if closeErr := fileReader.Close(); closeErr != nil {
			log.Printf("[DocumentHandler:Download] Ошибка закрытия fileReader: %v", closeErr)
		}
	}()

	contentType := "application/octet-stream"
	if record != nil {
		if record.MimeType != "" {
			contentType = record.MimeType
		}
		w.Header().Set("Content-Length", strconv.FormatInt(record.SizeBytes, 10))
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Type", contentType)

	if _, err = io.Copy(w, fileReader); err != nil {
		log.Printf("[DocumentHandler:Download] Ошибка копирования содержимого '%s' в ответ: %v", name, err)
		return
	}

	log.Printf("[DocumentHandler:Download] Документ '%s' успешно отправлен пользователю %d", name, userID)
}

// Verify обрабатывает POST запрос на криптографическую проверку документа.
func (h *DocumentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewareUserID(r)
	if !ok {
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "Не указано имя документа (параметр 'name')", http.StatusBadRequest)
		return
	}

	log.Printf("[DocumentHandler:Verify] Запрос на проверку '%s' от пользователя %d", name, userID)

	result, err := h.documentService.Verify(r.Context(), name)
	if err != nil {
		log.Printf("[DocumentHandler:Verify] Внутренняя ошибка при проверке '%s': %v", name, err)
		http.Error(w, "Внутренняя ошибка сервера при проверке документа", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(result); err != nil {
		log.Printf("[DocumentHandler:Verify] Ошибка кодирования ответа: %v", err)
	}
}

// VerifyChain обрабатывает GET запрос на сквозную проверку цепочки.
func (h *DocumentHandler) VerifyChain(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewareUserID(r)
	if !ok {
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	log.Printf("[DocumentHandler:VerifyChain] Запрос на проверку цепочки от пользователя %d", userID)

	report, err := h.documentService.VerifyChain(r.Context())
	if err != nil {
		log.Printf("[DocumentHandler:VerifyChain] Внутренняя ошибка при проверке цепочки: %v", err)
		http.Error(w, "Внутренняя ошибка сервера при проверке цепочки", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(report); err != nil {
		log.Printf("[DocumentHandler:VerifyChain] Ошибка кодирования ответа: %v", err)
	}
}

// Delete обрабатывает DELETE запрос на удаление документа.
// Удаляется только файл; записи цепочки остаются.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewareUserID(r)
	if !ok {
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "Не указано имя документа (параметр 'name')", http.StatusBadRequest)
		return
	}

	log.Printf("[DocumentHandler:Delete] Запрос на удаление '%s' от пользователя %d", name, userID)

	if err := h.documentService.Delete(r.Context(), name); err != nil {
		if errors.Is(err, services.ErrDocumentNotFound) {
			http.Error(w, "Документ не найден", http.StatusNotFound)
		} else {
			log.Printf("[DocumentHandler:Delete] Внутренняя ошибка при удалении '%s': %v", name, err)
			http.Error(w, "Внутренняя ошибка сервера при удалении документа", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent) // 204 No Content
	log.Printf("[DocumentHandler:Delete] Документ '%s' успешно удален пользователем %d", name, userID)
}
