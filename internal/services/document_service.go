package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/medvault/server/internal/integrity"
	"github.com/medvault/server/internal/models"
	"github.com/medvault/server/internal/repository"
	"github.com/medvault/server/internal/storage"
)

// DocumentService определяет интерфейс сервиса документов: загрузка с
// продолжением цепочки целостности, проверка, перечисление и скачивание.
type DocumentService interface {
	Upload(ctx context.Context, fileName string, reader io.Reader, contentType string) (*models.LinkageRecord, error)
	Download(ctx context.Context, fileName string) (io.ReadCloser, *models.LinkageRecord, error)
	Delete(ctx context.Context, fileName string) error
	List(ctx context.Context) ([]models.DocumentInfo, error)
	Verify(ctx context.Context, fileName string) (*models.VerificationResult, error)
	VerifyChain(ctx context.Context) (*integrity.ChainReport, error)
}

const (
	// Префикс ключей документов в объектном хранилище.
	objectPrefix = "documents/"
	// Количество повторных попыток продолжить цепочку при конфликте append.
	maxChainRetries = 3
)

// Убедимся, что documentService удовлетворяет интерфейсу DocumentService.
var _ DocumentService = (*documentService)(nil)

type documentService struct {
	verificationRepo repository.VerificationRepository
	fileStorage      storage.FileStorage
	chainID          string // Идентификатор цепочки этого развертывания

	// Сериализует секцию "прочитать последнюю запись - построить - вставить"
	// внутри процесса. Для нескольких экземпляров сервера гонку ловит
	// уникальный индекс (chain_id, previous_hash) в БД.
	chainMu sync.Mutex
}

// NewDocumentService создает новый экземпляр сервиса документов.
func NewDocumentService(
	verificationRepo repository.VerificationRepository,
	fileStorage storage.FileStorage,
	chainID string,
) DocumentService {
	return &documentService{
		verificationRepo: verificationRepo,
		fileStorage:      fileStorage,
		chainID:          chainID,
	}
}

// Upload загружает документ и продолжает цепочку целостности.
// Порядок шагов фиксирован: хеширование -> чтение последней записи ->
// построение блока -> запись файла -> запись блока. Файл пишется строго
// ДО записи цепочки: при ошибке записи файла не остается осиротевшей
// записи, а при ошибке записи блока после успешной записи файла
// возвращается отдельная ошибка ErrPartialWrite.
func (s *documentService) Upload(
	ctx context.Context,
	fileName string,
	reader io.Reader,
	contentType string,
) (*models.LinkageRecord, error) {
	sanitized := integrity.SanitizeFileName(fileName)
	if sanitized == "" {
		log.Printf("[DocumentService] Имя файла '%s' после очистки пусто", fileName)
		return nil, ErrInvalidFileName
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// Читаем содержимое одним проходом: байты нужны и для хеша, и для загрузки
	data, err := io.ReadAll(reader)
	if err != nil {
		log.Printf("[DocumentService] Ошибка чтения содержимого '%s': %v", sanitized, err)
		return nil, fmt.Errorf("ошибка чтения содержимого файла: %w", err)
	}
	documentHash := integrity.HashBytes(data)

	meta := models.FileMeta{
		Name: sanitized,
		Size: int64(len(data)),
		Type: contentType,
	}

	s.chainMu.Lock()
	defer s.chainMu.Unlock()

	// Файл пишется до записи цепочки. Повторная загрузка под тем же именем
	// перезаписывает объект и создает НОВОЕ поколение записи цепочки.
	objectKey := objectPrefix + sanitized
	if err = s.fileStorage.UploadFile(ctx, objectKey, bytes.NewReader(data), meta.Size, contentType); err != nil {
		log.Printf("[DocumentService] Ошибка записи файла '%s', запись цепочки не создается: %v", sanitized, err)
		return nil, fmt.Errorf("ошибка сохранения файла в хранилище: %w", err)
	}

	// Продолжаем цепочку с ограниченным числом повторов: конкурентная
	// загрузка могла успеть занять тот же previous_hash.
	for attempt := 1; attempt <= maxChainRetries; attempt++ {
		previousHash, err := s.latestBlockHash(ctx)
		if err != nil {
			return nil, s.partialWrite(sanitized, err)
		}

		record, err := integrity.BuildRecord(s.chainID, documentHash, previousHash, meta, time.Now().UnixMilli())
		if err != nil {
			return nil, s.partialWrite(sanitized, err)
		}

		recordID, err := s.verificationRepo.CreateRecord(ctx, record)
		if err == nil {
			record.ID = recordID
			log.Printf("[DocumentService] Документ '%s' загружен, запись цепочки ID %d (previous_hash=%s)",
				sanitized, recordID, previousHash)
			return record, nil
		}
		if errors.Is(err, repository.ErrChainConflict) {
			log.Printf("[DocumentService] Конфликт продолжения цепочки для '%s' (попытка %d/%d), перечитываем",
				sanitized, attempt, maxChainRetries)
			continue
		}
		return nil, s.partialWrite(sanitized, err)
	}

	log.Printf("[DocumentService] Не удалось продолжить цепочку для '%s' за %d попыток", sanitized, maxChainRetries)
	return nil, ErrChainBusy
}

// latestBlockHash возвращает block_hash последней записи цепочки
// или корневой сентинел для пустой цепочки.
func (s *documentService) latestBlockHash(ctx context.Context) (string, error) {
	latest, err := s.verificationRepo.GetLatestRecord(ctx, s.chainID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return integrity.RootHash, nil
		}
		return "", err
	}
	return latest.BlockHash, nil
}

// partialWrite оборачивает ошибку, возникшую после успешной записи файла:
// файл уже в хранилище, но записи цепочки для него нет.
func (s *documentService) partialWrite(fileName string, err error) error {
	log.Printf("[DocumentService] Файл '%s' записан, но запись цепочки не создана: %v", fileName, err)
	return fmt.Errorf("%w: %v", ErrPartialWrite, err)
}

// Download возвращает содержимое документа и его запись цепочки.
// Запись может отсутствовать (например, после частичной записи) -
// тогда вторым значением возвращается nil.
func (s *documentService) Download(
	ctx context.Context,
	fileName string,
) (io.ReadCloser, *models.LinkageRecord, error) {
	sanitized := integrity.SanitizeFileName(fileName)

	fileReader, err := s.fileStorage.DownloadFile(ctx, objectPrefix+sanitized)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			log.Printf("[DocumentService] Документ '%s' не найден в хранилище", sanitized)
			return nil, nil, ErrDocumentNotFound
		}
		return nil, nil, fmt.Errorf("ошибка скачивания документа: %w", err)
	}

	record, err := s.verificationRepo.GetRecordByName(ctx, s.chainID, sanitized)
	if err != nil {
		if !errors.Is(err, repository.ErrRecordNotFound) {
			_ = fileReader.Close()
			return nil, nil, fmt.Errorf("ошибка получения записи цепочки: %w", err)
		}
		record = nil // Файл без записи цепочки: отдаем содержимое без метаданных блока
	}

	return fileReader, record, nil
}

// Delete удаляет файл из хранилища. Записи цепочки никогда не удаляются:
// история загрузок остается проверяемой даже после удаления файла.
func (s *documentService) Delete(ctx context.Context, fileName string) error {
	sanitized := integrity.SanitizeFileName(fileName)

	if _, err := s.fileStorage.StatFile(ctx, objectPrefix+sanitized); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("ошибка проверки существования документа: %w", err)
	}

	if err := s.fileStorage.DeleteFile(ctx, objectPrefix+sanitized); err != nil {
		return fmt.Errorf("ошибка удаления документа: %w", err)
	}

	log.Printf("[DocumentService] Документ '%s' удален, записи цепочки сохранены", sanitized)
	return nil
}

// List возвращает документы хранилища вместе со статусом верификации.
// Verified означает только наличие записи цепочки для имени файла;
// криптографическая сверка байтов выполняется отдельно методом Verify.
func (s *documentService) List(ctx context.Context) ([]models.DocumentInfo, error) {
	files, err := s.fileStorage.ListFiles(ctx, objectPrefix)
	if err != nil {
		return nil, fmt.Errorf("ошибка перечисления документов: %w", err)
	}

	documents := make([]models.DocumentInfo, 0, len(files))
	for _, file := range files {
		name := strings.TrimPrefix(file.Key, objectPrefix)
		info := models.DocumentInfo{
			Name:      name,
			URL:       "/api/documents/download?name=" + url.QueryEscape(name),
			SizeBytes: file.Size,
		}

		record, err := s.verificationRepo.GetRecordByName(ctx, s.chainID, name)
		switch {
		case err == nil:
			info.Verified = true
			info.MimeType = record.MimeType
			verificationData := record.VerificationData
			info.VerificationData = &verificationData
		case errors.Is(err, repository.ErrRecordNotFound):
			info.Verified = false
		default:
			return nil, fmt.Errorf("ошибка получения записи цепочки для '%s': %w", name, err)
		}

		documents = append(documents, info)
	}

	log.Printf("[DocumentService] Сформирован список из %d документов", len(documents))
	return documents, nil
}

// Verify сверяет текущие байты документа с его записью цепочки.
// Результат не является ошибкой: несовпадение хеша, отсутствие файла или
// записи возвращаются как Valid=false с соответствующей причиной.
func (s *documentService) Verify(ctx context.Context, fileName string) (*models.VerificationResult, error) {
	sanitized := integrity.SanitizeFileName(fileName)
	result := &models.VerificationResult{Name: sanitized}

	fileReader, err := s.fileStorage.DownloadFile(ctx, objectPrefix+sanitized)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			result.Reason = models.ReasonBlobMissing
			return result, nil
		}
		return nil, fmt.Errorf("ошибка скачивания документа для проверки: %w", err)
	}
	defer func() {
		if closeErr := fileReader.Close(); closeErr != nil {
			log.Printf("[DocumentService] Ошибка закрытия файла '%s' после проверки: %v", sanitized, closeErr)
		}
	}()

	candidateHash, err := integrity.HashReader(fileReader)
	if err != nil {
		return nil, fmt.Errorf("ошибка хеширования документа при проверке: %w", err)
	}

	record, err := s.verificationRepo.GetRecordByName(ctx, s.chainID, sanitized)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			result.Reason = models.ReasonRecordMissing
			return result, nil
		}
		return nil, fmt.Errorf("ошибка получения записи цепочки при проверке: %w", err)
	}

	if candidateHash != record.DocumentHash {
		log.Printf("[DocumentService] Несовпадение хеша документа '%s': ожидался %s, получен %s",
			sanitized, record.DocumentHash, candidateHash)
		result.Reason = models.ReasonHashMismatch
		return result, nil
	}

	log.Printf("[DocumentService] Документ '%s' успешно прошел проверку", sanitized)
	result.Valid = true
	return result, nil
}

// VerifyChain выполняет сквозную проверку всей цепочки: для каждой записи
// повторно выводится хеш блока и сверяется связность previous_hash.
func (s *documentService) VerifyChain(ctx context.Context) (*integrity.ChainReport, error) {
	records, err := s.verificationRepo.ListRecords(ctx, s.chainID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения записей цепочки: %w", err)
	}

	report, err := integrity.VerifyChain(records)
	if err != nil {
		return nil, fmt.Errorf("ошибка проверки цепочки: %w", err)
	}

	if report.Valid {
		log.Printf("[DocumentService] Цепочка '%s' цела (%d записей)", s.chainID, report.Length)
	} else {
		log.Printf("[DocumentService] Цепочка '%s' нарушена: запись %d, причина %s",
			s.chainID, report.BrokenIndex, report.Reason)
	}
	return report, nil
}

// Кастомные ошибки сервиса документов.
var (
	ErrDocumentNotFound = errors.New("документ не найден")
	ErrInvalidFileName  = errors.New("недопустимое имя файла")
	ErrPartialWrite     = errors.New("файл записан, но запись цепочки не создана")
	ErrChainBusy        = errors.New("не удалось продолжить цепочку из-за конкурентных загрузок")
)
