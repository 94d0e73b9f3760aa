package integrity

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/medvault/server/internal/models"
)

// blockPayload - каноническое представление блока для хеширования.
// Порядок полей структуры фиксирует порядок ключей в JSON, поэтому
// повторная сериализация тех же значений всегда дает те же байты
// (свойство tamper-evidence: хеш блока воспроизводим из его полей).
type blockPayload struct {
	Hash         string          `json:"hash"`
	PreviousHash string          `json:"previousHash"`
	Timestamp    int64           `json:"timestamp"`
	Document     models.FileMeta `json:"document"`
}

// ComputeBlockHash вычисляет хеш блока по его полям.
// Чистая детерминированная функция: одинаковые входы дают одинаковый хеш.
func ComputeBlockHash(documentHash, previousHash string, timestamp int64, meta models.FileMeta) (string, error) {
	payload := blockPayload{
		Hash:         documentHash,
		PreviousHash: previousHash,
		Timestamp:    timestamp,
		Document:     meta,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("ошибка канонической сериализации блока: %w", err)
	}
	return HashBytes(data), nil
}

// BuildRecord строит новую запись цепочки, продолжающую previousHash.
// Timestamp (миллисекунды Unix) назначается вызывающим; функция чистая,
// при одинаковых входах возвращает запись с одинаковым BlockHash.
func BuildRecord(
	chainID string,
	documentHash string,
	previousHash string,
	meta models.FileMeta,
	timestamp int64,
) (*models.LinkageRecord, error) {
	blockHash, err := ComputeBlockHash(documentHash, previousHash, timestamp, meta)
	if err != nil {
		return nil, err
	}

	return &models.LinkageRecord{
		RecordUID:    uuid.NewString(),
		ChainID:      chainID,
		DocumentName: meta.Name,
		DocumentHash: documentHash,
		PreviousHash: previousHash,
		BlockHash:    blockHash,
		Timestamp:    timestamp,
		SizeBytes:    meta.Size,
		MimeType:     meta.Type,
		VerificationData: models.VerificationData{
			Hash:         documentHash,
			PreviousHash: previousHash,
			Timestamp:    timestamp,
			Document:     meta,
			BlockHash:    blockHash,
		},
	}, nil
}

// RecomputeBlockHash повторно выводит хеш блока из сохраненных полей записи.
// Используется проверкой цепочки для обнаружения подмены метаданных.
func RecomputeBlockHash(record *models.LinkageRecord) (string, error) {
	meta := models.FileMeta{
		Name: record.DocumentName,
		Size: record.SizeBytes,
		Type: record.MimeType,
	}
	return ComputeBlockHash(record.DocumentHash, record.PreviousHash, record.Timestamp, meta)
}
