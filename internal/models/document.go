package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// FileMeta описывает метаданные загружаемого файла, входящие в блок цепочки.
// Порядок и имена json-полей фиксированы: они участвуют в канонической
// сериализации при вычислении хеша блока.
type FileMeta struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

// VerificationData - избыточная копия полей блока, хранится в jsonb-колонке
// для удобства отладки и отображения в клиенте.
type VerificationData struct {
	Hash         string   `json:"hash"`
	PreviousHash string   `json:"previousHash"`
	Timestamp    int64    `json:"timestamp"`
	Document     FileMeta `json:"document"`
	BlockHash    string   `json:"blockHash"`
}

// Value реализует driver.Valuer для записи VerificationData в jsonb.
func (v VerificationData) Value() (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации verification_data: %w", err)
	}
	return data, nil
}

// Scan реализует sql.Scanner для чтения VerificationData из jsonb.
func (v *VerificationData) Scan(src interface{}) error {
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, v)
	case string:
		return json.Unmarshal([]byte(data), v)
	case nil:
		*v = VerificationData{}
		return nil
	default:
		return errors.New("неподдерживаемый тип колонки verification_data")
	}
}

// LinkageRecord представляет одну запись цепочки целостности документов.
// Запись создается один раз при загрузке файла и никогда не изменяется
// и не удаляется, даже если сам файл удален из хранилища.
type LinkageRecord struct {
	ID           int64  `db:"id" json:"id"`
	RecordUID    string `db:"record_uid" json:"record_uid"` // UUID поколения документа
	ChainID      string `db:"chain_id" json:"chain_id"`
	DocumentName string `db:"document_name" json:"document_name"`
	DocumentHash string `db:"document_hash" json:"document_hash"`
	PreviousHash string `db:"previous_hash" json:"previous_hash"`
	BlockHash    string `db:"block_hash" json:"block_hash"`
	// Момент создания блока в миллисекундах Unix. Назначается создателем
	// записи и входит в каноническую сериализацию блока.
	Timestamp        int64            `db:"block_timestamp" json:"timestamp"`
	SizeBytes        int64            `db:"size_bytes" json:"size_bytes"`
	MimeType         string           `db:"mime_type" json:"mime_type"`
	VerificationData VerificationData `db:"verification_data" json:"verification_data"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
}

// DocumentInfo - элемент списка документов для клиента.
// Verified означает лишь наличие записи цепочки для файла; это НЕ результат
// криптографической сверки байтов (см. VerificationResult.Valid).
type DocumentInfo struct {
	Name             string            `json:"name"`
	URL              string            `json:"url"`
	SizeBytes        int64             `json:"size_bytes"`
	MimeType         string            `json:"mime_type"`
	Verified         bool              `json:"verified"`
	VerificationData *VerificationData `json:"verification_data,omitempty"`
}

// Причины отрицательного результата проверки документа.
const (
	ReasonHashMismatch  = "hash-mismatch"
	ReasonRecordMissing = "record-missing"
	ReasonBlobMissing   = "blob-missing"
)

// VerificationResult - результат сверки текущих байтов файла с записью цепочки.
type VerificationResult struct {
	Name   string `json:"name"`
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"` // Заполнено только при Valid == false
}
