package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/medvault/server/internal/models"
)

// VerificationRepository определяет методы для работы с записями цепочки
// целостности документов. Записи создаются один раз и никогда не изменяются.
type VerificationRepository interface {
	CreateRecord(ctx context.Context, record *models.LinkageRecord) (int64, error)
	GetLatestRecord(ctx context.Context, chainID string) (*models.LinkageRecord, error)
	GetRecordByName(ctx context.Context, chainID, documentName string) (*models.LinkageRecord, error)
	ListRecords(ctx context.Context, chainID string) ([]models.LinkageRecord, error)
}

// postgresVerificationRepository реализует VerificationRepository для PostgreSQL.
type postgresVerificationRepository struct {
	db *sqlx.DB
}

// NewPostgresVerificationRepository создает новый экземпляр репозитория записей цепочки.
func NewPostgresVerificationRepository(db *sqlx.DB) VerificationRepository {
	return &postgresVerificationRepository{db: db}
}

// Колонки таблицы document_verifications, выбираемые запросами чтения.
const verificationColumns = `id, record_uid, chain_id, document_name, document_hash,
	previous_hash, block_hash, block_timestamp, size_bytes, mime_type, verification_data, created_at`

// CreateRecord создает новую запись цепочки.
// Уникальный индекс (chain_id, previous_hash) реализует атомарный условный
// append: если параллельная загрузка уже продолжила цепочку от того же
// previous_hash, вставка завершается нарушением уникальности и возвращается
// ErrChainConflict. Вызывающий перечитывает последнюю запись и повторяет попытку.
func (r *postgresVerificationRepository) CreateRecord(
	ctx context.Context,
	record *models.LinkageRecord,
) (int64, error) {
	query := `INSERT INTO document_verifications
	          (record_uid, chain_id, document_name, document_hash, previous_hash,
	           block_hash, block_timestamp, size_bytes, mime_type, verification_data)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	var recordID int64

	err := r.db.QueryRowxContext(ctx, query,
		record.RecordUID, record.ChainID, record.DocumentName, record.DocumentHash,
		record.PreviousHash, record.BlockHash, record.Timestamp, record.SizeBytes,
		record.MimeType, record.VerificationData,
	).Scan(&recordID)

	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			log.Printf("[VerificationRepo] Конфликт продолжения цепочки '%s': previous_hash '%s' уже занят",
				record.ChainID, record.PreviousHash)
			return 0, ErrChainConflict
		}
		log.Printf("[VerificationRepo] Непредвиденная ошибка при создании записи для '%s': %v",
			record.DocumentName, err)
		return 0, fmt.Errorf("ошибка выполнения запроса на создание записи цепочки: %w", err)
	}

	log.Printf("[VerificationRepo] Запись цепочки (ID: %d) успешно создана для документа '%s'",
		recordID, record.DocumentName)
	return recordID, nil
}

// GetLatestRecord возвращает последнюю по времени создания запись цепочки.
// Пустая цепочка - это не ошибка уровня хранилища, но для единообразия
// возвращается ErrRecordNotFound; вызывающий подставляет корневой сентинел.
func (r *postgresVerificationRepository) GetLatestRecord(
	ctx context.Context,
	chainID string,
) (*models.LinkageRecord, error) {
	query := `SELECT ` + verificationColumns + `
	          FROM document_verifications
	          WHERE chain_id=$1
	          ORDER BY created_at DESC, id DESC
	          LIMIT 1`
	var record models.LinkageRecord

	err := r.db.GetContext(ctx, &record, query, chainID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("[VerificationRepo] Цепочка '%s' пуста", chainID)
			return nil, ErrRecordNotFound
		}
		log.Printf("[VerificationRepo] Ошибка при получении последней записи цепочки '%s': %v", chainID, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение последней записи: %w", err)
	}

	log.Printf("[VerificationRepo] Последняя запись цепочки '%s': ID %d ('%s')",
		chainID, record.ID, record.DocumentName)
	return &record, nil
}

// GetRecordByName возвращает самую свежую запись цепочки для указанного имени
// документа. Повторная загрузка под тем же именем создает новое поколение
// записи, поэтому выбирается последняя по времени создания.
func (r *postgresVerificationRepository) GetRecordByName(
	ctx context.Context,
	chainID, documentName string,
) (*models.LinkageRecord, error) {
	query := `SELECT ` + verificationColumns + `
	          FROM document_verifications
	          WHERE chain_id=$1 AND document_name=$2
	          ORDER BY created_at DESC, id DESC
	          LIMIT 1`
	var record models.LinkageRecord

	err := r.db.GetContext(ctx, &record, query, chainID, documentName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("[VerificationRepo] Запись для документа '%s' в цепочке '%s' не найдена",
				documentName, chainID)
			return nil, ErrRecordNotFound
		}
		log.Printf("[VerificationRepo] Ошибка при поиске записи для документа '%s': %v", documentName, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение записи документа: %w", err)
	}

	log.Printf("[VerificationRepo] Найдена запись ID %d для документа '%s'", record.ID, documentName)
	return &record, nil
}

// ListRecords возвращает все записи цепочки в порядке создания (от корня).
// Используется сквозной проверкой цепочки.
func (r *postgresVerificationRepository) ListRecords(
	ctx context.Context,
	chainID string,
) ([]models.LinkageRecord, error) {
	query := `SELECT ` + verificationColumns + `
	          FROM document_verifications
	          WHERE chain_id=$1
	          ORDER BY created_at ASC, id ASC`

	records := make([]models.LinkageRecord, 0)
	err := r.db.SelectContext(ctx, &records, query, chainID)
	if err != nil {
		log.Printf("[VerificationRepo] Ошибка при получении записей цепочки '%s': %v", chainID, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение записей цепочки: %w", err)
	}

	log.Printf("[VerificationRepo] Получено %d записей цепочки '%s'", len(records), chainID)
	return records, nil
}

// Кастомные ошибки репозитория записей цепочки.
var (
	ErrRecordNotFound = errors.New("запись цепочки не найдена")
	ErrChainConflict  = errors.New("конфликт продолжения цепочки: previous_hash уже занят")
)
