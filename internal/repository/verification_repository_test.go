package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medvault/server/internal/models"
	"github.com/medvault/server/internal/repository"
)

// Вспомогательная функция для создания мока БД и репозитория записей цепочки.
func setupVerificationRepoMock(t *testing.T) (repository.VerificationRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := repository.NewPostgresVerificationRepository(sqlxDB)
	return repo, mock
}

// Колонки, возвращаемые запросами чтения записей цепочки.
var verificationRows = []string{
	"id", "record_uid", "chain_id", "document_name", "document_hash",
	"previous_hash", "block_hash", "block_timestamp", "size_bytes",
	"mime_type", "verification_data", "created_at",
}

func testRecord() *models.LinkageRecord {
	return &models.LinkageRecord{
		RecordUID:    "c2a7d6de-7d9e-4f9f-9a57-8f1b9f3ab001",
		ChainID:      "documents",
		DocumentName: "report.pdf",
		DocumentHash: "dochash",
		PreviousHash: "0",
		BlockHash:    "blockhash",
		Timestamp:    1700000000000,
		SizeBytes:    2048,
		MimeType:     "application/pdf",
		VerificationData: models.VerificationData{
			Hash:         "dochash",
			PreviousHash: "0",
			Timestamp:    1700000000000,
			Document:     models.FileMeta{Name: "report.pdf", Size: 2048, Type: "application/pdf"},
			BlockHash:    "blockhash",
		},
	}
}

func TestVerificationRepository_CreateRecord(t *testing.T) {
	tests := []struct {
		name        string
		mockSetup   func(mock sqlmock.Sqlmock, record *models.LinkageRecord)
		expectedID  int64
		expectedErr error
	}{
		{
			name: "Успешное создание",
			mockSetup: func(mock sqlmock.Sqlmock, record *models.LinkageRecord) {
				rows := sqlmock.NewRows([]string{"id"}).AddRow(int64(1))
				mock.ExpectQuery(`INSERT INTO document_verifications`).
					WithArgs(record.RecordUID, record.ChainID, record.DocumentName,
						record.DocumentHash, record.PreviousHash, record.BlockHash,
						record.Timestamp, record.SizeBytes, record.MimeType,
						sqlmock.AnyArg()).
					WillReturnRows(rows)
			},
			expectedID:  1,
			expectedErr: nil,
		},
		{
			name: "Конфликт продолжения цепочки",
			mockSetup: func(mock sqlmock.Sqlmock, _ *models.LinkageRecord) {
				mock.ExpectQuery(`INSERT INTO document_verifications`).
					WillReturnError(&pq.Error{Code: "23505"})
			},
			expectedID:  0,
			expectedErr: repository.ErrChainConflict,
		},
		{
			name: "Непредвиденная ошибка БД",
			mockSetup: func(mock sqlmock.Sqlmock, _ *models.LinkageRecord) {
				mock.ExpectQuery(`INSERT INTO document_verifications`).
					WillReturnError(errors.New("connection refused"))
			},
			expectedID:  0,
			expectedErr: errors.New("ошибка выполнения запроса на создание записи цепочки"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := setupVerificationRepoMock(t)
			record := testRecord()
			tt.mockSetup(mock, record)

			id, err := repo.CreateRecord(context.Background(), record)

			if tt.expectedErr != nil {
				require.Error(t, err)
				if errors.Is(tt.expectedErr, repository.ErrChainConflict) {
					require.ErrorIs(t, err, repository.ErrChainConflict)
				} else {
					assert.Contains(t, err.Error(), tt.expectedErr.Error())
				}
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.expectedID, id)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestVerificationRepository_GetLatestRecord(t *testing.T) {
	repo, mock := setupVerificationRepoMock(t)
	createdAt := time.Now()

	rows := sqlmock.NewRows(verificationRows).
		AddRow(int64(7), "uid-7", "documents", "report.pdf", "dochash",
			"0", "blockhash", int64(1700000000000), int64(2048),
			"application/pdf", []byte(`{"hash":"dochash"}`), createdAt)

	mock.ExpectQuery(`FROM document_verifications\s+WHERE chain_id=\$1\s+ORDER BY created_at DESC`).
		WithArgs("documents").
		WillReturnRows(rows)

	record, err := repo.GetLatestRecord(context.Background(), "documents")
	require.NoError(t, err)

	assert.Equal(t, int64(7), record.ID)
	assert.Equal(t, "blockhash", record.BlockHash)
	assert.Equal(t, "dochash", record.VerificationData.Hash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerificationRepository_GetLatestRecord_EmptyChain(t *testing.T) {
	repo, mock := setupVerificationRepoMock(t)

	mock.ExpectQuery(`FROM document_verifications\s+WHERE chain_id=\$1\s+ORDER BY created_at DESC`).
		WithArgs("documents").
		WillReturnRows(sqlmock.NewRows(verificationRows))

	_, err := repo.GetLatestRecord(context.Background(), "documents")
	require.ErrorIs(t, err, repository.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerificationRepository_GetRecordByName(t *testing.T) {
	repo, mock := setupVerificationRepoMock(t)
	createdAt := time.Now()

	rows := sqlmock.NewRows(verificationRows).
		AddRow(int64(3), "uid-3", "documents", "report.pdf", "dochash",
			"prevhash", "blockhash", int64(1700000000000), int64(2048),
			"application/pdf", []byte(`{}`), createdAt)

	mock.ExpectQuery(`WHERE chain_id=\$1 AND document_name=\$2`).
		WithArgs("documents", "report.pdf").
		WillReturnRows(rows)

	record, err := repo.GetRecordByName(context.Background(), "documents", "report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", record.DocumentName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerificationRepository_GetRecordByName_NotFound(t *testing.T) {
	repo, mock := setupVerificationRepoMock(t)

	mock.ExpectQuery(`WHERE chain_id=\$1 AND document_name=\$2`).
		WithArgs("documents", "missing.pdf").
		WillReturnRows(sqlmock.NewRows(verificationRows))

	_, err := repo.GetRecordByName(context.Background(), "documents", "missing.pdf")
	require.ErrorIs(t, err, repository.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerificationRepository_ListRecords(t *testing.T) {
	repo, mock := setupVerificationRepoMock(t)
	createdAt := time.Now()

	rows := sqlmock.NewRows(verificationRows).
		AddRow(int64(1), "uid-1", "documents", "a.txt", "hash-a",
			"0", "block-a", int64(1700000000000), int64(10),
			"text/plain", []byte(`{}`), createdAt).
		AddRow(int64(2), "uid-2", "documents", "b.txt", "hash-b",
			"block-a", "block-b", int64(1700000000001), int64(20),
			"text/plain", []byte(`{}`), createdAt.Add(time.Second))

	mock.ExpectQuery(`WHERE chain_id=\$1\s+ORDER BY created_at ASC`).
		WithArgs("documents").
		WillReturnRows(rows)

	records, err := repo.ListRecords(context.Background(), "documents")
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Порядок от корня цепочки, связность сохранена
	assert.Equal(t, "0", records[0].PreviousHash)
	assert.Equal(t, records[0].BlockHash, records[1].PreviousHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}
