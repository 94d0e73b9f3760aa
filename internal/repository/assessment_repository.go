package repository

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/medvault/server/internal/models"
)

// AssessmentRepository определяет методы для работы с результатами оценок риска.
type AssessmentRepository interface {
	CreateAssessment(ctx context.Context, assessment *models.Assessment) (int64, error)
	ListAssessmentsByUserID(ctx context.Context, userID int64, kind string, limit, offset int) ([]models.Assessment, error)
}

// postgresAssessmentRepository реализует AssessmentRepository для PostgreSQL.
type postgresAssessmentRepository struct {
	db *sqlx.DB
}

// NewPostgresAssessmentRepository создает новый экземпляр репозитория оценок.
func NewPostgresAssessmentRepository(db *sqlx.DB) AssessmentRepository {
	return &postgresAssessmentRepository{db: db}
}

// CreateAssessment сохраняет результат оценки риска.
func (r *postgresAssessmentRepository) CreateAssessment(
	ctx context.Context,
	assessment *models.Assessment,
) (int64, error) {
	query := `INSERT INTO assessments (user_id, kind, input_data, result, risk_score)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	var assessmentID int64

	err := r.db.QueryRowxContext(ctx, query,
		assessment.UserID, assessment.Kind, assessment.InputData,
		assessment.Result, assessment.RiskScore,
	).Scan(&assessmentID)
	if err != nil {
		log.Printf("[AssessmentRepo] Ошибка при сохранении оценки '%s' пользователя ID %d: %v",
			assessment.Kind, assessment.UserID, err)
		return 0, fmt.Errorf("ошибка выполнения запроса на сохранение оценки: %w", err)
	}

	log.Printf("[AssessmentRepo] Оценка '%s' (ID: %d) сохранена для пользователя ID %d",
		assessment.Kind, assessmentID, assessment.UserID)
	return assessmentID, nil
}

// ListAssessmentsByUserID возвращает оценки пользователя с пагинацией,
// новые первыми. Пустой kind означает все виды оценок.
func (r *postgresAssessmentRepository) ListAssessmentsByUserID(
	ctx context.Context,
	userID int64,
	kind string,
	limit, offset int,
) ([]models.Assessment, error) {
	query := `SELECT id, user_id, kind, input_data, result, risk_score, created_at
	          FROM assessments
	          WHERE user_id=$1 AND ($2 = '' OR kind=$2)
	          ORDER BY created_at DESC
	          LIMIT $3 OFFSET $4`

	assessments := make([]models.Assessment, 0, limit)
	err := r.db.SelectContext(ctx, &assessments, query, userID, kind, limit, offset)
	if err != nil {
		log.Printf("[AssessmentRepo] Ошибка при получении оценок пользователя ID %d: %v", userID, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение списка оценок: %w", err)
	}

	log.Printf("[AssessmentRepo] Получено %d оценок пользователя ID %d (kind=%q, limit=%d, offset=%d)",
		len(assessments), userID, kind, limit, offset)
	return assessments, nil
}
