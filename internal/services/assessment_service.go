package services

import (
	"context"
	"errors"
	"log"

	"github.com/medvault/server/internal/models"
	"github.com/medvault/server/internal/repository"
)

// AssessmentService определяет интерфейс сервиса оценок риска.
type AssessmentService interface {
	SaveAssessment(userID int64, req *models.CreateAssessmentRequest) (*models.Assessment, error)
	ListAssessments(userID int64, kind string, limit, offset int) ([]models.Assessment, error)
}

// Допустимые виды оценок.
var validKinds = map[string]struct{}{
	models.AssessmentCancer:    {},
	models.AssessmentDiabetes:  {},
	models.AssessmentCardio:    {},
	models.AssessmentSkin:      {},
	models.AssessmentAllergy:   {},
	models.AssessmentMental:    {},
	models.AssessmentNutrition: {},
}

// Убедимся, что assessmentService удовлетворяет интерфейсу AssessmentService.
var _ AssessmentService = (*assessmentService)(nil)

type assessmentService struct {
	assessmentRepo repository.AssessmentRepository
}

// NewAssessmentService создает новый экземпляр сервиса оценок.
func NewAssessmentService(assessmentRepo repository.AssessmentRepository) AssessmentService {
	return &assessmentService{assessmentRepo: assessmentRepo}
}

// SaveAssessment сохраняет результат оценки риска пользователя.
func (s *assessmentService) SaveAssessment(
	userID int64,
	req *models.CreateAssessmentRequest,
) (*models.Assessment, error) {
	ctx := context.Background()

	if _, ok := validKinds[req.Kind]; !ok {
		log.Printf("[AssessmentService] Неизвестный вид оценки '%s' от пользователя %d", req.Kind, userID)
		return nil, ErrUnknownKind
	}
	if req.Result == "" {
		return nil, ErrEmptyResult
	}
	if req.RiskScore != nil && (*req.RiskScore < 0 || *req.RiskScore > 1) {
		return nil, ErrInvalidRiskScore
	}

	assessment := &models.Assessment{
		UserID:    userID,
		Kind:      req.Kind,
		InputData: req.InputData,
		Result:    req.Result,
		RiskScore: req.RiskScore,
	}

	assessmentID, err := s.assessmentRepo.CreateAssessment(ctx, assessment)
	if err != nil {
		log.Printf("[AssessmentService] Ошибка репозитория при сохранении оценки пользователя %d: %v", userID, err)
		return nil, errors.New("внутренняя ошибка сервера при сохранении оценки")
	}

	assessment.ID = assessmentID
	log.Printf("[AssessmentService] Оценка '%s' (ID: %d) сохранена для пользователя %d",
		req.Kind, assessmentID, userID)
	return assessment, nil
}

// ListAssessments возвращает оценки пользователя, новые первыми.
// Пустой kind означает все виды; непустой валидируется.
func (s *assessmentService) ListAssessments(
	userID int64,
	kind string,
	limit, offset int,
) ([]models.Assessment, error) {
	ctx := context.Background()

	if kind != "" {
		if _, ok := validKinds[kind]; !ok {
			return nil, ErrUnknownKind
		}
	}

	assessments, err := s.assessmentRepo.ListAssessmentsByUserID(ctx, userID, kind, limit, offset)
	if err != nil {
		log.Printf("[AssessmentService] Ошибка репозитория при получении оценок пользователя %d: %v", userID, err)
		return nil, errors.New("внутренняя ошибка сервера при получении оценок")
	}

	return assessments, nil
}

// Кастомные ошибки сервиса оценок.
var (
	ErrUnknownKind      = errors.New("неизвестный вид оценки")
	ErrEmptyResult      = errors.New("результат оценки не может быть пустым")
	ErrInvalidRiskScore = errors.New("оценка риска должна быть в диапазоне от 0 до 1")
)
