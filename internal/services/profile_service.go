package services

import (
	"context"
	"errors"
	"log"

	"github.com/medvault/server/internal/models"
	"github.com/medvault/server/internal/repository"
)

// ProfileService определяет интерфейс сервиса медицинских профилей.
type ProfileService interface {
	GetProfile(userID int64) (*models.Profile, error)
	UpdateProfile(userID int64, req *models.UpdateProfileRequest) (*models.Profile, error)
}

// Убедимся, что profileService удовлетворяет интерфейсу ProfileService.
var _ ProfileService = (*profileService)(nil)

type profileService struct {
	profileRepo repository.ProfileRepository
}

// NewProfileService создает новый экземпляр сервиса профилей.
func NewProfileService(profileRepo repository.ProfileRepository) ProfileService {
	return &profileService{profileRepo: profileRepo}
}

// GetProfile возвращает профиль пользователя.
func (s *profileService) GetProfile(userID int64) (*models.Profile, error) {
	ctx := context.Background()

	profile, err := s.profileRepo.GetProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		log.Printf("[ProfileService] Ошибка репозитория при получении профиля пользователя %d: %v", userID, err)
		return nil, errors.New("внутренняя ошибка сервера при получении профиля")
	}

	return profile, nil
}

// UpdateProfile создает или обновляет профиль пользователя и возвращает
// его актуальное состояние.
func (s *profileService) UpdateProfile(userID int64, req *models.UpdateProfileRequest) (*models.Profile, error) {
	ctx := context.Background()

	if req.FullName == "" {
		return nil, ErrEmptyFullName
	}

	profile := &models.Profile{
		UserID:            userID,
		FullName:          req.FullName,
		Age:               req.Age,
		Gender:            req.Gender,
		HeightCm:          req.HeightCm,
		WeightKg:          req.WeightKg,
		BloodType:         req.BloodType,
		Allergies:         req.Allergies,
		ChronicConditions: req.ChronicConditions,
	}

	if err := s.profileRepo.UpsertProfile(ctx, profile); err != nil {
		log.Printf("[ProfileService] Ошибка репозитория при сохранении профиля пользователя %d: %v", userID, err)
		return nil, errors.New("внутренняя ошибка сервера при сохранении профиля")
	}

	saved, err := s.profileRepo.GetProfileByUserID(ctx, userID)
	if err != nil {
		log.Printf("[ProfileService] Ошибка чтения профиля пользователя %d после сохранения: %v", userID, err)
		return nil, errors.New("внутренняя ошибка сервера при получении профиля")
	}

	log.Printf("[ProfileService] Профиль пользователя %d успешно сохранен", userID)
	return saved, nil
}

// Кастомные ошибки сервиса профилей.
var (
	ErrProfileNotFound = errors.New("профиль не найден")
	ErrEmptyFullName   = errors.New("имя не может быть пустым")
)
