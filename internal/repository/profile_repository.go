package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/medvault/server/internal/models"
)

// ProfileRepository определяет методы для работы с медицинскими профилями.
type ProfileRepository interface {
	GetProfileByUserID(ctx context.Context, userID int64) (*models.Profile, error)
	UpsertProfile(ctx context.Context, profile *models.Profile) error
}

// postgresProfileRepository реализует ProfileRepository для PostgreSQL.
type postgresProfileRepository struct {
	db *sqlx.DB
}

// NewPostgresProfileRepository создает новый экземпляр репозитория профилей.
func NewPostgresProfileRepository(db *sqlx.DB) ProfileRepository {
	return &postgresProfileRepository{db: db}
}

// GetProfileByUserID находит профиль по ID пользователя.
func (r *postgresProfileRepository) GetProfileByUserID(
	ctx context.Context,
	userID int64,
) (*models.Profile, error) {
	query := `SELECT user_id, full_name, age, gender, height_cm, weight_kg,
	                 blood_type, allergies, chronic_conditions, updated_at
	          FROM profiles WHERE user_id=$1`
	var profile models.Profile

	err := r.db.GetContext(ctx, &profile, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("[ProfileRepo] Профиль пользователя ID %d не найден", userID)
			return nil, ErrProfileNotFound
		}
		log.Printf("[ProfileRepo] Ошибка при поиске профиля пользователя ID %d: %v", userID, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение профиля: %w", err)
	}

	log.Printf("[ProfileRepo] Найден профиль пользователя ID %d", userID)
	return &profile, nil
}

// UpsertProfile создает профиль или обновляет существующий (по user_id).
func (r *postgresProfileRepository) UpsertProfile(ctx context.Context, profile *models.Profile) error {
	query := `INSERT INTO profiles
	          (user_id, full_name, age, gender, height_cm, weight_kg, blood_type, allergies, chronic_conditions)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          ON CONFLICT (user_id) DO UPDATE SET
	            full_name=EXCLUDED.full_name,
	            age=EXCLUDED.age,
	            gender=EXCLUDED.gender,
	            height_cm=EXCLUDED.height_cm,
	            weight_kg=EXCLUDED.weight_kg,
	            blood_type=EXCLUDED.blood_type,
	            allergies=EXCLUDED.allergies,
	            chronic_conditions=EXCLUDED.chronic_conditions,
	            updated_at=now()`

	_, err := r.db.ExecContext(ctx, query,
		profile.UserID, profile.FullName, profile.Age, profile.Gender,
		profile.HeightCm, profile.WeightKg, profile.BloodType,
		profile.Allergies, profile.ChronicConditions,
	)
	if err != nil {
		log.Printf("[ProfileRepo] Ошибка при сохранении профиля пользователя ID %d: %v", profile.UserID, err)
		return fmt.Errorf("ошибка выполнения запроса на сохранение профиля: %w", err)
	}

	log.Printf("[ProfileRepo] Профиль пользователя ID %d успешно сохранен", profile.UserID)
	return nil
}

// Кастомные ошибки репозитория профилей.
var (
	ErrProfileNotFound = errors.New("профиль пользователя не найден")
)
