package models

import "time"

// Profile представляет медицинский профиль пользователя.
// Необязательные поля сделаны указателями, чтобы отличать NULL от нуля.
type Profile struct {
	UserID            int64     `db:"user_id" json:"user_id"`
	FullName          string    `db:"full_name" json:"full_name"`
	Age               *int      `db:"age" json:"age,omitempty"`
	Gender            *string   `db:"gender" json:"gender,omitempty"`
	HeightCm          *float64  `db:"height_cm" json:"height_cm,omitempty"`
	WeightKg          *float64  `db:"weight_kg" json:"weight_kg,omitempty"`
	BloodType         *string   `db:"blood_type" json:"blood_type,omitempty"`
	Allergies         *string   `db:"allergies" json:"allergies,omitempty"`
	ChronicConditions *string   `db:"chronic_conditions" json:"chronic_conditions,omitempty"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// UpdateProfileRequest представляет тело запроса на обновление профиля.
type UpdateProfileRequest struct {
	FullName          string   `json:"full_name"`
	Age               *int     `json:"age"`
	Gender            *string  `json:"gender"`
	HeightCm          *float64 `json:"height_cm"`
	WeightKg          *float64 `json:"weight_kg"`
	BloodType         *string  `json:"blood_type"`
	Allergies         *string  `json:"allergies"`
	ChronicConditions *string  `json:"chronic_conditions"`
}
