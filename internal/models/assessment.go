package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Виды оценок риска, поддерживаемые системой.
const (
	AssessmentCancer    = "cancer"
	AssessmentDiabetes  = "diabetes"
	AssessmentCardio    = "cardio"
	AssessmentSkin      = "skin"
	AssessmentAllergy   = "allergy"
	AssessmentMental    = "mental"
	AssessmentNutrition = "nutrition"
)

// AssessmentInput - произвольные поля формы оценки, хранятся в jsonb.
type AssessmentInput map[string]interface{}

// Value реализует driver.Valuer для записи AssessmentInput в jsonb.
func (i AssessmentInput) Value() (driver.Value, error) {
	if i == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(i)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации input_data: %w", err)
	}
	return data, nil
}

// Scan реализует sql.Scanner для чтения AssessmentInput из jsonb.
func (i *AssessmentInput) Scan(src interface{}) error {
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, i)
	case string:
		return json.Unmarshal([]byte(data), i)
	case nil:
		*i = nil
		return nil
	default:
		return errors.New("неподдерживаемый тип колонки input_data")
	}
}

// Assessment представляет сохраненный результат оценки риска.
type Assessment struct {
	ID        int64           `db:"id" json:"id"`
	UserID    int64           `db:"user_id" json:"user_id"`
	Kind      string          `db:"kind" json:"kind"`
	InputData AssessmentInput `db:"input_data" json:"input_data"`
	Result    string          `db:"result" json:"result"`
	RiskScore *float64        `db:"risk_score" json:"risk_score,omitempty"` // 0..1, может отсутствовать
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// CreateAssessmentRequest представляет тело запроса на сохранение оценки.
type CreateAssessmentRequest struct {
	Kind      string          `json:"kind"`
	InputData AssessmentInput `json:"input_data"`
	Result    string          `json:"result"`
	RiskScore *float64        `json:"risk_score"`
}
