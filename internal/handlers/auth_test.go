package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/medvault/server/internal/handlers"
	"github.com/medvault/server/internal/models"
	"github.com/medvault/server/internal/services"
)

// MockAuthService is a mock implementation of AuthService interface.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(username, password string) error {
	args := m.Called(username, password)
	return args.Error(0)
}

func (m *MockAuthService) Login(username, password string) (string, error) {
	args := m.Called(username, password)
	return args.String(0), args.Error(1)
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		mockSetup      func(mockService *MockAuthService)
		expectedStatus int
	}{
		{
			name:        "Успешная регистрация",
			requestBody: models.RegisterRequest{Username: "testuser", Password: "password123"},
			mockSetup: func(mockService *MockAuthService) {
				mockService.On("Register", "testuser", "password123").Return(nil).Once()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:        "Имя пользователя занято",
			requestBody: models.RegisterRequest{Username: "testuser", Password: "password123"},
			mockSetup: func(mockService *MockAuthService) {
				mockService.On("Register", "testuser", "password123").
					Return(services.ErrUsernameTaken).Once()
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "Пустое имя пользователя",
			requestBody:    models.RegisterRequest{Username: "", Password: "password123"},
			mockSetup:      func(_ *MockAuthService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Невалидный JSON",
			requestBody:    "not a json",
			mockSetup:      func(_ *MockAuthService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Внутренняя ошибка сервиса",
			requestBody: models.RegisterRequest{Username: "testuser", Password: "password123"},
			mockSetup: func(mockService *MockAuthService) {
				mockService.On("Register", "testuser", "password123").
					Return(errors.New("db down")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockAuthService)
			tt.mockSetup(mockService)

			handler := handlers.NewAuthHandler(mockService)

			var body bytes.Buffer
			if s, ok := tt.requestBody.(string); ok {
				body.WriteString(s)
			} else {
				require.NoError(t, json.NewEncoder(&body).Encode(tt.requestBody))
			}

			req := httptest.NewRequest(http.MethodPost, "/api/register", &body)
			rr := httptest.NewRecorder()

			handler.Register(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		mockSetup      func(mockService *MockAuthService)
		expectedStatus int
		expectedToken  string
	}{
		{
			name:        "Успешный вход",
			requestBody: models.LoginRequest{Username: "testuser", Password: "password123"},
			mockSetup: func(mockService *MockAuthService) {
				mockService.On("Login", "testuser", "password123").
					Return("jwt-token", nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedToken:  "jwt-token",
		},
		{
			name:        "Неверные учетные данные",
			requestBody: models.LoginRequest{Username: "testuser", Password: "wrong"},
			mockSetup: func(mockService *MockAuthService) {
				mockService.On("Login", "testuser", "wrong").
					Return("", services.ErrInvalidCredentials).Once()
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Пустой пароль",
			requestBody:    models.LoginRequest{Username: "testuser", Password: ""},
			mockSetup:      func(_ *MockAuthService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Внутренняя ошибка сервиса",
			requestBody: models.LoginRequest{Username: "testuser", Password: "password123"},
			mockSetup: func(mockService *MockAuthService) {
				mockService.On("Login", "testuser", "password123").
					Return("", errors.New("db down")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockAuthService)
			tt.mockSetup(mockService)

			handler := handlers.NewAuthHandler(mockService)

			var body bytes.Buffer
			require.NoError(t, json.NewEncoder(&body).Encode(tt.requestBody))

			req := httptest.NewRequest(http.MethodPost, "/api/login", &body)
			rr := httptest.NewRecorder()

			handler.Login(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedToken != "" {
				var resp models.LoginResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, tt.expectedToken, resp.Token)
			}
			mockService.AssertExpectations(t)
		})
	}
}
