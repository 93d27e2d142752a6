package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bakery-backend/config"
	"bakery-backend/models"
	"bakery-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testAdminEmail    = "admin@bakery.test"
	testAdminPassword = "secret123"
)

// setupTestDB создает тестовую базу данных в памяти
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.AutoMigrate(db))
	return db
}

// testConfig возвращает конфигурацию для тестового приложения
func testConfig() *config.Config {
	return &config.Config{
		Port:        "0",
		JWTSecret:   "test-secret",
		CORSOrigins: "*",
		Location:    time.UTC,
		PageSize:    5,
	}
}

// setupTestApp собирает приложение на тестовой базе без WebSocket хаба
func setupTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	cfg := testConfig()
	utils.SetJWTSecret(cfg.JWTSecret)
	db := setupTestDB(t)
	return newApp(db, cfg, nil), db
}

// createTestAdmin создает администратора и возвращает его ID
func createTestAdmin(t *testing.T, db *gorm.DB) uint {
	t.Helper()
	hash, err := utils.HashPassword(testAdminPassword)
	require.NoError(t, err)

	admin := models.User{
		Name:         "Admin",
		Email:        testAdminEmail,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&admin).Error)
	return admin.ID
}

// generateTestJWT создает тестовый JWT токен для указанного пользователя
func generateTestJWT(t *testing.T, userID uint, email string) string {
	t.Helper()
	token, err := utils.GenerateJWT(userID, email, models.RoleAdmin)
	require.NoError(t, err)
	return token
}

// doJSON выполняет запрос к приложению и разбирает JSON ответ
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	result := map[string]interface{}{}
	if len(raw) > 0 && resp.Header.Get("Content-Type") != "" && resp.StatusCode != http.StatusNoContent {
		_ = json.Unmarshal(raw, &result)
	}
	return resp.StatusCode, result
}
