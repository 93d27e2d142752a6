package main

import (
	"fmt"
	"testing"

	"bakery-backend/models"
	"bakery-backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndListUsers(t *testing.T) {
	app, db := setupTestApp(t)
	token := adminToken(t, db)

	tests := []struct {
		name           string
		body           map[string]interface{}
		expectedStatus int
	}{
		{"Новый сотрудник", map[string]interface{}{"name": "Baker", "email": "Baker@Bakery.test", "password": "flour123"}, 201},
		{"Повторный email", map[string]interface{}{"name": "Baker 2", "email": "baker@bakery.test", "password": "flour123"}, 400},
		{"Короткий пароль", map[string]interface{}{"name": "Clerk", "email": "clerk@bakery.test", "password": "123"}, 400},
		{"Неизвестная роль", map[string]interface{}{"name": "Clerk", "email": "clerk@bakery.test", "password": "flour123", "role": "owner"}, 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, app, "POST", "/api/users", token, tt.body)
			assert.Equal(t, tt.expectedStatus, status)
			assert.Equal(t, tt.expectedStatus == 201, body["success"])
		})
	}

	status, body := doJSON(t, app, "GET", "/api/users", token, nil)
	assert.Equal(t, 200, status)
	users := body["data"].([]interface{})
	require.Len(t, users, 2)
	baker := users[1].(map[string]interface{})
	assert.Equal(t, "baker@bakery.test", baker["email"])
	assert.Equal(t, models.RoleStaff, baker["role"])
	assert.NotContains(t, baker, "password_hash")

	// Новый сотрудник может войти
	status, _ = doJSON(t, app, "POST", "/auth/login", "", map[string]interface{}{"email": "baker@bakery.test", "password": "flour123"})
	assert.Equal(t, 200, status)
}

func TestUpdateUser(t *testing.T) {
	app, db := setupTestApp(t)
	adminID := createTestAdmin(t, db)
	token := generateTestJWT(t, adminID, testAdminEmail)

	status, body := doJSON(t, app, "POST", "/api/users", token, map[string]interface{}{
		"name": "Cashier", "email": "cashier@bakery.test", "password": "bread123",
	})
	require.Equal(t, 201, status)
	cashierID := uint(body["data"].(map[string]interface{})["id"].(float64))

	status, body = doJSON(t, app, "PUT", fmt.Sprintf("/api/users/%d", cashierID), token, map[string]interface{}{
		"is_active": false,
	})
	assert.Equal(t, 200, status)
	assert.Equal(t, false, body["data"].(map[string]interface{})["is_active"])

	status, _ = doJSON(t, app, "POST", "/auth/login", "", map[string]interface{}{"email": "cashier@bakery.test", "password": "bread123"})
	assert.Equal(t, 401, status)

	// Себя заблокировать нельзя
	status, _ = doJSON(t, app, "PUT", fmt.Sprintf("/api/users/%d", adminID), token, map[string]interface{}{"is_active": false})
	assert.Equal(t, 400, status)

	status, _ = doJSON(t, app, "PUT", "/api/users/999", token, map[string]interface{}{"name": "Ghost"})
	assert.Equal(t, 404, status)

	status, _ = doJSON(t, app, "GET", fmt.Sprintf("/api/users/%d", cashierID), token, nil)
	assert.Equal(t, 200, status)
}

func TestUsersRequireAdminRole(t *testing.T) {
	app, db := setupTestApp(t)
	token := adminToken(t, db)

	status, body := doJSON(t, app, "POST", "/api/users", token, map[string]interface{}{
		"name": "Helper", "email": "helper@bakery.test", "password": "helper123", "role": "staff",
	})
	require.Equal(t, 201, status)
	helperID := uint(body["data"].(map[string]interface{})["id"].(float64))

	staffToken, err := utils.GenerateJWT(helperID, "helper@bakery.test", models.RoleStaff)
	require.NoError(t, err)

	status, body = doJSON(t, app, "GET", "/api/users", staffToken, nil)
	assert.Equal(t, 403, status)
	assert.Equal(t, "forbidden", body["error"])

	// Склад сотрудникам доступен
	status, _ = doJSON(t, app, "GET", "/api/ingredients", staffToken, nil)
	assert.Equal(t, 200, status)
}
