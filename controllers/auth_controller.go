package controllers

import (
	"errors"
	"strings"

	"bakery-backend/models"
	"bakery-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AuthController контроллер для аутентификации администраторов
type AuthController struct {
	DB *gorm.DB
}

// NewAuthController создает новый экземпляр AuthController
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db}
}

// LoginRequest структура запроса входа
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserInfo - публичные данные пользователя
type UserInfo struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AuthResponse структура ответа аутентификации
type AuthResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Token   string    `json:"token,omitempty"`
	User    *UserInfo `json:"user,omitempty"`
}

// Login обрабатывает вход администратора
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	// Ищем пользователя
	var user models.User
	if err := ac.DB.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusUnauthorized).JSON(AuthResponse{
			Success: false,
			Message: "Invalid email or password",
		})
	}

	// Проверяем пароль
	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return c.Status(fiber.StatusUnauthorized).JSON(AuthResponse{
			Success: false,
			Message: "Invalid email or password",
		})
	}

	// Проверяем активность пользователя
	if !user.IsActive {
		return c.Status(fiber.StatusUnauthorized).JSON(AuthResponse{
			Success: false,
			Message: "Account is disabled",
		})
	}

	token, err := utils.GenerateJWT(user.ID, user.Email, user.Role)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(AuthResponse{
		Success: true,
		Message: "Logged in",
		Token:   token,
		User:    userInfo(user),
	})
}

// Me возвращает текущего пользователя по токену
func (ac *AuthController) Me(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(AuthResponse{
			Success: false,
			Message: "Authorization required",
		})
	}

	var user models.User
	if err := ac.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(AuthResponse{
				Success: false,
				Message: "User no longer exists",
			})
		}
		return respondError(c, err)
	}

	return c.JSON(AuthResponse{
		Success: true,
		Message: "Current user",
		User:    userInfo(user),
	})
}

func userInfo(user models.User) *UserInfo {
	return &UserInfo{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
}
