package controllers

import (
	"errors"
	"strings"

	"bakery-backend/models"
	"bakery-backend/services"
	"bakery-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// UserController контроллер учетных записей сотрудников
type UserController struct {
	db *gorm.DB
}

// NewUserController создает новый экземпляр UserController
func NewUserController(db *gorm.DB) *UserController {
	return &UserController{db: db}
}

// CreateUserRequest - новая учетная запись
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=admin staff"`
}

// UpdateUserRequest - изменение учетной записи; пустые поля не меняются
type UpdateUserRequest struct {
	Name     string `json:"name" validate:"max=100"`
	Password string `json:"password" validate:"omitempty,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=admin staff"`
	IsActive *bool  `json:"is_active"`
}

// ListUsers возвращает все учетные записи
func (uc *UserController) ListUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := uc.db.Order("id ASC").Find(&users).Error; err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Users", users)
}

// GetProfile получает учетную запись по ID
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	user, err := uc.loadUser(id)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "User", user)
}

// CreateUser заводит учетную запись сотрудника
func (uc *UserController) CreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	var count int64
	if err := uc.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return respondError(c, err)
	}
	if count > 0 {
		return respondError(c, services.NewValidationError("email '%s' is already registered", email))
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return respondError(c, err)
	}

	role := req.Role
	if role == "" {
		role = models.RoleStaff
	}

	user := models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := uc.db.Create(&user).Error; err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusCreated, "User created", user)
}

// UpdateProfile меняет имя, роль, пароль или блокирует учетную запись
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req UpdateUserRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	// Нельзя заблокировать или понизить самого себя
	if self, _ := c.Locals("user_id").(uint); self == id {
		if req.IsActive != nil && !*req.IsActive {
			return respondError(c, services.NewValidationError("cannot disable your own account"))
		}
		if req.Role != "" && req.Role != models.RoleAdmin {
			return respondError(c, services.NewValidationError("cannot change your own role"))
		}
	}

	user, err := uc.loadUser(id)
	if err != nil {
		return respondError(c, err)
	}

	updates := map[string]interface{}{}
	if name := strings.TrimSpace(req.Name); name != "" {
		updates["name"] = name
	}
	if req.Role != "" {
		updates["role"] = req.Role
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.Password != "" {
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			return respondError(c, err)
		}
		updates["password_hash"] = hash
	}

	if len(updates) > 0 {
		if err := uc.db.Model(user).Updates(updates).Error; err != nil {
			return respondError(c, err)
		}
	}

	user, err = uc.loadUser(id)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "User updated", user)
}

func (uc *UserController) loadUser(id uint) (*models.User, error) {
	var user models.User
	if err := uc.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.NewNotFoundError("user id %d not found", id)
		}
		return nil, err
	}
	return &user, nil
}
