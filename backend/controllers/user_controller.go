package controllers

import (
	"errors"

	"coursemarket/backend/config"
	"coursemarket/backend/middleware"
	"coursemarket/backend/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserController struct {
	DB  *gorm.DB
	Cfg *config.Config
	Log *zap.Logger
}

func NewUserController(db *gorm.DB, cfg *config.Config, log *zap.Logger) *UserController {
	return &UserController{DB: db, Cfg: cfg, Log: log}
}

func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		uc.Log.Error("user lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	return c.JSON(fiber.Map{"user": userPayload(&user)})
}

func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var input struct {
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		uc.Log.Error("user lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	if input.AvatarURL != "" {
		user.AvatarURL = input.AvatarURL
	}

	if err := uc.DB.Save(&user).Error; err != nil {
		uc.Log.Error("user update failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update user",
		})
	}

	return c.JSON(fiber.Map{"user": userPayload(&user)})
}
