package controllers

import (
	"errors"
	"time"

	"coursemarket/backend/config"
	"coursemarket/backend/middleware"
	"coursemarket/backend/models"
	"coursemarket/backend/store"
	"coursemarket/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
	DB       *gorm.DB
	Sessions store.SessionStore
	Cfg      *config.Config
	Log      *zap.Logger
}

func NewAuthController(db *gorm.DB, sessions store.SessionStore, cfg *config.Config, log *zap.Logger) *AuthController {
	return &AuthController{DB: db, Sessions: sessions, Cfg: cfg, Log: log}
}

func userPayload(user *models.User) fiber.Map {
	return fiber.Map{
		"id":         user.ID,
		"name":       user.Name,
		"email":      user.Email,
		"avatar_url": user.AvatarURL,
		"role":       user.Role,
		"created_at": user.CreatedAt,
	}
}

func (ac *AuthController) startSession(c *fiber.Ctx, userID uint) error {
	sessionID := uuid.NewString()
	ttl := time.Duration(ac.Cfg.SessionTTLHours) * time.Hour

	if err := ac.Sessions.Save(c.Context(), sessionID, userID, ttl); err != nil {
		return err
	}

	token, err := utils.GenerateSessionToken(userID, sessionID, ac.Cfg)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     "session_token",
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return nil
}

func (ac *AuthController) Signup(c *fiber.Ctx) error {
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if input.Name == "" || input.Email == "" || input.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name, email and password are required",
		})
	}

	var existing models.User
	if err := ac.DB.Where("email = ?", input.Email).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email already registered",
		})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		ac.Log.Error("signup email lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create account",
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		ac.Log.Error("password hash failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create account",
		})
	}

	user := models.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Role:         "student",
	}
	if err := ac.DB.Create(&user).Error; err != nil {
		ac.Log.Error("user create failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create account",
		})
	}

	if err := ac.startSession(c, user.ID); err != nil {
		ac.Log.Error("session start failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create session",
		})
	}

	return c.JSON(fiber.Map{"user": userPayload(&user)})
}

func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if input.Email == "" || input.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email and password are required",
		})
	}

	var user models.User
	if err := ac.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid credentials",
			})
		}
		ac.Log.Error("login user lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	if err := ac.startSession(c, user.ID); err != nil {
		ac.Log.Error("session start failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create session",
		})
	}

	return c.JSON(fiber.Map{"user": userPayload(&user)})
}

// Logout deletes the session-store entry so the token is dead immediately,
// then expires the cookie. A request without a usable token still succeeds.
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	if tokenString := middleware.SessionToken(c); tokenString != "" {
		if _, sessionID, err := utils.ParseSessionToken(tokenString, ac.Cfg); err == nil {
			if err := ac.Sessions.Delete(c.Context(), sessionID); err != nil {
				ac.Log.Error("session delete failed", zap.Error(err))
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "Could not log out",
				})
			}
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     "session_token",
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return c.JSON(fiber.Map{"success": true})
}

func (ac *AuthController) Me(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var user models.User
	if err := ac.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		ac.Log.Error("user lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	return c.JSON(fiber.Map{"user": userPayload(&user)})
}
