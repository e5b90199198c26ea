package controllers

import (
	"errors"
	"strconv"

	"coursemarket/backend/config"
	"coursemarket/backend/middleware"
	"coursemarket/backend/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CartController struct {
	DB  *gorm.DB
	Cfg *config.Config
	Log *zap.Logger
}

func NewCartController(db *gorm.DB, cfg *config.Config, log *zap.Logger) *CartController {
	return &CartController{DB: db, Cfg: cfg, Log: log}
}

func (cc *CartController) GetCart(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var items []models.CartItem
	if err := cc.DB.Where("user_id = ?", userID).Order("created_at").Find(&items).Error; err != nil {
		cc.Log.Error("cart query failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch cart",
		})
	}

	summaries := make([]CourseSummary, 0, len(items))
	for _, item := range items {
		var course models.Course
		if err := cc.DB.First(&course, item.CourseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue // course deleted since it was carted
			}
			cc.Log.Error("cart course lookup failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to fetch cart",
			})
		}

		summary, err := buildCourseSummary(cc.DB, &course)
		if err != nil {
			cc.Log.Error("cart summary failed", zap.Uint("course_id", course.ID), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to fetch cart",
			})
		}
		summaries = append(summaries, summary)
	}

	return c.JSON(summaries)
}

// AddToCart stages a course for enrollment. A course the user already owns
// is rejected, a course already in the cart is a no-op success.
func (cc *CartController) AddToCart(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var input struct {
		CourseID uint `json:"courseId"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.CourseID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Course ID is required",
		})
	}

	var enrollment models.Enrollment
	err := cc.DB.Where("user_id = ? AND course_id = ?", userID, input.CourseID).First(&enrollment).Error
	if err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "You are already enrolled in this course",
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		cc.Log.Error("enrollment lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to add to cart",
		})
	}

	var existing models.CartItem
	err = cc.DB.Where("user_id = ? AND course_id = ?", userID, input.CourseID).First(&existing).Error
	if err == nil {
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Course already in cart",
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		cc.Log.Error("cart lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to add to cart",
		})
	}

	item := models.CartItem{UserID: userID, CourseID: input.CourseID}
	if err := cc.DB.Create(&item).Error; err != nil {
		cc.Log.Error("cart insert failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to add to cart",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Course added to cart",
	})
}

// RemoveFromCart deletes the cart row for the given course. Removing a
// course that is not in the cart still succeeds.
func (cc *CartController) RemoveFromCart(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	courseIDParam := c.Query("courseId")
	if courseIDParam == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Course ID is required",
		})
	}
	courseID, err := strconv.Atoi(courseIDParam)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	if err := cc.DB.Unscoped().
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Delete(&models.CartItem{}).Error; err != nil {
		cc.Log.Error("cart delete failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to remove from cart",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Course removed from cart",
	})
}
