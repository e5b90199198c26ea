package controllers

import (
	"coursemarket/backend/config"
	"coursemarket/backend/middleware"
	"coursemarket/backend/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ReviewsController struct {
	DB  *gorm.DB
	Cfg *config.Config
	Log *zap.Logger
}

func NewReviewsController(db *gorm.DB, cfg *config.Config, log *zap.Logger) *ReviewsController {
	return &ReviewsController{DB: db, Cfg: cfg, Log: log}
}

// CreateReview persists one review row. Nothing stops a user reviewing the
// same course twice.
func (rc *ReviewsController) CreateReview(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var input struct {
		CourseID uint   `json:"courseId"`
		Rating   int    `json:"rating"`
		Comment  string `json:"comment"`
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
	if input.Rating == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Rating is required",
		})
	}

	review := models.Review{
		UserID:   userID,
		CourseID: input.CourseID,
		Rating:   input.Rating,
		Comment:  input.Comment,
	}
	if err := rc.DB.Create(&review).Error; err != nil {
		rc.Log.Error("review insert failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to submit review",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Review submitted",
	})
}
