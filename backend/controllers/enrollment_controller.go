package controllers

import (
	"errors"
	"time"

	"coursemarket/backend/config"
	"coursemarket/backend/middleware"
	"coursemarket/backend/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type EnrollmentController struct {
	DB  *gorm.DB
	Cfg *config.Config
	Log *zap.Logger
}

func NewEnrollmentController(db *gorm.DB, cfg *config.Config, log *zap.Logger) *EnrollmentController {
	return &EnrollmentController{DB: db, Cfg: cfg, Log: log}
}

// Enroll creates the enrollment and removes any matching cart row in one
// transaction, so the (user, course) pair can never appear in both tables.
// Enrolling in a course the user already owns succeeds without writing.
func (ec *EnrollmentController) Enroll(c *fiber.Ctx) error {
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

	var existing models.Enrollment
	err := ec.DB.Where("user_id = ? AND course_id = ?", userID, input.CourseID).First(&existing).Error
	if err == nil {
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Already enrolled in this course",
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		ec.Log.Error("enrollment lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to enroll in course",
		})
	}

	now := time.Now()
	err = ec.DB.Transaction(func(tx *gorm.DB) error {
		enrollment := models.Enrollment{
			UserID:       userID,
			CourseID:     input.CourseID,
			LastAccessed: &now,
		}
		if err := tx.Create(&enrollment).Error; err != nil {
			return err
		}

		return tx.Unscoped().
			Where("user_id = ? AND course_id = ?", userID, input.CourseID).
			Delete(&models.CartItem{}).Error
	})
	if err != nil {
		ec.Log.Error("enroll transaction failed", zap.Uint("course_id", input.CourseID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to enroll in course",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Successfully enrolled",
	})
}

// GetEnrolledCourses aggregates every enrollment of the user into a
// progress summary. A failure in any aggregation fails the whole batch.
func (ec *EnrollmentController) GetEnrolledCourses(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var enrollments []models.Enrollment
	if err := ec.DB.Where("user_id = ?", userID).Order("created_at").Find(&enrollments).Error; err != nil {
		ec.Log.Error("enrollment query failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch enrolled courses",
		})
	}

	summaries := make([]EnrolledCourseSummary, 0, len(enrollments))
	for _, enrollment := range enrollments {
		summary, err := ec.enrolledCourseSummary(&enrollment)
		if err != nil {
			ec.Log.Error("enrolled course aggregation failed",
				zap.Uint("course_id", enrollment.CourseID), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to fetch enrolled courses",
			})
		}
		summaries = append(summaries, summary)
	}

	return c.JSON(summaries)
}

func (ec *EnrollmentController) enrolledCourseSummary(enrollment *models.Enrollment) (EnrolledCourseSummary, error) {
	var course models.Course
	if err := ec.DB.First(&course, enrollment.CourseID).Error; err != nil {
		return EnrolledCourseSummary{}, err
	}

	var instructor models.User
	if err := ec.DB.First(&instructor, course.InstructorID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return EnrolledCourseSummary{}, err
	}

	lessons, err := orderedCourseLessons(ec.DB, course.ID)
	if err != nil {
		return EnrolledCourseSummary{}, err
	}

	completed := make(map[uint]bool)
	if len(lessons) > 0 {
		lessonIDs := make([]uint, 0, len(lessons))
		for _, lesson := range lessons {
			lessonIDs = append(lessonIDs, lesson.ID)
		}

		var progresses []models.LessonProgress
		if err := ec.DB.Where("user_id = ? AND lesson_id IN ? AND completed = ?",
			enrollment.UserID, lessonIDs, true).Find(&progresses).Error; err != nil {
			return EnrolledCourseSummary{}, err
		}
		for _, progress := range progresses {
			completed[progress.LessonID] = true
		}
	}

	return EnrolledCourseSummary{
		ID:               course.ID,
		Title:            course.Title,
		ImageURL:         course.ImageURL,
		InstructorName:   instructor.Name,
		TotalLessons:     len(lessons),
		CompletedLessons: len(completed),
		Progress:         ProgressPercent(len(completed), len(lessons)),
		NextLesson:       NextIncompleteLesson(lessons, completed),
		LastAccessed:     FormatLastAccessed(enrollment.LastAccessed),
	}, nil
}
