package controllers

import (
	"errors"
	"strconv"
	"time"

	"coursemarket/backend/config"
	"coursemarket/backend/middleware"
	"coursemarket/backend/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProgressController struct {
	DB  *gorm.DB
	Cfg *config.Config
	Log *zap.Logger
}

func NewProgressController(db *gorm.DB, cfg *config.Config, log *zap.Logger) *ProgressController {
	return &ProgressController{DB: db, Cfg: cfg, Log: log}
}

// GetCourseProgress resolves the course's lessons and the user's progress
// rows for them. A course with no sections or lessons answers with zeroes,
// not an error.
func (pc *ProgressController) GetCourseProgress(c *fiber.Ctx) error {
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

	lessons, err := orderedCourseLessons(pc.DB, uint(courseID))
	if err != nil {
		pc.Log.Error("lesson query failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch progress",
		})
	}

	progressList := make([]fiber.Map, 0, len(lessons))
	completedCount := 0
	completed := make(map[uint]bool)

	if len(lessons) > 0 {
		lessonIDs := make([]uint, 0, len(lessons))
		for _, lesson := range lessons {
			lessonIDs = append(lessonIDs, lesson.ID)
		}

		var progresses []models.LessonProgress
		if err := pc.DB.Where("user_id = ? AND lesson_id IN ?", userID, lessonIDs).Find(&progresses).Error; err != nil {
			pc.Log.Error("progress query failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to fetch progress",
			})
		}

		for _, progress := range progresses {
			if progress.Completed {
				completedCount++
				completed[progress.LessonID] = true
			}
			progressList = append(progressList, fiber.Map{
				"lesson_id":       progress.LessonID,
				"completed":       progress.Completed,
				"completion_date": progress.CompletionDate,
			})
		}
	}

	return c.JSON(fiber.Map{
		"totalLessons":     len(lessons),
		"completedLessons": completedCount,
		"nextLesson":       NextIncompleteLesson(lessons, completed),
		"progress":         progressList,
	})
}

// UpdateLessonProgress touches the enrollment's last-accessed timestamp and
// upserts the user's progress row for the lesson. Writing the stored
// completed value again is a no-op so the completion date never churns.
func (pc *ProgressController) UpdateLessonProgress(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var input struct {
		CourseID  uint `json:"courseId"`
		LessonID  uint `json:"lessonId"`
		Completed bool `json:"completed"`
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
	if input.LessonID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Lesson ID is required",
		})
	}

	now := time.Now()

	var enrollment models.Enrollment
	err := pc.DB.Where("user_id = ? AND course_id = ?", userID, input.CourseID).First(&enrollment).Error
	if err == nil {
		enrollment.LastAccessed = &now
		if err := pc.DB.Save(&enrollment).Error; err != nil {
			pc.Log.Error("enrollment touch failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update progress",
			})
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		pc.Log.Error("enrollment lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update progress",
		})
	}

	var progress models.LessonProgress
	err = pc.DB.Where("user_id = ? AND lesson_id = ?", userID, input.LessonID).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		progress = models.LessonProgress{
			UserID:    userID,
			LessonID:  input.LessonID,
			Completed: input.Completed,
		}
		if input.Completed {
			progress.CompletionDate = &now
		}
		if err := pc.DB.Create(&progress).Error; err != nil {
			pc.Log.Error("progress insert failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update progress",
			})
		}
	} else if err != nil {
		pc.Log.Error("progress lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update progress",
		})
	} else if progress.Completed != input.Completed {
		progress.Completed = input.Completed
		if input.Completed {
			progress.CompletionDate = &now
		} else {
			progress.CompletionDate = nil
		}
		if err := pc.DB.Save(&progress).Error; err != nil {
			pc.Log.Error("progress update failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update progress",
			})
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Progress updated",
	})
}
