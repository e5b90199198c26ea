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

type CoursesController struct {
	DB  *gorm.DB
	Cfg *config.Config
	Log *zap.Logger
}

func NewCoursesController(db *gorm.DB, cfg *config.Config, log *zap.Logger) *CoursesController {
	return &CoursesController{DB: db, Cfg: cfg, Log: log}
}

// ListCourses returns the published catalog. Filters narrow the query,
// missing ones pass everything through, and sorting happens on the built
// summaries so rating and popularity can use the review/enrollment
// aggregates.
func (cc *CoursesController) ListCourses(c *fiber.Ctx) error {
	category := c.Query("category")
	level := c.Query("level")
	search := c.Query("search")
	sortKey := c.Query("sort")

	query := cc.DB.Where("published = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if level != "" {
		query = query.Where("level = ?", level)
	}
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", like, like)
	}

	var courses []models.Course
	if err := query.Find(&courses).Error; err != nil {
		cc.Log.Error("course query failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch courses",
		})
	}

	summaries := make([]CourseSummary, 0, len(courses))
	for i := range courses {
		summary, err := buildCourseSummary(cc.DB, &courses[i])
		if err != nil {
			cc.Log.Error("course summary failed", zap.Uint("course_id", courses[i].ID), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to fetch courses",
			})
		}
		summaries = append(summaries, summary)
	}

	sortCourseSummaries(summaries, sortKey)

	return c.JSON(summaries)
}

func (cc *CoursesController) GetCourseDetails(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("courseId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	var course models.Course
	if err := cc.DB.
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_order")
		}).
		Preload("Sections.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_order")
		}).
		First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Course not found",
			})
		}
		cc.Log.Error("course lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	summary, err := buildCourseSummary(cc.DB, &course)
	if err != nil {
		cc.Log.Error("course summary failed", zap.Uint("course_id", course.ID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var reviews []models.Review
	if err := cc.DB.Where("course_id = ?", course.ID).Order("created_at DESC").Find(&reviews).Error; err != nil {
		cc.Log.Error("review query failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	reviewList := make([]fiber.Map, 0, len(reviews))
	for _, review := range reviews {
		var reviewer models.User
		cc.DB.First(&reviewer, review.UserID)

		reviewList = append(reviewList, fiber.Map{
			"id":         review.ID,
			"rating":     review.Rating,
			"comment":    review.Comment,
			"user_name":  reviewer.Name,
			"created_at": review.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{
		"course":    summary,
		"published": course.Published,
		"sections":  course.Sections,
		"reviews":   reviewList,
	})
}

// CreateCourse persists a new unpublished course owned by the requesting
// instructor. The required fields are validated in a fixed order and the
// first missing one names the rejection.
func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var user models.User
	if err := cc.DB.First(&user, userID).Error; err != nil {
		cc.Log.Error("user lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	if user.Role != "instructor" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Only instructors can create courses",
		})
	}

	var input struct {
		Title         string   `json:"title"`
		Description   string   `json:"description"`
		Price         float64  `json:"price"`
		OriginalPrice *float64 `json:"original_price"`
		ImageURL      string   `json:"image_url"`
		Category      string   `json:"category"`
		Level         string   `json:"level"`
		Duration      string   `json:"duration"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	required := []struct {
		name    string
		missing bool
	}{
		{"Title", input.Title == ""},
		{"Description", input.Description == ""},
		{"Price", input.Price == 0},
		{"Image URL", input.ImageURL == ""},
		{"Category", input.Category == ""},
		{"Level", input.Level == ""},
		{"Duration", input.Duration == ""},
	}
	for _, field := range required {
		if field.missing {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": field.name + " is required",
			})
		}
	}

	course := models.Course{
		Title:         input.Title,
		Description:   input.Description,
		InstructorID:  userID,
		Price:         input.Price,
		OriginalPrice: input.OriginalPrice,
		Category:      input.Category,
		Level:         input.Level,
		Duration:      input.Duration,
		ImageURL:      input.ImageURL,
		Published:     false,
	}
	if err := cc.DB.Create(&course).Error; err != nil {
		cc.Log.Error("course create failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create course",
		})
	}

	return c.JSON(course)
}

// ownedCourse loads a course and checks the requester owns it.
func (cc *CoursesController) ownedCourse(c *fiber.Ctx, userID uint) (*models.Course, error) {
	courseID, err := strconv.Atoi(c.Params("courseId"))
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Course not found",
			})
		}
		cc.Log.Error("course lookup failed", zap.Error(err))
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	if course.InstructorID != userID {
		return nil, c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You don't have permission to edit this course",
		})
	}

	return &course, nil
}

func (cc *CoursesController) UpdateCourse(c *fiber.Ctx) error {
	course, errResp := cc.ownedCourse(c, middleware.UserID(c))
	if course == nil {
		return errResp
	}

	var input struct {
		Title         string   `json:"title"`
		Description   string   `json:"description"`
		Price         *float64 `json:"price"`
		OriginalPrice *float64 `json:"original_price"`
		ImageURL      string   `json:"image_url"`
		Category      string   `json:"category"`
		Level         string   `json:"level"`
		Duration      string   `json:"duration"`
		Published     *bool    `json:"published"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if input.Title != "" {
		course.Title = input.Title
	}
	if input.Description != "" {
		course.Description = input.Description
	}
	if input.Price != nil {
		course.Price = *input.Price
	}
	if input.OriginalPrice != nil {
		course.OriginalPrice = input.OriginalPrice
	}
	if input.ImageURL != "" {
		course.ImageURL = input.ImageURL
	}
	if input.Category != "" {
		course.Category = input.Category
	}
	if input.Level != "" {
		course.Level = input.Level
	}
	if input.Duration != "" {
		course.Duration = input.Duration
	}
	if input.Published != nil {
		course.Published = *input.Published
	}

	if err := cc.DB.Save(course).Error; err != nil {
		cc.Log.Error("course update failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update course",
		})
	}

	return c.JSON(course)
}

func (cc *CoursesController) AddSection(c *fiber.Ctx) error {
	course, errResp := cc.ownedCourse(c, middleware.UserID(c))
	if course == nil {
		return errResp
	}

	var input struct {
		Title string `json:"title"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title is required",
		})
	}

	var sectionCount int64
	cc.DB.Model(&models.Section{}).Where("course_id = ?", course.ID).Count(&sectionCount)

	section := models.Section{
		CourseID:      course.ID,
		Title:         input.Title,
		SequenceOrder: int(sectionCount) + 1,
	}
	if err := cc.DB.Create(&section).Error; err != nil {
		cc.Log.Error("section create failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create section",
		})
	}

	return c.JSON(section)
}

func (cc *CoursesController) AddLesson(c *fiber.Ctx) error {
	course, errResp := cc.ownedCourse(c, middleware.UserID(c))
	if course == nil {
		return errResp
	}

	sectionID, err := strconv.Atoi(c.Params("sectionId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid section ID",
		})
	}

	var section models.Section
	if err := cc.DB.Where("id = ? AND course_id = ?", sectionID, course.ID).First(&section).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Section not found",
			})
		}
		cc.Log.Error("section lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var input struct {
		Title     string `json:"title"`
		Duration  string `json:"duration"`
		IsPreview bool   `json:"is_preview"`
		VideoURL  string `json:"video_url"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title is required",
		})
	}

	var lessonCount int64
	cc.DB.Model(&models.Lesson{}).Where("section_id = ?", section.ID).Count(&lessonCount)

	lesson := models.Lesson{
		SectionID:     section.ID,
		Title:         input.Title,
		Duration:      input.Duration,
		SequenceOrder: int(lessonCount) + 1,
		IsPreview:     input.IsPreview,
		VideoURL:      input.VideoURL,
	}
	if err := cc.DB.Create(&lesson).Error; err != nil {
		cc.Log.Error("lesson create failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create lesson",
		})
	}

	return c.JSON(lesson)
}
