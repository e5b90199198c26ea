package controllers

import (
	"errors"
	"math"
	"sort"
	"time"

	"coursemarket/backend/models"

	"gorm.io/gorm"
)

// Display fallbacks for courses without reviews, lessons, or activity.
const (
	defaultRating              = 4.5
	completedCoursePlaceholder = "Course completed!"
	neverAccessedPlaceholder   = "Never"
	lastAccessedFormat         = "Jan 2, 2006"
)

// CourseSummary is the catalog/cart projection of a course row joined with
// instructor display fields and review aggregates.
type CourseSummary struct {
	ID               uint     `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Price            float64  `json:"price"`
	OriginalPrice    *float64 `json:"original_price,omitempty"`
	Category         string   `json:"category"`
	Level            string   `json:"level"`
	Duration         string   `json:"duration"`
	ImageURL         string   `json:"image_url"`
	InstructorName   string   `json:"instructor_name"`
	InstructorAvatar string   `json:"instructor_avatar"`
	AverageRating    float64  `json:"average_rating"`
	ReviewCount      int      `json:"review_count"`
	EnrollmentCount  int64    `json:"enrollment_count"`
}

// EnrolledCourseSummary is the per-enrollment projection returned by
// GET /user/enrolled-courses.
type EnrolledCourseSummary struct {
	ID               uint   `json:"id"`
	Title            string `json:"title"`
	ImageURL         string `json:"image_url"`
	InstructorName   string `json:"instructor_name"`
	TotalLessons     int    `json:"total_lessons"`
	CompletedLessons int    `json:"completed_lessons"`
	Progress         int    `json:"progress"`
	NextLesson       string `json:"next_lesson"`
	LastAccessed     string `json:"last_accessed"`
}

// AverageRating returns the arithmetic mean of the ratings, or the fixed
// fallback when there are none.
func AverageRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return defaultRating
	}

	sum := 0
	for _, rating := range ratings {
		sum += rating
	}
	return float64(sum) / float64(len(ratings))
}

// ProgressPercent returns round(100 * completed / total), or 0 for a course
// with no lessons.
func ProgressPercent(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// NextIncompleteLesson returns the title of the first lesson (in course
// order) the user has not completed, or a placeholder when every lesson is
// done or the course has none.
func NextIncompleteLesson(lessons []models.Lesson, completed map[uint]bool) string {
	for _, lesson := range lessons {
		if !completed[lesson.ID] {
			return lesson.Title
		}
	}
	return completedCoursePlaceholder
}

// FormatLastAccessed renders the enrollment's last-accessed timestamp for
// display.
func FormatLastAccessed(t *time.Time) string {
	if t == nil {
		return neverAccessedPlaceholder
	}
	return t.Format(lastAccessedFormat)
}

// sortCourseSummaries orders the catalog per the requested key. Unknown keys
// leave the query order untouched.
func sortCourseSummaries(summaries []CourseSummary, key string) {
	switch key {
	case "popularity":
		sort.SliceStable(summaries, func(i, j int) bool {
			return summaries[i].EnrollmentCount > summaries[j].EnrollmentCount
		})
	case "rating":
		sort.SliceStable(summaries, func(i, j int) bool {
			return summaries[i].AverageRating > summaries[j].AverageRating
		})
	case "price-low":
		sort.SliceStable(summaries, func(i, j int) bool {
			return summaries[i].Price < summaries[j].Price
		})
	case "price-high":
		sort.SliceStable(summaries, func(i, j int) bool {
			return summaries[i].Price > summaries[j].Price
		})
	}
}

// buildCourseSummary joins a course row with its instructor display fields
// and review/enrollment aggregates.
func buildCourseSummary(db *gorm.DB, course *models.Course) (CourseSummary, error) {
	var instructor models.User
	if err := db.First(&instructor, course.InstructorID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return CourseSummary{}, err
	}

	var ratings []int
	if err := db.Model(&models.Review{}).Where("course_id = ?", course.ID).Pluck("rating", &ratings).Error; err != nil {
		return CourseSummary{}, err
	}

	var enrollmentCount int64
	if err := db.Model(&models.Enrollment{}).Where("course_id = ?", course.ID).Count(&enrollmentCount).Error; err != nil {
		return CourseSummary{}, err
	}

	return CourseSummary{
		ID:               course.ID,
		Title:            course.Title,
		Description:      course.Description,
		Price:            course.Price,
		OriginalPrice:    course.OriginalPrice,
		Category:         course.Category,
		Level:            course.Level,
		Duration:         course.Duration,
		ImageURL:         course.ImageURL,
		InstructorName:   instructor.Name,
		InstructorAvatar: instructor.AvatarURL,
		AverageRating:    AverageRating(ratings),
		ReviewCount:      len(ratings),
		EnrollmentCount:  enrollmentCount,
	}, nil
}

// orderedCourseLessons flattens a course's lessons by section order then
// lesson order.
func orderedCourseLessons(db *gorm.DB, courseID uint) ([]models.Lesson, error) {
	var sections []models.Section
	if err := db.Where("course_id = ?", courseID).
		Order("sequence_order").
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_order")
		}).
		Find(&sections).Error; err != nil {
		return nil, err
	}

	var lessons []models.Lesson
	for _, section := range sections {
		lessons = append(lessons, section.Lessons...)
	}
	return lessons, nil
}
