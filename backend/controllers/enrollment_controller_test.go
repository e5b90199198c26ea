package controllers_test

import (
	"testing"

	"coursemarket/backend/controllers"
	"coursemarket/backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestEnrollRemovesCartItem(t *testing.T) {
	env := newTestEnv(t)
	_, instructorID := env.signupInstructor(t, "Teacher", "teacher@example.com")
	cookie, _ := env.signup(t, "Student", "student@example.com")

	course := env.createCourse(t, instructorID, "Go Basics", 30, true)
	env.request(t, "POST", "/cart", cookie, map[string]uint{"courseId": course.ID})

	resp := env.request(t, "POST", "/courses/enroll", cookie, map[string]uint{"courseId": course.ID})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decode(t, resp, &result)
	assert.True(t, result.Success)
	assert.Equal(t, "Successfully enrolled", result.Message)

	var enrollments, cartItems int64
	env.db.Model(&models.Enrollment{}).Count(&enrollments)
	env.db.Model(&models.CartItem{}).Count(&cartItems)
	assert.Equal(t, int64(1), enrollments)
	assert.Equal(t, int64(0), cartItems)
}

func TestEnrollIdempotent(t *testing.T) {
	env := newTestEnv(t)
	_, instructorID := env.signupInstructor(t, "Teacher", "teacher@example.com")
	cookie, _ := env.signup(t, "Student", "student@example.com")

	course := env.createCourse(t, instructorID, "Go Basics", 30, true)

	env.request(t, "POST", "/courses/enroll", cookie, map[string]uint{"courseId": course.ID})
	resp := env.request(t, "POST", "/courses/enroll", cookie, map[string]uint{"courseId": course.ID})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decode(t, resp, &result)
	assert.True(t, result.Success)
	assert.Equal(t, "Already enrolled in this course", result.Message)

	var enrollments int64
	env.db.Model(&models.Enrollment{}).Count(&enrollments)
	assert.Equal(t, int64(1), enrollments)
}

func TestEnrollMissingCourseID(t *testing.T) {
	env := newTestEnv(t)
	cookie, _ := env.signup(t, "Student", "student@example.com")

	resp := env.request(t, "POST", "/courses/enroll", cookie, map[string]uint{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestEnrolledCoursesEmpty(t *testing.T) {
	env := newTestEnv(t)
	cookie, _ := env.signup(t, "Student", "student@example.com")

	resp := env.request(t, "GET", "/user/enrolled-courses", cookie, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var summaries []controllers.EnrolledCourseSummary
	decode(t, resp, &summaries)
	assert.Empty(t, summaries)
	assert.NotNil(t, summaries)
}

func TestEnrolledCourseAggregation(t *testing.T) {
	env := newTestEnv(t)
	_, instructorID := env.signupInstructor(t, "Teacher", "teacher@example.com")
	cookie, _ := env.signup(t, "Student", "student@example.com")

	course := env.createCourse(t, instructorID, "Go Basics", 30, true)
	lessons := env.addLessons(t, course.ID, "A", "B", "C")

	env.request(t, "POST", "/courses/enroll", cookie, map[string]uint{"courseId": course.ID})
	env.request(t, "POST", "/courses/progress", cookie, map[string]interface{}{
		"courseId":  course.ID,
		"lessonId":  lessons[0].ID,
		"completed": true,
	})

	resp := env.request(t, "GET", "/user/enrolled-courses", cookie, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var summaries []controllers.EnrolledCourseSummary
	decode(t, resp, &summaries)
	assert.Len(t, summaries, 1)

	summary := summaries[0]
	assert.Equal(t, "Go Basics", summary.Title)
	assert.Equal(t, "Teacher", summary.InstructorName)
	assert.Equal(t, 3, summary.TotalLessons)
	assert.Equal(t, 1, summary.CompletedLessons)
	assert.Equal(t, 33, summary.Progress)
	assert.Equal(t, "B", summary.NextLesson)
	assert.NotEqual(t, "Never", summary.LastAccessed)
}

func TestEnrolledCourseWithoutLessons(t *testing.T) {
	env := newTestEnv(t)
	_, instructorID := env.signupInstructor(t, "Teacher", "teacher@example.com")
	cookie, _ := env.signup(t, "Student", "student@example.com")

	course := env.createCourse(t, instructorID, "Empty Course", 30, true)
	env.request(t, "POST", "/courses/enroll", cookie, map[string]uint{"courseId": course.ID})

	resp := env.request(t, "GET", "/user/enrolled-courses", cookie, nil)
	var summaries []controllers.EnrolledCourseSummary
	decode(t, resp, &summaries)
	assert.Len(t, summaries, 1)
	assert.Equal(t, 0, summaries[0].TotalLessons)
	assert.Equal(t, 0, summaries[0].Progress)
	assert.Equal(t, "Course completed!", summaries[0].NextLesson)
}

func TestEnrolledCourseAllComplete(t *testing.T) {
	env := newTestEnv(t)
	_, instructorID := env.signupInstructor(t, "Teacher", "teacher@example.com")
	cookie, _ := env.signup(t, "Student", "student@example.com")

	course := env.createCourse(t, instructorID, "Short Course", 30, true)
	lessons := env.addLessons(t, course.ID, "Only")

	env.request(t, "POST", "/courses/enroll", cookie, map[string]uint{"courseId": course.ID})
	env.request(t, "POST", "/courses/progress", cookie, map[string]interface{}{
		"courseId":  course.ID,
		"lessonId":  lessons[0].ID,
		"completed": true,
	})

	resp := env.request(t, "GET", "/user/enrolled-courses", cookie, nil)
	var summaries []controllers.EnrolledCourseSummary
	decode(t, resp, &summaries)
	assert.Equal(t, 100, summaries[0].Progress)
	assert.Equal(t, "Course completed!", summaries[0].NextLesson)
}
