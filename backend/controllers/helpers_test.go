package controllers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"coursemarket/backend/config"
	"coursemarket/backend/models"
	"coursemarket/backend/routes"
	"coursemarket/backend/store"
	"coursemarket/backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
}

// newTestEnv wires the full route table against an in-memory sqlite
// database and the in-memory session store. Each test gets its own named
// database so tests stay isolated.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := utils.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	cfg := &config.Config{
		JWTSecret:       "testsecret",
		SessionTTLHours: 1,
	}

	app := fiber.New()
	routes.SetupRoutes(app, db, store.NewMemorySessionStore(), cfg, zap.NewNop())

	return &testEnv{app: app, db: db}
}

func (e *testEnv) request(t *testing.T, method, path, cookie string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		req.Header.Set("Cookie", "session_token="+cookie)
	}

	resp, err := e.app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func sessionCookie(t *testing.T, resp *http.Response) string {
	t.Helper()
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "session_token" {
			return cookie.Value
		}
	}
	t.Fatal("no session_token cookie in response")
	return ""
}

// signup registers a student account and returns its session cookie and ID.
func (e *testEnv) signup(t *testing.T, name, email string) (string, uint) {
	t.Helper()

	resp := e.request(t, "POST", "/auth/signup", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "password123",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("signup returned %d", resp.StatusCode)
	}

	cookie := sessionCookie(t, resp)

	var result struct {
		User struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	decode(t, resp, &result)

	return cookie, result.User.ID
}

func (e *testEnv) signupInstructor(t *testing.T, name, email string) (string, uint) {
	t.Helper()

	cookie, userID := e.signup(t, name, email)
	if err := e.db.Model(&models.User{}).Where("id = ?", userID).Update("role", "instructor").Error; err != nil {
		t.Fatalf("promote instructor: %v", err)
	}
	return cookie, userID
}

func (e *testEnv) createCourse(t *testing.T, instructorID uint, title string, price float64, published bool) *models.Course {
	t.Helper()

	course := &models.Course{
		Title:        title,
		Description:  title + " description",
		InstructorID: instructorID,
		Price:        price,
		Category:     "Programming",
		Level:        "Beginner",
		Duration:     "4h",
		ImageURL:     "https://example.com/course.png",
		Published:    published,
	}
	if err := e.db.Create(course).Error; err != nil {
		t.Fatalf("create course: %v", err)
	}
	return course
}

// addLessons creates one section holding the given lessons in order and
// returns them.
func (e *testEnv) addLessons(t *testing.T, courseID uint, titles ...string) []models.Lesson {
	t.Helper()

	var sectionCount int64
	e.db.Model(&models.Section{}).Where("course_id = ?", courseID).Count(&sectionCount)

	section := models.Section{
		CourseID:      courseID,
		Title:         "Section",
		SequenceOrder: int(sectionCount) + 1,
	}
	if err := e.db.Create(&section).Error; err != nil {
		t.Fatalf("create section: %v", err)
	}

	lessons := make([]models.Lesson, 0, len(titles))
	for i, title := range titles {
		lesson := models.Lesson{
			SectionID:     section.ID,
			Title:         title,
			SequenceOrder: i + 1,
		}
		if err := e.db.Create(&lesson).Error; err != nil {
			t.Fatalf("create lesson: %v", err)
		}
		lessons = append(lessons, lesson)
	}
	return lessons
}
