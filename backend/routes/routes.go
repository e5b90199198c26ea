package routes

import (
	"coursemarket/backend/config"
	"coursemarket/backend/controllers"
	"coursemarket/backend/middleware"
	"coursemarket/backend/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, sessions store.SessionStore, cfg *config.Config, logger *zap.Logger) {
	authMiddleware := middleware.AuthMiddleware(cfg, sessions)

	// Auth routes
	authController := controllers.NewAuthController(db, sessions, cfg, logger)
	app.Post("/auth/signup", authController.Signup)
	app.Post("/auth/login", authController.Login)
	app.Post("/auth/logout", authController.Logout)
	app.Get("/auth/me", authMiddleware, authController.Me)

	// Course routes. The static /courses/enroll and /courses/progress paths
	// register before the :courseId parameter route.
	coursesController := controllers.NewCoursesController(db, cfg, logger)
	enrollmentController := controllers.NewEnrollmentController(db, cfg, logger)
	progressController := controllers.NewProgressController(db, cfg, logger)
	app.Get("/courses", coursesController.ListCourses)
	app.Post("/courses", authMiddleware, coursesController.CreateCourse)
	app.Post("/courses/enroll", authMiddleware, enrollmentController.Enroll)
	app.Get("/courses/progress", authMiddleware, progressController.GetCourseProgress)
	app.Post("/courses/progress", authMiddleware, progressController.UpdateLessonProgress)
	app.Get("/courses/:courseId", coursesController.GetCourseDetails)
	app.Put("/courses/:courseId", authMiddleware, coursesController.UpdateCourse)
	app.Post("/courses/:courseId/sections", authMiddleware, coursesController.AddSection)
	app.Post("/courses/:courseId/sections/:sectionId/lessons", authMiddleware, coursesController.AddLesson)

	// Cart routes
	cartController := controllers.NewCartController(db, cfg, logger)
	app.Get("/cart", authMiddleware, cartController.GetCart)
	app.Post("/cart", authMiddleware, cartController.AddToCart)
	app.Delete("/cart", authMiddleware, cartController.RemoveFromCart)

	// User routes
	userController := controllers.NewUserController(db, cfg, logger)
	app.Get("/user/enrolled-courses", authMiddleware, enrollmentController.GetEnrolledCourses)
	app.Get("/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/user/profile", authMiddleware, userController.UpdateProfile)

	// Review routes
	reviewsController := controllers.NewReviewsController(db, cfg, logger)
	app.Post("/reviews", authMiddleware, reviewsController.CreateReview)
}
