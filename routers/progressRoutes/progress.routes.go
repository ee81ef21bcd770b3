package progressRoutes

import (
	controllers "lms/controllers/progress"
	"lms/middleware"
	validators "lms/validators/progress"

	"github.com/gofiber/fiber/v2"
)

// SetupProgressRoutes sets up the learner progression routes
func SetupProgressRoutes(app *fiber.App) {
	progressGroup := app.Group("/course/:course_id")

	// Video playback
	progressGroup.Post("/lesson/:lesson_id/video", middleware.JWTMiddleware, validators.VideoPing(), controllers.RecordVideoProgress)
	progressGroup.Post("/lesson/:lesson_id/read", middleware.JWTMiddleware, validators.LessonParams(), controllers.MarkLessonRead)

	// Quizzes
	progressGroup.Get("/quiz/:quiz_id", middleware.JWTMiddleware, validators.QuizParams(), controllers.GetQuiz)
	progressGroup.Post("/quiz/:quiz_id/attempt", middleware.JWTMiddleware, validators.SubmitQuiz(), controllers.SubmitQuizAttempt)
	progressGroup.Get("/quiz/:quiz_id/attempts", middleware.JWTMiddleware, validators.QuizParams(), controllers.GetQuizAttempts)

	// Outline and access checks
	progressGroup.Get("/outline", middleware.JWTMiddleware, validators.CourseParams(), controllers.GetCourseOutline)
	progressGroup.Get("/progress", middleware.JWTMiddleware, validators.CourseParams(), controllers.GetUserProgress)
	progressGroup.Get("/lesson/:lesson_id/access", middleware.JWTMiddleware, validators.LessonParams(), controllers.CheckLessonAccess)
	progressGroup.Get("/module/:module_id/access", middleware.JWTMiddleware, validators.ModuleParams(), controllers.CheckModuleAccess)
}
