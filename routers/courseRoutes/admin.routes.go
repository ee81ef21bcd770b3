package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCourseRoutes sets up all admin course management routes
func SetupAdminCourseRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin/course", middleware.JWTMiddleware, middleware.RequireRole("ADMIN"))

	// Course CRUD
	adminGroup.Post("/create", validators.CreateCourse(), controllers.AdminCreateCourse)
	adminGroup.Put("/:id", validators.UpdateCourse(), controllers.AdminUpdateCourse)
	adminGroup.Delete("/:id", validators.CourseID(), controllers.AdminDeleteCourse)
	adminGroup.Get("/list", controllers.AdminGetAllCourses)
	adminGroup.Post("/:id/publish", validators.CourseID(), controllers.AdminPublishCourse)

	// Module management
	adminGroup.Post("/:id/module", validators.CreateModule(), controllers.AdminCreateModule)
	adminGroup.Put("/:course_id/module/:module_id", validators.UpdateModule(), controllers.AdminUpdateModule)
	adminGroup.Delete("/:course_id/module/:module_id", validators.ModuleParams(), controllers.AdminDeleteModule)
	adminGroup.Get("/:id/modules", validators.CourseID(), controllers.AdminListModules)

	// Lesson management
	adminGroup.Post("/:course_id/module/:module_id/lesson", validators.CreateLesson(), controllers.AdminCreateLesson)
	adminGroup.Put("/:course_id/lesson/:lesson_id", validators.UpdateLesson(), controllers.AdminUpdateLesson)
	adminGroup.Delete("/:course_id/lesson/:lesson_id", validators.LessonParams(), controllers.AdminDeleteLesson)

	// Quiz management
	adminGroup.Post("/:id/quiz", validators.CreateQuiz(), controllers.AdminCreateQuiz)
	adminGroup.Delete("/:course_id/quiz/:quiz_id", validators.QuizParams(), controllers.AdminDeleteQuiz)

	// Syllabus snapshot
	adminGroup.Post("/:id/syllabus/regenerate", validators.CourseID(), controllers.AdminRegenerateSyllabus)
}
