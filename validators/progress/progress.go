package progressValidator

import (
	"lms/middleware"
	"lms/progression"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// VideoPingRequest is one playback heartbeat from the player
type VideoPingRequest struct {
	PositionSec     int `json:"position_sec" validate:"gte=0"`
	WatchedDeltaSec int `json:"watched_delta_sec" validate:"gte=0"`
}

// paramID parses a positive integer route parameter
func paramID(c *fiber.Ctx, name string) (int, bool) {
	value, err := strconv.Atoi(c.Params(name))
	if err != nil || value < 1 {
		return 0, false
	}
	return value, true
}

// VideoPing validates a video progress ping and its route parameters
func VideoPing() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, okCourse := paramID(c, "course_id")
		lessonID, okLesson := paramID(c, "lesson_id")
		if !okCourse || !okLesson {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course or lesson ID!", nil)
		}

		reqData := new(VideoPingRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			errors := make(map[string]string)
			for _, fieldErr := range err.(validator.ValidationErrors) {
				errors[fieldErr.Field()] = "Must not be negative!"
			}
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("lessonID", lessonID)
		c.Locals("validatedVideoPing", reqData)
		return c.Next()
	}
}

// SubmitQuiz validates a quiz attempt submission and its route parameters
func SubmitQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, okCourse := paramID(c, "course_id")
		quizID, okQuiz := paramID(c, "quiz_id")
		if !okCourse || !okQuiz {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course or quiz ID!", nil)
		}

		reqData := new(progression.AttemptSubmission)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			errors := make(map[string]string)
			for _, fieldErr := range err.(validator.ValidationErrors) {
				errors[fieldErr.Field()] = "Invalid or missing value!"
			}
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("quizID", quizID)
		c.Locals("validatedQuizSubmission", reqData)
		return c.Next()
	}
}

// LessonParams validates the :course_id and :lesson_id route parameters
func LessonParams() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, okCourse := paramID(c, "course_id")
		lessonID, okLesson := paramID(c, "lesson_id")
		if !okCourse || !okLesson {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course or lesson ID!", nil)
		}

		c.Locals("courseID", courseID)
		c.Locals("lessonID", lessonID)
		return c.Next()
	}
}

// ModuleParams validates the :course_id and :module_id route parameters
func ModuleParams() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, okCourse := paramID(c, "course_id")
		moduleID, okModule := paramID(c, "module_id")
		if !okCourse || !okModule {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course or module ID!", nil)
		}

		c.Locals("courseID", courseID)
		c.Locals("moduleID", moduleID)
		return c.Next()
	}
}

// QuizParams validates the :course_id and :quiz_id route parameters
func QuizParams() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, okCourse := paramID(c, "course_id")
		quizID, okQuiz := paramID(c, "quiz_id")
		if !okCourse || !okQuiz {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course or quiz ID!", nil)
		}

		c.Locals("courseID", courseID)
		c.Locals("quizID", quizID)
		return c.Next()
	}
}

// CourseParams validates the :course_id route parameter
func CourseParams() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := paramID(c, "course_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
		}

		c.Locals("courseID", courseID)
		return c.Next()
	}
}
