package courseValidator

import (
	"lms/middleware"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CourseRequest is the create/update payload for a course
type CourseRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Author      string `json:"author"`
}

// ModuleRequest is the create/update payload for a module. OrderIndex is -1
// when the client didn't send one, meaning append at the end of the chain.
type ModuleRequest struct {
	Title       string
	Description string
	OrderIndex  int
}

// LessonRequest is the create/update payload for a lesson
type LessonRequest struct {
	Title       string
	Description string
	VideoURL    string
	DurationSec int
	OrderIndex  int
	HasQuiz     bool
}

// paramID parses a positive integer route parameter
func paramID(c *fiber.Ctx, name string) (int, bool) {
	value, err := strconv.Atoi(c.Params(name))
	if err != nil || value < 1 {
		return 0, false
	}
	return value, true
}

// CreateCourse validates the course creation payload
func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CourseRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		// Validate Title
		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Title is required!"
		} else if len(strings.TrimSpace(reqData.Title)) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}

		// Validate Description
		if strings.TrimSpace(reqData.Description) == "" {
			errors["description"] = "Description is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

// UpdateCourse validates the course update payload and course ID
func UpdateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := paramID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
		}

		reqData := new(CourseRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		c.Locals("courseID", courseID)
		c.Locals("validatedCourseUpdate", reqData)
		return c.Next()
	}
}

// CourseID validates the :id route parameter
func CourseID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := paramID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
		}

		c.Locals("courseID", courseID)
		return c.Next()
	}
}

// CreateModule validates the module creation payload
func CreateModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := paramID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
		}

		body := new(struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			OrderIndex  *int   `json:"order_index"`
		})
		if err := c.BodyParser(body); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(body.Title) == "" {
			errors["title"] = "Title is required!"
		}
		if body.OrderIndex != nil && *body.OrderIndex < 0 {
			errors["order_index"] = "Order index must not be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		reqData := &ModuleRequest{
			Title:       body.Title,
			Description: body.Description,
			OrderIndex:  -1,
		}
		if body.OrderIndex != nil {
			reqData.OrderIndex = *body.OrderIndex
		}

		c.Locals("courseID", courseID)
		c.Locals("validatedModule", reqData)
		return c.Next()
	}
}

// UpdateModule validates the module update payload and IDs
func UpdateModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, okCourse := paramID(c, "course_id")
		moduleID, okModule := paramID(c, "module_id")
		if !okCourse || !okModule {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course or module ID!", nil)
		}

		body := new(struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			OrderIndex  *int   `json:"order_index"`
		})
		if err := c.BodyParser(body); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData := &ModuleRequest{
			Title:       body.Title,
			Description: body.Description,
			OrderIndex:  -1,
		}
		if body.OrderIndex != nil {
			reqData.OrderIndex = *body.OrderIndex
		}

		c.Locals("courseID", courseID)
		c.Locals("moduleID", moduleID)
		c.Locals("validatedModuleUpdate", reqData)
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

// CreateLesson validates the lesson creation payload
func CreateLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, okCourse := paramID(c, "course_id")
		moduleID, okModule := paramID(c, "module_id")
		if !okCourse || !okModule {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course or module ID!", nil)
		}

		body := new(struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			VideoURL    string `json:"video_url"`
			DurationSec int    `json:"duration_sec"`
			OrderIndex  *int   `json:"order_index"`
			HasQuiz     bool   `json:"has_quiz"`
		})
		if err := c.BodyParser(body); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(body.Title) == "" {
			errors["title"] = "Title is required!"
		}
		if body.DurationSec < 0 {
			errors["duration_sec"] = "Duration must not be negative!"
		}
		if body.OrderIndex != nil && *body.OrderIndex < 0 {
			errors["order_index"] = "Order index must not be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		reqData := &LessonRequest{
			Title:       body.Title,
			Description: body.Description,
			VideoURL:    body.VideoURL,
			DurationSec: body.DurationSec,
			OrderIndex:  -1,
			HasQuiz:     body.HasQuiz,
		}
		if body.OrderIndex != nil {
			reqData.OrderIndex = *body.OrderIndex
		}

		c.Locals("courseID", courseID)
		c.Locals("moduleID", moduleID)
		c.Locals("validatedLesson", reqData)
		return c.Next()
	}
}

// UpdateLesson validates the lesson update payload and IDs
func UpdateLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, okCourse := paramID(c, "course_id")
		lessonID, okLesson := paramID(c, "lesson_id")
		if !okCourse || !okLesson {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course or lesson ID!", nil)
		}

		body := new(struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			VideoURL    string `json:"video_url"`
			DurationSec int    `json:"duration_sec"`
			OrderIndex  *int   `json:"order_index"`
			HasQuiz     bool   `json:"has_quiz"`
		})
		if err := c.BodyParser(body); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData := &LessonRequest{
			Title:       body.Title,
			Description: body.Description,
			VideoURL:    body.VideoURL,
			DurationSec: body.DurationSec,
			OrderIndex:  -1,
			HasQuiz:     body.HasQuiz,
		}
		if body.OrderIndex != nil {
			reqData.OrderIndex = *body.OrderIndex
		}

		c.Locals("courseID", courseID)
		c.Locals("lessonID", lessonID)
		c.Locals("validatedLessonUpdate", reqData)
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
