package courseValidator

import (
	"lms/middleware"
	courseModels "lms/models/course"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// QuizOptionRequest is one answer choice in a question payload
type QuizOptionRequest struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// QuizQuestionRequest is one question in a quiz payload
type QuizQuestionRequest struct {
	Prompt  string              `json:"prompt"`
	Points  int                 `json:"points"`
	Options []QuizOptionRequest `json:"options"`
}

// QuizRequest is the create payload for a quiz. LessonID or ModuleID is
// required depending on scope; a FINAL quiz attaches to the course itself.
type QuizRequest struct {
	Scope           string                `json:"scope"`
	LessonID        uint                  `json:"lesson_id"`
	ModuleID        uint                  `json:"module_id"`
	Title           string                `json:"title"`
	PassingScorePct int                   `json:"passing_score_pct"`
	MaxAttempts     int                   `json:"max_attempts"`
	Questions       []QuizQuestionRequest `json:"questions"`
}

// CreateQuiz validates the quiz creation payload
func CreateQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := paramID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
		}

		reqData := new(QuizRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Scope = strings.ToUpper(strings.TrimSpace(reqData.Scope))
		switch reqData.Scope {
		case courseModels.QuizScopeLesson:
			if reqData.LessonID == 0 {
				errors["lesson_id"] = "Lesson ID is required for a lesson quiz!"
			}
		case courseModels.QuizScopeModule:
			if reqData.ModuleID == 0 {
				errors["module_id"] = "Module ID is required for a module quiz!"
			}
		case courseModels.QuizScopeFinal:
			// Attaches to the course directly
		default:
			errors["scope"] = "Scope must be LESSON, MODULE or FINAL!"
		}

		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Title is required!"
		}
		if reqData.PassingScorePct < 0 || reqData.PassingScorePct > 100 {
			errors["passing_score_pct"] = "Passing score must be between 0 and 100!"
		}
		if reqData.MaxAttempts < 0 {
			errors["max_attempts"] = "Max attempts must not be negative!"
		}

		if len(reqData.Questions) == 0 {
			errors["questions"] = "At least one question is required!"
		}
		for _, q := range reqData.Questions {
			if strings.TrimSpace(q.Prompt) == "" {
				errors["questions"] = "Every question needs a prompt!"
				break
			}
			if len(q.Options) < 2 {
				errors["questions"] = "Every question needs at least two options!"
				break
			}
			correct := 0
			for _, opt := range q.Options {
				if opt.IsCorrect {
					correct++
				}
			}
			if correct == 0 {
				errors["questions"] = "Every question needs at least one correct option!"
				break
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("validatedQuiz", reqData)
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
