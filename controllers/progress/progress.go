package controllers

import (
	"lms/config"
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	progressModels "lms/models/progress"
	"lms/progression"
	"lms/utils"
	validators "lms/validators/progress"

	"github.com/gofiber/fiber/v2"
)

// engineError maps engine errors onto the HTTP envelope. Locked gets its own
// 423 so clients can show "complete prerequisites" messaging instead of a
// plain not-found.
func engineError(c *fiber.Ctx, err error) error {
	switch err {
	case progression.ErrNotFound:
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Not found!", nil)
	case progression.ErrLocked:
		return middleware.JsonResponse(c, fiber.StatusLocked, false, "Complete the previous content first!", nil)
	case progression.ErrAttemptsExceeded:
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Maximum attempts reached!", nil)
	case progression.ErrConflict:
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Already submitted!", nil)
	case progression.ErrValidation:
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Invalid submission payload!", nil)
	default:
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong!", nil)
	}
}

// requireLearner resolves the authenticated user and checks enrollment in
// the course. Entitlement ("does this user have access at all") stays
// outside the engine.
func requireLearner(c *fiber.Ctx, courseID int) (uint, error) {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return 0, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return 0, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		return 0, middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
	}

	return userID, nil
}

// RecordVideoProgress consumes one playback ping for a lesson video
func RecordVideoProgress(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	lessonID := c.Locals("lessonID").(int)

	userID, errResp := requireLearner(c, courseID)
	if errResp != nil {
		return errResp
	}

	reqData, ok := c.Locals("validatedVideoPing").(*validators.VideoPingRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Gating: the lesson must be unlocked before progress counts
	if err := checkLessonGate(userID, uint(courseID), uint(lessonID)); err != nil {
		return engineError(c, err)
	}

	tracker := progression.NewVideoTracker(database.Database.Db, config.AppConfig.VideoCompletionThreshold)
	result, err := tracker.RecordProgress(userID, uint(courseID), uint(lessonID), reqData.PositionSec, reqData.WatchedDeltaSec)
	if err != nil {
		return engineError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress recorded!", result)
}

// MarkLessonRead completes a lesson without a meaningful video duration
func MarkLessonRead(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	lessonID := c.Locals("lessonID").(int)

	userID, errResp := requireLearner(c, courseID)
	if errResp != nil {
		return errResp
	}

	if err := checkLessonGate(userID, uint(courseID), uint(lessonID)); err != nil {
		return engineError(c, err)
	}

	tracker := progression.NewVideoTracker(database.Database.Db, config.AppConfig.VideoCompletionThreshold)
	result, err := tracker.MarkAsRead(userID, uint(courseID), uint(lessonID))
	if err != nil {
		return engineError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson marked as read!", result)
}

// SubmitQuizAttempt scores one quiz submission (lesson, module or final)
func SubmitQuizAttempt(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	quizID := c.Locals("quizID").(int)

	userID, errResp := requireLearner(c, courseID)
	if errResp != nil {
		return errResp
	}

	reqData, ok := c.Locals("validatedQuizSubmission").(*progression.AttemptSubmission)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	engine := newQuizEngine()
	result, err := engine.SubmitAttempt(uint(quizID), userID, *reqData)
	if err != nil {
		return engineError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Answer submitted!", result)
}

// GetQuiz serves a quiz to a viewer. Learners get the answer key stripped;
// admins see correctness flags.
func GetQuiz(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	quizID := c.Locals("quizID").(int)

	userID, errResp := requireLearner(c, courseID)
	if errResp != nil {
		return errResp
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	engine := newQuizEngine()
	isAdmin := user.Role == "ADMIN"
	if !isAdmin {
		// Same gate as submission: a locked quiz must not leak its questions
		if err := engine.CheckAccess(uint(quizID), userID); err != nil {
			return engineError(c, err)
		}
	}
	view, err := engine.QuizForViewer(uint(quizID), isAdmin)
	if err != nil {
		return engineError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz fetched successfully!", view)
}

// GetQuizAttempts lists the caller's attempts for a quiz, newest first
func GetQuizAttempts(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	quizID := c.Locals("quizID").(int)

	userID, errResp := requireLearner(c, courseID)
	if errResp != nil {
		return errResp
	}

	var attempts []progressModels.QuizAttempt
	if err := database.Database.Db.Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Order("attempt_number desc").Find(&attempts).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch attempts!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempts fetched successfully!", fiber.Map{
		"attempts": attempts,
		"total":    len(attempts),
	})
}

// GetCourseOutline returns the per-viewer outline with unlock/completion
// flags and the next-up pointer
func GetCourseOutline(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	userID, errResp := requireLearner(c, courseID)
	if errResp != nil {
		return errResp
	}

	aggregator := progression.NewAggregator(database.Database.Db)
	outline, err := aggregator.BuildOutline(uint(courseID), userID)
	if err != nil {
		return engineError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Outline fetched successfully!", outline)
}

// CheckLessonAccess answers whether a lesson is currently accessible
func CheckLessonAccess(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	lessonID := c.Locals("lessonID").(int)

	userID, errResp := requireLearner(c, courseID)
	if errResp != nil {
		return errResp
	}

	err := checkLessonGate(userID, uint(courseID), uint(lessonID))
	if err == progression.ErrLocked {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Access checked!", fiber.Map{"accessible": false})
	}
	if err != nil {
		return engineError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Access checked!", fiber.Map{"accessible": true})
}

// CheckModuleAccess answers whether a module is currently accessible
func CheckModuleAccess(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	moduleID := c.Locals("moduleID").(int)

	userID, errResp := requireLearner(c, courseID)
	if errResp != nil {
		return errResp
	}

	graph, err := progression.LoadCourseGraph(database.Database.Db, uint(courseID))
	if err != nil {
		return engineError(c, err)
	}
	snap, err := progression.LoadSnapshot(database.Database.Db, userID, uint(courseID))
	if err != nil {
		return engineError(c, err)
	}

	mi, ok := graph.ModuleByID(uint(moduleID))
	if !ok {
		return engineError(c, progression.ErrNotFound)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Access checked!", fiber.Map{
		"accessible": progression.IsModuleUnlocked(graph, snap, mi),
	})
}

// GetUserProgress returns the raw progress aggregate for the caller
func GetUserProgress(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	userID, errResp := requireLearner(c, courseID)
	if errResp != nil {
		return errResp
	}

	snap, err := progression.LoadSnapshot(database.Database.Db, userID, uint(courseID))
	if err != nil {
		return engineError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", fiber.Map{
		"lessons":      snap.Lessons,
		"modules":      snap.Modules,
		"course":       snap.Course,
		"course_pct":   snap.Course.CoursePct,
		"final_passed": snap.Course.FinalPassed,
	})
}

// checkLessonGate loads graph and snapshot and applies the lesson unlock rule
func checkLessonGate(userID, courseID, lessonID uint) error {
	graph, err := progression.LoadCourseGraph(database.Database.Db, courseID)
	if err != nil {
		return err
	}
	snap, err := progression.LoadSnapshot(database.Database.Db, userID, courseID)
	if err != nil {
		return err
	}

	mi, li, ok := graph.LessonByID(lessonID)
	if !ok {
		return progression.ErrNotFound
	}
	if !progression.IsLessonUnlocked(graph, snap, mi, li) {
		return progression.ErrLocked
	}
	return nil
}

func newQuizEngine() *progression.QuizEngine {
	return progression.NewQuizEngine(
		database.Database.Db,
		config.AppConfig.DefaultPassingScorePct,
		config.AppConfig.DefaultMaxAttempts,
		utils.NewCertificateService(database.Database.Db),
	)
}
