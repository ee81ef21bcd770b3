package controllers

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// AdminCreateQuiz creates a quiz with its questions and options in one shot.
// Scope decides what it attaches to: a lesson, a module, or the course final.
func AdminCreateQuiz(c *fiber.Ctx) error {
	if _, errResp := requireAdmin(c); errResp != nil {
		return errResp
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	reqData, ok := c.Locals("validatedQuiz").(*validators.QuizRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	switch reqData.Scope {
	case courseModels.QuizScopeLesson:
		var lesson courseModels.Lesson
		if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", reqData.LessonID, courseID, false).First(&lesson).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
		}
	case courseModels.QuizScopeModule:
		var module courseModels.Module
		if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", reqData.ModuleID, courseID, false).First(&module).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
		}
	case courseModels.QuizScopeFinal:
		var existing courseModels.Quiz
		if err := database.Database.Db.Where("course_id = ? AND scope = ? AND is_deleted = ?", courseID, courseModels.QuizScopeFinal, false).First(&existing).Error; err == nil {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Course already has a final quiz!", nil)
		}
	}

	quiz := courseModels.Quiz{
		CourseID:        uint(courseID),
		Scope:           reqData.Scope,
		Title:           reqData.Title,
		PassingScorePct: reqData.PassingScorePct,
		MaxAttempts:     reqData.MaxAttempts,
	}
	if reqData.Scope == courseModels.QuizScopeLesson {
		lessonID := reqData.LessonID
		quiz.LessonID = &lessonID
	}
	if reqData.Scope == courseModels.QuizScopeModule {
		moduleID := reqData.ModuleID
		quiz.ModuleID = &moduleID
	}

	tx := database.Database.Db.Begin()

	if err := tx.Create(&quiz).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create quiz!", nil)
	}

	for qi, q := range reqData.Questions {
		question := courseModels.QuizQuestion{
			QuizID:     quiz.ID,
			Prompt:     q.Prompt,
			Points:     q.Points,
			OrderIndex: qi,
		}
		if err := tx.Create(&question).Error; err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create quiz question!", nil)
		}
		for oi, opt := range q.Options {
			option := courseModels.QuizOption{
				QuestionID: question.ID,
				OptionText: opt.Text,
				IsCorrect:  opt.IsCorrect,
				OrderIndex: oi,
			}
			if err := tx.Create(&option).Error; err != nil {
				tx.Rollback()
				return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create quiz option!", nil)
			}
		}
	}

	tx.Commit()

	// Mark the lesson as quiz-bearing so completion waits for a pass
	if quiz.LessonID != nil {
		database.Database.Db.Model(&courseModels.Lesson{}).Where("id = ?", *quiz.LessonID).Update("has_quiz", true)
	}

	contentGraphMutated(uint(courseID))

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz created successfully!", quiz)
}

// AdminDeleteQuiz soft deletes a quiz with its questions and options
func AdminDeleteQuiz(c *fiber.Ctx) error {
	if _, errResp := requireAdmin(c); errResp != nil {
		return errResp
	}

	courseID := c.Locals("courseID").(int)
	quizID := c.Locals("quizID").(int)

	var quiz courseModels.Quiz
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", quizID, courseID, false).First(&quiz).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	tx := database.Database.Db.Begin()

	quiz.IsDeleted = true
	if err := tx.Save(&quiz).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete quiz!", nil)
	}

	var questionIDs []uint
	tx.Model(&courseModels.QuizQuestion{}).Where("quiz_id = ?", quizID).Pluck("id", &questionIDs)

	if err := tx.Model(&courseModels.QuizQuestion{}).Where("quiz_id = ?", quizID).Update("is_deleted", true).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete quiz questions!", nil)
	}
	if len(questionIDs) > 0 {
		if err := tx.Model(&courseModels.QuizOption{}).Where("question_id IN ?", questionIDs).Update("is_deleted", true).Error; err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete quiz options!", nil)
		}
	}

	tx.Commit()

	// A lesson without a live quiz no longer waits for one
	if quiz.LessonID != nil {
		database.Database.Db.Model(&courseModels.Lesson{}).Where("id = ?", *quiz.LessonID).Update("has_quiz", false)
	}

	contentGraphMutated(uint(courseID))

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz deleted successfully!", nil)
}
