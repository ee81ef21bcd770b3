package progression

import (
	"encoding/json"
	"log"
	"math"
	"time"

	courseModels "lms/models/course"
	progressModels "lms/models/progress"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CertificateIssuer is the narrow interface to the external certificate
// collaborator. Issuing for an already-certified user must be a no-op.
type CertificateIssuer interface {
	IssueCertificate(userID, courseID uint, scorePct int) error
}

// QuizEngine scores submitted attempts and enforces the per-quiz attempt
// ceiling. One algorithm serves lesson quizzes, module quizzes and the
// course final; only the result row they write to differs.
type QuizEngine struct {
	DB                     *gorm.DB
	DefaultPassingScorePct int
	DefaultMaxAttempts     int
	Certificates           CertificateIssuer
	Rollups                *Aggregator
}

// NewQuizEngine builds a quiz engine with explicit dependencies.
func NewQuizEngine(db *gorm.DB, defaultPassingScorePct, defaultMaxAttempts int, certificates CertificateIssuer) *QuizEngine {
	return &QuizEngine{
		DB:                     db,
		DefaultPassingScorePct: defaultPassingScorePct,
		DefaultMaxAttempts:     defaultMaxAttempts,
		Certificates:           certificates,
		Rollups:                NewAggregator(db),
	}
}

// SubmittedAnswer is one question's answer within a submission.
type SubmittedAnswer struct {
	QuestionID      uint  `json:"question_id" validate:"required"`
	SelectedIndexes []int `json:"selected_indexes" validate:"min=1,dive,gte=0"`
}

// AttemptSubmission is one quiz submission. AttemptID is an optional
// client-supplied idempotency key; reusing one yields Conflict instead of a
// double-counted attempt.
type AttemptSubmission struct {
	AttemptID string            `json:"attempt_id"`
	Answers   []SubmittedAnswer `json:"answers" validate:"required,min=1"`
}

// AttemptResult is what a scored submission reports back.
type AttemptResult struct {
	AttemptID    string `json:"attempt_id"`
	ScorePct     int    `json:"score_pct"`
	Passed       bool   `json:"passed"`
	AttemptsLeft int    `json:"attempts_left"`
}

// quizContent is a quiz definition with its questions, options and the
// canonical correct option-index set per question.
type quizContent struct {
	quiz      courseModels.Quiz
	questions []questionContent
}

type questionContent struct {
	question courseModels.QuizQuestion
	options  []courseModels.QuizOption
	correct  map[int]bool // option indexes flagged correct
}

// SubmitAttempt validates, scores and records one quiz submission.
//
// The attempt-count precondition and the counter increment are a single
// atomic unit (conditional update on the old counter value), so two
// concurrent submissions can never both consume the last allowed attempt.
func (e *QuizEngine) SubmitAttempt(quizID, userID uint, sub AttemptSubmission) (*AttemptResult, error) {
	content, err := e.loadQuiz(quizID)
	if err != nil {
		return nil, err
	}

	if sub.AttemptID != "" {
		var existing progressModels.QuizAttempt
		if err := e.DB.Where("attempt_id = ?", sub.AttemptID).First(&existing).Error; err == nil {
			return nil, ErrConflict
		}
	}

	if err := e.checkGate(content, userID); err != nil {
		return nil, err
	}

	startedAt := time.Now()
	scorePct, err := scoreAttempt(content, sub.Answers)
	if err != nil {
		return nil, err
	}
	passed := scorePct >= e.effectivePassingScore(&content.quiz)
	maxAttempts := e.effectiveMaxAttempts(&content.quiz)

	attemptNumber, firstPass, err := e.recordResult(content, userID, scorePct, passed, maxAttempts)
	if err != nil {
		return nil, err
	}

	attemptID := sub.AttemptID
	if attemptID == "" {
		attemptID = uuid.NewString()
	}
	answersJSON, _ := json.Marshal(sub.Answers)
	attempt := progressModels.QuizAttempt{
		AttemptID:     attemptID,
		QuizID:        content.quiz.ID,
		UserID:        userID,
		Answers:       answersJSON,
		ScorePct:      scorePct,
		Passed:        passed,
		AttemptNumber: attemptNumber,
		StartedAt:     startedAt,
		FinishedAt:    time.Now(),
	}
	if err := e.DB.Create(&attempt).Error; err != nil {
		// The unique attempt_id index catches a concurrent retry with the
		// same idempotency key; anything else is a real storage failure.
		var existing progressModels.QuizAttempt
		if lookupErr := e.DB.Where("attempt_id = ?", attemptID).First(&existing).Error; lookupErr == nil {
			return nil, ErrConflict
		}
		return nil, err
	}

	if content.quiz.Scope == courseModels.QuizScopeFinal && firstPass && e.Certificates != nil {
		if err := e.Certificates.IssueCertificate(userID, content.quiz.CourseID, scorePct); err != nil {
			log.Printf("[QUIZ-ENGINE] Certificate issuance failed for user %d course %d: %v", userID, content.quiz.CourseID, err)
		}
	}

	return &AttemptResult{
		AttemptID:    attemptID,
		ScorePct:     scorePct,
		Passed:       passed,
		AttemptsLeft: maxAttempts - attemptNumber,
	}, nil
}

func (e *QuizEngine) loadQuiz(quizID uint) (*quizContent, error) {
	var quiz courseModels.Quiz
	err := e.DB.Where("id = ? AND is_deleted = ?", quizID, false).First(&quiz).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var questions []courseModels.QuizQuestion
	if err := e.DB.Where("quiz_id = ? AND is_deleted = ?", quizID, false).
		Order("order_index asc").Find(&questions).Error; err != nil {
		return nil, err
	}

	content := &quizContent{quiz: quiz, questions: make([]questionContent, len(questions))}
	for i, q := range questions {
		var options []courseModels.QuizOption
		if err := e.DB.Where("question_id = ? AND is_deleted = ?", q.ID, false).
			Order("order_index asc").Find(&options).Error; err != nil {
			return nil, err
		}
		correct := make(map[int]bool)
		for idx, opt := range options {
			if opt.IsCorrect {
				correct[idx] = true
			}
		}
		content.questions[i] = questionContent{question: q, options: options, correct: correct}
	}

	return content, nil
}

// checkGate verifies the user is allowed to sit this quiz at all.
func (e *QuizEngine) checkGate(content *quizContent, userID uint) error {
	graph, err := LoadCourseGraph(e.DB, content.quiz.CourseID)
	if err != nil {
		return err
	}
	snap, err := LoadSnapshot(e.DB, userID, content.quiz.CourseID)
	if err != nil {
		return err
	}

	switch content.quiz.Scope {
	case courseModels.QuizScopeLesson:
		if content.quiz.LessonID == nil {
			return ErrNotFound
		}
		mi, li, ok := graph.LessonByID(*content.quiz.LessonID)
		if !ok {
			return ErrNotFound
		}
		if !IsLessonUnlocked(graph, snap, mi, li) {
			return ErrLocked
		}
	case courseModels.QuizScopeModule:
		if content.quiz.ModuleID == nil {
			return ErrNotFound
		}
		mi, ok := graph.ModuleByID(*content.quiz.ModuleID)
		if !ok {
			return ErrNotFound
		}
		if !CanAttemptModuleQuiz(graph, snap, mi) {
			return ErrLocked
		}
	case courseModels.QuizScopeFinal:
		if !CanAttemptFinalQuiz(graph, snap) {
			return ErrLocked
		}
	}
	return nil
}

// CheckAccess reports whether the user may currently open this quiz,
// applying the same gate as SubmitAttempt. Serving handlers call it before
// rendering quiz content so locked material never leaks.
func (e *QuizEngine) CheckAccess(quizID, userID uint) error {
	content, err := e.loadQuiz(quizID)
	if err != nil {
		return err
	}
	return e.checkGate(content, userID)
}

// scoreAttempt grades a submission against the answer key. A question is
// correct iff the selected option-index set exactly equals the correct set;
// there is no partial credit for near-misses. When any question carries
// points the score is point-weighted, otherwise it is a plain question count.
func scoreAttempt(content *quizContent, answers []SubmittedAnswer) (int, error) {
	if len(content.questions) == 0 {
		return 0, ErrValidation
	}

	byQuestion := make(map[uint][]int, len(answers))
	for _, ans := range answers {
		if _, dup := byQuestion[ans.QuestionID]; dup {
			return 0, ErrValidation
		}
		byQuestion[ans.QuestionID] = ans.SelectedIndexes
	}

	known := make(map[uint]bool, len(content.questions))
	for _, q := range content.questions {
		known[q.question.ID] = true
	}
	for id := range byQuestion {
		if !known[id] {
			return 0, ErrValidation
		}
	}

	weighted := false
	for _, q := range content.questions {
		if q.question.Points > 0 {
			weighted = true
			break
		}
	}

	earned, total := 0, 0
	for _, q := range content.questions {
		weight := 1
		if weighted && q.question.Points > 0 {
			weight = q.question.Points
		}
		total += weight

		selected, answered := byQuestion[q.question.ID]
		if !answered {
			continue // unanswered question scores zero
		}

		selectedSet := make(map[int]bool, len(selected))
		for _, idx := range selected {
			if idx < 0 || idx >= len(q.options) {
				return 0, ErrValidation
			}
			selectedSet[idx] = true
		}
		if setsEqual(selectedSet, q.correct) {
			earned += weight
		}
	}

	return int(math.Round(100 * float64(earned) / float64(total))), nil
}

func setsEqual(a, b map[int]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// recordResult applies the attempt to the scope's result row: conditional
// attempt increment plus monotonic best-score/passed merge. Returns the
// attempt number consumed and whether this submission was the first pass.
func (e *QuizEngine) recordResult(content *quizContent, userID uint, scorePct int, passed bool, maxAttempts int) (int, bool, error) {
	var lastErr error

	for i := 0; i < casRetries; i++ {
		switch content.quiz.Scope {
		case courseModels.QuizScopeModule:
			n, first, retry, err := e.recordModuleResult(content, userID, scorePct, passed, maxAttempts)
			if err != nil {
				return 0, false, err
			}
			if !retry {
				return n, first, nil
			}
		case courseModels.QuizScopeFinal:
			n, first, retry, err := e.recordFinalResult(content, userID, scorePct, passed, maxAttempts)
			if err != nil {
				return 0, false, err
			}
			if !retry {
				return n, first, nil
			}
		default: // lesson quiz
			n, first, retry, err := e.recordLessonResult(content, userID, scorePct, passed, maxAttempts)
			if err != nil {
				return 0, false, err
			}
			if !retry {
				return n, first, nil
			}
		}
		lastErr = ErrConflict
	}

	return 0, false, lastErr
}

func (e *QuizEngine) recordLessonResult(content *quizContent, userID uint, scorePct int, passed bool, maxAttempts int) (int, bool, bool, error) {
	if content.quiz.LessonID == nil {
		return 0, false, false, ErrNotFound
	}
	row, err := loadLessonProgress(e.DB, userID, content.quiz.CourseID, *content.quiz.LessonID)
	if err != nil {
		return 0, false, false, err
	}
	if row.QuizAttempts >= maxAttempts {
		return 0, false, false, ErrAttemptsExceeded
	}

	oldAttempts := row.QuizAttempts
	firstPass := passed && !row.QuizPassed

	row.QuizAttempts = oldAttempts + 1
	if scorePct > row.QuizBestScorePct {
		row.QuizBestScorePct = scorePct
	}
	row.QuizPassed = row.QuizPassed || passed

	transitioned := row.VideoCompleted && row.QuizPassed && !row.Completed
	if transitioned {
		now := time.Now()
		row.Completed = true
		row.CompletedAt = &now
	}

	if row.ID == 0 {
		if err := e.DB.Create(&row).Error; err != nil {
			return 0, false, true, nil // concurrent create, retry
		}
	} else {
		res := e.DB.Model(&row).
			Where("id = ? AND quiz_attempts = ?", row.ID, oldAttempts).
			Updates(map[string]interface{}{
				"quiz_attempts":       row.QuizAttempts,
				"quiz_best_score_pct": row.QuizBestScorePct,
				"quiz_passed":         row.QuizPassed,
				"completed":           row.Completed,
				"completed_at":        row.CompletedAt,
			})
		if res.Error != nil {
			return 0, false, false, res.Error
		}
		if res.RowsAffected == 0 {
			return 0, false, true, nil
		}
	}

	if transitioned {
		if err := e.Rollups.RecomputeRollups(userID, content.quiz.CourseID); err != nil {
			return 0, false, false, err
		}
	}

	return row.QuizAttempts, firstPass, false, nil
}

func (e *QuizEngine) recordModuleResult(content *quizContent, userID uint, scorePct int, passed bool, maxAttempts int) (int, bool, bool, error) {
	if content.quiz.ModuleID == nil {
		return 0, false, false, ErrNotFound
	}
	row, err := loadModuleResult(e.DB, userID, content.quiz.CourseID, *content.quiz.ModuleID)
	if err != nil {
		return 0, false, false, err
	}
	if row.Attempts >= maxAttempts {
		return 0, false, false, ErrAttemptsExceeded
	}

	oldAttempts := row.Attempts
	firstPass := passed && !row.Passed

	row.Attempts = oldAttempts + 1
	if scorePct > row.ScorePct {
		row.ScorePct = scorePct
	}
	row.Passed = row.Passed || passed
	if firstPass {
		now := time.Now()
		row.PassedAt = &now
	}

	if row.ID == 0 {
		if err := e.DB.Create(&row).Error; err != nil {
			return 0, false, true, nil
		}
	} else {
		res := e.DB.Model(&row).
			Where("id = ? AND attempts = ?", row.ID, oldAttempts).
			Updates(map[string]interface{}{
				"attempts":  row.Attempts,
				"score_pct": row.ScorePct,
				"passed":    row.Passed,
				"passed_at": row.PassedAt,
			})
		if res.Error != nil {
			return 0, false, false, res.Error
		}
		if res.RowsAffected == 0 {
			return 0, false, true, nil
		}
	}

	return row.Attempts, firstPass, false, nil
}

func (e *QuizEngine) recordFinalResult(content *quizContent, userID uint, scorePct int, passed bool, maxAttempts int) (int, bool, bool, error) {
	row, err := loadCourseProgress(e.DB, userID, content.quiz.CourseID)
	if err != nil {
		return 0, false, false, err
	}
	if row.FinalAttempts >= maxAttempts {
		return 0, false, false, ErrAttemptsExceeded
	}

	oldAttempts := row.FinalAttempts
	firstPass := passed && !row.FinalPassed

	row.FinalAttempts = oldAttempts + 1
	if scorePct > row.FinalScorePct {
		row.FinalScorePct = scorePct
	}
	row.FinalPassed = row.FinalPassed || passed
	if firstPass {
		now := time.Now()
		row.FinalPassedAt = &now
	}

	if row.ID == 0 {
		if err := e.DB.Create(&row).Error; err != nil {
			return 0, false, true, nil
		}
	} else {
		res := e.DB.Model(&row).
			Where("id = ? AND final_attempts = ?", row.ID, oldAttempts).
			Updates(map[string]interface{}{
				"final_attempts":  row.FinalAttempts,
				"final_score_pct": row.FinalScorePct,
				"final_passed":    row.FinalPassed,
				"final_passed_at": row.FinalPassedAt,
			})
		if res.Error != nil {
			return 0, false, false, res.Error
		}
		if res.RowsAffected == 0 {
			return 0, false, true, nil
		}
	}

	return row.FinalAttempts, firstPass, false, nil
}

func (e *QuizEngine) effectivePassingScore(quiz *courseModels.Quiz) int {
	if quiz.PassingScorePct > 0 {
		return quiz.PassingScorePct
	}
	return e.DefaultPassingScorePct
}

func (e *QuizEngine) effectiveMaxAttempts(quiz *courseModels.Quiz) int {
	if quiz.MaxAttempts > 0 {
		return quiz.MaxAttempts
	}
	return e.DefaultMaxAttempts
}
