package progression

import (
	"sync"
	"testing"

	courseModels "lms/models/course"
	progressModels "lms/models/progress"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testQuizContent builds an in-memory quiz for scoring tests without a
// database. Each entry is (points, option count, correct indexes).
func testQuizContent(questions ...seedQuestion) *quizContent {
	content := &quizContent{questions: make([]questionContent, len(questions))}
	for i, sq := range questions {
		correct := make(map[int]bool, len(sq.correct))
		for _, idx := range sq.correct {
			correct[idx] = true
		}
		options := make([]courseModels.QuizOption, sq.options)
		for oi := range options {
			options[oi] = courseModels.QuizOption{OrderIndex: oi, IsCorrect: correct[oi]}
		}
		content.questions[i] = questionContent{
			question: courseModels.QuizQuestion{Model: withID(uint(i + 1)), Points: sq.points},
			options:  options,
			correct:  correct,
		}
	}
	return content
}

func TestScoreAttempt(t *testing.T) {
	tests := []struct {
		name      string
		questions []seedQuestion
		answers   []SubmittedAnswer
		want      int
	}{
		{
			name: "all correct",
			questions: []seedQuestion{
				{options: 3, correct: []int{0}},
				{options: 3, correct: []int{1, 2}},
			},
			answers: []SubmittedAnswer{
				{QuestionID: 1, SelectedIndexes: []int{0}},
				{QuestionID: 2, SelectedIndexes: []int{2, 1}},
			},
			want: 100,
		},
		{
			name: "subset of a multi-select earns nothing",
			questions: []seedQuestion{
				{options: 3, correct: []int{0}},
				{options: 3, correct: []int{1, 2}},
			},
			answers: []SubmittedAnswer{
				{QuestionID: 1, SelectedIndexes: []int{0}},
				{QuestionID: 2, SelectedIndexes: []int{1}},
			},
			want: 50,
		},
		{
			name: "unanswered question scores zero",
			questions: []seedQuestion{
				{options: 3, correct: []int{0}},
				{options: 3, correct: []int{1}},
			},
			answers: []SubmittedAnswer{
				{QuestionID: 1, SelectedIndexes: []int{0}},
			},
			want: 50,
		},
		{
			name: "point weighting",
			questions: []seedQuestion{
				{points: 3, options: 3, correct: []int{0}},
				{points: 1, options: 3, correct: []int{2}},
			},
			answers: []SubmittedAnswer{
				{QuestionID: 1, SelectedIndexes: []int{0}},
				{QuestionID: 2, SelectedIndexes: []int{1}},
			},
			want: 75,
		},
		{
			name: "rounding",
			questions: []seedQuestion{
				{options: 2, correct: []int{0}},
				{options: 2, correct: []int{0}},
				{options: 2, correct: []int{0}},
			},
			answers: []SubmittedAnswer{
				{QuestionID: 1, SelectedIndexes: []int{0}},
			},
			want: 33,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scoreAttempt(testQuizContent(tt.questions...), tt.answers)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScoreAttemptRejectsMalformedSubmissions(t *testing.T) {
	content := testQuizContent(
		seedQuestion{options: 3, correct: []int{0}},
		seedQuestion{options: 3, correct: []int{1}},
	)

	_, err := scoreAttempt(content, []SubmittedAnswer{
		{QuestionID: 1, SelectedIndexes: []int{0}},
		{QuestionID: 1, SelectedIndexes: []int{1}},
	})
	assert.ErrorIs(t, err, ErrValidation, "duplicate question")

	_, err = scoreAttempt(content, []SubmittedAnswer{
		{QuestionID: 42, SelectedIndexes: []int{0}},
	})
	assert.ErrorIs(t, err, ErrValidation, "unknown question")

	_, err = scoreAttempt(content, []SubmittedAnswer{
		{QuestionID: 1, SelectedIndexes: []int{5}},
	})
	assert.ErrorIs(t, err, ErrValidation, "option index out of range")

	_, err = scoreAttempt(&quizContent{}, []SubmittedAnswer{
		{QuestionID: 1, SelectedIndexes: []int{0}},
	})
	assert.ErrorIs(t, err, ErrValidation, "quiz without questions")
}

func TestSubmitAttemptBelowPassingScore(t *testing.T) {
	db := setupTestDB(t)
	f := seedCourse(t, db)
	tracker := newTestTracker(db)
	engine, _ := newTestEngine(db)

	markRead(t, tracker, 1, f.course.ID, f.lessonA1.ID)

	result, err := engine.SubmitAttempt(f.lessonQuiz.ID, 1, AttemptSubmission{
		Answers: []SubmittedAnswer{
			{QuestionID: f.lessonQuizQs[0].ID, SelectedIndexes: []int{0}},
			{QuestionID: f.lessonQuizQs[1].ID, SelectedIndexes: []int{1}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 50, result.ScorePct)
	assert.False(t, result.Passed)
	assert.Equal(t, 2, result.AttemptsLeft)
	assert.NotEmpty(t, result.AttemptID)
}

func TestSubmitAttemptGating(t *testing.T) {
	db := setupTestDB(t)
	f := seedCourse(t, db)
	engine, _ := newTestEngine(db)

	correct := AttemptSubmission{Answers: []SubmittedAnswer{
		{QuestionID: f.lessonQuizQs[0].ID, SelectedIndexes: []int{0}},
		{QuestionID: f.lessonQuizQs[1].ID, SelectedIndexes: []int{1, 2}},
	}}

	// Lesson A2 is still locked: lesson A1 was never completed
	_, err := engine.SubmitAttempt(f.lessonQuiz.ID, 1, correct)
	assert.ErrorIs(t, err, ErrLocked)

	// Module quiz needs every lesson of the module completed
	_, err = engine.SubmitAttempt(f.moduleQuiz.ID, 1, AttemptSubmission{
		Answers: []SubmittedAnswer{{QuestionID: f.moduleQuizQs[0].ID, SelectedIndexes: []int{0}}},
	})
	assert.ErrorIs(t, err, ErrLocked)

	// Final needs every module cleared
	_, err = engine.SubmitAttempt(f.finalQuiz.ID, 1, AttemptSubmission{
		Answers: []SubmittedAnswer{{QuestionID: f.finalQuizQs[0].ID, SelectedIndexes: []int{0}}},
	})
	assert.ErrorIs(t, err, ErrLocked)

	_, err = engine.SubmitAttempt(99999, 1, correct)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCheckAccessMatchesSubmitGate(t *testing.T) {
	db := setupTestDB(t)
	f := seedCourse(t, db)
	tracker := newTestTracker(db)
	engine, _ := newTestEngine(db)

	// Nothing completed yet: every quiz behind the chain stays unreadable
	assert.ErrorIs(t, engine.CheckAccess(f.lessonQuiz.ID, 1), ErrLocked)
	assert.ErrorIs(t, engine.CheckAccess(f.moduleQuiz.ID, 1), ErrLocked)
	assert.ErrorIs(t, engine.CheckAccess(f.finalQuiz.ID, 1), ErrLocked)
	assert.ErrorIs(t, engine.CheckAccess(99999, 1), ErrNotFound)

	// Completing lesson A1 unlocks lesson A2 and with it the lesson quiz
	markRead(t, tracker, 1, f.course.ID, f.lessonA1.ID)
	assert.NoError(t, engine.CheckAccess(f.lessonQuiz.ID, 1))
	assert.ErrorIs(t, engine.CheckAccess(f.moduleQuiz.ID, 1), ErrLocked)

	// Clearing module A and lesson B1 opens the final
	clearModuleA(t, db, f, 1)
	assert.NoError(t, engine.CheckAccess(f.moduleQuiz.ID, 1))
	assert.ErrorIs(t, engine.CheckAccess(f.finalQuiz.ID, 1), ErrLocked)

	markRead(t, tracker, 1, f.course.ID, f.lessonB1.ID)
	assert.NoError(t, engine.CheckAccess(f.finalQuiz.ID, 1))
}

func TestSubmitAttemptCeiling(t *testing.T) {
	db := setupTestDB(t)
	f := seedCourse(t, db)
	tracker := newTestTracker(db)
	engine, _ := newTestEngine(db)

	// Finish module A's lessons so the module quiz (max 2 attempts) opens up
	markRead(t, tracker, 1, f.course.ID, f.lessonA1.ID)
	markRead(t, tracker, 1, f.course.ID, f.lessonA2.ID)
	_, err := engine.SubmitAttempt(f.lessonQuiz.ID, 1, AttemptSubmission{
		Answers: []SubmittedAnswer{
			{QuestionID: f.lessonQuizQs[0].ID, SelectedIndexes: []int{0}},
			{QuestionID: f.lessonQuizQs[1].ID, SelectedIndexes: []int{1, 2}},
		},
	})
	require.NoError(t, err)

	wrong := AttemptSubmission{Answers: []SubmittedAnswer{
		{QuestionID: f.moduleQuizQs[0].ID, SelectedIndexes: []int{1}},
	}}

	result, err := engine.SubmitAttempt(f.moduleQuiz.ID, 1, wrong)
	require.NoError(t, err)
	assert.Equal(t, 1, result.AttemptsLeft)

	result, err = engine.SubmitAttempt(f.moduleQuiz.ID, 1, wrong)
	require.NoError(t, err)
	assert.Equal(t, 0, result.AttemptsLeft)

	_, err = engine.SubmitAttempt(f.moduleQuiz.ID, 1, wrong)
	assert.ErrorIs(t, err, ErrAttemptsExceeded)

	// The rejected third attempt must not leave a record behind
	var count int64
	db.Model(&progressModels.QuizAttempt{}).Where("quiz_id = ? AND user_id = ?", f.moduleQuiz.ID, 1).Count(&count)
	assert.EqualValues(t, 2, count)
}

func TestSubmitAttemptCeilingUnderConcurrency(t *testing.T) {
	db := setupTestDB(t)
	f := seedCourse(t, db)
	tracker := newTestTracker(db)
	engine, _ := newTestEngine(db)

	markRead(t, tracker, 1, f.course.ID, f.lessonA1.ID)
	markRead(t, tracker, 1, f.course.ID, f.lessonA2.ID)
	_, err := engine.SubmitAttempt(f.lessonQuiz.ID, 1, AttemptSubmission{
		Answers: []SubmittedAnswer{
			{QuestionID: f.lessonQuizQs[0].ID, SelectedIndexes: []int{0}},
			{QuestionID: f.lessonQuizQs[1].ID, SelectedIndexes: []int{1, 2}},
		},
	})
	require.NoError(t, err)

	wrong := AttemptSubmission{Answers: []SubmittedAnswer{
		{QuestionID: f.moduleQuizQs[0].ID, SelectedIndexes: []int{1}},
	}}

	// Race 6 submissions against a 2-attempt ceiling. However they
	// interleave, the conditional counter update admits exactly two.
	const submitters = 6
	var wg sync.WaitGroup
	errs := make([]error, submitters)
	for i := 0; i < submitters; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, errs[slot] = engine.SubmitAttempt(f.moduleQuiz.ID, 1, wrong)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 2, succeeded)

	var row progressModels.ModuleQuizResult
	require.NoError(t, db.Where("user_id = ? AND module_id = ?", 1, f.moduleA.ID).First(&row).Error)
	assert.Equal(t, 2, row.Attempts)

	var count int64
	db.Model(&progressModels.QuizAttempt{}).Where("quiz_id = ? AND user_id = ?", f.moduleQuiz.ID, 1).Count(&count)
	assert.EqualValues(t, 2, count)
}

func TestPassedStateIsMonotonic(t *testing.T) {
	db := setupTestDB(t)
	f := seedCourse(t, db)
	tracker := newTestTracker(db)
	engine, _ := newTestEngine(db)

	markRead(t, tracker, 1, f.course.ID, f.lessonA1.ID)
	markRead(t, tracker, 1, f.course.ID, f.lessonA2.ID)

	result, err := engine.SubmitAttempt(f.lessonQuiz.ID, 1, AttemptSubmission{
		Answers: []SubmittedAnswer{
			{QuestionID: f.lessonQuizQs[0].ID, SelectedIndexes: []int{0}},
			{QuestionID: f.lessonQuizQs[1].ID, SelectedIndexes: []int{1, 2}},
		},
	})
	require.NoError(t, err)
	require.True(t, result.Passed)

	// A later failing attempt is recorded but cannot revoke the pass
	result, err = engine.SubmitAttempt(f.lessonQuiz.ID, 1, AttemptSubmission{
		Answers: []SubmittedAnswer{
			{QuestionID: f.lessonQuizQs[0].ID, SelectedIndexes: []int{2}},
		},
	})
	require.NoError(t, err)
	assert.False(t, result.Passed)

	var row progressModels.LessonProgress
	require.NoError(t, db.Where("user_id = ? AND lesson_id = ?", 1, f.lessonA2.ID).First(&row).Error)
	assert.True(t, row.QuizPassed)
	assert.Equal(t, 100, row.QuizBestScorePct)
	assert.Equal(t, 2, row.QuizAttempts)
	assert.True(t, row.Completed)
}

func TestSubmitAttemptIdempotencyKey(t *testing.T) {
	db := setupTestDB(t)
	f := seedCourse(t, db)
	tracker := newTestTracker(db)
	engine, _ := newTestEngine(db)

	markRead(t, tracker, 1, f.course.ID, f.lessonA1.ID)

	sub := AttemptSubmission{
		AttemptID: "client-key-1",
		Answers: []SubmittedAnswer{
			{QuestionID: f.lessonQuizQs[0].ID, SelectedIndexes: []int{0}},
			{QuestionID: f.lessonQuizQs[1].ID, SelectedIndexes: []int{1, 2}},
		},
	}

	result, err := engine.SubmitAttempt(f.lessonQuiz.ID, 1, sub)
	require.NoError(t, err)
	assert.Equal(t, "client-key-1", result.AttemptID)

	_, err = engine.SubmitAttempt(f.lessonQuiz.ID, 1, sub)
	assert.ErrorIs(t, err, ErrConflict)

	var count int64
	db.Model(&progressModels.QuizAttempt{}).Where("quiz_id = ? AND user_id = ?", f.lessonQuiz.ID, 1).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestSubmitAttemptSurfacesStorageErrors(t *testing.T) {
	db := setupTestDB(t)
	f := seedCourse(t, db)
	tracker := newTestTracker(db)
	engine, _ := newTestEngine(db)

	markRead(t, tracker, 1, f.course.ID, f.lessonA1.ID)

	// A failed attempt insert that is not a duplicate key must come back
	// as the storage error, not get misreported as a duplicate submission
	require.NoError(t, db.Migrator().DropTable(&progressModels.QuizAttempt{}))

	_, err := engine.SubmitAttempt(f.lessonQuiz.ID, 1, AttemptSubmission{
		Answers: []SubmittedAnswer{
			{QuestionID: f.lessonQuizQs[0].ID, SelectedIndexes: []int{0}},
			{QuestionID: f.lessonQuizQs[1].ID, SelectedIndexes: []int{1, 2}},
		},
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrConflict)
}

func TestFinalPassIssuesCertificateOnce(t *testing.T) {
	db := setupTestDB(t)
	f := seedCourse(t, db)
	tracker := newTestTracker(db)
	engine, issuer := newTestEngine(db)

	clearModuleA(t, db, f, 1)
	markRead(t, tracker, 1, f.course.ID, f.lessonB1.ID)

	// Only the 3-point question right: 3/4 = 75, clears the 70% default
	result, err := engine.SubmitAttempt(f.finalQuiz.ID, 1, AttemptSubmission{
		Answers: []SubmittedAnswer{
			{QuestionID: f.finalQuizQs[0].ID, SelectedIndexes: []int{0}},
			{QuestionID: f.finalQuizQs[1].ID, SelectedIndexes: []int{1}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 75, result.ScorePct)
	assert.True(t, result.Passed)

	require.Len(t, issuer.calls, 1)
	assert.Equal(t, uint(1), issuer.calls[0].userID)
	assert.Equal(t, f.course.ID, issuer.calls[0].courseID)
	assert.Equal(t, 75, issuer.calls[0].scorePct)

	// A better retake raises the best score but never re-issues
	result, err = engine.SubmitAttempt(f.finalQuiz.ID, 1, AttemptSubmission{
		Answers: []SubmittedAnswer{
			{QuestionID: f.finalQuizQs[0].ID, SelectedIndexes: []int{0}},
			{QuestionID: f.finalQuizQs[1].ID, SelectedIndexes: []int{2}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 100, result.ScorePct)
	assert.Len(t, issuer.calls, 1)

	var rollup progressModels.CourseProgress
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", 1, f.course.ID).First(&rollup).Error)
	assert.True(t, rollup.FinalPassed)
	assert.Equal(t, 100, rollup.FinalScorePct)
	assert.Equal(t, 2, rollup.FinalAttempts)
}

func TestQuizForViewerStripsAnswerKey(t *testing.T) {
	db := setupTestDB(t)
	f := seedCourse(t, db)
	engine, _ := newTestEngine(db)

	learnerView, err := engine.QuizForViewer(f.lessonQuiz.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 70, learnerView.PassingScorePct)
	assert.Equal(t, 3, learnerView.MaxAttempts)
	for _, q := range learnerView.Questions {
		for _, opt := range q.Options {
			assert.False(t, opt.IsCorrect)
		}
	}

	adminView, err := engine.QuizForViewer(f.lessonQuiz.ID, true)
	require.NoError(t, err)
	flagged := 0
	for _, q := range adminView.Questions {
		for _, opt := range q.Options {
			if opt.IsCorrect {
				flagged++
			}
		}
	}
	assert.Equal(t, 3, flagged)
}
