package progression

import (
	"testing"

	"lms/database"
	courseModels "lms/models/course"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func withID(id uint) gorm.Model {
	return gorm.Model{ID: id}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Every pooled connection to sqlite ":memory:" opens its own empty
	// database, so pin the pool to the single migrated connection.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	database.RunMigrations(db)
	return db
}

// courseFixture is a small course with a deterministic shape:
//
//	Module A: lesson A1 (1200s video), lesson A2 (600s video + lesson quiz),
//	          module quiz (1 question, 2 attempts max)
//	Module B: lesson B1 (300s video)
//	Final quiz: 2 weighted questions (3 + 1 points)
type courseFixture struct {
	course   courseModels.Course
	moduleA  courseModels.Module
	moduleB  courseModels.Module
	lessonA1 courseModels.Lesson
	lessonA2 courseModels.Lesson
	lessonB1 courseModels.Lesson

	lessonQuiz   courseModels.Quiz
	lessonQuizQs []courseModels.QuizQuestion
	moduleQuiz   courseModels.Quiz
	moduleQuizQs []courseModels.QuizQuestion
	finalQuiz    courseModels.Quiz
	finalQuizQs  []courseModels.QuizQuestion
}

type seedQuestion struct {
	prompt  string
	points  int
	options int
	correct []int
}

func seedQuiz(t *testing.T, db *gorm.DB, quiz courseModels.Quiz, questions []seedQuestion) (courseModels.Quiz, []courseModels.QuizQuestion) {
	t.Helper()

	require.NoError(t, db.Create(&quiz).Error)

	created := make([]courseModels.QuizQuestion, len(questions))
	for qi, sq := range questions {
		question := courseModels.QuizQuestion{
			QuizID:     quiz.ID,
			Prompt:     sq.prompt,
			Points:     sq.points,
			OrderIndex: qi,
		}
		require.NoError(t, db.Create(&question).Error)

		correct := make(map[int]bool, len(sq.correct))
		for _, idx := range sq.correct {
			correct[idx] = true
		}
		for oi := 0; oi < sq.options; oi++ {
			option := courseModels.QuizOption{
				QuestionID: question.ID,
				OptionText: "option",
				IsCorrect:  correct[oi],
				OrderIndex: oi,
			}
			require.NoError(t, db.Create(&option).Error)
		}
		created[qi] = question
	}

	return quiz, created
}

func seedCourse(t *testing.T, db *gorm.DB) *courseFixture {
	t.Helper()

	f := &courseFixture{}

	f.course = courseModels.Course{Title: "Intro to Distributed Systems", Status: "ACTIVE", IsPublished: true}
	require.NoError(t, db.Create(&f.course).Error)

	f.moduleA = courseModels.Module{CourseID: f.course.ID, Title: "Fundamentals", OrderIndex: 0}
	require.NoError(t, db.Create(&f.moduleA).Error)
	f.moduleB = courseModels.Module{CourseID: f.course.ID, Title: "Consensus", OrderIndex: 1}
	require.NoError(t, db.Create(&f.moduleB).Error)

	f.lessonA1 = courseModels.Lesson{CourseID: f.course.ID, ModuleID: f.moduleA.ID, Title: "Clocks", DurationSec: 1200, OrderIndex: 0, IsPublished: true}
	require.NoError(t, db.Create(&f.lessonA1).Error)
	f.lessonA2 = courseModels.Lesson{CourseID: f.course.ID, ModuleID: f.moduleA.ID, Title: "Ordering", DurationSec: 600, OrderIndex: 1, HasQuiz: true, IsPublished: true}
	require.NoError(t, db.Create(&f.lessonA2).Error)
	f.lessonB1 = courseModels.Lesson{CourseID: f.course.ID, ModuleID: f.moduleB.ID, Title: "Paxos", DurationSec: 300, OrderIndex: 0, IsPublished: true}
	require.NoError(t, db.Create(&f.lessonB1).Error)

	lessonID := f.lessonA2.ID
	f.lessonQuiz, f.lessonQuizQs = seedQuiz(t, db, courseModels.Quiz{
		CourseID: f.course.ID,
		Scope:    courseModels.QuizScopeLesson,
		LessonID: &lessonID,
		Title:    "Ordering check",
	}, []seedQuestion{
		{prompt: "q1", options: 3, correct: []int{0}},
		{prompt: "q2", options: 3, correct: []int{1, 2}},
	})

	moduleID := f.moduleA.ID
	f.moduleQuiz, f.moduleQuizQs = seedQuiz(t, db, courseModels.Quiz{
		CourseID:    f.course.ID,
		Scope:       courseModels.QuizScopeModule,
		ModuleID:    &moduleID,
		Title:       "Fundamentals exam",
		MaxAttempts: 2,
	}, []seedQuestion{
		{prompt: "q1", options: 3, correct: []int{0}},
	})

	f.finalQuiz, f.finalQuizQs = seedQuiz(t, db, courseModels.Quiz{
		CourseID: f.course.ID,
		Scope:    courseModels.QuizScopeFinal,
		Title:    "Final exam",
	}, []seedQuestion{
		{prompt: "q1", points: 3, options: 3, correct: []int{0}},
		{prompt: "q2", points: 1, options: 3, correct: []int{2}},
	})

	return f
}

type mockIssuer struct {
	calls []issuedCert
}

type issuedCert struct {
	userID   uint
	courseID uint
	scorePct int
}

func (m *mockIssuer) IssueCertificate(userID, courseID uint, scorePct int) error {
	m.calls = append(m.calls, issuedCert{userID: userID, courseID: courseID, scorePct: scorePct})
	return nil
}

func newTestEngine(db *gorm.DB) (*QuizEngine, *mockIssuer) {
	issuer := &mockIssuer{}
	return NewQuizEngine(db, 70, 3, issuer), issuer
}

func newTestTracker(db *gorm.DB) *VideoTracker {
	return NewVideoTracker(db, 0.9)
}

// markRead completes the video part of a lesson via the mark-read path.
func markRead(t *testing.T, tracker *VideoTracker, userID, courseID, lessonID uint) *VideoProgressResult {
	t.Helper()
	result, err := tracker.MarkAsRead(userID, courseID, lessonID)
	require.NoError(t, err)
	return result
}

// clearModuleA walks a user through module A: both lessons, the lesson quiz
// and the module quiz, all passed.
func clearModuleA(t *testing.T, db *gorm.DB, f *courseFixture, userID uint) {
	t.Helper()

	tracker := newTestTracker(db)
	engine, _ := newTestEngine(db)

	markRead(t, tracker, userID, f.course.ID, f.lessonA1.ID)
	markRead(t, tracker, userID, f.course.ID, f.lessonA2.ID)

	result, err := engine.SubmitAttempt(f.lessonQuiz.ID, userID, AttemptSubmission{
		Answers: []SubmittedAnswer{
			{QuestionID: f.lessonQuizQs[0].ID, SelectedIndexes: []int{0}},
			{QuestionID: f.lessonQuizQs[1].ID, SelectedIndexes: []int{1, 2}},
		},
	})
	require.NoError(t, err)
	require.True(t, result.Passed)

	result, err = engine.SubmitAttempt(f.moduleQuiz.ID, userID, AttemptSubmission{
		Answers: []SubmittedAnswer{
			{QuestionID: f.moduleQuizQs[0].ID, SelectedIndexes: []int{0}},
		},
	})
	require.NoError(t, err)
	require.True(t, result.Passed)
}
