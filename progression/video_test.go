package progression

import (
	"testing"

	progressModels "lms/models/progress"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordProgressBelowThreshold(t *testing.T) {
	db := setupTestDB(t)
	f := seedCourse(t, db)
	tracker := newTestTracker(db)

	// 1000s into a 1200s video is 83%, short of the 90% bar
	result, err := tracker.RecordProgress(1, f.course.ID, f.lessonA1.ID, 1000, 1000)
	require.NoError(t, err)
	assert.Equal(t, 83, result.PercentWatched)
	assert.False(t, result.VideoCompleted)
	assert.False(t, result.LessonCompleted)
}

func TestRecordProgressCrossesThreshold(t *testing.T) {
	db := setupTestDB(t)
	f := seedCourse(t, db)
	tracker := newTestTracker(db)

	_, err := tracker.RecordProgress(1, f.course.ID, f.lessonA1.ID, 1000, 1000)
	require.NoError(t, err)

	result, err := tracker.RecordProgress(1, f.course.ID, f.lessonA1.ID, 1100, 100)
	require.NoError(t, err)
	assert.Equal(t, 92, result.PercentWatched)
	assert.True(t, result.VideoCompleted)
	// No quiz on this lesson, so watching it is completing it
	assert.True(t, result.LessonCompleted)
	assert.False(t, result.NeedsQuiz)

	// Completion rolled up: 1 of 3 lessons done
	var rollup progressModels.CourseProgress
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", 1, f.course.ID).First(&rollup).Error)
	assert.Equal(t, 33, rollup.CoursePct)
}

func TestRecordProgressMonotonic(t *testing.T) {
	db := setupTestDB(t)
	f := seedCourse(t, db)
	tracker := newTestTracker(db)

	_, err := tracker.RecordProgress(1, f.course.ID, f.lessonA1.ID, 1000, 1000)
	require.NoError(t, err)

	// A seek back to 500s must not shrink the watched percentage
	result, err := tracker.RecordProgress(1, f.course.ID, f.lessonA1.ID, 500, 0)
	require.NoError(t, err)
	assert.Equal(t, 83, result.PercentWatched)

	// A duplicate ping converges to the same percentage
	result, err = tracker.RecordProgress(1, f.course.ID, f.lessonA1.ID, 1000, 0)
	require.NoError(t, err)
	assert.Equal(t, 83, result.PercentWatched)

	var row progressModels.LessonProgress
	require.NoError(t, db.Where("user_id = ? AND lesson_id = ?", 1, f.lessonA1.ID).First(&row).Error)
	assert.InDelta(t, 1000.0/1200.0, row.VideoPercentMax, 0.0001)
	assert.Equal(t, 500, row.LastPositionSec)
	assert.Equal(t, 1000, row.SecondsWatched)
}

func TestRecordProgressClampsOverrun(t *testing.T) {
	db := setupTestDB(t)
	f := seedCourse(t, db)
	tracker := newTestTracker(db)

	// Player reporting past the end clamps to 100%
	result, err := tracker.RecordProgress(1, f.course.ID, f.lessonA1.ID, 2000, 1200)
	require.NoError(t, err)
	assert.Equal(t, 100, result.PercentWatched)
	assert.True(t, result.VideoCompleted)
}

func TestRecordProgressQuizLessonStaysIncomplete(t *testing.T) {
	db := setupTestDB(t)
	f := seedCourse(t, db)
	tracker := newTestTracker(db)
	engine, _ := newTestEngine(db)

	markRead(t, tracker, 1, f.course.ID, f.lessonA1.ID)

	// Watching the whole video is not enough on a quiz-bearing lesson
	result, err := tracker.RecordProgress(1, f.course.ID, f.lessonA2.ID, 600, 600)
	require.NoError(t, err)
	assert.True(t, result.VideoCompleted)
	assert.False(t, result.LessonCompleted)
	assert.True(t, result.NeedsQuiz)

	attempt, err := engine.SubmitAttempt(f.lessonQuiz.ID, 1, AttemptSubmission{
		Answers: []SubmittedAnswer{
			{QuestionID: f.lessonQuizQs[0].ID, SelectedIndexes: []int{0}},
			{QuestionID: f.lessonQuizQs[1].ID, SelectedIndexes: []int{1, 2}},
		},
	})
	require.NoError(t, err)
	require.True(t, attempt.Passed)

	var row progressModels.LessonProgress
	require.NoError(t, db.Where("user_id = ? AND lesson_id = ?", 1, f.lessonA2.ID).First(&row).Error)
	assert.True(t, row.Completed)
}

func TestMarkAsRead(t *testing.T) {
	db := setupTestDB(t)
	f := seedCourse(t, db)
	tracker := newTestTracker(db)

	result, err := tracker.MarkAsRead(1, f.course.ID, f.lessonA1.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, result.PercentWatched)
	assert.True(t, result.VideoCompleted)
	assert.True(t, result.LessonCompleted)

	// Marking a quiz-bearing lesson read still leaves the quiz outstanding
	result, err = tracker.MarkAsRead(1, f.course.ID, f.lessonA2.ID)
	require.NoError(t, err)
	assert.True(t, result.VideoCompleted)
	assert.False(t, result.LessonCompleted)
	assert.True(t, result.NeedsQuiz)
}

func TestRecordProgressValidation(t *testing.T) {
	db := setupTestDB(t)
	f := seedCourse(t, db)
	tracker := newTestTracker(db)

	_, err := tracker.RecordProgress(1, f.course.ID, f.lessonA1.ID, -1, 0)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = tracker.RecordProgress(1, f.course.ID, f.lessonA1.ID, 0, -5)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = tracker.RecordProgress(1, f.course.ID, 99999, 10, 10)
	assert.ErrorIs(t, err, ErrNotFound)
}
