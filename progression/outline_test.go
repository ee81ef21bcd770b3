package progression

import (
	"testing"

	courseModels "lms/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOutline(t *testing.T) {
	db := setupTestDB(t)
	f := seedCourse(t, db)
	tracker := newTestTracker(db)
	aggregator := NewAggregator(db)

	markRead(t, tracker, 1, f.course.ID, f.lessonA1.ID)

	outline, err := aggregator.BuildOutline(f.course.ID, 1)
	require.NoError(t, err)

	assert.Equal(t, f.course.ID, outline.CourseID)
	assert.Equal(t, 1, outline.CompletedLessons)
	assert.Equal(t, 3, outline.TotalLessons)
	assert.Equal(t, 33, outline.CoursePct)

	require.Len(t, outline.Modules, 2)
	modA, modB := outline.Modules[0], outline.Modules[1]

	assert.True(t, modA.Unlocked)
	assert.Equal(t, 50, modA.ModulePercent)
	assert.True(t, modA.HasQuiz)
	assert.False(t, modA.CanTakeQuiz, "lesson A2 still open")
	require.Len(t, modA.Lessons, 2)
	assert.True(t, modA.Lessons[0].Completed)
	assert.Equal(t, 100, modA.Lessons[0].PercentWatched)
	assert.True(t, modA.Lessons[1].Unlocked)
	assert.False(t, modA.Lessons[1].Completed)

	assert.False(t, modB.Unlocked)
	assert.False(t, modB.Lessons[0].Unlocked)

	require.NotNil(t, outline.NextUp)
	assert.Equal(t, f.lessonA2.ID, outline.NextUp.LessonID)
	assert.Equal(t, f.moduleA.ID, outline.NextUp.ModuleID)

	require.NotNil(t, outline.FinalQuizID)
	assert.Equal(t, f.finalQuiz.ID, *outline.FinalQuizID)
	assert.False(t, outline.CanAttemptFinal)
	assert.False(t, outline.FinalQuizPassed)
}

func TestBuildOutlineNextUpAdvances(t *testing.T) {
	db := setupTestDB(t)
	f := seedCourse(t, db)
	aggregator := NewAggregator(db)

	clearModuleA(t, db, f, 1)

	outline, err := aggregator.BuildOutline(f.course.ID, 1)
	require.NoError(t, err)

	assert.True(t, outline.Modules[1].Unlocked)
	require.NotNil(t, outline.NextUp)
	assert.Equal(t, f.lessonB1.ID, outline.NextUp.LessonID)
}

func TestBuildOutlineUnknownCourse(t *testing.T) {
	db := setupTestDB(t)
	seedCourse(t, db)

	_, err := NewAggregator(db).BuildOutline(99999, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRollupsMirrorEnrollment(t *testing.T) {
	db := setupTestDB(t)
	f := seedCourse(t, db)
	tracker := newTestTracker(db)

	enrollment := courseModels.Enrollment{UserID: 1, CourseID: f.course.ID, Status: "ENROLLED"}
	require.NoError(t, db.Create(&enrollment).Error)

	markRead(t, tracker, 1, f.course.ID, f.lessonA1.ID)

	require.NoError(t, db.First(&enrollment, enrollment.ID).Error)
	assert.Equal(t, "IN_PROGRESS", enrollment.Status)
	assert.Equal(t, 33.0, enrollment.Progress)
	assert.Equal(t, 1, enrollment.CompletedLessons)
	assert.Equal(t, 3, enrollment.TotalLessons)
	assert.Nil(t, enrollment.CompletedAt)

	clearModuleA(t, db, f, 1)
	markRead(t, tracker, 1, f.course.ID, f.lessonB1.ID)

	require.NoError(t, db.First(&enrollment, enrollment.ID).Error)
	assert.Equal(t, "COMPLETED", enrollment.Status)
	assert.Equal(t, 100.0, enrollment.Progress)
	assert.NotNil(t, enrollment.CompletedAt)
}

func TestRecomputeRollupsWithoutEnrollment(t *testing.T) {
	db := setupTestDB(t)
	f := seedCourse(t, db)
	tracker := newTestTracker(db)

	// An un-enrolled viewer (admin preview) must not break the roll-up
	result, err := tracker.MarkAsRead(1, f.course.ID, f.lessonA1.ID)
	require.NoError(t, err)
	assert.True(t, result.LessonCompleted)
}

func TestRecomputeCourseStats(t *testing.T) {
	db := setupTestDB(t)
	f := seedCourse(t, db)

	course, err := NewAggregator(db).RecomputeCourseStats(f.course.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, course.ModuleCount)
	assert.Equal(t, 3, course.LessonCount)
	assert.Equal(t, 2100, course.TotalDurationSec)
	assert.True(t, course.HasModuleQuizzes)
	assert.True(t, course.HasFinalQuiz)

	var persisted courseModels.Course
	require.NoError(t, db.First(&persisted, f.course.ID).Error)
	assert.Equal(t, 3, persisted.LessonCount)
	assert.Equal(t, 2100, persisted.TotalDurationSec)
}
