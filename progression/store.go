package progression

import (
	progressModels "lms/models/progress"

	"gorm.io/gorm"
)

// casRetries bounds the optimistic-update loops. Contention is per
// (user, lesson)/(user, quiz), so a handful of retries is plenty.
const casRetries = 5

// Snapshot is a consistent read of one user's progress aggregate for a
// course. Maps are keyed by lesson/module ID; missing keys mean no progress
// yet. GatingEvaluator and outline building read from this, never from rows
// mid-mutation.
type Snapshot struct {
	Lessons map[uint]progressModels.LessonProgress
	Modules map[uint]progressModels.ModuleQuizResult
	Course  progressModels.CourseProgress
}

// LoadSnapshot reads the progress aggregate for a (user, course) pair.
// A user with no recorded progress gets empty maps, not an error.
func LoadSnapshot(db *gorm.DB, userID, courseID uint) (*Snapshot, error) {
	snap := &Snapshot{
		Lessons: make(map[uint]progressModels.LessonProgress),
		Modules: make(map[uint]progressModels.ModuleQuizResult),
	}

	var lessonRows []progressModels.LessonProgress
	if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).Find(&lessonRows).Error; err != nil {
		return nil, err
	}
	for _, row := range lessonRows {
		snap.Lessons[row.LessonID] = row
	}

	var moduleRows []progressModels.ModuleQuizResult
	if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).Find(&moduleRows).Error; err != nil {
		return nil, err
	}
	for _, row := range moduleRows {
		snap.Modules[row.ModuleID] = row
	}

	var courseRow progressModels.CourseProgress
	err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&courseRow).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}
	snap.Course = courseRow

	return snap, nil
}

// loadLessonProgress returns the current row for a (user, lesson) pair, or a
// zero-ID row initialized with the keys if none exists yet.
func loadLessonProgress(db *gorm.DB, userID, courseID, lessonID uint) (progressModels.LessonProgress, error) {
	var row progressModels.LessonProgress
	err := db.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return progressModels.LessonProgress{UserID: userID, CourseID: courseID, LessonID: lessonID}, nil
	}
	if err != nil {
		return row, err
	}
	return row, nil
}

// loadModuleResult returns the current row for a (user, module) pair, or a
// zero-ID row initialized with the keys if none exists yet.
func loadModuleResult(db *gorm.DB, userID, courseID, moduleID uint) (progressModels.ModuleQuizResult, error) {
	var row progressModels.ModuleQuizResult
	err := db.Where("user_id = ? AND module_id = ?", userID, moduleID).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return progressModels.ModuleQuizResult{UserID: userID, CourseID: courseID, ModuleID: moduleID}, nil
	}
	if err != nil {
		return row, err
	}
	return row, nil
}

// loadCourseProgress returns the current roll-up row for a (user, course)
// pair, or a zero-ID row initialized with the keys if none exists yet.
func loadCourseProgress(db *gorm.DB, userID, courseID uint) (progressModels.CourseProgress, error) {
	var row progressModels.CourseProgress
	err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return progressModels.CourseProgress{UserID: userID, CourseID: courseID}, nil
	}
	if err != nil {
		return row, err
	}
	return row, nil
}
