package progression

import (
	"math"
	"time"

	courseModels "lms/models/course"

	"gorm.io/gorm"
)

// Aggregator rolls lesson-level completion up into module and course
// percentages and builds the viewer outline. Roll-ups are cheap pure
// functions of the progress record, recomputed synchronously after the
// mutation that triggered them.
type Aggregator struct {
	DB *gorm.DB
}

// NewAggregator builds an aggregator over the given database.
func NewAggregator(db *gorm.DB) *Aggregator {
	return &Aggregator{DB: db}
}

// RecomputeCourseStats counts modules and lessons, sums lesson durations and
// detects quiz presence, then rewrites the denormalized stats columns on the
// course row. Called by the CRUD layer after content mutations and by the
// nightly scheduler.
func (a *Aggregator) RecomputeCourseStats(courseID uint) (*courseModels.Course, error) {
	graph, err := LoadCourseGraph(a.DB, courseID)
	if err != nil {
		return nil, err
	}

	lessonCount := 0
	totalDuration := 0
	hasModuleQuizzes := false
	for mi := range graph.Modules {
		lessonCount += len(graph.Modules[mi].Lessons)
		for _, lesson := range graph.Modules[mi].Lessons {
			totalDuration += lesson.DurationSec
		}
		if graph.Modules[mi].Quiz != nil {
			hasModuleQuizzes = true
		}
	}

	updates := map[string]interface{}{
		"module_count":       len(graph.Modules),
		"lesson_count":       lessonCount,
		"total_duration_sec": totalDuration,
		"has_module_quizzes": hasModuleQuizzes,
		"has_final_quiz":     graph.FinalQuiz != nil,
	}
	if err := a.DB.Model(&courseModels.Course{}).Where("id = ?", courseID).Updates(updates).Error; err != nil {
		return nil, err
	}

	course := graph.Course
	course.ModuleCount = len(graph.Modules)
	course.LessonCount = lessonCount
	course.TotalDurationSec = totalDuration
	course.HasModuleQuizzes = hasModuleQuizzes
	course.HasFinalQuiz = graph.FinalQuiz != nil
	return &course, nil
}

// RecomputeRollups recalculates the derived course percentage for one user
// and mirrors it onto the enrollment record.
func (a *Aggregator) RecomputeRollups(userID, courseID uint) error {
	graph, err := LoadCourseGraph(a.DB, courseID)
	if err != nil {
		return err
	}
	snap, err := LoadSnapshot(a.DB, userID, courseID)
	if err != nil {
		return err
	}

	total := graph.TotalLessons()
	completed := 0
	for mi := range graph.Modules {
		for _, lesson := range graph.Modules[mi].Lessons {
			if snap.Lessons[lesson.ID].Completed {
				completed++
			}
		}
	}

	pct := 0
	if total > 0 {
		pct = int(math.Round(100 * float64(completed) / float64(total)))
	}

	row, err := loadCourseProgress(a.DB, userID, courseID)
	if err != nil {
		return err
	}
	if row.ID == 0 {
		row.CoursePct = pct
		if err := a.DB.Create(&row).Error; err != nil {
			return err
		}
	} else if err := a.DB.Model(&row).Update("course_pct", pct).Error; err != nil {
		return err
	}

	return a.updateEnrollment(userID, courseID, completed, total, pct)
}

// updateEnrollment mirrors the roll-up onto the enrollment record so course
// listings can show progress without touching the progress tables.
func (a *Aggregator) updateEnrollment(userID, courseID uint, completed, total, pct int) error {
	var enrollment courseModels.Enrollment
	err := a.DB.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error
	if err == gorm.ErrRecordNotFound {
		return nil // not enrolled (e.g. admin preview); nothing to mirror
	}
	if err != nil {
		return err
	}

	enrollment.CompletedLessons = completed
	enrollment.TotalLessons = total
	enrollment.Progress = float64(pct)

	if pct >= 100 {
		enrollment.Status = "COMPLETED"
		if enrollment.CompletedAt == nil {
			now := time.Now()
			enrollment.CompletedAt = &now
		}
	} else if pct > 0 {
		enrollment.Status = "IN_PROGRESS"
	}

	return a.DB.Save(&enrollment).Error
}

// OutlineLesson is one lesson row in the viewer outline.
type OutlineLesson struct {
	LessonID       uint   `json:"lesson_id"`
	Title          string `json:"title"`
	DurationSec    int    `json:"duration_sec"`
	HasQuiz        bool   `json:"has_quiz"`
	Unlocked       bool   `json:"unlocked"`
	Completed      bool   `json:"completed"`
	PercentWatched int    `json:"percent_watched"`
}

// OutlineModule is one module row in the viewer outline.
type OutlineModule struct {
	ModuleID      uint            `json:"module_id"`
	Title         string          `json:"title"`
	Unlocked      bool            `json:"unlocked"`
	ModulePercent int             `json:"module_percent"`
	HasQuiz       bool            `json:"has_quiz"`
	QuizPassed    bool            `json:"quiz_passed"`
	CanTakeQuiz   bool            `json:"can_take_quiz"`
	Lessons       []OutlineLesson `json:"lessons"`
}

// NextUp points the learner at the first unlocked, not-yet-completed lesson.
type NextUp struct {
	ModuleID uint   `json:"module_id"`
	LessonID uint   `json:"lesson_id"`
	Title    string `json:"title"`
}

// CourseOutline is the per-viewer course view: every module and lesson in
// order with unlock/completion flags.
type CourseOutline struct {
	CourseID         uint            `json:"course_id"`
	Title            string          `json:"title"`
	CoursePct        int             `json:"course_pct"`
	FinalQuizID      *uint           `json:"final_quiz_id,omitempty"`
	CanAttemptFinal  bool            `json:"can_attempt_final"`
	FinalQuizPassed  bool            `json:"final_quiz_passed"`
	Modules          []OutlineModule `json:"modules"`
	NextUp           *NextUp         `json:"next_up"`
	CompletedLessons int             `json:"completed_lessons"`
	TotalLessons     int             `json:"total_lessons"`
}

// BuildOutline computes the nested module/lesson view for one viewer.
func (a *Aggregator) BuildOutline(courseID, userID uint) (*CourseOutline, error) {
	graph, err := LoadCourseGraph(a.DB, courseID)
	if err != nil {
		return nil, err
	}
	snap, err := LoadSnapshot(a.DB, userID, courseID)
	if err != nil {
		return nil, err
	}

	outline := &CourseOutline{
		CourseID: graph.Course.ID,
		Title:    graph.Course.Title,
		Modules:  make([]OutlineModule, len(graph.Modules)),
	}
	if graph.FinalQuiz != nil {
		id := graph.FinalQuiz.ID
		outline.FinalQuizID = &id
		outline.CanAttemptFinal = CanAttemptFinalQuiz(graph, snap)
		outline.FinalQuizPassed = snap.Course.FinalPassed
	}

	totalCompleted := 0
	for mi := range graph.Modules {
		node := graph.Modules[mi]
		mod := OutlineModule{
			ModuleID: node.Module.ID,
			Title:    node.Module.Title,
			Unlocked: IsModuleUnlocked(graph, snap, mi),
			HasQuiz:  node.Quiz != nil,
			Lessons:  make([]OutlineLesson, len(node.Lessons)),
		}
		if node.Quiz != nil {
			mod.QuizPassed = snap.Modules[node.Module.ID].Passed
			mod.CanTakeQuiz = CanAttemptModuleQuiz(graph, snap, mi)
		}

		completedInModule := 0
		for li, lesson := range node.Lessons {
			lp := snap.Lessons[lesson.ID]
			row := OutlineLesson{
				LessonID:       lesson.ID,
				Title:          lesson.Title,
				DurationSec:    lesson.DurationSec,
				HasQuiz:        lesson.HasQuiz,
				Unlocked:       IsLessonUnlocked(graph, snap, mi, li),
				Completed:      lp.Completed,
				PercentWatched: int(math.Round(lp.VideoPercentMax * 100)),
			}
			if lp.Completed {
				completedInModule++
			}
			if outline.NextUp == nil && row.Unlocked && !row.Completed {
				outline.NextUp = &NextUp{
					ModuleID: lesson.ModuleID,
					LessonID: lesson.ID,
					Title:    lesson.Title,
				}
			}
			mod.Lessons[li] = row
		}

		if len(node.Lessons) > 0 {
			mod.ModulePercent = int(math.Round(100 * float64(completedInModule) / float64(len(node.Lessons))))
		}
		totalCompleted += completedInModule
		outline.Modules[mi] = mod
	}

	outline.CompletedLessons = totalCompleted
	outline.TotalLessons = graph.TotalLessons()
	if outline.TotalLessons > 0 {
		outline.CoursePct = int(math.Round(100 * float64(totalCompleted) / float64(outline.TotalLessons)))
	}

	return outline, nil
}
