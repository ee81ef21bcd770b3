package progress

import (
	"time"

	"gorm.io/gorm"
)

// LessonProgress tracks a user's progress on a single lesson. One row per
// (user, lesson), created lazily on the first ping or mark-read call.
//
// VideoPercentMax and SecondsWatched only ever grow; duplicate or
// out-of-order pings converge to the same state.
type LessonProgress struct {
	gorm.Model
	UserID   uint `json:"user_id" gorm:"index:idx_lesson_progress_user_lesson,unique,priority:1;not null"`
	LessonID uint `json:"lesson_id" gorm:"index:idx_lesson_progress_user_lesson,unique,priority:2;not null"`
	CourseID uint `json:"course_id" gorm:"index;not null"`

	// Video sub-record
	VideoPercentMax float64 `json:"video_percent_max" gorm:"default:0"` // 0..1, monotonic non-decreasing
	LastPositionSec int     `json:"last_position_sec" gorm:"default:0"`
	SecondsWatched  int     `json:"seconds_watched" gorm:"default:0"` // monotonic increasing
	VideoCompleted  bool    `json:"video_completed" gorm:"default:false"`

	// Lesson-quiz sub-record
	QuizAttempts     int  `json:"quiz_attempts" gorm:"default:0"`
	QuizBestScorePct int  `json:"quiz_best_score_pct" gorm:"default:0"`
	QuizPassed       bool `json:"quiz_passed" gorm:"default:false"` // once passed, always passed

	Completed   bool       `json:"completed" gorm:"default:false"`
	CompletedAt *time.Time `json:"completed_at"`
}
