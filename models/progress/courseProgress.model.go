package progress

import (
	"time"

	"gorm.io/gorm"
)

// CourseProgress is the per-(user, course) roll-up record. CoursePct is
// derived from lesson completion and recomputed after every mutation, never
// authoritative on its own.
type CourseProgress struct {
	gorm.Model
	UserID   uint `json:"user_id" gorm:"index:idx_course_progress_user_course,unique,priority:1;not null"`
	CourseID uint `json:"course_id" gorm:"index:idx_course_progress_user_course,unique,priority:2;not null"`

	CoursePct int `json:"course_pct" gorm:"default:0"` // 0-100

	// Final-quiz sub-record
	FinalAttempts int        `json:"final_attempts" gorm:"default:0"`
	FinalScorePct int        `json:"final_score_pct" gorm:"default:0"`
	FinalPassed   bool       `json:"final_passed" gorm:"default:false"`
	FinalPassedAt *time.Time `json:"final_passed_at"`
}
