package progress

import (
	"time"

	"gorm.io/gorm"
)

// ModuleQuizResult tracks a user's module-quiz outcome. One row per
// (user, module), created on the first attempt.
type ModuleQuizResult struct {
	gorm.Model
	UserID   uint `json:"user_id" gorm:"index:idx_module_results_user_module,unique,priority:1;not null"`
	ModuleID uint `json:"module_id" gorm:"index:idx_module_results_user_module,unique,priority:2;not null"`
	CourseID uint `json:"course_id" gorm:"index;not null"`

	Attempts int        `json:"attempts" gorm:"default:0"`
	ScorePct int        `json:"score_pct" gorm:"default:0"` // best score so far
	Passed   bool       `json:"passed" gorm:"default:false"`
	PassedAt *time.Time `json:"passed_at"`
}
