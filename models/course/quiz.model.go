package course

import "gorm.io/gorm"

// Quiz scopes. A quiz hangs off a lesson, a module, or the course itself.
const (
	QuizScopeLesson = "LESSON"
	QuizScopeModule = "MODULE"
	QuizScopeFinal  = "FINAL"
)

// Quiz represents a quiz attached to a lesson, module or course final
type Quiz struct {
	gorm.Model
	CourseID        uint   `json:"course_id" gorm:"index;not null"`
	Scope           string `json:"scope" gorm:"default:'LESSON'"` // LESSON, MODULE, FINAL
	LessonID        *uint  `json:"lesson_id" gorm:"index"`        // set for LESSON scope
	ModuleID        *uint  `json:"module_id" gorm:"index"`        // set for MODULE scope
	Title           string `json:"title"`
	PassingScorePct int    `json:"passing_score_pct" gorm:"default:0"` // 0 = use configured default (70)
	MaxAttempts     int    `json:"max_attempts" gorm:"default:0"`      // 0 = use configured default (3)
	IsDeleted       bool   `gorm:"default:false"`
}

// QuizQuestion represents a single question within a quiz
type QuizQuestion struct {
	gorm.Model
	QuizID     uint   `json:"quiz_id" gorm:"index;not null"`
	Prompt     string `json:"prompt" gorm:"type:text"`
	Points     int    `json:"points" gorm:"default:0"` // 0 = unweighted; weighted scoring kicks in when any question has points
	OrderIndex int    `json:"order_index" gorm:"default:0"`
	IsDeleted  bool   `gorm:"default:false"`
}

// QuizOption represents an answer option for a quiz question
type QuizOption struct {
	gorm.Model
	QuestionID uint   `json:"question_id" gorm:"index;not null"`
	OptionText string `json:"option_text"`
	IsCorrect  bool   `json:"is_correct" gorm:"default:false"`
	OrderIndex int    `json:"order_index" gorm:"default:0"`
	IsDeleted  bool   `gorm:"default:false"`
}
