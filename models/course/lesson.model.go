package course

import "gorm.io/gorm"

// Lesson represents a single lesson inside a module
type Lesson struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null"`
	ModuleID    uint   `json:"module_id" gorm:"index;not null"`
	Title       string `json:"title"`
	Description string `json:"description"`
	VideoURL    string `json:"video_url"`
	DurationSec int    `json:"duration_sec" gorm:"default:0"` // 0 means no video
	OrderIndex  int    `json:"order_index" gorm:"default:0"`  // zero-based, unique per module
	HasQuiz     bool   `json:"has_quiz" gorm:"default:false"`
	IsPublished bool   `json:"is_published" gorm:"default:false"`
	IsDeleted   bool   `gorm:"default:false"`
}
