package course

import "gorm.io/gorm"

// Course represents a learning course
type Course struct {
	gorm.Model
	Title        string `json:"title"`
	Description  string `json:"description"`
	Author       string `json:"author"`
	Status       string `json:"status" gorm:"default:'DRAFT'"` // DRAFT, ACTIVE, INACTIVE
	ThumbnailURL string `json:"thumbnail_url"`
	IsPublished  bool   `json:"is_published" gorm:"default:false"`
	IsDeleted    bool   `gorm:"default:false"`

	// Denormalized stats, rewritten by RecomputeCourseStats
	ModuleCount      int  `json:"module_count" gorm:"default:0"`
	LessonCount      int  `json:"lesson_count" gorm:"default:0"`
	TotalDurationSec int  `json:"total_duration_sec" gorm:"default:0"`
	HasModuleQuizzes bool `json:"has_module_quizzes" gorm:"default:false"`
	HasFinalQuiz     bool `json:"has_final_quiz" gorm:"default:false"`
}
