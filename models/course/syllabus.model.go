package course

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SyllabusSnapshot is the denormalized module/lesson outline of a course,
// regenerated whenever the content graph changes. Pure function of the graph,
// holds no progress data.
type SyllabusSnapshot struct {
	gorm.Model
	CourseID      uint           `json:"course_id" gorm:"uniqueIndex;not null"`
	Outline       datatypes.JSON `json:"outline"`
	RegeneratedAt time.Time      `json:"regenerated_at"`
}
