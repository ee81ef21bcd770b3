package progression

import (
	"encoding/json"
	"time"

	courseModels "lms/models/course"

	"gorm.io/gorm"
)

// SyllabusLesson is one lesson entry in the materialized syllabus.
type SyllabusLesson struct {
	Title       string `json:"title"`
	DurationSec int    `json:"duration_sec"`
}

// SyllabusModule is one module entry in the materialized syllabus.
type SyllabusModule struct {
	ModuleTitle string           `json:"module_title"`
	Lessons     []SyllabusLesson `json:"lessons"`
}

// RegenerateSyllabus rebuilds the denormalized syllabus snapshot of a course
// purely from the content graph; progress data never enters it. The CRUD
// layer calls this after every module/lesson create, update, reorder or
// delete. Regeneration is idempotent: without an intervening content change
// the outline bytes come out identical.
func RegenerateSyllabus(db *gorm.DB, courseID uint) (*courseModels.SyllabusSnapshot, error) {
	graph, err := LoadCourseGraph(db, courseID)
	if err != nil {
		return nil, err
	}

	outline := make([]SyllabusModule, len(graph.Modules))
	for mi := range graph.Modules {
		node := graph.Modules[mi]
		entry := SyllabusModule{
			ModuleTitle: node.Module.Title,
			Lessons:     make([]SyllabusLesson, len(node.Lessons)),
		}
		for li, lesson := range node.Lessons {
			entry.Lessons[li] = SyllabusLesson{
				Title:       lesson.Title,
				DurationSec: lesson.DurationSec,
			}
		}
		outline[mi] = entry
	}

	payload, err := json.Marshal(outline)
	if err != nil {
		return nil, err
	}

	var snapshot courseModels.SyllabusSnapshot
	err = db.Where("course_id = ?", courseID).First(&snapshot).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}

	snapshot.CourseID = courseID
	snapshot.Outline = payload
	snapshot.RegeneratedAt = time.Now()

	if snapshot.ID == 0 {
		if err := db.Create(&snapshot).Error; err != nil {
			return nil, err
		}
	} else if err := db.Save(&snapshot).Error; err != nil {
		return nil, err
	}

	return &snapshot, nil
}

// GetSyllabus returns the current materialized snapshot, regenerating it on
// the fly if the course never had one.
func GetSyllabus(db *gorm.DB, courseID uint) (*courseModels.SyllabusSnapshot, error) {
	var snapshot courseModels.SyllabusSnapshot
	err := db.Where("course_id = ?", courseID).First(&snapshot).Error
	if err == gorm.ErrRecordNotFound {
		return RegenerateSyllabus(db, courseID)
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}
