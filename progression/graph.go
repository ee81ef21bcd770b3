package progression

import (
	courseModels "lms/models/course"

	"gorm.io/gorm"
)

// ModuleNode is a module with its ordered lessons and optional module quiz.
type ModuleNode struct {
	Module  courseModels.Module
	Lessons []courseModels.Lesson
	Quiz    *courseModels.Quiz
}

// CourseGraph is the ordered content graph of one course, read-only to the
// engine. Module and lesson order follows order_index.
type CourseGraph struct {
	Course    courseModels.Course
	Modules   []ModuleNode
	FinalQuiz *courseModels.Quiz
}

// LoadCourseGraph loads the full ordered content graph for a course.
func LoadCourseGraph(db *gorm.DB, courseID uint) (*CourseGraph, error) {
	var c courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&c).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var modules []courseModels.Module
	if err := db.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("order_index asc").Find(&modules).Error; err != nil {
		return nil, err
	}

	var lessons []courseModels.Lesson
	if err := db.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("order_index asc").Find(&lessons).Error; err != nil {
		return nil, err
	}

	var quizzes []courseModels.Quiz
	if err := db.Where("course_id = ? AND scope IN ? AND is_deleted = ?",
		courseID, []string{courseModels.QuizScopeModule, courseModels.QuizScopeFinal}, false).
		Find(&quizzes).Error; err != nil {
		return nil, err
	}

	graph := &CourseGraph{Course: c, Modules: make([]ModuleNode, len(modules))}
	moduleIdx := make(map[uint]int, len(modules))
	for i, mod := range modules {
		graph.Modules[i] = ModuleNode{Module: mod}
		moduleIdx[mod.ID] = i
	}

	for _, lesson := range lessons {
		if i, ok := moduleIdx[lesson.ModuleID]; ok {
			graph.Modules[i].Lessons = append(graph.Modules[i].Lessons, lesson)
		}
	}

	for i := range quizzes {
		quiz := quizzes[i]
		switch quiz.Scope {
		case courseModels.QuizScopeFinal:
			graph.FinalQuiz = &quiz
		case courseModels.QuizScopeModule:
			if quiz.ModuleID != nil {
				if j, ok := moduleIdx[*quiz.ModuleID]; ok {
					graph.Modules[j].Quiz = &quiz
				}
			}
		}
	}

	return graph, nil
}

// LessonByID finds a lesson in the graph, returning its module and lesson
// positions within the ordered chain.
func (g *CourseGraph) LessonByID(lessonID uint) (moduleIdx, lessonIdx int, ok bool) {
	for mi := range g.Modules {
		for li := range g.Modules[mi].Lessons {
			if g.Modules[mi].Lessons[li].ID == lessonID {
				return mi, li, true
			}
		}
	}
	return 0, 0, false
}

// ModuleByID finds a module's position within the ordered chain.
func (g *CourseGraph) ModuleByID(moduleID uint) (moduleIdx int, ok bool) {
	for mi := range g.Modules {
		if g.Modules[mi].Module.ID == moduleID {
			return mi, true
		}
	}
	return 0, false
}

// TotalLessons counts every lesson in the graph.
func (g *CourseGraph) TotalLessons() int {
	total := 0
	for mi := range g.Modules {
		total += len(g.Modules[mi].Lessons)
	}
	return total
}
