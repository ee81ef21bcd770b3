package progression

// Gating predicates. Pure functions over the content graph and a progress
// snapshot; they never mutate state. A false answer means the caller must
// surface 423 Locked instead of the content.
//
// The prerequisite chain is strictly linear: unlocking a module or lesson
// depends only on its immediately preceding sibling.

// IsModuleUnlocked reports whether the module at moduleIdx is accessible.
// Module 0 is always unlocked. Otherwise, if the previous module carries a
// quiz it must be passed; else every lesson of the previous module must be
// completed.
func IsModuleUnlocked(g *CourseGraph, snap *Snapshot, moduleIdx int) bool {
	if moduleIdx < 0 || moduleIdx >= len(g.Modules) {
		return false
	}
	if moduleIdx == 0 {
		return true
	}
	return moduleCleared(g, snap, moduleIdx-1)
}

// IsLessonUnlocked reports whether the lesson at (moduleIdx, lessonIdx) is
// accessible. Lesson 0 of an unlocked module is always unlocked; otherwise
// the previous lesson in the module must be completed.
func IsLessonUnlocked(g *CourseGraph, snap *Snapshot, moduleIdx, lessonIdx int) bool {
	if !IsModuleUnlocked(g, snap, moduleIdx) {
		return false
	}
	if lessonIdx < 0 || lessonIdx >= len(g.Modules[moduleIdx].Lessons) {
		return false
	}
	if lessonIdx == 0 {
		return true
	}
	prev := g.Modules[moduleIdx].Lessons[lessonIdx-1]
	return snap.Lessons[prev.ID].Completed
}

// CanAttemptModuleQuiz reports whether the user may sit the module quiz:
// every lesson of the module must be completed.
func CanAttemptModuleQuiz(g *CourseGraph, snap *Snapshot, moduleIdx int) bool {
	if moduleIdx < 0 || moduleIdx >= len(g.Modules) {
		return false
	}
	return allLessonsCompleted(g, snap, moduleIdx)
}

// CanAttemptFinalQuiz reports whether the user may sit the course final:
// every module with a quiz must be passed, every module without one must
// have all its lessons completed.
func CanAttemptFinalQuiz(g *CourseGraph, snap *Snapshot) bool {
	for mi := range g.Modules {
		if !moduleCleared(g, snap, mi) {
			return false
		}
	}
	return true
}

// moduleCleared is the "done with this module" rule shared by module
// unlocking and final-quiz gating: quiz passed when there is one, otherwise
// all lessons completed.
func moduleCleared(g *CourseGraph, snap *Snapshot, moduleIdx int) bool {
	node := g.Modules[moduleIdx]
	if node.Quiz != nil {
		return snap.Modules[node.Module.ID].Passed
	}
	return allLessonsCompleted(g, snap, moduleIdx)
}

func allLessonsCompleted(g *CourseGraph, snap *Snapshot, moduleIdx int) bool {
	for _, lesson := range g.Modules[moduleIdx].Lessons {
		if !snap.Lessons[lesson.ID].Completed {
			return false
		}
	}
	return true
}
