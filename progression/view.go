package progression

// Viewer-facing quiz rendering. Learners never see the answer key; owners
// and admins do.

// QuizView is a quiz as served to a viewer.
type QuizView struct {
	ID              uint               `json:"id"`
	CourseID        uint               `json:"course_id"`
	Scope           string             `json:"scope"`
	Title           string             `json:"title"`
	PassingScorePct int                `json:"passing_score_pct"`
	MaxAttempts     int                `json:"max_attempts"`
	Questions       []QuizQuestionView `json:"questions"`
}

// QuizQuestionView is one question within a QuizView.
type QuizQuestionView struct {
	ID      uint             `json:"id"`
	Prompt  string           `json:"prompt"`
	Points  int              `json:"points"`
	Options []QuizOptionView `json:"options"`
}

// QuizOptionView is one option; Index is what submissions reference.
type QuizOptionView struct {
	Index     int    `json:"index"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// QuizForViewer loads a quiz for display. Correctness flags are zeroed
// unless includeAnswers is set (owner/admin viewers). Passing score and
// attempt limit are resolved to their effective values.
func (e *QuizEngine) QuizForViewer(quizID uint, includeAnswers bool) (*QuizView, error) {
	content, err := e.loadQuiz(quizID)
	if err != nil {
		return nil, err
	}

	view := &QuizView{
		ID:              content.quiz.ID,
		CourseID:        content.quiz.CourseID,
		Scope:           content.quiz.Scope,
		Title:           content.quiz.Title,
		PassingScorePct: e.effectivePassingScore(&content.quiz),
		MaxAttempts:     e.effectiveMaxAttempts(&content.quiz),
		Questions:       make([]QuizQuestionView, len(content.questions)),
	}

	for i, q := range content.questions {
		qv := QuizQuestionView{
			ID:      q.question.ID,
			Prompt:  q.question.Prompt,
			Points:  q.question.Points,
			Options: make([]QuizOptionView, len(q.options)),
		}
		for j, opt := range q.options {
			qv.Options[j] = QuizOptionView{
				Index: j,
				Text:  opt.OptionText,
			}
			// Don't show answers to learners
			if includeAnswers {
				qv.Options[j].IsCorrect = opt.IsCorrect
			}
		}
		view.Questions[i] = qv
	}

	return view, nil
}
