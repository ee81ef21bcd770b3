package progress

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuizAttempt is the immutable record of one quiz submission. Superseded
// attempts are retained for audit, never mutated.
//
// AttemptID doubles as an idempotency key: a caller retrying a submission
// with the same key gets a Conflict instead of a double-counted attempt.
type QuizAttempt struct {
	gorm.Model
	AttemptID     string         `json:"attempt_id" gorm:"uniqueIndex;not null"`
	QuizID        uint           `json:"quiz_id" gorm:"index;not null"`
	UserID        uint           `json:"user_id" gorm:"index;not null"`
	Answers       datatypes.JSON `json:"answers"` // submitted answers as [{question_id, selected_indexes}]
	ScorePct      int            `json:"score_pct"`
	Passed        bool           `json:"passed" gorm:"default:false"`
	AttemptNumber int            `json:"attempt_number" gorm:"default:1"`
	StartedAt     time.Time      `json:"started_at"`
	FinishedAt    time.Time      `json:"finished_at"`
}
