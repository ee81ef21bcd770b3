package progression

import (
	"math"
	"time"

	courseModels "lms/models/course"

	"gorm.io/gorm"
)

// VideoTracker consumes playback pings and maintains the monotonic watched
// state of a lesson's video. All dependencies are explicit; nothing is read
// from globals.
type VideoTracker struct {
	DB                  *gorm.DB
	CompletionThreshold float64 // watched fraction that counts as "watched", default 0.9
	Rollups             *Aggregator
}

// NewVideoTracker builds a tracker writing through the given database.
func NewVideoTracker(db *gorm.DB, completionThreshold float64) *VideoTracker {
	return &VideoTracker{
		DB:                  db,
		CompletionThreshold: completionThreshold,
		Rollups:             NewAggregator(db),
	}
}

// VideoProgressResult is what a playback ping or mark-read call reports back.
type VideoProgressResult struct {
	PercentWatched  int  `json:"percent_watched"` // 0-100
	VideoCompleted  bool `json:"video_completed"`
	LessonCompleted bool `json:"lesson_completed"`
	NeedsQuiz       bool `json:"needs_quiz"`
}

// RecordProgress applies one playback ping. positionSec is the current
// playhead, watchedDeltaSec the seconds newly watched since the last ping.
//
// The clamp-and-max percent update makes the operation idempotent and
// commutative: duplicate or out-of-order pings converge to the same state.
func (t *VideoTracker) RecordProgress(userID, courseID, lessonID uint, positionSec, watchedDeltaSec int) (*VideoProgressResult, error) {
	if positionSec < 0 || watchedDeltaSec < 0 {
		return nil, ErrValidation
	}

	lesson, err := t.findLesson(courseID, lessonID)
	if err != nil {
		return nil, err
	}

	duration := lesson.DurationSec
	if duration < 1 {
		duration = 1
	}
	percent := float64(positionSec) / float64(duration)
	if percent > 1 {
		percent = 1
	}

	return t.apply(lesson, userID, courseID, percent, positionSec, watchedDeltaSec, false)
}

// MarkAsRead completes the video part of a lesson outright, meant for
// lessons without meaningful video duration. The lesson-completion rule
// still applies: a quiz-bearing lesson stays incomplete until its quiz is
// passed.
func (t *VideoTracker) MarkAsRead(userID, courseID, lessonID uint) (*VideoProgressResult, error) {
	lesson, err := t.findLesson(courseID, lessonID)
	if err != nil {
		return nil, err
	}
	return t.apply(lesson, userID, courseID, 1, lesson.DurationSec, 0, true)
}

func (t *VideoTracker) findLesson(courseID, lessonID uint) (*courseModels.Lesson, error) {
	var lesson courseModels.Lesson
	err := t.DB.Where("id = ? AND course_id = ? AND is_deleted = ?", lessonID, courseID, false).First(&lesson).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

// apply merges one ping into the lesson progress row via an optimistic
// compare-and-swap on the two monotonic counters. Concurrent pings for the
// same (user, lesson) retry and re-merge, so the row only ever moves forward.
func (t *VideoTracker) apply(lesson *courseModels.Lesson, userID, courseID uint, percent float64, positionSec, watchedDeltaSec int, forceWatched bool) (*VideoProgressResult, error) {
	var lastErr error

	for i := 0; i < casRetries; i++ {
		row, err := loadLessonProgress(t.DB, userID, courseID, lesson.ID)
		if err != nil {
			return nil, err
		}

		oldPercent := row.VideoPercentMax
		oldWatched := row.SecondsWatched

		newMax := oldPercent
		if percent > newMax {
			newMax = percent
		}

		videoCompleted := row.VideoCompleted || forceWatched || newMax >= t.CompletionThreshold
		lessonCompleted := videoCompleted && (!lesson.HasQuiz || row.QuizPassed)
		transitioned := lessonCompleted && !row.Completed

		row.VideoPercentMax = newMax
		row.LastPositionSec = positionSec
		row.SecondsWatched = oldWatched + watchedDeltaSec
		row.VideoCompleted = videoCompleted
		if transitioned {
			now := time.Now()
			row.Completed = true
			row.CompletedAt = &now
		}

		if row.ID == 0 {
			// First ping for this (user, lesson); the unique index turns a
			// concurrent double-create into a retry.
			if err := t.DB.Create(&row).Error; err != nil {
				lastErr = err
				continue
			}
		} else {
			res := t.DB.Model(&row).
				Where("id = ? AND video_percent_max = ? AND seconds_watched = ?", row.ID, oldPercent, oldWatched).
				Updates(map[string]interface{}{
					"video_percent_max": row.VideoPercentMax,
					"last_position_sec": row.LastPositionSec,
					"seconds_watched":   row.SecondsWatched,
					"video_completed":   row.VideoCompleted,
					"completed":         row.Completed,
					"completed_at":      row.CompletedAt,
				})
			if res.Error != nil {
				return nil, res.Error
			}
			if res.RowsAffected == 0 {
				lastErr = ErrConflict
				continue
			}
		}

		if transitioned {
			if err := t.Rollups.RecomputeRollups(userID, courseID); err != nil {
				return nil, err
			}
		}

		return &VideoProgressResult{
			PercentWatched:  int(math.Round(newMax * 100)),
			VideoCompleted:  videoCompleted,
			LessonCompleted: row.Completed,
			NeedsQuiz:       lesson.HasQuiz && videoCompleted && !row.QuizPassed,
		}, nil
	}

	return nil, lastErr
}
