package utils

import (
	"lms/database"
	courseModels "lms/models/course"
	"lms/progression"
	"log"

	"github.com/robfig/cron/v3"
)

// InitializeStatsScheduler sets up the nightly course stats rebuild
func InitializeStatsScheduler() {
	log.Println("[STATS-SCHEDULER] Initializing stats scheduler...")

	c := cron.New()

	// Run daily at 3 AM, after the content team is done for the day
	c.AddFunc("0 3 * * *", func() {
		log.Println("[STATS-SCHEDULER] Running nightly stats rebuild...")
		RecomputeAllCourseStats()
	})

	c.Start()
	log.Println("[STATS-SCHEDULER] Stats scheduler started - runs daily at 3 AM")
}

// RecomputeAllCourseStats rebuilds denormalized stats and syllabus snapshots
// for every live course. Both operations are idempotent, so re-running over
// an unchanged course is harmless.
func RecomputeAllCourseStats() {
	db := database.Database.Db

	var courses []courseModels.Course
	if err := db.Where("is_deleted = ?", false).Find(&courses).Error; err != nil {
		log.Printf("[STATS-SCHEDULER] Error fetching courses: %v", err)
		return
	}

	aggregator := progression.NewAggregator(db)
	for _, course := range courses {
		if _, err := aggregator.RecomputeCourseStats(course.ID); err != nil {
			log.Printf("[STATS-SCHEDULER] Error recomputing stats for course %d: %v", course.ID, err)
			continue
		}
		if _, err := progression.RegenerateSyllabus(db, course.ID); err != nil {
			log.Printf("[STATS-SCHEDULER] Error regenerating syllabus for course %d: %v", course.ID, err)
		}
	}

	log.Printf("[STATS-SCHEDULER] Rebuilt stats for %d courses", len(courses))
}
