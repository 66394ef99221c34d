package utils

import (
	"log"
	"time"

	"examly/config"
	"examly/database"
	examModels "examly/models/exam"
	examService "examly/services/exam"

	"github.com/robfig/cron/v3"
)

func logScheduler(message string) {
	log.Printf("[SCHEDULER %s] %s", time.Now().Format(time.RFC3339), message)
}

// sweepExpiredAttempts finalizes open attempts whose deadline has passed.
// Grading is idempotent, so racing with a student-triggered submit is safe.
func sweepExpiredAttempts() {
	db := database.Database.Db
	now := time.Now().UTC()
	svc := examService.NewService(db)

	var attempts []examModels.Attempt
	if err := db.Joins("JOIN exams ON exams.id = attempts.exam_id").
		Where("attempts.submitted_at IS NULL").
		Where("attempts.started_at + (exams.duration_minutes * interval '1 minute') <= ?", now).
		Find(&attempts).Error; err != nil {
		logScheduler("Error fetching expired attempts: " + err.Error())
		return
	}

	for i := range attempts {
		if err := svc.Grade(&attempts[i], now); err != nil {
			logScheduler("Error auto-submitting expired attempt: " + err.Error())
		}
	}
	if len(attempts) > 0 {
		logScheduler("Auto-submitted expired attempts")
	}
}

func runScheduledBackup() {
	if _, err := CreateBackupArchive(database.Database.Db); err != nil {
		logScheduler("Scheduled backup failed: " + err.Error())
		return
	}
	logScheduler("Scheduled backup created")
}

// StartSchedulers wires the nightly backup and the expired-attempt sweeper.
func StartSchedulers() {
	c := cron.New()

	if _, err := c.AddFunc(config.AppConfig.BackupCron, runScheduledBackup); err != nil {
		log.Printf("Invalid BACKUP_CRON expression: %v", err)
	}
	if _, err := c.AddFunc("@every 5m", sweepExpiredAttempts); err != nil {
		log.Printf("Failed to register attempt sweeper: %v", err)
	}

	c.Start()
	log.Println("Schedulers started.")
}
