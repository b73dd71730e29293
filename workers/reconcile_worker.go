package workers

import (
	"log"
	"time"

	"game-portal-system/services"

	"github.com/go-co-op/gocron/v2"
)

// StartReconcileWorker schedules the nightly leaderboard reconcile. Projection
// runs inline with saves, but a failed projection is logged and swallowed so
// the save still lands; the nightly pass catches those up, plus any progress
// saved before its game gained an extractor.
func StartReconcileWorker(backfill *services.BackfillService) gocron.Scheduler {
	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("❌ Failed to create reconcile scheduler: %v", err)
	}
	sched.Start()

	// Every night at 03:30 UTC, off the evening traffic peak.
	_, err = sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(3, 30, 0))),
		gocron.NewTask(func() {
			start := time.Now()
			results, err := backfill.Run()
			if err != nil {
				log.Printf("❌ [RECONCILE] nightly pass failed: %v", err)
				return
			}
			log.Printf("🌙 [RECONCILE] nightly pass done in %s: %d projected, %d invalid",
				time.Since(start).Round(time.Millisecond), results.Projected, results.Invalid)
		}),
	)
	if err != nil {
		log.Printf("⚠️ Failed to schedule nightly reconcile: %v", err)
	}

	return sched
}
