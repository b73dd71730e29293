package services

import (
	"fmt"
	"log"

	"game-portal-system/models"

	"gorm.io/gorm"
)

// BackfillService re-derives leaderboard entries from stored progress. Used
// after deploys that add extractors (progress saved before the extractor
// existed has no entry yet) and by the nightly reconcile job.
type BackfillService struct {
	DB           *gorm.DB
	Leaderboards *LeaderboardService
}

func NewBackfillService(db *gorm.DB, leaderboards *LeaderboardService) *BackfillService {
	return &BackfillService{DB: db, Leaderboards: leaderboards}
}

// BackfillResults summarizes one backfill pass.
type BackfillResults struct {
	ProgressRecords int      `json:"progress_records"`
	Projected       int      `json:"projected"`
	Skipped         int      `json:"skipped"`
	Invalid         int      `json:"invalid"`
	Errors          []string `json:"errors"`
}

// Run walks every stored progress record and re-projects its leaderboard
// entry. Stored blobs are re-validated with the same bounds as live saves —
// a blob that predates a bounds tightening does not get grandfathered onto a
// leaderboard. achieved_at comes from the progress row's updated_at, not the
// backfill time, so tie-breaking stays honest. Each record is its own
// transaction; one bad record doesn't abort the pass.
func (s *BackfillService) Run() (*BackfillResults, error) {
	results := &BackfillResults{Errors: []string{}}

	var allProgress []models.AppProgress
	if err := s.DB.Find(&allProgress).Error; err != nil {
		return nil, err
	}
	results.ProgressRecords = len(allProgress)

	log.Printf("🔁 [BACKFILL] processing %d progress records…", len(allProgress))

	for _, prog := range allProgress {
		if !models.IsValidAppID(prog.AppID) || !HasLeaderboardSupport(prog.AppID) {
			results.Skipped++
			continue
		}

		data := map[string]interface{}(prog.Data)
		if err := ValidateProgress(prog.AppID, data); err != nil {
			results.Invalid++
			results.Errors = append(results.Errors,
				fmt.Sprintf("%s (user %s): %v", prog.AppID, prog.UserID, err))
			continue
		}

		score := ExtractScore(prog.AppID, data)
		if score == nil || score.Score <= 0 {
			results.Skipped++
			continue
		}

		err := s.DB.Transaction(func(tx *gorm.DB) error {
			return s.Leaderboards.ProjectScore(tx, prog.UserID, prog.AppID, data, prog.UpdatedAt)
		})
		if err != nil {
			results.Errors = append(results.Errors,
				fmt.Sprintf("%s (user %s): %v", prog.AppID, prog.UserID, err))
			continue
		}
		results.Projected++
	}

	log.Printf("✅ [BACKFILL] done: %d records, %d projected, %d skipped, %d invalid, %d errors",
		results.ProgressRecords, results.Projected, results.Skipped, results.Invalid, len(results.Errors))

	return results, nil
}
