package services

import (
	"errors"
	"log"
	"time"

	"game-portal-system/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressService struct {
	DB           *gorm.DB
	Leaderboards *LeaderboardService
}

func NewProgressService(db *gorm.DB, leaderboards *LeaderboardService) *ProgressService {
	return &ProgressService{DB: db, Leaderboards: leaderboards}
}

// SaveProgressInput is one client save request.
type SaveProgressInput struct {
	Data map[string]interface{}
	// LocalTimestamp is the client's last-modified clock in unix millis.
	// Advisory input to the merge decision only; never persisted.
	LocalTimestamp int64
	// Merge asks the server to reconcile against existing server data
	// instead of overwriting (localStorage → cloud first sync).
	Merge bool
}

// SaveProgressResult acknowledges a persisted save.
type SaveProgressResult struct {
	UpdatedAt time.Time   `json:"updated_at"`
	Merged    bool        `json:"merged"`
	Conflicts []string    `json:"conflicts"`
	Source    MergeSource `json:"source,omitempty"`
	// LeaderboardSynced is false when the save persisted but the leaderboard
	// projection failed — a partial success, never a failed save.
	LeaderboardSynced bool `json:"leaderboard_synced"`
}

// SaveProgress validates, optionally merges, and atomically upserts one
// (user, app) progress record, then projects the leaderboard entry inside the
// same transaction.
//
// updated_at is always the server clock: client timestamps feed the merge
// decision and nothing else. The upsert is keyed on (user_id, app_id), so
// concurrent tabs collapse to last-commit-wins instead of duplicate rows.
// Projection failures are logged and reported, but never fail the save — a
// player's own progress is not held hostage to leaderboard bookkeeping.
func (s *ProgressService) SaveProgress(userID string, appID models.AppID, in SaveProgressInput) (*SaveProgressResult, error) {
	if err := ValidateProgress(appID, in.Data); err != nil {
		return nil, err
	}

	res := &SaveProgressResult{Conflicts: []string{}}
	finalData := in.Data

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if in.Merge {
			var existing models.AppProgress
			err := tx.Where("user_id = ? AND app_id = ?", userID, appID).First(&existing).Error
			switch {
			case err == nil:
				localTS := in.LocalTimestamp
				if localTS <= 0 {
					localTS = ExtractTimestamp(in.Data)
				}
				m := MergeProgress(
					in.Data,
					map[string]interface{}(existing.Data),
					localTS,
					existing.UpdatedAt.UnixMilli(),
				)
				finalData = m.Data
				res.Conflicts = m.Conflicts
				res.Source = m.Source
			case errors.Is(err, gorm.ErrRecordNotFound):
				// Nothing to merge against; plain first save.
			default:
				return err
			}
		}

		now := time.Now()
		prog := models.AppProgress{
			ID:           uuid.NewString(),
			UserID:       userID,
			AppID:        appID,
			Data:         datatypes.JSONMap(finalData),
			LastSyncedAt: &now,
			UpdatedAt:    now,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "app_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"data":           prog.Data,
				"last_synced_at": now,
				"updated_at":     now,
			}),
		}).Create(&prog).Error; err != nil {
			return err
		}

		res.UpdatedAt = now
		res.Merged = in.Merge && len(res.Conflicts) == 0

		if HasLeaderboardSupport(appID) {
			// Nested transaction: a projection failure rolls back only its
			// savepoint, the progress write above still commits.
			err := tx.Transaction(func(ptx *gorm.DB) error {
				return s.Leaderboards.ProjectScore(ptx, userID, appID, finalData, now)
			})
			if err != nil {
				log.Printf("⚠️ [LEADERBOARD] projection failed for user=%s app=%s: %v", userID, appID, err)
			} else {
				res.LeaderboardSynced = true
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// GetProgress fetches one (user, app) progress record.
func (s *ProgressService) GetProgress(userID string, appID models.AppID) (*models.AppProgress, error) {
	var prog models.AppProgress
	err := s.DB.Where("user_id = ? AND app_id = ?", userID, appID).First(&prog).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &prog, nil
}

// ListProgress returns every game's saved progress for a user, most recently
// updated first. Backs the profile page.
func (s *ProgressService) ListProgress(userID string) ([]models.AppProgress, error) {
	var all []models.AppProgress
	err := s.DB.Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&all).Error
	if err != nil {
		return nil, err
	}
	return all, nil
}

// DeleteProgress removes a progress record and, in the same transaction, any
// leaderboard entry derived from it. A progress row and its derived entry
// never diverge in existence.
func (s *ProgressService) DeleteProgress(userID string, appID models.AppID) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var prog models.AppProgress
		err := tx.Where("user_id = ? AND app_id = ?", userID, appID).First(&prog).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Delete(&prog).Error; err != nil {
			return err
		}

		var profile models.GamingProfile
		err = tx.Where("user_id = ?", userID).First(&profile).Error
		switch {
		case err == nil:
			if err := tx.Where("gaming_profile_id = ? AND app_id = ?", profile.ID, appID).
				Delete(&models.LeaderboardEntry{}).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Never played a leaderboard game; nothing to cascade.
		default:
			return err
		}

		return nil
	})
}
