package services

import (
	"errors"
	"sort"
	"time"

	"game-portal-system/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// profileInsertAttempts bounds the retry loop around a profile insert whose
// randomly generated handle collides with another user's. Distinct from the
// handle allocator's own retry budget: this one fires only when the database
// unique constraint catches a race the pre-check missed.
const profileInsertAttempts = 3

type LeaderboardService struct {
	DB *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db}
}

// betterThanCond is the strict-better comparison for a score type, as SQL
// against a bound value. Rank counting and the projection upsert must agree
// on this, so both go through here.
func betterThanCond(t models.ScoreType) string {
	if t.Ascending() {
		return "leaderboard_entries.score < ?"
	}
	return "leaderboard_entries.score > ?"
}

// ScoreIsBetter reports whether a strictly beats b under the score type's
// direction.
func ScoreIsBetter(t models.ScoreType, a, b int64) bool {
	if t.Ascending() {
		return a < b
	}
	return a > b
}

// getOrCreateProfile resolves the caller's gaming profile inside tx, creating
// one with a generated handle on first leaderboard-eligible save.
//
// Two races end here: (1) two different users rolling the same handle — the
// unique constraint raises, we retry with a fresh handle; (2) the same user
// saving from two tabs — the losing insert is a DO NOTHING on user_id, and
// the re-read picks up the winner's row. Each attempt runs in a nested
// transaction (savepoint) so a constraint violation doesn't poison the outer
// transaction.
func (s *LeaderboardService) getOrCreateProfile(tx *gorm.DB, userID string) (*models.GamingProfile, error) {
	var profile models.GamingProfile
	err := tx.Where("user_id = ?", userID).First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	for attempt := 0; attempt < profileInsertAttempts; attempt++ {
		handle, err := GenerateUniqueHandle(func(h string) (bool, error) {
			var n int64
			if err := tx.Model(&models.GamingProfile{}).Where("handle = ?", h).Count(&n).Error; err != nil {
				return false, err
			}
			return n > 0, nil
		}, DefaultHandleRetries)
		if err != nil {
			return nil, err
		}

		candidate := models.GamingProfile{
			ID:                 uuid.NewString(),
			UserID:             userID,
			Handle:             handle,
			ShowOnLeaderboards: true,
		}
		err = tx.Transaction(func(ptx *gorm.DB) error {
			return ptx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}},
				DoNothing: true,
			}).Create(&candidate).Error
		})
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Handle collision with a different user. Fresh handle, retry.
				continue
			}
			return nil, err
		}

		if err := tx.Where("user_id = ?", userID).First(&profile).Error; err != nil {
			return nil, err
		}
		return &profile, nil
	}

	return nil, ErrHandleExhausted
}

// ProjectScore derives/updates the caller's leaderboard entry from a saved
// progress blob, inside the caller's transaction. No score, or a score of
// zero or less, is a deliberate no-op. The upsert only overwrites an existing
// row when the new score is strictly better — the comparison happens in the
// ON CONFLICT clause, atomically against the live stored value, so a worse
// score can never clobber a better one that landed in between.
func (s *LeaderboardService) ProjectScore(tx *gorm.DB, userID string, appID models.AppID, data map[string]interface{}, achievedAt time.Time) error {
	score := ExtractScore(appID, data)
	if score == nil || score.Score <= 0 {
		return nil
	}

	// Extractor output still derives from client data; re-check bounds.
	if err := ValidateLeaderboardScore(score); err != nil {
		return err
	}

	profile, err := s.getOrCreateProfile(tx, userID)
	if err != nil {
		return err
	}

	now := time.Now()
	entry := models.LeaderboardEntry{
		ID:              uuid.NewString(),
		GamingProfileID: profile.ID,
		AppID:           appID,
		Score:           score.Score,
		ScoreType:       score.ScoreType,
		AdditionalStats: datatypes.JSONMap(score.Stats),
		AchievedAt:      achievedAt,
		SyncedAt:        now,
	}

	improved := "leaderboard_entries.score < excluded.score"
	if score.ScoreType.Ascending() {
		improved = "leaderboard_entries.score > excluded.score"
	}

	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "gaming_profile_id"}, {Name: "app_id"}, {Name: "score_type"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"score":            entry.Score,
			"additional_stats": entry.AdditionalStats,
			"achieved_at":      entry.AchievedAt,
			"synced_at":        entry.SyncedAt,
		}),
		Where: clause.Where{Exprs: []clause.Expression{gorm.Expr(improved)}},
	}).Create(&entry).Error
}

// LeaderboardQuery are the sanitized query options for a leaderboard read.
type LeaderboardQuery struct {
	Period    models.TimePeriod
	Limit     int
	Offset    int
	IncludeMe bool
}

// NormalizeLeaderboardQuery applies defaults and caps: period "all", limit
// 1..100 (default 100), offset >= 0.
func NormalizeLeaderboardQuery(q LeaderboardQuery) LeaderboardQuery {
	if !models.IsValidPeriod(q.Period) {
		q.Period = models.PeriodAll
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 100
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

// LeaderboardRow is one ranked line of a leaderboard page.
type LeaderboardRow struct {
	Rank            int                    `json:"rank"`
	Handle          string                 `json:"handle"`
	Score           int64                  `json:"score"`
	AdditionalStats map[string]interface{} `json:"additional_stats,omitempty"`
	AchievedAt      time.Time              `json:"achieved_at"`
}

// MyEntry is the caller's own rank line, included on request even when they
// fall outside the requested page.
type MyEntry struct {
	Rank   int    `json:"rank"`
	Handle string `json:"handle"`
	Score  int64  `json:"score"`
}

// LeaderboardPage is a ranked, paginated, time-windowed leaderboard read.
type LeaderboardPage struct {
	Entries      []LeaderboardRow  `json:"leaderboard"`
	MyEntry      *MyEntry          `json:"my_entry,omitempty"`
	TotalPlayers int64             `json:"total_players"`
	Period       models.TimePeriod `json:"period"`
	ScoreType    models.ScoreType  `json:"score_type"`
}

type leaderboardScanRow struct {
	Handle          string
	Score           int64
	AdditionalStats datatypes.JSONMap
	AchievedAt      time.Time
}

// visibleEntries scopes a query to the entries that may appear on a public
// leaderboard: this app, this score type, opted-in profiles, and optionally
// only bests improved since the period cutoff.
func (s *LeaderboardService) visibleEntries(appID models.AppID, scoreType models.ScoreType, cutoff *time.Time) *gorm.DB {
	q := s.DB.Model(&models.LeaderboardEntry{}).
		Joins("JOIN gaming_profiles ON gaming_profiles.id = leaderboard_entries.gaming_profile_id").
		Where("leaderboard_entries.app_id = ?", appID).
		Where("leaderboard_entries.score_type = ?", scoreType).
		Where("gaming_profiles.show_on_leaderboards = ?", true)
	if cutoff != nil {
		q = q.Where("leaderboard_entries.achieved_at >= ?", *cutoff)
	}
	return q
}

// GetLeaderboard returns the ranked page for one game. userID may be empty
// (anonymous read); it is only consulted when IncludeMe is set.
//
// Sort: score in the game's direction, then achieved_at ascending — the first
// player to reach a score wins the tie. Rank numbers account for the offset.
func (s *LeaderboardService) GetLeaderboard(appID models.AppID, userID string, q LeaderboardQuery) (*LeaderboardPage, error) {
	q = NormalizeLeaderboardQuery(q)
	scoreType := ScoreTypeFor(appID)
	cutoff := models.PeriodCutoff(q.Period, time.Now())

	direction := "DESC"
	if scoreType.Ascending() {
		direction = "ASC"
	}

	var rows []leaderboardScanRow
	err := s.visibleEntries(appID, scoreType, cutoff).
		Select("gaming_profiles.handle, leaderboard_entries.score, leaderboard_entries.additional_stats, leaderboard_entries.achieved_at").
		Order("leaderboard_entries.score " + direction + ", leaderboard_entries.achieved_at ASC").
		Limit(q.Limit).
		Offset(q.Offset).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	var total int64
	if err := s.visibleEntries(appID, scoreType, cutoff).Count(&total).Error; err != nil {
		return nil, err
	}

	page := &LeaderboardPage{
		Entries:      make([]LeaderboardRow, 0, len(rows)),
		TotalPlayers: total,
		Period:       q.Period,
		ScoreType:    scoreType,
	}
	for i, r := range rows {
		page.Entries = append(page.Entries, LeaderboardRow{
			Rank:            q.Offset + i + 1,
			Handle:          r.Handle,
			Score:           r.Score,
			AdditionalStats: map[string]interface{}(r.AdditionalStats),
			AchievedAt:      r.AchievedAt,
		})
	}

	if q.IncludeMe && userID != "" {
		me, err := s.myEntry(appID, scoreType, cutoff, userID)
		if err != nil {
			return nil, err
		}
		page.MyEntry = me
	}

	return page, nil
}

// myEntry computes the caller's rank fresh: 1 + the number of visible entries
// strictly better than theirs within the same window. Tie-break order does
// not move ranks, so the strict-better count is all that matters.
func (s *LeaderboardService) myEntry(appID models.AppID, scoreType models.ScoreType, cutoff *time.Time, userID string) (*MyEntry, error) {
	var profile models.GamingProfile
	if err := s.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	entryQuery := s.DB.Where(
		"gaming_profile_id = ? AND app_id = ? AND score_type = ?",
		profile.ID, appID, scoreType,
	)
	if cutoff != nil {
		entryQuery = entryQuery.Where("achieved_at >= ?", *cutoff)
	}
	var entry models.LeaderboardEntry
	if err := entryQuery.First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var better int64
	err := s.visibleEntries(appID, scoreType, cutoff).
		Where(betterThanCond(scoreType), entry.Score).
		Count(&better).Error
	if err != nil {
		return nil, err
	}

	return &MyEntry{
		Rank:   int(better) + 1,
		Handle: profile.Handle,
		Score:  entry.Score,
	}, nil
}

// GameRank is the caller's standing in one game.
type GameRank struct {
	AppID        models.AppID     `json:"app_id"`
	GameName     string           `json:"game_name"`
	Icon         string           `json:"icon"`
	Rank         int              `json:"rank"`
	Score        int64            `json:"score"`
	ScoreType    models.ScoreType `json:"score_type"`
	TotalPlayers int64            `json:"total_players"`
}

// MyRanks is a user's handle plus their rank in every game they hold an
// entry for, best rank first.
type MyRanks struct {
	Handle string     `json:"handle"`
	Ranks  []GameRank `json:"ranks"`
}

// GetMyRanks computes the caller's all-time rank per game. A user with no
// profile yet simply has no ranks — that is not an error.
func (s *LeaderboardService) GetMyRanks(userID string) (*MyRanks, error) {
	var profile models.GamingProfile
	if err := s.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &MyRanks{Ranks: []GameRank{}}, nil
		}
		return nil, err
	}

	var entries []models.LeaderboardEntry
	if err := s.DB.Where("gaming_profile_id = ?", profile.ID).Find(&entries).Error; err != nil {
		return nil, err
	}

	ranks := make([]GameRank, 0, len(entries))
	for _, entry := range entries {
		var better int64
		if err := s.visibleEntries(entry.AppID, entry.ScoreType, nil).
			Where(betterThanCond(entry.ScoreType), entry.Score).
			Count(&better).Error; err != nil {
			return nil, err
		}

		var total int64
		if err := s.visibleEntries(entry.AppID, entry.ScoreType, nil).Count(&total).Error; err != nil {
			return nil, err
		}

		meta := models.MetaFor(entry.AppID)
		ranks = append(ranks, GameRank{
			AppID:        entry.AppID,
			GameName:     meta.Name,
			Icon:         meta.Icon,
			Rank:         int(better) + 1,
			Score:        entry.Score,
			ScoreType:    entry.ScoreType,
			TotalPlayers: total,
		})
	}

	sort.Slice(ranks, func(i, j int) bool { return ranks[i].Rank < ranks[j].Rank })

	return &MyRanks{Handle: profile.Handle, Ranks: ranks}, nil
}

// GetProfile fetches the caller's gaming profile, or ErrNotFound when they
// haven't played a leaderboard game yet.
func (s *LeaderboardService) GetProfile(userID string) (*models.GamingProfile, error) {
	var profile models.GamingProfile
	if err := s.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile toggles leaderboard visibility for the caller's profile.
func (s *LeaderboardService) UpdateProfile(userID string, showOnLeaderboards bool) error {
	result := s.DB.Model(&models.GamingProfile{}).
		Where("user_id = ?", userID).
		Update("show_on_leaderboards", showOnLeaderboards)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
