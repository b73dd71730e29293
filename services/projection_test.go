package services

import (
	"testing"
	"time"

	"game-portal-system/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens an in-memory database with the production schema. Same
// TranslateError setting as main, so constraint violations behave alike.
func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// The in-memory database lives in a single connection.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.AppProgress{},
		&models.AppTransaction{},
		&models.GamingProfile{},
		&models.LeaderboardEntry{},
	))
	return db
}

func projectInTx(t *testing.T, svc *LeaderboardService, userID string, appID models.AppID, data map[string]interface{}, achievedAt time.Time) {
	err := svc.DB.Transaction(func(tx *gorm.DB) error {
		return svc.ProjectScore(tx, userID, appID, data, achievedAt)
	})
	require.NoError(t, err)
}

func singleEntry(t *testing.T, db *gorm.DB, appID models.AppID) models.LeaderboardEntry {
	var entries []models.LeaderboardEntry
	require.NoError(t, db.Where("app_id = ?", appID).Find(&entries).Error)
	require.Len(t, entries, 1)
	return entries[0]
}

func TestProjectScoreOnlyImproves(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(db)

	t1 := time.Now().Add(-3 * time.Hour)
	t2 := time.Now().Add(-2 * time.Hour)
	t3 := time.Now().Add(-1 * time.Hour)

	projectInTx(t, svc, "user1", models.AppSnake, map[string]interface{}{"highScore": 100.0}, t1)
	entry := singleEntry(t, db, models.AppSnake)
	assert.Equal(t, int64(100), entry.Score)
	assert.WithinDuration(t, t1, entry.AchievedAt, time.Second)

	// A worse score must leave both score and achieved_at untouched.
	projectInTx(t, svc, "user1", models.AppSnake, map[string]interface{}{"highScore": 50.0}, t2)
	entry = singleEntry(t, db, models.AppSnake)
	assert.Equal(t, int64(100), entry.Score)
	assert.WithinDuration(t, t1, entry.AchievedAt, time.Second)

	// So must an equal score: only a strict improvement moves the record,
	// which is what keeps achieved_at tie-breaking honest.
	projectInTx(t, svc, "user1", models.AppSnake, map[string]interface{}{"highScore": 100.0}, t2)
	entry = singleEntry(t, db, models.AppSnake)
	assert.WithinDuration(t, t1, entry.AchievedAt, time.Second)

	projectInTx(t, svc, "user1", models.AppSnake, map[string]interface{}{"highScore": 150.0}, t3)
	entry = singleEntry(t, db, models.AppSnake)
	assert.Equal(t, int64(150), entry.Score)
	assert.WithinDuration(t, t3, entry.AchievedAt, time.Second)
}

func TestProjectScoreFastestTimeImprovesDownward(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(db)

	blob := func(seconds float64) map[string]interface{} {
		return map[string]interface{}{
			"bestTimes": map[string]interface{}{"easy": seconds},
		}
	}
	now := time.Now()

	projectInTx(t, svc, "user1", models.AppMemoryMatch, blob(60), now)
	assert.Equal(t, int64(60), singleEntry(t, db, models.AppMemoryMatch).Score)

	// Slower time is worse for fastest_time and must not overwrite.
	projectInTx(t, svc, "user1", models.AppMemoryMatch, blob(90), now)
	assert.Equal(t, int64(60), singleEntry(t, db, models.AppMemoryMatch).Score)

	projectInTx(t, svc, "user1", models.AppMemoryMatch, blob(45), now)
	assert.Equal(t, int64(45), singleEntry(t, db, models.AppMemoryMatch).Score)
}

func TestGetLeaderboardTieBreakEarlierAchievedAtWins(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(db)

	now := time.Now()
	seed := func(userID, handle string, score int64, achievedAt time.Time) {
		profile := models.GamingProfile{
			ID: uuid.NewString(), UserID: userID, Handle: handle, ShowOnLeaderboards: true,
		}
		require.NoError(t, db.Create(&profile).Error)
		require.NoError(t, db.Create(&models.LeaderboardEntry{
			ID:              uuid.NewString(),
			GamingProfileID: profile.ID,
			AppID:           models.AppSnake,
			Score:           score,
			ScoreType:       models.ScoreTypeHighScore,
			AchievedAt:      achievedAt,
			SyncedAt:        now,
		}).Error)
	}

	seed("user-top", "TurboRacer1", 150, now.Add(-time.Hour))
	seed("user-late", "CosmicFox2", 100, now.Add(-time.Hour))
	seed("user-early", "StarWolf3", 100, now.Add(-2*time.Hour))

	page, err := svc.GetLeaderboard(models.AppSnake, "", LeaderboardQuery{})
	require.NoError(t, err)
	require.Len(t, page.Entries, 3)

	// Best score first, then the player who reached the tied score first.
	assert.Equal(t, "TurboRacer1", page.Entries[0].Handle)
	assert.Equal(t, "StarWolf3", page.Entries[1].Handle)
	assert.Equal(t, "CosmicFox2", page.Entries[2].Handle)
	assert.Equal(t, []int{1, 2, 3}, []int{page.Entries[0].Rank, page.Entries[1].Rank, page.Entries[2].Rank})
	assert.Equal(t, int64(3), page.TotalPlayers)

	// Tied players share the strictly-better-count rank even though the page
	// lists them in tie-break order.
	page, err = svc.GetLeaderboard(models.AppSnake, "user-late", LeaderboardQuery{IncludeMe: true})
	require.NoError(t, err)
	require.NotNil(t, page.MyEntry)
	assert.Equal(t, 2, page.MyEntry.Rank)
}

func TestSaveProgressIdempotent(t *testing.T) {
	db := newTestDB(t)
	lb := NewLeaderboardService(db)
	svc := NewProgressService(db, lb)

	in := SaveProgressInput{Data: map[string]interface{}{
		"highScore":   100.0,
		"gamesPlayed": 3.0,
	}}

	first, err := svc.SaveProgress("user1", models.AppSnake, in)
	require.NoError(t, err)
	assert.True(t, first.LeaderboardSynced)

	second, err := svc.SaveProgress("user1", models.AppSnake, in)
	require.NoError(t, err)
	assert.True(t, second.LeaderboardSynced)

	// Replaying the same save must not grow any table or move any score.
	var progressRows, entryRows, profileRows int64
	require.NoError(t, db.Model(&models.AppProgress{}).Count(&progressRows).Error)
	require.NoError(t, db.Model(&models.LeaderboardEntry{}).Count(&entryRows).Error)
	require.NoError(t, db.Model(&models.GamingProfile{}).Count(&profileRows).Error)
	assert.Equal(t, int64(1), progressRows)
	assert.Equal(t, int64(1), entryRows)
	assert.Equal(t, int64(1), profileRows)

	prog, err := svc.GetProgress("user1", models.AppSnake)
	require.NoError(t, err)
	assert.Equal(t, 100.0, prog.Data["highScore"])

	assert.Equal(t, int64(100), singleEntry(t, db, models.AppSnake).Score)
}
