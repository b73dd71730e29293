package models

import (
	"time"

	"gorm.io/datatypes"
)

// ScoreType fixes the comparison direction for a game's leaderboard.
type ScoreType string

const (
	ScoreTypeHighScore   ScoreType = "high_score"   // higher is better
	ScoreTypeWins        ScoreType = "wins"         // higher is better
	ScoreTypeFastestTime ScoreType = "fastest_time" // lower is better
)

// ScoreTypes lists every valid score type.
var ScoreTypes = []ScoreType{ScoreTypeHighScore, ScoreTypeWins, ScoreTypeFastestTime}

// IsValidScoreType reports whether t is one of the closed score-type tags.
func IsValidScoreType(t ScoreType) bool {
	switch t {
	case ScoreTypeHighScore, ScoreTypeWins, ScoreTypeFastestTime:
		return true
	}
	return false
}

// Ascending reports whether lower scores rank higher for this type.
func (t ScoreType) Ascending() bool { return t == ScoreTypeFastestTime }

// GamingProfile is a user's public gaming identity. Handles are auto-generated
// ("TurboRacer42") so kids never expose real names, and stay consistent across
// every game. Handle uniqueness is enforced by the database, not just here:
// two first-time writers can race to the same random handle.
type GamingProfile struct {
	ID                 string    `json:"id" gorm:"primaryKey;type:uuid"`
	UserID             string    `json:"user_id" gorm:"not null;uniqueIndex"`
	Handle             string    `json:"handle" gorm:"not null;uniqueIndex"`
	ShowOnLeaderboards bool      `json:"show_on_leaderboards" gorm:"not null;default:true"`
	CreatedAt          time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (GamingProfile) TableName() string { return "gaming_profiles" }

// LeaderboardEntry holds the single best score for a (profile, app, scoreType)
// triple — never a history. AchievedAt is server-assigned and only moves when
// the score improves, which is what makes "first to reach it" tie-breaking work.
type LeaderboardEntry struct {
	ID              string            `json:"id" gorm:"primaryKey;type:uuid"`
	GamingProfileID string            `json:"gaming_profile_id" gorm:"not null;uniqueIndex:idx_profile_app_type;index:idx_leaderboard_profile"`
	AppID           AppID             `json:"app_id" gorm:"not null;uniqueIndex:idx_profile_app_type;index:idx_leaderboard_app_score;index:idx_leaderboard_app_time"`
	Score           int64             `json:"score" gorm:"not null;index:idx_leaderboard_app_score"`
	ScoreType       ScoreType         `json:"score_type" gorm:"not null;default:'high_score';uniqueIndex:idx_profile_app_type"`
	AdditionalStats datatypes.JSONMap `json:"additional_stats"`
	AchievedAt      time.Time         `json:"achieved_at" gorm:"not null;index:idx_leaderboard_app_time"`
	SyncedAt        time.Time         `json:"synced_at" gorm:"not null"`

	Profile GamingProfile `json:"-" gorm:"foreignKey:GamingProfileID;constraint:OnDelete:CASCADE"`
}

func (LeaderboardEntry) TableName() string { return "leaderboard_entries" }

// TimePeriod filters leaderboards by when the best score was last improved.
type TimePeriod string

const (
	PeriodAll   TimePeriod = "all"
	PeriodWeek  TimePeriod = "week"
	PeriodMonth TimePeriod = "month"
)

// PeriodCutoff returns the achieved_at cutoff for a period, or nil for "all".
func PeriodCutoff(p TimePeriod, now time.Time) *time.Time {
	var days int
	switch p {
	case PeriodWeek:
		days = 7
	case PeriodMonth:
		days = 30
	default:
		return nil
	}
	cutoff := now.AddDate(0, 0, -days)
	return &cutoff
}

// IsValidPeriod reports whether p is a known leaderboard period.
func IsValidPeriod(p TimePeriod) bool {
	return p == PeriodAll || p == PeriodWeek || p == PeriodMonth
}
