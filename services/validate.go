package services

import (
	"fmt"
	"time"

	"game-portal-system/models"
)

// Limits are generous but finite: a dedicated player couldn't legitimately
// exceed them even with years of play, but a tampered client can't post
// {"coins": 9e99} either.
const (
	MaxCurrency = 1_000_000_000_000 // currency-like totals
	MaxCount    = 1_000_000         // games played, items collected, …

	// Record-size caps to keep payload abuse bounded.
	maxObjectKeys   = 500
	maxObjectKeyLen = 200
	maxTotalNodes   = 20_000
	maxStringLen    = 200_000
	maxBlobDepth    = 16

	// Clock-skew tolerance for client-reported timestamps.
	maxTimestampSkew = 24 * time.Hour
)

// Additional-stats bounds, enforced identically at validation and projection.
const (
	maxStatKeys     = 10
	maxStatKeyLen   = 50
	maxStatValueLen = 100
)

// fieldRule bounds one declared numeric field of a game's blob: present
// values must be numeric and within [0, max].
type fieldRule struct {
	field string
	max   float64
}

func counts(fields ...string) []fieldRule {
	rules := make([]fieldRule, len(fields))
	for i, f := range fields {
		rules[i] = fieldRule{f, MaxCount}
	}
	return rules
}

func currencies(fields ...string) []fieldRule {
	rules := make([]fieldRule, len(fields))
	for i, f := range fields {
		rules[i] = fieldRule{f, MaxCurrency}
	}
	return rules
}

// progressRules declares per-game numeric bounds. Games not listed still get
// the generic caps; unknown fields on listed games pass through (each game
// owns its own shape, we only police the known abuse vectors).
var progressRules = map[models.AppID][]fieldRule{
	models.App2048: append(
		currencies("highScore"),
		fieldRule{"highestTile", 131072}, // 2^17 is the theoretical max
		fieldRule{"gamesPlayed", MaxCount},
		fieldRule{"gamesWon", MaxCount},
	),
	models.AppSnake: append(
		counts("highScore", "gamesPlayed", "totalFoodEaten"),
		fieldRule{"longestSnake", 1000},
		fieldRule{"speed", 10},
	),
	models.AppFlappyBird:    counts("highScore", "gamesPlayed", "totalPipesCleared"),
	models.AppCookieClicker: currencies("cookies", "totalCookiesBaked", "totalClicks"),
	models.AppMemoryMatch:   counts("gamesWon", "totalMatches", "perfectGames"),
	models.AppCheckers: counts(
		"gamesPlayed", "gamesWon", "gamesLost", "winStreak", "bestWinStreak",
		"totalPiecesCaptured",
	),
	models.AppChess: counts(
		"gamesPlayed", "gamesWon", "wins", "losses", "draws", "bestWinStreak",
		"totalCheckmates",
	),
	models.AppQuoridor: append(
		counts("gamesPlayed", "gamesWon", "wins", "losses", "bestWinStreak"),
		fieldRule{"fastestWin", 86_400_000}, // 24h in millis
	),
	models.AppOregonTrail: append(
		append(
			counts(
				"gamesCompleted", "gamesAttempted", "bestScore",
				"totalRiversCrossed", "riversCrossed", "totalDaysTraveled",
				"totalPartySaved", "totalPartyLost", "totalPlaytimeMinutes",
			),
			currencies("totalMilesTraveled", "milesTraveled", "totalFoodHunted")...,
		),
		fieldRule{"fastestJourney", 365}, // days
	),
	models.AppMonsterTruck: append(
		currencies("coins", "totalCoinsEarned"),
		fieldRule{"starsCollected", MaxCount},
	),
	models.AppHillClimb: append(
		currencies("coins", "totalCoinsEarned", "bestDistance"),
		fieldRule{"leanSensitivity", 5},
	),
	models.AppEndlessRunner: append(
		currencies("highScore", "totalDistance", "totalCoins"),
		counts("gamesPlayed", "powerupsUsed")...,
	),
	models.AppPlatformer: append(
		currencies("totalCoins"),
		fieldRule{"levelsCompleted", 1000},
		fieldRule{"currentWorld", 100},
		fieldRule{"currentLevel", 100},
		fieldRule{"totalStars", MaxCount},
	),
	models.AppSpaceInvaders: append(
		currencies("highScore"),
		counts("highestWave", "totalAliensKilled", "gamesPlayed")...,
	),
	models.AppAsteroids: append(
		currencies("highScore"),
		counts("highestWave", "totalAsteroidsDestroyed")...,
	),
	models.AppBreakout: append(
		currencies("highScore"),
		counts("highestLevel", "totalBricksDestroyed")...,
	),
	models.AppHextris: append(
		currencies("highScore"),
		counts("longestChain")...,
	),
	models.AppBomberman: append(
		currencies("highScore"),
		counts("highestLevel", "totalEnemiesDefeated")...,
	),
	models.AppBlitzBomber: append(
		currencies("highScore"),
		counts("highestLevel", "successfulLandings")...,
	),
	models.AppDinoRunner: currencies("highScore", "longestRun"),
	models.AppMathAttack: append(
		currencies("highScore"),
		counts("totalCorrect", "totalAnswered", "longestCombo")...,
	),
	models.AppTrivia: append(
		currencies("highScore"),
		counts("totalCorrect", "totalAnswered", "longestStreak")...,
	),
	models.AppWordle:        counts("gamesWon", "gamesPlayed", "maxStreak"),
	models.AppJokeGenerator: counts("jokesViewed"),
}

// timestampKeys are blob fields treated as client clocks and bounds-checked
// against server time.
var timestampKeys = map[string]struct{}{
	"updatedAt":    {},
	"lastModified": {},
	"timestamp":    {},
	"_timestamp":   {},
	"lastTick":     {},
	"lastPlayedAt": {},
	"lastPlayed":   {},
}

// ValidateProgress bounds-checks an incoming progress blob before it is
// trusted. Failure is non-fatal to the caller: the save is rejected with a
// reason and nothing is persisted.
func ValidateProgress(appID models.AppID, data map[string]interface{}) error {
	if data == nil {
		return newValidationError("", "progress data must be an object")
	}

	// Timestamp skew limit is computed against time.Now at validation time.
	// A constant captured at process start would silently stop rejecting
	// future timestamps after a day of uptime.
	futureLimit := float64(time.Now().Add(maxTimestampSkew).UnixMilli())

	nodes := 0
	if err := walkBlob(data, 0, &nodes, futureLimit); err != nil {
		return err
	}

	for _, rule := range progressRules[appID] {
		raw, ok := data[rule.field]
		if !ok {
			continue
		}
		v, ok := raw.(float64)
		if !ok {
			return newValidationError(rule.field, "must be a number")
		}
		if v < 0 {
			return newValidationError(rule.field, "must not be negative")
		}
		if v > rule.max {
			return newValidationError(rule.field, fmt.Sprintf("exceeds maximum of %.0f", rule.max))
		}
	}

	return nil
}

// walkBlob applies the generic structural caps to every node of the blob:
// bounded depth, key counts, string lengths, numeric magnitude, and the
// timestamp skew check on well-known clock fields.
func walkBlob(v interface{}, depth int, nodes *int, futureLimit float64) error {
	*nodes++
	if *nodes > maxTotalNodes {
		return newValidationError("", "progress data too large")
	}
	if depth > maxBlobDepth {
		return newValidationError("", "progress data nested too deeply")
	}

	switch val := v.(type) {
	case map[string]interface{}:
		if len(val) > maxObjectKeys {
			return newValidationError("", fmt.Sprintf("object has more than %d keys", maxObjectKeys))
		}
		for k, child := range val {
			if len(k) > maxObjectKeyLen {
				return newValidationError(k, "key too long")
			}
			if num, ok := child.(float64); ok {
				if _, isClock := timestampKeys[k]; isClock {
					if num > futureLimit {
						return newValidationError(k, "timestamp cannot be more than 1 day in the future")
					}
					if num < 0 {
						return newValidationError(k, "timestamp must not be negative")
					}
				}
			}
			if err := walkBlob(child, depth+1, nodes, futureLimit); err != nil {
				return err
			}
		}
	case []interface{}:
		for _, child := range val {
			if err := walkBlob(child, depth+1, nodes, futureLimit); err != nil {
				return err
			}
		}
	case string:
		if len(val) > maxStringLen {
			return newValidationError("", fmt.Sprintf("string value longer than %d characters", maxStringLen))
		}
	case float64:
		if val > MaxCurrency || val < -MaxCurrency {
			return newValidationError("", fmt.Sprintf("numeric value exceeds maximum of %d", int64(MaxCurrency)))
		}
	}

	return nil
}

// ValidateLeaderboardScore re-checks an extracted tuple against the same
// bounds used for incoming blobs. The extractor output still derives from
// client-submitted data, so projection does not trust it either.
func ValidateLeaderboardScore(score *LeaderboardScore) error {
	if score == nil {
		return newValidationError("score", "missing")
	}
	if score.Score < 0 || score.Score > MaxCurrency {
		return newValidationError("score", "out of bounds")
	}
	if !models.IsValidScoreType(score.ScoreType) {
		return newValidationError("scoreType", "unknown score type")
	}
	if len(score.Stats) > maxStatKeys {
		return newValidationError("stats", fmt.Sprintf("max %d additional stats", maxStatKeys))
	}
	for k, v := range score.Stats {
		if len(k) > maxStatKeyLen {
			return newValidationError("stats", "stat key too long")
		}
		switch sv := v.(type) {
		case string:
			if len(sv) > maxStatValueLen {
				return newValidationError("stats", "stat value too long")
			}
		case float64, int, int64:
			// numeric stats are fine
		default:
			return newValidationError("stats", "stat values must be numbers or short strings")
		}
	}
	return nil
}
