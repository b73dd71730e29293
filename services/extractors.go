package services

import (
	"fmt"
	"math"

	"game-portal-system/models"
)

// LeaderboardScore is the normalized tuple one game's extractor derives from
// its opaque progress blob.
type LeaderboardScore struct {
	Score     int64                  `json:"score"`
	ScoreType models.ScoreType       `json:"score_type"`
	Stats     map[string]interface{} `json:"stats,omitempty"`
}

// numField reads a numeric field out of a decoded JSON blob. Missing or
// non-numeric values read as 0.
func numField(data map[string]interface{}, key string) float64 {
	if v, ok := data[key].(float64); ok {
		return v
	}
	return 0
}

func intField(data map[string]interface{}, key string) int64 {
	return int64(numField(data, key))
}

func highScore(data map[string]interface{}, field string, stats map[string]interface{}) *LeaderboardScore {
	score := numField(data, field)
	if score <= 0 {
		return nil
	}
	return &LeaderboardScore{
		Score:     int64(score),
		ScoreType: models.ScoreTypeHighScore,
		Stats:     stats,
	}
}

func winCount(data map[string]interface{}, stats map[string]interface{}) *LeaderboardScore {
	wins := numField(data, "gamesWon")
	if wins <= 0 {
		return nil
	}
	return &LeaderboardScore{
		Score:     int64(wins),
		ScoreType: models.ScoreTypeWins,
		Stats:     stats,
	}
}

// accuracyPercent formats totalCorrect/totalAnswered as a display stat.
func accuracyPercent(data map[string]interface{}) interface{} {
	answered := numField(data, "totalAnswered")
	if answered <= 0 {
		return "0%"
	}
	correct := numField(data, "totalCorrect")
	return fmt.Sprintf("%d%%", int(math.Round(correct/answered*100)))
}

// ExtractScore maps a game's progress blob to its leaderboard tuple, or nil
// when the game has no leaderboard or the blob holds no positive score yet.
// Zero and negative scores are never leaderboard-eligible.
//
// The dispatch is a switch over the closed AppID set rather than a runtime
// map, so a new game without an extractor decision is a visible gap here, not
// a silently missing key. Supplementary stats are cosmetic display data only —
// ranking never reads them.
func ExtractScore(appID models.AppID, data map[string]interface{}) *LeaderboardScore {
	if data == nil {
		return nil
	}

	switch appID {

	// High-score games (higher is better).
	case models.App2048:
		return highScore(data, "highScore", map[string]interface{}{
			"highestTile": intField(data, "highestTile"),
			"gamesWon":    intField(data, "gamesWon"),
		})
	case models.AppSnake:
		return highScore(data, "highScore", map[string]interface{}{
			"longestSnake": intField(data, "longestSnake"),
			"gamesPlayed":  intField(data, "gamesPlayed"),
		})
	case models.AppFlappyBird:
		return highScore(data, "highScore", map[string]interface{}{
			"gamesPlayed": intField(data, "gamesPlayed"),
		})
	case models.AppCookieClicker:
		return highScore(data, "totalCookiesBaked", map[string]interface{}{
			"totalClicks": intField(data, "totalClicks"),
		})
	case models.AppSpaceInvaders:
		return highScore(data, "highScore", map[string]interface{}{
			"highestWave":       intField(data, "highestWave"),
			"totalAliensKilled": intField(data, "totalAliensKilled"),
		})
	case models.AppAsteroids:
		return highScore(data, "highScore", map[string]interface{}{
			"highestWave":             intField(data, "highestWave"),
			"totalAsteroidsDestroyed": intField(data, "totalAsteroidsDestroyed"),
		})
	case models.AppBreakout:
		return highScore(data, "highScore", map[string]interface{}{
			"highestLevel":         intField(data, "highestLevel"),
			"totalBricksDestroyed": intField(data, "totalBricksDestroyed"),
		})
	case models.AppHextris:
		return highScore(data, "highScore", map[string]interface{}{
			"longestChain": intField(data, "longestChain"),
		})
	case models.AppBomberman:
		return highScore(data, "highScore", map[string]interface{}{
			"highestLevel":         intField(data, "highestLevel"),
			"totalEnemiesDefeated": intField(data, "totalEnemiesDefeated"),
		})
	case models.AppBlitzBomber:
		return highScore(data, "highScore", map[string]interface{}{
			"highestLevel":       intField(data, "highestLevel"),
			"successfulLandings": intField(data, "successfulLandings"),
		})
	case models.AppDinoRunner:
		return highScore(data, "highScore", map[string]interface{}{
			"longestRun": intField(data, "longestRun"),
		})
	case models.AppEndlessRunner:
		return highScore(data, "highScore", map[string]interface{}{
			"totalDistance": intField(data, "totalDistance"),
		})
	case models.AppMathAttack:
		return highScore(data, "highScore", map[string]interface{}{
			"accuracy":     accuracyPercent(data),
			"longestCombo": intField(data, "longestCombo"),
		})
	case models.AppTrivia:
		return highScore(data, "highScore", map[string]interface{}{
			"accuracy":      accuracyPercent(data),
			"longestStreak": intField(data, "longestStreak"),
		})

	// Distance/collection games (still higher is better).
	case models.AppHillClimb:
		return highScore(data, "bestDistance", map[string]interface{}{
			"totalCoinsEarned": intField(data, "totalCoinsEarned"),
		})
	case models.AppMonsterTruck:
		return highScore(data, "starsCollected", map[string]interface{}{
			"totalCoinsEarned": intField(data, "totalCoinsEarned"),
		})
	case models.AppPlatformer:
		return highScore(data, "totalStars", map[string]interface{}{
			"totalCoins": intField(data, "totalCoins"),
		})
	case models.AppOregonTrail:
		return highScore(data, "milesTraveled", map[string]interface{}{
			"riversCrossed": intField(data, "riversCrossed"),
		})

	// Win-based board games.
	case models.AppChess:
		return winCount(data, map[string]interface{}{
			"bestWinStreak":   intField(data, "bestWinStreak"),
			"gamesPlayed":     intField(data, "gamesPlayed"),
			"totalCheckmates": intField(data, "totalCheckmates"),
		})
	case models.AppCheckers:
		return winCount(data, map[string]interface{}{
			"bestWinStreak":       intField(data, "bestWinStreak"),
			"gamesPlayed":         intField(data, "gamesPlayed"),
			"totalPiecesCaptured": intField(data, "totalPiecesCaptured"),
		})
	case models.AppQuoridor:
		return winCount(data, map[string]interface{}{
			"bestWinStreak": intField(data, "bestWinStreak"),
			"fastestWin":    intField(data, "fastestWin"),
		})
	case models.AppWordle:
		return winCount(data, map[string]interface{}{
			"maxStreak":   intField(data, "maxStreak"),
			"gamesPlayed": intField(data, "gamesPlayed"),
		})

	// Time-based games (lower is better).
	case models.AppMemoryMatch:
		bestTimes, ok := data["bestTimes"].(map[string]interface{})
		if !ok {
			return nil
		}
		best := 0.0
		for _, v := range bestTimes {
			t, ok := v.(float64)
			if !ok || t <= 0 {
				continue
			}
			if best == 0 || t < best {
				best = t
			}
		}
		if best <= 0 {
			return nil
		}
		return &LeaderboardScore{
			Score:     int64(best),
			ScoreType: models.ScoreTypeFastestTime,
			Stats: map[string]interface{}{
				"gamesWon":     intField(data, "gamesWon"),
				"perfectGames": intField(data, "perfectGames"),
			},
		}
	}

	// Apps without competitive play (weather, drawing, drum machine, …) have
	// no leaderboard at all.
	return nil
}

// HasLeaderboardSupport reports whether a game publishes a leaderboard. Games
// absent here never get entries, profiles, or a leaderboard endpoint.
func HasLeaderboardSupport(appID models.AppID) bool {
	switch appID {
	case models.App2048, models.AppSnake, models.AppFlappyBird,
		models.AppCookieClicker, models.AppSpaceInvaders, models.AppAsteroids,
		models.AppBreakout, models.AppHextris, models.AppBomberman,
		models.AppBlitzBomber, models.AppDinoRunner, models.AppEndlessRunner,
		models.AppMathAttack, models.AppTrivia, models.AppHillClimb,
		models.AppMonsterTruck, models.AppPlatformer, models.AppOregonTrail,
		models.AppChess, models.AppCheckers, models.AppQuoridor,
		models.AppWordle, models.AppMemoryMatch:
		return true
	}
	return false
}

// ScoreTypeFor returns the fixed score type a game's leaderboard sorts by.
// The type is a property of the game, never computed from submitted data.
func ScoreTypeFor(appID models.AppID) models.ScoreType {
	switch appID {
	case models.AppMemoryMatch:
		return models.ScoreTypeFastestTime
	case models.AppChess, models.AppCheckers, models.AppQuoridor, models.AppWordle:
		return models.ScoreTypeWins
	default:
		return models.ScoreTypeHighScore
	}
}
