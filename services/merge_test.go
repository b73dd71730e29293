package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMergeProgressServerWinsTies(t *testing.T) {
	local := map[string]interface{}{"coins": 5.0}
	server := map[string]interface{}{"coins": 10.0}

	result := MergeProgress(local, server, 1000, 1000)

	assert.Equal(t, MergeSourceServer, result.Source)
	assert.Equal(t, server, result.Data)
	assert.Contains(t, result.Conflicts, "local progress was overwritten by newer server data")
}

func TestMergeProgressNewerLocalWins(t *testing.T) {
	local := map[string]interface{}{"level": 3.0}
	server := map[string]interface{}{"level": 2.0}

	result := MergeProgress(local, server, 2000, 1000)

	assert.Equal(t, MergeSourceLocal, result.Source)
	assert.Equal(t, local, result.Data)
	assert.Contains(t, result.Conflicts, "server progress was overwritten by newer local data")
}

func TestMergeProgressNoConflictWhenLoserHadNothing(t *testing.T) {
	local := map[string]interface{}{"level": 3.0}
	server := map[string]interface{}{"level": 1.0}

	// Server side has no timestamp at all: local wins quietly.
	result := MergeProgress(local, server, 2000, 0)
	assert.Equal(t, MergeSourceLocal, result.Source)
	assert.Empty(t, result.Conflicts)

	// Symmetric case: local never had a clock, server wins quietly.
	result = MergeProgress(local, server, 0, 2000)
	assert.Equal(t, MergeSourceServer, result.Source)
	assert.Empty(t, result.Conflicts)
}

func TestMergeProgressFirstSync(t *testing.T) {
	local := map[string]interface{}{"highScore": 120.0}

	result := MergeProgress(local, nil, 0, 0)

	assert.Equal(t, MergeSourceLocal, result.Source)
	assert.Equal(t, local, result.Data)
	assert.Empty(t, result.Conflicts)
}

func TestMergeProgressNilLocalFallsBackToServer(t *testing.T) {
	server := map[string]interface{}{"highScore": 50.0}

	result := MergeProgress(nil, server, 99, 0)

	assert.Equal(t, MergeSourceServer, result.Source)
	assert.Equal(t, server, result.Data)
}

func TestMergeProgressDeterministic(t *testing.T) {
	local := map[string]interface{}{"a": 1.0}
	server := map[string]interface{}{"a": 2.0}

	first := MergeProgress(local, server, 500, 700)
	for i := 0; i < 5; i++ {
		again := MergeProgress(local, server, 500, 700)
		assert.Equal(t, first, again)
	}
}

func TestMergeProgressNegativeTimestampsClampToZero(t *testing.T) {
	local := map[string]interface{}{"a": 1.0}
	server := map[string]interface{}{"a": 2.0}

	result := MergeProgress(local, server, -50, -1)

	// Both clamp to zero, server wins the tie, and neither side "loses" data.
	assert.Equal(t, MergeSourceServer, result.Source)
	assert.Empty(t, result.Conflicts)
}

func TestDeepMergeProgressTakesBestOfBoth(t *testing.T) {
	local := map[string]interface{}{
		"highScore": 300.0,
		"tutorial":  true,
		"unlocks":   []interface{}{"sword", "shield"},
		"stats": map[string]interface{}{
			"gamesPlayed": 10.0,
		},
		"localOnly": "yes",
	}
	server := map[string]interface{}{
		"highScore": 250.0,
		"tutorial":  false,
		"unlocks":   []interface{}{"shield", "bow"},
		"stats": map[string]interface{}{
			"gamesPlayed": 14.0,
		},
		"serverOnly": "also yes",
	}

	merged := DeepMergeProgress(local, server)

	assert.Equal(t, 300.0, merged["highScore"])
	assert.Equal(t, true, merged["tutorial"])
	assert.Equal(t, []interface{}{"shield", "bow", "sword"}, merged["unlocks"])
	assert.Equal(t, 14.0, merged["stats"].(map[string]interface{})["gamesPlayed"])
	assert.Equal(t, "yes", merged["localOnly"])
	assert.Equal(t, "also yes", merged["serverOnly"])
}

func TestDeepMergeProgressTypeMismatchKeepsServer(t *testing.T) {
	local := map[string]interface{}{"level": "three"}
	server := map[string]interface{}{"level": 3.0}

	merged := DeepMergeProgress(local, server)

	assert.Equal(t, 3.0, merged["level"])
}

func TestExtractTimestamp(t *testing.T) {
	assert.Equal(t, int64(0), ExtractTimestamp(nil))
	assert.Equal(t, int64(0), ExtractTimestamp(map[string]interface{}{"foo": "bar"}))

	assert.Equal(t, int64(1700000000000), ExtractTimestamp(map[string]interface{}{
		"updatedAt": 1700000000000.0,
	}))

	// Fallback order: updatedAt before lastModified.
	assert.Equal(t, int64(111), ExtractTimestamp(map[string]interface{}{
		"updatedAt":    111.0,
		"lastModified": 222.0,
	}))

	when := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, when.UnixMilli(), ExtractTimestamp(map[string]interface{}{
		"lastModified": when.Format(time.RFC3339),
	}))
}
