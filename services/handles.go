package services

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// Kid-friendly word pools for auto-generated handles.
// 30 adjectives x 30 nouns x 100 numbers = 90,000 combinations.
var handleAdjectives = []string{
	"Turbo", "Cosmic", "Star", "Rocket", "Super", "Mega", "Ultra", "Ninja",
	"Speed", "Thunder", "Lightning", "Rainbow", "Pixel", "Retro", "Hyper",
	"Atomic", "Blazing", "Epic", "Mighty", "Swift", "Golden", "Silver",
	"Brave", "Wild", "Fire", "Ice", "Storm", "Shadow", "Laser", "Neon",
}

var handleNouns = []string{
	"Racer", "Pilot", "Gamer", "Hunter", "Runner", "Jumper", "Collector",
	"Champion", "Master", "Legend", "Hero", "Wizard", "Dragon", "Phoenix",
	"Tiger", "Eagle", "Ninja", "Pirate", "Knight", "Rocket", "Comet",
	"Falcon", "Wolf", "Bear", "Shark", "Hawk", "Lion", "Panther", "Fox",
	"Viper",
}

// DefaultHandleRetries is how many random candidates are tried against the
// store before falling back to a suffixed handle.
const DefaultHandleRetries = 10

// GenerateHandle returns a random candidate like "TurboRacer42". It does NOT
// check uniqueness — that's GenerateUniqueHandle's job.
func GenerateHandle() string {
	adj := handleAdjectives[rand.Intn(len(handleAdjectives))]
	noun := handleNouns[rand.Intn(len(handleNouns))]
	return fmt.Sprintf("%s%s%d", adj, noun, rand.Intn(100))
}

// HandleExistsFunc checks whether a candidate handle is already taken. It is
// expected to run against the same transaction that will insert the profile,
// so two concurrent first-time writers can't both observe a handle as free
// without at least one of them hitting the unique constraint at insert.
type HandleExistsFunc func(handle string) (bool, error)

// GenerateUniqueHandle picks a free handle with bounded retries. After
// maxRetries collisions it appends a short random suffix — at that point the
// odds of another collision are negligible and the database unique constraint
// is the final arbiter anyway.
func GenerateUniqueHandle(exists HandleExistsFunc, maxRetries int) (string, error) {
	if maxRetries <= 0 {
		maxRetries = DefaultHandleRetries
	}
	for i := 0; i < maxRetries; i++ {
		handle := GenerateHandle()
		taken, err := exists(handle)
		if err != nil {
			return "", err
		}
		if !taken {
			return handle, nil
		}
	}

	// Fallback: 4-char uuid slice adds 16^4 combinations.
	return fmt.Sprintf("%s_%s", GenerateHandle(), uuid.NewString()[:4]), nil
}
