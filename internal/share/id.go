package share

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

var shareAdjectives = []string{
	"galactic", "prismatic", "retro", "electric", "mythic",
	"sonic", "cosmic", "midnight", "vintage", "lush",
}

var shareAnimals = []string{
	"llama", "penguin", "lynx", "otter", "badger",
	"viper", "sparrow", "orca", "panda", "yak",
}

const idAttempts = 5

// NewID generates a memorable adjective-animal-3digits id, retrying on
// collision a few times before falling back to a uuid that cannot collide.
func NewID(exists func(string) (bool, error)) (string, error) {
	for attempt := 0; attempt < idAttempts; attempt++ {
		candidate := fmt.Sprintf("%s-%s-%03d",
			shareAdjectives[rand.Intn(len(shareAdjectives))],
			shareAnimals[rand.Intn(len(shareAnimals))],
			rand.Intn(1000),
		)
		taken, err := exists(candidate)
		if err != nil {
			return "", fmt.Errorf("share id lookup: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return uuid.New().String(), nil
}
