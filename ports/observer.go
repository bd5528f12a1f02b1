package ports

import (
	"gosubgroup/domain/subgroup"
)

// SearchObserver receives progress notifications from a level-wise search.
// Implementations must not retain or mutate the descriptions they receive.
type SearchObserver interface {
	// LevelStarted is called before any seed of the level is expanded
	LevelStarted(level int, seeds int)

	// SeedStarted is called before the refinements of seed are generated
	SeedStarted(level int, seed subgroup.Description, seedQuality float64)

	// LevelFinished reports how many descriptions the level's beam and the
	// global result set hold once every seed has been expanded
	LevelFinished(level int, beamSize int, resultSize int)
}
