package beam

import (
	"gosubgroup/domain/subgroup"
	"gosubgroup/internal"
)

// LoggingObserver narrates search progress through the leveled logger
type LoggingObserver struct {
	logger *internal.Logger
}

// NewLoggingObserver falls back to the default logger when logger is nil
func NewLoggingObserver(logger *internal.Logger) *LoggingObserver {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &LoggingObserver{logger: logger}
}

// LevelStarted and LevelFinished log at DEBUG, seeds at TRACE
func (o *LoggingObserver) LevelStarted(level int, seeds int) {
	o.logger.Debug("[BeamSearch] Level %d started with %d seed(s)", level+1, seeds)
}

func (o *LoggingObserver) SeedStarted(level int, seed subgroup.Description, seedQuality float64) {
	if seed.IsEmpty() {
		o.logger.Trace("[BeamSearch] Level %d expanding catch-all", level+1)
		return
	}
	o.logger.Trace("[BeamSearch] Level %d expanding %s (q=%.5f)", level+1, seed, seedQuality)
}

func (o *LoggingObserver) LevelFinished(level int, beamSize int, resultSize int) {
	o.logger.Debug("[BeamSearch] Level %d finished, beam=%d results=%d", level+1, beamSize, resultSize)
}
