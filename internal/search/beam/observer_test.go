package beam

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"

	"gosubgroup/domain/subgroup"
	"gosubgroup/internal"

	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func narrate(o *LoggingObserver) {
	o.LevelStarted(0, 1)
	o.SeedStarted(0, subgroup.CatchAll(), 0)
	o.SeedStarted(1, subgroup.NewDescription(subgroup.Greater("x", 79)), 0.16)
	o.LevelFinished(0, 2, 3)
}

func TestLoggingObserver_Levels(t *testing.T) {
	buf := captureLog(t)
	narrate(NewLoggingObserver(internal.NewLogger(internal.LogLevelDebug)))

	out := buf.String()
	assert.Contains(t, out, "[DEBUG] [BeamSearch] Level 1 started with 1 seed(s)")
	assert.Contains(t, out, "[DEBUG] [BeamSearch] Level 1 finished, beam=2 results=3")
	assert.NotContains(t, out, "expanding")
}

func TestLoggingObserver_TraceSeeds(t *testing.T) {
	buf := captureLog(t)
	narrate(NewLoggingObserver(internal.NewLogger(internal.LogLevelTrace)))

	out := buf.String()
	assert.Contains(t, out, "[TRACE] [BeamSearch] Level 1 expanding catch-all")
	assert.Contains(t, out, "[TRACE] [BeamSearch] Level 2 expanding x > 79 (q=0.16000)")
	assert.Equal(t, 4, strings.Count(out, "[BeamSearch]"))
}

func TestLoggingObserver_QuietAtInfo(t *testing.T) {
	buf := captureLog(t)
	narrate(NewLoggingObserver(internal.NewLogger(internal.LogLevelInfo)))
	assert.Empty(t, buf.String())
}
