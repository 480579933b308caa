package task_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"github.com/tsinghua-fib-lab/envelope-sim-oss/sim"
	"github.com/tsinghua-fib-lab/envelope-sim-oss/task"
	"github.com/tsinghua-fib-lab/envelope-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/envelope-sim-oss/utils/input"
)

const scenarioYAML = `
name: demo
path_length: 1000
rolling_stock:
  name: emu
  mass: 1000
  max_speed: 100
  gamma: 1
  effort:
    - {speed: 0, force: 2000}
limits:
  - {begin: 0, end: 1000, speed: 20}
stops: [0, 800]
`

func newConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	file := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(file, []byte(scenarioYAML), 0o644))
	var c config.Config
	c.Input.Scenario.File = file
	c.Control.Departure = 8 * 3600
	c.Output.File = filepath.Join(dir, "report.yaml")
	c.Output.Points = true
	require.NoError(t, c.Validate())
	return c
}

func TestRun(t *testing.T) {
	c := newConfig(t)
	ctx := task.NewContext(c, nil)
	require.NoError(t, ctx.Init())
	assert.Equal(t, sim.DefaultTimeStep, ctx.RuntimeConfig().C.TimeStep)

	report, err := ctx.Run()
	require.NoError(t, err)
	require.NotNil(t, ctx.Result())
	assert.Equal(t, "demo", report.Scenario)
	assert.Equal(t, 1000., report.Distance)
	assert.InDelta(t, 70., report.RunningTime, 1e-6)
	assert.Equal(t, "08:00:00", report.Departure)
	assert.True(t, strings.HasPrefix(report.Arrival, "08:01:"), report.Arrival)

	require.Len(t, report.Parts, 5)
	assert.Equal(t, "ACCELERATING", report.Parts[0].Profile)
	require.NotNil(t, report.Parts[2].Stop)
	assert.Equal(t, 1, *report.Parts[2].Stop)

	// 起点的停车点不计入到达时刻
	require.Len(t, report.Stops, 1)
	assert.Equal(t, 1, report.Stops[0].Index)
	assert.InDelta(t, 55., report.Stops[0].Elapsed, 1e-6)
	assert.NotEmpty(t, report.Points)

	data, err := os.ReadFile(c.Output.File)
	require.NoError(t, err)
	var written task.Report
	require.NoError(t, yaml.Unmarshal(data, &written))
	assert.Equal(t, report.Scenario, written.Scenario)
	assert.Len(t, written.Parts, 5)
}

func TestInitialSpeedOverride(t *testing.T) {
	c := newConfig(t)
	speed := 20.
	c.Control.InitialSpeed = &speed
	c.Output = config.Output{}

	ctx := task.NewContext(c, nil)
	require.NoError(t, ctx.Init())
	assert.Equal(t, 20., ctx.Scenario().InitialSpeed)

	report, err := ctx.Run()
	require.NoError(t, err)
	assert.Equal(t, "CONSTANT_SPEED", report.Parts[0].Profile)
}

func TestSharedGradeCache(t *testing.T) {
	cache := sim.NewGradeCache()
	for i := 0; i < 2; i++ {
		s, err := input.Parse([]byte(scenarioYAML))
		require.NoError(t, err)
		ctx := task.NewContext(newConfig(t), cache)
		require.NoError(t, ctx.InitScenario(s))
	}
	assert.Equal(t, 1, cache.Len())
}

func TestInitScenarioRejectsInvalidScenario(t *testing.T) {
	s, err := input.Parse([]byte(scenarioYAML))
	require.NoError(t, err)
	s.RollingStock.Gamma = 0
	ctx := task.NewContext(newConfig(t), nil)
	assert.ErrorIs(t, ctx.InitScenario(s), sim.ErrInvalidInput)
}

func TestRunRandomScenarios(t *testing.T) {
	cache := sim.NewGradeCache()
	for seed := uint64(0); seed < 5; seed++ {
		var c config.Config
		c.Input.Random = &config.RandomScenario{Seed: seed, Length: 3000}
		ctx := task.NewContext(c, cache)
		require.NoError(t, ctx.Init())

		report, err := ctx.Run()
		require.NoError(t, err, "seed %d", seed)
		assert.Equal(t, 3000., report.Distance)
		assert.Greater(t, report.RunningTime, 0.)
		assert.True(t, ctx.Result().MaxEffort.Continuous())
	}
	assert.Equal(t, 5, cache.Len())
}

func TestSharedGradeCacheFollowsScenarioLength(t *testing.T) {
	cache := sim.NewGradeCache()
	for _, length := range []float64{3000, 6000, 3000} {
		var c config.Config
		c.Input.Random = &config.RandomScenario{Seed: 7, Length: length}
		ctx := task.NewContext(c, cache)
		require.NoError(t, ctx.Init())
		assert.Equal(t, length, ctx.Scenario().PathLength)

		report, err := ctx.Run()
		require.NoError(t, err, "length %f", length)
		assert.Equal(t, length, report.Distance)
		assert.Equal(t, length, ctx.Result().MaxEffort.EndPos())
	}
	assert.Equal(t, 1, cache.Len())
}
