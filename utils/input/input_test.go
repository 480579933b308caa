package input_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsinghua-fib-lab/envelope-sim-oss/sim"
	"github.com/tsinghua-fib-lab/envelope-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/envelope-sim-oss/utils/input"
)

const scenarioYAML = `
name: demo
path_length: 1000
grades:
  - {begin: 200, end: 400, grade: 5}
rolling_stock:
  name: emu
  length: 25
  mass: 1000
  max_speed: 100
  gamma: 1
  effort:
    - {speed: 0, force: 2000}
    - {speed: 30, force: 1000}
limits:
  - {begin: 0, end: 1000, speed: 20}
stops: [800]
initial_speed: 3
`

func TestParse(t *testing.T) {
	s, err := input.Parse([]byte(scenarioYAML))
	require.NoError(t, err)
	assert.Equal(t, "demo", s.Name)
	assert.Equal(t, 1000., s.PathLength)
	assert.Equal(t, []sim.GradeSection{{Begin: 200, End: 400, Grade: 5}}, s.Grades)
	assert.Equal(t, 25., s.RollingStock.TrainLength)
	assert.Len(t, s.RollingStock.Effort, 2)
	require.Len(t, s.Limits, 1)
	assert.Equal(t, 20., s.Limits[0].Speed)
	assert.Equal(t, []float64{800}, s.Stops)
	assert.Equal(t, 3., s.InitialSpeed)

	require.NoError(t, s.Validate())
	assert.Equal(t, sim.GammaConst, s.RollingStock.GammaKind)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := input.Parse([]byte("name: demo\npath_lenght: 10\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	s, err := input.Parse([]byte(scenarioYAML))
	require.NoError(t, err)
	s.PathLength = 0
	assert.ErrorIs(t, s.Validate(), sim.ErrInvalidInput)

	s, err = input.Parse([]byte(scenarioYAML))
	require.NoError(t, err)
	s.InitialSpeed = -1
	assert.ErrorIs(t, s.Validate(), sim.ErrInvalidInput)

	s, err = input.Parse([]byte(scenarioYAML))
	require.NoError(t, err)
	s.RollingStock.TrainMass = 0
	assert.ErrorIs(t, s.Validate(), sim.ErrInvalidInput)
}

func TestInitFromFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(file, []byte(scenarioYAML), 0o644))

	var c config.Config
	c.Input.Scenario.File = file
	s, err := input.Init(c)
	require.NoError(t, err)
	assert.Equal(t, "demo", s.Name)

	c.Input.Scenario.File = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = input.Init(c)
	assert.Error(t, err)
}

func TestRandom(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		s := input.Random(seed, 3000)
		require.NoError(t, s.Validate())
		assert.Equal(t, s, input.Random(seed, 3000))

		require.GreaterOrEqual(t, len(s.Limits), 2)
		assert.Equal(t, 0., s.Limits[0].Begin)
		assert.Equal(t, 3000., s.Limits[len(s.Limits)-1].End)
		for i, limit := range s.Limits {
			assert.GreaterOrEqual(t, limit.End-limit.Begin, 200.-1e-9)
			if i > 0 {
				assert.Equal(t, s.Limits[i-1].End, limit.Begin)
			}
		}
		for _, stop := range s.Stops {
			assert.True(t, stop > 0 && stop <= 3000, "stop %f", stop)
		}
	}

	short := input.Random(1, 400)
	assert.Len(t, short.Limits, 2)
}

func TestInitRandom(t *testing.T) {
	var c config.Config
	c.Input.Random = &config.RandomScenario{Seed: 3, Length: 2000}
	require.NoError(t, c.Validate())
	s, err := input.Init(c)
	require.NoError(t, err)
	assert.Equal(t, "random-3", s.Name)
	assert.Equal(t, 2000., s.PathLength)
}
