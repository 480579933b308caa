package pipeline_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsinghua-fib-lab/envelope-sim-oss/pipeline"
	"github.com/tsinghua-fib-lab/envelope-sim-oss/sim"
	"github.com/tsinghua-fib-lab/envelope-sim-oss/utils/input"
)

func TestSimulate(t *testing.T) {
	rs := newStock(t, 2000, 1)
	ctx := newContext(t, rs, 1000)
	res, err := pipeline.Simulate(ctx, pipeline.Input{
		Limits:       []pipeline.SpeedLimit{{Begin: 0, End: 1000, Speed: 20}},
		Stops:        []float64{800},
		InitialSpeed: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.MRSP.Size())
	assert.Equal(t, 3, res.MaxSpeed.Size())
	assert.Equal(t, 5, res.MaxEffort.Size())
	assert.InDelta(t, 70., res.MaxEffort.TotalTime(), 1e-6)
}

func TestSimulateClampsInitialSpeed(t *testing.T) {
	rs := newStock(t, 2000, 1)
	ctx := newContext(t, rs, 100)
	res, err := pipeline.Simulate(ctx, pipeline.Input{
		Limits:       []pipeline.SpeedLimit{{Begin: 0, End: 100, Speed: 50}},
		InitialSpeed: 80,
	})
	require.NoError(t, err)
	assert.Equal(t, 50., res.MaxEffort.BeginSpeed())
}

func TestSimulateErrors(t *testing.T) {
	rs := newStock(t, 2000, 1)
	ctx := newContext(t, rs, 1000)

	_, err := pipeline.Simulate(ctx, pipeline.Input{
		Limits: []pipeline.SpeedLimit{{Begin: 0, End: 1000, Speed: -1}},
	})
	assert.ErrorIs(t, err, sim.ErrInvalidInput)

	_, err = pipeline.Simulate(ctx, pipeline.Input{Stops: []float64{2000}})
	var outOfRange *sim.StopOutOfRangeError
	assert.True(t, errors.As(err, &outOfRange))

	weak := newStock(t, 10, 1)
	weak.A = 100
	_, err = pipeline.Simulate(newContext(t, weak, 1000), pipeline.Input{})
	assert.ErrorIs(t, err, sim.ErrImpossibleSimulation)
}

func TestSimulateRandomLines(t *testing.T) {
	const length = 3000.
	rs := newStock(t, 2000, 1)
	for seed := uint64(0); seed < 30; seed++ {
		scenario := input.Random(seed, length)
		path, err := sim.NewGradePath(length, scenario.Grades)
		require.NoError(t, err)
		ctx, err := sim.NewContext(rs, path, 2)
		require.NoError(t, err)

		line := scenario.Input
		res, err := pipeline.Simulate(ctx, line)
		require.NoError(t, err, "seed %d: %+v", seed, line)

		assertBelow(t, res.MaxSpeed, res.MRSP)
		assertBelow(t, res.MaxEffort, res.MaxSpeed)
		assertDrivable(t, res.MaxEffort, length)
		for _, stop := range line.Stops {
			assert.InDelta(t, 0., res.MaxEffort.InterpolateSpeed(stop), 1e-6, "seed %d stop %f", seed, stop)
		}
	}
}
