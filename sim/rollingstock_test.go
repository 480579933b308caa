package sim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsinghua-fib-lab/envelope-sim-oss/sim"
)

// newTestStock 1吨、最大牵引力2000牛（2米/秒²）、无阻力、恒定减速度1米/秒²的列车
func newTestStock() *sim.SimpleRollingStock {
	return &sim.SimpleRollingStock{
		Name:          "test",
		TrainMass:     1000,
		TrainMaxSpeed: 100,
		Gamma:         1,
		Effort:        []sim.EffortPoint{{Speed: 0, Force: 2000}},
	}
}

func TestRollingStockValidate(t *testing.T) {
	rs := newTestStock()
	require.NoError(t, rs.Validate())
	assert.Equal(t, 1., rs.InertiaCoefficient)
	assert.Equal(t, sim.GammaConst, rs.GammaType())
	assert.Equal(t, 1000., rs.Inertia())

	bad := newTestStock()
	bad.TrainMass = 0
	assert.ErrorIs(t, bad.Validate(), sim.ErrInvalidInput)

	bad = newTestStock()
	bad.Effort = []sim.EffortPoint{{Speed: 10, Force: 1}, {Speed: 5, Force: 2}}
	assert.ErrorIs(t, bad.Validate(), sim.ErrInvalidInput)

	bad = newTestStock()
	bad.GammaKind = "SOMETIMES"
	assert.ErrorIs(t, bad.Validate(), sim.ErrInvalidInput)

	bad = newTestStock()
	bad.Effort = nil
	assert.Error(t, bad.Validate())
}

func TestRollingStockForces(t *testing.T) {
	rs := newTestStock()
	rs.A, rs.B, rs.C = 1, 2, 3
	rs.Effort = []sim.EffortPoint{{Speed: 0, Force: 300}, {Speed: 10, Force: 200}, {Speed: 20, Force: 100}}
	require.NoError(t, rs.Validate())

	assert.Equal(t, 17., rs.RollingResistance(2))
	assert.Equal(t, 17., rs.RollingResistance(-2))
	assert.InDelta(t, 250., rs.MaxEffort(5), 1e-12)
	assert.InDelta(t, 200., rs.MaxEffort(10), 1e-12)
	assert.InDelta(t, 150., rs.MaxEffort(15), 1e-12)
	assert.Equal(t, 100., rs.MaxEffort(25))
	assert.Equal(t, 300., rs.MaxEffort(0))
	assert.Equal(t, 1000., rs.MaxBrakingForce(10))
}
