package envelope_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsinghua-fib-lab/envelope-sim-oss/envelope"
)

func TestPositionConstraint(t *testing.T) {
	c := envelope.NewPositionConstraint(0, 50)
	assert.Equal(t, envelope.PositionConstraintKind, c.Kind())
	assert.True(t, c.InitCheck(envelope.Forward, 10, 5))
	assert.False(t, c.InitCheck(envelope.Forward, 60, 5))

	_, ok := c.StepCheck(10, 10, 40, 20)
	assert.False(t, ok)
	p, ok := c.StepCheck(40, 20, 90, 30)
	require.True(t, ok)
	assert.Equal(t, 50., p.Position)
	assert.InDelta(t, math.Sqrt(500), p.Speed, 1e-9)

	// 反向越过下界
	p, ok = c.StepCheck(10, 10, -10, 0)
	require.True(t, ok)
	assert.Equal(t, 0., p.Position)
	assert.Panics(t, func() { envelope.NewPositionConstraint(10, 0) })
}

func TestSpeedConstraint(t *testing.T) {
	ceiling := envelope.NewSpeedConstraint(15, envelope.Ceiling)
	assert.True(t, ceiling.InitCheck(envelope.Forward, 0, 15))
	assert.False(t, ceiling.InitCheck(envelope.Forward, 0, 16))
	p, ok := ceiling.StepCheck(10, 10, 40, 20)
	require.True(t, ok)
	assert.Equal(t, envelope.EnvelopePoint{Position: 22.5, Speed: 15}, p)

	floor := envelope.NewSpeedConstraint(0, envelope.Floor)
	_, ok = floor.StepCheck(0, 10, 10, 0)
	assert.False(t, ok)

	equal := envelope.NewSpeedConstraint(10, envelope.Equal)
	assert.Equal(t, "EQUAL", equal.Type().String())
	_, ok = equal.StepCheck(0, 10, 10, 10)
	assert.False(t, ok)
	p, ok = equal.StepCheck(0, 10, 10, 9)
	require.True(t, ok)
	assert.Equal(t, envelope.EnvelopePoint{Position: 0, Speed: 10}, p)
}

func TestEnvelopeCeilingConstraint(t *testing.T) {
	base := stairs()
	c := envelope.NewEnvelopeConstraint(base, envelope.Ceiling)
	require.True(t, c.InitCheck(envelope.Forward, 0, 0))

	// 从下方穿过10米/秒的平台
	p, ok := c.StepCheck(0, 0, 40, 20)
	require.True(t, ok)
	assert.InDelta(t, 10., p.Position, 1e-9)
	assert.InDelta(t, 10., p.Speed, 1e-9)

	c = envelope.NewEnvelopeConstraint(base, envelope.Ceiling)
	require.True(t, c.InitCheck(envelope.Forward, 90, 5))
	// 跨过基准片段交界，始终低于基准
	_, ok = c.StepCheck(90, 5, 110, 5)
	assert.False(t, ok)

	// 越过基准终点时在终点截断
	c = envelope.NewEnvelopeConstraint(base, envelope.Ceiling)
	require.True(t, c.InitCheck(envelope.Forward, 250, 3))
	p, ok = c.StepCheck(250, 3, 320, 3)
	require.True(t, ok)
	assert.Equal(t, envelope.EnvelopePoint{Position: 300, Speed: 3}, p)

	assert.False(t, envelope.NewEnvelopeConstraint(base, envelope.Ceiling).InitCheck(envelope.Forward, 50, 11))
	assert.Panics(t, func() { envelope.NewEnvelopeConstraint(base, envelope.Equal) })
}

func TestEnvelopeCeilingConstraintBackward(t *testing.T) {
	c := envelope.NewEnvelopeConstraint(stairs(), envelope.Ceiling)
	// 起点恰好位于基准的降速点，取将要进入的片段
	require.True(t, c.InitCheck(envelope.Backward, 200, 5))

	_, ok := c.StepCheck(200, 5, 150, 15)
	assert.False(t, ok)
	p, ok := c.StepCheck(150, 15, 100, 25)
	require.True(t, ok)
	assert.InDelta(t, 128.125, p.Position, 1e-9)
	assert.InDelta(t, 20., p.Speed, 1e-9)
}

func TestEnvelopeFloorConstraint(t *testing.T) {
	c := envelope.NewEnvelopeConstraint(stairs(), envelope.Floor)
	assert.Equal(t, envelope.EnvelopeConstraintKind, c.Kind())
	require.True(t, c.InitCheck(envelope.Forward, 50, 12))
	p, ok := c.StepCheck(50, 12, 60, 8)
	require.True(t, ok)
	assert.InDelta(t, 55.5, p.Position, 1e-9)
	assert.InDelta(t, 10., p.Speed, 1e-9)
}

func TestEnvelopeConstraintTolerance(t *testing.T) {
	// 终点比基准高出的量小于阈值时，在终点处截断而不是求交
	c := envelope.NewEnvelopeConstraint(stairs(), envelope.Ceiling).WithTolerance(1e-3)
	require.True(t, c.InitCheck(envelope.Forward, 0, 0))
	p, ok := c.StepCheck(0, 0, 10, 10.0005)
	require.True(t, ok)
	assert.Equal(t, envelope.EnvelopePoint{Position: 10, Speed: 10.0005}, p)
}
