package envelope_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsinghua-fib-lab/envelope-sim-oss/envelope"
)

// accelerating 从0开始以5米/秒²加速：v² = 10x
func accelerating() *envelope.Part {
	return envelope.NewPartGenerateTimes(
		envelope.MetaWithProfile(envelope.ProfileAccelerating),
		[]float64{0, 10, 40, 90},
		[]float64{0, 10, 20, 30},
	)
}

func constant(begin, end, speed float64) *envelope.Part {
	return envelope.NewPartGenerateTimes(
		envelope.MetaWithProfile(envelope.ProfileConstantSpeed),
		[]float64{begin, end},
		[]float64{speed, speed},
	)
}

func TestNewPart(t *testing.T) {
	p := accelerating()
	assert.Equal(t, 4, p.PointCount())
	assert.Equal(t, 3, p.StepCount())
	assert.Equal(t, 0., p.BeginPos())
	assert.Equal(t, 90., p.EndPos())
	assert.Equal(t, 0., p.MinSpeed())
	assert.Equal(t, 30., p.MaxSpeed())
	assert.False(t, p.IsConstantSpeed())
	assert.True(t, p.HasProfile(envelope.ProfileAccelerating))
	// 每步2秒
	for i := range p.StepCount() {
		assert.InDelta(t, 2., p.StepTime(i), 1e-12)
	}
	assert.InDelta(t, 6., p.TotalTime(), 1e-12)
	assert.InDelta(t, 4., p.TotalTimeAt(2), 1e-12)

	assert.True(t, constant(0, 10, 5).IsConstantSpeed())
}

func TestNewPartRejectsInvalidData(t *testing.T) {
	meta := envelope.MetaWithProfile(envelope.ProfileUnknown)
	assert.Panics(t, func() { envelope.NewPart(meta, []float64{0}, []float64{1}, nil) })
	assert.Panics(t, func() { envelope.NewPart(meta, []float64{0, 0}, []float64{1, 1}, []float64{1}) })
	assert.Panics(t, func() { envelope.NewPart(meta, []float64{0, 1}, []float64{-1, 1}, []float64{1}) })
	assert.Panics(t, func() { envelope.NewPart(meta, []float64{0, 1}, []float64{1, 1}, []float64{0}) })
	assert.Panics(t, func() { envelope.NewPart(meta, []float64{0, 1}, []float64{1, 1}, []float64{1, 1}) })
}

func TestPartDoesNotAliasInput(t *testing.T) {
	positions := []float64{0, 10}
	p := envelope.NewPartGenerateTimes(envelope.PartMeta{}, positions, []float64{1, 1})
	positions[1] = 100
	assert.Equal(t, 10., p.EndPos())
	copied := p.Positions()
	copied[0] = -1
	assert.Equal(t, 0., p.BeginPos())
}

func TestPartInterpolation(t *testing.T) {
	p := accelerating()
	assert.InDelta(t, 5., p.InterpolateSpeed(2.5), 1e-12)
	assert.Equal(t, 20., p.InterpolateSpeed(40))
	assert.InDelta(t, 1., p.InterpolateTotalTime(2.5), 1e-12)
	assert.InDelta(t, 6., p.InterpolateTotalTime(90), 1e-12)
	assert.Panics(t, func() { p.InterpolateSpeed(91) })

	assert.Equal(t, 0, p.FindLeft(10))
	assert.Equal(t, 1, p.FindRight(10))
	assert.Equal(t, 2, p.FindRight(90))
	assert.Equal(t, -1, p.FindLeft(-1))

	pos, ok := p.InterpolatePosition(0, 5)
	require.True(t, ok)
	assert.InDelta(t, 2.5, pos, 1e-12)
	_, ok = p.InterpolatePosition(0, 31)
	assert.False(t, ok)
}

func TestPartSlice(t *testing.T) {
	p := accelerating()

	assert.Same(t, p, p.Slice(0, 90))
	assert.Same(t, p, p.Slice(-10, 100))

	sliced := p.Slice(2.5, 40)
	require.NotNil(t, sliced)
	assert.Equal(t, []float64{2.5, 10, 40}, sliced.Positions())
	assert.InDelta(t, 5., sliced.BeginSpeed(), 1e-12)
	assert.Equal(t, 20., sliced.EndSpeed())
	assert.InDelta(t, 3., sliced.TotalTime(), 1e-12)

	inner := p.Slice(12, 30)
	require.NotNil(t, inner)
	assert.Equal(t, 1, inner.StepCount())
	assert.InDelta(t, math.Sqrt(120), inner.BeginSpeed(), 1e-9)
	assert.InDelta(t, math.Sqrt(300), inner.EndSpeed(), 1e-9)
	assert.InDelta(t, p.InterpolateTotalTime(30)-p.InterpolateTotalTime(12), inner.TotalTime(), 1e-9)

	// 吸附到已有点
	snapped := p.Slice(10+1e-9, 40)
	require.NotNil(t, snapped)
	assert.Equal(t, []float64{10, 40}, snapped.Positions())

	assert.Nil(t, p.Slice(20, 20))
	assert.Nil(t, p.SliceIndex(1, 1))
	assert.Equal(t, 2, p.SliceIndex(1, 3).StepCount())
}

func TestPartSliceWithSpeeds(t *testing.T) {
	p := constant(0, 100, 10)
	sliced := p.SliceWithSpeeds(20, math.NaN(), 60, math.NaN())
	require.NotNil(t, sliced)
	assert.Equal(t, 20., sliced.BeginPos())
	assert.Equal(t, 60., sliced.EndPos())
	assert.InDelta(t, 4., sliced.TotalTime(), 1e-12)
}

func TestPartEqual(t *testing.T) {
	assert.True(t, accelerating().Equal(accelerating()))
	assert.False(t, accelerating().Equal(constant(0, 90, 10)))
	assert.False(t, accelerating().Equal(nil))

	withStop := envelope.NewPartGenerateTimes(
		envelope.MetaWithProfile(envelope.ProfileBraking).WithStop(1), []float64{0, 10}, []float64{10, 0})
	other := envelope.NewPartGenerateTimes(
		envelope.MetaWithProfile(envelope.ProfileBraking).WithStop(1), []float64{0, 10}, []float64{10, 0})
	assert.True(t, withStop.Equal(other))
	index, ok := withStop.Meta().StopIndex()
	assert.True(t, ok)
	assert.Equal(t, 1, index)
	assert.Equal(t, "BRAKING stop=1", withStop.Meta().String())
}
