package envelope_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsinghua-fib-lab/envelope-sim-oss/envelope"
)

func TestPartBuilderForward(t *testing.T) {
	b := envelope.NewPartBuilder(envelope.MetaWithProfile(envelope.ProfileAccelerating))
	assert.True(t, b.IsEmpty())
	assert.True(t, math.IsNaN(b.LastPos()))
	assert.Panics(t, func() { b.Build() })

	require.True(t, b.InitEnvelopePart(0, 0, envelope.Forward))
	assert.True(t, b.AddStep(10, 10))
	assert.True(t, b.AddStep(40, 20))
	assert.Equal(t, 2, b.StepCount())
	assert.Equal(t, 40., b.LastPos())
	assert.Equal(t, 20., b.LastSpeed())
	assert.Panics(t, func() { b.AddStepWithTime(40, 20, 1) })

	part := b.Build()
	assert.Equal(t, []float64{0, 10, 40}, part.Positions())
	assert.InDeltaSlice(t, []float64{2, 2}, part.TimeDeltas(), 1e-12)
	assert.True(t, part.HasProfile(envelope.ProfileAccelerating))
}

func TestPartBuilderBackward(t *testing.T) {
	b := envelope.NewPartBuilder(envelope.MetaWithProfile(envelope.ProfileBraking))
	require.True(t, b.InitEnvelopePart(40, 20, envelope.Backward))
	assert.Equal(t, envelope.Backward, b.Direction())
	b.AddStep(10, 10)
	b.AddStep(0, 0)
	assert.Panics(t, func() { b.AddStep(5, 3) })

	part := b.Build()
	assert.Equal(t, []float64{0, 10, 40}, part.Positions())
	assert.Equal(t, []float64{0, 10, 20}, part.Speeds())
	assert.InDeltaSlice(t, []float64{2, 2}, part.TimeDeltas(), 1e-12)

	b.Reverse()
	assert.Equal(t, envelope.Forward, b.Direction())
	assert.Equal(t, 40., b.LastPos())
	assert.True(t, part.Equal(b.Build()))
}

func TestConstrainedPartBuilder(t *testing.T) {
	sink := envelope.NewPartBuilder(envelope.MetaWithProfile(envelope.ProfileAccelerating))
	b := envelope.NewConstrainedPartBuilder(sink, envelope.NewSpeedConstraint(15, envelope.Ceiling))
	assert.Equal(t, -1, b.LastIntersection())

	require.True(t, b.InitEnvelopePart(0, 0, envelope.Forward))
	assert.True(t, b.AddStep(10, 10))
	assert.False(t, b.AddStep(40, 20))
	assert.Equal(t, 0, b.LastIntersection())
	assert.Equal(t, 22.5, b.LastPos())
	assert.Equal(t, 15., b.LastSpeed())
	assert.Equal(t, 2, sink.StepCount())
	assert.Equal(t, 22.5, sink.LastPos())
}

func TestConstrainedPartBuilderEarliestCutWins(t *testing.T) {
	sink := envelope.NewPartBuilder(envelope.PartMeta{})
	b := envelope.NewConstrainedPartBuilder(sink,
		envelope.NewPositionConstraint(0, 30),
		envelope.NewSpeedConstraint(15, envelope.Ceiling),
	)
	require.True(t, b.InitEnvelopePart(10, 10, envelope.Forward))
	assert.False(t, b.AddStep(40, 20))
	assert.Equal(t, 1, b.LastIntersection())
	assert.Equal(t, 22.5, sink.LastPos())
}

func TestConstrainedPartBuilderRejects(t *testing.T) {
	sink := envelope.NewPartBuilder(envelope.PartMeta{})
	b := envelope.NewConstrainedPartBuilder(sink, envelope.NewSpeedConstraint(5, envelope.Ceiling))
	assert.False(t, b.InitEnvelopePart(0, 10, envelope.Forward))
	assert.True(t, math.IsNaN(sink.LastPos()))
	assert.Panics(t, func() { b.AddStep(1, 1) })

	// 截断点与起点重合时不添加步长
	sink = envelope.NewPartBuilder(envelope.PartMeta{})
	b = envelope.NewConstrainedPartBuilder(sink, envelope.NewSpeedConstraint(10, envelope.Equal))
	require.True(t, b.InitEnvelopePart(0, 10, envelope.Forward))
	assert.False(t, b.AddStep(10, 9))
	assert.True(t, sink.IsEmpty())

	// 没有前进的步长直接结束
	assert.False(t, b.AddStep(0, 10))
}

func TestOverlayBuilderForward(t *testing.T) {
	base := envelope.MakeEnvelope(constant(0, 100, 10))
	b := envelope.NewForwardOverlay(base)
	assert.Same(t, base, b.Base())
	b.AddPart(envelope.NewPartGenerateTimes(
		envelope.MetaWithProfile(envelope.ProfileBraking), []float64{40, 60}, []float64{10, 0}))
	assert.Panics(t, func() { b.AddPart(constant(10, 20, 10)) })
	assert.Panics(t, func() { b.AddPart(constant(90, 120, 10)) })

	e := b.Build()
	require.Equal(t, 3, e.Size())
	assert.Equal(t, []float64{0, 40, 60, 100}, e.PartPositions())
	assert.True(t, e.Get(1).HasProfile(envelope.ProfileBraking))
	assert.False(t, e.Continuous())
}

func TestOverlayBuilderBackward(t *testing.T) {
	b := envelope.NewBackwardOverlay(stairs())
	b.AddPart(constant(150, 200, 4))
	b.AddPart(constant(50, 100, 4))
	assert.Panics(t, func() { b.AddPart(constant(120, 130, 4)) })

	e := b.Build()
	require.Equal(t, 5, e.Size())
	assert.Equal(t, []float64{0, 50, 100, 150, 200, 300}, e.PartPositions())
	assert.Equal(t, 4., e.Get(1).BeginSpeed())
	assert.Equal(t, 20., e.Get(2).BeginSpeed())
}

func TestOverlayBuilderWithoutOverlay(t *testing.T) {
	base := stairs()
	e := envelope.NewForwardOverlay(base).Build()
	require.Equal(t, base.Size(), e.Size())
	for i, part := range e.All() {
		assert.Same(t, base.Get(i), part)
	}
}
